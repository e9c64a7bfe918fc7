package gateway

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storefront/internal/domain"
	"storefront/internal/settings"
)

func phonepeTestConfig(baseURL string) settings.PaymentSettings {
	return settings.PaymentSettings{
		PhonePeEnabled:    true,
		PhonePeMerchantID: "M_TEST",
		PhonePeSaltKey:    "salt-key",
		PhonePeBaseURL:    baseURL,
	}
}

func TestPhonePeCreateIntent(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/payment/phonepe/create-order", r.URL.Path)
		assert.NotEmpty(t, r.Header.Get("X-VERIFY"))
		w.Write([]byte(`{"key_id":"M_TEST","order":{"id":"pp_order_1","amount":5000,"currency":"INR"}}`))
	}))
	defer srv.Close()

	g := NewPhonePe(phonepeTestConfig(srv.URL))
	intent, err := g.CreateIntent(context.Background(), 5000)
	require.NoError(t, err)
	assert.Equal(t, "pp_order_1", intent.GatewayOrderID)
	assert.Equal(t, int64(5000), intent.Amount)
}

func TestPhonePeVerifyChecksumMismatchSkipsNetwork(t *testing.T) {
	called := false
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))
	defer srv.Close()

	g := NewPhonePe(phonepeTestConfig(srv.URL))
	intent := &PaymentIntent{GatewayOrderID: "pp_order_1"}

	ok, err := g.Verify(context.Background(), intent, ClientProof{
		GatewayOrderID:   "pp_order_1",
		GatewayPaymentID: "pp_pay_1",
		Signature:        "bogus",
	})
	require.NoError(t, err)
	assert.False(t, ok)
	assert.False(t, called)
}

func TestPhonePeVerifyConfirmsWithGateway(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/payment/phonepe/verify", r.URL.Path)
		w.Write([]byte(`{"success":true}`))
	}))
	defer srv.Close()

	g := NewPhonePe(phonepeTestConfig(srv.URL))
	intent := &PaymentIntent{GatewayOrderID: "pp_order_1"}

	ok, err := g.Verify(context.Background(), intent, ClientProof{
		GatewayOrderID:   "pp_order_1",
		GatewayPaymentID: "pp_pay_1",
		Signature:        g.proofChecksum("pp_order_1", "pp_pay_1"),
	})
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestPhonePeVerifyTransportErrorIsGatewayError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	g := NewPhonePe(phonepeTestConfig(srv.URL))
	intent := &PaymentIntent{GatewayOrderID: "pp_order_1"}

	_, err := g.Verify(context.Background(), intent, ClientProof{
		GatewayOrderID:   "pp_order_1",
		GatewayPaymentID: "pp_pay_1",
		Signature:        g.proofChecksum("pp_order_1", "pp_pay_1"),
	})

	var gwErr *domain.GatewayError
	require.ErrorAs(t, err, &gwErr)
	assert.Equal(t, domain.GatewayReasonVerifyFailed, gwErr.Reason)
}
