package gateway

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storefront/internal/domain"
	"storefront/internal/settings"
)

func razorpayTestConfig(baseURL string) settings.PaymentSettings {
	return settings.PaymentSettings{
		RazorpayEnabled:   true,
		RazorpayKeyID:     "rzp_test_key",
		RazorpayKeySecret: "super-secret",
		RazorpayBaseURL:   baseURL,
	}
}

func signRazorpay(secret, orderID, paymentID string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(orderID + "|" + paymentID))
	return hex.EncodeToString(mac.Sum(nil))
}

func TestRazorpayCreateIntent(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/payment/razorpay/create-order", r.URL.Path)
		assert.Equal(t, "Bearer super-secret", r.Header.Get("Authorization"))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"key_id":"rzp_test_key","order":{"id":"order_abc","amount":2700,"currency":"INR"}}`))
	}))
	defer srv.Close()

	g := NewRazorpay(razorpayTestConfig(srv.URL))
	intent, err := g.CreateIntent(context.Background(), 2700)
	require.NoError(t, err)

	assert.Equal(t, "order_abc", intent.GatewayOrderID)
	assert.Equal(t, int64(2700), intent.Amount)
	assert.Equal(t, "INR", intent.Currency)
	assert.Equal(t, "rzp_test_key", intent.ClientKey)
	assert.NotEmpty(t, intent.ID)
}

func TestRazorpayCreateIntentNon2xx(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	g := NewRazorpay(razorpayTestConfig(srv.URL))
	_, err := g.CreateIntent(context.Background(), 2700)

	var gwErr *domain.GatewayError
	require.ErrorAs(t, err, &gwErr)
	assert.Equal(t, domain.GatewayReasonCreateFailed, gwErr.Reason)
}

func TestRazorpayCreateIntentTimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	defer srv.Close()

	g := NewRazorpay(razorpayTestConfig(srv.URL))
	g.httpClient = &http.Client{Timeout: 20 * time.Millisecond}

	_, err := g.CreateIntent(context.Background(), 2700)

	var gwErr *domain.GatewayError
	require.ErrorAs(t, err, &gwErr)
	assert.Equal(t, domain.GatewayReasonTimeout, gwErr.Reason)
}

func TestRazorpayVerify(t *testing.T) {
	g := NewRazorpay(razorpayTestConfig(""))
	intent := &PaymentIntent{ID: "rcpt-1", GatewayOrderID: "order_abc"}

	valid := ClientProof{
		GatewayOrderID:   "order_abc",
		GatewayPaymentID: "pay_123",
		Signature:        signRazorpay("super-secret", "order_abc", "pay_123"),
	}

	ok, err := g.Verify(context.Background(), intent, valid)
	require.NoError(t, err)
	assert.True(t, ok)

	// Deterministic: same inputs, same answer on every call.
	for i := 0; i < 3; i++ {
		again, err := g.Verify(context.Background(), intent, valid)
		require.NoError(t, err)
		assert.True(t, again)
	}
}

func TestRazorpayVerifyMismatchIsFailureNotError(t *testing.T) {
	g := NewRazorpay(razorpayTestConfig(""))
	intent := &PaymentIntent{ID: "rcpt-1", GatewayOrderID: "order_abc"}

	tests := []struct {
		name  string
		proof ClientProof
	}{
		{
			name: "forged signature",
			proof: ClientProof{
				GatewayOrderID:   "order_abc",
				GatewayPaymentID: "pay_123",
				Signature:        "deadbeef",
			},
		},
		{
			name: "proof for a different gateway order",
			proof: ClientProof{
				GatewayOrderID:   "order_other",
				GatewayPaymentID: "pay_123",
				Signature:        signRazorpay("super-secret", "order_other", "pay_123"),
			},
		},
		{
			name: "signature made with wrong secret",
			proof: ClientProof{
				GatewayOrderID:   "order_abc",
				GatewayPaymentID: "pay_123",
				Signature:        signRazorpay("not-the-secret", "order_abc", "pay_123"),
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ok, err := g.Verify(context.Background(), intent, tt.proof)
			require.NoError(t, err)
			assert.False(t, ok)
		})
	}
}

func TestSelectGateway(t *testing.T) {
	cfg := settings.PaymentSettings{
		RazorpayEnabled:   true,
		RazorpayKeyID:     "k",
		RazorpayKeySecret: "s",
		CODEnabled:        true,
	}

	g, err := Select(MethodRazorpay, cfg)
	require.NoError(t, err)
	assert.Equal(t, "razorpay", g.Name())

	g, err = Select("", cfg)
	require.NoError(t, err)
	assert.Equal(t, "Cash on Delivery", g.Name())

	_, err = Select(MethodPhonePe, cfg)
	assert.Error(t, err)

	_, err = Select("barter", cfg)
	assert.Error(t, err)
}

func TestCashOnDeliveryVerifyAlwaysTrue(t *testing.T) {
	g := NewCashOnDelivery()

	intent, err := g.CreateIntent(context.Background(), 1000)
	require.NoError(t, err)
	assert.Nil(t, intent)

	ok, err := g.Verify(context.Background(), nil, ClientProof{})
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestWrapTransportErrClassifiesTimeout(t *testing.T) {
	err := wrapTransportErr("razorpay", domain.GatewayReasonCreateFailed, context.DeadlineExceeded)
	assert.Equal(t, domain.GatewayReasonTimeout, err.Reason)

	err = wrapTransportErr("razorpay", domain.GatewayReasonCreateFailed, errors.New("connection refused"))
	assert.Equal(t, domain.GatewayReasonCreateFailed, err.Reason)
}
