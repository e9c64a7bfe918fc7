package notify

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storefront/internal/settings"
)

func TestTwilioSend(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "/2010-04-01/Accounts/AC1/Messages.json", r.URL.Path)
		assert.Equal(t, "whatsapp:+14150000000", r.PostForm.Get("From"))
		assert.Equal(t, "whatsapp:+919876543210", r.PostForm.Get("To"))
		assert.Equal(t, "hello", r.PostForm.Get("Body"))

		user, pass, ok := r.BasicAuth()
		assert.True(t, ok)
		assert.Equal(t, "AC1", user)
		assert.Equal(t, "token", pass)

		w.WriteHeader(http.StatusCreated)
	}))
	defer srv.Close()

	tr := NewTwilio(settings.ProviderCredentials{
		TwilioAccountSID: "AC1",
		TwilioAuthToken:  "token",
		TwilioFrom:       "+14150000000",
	}, true)
	tr.baseURL = srv.URL

	assert.NoError(t, tr.Send(context.Background(), "+919876543210", "hello"))
}

func TestTwilioSendNon2xx(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	tr := NewTwilio(settings.ProviderCredentials{TwilioAccountSID: "AC1", TwilioAuthToken: "bad", TwilioFrom: "+1"}, false)
	tr.baseURL = srv.URL

	assert.Error(t, tr.Send(context.Background(), "+919876543210", "hello"))
}

func TestWebhookSend(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var p webhookPayload
		require.NoError(t, json.NewDecoder(r.Body).Decode(&p))
		assert.Equal(t, "sms", p.Channel)
		assert.Equal(t, "+919876543210", p.To)
		assert.Equal(t, "order placed", p.Message)
	}))
	defer srv.Close()

	tr := NewWebhook(settings.ProviderCredentials{WebhookURL: srv.URL}, "sms")
	assert.NoError(t, tr.Send(context.Background(), "+919876543210", "order placed"))
}

func TestMSG91SendStripsPlusPrefix(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "k", r.Header.Get("authkey"))
		var req msg91Request
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.Len(t, req.SMS, 1)
		assert.Equal(t, []string{"919876543210"}, req.SMS[0].To)
	}))
	defer srv.Close()

	tr := NewMSG91(settings.ProviderCredentials{MSG91AuthKey: "k", MSG91Sender: "STORE"})
	tr.baseURL = srv.URL

	assert.NoError(t, tr.Send(context.Background(), "+919876543210", "hi"))
}

func TestSMSTransportFactory(t *testing.T) {
	n := settings.NotificationSettings{
		SMSProvider: settings.ProviderTextlocal,
		Credentials: settings.ProviderCredentials{TextlocalAPIKey: "k", TextlocalSender: "S"},
	}
	tr, err := NewSMSTransport(n)
	require.NoError(t, err)
	assert.Equal(t, "textlocal", tr.Name())

	n.SMSProvider = "unknown"
	_, err = NewSMSTransport(n)
	assert.Error(t, err)
}
