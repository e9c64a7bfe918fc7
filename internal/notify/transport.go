package notify

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"storefront/internal/settings"
)

// Transport delivers one rendered message to one recipient. Adding a
// provider means adding a type, not editing a switch at the call sites.
type Transport interface {
	Name() string
	Send(ctx context.Context, phone, message string) error
}

const transportTimeout = 10 * time.Second

func newTransportClient() *http.Client {
	return &http.Client{Timeout: transportTimeout}
}

// NewSMSTransport builds the transport for the configured SMS provider.
func NewSMSTransport(n settings.NotificationSettings) (Transport, error) {
	switch n.SMSProvider {
	case settings.ProviderTwilio:
		return NewTwilio(n.Credentials, false), nil
	case settings.ProviderMSG91:
		return NewMSG91(n.Credentials), nil
	case settings.ProviderTextlocal:
		return NewTextlocal(n.Credentials), nil
	case settings.ProviderWebhook:
		return NewWebhook(n.Credentials, "sms"), nil
	default:
		return nil, fmt.Errorf("notify: unknown sms provider %q", n.SMSProvider)
	}
}

// NewWhatsAppTransport builds the WhatsApp channel: Twilio's WhatsApp
// API or a generic webhook.
func NewWhatsAppTransport(n settings.NotificationSettings) (Transport, error) {
	switch n.WhatsAppProvider {
	case settings.ProviderTwilio:
		return NewTwilio(n.Credentials, true), nil
	case settings.ProviderWebhook:
		return NewWebhook(n.Credentials, "whatsapp"), nil
	default:
		return nil, fmt.Errorf("notify: unknown whatsapp provider %q", n.WhatsAppProvider)
	}
}
