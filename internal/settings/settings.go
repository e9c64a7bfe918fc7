// Package settings holds the operator-editable configuration the order
// pipeline reads: notification channels, templates, and which payment
// gateways are enabled. Settings are validated at the read boundary so
// malformed configuration is rejected before it reaches template
// rendering or a gateway call.
package settings

import (
	"context"
	"fmt"
)

type Provider string

const (
	ProviderTwilio    Provider = "twilio"
	ProviderMSG91     Provider = "msg91"
	ProviderTextlocal Provider = "textlocal"
	ProviderWebhook   Provider = "webhook"
)

func (p Provider) Valid() bool {
	switch p {
	case ProviderTwilio, ProviderMSG91, ProviderTextlocal, ProviderWebhook:
		return true
	}
	return false
}

// Templates are per-event message bodies with {variable} placeholders.
type Templates struct {
	Placed     string `json:"placed"`
	Shipped    string `json:"shipped"`
	Delivered  string `json:"delivered"`
	Cancelled  string `json:"cancelled"`
	AdminAlert string `json:"adminAlert"`
}

// ProviderCredentials carries the secrets for every supported transport.
// Only the fields for the selected providers need to be set.
type ProviderCredentials struct {
	TwilioAccountSID string `json:"twilioAccountSid"`
	TwilioAuthToken  string `json:"twilioAuthToken"`
	TwilioFrom       string `json:"twilioFrom"`
	MSG91AuthKey     string `json:"msg91AuthKey"`
	MSG91Sender      string `json:"msg91Sender"`
	TextlocalAPIKey  string `json:"textlocalApiKey"`
	TextlocalSender  string `json:"textlocalSender"`
	WebhookURL       string `json:"webhookUrl"`
}

type NotificationSettings struct {
	SMSEnabled           bool                `json:"smsEnabled"`
	WhatsAppEnabled      bool                `json:"whatsappEnabled"`
	NotifyOnNewOrder     bool                `json:"notifyOnNewOrder"`
	NotifyOnStatusChange bool                `json:"notifyOnStatusChange"`
	NotifyAdminOnOrder   bool                `json:"notifyAdminOnOrder"`
	SMSProvider          Provider            `json:"smsProvider"`
	WhatsAppProvider     Provider            `json:"whatsappProvider"`
	Credentials          ProviderCredentials `json:"credentials"`
	AdminPhone           string              `json:"adminPhone"`
	StoreName            string              `json:"storeName"`
	TrackingURL          string              `json:"trackingUrl"`
	Templates            Templates           `json:"templates"`
}

// PaymentSettings lists the enabled gateways and their server-held
// credentials. Secrets never leave the process.
type PaymentSettings struct {
	RazorpayEnabled   bool   `json:"razorpayEnabled"`
	RazorpayKeyID     string `json:"razorpayKeyId"`
	RazorpayKeySecret string `json:"razorpayKeySecret"`
	RazorpayBaseURL   string `json:"razorpayBaseUrl"`

	PhonePeEnabled    bool   `json:"phonepeEnabled"`
	PhonePeMerchantID string `json:"phonepeMerchantId"`
	PhonePeSaltKey    string `json:"phonepeSaltKey"`
	PhonePeBaseURL    string `json:"phonepeBaseUrl"`

	CODEnabled bool `json:"codEnabled"`
}

// Snapshot is one consistent read of all settings. Callers load a fresh
// snapshot per operation so operator changes take effect on the next
// order, never mid-flight.
type Snapshot struct {
	Notifications NotificationSettings `json:"notifications"`
	Payments      PaymentSettings      `json:"payments"`
}

// Source produces settings snapshots.
type Source interface {
	Load(ctx context.Context) (*Snapshot, error)
}

// DefaultTemplates are used when the operator has not customized a
// message body.
func DefaultTemplates() Templates {
	return Templates{
		Placed:     "Hi {customerName}, your {storeName} order {orderId} for Rs.{amount} has been placed.",
		Shipped:    "Hi {customerName}, order {orderId} has shipped. Track it here: {trackingUrl}",
		Delivered:  "Hi {customerName}, order {orderId} has been delivered. Thank you for shopping with {storeName}!",
		Cancelled:  "Hi {customerName}, order {orderId} has been cancelled.",
		AdminAlert: "New order {orderId} for Rs.{amount} from {customerName} ({customerPhone}).",
	}
}

func (t *Templates) applyDefaults() {
	d := DefaultTemplates()
	if t.Placed == "" {
		t.Placed = d.Placed
	}
	if t.Shipped == "" {
		t.Shipped = d.Shipped
	}
	if t.Delivered == "" {
		t.Delivered = d.Delivered
	}
	if t.Cancelled == "" {
		t.Cancelled = d.Cancelled
	}
	if t.AdminAlert == "" {
		t.AdminAlert = d.AdminAlert
	}
}

func (n *NotificationSettings) validate() error {
	if n.SMSEnabled {
		if !n.SMSProvider.Valid() {
			return fmt.Errorf("settings: unknown sms provider %q", n.SMSProvider)
		}
		if err := n.Credentials.validateFor(n.SMSProvider); err != nil {
			return err
		}
	}
	if n.WhatsAppEnabled {
		if n.WhatsAppProvider != ProviderTwilio && n.WhatsAppProvider != ProviderWebhook {
			return fmt.Errorf("settings: whatsapp provider must be twilio or webhook, got %q", n.WhatsAppProvider)
		}
		if err := n.Credentials.validateFor(n.WhatsAppProvider); err != nil {
			return err
		}
	}
	if n.NotifyAdminOnOrder && n.AdminPhone == "" {
		return fmt.Errorf("settings: admin notifications enabled but no admin phone configured")
	}
	n.Templates.applyDefaults()
	if n.StoreName == "" {
		n.StoreName = "our store"
	}
	return nil
}

func (c ProviderCredentials) validateFor(p Provider) error {
	switch p {
	case ProviderTwilio:
		if c.TwilioAccountSID == "" || c.TwilioAuthToken == "" || c.TwilioFrom == "" {
			return fmt.Errorf("settings: twilio enabled but credentials incomplete")
		}
	case ProviderMSG91:
		if c.MSG91AuthKey == "" || c.MSG91Sender == "" {
			return fmt.Errorf("settings: msg91 enabled but credentials incomplete")
		}
	case ProviderTextlocal:
		if c.TextlocalAPIKey == "" || c.TextlocalSender == "" {
			return fmt.Errorf("settings: textlocal enabled but credentials incomplete")
		}
	case ProviderWebhook:
		if c.WebhookURL == "" {
			return fmt.Errorf("settings: webhook enabled but no url configured")
		}
	}
	return nil
}

func (p *PaymentSettings) validate() error {
	if p.RazorpayEnabled && (p.RazorpayKeyID == "" || p.RazorpayKeySecret == "") {
		return fmt.Errorf("settings: razorpay enabled but credentials incomplete")
	}
	if p.PhonePeEnabled && (p.PhonePeMerchantID == "" || p.PhonePeSaltKey == "") {
		return fmt.Errorf("settings: phonepe enabled but credentials incomplete")
	}
	if !p.RazorpayEnabled && !p.PhonePeEnabled {
		// Physical settlement stays available even with no online gateway.
		p.CODEnabled = true
	}
	return nil
}

// Validate checks the whole snapshot and fills defaults. Called by every
// Source before the snapshot is handed out.
func (s *Snapshot) Validate() error {
	if err := s.Notifications.validate(); err != nil {
		return err
	}
	return s.Payments.validate()
}
