package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"storefront/internal/settings"
)

// Webhook posts the message to an operator-configured URL. Used for
// providers without a first-class integration.
type Webhook struct {
	url        string
	channel    string
	httpClient *http.Client
}

func NewWebhook(creds settings.ProviderCredentials, channel string) *Webhook {
	return &Webhook{
		url:        creds.WebhookURL,
		channel:    channel,
		httpClient: newTransportClient(),
	}
}

func (t *Webhook) Name() string { return "webhook-" + t.channel }

type webhookPayload struct {
	Channel string `json:"channel"`
	To      string `json:"to"`
	Message string `json:"message"`
}

func (t *Webhook) Send(ctx context.Context, phone, message string) error {
	body, err := json.Marshal(webhookPayload{Channel: t.channel, To: phone, Message: message})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := t.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("webhook returned status %d", resp.StatusCode)
	}
	return nil
}
