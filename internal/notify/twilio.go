package notify

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"storefront/internal/settings"
)

const twilioDefaultBaseURL = "https://api.twilio.com"

// Twilio sends through the Twilio Messages API. With whatsapp set it
// addresses the WhatsApp channel by prefixing both endpoints.
type Twilio struct {
	accountSID string
	authToken  string
	from       string
	whatsapp   bool
	baseURL    string
	httpClient *http.Client
}

func NewTwilio(creds settings.ProviderCredentials, whatsapp bool) *Twilio {
	return &Twilio{
		accountSID: creds.TwilioAccountSID,
		authToken:  creds.TwilioAuthToken,
		from:       creds.TwilioFrom,
		whatsapp:   whatsapp,
		baseURL:    twilioDefaultBaseURL,
		httpClient: newTransportClient(),
	}
}

func (t *Twilio) Name() string {
	if t.whatsapp {
		return "twilio-whatsapp"
	}
	return "twilio"
}

func (t *Twilio) Send(ctx context.Context, phone, message string) error {
	from, to := t.from, phone
	if t.whatsapp {
		from = "whatsapp:" + from
		to = "whatsapp:" + to
	}

	form := url.Values{}
	form.Set("From", from)
	form.Set("To", to)
	form.Set("Body", message)

	endpoint := fmt.Sprintf("%s/2010-04-01/Accounts/%s/Messages.json", t.baseURL, t.accountSID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.SetBasicAuth(t.accountSID, t.authToken)

	resp, err := t.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("twilio returned status %d", resp.StatusCode)
	}
	return nil
}
