package notify

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"storefront/internal/settings"
)

const textlocalDefaultBaseURL = "https://api.textlocal.in"

type Textlocal struct {
	apiKey     string
	sender     string
	baseURL    string
	httpClient *http.Client
}

func NewTextlocal(creds settings.ProviderCredentials) *Textlocal {
	return &Textlocal{
		apiKey:     creds.TextlocalAPIKey,
		sender:     creds.TextlocalSender,
		baseURL:    textlocalDefaultBaseURL,
		httpClient: newTransportClient(),
	}
}

func (t *Textlocal) Name() string { return "textlocal" }

func (t *Textlocal) Send(ctx context.Context, phone, message string) error {
	form := url.Values{}
	form.Set("apikey", t.apiKey)
	form.Set("sender", t.sender)
	form.Set("numbers", strings.TrimPrefix(phone, "+"))
	form.Set("message", message)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.baseURL+"/send/", strings.NewReader(form.Encode()))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := t.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("textlocal returned status %d", resp.StatusCode)
	}
	return nil
}
