package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"storefront/internal/settings"
)

const msg91DefaultBaseURL = "https://api.msg91.com"

type MSG91 struct {
	authKey    string
	sender     string
	baseURL    string
	httpClient *http.Client
}

func NewMSG91(creds settings.ProviderCredentials) *MSG91 {
	return &MSG91{
		authKey:    creds.MSG91AuthKey,
		sender:     creds.MSG91Sender,
		baseURL:    msg91DefaultBaseURL,
		httpClient: newTransportClient(),
	}
}

func (t *MSG91) Name() string { return "msg91" }

type msg91Request struct {
	Sender string       `json:"sender"`
	Route  string       `json:"route"`
	SMS    []msg91Batch `json:"sms"`
}

type msg91Batch struct {
	Message string   `json:"message"`
	To      []string `json:"to"`
}

func (t *MSG91) Send(ctx context.Context, phone, message string) error {
	body, err := json.Marshal(msg91Request{
		Sender: t.sender,
		Route:  "4", // transactional route
		SMS:    []msg91Batch{{Message: message, To: []string{strings.TrimPrefix(phone, "+")}}},
	})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.baseURL+"/api/v2/sendsms", bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("authkey", t.authKey)

	resp, err := t.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("msg91 returned status %d", resp.StatusCode)
	}
	return nil
}
