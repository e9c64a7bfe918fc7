package gateway

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/google/uuid"

	"storefront/internal/domain"
	"storefront/internal/settings"
)

const razorpayDefaultBaseURL = "https://api.razorpay.com"

// Razorpay is the live gateway integration. Intent creation goes over
// the wire; proof verification recomputes the HMAC-SHA256 signature
// locally with the server-held key secret.
type Razorpay struct {
	keyID      string
	keySecret  string
	baseURL    string
	httpClient *http.Client
}

func NewRazorpay(cfg settings.PaymentSettings) *Razorpay {
	baseURL := cfg.RazorpayBaseURL
	if baseURL == "" {
		baseURL = razorpayDefaultBaseURL
	}
	return &Razorpay{
		keyID:      cfg.RazorpayKeyID,
		keySecret:  cfg.RazorpayKeySecret,
		baseURL:    baseURL,
		httpClient: newHTTPClient(),
	}
}

func (g *Razorpay) Name() string { return "razorpay" }

type razorpayCreateRequest struct {
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
	Receipt  string `json:"receipt"`
}

type razorpayCreateResponse struct {
	KeyID string `json:"key_id"`
	Order struct {
		ID       string `json:"id"`
		Amount   int64  `json:"amount"`
		Currency string `json:"currency"`
	} `json:"order"`
}

func (g *Razorpay) CreateIntent(ctx context.Context, amountMinorUnits int64) (*PaymentIntent, error) {
	receipt := uuid.NewString()
	body, err := json.Marshal(razorpayCreateRequest{
		Amount:   amountMinorUnits,
		Currency: "INR",
		Receipt:  receipt,
	})
	if err != nil {
		return nil, &domain.GatewayError{Gateway: g.Name(), Reason: domain.GatewayReasonCreateFailed, Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		g.baseURL+"/payment/razorpay/create-order", bytes.NewReader(body))
	if err != nil {
		return nil, &domain.GatewayError{Gateway: g.Name(), Reason: domain.GatewayReasonCreateFailed, Err: err}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+g.keySecret)

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return nil, wrapTransportErr(g.Name(), domain.GatewayReasonCreateFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &domain.GatewayError{
			Gateway: g.Name(),
			Reason:  domain.GatewayReasonCreateFailed,
			Err:     fmt.Errorf("unexpected status %d", resp.StatusCode),
		}
	}

	var out razorpayCreateResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, &domain.GatewayError{Gateway: g.Name(), Reason: domain.GatewayReasonCreateFailed, Err: err}
	}

	return &PaymentIntent{
		ID:             receipt,
		GatewayOrderID: out.Order.ID,
		Amount:         out.Order.Amount,
		Currency:       out.Order.Currency,
		ClientKey:      out.KeyID,
	}, nil
}

// Verify recomputes the signature the gateway produced over
// "gatewayOrderId|gatewayPaymentId" and compares it in constant time.
// A mismatch is a verification failure, not an error.
func (g *Razorpay) Verify(ctx context.Context, intent *PaymentIntent, proof ClientProof) (bool, error) {
	if intent == nil || proof.GatewayOrderID != intent.GatewayOrderID {
		return false, nil
	}

	mac := hmac.New(sha256.New, []byte(g.keySecret))
	mac.Write([]byte(proof.GatewayOrderID + "|" + proof.GatewayPaymentID))
	expected := hex.EncodeToString(mac.Sum(nil))

	return hmac.Equal([]byte(expected), []byte(proof.Signature)), nil
}
