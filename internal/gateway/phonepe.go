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

const phonepeDefaultBaseURL = "https://api.phonepe.com"

// PhonePe is the second, toggleable gateway. Same wire contract as
// Razorpay; its checksum scheme is a salted SHA-256 with a key-index
// suffix. The local checksum check is backed by a status call to the
// gateway so a forged-but-colliding proof still cannot settle.
type PhonePe struct {
	merchantID string
	saltKey    string
	baseURL    string
	httpClient *http.Client
}

func NewPhonePe(cfg settings.PaymentSettings) *PhonePe {
	baseURL := cfg.PhonePeBaseURL
	if baseURL == "" {
		baseURL = phonepeDefaultBaseURL
	}
	return &PhonePe{
		merchantID: cfg.PhonePeMerchantID,
		saltKey:    cfg.PhonePeSaltKey,
		baseURL:    baseURL,
		httpClient: newHTTPClient(),
	}
}

func (g *PhonePe) Name() string { return "phonepe" }

type phonepeCreateRequest struct {
	MerchantID string `json:"merchantId"`
	Amount     int64  `json:"amount"`
	Currency   string `json:"currency"`
	Reference  string `json:"reference"`
}

type phonepeCreateResponse struct {
	KeyID string `json:"key_id"`
	Order struct {
		ID       string `json:"id"`
		Amount   int64  `json:"amount"`
		Currency string `json:"currency"`
	} `json:"order"`
}

func (g *PhonePe) CreateIntent(ctx context.Context, amountMinorUnits int64) (*PaymentIntent, error) {
	reference := uuid.NewString()
	body, err := json.Marshal(phonepeCreateRequest{
		MerchantID: g.merchantID,
		Amount:     amountMinorUnits,
		Currency:   "INR",
		Reference:  reference,
	})
	if err != nil {
		return nil, &domain.GatewayError{Gateway: g.Name(), Reason: domain.GatewayReasonCreateFailed, Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		g.baseURL+"/payment/phonepe/create-order", bytes.NewReader(body))
	if err != nil {
		return nil, &domain.GatewayError{Gateway: g.Name(), Reason: domain.GatewayReasonCreateFailed, Err: err}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-VERIFY", g.checksum(body))

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

	var out phonepeCreateResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, &domain.GatewayError{Gateway: g.Name(), Reason: domain.GatewayReasonCreateFailed, Err: err}
	}

	return &PaymentIntent{
		ID:             reference,
		GatewayOrderID: out.Order.ID,
		Amount:         out.Order.Amount,
		Currency:       out.Order.Currency,
		ClientKey:      out.KeyID,
	}, nil
}

type phonepeVerifyRequest struct {
	GatewayOrderID   string `json:"gatewayOrderId"`
	GatewayPaymentID string `json:"gatewayPaymentId"`
	Signature        string `json:"signature"`
}

type phonepeVerifyResponse struct {
	Success bool `json:"success"`
}

// Verify checks the proof checksum locally in constant time, then
// confirms settlement with the gateway's status endpoint. A checksum
// mismatch never reaches the network.
func (g *PhonePe) Verify(ctx context.Context, intent *PaymentIntent, proof ClientProof) (bool, error) {
	if intent == nil || proof.GatewayOrderID != intent.GatewayOrderID {
		return false, nil
	}

	expected := g.proofChecksum(proof.GatewayOrderID, proof.GatewayPaymentID)
	if !hmac.Equal([]byte(expected), []byte(proof.Signature)) {
		return false, nil
	}

	body, err := json.Marshal(phonepeVerifyRequest{
		GatewayOrderID:   proof.GatewayOrderID,
		GatewayPaymentID: proof.GatewayPaymentID,
		Signature:        proof.Signature,
	})
	if err != nil {
		return false, &domain.GatewayError{Gateway: g.Name(), Reason: domain.GatewayReasonVerifyFailed, Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		g.baseURL+"/payment/phonepe/verify", bytes.NewReader(body))
	if err != nil {
		return false, &domain.GatewayError{Gateway: g.Name(), Reason: domain.GatewayReasonVerifyFailed, Err: err}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-VERIFY", g.checksum(body))

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return false, wrapTransportErr(g.Name(), domain.GatewayReasonVerifyFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return false, &domain.GatewayError{
			Gateway: g.Name(),
			Reason:  domain.GatewayReasonVerifyFailed,
			Err:     fmt.Errorf("unexpected status %d", resp.StatusCode),
		}
	}

	var out phonepeVerifyResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return false, &domain.GatewayError{Gateway: g.Name(), Reason: domain.GatewayReasonVerifyFailed, Err: err}
	}
	return out.Success, nil
}

func (g *PhonePe) checksum(payload []byte) string {
	sum := sha256.Sum256(append(payload, []byte(g.saltKey)...))
	return hex.EncodeToString(sum[:]) + "###1"
}

func (g *PhonePe) proofChecksum(orderID, paymentID string) string {
	sum := sha256.Sum256([]byte(orderID + "|" + paymentID + g.saltKey))
	return hex.EncodeToString(sum[:]) + "###1"
}
