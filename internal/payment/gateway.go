// Package payment holds the HTTP client for the external payment provider's
// refund API. The booking engine calls it through app.RefundGateway and only
// records the outcome; charging happens elsewhere.
package payment

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/BryanTechnicalWriting/busticketsystem/internal/app"
)

const defaultRequestTimeout = 30 * time.Second

type Gateway struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

func NewGateway(baseURL, apiKey string, timeout time.Duration) *Gateway {
	if timeout <= 0 {
		timeout = defaultRequestTimeout
	}
	return &Gateway{
		baseURL: baseURL,
		apiKey:  apiKey,
		client:  &http.Client{Timeout: timeout},
	}
}

type refundRequest struct {
	PaymentID string `json:"payment_id"`
	Amount    int    `json:"amount"`
	Currency  string `json:"currency"`
	Reason    string `json:"reason,omitempty"`
}

type refundResponse struct {
	Success  bool   `json:"success"`
	RefundID string `json:"refund_id"`
	Error    string `json:"error"`
}

// Refund posts a refund request for a captured payment. A timeout or
// transport error returns an error so the caller treats it as a failed
// refund; a gateway decline comes back as Success=false.
func (g *Gateway) Refund(ctx context.Context, in app.RefundRequest) (app.RefundResult, error) {
	body, err := json.Marshal(refundRequest{
		PaymentID: in.PaymentReference,
		Amount:    in.Amount,
		Currency:  "NAD",
		Reason:    in.Reason,
	})
	if err != nil {
		return app.RefundResult{}, fmt.Errorf("encode refund request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.baseURL+"/refunds", bytes.NewReader(body))
	if err != nil {
		return app.RefundResult{}, fmt.Errorf("build refund request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+g.apiKey)

	resp, err := g.client.Do(req)
	if err != nil {
		return app.RefundResult{}, fmt.Errorf("refund request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return app.RefundResult{}, fmt.Errorf("refund request: unexpected status %d", resp.StatusCode)
	}

	var out refundResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return app.RefundResult{}, fmt.Errorf("decode refund response: %w", err)
	}
	return app.RefundResult{
		Success:         out.Success,
		RefundReference: out.RefundID,
		Error:           out.Error,
	}, nil
}
