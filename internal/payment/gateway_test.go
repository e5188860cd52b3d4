package payment

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/BryanTechnicalWriting/busticketsystem/internal/app"
)

func TestGateway_Refund(t *testing.T) {
	t.Parallel()

	t.Run("successful refund", func(t *testing.T) {
		var gotAuth string
		var gotBody map[string]any
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodPost || r.URL.Path != "/refunds" {
				t.Fatalf("unexpected request %s %s", r.Method, r.URL.Path)
			}
			gotAuth = r.Header.Get("Authorization")
			if err := json.NewDecoder(r.Body).Decode(&gotBody); err != nil {
				t.Fatalf("decode request: %v", err)
			}
			_ = json.NewEncoder(w).Encode(map[string]any{"success": true, "refund_id": "ref-456"})
		}))
		defer srv.Close()

		gw := NewGateway(srv.URL, "secret-key", 5*time.Second)
		res, err := gw.Refund(context.Background(), app.RefundRequest{
			PaymentReference: "pay-123",
			Amount:           350,
			Reason:           "booking cancellation",
		})
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if !res.Success || res.RefundReference != "ref-456" {
			t.Fatalf("unexpected result %+v", res)
		}
		if gotAuth != "Bearer secret-key" {
			t.Fatalf("expected bearer auth, got %q", gotAuth)
		}
		if gotBody["payment_id"] != "pay-123" || gotBody["currency"] != "NAD" {
			t.Fatalf("unexpected request body %v", gotBody)
		}
	})

	t.Run("gateway decline", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_ = json.NewEncoder(w).Encode(map[string]any{"success": false, "error": "already refunded"})
		}))
		defer srv.Close()

		gw := NewGateway(srv.URL, "secret-key", 5*time.Second)
		res, err := gw.Refund(context.Background(), app.RefundRequest{PaymentReference: "pay-123", Amount: 350})
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if res.Success {
			t.Fatalf("expected decline, got %+v", res)
		}
		if res.Error != "already refunded" {
			t.Fatalf("expected decline reason, got %q", res.Error)
		}
	})

	t.Run("non-2xx status", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
		}))
		defer srv.Close()

		gw := NewGateway(srv.URL, "secret-key", 5*time.Second)
		if _, err := gw.Refund(context.Background(), app.RefundRequest{PaymentReference: "pay-123", Amount: 350}); err == nil {
			t.Fatalf("expected error on 502")
		}
	})

	t.Run("context timeout", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			time.Sleep(200 * time.Millisecond)
		}))
		defer srv.Close()

		gw := NewGateway(srv.URL, "secret-key", 5*time.Second)
		ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
		defer cancel()
		if _, err := gw.Refund(ctx, app.RefundRequest{PaymentReference: "pay-123", Amount: 350}); err == nil {
			t.Fatalf("expected error on timeout")
		}
	})
}
