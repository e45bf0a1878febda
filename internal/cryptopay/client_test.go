package cryptopay

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestCreateInvoice_OK(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Fatalf("method = %s, want POST", r.Method)
		}
		if r.URL.Path != "/createInvoice" {
			t.Fatalf("path = %s, want /createInvoice", r.URL.Path)
		}
		if got := r.Header.Get("Crypto-Pay-API-Token"); got != "test-token" {
			t.Fatalf("token header = %q", got)
		}

		var req createInvoiceRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		if req.Amount != 20 || req.Asset != "USDT" {
			t.Fatalf("unexpected request: %+v", req)
		}
		if req.PaidBtnName != "viewItem" || req.PaidBtnURL != "https://t.me/test_bot" {
			t.Fatalf("unexpected paid button fields: %+v", req)
		}

		w.Header().Set("Content-Type", "application/json")
		resp := createInvoiceResponse{Result: Invoice{InvoiceID: 123, Status: StatusActive, PayURL: "https://pay.test/123"}}
		if err := json.NewEncoder(w).Encode(resp); err != nil {
			t.Fatalf("encode: %v", err)
		}
	}))
	defer ts.Close()

	client := NewClient(ts.URL, "test-token", "https://t.me/test_bot")

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	invoice, err := client.CreateInvoice(ctx, 20, "Оплата заказа #1", "hidden", "42")
	if err != nil {
		t.Fatalf("CreateInvoice error: %v", err)
	}
	if invoice.InvoiceID != 123 || invoice.PayURL != "https://pay.test/123" {
		t.Fatalf("unexpected invoice: %+v", invoice)
	}
}

func TestCreateInvoice_Non2xx(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer ts.Close()

	client := NewClient(ts.URL, "bad-token", "https://t.me/test_bot")

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	_, err := client.CreateInvoice(ctx, 20, "desc", "hidden", "42")
	if !errors.Is(err, ErrProvider) {
		t.Fatalf("expected ErrProvider, got %v", err)
	}
}

func TestCreateInvoice_MalformedBody(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("{not json"))
	}))
	defer ts.Close()

	client := NewClient(ts.URL, "test-token", "https://t.me/test_bot")

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	_, err := client.CreateInvoice(ctx, 20, "desc", "hidden", "42")
	if !errors.Is(err, ErrProvider) {
		t.Fatalf("expected ErrProvider, got %v", err)
	}
}

func TestGetInvoice_Paid(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			t.Fatalf("method = %s, want GET", r.Method)
		}
		if r.URL.Path != "/getInvoices" {
			t.Fatalf("path = %s, want /getInvoices", r.URL.Path)
		}
		if got := r.URL.Query().Get("invoice_ids"); got != "123" {
			t.Fatalf("invoice_ids = %q, want 123", got)
		}

		w.Header().Set("Content-Type", "application/json")
		var resp getInvoicesResponse
		resp.Result.Items = []Invoice{{InvoiceID: 123, Status: StatusPaid}}
		if err := json.NewEncoder(w).Encode(resp); err != nil {
			t.Fatalf("encode: %v", err)
		}
	}))
	defer ts.Close()

	client := NewClient(ts.URL, "test-token", "https://t.me/test_bot")

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	invoice, err := client.GetInvoice(ctx, 123)
	if err != nil {
		t.Fatalf("GetInvoice error: %v", err)
	}
	if invoice.Status != StatusPaid {
		t.Fatalf("status = %q, want %q", invoice.Status, StatusPaid)
	}
}

func TestGetInvoice_EmptyItems(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"result":{"items":[]}}`))
	}))
	defer ts.Close()

	client := NewClient(ts.URL, "test-token", "https://t.me/test_bot")

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	_, err := client.GetInvoice(ctx, 999)
	if !errors.Is(err, ErrProvider) {
		t.Fatalf("expected ErrProvider for empty items, got %v", err)
	}
}
