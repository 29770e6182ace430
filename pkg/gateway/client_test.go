package gateway

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/roomloop/flatmarket/config"
	"github.com/roomloop/flatmarket/pkg/circuit"
)

func testConfig(baseURL string) *config.Config {
	return &config.Config{
		Gateway: config.GatewayConfig{
			KeyID:     "rzp_test_key",
			KeySecret: "rzp_test_secret",
			BaseURL:   baseURL,
			Currency:  "INR",
			Timeout:   2 * time.Second,
		},
	}
}

func TestClient_CreateOrder(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/orders" {
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
		}

		user, pass, ok := r.BasicAuth()
		if !ok || user != "rzp_test_key" || pass != "rzp_test_secret" {
			t.Error("expected basic auth with gateway credentials")
		}

		var payload map[string]interface{}
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			t.Fatalf("decode payload: %v", err)
		}
		if payload["amount"] != float64(29900) {
			t.Errorf("expected amount 29900, got %v", payload["amount"])
		}
		if payload["currency"] != "INR" {
			t.Errorf("expected currency INR, got %v", payload["currency"])
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(Order{
			ID:       "order_ABC123",
			Amount:   29900,
			Currency: "INR",
			Receipt:  payload["receipt"].(string),
			Status:   "created",
		})
	}))
	defer server.Close()

	breaker := circuit.NewBreaker("gateway", circuit.DefaultConfig(), nil)
	client := NewClient(testConfig(server.URL), breaker)

	order, err := client.CreateOrder(context.Background(), CreateOrderParams{
		Amount:  29900,
		Receipt: "rcpt_1",
		Notes:   map[string]string{"subscription_type": "tenant"},
	})
	if err != nil {
		t.Fatalf("CreateOrder failed: %v", err)
	}

	if order.ID != "order_ABC123" {
		t.Errorf("expected order ID order_ABC123, got %s", order.ID)
	}
	if order.Status != "created" {
		t.Errorf("expected status created, got %s", order.Status)
	}
}

func TestClient_CreateOrder_GatewayError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	breaker := circuit.NewBreaker("gateway", circuit.DefaultConfig(), nil)
	client := NewClient(testConfig(server.URL), breaker)

	_, err := client.CreateOrder(context.Background(), CreateOrderParams{
		Amount:  49900,
		Receipt: "rcpt_2",
	})
	if err == nil {
		t.Fatal("expected error from gateway failure")
	}
}

func TestClient_CreateOrder_CircuitOpens(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	breaker := circuit.NewBreaker("gateway", circuit.Config{
		Threshold:        2,
		Timeout:          time.Hour,
		SuccessThreshold: 1,
		MaxHalfOpen:      1,
	}, nil)
	client := NewClient(testConfig(server.URL), breaker)

	for i := 0; i < 2; i++ {
		client.CreateOrder(context.Background(), CreateOrderParams{Amount: 100, Receipt: "r"})
	}

	_, err := client.CreateOrder(context.Background(), CreateOrderParams{Amount: 100, Receipt: "r"})
	if err != circuit.ErrCircuitOpen {
		t.Errorf("expected ErrCircuitOpen after repeated failures, got %v", err)
	}
}
