package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/roomloop/flatmarket/config"
	"github.com/roomloop/flatmarket/pkg/circuit"
	"github.com/roomloop/flatmarket/pkg/logger"
)

// Order is the gateway's representation of a payment order.
type Order struct {
	ID       string `json:"id"`
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
	Receipt  string `json:"receipt"`
	Status   string `json:"status"`
}

// CreateOrderParams describes the order to open on the gateway.
type CreateOrderParams struct {
	Amount   int64             // smallest currency unit
	Currency string
	Receipt  string
	Notes    map[string]string
}

// Client talks to the payment gateway's Orders API. All calls go through a
// circuit breaker so a gateway outage fails fast.
type Client struct {
	baseURL    string
	keyID      string
	keySecret  string
	currency   string
	httpClient *http.Client
	breaker    *circuit.Breaker
}

func NewClient(cfg *config.Config, breaker *circuit.Breaker) *Client {
	return &Client{
		baseURL:   cfg.Gateway.BaseURL,
		keyID:     cfg.Gateway.KeyID,
		keySecret: cfg.Gateway.KeySecret,
		currency:  cfg.Gateway.Currency,
		httpClient: &http.Client{
			Timeout: cfg.Gateway.Timeout,
		},
		breaker: breaker,
	}
}

// KeyID returns the public key identifier clients embed in their checkout.
func (c *Client) KeyID() string {
	return c.keyID
}

// CreateOrder opens a payment order on the gateway.
func (c *Client) CreateOrder(ctx context.Context, params CreateOrderParams) (*Order, error) {
	if params.Currency == "" {
		params.Currency = c.currency
	}

	var order Order
	err := c.breaker.Execute(func() error {
		return c.doCreateOrder(ctx, params, &order)
	})
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func (c *Client) doCreateOrder(ctx context.Context, params CreateOrderParams, out *Order) error {
	log := logger.GetLogger().With(
		zap.String("operation", "gateway_create_order"),
		zap.String("receipt", params.Receipt),
	)

	payload := map[string]interface{}{
		"amount":   params.Amount,
		"currency": params.Currency,
		"receipt":  params.Receipt,
	}
	if len(params.Notes) > 0 {
		payload["notes"] = params.Notes
	}

	bodyBytes, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal order payload: %w", err)
	}

	url := c.baseURL + "/orders"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBuffer(bodyBytes))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.SetBasicAuth(c.keyID, c.keySecret)
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		log.Error("Gateway request failed",
			zap.Error(err),
			zap.String("url", url),
		)
		return fmt.Errorf("gateway request: %w", err)
	}
	defer resp.Body.Close()

	respData, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read gateway response: %w", err)
	}

	log.Info("Gateway response received",
		zap.Int("status_code", resp.StatusCode),
		zap.Duration("duration", time.Since(start)),
	)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		log.Warn("Gateway error response",
			zap.Int("status_code", resp.StatusCode),
			zap.ByteString("body", respData),
		)
		return fmt.Errorf("gateway returned status %d", resp.StatusCode)
	}

	if err := json.Unmarshal(respData, out); err != nil {
		return fmt.Errorf("decode gateway order: %w", err)
	}

	return nil
}
