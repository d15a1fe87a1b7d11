package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"car-rental-adjustments/internal/logger"
)

// Client talks to the payment platform over its internal REST surface.
// It implements both PaymentGateway and FleetService; the two capabilities
// are served by the same platform in the deployed topology.
type Client struct {
	baseURL string
	http    *http.Client
}

func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: timeout},
	}
}

func (c *Client) postJSON(ctx context.Context, path string, body, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	logger.ExternalServiceCall("payment-platform", path)
	resp, err := c.http.Do(req)
	if err != nil {
		logger.ExternalServiceResult("payment-platform", path, err)
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		err = fmt.Errorf("payment platform returned status %d", resp.StatusCode)
		logger.ExternalServiceResult("payment-platform", path, err)
		return err
	}
	if out == nil {
		return nil
	}
	err = json.NewDecoder(resp.Body).Decode(out)
	logger.ExternalServiceResult("payment-platform", path, err)
	return err
}

func (c *Client) Authorize(ctx context.Context, amountCents int64, currency, reference string) (*AuthorizationResult, error) {
	req := map[string]any{
		"amount_cents": amountCents,
		"currency":     currency,
		"reference":    reference,
	}
	var res AuthorizationResult
	if err := c.postJSON(ctx, "/v1/payments/authorize", req, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

func (c *Client) Refund(ctx context.Context, transactionID string, amountCents int64) (*RefundResult, error) {
	req := map[string]any{
		"transaction_id": transactionID,
		"amount_cents":   amountCents,
	}
	var res RefundResult
	if err := c.postJSON(ctx, "/v1/payments/refund", req, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

func (c *Client) GetPaymentForRental(ctx context.Context, rentalID int32) (*PaymentRecord, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fmt.Sprintf("%s/v1/payments/rental/%d", c.baseURL, rentalID), nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, nil
	}
	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("payment platform returned status %d", resp.StatusCode)
	}
	var record PaymentRecord
	if err := json.NewDecoder(resp.Body).Decode(&record); err != nil {
		return nil, err
	}
	return &record, nil
}

func (c *Client) FlagForMaintenance(ctx context.Context, vehicleID int32) error {
	return c.postJSON(ctx, fmt.Sprintf("/v1/vehicles/%d/maintenance", vehicleID), map[string]any{}, nil)
}
