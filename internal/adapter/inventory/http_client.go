package inventory

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"maps"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/rl1809/car-purchase/internal/core/domain"
	"github.com/rl1809/car-purchase/internal/port"
)

const maxErrorBody = 1 << 10

// HTTPClient talks to the car inventory service. Calls are not retried.
type HTTPClient struct {
	baseURL string
	timeout time.Duration
	http    *http.Client
}

func NewHTTPClient(baseURL string, timeout time.Duration) *HTTPClient {
	return &HTTPClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		timeout: timeout,
		http: &http.Client{
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
	}
}

func (c *HTTPClient) carURL(carID string) string {
	return c.baseURL + "/car/" + url.PathEscape(carID)
}

func (c *HTTPClient) GetCar(ctx context.Context, carID string) (domain.Car, error) {
	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.carURL(carID), nil)
	if err != nil {
		return nil, fmt.Errorf("build get car request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("get car %s: %w", carID, err)
	}
	defer resp.Body.Close()

	if err := checkStatus("get car", resp); err != nil {
		return nil, err
	}

	// UseNumber keeps numeric fields exactly as the inventory sent them
	var car domain.Car
	dec := json.NewDecoder(resp.Body)
	dec.UseNumber()
	if err := dec.Decode(&car); err != nil {
		return nil, fmt.Errorf("decode car %s: %w", carID, err)
	}
	if car == nil {
		return nil, fmt.Errorf("decode car %s: empty resource", carID)
	}

	return car, nil
}

func (c *HTTPClient) SetUnavailable(ctx context.Context, carID string, car domain.Car) error {
	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	payload := maps.Clone(car)
	payload.MarkUnavailable()
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encode car %s: %w", carID, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPut, c.carURL(carID), bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build update car request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("update car %s: %w", carID, err)
	}
	defer resp.Body.Close()

	if err := checkStatus("update car", resp); err != nil {
		return err
	}

	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}

func (c *HTTPClient) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if c.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, c.timeout)
}

func checkStatus(op string, resp *http.Response) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}

	data, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))

	return &port.RemoteError{
		Op:         op,
		StatusCode: resp.StatusCode,
		Message:    remoteMessage(data),
	}
}

// remoteMessage prefers a JSON "message" or "detail" field and falls back to
// the raw body.
func remoteMessage(data []byte) string {
	var body struct {
		Message string `json:"message"`
		Detail  string `json:"detail"`
	}
	if err := json.Unmarshal(data, &body); err == nil {
		if body.Message != "" {
			return body.Message
		}
		if body.Detail != "" {
			return body.Detail
		}
	}

	return strings.TrimSpace(string(data))
}
