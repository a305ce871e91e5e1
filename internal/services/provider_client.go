package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sync"
	"time"

	"marketlens/backend-go/internal/config"
	"marketlens/backend-go/internal/models"
)

// ProviderClient talks to the external computation provider. Every call is
// attempted exactly once per request; the circuit breaker only sheds load
// after repeated failures, it never retries.
type ProviderClient struct {
	baseURL string
	hc      *http.Client
	cb      *circuitBreaker
}

type ProviderError struct {
	Status int
	Body   string
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("provider api: %d", e.Status)
}

type circuitBreaker struct {
	mu        sync.Mutex
	failures  int
	threshold int
	openedAt  time.Time
	cooldown  time.Duration
}

func newCircuitBreaker(threshold int, cooldown time.Duration) *circuitBreaker {
	return &circuitBreaker{threshold: threshold, cooldown: cooldown}
}

func (c *circuitBreaker) allow() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.failures < c.threshold {
		return true
	}
	if time.Since(c.openedAt) > c.cooldown {
		c.failures = 0
		c.openedAt = time.Time{}
		return true
	}
	return false
}

func (c *circuitBreaker) success() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.failures = 0
	c.openedAt = time.Time{}
}

func (c *circuitBreaker) fail() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.failures++
	if c.failures >= c.threshold {
		c.openedAt = time.Now()
	}
}

func NewProviderClient(cfg config.Config) *ProviderClient {
	return &ProviderClient{
		baseURL: cfg.ProviderBaseURL,
		hc: &http.Client{
			Timeout: cfg.ProviderTimeout,
		},
		cb: newCircuitBreaker(cfg.CircuitFailLimit, cfg.CircuitCooldown),
	}
}

func (c *ProviderClient) Health(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/health", nil)
	if err != nil {
		return err
	}
	res, err := c.hc.Do(req)
	if err != nil {
		return err
	}
	defer res.Body.Close()
	if res.StatusCode >= 300 {
		return fmt.Errorf("provider health: %s", res.Status)
	}
	return nil
}

// Compute issues one GET against the provider and decodes its result
// wrapper.
func (c *ProviderClient) Compute(ctx context.Context, path string, query url.Values) (models.ComputeResult, error) {
	var out models.ComputeResult
	if !c.cb.allow() {
		return out, errors.New("provider circuit breaker open")
	}

	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return out, err
	}

	res, err := c.hc.Do(req)
	if err != nil {
		c.cb.fail()
		return out, err
	}
	defer res.Body.Close()

	if res.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(res.Body, 4096))
		c.cb.fail()
		return out, &ProviderError{Status: res.StatusCode, Body: string(body)}
	}

	if err := json.NewDecoder(res.Body).Decode(&out); err != nil {
		c.cb.fail()
		return out, fmt.Errorf("provider response: %w", err)
	}
	c.cb.success()
	return out, nil
}
