package acquisition

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/sony/gobreaker"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// httpProvider wraps an HTTP client with a circuit breaker and a rate
// limiter, the same composition packages/llm-router applies to each
// ProviderConfig, generalized here from LLM completion calls to solar
// telemetry calls.
type httpProvider struct {
	name    string
	client  *http.Client
	breaker *gobreaker.CircuitBreaker
	limiter *rate.Limiter
	logger  *zap.Logger
}

func newHTTPProvider(name string, timeout time.Duration, logger *zap.Logger) *httpProvider {
	st := gobreaker.Settings{
		Name:        name,
		MaxRequests: 3,
		Interval:    time.Minute,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
	}
	return &httpProvider{
		name:    name,
		client:  &http.Client{Timeout: timeout},
		breaker: gobreaker.NewCircuitBreaker(st),
		limiter: rate.NewLimiter(rate.Limit(10), 20),
		logger:  logger,
	}
}

// getJSON performs a GET request and decodes the JSON body into out,
// guarded by the circuit breaker and rate limiter. Breaker-open and
// rate-limit errors are treated identically to any other transient
// provider failure by the caller (spec.md §7 ProviderTransient) — they
// simply fall through to the next source in the chain.
func (p *httpProvider) getJSON(ctx context.Context, url string, out interface{}) error {
	if err := p.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("%s: rate limiter: %w", p.name, err)
	}

	_, err := p.breaker.Execute(func() (interface{}, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return nil, err
		}
		req.Header.Set("User-Agent", "solar-placement/1.0")

		resp, err := p.client.Do(req)
		if err != nil {
			return nil, err
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			return nil, fmt.Errorf("%s: unexpected status %d", p.name, resp.StatusCode)
		}
		return nil, json.NewDecoder(resp.Body).Decode(out)
	})
	if err != nil {
		p.logger.Warn("provider call failed, will fall through", zap.String("provider", p.name), zap.Error(err))
		return err
	}
	return nil
}
