package client

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"petmarket/catalog/internal/config"
	"petmarket/catalog/internal/domain"

	log "github.com/sirupsen/logrus"
	"go.uber.org/ratelimit"
	"resty.dev/v3"
)

const (
	BreedListPath = "/api/v1/public/animal/breed_list"
	BreedPath     = "/api/v1/public/animal/breed/"
)

var (
	// ErrFetchFailed wraps every failure to obtain data from the catalog API
	ErrFetchFailed = errors.New("catalog fetch failed")
	// ErrBreedNotFound is returned by GetBreed when the API answers 404
	ErrBreedNotFound = errors.New("breed not found")
)

// BreedSource produces the full breed list on demand
type BreedSource interface {
	GetBreedList(ctx context.Context) ([]domain.Breed, error)
}

type CatalogClient interface {
	BreedSource
	GetBreed(ctx context.Context, code string) (*domain.Breed, error)
	Close() error
}

type catalogClient struct {
	rl         ratelimit.Limiter
	baseURL    string
	httpClient *resty.Client

	// requests are refused until openUntil after a 429/503
	breakerMutex sync.Mutex
	openUntil    time.Time
	breakerDelay time.Duration
}

func NewCatalogClient(cfg config.CatalogConfig) CatalogClient {
	client := resty.New().
		SetTimeout(time.Duration(cfg.Timeout)*time.Second).
		SetRetryCount(cfg.MaxRetries).
		SetRetryWaitTime(200*time.Millisecond).
		SetRetryMaxWaitTime(2*time.Second).
		SetHeader("Accept", "application/json").
		SetHeader("User-Agent", "petmarket-catalog-client/1.0")

	rl := ratelimit.NewUnlimited()
	if cfg.MaxRequestsPerSecond > 0 {
		rl = ratelimit.New(cfg.MaxRequestsPerSecond)
	}

	return &catalogClient{
		rl:           rl,
		baseURL:      strings.TrimRight(cfg.BaseURL, "/"),
		httpClient:   client,
		breakerDelay: time.Duration(cfg.CircuitBreakerDelay) * time.Second,
	}
}

func (c *catalogClient) GetBreedList(ctx context.Context) ([]domain.Breed, error) {
	var breeds []domain.Breed
	if err := c.fetchJSON(ctx, c.baseURL+BreedListPath, &breeds); err != nil {
		return nil, fmt.Errorf("failed to fetch breed list: %w", err)
	}

	if breeds == nil {
		breeds = make([]domain.Breed, 0)
	}

	log.Debugf("Fetched breed list with %d breeds", len(breeds))
	return breeds, nil
}

func (c *catalogClient) GetBreed(ctx context.Context, code string) (*domain.Breed, error) {
	var breed domain.Breed
	if err := c.fetchJSON(ctx, c.baseURL+BreedPath+url.PathEscape(code), &breed); err != nil {
		return nil, fmt.Errorf("failed to fetch breed %s: %w", code, err)
	}

	return &breed, nil
}

func (c *catalogClient) Close() error {
	return c.httpClient.Close()
}

// breakerRemaining reports how long requests stay blocked, closing the
// breaker once its cool-down has passed
func (c *catalogClient) breakerRemaining() time.Duration {
	c.breakerMutex.Lock()
	defer c.breakerMutex.Unlock()

	if c.openUntil.IsZero() {
		return 0
	}
	if remaining := time.Until(c.openUntil); remaining > 0 {
		return remaining
	}

	c.openUntil = time.Time{}
	log.Infof("✅ Catalog API cool-down over, requests allowed again")
	return 0
}

func (c *catalogClient) openBreaker() {
	if c.breakerDelay <= 0 {
		return
	}

	c.breakerMutex.Lock()
	c.openUntil = time.Now().Add(c.breakerDelay)
	c.breakerMutex.Unlock()

	log.Warnf("🚫 Catalog API cool-down for %v", c.breakerDelay)
}

func (c *catalogClient) fetchJSON(ctx context.Context, endpoint string, out any) error {
	if remaining := c.breakerRemaining(); remaining > 0 {
		return fmt.Errorf("%w: circuit breaker is open for %v more", ErrFetchFailed, remaining.Round(time.Second))
	}

	c.rl.Take()

	// the API only speaks JSON; out is filled on 2xx and a decode failure comes back as err
	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetForceResponseContentType("application/json").
		SetResult(out).
		Get(endpoint)
	if err != nil {
		if ctx.Err() != nil {
			return fmt.Errorf("%w: request cancelled: %w", ErrFetchFailed, ctx.Err())
		}
		return fmt.Errorf("%w: %w", ErrFetchFailed, err)
	}

	switch code := resp.StatusCode(); {
	case code == http.StatusNotFound:
		return fmt.Errorf("%w: %w", ErrFetchFailed, ErrBreedNotFound)
	case code == http.StatusTooManyRequests || code == http.StatusServiceUnavailable:
		log.Warnf("🚫 Catalog API is overloaded (%d) for URL: %s", code, endpoint)
		c.openBreaker()
		return fmt.Errorf("%w: HTTP error: %s", ErrFetchFailed, resp.Status())
	case resp.IsError():
		return fmt.Errorf("%w: HTTP error: %s", ErrFetchFailed, resp.Status())
	}

	return nil
}
