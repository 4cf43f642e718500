package rates

import (
	"context"
	"fmt"
	"sync"
	"time"

	"time-report-go/internal/domain/money"
	"time-report-go/internal/resilience"
	"time-report-go/pkg/logger"

	"github.com/sony/gobreaker"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/sync/singleflight"
)

const serviceName = "rates"

var tracer = otel.Tracer("rates")

type Fetcher interface {
	Fetch(ctx context.Context) (money.RateTable, error)
}

type Observer interface {
	IncrExternalError(service string)
	IncrStaleRates()
	SetBreakerState(name string, state int)
}

type Config struct {
	TTL        time.Duration
	MaxStale   time.Duration
	Resilience resilience.Config
}

// Provider caches the rate table for TTL. When a refresh fails, the last
// table is served flagged as stale until it is MaxStale old; after that
// reads fail with ErrUpstreamUnavailable. Concurrent refreshes collapse into
// one fetch, which runs without holding the table lock.
type Provider struct {
	fetcher  Fetcher
	cb       *gobreaker.CircuitBreaker
	cfg      Config
	log      logger.Logger
	observer Observer
	now      func() time.Time

	group   singleflight.Group
	mu      sync.RWMutex
	current *money.RateTable
}

func NewProvider(fetcher Fetcher, cfg Config, log logger.Logger, observer Observer) *Provider {
	if cfg.TTL <= 0 {
		cfg.TTL = 24 * time.Hour
	}
	if cfg.MaxStale < cfg.TTL {
		cfg.MaxStale = cfg.TTL
	}
	if log == nil {
		log = logger.Nop()
	}

	p := &Provider{
		fetcher:  fetcher,
		cfg:      cfg,
		log:      log,
		observer: observer,
		now:      time.Now,
	}
	p.cb = resilience.NewCircuitBreaker(serviceName, p.onStateChange)
	return p
}

func (p *Provider) Rates(ctx context.Context) (money.RateTable, error) {
	now := p.now()
	current := p.cached()
	if current != nil && now.Sub(current.FetchedAt) < p.cfg.TTL {
		return *current, nil
	}

	result, err, _ := p.group.Do(serviceName, func() (any, error) {
		table, err := p.refresh(context.WithoutCancel(ctx))
		if err != nil {
			return nil, err
		}
		p.mu.Lock()
		p.current = &table
		p.mu.Unlock()
		return table, nil
	})
	if err == nil {
		return result.(money.RateTable), nil
	}

	if p.observer != nil {
		p.observer.IncrExternalError(serviceName)
	}

	current = p.cached()
	if current != nil && now.Sub(current.FetchedAt) < p.cfg.MaxStale {
		p.log.BusinessError("rates.refresh: serving stale table", err,
			"fetched_at", current.FetchedAt,
			"age", now.Sub(current.FetchedAt),
		)
		if p.observer != nil {
			p.observer.IncrStaleRates()
		}
		stale := *current
		stale.Stale = true
		return stale, nil
	}

	p.log.InternalError("rates.refresh: no usable table", err)
	return money.RateTable{}, fmt.Errorf("%w: %w", ErrUpstreamUnavailable, err)
}

// Snapshot returns the cached table without fetching.
func (p *Provider) Snapshot() (money.RateTable, bool) {
	current := p.cached()
	if current == nil {
		return money.RateTable{}, false
	}
	table := *current
	table.Stale = p.now().Sub(table.FetchedAt) >= p.cfg.TTL
	return table, true
}

func (p *Provider) cached() *money.RateTable {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.current
}

func (p *Provider) refresh(ctx context.Context) (money.RateTable, error) {
	ctx, span := tracer.Start(ctx, "rates.Refresh")
	defer span.End()

	var table money.RateTable
	_, err := p.cb.Execute(func() (any, error) {
		return nil, resilience.RetryWithBackoff(ctx, p.cfg.Resilience, func() error {
			fetched, err := p.fetcher.Fetch(ctx)
			if err != nil {
				return err
			}
			table = fetched
			return nil
		})
	})
	if err != nil {
		span.RecordError(err)
		return money.RateTable{}, &resilience.ExternalServiceError{Service: serviceName, Err: err}
	}

	span.SetAttributes(attribute.Int("rates.count", len(table.Rates)))
	return table, nil
}

func (p *Provider) onStateChange(name string, from, to gobreaker.State) {
	p.log.Warn("rates.breaker: state changed", "name", name, "from", from.String(), "to", to.String())
	if p.observer != nil {
		p.observer.SetBreakerState(name, int(to))
	}
}
