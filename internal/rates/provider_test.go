package rates

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"time-report-go/internal/domain/money"
	"time-report-go/internal/resilience"

	"github.com/shopspring/decimal"
)

type fakeFetcher struct {
	calls int
	err   error
	at    time.Time
}

func (f *fakeFetcher) Fetch(ctx context.Context) (money.RateTable, error) {
	f.calls++
	if f.err != nil {
		return money.RateTable{}, f.err
	}
	return money.RateTable{
		Pivot:     "EUR",
		Rates:     map[money.Code]decimal.Decimal{"EUR": decimal.NewFromInt(1), "USD": decimal.RequireFromString("1.08")},
		FetchedAt: f.at,
	}, nil
}

type recordingObserver struct {
	external int
	stale    int
	states   []int
}

func (o *recordingObserver) IncrExternalError(string) {
	o.external++
}

func (o *recordingObserver) IncrStaleRates() {
	o.stale++
}

func (o *recordingObserver) SetBreakerState(_ string, state int) {
	o.states = append(o.states, state)
}

type clock struct {
	now time.Time
}

func (c *clock) Now() time.Time { return c.now }

func newTestProvider(fetcher *fakeFetcher, observer *recordingObserver, c *clock) *Provider {
	provider := NewProvider(fetcher, Config{
		TTL:        24 * time.Hour,
		MaxStale:   72 * time.Hour,
		Resilience: resilience.Config{MaxRetries: 0},
	}, nil, observer)
	provider.now = c.Now
	return provider
}

func TestProviderCachesForTTL(t *testing.T) {
	start := time.Date(2024, time.June, 12, 8, 0, 0, 0, time.UTC)
	c := &clock{now: start}
	fetcher := &fakeFetcher{at: start}
	provider := newTestProvider(fetcher, &recordingObserver{}, c)

	for i := 0; i < 3; i++ {
		if _, err := provider.Rates(context.Background()); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
	}
	if fetcher.calls != 1 {
		t.Fatalf("expected a single fetch, got %d", fetcher.calls)
	}

	c.now = start.Add(25 * time.Hour)
	fetcher.at = c.now
	if _, err := provider.Rates(context.Background()); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if fetcher.calls != 2 {
		t.Fatalf("expected refresh after TTL, got %d fetches", fetcher.calls)
	}
}

func TestProviderServesStaleTable(t *testing.T) {
	start := time.Date(2024, time.June, 12, 8, 0, 0, 0, time.UTC)
	c := &clock{now: start}
	fetcher := &fakeFetcher{at: start}
	observer := &recordingObserver{}
	provider := newTestProvider(fetcher, observer, c)

	if _, err := provider.Rates(context.Background()); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	fetcher.err = errors.New("connection refused")
	c.now = start.Add(30 * time.Hour)

	table, err := provider.Rates(context.Background())
	if err != nil {
		t.Fatalf("expected stale table, got %v", err)
	}
	if !table.Stale || !table.FetchedAt.Equal(start) {
		t.Fatalf("expected stale table from %s, got %+v", start, table)
	}
	if observer.stale != 1 || observer.external != 1 {
		t.Fatalf("expected stale and external error recorded, got %+v", observer)
	}
}

func TestProviderFailsPastMaxStale(t *testing.T) {
	start := time.Date(2024, time.June, 12, 8, 0, 0, 0, time.UTC)
	c := &clock{now: start}
	fetcher := &fakeFetcher{at: start}
	provider := newTestProvider(fetcher, &recordingObserver{}, c)

	if _, err := provider.Rates(context.Background()); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	cause := errors.New("connection refused")
	fetcher.err = cause
	c.now = start.Add(73 * time.Hour)

	_, err := provider.Rates(context.Background())
	if !errors.Is(err, ErrUpstreamUnavailable) {
		t.Fatalf("expected ErrUpstreamUnavailable, got %v", err)
	}
	if !errors.Is(err, cause) {
		t.Fatalf("expected cause preserved, got %v", err)
	}
	var external *resilience.ExternalServiceError
	if !errors.As(err, &external) || external.Service != "rates" {
		t.Fatalf("expected external service error, got %v", err)
	}
}

func TestProviderFailsWithoutAnyTable(t *testing.T) {
	c := &clock{now: time.Date(2024, time.June, 12, 8, 0, 0, 0, time.UTC)}
	provider := newTestProvider(&fakeFetcher{err: errors.New("dns")}, &recordingObserver{}, c)

	if _, err := provider.Rates(context.Background()); !errors.Is(err, ErrUpstreamUnavailable) {
		t.Fatalf("expected ErrUpstreamUnavailable, got %v", err)
	}
	if _, ok := provider.Snapshot(); ok {
		t.Fatalf("expected no snapshot")
	}
}

func TestProviderSnapshotFlagsAge(t *testing.T) {
	start := time.Date(2024, time.June, 12, 8, 0, 0, 0, time.UTC)
	c := &clock{now: start}
	provider := newTestProvider(&fakeFetcher{at: start}, &recordingObserver{}, c)

	if _, err := provider.Rates(context.Background()); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if table, ok := provider.Snapshot(); !ok || table.Stale {
		t.Fatalf("expected fresh snapshot, got %+v", table)
	}

	c.now = start.Add(48 * time.Hour)
	if table, ok := provider.Snapshot(); !ok || !table.Stale {
		t.Fatalf("expected stale snapshot, got %+v", table)
	}
}

func TestProviderBreakerOpensAfterRepeatedFailures(t *testing.T) {
	c := &clock{now: time.Date(2024, time.June, 12, 8, 0, 0, 0, time.UTC)}
	fetcher := &fakeFetcher{err: errors.New("down")}
	observer := &recordingObserver{}
	provider := newTestProvider(fetcher, observer, c)

	for i := 0; i < 6; i++ {
		_, _ = provider.Rates(context.Background())
	}

	if fetcher.calls != 5 {
		t.Fatalf("expected breaker to stop fetches after 5 failures, got %d", fetcher.calls)
	}
	if len(observer.states) != 1 || observer.states[0] != 2 {
		t.Fatalf("expected open breaker state recorded, got %v", observer.states)
	}
}

type blockingFetcher struct {
	calls   atomic.Int32
	started chan struct{}
	release chan struct{}
	at      time.Time
}

func newBlockingFetcher(at time.Time) *blockingFetcher {
	return &blockingFetcher{
		started: make(chan struct{}, 8),
		release: make(chan struct{}),
		at:      at,
	}
}

func (f *blockingFetcher) Fetch(ctx context.Context) (money.RateTable, error) {
	f.calls.Add(1)
	f.started <- struct{}{}
	<-f.release
	return money.RateTable{
		Pivot:     "EUR",
		Rates:     map[money.Code]decimal.Decimal{"EUR": decimal.NewFromInt(1)},
		FetchedAt: f.at,
	}, nil
}

func TestProviderSnapshotDoesNotWaitForRefresh(t *testing.T) {
	start := time.Date(2024, time.June, 12, 8, 0, 0, 0, time.UTC)
	c := &clock{now: start.Add(25 * time.Hour)}
	fetcher := newBlockingFetcher(c.now)
	provider := NewProvider(fetcher, Config{TTL: 24 * time.Hour, MaxStale: 72 * time.Hour}, nil, nil)
	provider.now = c.Now
	provider.current = &money.RateTable{Pivot: "EUR", FetchedAt: start}

	done := make(chan error, 1)
	go func() {
		_, err := provider.Rates(context.Background())
		done <- err
	}()
	<-fetcher.started

	snapshot := make(chan bool, 1)
	go func() {
		_, ok := provider.Snapshot()
		snapshot <- ok
	}()
	select {
	case ok := <-snapshot:
		if !ok {
			t.Fatalf("expected cached snapshot")
		}
	case <-time.After(time.Second):
		t.Fatalf("snapshot blocked while refresh was in flight")
	}

	close(fetcher.release)
	if err := <-done; err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
}

func TestProviderCollapsesConcurrentRefreshes(t *testing.T) {
	c := &clock{now: time.Date(2024, time.June, 12, 8, 0, 0, 0, time.UTC)}
	fetcher := newBlockingFetcher(c.now)
	provider := NewProvider(fetcher, Config{TTL: 24 * time.Hour, MaxStale: 72 * time.Hour}, nil, nil)
	provider.now = c.Now

	const callers = 4
	var wg sync.WaitGroup
	errs := make(chan error, callers)
	wg.Add(1)
	go func() {
		defer wg.Done()
		_, err := provider.Rates(context.Background())
		errs <- err
	}()
	<-fetcher.started

	for i := 1; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := provider.Rates(context.Background())
			errs <- err
		}()
	}
	time.Sleep(50 * time.Millisecond)
	close(fetcher.release)
	wg.Wait()
	close(errs)

	for err := range errs {
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
	}
	if got := fetcher.calls.Load(); got != 1 {
		t.Fatalf("expected one fetch, got %d", got)
	}
}
