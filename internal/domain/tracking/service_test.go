package tracking

import (
	"context"
	"errors"
	"sort"
	"sync"
	"testing"
	"time"

	"time-report-go/internal/domain/money"

	"github.com/shopspring/decimal"
)

const (
	tenantA   = "aaaaaaaa-aaaa-aaaa-aaaa-aaaaaaaaaaaa"
	tenantB   = "bbbbbbbb-bbbb-bbbb-bbbb-bbbbbbbbbbbb"
	clientID1 = "11111111-1111-1111-1111-111111111111"
	periodID1 = "22222222-2222-2222-2222-222222222222"
)

type fakeTrackingRepo struct {
	mu        sync.Mutex
	clients   map[string]Client
	periods   map[string]Period
	timeslots map[string]Timeslot

	failCreatePeriod    error
	failDeleteTimeslots error
	duringListClients   func()
}

func newFakeTrackingRepo() *fakeTrackingRepo {
	return &fakeTrackingRepo{
		clients:   make(map[string]Client),
		periods:   make(map[string]Period),
		timeslots: make(map[string]Timeslot),
	}
}

func (r *fakeTrackingRepo) Transaction(ctx context.Context, fn func(Repository) error) error {
	r.mu.Lock()
	clients := cloneMap(r.clients)
	periods := cloneMap(r.periods)
	timeslots := cloneMap(r.timeslots)
	r.mu.Unlock()

	if err := fn(r); err != nil {
		r.mu.Lock()
		r.clients, r.periods, r.timeslots = clients, periods, timeslots
		r.mu.Unlock()
		return err
	}
	return nil
}

func cloneMap[T any](source map[string]T) map[string]T {
	result := make(map[string]T, len(source))
	for key, value := range source {
		result[key] = value
	}
	return result
}

func (r *fakeTrackingRepo) ListClients(ctx context.Context, tenantID string) ([]Client, error) {
	r.mu.Lock()
	result := make([]Client, 0)
	for _, client := range r.clients {
		if client.TenantID == tenantID {
			result = append(result, client)
		}
	}
	hook := r.duringListClients
	r.mu.Unlock()
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	if hook != nil {
		hook()
	}
	return result, nil
}

func (r *fakeTrackingRepo) GetClientByID(ctx context.Context, tenantID, clientID string) (*Client, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	client, ok := r.clients[clientID]
	if !ok || client.TenantID != tenantID {
		return nil, ErrClientNotFound
	}
	return &client, nil
}

func (r *fakeTrackingRepo) CreateClient(ctx context.Context, client *Client) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.clients[client.ID] = *client
	return nil
}

func (r *fakeTrackingRepo) UpdateClient(ctx context.Context, client *Client) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.clients[client.ID]; !ok {
		return ErrClientNotFound
	}
	r.clients[client.ID] = *client
	return nil
}

func (r *fakeTrackingRepo) DeleteClient(ctx context.Context, tenantID, clientID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	client, ok := r.clients[clientID]
	if !ok || client.TenantID != tenantID {
		return false, nil
	}
	delete(r.clients, clientID)
	return true, nil
}

func (r *fakeTrackingRepo) ListPeriods(ctx context.Context, tenantID, clientID string) ([]Period, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	result := make([]Period, 0)
	for _, period := range r.periods {
		if period.TenantID == tenantID && period.ClientID == clientID {
			result = append(result, period)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].StartDate.After(result[j].StartDate) })
	return result, nil
}

func (r *fakeTrackingRepo) GetPeriodByID(ctx context.Context, tenantID, periodID string) (*Period, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	period, ok := r.periods[periodID]
	if !ok || period.TenantID != tenantID {
		return nil, ErrPeriodNotFound
	}
	return &period, nil
}

func (r *fakeTrackingRepo) GetOpenPeriod(ctx context.Context, tenantID, clientID string) (*Period, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, period := range r.periods {
		if period.TenantID == tenantID && period.ClientID == clientID && period.IsOpen() {
			return &period, nil
		}
	}
	return nil, ErrNoOpenPeriod
}

func (r *fakeTrackingRepo) CreatePeriod(ctx context.Context, period *Period) error {
	if r.failCreatePeriod != nil {
		return r.failCreatePeriod
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.periods[period.ID] = *period
	return nil
}

func (r *fakeTrackingRepo) ClosePeriod(ctx context.Context, tenantID, periodID string, closedAt time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	period, ok := r.periods[periodID]
	if !ok || period.TenantID != tenantID || !period.IsOpen() {
		return 0, nil
	}
	period.Status = PeriodClosed
	period.ClosedAt = &closedAt
	r.periods[periodID] = period
	return 1, nil
}

func (r *fakeTrackingRepo) DeletePeriodsByClient(ctx context.Context, tenantID, clientID string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var count int64
	for id, period := range r.periods {
		if period.TenantID == tenantID && period.ClientID == clientID {
			delete(r.periods, id)
			count++
		}
	}
	return count, nil
}

func (r *fakeTrackingRepo) ListTimeslots(ctx context.Context, tenantID string, filter TimeslotFilter) ([]Timeslot, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	result := make([]Timeslot, 0)
	for _, timeslot := range r.timeslots {
		if timeslot.TenantID != tenantID {
			continue
		}
		if filter.ClientID != "" && timeslot.ClientID != filter.ClientID {
			continue
		}
		if filter.PeriodID != "" && timeslot.PeriodID != filter.PeriodID {
			continue
		}
		result = append(result, timeslot)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

func (r *fakeTrackingRepo) GetTimeslotByID(ctx context.Context, tenantID, timeslotID string) (*Timeslot, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	timeslot, ok := r.timeslots[timeslotID]
	if !ok || timeslot.TenantID != tenantID {
		return nil, ErrTimeslotNotFound
	}
	return &timeslot, nil
}

func (r *fakeTrackingRepo) CreateTimeslot(ctx context.Context, timeslot *Timeslot) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.timeslots[timeslot.ID] = *timeslot
	return nil
}

func (r *fakeTrackingRepo) UpdateTimeslot(ctx context.Context, timeslot *Timeslot) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.timeslots[timeslot.ID]; !ok {
		return ErrTimeslotNotFound
	}
	r.timeslots[timeslot.ID] = *timeslot
	return nil
}

func (r *fakeTrackingRepo) DeleteTimeslot(ctx context.Context, tenantID, timeslotID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	timeslot, ok := r.timeslots[timeslotID]
	if !ok || timeslot.TenantID != tenantID {
		return false, nil
	}
	delete(r.timeslots, timeslotID)
	return true, nil
}

func (r *fakeTrackingRepo) DeleteTimeslotsByClient(ctx context.Context, tenantID, clientID string) (int64, error) {
	if r.failDeleteTimeslots != nil {
		return 0, r.failDeleteTimeslots
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	var count int64
	for id, timeslot := range r.timeslots {
		if timeslot.TenantID == tenantID && timeslot.ClientID == clientID {
			delete(r.timeslots, id)
			count++
		}
	}
	return count, nil
}

type recordingCache struct {
	mu          sync.Mutex
	values      map[string]any
	generations map[Tag]uint64
	invalidated []Tag
}

func newRecordingCache() *recordingCache {
	return &recordingCache{values: make(map[string]any), generations: make(map[Tag]uint64)}
}

func (c *recordingCache) Get(tenantID string, tag Tag, key string) (any, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	value, ok := c.values[tenantID+"/"+string(tag)+"/"+key]
	return value, ok
}

func (c *recordingCache) Generation(tenantID string, tag Tag) uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.generations[tag]
}

func (c *recordingCache) Set(tenantID string, tag Tag, key string, value any, generation uint64, ttl time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if generation != c.generations[tag] {
		return
	}
	c.values[tenantID+"/"+string(tag)+"/"+key] = value
}

func (c *recordingCache) Invalidate(tenantID string, tags ...Tag) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.invalidated = append(c.invalidated, tags...)
	for _, tag := range tags {
		c.generations[tag]++
	}
	c.values = make(map[string]any)
}

type fakeImageStore struct {
	mu      sync.Mutex
	deleted []string
	err     error
}

func (s *fakeImageStore) DeleteByURL(ctx context.Context, url string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	s.deleted = append(s.deleted, url)
	return nil
}

func newTestService(repo *fakeTrackingRepo, cache ViewCache, images ImageStore) *Service {
	svc := NewService(repo, cache, images, time.Minute)
	svc.now = func() time.Time { return time.Date(2024, time.June, 12, 15, 30, 0, 0, time.UTC) }
	return svc
}

func decimalPtr(value string) *decimal.Decimal {
	d := decimal.RequireFromString(value)
	return &d
}

func seedClientWithOpenPeriod(repo *fakeTrackingRepo, tenantID string) {
	repo.clients[clientID1] = Client{
		ID:            clientID1,
		TenantID:      tenantID,
		Name:          "Acme",
		Currency:      "USD",
		ChargeRate:    10000,
		BillingPeriod: CadenceWeekly,
	}
	repo.periods[periodID1] = Period{
		ID:        periodID1,
		TenantID:  tenantID,
		ClientID:  clientID1,
		StartDate: date(2024, time.June, 10),
		EndDate:   date(2024, time.June, 16),
		Status:    PeriodOpen,
	}
}

func TestCreateClientOpensInitialPeriod(t *testing.T) {
	repo := newFakeTrackingRepo()
	cache := newRecordingCache()
	svc := newTestService(repo, cache, nil)

	client, period, err := svc.CreateClient(context.Background(), CreateClientInput{
		TenantID:      tenantA,
		Name:          "  Acme  ",
		Currency:      "usd",
		ChargeRate:    decimal.RequireFromString("125.50"),
		BillingPeriod: "monthly",
	})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if client.Name != "Acme" || client.Currency != "USD" || client.ChargeRate != 12550 {
		t.Fatalf("unexpected client %+v", client)
	}
	if period.ClientID != client.ID || !period.IsOpen() {
		t.Fatalf("unexpected period %+v", period)
	}
	assertBounds(t, Bounds{Start: period.StartDate, End: period.EndDate}, date(2024, time.June, 1), date(2024, time.June, 30))
	if len(repo.clients) != 1 || len(repo.periods) != 1 {
		t.Fatalf("expected one client and one period, got %d and %d", len(repo.clients), len(repo.periods))
	}
	if len(cache.invalidated) != 2 {
		t.Fatalf("expected clients and periods invalidated, got %v", cache.invalidated)
	}
}

func TestCreateClientRejectsUnknownCurrency(t *testing.T) {
	repo := newFakeTrackingRepo()
	svc := newTestService(repo, nil, nil)

	_, _, err := svc.CreateClient(context.Background(), CreateClientInput{
		TenantID:      tenantA,
		Name:          "Acme",
		Currency:      "ZZZ",
		ChargeRate:    decimal.NewFromInt(100),
		BillingPeriod: "weekly",
	})
	if !errors.Is(err, money.ErrInvalidCurrency) {
		t.Fatalf("expected ErrInvalidCurrency, got %v", err)
	}
	var validationErr *ValidationError
	if !errors.As(err, &validationErr) || validationErr.Field != "currency" {
		t.Fatalf("expected currency validation error, got %v", err)
	}
	if len(repo.clients) != 0 {
		t.Fatalf("expected nothing persisted")
	}
}

func TestCreateClientRollsBackWhenPeriodFails(t *testing.T) {
	repo := newFakeTrackingRepo()
	repo.failCreatePeriod = errors.New("insert failed")
	svc := newTestService(repo, nil, nil)

	_, _, err := svc.CreateClient(context.Background(), CreateClientInput{
		TenantID:      tenantA,
		Name:          "Acme",
		Currency:      "EUR",
		ChargeRate:    decimal.NewFromInt(80),
		BillingPeriod: "weekly",
	})
	if err == nil {
		t.Fatalf("expected error")
	}
	if len(repo.clients) != 0 {
		t.Fatalf("expected client insert rolled back")
	}
}

func TestClosePeriodByOtherTenantIsUnauthorized(t *testing.T) {
	repo := newFakeTrackingRepo()
	seedClientWithOpenPeriod(repo, tenantA)
	svc := newTestService(repo, nil, nil)

	_, err := svc.ClosePeriod(context.Background(), ClosePeriodInput{TenantID: tenantB, PeriodID: periodID1, OpenNew: true})
	if !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
	if repo.periods[periodID1].Status != PeriodOpen {
		t.Fatalf("expected period to stay open")
	}
	if len(repo.periods) != 1 {
		t.Fatalf("expected no new period")
	}
}

func TestClosePeriodTwiceIsUnauthorized(t *testing.T) {
	repo := newFakeTrackingRepo()
	seedClientWithOpenPeriod(repo, tenantA)
	svc := newTestService(repo, nil, nil)

	if _, err := svc.ClosePeriod(context.Background(), ClosePeriodInput{TenantID: tenantA, PeriodID: periodID1}); err != nil {
		t.Fatalf("expected first close to succeed, got %v", err)
	}
	_, err := svc.ClosePeriod(context.Background(), ClosePeriodInput{TenantID: tenantA, PeriodID: periodID1, OpenNew: true})
	if !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
	if len(repo.periods) != 1 {
		t.Fatalf("expected no new period after rejected close")
	}
}

func TestClosePeriodOpensDefaultSuccessor(t *testing.T) {
	repo := newFakeTrackingRepo()
	seedClientWithOpenPeriod(repo, tenantA)
	cache := newRecordingCache()
	svc := newTestService(repo, cache, nil)

	result, err := svc.ClosePeriod(context.Background(), ClosePeriodInput{TenantID: tenantA, PeriodID: periodID1, OpenNew: true})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if result.Closed.Status != PeriodClosed || result.Closed.ClosedAt == nil {
		t.Fatalf("expected closed period, got %+v", result.Closed)
	}
	if result.Opened == nil {
		t.Fatalf("expected new period")
	}
	assertBounds(t, Bounds{Start: result.Opened.StartDate, End: result.Opened.EndDate}, date(2024, time.June, 17), date(2024, time.June, 23))

	open := 0
	for _, period := range repo.periods {
		if period.IsOpen() {
			open++
		}
	}
	if open != 1 || len(repo.periods) != 2 {
		t.Fatalf("expected exactly one open period out of two, got %d of %d", open, len(repo.periods))
	}
	if len(cache.invalidated) != 1 || cache.invalidated[0] != TagPeriods {
		t.Fatalf("expected periods invalidated, got %v", cache.invalidated)
	}
}

func TestClosePeriodAcceptsExplicitBounds(t *testing.T) {
	repo := newFakeTrackingRepo()
	seedClientWithOpenPeriod(repo, tenantA)
	svc := newTestService(repo, nil, nil)

	start := date(2024, time.June, 20)
	end := date(2024, time.July, 3)
	result, err := svc.ClosePeriod(context.Background(), ClosePeriodInput{
		TenantID:  tenantA,
		PeriodID:  periodID1,
		OpenNew:   true,
		StartDate: &start,
		EndDate:   &end,
	})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	assertBounds(t, Bounds{Start: result.Opened.StartDate, End: result.Opened.EndDate}, start, end)
}

func TestClosePeriodRejectsInvertedBounds(t *testing.T) {
	repo := newFakeTrackingRepo()
	seedClientWithOpenPeriod(repo, tenantA)
	svc := newTestService(repo, nil, nil)

	start := date(2024, time.July, 3)
	end := date(2024, time.June, 20)
	_, err := svc.ClosePeriod(context.Background(), ClosePeriodInput{
		TenantID:  tenantA,
		PeriodID:  periodID1,
		OpenNew:   true,
		StartDate: &start,
		EndDate:   &end,
	})
	if !errors.Is(err, ErrInvalidPeriodBounds) {
		t.Fatalf("expected ErrInvalidPeriodBounds, got %v", err)
	}
	if repo.periods[periodID1].Status != PeriodOpen {
		t.Fatalf("expected period untouched")
	}
}

func TestClosePeriodIsAtomicWhenSuccessorFails(t *testing.T) {
	repo := newFakeTrackingRepo()
	seedClientWithOpenPeriod(repo, tenantA)
	repo.failCreatePeriod = errors.New("insert failed")
	svc := newTestService(repo, nil, nil)

	_, err := svc.ClosePeriod(context.Background(), ClosePeriodInput{TenantID: tenantA, PeriodID: periodID1, OpenNew: true})
	if err == nil {
		t.Fatalf("expected error")
	}
	if repo.periods[periodID1].Status != PeriodOpen {
		t.Fatalf("expected close rolled back, got %q", repo.periods[periodID1].Status)
	}
	if len(repo.periods) != 1 {
		t.Fatalf("expected no new period, got %d periods", len(repo.periods))
	}
}

func TestSuggestNextPeriod(t *testing.T) {
	repo := newFakeTrackingRepo()
	seedClientWithOpenPeriod(repo, tenantA)
	svc := newTestService(repo, nil, nil)

	got, err := svc.SuggestNextPeriod(context.Background(), tenantA, periodID1)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	assertBounds(t, got, date(2024, time.June, 17), date(2024, time.June, 23))

	if _, err := svc.SuggestNextPeriod(context.Background(), tenantB, periodID1); !errors.Is(err, ErrPeriodNotFound) {
		t.Fatalf("expected ErrPeriodNotFound for other tenant, got %v", err)
	}
}

func TestReportTimeUsesOpenPeriod(t *testing.T) {
	repo := newFakeTrackingRepo()
	seedClientWithOpenPeriod(repo, tenantA)
	svc := newTestService(repo, nil, nil)

	description := "  planning  "
	timeslot, err := svc.ReportTime(context.Background(), ReportTimeInput{
		TenantID:    tenantA,
		ClientID:    clientID1,
		Date:        date(2024, time.June, 12),
		Duration:    decimal.RequireFromString("2.5"),
		ChargeRate:  decimalPtr("100"),
		Currency:    "usd",
		Description: &description,
	})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if timeslot.PeriodID != periodID1 {
		t.Fatalf("expected open period, got %q", timeslot.PeriodID)
	}
	if timeslot.ChargeRate != 10000 || timeslot.Currency != "USD" {
		t.Fatalf("unexpected charge %d %s", timeslot.ChargeRate, timeslot.Currency)
	}
	if timeslot.Description == nil || *timeslot.Description != "planning" {
		t.Fatalf("expected trimmed description, got %v", timeslot.Description)
	}
	if got := timeslot.LineTotal(); got.Amount != 25000 {
		t.Fatalf("expected line total 25000, got %d", got.Amount)
	}
}

func TestReportTimeWithoutOpenPeriod(t *testing.T) {
	repo := newFakeTrackingRepo()
	seedClientWithOpenPeriod(repo, tenantA)
	period := repo.periods[periodID1]
	period.Status = PeriodClosed
	repo.periods[periodID1] = period
	svc := newTestService(repo, nil, nil)

	_, err := svc.ReportTime(context.Background(), ReportTimeInput{
		TenantID:   tenantA,
		ClientID:   clientID1,
		Date:       date(2024, time.June, 12),
		Duration:   decimal.NewFromInt(1),
		ChargeRate: decimalPtr("100"),
		Currency:   "USD",
	})
	if !errors.Is(err, ErrNoOpenPeriod) {
		t.Fatalf("expected ErrNoOpenPeriod, got %v", err)
	}
	if len(repo.periods) != 1 || len(repo.timeslots) != 0 {
		t.Fatalf("expected no period auto-created and no timeslot stored")
	}
}

func TestReportTimeForOtherTenantsClient(t *testing.T) {
	repo := newFakeTrackingRepo()
	seedClientWithOpenPeriod(repo, tenantA)
	svc := newTestService(repo, nil, nil)

	_, err := svc.ReportTime(context.Background(), ReportTimeInput{
		TenantID:   tenantB,
		ClientID:   clientID1,
		Date:       date(2024, time.June, 12),
		Duration:   decimal.NewFromInt(1),
		ChargeRate: decimalPtr("100"),
		Currency:   "USD",
	})
	if !errors.Is(err, ErrClientNotFound) {
		t.Fatalf("expected ErrClientNotFound, got %v", err)
	}
}

func TestReportTimeRejectsBadDuration(t *testing.T) {
	repo := newFakeTrackingRepo()
	seedClientWithOpenPeriod(repo, tenantA)
	svc := newTestService(repo, nil, nil)

	for _, duration := range []string{"0", "-1", "24.5"} {
		_, err := svc.ReportTime(context.Background(), ReportTimeInput{
			TenantID:   tenantA,
			ClientID:   clientID1,
			Date:       date(2024, time.June, 12),
			Duration:   decimal.RequireFromString(duration),
			ChargeRate: decimalPtr("100"),
			Currency:   "USD",
		})
		var validationErr *ValidationError
		if !errors.As(err, &validationErr) || validationErr.Field != "duration" {
			t.Fatalf("expected duration validation error for %s, got %v", duration, err)
		}
	}
}

func TestUpdateTimeslotChangesOnlyMoneyFields(t *testing.T) {
	repo := newFakeTrackingRepo()
	seedClientWithOpenPeriod(repo, tenantA)
	svc := newTestService(repo, nil, nil)

	created, err := svc.ReportTime(context.Background(), ReportTimeInput{
		TenantID:   tenantA,
		ClientID:   clientID1,
		Date:       date(2024, time.June, 12),
		Duration:   decimal.NewFromInt(2),
		ChargeRate: decimalPtr("100"),
		Currency:   "USD",
	})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	updated, err := svc.UpdateTimeslot(context.Background(), UpdateTimeslotInput{
		TenantID:   tenantA,
		TimeslotID: created.ID,
		Duration:   decimalPtr("3"),
		ChargeRate: decimalPtr("80"),
		Currency:   "EUR",
	})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if !updated.Duration.Equal(decimal.NewFromInt(3)) || updated.ChargeRate != 8000 || updated.Currency != "EUR" {
		t.Fatalf("unexpected update %+v", updated)
	}
	if !updated.Date.Equal(created.Date) || updated.PeriodID != created.PeriodID {
		t.Fatalf("expected date and period untouched")
	}

	_, err = svc.UpdateTimeslot(context.Background(), UpdateTimeslotInput{
		TenantID:   tenantB,
		TimeslotID: created.ID,
		Duration:   decimalPtr("1"),
		ChargeRate: decimalPtr("1"),
		Currency:   "EUR",
	})
	if !errors.Is(err, ErrTimeslotNotFound) {
		t.Fatalf("expected ErrTimeslotNotFound, got %v", err)
	}
}

func TestReportTimeFallsBackToClientRate(t *testing.T) {
	repo := newFakeTrackingRepo()
	seedClientWithOpenPeriod(repo, tenantA)
	svc := newTestService(repo, nil, nil)

	for _, currency := range []string{"", "usd"} {
		timeslot, err := svc.ReportTime(context.Background(), ReportTimeInput{
			TenantID: tenantA,
			ClientID: clientID1,
			Date:     date(2024, time.June, 12),
			Duration: decimal.NewFromInt(1),
			Currency: currency,
		})
		if err != nil {
			t.Fatalf("expected no error for currency %q, got %v", currency, err)
		}
		if timeslot.ChargeRate != 10000 || timeslot.Currency != "USD" {
			t.Fatalf("expected client rate 10000 USD, got %d %s", timeslot.ChargeRate, timeslot.Currency)
		}
	}
}

func TestReportTimeNeedsRateForOtherCurrency(t *testing.T) {
	repo := newFakeTrackingRepo()
	seedClientWithOpenPeriod(repo, tenantA)
	svc := newTestService(repo, nil, nil)

	_, err := svc.ReportTime(context.Background(), ReportTimeInput{
		TenantID: tenantA,
		ClientID: clientID1,
		Date:     date(2024, time.June, 12),
		Duration: decimal.NewFromInt(1),
		Currency: "JPY",
	})
	var validationErr *ValidationError
	if !errors.As(err, &validationErr) || validationErr.Field != "charge_rate" {
		t.Fatalf("expected charge_rate validation error, got %v", err)
	}
	if len(repo.timeslots) != 0 {
		t.Fatalf("expected no timeslot stored, got %d", len(repo.timeslots))
	}

	timeslot, err := svc.ReportTime(context.Background(), ReportTimeInput{
		TenantID:   tenantA,
		ClientID:   clientID1,
		Date:       date(2024, time.June, 12),
		Duration:   decimal.NewFromInt(1),
		ChargeRate: decimalPtr("15000"),
		Currency:   "JPY",
	})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if timeslot.ChargeRate != 15000 || timeslot.Currency != "JPY" {
		t.Fatalf("expected 15000 JPY, got %d %s", timeslot.ChargeRate, timeslot.Currency)
	}
}

func TestUpdateTimeslotKeepsOmittedFields(t *testing.T) {
	repo := newFakeTrackingRepo()
	seedClientWithOpenPeriod(repo, tenantA)
	svc := newTestService(repo, nil, nil)

	created, err := svc.ReportTime(context.Background(), ReportTimeInput{
		TenantID:   tenantA,
		ClientID:   clientID1,
		Date:       date(2024, time.June, 12),
		Duration:   decimal.NewFromInt(2),
		ChargeRate: decimalPtr("100"),
		Currency:   "USD",
	})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	updated, err := svc.UpdateTimeslot(context.Background(), UpdateTimeslotInput{
		TenantID:   tenantA,
		TimeslotID: created.ID,
		Duration:   decimalPtr("3"),
		Currency:   "USD",
	})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if !updated.Duration.Equal(decimal.NewFromInt(3)) || updated.ChargeRate != 10000 || updated.Currency != "USD" {
		t.Fatalf("expected rate kept at 10000 USD with 3h, got %+v", updated)
	}

	updated, err = svc.UpdateTimeslot(context.Background(), UpdateTimeslotInput{
		TenantID:   tenantA,
		TimeslotID: created.ID,
		ChargeRate: decimalPtr("120"),
	})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if !updated.Duration.Equal(decimal.NewFromInt(3)) || updated.ChargeRate != 12000 {
		t.Fatalf("expected duration kept and rate 12000, got %+v", updated)
	}

	_, err = svc.UpdateTimeslot(context.Background(), UpdateTimeslotInput{
		TenantID:   tenantA,
		TimeslotID: created.ID,
		Currency:   "EUR",
	})
	var validationErr *ValidationError
	if !errors.As(err, &validationErr) || validationErr.Field != "charge_rate" {
		t.Fatalf("expected charge_rate validation error, got %v", err)
	}
	if stored := repo.timeslots[created.ID]; stored.Currency != "USD" || stored.ChargeRate != 12000 {
		t.Fatalf("expected stored timeslot untouched, got %+v", stored)
	}
}

func TestDeleteTimeslotNotFound(t *testing.T) {
	repo := newFakeTrackingRepo()
	svc := newTestService(repo, nil, nil)

	err := svc.DeleteTimeslot(context.Background(), tenantA, "33333333-3333-3333-3333-333333333333")
	if !errors.Is(err, ErrTimeslotNotFound) {
		t.Fatalf("expected ErrTimeslotNotFound, got %v", err)
	}
}

func TestListClientsServedFromCacheUntilInvalidated(t *testing.T) {
	repo := newFakeTrackingRepo()
	seedClientWithOpenPeriod(repo, tenantA)
	cache := newRecordingCache()
	svc := newTestService(repo, cache, nil)

	first, err := svc.ListClients(context.Background(), tenantA)
	if err != nil || len(first) != 1 {
		t.Fatalf("expected one client, got %d (%v)", len(first), err)
	}

	repo.clients["44444444-4444-4444-4444-444444444444"] = Client{ID: "44444444-4444-4444-4444-444444444444", TenantID: tenantA, Name: "Hidden"}
	cached, err := svc.ListClients(context.Background(), tenantA)
	if err != nil || len(cached) != 1 {
		t.Fatalf("expected cached single client, got %d (%v)", len(cached), err)
	}

	cache.Invalidate(tenantA, TagClients)
	fresh, err := svc.ListClients(context.Background(), tenantA)
	if err != nil || len(fresh) != 2 {
		t.Fatalf("expected two clients after invalidation, got %d (%v)", len(fresh), err)
	}
}

func TestListClientsDoesNotCacheRowsReadBeforeAMutation(t *testing.T) {
	repo := newFakeTrackingRepo()
	seedClientWithOpenPeriod(repo, tenantA)
	cache := newRecordingCache()
	svc := newTestService(repo, cache, nil)

	repo.duringListClients = func() {
		repo.duringListClients = nil
		if _, _, err := svc.CreateClient(context.Background(), CreateClientInput{
			TenantID:      tenantA,
			Name:          "Bolt",
			Currency:      "EUR",
			ChargeRate:    decimal.NewFromInt(80),
			BillingPeriod: "weekly",
		}); err != nil {
			t.Errorf("expected no error, got %v", err)
		}
	}

	first, err := svc.ListClients(context.Background(), tenantA)
	if err != nil || len(first) != 1 {
		t.Fatalf("expected the pre-mutation read to return one client, got %d (%v)", len(first), err)
	}

	second, err := svc.ListClients(context.Background(), tenantA)
	if err != nil || len(second) != 2 {
		t.Fatalf("expected both clients after the mutation, got %d (%v)", len(second), err)
	}
}

func TestDeleteClientRemovesEverything(t *testing.T) {
	repo := newFakeTrackingRepo()
	seedClientWithOpenPeriod(repo, tenantA)
	imageURL := "https://example.supabase.co/storage/v1/object/public/images/acme.png"
	client := repo.clients[clientID1]
	client.ImageURL = &imageURL
	repo.clients[clientID1] = client
	repo.timeslots["55555555-5555-5555-5555-555555555555"] = Timeslot{ID: "55555555-5555-5555-5555-555555555555", TenantID: tenantA, ClientID: clientID1, PeriodID: periodID1}
	images := &fakeImageStore{}
	cache := newRecordingCache()
	svc := newTestService(repo, cache, images)

	if err := svc.DeleteClient(context.Background(), tenantA, clientID1); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(repo.clients) != 0 || len(repo.periods) != 0 || len(repo.timeslots) != 0 {
		t.Fatalf("expected cascade delete, got %d clients %d periods %d timeslots", len(repo.clients), len(repo.periods), len(repo.timeslots))
	}
	if len(images.deleted) != 1 || images.deleted[0] != imageURL {
		t.Fatalf("expected image deleted, got %v", images.deleted)
	}
	if len(cache.invalidated) != 3 {
		t.Fatalf("expected three tags invalidated, got %v", cache.invalidated)
	}
}

func TestDeleteClientSurfacesPartialFailure(t *testing.T) {
	repo := newFakeTrackingRepo()
	seedClientWithOpenPeriod(repo, tenantA)
	repo.failDeleteTimeslots = errors.New("connection reset")
	cache := newRecordingCache()
	svc := newTestService(repo, cache, nil)

	err := svc.DeleteClient(context.Background(), tenantA, clientID1)
	if err == nil || !errors.Is(err, repo.failDeleteTimeslots) {
		t.Fatalf("expected timeslot deletion error, got %v", err)
	}
	if len(repo.clients) != 0 {
		t.Fatalf("expected client row deleted by its own branch")
	}
	if len(cache.invalidated) != 3 {
		t.Fatalf("expected views invalidated after rows were deleted, got %v", cache.invalidated)
	}
}

func TestDeleteClientInvalidatesViewsWhenImageCleanupFails(t *testing.T) {
	repo := newFakeTrackingRepo()
	seedClientWithOpenPeriod(repo, tenantA)
	imageURL := "https://example.supabase.co/storage/v1/object/public/images/acme.png"
	client := repo.clients[clientID1]
	client.ImageURL = &imageURL
	repo.clients[clientID1] = client
	images := &fakeImageStore{err: errors.New("storage unavailable")}
	cache := newRecordingCache()
	svc := newTestService(repo, cache, images)

	if _, err := svc.ListClients(context.Background(), tenantA); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	err := svc.DeleteClient(context.Background(), tenantA, clientID1)
	if !errors.Is(err, images.err) {
		t.Fatalf("expected image error, got %v", err)
	}

	clients, err := svc.ListClients(context.Background(), tenantA)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(clients) != 0 {
		t.Fatalf("expected deleted client gone from the list, got %d", len(clients))
	}
}

func TestDeleteClientOfOtherTenant(t *testing.T) {
	repo := newFakeTrackingRepo()
	seedClientWithOpenPeriod(repo, tenantA)
	svc := newTestService(repo, nil, nil)

	err := svc.DeleteClient(context.Background(), tenantB, clientID1)
	if !errors.Is(err, ErrClientNotFound) {
		t.Fatalf("expected ErrClientNotFound, got %v", err)
	}
	if len(repo.clients) != 1 {
		t.Fatalf("expected client kept")
	}
}

func TestUpdateClientReplacesImage(t *testing.T) {
	repo := newFakeTrackingRepo()
	seedClientWithOpenPeriod(repo, tenantA)
	oldURL := "https://example.supabase.co/storage/v1/object/public/images/old.png"
	client := repo.clients[clientID1]
	client.ImageURL = &oldURL
	repo.clients[clientID1] = client
	images := &fakeImageStore{}
	svc := newTestService(repo, nil, images)

	newURL := "https://example.supabase.co/storage/v1/object/public/images/new.png"
	updated, err := svc.UpdateClient(context.Background(), UpdateClientInput{
		TenantID:      tenantA,
		ClientID:      clientID1,
		Name:          "Acme GmbH",
		Currency:      "EUR",
		ChargeRate:    decimal.RequireFromString("90"),
		BillingPeriod: "biweekly",
		ImageURL:      OptionalNullableString{Set: true, Value: &newURL},
	})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if updated.Name != "Acme GmbH" || updated.ChargeRate != 9000 || updated.BillingPeriod != CadenceBiweekly {
		t.Fatalf("unexpected client %+v", updated)
	}
	if updated.ImageURL == nil || *updated.ImageURL != newURL {
		t.Fatalf("expected new image url")
	}
	if len(images.deleted) != 1 || images.deleted[0] != oldURL {
		t.Fatalf("expected old image deleted, got %v", images.deleted)
	}
}
