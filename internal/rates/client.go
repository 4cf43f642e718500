package rates

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"time-report-go/internal/domain/money"
	"time-report-go/internal/resilience"

	"github.com/shopspring/decimal"
)

type ratesResponse struct {
	Base  string                     `json:"base"`
	Date  string                     `json:"date"`
	Rates map[string]decimal.Decimal `json:"rates"`
}

// HTTPClient fetches a pivot-relative rate table from a JSON endpoint
// shaped like {"base":"EUR","date":"2024-06-12","rates":{"USD":1.08}}.
type HTTPClient struct {
	httpClient *http.Client
	url        string
	pivot      money.Code
	now        func() time.Time
}

func NewHTTPClient(httpClient *http.Client, url string, pivot money.Code) *HTTPClient {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	return &HTTPClient{
		httpClient: httpClient,
		url:        url,
		pivot:      pivot,
		now:        time.Now,
	}
}

func (c *HTTPClient) Fetch(ctx context.Context) (money.RateTable, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return money.RateTable{}, resilience.Permanent(err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return money.RateTable{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		statusErr := &resilience.StatusError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(body))}
		if !statusErr.Retryable() {
			return money.RateTable{}, resilience.Permanent(statusErr)
		}
		return money.RateTable{}, statusErr
	}

	var payload ratesResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return money.RateTable{}, resilience.Permanent(fmt.Errorf("decode rates: %w", err))
	}

	return c.toTable(payload)
}

func (c *HTTPClient) toTable(payload ratesResponse) (money.RateTable, error) {
	base := money.Code(strings.ToUpper(strings.TrimSpace(payload.Base)))
	if base == "" {
		base = c.pivot
	}
	if base != c.pivot {
		return money.RateTable{}, resilience.Permanent(fmt.Errorf("%w: got %s, want %s", ErrPivotMismatch, base, c.pivot))
	}

	table := money.RateTable{
		Pivot:     c.pivot,
		Rates:     make(map[money.Code]decimal.Decimal, len(payload.Rates)+1),
		FetchedAt: c.now().UTC(),
	}
	for code, rate := range payload.Rates {
		parsed, err := money.ParseCode(code)
		if err != nil || !rate.IsPositive() {
			continue
		}
		table.Rates[parsed] = rate
	}
	if _, ok := table.Rates[c.pivot]; !ok {
		table.Rates[c.pivot] = decimal.NewFromInt(1)
	}

	return table, nil
}
