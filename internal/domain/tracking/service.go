package tracking

import (
	"fmt"
	"strings"
	"time"

	"time-report-go/internal/domain/money"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
)

const defaultViewTTL = time.Minute

var tracer = otel.Tracer("tracking")

type Service struct {
	repo    Repository
	cache   ViewCache
	images  ImageStore
	viewTTL time.Duration
	now     func() time.Time
}

func NewService(repo Repository, cache ViewCache, images ImageStore, viewTTL time.Duration) *Service {
	if cache == nil {
		cache = noopViewCache{}
	}
	if images == nil {
		images = noopImageStore{}
	}
	if viewTTL <= 0 {
		viewTTL = defaultViewTTL
	}

	return &Service{
		repo:    repo,
		cache:   cache,
		images:  images,
		viewTTL: viewTTL,
		now:     time.Now,
	}
}

func (s *Service) today() time.Time {
	return dateOnly(s.now().UTC())
}

func validateName(name string) (string, error) {
	const maxLen = 120
	name = strings.TrimSpace(name)
	if name == "" {
		return "", invalid("name", "name is required")
	}
	if len([]rune(name)) > maxLen {
		return "", invalid("name", fmt.Sprintf("name must be at most %d characters", maxLen))
	}
	return name, nil
}

func parseCurrency(value string) (money.Code, error) {
	code, err := money.ParseCode(value)
	if err != nil {
		return "", &ValidationError{Field: "currency", Message: "unknown currency code", Err: err}
	}
	return code, nil
}

func normalizeChargeRate(rate decimal.Decimal, code money.Code) (int64, error) {
	if rate.IsNegative() {
		return 0, invalid("charge_rate", "charge rate must not be negative")
	}
	return money.Normalize(rate, code)
}

func validateDuration(duration decimal.Decimal) error {
	if !duration.IsPositive() {
		return invalid("duration", "duration must be positive")
	}
	if duration.GreaterThan(decimal.NewFromInt(24)) {
		return invalid("duration", "duration must be at most 24 hours")
	}
	return nil
}

func validateID(field, value string) error {
	if _, err := uuid.Parse(value); err != nil {
		return invalid(field, "must be a uuid")
	}
	return nil
}
