package common

import (
	"time-report-go/internal/domain/money"
	userdomain "time-report-go/internal/domain/user"
	"time-report-go/pkg/logger"
)

// RateSnapshot reports the cached exchange rate table without fetching.
type RateSnapshot interface {
	Snapshot() (money.RateTable, bool)
}

type Handlers struct {
	Profiles *userdomain.Service
	rates    RateSnapshot
	log      logger.Logger
}

func New(profiles *userdomain.Service, rates RateSnapshot, log logger.Logger) *Handlers {
	return &Handlers{
		Profiles: profiles,
		rates:    rates,
		log:      log,
	}
}
