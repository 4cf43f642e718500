package tracking

import (
	trackingdomain "time-report-go/internal/domain/tracking"
	"time-report-go/pkg/logger"
)

type Handlers struct {
	Tracking *trackingdomain.Service
	log      logger.Logger
}

func New(tracking *trackingdomain.Service, log logger.Logger) *Handlers {
	return &Handlers{
		Tracking: tracking,
		log:      log,
	}
}
