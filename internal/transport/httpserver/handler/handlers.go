package handler

import (
	commonhandler "time-report-go/internal/transport/httpserver/handler/common"
	revenuehandler "time-report-go/internal/transport/httpserver/handler/revenue"
	trackinghandler "time-report-go/internal/transport/httpserver/handler/tracking"
)

type Handlers struct {
	Common   *commonhandler.Handlers
	Tracking *trackinghandler.Handlers
	Revenue  *revenuehandler.Handlers
}

func New(common *commonhandler.Handlers, tracking *trackinghandler.Handlers, revenue *revenuehandler.Handlers) *Handlers {
	return &Handlers{
		Common:   common,
		Tracking: tracking,
		Revenue:  revenue,
	}
}
