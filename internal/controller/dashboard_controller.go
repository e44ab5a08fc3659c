package controller

import (
	"context"
	"net/http"

	"github.com/unclebandit/mailtrack-backend/internal/logger"
	"github.com/unclebandit/mailtrack-backend/internal/service"
)

type DashboardService interface {
	Overview(ctx context.Context) (*service.DashboardOverview, error)
}

var _ DashboardService = (*service.DashboardService)(nil)

type DashboardController struct {
	DashboardService DashboardService
	Log              logger.Logger
}

func (c *DashboardController) Overview(w http.ResponseWriter, r *http.Request) {
	o, err := c.DashboardService.Overview(r.Context())
	if err != nil {
		writeError(w, r, c.Log, err)
		return
	}
	writeJSON(w, http.StatusOK, o)
}
