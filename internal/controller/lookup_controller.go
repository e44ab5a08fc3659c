package controller

import (
	"context"
	"net/http"

	"github.com/unclebandit/mailtrack-backend/internal/logger"
	"github.com/unclebandit/mailtrack-backend/internal/service"
)

type LookupService interface {
	Lookup(ctx context.Context, phone, month string) (*service.LookupResult, error)
}

var _ LookupService = (*service.LookupService)(nil)

// LookupController serves the public customer lookup. No session required.
type LookupController struct {
	LookupService LookupService
	Log           logger.Logger
}

// Lookup accepts {"phone", "month"} as a JSON body (POST) or query parameters (GET).
func (c *LookupController) Lookup(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Phone string `json:"phone"`
		Month string `json:"month"`
	}
	if r.Method == http.MethodPost {
		if err := decodeJSON(r, &body); err != nil {
			writeError(w, r, c.Log, err)
			return
		}
	} else {
		body.Phone = r.URL.Query().Get("phone")
		body.Month = r.URL.Query().Get("month")
	}

	res, err := c.LookupService.Lookup(r.Context(), body.Phone, body.Month)
	if err != nil {
		writeError(w, r, c.Log, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}
