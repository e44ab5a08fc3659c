package controller

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/unclebandit/mailtrack-backend/internal/logger"
	"github.com/unclebandit/mailtrack-backend/internal/model"
	"github.com/unclebandit/mailtrack-backend/internal/service"
)

type SettingService interface {
	List(ctx context.Context) ([]model.Setting, error)
	Update(ctx context.Context, key, value string) (*model.Setting, error)
}

var _ SettingService = (*service.SettingService)(nil)

type SettingController struct {
	SettingService SettingService
	Log            logger.Logger
}

func (c *SettingController) ListSettings(w http.ResponseWriter, r *http.Request) {
	settings, err := c.SettingService.List(r.Context())
	if err != nil {
		writeError(w, r, c.Log, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"data": settings})
}

func (c *SettingController) UpdateSetting(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Value string `json:"value"`
	}
	if err := decodeJSON(r, &body); err != nil {
		writeError(w, r, c.Log, err)
		return
	}

	s, err := c.SettingService.Update(r.Context(), chi.URLParam(r, "key"), body.Value)
	if err != nil {
		writeError(w, r, c.Log, err)
		return
	}
	writeJSON(w, http.StatusOK, s)
}
