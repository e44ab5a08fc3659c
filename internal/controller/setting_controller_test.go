package controller_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/unclebandit/mailtrack-backend/internal/controller"
	appErrors "github.com/unclebandit/mailtrack-backend/internal/errors"
	"github.com/unclebandit/mailtrack-backend/internal/logger"
	"github.com/unclebandit/mailtrack-backend/internal/model"
)

func TestUpdateSettingHandler(t *testing.T) {
	ctrl := &controller.SettingController{
		Log: logger.Test(t),
		SettingService: &StubSettingService{
			UpdateFn: func(ctx context.Context, key, value string) (*model.Setting, error) {
				if key != model.SettingWebhookURL {
					return nil, appErrors.NewNotFound("setting", key)
				}
				return &model.Setting{Key: key, Value: &value}, nil
			},
		},
	}

	req := withURLParam(httptest.NewRequest(http.MethodPut, "/", strings.NewReader(`{"value":"https://example.com/hook"}`)), "key", model.SettingWebhookURL)
	w := httptest.NewRecorder()
	ctrl.UpdateSetting(w, req)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"value":"https://example.com/hook"`)

	req = withURLParam(httptest.NewRequest(http.MethodPut, "/", strings.NewReader(`{"value":"x"}`)), "key", "nope")
	w = httptest.NewRecorder()
	ctrl.UpdateSetting(w, req)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestListSettingsHandler(t *testing.T) {
	ctrl := &controller.SettingController{
		Log: logger.Test(t),
		SettingService: &StubSettingService{
			ListFn: func(ctx context.Context) ([]model.Setting, error) {
				return []model.Setting{{Key: model.SettingNotificationTemplate}}, nil
			},
		},
	}
	w := httptest.NewRecorder()
	ctrl.ListSettings(w, httptest.NewRequest(http.MethodGet, "/api/settings", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), model.SettingNotificationTemplate)
}
