package controller

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	appErrors "github.com/unclebandit/mailtrack-backend/internal/errors"
	"github.com/unclebandit/mailtrack-backend/internal/logger"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeError maps err to its HTTP status. Internal errors are logged and
// hidden from the client.
func writeError(w http.ResponseWriter, r *http.Request, lggr logger.Logger, err error) {
	status := appErrors.HTTPStatus(err)
	body := map[string]any{"error": err.Error()}

	var ve *appErrors.ValidationError
	if errors.As(err, &ve) {
		body["error"] = ve.Message
		if ve.Field != "" {
			body["field"] = ve.Field
		}
	}
	if status == http.StatusInternalServerError {
		if lggr != nil {
			lggr.Errorw("Request failed", "method", r.Method, "path", r.URL.Path, "err", err)
		}
		body["error"] = "internal server error"
	}
	writeJSON(w, status, body)
}

func decodeJSON(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return appErrors.NewValidation("body", "invalid request body")
	}
	return nil
}

func idParam(r *http.Request) (uuid.UUID, error) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		return uuid.Nil, appErrors.NewValidation("id", "must be a UUID")
	}
	return id, nil
}

// pageParams reads page and page_size. Bad values fall back to the
// service defaults.
func pageParams(r *http.Request) (int, int) {
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	pageSize, _ := strconv.Atoi(r.URL.Query().Get("page_size"))
	return page, pageSize
}
