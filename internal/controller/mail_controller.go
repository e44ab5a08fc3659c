package controller

import (
	"context"
	"errors"
	"mime/multipart"
	"net/http"

	"github.com/google/uuid"

	appErrors "github.com/unclebandit/mailtrack-backend/internal/errors"
	"github.com/unclebandit/mailtrack-backend/internal/logger"
	"github.com/unclebandit/mailtrack-backend/internal/model"
	"github.com/unclebandit/mailtrack-backend/internal/service"
)

type MailService interface {
	List(ctx context.Context, search, status string, page, pageSize int) ([]model.MailWithCustomer, map[string]int, error)
	Create(ctx context.Context, customerID uuid.UUID, sender string, photos []service.PhotoUpload) (*model.Mail, error)
	Pickup(ctx context.Context, id uuid.UUID, method string) (*model.Mail, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

var _ MailService = (*service.MailService)(nil)

type MailController struct {
	MailService MailService
	Log         logger.Logger
	// MaxUploadBytes caps the multipart body of CreateMail.
	MaxUploadBytes int64
}

func (c *MailController) ListMails(w http.ResponseWriter, r *http.Request) {
	page, pageSize := pageParams(r)
	q := r.URL.Query()

	mails, pagination, err := c.MailService.List(r.Context(), q.Get("search"), q.Get("status"), page, pageSize)
	if err != nil {
		writeError(w, r, c.Log, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"data":       mails,
		"pagination": pagination,
	})
}

// CreateMail takes multipart/form-data with customer_id, sender and any
// number of "photos" files.
func (c *MailController) CreateMail(w http.ResponseWriter, r *http.Request) {
	limit := c.MaxUploadBytes
	if limit <= 0 {
		limit = 32 << 20
	}
	r.Body = http.MaxBytesReader(w, r.Body, limit)
	if err := r.ParseMultipartForm(limit); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeJSON(w, http.StatusRequestEntityTooLarge, map[string]any{"error": "upload too large"})
			return
		}
		writeError(w, r, c.Log, appErrors.NewValidation("body", "expected multipart form data"))
		return
	}
	defer r.MultipartForm.RemoveAll()

	customerID, err := uuid.Parse(r.FormValue("customer_id"))
	if err != nil {
		writeError(w, r, c.Log, appErrors.NewValidation("customer_id", "must be a UUID"))
		return
	}

	headers := r.MultipartForm.File["photos"]
	photos := make([]service.PhotoUpload, 0, len(headers))
	for _, fh := range headers {
		f, err := fh.Open()
		if err != nil {
			writeError(w, r, c.Log, err)
			return
		}
		defer f.Close()
		photos = append(photos, service.PhotoUpload{
			Filename:    fh.Filename,
			ContentType: contentType(fh),
			Size:        fh.Size,
			Body:        f,
		})
	}

	mail, err := c.MailService.Create(r.Context(), customerID, r.FormValue("sender"), photos)
	if err != nil {
		writeError(w, r, c.Log, err)
		return
	}
	writeJSON(w, http.StatusCreated, mail)
}

func (c *MailController) PickupMail(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		writeError(w, r, c.Log, err)
		return
	}
	var body struct {
		Method string `json:"method"`
	}
	if r.ContentLength != 0 {
		if err := decodeJSON(r, &body); err != nil {
			writeError(w, r, c.Log, err)
			return
		}
	}

	mail, err := c.MailService.Pickup(r.Context(), id, body.Method)
	if err != nil {
		writeError(w, r, c.Log, err)
		return
	}
	writeJSON(w, http.StatusOK, mail)
}

func (c *MailController) DeleteMail(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		writeError(w, r, c.Log, err)
		return
	}
	if err := c.MailService.Delete(r.Context(), id); err != nil {
		writeError(w, r, c.Log, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func contentType(fh *multipart.FileHeader) string {
	if ct := fh.Header.Get("Content-Type"); ct != "" {
		return ct
	}
	return "application/octet-stream"
}
