// internal/service/mail_service.go
package service

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"

	appErrors "github.com/unclebandit/mailtrack-backend/internal/errors"
	"github.com/unclebandit/mailtrack-backend/internal/logger"
	"github.com/unclebandit/mailtrack-backend/internal/metrics"
	"github.com/unclebandit/mailtrack-backend/internal/model"
	"github.com/unclebandit/mailtrack-backend/internal/queue"
	"github.com/unclebandit/mailtrack-backend/internal/repository"
	"github.com/unclebandit/mailtrack-backend/internal/storage"
)

type MailService struct {
	MailRepo     repository.MailRepositoryInterface
	CustomerRepo repository.CustomerRepositoryInterface
	Photos       storage.PhotoStore
	Queue        queue.Queue
	Metrics      *metrics.Metrics
	Log          logger.Logger
	Now          func() time.Time
}

// PhotoUpload is one file attached to a new mail.
type PhotoUpload struct {
	Filename    string
	ContentType string
	Size        int64
	Body        io.Reader
}

func (s *MailService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

// List fetches mail joined with customers, with pagination. status "" or
// "all" disables the status filter.
func (s *MailService) List(ctx context.Context, search, status string, page, pageSize int) ([]model.MailWithCustomer, map[string]int, error) {
	if status == "all" {
		status = ""
	}
	if status != "" && !model.ValidMailStatus(status) {
		return nil, nil, appErrors.NewValidation("status", fmt.Sprintf("must be %s, %s or all", model.MailStatusPending, model.MailStatusPickedUp))
	}
	page, pageSize, offset := normalizePage(page, pageSize)

	mails, total, err := s.MailRepo.List(ctx, offset, pageSize, strings.TrimSpace(search), status)
	if err != nil {
		return nil, nil, err
	}
	return mails, paginationInfo(page, pageSize, total), nil
}

// Create uploads the photos, stores a pending mail for the customer and
// publishes a MailRegisteredEvent.
func (s *MailService) Create(ctx context.Context, customerID uuid.UUID, sender string, photos []PhotoUpload) (*model.Mail, error) {
	sender = strings.TrimSpace(sender)
	if sender == "" {
		return nil, appErrors.NewValidation("sender", "is required")
	}
	if customerID == uuid.Nil {
		return nil, appErrors.NewValidation("customer_id", "is required")
	}

	customer, err := s.CustomerRepo.GetByID(ctx, customerID)
	if err != nil {
		return nil, err
	}

	at := s.now()
	urls := make([]string, 0, len(photos))
	for i, p := range photos {
		name := storage.ObjectName(at, i, p.Filename)
		u, err := s.Photos.Put(ctx, name, p.Body, p.Size, p.ContentType)
		if err != nil {
			removePhotos(ctx, s.Photos, s.Log, urls)
			return nil, fmt.Errorf("upload photo %q: %w", p.Filename, err)
		}
		urls = append(urls, u)
		if s.Metrics != nil {
			s.Metrics.PhotosUploaded.Inc()
		}
	}

	m := &model.Mail{
		CustomerID: customer.ID,
		Sender:     sender,
		Photos:     urls,
	}
	if err := s.MailRepo.Create(ctx, m); err != nil {
		removePhotos(ctx, s.Photos, s.Log, urls)
		return nil, err
	}
	if s.Metrics != nil {
		s.Metrics.MailsRegistered.Inc()
	}
	s.Log.Infow("Mail registered", "mail_id", m.ID, "customer_id", customer.CustomerID, "photos", len(urls))

	s.publish(model.MailRegisteredEvent{
		MailID:       m.ID,
		CustomerID:   customer.ID,
		CustomerCode: customer.CustomerID,
		FullName:     customer.FullName,
		Phone:        customer.Phone,
		Sender:       m.Sender,
		PhotoCount:   len(urls),
		CreatedAt:    m.CreatedAt,
	})
	return m, nil
}

// publish never fails the request: the mail is already stored.
func (s *MailService) publish(ev model.MailRegisteredEvent) {
	if s.Queue == nil {
		return
	}
	if err := s.Queue.Publish(model.TopicMailRegistered, ev); err != nil {
		if s.Metrics != nil {
			s.Metrics.NotificationErrors.Inc()
		}
		s.Log.Warnw("Failed to publish mail event", "mail_id", ev.MailID, "err", err)
	}
}

// Pickup marks a single pending mail as picked up.
func (s *MailService) Pickup(ctx context.Context, id uuid.UUID, method string) (*model.Mail, error) {
	method = pickupMethodOrDefault(method)

	if err := s.MailRepo.MarkPickedUp(ctx, id, s.now(), method); err != nil {
		return nil, err
	}
	if s.Metrics != nil {
		s.Metrics.MailsPickedUp.WithLabelValues(method).Inc()
	}
	return s.MailRepo.GetByID(ctx, id)
}

func (s *MailService) Delete(ctx context.Context, id uuid.UUID) error {
	photos, err := s.MailRepo.Delete(ctx, id)
	if err != nil {
		return err
	}
	s.Log.Infow("Mail deleted", "mail_id", id)
	removePhotos(ctx, s.Photos, s.Log, photos)
	return nil
}
