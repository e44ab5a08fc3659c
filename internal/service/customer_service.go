// internal/service/customer_service.go
package service

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	appErrors "github.com/unclebandit/mailtrack-backend/internal/errors"
	"github.com/unclebandit/mailtrack-backend/internal/logger"
	"github.com/unclebandit/mailtrack-backend/internal/metrics"
	"github.com/unclebandit/mailtrack-backend/internal/model"
	"github.com/unclebandit/mailtrack-backend/internal/repository"
	"github.com/unclebandit/mailtrack-backend/internal/storage"
)

const searchLimit = 10

type CustomerService struct {
	CustomerRepo repository.CustomerRepositoryInterface
	MailRepo     repository.MailRepositoryInterface
	Photos       storage.PhotoStore
	Metrics      *metrics.Metrics
	Log          logger.Logger
	Location     *time.Location
	Now          func() time.Time
}

// CustomerInput is the editable part of a customer.
type CustomerInput struct {
	FullName string  `json:"full_name" validate:"required,max=200"`
	Phone    string  `json:"phone" validate:"required,max=50"`
	Email    *string `json:"email" validate:"omitempty,email"`
	Notes    *string `json:"notes"`
}

func (in *CustomerInput) normalize() {
	in.FullName = strings.TrimSpace(in.FullName)
	in.Phone = strings.TrimSpace(in.Phone)
	in.Email = trimPtr(in.Email)
	in.Notes = trimPtr(in.Notes)
}

type CustomerDetail struct {
	Customer      *model.Customer `json:"customer"`
	PendingMails  []model.Mail    `json:"pending_mails"`
	PickedUpMails []model.Mail    `json:"picked_up_mails"`
	PickupMonths  []string        `json:"pickup_months"`
	Month         string          `json:"month"`
}

func (s *CustomerService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

func (s *CustomerService) location() *time.Location {
	if s.Location == nil {
		return time.UTC
	}
	return s.Location
}

// List fetches customers with pagination
func (s *CustomerService) List(ctx context.Context, search string, page, pageSize int) ([]model.CustomerWithPending, map[string]int, error) {
	page, pageSize, offset := normalizePage(page, pageSize)

	customers, total, err := s.CustomerRepo.List(ctx, offset, pageSize, strings.TrimSpace(search))
	if err != nil {
		return nil, nil, err
	}
	return customers, paginationInfo(page, pageSize, total), nil
}

// Search powers the customer picker on the new-mail form.
func (s *CustomerService) Search(ctx context.Context, query string) ([]model.Customer, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return []model.Customer{}, nil
	}
	return s.CustomerRepo.Search(ctx, query, searchLimit)
}

func (s *CustomerService) Create(ctx context.Context, in CustomerInput) (*model.Customer, error) {
	in.normalize()
	if err := validateStruct(in); err != nil {
		return nil, err
	}

	c := &model.Customer{
		FullName: in.FullName,
		Phone:    in.Phone,
		Email:    in.Email,
		Notes:    in.Notes,
	}
	if err := s.CustomerRepo.Create(ctx, c); err != nil {
		return nil, err
	}
	s.Log.Infow("Customer created", "id", c.ID, "customer_id", c.CustomerID)
	return c, nil
}

func (s *CustomerService) Update(ctx context.Context, id uuid.UUID, in CustomerInput) (*model.Customer, error) {
	in.normalize()
	if err := validateStruct(in); err != nil {
		return nil, err
	}

	c := &model.Customer{
		ID:       id,
		FullName: in.FullName,
		Phone:    in.Phone,
		Email:    in.Email,
		Notes:    in.Notes,
	}
	if err := s.CustomerRepo.Update(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

// Get returns the customer with mail split by status. month ("yyyy-MM" or
// "all") filters the picked-up history.
func (s *CustomerService) Get(ctx context.Context, id uuid.UUID, month string) (*CustomerDetail, error) {
	if !validMonth(month) {
		return nil, appErrors.NewValidation("month", "must be yyyy-MM or all")
	}

	c, err := s.CustomerRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	mails, err := s.MailRepo.ListByCustomer(ctx, id)
	if err != nil {
		return nil, err
	}

	pending, pickedUp := splitByStatus(mails)
	if month == "" {
		month = "all"
	}
	return &CustomerDetail{
		Customer:      c,
		PendingMails:  pending,
		PickedUpMails: filterByMonth(pickedUp, month, s.location()),
		PickupMonths:  pickupMonths(pickedUp, s.location()),
		Month:         month,
	}, nil
}

// Delete removes the customer together with all of their mail, then their
// stored photos.
func (s *CustomerService) Delete(ctx context.Context, id uuid.UUID) error {
	photos, err := s.CustomerRepo.DeleteWithMails(ctx, id)
	if err != nil {
		return err
	}
	s.Log.Infow("Customer deleted", "id", id, "photos", len(photos))
	removePhotos(ctx, s.Photos, s.Log, photos)
	return nil
}

// PickupAll marks every pending mail of the customer as picked up and
// returns how many were updated.
func (s *CustomerService) PickupAll(ctx context.Context, id uuid.UUID, method string) (int, error) {
	method = pickupMethodOrDefault(method)

	if _, err := s.CustomerRepo.GetByID(ctx, id); err != nil {
		return 0, err
	}
	n, err := s.MailRepo.MarkAllPickedUp(ctx, id, s.now(), method)
	if err != nil {
		return 0, err
	}
	if s.Metrics != nil {
		s.Metrics.MailsPickedUp.WithLabelValues(method).Add(float64(n))
	}
	s.Log.Infow("Customer picked up mail", "id", id, "count", n, "method", method)
	return n, nil
}

func pickupMethodOrDefault(method string) string {
	method = strings.TrimSpace(method)
	if method == "" {
		return model.PickupInPerson
	}
	return method
}

// removePhotos deletes stored photos. Failures are logged and skipped.
func removePhotos(ctx context.Context, store storage.PhotoStore, lggr logger.Logger, urls []string) {
	if store == nil {
		return
	}
	for _, u := range urls {
		if err := store.Delete(ctx, u); err != nil {
			lggr.Warnw("Failed to remove photo", "url", u, "err", err)
		}
	}
}
