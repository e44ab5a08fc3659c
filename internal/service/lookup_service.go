package service

import (
	"context"
	"strings"
	"time"

	appErrors "github.com/unclebandit/mailtrack-backend/internal/errors"
	"github.com/unclebandit/mailtrack-backend/internal/model"
	"github.com/unclebandit/mailtrack-backend/internal/repository"
)

// LookupService answers the public "where is my mail" page.
type LookupService struct {
	CustomerRepo repository.CustomerRepositoryInterface
	MailRepo     repository.MailRepositoryInterface
	Location     *time.Location
}

type LookupResult struct {
	Customer      *model.CustomerSummary `json:"customer"`
	PendingMails  []model.Mail           `json:"pendingMails"`
	PickedUpMails []model.Mail           `json:"pickedUpMails"`
	PickupMonths  []string               `json:"pickupMonths"`
}

// Lookup finds a customer by exact phone number. An unknown phone is not an
// error: the result has a nil customer and empty lists.
func (s *LookupService) Lookup(ctx context.Context, phone, month string) (*LookupResult, error) {
	phone = strings.TrimSpace(phone)
	if phone == "" {
		return nil, appErrors.NewValidation("phone", "Phone number is required")
	}
	if !validMonth(month) {
		return nil, appErrors.NewValidation("month", "must be yyyy-MM or all")
	}

	res := &LookupResult{
		PendingMails:  []model.Mail{},
		PickedUpMails: []model.Mail{},
		PickupMonths:  []string{},
	}

	customer, err := s.CustomerRepo.GetByPhone(ctx, phone)
	if err != nil {
		return nil, err
	}
	if customer == nil {
		return res, nil
	}
	summary := customer.Summary()
	res.Customer = &summary

	mails, err := s.MailRepo.ListByCustomer(ctx, customer.ID)
	if err != nil {
		return nil, err
	}

	loc := s.Location
	if loc == nil {
		loc = time.UTC
	}
	pending, pickedUp := splitByStatus(mails)
	res.PendingMails = pending
	res.PickupMonths = pickupMonths(pickedUp, loc)
	res.PickedUpMails = filterByMonth(pickedUp, month, loc)
	return res, nil
}
