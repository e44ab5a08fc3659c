package service

import (
	"context"
	"time"

	"github.com/unclebandit/mailtrack-backend/internal/model"
	"github.com/unclebandit/mailtrack-backend/internal/repository"
)

type DashboardService struct {
	MailRepo     repository.MailRepositoryInterface
	CustomerRepo repository.CustomerRepositoryInterface
	Location     *time.Location
	Now          func() time.Time
}

type DashboardOverview struct {
	Date string `json:"date"`
	model.MailStats
	PendingCustomers []model.CustomerWithPending `json:"pending_customers"`
}

// Overview returns today's and this month's counters in the business time
// zone plus the customers that still have mail waiting.
func (s *DashboardService) Overview(ctx context.Context) (*DashboardOverview, error) {
	loc := s.Location
	if loc == nil {
		loc = time.UTC
	}
	now := time.Now()
	if s.Now != nil {
		now = s.Now()
	}

	dayStart, dayEnd := dayBounds(now, loc)
	monthStart, monthEnd := monthBounds(now, loc)

	stats, err := s.MailRepo.Stats(ctx, dayStart, dayEnd, monthStart, monthEnd)
	if err != nil {
		return nil, err
	}
	customers, err := s.CustomerRepo.ListWithPending(ctx)
	if err != nil {
		return nil, err
	}

	return &DashboardOverview{
		Date:             dayStart.Format("2006-01-02"),
		MailStats:        *stats,
		PendingCustomers: customers,
	}, nil
}
