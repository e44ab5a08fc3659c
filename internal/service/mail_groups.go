package service

import (
	"sort"
	"time"

	"github.com/unclebandit/mailtrack-backend/internal/model"
)

// MonthLayout is the yyyy-MM key used by the pickup history filter.
const MonthLayout = "2006-01"

// splitByStatus partitions mails into pending and picked up, keeping order.
func splitByStatus(mails []model.Mail) (pending, pickedUp []model.Mail) {
	pending, pickedUp = []model.Mail{}, []model.Mail{}
	for _, m := range mails {
		switch m.Status {
		case model.MailStatusPending:
			pending = append(pending, m)
		case model.MailStatusPickedUp:
			pickedUp = append(pickedUp, m)
		}
	}
	return pending, pickedUp
}

// pickupMonths lists the distinct pickup months, newest first.
func pickupMonths(mails []model.Mail, loc *time.Location) []string {
	seen := map[string]bool{}
	months := []string{}
	for _, m := range mails {
		if m.PickupTime == nil {
			continue
		}
		k := m.PickupTime.In(loc).Format(MonthLayout)
		if !seen[k] {
			seen[k] = true
			months = append(months, k)
		}
	}
	sort.Sort(sort.Reverse(sort.StringSlice(months)))
	return months
}

// filterByMonth keeps mails picked up in month. "" and "all" keep everything.
func filterByMonth(mails []model.Mail, month string, loc *time.Location) []model.Mail {
	if month == "" || month == "all" {
		return mails
	}
	out := []model.Mail{}
	for _, m := range mails {
		if m.PickupTime != nil && m.PickupTime.In(loc).Format(MonthLayout) == month {
			out = append(out, m)
		}
	}
	return out
}

func validMonth(month string) bool {
	if month == "" || month == "all" {
		return true
	}
	_, err := time.Parse(MonthLayout, month)
	return err == nil
}

// dayBounds returns [start of day, start of next day) for t in loc.
func dayBounds(t time.Time, loc *time.Location) (time.Time, time.Time) {
	t = t.In(loc)
	start := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc)
	return start, start.AddDate(0, 0, 1)
}

// monthBounds returns [first of month, first of next month) for t in loc.
func monthBounds(t time.Time, loc *time.Location) (time.Time, time.Time) {
	t = t.In(loc)
	start := time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, loc)
	return start, start.AddDate(0, 1, 0)
}
