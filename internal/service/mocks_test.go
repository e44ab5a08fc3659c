package service_test

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	appErrors "github.com/unclebandit/mailtrack-backend/internal/errors"
	"github.com/unclebandit/mailtrack-backend/internal/model"
	"github.com/unclebandit/mailtrack-backend/internal/repository"
	"github.com/unclebandit/mailtrack-backend/internal/storage"
)

// Mock repositories

type MockCustomerRepo struct {
	Customers map[uuid.UUID]*model.Customer
	Mails     *MockMailRepo
	seq       int
}

func NewMockCustomerRepo(mails *MockMailRepo) *MockCustomerRepo {
	return &MockCustomerRepo{Customers: map[uuid.UUID]*model.Customer{}, Mails: mails}
}

func (m *MockCustomerRepo) Add(fullName, phone string) *model.Customer {
	c := &model.Customer{FullName: fullName, Phone: phone}
	if err := m.Create(context.Background(), c); err != nil {
		panic(err)
	}
	return c
}

func (m *MockCustomerRepo) Create(ctx context.Context, c *model.Customer) error {
	for _, existing := range m.Customers {
		if existing.Phone == c.Phone {
			return appErrors.ErrDuplicatePhone
		}
	}
	m.seq++
	c.ID = uuid.New()
	c.CustomerID = fmt.Sprintf("C%05d", m.seq)
	c.CreatedAt = time.Now()
	cp := *c
	m.Customers[c.ID] = &cp
	return nil
}

func (m *MockCustomerRepo) Update(ctx context.Context, c *model.Customer) error {
	existing, ok := m.Customers[c.ID]
	if !ok {
		return appErrors.NewNotFound("customer", c.ID.String())
	}
	for id, other := range m.Customers {
		if id != c.ID && other.Phone == c.Phone {
			return appErrors.ErrDuplicatePhone
		}
	}
	c.CustomerID = existing.CustomerID
	c.CreatedAt = existing.CreatedAt
	cp := *c
	m.Customers[c.ID] = &cp
	return nil
}

func (m *MockCustomerRepo) GetByID(ctx context.Context, id uuid.UUID) (*model.Customer, error) {
	c, ok := m.Customers[id]
	if !ok {
		return nil, appErrors.NewNotFound("customer", id.String())
	}
	cp := *c
	return &cp, nil
}

func (m *MockCustomerRepo) GetByPhone(ctx context.Context, phone string) (*model.Customer, error) {
	for _, c := range m.Customers {
		if c.Phone == phone {
			cp := *c
			return &cp, nil
		}
	}
	return nil, nil
}

func (m *MockCustomerRepo) List(ctx context.Context, offset, limit int, search string) ([]model.CustomerWithPending, int, error) {
	all := m.withPending(false)
	if search != "" {
		filtered := all[:0]
		for _, c := range all {
			if strings.Contains(strings.ToLower(c.FullName), strings.ToLower(search)) || strings.Contains(c.Phone, search) {
				filtered = append(filtered, c)
			}
		}
		all = filtered
	}
	total := len(all)
	if offset > total {
		offset = total
	}
	end := offset + limit
	if end > total {
		end = total
	}
	return all[offset:end], total, nil
}

func (m *MockCustomerRepo) Search(ctx context.Context, query string, limit int) ([]model.Customer, error) {
	out := []model.Customer{}
	for _, c := range m.Customers {
		if strings.Contains(strings.ToLower(c.FullName), strings.ToLower(query)) && len(out) < limit {
			out = append(out, *c)
		}
	}
	return out, nil
}

func (m *MockCustomerRepo) ListWithPending(ctx context.Context) ([]model.CustomerWithPending, error) {
	return m.withPending(true), nil
}

func (m *MockCustomerRepo) withPending(onlyPending bool) []model.CustomerWithPending {
	out := []model.CustomerWithPending{}
	for _, c := range m.Customers {
		n := 0
		if m.Mails != nil {
			for _, ml := range m.Mails.Mails {
				if ml.CustomerID == c.ID && ml.IsPending() {
					n++
				}
			}
		}
		if onlyPending && n == 0 {
			continue
		}
		out = append(out, model.CustomerWithPending{Customer: *c, PendingCount: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if onlyPending && out[i].PendingCount != out[j].PendingCount {
			return out[i].PendingCount > out[j].PendingCount
		}
		return out[i].CustomerID > out[j].CustomerID
	})
	return out
}

func (m *MockCustomerRepo) DeleteWithMails(ctx context.Context, id uuid.UUID) ([]string, error) {
	if _, ok := m.Customers[id]; !ok {
		return nil, appErrors.NewNotFound("customer", id.String())
	}
	var photos []string
	if m.Mails != nil {
		kept := m.Mails.Mails[:0]
		for _, ml := range m.Mails.Mails {
			if ml.CustomerID == id {
				photos = append(photos, ml.Photos...)
				continue
			}
			kept = append(kept, ml)
		}
		m.Mails.Mails = kept
	}
	delete(m.Customers, id)
	return photos, nil
}

type MockMailRepo struct {
	Mails     []*model.Mail
	CreateErr error
	StatsArgs []time.Time
}

func (m *MockMailRepo) Add(customerID uuid.UUID, sender string, created time.Time, pickedUp *time.Time) *model.Mail {
	ml := &model.Mail{ID: uuid.New(), CustomerID: customerID, Sender: sender, Status: model.MailStatusPending, CreatedAt: created}
	if pickedUp != nil {
		method := model.PickupInPerson
		ml.Status = model.MailStatusPickedUp
		ml.PickupTime = pickedUp
		ml.PickupMethod = &method
	}
	m.Mails = append(m.Mails, ml)
	return ml
}

func (m *MockMailRepo) Create(ctx context.Context, ml *model.Mail) error {
	if m.CreateErr != nil {
		return m.CreateErr
	}
	ml.ID = uuid.New()
	ml.Status = model.MailStatusPending
	ml.CreatedAt = time.Now()
	cp := *ml
	m.Mails = append(m.Mails, &cp)
	return nil
}

func (m *MockMailRepo) GetByID(ctx context.Context, id uuid.UUID) (*model.Mail, error) {
	for _, ml := range m.Mails {
		if ml.ID == id {
			cp := *ml
			return &cp, nil
		}
	}
	return nil, appErrors.NewNotFound("mail", id.String())
}

func (m *MockMailRepo) ListByCustomer(ctx context.Context, customerID uuid.UUID) ([]model.Mail, error) {
	out := []model.Mail{}
	for _, ml := range m.Mails {
		if ml.CustomerID == customerID {
			out = append(out, *ml)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (m *MockMailRepo) List(ctx context.Context, offset, limit int, search, status string) ([]model.MailWithCustomer, int, error) {
	out := []model.MailWithCustomer{}
	for _, ml := range m.Mails {
		if status != "" && ml.Status != status {
			continue
		}
		if search != "" && !strings.Contains(ml.Sender, search) {
			continue
		}
		out = append(out, model.MailWithCustomer{Mail: *ml})
	}
	return out, len(out), nil
}

func (m *MockMailRepo) MarkPickedUp(ctx context.Context, id uuid.UUID, at time.Time, method string) error {
	for _, ml := range m.Mails {
		if ml.ID != id {
			continue
		}
		if !ml.IsPending() {
			return appErrors.ErrAlreadyPickedUp
		}
		ml.Status = model.MailStatusPickedUp
		ml.PickupTime = &at
		ml.PickupMethod = &method
		return nil
	}
	return appErrors.NewNotFound("mail", id.String())
}

func (m *MockMailRepo) MarkAllPickedUp(ctx context.Context, customerID uuid.UUID, at time.Time, method string) (int, error) {
	n := 0
	for _, ml := range m.Mails {
		if ml.CustomerID == customerID && ml.IsPending() {
			ml.Status = model.MailStatusPickedUp
			ml.PickupTime = &at
			ml.PickupMethod = &method
			n++
		}
	}
	return n, nil
}

func (m *MockMailRepo) Delete(ctx context.Context, id uuid.UUID) ([]string, error) {
	for i, ml := range m.Mails {
		if ml.ID == id {
			m.Mails = append(m.Mails[:i], m.Mails[i+1:]...)
			return ml.Photos, nil
		}
	}
	return nil, appErrors.NewNotFound("mail", id.String())
}

func (m *MockMailRepo) Stats(ctx context.Context, dayStart, dayEnd, monthStart, monthEnd time.Time) (*model.MailStats, error) {
	m.StatsArgs = []time.Time{dayStart, dayEnd, monthStart, monthEnd}
	var s model.MailStats
	for _, ml := range m.Mails {
		if !ml.CreatedAt.Before(dayStart) && ml.CreatedAt.Before(dayEnd) {
			s.TodayNew++
		}
		if ml.IsPending() {
			s.TotalPending++
		} else if ml.PickupTime != nil && !ml.PickupTime.Before(monthStart) && ml.PickupTime.Before(monthEnd) {
			s.MonthPickedUp++
		}
	}
	return &s, nil
}

type MockSettingRepo struct {
	Settings map[string]*model.Setting
}

func NewMockSettingRepo() *MockSettingRepo {
	return &MockSettingRepo{Settings: map[string]*model.Setting{}}
}

func (m *MockSettingRepo) List(ctx context.Context) ([]model.Setting, error) {
	out := []model.Setting{}
	for _, s := range m.Settings {
		out = append(out, *s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out, nil
}

func (m *MockSettingRepo) Get(ctx context.Context, key string) (*model.Setting, error) {
	s, ok := m.Settings[key]
	if !ok {
		return nil, appErrors.NewNotFound("setting", key)
	}
	cp := *s
	return &cp, nil
}

func (m *MockSettingRepo) UpdateValue(ctx context.Context, key, value string) error {
	s, ok := m.Settings[key]
	if !ok {
		return appErrors.NewNotFound("setting", key)
	}
	s.Value = &value
	return nil
}

func (m *MockSettingRepo) Ensure(ctx context.Context, s *model.Setting) error {
	if _, ok := m.Settings[s.Key]; ok {
		return nil
	}
	cp := *s
	cp.ID = uuid.New()
	m.Settings[s.Key] = &cp
	return nil
}

type MockStaffRepo struct {
	Staff map[uuid.UUID]*model.Staff
}

func (m *MockStaffRepo) Create(ctx context.Context, s *model.Staff) error {
	if m.Staff == nil {
		m.Staff = map[uuid.UUID]*model.Staff{}
	}
	for _, existing := range m.Staff {
		if existing.Email == s.Email {
			return appErrors.ErrEmailTaken
		}
	}
	s.ID = uuid.New()
	s.CreatedAt = time.Now()
	cp := *s
	m.Staff[s.ID] = &cp
	return nil
}

func (m *MockStaffRepo) GetByEmail(ctx context.Context, email string) (*model.Staff, error) {
	for _, s := range m.Staff {
		if s.Email == email {
			cp := *s
			return &cp, nil
		}
	}
	return nil, nil
}

func (m *MockStaffRepo) GetByID(ctx context.Context, id uuid.UUID) (*model.Staff, error) {
	s, ok := m.Staff[id]
	if !ok {
		return nil, appErrors.NewNotFound("staff", id.String())
	}
	cp := *s
	return &cp, nil
}

type MockSessionRepo struct {
	Sessions map[string]*model.Session
}

func (m *MockSessionRepo) Create(ctx context.Context, s *model.Session) error {
	if m.Sessions == nil {
		m.Sessions = map[string]*model.Session{}
	}
	s.CreatedAt = time.Now()
	cp := *s
	m.Sessions[s.TokenHash] = &cp
	return nil
}

func (m *MockSessionRepo) GetValid(ctx context.Context, tokenHash string, at time.Time) (*model.Session, error) {
	s, ok := m.Sessions[tokenHash]
	if !ok || !s.ExpiresAt.After(at) {
		return nil, appErrors.ErrUnauthorized
	}
	cp := *s
	return &cp, nil
}

func (m *MockSessionRepo) Delete(ctx context.Context, tokenHash string) error {
	delete(m.Sessions, tokenHash)
	return nil
}

func (m *MockSessionRepo) DeleteExpired(ctx context.Context, at time.Time) (int, error) {
	n := 0
	for k, s := range m.Sessions {
		if !s.ExpiresAt.After(at) {
			delete(m.Sessions, k)
			n++
		}
	}
	return n, nil
}

// MockPhotoStore keeps uploads in memory.
type MockPhotoStore struct {
	mu      sync.Mutex
	Objects map[string][]byte
	Deleted []string
	FailPut string
}

func NewMockPhotoStore() *MockPhotoStore {
	return &MockPhotoStore{Objects: map[string][]byte{}}
}

func (m *MockPhotoStore) Put(ctx context.Context, name string, r io.Reader, size int64, contentType string) (string, error) {
	if m.FailPut != "" && strings.HasSuffix(name, m.FailPut) {
		return "", errors.New("bucket unavailable")
	}
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, r); err != nil {
		return "", err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	u := "https://photos.test/mail-photos/" + name
	m.Objects[u] = buf.Bytes()
	return u, nil
}

func (m *MockPhotoStore) Delete(ctx context.Context, publicURL string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.Objects, publicURL)
	m.Deleted = append(m.Deleted, publicURL)
	return nil
}

var (
	_ repository.CustomerRepositoryInterface = (*MockCustomerRepo)(nil)
	_ repository.MailRepositoryInterface     = (*MockMailRepo)(nil)
	_ repository.SettingRepositoryInterface  = (*MockSettingRepo)(nil)
	_ repository.StaffRepositoryInterface    = (*MockStaffRepo)(nil)
	_ repository.SessionRepositoryInterface  = (*MockSessionRepo)(nil)
	_ storage.PhotoStore                     = (*MockPhotoStore)(nil)
)

func strPtr(s string) *string { return &s }

func timePtr(t time.Time) *time.Time { return &t }
