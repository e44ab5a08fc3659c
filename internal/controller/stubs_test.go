package controller_test

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/unclebandit/mailtrack-backend/internal/model"
	"github.com/unclebandit/mailtrack-backend/internal/service"
)

// Stub services. Unset funcs panic so tests only wire what they call.

type StubCustomerService struct {
	ListFn      func(ctx context.Context, search string, page, pageSize int) ([]model.CustomerWithPending, map[string]int, error)
	SearchFn    func(ctx context.Context, query string) ([]model.Customer, error)
	CreateFn    func(ctx context.Context, in service.CustomerInput) (*model.Customer, error)
	UpdateFn    func(ctx context.Context, id uuid.UUID, in service.CustomerInput) (*model.Customer, error)
	GetFn       func(ctx context.Context, id uuid.UUID, month string) (*service.CustomerDetail, error)
	DeleteFn    func(ctx context.Context, id uuid.UUID) error
	PickupAllFn func(ctx context.Context, id uuid.UUID, method string) (int, error)
}

func (s *StubCustomerService) List(ctx context.Context, search string, page, pageSize int) ([]model.CustomerWithPending, map[string]int, error) {
	return s.ListFn(ctx, search, page, pageSize)
}
func (s *StubCustomerService) Search(ctx context.Context, query string) ([]model.Customer, error) {
	return s.SearchFn(ctx, query)
}
func (s *StubCustomerService) Create(ctx context.Context, in service.CustomerInput) (*model.Customer, error) {
	return s.CreateFn(ctx, in)
}
func (s *StubCustomerService) Update(ctx context.Context, id uuid.UUID, in service.CustomerInput) (*model.Customer, error) {
	return s.UpdateFn(ctx, id, in)
}
func (s *StubCustomerService) Get(ctx context.Context, id uuid.UUID, month string) (*service.CustomerDetail, error) {
	return s.GetFn(ctx, id, month)
}
func (s *StubCustomerService) Delete(ctx context.Context, id uuid.UUID) error {
	return s.DeleteFn(ctx, id)
}
func (s *StubCustomerService) PickupAll(ctx context.Context, id uuid.UUID, method string) (int, error) {
	return s.PickupAllFn(ctx, id, method)
}

type StubMailService struct {
	ListFn   func(ctx context.Context, search, status string, page, pageSize int) ([]model.MailWithCustomer, map[string]int, error)
	CreateFn func(ctx context.Context, customerID uuid.UUID, sender string, photos []service.PhotoUpload) (*model.Mail, error)
	PickupFn func(ctx context.Context, id uuid.UUID, method string) (*model.Mail, error)
	DeleteFn func(ctx context.Context, id uuid.UUID) error
}

func (s *StubMailService) List(ctx context.Context, search, status string, page, pageSize int) ([]model.MailWithCustomer, map[string]int, error) {
	return s.ListFn(ctx, search, status, page, pageSize)
}
func (s *StubMailService) Create(ctx context.Context, customerID uuid.UUID, sender string, photos []service.PhotoUpload) (*model.Mail, error) {
	return s.CreateFn(ctx, customerID, sender, photos)
}
func (s *StubMailService) Pickup(ctx context.Context, id uuid.UUID, method string) (*model.Mail, error) {
	return s.PickupFn(ctx, id, method)
}
func (s *StubMailService) Delete(ctx context.Context, id uuid.UUID) error {
	return s.DeleteFn(ctx, id)
}

type StubLookupService struct {
	LookupFn func(ctx context.Context, phone, month string) (*service.LookupResult, error)
}

func (s *StubLookupService) Lookup(ctx context.Context, phone, month string) (*service.LookupResult, error) {
	return s.LookupFn(ctx, phone, month)
}

type StubSettingService struct {
	ListFn   func(ctx context.Context) ([]model.Setting, error)
	UpdateFn func(ctx context.Context, key, value string) (*model.Setting, error)
}

func (s *StubSettingService) List(ctx context.Context) ([]model.Setting, error) { return s.ListFn(ctx) }
func (s *StubSettingService) Update(ctx context.Context, key, value string) (*model.Setting, error) {
	return s.UpdateFn(ctx, key, value)
}

type StubAuthService struct {
	SignUpFn       func(ctx context.Context, c service.Credentials) (*service.SessionToken, error)
	SignInFn       func(ctx context.Context, c service.Credentials) (*service.SessionToken, error)
	SignOutFn      func(ctx context.Context, token string) error
	AuthenticateFn func(ctx context.Context, token string) (*model.Staff, error)
}

func (s *StubAuthService) SignUp(ctx context.Context, c service.Credentials) (*service.SessionToken, error) {
	return s.SignUpFn(ctx, c)
}
func (s *StubAuthService) SignIn(ctx context.Context, c service.Credentials) (*service.SessionToken, error) {
	return s.SignInFn(ctx, c)
}
func (s *StubAuthService) SignOut(ctx context.Context, token string) error {
	return s.SignOutFn(ctx, token)
}
func (s *StubAuthService) Authenticate(ctx context.Context, token string) (*model.Staff, error) {
	return s.AuthenticateFn(ctx, token)
}

// withURLParam routes r as if chi had matched {key}.
func withURLParam(r *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}
