package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	appErrors "github.com/unclebandit/mailtrack-backend/internal/errors"
	"github.com/unclebandit/mailtrack-backend/internal/model"
	"github.com/unclebandit/mailtrack-backend/internal/repository"
)

// dummyHash is compared against when the email is unknown so that sign in
// takes the same time either way.
var dummyHash, _ = bcrypt.GenerateFromPassword([]byte("mailtrack-dummy-password"), bcrypt.MinCost)

type AuthService struct {
	StaffRepo   repository.StaffRepositoryInterface
	SessionRepo repository.SessionRepositoryInterface
	TTL         time.Duration
	AllowSignup bool
	BcryptCost  int
	Now         func() time.Time
}

type Credentials struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
}

// SessionToken is handed to the client once; only its hash is stored.
type SessionToken struct {
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expires_at"`
	Staff     *model.Staff `json:"staff"`
}

func (s *AuthService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

func (s *AuthService) cost() int {
	if s.BcryptCost == 0 {
		return bcrypt.DefaultCost
	}
	return s.BcryptCost
}

// SignUp registers a staff account and signs it in.
func (s *AuthService) SignUp(ctx context.Context, c Credentials) (*SessionToken, error) {
	if !s.AllowSignup {
		return nil, appErrors.ErrSignupDisabled
	}
	staff, err := s.CreateStaff(ctx, c)
	if err != nil {
		return nil, err
	}
	return s.startSession(ctx, staff)
}

// CreateStaff adds an account without starting a session. Used by mailctl.
func (s *AuthService) CreateStaff(ctx context.Context, c Credentials) (*model.Staff, error) {
	c.Email = normalizeEmail(c.Email)
	if err := validateStruct(c); err != nil {
		return nil, err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(c.Password), s.cost())
	if err != nil {
		return nil, err
	}
	staff := &model.Staff{Email: c.Email, PasswordHash: string(hash)}
	if err := s.StaffRepo.Create(ctx, staff); err != nil {
		return nil, err
	}
	return staff, nil
}

func (s *AuthService) SignIn(ctx context.Context, c Credentials) (*SessionToken, error) {
	email := normalizeEmail(c.Email)
	if email == "" || c.Password == "" {
		return nil, appErrors.ErrInvalidCredentials
	}

	staff, err := s.StaffRepo.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if staff == nil {
		_ = bcrypt.CompareHashAndPassword(dummyHash, []byte(c.Password))
		return nil, appErrors.ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(staff.PasswordHash), []byte(c.Password)); err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return nil, appErrors.ErrInvalidCredentials
		}
		return nil, err
	}
	return s.startSession(ctx, staff)
}

func (s *AuthService) SignOut(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	return s.SessionRepo.Delete(ctx, hashToken(token))
}

// Authenticate resolves a session token to its staff member.
func (s *AuthService) Authenticate(ctx context.Context, token string) (*model.Staff, error) {
	if token == "" {
		return nil, appErrors.ErrUnauthorized
	}
	sess, err := s.SessionRepo.GetValid(ctx, hashToken(token), s.now())
	if err != nil {
		return nil, err
	}
	staff, err := s.StaffRepo.GetByID(ctx, sess.StaffID)
	if appErrors.IsNotFound(err) {
		return nil, appErrors.ErrUnauthorized
	}
	return staff, err
}

// PruneSessions deletes expired sessions and returns how many were removed.
func (s *AuthService) PruneSessions(ctx context.Context) (int, error) {
	return s.SessionRepo.DeleteExpired(ctx, s.now())
}

func (s *AuthService) startSession(ctx context.Context, staff *model.Staff) (*SessionToken, error) {
	token := strings.ReplaceAll(uuid.NewString()+uuid.NewString(), "-", "")
	sess := &model.Session{
		TokenHash: hashToken(token),
		StaffID:   staff.ID,
		ExpiresAt: s.now().Add(s.TTL),
	}
	if err := s.SessionRepo.Create(ctx, sess); err != nil {
		return nil, err
	}
	return &SessionToken{Token: token, ExpiresAt: sess.ExpiresAt, Staff: staff}, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func hashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}
