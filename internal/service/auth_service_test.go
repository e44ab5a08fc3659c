package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	appErrors "github.com/unclebandit/mailtrack-backend/internal/errors"
	"github.com/unclebandit/mailtrack-backend/internal/service"
)

func newAuthService() (*service.AuthService, *MockSessionRepo, *time.Time) {
	now := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)
	sessions := &MockSessionRepo{}
	svc := &service.AuthService{
		StaffRepo:   &MockStaffRepo{},
		SessionRepo: sessions,
		TTL:         time.Hour,
		AllowSignup: true,
		BcryptCost:  bcrypt.MinCost,
		Now:         func() time.Time { return now },
	}
	return svc, sessions, &now
}

func TestSignUpSignInSignOut(t *testing.T) {
	svc, sessions, _ := newAuthService()
	ctx := context.Background()

	tok, err := svc.SignUp(ctx, service.Credentials{Email: " Staff@Example.com ", Password: "secret1"})
	require.NoError(t, err)
	assert.Equal(t, "staff@example.com", tok.Staff.Email)
	assert.Len(t, tok.Token, 64)
	assert.NotContains(t, sessions.Sessions, tok.Token, "only the token hash is stored")

	staff, err := svc.Authenticate(ctx, tok.Token)
	require.NoError(t, err)
	assert.Equal(t, tok.Staff.ID, staff.ID)

	tok2, err := svc.SignIn(ctx, service.Credentials{Email: "STAFF@example.com", Password: "secret1"})
	require.NoError(t, err)
	assert.NotEqual(t, tok.Token, tok2.Token)

	require.NoError(t, svc.SignOut(ctx, tok.Token))
	_, err = svc.Authenticate(ctx, tok.Token)
	require.ErrorIs(t, err, appErrors.ErrUnauthorized)

	_, err = svc.Authenticate(ctx, tok2.Token)
	require.NoError(t, err)
}

func TestSignUpErrors(t *testing.T) {
	svc, _, _ := newAuthService()
	ctx := context.Background()

	_, err := svc.SignUp(ctx, service.Credentials{Email: "a@b.co", Password: "12345"})
	var ve *appErrors.ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "password", ve.Field)

	_, err = svc.SignUp(ctx, service.Credentials{Email: "nope", Password: "123456"})
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "email", ve.Field)

	_, err = svc.SignUp(ctx, service.Credentials{Email: "a@b.co", Password: "123456"})
	require.NoError(t, err)
	_, err = svc.SignUp(ctx, service.Credentials{Email: "A@B.co", Password: "123456"})
	require.ErrorIs(t, err, appErrors.ErrEmailTaken)

	svc.AllowSignup = false
	_, err = svc.SignUp(ctx, service.Credentials{Email: "c@d.co", Password: "123456"})
	require.ErrorIs(t, err, appErrors.ErrSignupDisabled)
	assert.Equal(t, 403, appErrors.HTTPStatus(err))
}

func TestSignInInvalidCredentials(t *testing.T) {
	svc, _, _ := newAuthService()
	ctx := context.Background()
	_, err := svc.CreateStaff(ctx, service.Credentials{Email: "a@b.co", Password: "123456"})
	require.NoError(t, err)

	for _, c := range []service.Credentials{
		{Email: "a@b.co", Password: "wrong!"},
		{Email: "x@b.co", Password: "123456"},
		{Email: "", Password: ""},
	} {
		_, err := svc.SignIn(ctx, c)
		require.ErrorIs(t, err, appErrors.ErrInvalidCredentials, c.Email)
	}
}

func TestSessionExpiry(t *testing.T) {
	svc, sessions, now := newAuthService()
	ctx := context.Background()

	tok, err := svc.SignUp(ctx, service.Credentials{Email: "a@b.co", Password: "123456"})
	require.NoError(t, err)

	*now = now.Add(2 * time.Hour)
	_, err = svc.Authenticate(ctx, tok.Token)
	require.ErrorIs(t, err, appErrors.ErrUnauthorized)

	n, err := svc.PruneSessions(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Empty(t, sessions.Sessions)

	_, err = svc.Authenticate(ctx, "")
	require.ErrorIs(t, err, appErrors.ErrUnauthorized)
}
