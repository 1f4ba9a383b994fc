package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/portfolio-site/portfolio-api/internal/apperror"
	"github.com/portfolio-site/portfolio-api/internal/portfolio/repository"
	"github.com/portfolio-site/portfolio-api/internal/tokens"
)

const initialPassword = "Str0ng!Pass"

func newTestService(t *testing.T) (*Service, *repository.MemoryStore) {
	t.Helper()
	pw := NewPasswords(bcrypt.MinCost)
	hash, err := pw.Hash(initialPassword)
	require.NoError(t, err)
	store := repository.NewMemoryStore()
	guard := repository.NewGuard(store, hash).WithClock(func() time.Time {
		return time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC)
	})
	tm := tokens.NewManager("unit-test-secret-0123456789abcdef", 24*time.Hour)
	return NewService(guard, pw, tm), store
}

func TestLogin(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	res, err := svc.Login(ctx, initialPassword)
	require.NoError(t, err)
	assert.NotEmpty(t, res.Token)
	assert.Equal(t, 24*time.Hour, res.ExpiresIn)

	claims, err := svc.Verify(res.Token)
	require.NoError(t, err)
	assert.Equal(t, tokens.RoleAdmin, claims.Role)

	_, err = svc.Login(ctx, "wrong")
	assert.True(t, errors.Is(err, apperror.ErrInvalidCredentials))

	_, err = svc.Login(ctx, "")
	assert.True(t, errors.Is(err, apperror.ErrValidation))
}

func TestLoginWithoutConfiguredPassword(t *testing.T) {
	guard := repository.NewGuard(repository.NewMemoryStore(), "")
	svc := NewService(guard, NewPasswords(bcrypt.MinCost), tokens.NewManager("unit-test-secret-0123456789abcdef", time.Hour))

	_, err := svc.Login(context.Background(), "anything")
	assert.True(t, errors.Is(err, apperror.ErrInvalidCredentials))
}

func TestVerifyRejectsGarbage(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.Verify("")
	assert.True(t, errors.Is(err, apperror.ErrUnauthorized))
	_, err = svc.Verify("abc.def.ghi")
	assert.True(t, errors.Is(err, apperror.ErrUnauthorized))
}

func TestChangePassword(t *testing.T) {
	svc, store := newTestService(t)
	ctx := context.Background()
	const next = "N3w!Password"

	old, err := svc.Login(ctx, initialPassword)
	require.NoError(t, err)

	require.NoError(t, svc.ChangePassword(ctx, initialPassword, next))

	_, err = svc.Login(ctx, initialPassword)
	assert.True(t, errors.Is(err, apperror.ErrInvalidCredentials), "old password must stop working")
	_, err = svc.Login(ctx, next)
	assert.NoError(t, err)

	// stateless tokens survive the change
	_, err = svc.Verify(old.Token)
	assert.NoError(t, err)

	doc, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, "2024-06-01T09:00:00Z", doc.AdminSettings.LastPasswordChange)
	assert.Equal(t, "admin", doc.AdminSettings.LastUpdatedBy)
}

func TestChangePasswordErrors(t *testing.T) {
	cases := []struct {
		name     string
		current  string
		next     string
		sentinel error
	}{
		{"wrong current", "nope", "N3w!Password", apperror.ErrInvalidCredentials},
		{"same password", initialPassword, initialPassword, apperror.ErrNoOpChange},
		{"weak password", initialPassword, "short", apperror.ErrValidation},
		{"missing current", "", "N3w!Password", apperror.ErrValidation},
		{"missing new", initialPassword, "", apperror.ErrValidation},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			svc, _ := newTestService(t)
			err := svc.ChangePassword(context.Background(), tc.current, tc.next)
			assert.True(t, errors.Is(err, tc.sentinel), "got %v", err)

			// password unchanged
			_, err = svc.Login(context.Background(), initialPassword)
			assert.NoError(t, err)
		})
	}
}

func TestPolicyViolations(t *testing.T) {
	assert.Empty(t, PolicyViolations("Abcdef1!"))
	assert.Len(t, PolicyViolations("abc"), 4) // length, upper, digit, symbol
	assert.Contains(t, PolicyViolations("ABCDEFG1!"), "New password must contain a lowercase letter")
	assert.Contains(t, PolicyViolations("Abcdefgh!"), "New password must contain a number")
}

func TestPasswordsRejectOverlong(t *testing.T) {
	pw := NewPasswords(bcrypt.MinCost)
	_, err := pw.Hash(string(make([]byte, 73)))
	assert.Error(t, err)
}
