package auth_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/jrsteele09/go-session-auth/auth"
	"github.com/jrsteele09/go-session-auth/credentials"
	apperrors "github.com/jrsteele09/go-session-auth/internal/errors"
	"github.com/jrsteele09/go-session-auth/sessions"
	"github.com/jrsteele09/go-session-auth/token"
	"github.com/jrsteele09/go-session-auth/users"
	"github.com/jrsteele09/go-session-auth/users/repofake"
)

const (
	testAccessSecret  = "access-secret-0123456789-0123456789"
	testRefreshSecret = "refresh-secret-0123456789-012345678"

	testAccessTTL = 30 * time.Minute
	testCacheTTL  = time.Hour
	testPassword  = "Correct-Horse-1"
)

// failingSessionRepo simulates an unreachable cache backend.
type failingSessionRepo struct{}

func (failingSessionRepo) Put(context.Context, string, *sessions.Record, time.Duration) error {
	return apperrors.ErrCacheUnavailable
}

func (failingSessionRepo) Get(context.Context, string) (*sessions.Record, error) {
	return nil, apperrors.ErrCacheUnavailable
}

func (failingSessionRepo) Delete(context.Context, string) error {
	return apperrors.ErrCacheUnavailable
}

type fixture struct {
	service  *auth.Service
	users    *repofake.FakeUserRepo
	sessions sessions.Repo
	tokens   *token.Manager
	now      *time.Time
}

func newFixture(t *testing.T, sessionRepo sessions.Repo) *fixture {
	t.Helper()

	now := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	nowFunc := func() time.Time { return now }

	tokens, err := token.NewManager(testAccessSecret, testRefreshSecret, testAccessTTL, 14 * 24 * time.Hour,
		token.WithNowFunc(nowFunc))
	require.NoError(t, err)

	hasher, err := credentials.NewHasher(bcrypt.MinCost)
	require.NoError(t, err)

	userRepo := repofake.New()
	if sessionRepo == nil {
		sessionRepo = sessions.NewInMemoryStore(sessions.WithNowFunc(nowFunc))
	}

	service, err := auth.NewService(
		auth.Repos{Users: userRepo, Sessions: sessionRepo},
		tokens,
		hasher,
		testCacheTTL,
		auth.WithNowTime(nowFunc),
	)
	require.NoError(t, err)

	f := &fixture{
		service:  service,
		users:    userRepo,
		sessions: sessionRepo,
		tokens:   tokens,
		now:      &now,
	}
	f.seedUser(t, hasher)
	return f
}

func (f *fixture) seedUser(t *testing.T, hasher *credentials.Hasher) {
	t.Helper()
	digest, err := hasher.Hash(context.Background(), testPassword)
	require.NoError(t, err)
	require.NoError(t, f.users.Insert(context.Background(), &users.User{
		ID:           "user-42",
		LoginID:      "jdoe",
		DisplayName:  "J. Doe",
		Email:        "jdoe@example.com",
		PasswordHash: digest,
		Role:         users.RoleUser,
	}))
}

func (f *fixture) advance(d time.Duration) {
	*f.now = f.now.Add(d)
}

func TestService_Login(t *testing.T) {
	ctx := context.Background()

	t.Run("success returns snapshot and valid tokens", func(t *testing.T) {
		f := newFixture(t, nil)

		result, err := f.service.Login(ctx, "jdoe", testPassword)
		require.NoError(t, err)
		require.Equal(t, "user-42", result.User.UserID)
		require.Equal(t, users.RoleUser, result.User.Role)
		require.Equal(t, "bearer", result.Tokens.TokenType)

		claims, err := f.tokens.Validate(result.Tokens.AccessToken, token.KindAccess)
		require.NoError(t, err)
		require.Equal(t, "user-42", claims.UserID())
		require.Equal(t, users.RoleUser, claims.Role)

		_, err = f.tokens.Validate(result.Tokens.RefreshToken, token.KindRefresh)
		require.NoError(t, err)
	})

	t.Run("success populates the session cache", func(t *testing.T) {
		f := newFixture(t, nil)

		result, err := f.service.Login(ctx, "jdoe", testPassword)
		require.NoError(t, err)

		rec, err := f.sessions.Get(ctx, "jdoe")
		require.NoError(t, err)
		require.NotNil(t, rec)
		require.Equal(t, result.User, rec.User)
		require.Equal(t, result.Tokens.AccessToken, rec.AccessToken)
		require.Equal(t, result.Tokens.RefreshToken, rec.RefreshToken)
	})

	t.Run("wrong password and unknown login are indistinguishable", func(t *testing.T) {
		f := newFixture(t, nil)

		_, errWrongPassword := f.service.Login(ctx, "jdoe", "wrong-password")
		_, errUnknownLogin := f.service.Login(ctx, "no-such-user", testPassword)

		require.ErrorIs(t, errWrongPassword, apperrors.ErrInvalidCredentials)
		require.ErrorIs(t, errUnknownLogin, apperrors.ErrInvalidCredentials)
		require.Equal(t, errWrongPassword, errUnknownLogin)
	})

	t.Run("empty stored hash fails as invalid credentials", func(t *testing.T) {
		f := newFixture(t, nil)
		require.NoError(t, f.users.Insert(ctx, &users.User{
			ID:      "user-43",
			LoginID: "nohash",
			Role:    users.RoleUser,
		}))

		_, err := f.service.Login(ctx, "nohash", "anything")
		require.ErrorIs(t, err, apperrors.ErrInvalidCredentials)
	})

	t.Run("cache outage is non-fatal", func(t *testing.T) {
		f := newFixture(t, failingSessionRepo{})

		result, err := f.service.Login(ctx, "jdoe", testPassword)
		require.NoError(t, err)
		require.NotEmpty(t, result.Tokens.AccessToken)
	})

	t.Run("user store outage is retryable unavailability", func(t *testing.T) {
		f := newFixture(t, nil)
		f.users.Err = apperrors.Wrapf(apperrors.ErrUnavailable, "connection refused")

		_, err := f.service.Login(ctx, "jdoe", testPassword)
		require.ErrorIs(t, err, apperrors.ErrUnavailable)
		require.NotErrorIs(t, err, apperrors.ErrInvalidCredentials)
	})
}

func TestService_Register(t *testing.T) {
	ctx := context.Background()

	t.Run("creates a user with hashed password", func(t *testing.T) {
		f := newFixture(t, nil)

		user, err := f.service.Register(ctx, auth.RegisterParams{
			LoginID:     "newuser",
			DisplayName: "New User",
			Email:       "new@example.com",
			Password:    "StrongPass1",
		})
		require.NoError(t, err)
		require.NotEmpty(t, user.ID)
		require.Equal(t, users.RoleUser, user.Role)
		require.NotEqual(t, "StrongPass1", user.PasswordHash)

		// The new account can log in immediately.
		_, err = f.service.Login(ctx, "newuser", "StrongPass1")
		require.NoError(t, err)
	})

	t.Run("duplicate login_id conflicts", func(t *testing.T) {
		f := newFixture(t, nil)

		_, err := f.service.Register(ctx, auth.RegisterParams{
			LoginID:  "jdoe",
			Password: "StrongPass1",
		})
		require.ErrorIs(t, err, apperrors.ErrDuplicateAccount)
	})

	t.Run("weak password rejected", func(t *testing.T) {
		f := newFixture(t, nil)

		_, err := f.service.Register(ctx, auth.RegisterParams{
			LoginID:  "weak",
			Password: "short",
		})
		require.Error(t, err)
	})
}

func TestService_Refresh(t *testing.T) {
	ctx := context.Background()

	t.Run("rotates the pair with strictly later access expiry", func(t *testing.T) {
		f := newFixture(t, nil)

		first, err := f.service.Login(ctx, "jdoe", testPassword)
		require.NoError(t, err)
		firstClaims, err := f.tokens.Validate(first.Tokens.AccessToken, token.KindAccess)
		require.NoError(t, err)

		f.advance(time.Minute)

		refreshed, err := f.service.Refresh(ctx, first.Tokens.RefreshToken)
		require.NoError(t, err)
		require.NotEqual(t, first.Tokens.RefreshToken, refreshed.Tokens.RefreshToken)

		newClaims, err := f.tokens.Validate(refreshed.Tokens.AccessToken, token.KindAccess)
		require.NoError(t, err)
		require.True(t, newClaims.ExpiresAt.Time.After(firstClaims.ExpiresAt.Time))
		require.Equal(t, first.User, refreshed.User)
	})

	t.Run("updates the cached session", func(t *testing.T) {
		f := newFixture(t, nil)

		first, err := f.service.Login(ctx, "jdoe", testPassword)
		require.NoError(t, err)

		f.advance(time.Minute)

		refreshed, err := f.service.Refresh(ctx, first.Tokens.RefreshToken)
		require.NoError(t, err)

		rec, err := f.sessions.Get(ctx, "jdoe")
		require.NoError(t, err)
		require.NotNil(t, rec)
		require.Equal(t, refreshed.Tokens.AccessToken, rec.AccessToken)
		require.Equal(t, refreshed.Tokens.RefreshToken, rec.RefreshToken)
	})

	t.Run("access-kind token is unauthorized", func(t *testing.T) {
		f := newFixture(t, nil)

		result, err := f.service.Login(ctx, "jdoe", testPassword)
		require.NoError(t, err)

		_, err = f.service.Refresh(ctx, result.Tokens.AccessToken)
		require.ErrorIs(t, err, apperrors.ErrUnauthorized)
	})

	t.Run("expired refresh token is unauthorized", func(t *testing.T) {
		f := newFixture(t, nil)

		result, err := f.service.Login(ctx, "jdoe", testPassword)
		require.NoError(t, err)

		f.advance(15 * 24 * time.Hour)

		_, err = f.service.Refresh(ctx, result.Tokens.RefreshToken)
		require.ErrorIs(t, err, apperrors.ErrUnauthorized)
	})

	t.Run("garbage token is unauthorized", func(t *testing.T) {
		f := newFixture(t, nil)

		_, err := f.service.Refresh(ctx, "not-a-token")
		require.ErrorIs(t, err, apperrors.ErrUnauthorized)
	})
}

func TestService_Logout(t *testing.T) {
	ctx := context.Background()

	t.Run("deletes the cached session", func(t *testing.T) {
		f := newFixture(t, nil)

		_, err := f.service.Login(ctx, "jdoe", testPassword)
		require.NoError(t, err)

		require.NoError(t, f.service.Logout(ctx, "jdoe"))

		rec, err := f.sessions.Get(ctx, "jdoe")
		require.NoError(t, err)
		require.Nil(t, rec)
	})

	t.Run("logout of an absent session is not an error", func(t *testing.T) {
		f := newFixture(t, nil)
		require.NoError(t, f.service.Logout(ctx, "jdoe"))
		require.NoError(t, f.service.Logout(ctx, "jdoe"))
	})

	t.Run("login immediately after logout repopulates the cache", func(t *testing.T) {
		f := newFixture(t, nil)

		_, err := f.service.Login(ctx, "jdoe", testPassword)
		require.NoError(t, err)
		require.NoError(t, f.service.Logout(ctx, "jdoe"))

		_, err = f.service.Login(ctx, "jdoe", testPassword)
		require.NoError(t, err)

		rec, err := f.sessions.Get(ctx, "jdoe")
		require.NoError(t, err)
		require.NotNil(t, rec)
	})

	t.Run("cache outage surfaces for retry", func(t *testing.T) {
		f := newFixture(t, failingSessionRepo{})
		err := f.service.Logout(ctx, "jdoe")
		require.ErrorIs(t, err, apperrors.ErrCacheUnavailable)
	})
}

func TestService_Session(t *testing.T) {
	ctx := context.Background()

	t.Run("cache outage reads as absent", func(t *testing.T) {
		f := newFixture(t, failingSessionRepo{})

		rec, err := f.service.Session(ctx, "jdoe")
		require.NoError(t, err)
		require.Nil(t, rec)
	})

	t.Run("session TTL elapses to absent", func(t *testing.T) {
		f := newFixture(t, nil)

		_, err := f.service.Login(ctx, "jdoe", testPassword)
		require.NoError(t, err)

		f.advance(testCacheTTL + time.Second)

		rec, err := f.service.Session(ctx, "jdoe")
		require.NoError(t, err)
		require.Nil(t, rec)
	})
}

func TestService_ValidateAccess(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, nil)

	result, err := f.service.Login(ctx, "jdoe", testPassword)
	require.NoError(t, err)

	t.Run("valid token", func(t *testing.T) {
		claims, err := f.service.ValidateAccess(result.Tokens.AccessToken)
		require.NoError(t, err)
		require.Equal(t, "jdoe", claims.LoginID)
	})

	t.Run("refresh token rejected", func(t *testing.T) {
		_, err := f.service.ValidateAccess(result.Tokens.RefreshToken)
		require.ErrorIs(t, err, apperrors.ErrUnauthorized)
	})

	t.Run("empty token rejected", func(t *testing.T) {
		_, err := f.service.ValidateAccess("")
		require.ErrorIs(t, err, apperrors.ErrUnauthorized)
	})
}

func TestNewService(t *testing.T) {
	tokens, err := token.NewManager(testAccessSecret, testRefreshSecret, testAccessTTL, 14 * 24 * time.Hour)
	require.NoError(t, err)
	hasher, err := credentials.NewHasher(bcrypt.MinCost)
	require.NoError(t, err)

	t.Run("missing users repo", func(t *testing.T) {
		_, err := auth.NewService(auth.Repos{Sessions: sessions.NewInMemoryStore()}, tokens, hasher, testCacheTTL)
		require.Error(t, err)
	})

	t.Run("missing sessions repo", func(t *testing.T) {
		_, err := auth.NewService(auth.Repos{Users: repofake.New()}, tokens, hasher, testCacheTTL)
		require.Error(t, err)
	})

	t.Run("missing token manager", func(t *testing.T) {
		_, err := auth.NewService(auth.Repos{Users: repofake.New(), Sessions: sessions.NewInMemoryStore()}, nil, hasher, testCacheTTL)
		require.Error(t, err)
	})
}
