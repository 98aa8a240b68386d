// Package auth composes the credential verifier, token issuer and session
// cache into the login / register / refresh / logout operations.
package auth

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/jrsteele09/go-session-auth/credentials"
	apperrors "github.com/jrsteele09/go-session-auth/internal/errors"
	"github.com/jrsteele09/go-session-auth/sessions"
	"github.com/jrsteele09/go-session-auth/token"
	"github.com/jrsteele09/go-session-auth/users"
)

// Repos holds the repository dependencies for the Service.
type Repos struct {
	Users    users.Repo    // Authoritative user store
	Sessions sessions.Repo // Best-effort session cache
}

// Service orchestrates the session authentication flows. All collaborators
// arrive through the constructor; the object graph is composed once at
// process start.
type Service struct {
	repos    Repos
	tokens   *token.Manager
	hasher   *credentials.Hasher
	cacheTTL time.Duration
	log      zerolog.Logger
	nowTime  func() time.Time
}

// ServiceOption defines a function type to modify the Service instance.
type ServiceOption func(*Service)

// WithNowTime sets the now time function (primarily for testing)
func WithNowTime(nowFunc func() time.Time) ServiceOption {
	return func(s *Service) {
		s.nowTime = nowFunc
	}
}

// WithLogger sets the logger used for degraded-mode warnings.
func WithLogger(log zerolog.Logger) ServiceOption {
	return func(s *Service) {
		s.log = log
	}
}

// NewService initializes a new Service with required dependencies.
func NewService(
	repos Repos,
	tokens *token.Manager,
	hasher *credentials.Hasher,
	cacheTTL time.Duration,
	options ...ServiceOption,
) (*Service, error) {
	if repos.Users == nil {
		return nil, errors.New("[NewService] Users repo is required")
	}
	if repos.Sessions == nil {
		return nil, errors.New("[NewService] Sessions repo is required")
	}
	if tokens == nil {
		return nil, errors.New("[NewService] token manager is required")
	}
	if hasher == nil {
		return nil, errors.New("[NewService] hasher is required")
	}
	if cacheTTL <= 0 {
		return nil, errors.New("[NewService] cache TTL must be positive")
	}

	service := &Service{
		repos:    repos,
		tokens:   tokens,
		hasher:   hasher,
		cacheTTL: cacheTTL,
		log:      zerolog.Nop(),
		nowTime:  time.Now,
	}

	for _, opt := range options {
		opt(service)
	}
	return service, nil
}

// Result is returned by Login and Refresh: the user snapshot plus the
// freshly issued token pair.
type Result struct {
	User   users.Snapshot `json:"user"`
	Tokens token.Pair     `json:"tokens"`
}

// Login verifies the credentials for loginID and establishes a session.
//
// An unknown login_id and a wrong password produce the identical
// ErrInvalidCredentials value; the unknown-account path burns a dummy
// password comparison so the two are not separable by timing either.
// The cache write is best-effort: the session is valid through its tokens
// alone, so a cache outage degrades only the fast-path lookup.
func (s *Service) Login(ctx context.Context, loginID, password string) (*Result, error) {
	user, err := s.repos.Users.GetByLoginID(ctx, loginID)
	if err != nil {
		if apperrors.Is(err, apperrors.ErrAccountNotFound) {
			s.hasher.CompareDummy(ctx)
			return nil, apperrors.ErrInvalidCredentials
		}
		return nil, s.storeErr(err, "login: user lookup")
	}

	if user.PasswordHash == "" || !s.hasher.Verify(ctx, password, user.PasswordHash) {
		return nil, apperrors.ErrInvalidCredentials
	}

	snapshot := user.Snapshot()
	pair, err := s.tokens.IssuePair(snapshot)
	if err != nil {
		return nil, errors.Wrap(err, "[Service.Login] issuing token pair")
	}

	s.cacheSession(ctx, snapshot, pair)

	return &Result{User: snapshot, Tokens: *pair}, nil
}

// RegisterParams carries the data for a new account.
type RegisterParams struct {
	LoginID     string
	DisplayName string
	Email       string
	Password    string
	Role        users.Role
}

// Register creates a new user record. A collision on login_id or email
// fails with ErrDuplicateAccount.
func (s *Service) Register(ctx context.Context, params RegisterParams) (*users.User, error) {
	if err := users.ValidatePasswordStrength(params.Password); err != nil {
		return nil, err
	}
	role := params.Role
	if !role.Valid() {
		role = users.RoleUser
	}

	exists, err := s.repos.Users.ExistsByLoginID(ctx, params.LoginID)
	if err != nil {
		return nil, s.storeErr(err, "register: uniqueness check")
	}
	if exists {
		return nil, apperrors.ErrDuplicateAccount
	}

	digest, err := s.hasher.Hash(ctx, params.Password)
	if err != nil {
		return nil, errors.Wrap(err, "[Service.Register] hashing password")
	}

	user := &users.User{
		ID:           uuid.New().String(),
		LoginID:      params.LoginID,
		DisplayName:  params.DisplayName,
		Email:        params.Email,
		PasswordHash: digest,
		Role:         role,
		CreatedAt:    s.nowTime().UTC(),
	}
	if err := s.repos.Users.Insert(ctx, user); err != nil {
		if apperrors.Is(err, apperrors.ErrDuplicateAccount) {
			return nil, apperrors.ErrDuplicateAccount
		}
		return nil, s.storeErr(err, "register: insert")
	}
	return user, nil
}

// Refresh validates a refresh token and issues a new token pair. The
// refresh token is rotated on every call, which bounds the replay window
// of a leaked token. The token's own signature and expiry are
// authoritative; the cache is never consulted to decide validity.
func (s *Service) Refresh(ctx context.Context, refreshToken string) (*Result, error) {
	claims, err := s.tokens.Validate(refreshToken, token.KindRefresh)
	if err != nil {
		// The failure kind matters for operators, not for callers.
		s.log.Debug().Err(err).Msg("refresh token rejected")
		return nil, apperrors.ErrUnauthorized
	}

	snapshot := claims.Snapshot()
	pair, err := s.tokens.IssuePair(snapshot)
	if err != nil {
		return nil, errors.Wrap(err, "[Service.Refresh] issuing token pair")
	}

	s.cacheSession(ctx, snapshot, pair)

	return &Result{User: snapshot, Tokens: *pair}, nil
}

// Logout deletes the cached session for loginID. Tokens already issued
// remain valid until their encoded expiry - a property of self-contained
// signed tokens, mitigated by short access lifetimes - so logout's effect
// is to drop the session record and its fast-path lookup.
func (s *Service) Logout(ctx context.Context, loginID string) error {
	if err := s.repos.Sessions.Delete(ctx, loginID); err != nil {
		s.log.Warn().Err(err).Str("login_id", loginID).Msg("session cache delete failed")
		return err
	}
	return nil
}

// Session returns the cached session for loginID, or nil when absent.
// A cache outage is treated as absent: this lookup is only ever a fast
// path, never the source of truth.
func (s *Service) Session(ctx context.Context, loginID string) (*sessions.Record, error) {
	rec, err := s.repos.Sessions.Get(ctx, loginID)
	if err != nil {
		if apperrors.Is(err, apperrors.ErrCacheUnavailable) {
			s.log.Warn().Err(err).Msg("session cache read failed")
			return nil, nil
		}
		return nil, err
	}
	return rec, nil
}

// ValidateAccess verifies an access token and returns its claims. All
// rejection kinds surface as ErrUnauthorized.
func (s *Service) ValidateAccess(raw string) (*token.Claims, error) {
	claims, err := s.tokens.Validate(raw, token.KindAccess)
	if err != nil {
		s.log.Debug().Err(err).Msg("access token rejected")
		return nil, apperrors.ErrUnauthorized
	}
	return claims, nil
}

// cacheSession writes the session record best-effort. Failures are logged
// and swallowed: last-write-wins on concurrent logins is acceptable since
// both writes carry equally fresh sessions.
func (s *Service) cacheSession(ctx context.Context, snapshot users.Snapshot, pair *token.Pair) {
	rec := sessions.NewRecord(snapshot, pair)
	if err := s.repos.Sessions.Put(ctx, snapshot.LoginID, rec, s.cacheTTL); err != nil {
		s.log.Warn().Err(err).Str("login_id", snapshot.LoginID).Msg("session cache put failed")
	}
}

// storeErr normalizes user-store failures for the external boundary.
func (s *Service) storeErr(err error, op string) error {
	if apperrors.Is(err, apperrors.ErrUnavailable) {
		return err
	}
	if apperrors.Is(err, context.DeadlineExceeded) || apperrors.Is(err, context.Canceled) {
		return apperrors.Wrapf(apperrors.ErrUnavailable, "%s: %v", op, err)
	}
	return errors.Wrapf(err, "[Service] %s", op)
}
