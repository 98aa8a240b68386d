// Package token mints and verifies the signed, time-bounded tokens that
// prove an authenticated session. The issuer is stateless: expiry is a
// wall-clock comparison at validation time, and a token cannot be revoked
// before its encoded expiry. Revocation before expiry only exists at the
// session cache; short access lifetimes are the mitigation.
package token

import (
	stderrors "errors"
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"
	"github.com/pkg/errors"

	"github.com/jrsteele09/go-session-auth/users"
)

// Validation failure kinds. They stay distinguishable for logging and
// metrics; callers surface all of them as a single unauthorized response
// so the caller cannot learn which check failed.
var (
	ErrExpired   = stderrors.New("token expired")
	ErrTampered  = stderrors.New("token signature invalid")
	ErrMalformed = stderrors.New("token malformed")
)

// minSecretLen mirrors the configuration constraint on signing secrets.
const minSecretLen = 32

type kindSettings struct {
	signer Signer
	ttl    time.Duration
}

// Manager issues and validates tokens of both kinds. Access and refresh
// tokens are signed with distinct secrets so leaking one cannot forge the
// other.
type Manager struct {
	kinds   map[Kind]kindSettings
	skew    time.Duration
	nowFunc func() time.Time
}

// ManagerOption defines a function type to modify the Manager instance.
type ManagerOption func(*Manager)

// WithNowFunc sets the now time function (primarily for testing)
func WithNowFunc(now func() time.Time) ManagerOption {
	return func(m *Manager) {
		m.nowFunc = now
	}
}

// WithClockSkewTolerance sets the leeway applied when checking expiry,
// covering clock drift between issuer and validator processes. Default 0.
func WithClockSkewTolerance(skew time.Duration) ManagerOption {
	return func(m *Manager) {
		m.skew = skew
	}
}

// NewManager creates a Manager with per-kind secrets and lifetimes.
func NewManager(accessSecret, refreshSecret string, accessTTL, refreshTTL time.Duration, options ...ManagerOption) (*Manager, error) {
	if len(accessSecret) < minSecretLen {
		return nil, errors.Errorf("[NewManager] access secret shorter than %d bytes", minSecretLen)
	}
	if len(refreshSecret) < minSecretLen {
		return nil, errors.Errorf("[NewManager] refresh secret shorter than %d bytes", minSecretLen)
	}
	if accessSecret == refreshSecret {
		return nil, errors.New("[NewManager] access and refresh secrets must be distinct")
	}
	if accessTTL <= 0 {
		return nil, errors.New("[NewManager] access TTL must be positive")
	}
	if refreshTTL <= accessTTL {
		return nil, errors.New("[NewManager] refresh TTL must exceed access TTL")
	}

	m := &Manager{
		kinds: map[Kind]kindSettings{
			KindAccess:  {signer: NewHMACSigner(accessSecret), ttl: accessTTL},
			KindRefresh: {signer: NewHMACSigner(refreshSecret), ttl: refreshTTL},
		},
		nowFunc: time.Now,
	}

	for _, opt := range options {
		opt(m)
	}
	return m, nil
}

// Issue mints a signed token of the given kind for the user snapshot.
// Output is URL-safe compact JWS text (header.claims.signature).
func (m *Manager) Issue(snapshot users.Snapshot, kind Kind) (string, error) {
	settings, ok := m.kinds[kind]
	if !ok {
		return "", errors.Errorf("[Manager.Issue] unknown token kind %q", kind)
	}

	now := m.nowFunc()
	claims := &Claims{
		LoginID:     snapshot.LoginID,
		DisplayName: snapshot.DisplayName,
		Role:        snapshot.Role,
		RegisteredClaims: jwtlib.RegisteredClaims{
			Subject:   snapshot.UserID,
			IssuedAt:  jwtlib.NewNumericDate(now),
			ExpiresAt: jwtlib.NewNumericDate(now.Add(settings.ttl)),
		},
	}

	signed, err := settings.signer.Sign(claims)
	if err != nil {
		return "", errors.Wrap(err, "[Manager.Issue] signing")
	}
	return signed, nil
}

// IssuePair mints a fresh access and refresh token for the user snapshot.
func (m *Manager) IssuePair(snapshot users.Snapshot) (*Pair, error) {
	access, err := m.Issue(snapshot, KindAccess)
	if err != nil {
		return nil, err
	}
	refresh, err := m.Issue(snapshot, KindRefresh)
	if err != nil {
		return nil, err
	}
	return &Pair{
		AccessToken:  access,
		RefreshToken: refresh,
		TokenType:    TokenType,
	}, nil
}

// Validate verifies raw against the secret for kind and returns its
// claims. Failures map to ErrExpired, ErrTampered or ErrMalformed; a
// structurally valid token signed with the wrong kind's secret comes back
// as ErrTampered, which is exactly the property that keeps the two kinds
// non-interchangeable.
func (m *Manager) Validate(raw string, kind Kind) (*Claims, error) {
	settings, ok := m.kinds[kind]
	if !ok {
		return nil, errors.Errorf("[Manager.Validate] unknown token kind %q", kind)
	}

	parser := []jwtlib.ParserOption{
		jwtlib.WithValidMethods([]string{jwtlib.SigningMethodHS256.Alg()}),
		jwtlib.WithLeeway(m.skew),
		jwtlib.WithExpirationRequired(),
		jwtlib.WithTimeFunc(m.nowFunc),
	}

	var claims Claims
	parsed, err := jwtlib.ParseWithClaims(raw, &claims, settings.signer.GetVerificationKey, parser...)
	if err != nil {
		return nil, mapParseErr(err)
	}
	if !parsed.Valid {
		return nil, ErrTampered
	}
	if claims.Subject == "" || claims.LoginID == "" {
		return nil, ErrMalformed
	}
	return &claims, nil
}

func mapParseErr(err error) error {
	switch {
	case stderrors.Is(err, jwtlib.ErrTokenExpired):
		return ErrExpired
	case stderrors.Is(err, jwtlib.ErrTokenSignatureInvalid):
		return ErrTampered
	case stderrors.Is(err, jwtlib.ErrTokenMalformed),
		stderrors.Is(err, jwtlib.ErrTokenRequiredClaimMissing),
		stderrors.Is(err, jwtlib.ErrTokenInvalidClaims):
		return ErrMalformed
	default:
		return ErrTampered
	}
}
