// Package credentials decides whether a plaintext secret matches a stored
// bcrypt digest. The plaintext is never stored or logged; verification
// fails closed on any malformed digest.
package credentials

import (
	"context"

	"github.com/pkg/errors"
	"golang.org/x/crypto/bcrypt"
	"golang.org/x/sync/semaphore"

	apperrors "github.com/jrsteele09/go-session-auth/internal/errors"
)

// defaultMaxConcurrent bounds how many bcrypt operations may run at once.
// Hashing is deliberately CPU-expensive; an unbounded burst of logins must
// not starve unrelated requests.
const defaultMaxConcurrent = 8

// dummyPlaintext feeds the levelling comparison used when no real digest
// exists for a login attempt.
const dummyPlaintext = "credential-levelling-input"

// Hasher hashes and verifies passwords with a configurable bcrypt cost.
type Hasher struct {
	cost        int
	sem         *semaphore.Weighted
	dummyDigest string
}

// HasherOption modifies a Hasher.
type HasherOption func(*Hasher)

// WithMaxConcurrent overrides the bcrypt concurrency bound.
func WithMaxConcurrent(n int64) HasherOption {
	return func(h *Hasher) {
		h.sem = semaphore.NewWeighted(n)
	}
}

// NewHasher creates a Hasher with the given bcrypt cost factor.
func NewHasher(cost int, options ...HasherOption) (*Hasher, error) {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		return nil, errors.Errorf("[NewHasher] cost %d out of range [%d,%d]", cost, bcrypt.MinCost, bcrypt.MaxCost)
	}

	h := &Hasher{
		cost: cost,
		sem:  semaphore.NewWeighted(defaultMaxConcurrent),
	}
	for _, opt := range options {
		opt(h)
	}

	// Precompute the digest used to level timing on the unknown-account
	// path. It carries the configured cost, so CompareDummy pays the same
	// CPU budget as a real comparison.
	dummy, err := bcrypt.GenerateFromPassword([]byte(dummyPlaintext), cost)
	if err != nil {
		return nil, errors.Wrap(err, "[NewHasher] generating levelling digest")
	}
	h.dummyDigest = string(dummy)
	return h, nil
}

// Hash derives a salted one-way digest from plaintext. The work factor is
// the cost configured at construction.
func (h *Hasher) Hash(ctx context.Context, plaintext string) (string, error) {
	if err := h.sem.Acquire(ctx, 1); err != nil {
		return "", apperrors.Wrapf(apperrors.ErrUnavailable, "hash: %v", err)
	}
	defer h.sem.Release(1)

	digest, err := bcrypt.GenerateFromPassword([]byte(plaintext), h.cost)
	if err != nil {
		return "", errors.Wrap(err, "[Hasher.Hash] bcrypt.GenerateFromPassword")
	}
	return string(digest), nil
}

// Verify reports whether plaintext matches digest. It fails closed: a
// malformed digest, an unsupported algorithm tag, or a cancelled context
// all yield false rather than an error. bcrypt's comparison is constant
// time with respect to where a mismatch occurs.
func (h *Hasher) Verify(ctx context.Context, plaintext, digest string) bool {
	if digest == "" {
		return false
	}
	if err := h.sem.Acquire(ctx, 1); err != nil {
		return false
	}
	defer h.sem.Release(1)

	return bcrypt.CompareHashAndPassword([]byte(digest), []byte(plaintext)) == nil
}

// CompareDummy burns the same CPU budget as a real verification. The login
// flow calls it when the login_id does not resolve, so the unknown-account
// and wrong-password paths are not distinguishable by timing.
func (h *Hasher) CompareDummy(ctx context.Context) {
	if err := h.sem.Acquire(ctx, 1); err != nil {
		return
	}
	defer h.sem.Release(1)

	_ = bcrypt.CompareHashAndPassword([]byte(h.dummyDigest), []byte(dummyPlaintext+"x"))
}
