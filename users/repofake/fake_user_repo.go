// Package repofake provides an in-memory users.Repo for tests and
// single-process development.
package repofake

import (
	"context"
	"sync"

	apperrors "github.com/jrsteele09/go-session-auth/internal/errors"
	"github.com/jrsteele09/go-session-auth/users"
)

// FakeUserRepo is a threadsafe in-memory users.Repo keyed by login_id.
type FakeUserRepo struct {
	mu      sync.RWMutex
	byLogin map[string]*users.User
	byID    map[string]*users.User

	// Err, when set, is returned by every operation. Used to exercise
	// store-unavailable paths in tests.
	Err error
}

// New creates an empty FakeUserRepo.
func New() *FakeUserRepo {
	return &FakeUserRepo{
		byLogin: make(map[string]*users.User),
		byID:    make(map[string]*users.User),
	}
}

var _ users.Repo = (*FakeUserRepo)(nil)

// GetByLoginID implements users.Repo.
func (f *FakeUserRepo) GetByLoginID(_ context.Context, loginID string) (*users.User, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	if f.Err != nil {
		return nil, f.Err
	}
	u, ok := f.byLogin[loginID]
	if !ok {
		return nil, apperrors.ErrAccountNotFound
	}
	cp := *u
	return &cp, nil
}

// GetByID implements users.Repo.
func (f *FakeUserRepo) GetByID(_ context.Context, id string) (*users.User, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	if f.Err != nil {
		return nil, f.Err
	}
	u, ok := f.byID[id]
	if !ok {
		return nil, apperrors.ErrAccountNotFound
	}
	cp := *u
	return &cp, nil
}

// Insert implements users.Repo.
func (f *FakeUserRepo) Insert(_ context.Context, user *users.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.Err != nil {
		return f.Err
	}
	if _, ok := f.byLogin[user.LoginID]; ok {
		return apperrors.ErrDuplicateAccount
	}
	if _, ok := f.byID[user.ID]; ok {
		return apperrors.ErrDuplicateAccount
	}
	cp := *user
	f.byLogin[cp.LoginID] = &cp
	f.byID[cp.ID] = &cp
	return nil
}

// ExistsByLoginID implements users.Repo.
func (f *FakeUserRepo) ExistsByLoginID(_ context.Context, loginID string) (bool, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	if f.Err != nil {
		return false, f.Err
	}
	_, ok := f.byLogin[loginID]
	return ok, nil
}
