package users

import "context"

// Repo is the user store contract consumed by the auth core. Unknown users
// are signalled with errors.ErrAccountNotFound, never a nil-and-nil pair.
// The store is the single authority for identity; cached sessions are not.
type Repo interface {
	GetByLoginID(ctx context.Context, loginID string) (*User, error)
	GetByID(ctx context.Context, id string) (*User, error)
	Insert(ctx context.Context, user *User) error
	ExistsByLoginID(ctx context.Context, loginID string) (bool, error)
}
