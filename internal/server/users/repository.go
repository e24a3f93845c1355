package users

import (
	"context"
)

// Repository is the storage contract for registration records.
//
// Create is insert-if-absent: registering an existing username fails with
// common.ErrorAlreadyExists. GetByUsername fails with common.ErrorNotFound
// for unknown usernames.
type Repository interface {
	Create(ctx context.Context, user *User) (*User, error)
	GetByUsername(ctx context.Context, username string) (*User, error)
}
