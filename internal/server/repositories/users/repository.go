// Package users declares the identity store and its Postgres and in-memory
// implementations.
package users

import (
	"context"

	"github.com/dmitrijs2005/authkeeper/internal/server/models"
)

// Repository persists user records. Lookups return common.ErrorNotFound when
// nothing matches; Create returns common.ErrorAlreadyExists when the username
// or email is taken. When the username and the email match different users,
// FindByUserNameOrEmail returns the username match.
type Repository interface {
	Create(ctx context.Context, user *models.User) (*models.User, error)
	FindByID(ctx context.Context, id string) (*models.User, error)
	FindByUserNameOrEmail(ctx context.Context, userName, email string) (*models.User, error)
	UpdatePassword(ctx context.Context, id, passwordHash string) error
}
