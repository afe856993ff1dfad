// Package repomanager hands out the repositories the services work with and
// owns the backing connections.
package repomanager

import (
	"context"

	"github.com/dmitrijs2005/authkeeper/internal/server/repositories/refreshtokens"
	"github.com/dmitrijs2005/authkeeper/internal/server/repositories/users"
)

// TxFunc receives repositories bound to one unit of work.
type TxFunc func(ctx context.Context, u users.Repository, rt refreshtokens.Repository) error

type RepositoryManager interface {
	RunMigrations(ctx context.Context) error
	Users() users.Repository
	RefreshTokens() refreshtokens.Repository
	// WithinTx runs fn so that its writes commit or roll back together where
	// the backend supports it.
	WithinTx(ctx context.Context, fn TxFunc) error
	Close() error
}
