package repomanager

import (
	"context"
	"sync"

	"github.com/dmitrijs2005/authkeeper/internal/server/repositories/refreshtokens"
	"github.com/dmitrijs2005/authkeeper/internal/server/repositories/users"
)

// MemoryRepositoryManager keeps everything in process. WithinTx serializes
// units of work but cannot undo a partial one.
type MemoryRepositoryManager struct {
	mu       sync.Mutex
	users    users.Repository
	sessions refreshtokens.Repository
}

func NewMemoryRepositoryManager() *MemoryRepositoryManager {
	u := users.NewMemoryRepository()
	return &MemoryRepositoryManager{users: u, sessions: refreshtokens.NewMemoryRepository(u)}
}

// NewRepositoryManager builds a manager over arbitrary repositories. Tests
// use it to inject failing stores.
func NewRepositoryManager(u users.Repository, rt refreshtokens.Repository) *MemoryRepositoryManager {
	return &MemoryRepositoryManager{users: u, sessions: rt}
}

func (m *MemoryRepositoryManager) RunMigrations(context.Context) error { return nil }

func (m *MemoryRepositoryManager) Users() users.Repository { return m.users }

func (m *MemoryRepositoryManager) RefreshTokens() refreshtokens.Repository { return m.sessions }

func (m *MemoryRepositoryManager) WithinTx(ctx context.Context, fn TxFunc) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return fn(ctx, m.users, m.sessions)
}

func (m *MemoryRepositoryManager) Close() error { return nil }
