package refreshtokens

import (
	"context"
	"sync"

	"github.com/dmitrijs2005/authkeeper/internal/server/models"
)

// UserLookup is the part of the users repository the memory store needs to
// tell an empty slot from an unknown user.
type UserLookup interface {
	FindByID(ctx context.Context, id string) (*models.User, error)
}

type MemoryRepository struct {
	mu     sync.Mutex
	users  UserLookup
	tokens map[string]string
}

func NewMemoryRepository(users UserLookup) *MemoryRepository {
	return &MemoryRepository{users: users, tokens: make(map[string]string)}
}

func (r *MemoryRepository) Set(ctx context.Context, userID, token string) error {
	if _, err := r.users.FindByID(ctx, userID); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.tokens[userID] = token
	return nil
}

func (r *MemoryRepository) Clear(_ context.Context, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.tokens, userID)
	return nil
}

func (r *MemoryRepository) Get(ctx context.Context, userID string) (string, error) {
	if _, err := r.users.FindByID(ctx, userID); err != nil {
		return "", err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	return r.tokens[userID], nil
}
