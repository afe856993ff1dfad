// Package refreshtokens stores the single active refresh token of each user.
package refreshtokens

import "context"

// Repository is the per-user session slot.
type Repository interface {
	// Set overwrites the slot with token.
	Set(ctx context.Context, userID, token string) error
	// Clear empties the slot. Clearing an empty slot is not an error.
	Clear(ctx context.Context, userID string) error
	// Get returns the stored token, "" when the slot is empty. Backends that
	// know about users return common.ErrorNotFound for unknown ids.
	Get(ctx context.Context, userID string) (string, error)
}
