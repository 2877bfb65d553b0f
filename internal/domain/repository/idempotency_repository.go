package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/sangkips/lineform-api/internal/domain/entity"
)

// IdempotencyRepository stores replayable submission responses
type IdempotencyRepository interface {
	// GetByKey returns nil when the user never used the key
	GetByKey(ctx context.Context, key string, userID uuid.UUID) (*entity.IdempotencyKey, error)
	// Save stores the key, replacing an expired record for the same user and key
	Save(ctx context.Context, ikey *entity.IdempotencyKey) error
	// DeleteExpired removes expired keys and returns how many were removed
	DeleteExpired(ctx context.Context) (int64, error)
}
