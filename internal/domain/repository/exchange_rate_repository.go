package repository

import (
	"context"

	"github.com/sangkips/lineform-api/internal/domain/entity"
	"github.com/sangkips/lineform-api/pkg/pagination"
)

// ExchangeRateRepository defines the interface for exchange rate data operations
type ExchangeRateRepository interface {
	// GetByCode returns nil when no rate is stored for the code
	GetByCode(ctx context.Context, code string) (*entity.ExchangeRate, error)
	// List returns one page of rates ordered by code and the total row count
	List(ctx context.Context, params *pagination.PaginationParams) ([]entity.ExchangeRate, int64, error)
	// Upsert inserts the rate or updates the existing row for its code
	Upsert(ctx context.Context, rate *entity.ExchangeRate) error
}
