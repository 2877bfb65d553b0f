package repository

import (
	"context"
	"errors"

	"github.com/sangkips/lineform-api/internal/domain/entity"
	domainRepo "github.com/sangkips/lineform-api/internal/domain/repository"
	"github.com/sangkips/lineform-api/pkg/pagination"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type exchangeRateRepository struct {
	db *gorm.DB
}

// NewExchangeRateRepository creates a new exchange rate repository
func NewExchangeRateRepository(db *gorm.DB) domainRepo.ExchangeRateRepository {
	return &exchangeRateRepository{db: db}
}

func (r *exchangeRateRepository) GetByCode(ctx context.Context, code string) (*entity.ExchangeRate, error) {
	var rate entity.ExchangeRate
	err := r.db.WithContext(ctx).Where("code = ?", code).First(&rate).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &rate, nil
}

func (r *exchangeRateRepository) List(ctx context.Context, params *pagination.PaginationParams) ([]entity.ExchangeRate, int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&entity.ExchangeRate{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rates []entity.ExchangeRate
	err := r.db.WithContext(ctx).
		Order("code ASC").
		Offset(params.Offset()).
		Limit(params.PerPage).
		Find(&rates).Error
	return rates, total, err
}

func (r *exchangeRateRepository) Upsert(ctx context.Context, rate *entity.ExchangeRate) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "code"}},
		DoUpdates: clause.AssignmentColumns([]string{"rate", "updated_at"}),
	}).Create(rate).Error
}
