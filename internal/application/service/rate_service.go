package service

import (
	"context"
	"fmt"

	"github.com/sangkips/lineform-api/internal/domain/entity"
	"github.com/sangkips/lineform-api/internal/domain/lineitem"
	"github.com/sangkips/lineform-api/internal/domain/repository"
	"github.com/sangkips/lineform-api/pkg/apperror"
	"github.com/sangkips/lineform-api/pkg/numeric"
	"github.com/sangkips/lineform-api/pkg/pagination"
	"github.com/shopspring/decimal"
)

// RateService manages the stored exchange rates that back rate lookups
type RateService struct {
	rateRepo     repository.ExchangeRateRepository
	baseCurrency string
}

// NewRateService creates a new rate service
func NewRateService(rateRepo repository.ExchangeRateRepository, baseCurrency string) *RateService {
	return &RateService{rateRepo: rateRepo, baseCurrency: baseCurrency}
}

// EnsureBaseRate stores the base currency with multiplier 1
func (s *RateService) EnsureBaseRate(ctx context.Context) error {
	return s.rateRepo.Upsert(ctx, &entity.ExchangeRate{Code: s.baseCurrency, Rate: fallbackRate})
}

// ListRates returns one page of stored rates
func (s *RateService) ListRates(ctx context.Context, params *pagination.PaginationParams) (*pagination.PaginatedResult[entity.ExchangeRate], error) {
	params.Validate()
	rates, total, err := s.rateRepo.List(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("failed to list exchange rates: %w", err)
	}
	return pagination.NewPaginatedResult(rates, pagination.NewPagination(params.Page, params.PerPage, total)), nil
}

// SetRate validates and stores the rate of one currency
func (s *RateService) SetRate(ctx context.Context, code, rate string) (*entity.ExchangeRate, error) {
	code, err := lineitem.NormalizeCurrency(code)
	if err != nil {
		return nil, err
	}
	value, err := numeric.ParseStrict(rate)
	if err != nil || !value.IsPositive() {
		return nil, apperror.NewValidationError([]apperror.FieldError{
			{Field: "rate", Message: "Rate must be a number greater than 0"},
		})
	}
	if code == s.baseCurrency && !value.Equal(fallbackRate) {
		return nil, apperror.NewBadRequestError(fmt.Sprintf("Base currency %s must keep rate 1", code))
	}

	record := &entity.ExchangeRate{Code: code, Rate: value}
	if err := s.rateRepo.Upsert(ctx, record); err != nil {
		return nil, err
	}
	return record, nil
}

type repositoryRateSource struct {
	rateRepo repository.ExchangeRateRepository
}

// NewRepositoryRateSource serves rate lookups from the exchange rate table
func NewRepositoryRateSource(rateRepo repository.ExchangeRateRepository) RateSource {
	return &repositoryRateSource{rateRepo: rateRepo}
}

func (s *repositoryRateSource) Lookup(ctx context.Context, code string) (decimal.Decimal, error) {
	rate, err := s.rateRepo.GetByCode(ctx, code)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to load rate for %s: %w", code, err)
	}
	if rate == nil {
		return decimal.Zero, fmt.Errorf("no exchange rate stored for %s", code)
	}
	return rate.Rate, nil
}
