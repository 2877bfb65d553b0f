package service

import (
	"context"
	"net/http"
	"sort"
	"testing"

	"github.com/sangkips/lineform-api/internal/domain/entity"
	"github.com/sangkips/lineform-api/pkg/pagination"
	"github.com/shopspring/decimal"
)

type memoryRateRepo struct {
	rows map[string]entity.ExchangeRate
}

func newMemoryRateRepo() *memoryRateRepo {
	return &memoryRateRepo{rows: map[string]entity.ExchangeRate{}}
}

func (m *memoryRateRepo) GetByCode(_ context.Context, code string) (*entity.ExchangeRate, error) {
	row, ok := m.rows[code]
	if !ok {
		return nil, nil
	}
	return &row, nil
}

func (m *memoryRateRepo) List(_ context.Context, params *pagination.PaginationParams) ([]entity.ExchangeRate, int64, error) {
	codes := make([]string, 0, len(m.rows))
	for code := range m.rows {
		codes = append(codes, code)
	}
	sort.Strings(codes)

	out := []entity.ExchangeRate{}
	for i := params.Offset(); i < len(codes) && len(out) < params.PerPage; i++ {
		out = append(out, m.rows[codes[i]])
	}
	return out, int64(len(codes)), nil
}

func (m *memoryRateRepo) Upsert(_ context.Context, rate *entity.ExchangeRate) error {
	m.rows[rate.Code] = *rate
	return nil
}

func TestRateServiceSetRate(t *testing.T) {
	repo := newMemoryRateRepo()
	svc := NewRateService(repo, "TRY")
	ctx := context.Background()

	if err := svc.EnsureBaseRate(ctx); err != nil {
		t.Fatal(err)
	}
	rate, err := svc.SetRate(ctx, " usd ", "32,75")
	if err != nil {
		t.Fatalf("SetRate: %v", err)
	}
	if rate.Code != "USD" || !rate.Rate.Equal(decimal.RequireFromString("32.75")) {
		t.Errorf("unexpected rate: %+v", rate)
	}

	tests := []struct {
		name string
		code string
		rate string
		want int
	}{
		{"invalid code", "ZZ", "2", http.StatusBadRequest},
		{"zero rate", "EUR", "0", http.StatusUnprocessableEntity},
		{"text rate", "EUR", "abc", http.StatusUnprocessableEntity},
		{"base rate changed", "TRY", "2", http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.SetRate(ctx, tt.code, tt.rate)
			assertAppCode(t, err, tt.want)
		})
	}

	page, err := svc.ListRates(ctx, &pagination.PaginationParams{Page: 1, PerPage: 1})
	if err != nil {
		t.Fatal(err)
	}
	if page.Pagination.Total != 2 || len(page.Items) != 1 || page.Items[0].Code != "TRY" || !page.Pagination.HasNext {
		t.Errorf("unexpected page: %+v items %+v", page.Pagination, page.Items)
	}
}

func TestRepositoryRateSource(t *testing.T) {
	repo := newMemoryRateRepo()
	repo.rows["USD"] = entity.ExchangeRate{Code: "USD", Rate: decimal.NewFromInt(30)}
	src := NewRepositoryRateSource(repo)
	ctx := context.Background()

	rate, err := src.Lookup(ctx, "USD")
	if err != nil || !rate.Equal(decimal.NewFromInt(30)) {
		t.Errorf("Lookup(USD) = %s, %v", rate, err)
	}
	if _, err := src.Lookup(ctx, "EUR"); err == nil {
		t.Error("expected error for missing rate")
	}
}
