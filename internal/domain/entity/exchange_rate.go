package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// ExchangeRate stores the multiplier of a currency against the base currency
type ExchangeRate struct {
	Code      string          `gorm:"size:3;primaryKey" json:"code"`
	Rate      decimal.Decimal `gorm:"type:decimal(18,6);not null" json:"rate"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// TableName returns the table name for the ExchangeRate model
func (ExchangeRate) TableName() string {
	return "exchange_rates"
}
