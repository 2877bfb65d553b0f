package lineitem

import "github.com/sangkips/lineform-api/internal/domain/enum"

// Config parameterizes the engine for one entry form
type Config struct {
	Kind          enum.FormKind
	RequirePrice  bool
	RequireTarget bool
	BaseCurrency  string
}

// ConfigFor returns the preset used by the given form kind.
//
// Stock entries are priced per store row, stock adjustments only move
// quantities between store rows, and sale lines are priced without a store.
func ConfigFor(kind enum.FormKind, baseCurrency string) Config {
	cfg := Config{Kind: kind, BaseCurrency: baseCurrency}
	switch kind {
	case enum.FormKindStockAdjust:
		cfg.RequireTarget = true
	case enum.FormKindSaleLine:
		cfg.RequirePrice = true
	default:
		cfg.RequirePrice = true
		cfg.RequireTarget = true
	}
	return cfg
}
