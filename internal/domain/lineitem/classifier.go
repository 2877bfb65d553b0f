package lineitem

import (
	"strings"

	"github.com/sangkips/lineform-api/internal/domain/enum"
	"github.com/sangkips/lineform-api/pkg/numeric"
)

// Classify reports how complete an entry is. Only the required signals count:
// target (when required), quantity > 0 and unit price > 0 (when required).
// The target of a seeded slot satisfies the requirement but is not input, so
// an untouched slot stays empty.
func Classify(e Entry, cfg Config) enum.Completeness {
	required, present, touched := 1, 0, 0

	if cfg.RequireTarget {
		required++
		if strings.TrimSpace(e.TargetID) != "" {
			present++
			if !e.Slot {
				touched++
			}
		}
	}
	if numeric.Parse(e.Quantity).IsPositive() {
		present++
		touched++
	}
	if cfg.RequirePrice {
		required++
		if numeric.Parse(e.UnitPrice).IsPositive() {
			present++
			touched++
		}
	}

	switch {
	case touched == 0:
		return enum.CompletenessEmpty
	case present == required:
		return enum.CompletenessFilled
	default:
		return enum.CompletenessPartial
	}
}
