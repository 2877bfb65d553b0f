package lineitem

import (
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/sangkips/lineform-api/internal/domain/enum"
	"github.com/sangkips/lineform-api/pkg/apperror"
	"github.com/sangkips/lineform-api/pkg/numeric"
	"github.com/shopspring/decimal"
)

// Record is the normalized payload of one filled entry, handed to the
// external save call.
type Record struct {
	EntryID         uuid.UUID   `json:"entry_id"`
	TargetID        string      `json:"target_id,omitempty"`
	GroupID         string      `json:"group_id"`
	Quantity        float64     `json:"quantity"`
	Currency        string      `json:"currency"`
	UnitPrice       float64     `json:"unit_price"`
	LineTotal       float64     `json:"line_total"`
	TaxPercent      *float64    `json:"tax_percent,omitempty"`
	TaxAmount       *float64    `json:"tax_amount,omitempty"`
	DiscountPercent *float64    `json:"discount_percent,omitempty"`
	DiscountAmount  *float64    `json:"discount_amount,omitempty"`
	Meta            *RecordMeta `json:"meta,omitempty"`
}

// RecordMeta carries the free-text fields of an entry
type RecordMeta struct {
	Reason string `json:"reason,omitempty"`
	Note   string `json:"note,omitempty"`
}

// Result is the outcome of ValidateAndMap. Either Records or Errors is set,
// never both.
type Result struct {
	OK          bool
	Records     []Record
	Errors      map[uuid.UUID][]apperror.FieldError
	FieldErrors []apperror.FieldError
}

// Err returns the validation error for a failed result, nil otherwise
func (r Result) Err() error {
	if r.OK {
		return nil
	}
	return apperror.NewValidationError(r.FieldErrors)
}

// ValidateAndMap classifies every entry, rejects the submission if any
// partial entry exists and maps every filled entry otherwise. Empty entries
// are skipped silently. Line totals are rounded here and nowhere else.
func ValidateAndMap(groups []Group, cfg Config, rates RateTable) Result {
	var candidates []Entry
	for _, g := range groups {
		for _, e := range g.Entries {
			if Classify(e, cfg) != enum.CompletenessEmpty {
				candidates = append(candidates, e)
			}
		}
	}
	if len(candidates) == 0 {
		return Result{OK: true, Records: []Record{}}
	}

	errs := make(map[uuid.UUID][]apperror.FieldError)
	var flat []apperror.FieldError
	for _, e := range candidates {
		if fieldErrs := CheckEntry(e, cfg); len(fieldErrs) > 0 {
			errs[e.ID] = fieldErrs
			flat = append(flat, fieldErrs...)
		}
	}
	if len(errs) > 0 {
		return Result{OK: false, Errors: errs, FieldErrors: flat}
	}

	records := make([]Record, 0, len(candidates))
	for _, e := range candidates {
		records = append(records, mapRecord(e, cfg, rates))
	}
	return Result{OK: true, Records: records}
}

// CheckEntry runs the field-level checks for one entry
func CheckEntry(e Entry, cfg Config) []apperror.FieldError {
	var out []apperror.FieldError
	add := func(field, message string) {
		out = append(out, apperror.FieldError{EntryID: e.ID.String(), Field: field, Message: message})
	}

	if cfg.RequireTarget && strings.TrimSpace(e.TargetID) == "" {
		add("target_id", "Target is required")
	}
	if msg := positiveCheck(e.Quantity, "Quantity"); msg != "" {
		add("quantity", msg)
	}
	if cfg.RequirePrice {
		if msg := positiveCheck(e.UnitPrice, "Price"); msg != "" {
			add("unit_price", msg)
		}
	}
	return out
}

func positiveCheck(raw, label string) string {
	v, err := numeric.ParseStrict(raw)
	switch {
	case errors.Is(err, numeric.ErrInvalid):
		return label + " must be a valid number"
	case err != nil, !v.IsPositive():
		return label + " must exceed 0"
	}
	return ""
}

func mapRecord(e Entry, cfg Config, rates RateTable) Record {
	r := Record{
		EntryID:   e.ID,
		TargetID:  strings.TrimSpace(e.TargetID),
		GroupID:   e.GroupID,
		Quantity:  numeric.Float(numeric.Parse(e.Quantity)),
		Currency:  e.Currency,
		LineTotal: numeric.Float(numeric.Round(CalcTotal(e, cfg, rates))),
	}

	if cfg.RequirePrice {
		r.UnitPrice = numeric.Float(numeric.Parse(e.UnitPrice))
		if e.TaxMode.IsPercent() {
			r.TaxPercent = nonZero(e.TaxPercent)
		} else {
			r.TaxAmount = nonZero(e.TaxAmount)
		}
		if e.DiscountMode.IsPercent() {
			r.DiscountPercent = nonZero(e.DiscountPercent)
		} else {
			r.DiscountAmount = nonZero(e.DiscountAmount)
		}
	}

	reason, note := strings.TrimSpace(e.Reason), strings.TrimSpace(e.Note)
	if reason != "" || note != "" {
		r.Meta = &RecordMeta{Reason: reason, Note: note}
	}
	return r
}

func nonZero(raw string) *float64 {
	v := numeric.Parse(raw)
	if v.Equal(decimal.Zero) {
		return nil
	}
	f := numeric.Float(v)
	return &f
}
