package lineitem

import (
	"strings"

	"github.com/google/uuid"
	"github.com/sangkips/lineform-api/internal/domain/enum"
	"golang.org/x/text/currency"
)

// Entry is one editable row of a form. Numeric fields hold exactly what the
// user typed; they are parsed on demand. Slot marks a row seeded for a fixed
// target; its target alone does not count as user input.
type Entry struct {
	ID              uuid.UUID       `json:"id"`
	GroupID         string          `json:"group_id"`
	TargetID        string          `json:"target_id"`
	Slot            bool            `json:"slot"`
	Quantity        string          `json:"quantity"`
	UnitPrice       string          `json:"unit_price"`
	Currency        string          `json:"currency"`
	TaxMode         enum.AmountMode `json:"tax_mode"`
	TaxPercent      string          `json:"tax_percent"`
	TaxAmount       string          `json:"tax_amount"`
	DiscountMode    enum.AmountMode `json:"discount_mode"`
	DiscountPercent string          `json:"discount_percent"`
	DiscountAmount  string          `json:"discount_amount"`
	Reason          string          `json:"reason"`
	Note            string          `json:"note"`
}

// Group owns the entries sharing one subject (a variant or a sale)
type Group struct {
	ID      string  `json:"group_id"`
	Label   string  `json:"label"`
	Entries []Entry `json:"entries"`
}

// Subject describes a group to build. Targets seed one entry each.
type Subject struct {
	GroupID string   `json:"group_id"`
	Label   string   `json:"label"`
	Targets []string `json:"targets"`
}

// Patch carries the fields to change on an entry; nil fields are untouched
type Patch struct {
	TargetID        *string          `json:"target_id"`
	Quantity        *string          `json:"quantity"`
	UnitPrice       *string          `json:"unit_price"`
	Currency        *string          `json:"currency"`
	TaxMode         *enum.AmountMode `json:"tax_mode"`
	TaxPercent      *string          `json:"tax_percent"`
	TaxAmount       *string          `json:"tax_amount"`
	DiscountMode    *enum.AmountMode `json:"discount_mode"`
	DiscountPercent *string          `json:"discount_percent"`
	DiscountAmount  *string          `json:"discount_amount"`
	Reason          *string          `json:"reason"`
	Note            *string          `json:"note"`
}

func newEntry(groupID, targetID, baseCurrency string) Entry {
	return Entry{
		ID:           uuid.New(),
		GroupID:      groupID,
		TargetID:     targetID,
		Slot:         targetID != "",
		Currency:     baseCurrency,
		TaxMode:      enum.AmountModePercent,
		DiscountMode: enum.AmountModePercent,
	}
}

// NormalizeCurrency upper-cases and validates an ISO 4217 code
func NormalizeCurrency(code string) (string, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	unit, err := currency.ParseISO(code)
	if err != nil || unit == (currency.Unit{}) {
		return "", ErrInvalidCurrency
	}
	return unit.String(), nil
}

// apply copies the patch onto the entry. Afterwards only the value field
// matching each mode holds anything; writes to the other field are dropped.
func (e *Entry) apply(p Patch, baseCurrency string) error {
	if p.Currency != nil {
		code := baseCurrency
		if strings.TrimSpace(*p.Currency) != "" {
			normalized, err := NormalizeCurrency(*p.Currency)
			if err != nil {
				return err
			}
			code = normalized
		}
		e.Currency = code
	}
	if p.TargetID != nil {
		target := strings.TrimSpace(*p.TargetID)
		if target != e.TargetID {
			e.TargetID = target
			e.Slot = false
		}
	}
	setString(&e.Quantity, p.Quantity)
	setString(&e.UnitPrice, p.UnitPrice)
	setString(&e.TaxPercent, p.TaxPercent)
	setString(&e.TaxAmount, p.TaxAmount)
	setString(&e.DiscountPercent, p.DiscountPercent)
	setString(&e.DiscountAmount, p.DiscountAmount)
	setString(&e.Reason, p.Reason)
	setString(&e.Note, p.Note)

	if p.TaxMode != nil {
		e.TaxMode = *p.TaxMode
	}
	if p.DiscountMode != nil {
		e.DiscountMode = *p.DiscountMode
	}
	e.clearInactiveValues()
	return nil
}

// clearInactiveValues blanks the value field the current mode does not use,
// so a later mode switch never revives a hidden value.
func (e *Entry) clearInactiveValues() {
	clearInactive(e.TaxMode, &e.TaxPercent, &e.TaxAmount)
	clearInactive(e.DiscountMode, &e.DiscountPercent, &e.DiscountAmount)
}

func setString(dst *string, src *string) {
	if src != nil {
		*dst = *src
	}
}

func clearInactive(mode enum.AmountMode, percent, amount *string) {
	if mode.IsPercent() {
		*amount = ""
	} else {
		*percent = ""
	}
}

// copyShared overwrites the propagated fields of dst with those of src.
// Quantity and target identify the row and are never copied.
func copyShared(dst *Entry, src Entry, cfg Config) {
	dst.Reason = src.Reason
	dst.Note = src.Note
	if !cfg.RequirePrice {
		return
	}
	dst.UnitPrice = src.UnitPrice
	dst.Currency = src.Currency
	dst.TaxMode = src.TaxMode
	dst.TaxPercent = src.TaxPercent
	dst.TaxAmount = src.TaxAmount
	dst.DiscountMode = src.DiscountMode
	dst.DiscountPercent = src.DiscountPercent
	dst.DiscountAmount = src.DiscountAmount
	dst.clearInactiveValues()
}
