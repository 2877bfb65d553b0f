package request

import (
	"github.com/sangkips/lineform-api/internal/domain/enum"
	"github.com/sangkips/lineform-api/internal/domain/lineitem"
)

// SubjectRequest describes one group to open on a form
type SubjectRequest struct {
	GroupID string   `json:"group_id" binding:"required,max=255"`
	Label   string   `json:"label" binding:"max=255"`
	Targets []string `json:"targets" binding:"omitempty,dive,required,max=255"`
}

// ToSubject converts the request into a domain subject
func (r SubjectRequest) ToSubject() lineitem.Subject {
	return lineitem.Subject{GroupID: r.GroupID, Label: r.Label, Targets: r.Targets}
}

// CreateFormRequest represents a form creation request
type CreateFormRequest struct {
	Kind     string           `json:"kind" binding:"required,oneof=stock_entry stock_adjust sale_line"`
	Subjects []SubjectRequest `json:"subjects" binding:"omitempty,dive"`
}

// FormKind returns the parsed kind; binding already restricted the values
func (r CreateFormRequest) FormKind() enum.FormKind {
	kind, _ := enum.ParseFormKind(r.Kind)
	return kind
}

// ReplaceSubjectsRequest represents a request to rebuild a form's groups
type ReplaceSubjectsRequest struct {
	Subjects []SubjectRequest `json:"subjects" binding:"required,dive"`
}

// ToSubjects converts a list of subject requests
func ToSubjects(reqs []SubjectRequest) []lineitem.Subject {
	subjects := make([]lineitem.Subject, 0, len(reqs))
	for _, r := range reqs {
		subjects = append(subjects, r.ToSubject())
	}
	return subjects
}

// UpdateEntryRequest represents a partial entry update. Numeric values are
// sent as the user typed them and parsed by the engine.
type UpdateEntryRequest struct {
	TargetID        *string          `json:"target_id" binding:"omitempty,max=255"`
	Quantity        *string          `json:"quantity" binding:"omitempty,max=32"`
	UnitPrice       *string          `json:"unit_price" binding:"omitempty,max=32"`
	Currency        *string          `json:"currency" binding:"omitempty,max=3"`
	TaxMode         *enum.AmountMode `json:"tax_mode"`
	TaxPercent      *string          `json:"tax_percent" binding:"omitempty,max=32"`
	TaxAmount       *string          `json:"tax_amount" binding:"omitempty,max=32"`
	DiscountMode    *enum.AmountMode `json:"discount_mode"`
	DiscountPercent *string          `json:"discount_percent" binding:"omitempty,max=32"`
	DiscountAmount  *string          `json:"discount_amount" binding:"omitempty,max=32"`
	Reason          *string          `json:"reason" binding:"omitempty,max=255"`
	Note            *string          `json:"note" binding:"omitempty,max=1000"`
}

// ToPatch converts the request into an entry patch
func (r UpdateEntryRequest) ToPatch() lineitem.Patch {
	return lineitem.Patch{
		TargetID:        r.TargetID,
		Quantity:        r.Quantity,
		UnitPrice:       r.UnitPrice,
		Currency:        r.Currency,
		TaxMode:         r.TaxMode,
		TaxPercent:      r.TaxPercent,
		TaxAmount:       r.TaxAmount,
		DiscountMode:    r.DiscountMode,
		DiscountPercent: r.DiscountPercent,
		DiscountAmount:  r.DiscountAmount,
		Reason:          r.Reason,
		Note:            r.Note,
	}
}

// SetRateRequest represents an exchange rate update
type SetRateRequest struct {
	Rate string `json:"rate" binding:"required,max=32"`
}
