package lineitem

import (
	"strings"
	"testing"

	"github.com/sangkips/lineform-api/internal/domain/enum"
	"github.com/sangkips/lineform-api/pkg/apperror"
	"github.com/sangkips/lineform-api/pkg/numeric"
)

func TestValidateAndMapNothingEntered(t *testing.T) {
	s := newTestStore(t, enum.FormKindStockEntry,
		Subject{GroupID: "variant-1", Targets: []string{"store-1", "store-2"}},
	)
	res := ValidateAndMap(s.Groups(), s.Config(), Rates{})
	if !res.OK || len(res.Records) != 0 || len(res.Errors) != 0 {
		t.Errorf("untouched store should succeed with no records: %+v", res)
	}
	if res.Err() != nil {
		t.Errorf("Err() = %v, want nil", res.Err())
	}
}

func TestValidateAndMapFilledAndEmpty(t *testing.T) {
	s := newTestStore(t, enum.FormKindSaleLine, Subject{GroupID: "sale-1"})
	g, _ := s.Group("sale-1")
	a := g.Entries[0]
	if _, err := s.UpdateEntry(a.ID, Patch{Quantity: strPtr("1"), UnitPrice: strPtr("50")}); err != nil {
		t.Fatal(err)
	}
	if _, err := s.AddEntry("sale-1"); err != nil {
		t.Fatal(err)
	}

	res := ValidateAndMap(s.Groups(), s.Config(), Rates{})
	if !res.OK {
		t.Fatalf("expected success, got errors %+v", res.Errors)
	}
	if len(res.Records) != 1 || len(res.Errors) != 0 {
		t.Fatalf("got %d records and %d errors, want 1 and 0", len(res.Records), len(res.Errors))
	}

	r := res.Records[0]
	if r.EntryID != a.ID || r.GroupID != "sale-1" || r.Quantity != 1 || r.UnitPrice != 50 || r.LineTotal != 50 || r.Currency != "TRY" {
		t.Errorf("unexpected record: %+v", r)
	}
	if r.TaxPercent != nil || r.TaxAmount != nil || r.DiscountPercent != nil || r.DiscountAmount != nil || r.Meta != nil {
		t.Errorf("blank optional fields should be omitted: %+v", r)
	}
}

func TestValidateAndMapMissingPrice(t *testing.T) {
	s := newTestStore(t, enum.FormKindSaleLine, Subject{GroupID: "sale-1"})
	g, _ := s.Group("sale-1")
	id := g.Entries[0].ID
	if _, err := s.UpdateEntry(id, Patch{Quantity: strPtr("3"), UnitPrice: strPtr("")}); err != nil {
		t.Fatal(err)
	}

	res := ValidateAndMap(s.Groups(), s.Config(), Rates{})
	if res.OK || len(res.Records) != 0 {
		t.Fatalf("expected failure without records: %+v", res)
	}
	if len(res.Errors) != 1 {
		t.Fatalf("got errors for %d entries, want 1", len(res.Errors))
	}
	errs := res.Errors[id]
	if len(errs) != 1 || errs[0].Field != "unit_price" || errs[0].Message != "Price must exceed 0" {
		t.Errorf("unexpected field errors: %+v", errs)
	}
	if errs[0].EntryID != id.String() {
		t.Errorf("field error not keyed by entry: %+v", errs[0])
	}

	appErr := apperror.GetAppError(res.Err())
	if appErr.Code != 422 || len(appErr.Errors) != 1 {
		t.Errorf("unexpected app error: %+v", appErr)
	}
}

func TestValidateAndMapPartialBlocksEverything(t *testing.T) {
	s := newTestStore(t, enum.FormKindStockEntry,
		Subject{GroupID: "variant-1", Targets: []string{"store-1"}},
		Subject{GroupID: "variant-2"},
	)
	g1, _ := s.Group("variant-1")
	g2, _ := s.Group("variant-2")
	if _, err := s.UpdateEntry(g1.Entries[0].ID, Patch{Quantity: strPtr("2"), UnitPrice: strPtr("10")}); err != nil {
		t.Fatal(err)
	}
	partial := g2.Entries[0].ID
	if _, err := s.UpdateEntry(partial, Patch{Quantity: strPtr("5")}); err != nil {
		t.Fatal(err)
	}

	res := ValidateAndMap(s.Groups(), s.Config(), Rates{})
	if res.OK || res.Records != nil {
		t.Fatalf("a partial entry must block submission: %+v", res)
	}
	fields := map[string]string{}
	for _, fe := range res.Errors[partial] {
		fields[fe.Field] = fe.Message
	}
	if fields["target_id"] != "Target is required" || fields["unit_price"] != "Price must exceed 0" {
		t.Errorf("unexpected messages: %v", fields)
	}
	if _, ok := fields["quantity"]; ok {
		t.Error("quantity is valid and should not be reported")
	}
}

func TestCheckEntryInvalidNumber(t *testing.T) {
	cfg := ConfigFor(enum.FormKindSaleLine, "TRY")
	e := pricedEntry("two", "10")

	errs := CheckEntry(e, cfg)
	if len(errs) != 1 || !strings.Contains(errs[0].Message, "valid number") {
		t.Errorf("unexpected errors: %+v", errs)
	}
}

func TestValidateAndMapRecordShape(t *testing.T) {
	s := newTestStore(t, enum.FormKindStockEntry, Subject{GroupID: "variant-1", Targets: []string{"store-1"}})
	g, _ := s.Group("variant-1")
	e, err := s.UpdateEntry(g.Entries[0].ID, Patch{
		Quantity:        strPtr("3"),
		UnitPrice:       strPtr("33.333"),
		Currency:        strPtr("USD"),
		TaxPercent:      strPtr("0"),
		DiscountMode:    modePtr(enum.AmountModeAmount),
		DiscountAmount:  strPtr("1.5"),
		DiscountPercent: strPtr("40"),
		Reason:          strPtr("  "),
		Note:            strPtr("late delivery"),
	})
	if err != nil {
		t.Fatal(err)
	}
	rates := Rates{"USD": dec("1.1")}

	res := ValidateAndMap(s.Groups(), s.Config(), rates)
	if !res.OK || len(res.Records) != 1 {
		t.Fatalf("expected one record: %+v", res)
	}
	r := res.Records[0]

	want := numeric.Float(numeric.Round(CalcTotal(e, s.Config(), rates)))
	if r.LineTotal != want {
		t.Errorf("LineTotal = %v, want %v", r.LineTotal, want)
	}
	if r.LineTotal != 108.5 {
		t.Errorf("LineTotal = %v, want 108.5", r.LineTotal)
	}
	if r.TargetID != "store-1" || r.Currency != "USD" || r.UnitPrice != 33.333 {
		t.Errorf("unexpected record: %+v", r)
	}
	if r.TaxPercent != nil || r.TaxAmount != nil {
		t.Errorf("zero tax should be omitted: %+v", r)
	}
	if r.DiscountPercent != nil || r.DiscountAmount == nil || *r.DiscountAmount != 1.5 {
		t.Errorf("only the active discount should be present: %+v", r)
	}
	if r.Meta == nil || r.Meta.Reason != "" || r.Meta.Note != "late delivery" {
		t.Errorf("unexpected meta: %+v", r.Meta)
	}
}

func TestValidateAndMapAdjustMode(t *testing.T) {
	s := newTestStore(t, enum.FormKindStockAdjust, Subject{GroupID: "variant-1", Targets: []string{"store-1"}})
	g, _ := s.Group("variant-1")
	if _, err := s.UpdateEntry(g.Entries[0].ID, Patch{
		Quantity:   strPtr("7"),
		UnitPrice:  strPtr("10"),
		TaxPercent: strPtr("18"),
		Reason:     strPtr("count correction"),
	}); err != nil {
		t.Fatal(err)
	}

	res := ValidateAndMap(s.Groups(), s.Config(), Rates{})
	if !res.OK || len(res.Records) != 1 {
		t.Fatalf("expected one record: %+v", res)
	}
	r := res.Records[0]
	if r.UnitPrice != 0 || r.LineTotal != 0 || r.TaxPercent != nil || r.Quantity != 7 {
		t.Errorf("adjust record should carry quantity only: %+v", r)
	}
	if r.Meta == nil || r.Meta.Reason != "count correction" {
		t.Errorf("unexpected meta: %+v", r.Meta)
	}
}

func TestCheckEntryRejectsExponentInput(t *testing.T) {
	cfg := ConfigFor(enum.FormKindSaleLine, "TRY")
	e := newEntry("sale-1", "", "TRY")
	e.Quantity = "1e100000000"
	e.UnitPrice = "1"

	errs := CheckEntry(e, cfg)
	if len(errs) != 1 || errs[0].Field != "quantity" || errs[0].Message != "Quantity must be a valid number" {
		t.Fatalf("unexpected errors: %+v", errs)
	}
	if got := CalcTotal(e, cfg, Rates{}); !got.IsZero() {
		t.Errorf("CalcTotal = %s, want 0", got)
	}
}
