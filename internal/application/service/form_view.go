package service

import (
	"github.com/google/uuid"
	"github.com/sangkips/lineform-api/internal/domain/enum"
	"github.com/sangkips/lineform-api/internal/domain/lineitem"
)

// FormView is the state of a form as shown to the client. Totals are in base
// currency and rounded for display only.
type FormView struct {
	ID                 uuid.UUID         `json:"id"`
	Kind               enum.FormKind     `json:"kind"`
	BaseCurrency       string            `json:"base_currency"`
	RequirePrice       bool              `json:"require_price"`
	RequireTarget      bool              `json:"require_target"`
	Groups             []GroupView       `json:"groups"`
	GrandTotal         string            `json:"grand_total"`
	Rates              map[string]string `json:"rates"`
	DegradedCurrencies []string          `json:"degraded_currencies"`
}

// GroupView is one group of a FormView
type GroupView struct {
	ID      string      `json:"group_id"`
	Label   string      `json:"label"`
	Entries []EntryView `json:"entries"`
	Total   string      `json:"total"`
}

// EntryView is one entry with its classification and display total
type EntryView struct {
	lineitem.Entry
	Status    enum.Completeness `json:"status"`
	LineTotal string            `json:"line_total"`
}

func buildView(fs *formSession) *FormView {
	cfg := fs.store.Config()
	groups := fs.store.Groups()
	table := fs.resolver.Table()
	summary := lineitem.Summarize(groups, cfg, table)

	view := &FormView{
		ID:                 fs.id,
		Kind:               cfg.Kind,
		BaseCurrency:       cfg.BaseCurrency,
		RequirePrice:       cfg.RequirePrice,
		RequireTarget:      cfg.RequireTarget,
		Groups:             make([]GroupView, 0, len(groups)),
		GrandTotal:         summary.Grand.StringFixed(2),
		Rates:              make(map[string]string, len(table)),
		DegradedCurrencies: fs.resolver.Degraded(),
	}
	for code, rate := range table {
		view.Rates[code] = rate.String()
	}

	for _, g := range groups {
		gv := GroupView{
			ID:      g.ID,
			Label:   g.Label,
			Entries: make([]EntryView, 0, len(g.Entries)),
			Total:   summary.Groups[g.ID].StringFixed(2),
		}
		for _, e := range g.Entries {
			gv.Entries = append(gv.Entries, EntryView{
				Entry:     e,
				Status:    lineitem.Classify(e, cfg),
				LineTotal: summary.Lines[e.ID].StringFixed(2),
			})
		}
		view.Groups = append(view.Groups, gv)
	}
	return view
}
