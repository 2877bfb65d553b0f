package lineitem

import (
	"fmt"

	"github.com/sangkips/lineform-api/internal/domain/enum"
	"github.com/sangkips/lineform-api/pkg/apperror"
)

// ImportRow is one parsed spreadsheet line addressed to a group
type ImportRow struct {
	Line     int
	GroupID  string
	TargetID string
	Patch    Patch
}

// Import writes rows into the store. A row lands in the first empty entry of
// its group with the same target, then in the first empty entry without a
// target, and otherwise in a new entry. Unknown groups reject the whole
// import before anything changes. It returns the number of rows applied.
func (s *Store) Import(rows []ImportRow) (int, error) {
	for _, row := range rows {
		if s.groupIndex(row.GroupID) < 0 {
			return 0, apperror.NewBadRequestError(fmt.Sprintf("row %d: unknown group %q", row.Line, row.GroupID))
		}
	}

	for _, row := range rows {
		gi := s.groupIndex(row.GroupID)
		ei := s.importSlot(gi, row.TargetID)
		if ei < 0 {
			s.groups[gi].Entries = append(s.groups[gi].Entries, newEntry(row.GroupID, "", s.cfg.BaseCurrency))
			ei = len(s.groups[gi].Entries) - 1
		}

		e := s.groups[gi].Entries[ei]
		if row.TargetID != "" {
			e.TargetID = row.TargetID
		}
		if err := e.apply(row.Patch, s.cfg.BaseCurrency); err != nil {
			return 0, apperror.NewBadRequestError(fmt.Sprintf("row %d: %s", row.Line, apperror.GetAppError(err).Message))
		}
		s.groups[gi].Entries[ei] = e
	}
	return len(rows), nil
}

func (s *Store) importSlot(gi int, targetID string) int {
	entries := s.groups[gi].Entries
	if targetID != "" {
		for i, e := range entries {
			if e.TargetID == targetID && Classify(e, s.cfg) == enum.CompletenessEmpty {
				return i
			}
		}
	}
	for i, e := range entries {
		if e.TargetID == "" && Classify(e, s.cfg) == enum.CompletenessEmpty {
			return i
		}
	}
	return -1
}
