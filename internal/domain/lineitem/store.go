package lineitem

import (
	"sort"
	"strings"

	"github.com/google/uuid"
)

// Store owns the groups and entries of one form session. It has a single
// writer and does no locking of its own.
type Store struct {
	cfg    Config
	groups []Group
}

// NewStore builds a store with one group per subject
func NewStore(cfg Config, subjects []Subject) (*Store, error) {
	s := &Store{cfg: cfg, groups: make([]Group, 0, len(subjects))}
	for _, subject := range subjects {
		if _, err := s.AddGroup(subject); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// Config returns the configuration the store was built with
func (s *Store) Config() Config {
	return s.cfg
}

// Groups returns a copy of all groups in display order
func (s *Store) Groups() []Group {
	out := make([]Group, len(s.groups))
	for i, g := range s.groups {
		out[i] = cloneGroup(g)
	}
	return out
}

// Group returns a copy of one group
func (s *Store) Group(groupID string) (Group, error) {
	gi := s.groupIndex(groupID)
	if gi < 0 {
		return Group{}, ErrGroupNotFound
	}
	return cloneGroup(s.groups[gi]), nil
}

// Entry returns a copy of one entry
func (s *Store) Entry(entryID uuid.UUID) (Entry, error) {
	gi, ei := s.locate(entryID)
	if gi < 0 {
		return Entry{}, ErrEntryNotFound
	}
	return s.groups[gi].Entries[ei], nil
}

// AddGroup appends a group seeded with one empty entry per target, or a
// single empty entry when the subject lists no targets.
func (s *Store) AddGroup(subject Subject) (Group, error) {
	groupID := strings.TrimSpace(subject.GroupID)
	if groupID == "" {
		return Group{}, ErrGroupIDRequired
	}
	if s.groupIndex(groupID) >= 0 {
		return Group{}, ErrDuplicateGroup
	}

	g := Group{ID: groupID, Label: subject.Label}
	for _, target := range subject.Targets {
		g.Entries = append(g.Entries, newEntry(groupID, strings.TrimSpace(target), s.cfg.BaseCurrency))
	}
	if len(g.Entries) == 0 {
		g.Entries = append(g.Entries, newEntry(groupID, "", s.cfg.BaseCurrency))
	}

	s.groups = append(s.groups, g)
	return cloneGroup(g), nil
}

// RemoveGroup drops a group with all its entries
func (s *Store) RemoveGroup(groupID string) error {
	gi := s.groupIndex(groupID)
	if gi < 0 {
		return ErrGroupNotFound
	}
	s.groups = append(s.groups[:gi], s.groups[gi+1:]...)
	return nil
}

// AddEntry appends an empty entry to a group
func (s *Store) AddEntry(groupID string) (Entry, error) {
	gi := s.groupIndex(groupID)
	if gi < 0 {
		return Entry{}, ErrGroupNotFound
	}
	e := newEntry(s.groups[gi].ID, "", s.cfg.BaseCurrency)
	s.groups[gi].Entries = append(s.groups[gi].Entries, e)
	return e, nil
}

// UpdateEntry applies a patch and returns the updated entry
func (s *Store) UpdateEntry(entryID uuid.UUID, patch Patch) (Entry, error) {
	gi, ei := s.locate(entryID)
	if gi < 0 {
		return Entry{}, ErrEntryNotFound
	}
	e := s.groups[gi].Entries[ei]
	if err := e.apply(patch, s.cfg.BaseCurrency); err != nil {
		return Entry{}, err
	}
	s.groups[gi].Entries[ei] = e
	return e, nil
}

// RemoveEntry deletes an entry. A group always keeps at least one entry, so
// removing the last one is a no-op and reports false.
func (s *Store) RemoveEntry(entryID uuid.UUID) (bool, error) {
	gi, ei := s.locate(entryID)
	if gi < 0 {
		return false, ErrEntryNotFound
	}
	entries := s.groups[gi].Entries
	if len(entries) <= 1 {
		return false, nil
	}
	s.groups[gi].Entries = append(entries[:ei], entries[ei+1:]...)
	return true, nil
}

// Currencies returns the sorted distinct currency codes used by all entries
func (s *Store) Currencies() []string {
	seen := make(map[string]struct{})
	for _, g := range s.groups {
		for _, e := range g.Entries {
			if e.Currency != "" {
				seen[e.Currency] = struct{}{}
			}
		}
	}
	codes := make([]string, 0, len(seen))
	for code := range seen {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	return codes
}

func (s *Store) groupIndex(groupID string) int {
	for i, g := range s.groups {
		if g.ID == groupID {
			return i
		}
	}
	return -1
}

func (s *Store) locate(entryID uuid.UUID) (int, int) {
	for gi, g := range s.groups {
		for ei, e := range g.Entries {
			if e.ID == entryID {
				return gi, ei
			}
		}
	}
	return -1, -1
}

func cloneGroup(g Group) Group {
	entries := make([]Entry, len(g.Entries))
	copy(entries, g.Entries)
	g.Entries = entries
	return g
}
