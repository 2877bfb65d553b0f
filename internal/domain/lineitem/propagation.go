package lineitem

// ApplyToSiblings copies the first entry's shared fields onto every other
// entry of the group.
func (s *Store) ApplyToSiblings(groupID string) error {
	gi := s.groupIndex(groupID)
	if gi < 0 {
		return ErrGroupNotFound
	}
	entries := s.groups[gi].Entries
	source := entries[0]
	for i := 1; i < len(entries); i++ {
		copyShared(&entries[i], source, s.cfg)
	}
	return nil
}

// ApplyToAllGroups copies the first entry of the first group onto every entry
// of every group. It does nothing when fewer than two groups exist.
func (s *Store) ApplyToAllGroups() {
	if len(s.groups) < 2 {
		return
	}
	source := s.groups[0].Entries[0]
	for gi := range s.groups {
		entries := s.groups[gi].Entries
		for ei := range entries {
			if entries[ei].ID == source.ID {
				continue
			}
			copyShared(&entries[ei], source, s.cfg)
		}
	}
}
