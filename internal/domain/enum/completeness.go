package enum

import "encoding/json"

// Completeness is the fill state of an entry
type Completeness int

const (
	CompletenessEmpty   Completeness = 0
	CompletenessPartial Completeness = 1
	CompletenessFilled  Completeness = 2
)

func (c Completeness) String() string {
	names := [...]string{"empty", "partial", "filled"}
	if int(c) < 0 || int(c) >= len(names) {
		return "unknown"
	}
	return names[c]
}

func (c Completeness) MarshalJSON() ([]byte, error) {
	return json.Marshal(c.String())
}
