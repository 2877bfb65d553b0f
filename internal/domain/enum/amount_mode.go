package enum

import (
	"encoding/json"
	"fmt"
)

// AmountMode selects how a tax or discount value is interpreted on an entry
type AmountMode int

const (
	// AmountModePercent reads the value as a percentage of its base
	AmountModePercent AmountMode = 0
	// AmountModeAmount reads the value as a fixed amount in base currency
	AmountModeAmount AmountMode = 1
)

func (m AmountMode) String() string {
	names := [...]string{"percent", "amount"}
	if int(m) < 0 || int(m) >= len(names) {
		return "percent"
	}
	return names[m]
}

// IsPercent reports whether the mode is AmountModePercent
func (m AmountMode) IsPercent() bool {
	return m != AmountModeAmount
}

func (m AmountMode) MarshalJSON() ([]byte, error) {
	return json.Marshal(m.String())
}

func (m *AmountMode) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		var i int
		if err := json.Unmarshal(data, &i); err != nil {
			return err
		}
		mode := AmountMode(i)
		if mode != AmountModePercent && mode != AmountModeAmount {
			return fmt.Errorf("unknown amount mode %d", i)
		}
		*m = mode
		return nil
	}
	switch str {
	case "percent", "":
		*m = AmountModePercent
	case "amount":
		*m = AmountModeAmount
	default:
		return fmt.Errorf("unknown amount mode %q", str)
	}
	return nil
}
