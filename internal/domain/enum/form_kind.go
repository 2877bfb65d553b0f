package enum

import (
	"encoding/json"
	"fmt"
)

// FormKind identifies which entry form a session drives
type FormKind int

const (
	FormKindStockEntry  FormKind = 0
	FormKindStockAdjust FormKind = 1
	FormKindSaleLine    FormKind = 2
)

func (k FormKind) String() string {
	names := [...]string{"stock_entry", "stock_adjust", "sale_line"}
	if int(k) < 0 || int(k) >= len(names) {
		return "stock_entry"
	}
	return names[k]
}

// ParseFormKind converts a name into a FormKind
func ParseFormKind(s string) (FormKind, error) {
	switch s {
	case "stock_entry":
		return FormKindStockEntry, nil
	case "stock_adjust":
		return FormKindStockAdjust, nil
	case "sale_line":
		return FormKindSaleLine, nil
	}
	return FormKindStockEntry, fmt.Errorf("unknown form kind %q", s)
}

func (k FormKind) MarshalJSON() ([]byte, error) {
	return json.Marshal(k.String())
}

func (k *FormKind) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		return err
	}
	parsed, err := ParseFormKind(str)
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}
