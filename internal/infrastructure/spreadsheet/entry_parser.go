package spreadsheet

import (
	"fmt"
	"io"
	"strings"

	"github.com/sangkips/lineform-api/internal/domain/enum"
	"github.com/sangkips/lineform-api/internal/domain/lineitem"
	"github.com/xuri/excelize/v2"
)

var headerAliases = map[string]string{
	"group":            "group",
	"group_id":         "group",
	"variant":          "group",
	"sale":             "group",
	"target":           "target",
	"target_id":        "target",
	"store":            "target",
	"store_id":         "target",
	"quantity":         "quantity",
	"qty":              "quantity",
	"unit_price":       "unit_price",
	"unit price":       "unit_price",
	"price":            "unit_price",
	"currency":         "currency",
	"tax_percent":      "tax_percent",
	"tax %":            "tax_percent",
	"tax_amount":       "tax_amount",
	"discount_percent": "discount_percent",
	"discount %":       "discount_percent",
	"discount_amount":  "discount_amount",
	"reason":           "reason",
	"note":             "note",
	"notes":            "note",
}

// ParseEntryRows reads the first sheet of an .xlsx workbook into import rows.
// Rows without a group are skipped. Cell values are kept as typed; only the
// currency is normalized here so a bad code fails with its row number.
func ParseEntryRows(reader io.Reader) ([]lineitem.ImportRow, error) {
	file, err := excelize.OpenReader(reader)
	if err != nil {
		return nil, fmt.Errorf("open excel file: %w", err)
	}
	defer file.Close()

	sheets := file.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("excel file has no sheets")
	}

	rows, err := file.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("read sheet rows: %w", err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("excel file is empty")
	}

	colMap := mapColumns(rows[0])
	for _, required := range []string{"group", "quantity"} {
		if _, ok := colMap[required]; !ok {
			return nil, fmt.Errorf("missing required column: %s", required)
		}
	}

	result := make([]lineitem.ImportRow, 0, len(rows)-1)
	for index := 1; index < len(rows); index++ {
		cells := rows[index]
		groupID := strings.TrimSpace(readCell(cells, colMap["group"]))
		if groupID == "" {
			continue
		}

		row := lineitem.ImportRow{Line: index + 1, GroupID: groupID}
		if idx, ok := colMap["target"]; ok {
			row.TargetID = strings.TrimSpace(readCell(cells, idx))
		}

		p := &row.Patch
		p.Quantity = optionalCell(cells, colMap, "quantity")
		p.UnitPrice = optionalCell(cells, colMap, "unit_price")
		p.Reason = optionalCell(cells, colMap, "reason")
		p.Note = optionalCell(cells, colMap, "note")

		if raw := optionalCell(cells, colMap, "currency"); raw != nil && *raw != "" {
			code, err := lineitem.NormalizeCurrency(*raw)
			if err != nil {
				return nil, fmt.Errorf("row %d invalid currency %q", index+1, *raw)
			}
			p.Currency = &code
		}

		p.TaxMode, p.TaxPercent, p.TaxAmount = modedCells(cells, colMap, "tax_percent", "tax_amount")
		p.DiscountMode, p.DiscountPercent, p.DiscountAmount = modedCells(cells, colMap, "discount_percent", "discount_amount")

		result = append(result, row)
	}

	return result, nil
}

// modedCells picks the mode from whichever of the percent/amount cells is
// filled. A filled amount cell wins when both are present.
func modedCells(cells []string, colMap map[string]int, percentKey, amountKey string) (*enum.AmountMode, *string, *string) {
	percent := optionalCell(cells, colMap, percentKey)
	amount := optionalCell(cells, colMap, amountKey)

	switch {
	case amount != nil && *amount != "":
		mode := enum.AmountModeAmount
		return &mode, nil, amount
	case percent != nil && *percent != "":
		mode := enum.AmountModePercent
		return &mode, percent, nil
	}
	return nil, nil, nil
}

func optionalCell(cells []string, colMap map[string]int, key string) *string {
	idx, ok := colMap[key]
	if !ok {
		return nil
	}
	value := strings.TrimSpace(readCell(cells, idx))
	return &value
}

func mapColumns(header []string) map[string]int {
	colMap := make(map[string]int)
	for i, raw := range header {
		key := strings.ToLower(strings.TrimSpace(raw))
		if canonical, ok := headerAliases[key]; ok {
			if _, exists := colMap[canonical]; !exists {
				colMap[canonical] = i
			}
		}
	}
	return colMap
}

func readCell(cells []string, idx int) string {
	if idx < 0 || idx >= len(cells) {
		return ""
	}
	return cells[idx]
}
