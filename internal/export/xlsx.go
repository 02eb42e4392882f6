package export

import (
	"fmt"

	"github.com/xuri/excelize/v2"
)

// XLSX renders the table as a single-sheet workbook with a bold header and a
// totals row under the amount column.
func (t *Table) XLSX(totalLabel string) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	sheet := t.Sheet
	if sheet == "" {
		sheet = "Sheet1"
	}
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return nil, fmt.Errorf("rename sheet: %w", err)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Color: "#FFFFFF"},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#059669"}, Pattern: 1},
	})
	if err != nil {
		return nil, fmt.Errorf("create header style: %w", err)
	}
	totalStyle, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil, fmt.Errorf("create total style: %w", err)
	}

	header := make([]interface{}, len(t.Header))
	for i, h := range t.Header {
		header[i] = h
	}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return nil, fmt.Errorf("write header: %w", err)
	}
	lastCol, _ := excelize.ColumnNumberToName(len(t.Header))
	if err := f.SetCellStyle(sheet, "A1", lastCol+"1", headerStyle); err != nil {
		return nil, fmt.Errorf("style header: %w", err)
	}

	for i, r := range t.Rows {
		values := make([]interface{}, len(t.Header))
		for col := range values {
			if col == t.AmountColumn {
				values[col] = r.Amount.InexactFloat64()
				continue
			}
			values[col] = t.cell(r, col)
		}
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		if err := f.SetSheetRow(sheet, cell, &values); err != nil {
			return nil, fmt.Errorf("write row %d: %w", i+1, err)
		}
	}

	totalRow := len(t.Rows) + 2
	labelCell, _ := excelize.CoordinatesToCellName(1, totalRow)
	amountCell, _ := excelize.CoordinatesToCellName(t.AmountColumn+1, totalRow)
	if err := f.SetCellValue(sheet, labelCell, totalLabel); err != nil {
		return nil, fmt.Errorf("write total label: %w", err)
	}
	if err := f.SetCellValue(sheet, amountCell, t.Total().InexactFloat64()); err != nil {
		return nil, fmt.Errorf("write total: %w", err)
	}
	lastCell, _ := excelize.CoordinatesToCellName(len(t.Header), totalRow)
	if err := f.SetCellStyle(sheet, labelCell, lastCell, totalStyle); err != nil {
		return nil, fmt.Errorf("style total: %w", err)
	}

	if err := f.SetColWidth(sheet, "A", lastCol, 18); err != nil {
		return nil, fmt.Errorf("set column width: %w", err)
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("write workbook: %w", err)
	}
	return buf.Bytes(), nil
}
