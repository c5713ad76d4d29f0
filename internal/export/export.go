// Package export writes call log snapshots to Excel workbooks.
package export

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/samodrei/telecaller/pkg/telecall"
)

const sheetName = "Call Log"

var header = []string{"ID", "Name", "Phone Number", "AI Model", "Feedback", "Flagged Date"}

// WriteWorkbook writes one worksheet with a header row and one row per
// record, in the order given. Sorting is the caller's concern.
func WriteWorkbook(path string, records []telecall.CallRecord) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", sheetName); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}

	for col, title := range header {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			return fmt.Errorf("header cell: %w", err)
		}
		if err := f.SetCellValue(sheetName, cell, title); err != nil {
			return fmt.Errorf("write header: %w", err)
		}
	}

	for i, rec := range records {
		values := []string{rec.ID, rec.Name, rec.PhoneNumber, rec.AIModel, rec.Feedback, rec.FlaggedDate}
		for col, v := range values {
			cell, err := excelize.CoordinatesToCellName(col+1, i+2)
			if err != nil {
				return fmt.Errorf("row cell: %w", err)
			}
			if err := f.SetCellValue(sheetName, cell, v); err != nil {
				return fmt.Errorf("write row %d: %w", i+1, err)
			}
		}
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("save workbook: %w", err)
	}
	return nil
}
