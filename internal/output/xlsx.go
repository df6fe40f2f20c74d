package output

import (
	"fmt"

	"github.com/xuri/excelize/v2"
)

// EC2SheetName is the worksheet holding the EC2 inventory.
const EC2SheetName = "EC2 Instances"

// WriteXLSX writes rows to a new workbook at path with a bold header row.
func WriteXLSX(path string, rows []EC2Row) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", EC2SheetName); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}

	header := make([]interface{}, len(EC2Headers))
	for i, h := range EC2Headers {
		header[i] = h
	}
	if err := f.SetSheetRow(EC2SheetName, "A1", &header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("create header style: %w", err)
	}
	lastCol, err := excelize.ColumnNumberToName(len(EC2Headers))
	if err != nil {
		return err
	}
	if err := f.SetCellStyle(EC2SheetName, "A1", lastCol+"1", bold); err != nil {
		return fmt.Errorf("style header: %w", err)
	}

	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		values := row.Values()
		cells := make([]interface{}, len(values))
		for j, v := range values {
			cells[j] = v
		}
		if err := f.SetSheetRow(EC2SheetName, cell, &cells); err != nil {
			return fmt.Errorf("write row %d: %w", i+1, err)
		}
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("save workbook %s: %w", path, err)
	}
	return nil
}
