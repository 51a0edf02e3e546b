package Reconciliation

import (
	"bytes"
	"fmt"
	"sort"

	"github.com/xuri/excelize/v2"
)

// ExportWorkbook renders a run result as an .xlsx workbook: one summary sheet
// with the per-company totals and one detail sheet with every per-trip slice.
func ExportWorkbook(result *Result) (*bytes.Buffer, error) {
	f := excelize.NewFile()

	summary := "Summary"
	index, err := f.NewSheet(summary)
	if err != nil {
		return nil, fmt.Errorf("error creating sheet: %v", err)
	}
	f.SetActiveSheet(index)

	headers := []string{"Company", "Total 7 Days", "Total 30 Days", "Commission", "Trips"}
	for i, header := range headers {
		cell := fmt.Sprintf("%c1", 'A'+i)
		f.SetCellValue(summary, cell, header)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{
			Bold: true,
		},
		Fill: excelize.Fill{
			Type:    "pattern",
			Color:   []string{"#E6E6FA"},
			Pattern: 1,
		},
	})
	if err == nil {
		f.SetRowStyle(summary, 1, 1, headerStyle)
	}

	for rowIndex, name := range result.CompanyNames() {
		entry := result.entryFor(name)
		if entry == nil {
			continue
		}
		row := rowIndex + 2
		values := []interface{}{
			name,
			entry.Total7.InexactFloat64(),
			entry.Total30.InexactFloat64(),
			entry.TotalCommission.InexactFloat64(),
			len(entry.Trips),
		}
		for colIndex, value := range values {
			cell := fmt.Sprintf("%c%d", 'A'+colIndex, row)
			f.SetCellValue(summary, cell, value)
		}
	}

	details := "VRID Details"
	if _, err := f.NewSheet(details); err != nil {
		return nil, fmt.Errorf("error creating sheet: %v", err)
	}
	detailHeaders := []string{"Company", "VRID", "7 Days", "30 Days", "Commission"}
	for i, header := range detailHeaders {
		cell := fmt.Sprintf("%c1", 'A'+i)
		f.SetCellValue(details, cell, header)
	}
	if headerStyle != 0 {
		f.SetRowStyle(details, 1, 1, headerStyle)
	}

	row := 2
	for _, name := range result.CompanyNames() {
		entry := result.entryFor(name)
		if entry == nil {
			continue
		}
		vrids := make([]string, 0, len(entry.Trips))
		for vrid := range entry.Trips {
			vrids = append(vrids, vrid)
		}
		sort.Strings(vrids)
		for _, vrid := range vrids {
			detail := entry.Trips[vrid]
			values := []interface{}{
				name,
				vrid,
				detail.Amount7.InexactFloat64(),
				detail.Amount30.InexactFloat64(),
				detail.Commission.InexactFloat64(),
			}
			for colIndex, value := range values {
				cell := fmt.Sprintf("%c%d", 'A'+colIndex, row)
				f.SetCellValue(details, cell, value)
			}
			row++
		}
	}

	for i := 0; i < len(headers); i++ {
		f.SetColWidth(summary, string('A'+rune(i)), string('A'+rune(i)), 18)
	}
	for i := 0; i < len(detailHeaders); i++ {
		f.SetColWidth(details, string('A'+rune(i)), string('A'+rune(i)), 18)
	}

	if f.GetSheetName(0) != summary {
		f.DeleteSheet("Sheet1")
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("error writing Excel file to buffer: %v", err)
	}
	return &buf, nil
}
