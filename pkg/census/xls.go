package census

import (
	"fmt"
	"strings"

	xlsx "github.com/360EntSecGroup-Skylar/excelize/v2"
	"github.com/anrid/xls"
)

// ExtractRows calls handler for every row of the given sheet (0-based) of an
// Excel workbook. Both .xlsx and legacy .xls workbooks are supported.
func ExtractRows(path string, sheet int, handler func(r []string)) error {
	if strings.HasSuffix(strings.ToLower(path), ".xls") {
		return ExtractRowsFromXLS(path, sheet, handler)
	}
	return ExtractRowsFromXLSX(path, sheet, handler)
}

func ExtractRowsFromXLS(path string, sheet int, handler func(r []string)) error {
	wb, err := xls.Open(path, "utf-8")
	if err != nil {
		return fmt.Errorf("could not read XLS file '%s': %w", path, err)
	}

	ws := wb.GetSheet(sheet)
	if ws == nil {
		return fmt.Errorf("XLS file '%s' has no sheet %d", path, sheet)
	}

	for i := 0; i <= int(ws.MaxRow); i++ {
		row := ws.Row(i)
		if row == nil {
			continue
		}
		var cols []string
		for j := 0; j <= row.LastCol(); j++ {
			cols = append(cols, row.Col(j))
		}
		handler(cols)
	}
	return nil
}

func ExtractRowsFromXLSX(path string, sheet int, handler func(r []string)) error {
	wb, err := xlsx.OpenFile(path)
	if err != nil {
		return fmt.Errorf("could not read XLSX file '%s': %w", path, err)
	}

	sheets := wb.GetSheetList()
	if sheet < 0 || sheet >= len(sheets) {
		return fmt.Errorf("XLSX file '%s' has %d sheets, sheet %d requested", path, len(sheets), sheet)
	}

	rows, err := wb.GetRows(sheets[sheet])
	if err != nil {
		return fmt.Errorf("could not get rows for sheet '%s': %w", sheets[sheet], err)
	}

	for _, r := range rows {
		handler(r)
	}
	return nil
}
