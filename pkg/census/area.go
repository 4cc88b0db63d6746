package census

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/japanese"
	"golang.org/x/text/transform"
)

// The area table published by the Geospatial Information Authority starts
// with a title line and three lines of notes before the column header.
const areaPreambleLines = 4

const areaCodeWidth = 5

// AreaReference maps standardized area codes to land area in km², as of the
// single reference date of the area column it was loaded from.
type AreaReference struct {
	// Label is the header of the area column, e.g. "令和4年10月1日(k㎡)".
	Label string
	Codes []string
	areas map[string][]string
}

// Lookup returns the area values registered for an area code.
func (a *AreaReference) Lookup(code string) []string {
	return a.areas[code]
}

// LoadAreaReference reads the Shift-JIS encoded area CSV at path, keeping
// only codeColumn and areaColumn.
func LoadAreaReference(path, codeColumn, areaColumn string) (*AreaReference, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open area file '%s': %w", path, err)
	}
	defer f.Close()

	a, err := ReadAreaReference(f, codeColumn, areaColumn)
	if err != nil {
		return nil, fmt.Errorf("area file '%s': %w", path, err)
	}
	return a, nil
}

// ReadAreaReference reads a Shift-JIS encoded area table from r. Rows whose
// code is not purely numeric (notes, subtotals) are skipped and codes are
// zero-padded to five digits.
func ReadAreaReference(r io.Reader, codeColumn, areaColumn string) (*AreaReference, error) {
	data, err := io.ReadAll(transform.NewReader(r, japanese.ShiftJIS.NewDecoder()))
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrInvalidEncoding, err.Error())
	}
	if strings.ContainsRune(string(data), utf8.RuneError) {
		return nil, fmt.Errorf("%w: area data is not Shift-JIS", ErrInvalidEncoding)
	}

	cr := csv.NewReader(strings.NewReader(string(data)))
	cr.FieldsPerRecord = -1

	rows, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrMalformedRow, err.Error())
	}
	if len(rows) <= areaPreambleLines {
		return nil, fmt.Errorf("%w: got %d lines, want more than %d", ErrShortPreamble, len(rows), areaPreambleLines)
	}

	codeIdx, areaIdx := -1, -1
	for i, h := range rows[areaPreambleLines] {
		switch strings.TrimSpace(h) {
		case codeColumn:
			codeIdx = i
		case areaColumn:
			areaIdx = i
		}
	}
	if codeIdx < 0 {
		return nil, fmt.Errorf("%w: '%s'", ErrMissingColumn, codeColumn)
	}
	if areaIdx < 0 {
		return nil, fmt.Errorf("%w: '%s'", ErrMissingColumn, areaColumn)
	}

	a := &AreaReference{Label: areaColumn, areas: make(map[string][]string)}
	for _, row := range rows[areaPreambleLines+1:] {
		if codeIdx >= len(row) {
			continue
		}
		code := strings.TrimSpace(row[codeIdx])
		if !isDigits(code) {
			continue
		}
		code = padAreaCode(code)

		var area string
		if areaIdx < len(row) {
			area = strings.TrimSpace(row[areaIdx])
		}
		if _, ok := a.areas[code]; !ok {
			a.Codes = append(a.Codes, code)
		}
		a.areas[code] = append(a.areas[code], area)
	}
	return a, nil
}

func padAreaCode(code string) string {
	if len(code) >= areaCodeWidth {
		return code
	}
	return strings.Repeat("0", areaCodeWidth-len(code)) + code
}

// MergeArea left-joins the area reference onto t by area code. Rows without
// a matching code are kept with an empty area.
func MergeArea(t *Table, ref *AreaReference) *Table {
	out := &Table{AreaLabel: ref.Label, Records: make([]*Record, 0, t.Len())}
	for _, r := range t.Records {
		areas := ref.Lookup(r.AreaCode)
		if len(areas) == 0 {
			r.StandardAreaCode = ""
			r.Area = ""
			out.Records = append(out.Records, r)
			continue
		}
		for i, area := range areas {
			row := r
			if i > 0 {
				row = r.clone()
			}
			row.StandardAreaCode = r.AreaCode
			row.Area = area
			out.Records = append(out.Records, row)
		}
	}
	return out
}

// SortTable orders t by area code descending, then survey year ascending.
// Rows equal on both keys keep their relative order.
func SortTable(t *Table) {
	sort.SliceStable(t.Records, func(i, j int) bool {
		a, b := t.Records[i], t.Records[j]
		if a.AreaCode != b.AreaCode {
			return a.AreaCode > b.AreaCode
		}
		return a.SurveyYear < b.SurveyYear
	})
}
