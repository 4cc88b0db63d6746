package census

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"
	"unicode/utf8"
)

// Every e-Stat export starts with 27 lines of table metadata, some of them
// empty. Line 28 holds the column names.
const censusPreambleLines = 27

// Column positions of the e-Stat export. They are identical for all survey
// years.
const (
	colTabCode = iota
	colTabLabel
	colCat01Code
	colCat01Label
	colCat02Code
	colCat02Label
	colAreaCode
	colMunicipality
	colTimeCode
	colSurveyYear
	colUnit
	colValue
	colAnnotation
	censusColumns
)

var requiredColumns = map[int]string{
	colTabCode:   "tab_code",
	colCat01Code: "cat01_code",
	colCat02Code: "cat02_code",
	colAreaCode:  "area_code",
}

const (
	tabCodeCount   = "020" // absolute count, as opposed to "ratio"
	categoryTotal  = "100"
	prefectureMark = "000"
)

// LoadFile reads one per-year census export and returns its cleaned rows:
// prefecture aggregates, ratio rows and "total" category rows are removed,
// and every row carries its prefecture code and name.
func LoadFile(path string) (*Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read census file '%s': %w", path, err)
	}
	t, err := ReadCensus(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("census file '%s': %w", path, err)
	}
	return t, nil
}

// ReadCensus cleans a census export read from r. The input must be valid
// UTF-8.
func ReadCensus(r io.Reader) (*Table, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	if !utf8.Valid(data) {
		return nil, fmt.Errorf("%w: census data is not UTF-8", ErrInvalidEncoding)
	}

	// The preamble is counted in physical lines, blank ones included.
	br := bufio.NewReader(bytes.NewReader(data))
	for i := 0; i < censusPreambleLines; i++ {
		if _, err := br.ReadString('\n'); err != nil {
			return nil, fmt.Errorf("%w: got %d lines, want more than %d", ErrShortPreamble, i, censusPreambleLines)
		}
	}

	cr := csv.NewReader(br)
	cr.FieldsPerRecord = -1

	rows, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrMalformedRow, err.Error())
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("%w: no column header after line %d", ErrShortPreamble, censusPreambleLines)
	}

	header := rows[0]
	for pos, name := range requiredColumns {
		if pos >= len(header) || strings.TrimSpace(header[pos]) != name {
			return nil, fmt.Errorf("%w: '%s' at column %d", ErrMissingColumn, name, pos+1)
		}
	}

	var records []*Record
	for i, row := range rows[1:] {
		if len(row) < censusColumns {
			line := censusPreambleLines + i + 2
			return nil, fmt.Errorf("%w: line %d has %d columns, want %d", ErrMalformedRow, line, len(row), censusColumns)
		}
		records = append(records, &Record{
			TabCode:      row[colTabCode],
			TabLabel:     row[colTabLabel],
			Cat01Code:    row[colCat01Code],
			Cat01Label:   row[colCat01Label],
			Cat02Code:    row[colCat02Code],
			Cat02Label:   row[colCat02Label],
			AreaCode:     row[colAreaCode],
			Municipality: row[colMunicipality],
			TimeCode:     row[colTimeCode],
			SurveyYear:   row[colSurveyYear],
			Unit:         row[colUnit],
			Value:        row[colValue],
			Annotation:   row[colAnnotation],
		})
	}

	prefs := findPrefectures(records)

	t := &Table{}
	for _, r := range records {
		r.PrefCode = prefix(r.AreaCode, 2)
		r.PrefName = prefs.names[r.PrefCode]

		if r.AreaCode == r.PrefCode+prefectureMark {
			continue
		}
		if r.TabCode != tabCodeCount {
			continue
		}
		if r.Cat01Code == categoryTotal || r.Cat02Code == categoryTotal {
			continue
		}
		t.Records = append(t.Records, r)
	}

	// Some years prefix the municipality with its prefecture name.
	for _, name := range prefs.order {
		if name == "" {
			continue
		}
		for _, r := range t.Records {
			if strings.Contains(r.Municipality, name) {
				r.Municipality = strings.ReplaceAll(r.Municipality, name, "")
			}
		}
	}

	return t, nil
}

type prefectures struct {
	names map[string]string // prefecture code -> name
	order []string          // names in order of first appearance
}

// findPrefectures builds the prefecture lookup from the prefecture-level rows,
// identified by "000" in their area code.
func findPrefectures(records []*Record) prefectures {
	p := prefectures{names: make(map[string]string)}
	seen := make(map[string]bool)
	var codes []string

	for _, r := range records {
		if !strings.Contains(r.AreaCode, prefectureMark) || seen[r.AreaCode] {
			continue
		}
		seen[r.AreaCode] = true

		code := prefix(r.AreaCode, 2)
		if _, ok := p.names[code]; !ok {
			codes = append(codes, code)
		}
		p.names[code] = r.Municipality
	}
	for _, c := range codes {
		p.order = append(p.order, p.names[c])
	}
	return p
}

// LoadDirectory cleans every census file in dir and appends the results into
// a single table. onFile, if not nil, is called after each file is loaded.
// A file that fails to load aborts the whole load.
func LoadDirectory(dir string, onFile func(path string, t *Table)) (*Table, error) {
	files, err := ListInputFiles(dir)
	if err != nil {
		return nil, err
	}

	tables := make([]*Table, 0, len(files))
	for _, f := range files {
		t, err := LoadFile(f)
		if err != nil {
			return nil, err
		}
		if onFile != nil {
			onFile(f, t)
		}
		tables = append(tables, t)
	}
	return Concat(tables...), nil
}

// Concat appends the rows of all tables, in argument order.
func Concat(tables ...*Table) *Table {
	n := 0
	for _, t := range tables {
		n += t.Len()
	}
	out := &Table{Records: make([]*Record, 0, n)}
	for _, t := range tables {
		if out.AreaLabel == "" {
			out.AreaLabel = t.AreaLabel
		}
		out.Records = append(out.Records, t.Records...)
	}
	return out
}
