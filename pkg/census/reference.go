package census

import (
	"fmt"
	"strings"
)

// Column headers of the designated-city sheet in the local government code
// list published by the Ministry of Internal Affairs and Communications.
// Line breaks inside the header cells are ignored.
const (
	refOrgCodeHeader  = "団体コード"
	refPrefNameHeader = "都道府県名（漢字）"
	refNameHeader     = "市区町村名（漢字）"
)

// DesignatedCity is one entry of the designated-city reference: either a
// designated city itself ("札幌市") or one of its wards ("札幌市中央区").
type DesignatedCity struct {
	OrgCode  string
	AreaCode string
	PrefName string
	Name     string
}

// DesignatedCities is the designated-city/ward master list, keyed by area code.
type DesignatedCities struct {
	Entries []DesignatedCity
	byCode  map[string][]int
}

// NewDesignatedCities indexes the given entries by area code.
func NewDesignatedCities(entries []DesignatedCity) *DesignatedCities {
	d := &DesignatedCities{Entries: entries, byCode: make(map[string][]int)}
	for i, e := range entries {
		d.byCode[e.AreaCode] = append(d.byCode[e.AreaCode], i)
	}
	return d
}

// NamesFor returns the canonical names registered for an area code, usually
// zero or one.
func (d *DesignatedCities) NamesFor(areaCode string) []string {
	var names []string
	for _, i := range d.byCode[areaCode] {
		names = append(names, d.Entries[i].Name)
	}
	return names
}

// PureCities returns the names that denote a whole designated city rather
// than one of its wards, without duplicates.
func (d *DesignatedCities) PureCities() []string {
	seen := make(map[string]bool)
	var out []string
	for _, e := range d.Entries {
		if !strings.Contains(e.Name, cityMark) || strings.Contains(e.Name, wardMark) {
			continue
		}
		if seen[e.Name] {
			continue
		}
		seen[e.Name] = true
		out = append(out, e.Name)
	}
	return out
}

// LoadDesignatedCities reads the designated-city reference from the given
// sheet (0-based) of an Excel workbook.
func LoadDesignatedCities(path string, sheet int) (*DesignatedCities, error) {
	var rows [][]string
	err := ExtractRows(path, sheet, func(r []string) {
		rows = append(rows, r)
	})
	if err != nil {
		return nil, err
	}

	entries, err := parseDesignatedCities(rows)
	if err != nil {
		return nil, fmt.Errorf("designated city file '%s': %w", path, err)
	}
	return NewDesignatedCities(entries), nil
}

func parseDesignatedCities(rows [][]string) ([]DesignatedCity, error) {
	start := 0
	for start < len(rows) && isBlankRow(rows[start]) {
		start++
	}
	if start == len(rows) {
		return nil, fmt.Errorf("%w: no header row", ErrMissingColumn)
	}

	cols := make(map[string]int)
	for i, h := range rows[start] {
		h = strings.NewReplacer("\r", "", "\n", "").Replace(h)
		cols[strings.TrimSpace(h)] = i
	}
	for _, h := range []string{refOrgCodeHeader, refNameHeader} {
		if _, ok := cols[h]; !ok {
			return nil, fmt.Errorf("%w: '%s'", ErrMissingColumn, h)
		}
	}

	cell := func(r []string, header string) string {
		i, ok := cols[header]
		if !ok || i >= len(r) {
			return ""
		}
		return r[i]
	}

	var entries []DesignatedCity
	for _, r := range rows[start+1:] {
		org := normalizeOrgCode(cell(r, refOrgCodeHeader))
		if org == "" {
			continue
		}
		entries = append(entries, DesignatedCity{
			OrgCode:  org,
			AreaCode: prefix(org, 5),
			PrefName: cell(r, refPrefNameHeader),
			Name:     cell(r, refNameHeader),
		})
	}
	return entries, nil
}

// normalizeOrgCode restores the leading zero that spreadsheets drop when a
// six-digit organization code is stored as a number.
func normalizeOrgCode(s string) string {
	s = strings.TrimSpace(s)
	if s == "" || !isDigits(s) {
		return s
	}
	for len(s) < 6 {
		s = "0" + s
	}
	return s
}

func isBlankRow(r []string) bool {
	for _, c := range r {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, c := range s {
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}
