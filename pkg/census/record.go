package census

// Record is one row of the census time series: a municipality, a survey year
// and one age-group / sex combination.
type Record struct {
	TabCode    string
	TabLabel   string
	Cat01Code  string
	Cat01Label string
	Cat02Code  string
	Cat02Label string

	AreaCode     string
	Municipality string
	TimeCode     string
	SurveyYear   string
	Unit         string
	Value        string
	Annotation   string

	PrefCode string
	PrefName string

	// Filled in by the reconciler.
	CityComponent string
	WardComponent string
	SpecialWard23 bool
	SpecialWard5  bool

	// Filled in by the area merger. Both stay empty when the area reference
	// has no entry for AreaCode.
	StandardAreaCode string
	Area             string
}

func (r *Record) clone() *Record {
	c := *r
	return &c
}

// Table is an in-memory census table. Stages overwrite columns on the
// records they keep and return a new Table when rows are added or dropped.
type Table struct {
	// AreaLabel is the header used for the area column in the output.
	AreaLabel string
	Records   []*Record
}

func (t *Table) Len() int {
	return len(t.Records)
}

// Output column labels, in the order they are written.
var baseHeader = []string{
	"tab_code", "表章項目", "cat01_code", "年齢３区分_時系列", "cat02_code", "男女_時系列",
	"area_code", "市区町村", "time_code", "時間軸（調査年）", "unit", "value",
	"annotation", "pref_code", "都道府県", "市町村", "区",
	"特別区部flag_23", "特別区部flag_5", "標準地域コード",
}

// Header returns the column labels of the output files.
func (t *Table) Header() []string {
	h := make([]string, 0, len(baseHeader)+1)
	h = append(h, baseHeader...)
	return append(h, t.AreaLabel)
}

// Row renders a record in Header order.
func (r *Record) Row() []string {
	return []string{
		r.TabCode, r.TabLabel, r.Cat01Code, r.Cat01Label, r.Cat02Code, r.Cat02Label,
		r.AreaCode, r.Municipality, r.TimeCode, r.SurveyYear, r.Unit, r.Value,
		r.Annotation, r.PrefCode, r.PrefName, r.CityComponent, r.WardComponent,
		flag(r.SpecialWard23), flag(r.SpecialWard5), r.StandardAreaCode, r.Area,
	}
}

func flag(b bool) string {
	if b {
		return "1"
	}
	return "0"
}

func prefix(s string, n int) string {
	if len(s) < n {
		return s
	}
	return s[:n]
}
