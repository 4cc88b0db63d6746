package census

import (
	"fmt"
	"strings"
	"unicode"
)

const (
	cityMark = "市"
	wardMark = "区"
)

// Partition records the first survey year in which a designated city was
// reported ward by ward. Earlier surveys only have the city as a whole.
type Partition struct {
	City string `yaml:"city"`
	Year int    `yaml:"year"`
}

// Rules is the administrative-boundary knowledge the reconciler depends on.
// It only holds for the 1980-2020 census series.
type Rules struct {
	SurveyYears    []int       `yaml:"survey_years"`
	Partitions     []Partition `yaml:"partitions"`
	SpecialWards23 []string    `yaml:"special_wards_23"`
	SpecialWards5  []string    `yaml:"special_wards_5"`
	AggregateLabel string      `yaml:"aggregate_label"`
}

// DefaultRules returns the rules for the 1980-2020 census series.
func DefaultRules() Rules {
	return Rules{
		SurveyYears: append([]int(nil), SurveyYears...),
		Partitions: []Partition{
			{City: "仙台市", Year: 1990},
			{City: "千葉市", Year: 1995},
			{City: "相模原市", Year: 2010},
			{City: "新潟市", Year: 2010},
			{City: "静岡市", Year: 2005},
			{City: "浜松市", Year: 2010},
			{City: "堺市", Year: 2010},
			{City: "岡山市", Year: 2010},
			{City: "熊本市", Year: 2015},
		},
		SpecialWards23: []string{
			"千代田区", "中央区", "港区", "新宿区", "文京区", "台東区", "墨田区", "江東区",
			"品川区", "目黒区", "大田区", "世田谷区", "渋谷区", "中野区", "杉並区", "豊島区",
			"北区", "荒川区", "板橋区", "練馬区", "足立区", "葛飾区", "江戸川区",
		},
		SpecialWards5:  []string{"千代田区", "中央区", "港区", "渋谷区", "新宿区"},
		AggregateLabel: "特別区部",
	}
}

// PrecedingYears lists the survey years strictly before the partition year.
func (r Rules) PrecedingYears(p Partition) []int {
	var years []int
	for _, y := range r.SurveyYears {
		if y < p.Year {
			years = append(years, y)
		}
	}
	return years
}

// Validate checks that the rules are internally consistent.
func (r Rules) Validate() error {
	if len(r.SurveyYears) == 0 {
		return fmt.Errorf("no survey years configured")
	}
	for _, p := range r.Partitions {
		if p.City == "" || p.Year == 0 {
			return fmt.Errorf("incomplete partition entry %+v", p)
		}
	}
	wards23 := stringSet(r.SpecialWards23)
	for _, w := range r.SpecialWards5 {
		if !wards23[w] {
			return fmt.Errorf("special ward '%s' is not one of the 23 special wards", w)
		}
	}
	return nil
}

// SplitName splits a municipality name into its city and ward parts. Only a
// name containing both 市 and 区 is split, right after the first 市; any other
// name is returned unchanged as both parts.
func SplitName(name string) (city, ward string) {
	if !strings.Contains(name, cityMark) || !strings.Contains(name, wardMark) {
		return name, name
	}
	i := strings.Index(name, cityMark) + len(cityMark)
	return name[:i], name[i:]
}

// ReconcileStats summarizes what Reconcile changed.
type ReconcileStats struct {
	Renamed    int
	Superseded int
	Reinserted int
	Aggregates int
}

// Reconcile aligns municipality identities across survey years: names are
// normalized against the designated-city reference, whole-city rows are
// replaced by their ward rows, and whole-city rows are restored for the
// surveys taken before a city was divided into wards.
func Reconcile(t *Table, ref *DesignatedCities, rules Rules) (*Table, ReconcileStats) {
	var stats ReconcileStats

	merged := make([]*Record, 0, t.Len())
	for _, r := range t.Records {
		r.Municipality = stripSpace(r.Municipality)

		names := ref.NamesFor(r.AreaCode)
		if len(names) == 0 {
			merged = append(merged, r)
			continue
		}
		for i, name := range names {
			row := r
			if i > 0 {
				row = r.clone()
			}
			if row.Municipality != name {
				stats.Renamed++
			}
			row.Municipality = name
			merged = append(merged, row)
		}
	}

	for _, r := range merged {
		r.CityComponent, r.WardComponent = SplitName(r.Municipality)
	}

	pure := stringSet(ref.PureCities())
	kept := make([]*Record, 0, len(merged))
	for _, r := range merged {
		if pure[r.Municipality] {
			stats.Superseded++
			continue
		}
		kept = append(kept, r)
	}

	for _, p := range rules.Partitions {
		labels := make(map[string]bool)
		for _, y := range rules.PrecedingYears(p) {
			labels[SurveyYearLabel(y)] = true
		}
		for _, r := range merged {
			if r.Municipality != p.City {
				continue
			}
			if labels[r.SurveyYear] {
				kept = append(kept, r.clone())
				stats.Reinserted++
			}
		}
	}

	wards23 := stringSet(rules.SpecialWards23)
	wards5 := stringSet(rules.SpecialWards5)

	out := &Table{AreaLabel: t.AreaLabel, Records: make([]*Record, 0, len(kept))}
	for _, r := range kept {
		r.SpecialWard23 = wards23[r.Municipality]
		r.SpecialWard5 = wards5[r.Municipality]

		if r.Municipality == rules.AggregateLabel {
			stats.Aggregates++
			continue
		}
		out.Records = append(out.Records, r)
	}

	return out, stats
}

func stripSpace(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, s)
}

func stringSet(values []string) map[string]bool {
	m := make(map[string]bool, len(values))
	for _, v := range values {
		m[v] = true
	}
	return m
}
