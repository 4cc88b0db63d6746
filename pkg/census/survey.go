package census

import (
	"regexp"
	"strconv"
)

// Survey years
//
// The Population Census of Japan is taken every five years. The tables this
// package consumes are the "population by municipality" time series
// published on e-Stat, which cover the nine surveys from 1980 to 2020.
// Each survey year appears in the data as a label such as "1980年".
//
// See: https://www.e-stat.go.jp/en/stat-search/files?toukei=00200521
//
var SurveyYears = []int{1980, 1985, 1990, 1995, 2000, 2005, 2010, 2015, 2020}

var surveyYearRegex = regexp.MustCompile(`^(\d{4})`)

// ParseSurveyYear extracts the year from a survey year label like "2015年".
func ParseSurveyYear(label string) (int, bool) {
	m := surveyYearRegex.FindStringSubmatch(label)
	if len(m) != 2 {
		return 0, false
	}
	y, err := strconv.Atoi(m[1])
	if err != nil {
		return 0, false
	}
	return y, true
}

// SurveyYearLabel is the inverse of ParseSurveyYear.
func SurveyYearLabel(year int) string {
	return strconv.Itoa(year) + "年"
}
