package census

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	xlsx "github.com/360EntSecGroup-Skylar/excelize/v2"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding/japanese"
)

var censusHeader = "tab_code,表章項目,cat01_code,年齢３区分_時系列,cat02_code,男女_時系列,area_code,地域（1980～2020）,time_code,時間軸（調査年）,unit,人口,annotation"

// censusRow is a compact description of one data line of an e-Stat export.
type censusRow struct {
	tab, cat01, cat02, area, name, year, value string
}

func (r censusRow) line() string {
	tabLabel := "人口"
	if r.tab != tabCodeCount {
		tabLabel = "割合"
	}
	return strings.Join([]string{
		r.tab, tabLabel, r.cat01, "15～64歳", r.cat02, "男", r.area, r.name,
		strings.TrimSuffix(r.year, "年") + "000000", r.year, "人", r.value, "",
	}, ",")
}

// count returns a disaggregated absolute-count row.
func count(area, name, year, value string) censusRow {
	return censusRow{tab: "020", cat01: "110", cat02: "110", area: area, name: name, year: year, value: value}
}

func censusCSV(rows ...censusRow) string {
	var b strings.Builder
	b.WriteString("\"統計表\",\"国勢調査 時系列データ\"\n")
	for i := 1; i < censusPreambleLines; i++ {
		fmt.Fprintf(&b, "\"注記%d\",\"\"\n", i)
	}
	b.WriteString(censusHeader + "\n")
	for _, r := range rows {
		b.WriteString(r.line() + "\n")
	}
	return b.String()
}

func writeTestFile(t *testing.T, path string, data []byte) string {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, data, 0644))
	return path
}

func shiftJIS(t *testing.T, s string) []byte {
	t.Helper()
	out, err := japanese.ShiftJIS.NewEncoder().String(s)
	require.NoError(t, err)
	return []byte(out)
}

const testAreaColumn = "令和4年10月1日(km2)"

func areaCSV(lines ...string) string {
	var b strings.Builder
	b.WriteString("全国都道府県市区町村別面積調\n")
	b.WriteString("注1,境界未定地域を含む\n")
	b.WriteString("注2,単位は平方キロメートル\n")
	b.WriteString("注3,令和4年10月1日時点\n")
	b.WriteString("標準地域コード,都道府県,郡･支庁･振興局等,市区町村," + testAreaColumn + ",令和4年10月1日備考\n")
	for _, l := range lines {
		b.WriteString(l + "\n")
	}
	return b.String()
}

// designatedCityWorkbook writes a workbook whose second sheet holds the
// designated-city list.
func designatedCityWorkbook(t *testing.T, path string, rows [][]interface{}) string {
	t.Helper()

	f := xlsx.NewFile()
	sheet := "指定都市"
	f.NewSheet(sheet)

	header := []string{"団体コード", "都道府県名\n（漢字）", "市区町村名\n（漢字）", "都道府県名\n（ｶﾅ）", "市区町村名\n（ｶﾅ）"}
	for i, h := range header {
		cell, err := xlsx.CoordinatesToCellName(i+1, 1)
		require.NoError(t, err)
		require.NoError(t, f.SetCellValue(sheet, cell, h))
	}
	for r, row := range rows {
		for c, v := range row {
			cell, err := xlsx.CoordinatesToCellName(c+1, r+2)
			require.NoError(t, err)
			require.NoError(t, f.SetCellValue(sheet, cell, v))
		}
	}

	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, f.SaveAs(path))
	return path
}

var sendaiReference = [][]interface{}{
	{"011002", "北海道", "札幌市", "ﾎｯｶｲﾄﾞｳ", "ｻｯﾎﾟﾛｼ"},
	{"011011", "北海道", "札幌市中央区", "ﾎｯｶｲﾄﾞｳ", "ｻｯﾎﾟﾛｼﾁｭｳｵｳｸ"},
	{"041009", "宮城県", "仙台市", "ﾐﾔｷﾞｹﾝ", "ｾﾝﾀﾞｲｼ"},
	{"041017", "宮城県", "仙台市青葉区", "ﾐﾔｷﾞｹﾝ", "ｾﾝﾀﾞｲｼｱｵﾊﾞｸ"},
	{"271004", "大阪府", "大阪市", "ｵｵｻｶﾌ", "ｵｵｻｶｼ"},
	{"271276", "大阪府", "大阪市北区", "ｵｵｻｶﾌ", "ｵｵｻｶｼｷﾀｸ"},
}

func municipalities(t *Table) []string {
	var out []string
	for _, r := range t.Records {
		out = append(out, r.Municipality)
	}
	return out
}
