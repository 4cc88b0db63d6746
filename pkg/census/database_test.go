package census

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDatabase_SaveAndQuery(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "population.db")

	db, err := OpenDatabase(path)
	require.NoError(t, err)
	defer db.Close()

	tbl := outputTable()
	tbl.Records = append(tbl.Records, &Record{
		AreaCode: "13102", Municipality: "中央区", SurveyYear: "2020年", Value: "1,000",
		PrefCode: "13", PrefName: "東京都", SpecialWard23: true, SpecialWard5: true,
	}, &Record{
		AreaCode: "13103", Municipality: "港区", SurveyYear: "2020年", Value: "-",
		PrefCode: "13", PrefName: "東京都",
	})
	require.NoError(t, db.Save(tbl))

	info, err := db.Info()
	require.NoError(t, err)
	assert.Equal(t, 4, info.Rows)
	assert.Equal(t, 4, info.Municipalities)
	assert.Equal(t, "1980年", info.FirstYear)
	assert.Equal(t, "2020年", info.LastYear)
	assert.Equal(t, 1, info.WithArea)
	assert.False(t, info.SavedAt.IsZero())

	totals, err := db.PrefectureTotals()
	require.NoError(t, err)
	assert.Equal(t, []PrefectureTotal{
		{PrefCode: "04", PrefName: "宮城県", SurveyYear: "1980年", Population: 236001},
		{PrefCode: "13", PrefName: "東京都", SurveyYear: "2020年", Population: 23031},
	}, totals)

	records, err := db.Records("13101")
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, tbl.Records[0], records[0])

	records, err = db.Records("04100")
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Empty(t, records[0].Area)
	assert.False(t, records[0].SpecialWard23)
}

func TestDatabase_SaveReplaces(t *testing.T) {
	db, err := OpenDatabase(filepath.Join(t.TempDir(), "population.db"))
	require.NoError(t, err)
	defer db.Close()

	require.NoError(t, db.Save(outputTable()))
	require.NoError(t, db.Save(&Table{AreaLabel: testAreaColumn, Records: outputTable().Records[:1]}))

	info, err := db.Info()
	require.NoError(t, err)
	assert.Equal(t, 1, info.Rows)
}

func TestOpenDatabaseIfExists(t *testing.T) {
	path := filepath.Join(t.TempDir(), "population.db")

	db, found, err := OpenDatabaseIfExists(path)
	require.NoError(t, err)
	assert.False(t, found)
	assert.Nil(t, db)

	created, err := OpenDatabase(path)
	require.NoError(t, err)
	require.NoError(t, created.Close())

	db, found, err = OpenDatabaseIfExists(path)
	require.NoError(t, err)
	assert.True(t, found)
	require.NoError(t, db.Close())
}
