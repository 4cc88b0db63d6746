package main

import (
	"fmt"
	"log"
	"sort"

	"github.com/davecgh/go-spew/spew"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/anrid/japan-census/pkg/census"
	"github.com/anrid/japan-census/pkg/config"
)

// Chiyoda, Tokyo.
const sampleAreaCode = "13101"

func main() {
	cfg, err := config.Load(config.DefaultPath)
	if err != nil {
		log.Panic(err)
	}
	if cfg.Output.Database == "" {
		log.Panic("No database configured, set output.database in census.yaml.")
	}

	db, found, err := census.OpenDatabaseIfExists(cfg.Output.Database)
	if err != nil {
		log.Panic(err)
	}
	if !found {
		log.Panic("No database found, run the prep command in `cmd/prep` first.")
	}
	defer db.Close()

	info, err := db.Info()
	if err != nil {
		log.Panic(err)
	}

	fmt.Printf(`
	Database       : %s
	Saved          : %s
	Years          : %s - %s
	Rows           : %d
	Municipalities : %d
	Rows With Area : %d
	`, info.Path, info.SavedAt.Local().Format("2006-01-02 15:04"), info.FirstYear, info.LastYear,
		info.Rows, info.Municipalities, info.WithArea)
	fmt.Println("")

	totals, err := db.PrefectureTotals()
	if err != nil {
		log.Panic(err)
	}

	type change struct {
		Name  string
		First int64
		Last  int64
		Pct   float64
	}

	byPref := make(map[string]*change)
	var prefs []*change
	for _, t := range totals {
		c, ok := byPref[t.PrefCode]
		if !ok {
			c = &change{Name: t.PrefName}
			byPref[t.PrefCode] = c
			prefs = append(prefs, c)
		}
		if t.SurveyYear == info.FirstYear {
			c.First = t.Population
		}
		if t.SurveyYear == info.LastYear {
			c.Last = t.Population
		}
	}
	for _, c := range prefs {
		if c.First > 0 {
			c.Pct = float64(c.Last-c.First) / float64(c.First)
		}
	}

	// New locale number printer.
	p := message.NewPrinter(language.English)

	// Sort by latest population.
	sort.SliceStable(prefs, func(i, j int) bool {
		return prefs[i].Last > prefs[j].Last
	})

	p.Printf("\n\nPopulation by Prefecture (%s):\n\n", info.LastYear)
	for i, c := range prefs {
		p.Printf("%02d. %-6s  --  %12d\n", i+1, c.Name, c.Last)
	}

	// Sort by change since the first survey.
	sort.SliceStable(prefs, func(i, j int) bool {
		return prefs[i].Pct > prefs[j].Pct
	})

	p.Printf("\n\nPopulation Change by Prefecture (%s - %s):\n\n", info.FirstYear, info.LastYear)
	for i, c := range prefs {
		p.Printf("%02d. %-6s  --  %+7.02f%%  %12d / %12d\n",
			i+1, c.Name, c.Pct*100, c.First, c.Last,
		)
	}

	records, err := db.Records(sampleAreaCode)
	if err != nil {
		log.Panic(err)
	}
	if len(records) > 0 {
		fmt.Printf("\n\nSample record for area code %s:\n", sampleAreaCode)
		spew.Dump(records[len(records)-1])
	}
}
