package census

import (
	"bytes"
	"fmt"

	"go.uber.org/zap"
)

// Options locates the pipeline inputs and outputs.
type Options struct {
	CensusDir string

	DesignatedCityFile  string
	DesignatedCitySheet int

	AreaFile       string
	AreaCodeColumn string
	AreaColumn     string

	OutputCSV         string
	OutputShiftJISCSV string
	// Database is optional; no database is written when it is empty.
	Database string
}

// Pipeline turns the per-year census exports into one reconciled, area
// annotated and sorted table.
type Pipeline struct {
	opts  Options
	rules Rules
	log   *zap.Logger
}

func NewPipeline(opts Options, rules Rules, log *zap.Logger) *Pipeline {
	if log == nil {
		log = zap.NewNop()
	}
	return &Pipeline{opts: opts, rules: rules, log: log}
}

// Run executes all stages in order. Any failing stage aborts the run.
func (p *Pipeline) Run() (*Table, error) {
	if err := p.rules.Validate(); err != nil {
		return nil, fmt.Errorf("invalid reconciliation rules: %w", err)
	}

	t, err := LoadDirectory(p.opts.CensusDir, func(path string, t *Table) {
		p.log.Info("Loaded census file", zap.String("path", path), zap.Int("rows", t.Len()))
	})
	if err != nil {
		return nil, err
	}
	p.log.Info("Concatenated census files", zap.Int("rows", t.Len()))

	ref, err := LoadDesignatedCities(p.opts.DesignatedCityFile, p.opts.DesignatedCitySheet)
	if err != nil {
		return nil, err
	}
	p.log.Info("Loaded designated cities",
		zap.String("path", p.opts.DesignatedCityFile),
		zap.Int("entries", len(ref.Entries)),
		zap.Int("cities", len(ref.PureCities())))

	t, stats := Reconcile(t, ref, p.rules)
	p.log.Info("Reconciled municipalities",
		zap.Int("rows", t.Len()),
		zap.Int("renamed", stats.Renamed),
		zap.Int("superseded", stats.Superseded),
		zap.Int("reinserted", stats.Reinserted),
		zap.Int("aggregates", stats.Aggregates))

	area, err := LoadAreaReference(p.opts.AreaFile, p.opts.AreaCodeColumn, p.opts.AreaColumn)
	if err != nil {
		return nil, err
	}
	p.log.Info("Loaded area reference", zap.String("path", p.opts.AreaFile), zap.Int("codes", len(area.Codes)))

	t = MergeArea(t, area)
	SortTable(t)

	withArea := 0
	for _, r := range t.Records {
		if r.Area != "" {
			withArea++
		}
	}
	p.log.Info("Merged land area", zap.Int("rows", t.Len()), zap.Int("with_area", withArea))

	return t, nil
}

// Write stores t in every configured output. Both CSV encodings are rendered
// and the database is saved before any CSV file is written, so a failure in
// either leaves no CSV output behind.
func (p *Pipeline) Write(t *Table) error {
	var utf8CSV, sjisCSV bytes.Buffer
	if err := WriteCSV(&utf8CSV, t); err != nil {
		return fmt.Errorf("render UTF-8 CSV: %w", err)
	}
	if err := WriteShiftJISCSV(&sjisCSV, t); err != nil {
		return fmt.Errorf("render Shift-JIS CSV: %w", err)
	}

	if p.opts.Database != "" {
		if err := p.saveDatabase(t); err != nil {
			return err
		}
	}

	if err := SaveFile(p.opts.OutputCSV, utf8CSV.Bytes()); err != nil {
		return err
	}
	p.log.Info("Wrote CSV", zap.String("path", p.opts.OutputCSV), zap.String("encoding", "utf-8"))

	if err := SaveFile(p.opts.OutputShiftJISCSV, sjisCSV.Bytes()); err != nil {
		return err
	}
	p.log.Info("Wrote CSV", zap.String("path", p.opts.OutputShiftJISCSV), zap.String("encoding", "shift_jis"))

	return nil
}

func (p *Pipeline) saveDatabase(t *Table) error {
	db, err := OpenDatabase(p.opts.Database)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := db.Save(t); err != nil {
		return fmt.Errorf("save to database '%s': %w", p.opts.Database, err)
	}
	p.log.Info("Saved database", zap.String("path", p.opts.Database), zap.Int("rows", t.Len()))
	return nil
}
