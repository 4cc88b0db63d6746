package census

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"golang.org/x/text/encoding/japanese"
	"golang.org/x/text/transform"
)

// WriteCSV writes t as UTF-8 CSV with a header row.
func WriteCSV(w io.Writer, t *Table) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(t.Header()); err != nil {
		return err
	}
	for _, r := range t.Records {
		if err := cw.Write(r.Row()); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteShiftJISCSV writes t as Shift-JIS encoded CSV. A character that has no
// Shift-JIS representation is an error.
func WriteShiftJISCSV(w io.Writer, t *Table) error {
	tw := transform.NewWriter(w, japanese.ShiftJIS.NewEncoder())
	if err := WriteCSV(tw, t); err != nil {
		return fmt.Errorf("%w: %s", ErrInvalidEncoding, err.Error())
	}
	if err := tw.Close(); err != nil {
		return fmt.Errorf("%w: %s", ErrInvalidEncoding, err.Error())
	}
	return nil
}

// SaveFile writes data to path, creating the parent directory if needed.
func SaveFile(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create output directory for '%s': %w", path, err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write output file '%s': %w", path, err)
	}
	return nil
}
