package census

import (
	"fmt"
	"path/filepath"
	"sort"
)

// ListInputFiles returns the per-year census exports found in dir, one CSV
// file per survey year, in lexical order.
func ListInputFiles(dir string) ([]string, error) {
	files, err := filepath.Glob(filepath.Join(dir, "*.csv"))
	if err != nil {
		return nil, fmt.Errorf("list census files in '%s': %w", dir, err)
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no census files found in '%s'", dir)
	}
	sort.Strings(files)
	return files, nil
}
