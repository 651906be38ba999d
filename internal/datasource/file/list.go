package file

import (
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// ListCSV walks root recursively and returns the paths of all .csv files
// whose base name does not end in one of the excluded suffixes (before the
// extension). The exclusion keeps already-produced outputs, e.g.
// "flows_cleaned.csv" for excluded suffix "_cleaned", from being picked up as
// fresh inputs on a later run.
//
// If root itself is a regular file it is returned as the only candidate,
// suffix-excluded or not: an explicitly named file is always accepted.
//
// Paths are returned sorted for deterministic processing order.
func ListCSV(root string, excludeSuffixes []string) ([]string, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return []string{root}, nil
	}

	var out []string
	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		if !strings.EqualFold(filepath.Ext(path), ".csv") {
			return nil
		}
		base := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
		for _, suf := range excludeSuffixes {
			if suf != "" && strings.HasSuffix(base, suf) {
				return nil
			}
		}
		out = append(out, path)
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(out)
	return out, nil
}
