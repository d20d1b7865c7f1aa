package ingest

import (
	"errors"
	"io/fs"
	"path/filepath"
	"strings"

	"github.com/joseph-ayodele/receipt-pipeline/constants"
)

type ScanStats struct {
	Scanned uint32
	Matched uint32
	Skipped uint32
}

// ScanDirectory walks root and returns the receipt files it finds, filtered
// by extension. Hidden files and directories are skipped when skipHidden is
// set. Walk errors on individual entries are counted, not fatal.
func ScanDirectory(root string, includeExts []string, skipHidden bool) ([]string, ScanStats, error) {
	if strings.TrimSpace(root) == "" {
		return nil, ScanStats{}, errors.New("root path is required")
	}

	exts := constants.AllowedExtensions
	if len(includeExts) > 0 {
		exts = map[string]struct{}{}
		for _, e := range includeExts {
			if e = constants.NormalizeExt(strings.TrimSpace(e)); e != "" {
				exts[e] = struct{}{}
			}
		}
	}

	var paths []string
	var stats ScanStats

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
		stats.Scanned++
		if walkErr != nil {
			stats.Skipped++
			return nil // continue walking
		}
		if skipHidden && isHidden(path) {
			if d.IsDir() {
				return filepath.SkipDir
			}
			stats.Skipped++
			return nil
		}
		if d.IsDir() {
			return nil
		}
		if !allowed(path, exts) {
			stats.Skipped++
			return nil
		}
		stats.Matched++
		paths = append(paths, path)
		return nil
	})
	if err != nil {
		return paths, stats, err
	}
	return paths, stats, nil
}

func isHidden(path string) bool {
	return strings.HasPrefix(filepath.Base(path), ".")
}
