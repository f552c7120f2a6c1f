// Package ingest discovers PDF files for batch extraction.
package ingest

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/joseph-ayodele/debt-tracker/constants"
)

type FileResult struct {
	Path         string
	HashHex      string
	Deduplicated bool // same content as an earlier file; not queued
	Err          string
}

type DirStats struct {
	Scanned      uint32
	Matched      uint32
	Succeeded    uint32
	Deduplicated uint32
	Failed       uint32
}

// String summarizes a walk for the CLI.
func (s DirStats) String() string {
	return fmt.Sprintf("scanned %d entries: %d PDF, %d queued, %d duplicate, %d unreadable",
		s.Scanned, s.Matched, s.Succeeded-s.Deduplicated, s.Deduplicated, s.Failed)
}

// Discover walks root and returns every PDF in lexical order, skipping hidden
// entries if requested. Files whose content repeats an earlier file are marked
// Deduplicated.
func Discover(root string, skipHidden bool, logger *slog.Logger) ([]FileResult, DirStats, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if strings.TrimSpace(root) == "" {
		return nil, DirStats{}, errors.New("root path is required")
	}

	var results []FileResult
	var stats DirStats
	seen := make(map[string]string)

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
		stats.Scanned++
		if walkErr != nil {
			if path == root {
				return walkErr
			}
			results = append(results, FileResult{Path: path, Err: walkErr.Error()})
			stats.Failed++
			return nil
		}
		if skipHidden && path != root && IsHidden(path) {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() || !constants.IsAllowedExt(filepath.Ext(path)) {
			return nil
		}
		stats.Matched++

		sum, err := hashFile(path)
		if err != nil {
			logger.Warn("ingest.hash.failed", "path", path, "error", err)
			results = append(results, FileResult{Path: path, Err: err.Error()})
			stats.Failed++
			return nil
		}
		res := FileResult{Path: path, HashHex: sum}
		if first, dup := seen[sum]; dup {
			logger.Info("ingest.deduplicated", "path", path, "same_as", first)
			res.Deduplicated = true
			stats.Deduplicated++
		} else {
			seen[sum] = path
		}
		results = append(results, res)
		stats.Succeeded++
		return nil
	})
	if err != nil {
		return results, stats, fmt.Errorf("walk: %w", err)
	}

	logger.Info("ingest.discover.ok",
		"root", root,
		"scanned", stats.Scanned,
		"matched", stats.Matched,
		"deduplicated", stats.Deduplicated,
		"failed", stats.Failed)
	return results, stats, nil
}

// Pending returns the paths that should be processed.
func Pending(results []FileResult) []string {
	out := make([]string, 0, len(results))
	for _, r := range results {
		if r.Err == "" && !r.Deduplicated {
			out = append(out, r.Path)
		}
	}
	return out
}

// IsHidden checks if a file or directory is hidden (starts with '.').
func IsHidden(path string) bool {
	return strings.HasPrefix(filepath.Base(path), ".")
}

func hashFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", err
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}
