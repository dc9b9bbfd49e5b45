package results

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"

	"github.com/ocracle/ocracle/internal/models"
)

// EditStats reports what a model-key edit touched. Summaries and the manifest
// are not rewritten; callers follow a real edit with RebuildAll.
type EditStats struct {
	// Files is the number of per-image files scanned.
	Files int
	// Modified lists the per-image files that changed (or would change on a dry run).
	Modified []string
	// Removed lists per-image files deleted because no model entry was left.
	Removed []string
	// Conflicts lists files skipped by a rename because the new key was already present.
	Conflicts []string
	// Skipped lists unreadable files.
	Skipped []string
}

// Changes is the number of files modified or removed.
func (e EditStats) Changes() int {
	return len(e.Modified) + len(e.Removed)
}

// DeleteModel removes the named model's entry from every per-image file.
// Files left without entries are deleted so the image counts as unscanned
// again, and the summary of a folder left with no results is deleted too.
func (s *Store) DeleteModel(name string, dryRun bool) (EditStats, error) {
	if name == "" {
		return EditStats{}, &models.ConfigurationError{Field: "model", Reason: "model name is empty"}
	}

	stats, err := s.edit(dryRun, func(data models.PerImageResult) (bool, bool) {
		if _, ok := data[name]; !ok {
			return false, false
		}
		delete(data, name)
		return true, false
	})
	if err != nil || dryRun || len(stats.Removed) == 0 {
		return stats, err
	}
	return stats, s.dropEmptySummaries()
}

// RenameModel moves the entry stored under from to to in every per-image file.
func (s *Store) RenameModel(from, to string, dryRun bool) (EditStats, error) {
	return s.RenameModels(map[string]string{from: to}, dryRun)
}

// RenameModels applies several key renames in one pass. A file that already
// holds a target key keeps both entries untouched and is reported as a conflict.
func (s *Store) RenameModels(mapping map[string]string, dryRun bool) (EditStats, error) {
	renames := make(map[string]string, len(mapping))
	for from, to := range mapping {
		if from == "" || to == "" {
			return EditStats{}, &models.ConfigurationError{Field: "model", Reason: "model name is empty"}
		}
		if from != to {
			renames[from] = to
		}
	}
	if len(renames) == 0 {
		return EditStats{}, nil
	}

	return s.edit(dryRun, func(data models.PerImageResult) (bool, bool) {
		for from, to := range renames {
			if _, ok := data[from]; !ok {
				continue
			}
			if _, taken := data[to]; taken {
				return false, true
			}
		}
		changed := false
		for from, to := range renames {
			if entry, ok := data[from]; ok {
				delete(data, from)
				data[to] = entry
				changed = true
			}
		}
		return changed, false
	})
}

// edit runs fn over every per-image file under the store's per-file lock.
// fn reports whether it changed the data and whether the file conflicts.
func (s *Store) edit(dryRun bool, fn func(data models.PerImageResult) (changed, conflict bool)) (EditStats, error) {
	files, err := s.resultFiles()
	if err != nil {
		return EditStats{}, err
	}

	var stats EditStats
	for _, p := range files {
		stats.Files++
		if err := s.editFile(p, dryRun, fn, &stats); err != nil {
			var dataErr *models.DataError
			if !errors.As(err, &dataErr) {
				return stats, err
			}
			slog.Warn("Skipping unreadable result file", "path", p, "error", err)
			stats.Skipped = append(stats.Skipped, p)
		}
	}
	return stats, nil
}

func (s *Store) editFile(p string, dryRun bool, fn func(models.PerImageResult) (bool, bool), stats *EditStats) error {
	l := s.lockFor(p)
	l.Lock()
	defer l.Unlock()

	data, err := readPerImage(p)
	if err != nil || data == nil {
		return err
	}
	changed, conflict := fn(data)
	switch {
	case conflict:
		stats.Conflicts = append(stats.Conflicts, p)
		return nil
	case !changed:
		return nil
	case len(data) == 0:
		stats.Removed = append(stats.Removed, p)
		if dryRun {
			return nil
		}
		if err := os.Remove(p); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("removing %s: %w", p, err)
		}
		return nil
	default:
		stats.Modified = append(stats.Modified, p)
		if dryRun {
			return nil
		}
		return writeJSONAtomic(p, data)
	}
}

// resultFiles lists every per-image result file below the root, sorted.
func (s *Store) resultFiles() ([]string, error) {
	folders, err := ResultFolders(s.root)
	if err != nil {
		return nil, err
	}
	files, err := rootResultFiles(s.root)
	if err != nil {
		return nil, err
	}
	for _, folder := range folders {
		found, err := perImageFiles(folder)
		if err != nil {
			return nil, err
		}
		for _, f := range found {
			if !isSummaryFile(f) {
				files = append(files, f)
			}
		}
	}
	sort.Strings(files)
	return files, nil
}

// rootResultFiles returns per-image files of images that sit directly in the data root.
func rootResultFiles(root string) ([]string, error) {
	found, err := perImageFiles(root)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var files []string
	for _, f := range found {
		if !isSummaryFile(f) {
			files = append(files, f)
		}
	}
	return files, nil
}

// dropEmptySummaries deletes summaries whose folder no longer holds results.
func (s *Store) dropEmptySummaries() error {
	kept, err := ResultFolders(s.root)
	if err != nil {
		return err
	}
	live := make(map[string]bool, len(kept))
	for _, f := range kept {
		live[SummaryPath(f)] = true
	}

	return walkSummaries(s.root, func(summary string) error {
		if live[summary] {
			return nil
		}
		slog.Debug("Removing summary of emptied folder", "path", summary)
		if err := os.Remove(summary); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("removing %s: %w", summary, err)
		}
		return nil
	})
}

// walkSummaries calls fn for every folder summary below root.
func walkSummaries(root string, fn func(summary string) error) error {
	var summaries []string
	err := filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		files, err := perImageFiles(p)
		if err != nil {
			return err
		}
		for _, f := range files {
			if isSummaryFile(f) {
				summaries = append(summaries, f)
			}
		}
		return nil
	})
	if err != nil {
		return err
	}
	for _, summary := range summaries {
		if err := fn(summary); err != nil {
			return err
		}
	}
	return nil
}
