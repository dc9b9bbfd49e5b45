package results

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/ocracle/ocracle/internal/models"
)

// SummaryPath returns the sibling summary file of a folder: "<parent>/<name>.json".
func SummaryPath(folder string) string {
	folder = filepath.Clean(folder)
	return filepath.Join(filepath.Dir(folder), filepath.Base(folder)+".json")
}

// perImageFiles lists the JSON files directly inside folder, sorted, skipping the manifest.
func perImageFiles(folder string) ([]string, error) {
	entries, err := os.ReadDir(folder)
	if err != nil {
		return nil, err
	}
	var files []string
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || filepath.Ext(name) != ".json" || name == ManifestFile || strings.HasPrefix(name, ".") {
			continue
		}
		files = append(files, filepath.Join(folder, name))
	}
	sort.Strings(files)
	return files, nil
}

type sums struct {
	n        int
	wer      float64
	cer      float64
	accuracy float64
	timeSec  float64
}

// RebuildFolderSummary recomputes the summary of one folder from the per-image
// files on disk and replaces its sibling summary file. Only entries reporting
// all four metrics are averaged. Unreadable files are skipped with a warning.
// folder must lie below root; Source in the summary is folder relative to root.
func RebuildFolderSummary(root, folder string) (models.FolderSummary, error) {
	rel, err := filepath.Rel(root, folder)
	if err != nil || rel == "." || strings.HasPrefix(rel, "..") {
		return nil, fmt.Errorf("folder %s is not below results root %s", folder, root)
	}

	files, err := perImageFiles(folder)
	if err != nil {
		return nil, &models.DataError{Path: folder, Err: err}
	}

	totals := map[string]*sums{}
	for _, f := range files {
		raw, err := os.ReadFile(f)
		if err != nil {
			slog.Warn("Skipping unreadable result file", "path", f, "error", err)
			continue
		}
		var data map[string]json.RawMessage
		if err := json.Unmarshal(raw, &data); err != nil {
			slog.Warn("Skipping invalid JSON file", "path", f, "error", err)
			continue
		}
		for model, rawEntry := range data {
			var entry models.ModelEntry
			if err := json.Unmarshal(rawEntry, &entry); err != nil || !entry.Complete() {
				continue
			}
			s, ok := totals[model]
			if !ok {
				s = &sums{}
				totals[model] = s
			}
			s.n++
			s.wer += *entry.WER
			s.cer += *entry.CER
			s.accuracy += *entry.Accuracy
			s.timeSec += *entry.Time
		}
	}

	summary := make(models.FolderSummary, len(totals))
	source := filepath.ToSlash(rel)
	for model, s := range totals {
		n := float64(s.n)
		summary[model] = models.ModelSummary{
			Source:      source,
			Images:      s.n,
			AvgWER:      s.wer / n,
			AvgCER:      s.cer / n,
			AvgAccuracy: s.accuracy / n,
			AvgTime:     s.timeSec / n,
		}
	}

	// encoding/json sorts map keys, so the file is deterministic
	if err := writeJSONAtomic(SummaryPath(folder), summary); err != nil {
		return nil, err
	}
	return summary, nil
}

// LoadFolderSummary reads a summary file written by RebuildFolderSummary.
func LoadFolderSummary(p string) (models.FolderSummary, error) {
	raw, err := os.ReadFile(p)
	if err != nil {
		return nil, &models.DataError{Path: p, Err: err}
	}
	var summary models.FolderSummary
	if err := json.Unmarshal(raw, &summary); err != nil {
		return nil, &models.DataError{Path: p, Err: err}
	}
	return summary, nil
}

// ResultFolders returns every folder below root that directly holds per-image
// result files, sorted. Folders holding only summaries are not included.
func ResultFolders(root string) ([]string, error) {
	var folders []string
	err := filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() || p == root {
			return nil
		}
		files, err := perImageFiles(p)
		if err != nil {
			return err
		}
		for _, f := range files {
			if isSummaryFile(f) {
				continue
			}
			folders = append(folders, p)
			break
		}
		return nil
	})
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return folders, nil
}

// isSummaryFile reports whether p is the summary of a sibling folder.
func isSummaryFile(p string) bool {
	dir := strings.TrimSuffix(p, ".json")
	info, err := os.Stat(dir)
	return err == nil && info.IsDir()
}

// RebuildAll rebuilds the summary of every result folder below root and then
// the manifest. Folder failures are logged and skipped.
func RebuildAll(root string) (*models.Manifest, error) {
	folders, err := ResultFolders(root)
	if err != nil {
		return nil, err
	}
	for _, f := range folders {
		if _, err := RebuildFolderSummary(root, f); err != nil {
			slog.Warn("Skipping folder summary", "folder", f, "error", err)
		}
	}
	return RebuildManifest(root)
}
