package results

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/ocracle/ocracle/internal/models"
)

// UncategorizedCategory holds folders that sit directly below the results root.
const UncategorizedCategory = "uncategorized"

// clock is replaced in tests.
var clock = time.Now

// RebuildManifest indexes every result folder that has a summary and writes
// <root>/manifest.json. A folder's category is its parent path relative to
// root and its subcategory is its own name, so every folder gets its own entry.
func RebuildManifest(root string) (*models.Manifest, error) {
	folders, err := ResultFolders(root)
	if err != nil {
		return nil, err
	}

	m := &models.Manifest{
		Description: models.ManifestDescription,
		Generated:   clock().Format("2006-01-02T15:04:05.000000"),
		Structure:   map[string]map[string]models.ManifestEntry{},
		Files:       []string{},
	}

	for _, folder := range folders {
		summary := SummaryPath(folder)
		if _, err := os.Stat(summary); err != nil {
			slog.Debug("Folder has no summary, leaving it out of the manifest", "folder", folder)
			continue
		}

		rel, err := filepath.Rel(root, folder)
		if err != nil {
			return nil, err
		}
		rel = filepath.ToSlash(rel)

		category, subcategory := categorize(rel)

		files, err := perImageFiles(folder)
		if err != nil {
			return nil, err
		}
		individual := make([]string, 0, len(files))
		for _, f := range files {
			if isSummaryFile(f) {
				continue
			}
			r, err := filepath.Rel(root, f)
			if err != nil {
				return nil, err
			}
			individual = append(individual, filepath.ToSlash(r))
		}

		aggregated := rel + ".json"
		if m.Structure[category] == nil {
			m.Structure[category] = map[string]models.ManifestEntry{}
		}
		m.Structure[category][subcategory] = models.ManifestEntry{
			Aggregated:      aggregated,
			IndividualFiles: individual,
			ImageCount:      len(individual),
		}
		m.Files = append(m.Files, aggregated)
	}
	sort.Strings(m.Files)

	if err := writeJSONAtomic(filepath.Join(root, ManifestFile), m); err != nil {
		return nil, err
	}
	return m, nil
}

// categorize splits a slash-separated folder path into its parent path and leaf name.
func categorize(rel string) (category, subcategory string) {
	i := strings.LastIndex(rel, "/")
	if i < 0 {
		return UncategorizedCategory, rel
	}
	return rel[:i], rel[i+1:]
}

// LoadManifest reads <root>/manifest.json.
func LoadManifest(root string) (*models.Manifest, error) {
	p := filepath.Join(root, ManifestFile)
	raw, err := os.ReadFile(p)
	if err != nil {
		return nil, &models.DataError{Path: p, Err: err}
	}
	var m models.Manifest
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, &models.DataError{Path: p, Err: fmt.Errorf("corrupt manifest: %w", err)}
	}
	return &m, nil
}
