// Package discovery finds benchmark images and pairs them with ground truth.
package discovery

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/ocracle/ocracle/internal/models"
)

// Filter restricts discovery with glob patterns. A pattern containing "/"
// matches the image path relative to the data root; otherwise it matches
// the file name. An empty Include admits every image.
type Filter struct {
	Include []string
	Exclude []string
}

// Validate reports the first malformed pattern.
func (f Filter) Validate() error {
	for _, p := range append(append([]string{}, f.Include...), f.Exclude...) {
		if _, err := path.Match(p, ""); err != nil {
			return &models.ConfigurationError{Field: "paths", Reason: fmt.Sprintf("invalid glob %q", p), Err: err}
		}
	}
	return nil
}

func (f Filter) admits(rel string) bool {
	if len(f.Include) > 0 && !matchAny(f.Include, rel) {
		return false
	}
	return !matchAny(f.Exclude, rel)
}

func matchAny(patterns []string, rel string) bool {
	base := path.Base(rel)
	for _, p := range patterns {
		target := base
		if strings.Contains(p, "/") {
			target = rel
		}
		if ok, _ := path.Match(p, target); ok {
			return true
		}
	}
	return false
}

// Discover walks dir and returns every image file below it, sorted by
// relative path. RelPath is relative to root with forward slashes; dir must
// be root or a folder inside it. Hidden directories are skipped. Images that
// would share a result file ("a.png" and "a.jpg" in one folder) are dropped
// with a warning.
func Discover(root, dir string, filter Filter) ([]models.ImageTask, error) {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolving root path: %w", err)
	}
	absDir, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("resolving input path: %w", err)
	}

	if _, err := os.Stat(absDir); err != nil {
		return nil, &models.ConfigurationError{Field: "paths.source", Reason: "source directory not readable", Err: err}
	}
	if err := filter.Validate(); err != nil {
		return nil, err
	}

	var tasks []models.ImageTask
	err = filepath.WalkDir(absDir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil // skip inaccessible entries
		}
		if d.IsDir() {
			if p != absDir && strings.HasPrefix(d.Name(), ".") {
				return fs.SkipDir
			}
			return nil
		}
		if !models.IsImageFile(d.Name()) {
			return nil
		}

		rel, err := filepath.Rel(absRoot, p)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)
		if strings.HasPrefix(rel, "../") {
			return fmt.Errorf("image %s is outside the data root", p)
		}
		if !filter.admits(rel) {
			return nil
		}

		tasks = append(tasks, models.ImageTask{Path: p, RelPath: rel})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walking directory %s: %w", absDir, err)
	}

	sort.Slice(tasks, func(i, j int) bool { return tasks[i].RelPath < tasks[j].RelPath })
	return dropStemCollisions(tasks), nil
}

// resultKey is the image path without its final extension, which names the per-image result file.
func resultKey(rel string) string {
	return path.Join(path.Dir(rel), models.ImageStem(path.Base(rel)))
}

func dropStemCollisions(tasks []models.ImageTask) []models.ImageTask {
	count := make(map[string]int, len(tasks))
	for _, t := range tasks {
		count[resultKey(t.RelPath)]++
	}
	out := tasks[:0]
	for _, t := range tasks {
		if count[resultKey(t.RelPath)] > 1 {
			err := &models.DataError{Path: t.Path, Err: errors.New("another image in the folder has the same name stem")}
			slog.Warn("skipping ambiguous image", "image", t.RelPath, "error", err)
			continue
		}
		out = append(out, t)
	}
	return out
}

// LoadGroundTruth reads the sibling ground-truth file of an image.
// The trailing newline, if any, is stripped. A missing or unreadable file is a *models.DataError.
func LoadGroundTruth(imagePath string) (string, error) {
	p := models.GroundTruthPath(imagePath)
	data, err := os.ReadFile(p)
	if err != nil {
		return "", &models.DataError{Path: p, Err: err}
	}
	text := strings.TrimSuffix(string(data), "\n")
	return strings.TrimSuffix(text, "\r"), nil
}

// AttachGroundTruth fills GroundTruth on each task. Images without ground
// truth are dropped with a warning; any other error aborts.
func AttachGroundTruth(tasks []models.ImageTask) ([]models.ImageTask, error) {
	out := make([]models.ImageTask, 0, len(tasks))
	for _, t := range tasks {
		gt, err := LoadGroundTruth(t.Path)
		if err != nil {
			var dataErr *models.DataError
			if errors.As(err, &dataErr) {
				slog.Warn("skipping image without ground truth", "image", t.RelPath, "error", err)
				continue
			}
			return nil, err
		}
		t.GroundTruth = gt
		out = append(out, t)
	}
	return out, nil
}
