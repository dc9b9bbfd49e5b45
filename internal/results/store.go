// Package results persists scored attempts and rebuilds the aggregate files
// read by the dashboard.
//
// The tree under the results root mirrors the image tree under the data root:
//
//	<root>/<dir>/<image name without final extension>.json   per-image results
//	<root>/<dir>.json                                         folder summary
//	<root>/manifest.json                                      corpus index
package results

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sync"

	"github.com/ocracle/ocracle/internal/models"
)

// ManifestFile is the name of the corpus index written at the results root.
const ManifestFile = "manifest.json"

// Store merges per-image results on disk.
type Store struct {
	root string

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewStore creates a store rooted at root.
func NewStore(root string) *Store {
	return &Store{root: root, locks: make(map[string]*sync.Mutex)}
}

// Root returns the results root directory.
func (s *Store) Root() string {
	return s.root
}

// PathFor returns the per-image result file for an image path relative to the data root.
// "corpus/a/00001.bin.png" maps to "<root>/corpus/a/00001.bin.json".
func (s *Store) PathFor(relImagePath string) string {
	rel := filepath.FromSlash(relImagePath)
	return filepath.Join(s.root, filepath.Dir(rel), models.ImageStem(filepath.Base(rel))+".json")
}

func (s *Store) lockFor(p string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.locks[p]
	if !ok {
		l = &sync.Mutex{}
		s.locks[p] = l
	}
	return l
}

// Record merges the attempt into its per-image file under the model's display
// name. Other models' entries are preserved. Calls for the same image are
// serialized; the file is replaced atomically.
func (s *Store) Record(result *models.AttemptResult) error {
	rel := result.ImageRelPath
	if rel == "" {
		rel = path.Base(filepath.ToSlash(result.ImagePath))
	}
	p := s.PathFor(rel)

	l := s.lockFor(p)
	l.Lock()
	defer l.Unlock()

	data, err := readPerImage(p)
	if err != nil {
		return err
	}
	if data == nil {
		data = models.PerImageResult{}
	}
	data[result.DisplayName] = result.Entry()

	return writeJSONAtomic(p, data)
}

// Load returns the per-image results for an image, or nil when nothing was recorded yet.
func (s *Store) Load(relImagePath string) (models.PerImageResult, error) {
	p := s.PathFor(relImagePath)
	l := s.lockFor(p)
	l.Lock()
	defer l.Unlock()
	return readPerImage(p)
}

// LoadFile reads a per-image result file by path. A missing file returns (nil, nil).
func LoadFile(p string) (models.PerImageResult, error) {
	return readPerImage(p)
}

func readPerImage(p string) (models.PerImageResult, error) {
	raw, err := os.ReadFile(p)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, &models.DataError{Path: p, Err: err}
	}

	var data models.PerImageResult
	if err := json.Unmarshal(raw, &data); err != nil {
		return nil, &models.DataError{Path: p, Err: fmt.Errorf("corrupt result file: %w", err)}
	}
	return data, nil
}

// writeJSONAtomic writes v as two-space indented JSON through a temp file and rename.
func writeJSONAtomic(p string, v any) error {
	dir := filepath.Dir(p)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating results directory: %w", err)
	}

	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling %s: %w", filepath.Base(p), err)
	}
	data = append(data, '\n')

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(p)+".*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName) //nolint:errcheck

	if _, err := tmp.Write(data); err != nil {
		tmp.Close() //nolint:errcheck
		return fmt.Errorf("writing %s: %w", filepath.Base(p), err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("writing %s: %w", filepath.Base(p), err)
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		return err
	}
	if err := os.Rename(tmpName, p); err != nil {
		return fmt.Errorf("replacing %s: %w", filepath.Base(p), err)
	}
	return nil
}
