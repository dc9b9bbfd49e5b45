package discovery

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ocracle/ocracle/internal/models"
)

func touch(t *testing.T, root, rel, content string) {
	t.Helper()
	p := filepath.Join(root, filepath.FromSlash(rel))
	require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
	require.NoError(t, os.WriteFile(p, []byte(content), 0o644))
}

func relPaths(tasks []models.ImageTask) []string {
	out := make([]string, len(tasks))
	for i, t := range tasks {
		out[i] = t.RelPath
	}
	return out
}

func TestDiscover(t *testing.T) {
	root := t.TempDir()
	touch(t, root, "greek/a/00001.bin.png", "")
	touch(t, root, "greek/a/00001.gt.txt", "x")
	touch(t, root, "greek/b/page.JPG", "")
	touch(t, root, "latin/scan.tif", "")
	touch(t, root, "latin/notes.txt", "")
	touch(t, root, ".cache/hidden.png", "")

	tasks, err := Discover(root, root, Filter{})
	require.NoError(t, err)
	assert.Equal(t, []string{"greek/a/00001.bin.png", "greek/b/page.JPG", "latin/scan.tif"}, relPaths(tasks))
	assert.Equal(t, filepath.Join(root, "latin", "scan.tif"), tasks[2].Path)
}

func TestDiscover_DropsSharedResultName(t *testing.T) {
	root := t.TempDir()
	touch(t, root, "latin/a.png", "")
	touch(t, root, "latin/a.jpg", "")
	touch(t, root, "latin/a.bin.png", "")
	touch(t, root, "greek/a.png", "")

	tasks, err := Discover(root, root, Filter{})
	require.NoError(t, err)
	// a.bin.png keeps its inner extension in the result name, so it does not clash
	assert.Equal(t, []string{"greek/a.png", "latin/a.bin.png"}, relPaths(tasks))
}

func TestDiscover_Subfolder(t *testing.T) {
	root := t.TempDir()
	touch(t, root, "greek/a/1.png", "")
	touch(t, root, "latin/2.png", "")

	tasks, err := Discover(root, filepath.Join(root, "greek"), Filter{})
	require.NoError(t, err)
	assert.Equal(t, []string{"greek/a/1.png"}, relPaths(tasks))
}

func TestDiscover_Filter(t *testing.T) {
	root := t.TempDir()
	touch(t, root, "greek/a/1.bin.png", "")
	touch(t, root, "greek/a/1.nrm.png", "")
	touch(t, root, "latin/2.bin.png", "")

	tasks, err := Discover(root, root, Filter{Include: []string{"*.bin.png"}, Exclude: []string{"latin/*"}})
	require.NoError(t, err)
	assert.Equal(t, []string{"greek/a/1.bin.png"}, relPaths(tasks))
}

func TestDiscover_Errors(t *testing.T) {
	root := t.TempDir()

	_, err := Discover(root, filepath.Join(root, "missing"), Filter{})
	var cfgErr *models.ConfigurationError
	require.ErrorAs(t, err, &cfgErr)

	_, err = Discover(root, root, Filter{Include: []string{"[bad"}})
	require.ErrorAs(t, err, &cfgErr)
}

func TestLoadGroundTruth(t *testing.T) {
	root := t.TempDir()
	touch(t, root, "00001.gt.txt", "line one\nline two\n")
	touch(t, root, "00002.gt.txt", "crlf\r\n")

	gt, err := LoadGroundTruth(filepath.Join(root, "00001.bin.png"))
	require.NoError(t, err)
	assert.Equal(t, "line one\nline two", gt)

	gt, err = LoadGroundTruth(filepath.Join(root, "00002.png"))
	require.NoError(t, err)
	assert.Equal(t, "crlf", gt)

	_, err = LoadGroundTruth(filepath.Join(root, "00003.png"))
	var dataErr *models.DataError
	require.ErrorAs(t, err, &dataErr)
}

func TestAttachGroundTruth_SkipsMissing(t *testing.T) {
	root := t.TempDir()
	touch(t, root, "a/1.png", "")
	touch(t, root, "a/1.gt.txt", "one\n")
	touch(t, root, "a/2.png", "")

	tasks, err := Discover(root, root, Filter{})
	require.NoError(t, err)
	require.Len(t, tasks, 2)

	tasks, err = AttachGroundTruth(tasks)
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	assert.Equal(t, "a/1.png", tasks[0].RelPath)
	assert.Equal(t, "one", tasks[0].GroundTruth)
}
