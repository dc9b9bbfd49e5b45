package results

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ocracle/ocracle/internal/models"
)

func TestSummaryPath(t *testing.T) {
	assert.Equal(t, filepath.Join("/r", "corpus", "a.json"), SummaryPath("/r/corpus/a/"))
}

func TestRebuildFolderSummary(t *testing.T) {
	root := t.TempDir()
	s := NewStore(root)

	require.NoError(t, s.Record(attempt("A", "corpus/latin/1471/00001.png", 0.8)))
	require.NoError(t, s.Record(attempt("A", "corpus/latin/1471/00002.png", 0.6)))
	require.NoError(t, s.Record(attempt("B", "corpus/latin/1471/00002.png", 1.0)))

	folder := filepath.Join(root, "corpus", "latin", "1471")
	summary, err := RebuildFolderSummary(root, folder)
	require.NoError(t, err)

	require.Len(t, summary, 2)
	assert.Equal(t, "corpus/latin/1471", summary["A"].Source)
	assert.Equal(t, 2, summary["A"].Images)
	assert.InDelta(t, 70.0, summary["A"].AvgAccuracy, 1e-9)
	assert.InDelta(t, 1.5, summary["A"].AvgTime, 1e-9)
	assert.Equal(t, 1, summary["B"].Images)
	assert.InDelta(t, 100.0, summary["B"].AvgAccuracy, 1e-9)

	var onDisk models.FolderSummary
	readJSON(t, filepath.Join(root, "corpus", "latin", "1471.json"), &onDisk)
	assert.Equal(t, summary, onDisk)
}

func TestRebuildFolderSummaryIsIdempotent(t *testing.T) {
	root := t.TempDir()
	s := NewStore(root)
	require.NoError(t, s.Record(attempt("A", "c/d/00001.png", 0.8)))
	folder := filepath.Join(root, "c", "d")

	_, err := RebuildFolderSummary(root, folder)
	require.NoError(t, err)
	first, err := os.ReadFile(SummaryPath(folder))
	require.NoError(t, err)

	_, err = RebuildFolderSummary(root, folder)
	require.NoError(t, err)
	second, err := os.ReadFile(SummaryPath(folder))
	require.NoError(t, err)

	assert.Equal(t, string(first), string(second))
}

func TestRebuildFolderSummarySkipsBadInput(t *testing.T) {
	root := t.TempDir()
	s := NewStore(root)
	require.NoError(t, s.Record(attempt("A", "c/d/00001.png", 0.8)))
	folder := filepath.Join(root, "c", "d")

	require.NoError(t, os.WriteFile(filepath.Join(folder, "00002.json"), []byte("{broken"), 0o644))
	// entries missing a metric are not averaged
	require.NoError(t, os.WriteFile(filepath.Join(folder, "00003.json"), []byte(`{"A":{"gt":"x","response":"x","wer":0,"cer":0,"accuracy":100}}`), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(folder, "notes.txt"), []byte("ignored"), 0o644))

	summary, err := RebuildFolderSummary(root, folder)
	require.NoError(t, err)
	assert.Equal(t, 1, summary["A"].Images)
	assert.InDelta(t, 80.0, summary["A"].AvgAccuracy, 1e-9)
}

func TestRebuildFolderSummaryRejectsRoot(t *testing.T) {
	root := t.TempDir()
	_, err := RebuildFolderSummary(root, root)
	require.Error(t, err)
}

func TestResultFolders(t *testing.T) {
	root := t.TempDir()
	s := NewStore(root)
	require.NoError(t, s.Record(attempt("A", "corpus/latin/1471/00001.png", 0.8)))
	require.NoError(t, s.Record(attempt("A", "corpus/greek/1520/00001.png", 0.8)))
	_, err := RebuildFolderSummary(root, filepath.Join(root, "corpus", "latin", "1471"))
	require.NoError(t, err)

	folders, err := ResultFolders(root)
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join(root, "corpus", "greek", "1520"),
		filepath.Join(root, "corpus", "latin", "1471"),
	}, folders)

	none, err := ResultFolders(filepath.Join(root, "missing"))
	require.NoError(t, err)
	assert.Empty(t, none)
}
