package results

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ocracle/ocracle/internal/models"
)

func seedEdit(t *testing.T) (*Store, string) {
	t.Helper()
	root := t.TempDir()
	s := NewStore(root)
	require.NoError(t, s.Record(attempt("gpt-4o", "latin/1471/00001.png", 0.9)))
	require.NoError(t, s.Record(attempt("mistral-small-2506", "latin/1471/00001.png", 0.8)))
	require.NoError(t, s.Record(attempt("mistral-small-2506", "latin/1471/00002.png", 0.7)))
	require.NoError(t, s.Record(attempt("mistral-small-2506", "greek/1500/00001.png", 0.6)))
	require.NoError(t, s.Record(attempt("gpt-4o", "loose.png", 0.9)))
	_, err := RebuildAll(root)
	require.NoError(t, err)
	return s, root
}

func TestDeleteModel(t *testing.T) {
	s, root := seedEdit(t)

	stats, err := s.DeleteModel("mistral-small-2506", false)
	require.NoError(t, err)
	assert.Equal(t, 4, stats.Files)
	assert.Equal(t, []string{filepath.Join(root, "latin", "1471", "00001.json")}, stats.Modified)
	assert.ElementsMatch(t, []string{
		filepath.Join(root, "greek", "1500", "00001.json"),
		filepath.Join(root, "latin", "1471", "00002.json"),
	}, stats.Removed)

	res, err := s.Load("latin/1471/00001.png")
	require.NoError(t, err)
	assert.Contains(t, res, "gpt-4o")
	assert.NotContains(t, res, "mistral-small-2506")

	assert.NoFileExists(t, filepath.Join(root, "latin", "1471", "00002.json"))
	assert.NoFileExists(t, filepath.Join(root, "greek", "1500.json"), "summary of an emptied folder goes too")

	m, err := RebuildAll(root)
	require.NoError(t, err)
	assert.Equal(t, []string{"latin/1471.json"}, m.Files)
	summary, err := LoadFolderSummary(filepath.Join(root, "latin", "1471.json"))
	require.NoError(t, err)
	assert.Len(t, summary, 1)
	assert.Contains(t, summary, "gpt-4o")
}

func TestDeleteModel_DryRun(t *testing.T) {
	s, root := seedEdit(t)
	before, err := os.ReadFile(filepath.Join(root, "latin", "1471", "00001.json"))
	require.NoError(t, err)

	stats, err := s.DeleteModel("mistral-small-2506", true)
	require.NoError(t, err)
	assert.Equal(t, 3, stats.Changes())

	after, err := os.ReadFile(filepath.Join(root, "latin", "1471", "00001.json"))
	require.NoError(t, err)
	assert.Equal(t, before, after)
	assert.FileExists(t, filepath.Join(root, "greek", "1500", "00001.json"))
}

func TestDeleteModel_UnknownModel(t *testing.T) {
	s, _ := seedEdit(t)

	stats, err := s.DeleteModel("llama-4-scout", false)
	require.NoError(t, err)
	assert.Zero(t, stats.Changes())
}

func TestDeleteModel_SkipsCorruptFile(t *testing.T) {
	s, root := seedEdit(t)
	corrupt := filepath.Join(root, "latin", "1471", "00003.json")
	require.NoError(t, os.WriteFile(corrupt, []byte("{"), 0o644))

	stats, err := s.DeleteModel("gpt-4o", false)
	require.NoError(t, err)
	assert.Equal(t, []string{corrupt}, stats.Skipped)
}

func TestRenameModel(t *testing.T) {
	s, root := seedEdit(t)

	stats, err := s.RenameModel("mistral-small-2506", "Mistral Small 3.2", false)
	require.NoError(t, err)
	assert.Len(t, stats.Modified, 3)
	assert.Empty(t, stats.Conflicts)

	res, err := s.Load("latin/1471/00001.png")
	require.NoError(t, err)
	assert.Contains(t, res, "Mistral Small 3.2")
	assert.Contains(t, res, "gpt-4o")
	assert.NotContains(t, res, "mistral-small-2506")
	require.NotNil(t, res["Mistral Small 3.2"].Accuracy)
	assert.InDelta(t, 80.0, *res["Mistral Small 3.2"].Accuracy, 1e-9)

	_, err = RebuildAll(root)
	require.NoError(t, err)
	summary, err := LoadFolderSummary(filepath.Join(root, "latin", "1471.json"))
	require.NoError(t, err)
	assert.Contains(t, summary, "Mistral Small 3.2")
	assert.NotContains(t, summary, "mistral-small-2506")
}

func TestRenameModel_ConflictLeavesFile(t *testing.T) {
	s, root := seedEdit(t)
	p := filepath.Join(root, "latin", "1471", "00001.json")
	before, err := os.ReadFile(p)
	require.NoError(t, err)

	stats, err := s.RenameModel("mistral-small-2506", "gpt-4o", false)
	require.NoError(t, err)
	assert.Equal(t, []string{p}, stats.Conflicts)
	assert.Len(t, stats.Modified, 2)

	after, err := os.ReadFile(p)
	require.NoError(t, err)
	assert.Equal(t, before, after)
}

func TestRenameModels_IgnoresIdentity(t *testing.T) {
	s, _ := seedEdit(t)
	mapping := map[string]string{"gpt-4o": "gpt-4o"}

	stats, err := s.RenameModels(mapping, false)
	require.NoError(t, err)
	assert.Zero(t, stats.Changes())
	assert.Len(t, mapping, 1, "caller's map is not modified")
}

func TestRenameModel_EmptyName(t *testing.T) {
	s, _ := seedEdit(t)
	_, err := s.RenameModel("gpt-4o", "", false)
	var cfgErr *models.ConfigurationError
	assert.ErrorAs(t, err, &cfgErr)
}
