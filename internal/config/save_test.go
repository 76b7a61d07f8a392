package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSavePartTypes_CreatesNewFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", "config.yaml")

	require.NoError(t, SavePartTypes(path, DefaultPartTypes()))

	cfg := loadConfigFromYAML(t, readFile(t, path))
	require.Equal(t, DefaultPartTypes(), cfg.PartTypes)
}

func TestSavePartTypes_PreservesOtherConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`# keep me
suggestions:
  limit: 3 # and me
part_types:
  - name: old
    trigger: "!"
    pattern: '<(!)(\d+)>'
`), 0o600))

	require.NoError(t, SavePartTypes(path, DefaultPartTypes()[:1]))

	content := readFile(t, path)
	require.Contains(t, content, "# keep me")
	require.Contains(t, content, "# and me")
	require.NotContains(t, content, "name: old")

	cfg := loadConfigFromYAML(t, content)
	require.Equal(t, 3, cfg.Suggestions.Limit)
	require.Len(t, cfg.PartTypes, 1)
	require.Equal(t, "user", cfg.PartTypes[0].Name)
}

func TestSavePartTypes_OmitsEmptyFields(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")

	require.NoError(t, SavePartTypes(path, []PartTypeConfig{{Name: "url", Kind: KindPattern, Pattern: "x+"}}))

	content := readFile(t, path)
	require.NotContains(t, content, "trigger")
	require.NotContains(t, content, "allowed_spaces")
}

func TestSavePartTypes_AtomicWriteLeavesNoTempFiles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")

	require.NoError(t, SavePartTypes(path, DefaultPartTypes()))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
}

func TestSavePartTypes_RejectsNonMappingDocument(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("- a\n- b\n"), 0o600))

	require.Error(t, SavePartTypes(path, DefaultPartTypes()))
}

func TestAddPartType(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	all := DefaultPartTypes()
	emoji := PartTypeConfig{Name: "emoji", Trigger: ":", Pattern: `<(?P<trigger>:)(?P<id>[a-z_]+)>`}

	require.NoError(t, AddPartType(path, 1, emoji, all))

	cfg := loadConfigFromYAML(t, readFile(t, path))
	require.Len(t, cfg.PartTypes, 4)
	require.Equal(t, "emoji", cfg.PartTypes[1].Name)
	require.Len(t, all, 3, "input must not be modified")
}

func TestAddPartType_Errors(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	all := DefaultPartTypes()

	require.Error(t, AddPartType(path, 9, PartTypeConfig{Name: "x"}, all))
	require.ErrorIs(t, AddPartType(path, 0, all[0], all), ErrInvalidConfig)
	require.ErrorIs(t, AddPartType(path, 0, PartTypeConfig{Name: "x", Pattern: "("}, all), ErrInvalidConfig)

	_, err := os.Stat(path)
	require.True(t, os.IsNotExist(err), "nothing written on error")
}

func TestRemovePartType(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	all := DefaultPartTypes()

	require.NoError(t, RemovePartType(path, "topic", all))

	cfg := loadConfigFromYAML(t, readFile(t, path))
	require.Len(t, cfg.PartTypes, 2)
	require.Equal(t, "url", cfg.PartTypes[1].Name)

	require.ErrorContains(t, RemovePartType(path, "missing", all), "not found")
	require.ErrorIs(t, RemovePartType(path, "user", all[:1]), ErrInvalidConfig)
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(data)
}
