package commands

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"finitefield.org/travel-web/internal/catalog"
)

const dataset = `{
  "countries": [{"name": "Japan", "description": "Islands.", "location": "East Asia", "cities": ["Kyoto"]}],
  "temples": [{"name": "Angkor Wat", "description": "Temple complex.", "location": "Siem Reap, Cambodia"}],
  "beaches": [{"name": "Great Barrier Reef", "description": ""}]
}`

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()

	dir := t.TempDir()
	src := filepath.Join(dir, "travel.json")
	require.NoError(t, os.WriteFile(src, []byte(dataset), 0o600))

	root := NewRoot()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(append([]string{"--env-file", filepath.Join(dir, "missing.env"), "--source", src}, args...))
	err := root.Execute()
	return out.String(), err
}

func TestValidateReportsIssues(t *testing.T) {
	out, err := run(t, "validate")
	require.NoError(t, err)
	require.Contains(t, out, "1 countries, 1 temples, 1 beaches")
	require.Contains(t, out, "beaches[0] Great Barrier Reef: missing description")

	_, err = run(t, "validate", "--strict")
	require.Error(t, err)
}

func TestListByCategory(t *testing.T) {
	out, err := run(t, "list", "--category", "temples")
	require.NoError(t, err)
	require.Equal(t, "Angkor Wat\tSiem Reap, Cambodia\n", out)

	_, err = run(t, "list", "--category", "volcanoes")
	require.ErrorContains(t, err, "unknown category")
}

func TestSearch(t *testing.T) {
	out, err := run(t, "search", "--json", "KYOTO")
	require.NoError(t, err)
	var ds []catalog.Destination
	require.NoError(t, json.Unmarshal([]byte(out), &ds))
	require.Len(t, ds, 1)
	require.Equal(t, "Japan", ds[0].Name)

	out, err = run(t, "search", "zzz-no-match")
	require.NoError(t, err)
	require.Contains(t, out, `"zzz-no-match"`)
}

func TestPreviewRendersFragment(t *testing.T) {
	out, err := run(t, "preview", "--query", "reef")
	require.NoError(t, err)
	require.Contains(t, out, `id="results"`)
	require.Contains(t, out, "Great Barrier Reef")
	require.NotContains(t, out, "Angkor Wat")
}
