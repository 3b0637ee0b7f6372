package tools

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"scriptor/internal/config"
)

func TestLocalFileSearch(t *testing.T) {
	notes := filepath.Join(t.TempDir(), "notes.txt")
	require.NoError(t, os.WriteFile(notes, []byte(
		"Threat modeling checklist\nunrelated line\n  THREAT actors overview  \n"), 0o644))

	toolset := New(&config.Config{})
	result := toolset.LocalFileSearch("threat", notes)

	assert.Equal(t, StatusSuccess, result.Status)
	assert.Equal(t, "Threat modeling checklist\nTHREAT actors overview", result.Content,
		"matches are case-insensitive and trimmed")
	assert.Equal(t, notes, result.Source)
}

func TestLocalFileSearchNoMatches(t *testing.T) {
	notes := filepath.Join(t.TempDir(), "notes.txt")
	require.NoError(t, os.WriteFile(notes, []byte("nothing relevant here\n"), 0o644))

	result := New(&config.Config{}).LocalFileSearch("missing", notes)
	assert.Equal(t, StatusNoResults, result.Status)
	assert.Contains(t, result.Content, `No matches for "missing"`)
}

func TestLocalFileSearchMissingFile(t *testing.T) {
	result := New(&config.Config{}).LocalFileSearch("anything",
		filepath.Join(t.TempDir(), "absent.txt"))
	assert.Equal(t, StatusError, result.Status)
	assert.Contains(t, result.Content, "local file search failed")
}

func TestRouteLocalKeywords(t *testing.T) {
	plan := Route("search my local notes for threat models")
	assert.Contains(t, plan.Tools, "local_file_search")
	assert.Equal(t, "internet_search", plan.Tools[len(plan.Tools)-1])
}
