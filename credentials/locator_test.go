package credentials

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTestFile(t *testing.T, dir, name string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(filepath.Join(dir, name)), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("{}"), 0o600))
}

func TestLocator_Find(t *testing.T) {
	dir := t.TempDir()
	writeTestFile(t, dir, "a.json")
	writeTestFile(t, dir, "b.json")
	writeTestFile(t, dir, "sub/c.p12")
	writeTestFile(t, dir, "notes.txt")

	l := NewLocator(dir, nil)
	matches, err := l.Find("*.json", "**/*.p12")
	require.NoError(t, err)
	assert.Equal(t, []string{"a.json", "b.json", "sub/c.p12"}, matches)
}

func TestLocator_Find_NoMatches(t *testing.T) {
	dir := t.TempDir()
	l := NewLocator(dir, nil)
	matches, err := l.Find("*.json")
	require.NoError(t, err)
	assert.Empty(t, matches)
}
