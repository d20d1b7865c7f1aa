package ingest

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, path string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte("x"), 0o644))
}

func TestScanDirectory(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "a.jpg"))
	writeFile(t, filepath.Join(root, "sub", "b.pdf"))
	writeFile(t, filepath.Join(root, "notes.docx"))
	writeFile(t, filepath.Join(root, ".hidden", "c.png"))

	paths, stats, err := ScanDirectory(root, nil, true)
	require.NoError(t, err)

	require.Len(t, paths, 2)
	assert.Contains(t, paths, filepath.Join(root, "a.jpg"))
	assert.Contains(t, paths, filepath.Join(root, "sub", "b.pdf"))
	assert.Equal(t, uint32(2), stats.Matched)
}

func TestScanDirectory_CustomExtensions(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "a.jpg"))
	writeFile(t, filepath.Join(root, "b.txt"))

	paths, _, err := ScanDirectory(root, []string{".txt"}, false)
	require.NoError(t, err)

	require.Len(t, paths, 1)
	assert.Equal(t, filepath.Join(root, "b.txt"), paths[0])
}

func TestScanDirectory_EmptyRoot(t *testing.T) {
	_, _, err := ScanDirectory("  ", nil, false)
	assert.Error(t, err)
}
