package ingest

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type nopLogger struct{}

func (nopLogger) Debug(module, message string, details map[string]interface{}) {}
func (nopLogger) Info(module, message string, details map[string]interface{})  {}
func (nopLogger) Warn(module, message string, details map[string]interface{})  {}
func (nopLogger) Error(module, message string, details map[string]interface{}) {}
func (nopLogger) Sync() error                                                  { return nil }

func TestLoadDirSplitsTextFiles(t *testing.T) {
	dir := t.TempDir()

	long := strings.Repeat("Public health advisory for the monsoon season. ", 60)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "advisory.txt"), []byte(long), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.md"), []byte("# Vaccination drives\nSchedule below."), 0o644))
	// Unsupported formats are silently skipped.
	require.NoError(t, os.WriteFile(filepath.Join(dir, "data.csv"), []byte("a,b,c"), 0o644))

	loader := NewLoader(nopLogger{})
	chunks, err := loader.LoadDir(context.Background(), dir)
	require.NoError(t, err)

	// The long advisory exceeds one chunk size, so it must split.
	assert.Greater(t, len(chunks), 2)

	sources := map[string]bool{}
	for _, chunk := range chunks {
		assert.NotEmpty(t, chunk.Text)
		source, ok := chunk.Metadata["source"].(string)
		require.True(t, ok)
		sources[source] = true
	}
	assert.True(t, sources["advisory.txt"])
	assert.True(t, sources["notes.md"])
	assert.False(t, sources["data.csv"])
}

func TestLoadDirMissingDirectory(t *testing.T) {
	loader := NewLoader(nopLogger{})
	_, err := loader.LoadDir(context.Background(), "/does/not/exist")
	assert.Error(t, err)
}

func TestLoadDirSkipsCorruptFiles(t *testing.T) {
	dir := t.TempDir()

	require.NoError(t, os.WriteFile(filepath.Join(dir, "broken.pdf"), []byte("not a real pdf"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "fine.txt"), []byte("usable content"), 0o644))

	loader := NewLoader(nopLogger{})
	chunks, err := loader.LoadDir(context.Background(), dir)
	require.NoError(t, err)

	require.Len(t, chunks, 1)
	assert.Equal(t, "usable content", chunks[0].Text)
}

func TestLoadFileUnsupportedFormat(t *testing.T) {
	loader := NewLoader(nopLogger{})
	_, err := loader.LoadFile(context.Background(), "report.xlsx")
	assert.Error(t, err)
}
