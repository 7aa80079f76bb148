package logger

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitUsesConfiguredDirectory(t *testing.T) {
	root := t.TempDir()
	opts := DefaultOptions()
	opts.Directory = "custom-logs"

	log, err := Init(root, opts)
	require.NoError(t, err)

	log.Info("configured logger online")
	_ = log.Sync()

	logDir := filepath.Join(root, "custom-logs")
	infoFile := filepath.Join(logDir, fmt.Sprintf("%s-info.log", time.Now().Format("2006-01-02")))
	data, err := os.ReadFile(infoFile)
	require.NoError(t, err)
	assert.Contains(t, string(data), "configured logger online")
}

func TestInitAbsoluteDirectoryIgnoresRoot(t *testing.T) {
	logDir := filepath.Join(t.TempDir(), "abs-logs")
	opts := DefaultOptions()
	opts.Directory = logDir

	log, err := Init("/nonexistent-root", opts)
	require.NoError(t, err)

	log.Warn("absolute path respected")
	_ = log.Sync()

	entries, err := os.ReadDir(logDir)
	require.NoError(t, err)
	assert.NotEmpty(t, entries)
}
