package fileio

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildTimestampedPath(t *testing.T) {
	start := time.Date(2026, 8, 26, 15, 30, 0, 0, time.UTC)
	path := BuildTimestampedPath("/data/runs", "GoNoGo", start)
	assert.Equal(t, filepath.Join("/data/runs", "GoNoGo_20260826_153000.json"), path)
}

func TestSaveJSON(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nested", "out.json")

	require.NoError(t, SaveJSON(path, map[string]any{"answer": 42}))

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.EqualValues(t, 42, decoded["answer"])

	// No temporary file left behind.
	_, err = os.Stat(path + ".tmp")
	assert.True(t, os.IsNotExist(err))
}
