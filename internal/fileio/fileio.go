package fileio

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// TimestampLayout names export files down to the second, e.g.
// GoNoGo_20260826_153000.json.
const TimestampLayout = "20060102_150405"

// EnsureDirectory creates dir and any missing parents.
func EnsureDirectory(dir string) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("creating directory %s: %w", dir, err)
	}
	return nil
}

// BuildTimestampedPath joins folder, prefix, and the run start time into the
// export path.
func BuildTimestampedPath(folder, prefix string, start time.Time) string {
	name := fmt.Sprintf("%s_%s.json", prefix, start.Format(TimestampLayout))
	return filepath.Join(folder, name)
}

// SaveJSON writes v as indented JSON, creating the parent directory when
// missing. The file is written through a temporary name and renamed so a
// crash mid-write cannot leave a truncated export behind.
func SaveJSON(path string, v any) error {
	if err := EnsureDirectory(filepath.Dir(path)); err != nil {
		return err
	}

	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling export: %w", err)
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("writing export: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("finalizing export: %w", err)
	}
	return nil
}
