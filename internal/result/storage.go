package result

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"
)

// TimestampLayout is the run timestamp format used in report names.
const TimestampLayout = "20060102-150405"

const lockName = ".skilleval.lock"

// ReportFileName picks the mode-specific report name.
func ReportFileName(mode, skill, timestamp string) string {
	switch mode {
	case ModeAgent:
		return fmt.Sprintf("agent-scores-%s-%s.json", skill, timestamp)
	case ModeDryRun:
		return fmt.Sprintf("scores-%s-%s.json", skill, timestamp)
	default:
		return fmt.Sprintf("%s-scores-%s-%s.json", mode, skill, timestamp)
	}
}

// LatestLinkName is the symlink that tracks the newest report for a
// (mode, skill) pair inside a reports directory.
func LatestLinkName(mode, skill string) string {
	return fmt.Sprintf("latest-%s-%s.json", mode, skill)
}

// WriteReport persists doc into dir under its mode-specific name and
// refreshes the latest symlink. Returns the absolute report path.
func WriteReport(dir string, doc *ReportDocument) (string, error) {
	dir, err := filepath.Abs(dir)
	if err != nil {
		return "", fmt.Errorf("resolving report dir: %w", err)
	}
	path := filepath.Join(dir, ReportFileName(doc.Mode, doc.Skill, doc.Timestamp))
	if err := WriteJSON(path, doc); err != nil {
		return "", err
	}
	latest := filepath.Join(dir, LatestLinkName(doc.Mode, doc.Skill))
	os.Remove(latest)
	if err := os.Symlink(filepath.Base(path), latest); err != nil {
		return path, fmt.Errorf("creating latest symlink: %w", err)
	}
	return path, nil
}

// ReadReport loads a persisted report document.
func ReadReport(path string) (*ReportDocument, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading report: %w", err)
	}
	var doc ReportDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parsing report %s: %w", path, err)
	}
	return &doc, nil
}

// WriteJSON writes v as indented JSON. The write is atomic and serialized
// against other writers of the same directory through an flock.
func WriteJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling %s: %w", filepath.Base(path), err)
	}
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating dir %s: %w", dir, err)
	}

	lock := flock.New(filepath.Join(dir, lockName))
	if err := lock.Lock(); err != nil {
		return fmt.Errorf("locking %s: %w", dir, err)
	}
	defer lock.Unlock()

	tmp, err := os.CreateTemp(dir, ".tmp-*")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	if _, err := tmp.Write(append(data, '\n')); err != nil {
		tmp.Close()
		return fmt.Errorf("writing %s: %w", filepath.Base(path), err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing temp file: %w", err)
	}
	if err := os.Chmod(tmpPath, 0o644); err != nil {
		return fmt.Errorf("chmod temp file: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("renaming into %s: %w", path, err)
	}
	return nil
}
