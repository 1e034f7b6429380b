package agent

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
)

// SkipDirs are never descended into when snapshotting or copying a project.
var SkipDirs = map[string]bool{".git": true, "node_modules": true}

// Snapshot maps relative file paths to a SHA-256 of their content.
type Snapshot map[string]string

// TakeSnapshot hashes every regular file under dir.
func TakeSnapshot(dir string) (Snapshot, error) {
	snap := Snapshot{}
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path != dir && SkipDirs[d.Name()] {
				return filepath.SkipDir
			}
			return nil
		}
		if !d.Type().IsRegular() {
			return nil
		}
		rel, err := filepath.Rel(dir, path)
		if err != nil {
			return err
		}
		sum, err := hashFile(path)
		if err != nil {
			return err
		}
		snap[filepath.ToSlash(rel)] = sum
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("snapshotting %s: %w", dir, err)
	}
	return snap, nil
}

func hashFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()
	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", err
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

// Diff returns files present only in after, and files present in both whose
// content changed. Both lists are sorted.
func Diff(before, after Snapshot) (created, modified []string) {
	created, modified = []string{}, []string{}
	for path, sum := range after {
		prev, ok := before[path]
		switch {
		case !ok:
			created = append(created, path)
		case prev != sum:
			modified = append(modified, path)
		}
	}
	sort.Strings(created)
	sort.Strings(modified)
	return created, modified
}
