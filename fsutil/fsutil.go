// Package fsutil holds the file operations behind a build: copying asset
// trees and swapping a freshly built directory into place.
package fsutil

import (
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// CopyFile copies src to dst, creating missing directories and keeping the
// permission bits of src.
func CopyFile(src, dst string) error {
	srcFile, err := os.Open(src)
	if err != nil {
		return err
	}
	defer srcFile.Close()

	info, err := srcFile.Stat()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return err
	}

	dstFile, err := os.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, info.Mode().Perm())
	if err != nil {
		return err
	}
	if _, err := io.Copy(dstFile, srcFile); err != nil {
		dstFile.Close()
		return err
	}
	return dstFile.Close()
}

// CopyTree copies the directory tree at src into dst. Hidden files and
// directories are skipped.
func CopyTree(src, dst string) error {
	return filepath.WalkDir(src, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(src, path)
		if err != nil {
			return err
		}
		if rel != "." && strings.HasPrefix(d.Name(), ".") {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		target := filepath.Join(dst, rel)
		if d.IsDir() {
			return os.MkdirAll(target, 0o755)
		}
		if !d.Type().IsRegular() {
			return nil
		}
		return CopyFile(path, target)
	})
}

// ReplaceDir moves next into the place of current. The previous content of
// current is parked in current+".old" during the swap and restored when the
// final rename fails, so current is never left missing.
func ReplaceDir(next, current string) error {
	backup := current + ".old"
	if err := os.RemoveAll(backup); err != nil {
		return fmt.Errorf("clean backup dir: %w", err)
	}
	if err := os.Rename(current, backup); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("rotate old output: %w", err)
	}
	if err := os.Rename(next, current); err != nil {
		_ = os.Rename(backup, current)
		return fmt.Errorf("activate new output: %w", err)
	}
	_ = os.RemoveAll(backup)
	return nil
}
