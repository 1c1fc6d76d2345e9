// Package fsx contains filesystem helpers.
package fsx

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// WriteFileAtomic copies the content of r to path. The content is written to a temp
// file in the same directory and then renamed, so readers never see a partially
// written file. An existing file is replaced.
func WriteFileAtomic(path string, r io.Reader, perm os.FileMode) (err error) {
	dir, name := filepath.Split(path)
	if dir == "" {
		dir = "."
	}

	// Temp files start with '.' to be hidden from listings.
	tempFile, err := os.CreateTemp(dir, "."+name+".tmp-*")
	if err != nil {
		return fmt.Errorf("couldn't create temp file: %w", err)
	}
	defer func() {
		if err != nil {
			tempFile.Close()
			os.Remove(tempFile.Name())
		}
	}()

	if _, err := io.Copy(tempFile, r); err != nil {
		return fmt.Errorf("couldn't write temp file: %w", err)
	}
	if err := tempFile.Chmod(perm); err != nil {
		return fmt.Errorf("couldn't change file mode: %w", err)
	}
	if err := tempFile.Sync(); err != nil {
		return fmt.Errorf("couldn't sync temp file: %w", err)
	}
	if err := tempFile.Close(); err != nil {
		return fmt.Errorf("couldn't close temp file: %w", err)
	}
	if err := os.Rename(tempFile.Name(), path); err != nil {
		return fmt.Errorf("couldn't rename temp file: %w", err)
	}
	return nil
}
