//go:build !windows

// Package xos provides atomic file operations for generated artifacts.
// Writes go through a temp file and an atomic rename so a crash never
// leaves a half-written Dockerfile or compose file behind.
package xos

import (
	"os"

	"github.com/google/renameio/v2"
)

// WriteFile writes data to the named file atomically using rename.
func WriteFile(filename string, data []byte, perm os.FileMode) error {
	return renameio.WriteFile(filename, data, perm)
}

// CreateDir creates a directory and all necessary parents.
func CreateDir(path string, perm os.FileMode) error {
	return os.MkdirAll(path, perm)
}
