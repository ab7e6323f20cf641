// Package security guards file reads whose paths come from the session
// catalogue or from a request.
package security

import (
	"errors"
	"fmt"
	"path/filepath"
	"slices"
	"strings"
)

var (
	// ErrOutsideDirectory is returned when a path resolves outside its root.
	ErrOutsideDirectory = errors.New("path escapes directory")
	// ErrExtensionNotAllowed is returned for a file type the caller cannot serve.
	ErrExtensionNotAllowed = errors.New("file extension not allowed")
)

// ValidatePathWithinDirectory checks that filePath resolves inside root once
// ".." components and symlinks are resolved. A path that does not exist yet
// is resolved through its nearest existing ancestor, so a symlinked parent
// cannot be used to escape. root itself must exist.
func ValidatePathWithinDirectory(filePath, root string) error {
	absPath, err := filepath.Abs(filepath.Clean(filePath))
	if err != nil {
		return fmt.Errorf("resolve %s: %w", filePath, err)
	}
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return fmt.Errorf("resolve %s: %w", root, err)
	}
	canonicalRoot, err := filepath.EvalSymlinks(absRoot)
	if err != nil {
		return fmt.Errorf("resolve %s: %w", root, err)
	}

	rel, err := filepath.Rel(canonicalRoot, resolveExisting(absPath))
	if err != nil {
		return fmt.Errorf("%w: %s", ErrOutsideDirectory, filePath)
	}
	if rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) || filepath.IsAbs(rel) {
		return fmt.Errorf("%w: %s is not under %s", ErrOutsideDirectory, filePath, root)
	}
	return nil
}

// resolveExisting resolves symlinks in the longest existing prefix of an
// absolute path and re-appends the remainder.
func resolveExisting(absPath string) string {
	if resolved, err := filepath.EvalSymlinks(absPath); err == nil {
		return resolved
	}
	for dir := filepath.Dir(absPath); ; dir = filepath.Dir(dir) {
		if resolved, err := filepath.EvalSymlinks(dir); err == nil {
			rest, _ := filepath.Rel(dir, absPath)
			return filepath.Join(resolved, rest)
		}
		if filepath.Dir(dir) == dir {
			return absPath
		}
	}
}

// ValidateExtension checks filePath's extension, case-insensitively, against
// allowed (each written with its leading dot).
func ValidateExtension(filePath string, allowed ...string) error {
	ext := strings.ToLower(filepath.Ext(filePath))
	if slices.Contains(allowed, ext) {
		return nil
	}
	return fmt.Errorf("%w: %q (want one of %v)", ErrExtensionNotAllowed, ext, allowed)
}
