// Package safepath confines destination paths to a base directory and
// sanitizes volume names for use in backup folder names.
package safepath

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

// ErrEscapesRoot is returned when a resolved path falls outside the base
// directory.
var ErrEscapesRoot = errors.New("path escapes base directory")

// EscapeError describes a relative path that resolved outside its base.
type EscapeError struct {
	Rel      string
	Resolved string
	Base     string
}

func (e *EscapeError) Error() string {
	return fmt.Sprintf("path %q resolves to %q outside %q", e.Rel, e.Resolved, e.Base)
}

func (e *EscapeError) Unwrap() error { return ErrEscapesRoot }

// Resolve joins rel to base and guarantees the result stays inside base.
// rel may be arbitrary input: parent-directory segments, drive-letter
// prefixes, and leading separators (either flavor) are stripped before
// joining. The joined path is canonicalized, following symlinks for the
// portion that exists, and checked for containment. Returns the resolved
// absolute path, or an EscapeError if it still lands outside base.
func Resolve(base, rel string) (string, error) {
	segs := usableSegments(rel)
	if len(segs) == 0 {
		return "", &EscapeError{Rel: rel, Resolved: "", Base: base}
	}

	absBase, err := filepath.Abs(base)
	if err != nil {
		return "", fmt.Errorf("resolve base %s: %w", base, err)
	}
	realBase, err := filepath.EvalSymlinks(absBase)
	if err != nil {
		return "", fmt.Errorf("resolve base %s: %w", base, err)
	}

	candidate := filepath.Clean(filepath.Join(realBase, filepath.Join(segs...)))

	// The target usually does not exist yet; canonicalize the longest
	// existing prefix so symlinks inside base cannot smuggle the write out.
	resolved, err := resolveExisting(candidate)
	if err != nil {
		return "", fmt.Errorf("resolve %s: %w", candidate, err)
	}

	prefix := realBase + string(filepath.Separator)
	if resolved != realBase && !strings.HasPrefix(resolved, prefix) {
		return "", &EscapeError{Rel: rel, Resolved: resolved, Base: realBase}
	}

	return resolved, nil
}

// usableSegments splits rel on both separator flavors and drops everything
// that could redirect the join: empty and dot segments, parent references,
// and drive-letter prefixes such as "C:".
func usableSegments(rel string) []string {
	normalized := strings.ReplaceAll(rel, `\`, "/")

	var segs []string
	for _, seg := range strings.Split(normalized, "/") {
		switch {
		case seg == "" || seg == "." || seg == "..":
			continue
		case isDrivePrefix(seg):
			continue
		default:
			segs = append(segs, seg)
		}
	}
	return segs
}

func isDrivePrefix(seg string) bool {
	if len(seg) != 2 || seg[1] != ':' {
		return false
	}
	c := seg[0]
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

// resolveExisting canonicalizes the longest existing prefix of path and
// reattaches the not-yet-created suffix.
func resolveExisting(path string) (string, error) {
	resolved, err := filepath.EvalSymlinks(path)
	if err == nil {
		return resolved, nil
	}

	dir := filepath.Dir(path)
	if dir == path {
		return path, nil
	}

	resolvedDir, err := resolveExisting(dir)
	if err != nil {
		return "", err
	}
	return filepath.Join(resolvedDir, filepath.Base(path)), nil
}
