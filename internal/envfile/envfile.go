package envfile

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/mmr-tortoise/stackup/internal/model"
)

// File is an env file held as raw lines. Lines are kept verbatim so that
// a Save after a single Set reproduces the original file with only the
// touched entry rewritten.
type File struct {
	// path is the location the file was loaded from and will be saved to.
	path string

	// lines holds the file content split on newlines, without the line
	// terminators. An absent file loads as an empty slice.
	lines []string
}

// Load reads the env file at path. A missing file is not an error — it
// loads as an empty File, matching the seeding behavior where the first
// Set/Save creates it. Any other read failure is a ConfigError.
func Load(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &File{path: path}, nil
		}
		return nil, model.WrapCLIError(
			model.ExitConfigError,
			fmt.Sprintf("failed to read env file %s", path),
			err,
		)
	}

	// Split on newlines, dropping a single trailing newline so that
	// Save's join-plus-newline round-trips the file byte-for-byte.
	content := strings.TrimSuffix(string(data), "\n")
	f := &File{path: path}
	if content != "" {
		f.lines = strings.Split(content, "\n")
	}
	return f, nil
}

// Path returns the filesystem location this File loads from and saves to.
func (f *File) Path() string {
	return f.path
}

// Get returns the value of the first KEY=VALUE entry matching key.
// Comment lines, blank lines, and lines without "=" are skipped.
// The boolean reports whether the key was found at all.
func (f *File) Get(key string) (string, bool) {
	for _, line := range f.lines {
		k, v, ok := splitEntry(line)
		if ok && k == key {
			return v, true
		}
	}
	return "", false
}

// Set updates the first entry matching key to "key=value", or appends a
// new entry at the end of the file when the key is absent. It returns
// true if the file content actually changed, false when the entry
// already held exactly the requested assignment.
//
// The replacement rewrites the whole line as a plain "key=value"
// assignment; surrounding lines are untouched.
func (f *File) Set(key, value string) bool {
	assignment := key + "=" + value

	for i, line := range f.lines {
		k, _, ok := splitEntry(line)
		if !ok || k != key {
			continue
		}
		if strings.TrimSpace(line) == assignment {
			// Already up to date — no rewrite needed. This is the
			// idempotent path that keeps repeated runs from touching
			// the file's mtime.
			return false
		}
		f.lines[i] = assignment
		return true
	}

	f.lines = append(f.lines, assignment)
	return true
}

// Save writes the file atomically: the content goes to a temp file in
// the target directory, which is then renamed over the destination.
// rename(2) is atomic on POSIX filesystems, so a concurrent reader sees
// either the previous content or the new content in full.
func (f *File) Save() error {
	dir := filepath.Dir(f.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return model.WrapCLIError(
			model.ExitConfigError,
			fmt.Sprintf("failed to create directory %s", dir),
			err,
		)
	}

	// The temp file must live in the same directory as the target:
	// rename across filesystems is not atomic (and often not possible).
	tmp, err := os.CreateTemp(dir, filepath.Base(f.path)+".tmp-*")
	if err != nil {
		return model.WrapCLIError(
			model.ExitConfigError,
			fmt.Sprintf("failed to create temp file in %s", dir),
			err,
		)
	}
	tmpPath := tmp.Name()

	content := strings.Join(f.lines, "\n") + "\n"
	if len(f.lines) == 0 {
		content = ""
	}

	if _, err := tmp.WriteString(content); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
		return model.WrapCLIError(
			model.ExitConfigError,
			fmt.Sprintf("failed to write env file %s", f.path),
			err,
		)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return model.WrapCLIError(
			model.ExitConfigError,
			fmt.Sprintf("failed to write env file %s", f.path),
			err,
		)
	}

	// CreateTemp uses 0600; env files are conventionally world-readable
	// like the template they were seeded from.
	if err := os.Chmod(tmpPath, 0o644); err != nil {
		_ = os.Remove(tmpPath)
		return model.WrapCLIError(
			model.ExitConfigError,
			fmt.Sprintf("failed to set permissions on %s", f.path),
			err,
		)
	}

	if err := os.Rename(tmpPath, f.path); err != nil {
		_ = os.Remove(tmpPath)
		return model.WrapCLIError(
			model.ExitConfigError,
			fmt.Sprintf("failed to replace env file %s", f.path),
			err,
		)
	}
	return nil
}

// EnsureFromTemplate makes sure an env file exists at path, seeding it
// with a verbatim copy of the template when absent. It returns true when
// the file was created. An existing env file is never touched, and a
// missing template while the env file is also missing is a ConfigError.
func EnsureFromTemplate(path, templatePath string) (bool, error) {
	if _, err := os.Stat(path); err == nil {
		return false, nil
	} else if !os.IsNotExist(err) {
		return false, model.WrapCLIError(
			model.ExitConfigError,
			fmt.Sprintf("failed to stat env file %s", path),
			err,
		)
	}

	data, err := os.ReadFile(templatePath)
	if err != nil {
		return false, model.WrapCLIError(
			model.ExitConfigError,
			fmt.Sprintf("env file %s is missing and template %s is unreadable", path, templatePath),
			err,
		)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return false, model.WrapCLIError(
			model.ExitConfigError,
			fmt.Sprintf("failed to create directory for %s", path),
			err,
		)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return false, model.WrapCLIError(
			model.ExitConfigError,
			fmt.Sprintf("failed to seed env file %s from %s", path, templatePath),
			err,
		)
	}
	return true, nil
}

// splitEntry parses a single line as a KEY=VALUE entry. It returns
// ok=false for blank lines, comments, and lines without "=". Keys are
// compared after trimming surrounding whitespace; values are returned
// trimmed as well, matching how docker compose reads env files.
func splitEntry(line string) (key, value string, ok bool) {
	trimmed := strings.TrimSpace(line)
	if trimmed == "" || strings.HasPrefix(trimmed, "#") {
		return "", "", false
	}
	k, v, found := strings.Cut(trimmed, "=")
	if !found {
		return "", "", false
	}
	return strings.TrimSpace(k), strings.TrimSpace(v), true
}
