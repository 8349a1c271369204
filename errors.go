package svg2hass

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrEditorVersion is returned when the editor version can't be parsed
	// or is older than required.
	ErrEditorVersion = errors.New("unsupported editor version")
	// ErrNoPath is returned when a normalized icon contains no path data.
	ErrNoPath = errors.New("no path found")
	// ErrPlaceholder is returned when the template lacks a placeholder.
	ErrPlaceholder = errors.New("missing template placeholder")
)

// FileError records the icon file and step that failed.
type FileError struct {
	Name string
	Op   string
	Err  error
}

func (e *FileError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Name, e.Err)
}

func (e *FileError) Unwrap() error { return e.Err }

// EditorError is returned when the editor exits with a non-zero status.
type EditorError struct {
	Args     []string
	ExitCode int
	Stderr   string
}

func (e *EditorError) Error() string {
	msg := fmt.Sprintf("editor %s exited with status %d", strings.Join(e.Args, " "), e.ExitCode)
	if s := strings.TrimSpace(e.Stderr); s != "" {
		msg += ": " + s
	}
	return msg
}
