package svg2hass

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"regexp"
	"strconv"
	"strings"
)

// Editor normalizes icon files in place.
type Editor interface {
	// Version returns the raw version banner of the editor.
	Version(ctx context.Context) (string, error)
	// Normalize rewrites the file at path so that it holds a single path.
	Normalize(ctx context.Context, path string) error
}

// Runner runs an external program and returns its standard output. A
// non-zero exit status is reported as *EditorError.
type Runner func(ctx context.Context, name string, args ...string) ([]byte, error)

// execCommand is swapped out by tests.
var execCommand = exec.CommandContext

func execRunner(ctx context.Context, name string, args ...string) ([]byte, error) {
	var stdout, stderr bytes.Buffer
	cmd := execCommand(ctx, name, args...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	err := cmd.Run()
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return stdout.Bytes(), &EditorError{
			Args:     append([]string{name}, args...),
			ExitCode: exitErr.ExitCode(),
			Stderr:   stderr.String(),
		}
	}
	if err != nil {
		return nil, fmt.Errorf("run %s: %w", name, err)
	}
	return stdout.Bytes(), nil
}

// Inkscape drives the Inkscape command line in batch mode.
type Inkscape struct {
	// Exe is the executable name or path.
	Exe string
	// Ungroup is how many times SelectionUnGroup is applied. Nested groups
	// deeper than this are left intact.
	Ungroup int
	// Run defaults to running Exe with os/exec.
	Run Runner
}

// NewInkscape returns an Inkscape editor using os/exec.
func NewInkscape(exe string, ungroup int) *Inkscape {
	return &Inkscape{Exe: exe, Ungroup: ungroup}
}

func (i *Inkscape) runner() Runner {
	if i.Run != nil {
		return i.Run
	}
	return execRunner
}

// Version calls "inkscape -V", which prints something like
// "Inkscape 1.0.1 (3bc2e813f5, 2020-09-07)".
func (i *Inkscape) Version(ctx context.Context) (string, error) {
	out, err := i.runner()(ctx, i.Exe, "-V")
	if err != nil {
		return "", err
	}
	return string(out), nil
}

// Normalize runs the batch action pipeline on path and saves it in place.
func (i *Inkscape) Normalize(ctx context.Context, path string) error {
	_, err := i.runner()(ctx, i.Exe, "--batch-process", "--actions="+Actions(i.Ungroup), path)
	return err
}

// Actions returns the semicolon separated action list used to normalize
// an icon: select everything, ungroup n times, convert objects and strokes
// to paths, combine all paths into one and save.
func Actions(ungroup int) string {
	var b strings.Builder
	b.WriteString("EditSelectAll; ")
	for n := 0; n < ungroup; n++ {
		b.WriteString("SelectionUnGroup; ")
	}
	b.WriteString("ObjectToPath; StrokeToPath; SelectionCombine; FileSave")
	return b.String()
}

// Version is a parsed editor version.
type Version struct {
	Major, Minor, Patch int
}

func (v Version) String() string {
	return fmt.Sprintf("%d.%d.%d", v.Major, v.Minor, v.Patch)
}

// AtLeast reports whether v has at least the given major version.
func (v Version) AtLeast(major int) bool {
	return v.Major >= major
}

// ParseVersion parses a banner of the form "<name> <major>.<minor>.<patch> (...)".
func ParseVersion(name, banner string) (Version, error) {
	re, err := regexp.Compile(`^` + regexp.QuoteMeta(name) + ` (\d+)\.(\d+)\.(\d+)`)
	if err != nil {
		return Version{}, err
	}
	m := re.FindStringSubmatch(strings.TrimSpace(banner))
	if m == nil {
		return Version{}, fmt.Errorf("%w: can't parse %q", ErrEditorVersion, strings.TrimSpace(banner))
	}
	var parts [3]int
	for i, s := range m[1:] {
		if parts[i], err = strconv.Atoi(s); err != nil {
			return Version{}, fmt.Errorf("%w: %v", ErrEditorVersion, err)
		}
	}
	return Version{Major: parts[0], Minor: parts[1], Patch: parts[2]}, nil
}

// CheckVersion queries the editor and fails unless its major version is at
// least minMajor.
func CheckVersion(ctx context.Context, e Editor, name string, minMajor int) (Version, error) {
	banner, err := e.Version(ctx)
	if err != nil {
		return Version{}, fmt.Errorf("query %s version: %w", name, err)
	}
	v, err := ParseVersion(name, banner)
	if err != nil {
		return Version{}, err
	}
	if !v.AtLeast(minMajor) {
		return v, fmt.Errorf("%w: %s major version should be >= %d, got %s", ErrEditorVersion, name, minMajor, v)
	}
	return v, nil
}
