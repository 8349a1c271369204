package svg2hass

import (
	"bytes"
	"context"
	"log"
	"path/filepath"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeEditor stands in for Inkscape. Normalize replaces the staged file
// with the canned output for its base name, if any.
type fakeEditor struct {
	fs         afero.Fs
	banner     string
	normalized map[string]string
	fail       map[string]bool
	calls      []string
}

func (e *fakeEditor) Version(context.Context) (string, error) {
	return e.banner, nil
}

func (e *fakeEditor) Normalize(_ context.Context, path string) error {
	base := filepath.Base(path)
	e.calls = append(e.calls, base)
	if e.fail[base] {
		return &EditorError{Args: []string{"inkscape", path}, ExitCode: 1}
	}
	if out, ok := e.normalized[base]; ok {
		return afero.WriteFile(e.fs, path, []byte(out), 0o644)
	}
	return nil
}

const testTemplate = `window.customIconsets = window.customIconsets || {};
const ICONS = {
PLACEHOLDER_ICON_LIST};
window.customIconsets["PLACEHOLDER_ICONSET_NAME"] = async (name) => ({ path: ICONS[name], viewBox: "PLACEHOLDER_VIEW_BOX" });
`

func svgDoc(body string) string {
	return `<svg xmlns="http://www.w3.org/2000/svg" viewBox="50 50 260 260">` + body + `</svg>`
}

type fixture struct {
	fs     afero.Fs
	editor *fakeEditor
	conv   *Converter
	logs   *bytes.Buffer
}

func newFixture(t *testing.T, sources map[string]string) *fixture {
	t.Helper()
	fs := afero.NewMemMapFs()
	cfg := DefaultConfig()
	cfg.Src = "/icons/raw_svg"
	cfg.Work = "/build/svg"
	cfg.Template = "/build/js.template"
	cfg.Out = "/dist/ha-knx-uf-iconset.js"
	for name, content := range sources {
		require.NoError(t, afero.WriteFile(fs, filepath.Join(cfg.Src, name), []byte(content), 0o644))
	}
	require.NoError(t, afero.WriteFile(fs, cfg.Template, []byte(testTemplate), 0o644))
	editor := &fakeEditor{fs: fs, banner: "Inkscape 1.0.1 (3bc2e813f5, 2020-09-07)\n"}
	logs := &bytes.Buffer{}
	return &fixture{
		fs:     fs,
		editor: editor,
		logs:   logs,
		conv: &Converter{
			Config: cfg,
			Editor: editor,
			Fs:     fs,
			Logger: log.New(logs, "", 0),
		},
	}
}

func (f *fixture) output(t *testing.T) string {
	t.Helper()
	data, err := afero.ReadFile(f.fs, f.conv.Config.Out)
	require.NoError(t, err)
	return string(data)
}

func (f *fixture) outputExists(t *testing.T) bool {
	t.Helper()
	ok, err := afero.Exists(f.fs, f.conv.Config.Out)
	require.NoError(t, err)
	return ok
}

func TestRunWritesSortedIconSet(t *testing.T) {
	f := newFixture(t, map[string]string{
		"b.svg":      svgDoc(`<path d="M 2,2 L 3,3 Z"/>`),
		"a.svg":      svgDoc(`<path d="M 1,1` + "\n\t" + `L 2,2 Z"/>`),
		"c.svg":      svgDoc(`<path d="M 3,3 Z"/><path d="M 4,4 Z"/>`),
		"readme.txt": "not an icon",
	})
	require.NoError(t, f.conv.Run(context.Background()))

	out := f.output(t)
	assert.Contains(t, out, "const ICONS = {\n"+
		"\t'a': 'M 1,1 L 2,2 Z',\n"+
		"\t'b': 'M 2,2 L 3,3 Z',\n"+
		"\t'c': 'M 3,3 Z M 4,4 Z',\n"+
		"};\n")
	assert.Contains(t, out, `window.customIconsets["kuf"]`)
	assert.Contains(t, out, `viewBox: "50 50 260 260"`)
	assert.NotContains(t, out, "PLACEHOLDER_")
	assert.Equal(t, []string{"a.svg", "b.svg", "c.svg"}, f.editor.calls)

	staged, err := afero.Exists(f.fs, "/build/svg/a.svg")
	require.NoError(t, err)
	assert.True(t, staged, "staged copy missing from work dir")
	assert.Contains(t, f.logs.String(), "File c.svg contains multiple paths: count=2, combining them")
}

func TestRunUsesNormalizedFile(t *testing.T) {
	f := newFixture(t, map[string]string{
		"lamp.svg": svgDoc(`<g><rect width="1" height="1"/></g>`),
	})
	f.editor.normalized = map[string]string{
		"lamp.svg": svgDoc(`<path d="M 0,0 H 1 V 1 H 0 Z"/>`),
	}
	require.NoError(t, f.conv.Run(context.Background()))
	assert.Contains(t, f.output(t), "\t'lamp': 'M 0,0 H 1 V 1 H 0 Z',\n")

	src, err := afero.ReadFile(f.fs, "/icons/raw_svg/lamp.svg")
	require.NoError(t, err)
	assert.NotContains(t, string(src), "<path", "source file must not be modified")
}

func TestRunSkipsHiddenGroups(t *testing.T) {
	for _, kind := range []string{ExtractRegex, ExtractXML} {
		t.Run(kind, func(t *testing.T) {
			f := newFixture(t, map[string]string{
				"garage_door.svg": svgDoc(`<path d="M 1 1 Z"/><g style="display:none"><path d="M 9 9 Z"/></g>`),
			})
			f.conv.Config.Extractor = kind
			require.NoError(t, f.conv.Run(context.Background()))
			out := f.output(t)
			assert.Contains(t, out, "\t'garage_door': 'M 1 1 Z',\n")
			assert.NotContains(t, out, "M 9 9 Z")
		})
	}
}

func TestRunCircleFallback(t *testing.T) {
	f := newFixture(t, map[string]string{
		"audio_rec.svg": svgDoc(`<circle cx="181.333" cy="180.167" r="63.5"/>`),
	})
	require.NoError(t, f.conv.Run(context.Background()))
	assert.Contains(t, f.output(t),
		"\t'audio_rec': 'M 117.833 180.167 a 63.5 63.5 0 1 0 127 0 a 63.5 63.5 0 1 0 -127 0',\n")
	assert.Contains(t, f.logs.String(), "using hardcoded circle path")
}

func TestRunNoPathAborts(t *testing.T) {
	f := newFixture(t, map[string]string{
		"a.svg":     svgDoc(`<path d="M 1 1 Z"/>`),
		"empty.svg": svgDoc(`<circle r="3"/>`),
	})
	err := f.conv.Run(context.Background())
	assert.ErrorIs(t, err, ErrNoPath)
	var fileErr *FileError
	require.ErrorAs(t, err, &fileErr)
	assert.Equal(t, "empty.svg", fileErr.Name)
	assert.False(t, f.outputExists(t), "output must not be written when a file fails")
}

func TestRunEditorFailureAborts(t *testing.T) {
	f := newFixture(t, map[string]string{
		"a.svg": svgDoc(`<path d="M 1 1 Z"/>`),
		"b.svg": svgDoc(`<path d="M 1 1 Z"/>`),
		"c.svg": svgDoc(`<path d="M 1 1 Z"/>`),
	})
	f.editor.fail = map[string]bool{"b.svg": true}
	err := f.conv.Run(context.Background())
	var editorErr *EditorError
	assert.ErrorAs(t, err, &editorErr)
	assert.Equal(t, []string{"a.svg", "b.svg"}, f.editor.calls, "run should stop at the failing file")
	assert.False(t, f.outputExists(t), "output must not be written when the editor fails")
}

func TestRunVersionTooOld(t *testing.T) {
	f := newFixture(t, map[string]string{"a.svg": svgDoc(`<path d="M 1 1 Z"/>`)})
	f.editor.banner = "Inkscape 0.92.4 (5da689c313, 2019-01-14)"
	assert.ErrorIs(t, f.conv.Run(context.Background()), ErrEditorVersion)
	assert.Empty(t, f.editor.calls, "no file should be normalized with an old editor")
}

func TestRunVersionWithoutPatch(t *testing.T) {
	f := newFixture(t, map[string]string{"a.svg": svgDoc(`<path d="M 1 1 Z"/>`)})
	f.editor.banner = "Inkscape 1.2 (dc2aeda, 2022-05-15)"
	assert.ErrorIs(t, f.conv.Run(context.Background()), ErrEditorVersion)
	assert.Empty(t, f.editor.calls)
	assert.False(t, f.outputExists(t))
}

func TestRunInvalidPathData(t *testing.T) {
	tests := []struct {
		name, body, msg string
	}{
		{"escaped quote", `<path d="M 1 1 L 2 \&quot; 3"/>`, "invalid number"},
		{"empty d", `<path d=""/>`, "empty path data"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, map[string]string{"a.svg": svgDoc(tt.body)})
			err := f.conv.Run(context.Background())
			var fileErr *FileError
			require.ErrorAs(t, err, &fileErr)
			assert.Equal(t, "validate", fileErr.Op)
			assert.ErrorContains(t, err, tt.msg)
			assert.False(t, f.outputExists(t))
		})
	}
}

func TestRunMissingPlaceholder(t *testing.T) {
	f := newFixture(t, map[string]string{"a.svg": svgDoc(`<path d="M 1 1 Z"/>`)})
	require.NoError(t, afero.WriteFile(f.fs, f.conv.Config.Template, []byte("PLACEHOLDER_ICON_LIST"), 0o644))
	assert.ErrorIs(t, f.conv.Run(context.Background()), ErrPlaceholder)
}

func TestRunMissingTemplate(t *testing.T) {
	f := newFixture(t, map[string]string{"a.svg": svgDoc(`<path d="M 1 1 Z"/>`)})
	f.conv.Config.Template = "/nope/js.template"
	assert.ErrorContains(t, f.conv.Run(context.Background()), "read template")
}

func TestRunDuplicateNames(t *testing.T) {
	f := newFixture(t, map[string]string{
		"GarageDoor.svg":  svgDoc(`<path d="M 1 1 Z"/>`),
		"garage_door.svg": svgDoc(`<path d="M 2 2 Z"/>`),
	})
	f.conv.Config.Case = CaseSnake
	assert.ErrorContains(t, f.conv.Run(context.Background()), `duplicate icon name "garage_door"`)
}

func TestRunWritesIVG(t *testing.T) {
	f := newFixture(t, map[string]string{
		"a.svg": svgDoc(`<path d="M 60 60 L 300 60 L 300 300 Z"/>`),
	})
	f.conv.Config.IVGDir = "/dist/ivg"
	require.NoError(t, f.conv.Run(context.Background()))
	data, err := afero.ReadFile(f.fs, "/dist/ivg/a.ivg")
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, []byte("\x89IVG")), "not an IconVG file")
}

func TestDiscover(t *testing.T) {
	fs := afero.NewMemMapFs()
	for _, name := range []string{"b.svg", "a.svg", "a.SVG", "notes.md"} {
		require.NoError(t, afero.WriteFile(fs, "/src/"+name, nil, 0o644))
	}
	require.NoError(t, fs.MkdirAll("/src/dir.svg", 0o755))
	require.NoError(t, fs.MkdirAll("/empty", 0o755))

	files, err := Discover(fs, "/src", ".svg")
	require.NoError(t, err)
	assert.Equal(t, []string{"/src/a.svg", "/src/b.svg"}, files)

	_, err = Discover(fs, "/missing", ".svg")
	assert.ErrorContains(t, err, "read source dir")

	_, err = Discover(fs, "/empty", ".svg")
	assert.ErrorContains(t, err, "no *.svg files in /empty")

	_, err = Discover(fs, "/src", ".png")
	assert.ErrorContains(t, err, "no *.png files in /src")
}

func TestStageOverwrites(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/src/a.svg", []byte("new"), 0o644))
	require.NoError(t, afero.WriteFile(fs, "/work/a.svg", []byte("stale and longer"), 0o644))
	require.NoError(t, Stage(fs, "/src/a.svg", "/work/a.svg"))
	data, err := afero.ReadFile(fs, "/work/a.svg")
	require.NoError(t, err)
	assert.Equal(t, "new", string(data))
}
