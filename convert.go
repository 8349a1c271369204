package svg2hass

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"
)

// Converter turns a directory of icons into a javascript icon set.
type Converter struct {
	Config Config
	Editor Editor
	Fs     afero.Fs
	Logger *log.Logger
}

// NewConverter returns a Converter working on the OS filesystem with
// Inkscape as the editor.
func NewConverter(cfg Config, logger *log.Logger) *Converter {
	return &Converter{
		Config: cfg,
		Editor: NewInkscape(cfg.Inkscape, cfg.Ungroup),
		Fs:     afero.NewOsFs(),
		Logger: logger,
	}
}

func (c *Converter) logf(format string, args ...interface{}) {
	if c.Logger != nil {
		c.Logger.Printf(format, args...)
	}
}

// Run converts every icon and writes the icon set. Nothing is written to
// the output unless all icons convert.
func (c *Converter) Run(ctx context.Context) error {
	set, err := c.Convert(ctx)
	if err != nil {
		return err
	}
	if c.Config.IVGDir != "" {
		if err := c.WriteIVG(set); err != nil {
			return err
		}
	}
	return c.WriteIconSet(set)
}

// Convert checks the editor, then normalizes and extracts every source icon.
func (c *Converter) Convert(ctx context.Context) (IconSet, error) {
	cfg := c.Config
	v, err := CheckVersion(ctx, c.Editor, cfg.InkscapeName, cfg.MinMajor)
	if err != nil {
		return nil, err
	}
	c.logf("Using %s %s", cfg.InkscapeName, v)

	extractor, ok := NewExtractor(cfg.Extractor)
	if !ok {
		return nil, fmt.Errorf("unknown extractor %q", cfg.Extractor)
	}

	files, err := Discover(c.Fs, cfg.Src, cfg.Ext)
	if err != nil {
		return nil, err
	}
	if err := c.Fs.MkdirAll(cfg.Work, 0o755); err != nil {
		return nil, fmt.Errorf("create work dir: %w", err)
	}

	set := IconSet{}
	for _, src := range files {
		stem := strings.TrimSuffix(filepath.Base(src), filepath.Ext(src))
		c.logf("Processing %s", stem)
		name, err := IconName(stem, cfg.Case)
		if err != nil {
			return nil, err
		}
		path, err := c.convertFile(ctx, extractor, src)
		if err != nil {
			return nil, err
		}
		if err := set.Add(name, path); err != nil {
			return nil, &FileError{Name: filepath.Base(src), Op: "add", Err: err}
		}
	}
	return set, nil
}

func (c *Converter) convertFile(ctx context.Context, extractor Extractor, src string) (string, error) {
	base := filepath.Base(src)
	dest := filepath.Join(c.Config.Work, base)
	if err := Stage(c.Fs, src, dest); err != nil {
		return "", &FileError{Name: base, Op: "stage", Err: err}
	}
	if err := c.Editor.Normalize(ctx, dest); err != nil {
		return "", &FileError{Name: base, Op: "normalize", Err: err}
	}
	data, err := afero.ReadFile(c.Fs, dest)
	if err != nil {
		return "", &FileError{Name: base, Op: "read", Err: err}
	}
	paths, err := extractor.Extract(data)
	if err != nil {
		return "", &FileError{Name: base, Op: "extract", Err: err}
	}

	var d string
	switch stem := strings.TrimSuffix(base, filepath.Ext(base)); {
	case len(paths) == 0:
		circle, ok := c.Config.Fallbacks[stem]
		if !ok {
			return "", &FileError{Name: base, Op: "extract", Err: ErrNoPath}
		}
		c.logf("File %s contains no path, using hardcoded circle path", base)
		d = circle.Path()
	case len(paths) > 1:
		c.logf("File %s contains multiple paths: count=%d, combining them", base, len(paths))
		fallthrough
	default:
		d = JoinPaths(paths)
	}

	if err := ValidatePathData(d); err != nil {
		return "", &FileError{Name: base, Op: "validate", Err: err}
	}
	return d, nil
}

// Discover lists the regular files in dir with the extension ext, sorted by
// name.
func Discover(fs afero.Fs, dir, ext string) ([]string, error) {
	infos, err := afero.ReadDir(fs, dir)
	if err != nil {
		return nil, fmt.Errorf("read source dir: %w", err)
	}
	var files []string
	for _, info := range infos {
		if info.Mode().IsRegular() && filepath.Ext(info.Name()) == ext {
			files = append(files, filepath.Join(dir, info.Name()))
		}
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no *%s files in %s", ext, dir)
	}
	return files, nil
}

// Stage copies src to dest, replacing whatever dest held before.
func Stage(fs afero.Fs, src, dest string) error {
	in, err := fs.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := fs.OpenFile(dest, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}

// WriteIconSet renders the template with set and writes the output file.
func (c *Converter) WriteIconSet(set IconSet) error {
	tmpl, err := afero.ReadFile(c.Fs, c.Config.Template)
	if err != nil {
		return fmt.Errorf("read template: %w", err)
	}
	js, err := Render(string(tmpl), c.Config.Name, c.Config.ViewBox, set)
	if err != nil {
		return fmt.Errorf("render %s: %w", c.Config.Template, err)
	}
	if err := writeFile(c.Fs, c.Config.Out, []byte(js)); err != nil {
		return fmt.Errorf("write icon set: %w", err)
	}
	c.logf("Wrote %d icons to %s", len(set), c.Config.Out)
	return nil
}

// WriteIVG writes <name>.ivg for every icon of set into the IVG directory.
func (c *Converter) WriteIVG(set IconSet) error {
	vb, err := ParseViewBox(c.Config.ViewBox)
	if err != nil {
		return err
	}
	for _, name := range set.Names() {
		data, err := EncodeIVG(set[name], vb)
		if err != nil {
			return &FileError{Name: name, Op: "encode ivg", Err: err}
		}
		if err := writeFile(c.Fs, filepath.Join(c.Config.IVGDir, name+".ivg"), data); err != nil {
			return &FileError{Name: name, Op: "write ivg", Err: err}
		}
	}
	return nil
}

func writeFile(fs afero.Fs, path string, data []byte) error {
	if err := fs.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return afero.WriteFile(fs, path, data, 0o644)
}
