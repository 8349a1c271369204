package svg2hass

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/caarlos0/env/v11"
)

// Config holds everything a conversion run needs.
type Config struct {
	Src          string            `toml:"src" env:"SVG2HASS_SRC"`
	Work         string            `toml:"work" env:"SVG2HASS_WORK"`
	Template     string            `toml:"template" env:"SVG2HASS_TEMPLATE"`
	Out          string            `toml:"out" env:"SVG2HASS_OUT"`
	Inkscape     string            `toml:"inkscape" env:"SVG2HASS_INKSCAPE"`
	InkscapeName string            `toml:"inkscape_name" env:"SVG2HASS_INKSCAPE_NAME"`
	MinMajor     int               `toml:"min_major" env:"SVG2HASS_MIN_MAJOR"`
	Ungroup      int               `toml:"ungroup" env:"SVG2HASS_UNGROUP"`
	Name         string            `toml:"name" env:"SVG2HASS_NAME"`
	ViewBox      string            `toml:"viewbox" env:"SVG2HASS_VIEWBOX"`
	Ext          string            `toml:"ext" env:"SVG2HASS_EXT"`
	Extractor    string            `toml:"extractor" env:"SVG2HASS_EXTRACTOR"`
	Case         string            `toml:"case" env:"SVG2HASS_CASE"`
	IVGDir       string            `toml:"ivg_dir" env:"SVG2HASS_IVG_DIR"`
	Fallbacks    map[string]Circle `toml:"fallback"`
}

// DefaultConfig returns the settings used to build the KNX UF icon set.
func DefaultConfig() Config {
	return Config{
		Src:          "../../knx-uf-iconset/raw_svg",
		Work:         "svg",
		Template:     "js.template",
		Out:          "../dist/ha-knx-uf-iconset.js",
		Inkscape:     "inkscape",
		InkscapeName: "Inkscape",
		MinMajor:     1,
		Ungroup:      10,
		Name:         "kuf",
		ViewBox:      "50 50 260 260",
		Ext:          ".svg",
		Extractor:    ExtractRegex,
		Case:         CaseNone,
		Fallbacks:    DefaultFallbacks(),
	}
}

func bindFlags(fs *flag.FlagSet, cfg *Config) {
	fs.StringVar(&cfg.Src, "src", cfg.Src, "directory holding the source icons")
	fs.StringVar(&cfg.Work, "work", cfg.Work, "scratch directory for normalized icons")
	fs.StringVar(&cfg.Template, "template", cfg.Template, "javascript template")
	fs.StringVar(&cfg.Out, "out", cfg.Out, "generated icon set")
	fs.StringVar(&cfg.Inkscape, "inkscape", cfg.Inkscape, "inkscape executable")
	fs.StringVar(&cfg.InkscapeName, "inkscape-name", cfg.InkscapeName, "product name in the version banner")
	fs.IntVar(&cfg.MinMajor, "min-major", cfg.MinMajor, "minimum inkscape major version")
	fs.IntVar(&cfg.Ungroup, "ungroup", cfg.Ungroup, "number of ungroup passes")
	fs.StringVar(&cfg.Name, "name", cfg.Name, "icon set name")
	fs.StringVar(&cfg.ViewBox, "viewbox", cfg.ViewBox, "view box shared by all icons")
	fs.StringVar(&cfg.Ext, "ext", cfg.Ext, "source icon file extension")
	fs.StringVar(&cfg.Extractor, "extractor", cfg.Extractor, "path extractor: regex or xml")
	fs.StringVar(&cfg.Case, "case", cfg.Case, "icon name case: none, snake or kebab")
	fs.StringVar(&cfg.IVGDir, "ivg-dir", cfg.IVGDir, "also write an IconVG file per icon to this directory")
}

// ParseConfig builds a Config from, in increasing precedence, the defaults,
// a TOML file named by -config or SVG2HASS_CONFIG, SVG2HASS_* environment
// variables and the remaining flags.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	scratch := DefaultConfig()
	var path string
	fs.StringVar(&path, "config", os.Getenv("SVG2HASS_CONFIG"), "TOML configuration file")
	bindFlags(fs, &scratch)
	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}
	if fs.NArg() != 0 {
		return Config{}, fmt.Errorf("unexpected arguments: %s", strings.Join(fs.Args(), " "))
	}

	cfg := DefaultConfig()
	if path != "" {
		if err := LoadConfigFile(path, &cfg); err != nil {
			return Config{}, err
		}
	}
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}

	// Flags given on the command line win over the file and environment.
	var set []string
	fs.Visit(func(f *flag.Flag) {
		if f.Name != "config" {
			set = append(set, "-"+f.Name+"="+f.Value.String())
		}
	})
	override := flag.NewFlagSet(fs.Name(), flag.ContinueOnError)
	bindFlags(override, &cfg)
	if err := override.Parse(set); err != nil {
		return Config{}, err
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// LoadConfigFile decodes the TOML file at path over cfg. Unknown keys are
// rejected.
func LoadConfigFile(path string, cfg *Config) error {
	md, err := toml.DecodeFile(path, cfg)
	if err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return fmt.Errorf("parse config %s: unknown keys %s", path, strings.Join(keys, ", "))
	}
	return nil
}

// Validate reports the first invalid setting.
func (c Config) Validate() error {
	for _, f := range []struct{ name, value string }{
		{"src", c.Src},
		{"work", c.Work},
		{"template", c.Template},
		{"out", c.Out},
		{"inkscape", c.Inkscape},
		{"inkscape-name", c.InkscapeName},
		{"name", c.Name},
	} {
		if strings.TrimSpace(f.value) == "" {
			return fmt.Errorf("%s is required", f.name)
		}
	}
	if c.Ungroup <= 0 {
		return errors.New("ungroup must be greater than zero")
	}
	if !strings.HasPrefix(c.Ext, ".") || len(c.Ext) < 2 {
		return fmt.Errorf("ext %q must start with a dot", c.Ext)
	}
	if _, err := ParseViewBox(c.ViewBox); err != nil {
		return err
	}
	if _, ok := NewExtractor(c.Extractor); !ok {
		return fmt.Errorf("unknown extractor %q", c.Extractor)
	}
	if _, err := IconName("", c.Case); err != nil {
		return err
	}
	for name, f := range c.Fallbacks {
		if f.R <= 0 {
			return fmt.Errorf("fallback %q needs a positive radius", name)
		}
	}
	return nil
}
