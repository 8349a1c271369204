package svg2hass

import (
	"fmt"
	"sort"
	"strings"

	"github.com/iancoleman/strcase"
)

// Template placeholders.
const (
	PlaceholderName     = "PLACEHOLDER_ICONSET_NAME"
	PlaceholderViewBox  = "PLACEHOLDER_VIEW_BOX"
	PlaceholderIconList = "PLACEHOLDER_ICON_LIST"
)

// IconSet maps icon names to their path data.
type IconSet map[string]string

// Add records the path of an icon. Names must be unique.
func (s IconSet) Add(name, path string) error {
	if _, ok := s[name]; ok {
		return fmt.Errorf("duplicate icon name %q", name)
	}
	s[name] = path
	return nil
}

// Names returns the icon names in lexical order.
func (s IconSet) Names() []string {
	names := make([]string, 0, len(s))
	for name := range s {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Listing renders the body of a javascript object literal, one
// "\t'name': 'path',\n" line per icon sorted by name.
func (s IconSet) Listing() string {
	var b strings.Builder
	for _, name := range s.Names() {
		fmt.Fprintf(&b, "\t'%s': '%s',\n", jsEscape(name), jsEscape(CleanPath(s[name])))
	}
	return b.String()
}

var jsEscaper = strings.NewReplacer(`\`, `\\`, `'`, `\'`)

func jsEscape(s string) string {
	return jsEscaper.Replace(s)
}

// Render substitutes the icon set name, view box and listing of set into
// tmpl. Every occurrence of a placeholder is replaced and the substituted
// text is not scanned again. A template missing any placeholder is rejected.
func Render(tmpl, name, viewBox string, set IconSet) (string, error) {
	for _, p := range []string{PlaceholderName, PlaceholderViewBox, PlaceholderIconList} {
		if !strings.Contains(tmpl, p) {
			return "", fmt.Errorf("%w %s", ErrPlaceholder, p)
		}
	}
	r := strings.NewReplacer(
		PlaceholderName, name,
		PlaceholderViewBox, viewBox,
		PlaceholderIconList, set.Listing(),
	)
	return r.Replace(tmpl), nil
}

// Key casings for icon names.
const (
	CaseNone  = "none"
	CaseSnake = "snake"
	CaseKebab = "kebab"
)

// IconName derives the key of an icon from its file stem.
func IconName(stem, casing string) (string, error) {
	switch casing {
	case "", CaseNone:
		return stem, nil
	case CaseSnake:
		return strcase.ToSnake(stem), nil
	case CaseKebab:
		return strcase.ToKebab(stem), nil
	}
	return "", fmt.Errorf("unknown name case %q", casing)
}
