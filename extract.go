package svg2hass

import (
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/beevik/etree"
)

// Extractor kinds accepted by NewExtractor.
const (
	ExtractRegex = "regex"
	ExtractXML   = "xml"
)

// Extractor pulls raw path data fragments out of a normalized SVG document.
type Extractor interface {
	Extract(svg []byte) ([]string, error)
}

// NewExtractor returns the extractor registered under kind ("regex" or "xml").
func NewExtractor(kind string) (Extractor, bool) {
	switch kind {
	case "", ExtractRegex:
		return RegexExtractor{}, true
	case ExtractXML:
		return XMLExtractor{}, true
	}
	return nil, false
}

var (
	// hiddenGroupRe matches <g ... style="...display:none..."> ... </g>
	// blocks, e.g. the car inside the garage_door icons.
	hiddenGroupRe = regexp.MustCompile(`(?is)<g[^>]*style="[^"]*display\s*:\s*none[^"]*"[^>]*>.*?</g>`)
	pathDataRe    = regexp.MustCompile(`\bd="([^"]*)"`)
	displayNoneRe = regexp.MustCompile(`(?i)display\s*:\s*none`)
)

// RegexExtractor finds d="..." attributes by pattern matching on the raw
// text. Hidden groups are cut out first. Nested groups inside a hidden group
// end the match at the first closing tag.
type RegexExtractor struct{}

// StripHidden removes every group whose inline style sets display:none.
func StripHidden(svg string) string {
	return hiddenGroupRe.ReplaceAllString(svg, "")
}

func (RegexExtractor) Extract(svg []byte) ([]string, error) {
	content := StripHidden(string(svg))
	var paths []string
	for _, m := range pathDataRe.FindAllStringSubmatch(content, -1) {
		paths = append(paths, m[1])
	}
	return paths, nil
}

// XMLExtractor parses the document and collects the d attribute of every
// element in document order, skipping any element hidden with
// display:none along with its children.
type XMLExtractor struct{}

func (XMLExtractor) Extract(svg []byte) ([]string, error) {
	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(svg); err != nil {
		return nil, err
	}
	var paths []string
	var walk func(e *etree.Element)
	walk = func(e *etree.Element) {
		for _, a := range e.Attr {
			if strings.EqualFold(a.Key, "style") && displayNoneRe.MatchString(a.Value) {
				return
			}
		}
		for _, a := range e.Attr {
			if a.Space == "" && a.Key == "d" {
				paths = append(paths, a.Value)
			}
		}
		for _, c := range e.ChildElements() {
			walk(c)
		}
	}
	if root := doc.Root(); root != nil {
		walk(root)
	}
	return paths, nil
}

// JoinPaths combines path fragments into a single compound path and folds
// all runs of whitespace into single spaces. Disjoint sub paths rely on the
// renderer's fill rule.
func JoinPaths(paths []string) string {
	return CleanPath(strings.Join(paths, " "))
}

// CleanPath removes newlines, tabs and repeated spaces from path data.
func CleanPath(d string) string {
	return strings.Join(strings.Fields(d), " ")
}

// CirclePath returns a full circle as two half circle relative arcs.
// A single arc can't be used as its start and end points would coincide.
func CirclePath(cx, cy, r float64) string {
	return "M " + formatCoord(cx-r) + " " + formatCoord(cy) +
		" a " + formatCoord(r) + " " + formatCoord(r) + " 0 1 0 " + formatCoord(2*r) + " 0" +
		" a " + formatCoord(r) + " " + formatCoord(r) + " 0 1 0 " + formatCoord(-2*r) + " 0"
}

func formatCoord(v float64) string {
	return strconv.FormatFloat(math.Round(v*1000)/1000, 'f', -1, 64)
}

// Circle is the replacement geometry for an icon whose normalized file has
// no path.
type Circle struct {
	CX float64 `toml:"cx"`
	CY float64 `toml:"cy"`
	R  float64 `toml:"r"`
}

// Path returns the circle as path data.
func (c Circle) Path() string {
	return CirclePath(c.CX, c.CY, c.R)
}

// DefaultFallbacks covers audio_rec, whose circle is not converted by
// ObjectToPath.
func DefaultFallbacks() map[string]Circle {
	return map[string]Circle{
		"audio_rec": {CX: 181.333, CY: 180.167, R: 63.5},
	}
}
