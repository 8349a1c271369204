// Package svg2hass converts a directory of SVG icons into a single
// javascript icon set for the Home Assistant custom icon loader.
//
// Every icon is normalized by Inkscape in batch mode (ungroup, object to
// path, stroke to path, combine) so that it is left with a single path. The
// path data is then pulled out of the normalized file and written, together
// with the icon set name and view box, into a javascript template.
//
// Home Assistant can only draw a single path per icon, which is why the
// normalization step exists at all.
package svg2hass
