// Copyright 2016 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// The encoder loop is a modification from
// https://github.com/golang/exp/blob/00229845015e38294862ecd9909318241789d41c/shiny/materialdesign/icons/gen.go
// by way of svg2ivg.

package svg2hass

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/exp/shiny/iconvg"
	"golang.org/x/image/math/f32"
)

// ViewBox is the coordinate space shared by every icon of a set.
type ViewBox struct {
	MinX, MinY, Width, Height float32
}

// ParseViewBox parses four space separated numbers, "min-x min-y width
// height".
func ParseViewBox(s string) (ViewBox, error) {
	fields := strings.Fields(s)
	if len(fields) != 4 {
		return ViewBox{}, fmt.Errorf("view box %q: want 4 numbers, got %d", s, len(fields))
	}
	var v [4]float32
	for i, field := range fields {
		f, err := strconv.ParseFloat(field, 32)
		if err != nil {
			return ViewBox{}, fmt.Errorf("view box %q: %v", s, err)
		}
		v[i] = float32(f)
	}
	if v[2] <= 0 || v[3] <= 0 {
		return ViewBox{}, fmt.Errorf("view box %q: width and height must be positive", s)
	}
	return ViewBox{MinX: v[0], MinY: v[1], Width: v[2], Height: v[3]}, nil
}

func (v ViewBox) String() string {
	parts := make([]string, 4)
	for i, f := range []float32{v.MinX, v.MinY, v.Width, v.Height} {
		parts[i] = strconv.FormatFloat(float64(f), 'f', -1, 32)
	}
	return strings.Join(parts, " ")
}

func (v ViewBox) rectangle() iconvg.Rectangle {
	return iconvg.Rectangle{
		Min: f32.Vec2{v.MinX, v.MinY},
		Max: f32.Vec2{v.MinX + v.Width, v.MinY + v.Height},
	}
}

// EncodeIVG converts path data into an IconVG graphic. Coordinates are kept
// as they are, the view box of the graphic is vb.
func EncodeIVG(d string, vb ViewBox) ([]byte, error) {
	cmds, err := ParsePathData(d)
	if err != nil {
		return nil, err
	}

	var enc iconvg.Encoder
	enc.Reset(iconvg.Metadata{
		ViewBox: vb.rectangle(),
		Palette: iconvg.DefaultPalette,
	})
	if err := genPath(&enc, cmds); err != nil {
		return nil, err
	}
	return enc.Bytes()
}

// genPath writes cmds as a single filled path. A closepath is deferred until
// the next command since IconVG only closes a path together with a moveto or
// at the end of the path.
func genPath(enc *iconvg.Encoder, cmds []PathCommand) error {
	var (
		cur, start f32.Vec2
		started    bool
		closed     bool
	)
	for _, c := range cmds {
		a := c.Args
		if c.Op != 'M' && c.Op != 'm' && closed {
			enc.ClosePathAbsMoveTo(start[0], start[1])
			closed = false
		}

		switch c.Op {
		case 'M', 'm':
			p := f32.Vec2{a[0], a[1]}
			if c.Op == 'm' && started {
				p = f32.Vec2{cur[0] + a[0], cur[1] + a[1]}
			}
			if !started {
				started = true
				enc.StartPath(0, p[0], p[1])
			} else {
				enc.ClosePathAbsMoveTo(p[0], p[1])
			}
			closed = false
			cur, start = p, p
		case 'Z', 'z':
			closed = true
			cur = start
		case 'L':
			enc.AbsLineTo(a[0], a[1])
		case 'l':
			enc.RelLineTo(a[0], a[1])
		case 'H':
			enc.AbsHLineTo(a[0])
			cur[0] = a[0]
		case 'h':
			enc.RelHLineTo(a[0])
			cur[0] += a[0]
		case 'V':
			enc.AbsVLineTo(a[0])
			cur[1] = a[0]
		case 'v':
			enc.RelVLineTo(a[0])
			cur[1] += a[0]
		case 'T':
			enc.AbsSmoothQuadTo(a[0], a[1])
		case 't':
			enc.RelSmoothQuadTo(a[0], a[1])
		case 'Q':
			enc.AbsQuadTo(a[0], a[1], a[2], a[3])
		case 'q':
			enc.RelQuadTo(a[0], a[1], a[2], a[3])
		case 'S':
			enc.AbsSmoothCubeTo(a[0], a[1], a[2], a[3])
		case 's':
			enc.RelSmoothCubeTo(a[0], a[1], a[2], a[3])
		case 'C':
			enc.AbsCubeTo(a[0], a[1], a[2], a[3], a[4], a[5])
		case 'c':
			enc.RelCubeTo(a[0], a[1], a[2], a[3], a[4], a[5])
		case 'A':
			// IconVG measures the x axis rotation in turns, SVG in degrees.
			enc.AbsArcTo(a[0], a[1], a[2]/360, a[3] != 0, a[4] != 0, a[5], a[6])
		case 'a':
			enc.RelArcTo(a[0], a[1], a[2]/360, a[3] != 0, a[4] != 0, a[5], a[6])
		default:
			return fmt.Errorf("unknown opcode %c", c.Op)
		}

		// Track the end point for the absolute closepath above.
		switch c.Op {
		case 'L', 'T':
			cur = f32.Vec2{a[0], a[1]}
		case 'Q', 'S':
			cur = f32.Vec2{a[2], a[3]}
		case 'C':
			cur = f32.Vec2{a[4], a[5]}
		case 'A':
			cur = f32.Vec2{a[5], a[6]}
		case 'l', 't':
			cur = f32.Vec2{cur[0] + a[0], cur[1] + a[1]}
		case 'q', 's':
			cur = f32.Vec2{cur[0] + a[2], cur[1] + a[3]}
		case 'c':
			cur = f32.Vec2{cur[0] + a[4], cur[1] + a[5]}
		case 'a':
			cur = f32.Vec2{cur[0] + a[5], cur[1] + a[6]}
		}
	}
	if !started {
		return errors.New("path has no moveto")
	}
	enc.ClosePathEndPath()
	return nil
}
