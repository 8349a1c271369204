package svg2hass

import (
	"errors"
	"fmt"
	"strconv"
)

// PathCommand is one command of SVG path data. Lower case ops are relative.
type PathCommand struct {
	Op   byte
	Args []float32
}

// Relative reports whether the command's coordinates are relative to the
// current point.
func (c PathCommand) Relative() bool {
	return 'a' <= c.Op && c.Op <= 'z'
}

func argCount(op byte) (int, bool) {
	switch op {
	case 'M', 'm', 'L', 'l', 'T', 't':
		return 2, true
	case 'H', 'h', 'V', 'v':
		return 1, true
	case 'Q', 'q', 'S', 's':
		return 4, true
	case 'C', 'c':
		return 6, true
	case 'A', 'a':
		return 7, true
	case 'Z', 'z':
		return 0, true
	}
	return 0, false
}

// ValidatePathData reports whether d is well formed path data.
func ValidatePathData(d string) error {
	_, err := ParsePathData(d)
	return err
}

// ParsePathData splits path data into commands. Repeated argument groups
// are expanded to one command each; extra pairs after a moveto become
// linetos.
func ParsePathData(d string) ([]PathCommand, error) {
	s := &pathScanner{src: d}
	var cmds []PathCommand
	var op byte
	for {
		s.skipSeparators()
		if s.done() {
			break
		}
		b := s.src[s.pos]
		if isLetter(b) {
			if _, ok := argCount(b); !ok {
				return nil, fmt.Errorf("unknown opcode %c at offset %d", b, s.pos)
			}
			op = b
			s.pos++
		} else if op == 0 {
			return nil, fmt.Errorf("path data must start with a command, got %q", b)
		} else if op == 'Z' || op == 'z' {
			return nil, fmt.Errorf("unexpected number after %c at offset %d", op, s.pos)
		}
		if len(cmds) == 0 && op != 'M' && op != 'm' {
			return nil, fmt.Errorf("path data must start with moveto, got %c", op)
		}

		n, _ := argCount(op)
		cmd := PathCommand{Op: op, Args: make([]float32, n)}
		for i := 0; i < n; i++ {
			var err error
			if (op == 'A' || op == 'a') && (i == 3 || i == 4) {
				cmd.Args[i], err = s.flag()
			} else {
				cmd.Args[i], err = s.number()
			}
			if err != nil {
				return nil, fmt.Errorf("%c argument %d: %w", op, i+1, err)
			}
		}
		cmds = append(cmds, cmd)

		switch op {
		case 'M':
			op = 'L'
		case 'm':
			op = 'l'
		}
	}
	if len(cmds) == 0 {
		return nil, errors.New("empty path data")
	}
	return cmds, nil
}

type pathScanner struct {
	src string
	pos int
}

func (s *pathScanner) done() bool { return s.pos >= len(s.src) }

func (s *pathScanner) skipSeparators() {
	for !s.done() {
		switch s.src[s.pos] {
		case ' ', '\t', '\n', '\r', '\f', ',':
			s.pos++
		default:
			return
		}
	}
}

// flag reads an arc flag, which may be written without a separator.
func (s *pathScanner) flag() (float32, error) {
	s.skipSeparators()
	if s.done() {
		return 0, errors.New("missing flag")
	}
	switch s.src[s.pos] {
	case '0':
		s.pos++
		return 0, nil
	case '1':
		s.pos++
		return 1, nil
	}
	return 0, fmt.Errorf("invalid flag %q", s.src[s.pos])
}

// number reads a float such as "-1.5e-3". "1.5.5" reads as 1.5 then .5.
func (s *pathScanner) number() (float32, error) {
	s.skipSeparators()
	start := s.pos
	if !s.done() && (s.src[s.pos] == '+' || s.src[s.pos] == '-') {
		s.pos++
	}
	digits := s.digits()
	if !s.done() && s.src[s.pos] == '.' {
		s.pos++
		digits += s.digits()
	}
	if digits == 0 {
		s.pos = start
		if s.done() {
			return 0, errors.New("missing number")
		}
		return 0, fmt.Errorf("invalid number at offset %d", start)
	}
	if !s.done() && (s.src[s.pos] == 'e' || s.src[s.pos] == 'E') {
		mark := s.pos
		s.pos++
		if !s.done() && (s.src[s.pos] == '+' || s.src[s.pos] == '-') {
			s.pos++
		}
		if s.digits() == 0 {
			s.pos = mark
		}
	}
	f, err := strconv.ParseFloat(s.src[start:s.pos], 32)
	if err != nil {
		return 0, fmt.Errorf("could not parse %q as a float32: %v", s.src[start:s.pos], err)
	}
	return float32(f), nil
}

func (s *pathScanner) digits() int {
	n := 0
	for !s.done() && '0' <= s.src[s.pos] && s.src[s.pos] <= '9' {
		s.pos++
		n++
	}
	return n
}

func isLetter(b byte) bool {
	return ('a' <= b && b <= 'z') || ('A' <= b && b <= 'Z')
}
