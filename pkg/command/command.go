// Package command defines the pointer commands carried over the link and
// their wire formats.
package command

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Kind identifies a pointer action.
type Kind int

const (
	KindUnknown Kind = iota
	KindMove
	KindLeftClick
	KindRightClick
)

func (k Kind) String() string {
	switch k {
	case KindMove:
		return "move"
	case KindLeftClick:
		return "left_click"
	case KindRightClick:
		return "right_click"
	default:
		return "unknown"
	}
}

func parseKind(s string) Kind {
	switch s {
	case "move":
		return KindMove
	case "left_click":
		return KindLeftClick
	case "right_click":
		return KindRightClick
	default:
		return KindUnknown
	}
}

var (
	// ErrMalformed marks a command that was recognized but could not be parsed.
	ErrMalformed = errors.New("command: malformed")
	// ErrUnknown marks an unrecognized command.
	ErrUnknown = errors.New("command: unknown")
)

// Command is one pointer action. DX and DY are only meaningful for KindMove.
type Command struct {
	Kind Kind
	DX   int
	DY   int
}

func MoveBy(dx, dy int) Command { return Command{Kind: KindMove, DX: dx, DY: dy} }
func LeftClick() Command        { return Command{Kind: KindLeftClick} }
func RightClick() Command       { return Command{Kind: KindRightClick} }

// String returns the text form without the trailing newline.
func (c Command) String() string {
	switch c.Kind {
	case KindMove:
		return fmt.Sprintf("MOVE:%d,%d", c.DX, c.DY)
	case KindLeftClick:
		return "L_CLICK"
	case KindRightClick:
		return "R_CLICK"
	default:
		return "UNKNOWN"
	}
}

// ParseText parses one line of the text grammar. Surrounding whitespace is
// ignored. MOVE deltas may be decimal and are truncated toward zero.
func ParseText(line string) (Command, error) {
	line = strings.TrimSpace(line)
	switch {
	case line == "L_CLICK":
		return LeftClick(), nil
	case line == "R_CLICK":
		return RightClick(), nil
	case strings.HasPrefix(line, "MOVE:"):
		parts := strings.Split(strings.TrimPrefix(line, "MOVE:"), ",")
		if len(parts) != 2 {
			return Command{}, fmt.Errorf("%w: %q: want MOVE:dx,dy", ErrMalformed, line)
		}
		dx, err := parseDelta(parts[0])
		if err != nil {
			return Command{}, fmt.Errorf("%w: %q: %v", ErrMalformed, line, err)
		}
		dy, err := parseDelta(parts[1])
		if err != nil {
			return Command{}, fmt.Errorf("%w: %q: %v", ErrMalformed, line, err)
		}
		return MoveBy(dx, dy), nil
	default:
		return Command{}, fmt.Errorf("%w: %q", ErrUnknown, line)
	}
}

func parseDelta(s string) (int, error) {
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, err
	}
	if err := CheckDelta(f); err != nil {
		return 0, err
	}
	return int(f), nil
}

// CheckDelta rejects NaN, infinities and magnitudes beyond int32.
func CheckDelta(f float64) error {
	if math.IsNaN(f) || math.IsInf(f, 0) || math.Abs(f) > math.MaxInt32 {
		return fmt.Errorf("delta out of range: %v", f)
	}
	return nil
}

// wire is the structured form shared by the json, cbor and proto formats.
type wire struct {
	Cmd string `json:"cmd" cbor:"cmd"`
	DX  int    `json:"dx,omitempty" cbor:"dx,omitempty"`
	DY  int    `json:"dy,omitempty" cbor:"dy,omitempty"`
}

func toWire(c Command) (wire, error) {
	if c.Kind == KindUnknown {
		return wire{}, fmt.Errorf("%w: kind %d", ErrUnknown, c.Kind)
	}
	w := wire{Cmd: c.Kind.String()}
	if c.Kind == KindMove {
		w.DX, w.DY = c.DX, c.DY
	}
	return w, nil
}

func fromWire(w wire) (Command, error) {
	k := parseKind(w.Cmd)
	switch k {
	case KindUnknown:
		return Command{}, fmt.Errorf("%w: %q", ErrUnknown, w.Cmd)
	case KindMove:
		return MoveBy(w.DX, w.DY), nil
	default:
		return Command{Kind: k}, nil
	}
}

// Recoverable reports whether a decode error only concerns one command and
// the stream can keep being decoded.
func Recoverable(err error) bool {
	return errors.Is(err, ErrMalformed) || errors.Is(err, ErrUnknown)
}
