// Package pathdata rescales SVG path data from the viewbox it was authored in
// into a target pixel frame.
package pathdata

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

var (
	// ErrEmpty is returned by strict rescaling when the input holds no tokens.
	ErrEmpty = errors.New("pathdata: empty path data")
	// ErrDegenerateViewBox is returned when the viewbox has no area to scale from.
	ErrDegenerateViewBox = errors.New("pathdata: viewbox width and height must be positive")
	// ErrNoCommand is returned when numbers appear before the first command letter.
	ErrNoCommand = errors.New("pathdata: path data must start with a command")
)

// CommandError reports a command that strict rescaling cannot accept.
type CommandError struct {
	Pos    int
	Cmd    byte
	Reason string
}

func (e *CommandError) Error() string {
	return fmt.Sprintf("pathdata: command %q at position %d: %s", e.Cmd, e.Pos, e.Reason)
}

// role says how a single operand is transformed.
type role uint8

const (
	roleX role = iota
	roleY
	roleRX
	roleRY
	roleKeep
)

// operandRoles lists the operand roles of each absolute command letter.
var operandRoles = map[byte][]role{
	'M': {roleX, roleY},
	'L': {roleX, roleY},
	'T': {roleX, roleY},
	'H': {roleX},
	'V': {roleY},
	'C': {roleX, roleY, roleX, roleY, roleX, roleY},
	'S': {roleX, roleY, roleX, roleY},
	'Q': {roleX, roleY, roleX, roleY},
	'A': {roleRX, roleRY, roleKeep, roleKeep, roleKeep, roleX, roleY},
	'Z': {},
}

// Arity returns how many operands command c takes per group. ok is false for
// letters that are not path commands.
func Arity(c byte) (n int, ok bool) {
	roles, ok := operandRoles[upper(c)]
	return len(roles), ok
}

// Rescaler maps path data from one viewbox into one frame. It is immutable and
// safe for concurrent use.
type Rescaler struct {
	vb     ViewBox
	frame  Frame
	sx, sy float64
}

// NewRescaler returns a Rescaler for the given source viewbox and target frame.
func NewRescaler(vb ViewBox, f Frame) *Rescaler {
	sx, sy := vb.Scale(f)
	return &Rescaler{vb: vb, frame: f, sx: sx, sy: sy}
}

// Scale returns the per-axis scale factors.
func (r *Rescaler) Scale() (sx, sy float64) { return r.sx, r.sy }

// ViewBox returns the source viewbox.
func (r *Rescaler) ViewBox() ViewBox { return r.vb }

// Frame returns the target frame.
func (r *Rescaler) Frame() Frame { return r.frame }

// Rescale returns d with every coordinate mapped into the target frame.
// Input that yields no tokens, or a viewbox without area, comes back unchanged.
func (r *Rescaler) Rescale(d string) string {
	if !r.vb.Valid() {
		return d
	}
	toks, _ := Tokenize(d)
	if len(toks) == 0 {
		return d
	}
	out, _ := r.transform(toks)
	return out
}

// RescaleStrict is Rescale with failures reported instead of absorbed.
func (r *Rescaler) RescaleStrict(d string) (string, error) {
	if !r.vb.Valid() {
		return "", ErrDegenerateViewBox
	}
	toks, err := Tokenize(d)
	if err != nil {
		return "", err
	}
	if len(toks) == 0 {
		return "", ErrEmpty
	}
	return r.transform(toks)
}

// Rescale maps d from vb into f. See Rescaler.Rescale.
func Rescale(d string, vb ViewBox, f Frame) string {
	return NewRescaler(vb, f).Rescale(d)
}

// RescaleStrict maps d from vb into f, reporting malformed input.
func RescaleStrict(d string, vb ViewBox, f Frame) (string, error) {
	return NewRescaler(vb, f).RescaleStrict(d)
}

// transform runs the single pass over the token stream. The output is always
// complete; the error records the first problem strict callers care about.
func (r *Rescaler) transform(toks []Token) (string, error) {
	var (
		sb       strings.Builder
		firstErr error
		cur      *Token // current command, nil while awaiting the first
		roles    []role
		known    bool
		operands int
	)

	fail := func(err error) {
		if firstErr == nil {
			firstErr = err
		}
	}
	// closeGroup checks that the command just finished got whole operand groups.
	closeGroup := func() {
		if cur == nil || !known || len(roles) == 0 {
			return
		}
		if operands == 0 || operands%len(roles) != 0 {
			fail(&CommandError{Pos: cur.Pos, Cmd: cur.Cmd,
				Reason: fmt.Sprintf("takes operands in groups of %d, got %d", len(roles), operands)})
		}
	}

	sb.Grow(len(toks) * 4)
	for i := range toks {
		t := &toks[i]
		if i > 0 {
			sb.WriteByte(' ')
		}

		if t.Kind == CommandToken {
			closeGroup()
			cur = t
			roles, known = operandRoles[upper(t.Cmd)]
			operands = 0
			if !known {
				fail(&CommandError{Pos: t.Pos, Cmd: t.Cmd, Reason: "unknown command"})
			}
			sb.WriteByte(t.Cmd)
			continue
		}

		switch {
		case cur == nil:
			fail(ErrNoCommand)
			sb.WriteString(t.Text)
		case !known:
			sb.WriteString(t.Text)
		case len(roles) == 0:
			fail(&CommandError{Pos: cur.Pos, Cmd: cur.Cmd, Reason: "takes no operands"})
			sb.WriteString(t.Text)
		default:
			ro := roles[operands%len(roles)]
			operands++
			sb.WriteString(r.apply(ro, isRelative(cur.Cmd), t))
		}
	}
	closeGroup()

	return sb.String(), firstErr
}

// apply transforms one operand according to its role.
func (r *Rescaler) apply(ro role, relative bool, t *Token) string {
	switch ro {
	case roleX:
		if relative {
			return FormatNumber(t.Value * r.sx)
		}
		return FormatNumber(r.frame.OffsetX + (t.Value-r.vb.X)*r.sx)
	case roleY:
		if relative {
			return FormatNumber(t.Value * r.sy)
		}
		return FormatNumber(r.frame.OffsetY + (t.Value-r.vb.Y)*r.sy)
	case roleRX:
		return FormatNumber(t.Value * math.Abs(r.sx))
	case roleRY:
		return FormatNumber(t.Value * math.Abs(r.sy))
	default:
		return t.Text
	}
}

// FormatNumber rounds v to two decimals and prints it without trailing zeros.
func FormatNumber(v float64) string {
	v = math.Round(v*100) / 100
	if v == 0 {
		v = 0 // drop the sign of negative zero
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func upper(c byte) byte {
	if 'a' <= c && c <= 'z' {
		return c - ('a' - 'A')
	}
	return c
}

func isRelative(c byte) bool {
	return 'a' <= c && c <= 'z'
}
