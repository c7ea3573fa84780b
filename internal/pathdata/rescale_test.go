package pathdata

import (
	"errors"
	"strings"
	"testing"
)

var unit10 = ViewBox{Width: 10, Height: 10}

func TestRescale(t *testing.T) {
	tests := []struct {
		name  string
		in    string
		vb    ViewBox
		frame Frame
		want  string
	}{
		{"double", "M 0 0 L 10 10", unit10, Frame{Width: 20, Height: 20}, "M 0 0 L 20 20"},
		{"relative ignores offset", "m 5 5 l 10 10", unit10, Frame{Width: 10, Height: 10, OffsetX: 100, OffsetY: 100}, "m 5 5 l 10 10"},
		{"absolute move takes offset", "M 5 5 l 10 10", unit10, Frame{Width: 10, Height: 10, OffsetX: 100, OffsetY: 100}, "M 105 105 l 10 10"},
		{"arc radii", "A 5 5 0 0 1 10 10", unit10, Frame{Width: 20, Height: 30}, "A 10 15 0 0 1 20 30"},
		{"arc radii stay positive on mirrored axis", "A 5 5 0 0 1 10 10", unit10, Frame{Width: -20, Height: 10}, "A 10 5 0 0 1 -20 10"},
		{"arc keeps literal rotation and flags", "a 1 1 45.5 1 0 2 2", unit10, Frame{Width: 20, Height: 20}, "a 2 2 45.5 1 0 4 4"},
		{"compact arc flags", "M0 0a5 5 0 01 10 0", unit10, Frame{Width: 20, Height: 20}, "M 0 0 a 10 10 0 0 1 20 0"},
		{"compact arc flags before a sign", "M2 2a1 1 0 01-1 1h4", unit10, Frame{Width: 20, Height: 20}, "M 4 4 a 2 2 0 0 1 -2 2 h 8"},
		{"compact arc flags joined to endpoint", "A1 1 0 1110 5", unit10, Frame{Width: 20, Height: 20}, "A 2 2 0 1 1 20 10"},
		{"implicit repeat", "M0 0 10 10 20 20", unit10, Frame{Width: 20, Height: 20}, "M 0 0 20 20 40 40"},
		{"compact numbers", "M-1-2L.5.5", unit10, Frame{Width: 20, Height: 20}, "M -2 -4 L 1 1"},
		{"scientific notation", "M1e1 2E-1", unit10, Frame{Width: 10, Height: 10}, "M 10 0.2"},
		{"unknown command copied", "M 1 2 R 3.456 4 L 1 1", unit10, Frame{Width: 20, Height: 20}, "M 2 4 R 3.456 4 L 2 2"},
		{"close path", "M 0 0 L 5 0 L 5 5 Z", unit10, Frame{Width: 20, Height: 20}, "M 0 0 L 10 0 L 10 10 Z"},
		{"numbers after close copied", "M 1 1 Z 3 3", unit10, Frame{Width: 20, Height: 20}, "M 2 2 Z 3 3"},
		{"numbers before command copied", "5 5 L 1 1", unit10, Frame{Width: 20, Height: 20}, "5 5 L 2 2"},
		{"partial group", "L 10", unit10, Frame{Width: 20, Height: 20}, "L 20"},
		{"rounding", "M 1 2", ViewBox{Width: 3, Height: 3}, Frame{Width: 1, Height: 1}, "M 0.33 0.67"},
		{"negative zero", "m -0 0", unit10, Frame{Width: 10, Height: 10}, "m 0 0"},
		{"junk skipped", "M 1 # 2", unit10, Frame{Width: 10, Height: 10}, "M 1 2"},
		{"empty", "", unit10, Frame{Width: 20, Height: 20}, ""},
		{"separators only", " ,\n", unit10, Frame{Width: 20, Height: 20}, " ,\n"},
		{"junk only", "###", unit10, Frame{Width: 20, Height: 20}, "###"},
		{"degenerate viewbox", "M 1 1", ViewBox{Width: 0, Height: 10}, Frame{Width: 20, Height: 20}, "M 1 1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Rescale(tt.in, tt.vb, tt.frame)
			if got != tt.want {
				t.Errorf("Rescale(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestRescale_OriginAndOffset(t *testing.T) {
	vb := ViewBox{X: 10, Y: 20, Width: 100, Height: 100}
	f := Frame{Width: 200, Height: 100, OffsetX: 5, OffsetY: 7}

	tests := []struct {
		in, want string
	}{
		{"M 10 20 L 110 120", "M 5 7 L 205 107"},
		{"H 60 V 70", "H 105 V 57"},
		{"h 10 v 10", "h 20 v 10"},
		{"C 10 20 60 70 110 120", "C 5 7 105 57 205 107"},
		{"c 1 1 2 2 3 3", "c 2 1 4 2 6 3"},
		{"Q 60 70 110 120 T 10 20", "Q 105 57 205 107 T 5 7"},
		{"s 1 1 2 2", "s 2 1 4 2"},
	}
	r := NewRescaler(vb, f)
	for _, tt := range tests {
		if got := r.Rescale(tt.in); got != tt.want {
			t.Errorf("Rescale(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestRescale_IdentityPreservesCommands(t *testing.T) {
	in := "M10.5,20.25 C1,2,3,4,5,6 S7 8 9 10 Q1 2 3 4 T5 6 H7 V8 A1 2 30 1 0 5 6 z m1 1 l2 2 h3 v4 c1 2 3 4 5 6 s1 2 3 4 q1 2 3 4 t1 2 a1 1 0 0 0 1 1 Z"
	want := "M 10.5 20.25 C 1 2 3 4 5 6 S 7 8 9 10 Q 1 2 3 4 T 5 6 H 7 V 8 A 1 2 30 1 0 5 6 z m 1 1 l 2 2 h 3 v 4 c 1 2 3 4 5 6 s 1 2 3 4 q 1 2 3 4 t 1 2 a 1 1 0 0 0 1 1 Z"

	vb := ViewBox{Width: 50, Height: 50}
	got := Rescale(in, vb, Frame{Width: 50, Height: 50})
	if got != want {
		t.Fatalf("identity rescale:\n got %q\nwant %q", got, want)
	}
	if commandLetters(got) != commandLetters(in) {
		t.Errorf("command sequence changed: %q vs %q", commandLetters(got), commandLetters(in))
	}
}

func TestRescaler_Scale(t *testing.T) {
	r := NewRescaler(ViewBox{Width: 24, Height: 12}, Frame{Width: 48, Height: 48})
	sx, sy := r.Scale()
	if sx != 2 || sy != 4 {
		t.Errorf("Scale() = (%v, %v), want (2, 4)", sx, sy)
	}
	if r.ViewBox().Width != 24 || r.Frame().Height != 48 {
		t.Error("accessors do not return the construction values")
	}
}

func TestRescaleStrict(t *testing.T) {
	f := Frame{Width: 20, Height: 20}

	got, err := RescaleStrict("M 0 0 L 10 10", unit10, f)
	if err != nil {
		t.Fatalf("RescaleStrict: %v", err)
	}
	if got != "M 0 0 L 20 20" {
		t.Errorf("got %q", got)
	}

	got, err = RescaleStrict("M2 2a1 1 0 01-1 1", unit10, f)
	if err != nil {
		t.Fatalf("RescaleStrict with compact arc flags: %v", err)
	}
	if got != "M 4 4 a 2 2 0 0 1 -2 2" {
		t.Errorf("compact arc flags: got %q", got)
	}

	if _, err := RescaleStrict("", unit10, f); !errors.Is(err, ErrEmpty) {
		t.Errorf("empty: expected ErrEmpty, got %v", err)
	}
	if _, err := RescaleStrict(" , ", unit10, f); !errors.Is(err, ErrEmpty) {
		t.Errorf("separators: expected ErrEmpty, got %v", err)
	}
	if _, err := RescaleStrict("M 1 1", ViewBox{Width: 10}, f); !errors.Is(err, ErrDegenerateViewBox) {
		t.Errorf("degenerate: expected ErrDegenerateViewBox, got %v", err)
	}
	if _, err := RescaleStrict("10 10 M 1 1", unit10, f); !errors.Is(err, ErrNoCommand) {
		t.Errorf("leading numbers: expected ErrNoCommand, got %v", err)
	}

	var syn *SyntaxError
	if _, err := RescaleStrict("M 1 # 2", unit10, f); !errors.As(err, &syn) {
		t.Errorf("junk: expected *SyntaxError, got %v", err)
	} else if syn.Pos != 4 || syn.Char != '#' {
		t.Errorf("SyntaxError = %+v", syn)
	}

	for _, in := range []string{"L 1", "M 1 1 R 2", "M 1 1 Z 3", "M L 1 1", "C 1 2 3 4 5 6 7"} {
		var ce *CommandError
		if _, err := RescaleStrict(in, unit10, f); !errors.As(err, &ce) {
			t.Errorf("%q: expected *CommandError, got %v", in, err)
		}
	}
}

func TestFormatNumber(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{0, "0"},
		{-0.001, "0"},
		{1, "1"},
		{1.5, "1.5"},
		{2.676, "2.68"},
		{-3.14159, "-3.14"},
		{1234567.891, "1234567.89"},
	}
	for _, tt := range tests {
		if got := FormatNumber(tt.in); got != tt.want {
			t.Errorf("FormatNumber(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func commandLetters(d string) string {
	var sb strings.Builder
	toks, _ := Tokenize(d)
	for _, tok := range toks {
		if tok.Kind == CommandToken {
			sb.WriteByte(tok.Cmd)
		}
	}
	return sb.String()
}

func TestArity(t *testing.T) {
	tests := []struct {
		cmd  byte
		n    int
		isOK bool
	}{
		{'M', 2, true}, {'l', 2, true}, {'h', 1, true}, {'V', 1, true},
		{'c', 6, true}, {'S', 4, true}, {'q', 4, true}, {'T', 2, true},
		{'a', 7, true}, {'Z', 0, true}, {'R', 0, false},
	}
	for _, tt := range tests {
		n, ok := Arity(tt.cmd)
		if n != tt.n || ok != tt.isOK {
			t.Errorf("Arity(%q) = (%d, %v), want (%d, %v)", tt.cmd, n, ok, tt.n, tt.isOK)
		}
	}
}
