package pathdata

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrInvalidViewBox is returned when a viewBox attribute does not hold four numbers.
var ErrInvalidViewBox = errors.New("pathdata: invalid viewBox")

// ViewBox is the coordinate rectangle a path was authored against.
type ViewBox struct {
	X      float64 `json:"x" yaml:"x"`
	Y      float64 `json:"y" yaml:"y"`
	Width  float64 `json:"width" yaml:"width"`
	Height float64 `json:"height" yaml:"height"`
}

// Frame is the destination pixel rectangle a path is fitted into.
type Frame struct {
	Width   float64 `json:"width" yaml:"width"`
	Height  float64 `json:"height" yaml:"height"`
	OffsetX float64 `json:"offset_x" yaml:"offset_x"`
	OffsetY float64 `json:"offset_y" yaml:"offset_y"`
}

// ParseViewBox parses a viewBox attribute such as "0 0 24 24" or "0,0,24,24".
func ParseViewBox(s string) (ViewBox, error) {
	fields := strings.FieldsFunc(s, func(r rune) bool {
		return r == ',' || r == ' ' || r == '\t' || r == '\n' || r == '\r'
	})
	if len(fields) != 4 {
		return ViewBox{}, fmt.Errorf("%w: %q", ErrInvalidViewBox, s)
	}

	var nums [4]float64
	for i, f := range fields {
		v, err := strconv.ParseFloat(f, 64)
		if err != nil {
			return ViewBox{}, fmt.Errorf("%w: %q", ErrInvalidViewBox, s)
		}
		nums[i] = v
	}
	return ViewBox{X: nums[0], Y: nums[1], Width: nums[2], Height: nums[3]}, nil
}

// Valid reports whether both sides of the viewbox are positive.
func (vb ViewBox) Valid() bool {
	return vb.Width > 0 && vb.Height > 0
}

// String formats the viewbox the way it appears in an SVG attribute.
func (vb ViewBox) String() string {
	return FormatNumber(vb.X) + " " + FormatNumber(vb.Y) + " " +
		FormatNumber(vb.Width) + " " + FormatNumber(vb.Height)
}

// Scale returns the per-axis factors that map vb onto f.
// A degenerate axis yields a factor of zero.
func (vb ViewBox) Scale(f Frame) (sx, sy float64) {
	if vb.Width > 0 {
		sx = f.Width / vb.Width
	}
	if vb.Height > 0 {
		sy = f.Height / vb.Height
	}
	return sx, sy
}

// Bounds returns the viewbox covering the frame including its offset, which is
// what a fitted document declares as its new coordinate space.
func (f Frame) Bounds() ViewBox {
	return ViewBox{Width: f.OffsetX + f.Width, Height: f.OffsetY + f.Height}
}
