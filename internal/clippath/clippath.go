// Package clippath builds CSS clip-path polygons and matching SVG path data for
// progress indicators, and sizes images to cover a clipping box.
package clippath

import (
	"math"
	"strings"

	"github.com/ziadkadry99/pathfit/internal/pathdata"
)

// outline walks the unit square clockwise from the top-right corner, in
// percent, one vertex every 45 degrees of sweep.
var outline = [9][2]float64{
	{100, 0},
	{100, 50},
	{100, 100},
	{50, 100},
	{0, 100},
	{0, 50},
	{0, 0},
	{50, 0},
	{100, 0},
}

// percentBox is the coordinate space the progress polygon is authored in.
var percentBox = pathdata.ViewBox{Width: 100, Height: 100}

// sweep returns the polygon vertices for a progress sweep of angle degrees.
func sweep(angle float64) [][2]float64 {
	angle = clamp(angle, 0, 360)

	sector := int(math.Floor(angle / 45))
	remainder := math.Mod(angle, 45)
	if sector >= len(outline)-1 {
		sector = len(outline) - 2
		remainder = 45
	}

	start, end := outline[sector], outline[sector+1]
	t := remainder / 45
	tip := [2]float64{
		start[0] + (end[0]-start[0])*t,
		start[1] + (end[1]-start[1])*t,
	}

	points := make([][2]float64, 0, sector+3)
	points = append(points, [2]float64{100, 0})
	for i := 1; i <= sector; i++ {
		points = append(points, outline[i])
	}
	points = append(points, tip, [2]float64{50, 50})
	return points
}

// Progress returns a CSS polygon() clip path that reveals a square element as a
// pie swept clockwise by angle degrees. The angle is clamped to [0, 360].
func Progress(angle float64) string {
	points := sweep(angle)
	parts := make([]string, len(points))
	for i, p := range points {
		parts[i] = percent(p[0]) + " " + percent(p[1])
	}
	return "polygon(" + strings.Join(parts, ", ") + ")"
}

// ProgressFromScore is Progress for a score out of 100.
func ProgressFromScore(score float64) string {
	return Progress(score * 3.6)
}

// ProgressPath returns the Progress polygon as SVG path data fitted into f.
func ProgressPath(angle float64, f pathdata.Frame) string {
	points := sweep(angle)
	var sb strings.Builder
	for i, p := range points {
		if i == 0 {
			sb.WriteString("M ")
		} else {
			sb.WriteString(" L ")
		}
		sb.WriteString(pathdata.FormatNumber(p[0]))
		sb.WriteByte(' ')
		sb.WriteString(pathdata.FormatNumber(p[1]))
	}
	sb.WriteString(" Z")
	return pathdata.Rescale(sb.String(), percentBox, f)
}

// Bar returns a CSS polygon() clip path revealing the left percent of an element.
func Bar(pct float64) string {
	p := percent(clamp(pct, 0, 100))
	return "polygon(0 0, " + p + " 0, " + p + " 100%, 0 100%)"
}

// Cover returns the size an image of srcW x srcH must be drawn at so that it
// fully covers a boxW x boxH box while keeping its aspect ratio.
// Degenerate inputs return the box size.
func Cover(srcW, srcH, boxW, boxH float64) (w, h float64) {
	if srcW <= 0 || srcH <= 0 || boxW <= 0 || boxH <= 0 {
		return boxW, boxH
	}
	imgRatio := srcW / srcH
	boxRatio := boxW / boxH
	if imgRatio > boxRatio {
		return boxH * imgRatio, boxH
	}
	return boxW, boxW / imgRatio
}

func percent(v float64) string {
	return pathdata.FormatNumber(v) + "%"
}

func clamp(v, lo, hi float64) float64 {
	if math.IsNaN(v) {
		return lo
	}
	return math.Max(lo, math.Min(v, hi))
}
