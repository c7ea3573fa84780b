// Package raster fills SVG path data into an alpha mask, for previewing what a
// rescaled clip path covers.
package raster

import (
	"errors"
	"image"
	"image/png"
	"io"
	"math"

	"golang.org/x/image/vector"

	"github.com/ziadkadry99/pathfit/internal/pathdata"
)

// ErrInvalidSize is returned for non-positive image dimensions.
var ErrInvalidSize = errors.New("raster: width and height must be positive")

type point struct{ x, y float64 }

func (p point) add(q point) point       { return point{p.x + q.x, p.y + q.y} }
func (p point) sub(q point) point       { return point{p.x - q.x, p.y - q.y} }
func (p point) mul(k float64) point     { return point{p.x * k, p.y * k} }
func (p point) reflect(c point) point   { return p.add(p.sub(c)) }
func (p point) f32() (float32, float32) { return float32(p.x), float32(p.y) }

// Render fills the path described by d into a w x h alpha mask. Coordinates are
// taken as pixels. Malformed input is handled leniently: unknown commands and
// incomplete operand groups are skipped.
func Render(d string, w, h int) (*image.Alpha, error) {
	return RenderPaths([]string{d}, w, h)
}

// RenderPaths fills several independent paths, such as the <path> elements of
// one document, into a single mask.
func RenderPaths(paths []string, w, h int) (*image.Alpha, error) {
	if w <= 0 || h <= 0 {
		return nil, ErrInvalidSize
	}

	z := vector.NewRasterizer(w, h)
	for _, d := range paths {
		toks, _ := pathdata.Tokenize(d)
		p := &pen{z: z}
		p.run(toks)
		p.finish()
	}

	dst := image.NewAlpha(image.Rect(0, 0, w, h))
	z.Draw(dst, dst.Bounds(), image.Opaque, image.Point{})
	return dst, nil
}

// WritePNG encodes img as PNG.
func WritePNG(w io.Writer, img image.Image) error {
	return png.Encode(w, img)
}

// pen interprets path commands in absolute pixel space.
type pen struct {
	z          *vector.Rasterizer
	cur, start point
	ctrl       point // last control point, for S and T reflection
	last       byte  // last executed command, uppercased
	open       bool  // a subpath has been started and not closed
}

func (p *pen) run(toks []pathdata.Token) {
	var (
		cmd  byte
		args []float64
	)
	for _, t := range toks {
		if t.Kind == pathdata.CommandToken {
			cmd = t.Cmd
			args = args[:0]
			if n, ok := pathdata.Arity(cmd); ok && n == 0 {
				p.closePath()
			}
			continue
		}

		n, ok := pathdata.Arity(cmd)
		if cmd == 0 || !ok || n == 0 {
			continue
		}
		args = append(args, t.Value)
		if len(args) < n {
			continue
		}
		p.exec(cmd, args)
		args = args[:0]

		// Pairs after a moveto are implicit linetos.
		switch cmd {
		case 'M':
			cmd = 'L'
		case 'm':
			cmd = 'l'
		}
	}
}

func (p *pen) exec(cmd byte, a []float64) {
	var base point
	if 'a' <= cmd && cmd <= 'z' {
		base = p.cur
		cmd -= 'a' - 'A'
	}

	switch cmd {
	case 'M':
		p.closeOpen()
		p.cur = base.add(point{a[0], a[1]})
		p.start = p.cur
		p.z.MoveTo(p.cur.f32())
		p.open = true
	case 'L':
		p.lineTo(base.add(point{a[0], a[1]}))
	case 'H':
		p.lineTo(point{base.x + a[0], p.cur.y})
	case 'V':
		p.lineTo(point{p.cur.x, base.y + a[0]})
	case 'C':
		c1 := base.add(point{a[0], a[1]})
		c2 := base.add(point{a[2], a[3]})
		p.cubeTo(c1, c2, base.add(point{a[4], a[5]}))
	case 'S':
		c1 := p.cur
		if p.last == 'C' || p.last == 'S' {
			c1 = p.cur.reflect(p.ctrl)
		}
		c2 := base.add(point{a[0], a[1]})
		p.cubeTo(c1, c2, base.add(point{a[2], a[3]}))
	case 'Q':
		p.quadTo(base.add(point{a[0], a[1]}), base.add(point{a[2], a[3]}))
	case 'T':
		c := p.cur
		if p.last == 'Q' || p.last == 'T' {
			c = p.cur.reflect(p.ctrl)
		}
		p.quadTo(c, base.add(point{a[0], a[1]}))
	case 'A':
		p.arcTo(a[0], a[1], a[2], a[3] != 0, a[4] != 0, base.add(point{a[5], a[6]}))
	}
	p.last = cmd
}

func (p *pen) ensureOpen() {
	if !p.open {
		p.z.MoveTo(p.start.f32())
		p.cur = p.start
		p.open = true
	}
}

func (p *pen) lineTo(to point) {
	p.ensureOpen()
	p.z.LineTo(to.f32())
	p.cur = to
}

func (p *pen) cubeTo(c1, c2, to point) {
	p.ensureOpen()
	bx, by := c1.f32()
	cx, cy := c2.f32()
	dx, dy := to.f32()
	p.z.CubeTo(bx, by, cx, cy, dx, dy)
	p.ctrl = c2
	p.cur = to
}

func (p *pen) quadTo(c, to point) {
	p.ensureOpen()
	bx, by := c.f32()
	cx, cy := to.f32()
	p.z.QuadTo(bx, by, cx, cy)
	p.ctrl = c
	p.cur = to
}

// closeOpen closes the current subpath if one is open; fills treat every
// subpath as closed.
func (p *pen) closeOpen() {
	if p.open {
		p.z.ClosePath()
		p.open = false
	}
}

func (p *pen) closePath() {
	p.closeOpen()
	p.cur = p.start
	p.last = 'Z'
}

func (p *pen) finish() { p.closeOpen() }

// arcTo approximates an elliptical arc with cubic Béziers of at most 90 degrees
// each, after converting from endpoint to center parameterization.
func (p *pen) arcTo(rx, ry, rotation float64, large, sweep bool, to point) {
	from := p.cur
	if from == to {
		return
	}
	rx, ry = math.Abs(rx), math.Abs(ry)
	if rx == 0 || ry == 0 {
		p.lineTo(to)
		return
	}

	sinPhi, cosPhi := math.Sincos(rotation * math.Pi / 180)
	dx2, dy2 := (from.x-to.x)/2, (from.y-to.y)/2
	x1 := cosPhi*dx2 + sinPhi*dy2
	y1 := -sinPhi*dx2 + cosPhi*dy2

	// Scale radii up when they cannot span the endpoints.
	if lambda := x1*x1/(rx*rx) + y1*y1/(ry*ry); lambda > 1 {
		s := math.Sqrt(lambda)
		rx, ry = rx*s, ry*s
	}

	rx2, ry2 := rx*rx, ry*ry
	num := rx2*ry2 - rx2*y1*y1 - ry2*x1*x1
	den := rx2*y1*y1 + ry2*x1*x1
	coef := 0.0
	if den != 0 {
		coef = math.Sqrt(math.Max(0, num/den))
	}
	if large == sweep {
		coef = -coef
	}
	cx1 := coef * rx * y1 / ry
	cy1 := -coef * ry * x1 / rx
	center := point{
		cosPhi*cx1 - sinPhi*cy1 + (from.x+to.x)/2,
		sinPhi*cx1 + cosPhi*cy1 + (from.y+to.y)/2,
	}

	theta := vecAngle(1, 0, (x1-cx1)/rx, (y1-cy1)/ry)
	delta := vecAngle((x1-cx1)/rx, (y1-cy1)/ry, (-x1-cx1)/rx, (-y1-cy1)/ry)
	if !sweep && delta > 0 {
		delta -= 2 * math.Pi
	} else if sweep && delta < 0 {
		delta += 2 * math.Pi
	}

	onEllipse := func(t float64) (pt, tangent point) {
		sinT, cosT := math.Sincos(t)
		pt = point{
			center.x + rx*cosPhi*cosT - ry*sinPhi*sinT,
			center.y + rx*sinPhi*cosT + ry*cosPhi*sinT,
		}
		tangent = point{
			-rx*cosPhi*sinT - ry*sinPhi*cosT,
			-rx*sinPhi*sinT + ry*cosPhi*cosT,
		}
		return pt, tangent
	}

	segments := int(math.Ceil(math.Abs(delta) / (math.Pi / 2)))
	if segments < 1 {
		segments = 1
	}
	step := delta / float64(segments)
	k := 4.0 / 3.0 * math.Tan(step/4)

	for i := 0; i < segments; i++ {
		p0, d0 := onEllipse(theta + float64(i)*step)
		p1, d1 := onEllipse(theta + float64(i+1)*step)
		if i == segments-1 {
			p1 = to
		}
		p.cubeTo(p0.add(d0.mul(k)), p1.sub(d1.mul(k)), p1)
	}
}

// vecAngle returns the signed angle from u to v.
func vecAngle(ux, uy, vx, vy float64) float64 {
	return math.Atan2(ux*vy-uy*vx, ux*vx+uy*vy)
}
