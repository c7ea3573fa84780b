// Package svgdoc reads and rewrites SVG documents so that their path data fits
// a target pixel frame.
package svgdoc

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/tdewolff/parse/v2"
	pstrconv "github.com/tdewolff/parse/v2/strconv"
	"github.com/tdewolff/parse/v2/xml"

	"github.com/ziadkadry99/pathfit/internal/pathdata"
)

var (
	// ErrNoSVG is returned when the document's root element is not <svg>.
	ErrNoSVG = errors.New("svgdoc: no <svg> root element")
	// ErrNoViewBox is returned when neither viewBox nor width/height describe the root.
	ErrNoViewBox = errors.New("svgdoc: root element has no usable viewBox, width or height")
	// ErrUnsupportedElement is returned in strict mode for shapes that are not paths.
	ErrUnsupportedElement = errors.New("svgdoc: element geometry cannot be rescaled")
)

// shapeElements carry geometry in attributes other than d and are left untouched.
var shapeElements = map[string]bool{
	"rect":     true,
	"circle":   true,
	"ellipse":  true,
	"line":     true,
	"polyline": true,
	"polygon":  true,
	"image":    true,
	"use":      true,
	"text":     true,
}

// Info describes the parts of a document the rescaler cares about.
type Info struct {
	ViewBox pathdata.ViewBox `json:"view_box" yaml:"view_box"`
	Width   string           `json:"width,omitempty" yaml:"width,omitempty"`
	Height  string           `json:"height,omitempty" yaml:"height,omitempty"`
	Paths   []string         `json:"paths" yaml:"paths"`
	Shapes  int              `json:"shapes" yaml:"shapes"`
}

// Options controls Fit.
type Options struct {
	// Strict fails the whole document on the first malformed path or
	// unsupported shape instead of copying it through.
	Strict bool
}

// Stats summarizes a Fit call.
type Stats struct {
	Paths       int `json:"paths"`
	Rewritten   int `json:"rewritten"`
	Unsupported int `json:"unsupported"`
}

// Inspect returns the root viewbox and path data of an SVG document.
func Inspect(data []byte) (*Info, error) {
	info := &Info{}
	var (
		root      rootAttrs
		elem      string
		seenRoot  bool
		inRootTag bool
	)

	err := scan(data, func(l *xml.Lexer, tt xml.TokenType, raw []byte) error {
		switch tt {
		case xml.StartTagToken:
			elem = localName(l.Text())
			if !seenRoot {
				if elem != "svg" {
					return ErrNoSVG
				}
				seenRoot, inRootTag = true, true
			} else if shapeElements[elem] {
				info.Shapes++
			}
		case xml.AttributeToken:
			name := string(l.Text())
			val, _ := unquote(l.AttrVal())
			if inRootTag {
				root.set(name, string(val))
			} else if elem == "path" && name == "d" {
				info.Paths = append(info.Paths, whitespaceEntities.Replace(string(val)))
			}
		case xml.StartTagCloseToken, xml.StartTagCloseVoidToken:
			inRootTag = false
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if !seenRoot {
		return nil, ErrNoSVG
	}

	vb, err := root.viewBox()
	if err != nil {
		return nil, err
	}
	info.ViewBox = vb
	info.Width, info.Height = root.width, root.height
	return info, nil
}

// Fit rewrites every path in the document from its root viewbox into f, and
// updates the root viewBox, width and height to the frame bounds. All other
// bytes are copied unchanged.
func Fit(data []byte, f pathdata.Frame, opts Options) ([]byte, *Stats, error) {
	info, err := Inspect(data)
	if err != nil {
		return nil, nil, err
	}

	r := pathdata.NewRescaler(info.ViewBox, f)
	bounds := f.Bounds()
	newAttrs := map[string]string{
		"viewBox": bounds.String(),
		"width":   pathdata.FormatNumber(bounds.Width),
		"height":  pathdata.FormatNumber(bounds.Height),
	}

	var (
		out       bytes.Buffer
		stats     = &Stats{}
		elem      string
		seenRoot  bool
		inRootTag bool
		written   = map[string]bool{}
	)
	out.Grow(len(data))

	err = scan(data, func(l *xml.Lexer, tt xml.TokenType, raw []byte) error {
		switch tt {
		case xml.StartTagToken:
			elem = localName(l.Text())
			if !seenRoot {
				seenRoot, inRootTag = true, true
			} else if shapeElements[elem] {
				stats.Unsupported++
				if opts.Strict {
					return fmt.Errorf("%w: <%s>", ErrUnsupportedElement, elem)
				}
			}
			out.Write(raw)

		case xml.AttributeToken:
			name := string(l.Text())
			val, _ := unquote(l.AttrVal())
			switch {
			case inRootTag && newAttrs[name] != "":
				written[name] = true
				writeAttr(&out, raw, l.AttrVal(), newAttrs[name])
			case !inRootTag && elem == "path" && name == "d":
				stats.Paths++
				src := whitespaceEntities.Replace(string(val))
				d, err := rescale(r, src, opts.Strict)
				if err != nil {
					return fmt.Errorf("svgdoc: path %d: %w", stats.Paths, err)
				}
				if d != src {
					stats.Rewritten++
				}
				writeAttr(&out, raw, l.AttrVal(), d)
			default:
				writeRaw(&out, raw)
			}

		case xml.StartTagCloseToken, xml.StartTagCloseVoidToken:
			if inRootTag {
				for _, name := range []string{"viewBox", "width", "height"} {
					if !written[name] {
						fmt.Fprintf(&out, ` %s="%s"`, name, newAttrs[name])
					}
				}
				inRootTag = false
			}
			out.Write(raw)

		default:
			out.Write(raw)
		}
		return nil
	})
	if err != nil {
		return nil, nil, err
	}

	return out.Bytes(), stats, nil
}

func rescale(r *pathdata.Rescaler, d string, strict bool) (string, error) {
	if strict {
		return r.RescaleStrict(d)
	}
	return r.Rescale(d), nil
}

// scan runs fn over every token of data.
func scan(data []byte, fn func(l *xml.Lexer, tt xml.TokenType, raw []byte) error) error {
	// parse.NewInputBytes appends a NUL into spare capacity; give it its own copy.
	buf := make([]byte, len(data), len(data)+1)
	copy(buf, data)

	l := xml.NewLexer(parse.NewInputBytes(buf))
	for {
		tt, raw := l.Next()
		if tt == xml.ErrorToken {
			if err := l.Err(); err != nil && err != io.EOF {
				return fmt.Errorf("svgdoc: parsing document: %w", err)
			}
			return nil
		}
		if err := fn(l, tt, raw); err != nil {
			return err
		}
	}
}

// rootAttrs collects the sizing attributes of the root element.
type rootAttrs struct {
	viewBoxAttr   string
	width, height string
}

func (a *rootAttrs) set(name, val string) {
	switch name {
	case "viewBox":
		a.viewBoxAttr = val
	case "width":
		a.width = val
	case "height":
		a.height = val
	}
}

// viewBox returns the declared viewBox, or one derived from width and height.
func (a *rootAttrs) viewBox() (pathdata.ViewBox, error) {
	if a.viewBoxAttr != "" {
		vb, err := pathdata.ParseViewBox(a.viewBoxAttr)
		if err == nil && vb.Valid() {
			return vb, nil
		}
	}
	w, okW := length(a.width)
	h, okH := length(a.height)
	if okW && okH && w > 0 && h > 0 {
		return pathdata.ViewBox{Width: w, Height: h}, nil
	}
	return pathdata.ViewBox{}, ErrNoViewBox
}

// length parses a user-unit or px length such as "24" or "24px".
func length(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	v, n := pstrconv.ParseFloat([]byte(s))
	if n == 0 {
		return 0, false
	}
	if rest := s[n:]; rest != "" && rest != "px" {
		return 0, false
	}
	return v, true
}

// localName strips a namespace prefix such as "svg:" from an element name.
func localName(name []byte) string {
	if i := bytes.IndexByte(name, ':'); i >= 0 {
		name = name[i+1:]
	}
	return string(name)
}

// unquote strips the quotes from a raw attribute value and reports which quote
// character was used.
func unquote(v []byte) ([]byte, byte) {
	if len(v) >= 2 && (v[0] == '"' || v[0] == '\'') && v[len(v)-1] == v[0] {
		return v[1 : len(v)-1], v[0]
	}
	return v, '"'
}

// writeAttr writes an attribute token with its value replaced.
func writeAttr(out *bytes.Buffer, raw, rawVal []byte, val string) {
	i := bytes.LastIndex(raw, rawVal)
	if len(rawVal) == 0 || i < 0 {
		writeRaw(out, raw)
		return
	}
	if !startsWithSpace(raw) {
		out.WriteByte(' ')
	}
	out.Write(raw[:i])
	inner, quote := unquote(rawVal)
	switch {
	case len(inner) != len(rawVal):
		out.WriteByte(quote)
		out.WriteString(val)
		out.WriteByte(quote)
	case i > 0 && (raw[i-1] == '"' || raw[i-1] == '\''):
		// the quotes sit around the value in raw
		out.WriteString(val)
	default:
		out.WriteByte('"')
		out.WriteString(val)
		out.WriteByte('"')
	}
	out.Write(raw[i+len(rawVal):])
}

// whitespaceEntities are the character references editors use to wrap long
// path data across lines.
var whitespaceEntities = strings.NewReplacer(
	"&#10;", " ", "&#xA;", " ", "&#xa;", " ",
	"&#13;", " ", "&#xD;", " ", "&#xd;", " ",
	"&#9;", " ", "&#x9;", " ",
)

func writeRaw(out *bytes.Buffer, raw []byte) {
	if !startsWithSpace(raw) {
		out.WriteByte(' ')
	}
	out.Write(raw)
}

func startsWithSpace(b []byte) bool {
	return len(b) > 0 && (b[0] == ' ' || b[0] == '\t' || b[0] == '\n' || b[0] == '\r')
}
