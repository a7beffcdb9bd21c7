package animation

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"math"
	"strconv"

	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
	"golang.org/x/net/html"

	"github.com/livetemplate/wrap/internal/dom"
)

// Default overlay size, matching the print layout of a slide.
const (
	DefaultSurfaceWidth  = 1024
	DefaultSurfaceHeight = 768
)

// OverlayClass marks the element a surface is flushed into.
const OverlayClass = "wrap-overlay"

// Surface is an off-screen drawing surface overlaid on a slide. Drawing
// happens on an RGBA image; Flush publishes it into the overlay element as a
// PNG data URI.
type Surface struct {
	img    *image.RGBA
	target *html.Node
	pen    int
}

// NewSurface creates a transparent surface of the given size.
func NewSurface(width, height int, target *html.Node) *Surface {
	if width <= 0 {
		width = DefaultSurfaceWidth
	}
	if height <= 0 {
		height = DefaultSurfaceHeight
	}
	return &Surface{
		img:    image.NewRGBA(image.Rect(0, 0, width, height)),
		target: target,
		pen:    2,
	}
}

// AttachSurface creates a surface for a slide and appends its overlay
// element. The size follows the slide's first canvas when it declares one.
func AttachSurface(slide *html.Node) *Surface {
	w, h := DefaultSurfaceWidth, DefaultSurfaceHeight
	if canvas := dom.First(slide, "canvas"); canvas != nil {
		if v, ok := dom.Attr(canvas, "width"); ok {
			if n, err := strconv.Atoi(v); err == nil {
				w = n
			}
		}
		if v, ok := dom.Attr(canvas, "height"); ok {
			if n, err := strconv.Atoi(v); err == nil {
				h = n
			}
		}
	}
	overlay := &html.Node{Type: html.ElementNode, Data: "img"}
	dom.SetAttr(overlay, "class", OverlayClass)
	dom.SetAttr(overlay, "alt", "")
	dom.SetStyle(overlay, "position", "absolute")
	dom.SetStyle(overlay, "left", "0")
	dom.SetStyle(overlay, "top", "0")
	dom.SetStyle(overlay, "pointer-events", "none")
	slide.AppendChild(overlay)
	return NewSurface(w, h, overlay)
}

func (s *Surface) Width() int  { return s.img.Bounds().Dx() }
func (s *Surface) Height() int { return s.img.Bounds().Dy() }

// Image exposes the backing image.
func (s *Surface) Image() *image.RGBA { return s.img }

// Target is the overlay element.
func (s *Surface) Target() *html.Node { return s.target }

// Clear makes the whole surface transparent.
func (s *Surface) Clear() {
	draw.Draw(s.img, s.img.Bounds(), image.Transparent, image.Point{}, draw.Src)
}

// DrawImage composites src with its top-left corner at (x, y).
func (s *Surface) DrawImage(src image.Image, x, y int) {
	b := src.Bounds()
	r := image.Rect(x, y, x+b.Dx(), y+b.Dy())
	draw.Draw(s.img, r, src, b.Min, draw.Over)
}

// StrokeRect outlines the rectangle with its top-left corner at (x, y).
func (s *Surface) StrokeRect(x, y, w, h int, c color.Color) {
	s.Line(x, y, x+w, y, c)
	s.Line(x+w, y, x+w, y+h, c)
	s.Line(x+w, y+h, x, y+h, c)
	s.Line(x, y+h, x, y, c)
}

// Line draws a straight segment.
func (s *Surface) Line(x0, y0, x1, y1 int, c color.Color) {
	dx, dy := x1-x0, y1-y0
	steps := int(math.Max(math.Abs(float64(dx)), math.Abs(float64(dy))))
	if steps == 0 {
		s.plot(x0, y0, c)
		return
	}
	for i := 0; i <= steps; i++ {
		x := x0 + int(math.Round(float64(dx*i)/float64(steps)))
		y := y0 + int(math.Round(float64(dy*i)/float64(steps)))
		s.plot(x, y, c)
	}
}

// Ellipse outlines an axis-aligned ellipse.
func (s *Surface) Ellipse(cx, cy, rx, ry int, c color.Color) {
	n := 4 * (rx + ry)
	if n < 16 {
		n = 16
	}
	for i := 0; i < n; i++ {
		a := 2 * math.Pi * float64(i) / float64(n)
		x := cx + int(math.Round(float64(rx)*math.Cos(a)))
		y := cy + int(math.Round(float64(ry)*math.Sin(a)))
		s.plot(x, y, c)
	}
}

// Text draws a label with its baseline starting at (x, y).
func (s *Surface) Text(x, y int, text string, c color.Color) {
	d := &font.Drawer{
		Dst:  s.img,
		Src:  image.NewUniform(c),
		Face: basicfont.Face7x13,
		Dot:  fixed.P(x, y),
	}
	d.DrawString(text)
}

func (s *Surface) plot(x, y int, c color.Color) {
	for i := 0; i < s.pen; i++ {
		for j := 0; j < s.pen; j++ {
			if (image.Point{X: x + i, Y: y + j}).In(s.img.Bounds()) {
				s.img.Set(x+i, y+j, c)
			}
		}
	}
}

// Flush encodes the surface and points the overlay element at it.
func (s *Surface) Flush() error {
	var buf bytes.Buffer
	if err := png.Encode(&buf, s.img); err != nil {
		return fmt.Errorf("encode overlay: %w", err)
	}
	if s.target != nil {
		dom.SetAttr(s.target, "src", "data:image/png;base64,"+base64.StdEncoding.EncodeToString(buf.Bytes()))
	}
	return nil
}
