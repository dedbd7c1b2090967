// Copyright ©2023 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package term renders images to terminals using ANSI 24-bit color
// half-block cells. Each cell holds two vertically stacked pixels.
package term

import (
	"fmt"
	"image"
	"image/color"
	"io"
	"math"
	"strconv"
	"strings"

	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/image/draw"
)

const (
	upperHalf = "▀"
	reset     = "\x1b[0m"

	// HideCursor and ShowCursor control terminal cursor visibility.
	HideCursor = "\x1b[?25l"
	ShowCursor = "\x1b[?25h"
)

// Renderer renders frames into a fixed number of terminal cells.
type Renderer struct {
	// Cols and Rows are the dimensions of the viewer in cells.
	Cols, Rows int

	// Fit is the placement policy for frames.
	Fit Fit

	// Background is the color drawn behind frames. If it
	// is nil, black is used.
	Background color.Color

	// Filter is the interpolation used to resize frames.
	Filter Filter

	// Opacity is the opacity of frames drawn over the
	// background, in (0, 1]. Zero is treated as fully
	// opaque.
	Opacity float64

	// Cache caches rendered lines for each frame. Cache
	// must not be shared between renderers with different
	// parameters.
	Cache *Cache
}

// Size returns the pixel dimensions of the renderer's viewer.
func (r *Renderer) Size() image.Point {
	return image.Point{X: r.Cols, Y: 2 * r.Rows}
}

// Render returns the lines of cells for the provided frame.
func (r *Renderer) Render(img *image.RGBA) []string {
	if lines, ok := r.Cache.get(img); ok {
		return lines
	}
	lines := Cells(r.Canvas(img))
	r.Cache.put(img, lines)
	return lines
}

// Canvas returns img placed onto the background of a new image with the
// renderer's pixel dimensions.
func (r *Renderer) Canvas(img *image.RGBA) *image.RGBA {
	dst := image.NewRGBA(image.Rectangle{Max: r.Size()})
	bg := r.Background
	if bg == nil {
		bg = color.Black
	}
	draw.Draw(dst, dst.Bounds(), &image.Uniform{bg}, image.Point{}, draw.Src)
	if img == nil {
		return dst
	}

	src := img.Bounds()
	dr := r.Fit.Place(src.Size(), dst.Bounds().Size())
	if dr.Empty() {
		return dst
	}
	var mask image.Image
	if r.Opacity > 0 && r.Opacity < 1 {
		mask = &image.Uniform{color.Alpha{A: uint8(math.Round(r.Opacity * 0xff))}}
	}
	if dr.Size() == src.Size() {
		draw.DrawMask(dst, dr, img, src.Min, mask, image.Point{}, draw.Over)
		return dst
	}
	r.Filter.Scaler().Scale(dst, dr, img, src, draw.Over, &draw.Options{SrcMask: mask})
	return dst
}

// Cells returns the ANSI rendering of img, one string per pair of pixel
// rows. The last row of an image with odd height is paired with black.
func Cells(img *image.RGBA) []string {
	b := img.Bounds()
	lines := make([]string, 0, (b.Dy()+1)/2)
	var sb strings.Builder
	for y := b.Min.Y; y < b.Max.Y; y += 2 {
		sb.Reset()
		var fg, bg color.RGBA
		for x := b.Min.X; x < b.Max.X; x++ {
			top := img.RGBAAt(x, y)
			bot := color.RGBA{A: 0xff}
			if y+1 < b.Max.Y {
				bot = img.RGBAAt(x, y+1)
			}
			if x == b.Min.X || top != fg {
				sgr(&sb, 38, top)
				fg = top
			}
			if x == b.Min.X || bot != bg {
				sgr(&sb, 48, bot)
				bg = bot
			}
			sb.WriteString(upperHalf)
		}
		sb.WriteString(reset)
		lines = append(lines, sb.String())
	}
	return lines
}

// sgr writes a 24-bit color select graphic rendition sequence for c.
// Code is 38 for foreground and 48 for background.
func sgr(sb *strings.Builder, code int, c color.RGBA) {
	sb.WriteString("\x1b[")
	sb.WriteString(strconv.Itoa(code))
	sb.WriteString(";2;")
	sb.WriteString(strconv.Itoa(int(c.R)))
	sb.WriteByte(';')
	sb.WriteString(strconv.Itoa(int(c.G)))
	sb.WriteByte(';')
	sb.WriteString(strconv.Itoa(int(c.B)))
	sb.WriteByte('m')
}

// Join writes blocks of rendered lines side by side to w, separated by gap
// columns. Each block is cols[i] cells wide and shorter blocks are padded
// with blank lines. It returns the number of lines written.
func Join(w io.Writer, blocks [][]string, cols []int, gap int) (int, error) {
	if len(blocks) != len(cols) {
		return 0, fmt.Errorf("mismatched block and width counts: %d != %d", len(blocks), len(cols))
	}
	var n int
	for _, b := range blocks {
		n = max(n, len(b))
	}
	sep := strings.Repeat(" ", gap)
	var sb strings.Builder
	for i := range n {
		sb.Reset()
		for j, b := range blocks {
			if j != 0 {
				sb.WriteString(sep)
			}
			if i < len(b) {
				sb.WriteString(b[i])
			} else {
				sb.WriteString(strings.Repeat(" ", cols[j]))
			}
		}
		sb.WriteByte('\n')
		_, err := io.WriteString(w, sb.String())
		if err != nil {
			return i, err
		}
	}
	return n, nil
}

// Home moves the terminal cursor up n lines to the start of the line,
// allowing the next render to overwrite the previous one.
func Home(w io.Writer, n int) error {
	if n <= 0 {
		return nil
	}
	_, err := fmt.Fprintf(w, "\x1b[%dF", n)
	return err
}

// Cache is a cache of rendered frames keyed on the source frame image.
// FrameSet frames are immutable, so the image pointer identifies the
// rendering for a given Renderer. A nil *Cache is valid and caches
// nothing.
type Cache struct {
	cache *lru.Cache[*image.RGBA, []string]
}

// NewCache returns a Cache holding up to size rendered frames.
func NewCache(size int) (*Cache, error) {
	c, err := lru.New[*image.RGBA, []string](size)
	if err != nil {
		return nil, err
	}
	return &Cache{cache: c}, nil
}

// Len returns the number of cached renderings.
func (c *Cache) Len() int {
	if c == nil {
		return 0
	}
	return c.cache.Len()
}

// Purge removes all cached renderings.
func (c *Cache) Purge() {
	if c == nil {
		return
	}
	c.cache.Purge()
}

// get returns the cached lines for the provided key image.
func (c *Cache) get(key *image.RGBA) ([]string, bool) {
	if c == nil || key == nil {
		return nil, false
	}
	return c.cache.Get(key)
}

// put caches lines for key.
func (c *Cache) put(key *image.RGBA, lines []string) {
	if c == nil || key == nil {
		return
	}
	c.cache.Add(key, lines)
}
