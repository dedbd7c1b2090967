// Copyright ©2023 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package text provides functions for rendering [basicfont.Face] fonts to
// an image.
package text

import (
	"image"
	"image/color"
	"image/draw"
	"strings"
	"unicode/utf8"

	"github.com/bbrks/wrap/v2"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// Size returns the size, in font rows and columns, of the bounding rectangle.
func Size(bound image.Rectangle, fnt *basicfont.Face) (rows, cols int) {
	return bound.Dy() / fnt.Height, bound.Dx() / fnt.Advance
}

// Lines splits text into lines that fit in cols columns. If words is true,
// lines are broken at word boundaries where possible, otherwise text is
// broken at exactly cols runes.
func Lines(text string, cols int, words bool) []string {
	if cols < 1 {
		return nil
	}
	if words {
		wrapper := wrap.NewWrapper()
		wrapper.StripTrailingNewline = true
		wrapper.CutLongWords = true
		lines := strings.Split(wrapper.Wrap(text, cols), "\n")
		for i, l := range lines {
			lines[i] = strings.TrimSpace(l)
		}
		return lines
	}
	var lines []string
	t := []rune(text)
	for len(t) != 0 {
		n := min(cols, len(t))
		lines = append(lines, string(t[:n]))
		t = t[n:]
	}
	return lines
}

// ellipsis marks truncated text.
const ellipsis = "..."

// truncate returns at most rows lines, marking the last with an ellipsis
// if lines were dropped. No returned line is longer than cols runes.
func truncate(lines []string, rows, cols int) []string {
	if len(lines) <= rows {
		return lines
	}
	lines = lines[:rows]
	last := []rune(lines[rows-1])
	if keep := max(0, cols-len(ellipsis)); len(last) > keep {
		last = last[:keep]
	}
	lines[rows-1] = string(last) + ellipsis[:min(cols, len(ellipsis))]
	return lines
}

// Draw draws the provided text to the destination in the provided color.
// Relative position of the text block is specified by dx and dy which must
// be in the range [0, 1]. If words is true, text spanning lines will be
// broken at word boundaries where possible. Text that does not fit is
// truncated with an ellipsis.
func Draw(dst draw.Image, text string, col color.Color, fnt *basicfont.Face, dx, dy float64, words bool) {
	rows, cols := Size(dst.Bounds(), fnt)
	if rows < 1 || cols < 1 {
		return
	}
	lines := truncate(Lines(text, cols, words), rows, cols)

	var width int
	for _, l := range lines {
		width = max(width, utf8.RuneCountInString(l))
	}
	b := dst.Bounds()
	free := b.Size().Sub(image.Point{X: width * fnt.Advance, Y: len(lines) * fnt.Height})
	origin := b.Min.Add(image.Point{X: int(float64(free.X) * dx), Y: int(float64(free.Y) * dy)})

	drawer := font.Drawer{
		Dst:  dst,
		Src:  &image.Uniform{col},
		Face: fnt,
	}
	for i, l := range lines {
		drawer.Dot = fixed.P(origin.X, origin.Y+fnt.Ascent+fnt.Height*i)
		drawer.DrawString(l)
	}
}
