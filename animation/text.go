// Copyright ©2023 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package animation

import (
	"errors"
	"image"
	"image/color"
	"image/gif"
	"strings"
	"unicode/utf8"

	"golang.org/x/image/draw"
	"golang.org/x/image/font/basicfont"

	"github.com/kortschak/flipbook/internal/text"
)

// Text is a scrolling text animation. It is useful as a placeholder for
// an animation that could not be decoded.
type Text string

// textDelay is the frame delay of scrolling text in hundredths of a second.
const textDelay = 15

// GIF returns a GIF containing animation frames required to present the full
// length of the receiver within the given bounds using [basicfont.Face7x13].
// The provided palette must have at least two colors, which will be indexed
// by fg and bg to provide the foreground and background colors for the
// text animation. Text that fits within the bounds is rendered as a single
// centered frame.
func (t Text) GIF(bound image.Rectangle, pal color.Palette, fg, bg byte) (*gif.GIF, error) {
	if int(fg) >= len(pal) || int(bg) >= len(pal) {
		return nil, errors.New("color index not in palette")
	}
	fnt := basicfont.Face7x13
	rows, cols := text.Size(bound, fnt)
	cells := rows * cols
	s := strings.TrimSpace(string(t))
	if s == "" {
		s = " "
	}

	frames := 1
	if utf8.RuneCountInString(s) > cells || len(text.Lines(s, cols, true)) > rows {
		if cells < 4 {
			return nil, errors.New("bound too small")
		}
		s = strings.Repeat(" ", cells-4) + s
		frames = utf8.RuneCountInString(s)
	}

	g := &gif.GIF{
		Image: make([]*image.Paletted, 0, frames),
		Delay: make([]int, 0, frames),
		Config: image.Config{
			ColorModel: pal,
			Width:      bound.Dx(),
			Height:     bound.Dy(),
		},
		BackgroundIndex: bg,
	}
	singleFrame := frames == 1 // Centered and word broken.
	var delta float64
	if singleFrame {
		delta = 0.5
	}
	background := &image.Uniform{pal[bg]}
	r := []rune(s)
	for i := range frames {
		dst := image.NewPaletted(bound, pal)
		draw.Draw(dst, dst.Bounds(), background, image.Point{}, draw.Src)
		text.Draw(dst, string(r[i:]), pal[fg], fnt, delta, delta, singleFrame)
		g.Image = append(g.Image, dst)
		g.Delay = append(g.Delay, textDelay)
	}
	return g, nil
}

// FrameSet returns the animation rendered by GIF as a FrameSet. The
// identity of the FrameSet is the byte length of the text.
func (t Text) FrameSet(bound image.Rectangle, pal color.Palette, fg, bg byte) (*FrameSet, error) {
	g, err := t.GIF(bound, pal, fg, bg)
	if err != nil {
		return nil, err
	}
	return FromGIF(g, Identity(len(t)))
}
