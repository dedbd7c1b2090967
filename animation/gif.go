// Copyright ©2023 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package animation

import (
	"bufio"
	"bytes"
	"fmt"
	"image"
	"image/gif"
	"io"
	"os"
	"time"

	"golang.org/x/image/draw"
)

// IsGIF returns whether the data held by r starts with a GIF87a or GIF89a
// signature. No data is consumed from r.
func IsGIF(r ReadPeeker) bool {
	b, err := r.Peek(headerLen)
	return err == nil && isSignature(b)
}

// ReadPeeker is an io.Reader that can also peek n bytes ahead.
type ReadPeeker interface {
	io.Reader
	Peek(n int) ([]byte, error)
}

// AsReadPeeker converts an io.Reader to a ReadPeeker.
func AsReadPeeker(r io.Reader) ReadPeeker {
	if r, ok := r.(ReadPeeker); ok {
		return r
	}
	return bufio.NewReader(r)
}

// Decode decodes the complete GIF held in b into a FrameSet. The identity
// of the returned FrameSet is the length of b.
//
// Decode either returns a FrameSet holding every frame or an *Error; it
// never returns a partial result.
func Decode(b []byte) (*FrameSet, error) {
	l, err := scan(b)
	if err != nil {
		return nil, err
	}
	if l.frames == 0 {
		return nil, &Error{Kind: ErrEmpty, Offset: -1}
	}
	g, err := gif.DecodeAll(bytes.NewReader(b))
	if err != nil {
		return nil, &Error{Kind: ErrMalformed, Offset: -1, Err: err}
	}
	if len(g.Image) != l.frames {
		return nil, &Error{Kind: ErrMalformed, Offset: -1, Err: fmt.Errorf("mismatched frame count: %d != %d", len(g.Image), l.frames)}
	}
	return FromGIF(g, Identity(len(b)))
}

// DecodeReader reads r to completion and decodes the result with Decode.
// Read failures are returned as an *Error with kind ErrIO.
func DecodeReader(r io.Reader) (*FrameSet, error) {
	b, err := io.ReadAll(r)
	if err != nil {
		return nil, &Error{Kind: ErrIO, Offset: int64(len(b)), Err: err}
	}
	return Decode(b)
}

// DecodeFile decodes the GIF file at path with Decode. Failures to read
// the file are returned as an *Error with kind ErrIO.
func DecodeFile(path string) (*FrameSet, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, &Error{Kind: ErrIO, Offset: -1, Err: err}
	}
	return Decode(b)
}

// FromGIF returns a FrameSet rendered from the frames of g with the
// provided identity. Each frame is composited onto the logical screen,
// honouring the frame disposal methods, so every frame in the result
// is a complete image of the screen. If g has no logical screen size,
// the union of the frame bounds is used.
func FromGIF(g *gif.GIF, id Identity) (*FrameSet, error) {
	if len(g.Image) == 0 {
		return nil, &Error{Kind: ErrEmpty, Offset: -1}
	}
	if len(g.Image) != len(g.Delay) && g.Delay != nil {
		return nil, &Error{Kind: ErrMalformed, Offset: -1, Err: fmt.Errorf("mismatched image count and delay count: %d != %d", len(g.Image), len(g.Delay))}
	}
	if len(g.Image) != len(g.Disposal) && g.Disposal != nil {
		return nil, &Error{Kind: ErrMalformed, Offset: -1, Err: fmt.Errorf("mismatched image count and disposal count: %d != %d", len(g.Image), len(g.Disposal))}
	}

	screen := image.Rect(0, 0, g.Config.Width, g.Config.Height)
	if screen.Empty() {
		for _, frame := range g.Image {
			screen = screen.Union(frame.Bounds())
		}
	}

	canvas := image.NewRGBA(screen)
	frames := make([]Frame, 0, len(g.Image))
	for i, frame := range g.Image {
		if frame == nil {
			return nil, &Error{Kind: ErrMalformed, Offset: -1, Err: fmt.Errorf("frame %d has no image", i)}
		}
		var disposal byte
		if g.Disposal != nil {
			disposal = g.Disposal[i]
		}
		var restore *image.RGBA
		if disposal == gif.DisposalPrevious {
			restore = image.NewRGBA(frame.Bounds())
			draw.Copy(restore, restore.Rect.Min, canvas, frame.Bounds(), draw.Src, nil)
		}

		draw.Copy(canvas, frame.Bounds().Min, frame, frame.Bounds(), draw.Over, nil)
		var delay time.Duration
		if g.Delay != nil {
			delay = 10 * time.Duration(g.Delay[i]) * time.Millisecond
		}
		frames = append(frames, Frame{Image: snapshot(canvas), Delay: delay})

		switch disposal {
		case gif.DisposalBackground:
			// Background disposal clears to transparent
			// as browsers do, rather than the background
			// colour index.
			draw.Draw(canvas, frame.Bounds(), image.Transparent, image.Point{}, draw.Src)
		case gif.DisposalPrevious:
			draw.Copy(canvas, restore.Rect.Min, restore, restore.Rect, draw.Src, nil)
		}
	}

	fs, err := NewFrameSet(frames, id)
	if err != nil {
		return nil, err
	}
	fs.loopCount = g.LoopCount
	return fs, nil
}

// snapshot returns a copy of img with a minimal stride.
func snapshot(img *image.RGBA) *image.RGBA {
	dst := image.NewRGBA(img.Rect)
	if img.Stride == dst.Stride {
		copy(dst.Pix, img.Pix)
		return dst
	}
	draw.Copy(dst, dst.Rect.Min, img, img.Rect, draw.Src, nil)
	return dst
}
