// Copyright ©2023 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package animation

import (
	"fmt"
	"image"
	"math"
	"slices"
	"time"
)

const (
	// MinDelay is the shortest frame delay honoured. Frames with a
	// shorter delay, including zero, are shown for DefaultDelay. This
	// matches the behaviour of common browsers for delays of 0 and 1
	// hundredths of a second.
	MinDelay = 20 * time.Millisecond

	// DefaultDelay is the delay used for frames without a usable delay.
	DefaultDelay = 100 * time.Millisecond
)

// normalizeDelay returns d or DefaultDelay if d is below MinDelay.
func normalizeDelay(d time.Duration) time.Duration {
	if d < MinDelay {
		return DefaultDelay
	}
	return d
}

// Identity is a cheap fingerprint of the source of a FrameSet. It is
// derived from the length of the source data, so two distinct sources
// with the same length have the same Identity.
type Identity uint64

// Frame is a single fully composited animation frame.
type Frame struct {
	// Image is the frame's pixels. Its Stride is always four times
	// its width. Image must not be mutated.
	Image *image.RGBA

	// Delay is how long the frame is displayed before the next.
	Delay time.Duration
}

// Size returns the pixel dimensions of the frame.
func (f Frame) Size() image.Point {
	if f.Image == nil {
		return image.Point{}
	}
	return f.Image.Rect.Size()
}

// FrameSet is an immutable decoded animation. A FrameSet may be used
// concurrently by any number of goroutines.
type FrameSet struct {
	frames    []Frame
	identity  Identity
	bounds    image.Rectangle
	cycle     time.Duration
	loopCount int
}

// NewFrameSet returns a FrameSet holding the provided frames in playback
// order with the given identity. Delays below MinDelay are replaced with
// DefaultDelay. NewFrameSet returns an *Error with kind ErrEmpty if frames
// is empty, and ErrMalformed if any frame is missing its image or the
// total duration of the frames overflows a time.Duration.
func NewFrameSet(frames []Frame, id Identity) (*FrameSet, error) {
	if len(frames) == 0 {
		return nil, &Error{Kind: ErrEmpty, Offset: -1}
	}
	fs := &FrameSet{
		frames:   slices.Clone(frames),
		identity: id,
	}
	for i, f := range fs.frames {
		if f.Image == nil {
			return nil, &Error{Kind: ErrMalformed, Offset: -1, Err: fmt.Errorf("frame %d has no image", i)}
		}
		d := normalizeDelay(f.Delay)
		if fs.cycle > math.MaxInt64-d {
			return nil, &Error{Kind: ErrMalformed, Offset: -1, Err: fmt.Errorf("frame %d delay overflows cycle duration", i)}
		}
		fs.frames[i].Delay = d
		fs.bounds = fs.bounds.Union(f.Image.Rect)
		fs.cycle += d
	}
	return fs, nil
}

// Len returns the number of frames in the set. It is always at least one.
func (fs *FrameSet) Len() int { return len(fs.frames) }

// Frame returns the i'th frame. It panics if i is out of range.
func (fs *FrameSet) Frame(i int) Frame { return fs.frames[i] }

// Frames returns a copy of the frame sequence.
func (fs *FrameSet) Frames() []Frame { return slices.Clone(fs.frames) }

// Identity returns the identity of the source the set was decoded from.
func (fs *FrameSet) Identity() Identity { return fs.identity }

// Bounds returns the union of the frame bounds. For decoded GIFs this is
// the logical screen.
func (fs *FrameSet) Bounds() image.Rectangle { return fs.bounds }

// Cycle returns the total duration of one pass through all frames.
func (fs *FrameSet) Cycle() time.Duration { return fs.cycle }

// LoopCount returns the loop count declared by the source GIF, following
// the [image/gif.GIF] convention. It is informational; playback always
// loops indefinitely.
func (fs *FrameSet) LoopCount() int { return fs.loopCount }
