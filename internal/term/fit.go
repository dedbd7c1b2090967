// Copyright ©2023 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package term

import (
	"fmt"
	"image"
	"math"
)

// Fit is a policy for placing an animation frame within a viewer.
type Fit int

const (
	// Contain scales the frame to fit entirely within the viewer,
	// preserving aspect ratio.
	Contain Fit = iota
	// Cover scales the frame to cover the viewer, preserving aspect
	// ratio and cropping the overflow.
	Cover
	// Fill stretches the frame to the viewer dimensions.
	Fill
	// None draws the frame unscaled, cropping any overflow.
	None
	// ScaleDown behaves as None when the frame fits within the viewer
	// and as Contain otherwise.
	ScaleDown
)

var fitNames = []string{
	Contain:   "contain",
	Cover:     "cover",
	Fill:      "fill",
	None:      "none",
	ScaleDown: "scale-down",
}

func (f Fit) String() string {
	if f < 0 || int(f) >= len(fitNames) {
		return fmt.Sprintf("Fit(%d)", int(f))
	}
	return fitNames[f]
}

// ParseFit returns the Fit with the given name.
func ParseFit(name string) (Fit, error) {
	for i, n := range fitNames {
		if n == name {
			return Fit(i), nil
		}
	}
	return 0, fmt.Errorf("unknown fit: %q", name)
}

// Set implements the flag.Value interface.
func (f *Fit) Set(name string) error {
	v, err := ParseFit(name)
	if err != nil {
		return err
	}
	*f = v
	return nil
}

// Place returns the rectangle that an image of size src occupies within
// a viewer of size dst anchored at the origin. The returned rectangle is
// centered in the viewer and may extend beyond it.
func (f Fit) Place(src, dst image.Point) image.Rectangle {
	if src.X <= 0 || src.Y <= 0 || dst.X <= 0 || dst.Y <= 0 {
		return image.Rectangle{}
	}
	var size image.Point
	switch f {
	case Fill:
		return image.Rectangle{Max: dst}
	case None:
		size = src
	case ScaleDown:
		if src.X <= dst.X && src.Y <= dst.Y {
			size = src
			break
		}
		fallthrough
	case Contain:
		size = scale(src, math.Min(float64(dst.X)/float64(src.X), float64(dst.Y)/float64(src.Y)))
	case Cover:
		size = scale(src, math.Max(float64(dst.X)/float64(src.X), float64(dst.Y)/float64(src.Y)))
	default:
		return image.Rectangle{}
	}
	off := dst.Sub(size).Div(2)
	return image.Rectangle{Min: off, Max: off.Add(size)}
}

// scale returns p scaled by s, rounded to the nearest pixel and never
// less than a single pixel in each dimension.
func scale(p image.Point, s float64) image.Point {
	return image.Point{
		X: max(1, int(math.Round(float64(p.X)*s))),
		Y: max(1, int(math.Round(float64(p.Y)*s))),
	}
}
