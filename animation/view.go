// Copyright ©2023 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package animation

import (
	"image"
	"time"
)

// View is a single on-screen instance of an animation. It pairs a shared
// FrameSet with the viewer's own Cursor. The zero View is unbound.
type View struct {
	frames *FrameSet
	cursor Cursor
}

// Bind sets the FrameSet displayed by the view. If fs has a different
// identity to the currently bound FrameSet, playback restarts from the
// first frame at now. Bind reports whether playback was restarted.
// Binding a nil FrameSet unbinds the view.
func (v *View) Bind(fs *FrameSet, now time.Time) bool {
	v.frames = fs
	if fs == nil {
		v.cursor = Cursor{}
		return false
	}
	return v.cursor.Sync(fs, now)
}

// FrameSet returns the bound FrameSet, or nil if the view is unbound.
func (v *View) FrameSet() *FrameSet { return v.frames }

// Cursor returns the view's playback cursor.
func (v *View) Cursor() *Cursor { return &v.cursor }

// Redraw advances playback to now and returns the frame to display and
// the time by which Redraw must be called again. If the view is unbound,
// ok is false.
func (v *View) Redraw(now time.Time) (f Frame, deadline time.Time, ok bool) {
	if v.frames == nil {
		return Frame{}, time.Time{}, false
	}
	deadline = v.cursor.Advance(now, v.frames)
	return v.cursor.Frame(v.frames), deadline, true
}

// Size returns the pixel dimensions of the bound animation for use in
// host layout. It is the zero point if the view is unbound.
func (v *View) Size() image.Point {
	if v.frames == nil {
		return image.Point{}
	}
	return v.frames.Bounds().Size()
}
