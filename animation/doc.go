// Copyright ©2023 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package animation provides animated GIF decoding and time-based playback.
//
// A GIF is decoded once into a [FrameSet], an immutable sequence of fully
// composited RGBA frames and their display delays. A FrameSet may be shared
// by any number of viewers. Each viewer owns a [Cursor] (or a [View], which
// pairs a Cursor with its bound FrameSet) that tracks the frame currently on
// screen. On each redraw the host calls [Cursor.Advance] with the current
// time and must arrange to redraw again no later than the returned deadline.
//
//	fs, err := animation.DecodeFile("gopher.gif")
//	if err != nil {
//		return err
//	}
//	var v animation.View
//	v.Bind(fs, time.Now())
//	for {
//		frame, deadline, _ := v.Redraw(time.Now())
//		draw(frame.Image)
//		time.Sleep(time.Until(deadline))
//	}
//
// Nothing in the package starts goroutines or takes locks. A Cursor must
// only be used by one goroutine at a time.
package animation
