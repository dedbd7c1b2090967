// Copyright ©2023 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package animation

import "time"

// Cursor is a playback position in a FrameSet. The zero Cursor is unbound
// and is bound to a FrameSet by the first call to Reset, Sync or Advance.
//
// Cursor values must not be used concurrently. A Cursor never modifies
// the FrameSet it is used with.
type Cursor struct {
	identity Identity
	bound    bool

	// index is the frame on display.
	index int
	// started is when the frame at index was first on display.
	started time.Time
}

// NewCursor returns a Cursor bound to fs, displaying the first frame
// from now.
func NewCursor(fs *FrameSet, now time.Time) *Cursor {
	var c Cursor
	c.Reset(fs, now)
	return &c
}

// Reset binds c to fs and restarts playback from the first frame at now.
func (c *Cursor) Reset(fs *FrameSet, now time.Time) {
	c.identity = fs.Identity()
	c.bound = true
	c.index = 0
	c.started = now
}

// Sync resets c with Reset if it is unbound or was bound to a FrameSet
// with a different identity than fs. It reports whether c was reset.
func (c *Cursor) Sync(fs *FrameSet, now time.Time) bool {
	if c.bound && c.identity == fs.Identity() {
		return false
	}
	c.Reset(fs, now)
	return true
}

// Advance moves the cursor to the frame that should be on display at
// now, looping past the last frame back to the first, and returns the
// time at which the displayed frame will be due to change. The host
// must call Advance again no later than the returned deadline. Calling
// Advance earlier is harmless.
//
// Any number of frames may be skipped if the time since the last call
// is long. If c is not bound to fs, as determined by identity, it is
// reset first. Calls must be made with non-decreasing values of now;
// if now is before the start of the displayed frame no frames are
// advanced.
func (c *Cursor) Advance(now time.Time, fs *FrameSet) time.Time {
	if !c.Sync(fs, now) && c.index >= len(fs.frames) {
		// Identities are weak, so a different FrameSet
		// may share the bound identity.
		c.Reset(fs, now)
	}

	delay := fs.frames[c.index].Delay
	elapsed := now.Sub(c.started)
	if elapsed < delay {
		// This includes clock regression where
		// elapsed is negative.
		return c.started.Add(delay)
	}

	// Whole passes through the frames leave the index
	// unchanged, so only the remainder needs stepping.
	if elapsed >= fs.cycle {
		elapsed %= fs.cycle
	}
	for elapsed >= delay {
		elapsed -= delay
		c.index = (c.index + 1) % len(fs.frames)
		delay = fs.frames[c.index].Delay
	}
	c.started = now.Add(-elapsed)
	return c.started.Add(delay)
}

// Index returns the index of the frame on display.
func (c *Cursor) Index() int { return c.index }

// Started returns the time the frame on display was first shown.
func (c *Cursor) Started() time.Time { return c.started }

// Identity returns the identity of the FrameSet the cursor is bound to
// and whether it is bound.
func (c *Cursor) Identity() (id Identity, ok bool) { return c.identity, c.bound }

// Frame returns the frame on display in fs. If c is not bound to fs the
// first frame is returned.
func (c *Cursor) Frame(fs *FrameSet) Frame {
	if !c.bound || c.identity != fs.Identity() || c.index >= len(fs.frames) {
		return fs.frames[0]
	}
	return fs.frames[c.index]
}
