// Copyright ©2023 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package animation

import (
	"errors"
	"fmt"
	"strings"
)

// Decoding error kinds. Errors returned by the decoding functions are
// *Error values that match one of these with [errors.Is].
var (
	// ErrMalformed indicates a signature mismatch or a structural
	// failure in the GIF data.
	ErrMalformed = errors.New("malformed gif")
	// ErrEmpty indicates a well-formed GIF with no frames.
	ErrEmpty = errors.New("gif has no frames")
	// ErrIO indicates a failure reading the GIF data.
	ErrIO = errors.New("gif read failed")
)

// Error is a decoding error.
type Error struct {
	// Kind is one of ErrMalformed, ErrEmpty or ErrIO.
	Kind error
	// Offset is the byte offset in the input where the error was
	// found, or -1 if it is not known.
	Offset int64
	// Err is the underlying cause, if any.
	Err error
}

func malformed(off int64, format string, args ...any) *Error {
	return &Error{Kind: ErrMalformed, Offset: off, Err: fmt.Errorf(format, args...)}
}

func (e *Error) Error() string {
	var buf strings.Builder
	buf.WriteString(e.Kind.Error())
	if e.Offset >= 0 {
		fmt.Fprintf(&buf, " at offset %d", e.Offset)
	}
	if e.Err != nil {
		buf.WriteString(": ")
		buf.WriteString(e.Err.Error())
	}
	return buf.String()
}

// Unwrap returns the error kind and the underlying cause.
func (e *Error) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}
