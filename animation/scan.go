// Copyright ©2023 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package animation

import "image"

// GIF block structure constants.
// See https://www.w3.org/Graphics/GIF/spec-gif89a.txt.
const (
	headerLen     = 6
	screenDescLen = 7
	imageDescLen  = 9

	sExtension       = 0x21
	sImageDescriptor = 0x2c
	sTrailer         = 0x3b

	eGraphicControl = 0xf9

	fColorTable     = 1 << 7
	fColorTableSize = 7
)

// layout is the result of a structural scan of GIF data.
type layout struct {
	screen image.Rectangle
	frames int
}

// isSignature returns whether b is a GIF header signature and version.
func isSignature(b []byte) bool {
	return string(b) == "GIF87a" || string(b) == "GIF89a"
}

// scanner walks the block structure of a GIF without decoding pixel data.
type scanner struct {
	b   []byte
	off int
}

// scan checks that b is a structurally valid GIF stream, returning the
// logical screen and the number of image descriptors found. Errors are
// returned as *Error with kind ErrMalformed.
func scan(b []byte) (layout, error) {
	s := scanner{b: b}
	var l layout

	hdr, err := s.next(headerLen, "header")
	if err != nil {
		return l, err
	}
	if !isSignature(hdr) {
		return l, malformed(0, "invalid signature %q", hdr)
	}

	desc, err := s.next(screenDescLen, "logical screen descriptor")
	if err != nil {
		return l, err
	}
	l.screen = image.Rect(0, 0, le16(desc[0:]), le16(desc[2:]))
	global := desc[4]&fColorTable != 0
	if global {
		_, err = s.next(colorTableLen(desc[4]), "global color table")
		if err != nil {
			return l, err
		}
	}

	for {
		start := s.off
		typ, err := s.next(1, "block introducer")
		if err != nil {
			return l, err
		}
		switch typ[0] {
		case sExtension:
			err = s.extension()
		case sImageDescriptor:
			err = s.image(l.screen, global)
			l.frames++
		case sTrailer:
			return l, nil
		default:
			return l, malformed(int64(start), "unsupported block type 0x%02x", typ[0])
		}
		if err != nil {
			return l, err
		}
	}
}

// extension consumes an extension block following its introducer.
func (s *scanner) extension() error {
	label, err := s.next(1, "extension label")
	if err != nil {
		return err
	}
	if label[0] == eGraphicControl {
		start := s.off
		n, err := s.next(1, "graphic control block size")
		if err != nil {
			return err
		}
		if n[0] != 4 {
			return malformed(int64(start), "invalid graphic control block size %d", n[0])
		}
		s.off = start
	}
	return s.subBlocks("extension data")
}

// image consumes an image descriptor block following its introducer,
// including any local color table and the LZW coded data.
func (s *scanner) image(screen image.Rectangle, global bool) error {
	start := s.off
	desc, err := s.next(imageDescLen, "image descriptor")
	if err != nil {
		return err
	}
	left, top := le16(desc[0:]), le16(desc[2:])
	rect := image.Rect(left, top, left+le16(desc[4:]), top+le16(desc[6:]))
	if !rect.In(screen) {
		return malformed(int64(start), "frame bounds %v outside logical screen %v", rect, screen)
	}
	if desc[8]&fColorTable != 0 {
		_, err = s.next(colorTableLen(desc[8]), "local color table")
		if err != nil {
			return err
		}
	} else if !global {
		return malformed(int64(start), "frame has no color table")
	}

	start = s.off
	lit, err := s.next(1, "LZW minimum code size")
	if err != nil {
		return err
	}
	if lit[0] < 2 || lit[0] > 8 {
		return malformed(int64(start), "invalid LZW minimum code size %d", lit[0])
	}
	return s.subBlocks("image data")
}

// subBlocks consumes a sequence of data sub-blocks and the terminating
// zero-length block.
func (s *scanner) subBlocks(what string) error {
	for {
		n, err := s.next(1, what)
		if err != nil {
			return err
		}
		if n[0] == 0 {
			return nil
		}
		_, err = s.next(int(n[0]), what)
		if err != nil {
			return err
		}
	}
}

// next returns the next n bytes of the stream, or a truncation error
// describing what was being read.
func (s *scanner) next(n int, what string) ([]byte, error) {
	if len(s.b)-s.off < n {
		return nil, malformed(int64(s.off), "truncated %s: need %d bytes, have %d", what, n, len(s.b)-s.off)
	}
	b := s.b[s.off : s.off+n]
	s.off += n
	return b, nil
}

// colorTableLen returns the byte length of the color table described by
// the packed fields of a screen or image descriptor.
func colorTableLen(packed byte) int {
	return 3 << ((packed & fColorTableSize) + 1)
}

func le16(b []byte) int {
	return int(b[0]) | int(b[1])<<8
}
