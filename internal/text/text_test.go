// Copyright ©2023 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package text

import (
	"image"
	"image/color"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/google/go-cmp/cmp"
	"golang.org/x/image/font/basicfont"
)

func TestSize(t *testing.T) {
	fnt := basicfont.Face7x13
	rows, cols := Size(image.Rect(0, 0, 70, 26), fnt)
	if rows != 2 || cols != 10 {
		t.Errorf("unexpected size: got rows=%d cols=%d, want rows=2 cols=10", rows, cols)
	}
}

var linesTests = []struct {
	name  string
	text  string
	cols  int
	words bool
	want  []string
}{
	{
		name:  "runes",
		text:  "reallylongword",
		cols:  5,
		words: false,
		want:  []string{"reall", "ylong", "word"},
	},
	{
		name:  "short",
		text:  "text",
		cols:  10,
		words: true,
		want:  []string{"text"},
	},
	{
		name: "no_room",
		text: "text",
		cols: 0,
		want: nil,
	},
}

func TestLines(t *testing.T) {
	for _, test := range linesTests {
		t.Run(test.name, func(t *testing.T) {
			got := Lines(test.text, test.cols, test.words)
			if !cmp.Equal(got, test.want) {
				t.Errorf("unexpected lines:\n--- want:\n+++ got:\n%s", cmp.Diff(test.want, got))
			}
		})
	}
}

func TestLinesWords(t *testing.T) {
	const (
		text = "a long message that spans more than a single line"
		cols = 12
	)
	lines := Lines(text, cols, true)
	if len(lines) < 2 {
		t.Fatalf("expected multiple lines: %q", lines)
	}
	var n int
	for _, l := range lines {
		if utf8.RuneCountInString(l) > cols {
			t.Errorf("line too long: %q", l)
		}
		n += len(strings.Fields(l))
	}
	if want := len(strings.Fields(text)); n < want {
		t.Errorf("lost words: got %d want at least %d", n, want)
	}
}

var truncateTests = []struct {
	name  string
	lines []string
	rows  int
	cols  int
	want  []string
}{
	{name: "fits", lines: []string{"ab", "cd"}, rows: 2, cols: 2, want: []string{"ab", "cd"}},
	{name: "short_last", lines: []string{"abcdef", "gh", "ij"}, rows: 2, cols: 6, want: []string{"abcdef", "gh..."}},
	{name: "long_last", lines: []string{"abcdef", "ghijkl", "mn"}, rows: 2, cols: 6, want: []string{"abcdef", "ghi..."}},
	{name: "narrow", lines: []string{"ab", "cd"}, rows: 1, cols: 2, want: []string{".."}},
	{name: "single", lines: []string{"a", "b"}, rows: 1, cols: 1, want: []string{"."}},
	{name: "exact", lines: []string{"abc", "def"}, rows: 1, cols: 3, want: []string{"..."}},
}

func TestTruncate(t *testing.T) {
	for _, test := range truncateTests {
		t.Run(test.name, func(t *testing.T) {
			got := truncate(test.lines, test.rows, test.cols)
			if !cmp.Equal(got, test.want) {
				t.Errorf("unexpected lines:\n--- want:\n+++ got:\n%s", cmp.Diff(test.want, got))
			}
			for _, l := range got {
				if n := utf8.RuneCountInString(l); n > test.cols {
					t.Errorf("line %q wider than %d columns", l, test.cols)
				}
			}
		})
	}
}

func TestDraw(t *testing.T) {
	for _, centering := range []struct {
		dx, dy float64
		name   string
	}{
		{dx: 0, dy: 0, name: "topleft"},
		{dx: 1, dy: 0, name: "topright"},
		{dx: 0.5, dy: 0.5, name: "centered"},
		{dx: 0.5, dy: 1, name: "centerbottom"},
	} {
		t.Run(centering.name, func(t *testing.T) {
			rect := image.Rect(0, 0, 72, 72)
			dst := image.NewRGBA(rect)
			Draw(dst, "text", color.White, basicfont.Face7x13, centering.dx, centering.dy, true)

			var inked image.Rectangle
			for y := rect.Min.Y; y < rect.Max.Y; y++ {
				for x := rect.Min.X; x < rect.Max.X; x++ {
					if dst.RGBAAt(x, y).A != 0 {
						inked = inked.Union(image.Rect(x, y, x+1, y+1))
					}
				}
			}
			if inked.Empty() {
				t.Fatal("no text drawn")
			}
			// Four glyphs of a 7 pixel advance and one 13 pixel line.
			if inked.Dx() > 4*7 || inked.Dy() > 13 {
				t.Errorf("text block too large: %v", inked)
			}
			mid := rect.Dx() / 2
			switch centering.name {
			case "topleft":
				if inked.Min.X > 7 || inked.Min.Y > 13 {
					t.Errorf("text not at top left: %v", inked)
				}
			case "topright":
				if inked.Max.X < rect.Max.X-7 || inked.Min.Y > 13 {
					t.Errorf("text not at top right: %v", inked)
				}
			case "centered":
				if inked.Min.X > mid || inked.Max.X < mid || inked.Min.Y > mid || inked.Max.Y < mid-13 {
					t.Errorf("text not centered: %v", inked)
				}
			case "centerbottom":
				if inked.Max.Y < rect.Max.Y-13 {
					t.Errorf("text not at bottom: %v", inked)
				}
			}
		})
	}
}

func TestDrawTruncates(t *testing.T) {
	for _, width := range []int{35, 14, 7} {
		dst := image.NewRGBA(image.Rect(0, 0, width, 13))
		// Must not panic when the text needs more rows than are available.
		Draw(dst, "a long message that will not fit", color.White, basicfont.Face7x13, 0, 0, true)
	}
}
