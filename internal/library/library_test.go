// Copyright ©2023 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package library

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/gif"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/kortschak/flipbook/animation"
	"github.com/kortschak/flipbook/internal/slogext"
)

var palette = color.Palette{color.Black, color.White}

// writeGIF writes a 2x2 GIF with the provided number of frames to path.
func writeGIF(t *testing.T, path string, frames int) {
	t.Helper()
	g := &gif.GIF{Config: image.Config{ColorModel: palette, Width: 2, Height: 2}}
	for i := range frames {
		img := image.NewPaletted(image.Rect(0, 0, 2, 2), palette)
		img.SetColorIndex(i%2, i/2%2, 1)
		g.Image = append(g.Image, img)
		g.Delay = append(g.Delay, 10)
	}
	var buf bytes.Buffer
	err := gif.EncodeAll(&buf, g)
	if err != nil {
		t.Fatalf("unexpected error encoding gif: %v", err)
	}
	err = os.WriteFile(path, buf.Bytes(), 0o644)
	if err != nil {
		t.Fatalf("unexpected error writing gif: %v", err)
	}
}

func newLibrary(t *testing.T, size int) *Library {
	t.Helper()
	l, err := New(size, slog.New(slogext.NewJSONHandler(io.Discard, &slogext.HandlerOptions{Level: slog.LevelDebug})))
	if err != nil {
		t.Fatalf("unexpected error creating library: %v", err)
	}
	return l
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "anim.gif")
	writeGIF(t, path, 2)

	l := newLibrary(t, 2)
	first, err := l.Load(path)
	if err != nil {
		t.Fatalf("unexpected error loading: %v", err)
	}
	if first.Len() != 2 {
		t.Errorf("unexpected frame count: got %d want 2", first.Len())
	}
	second, err := l.Load(path)
	if err != nil {
		t.Fatalf("unexpected error loading: %v", err)
	}
	if first != second {
		t.Error("unchanged file was decoded again")
	}

	writeGIF(t, path, 3)
	// Make sure the modification time changes on coarse clocks.
	later := time.Now().Add(time.Second)
	err = os.Chtimes(path, later, later)
	if err != nil {
		t.Fatalf("unexpected error setting modification time: %v", err)
	}
	third, err := l.Load(path)
	if err != nil {
		t.Fatalf("unexpected error loading: %v", err)
	}
	if third == first || third.Len() != 3 {
		t.Errorf("changed file was not decoded again: frames=%d", third.Len())
	}

	l.Forget(path)
	if l.Len() != 0 {
		t.Errorf("unexpected library size after forget: %d", l.Len())
	}
}

func TestLoadErrors(t *testing.T) {
	dir := t.TempDir()
	l := newLibrary(t, 2)

	_, err := l.Load(filepath.Join(dir, "missing.gif"))
	if !errors.Is(err, animation.ErrIO) || !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("unexpected error for missing file: %v", err)
	}

	bad := filepath.Join(dir, "bad.gif")
	err = os.WriteFile(bad, []byte("not a gif"), 0o644)
	if err != nil {
		t.Fatalf("unexpected error writing file: %v", err)
	}
	_, err = l.Load(bad)
	if !errors.Is(err, animation.ErrMalformed) {
		t.Errorf("unexpected error for malformed file: %v", err)
	}
	if l.Len() != 0 {
		t.Errorf("failed loads were cached: %d", l.Len())
	}
}

func TestEvict(t *testing.T) {
	dir := t.TempDir()
	l := newLibrary(t, 1)
	a := filepath.Join(dir, "a.gif")
	b := filepath.Join(dir, "b.gif")
	writeGIF(t, a, 1)
	writeGIF(t, b, 1)

	for _, p := range []string{a, b} {
		_, err := l.Load(p)
		if err != nil {
			t.Fatalf("unexpected error loading %s: %v", p, err)
		}
	}
	if l.Len() != 1 {
		t.Errorf("unexpected library size: got %d want 1", l.Len())
	}
}

func TestPreload(t *testing.T) {
	dir := t.TempDir()
	var paths []string
	for i, n := range []int{1, 2, 3, 4} {
		p := filepath.Join(dir, string(rune('a'+i))+".gif")
		writeGIF(t, p, n)
		paths = append(paths, p)
	}
	paths = append(paths, filepath.Join(dir, "missing.gif"))

	l := newLibrary(t, 8)
	results := l.Preload(context.Background(), paths, 2)
	if len(results) != len(paths) {
		t.Fatalf("unexpected number of results: got %d want %d", len(results), len(paths))
	}
	for i, r := range results[:4] {
		if r.Path != paths[i] {
			t.Errorf("result out of order: got %s want %s", r.Path, paths[i])
		}
		if r.Err != nil {
			t.Errorf("unexpected error for %s: %v", r.Path, r.Err)
			continue
		}
		if r.Frames.Len() != i+1 {
			t.Errorf("unexpected frame count for %s: got %d want %d", r.Path, r.Frames.Len(), i+1)
		}
	}
	if !errors.Is(results[4].Err, animation.ErrIO) {
		t.Errorf("unexpected error for missing file: %v", results[4].Err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	for _, r := range l.Preload(ctx, paths, 1) {
		if !errors.Is(r.Err, context.Canceled) {
			t.Errorf("unexpected result for cancelled preload of %s: %v", r.Path, r.Err)
		}
	}
}
