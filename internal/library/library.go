// Copyright ©2023 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package library provides a shared cache of decoded animations.
package library

import (
	"context"
	"log/slog"
	"os"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/remeh/sizedwaitgroup"

	"github.com/kortschak/flipbook/animation"
	"github.com/kortschak/flipbook/internal/slogext"
)

// Library is a bounded cache of decoded animations keyed by file path.
// A cached animation is reused until the modification time or size of its
// file changes. Library is safe for concurrent use.
type Library struct {
	cache *lru.Cache[string, entry]
	log   *slog.Logger
}

type entry struct {
	frames  *animation.FrameSet
	modTime time.Time
	size    int64
}

// New returns a new Library holding up to size animations.
func New(size int, log *slog.Logger) (*Library, error) {
	log = log.With(slog.String("component", "library"))
	c, err := lru.NewWithEvict(size, func(path string, _ entry) {
		log.LogAttrs(context.Background(), slog.LevelDebug, "evict", slog.String("path", path))
	})
	if err != nil {
		return nil, err
	}
	return &Library{cache: c, log: log}, nil
}

// Load returns the animation held in the file at path, decoding it if it
// is not held by the library or has changed since it was decoded.
// Errors are returned as [*animation.Error].
func (l *Library) Load(path string) (*animation.FrameSet, error) {
	fi, err := os.Stat(path)
	if err != nil {
		l.cache.Remove(path)
		return nil, &animation.Error{Kind: animation.ErrIO, Offset: -1, Err: err}
	}
	if e, ok := l.cache.Get(path); ok && e.modTime.Equal(fi.ModTime()) && e.size == fi.Size() {
		l.log.LogAttrs(context.Background(), slog.LevelDebug, "hit", slog.String("path", path))
		return e.frames, nil
	}

	fs, err := animation.DecodeFile(path)
	if err != nil {
		l.cache.Remove(path)
		l.log.LogAttrs(context.Background(), slog.LevelDebug, "decode", slog.String("path", path), slog.Any("error", err))
		return nil, err
	}
	l.log.LogAttrs(context.Background(), slog.LevelDebug, "decode", slog.String("path", path), slog.Any("animation", slogext.FrameSet{FrameSet: fs}))
	l.cache.Add(path, entry{frames: fs, modTime: fi.ModTime(), size: fi.Size()})
	return fs, nil
}

// Forget removes the animation at path from the library.
func (l *Library) Forget(path string) {
	l.cache.Remove(path)
}

// Len returns the number of animations held by the library.
func (l *Library) Len() int {
	return l.cache.Len()
}

// Result is the result of loading an animation.
type Result struct {
	Path   string
	Frames *animation.FrameSet
	Err    error
}

// Preload loads the animations at the provided paths using at most limit
// concurrent decoders, returning the results in the order of paths. If
// limit is less than one, a single decoder is used. Paths not started
// before ctx is cancelled have the context's error.
func (l *Library) Preload(ctx context.Context, paths []string, limit int) []Result {
	results := make([]Result, len(paths))
	swg := sizedwaitgroup.New(max(1, limit))
	for i, p := range paths {
		results[i].Path = p
		err := ctx.Err()
		if err == nil {
			err = swg.AddWithContext(ctx)
		}
		if err != nil {
			results[i].Err = err
			continue
		}
		go func() {
			defer swg.Done()
			results[i].Frames, results[i].Err = l.Load(p)
		}()
	}
	swg.Wait()
	return results
}
