// Copyright ©2023 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"context"
	"fmt"
	"image"
	"image/color"
	"io"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/kortschak/flipbook/animation"
	"github.com/kortschak/flipbook/internal/library"
	"github.com/kortschak/flipbook/internal/slogext"
	"github.com/kortschak/flipbook/internal/term"
	"github.com/kortschak/flipbook/internal/watch"
)

// renderCacheSize is the number of rendered frames held for each viewer.
const renderCacheSize = 256

// placeholderPalette is the palette for decode failure messages.
var placeholderPalette = color.Palette{
	color.RGBA{A: 0xff},
	color.RGBA{R: 0xff, G: 0x55, B: 0x55, A: 0xff},
}

// viewer is a single animation viewer.
type viewer struct {
	path     string
	view     animation.View
	renderer *term.Renderer
	// autoRows indicates that the renderer
	// height follows the animation aspect ratio.
	autoRows bool
}

// player is the render loop state. It is owned by a single goroutine.
type player struct {
	log     *slog.Logger
	lib     *library.Library
	viewers []*viewer

	out io.Writer
	tty bool
	// drawn is the number of lines written by
	// the last render.
	drawn int
}

// play renders the animations at paths side by side to out until ctx is
// cancelled or opts.frames renders have been written.
func play(ctx context.Context, log *slog.Logger, lib *library.Library, paths []string, opts options, out io.Writer, tty bool) int {
	p, err := newPlayer(ctx, log, lib, paths, opts, out, tty)
	if err != nil {
		log.LogAttrs(ctx, slog.LevelError, "player", slog.Any("error", err))
		return internalError
	}

	var changes chan watch.Change
	if opts.watch {
		w, err := watch.New(paths, -1, log)
		if err != nil {
			log.LogAttrs(ctx, slog.LevelError, "watch", slog.Any("error", err))
			return internalError
		}
		defer w.Close()
		changes = make(chan watch.Change)
		go func() {
			err := w.Watch(ctx, changes)
			if err != nil && err != context.Canceled {
				log.LogAttrs(ctx, slog.LevelError, "watch", slog.Any("error", err))
			}
		}()
	}

	if tty {
		io.WriteString(out, term.HideCursor)
		defer io.WriteString(out, term.ShowCursor)
	}
	for n := 1; ; n++ {
		next, err := p.render(time.Now())
		if err != nil {
			log.LogAttrs(ctx, slog.LevelError, "render", slog.Any("error", err))
			return internalError
		}
		if n == opts.frames {
			return success
		}
		if next.IsZero() && changes == nil {
			// Nothing is animating and nothing will change.
			return success
		}

		var (
			timer *time.Timer
			wait  <-chan time.Time
		)
		if !next.IsZero() {
			timer = time.NewTimer(time.Until(next))
			wait = timer.C
		}
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			return success
		case <-wait:
		case c := <-changes:
			if timer != nil {
				timer.Stop()
			}
			p.reload(ctx, c, time.Now())
		}
	}
}

// newPlayer returns a player with a viewer for each path, bound to the
// decoded animation or to a placeholder describing the decode failure.
func newPlayer(ctx context.Context, log *slog.Logger, lib *library.Library, paths []string, opts options, out io.Writer, tty bool) (*player, error) {
	p := &player{
		log: log.With(slog.String("component", "player")),
		lib: lib,
		out: out,
		tty: tty,
	}
	now := time.Now()
	for _, r := range lib.Preload(ctx, paths, opts.workers) {
		cache, err := term.NewCache(renderCacheSize)
		if err != nil {
			return nil, err
		}
		v := &viewer{
			path: r.Path,
			renderer: &term.Renderer{
				Cols:       opts.width,
				Rows:       opts.height,
				Fit:        opts.fit,
				Filter:     opts.filter,
				Opacity:    opts.opacity,
				Background: opts.background,
				Cache:      cache,
			},
			autoRows: opts.height == 0,
		}
		if v.autoRows {
			v.renderer.Rows = aspectRows(opts.width, image.Point{X: 1, Y: 1})
		}
		p.viewers = append(p.viewers, v)
		p.bind(ctx, v, r.Frames, r.Err, now)
	}
	return p, nil
}

// bind binds the viewer to fs, or to a placeholder if err is not nil.
func (p *player) bind(ctx context.Context, v *viewer, fs *animation.FrameSet, err error, now time.Time) {
	if err != nil {
		p.log.LogAttrs(ctx, slog.LevelWarn, "decode", slog.String("path", v.path), slog.Any("error", err))
		msg := animation.Text(fmt.Sprintf("%s: %v", filepath.Base(v.path), err))
		fs, err = msg.FrameSet(image.Rectangle{Max: v.renderer.Size()}, placeholderPalette, 1, 0)
		if err != nil {
			p.log.LogAttrs(ctx, slog.LevelWarn, "placeholder", slog.String("path", v.path), slog.Any("error", err))
			fs = nil
		}
	}
	if v.autoRows && fs != nil {
		rows := aspectRows(v.renderer.Cols, fs.Bounds().Size())
		if rows != v.renderer.Rows {
			v.renderer.Rows = rows
			v.renderer.Cache.Purge()
		}
	}
	restarted := v.view.Bind(fs, now)
	p.log.LogAttrs(ctx, slog.LevelDebug, "bind",
		slog.String("path", v.path),
		slog.Any("animation", slogext.FrameSet{FrameSet: fs}),
		slog.Any("fit", slogext.Stringer{Stringer: v.renderer.Fit}),
		slog.Any("filter", slogext.Stringer{Stringer: v.renderer.Filter}),
		slog.Bool("restarted", restarted),
	)
}

// reload rebinds the viewers showing the changed file.
func (p *player) reload(ctx context.Context, c watch.Change, now time.Time) {
	if c.Err != nil {
		p.log.LogAttrs(ctx, slog.LevelWarn, "watch", slog.Any("error", c.Err))
		return
	}
	p.log.LogAttrs(ctx, slog.LevelInfo, "reload", slog.String("path", c.Path), slog.Bool("removed", c.Removed))
	p.lib.Forget(c.Path)
	fs, err := p.lib.Load(c.Path)
	for _, v := range p.viewers {
		if v.path == c.Path {
			p.bind(ctx, v, fs, err, now)
		}
	}
}

// render draws the current frame of every viewer and returns the earliest
// redraw deadline. The deadline is zero if no viewer is animating.
func (p *player) render(now time.Time) (time.Time, error) {
	var next time.Time
	blocks := make([][]string, len(p.viewers))
	cols := make([]int, len(p.viewers))
	for i, v := range p.viewers {
		cols[i] = v.renderer.Cols
		f, deadline, ok := v.view.Redraw(now)
		if !ok {
			blocks[i] = blank(v.renderer.Cols, v.renderer.Rows)
			continue
		}
		blocks[i] = v.renderer.Render(f.Image)
		if v.view.FrameSet().Len() < 2 {
			continue
		}
		if next.IsZero() || deadline.Before(next) {
			next = deadline
		}
	}
	if p.tty {
		err := term.Home(p.out, p.drawn)
		if err != nil {
			return next, err
		}
	}
	var err error
	p.drawn, err = term.Join(p.out, blocks, cols, 1)
	return next, err
}

// blank returns rows empty lines for an unbound viewer.
func blank(cols, rows int) []string {
	lines := make([]string, rows)
	for i := range lines {
		lines[i] = fmt.Sprintf("%*s", cols, "")
	}
	return lines
}

// aspectRows returns the number of half-block rows needed to show an
// image of the given size at cols cells wide without distortion.
func aspectRows(cols int, size image.Point) int {
	if size.X <= 0 || size.Y <= 0 {
		return max(1, (cols+1)/2)
	}
	px := (cols*size.Y + size.X/2) / size.X
	return max(1, (px+1)/2)
}
