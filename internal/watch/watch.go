// Copyright ©2023 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package watch notifies changes to the content of a set of files.
package watch

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/kortschak/flipbook/internal/slogext"
)

// FileDebounce is the default duration we wait for the contents to have
// stabilised to work around some editors writing an empty file and then the
// buffer.
const FileDebounce = 10 * time.Millisecond

// Sum is a file content checksum.
type Sum [sha1.Size]byte

func (s Sum) String() string {
	return hex.EncodeToString(s[:])
}

// Change is a change to a watched file identified by a Watcher.
type Change struct {
	// Path is the watched path, as provided to New.
	Path string
	// Event holds the fsnotify.Events that were aggregated
	// into the change.
	Event []fsnotify.Event
	// Removed is true if the file no longer exists.
	Removed bool
	Err     error
}

// Op returns an aggregated fsnotify.Op for all elements of the receivers'
// Event field.
func (c Change) Op() fsnotify.Op {
	switch len(c.Event) {
	case 0:
		return 0
	case 1:
		return c.Event[0].Op
	default:
		var op fsnotify.Op
		for _, o := range c.Event {
			op |= o.Op
		}
		return op
	}
}

// Watcher collects raw fsnotify.Events for the directories holding a set
// of files and filters for changes to the content of those files. Writes
// that do not change the content of a file are not reported.
type Watcher struct {
	debounce time.Duration
	watcher  *fsnotify.Watcher

	// files maps cleaned paths to the paths
	// provided by the user. Distinct user paths
	// may refer to the same file.
	files  map[string][]string
	hashes map[string]Sum

	log *slog.Logger
}

// New returns a Watcher for the provided paths. The directory holding each
// path must exist, but the file need not. The debounce parameter specifies
// how long to wait after an fsnotify.Event before reading the file to ensure
// that writes will be reflected in the checksum. If it is less than zero,
// FileDebounce is used. Each change is reported once for each distinct
// path that refers to the changed file.
func New(paths []string, debounce time.Duration, log *slog.Logger) (*Watcher, error) {
	if debounce < 0 {
		debounce = FileDebounce
	}
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	w := &Watcher{
		debounce: debounce,
		watcher:  watcher,
		files:    make(map[string][]string),
		hashes:   make(map[string]Sum),
		log:      log.With(slog.String("component", "watch")),
	}
	dirs := make(map[string]bool)
	for _, p := range paths {
		clean := filepath.Clean(p)
		if !slices.Contains(w.files[clean], p) {
			w.files[clean] = append(w.files[clean], p)
		}
		sum, err := checksum(clean)
		if err == nil {
			w.hashes[clean] = sum
		} else if !errors.Is(err, fs.ErrNotExist) {
			watcher.Close()
			return nil, err
		}
		dir := filepath.Dir(clean)
		if dirs[dir] {
			continue
		}
		err = watcher.Add(dir)
		if err != nil {
			watcher.Close()
			return nil, err
		}
		dirs[dir] = true
	}
	return w, nil
}

// Close releases the resources held by the Watcher.
func (w *Watcher) Close() error {
	return w.watcher.Close()
}

// Watch sends changes to watched files on the changes channel until the
// context is cancelled or the Watcher is closed.
func (w *Watcher) Watch(ctx context.Context, changes chan<- Change) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			clean := filepath.Clean(ev.Name)
			paths, ok := w.files[clean]
			if !ok {
				continue
			}
			change, ok := w.handle(ctx, clean, ev)
			if !ok {
				continue
			}
			for _, p := range paths {
				change.Path = p
				select {
				case <-ctx.Done():
					return ctx.Err()
				case changes <- change:
				}
			}
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			select {
			case <-ctx.Done():
				return ctx.Err()
			case changes <- Change{Err: err}:
			}
		}
	}
}

// handle returns the Change corresponding to an event on the watched file
// at the cleaned path and whether it should be reported. The Path field of
// the returned Change is not set.
func (w *Watcher) handle(ctx context.Context, clean string, ev fsnotify.Event) (Change, bool) {
	switch {
	// Renames and removals are seen as the loss of the file. Editors
	// that replace files follow this with a create, which is handled
	// as a write.
	case ev.Has(fsnotify.Rename), ev.Has(fsnotify.Remove):
		w.log.LogAttrs(ctx, slog.LevelDebug, "remove", slog.String("name", ev.Name), slog.String("op", ev.Op.String()))
		if _, err := os.Stat(clean); err == nil {
			// The file was replaced before we saw the event.
			return w.reread(ctx, clean, ev)
		}
		if _, ok := w.hashes[clean]; !ok {
			return Change{}, false
		}
		delete(w.hashes, clean)
		return Change{Event: []fsnotify.Event{ev}, Removed: true}, true

	case ev.Has(fsnotify.Write), ev.Has(fsnotify.Create):
		w.log.LogAttrs(ctx, slog.LevelDebug, "write", slog.String("name", ev.Name), slog.String("op", ev.Op.String()))
		time.Sleep(w.debounce)
		return w.reread(ctx, clean, ev)
	}
	return Change{}, false
}

// reread checksums the file at the cleaned path and returns a change if
// its content differs from the last seen content.
func (w *Watcher) reread(ctx context.Context, clean string, ev fsnotify.Event) (Change, bool) {
	sum, err := checksum(clean)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			// Lost between the event and the read; the
			// removal will be seen as its own event.
			return Change{}, false
		}
		w.log.LogAttrs(ctx, slog.LevelError, "read file", slog.Any("error", err))
		return Change{Event: []fsnotify.Event{ev}, Err: err}, true
	}
	if prev, ok := w.hashes[clean]; ok && prev == sum {
		w.log.LogAttrs(ctx, slog.LevelDebug, "no change", slog.String("name", clean), slog.Any("sum", slogext.Stringer{Stringer: sum}))
		return Change{}, false
	}
	w.log.LogAttrs(ctx, slog.LevelDebug, "set hash", slog.String("name", clean), slog.Any("sum", slogext.Stringer{Stringer: sum}))
	w.hashes[clean] = sum
	return Change{Event: []fsnotify.Event{ev}}, true
}

func checksum(path string) (Sum, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return Sum{}, err
	}
	return sha1.Sum(b), nil
}
