// Copyright ©2023 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// The flipbook executable plays animated GIFs in a terminal.
package main

import (
	"context"
	"flag"
	"fmt"
	"image/color"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"runtime"

	"github.com/google/cel-go/cel"
	"github.com/mattn/go-isatty"

	"github.com/kortschak/flipbook/internal/config"
	"github.com/kortschak/flipbook/internal/library"
	"github.com/kortschak/flipbook/internal/slogext"
	"github.com/kortschak/flipbook/internal/term"
	"github.com/kortschak/flipbook/internal/version"
	"github.com/kortschak/flipbook/internal/xdg"
)

// Exit status codes.
const (
	success       = 0
	internalError = 1 << (iota - 1)
	invocationError
)

func main() { os.Exit(Main()) }

// options is the resolved player configuration.
type options struct {
	width, height int
	fit           term.Fit
	filter        term.Filter
	opacity       float64
	background    color.RGBA
	watch         bool
	frames        int
	librarySize   int
	workers       int
}

func Main() int {
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), `Usage of %s:

  %[1]s [options] play <file.gif>...
  %[1]s [options] info <file.gif>...

Options:
`, os.Args[0])
		flag.PrintDefaults()
	}
	cfgPath := flag.String("config", "", "path to a TOML configuration file (default $XDG_CONFIG_HOME/flipbook/config.toml)")
	width := flag.Int("width", 40, "viewer width in terminal cells")
	height := flag.Int("height", 0, "viewer height in terminal cells (0 to use the animation aspect ratio)")
	fit := term.Contain
	flag.Var(&fit, "fit", "frame fit (contain, cover, fill, none or scale-down)")
	filter := term.Linear
	flag.Var(&filter, "filter", "frame scaling filter (linear or nearest)")
	opacity := flag.Float64("opacity", 1, "frame opacity over the background, in (0, 1]")
	background := flag.String("background", "#000000", "viewer background color")
	watch := flag.Bool("watch", false, "reload animations when their files change")
	frames := flag.Int("frames", 0, "number of renders before exiting (0 to play until interrupted)")
	librarySize := flag.Int("library", 64, "number of decoded animations to hold")
	workers := flag.Int("workers", runtime.NumCPU(), "number of concurrent decoders")
	where := flag.String("where", "", "CEL expression selecting animations reported by info")
	logging := flag.String("log", "info", "logging level (debug, info, warn or error)")
	lines := flag.Bool("lines", false, "display source line details in logs")
	v := flag.Bool("version", false, "print version and exit")
	flag.Parse()
	if *v {
		err := version.Print(os.Stdout)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return internalError
		}
		return success
	}

	args := flag.Args()
	if len(args) < 2 {
		flag.Usage()
		return invocationError
	}

	var level slog.LevelVar
	err := level.UnmarshalText([]byte(*logging))
	if err != nil {
		flag.Usage()
		return invocationError
	}
	addSource := slogext.NewAtomicBool(*lines)

	opts := options{
		width:       *width,
		height:      *height,
		fit:         fit,
		filter:      filter,
		opacity:     *opacity,
		watch:       *watch,
		frames:      *frames,
		librarySize: *librarySize,
		workers:     *workers,
	}
	if *cfgPath == "" {
		// Use the user's configuration if there is one.
		path, err := xdg.ConfigFile(filepath.Join("flipbook", "config.toml"))
		if err == nil {
			*cfgPath = path
		}
	}
	if *cfgPath != "" {
		cfg, err := config.Load(*cfgPath)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return invocationError
		}
		set := make(map[string]bool)
		flag.Visit(func(f *flag.Flag) { set[f.Name] = true })
		opts.apply(cfg, set)
		if cfg.Background != nil && !set["background"] {
			*background = *cfg.Background
		}
		if cfg.LogLevel != nil && !set["log"] {
			level.Set(*cfg.LogLevel)
		}
		if cfg.AddSource != nil && !set["lines"] {
			addSource.Store(*cfg.AddSource)
		}
	}
	opts.background, err = config.ParseColor(*background)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return invocationError
	}
	if opts.width < 1 || opts.height < 0 || opts.frames < 0 || opts.librarySize < 1 || !(opts.opacity > 0 && opts.opacity <= 1) {
		flag.Usage()
		return invocationError
	}

	log := slog.New(slogext.GoID{Handler: slogext.NewJSONHandler(os.Stderr, &slogext.HandlerOptions{
		Level:     &level,
		AddSource: addSource,
	})})

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	lib, err := library.New(opts.librarySize, log)
	if err != nil {
		log.LogAttrs(ctx, slog.LevelError, "library", slog.Any("error", err))
		return internalError
	}

	cmd, paths := args[0], args[1:]
	switch cmd {
	case "play":
		tty := isatty.IsTerminal(os.Stdout.Fd()) || isatty.IsCygwinTerminal(os.Stdout.Fd())
		if tty {
			cols, err := term.Width(os.Stdout.Fd())
			if err == nil {
				opts.width = fitWidth(opts.width, len(paths), cols)
			}
		}
		return play(ctx, log, lib, paths, opts, os.Stdout, tty)
	case "info":
		var prg cel.Program
		if *where != "" {
			prg, err = compileFilter(*where)
			if err != nil {
				fmt.Fprintln(os.Stderr, err)
				return invocationError
			}
		}
		return info(ctx, lib, paths, opts.workers, prg, os.Stdout, os.Stderr)
	default:
		flag.Usage()
		return invocationError
	}
}

// fitWidth returns the viewer width that allows n viewers of at most
// width cells separated by single spaces to fit within cols.
func fitWidth(width, n, cols int) int {
	if n < 1 || cols < 1 {
		return width
	}
	return min(width, max(1, (cols-(n-1))/n))
}

// apply sets option values from cfg for options that were not set by
// command flags.
func (o *options) apply(cfg *config.Config, set map[string]bool) {
	if cfg.Width != nil && !set["width"] {
		o.width = *cfg.Width
	}
	if cfg.Height != nil && !set["height"] {
		o.height = *cfg.Height
	}
	if cfg.Fit != nil && !set["fit"] {
		// The name has been validated by the schema.
		f, err := term.ParseFit(*cfg.Fit)
		if err == nil {
			o.fit = f
		}
	}
	if cfg.Filter != nil && !set["filter"] {
		// The name has been validated by the schema.
		f, err := term.ParseFilter(*cfg.Filter)
		if err == nil {
			o.filter = f
		}
	}
	if cfg.Opacity != nil && !set["opacity"] {
		o.opacity = *cfg.Opacity
	}
	if cfg.Watch != nil && !set["watch"] {
		o.watch = *cfg.Watch
	}
	if cfg.LibrarySize != nil && !set["library"] {
		o.librarySize = *cfg.LibrarySize
	}
	if cfg.DecodeWorkers != nil && !set["workers"] {
		o.workers = *cfg.DecodeWorkers
	}
}
