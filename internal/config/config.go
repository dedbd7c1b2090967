// Copyright ©2023 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package config provides flipbook configuration types and schemas.
package config

import (
	"errors"
	"fmt"
	"image/color"
	"log/slog"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
)

// Config is a player configuration. Nil fields are unset and take their
// value from command flags or defaults.
type Config struct {
	// Width and Height are the dimensions of each viewer in
	// terminal cells. A zero Height is derived from the aspect
	// ratio of the animation.
	Width  *int `json:"width,omitempty" toml:"width"`
	Height *int `json:"height,omitempty" toml:"height"`
	// Fit is the placement policy for frames within a viewer.
	Fit *string `json:"fit,omitempty" toml:"fit"`
	// Filter is the interpolation used to resize frames.
	Filter *string `json:"filter,omitempty" toml:"filter"`
	// Opacity is the opacity of frames over the background.
	Opacity *float64 `json:"opacity,omitempty" toml:"opacity"`
	// Background is the viewer background color in #rrggbb form.
	Background *string `json:"background,omitempty" toml:"background"`
	// Watch reloads animations when their files change.
	Watch *bool `json:"watch,omitempty" toml:"watch"`
	// LibrarySize is the number of decoded animations held.
	LibrarySize *int `json:"library_size,omitempty" toml:"library_size"`
	// DecodeWorkers is the number of concurrent decoders.
	DecodeWorkers *int `json:"decode_workers,omitempty" toml:"decode_workers"`

	LogLevel  *slog.Level `json:"log_level,omitempty" toml:"log_level"`
	AddSource *bool       `json:"log_add_source,omitempty" toml:"log_add_source"`
}

// Schema is the schema for a valid configuration.
const Schema = `
{
	width?:          int & >=1 & <=1000
	height?:         int & >=0 & <=1000
	fit?:            "contain" | "cover" | "fill" | "none" | "scale-down"
	filter?:         "linear" | "nearest"
	opacity?:        number & >0 & <=1
	background?:     =~"^#[0-9a-fA-F]{6}$"
	watch?:          bool
	library_size?:   int & >=1
	decode_workers?: int & >=1
	log_level?:      _#log_level
	log_add_source?: bool
}

_#log_level: =~"(?i)^(?:debug|info|warn|error)$"
`

// Load reads the TOML configuration at path and validates it against
// Schema. Invalid configurations are reported with an error wrapping an
// *InvalidError.
func Load(path string) (*Config, error) {
	var cfg Config
	md, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return nil, err
	}
	if undecoded := md.Undecoded(); len(undecoded) != 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return nil, fmt.Errorf("unknown configuration keys in %s: %s", path, strings.Join(keys, ", "))
	}
	_, err = Vet(&cfg)
	if err != nil {
		return nil, fmt.Errorf("invalid configuration in %s: %w", path, err)
	}
	return &cfg, nil
}

// ParseColor parses a #rrggbb web color.
func ParseColor(s string) (color.RGBA, error) {
	if len(s) != len("#rrggbb") || s[0] != '#' {
		return color.RGBA{}, errors.New("color must be in #rrggbb form")
	}
	v, err := strconv.ParseUint(s[1:], 16, 32)
	if err != nil {
		return color.RGBA{}, fmt.Errorf("invalid color %q: %w", s, err)
	}
	return color.RGBA{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v), A: 0xff}, nil
}
