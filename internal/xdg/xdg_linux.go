// Copyright ©2023 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

//go:build linux

package xdg

// https://specifications.freedesktop.org/basedir-spec/basedir-spec-0.8.html
const (
	homeKey = "HOME"

	// $XDG_CONFIG_HOME or $HOME/.config
	configHomeKey     = "XDG_CONFIG_HOME"
	configHomeDefault = ".config"

	// $XDG_CONFIG_DIRS or /etc/xdg
	configDirsKey     = "XDG_CONFIG_DIRS"
	configDirsDefault = "/etc/xdg"
)
