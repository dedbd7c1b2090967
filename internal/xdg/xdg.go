// Copyright ©2023 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package xdg locates configuration files in the user and system
// configuration directories.
package xdg

import (
	"io/fs"
	"os"
	"path/filepath"
)

// ConfigFile returns the path to the named file found first in the list of
// directories returned by ConfigDirs. If no file is found, the returned
// error wraps fs.ErrNotExist.
func ConfigFile(name string) (string, error) {
	for _, dir := range ConfigDirs() {
		path := filepath.Join(dir, name)
		fi, err := os.Stat(path)
		if err == nil && !fi.IsDir() {
			return path, nil
		}
	}
	return "", &fs.PathError{Op: "find", Path: name, Err: fs.ErrNotExist}
}

// ConfigDirs returns the configuration directories in search order. The
// user's configuration directory is first, followed by the system
// configuration directories.
func ConfigDirs() []string {
	var dirs []string
	if home, ok := envOrDefault(configHomeKey, configHomeDefault, homeKey); ok && home != "" {
		dirs = append(dirs, home)
	}
	if list, ok := envOrDefault(configDirsKey, configDirsDefault, ""); ok {
		for _, dir := range filepath.SplitList(list) {
			if dir != "" {
				dirs = append(dirs, dir)
			}
		}
	}
	return dirs
}

// envOrDefault return the path or path list corresponding to the provided
// key and default. If home is not empty, the default is treated as an absolute
// path or path list and returned unaltered, otherwise the default is returned
// relative to home.
func envOrDefault(key, def, home string) (string, bool) {
	if key != "" {
		val, ok := os.LookupEnv(key)
		if ok {
			return val, true
		}
	}
	if def == "" {
		return "", false
	}
	if home == "" || filepath.IsAbs(def) {
		return def, true
	}
	base, ok := os.LookupEnv(home)
	if !ok {
		return "", false
	}
	return filepath.Join(base, def), true
}
