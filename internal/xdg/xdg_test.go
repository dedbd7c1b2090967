// Copyright ©2023 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package xdg

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
)

var envOrDefaultTests = []struct {
	name string
	set  map[string]string

	key, def, home string

	want   string
	wantOK bool
}{
	{
		name: "set",
		set: map[string]string{
			"test_HOME": "testdata/home",
			"testkey":   "testdata/home/dir",
		},
		key:  "testkey",
		def:  "testdata/global_dir",
		home: "test_HOME",

		want:   "testdata/home/dir",
		wantOK: true,
	},
	{
		name: "relative_default",
		set: map[string]string{
			"test_HOME": "testdata/home",
		},
		key:  "testkey",
		def:  "testdata/global_dir",
		home: "test_HOME",

		want:   "testdata/home/testdata/global_dir",
		wantOK: true,
	},
	{
		name: "no_default",
		set: map[string]string{
			"test_HOME": "testdata/home",
		},
		key:  "testkey",
		def:  "",
		home: "test_HOME",

		want:   "",
		wantOK: false,
	},
	{
		name: "no_home",
		key:  "testkey",
		def:  "testdata/global_dir",
		home: "",

		want:   "testdata/global_dir",
		wantOK: true,
	},
	{
		name: "missing_home",
		set: map[string]string{
			"test_HOME": "testdata/home",
		},
		key:  "testkey",
		def:  "testdata/global_dir",
		home: "invalid",

		want:   "",
		wantOK: false,
	},
}

func TestEnvOrDefault(t *testing.T) {
	for _, test := range envOrDefaultTests {
		t.Run(test.name, func(t *testing.T) {
			for k, v := range test.set {
				t.Setenv(k, v)
			}
			got, gotOK := envOrDefault(test.key, test.def, test.home)
			if gotOK != test.wantOK {
				t.Errorf("unexpected ok: got:%t want:%t", gotOK, test.wantOK)
			}
			if got != test.want {
				t.Errorf("unexpected result: got:%q want:%q", got, test.want)
			}
		})
	}
}

func TestConfigFile(t *testing.T) {
	if configHomeKey == "" || configDirsKey == "" {
		t.Skip("configuration directories are not set by environment on this platform")
	}
	home := t.TempDir()
	system := t.TempDir()
	t.Setenv(configHomeKey, home)
	t.Setenv(configDirsKey, system+string(filepath.ListSeparator))

	if got, want := ConfigDirs(), []string{home, system}; !cmp.Equal(got, want) {
		t.Errorf("unexpected directories:\n--- want:\n+++ got:\n%s", cmp.Diff(want, got))
	}

	_, err := ConfigFile("app/config.toml")
	if !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("unexpected error for missing file: %v", err)
	}

	for _, dir := range []string{system, home} {
		path := filepath.Join(dir, "app", "config.toml")
		err = os.MkdirAll(filepath.Dir(path), 0o755)
		if err != nil {
			t.Fatalf("unexpected error making directory: %v", err)
		}
		err = os.WriteFile(path, nil, 0o644)
		if err != nil {
			t.Fatalf("unexpected error writing file: %v", err)
		}
		got, err := ConfigFile("app/config.toml")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got != path {
			t.Errorf("unexpected path: got %q want %q", got, path)
		}
	}
}
