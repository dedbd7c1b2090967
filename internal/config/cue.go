// Copyright ©2023 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package config

import (
	"cmp"
	"slices"
	"strings"
	"sync"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cerrors "cuelang.org/go/cue/errors"
	"cuelang.org/go/encoding/gocode/gocodec"
	"golang.org/x/exp/constraints"
)

// schema is the compiled Schema. A cue.Context is not safe for
// concurrent use, so all use of the compiled value is under mu.
var schema struct {
	mu    sync.Mutex
	val   cue.Value
	codec *gocodec.Codec
	err   error
}

// compiled returns the compiled Schema and a codec sharing its context.
// It must be called with schema.mu held.
func compiled() (cue.Value, *gocodec.Codec, error) {
	if schema.codec == nil && schema.err == nil {
		ctx := cuecontext.New()
		schema.val = ctx.CompileString(Schema)
		schema.err = schema.val.Err()
		schema.codec = gocodec.New(ctx, nil)
	}
	return schema.val, schema.codec, schema.err
}

// InvalidError is returned by Vet when a configuration does not satisfy
// Schema.
type InvalidError struct {
	// Keys are the configuration keys of the invalid
	// fields in lexical order.
	Keys []string
	// Err holds the CUE explanation of the failures.
	Err error
}

func (e *InvalidError) Error() string {
	return strings.Join(e.Keys, ", ") + ": " + cerrors.Details(e.Err, nil)
}

func (e *InvalidError) Unwrap() error { return e.Err }

// Vet validates cfg against Schema. If cfg is invalid, the returned
// error is an *InvalidError and keys holds the configuration keys of
// the invalid fields.
func Vet(cfg *Config) (keys []string, err error) {
	schema.mu.Lock()
	defer schema.mu.Unlock()

	v, codec, err := compiled()
	if err != nil {
		return nil, err
	}
	w, err := codec.Decode(cfg)
	if err != nil {
		return nil, err
	}

	err = v.Unify(w).Validate(cue.Concrete(true), cue.Final())
	errs := cerrors.Errors(err)
	if len(errs) == 0 {
		return nil, nil
	}
	paths := make([][]string, 0, len(errs))
	for _, e := range errs {
		if p := cerrors.Path(e); p != nil {
			paths = append(paths, p)
		}
	}
	paths = unique(paths)
	keys = make([]string, len(paths))
	for i, p := range paths {
		keys[i] = strings.Join(p, ".")
	}
	return keys, &InvalidError{Keys: keys, Err: err}
}

// unique returns paths lexically sorted in ascending order and with repeated
// and empty elements omitted.
func unique(paths [][]string) [][]string {
	paths = slices.DeleteFunc(paths, func(p []string) bool { return len(p) == 0 })
	slices.SortFunc(paths, compare[string])
	return slices.CompactFunc(paths, func(a, b []string) bool { return compare(a, b) == 0 })
}

// compare returns the lexical ordering of a and b.
func compare[T constraints.Ordered](a, b []T) int {
	for i := range min(len(a), len(b)) {
		if c := cmp.Compare(a[i], b[i]); c != 0 {
			return c
		}
	}
	return cmp.Compare(len(a), len(b))
}
