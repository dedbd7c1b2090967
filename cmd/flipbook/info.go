// Copyright ©2023 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"context"
	"fmt"
	"io"

	"github.com/dustin/go-humanize"
	"github.com/google/cel-go/cel"
	"github.com/hako/durafmt"

	"github.com/kortschak/flipbook/internal/library"
)

var shortUnits, _ = durafmt.DefaultUnitsCoder.Decode("y:yrs,wk:wks,d:d,h:h,m:m,s:s,ms:ms,us:us")

// info decodes the animations at paths and writes a summary of each to
// stdout. If filter is not nil, only animations matching the filter are
// reported. Failures are reported to stderr.
func info(ctx context.Context, lib *library.Library, paths []string, workers int, filter cel.Program, stdout, stderr io.Writer) int {
	status := success
	for _, r := range lib.Preload(ctx, paths, workers) {
		if r.Err != nil {
			fmt.Fprintf(stderr, "%s: %v\n", r.Path, r.Err)
			status = internalError
			continue
		}
		fs := r.Frames
		if filter != nil {
			ok, err := match(filter, r.Path, fs)
			if err != nil {
				fmt.Fprintf(stderr, "%s: %v\n", r.Path, err)
				status = internalError
				continue
			}
			if !ok {
				continue
			}
		}
		size := fs.Bounds().Size()
		fmt.Fprintf(stdout, "%s: frames=%d size=%dx%d identity=%d bytes=%s cycle=%s loop=%d\n",
			r.Path, fs.Len(), size.X, size.Y, fs.Identity(),
			humanize.Bytes(uint64(fs.Identity())),
			durafmt.Parse(fs.Cycle()).LimitFirstN(2).Format(shortUnits),
			fs.LoopCount(),
		)
	}
	return status
}
