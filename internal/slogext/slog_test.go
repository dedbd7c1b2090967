// Copyright ©2023 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package slogext

import (
	"bytes"
	"context"
	"encoding/json"
	"image"
	"log/slog"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/kortschak/flipbook/animation"
)

func TestJSONHandlerSource(t *testing.T) {
	var buf bytes.Buffer
	addSource := NewAtomicBool(false)
	log := slog.New(GoID{NewJSONHandler(&buf, &HandlerOptions{AddSource: addSource})})

	ctx := context.Background()
	log.LogAttrs(ctx, slog.LevelInfo, "without")
	addSource.Store(true)
	log.LogAttrs(ctx, slog.LevelInfo, "with")

	dec := json.NewDecoder(&buf)
	for _, want := range []struct {
		msg    string
		source bool
	}{
		{msg: "without", source: false},
		{msg: "with", source: true},
	} {
		var rec map[string]any
		err := dec.Decode(&rec)
		if err != nil {
			t.Fatalf("unexpected error decoding log record: %v", err)
		}
		if rec["msg"] != want.msg {
			t.Errorf("unexpected message: got %v want %s", rec["msg"], want.msg)
		}
		if _, ok := rec[slog.SourceKey]; ok != want.source {
			t.Errorf("unexpected source presence for %q: got %t want %t", want.msg, ok, want.source)
		}
		if _, ok := rec["goid"]; !ok {
			t.Errorf("missing goid for %q", want.msg)
		}
	}
}

func TestFrameSetLogValue(t *testing.T) {
	fs, err := animation.NewFrameSet([]animation.Frame{
		{Image: image.NewRGBA(image.Rect(0, 0, 2, 3)), Delay: 100 * time.Millisecond},
		{Image: image.NewRGBA(image.Rect(0, 0, 2, 3)), Delay: 10 * time.Millisecond},
	}, 42)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var buf bytes.Buffer
	log := slog.New(NewJSONHandler(&buf, nil))
	log.LogAttrs(context.Background(), slog.LevelInfo, "loaded", slog.Any("animation", FrameSet{fs}), slog.Any("missing", FrameSet{}))

	var rec struct {
		Animation map[string]any `json:"animation"`
		Missing   string         `json:"missing"`
	}
	err = json.Unmarshal(buf.Bytes(), &rec)
	if err != nil {
		t.Fatalf("unexpected error decoding log record: %v", err)
	}
	want := map[string]any{
		"identity": 42.0,
		"frames":   2.0,
		"bounds":   "(0,0)-(2,3)",
		// The second frame's delay is raised to the default.
		"cycle": float64(200 * time.Millisecond),
	}
	if !cmp.Equal(rec.Animation, want) {
		t.Errorf("unexpected log value:\n--- want:\n+++ got:\n%s", cmp.Diff(want, rec.Animation))
	}
	if rec.Missing != "<nil>" {
		t.Errorf("unexpected nil log value: %q", rec.Missing)
	}
}

type name string

func (n name) String() string { return "name:" + string(n) }

func TestStringerLogValue(t *testing.T) {
	var buf bytes.Buffer
	log := slog.New(NewJSONHandler(&buf, nil))
	log.LogAttrs(context.Background(), slog.LevelInfo, "stringer", slog.Any("set", Stringer{name("fit")}), slog.Any("unset", Stringer{}))

	var rec map[string]any
	err := json.Unmarshal(buf.Bytes(), &rec)
	if err != nil {
		t.Fatalf("unexpected error decoding log record: %v", err)
	}
	if rec["set"] != "name:fit" || rec["unset"] != "<nil>" {
		t.Errorf("unexpected stringer values: set=%v unset=%v", rec["set"], rec["unset"])
	}
}
