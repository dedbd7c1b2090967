// Copyright ©2023 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"fmt"

	"github.com/google/cel-go/cel"

	"github.com/kortschak/flipbook/animation"
)

// compileFilter compiles a CEL expression selecting animations by their
// properties. The expression must evaluate to a bool.
func compileFilter(src string) (cel.Program, error) {
	env, err := cel.NewEnv(
		cel.Variable("path", cel.StringType),
		cel.Variable("frames", cel.IntType),
		cel.Variable("width", cel.IntType),
		cel.Variable("height", cel.IntType),
		cel.Variable("identity", cel.IntType),
		cel.Variable("loop", cel.IntType),
		cel.Variable("cycle", cel.DurationType),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create env: %v", err)
	}

	ast, iss := env.Compile(src)
	if iss.Err() != nil {
		return nil, fmt.Errorf("failed compilation: %v", iss.Err())
	}
	if !ast.OutputType().IsExactType(cel.BoolType) {
		return nil, fmt.Errorf("filter must be a bool expression: got %v", ast.OutputType())
	}

	prg, err := env.Program(ast)
	if err != nil {
		return nil, fmt.Errorf("failed program instantiation: %v", err)
	}
	return prg, nil
}

// match returns whether the animation at path satisfies the filter.
func match(prg cel.Program, path string, fs *animation.FrameSet) (bool, error) {
	size := fs.Bounds().Size()
	out, _, err := prg.Eval(map[string]any{
		"path":     path,
		"frames":   fs.Len(),
		"width":    size.X,
		"height":   size.Y,
		"identity": int64(fs.Identity()),
		"loop":     fs.LoopCount(),
		"cycle":    fs.Cycle(),
	})
	if err != nil {
		return false, fmt.Errorf("failed eval: %v", err)
	}
	ok, isBool := out.Value().(bool)
	if !isBool {
		return false, fmt.Errorf("filter result is not a bool: %v", out.Type())
	}
	return ok, nil
}
