// Copyright ©2023 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

//go:build !unix

package term

import "errors"

// Width returns the width in cells of the terminal open on fd.
func Width(fd uintptr) (int, error) {
	return 0, errors.New("terminal size not available")
}
