// Copyright ©2023 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package term

import (
	"fmt"

	"golang.org/x/image/draw"
)

// Filter is the interpolation used when frames are resized.
type Filter int

const (
	// Linear interpolates between neighbouring pixels.
	Linear Filter = iota
	// Nearest uses the nearest source pixel.
	Nearest
)

var filterNames = []string{
	Linear:  "linear",
	Nearest: "nearest",
}

func (f Filter) String() string {
	if f < 0 || int(f) >= len(filterNames) {
		return fmt.Sprintf("Filter(%d)", int(f))
	}
	return filterNames[f]
}

// ParseFilter returns the Filter with the given name.
func ParseFilter(name string) (Filter, error) {
	for i, n := range filterNames {
		if n == name {
			return Filter(i), nil
		}
	}
	return 0, fmt.Errorf("unknown filter: %q", name)
}

// Set implements the flag.Value interface.
func (f *Filter) Set(name string) error {
	v, err := ParseFilter(name)
	if err != nil {
		return err
	}
	*f = v
	return nil
}

// Scaler returns the scaler implementing the filter.
func (f Filter) Scaler() draw.Scaler {
	if f == Nearest {
		return draw.NearestNeighbor
	}
	return draw.ApproxBiLinear
}
