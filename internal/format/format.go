package format

import (
	"fmt"
	"math"
	"strings"
)

// Layout identifies how pixel samples are arranged in a raw frame.
type Layout int

const (
	// LayoutUnknown is the zero value and never valid for decoding.
	LayoutUnknown Layout = iota
	// LayoutUYVY is packed 4:2:2, 4 bytes per 2 pixels: U Y0 V Y1.
	LayoutUYVY
	// LayoutNV12 is planar 4:2:0: full Y plane followed by interleaved UV at half resolution.
	LayoutNV12
)

// String returns the keyword used on the command line.
func (l Layout) String() string {
	switch l {
	case LayoutUYVY:
		return "uyvy"
	case LayoutNV12:
		return "nv12"
	default:
		return "unknown"
	}
}

// MarshalText lets layouts appear as keywords in YAML reports.
func (l Layout) MarshalText() ([]byte, error) {
	return []byte(l.String()), nil
}

// ParseLayout maps a keyword (case-insensitive) to a Layout.
func ParseLayout(s string) (Layout, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "uyvy":
		return LayoutUYVY, nil
	case "nv12":
		return LayoutNV12, nil
	}
	return LayoutUnknown, fmt.Errorf("%w: %q (want uyvy or nv12)", ErrUnknownFormat, s)
}

// Geometry describes a headerless raw frame.
type Geometry struct {
	Width  int    `yaml:"width"`
	Height int    `yaml:"height"`
	Layout Layout `yaml:"layout"`
	// Preset is the preset name the geometry came from, empty for explicit geometry.
	Preset string `yaml:"preset,omitempty"`
}

// Validate checks the dimensions required by both chroma subsampling schemes.
func (g Geometry) Validate() error {
	if g.Width <= 0 || g.Height <= 0 {
		return fmt.Errorf("%w: %dx%d must be positive", ErrInvalidDimension, g.Width, g.Height)
	}
	if g.Width%2 != 0 || g.Height%2 != 0 {
		return fmt.Errorf("%w: %dx%d must be even", ErrInvalidDimension, g.Width, g.Height)
	}
	// The decoded RGB frame is the largest buffer derived from the geometry.
	if g.Width > math.MaxInt/3/g.Height {
		return fmt.Errorf("%w: %dx%d is too large", ErrInvalidDimension, g.Width, g.Height)
	}
	if g.Layout != LayoutUYVY && g.Layout != LayoutNV12 {
		return fmt.Errorf("%w: layout %d", ErrUnknownFormat, int(g.Layout))
	}
	return nil
}

func (g Geometry) String() string {
	s := fmt.Sprintf("%dx%d %s", g.Width, g.Height, g.Layout)
	if g.Preset != "" {
		s += " (" + g.Preset + ")"
	}
	return s
}

// ExpectedSize returns the exact byte length of a frame with geometry g.
// Returns 0 for an unknown layout.
func ExpectedSize(g Geometry) int {
	switch g.Layout {
	case LayoutUYVY:
		return g.Width * g.Height * 2
	case LayoutNV12:
		return g.Width*g.Height + 2*((g.Width/2)*(g.Height/2))
	}
	return 0
}
