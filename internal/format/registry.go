package format

import (
	"fmt"
	"sort"
	"strings"
)

// presets binds camera identifiers to their sensor geometry. Built once, never mutated.
var presets = map[string]Geometry{
	"ss2": {Width: 1920, Height: 1280, Layout: LayoutUYVY, Preset: "ss2"},
	"ss3": {Width: 1920, Height: 1536, Layout: LayoutUYVY, Preset: "ss3"},
	"ss4": {Width: 1920, Height: 1536, Layout: LayoutNV12, Preset: "ss4"},
}

// Lookup returns the geometry bound to a preset name.
func Lookup(name string) (Geometry, bool) {
	g, ok := presets[strings.ToLower(name)]
	return g, ok
}

// PresetNames returns the known preset names in sorted order.
func PresetNames() []string {
	names := make([]string, 0, len(presets))
	for n := range presets {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Request carries what the user supplied. Zero values mean "not supplied".
type Request struct {
	Preset string
	Width  int
	Height int
	Format string
}

func (r Request) explicitCount() int {
	n := 0
	if r.Width != 0 {
		n++
	}
	if r.Height != 0 {
		n++
	}
	if r.Format != "" {
		n++
	}
	return n
}

func (r Request) missing() []string {
	var m []string
	if r.Width == 0 {
		m = append(m, "--width")
	}
	if r.Height == 0 {
		m = append(m, "--height")
	}
	if r.Format == "" {
		m = append(m, "--format")
	}
	return m
}

// Resolve turns a Request into a validated Geometry.
//
// A preset alone selects the preset geometry. Explicit width, height and format must be
// given together; when they accompany a preset they replace it wholesale. A partial
// explicit set is rejected rather than filled from the preset.
func Resolve(req Request) (Geometry, error) {
	var preset Geometry
	if req.Preset != "" {
		p, ok := Lookup(req.Preset)
		if !ok {
			return Geometry{}, fmt.Errorf("%w: %q (known: %s)", ErrUnknownPreset, req.Preset, strings.Join(PresetNames(), ", "))
		}
		preset = p
	}

	switch n := req.explicitCount(); {
	case n == 0 && req.Preset != "":
		return preset, nil
	case n == 0:
		return Geometry{}, fmt.Errorf("%w: give --type or all of --width, --height and --format", ErrMissingParameter)
	case n < 3:
		return Geometry{}, fmt.Errorf("%w: %s (explicit geometry needs --width, --height and --format together)",
			ErrMissingParameter, strings.Join(req.missing(), ", "))
	}

	layout, err := ParseLayout(req.Format)
	if err != nil {
		return Geometry{}, err
	}
	g := Geometry{Width: req.Width, Height: req.Height, Layout: layout}
	if err := g.Validate(); err != nil {
		return Geometry{}, err
	}
	return g, nil
}
