package frame

import (
	"errors"
	"fmt"

	"converty/internal/format"
)

// ErrSizeMismatch is matched by every *SizeMismatchError.
var ErrSizeMismatch = errors.New("size mismatch")

// SizeMismatchError reports a raw buffer whose length disagrees with its geometry.
// Near misses (a stray footer byte) are rejected the same way as wrong dimensions.
type SizeMismatchError struct {
	Got, Want int
	Geometry  format.Geometry
}

func (e *SizeMismatchError) Error() string {
	return fmt.Sprintf("size mismatch: buffer has %d bytes, %s needs %d", e.Got, e.Geometry, e.Want)
}

func (e *SizeMismatchError) Is(target error) bool { return target == ErrSizeMismatch }

// Decode converts one raw frame to a newly allocated RGB PixelBuffer.
// buf is only read; the result never aliases it.
func Decode(buf []byte, g format.Geometry) (*PixelBuffer, error) {
	p := &PixelBuffer{}
	if err := DecodeInto(p, buf, g); err != nil {
		return nil, err
	}
	return p, nil
}

// DecodeInto is Decode writing into dst, growing dst.Pix only when it is too small.
// On error dst is left untouched.
func DecodeInto(dst *PixelBuffer, buf []byte, g format.Geometry) error {
	if err := g.Validate(); err != nil {
		return err
	}
	if want := format.ExpectedSize(g); len(buf) != want {
		return &SizeMismatchError{Got: len(buf), Want: want, Geometry: g}
	}
	dst.resize(g.Width, g.Height)
	switch g.Layout {
	case format.LayoutUYVY:
		uyvyToRGB(buf, g.Width, g.Height, dst.Pix)
	case format.LayoutNV12:
		nv12ToRGB(buf, g.Width, g.Height, dst.Pix)
	default:
		return fmt.Errorf("%w: %s", format.ErrUnknownFormat, g.Layout)
	}
	return nil
}
