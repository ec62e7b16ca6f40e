package imageio

import (
	"fmt"
	"image"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/image/tiff"
)

// Encoder writes one lossless still image.
type Encoder interface {
	Encode(w io.Writer, img image.Image) error
	// Name is the keyword accepted by NewEncoder.
	Name() string
	// Ext is the file extension including the dot.
	Ext() string
}

// PNG encodes with image/png. An opaque *image.NRGBA is written as 8-bit truecolor RGB.
type PNG struct {
	Level png.CompressionLevel
}

func (p PNG) Encode(w io.Writer, img image.Image) error {
	enc := png.Encoder{CompressionLevel: p.Level}
	return enc.Encode(w, img)
}

func (PNG) Name() string { return "png" }
func (PNG) Ext() string  { return ".png" }

// TIFF encodes deflate-compressed TIFF.
type TIFF struct{}

func (TIFF) Encode(w io.Writer, img image.Image) error {
	return tiff.Encode(w, img, &tiff.Options{Compression: tiff.Deflate, Predictor: true})
}

func (TIFF) Name() string { return "tiff" }
func (TIFF) Ext() string  { return ".tiff" }

// EncoderNames lists the names accepted by NewEncoder.
var EncoderNames = []string{"png", "tiff"}

// NewEncoder returns the encoder registered under name.
func NewEncoder(name string) (Encoder, error) {
	switch strings.ToLower(name) {
	case "", "png":
		return PNG{Level: png.BestSpeed}, nil
	case "tiff", "tif":
		return TIFF{}, nil
	}
	return nil, fmt.Errorf("%w: %q (want %s)", ErrUnknownEncoder, name, strings.Join(EncoderNames, " or "))
}

// WriteAtomic encodes img to path. The image goes to a temporary file in the same
// directory first and is renamed into place only once fully written and synced, so
// path holds either the complete image or whatever it held before.
func WriteAtomic(path string, enc Encoder, img image.Image) (err error) {
	tmpPath := filepath.Join(filepath.Dir(path), "."+filepath.Base(path)+"."+uuid.NewString()+".tmp")
	tmp, err := os.OpenFile(tmpPath, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrWrite, err)
	}
	defer func() {
		if err != nil {
			_ = tmp.Close()
			_ = os.Remove(tmpPath)
		}
	}()

	if err = enc.Encode(tmp, img); err != nil {
		return fmt.Errorf("%w: encode %s: %w", ErrWrite, path, err)
	}
	if err = tmp.Sync(); err != nil {
		return fmt.Errorf("%w: %w", ErrWrite, err)
	}
	if err = tmp.Close(); err != nil {
		return fmt.Errorf("%w: %w", ErrWrite, err)
	}
	if err = os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("%w: %w", ErrWrite, err)
	}
	return nil
}
