package imageio

import (
	"errors"
	"fmt"
	"image"
	_ "image/png"
	"os"
	"strings"
	"sync"

	"github.com/klauspost/compress/zstd"
	_ "golang.org/x/image/tiff"
)

var (
	ErrRead           = errors.New("read failed")
	ErrWrite          = errors.New("write failed")
	ErrUnknownEncoder = errors.New("unknown encoder")
)

// CompressedSuffix marks raw dumps stored zstd-compressed, e.g. frame.raw.zst.
const CompressedSuffix = ".zst"

var zstdDecPool = sync.Pool{
	New: func() any {
		dec, err := zstd.NewReader(
			nil,
			zstd.WithDecoderConcurrency(1),
			zstd.WithDecoderLowmem(true),
		)
		if err != nil {
			panic(err)
		}
		return dec
	},
}

// ReadRaw loads a raw frame dump. Files ending in .zst are decompressed transparently.
func ReadRaw(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrRead, err)
	}
	if !strings.HasSuffix(strings.ToLower(path), CompressedSuffix) {
		return data, nil
	}
	dec := zstdDecPool.Get().(*zstd.Decoder)
	out, err := dec.DecodeAll(data, nil)
	zstdDecPool.Put(dec)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: zstd: %w", ErrRead, path, err)
	}
	return out, nil
}

// ReadImage decodes a PNG or TIFF written by this package.
func ReadImage(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrRead, err)
	}
	defer f.Close()
	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrRead, path, err)
	}
	return img, nil
}
