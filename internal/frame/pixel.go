package frame

import "image"

// PixelBuffer is a decoded frame: packed 8-bit RGB, row-major, stride 3*Width.
type PixelBuffer struct {
	Width, Height int
	Pix           []byte
}

// NewPixelBuffer allocates a zeroed w x h buffer.
func NewPixelBuffer(w, h int) *PixelBuffer {
	return &PixelBuffer{Width: w, Height: h, Pix: make([]byte, w*h*3)}
}

// Stride returns the number of bytes per row.
func (p *PixelBuffer) Stride() int { return p.Width * 3 }

// RGBAt returns the sample at (x, y). Out-of-range coordinates return black.
func (p *PixelBuffer) RGBAt(x, y int) (r, g, b byte) {
	if x < 0 || y < 0 || x >= p.Width || y >= p.Height {
		return 0, 0, 0
	}
	o := y*p.Stride() + x*3
	return p.Pix[o], p.Pix[o+1], p.Pix[o+2]
}

// resize makes p hold a w x h frame, reusing the backing array when it is large enough.
func (p *PixelBuffer) resize(w, h int) {
	n := w * h * 3
	if cap(p.Pix) < n {
		p.Pix = make([]byte, n)
	}
	p.Pix = p.Pix[:n]
	p.Width, p.Height = w, h
}

// NRGBA copies the frame into an opaque *image.NRGBA, the form image encoders take
// their fast path on. Channel order is preserved.
func (p *PixelBuffer) NRGBA() *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, p.Width, p.Height))
	for y := 0; y < p.Height; y++ {
		src := p.Pix[y*p.Stride() : (y+1)*p.Stride()]
		dst := img.Pix[y*img.Stride : y*img.Stride+p.Width*4]
		for x, s := 0, 0; x < len(dst); x, s = x+4, s+3 {
			dst[x+0] = src[s+0]
			dst[x+1] = src[s+1]
			dst[x+2] = src[s+2]
			dst[x+3] = 0xff
		}
	}
	return img
}
