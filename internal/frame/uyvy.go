package frame

// uyvyToRGB converts packed UYVY 4:2:2 (2 bytes per pixel, stride w*2, no row padding)
// to packed RGB. Assumes len(src) == w*h*2 and len(out) >= w*h*3.
func uyvyToRGB(src []byte, w, h int, out []byte) {
	for row := 0; row < h; row++ {
		srcOff := row * w * 2
		dstOff := row * w * 3
		// Each macro-pixel is U Y0 V Y1 and covers two horizontally adjacent pixels.
		for x := 0; x < w; x += 2 {
			i := srcOff + x*2
			dr, dg, db := chroma(src[i+0], src[i+2])
			y0 := int(src[i+1])
			y1 := int(src[i+3])

			o := dstOff + x*3
			out[o+0] = clamp8(y0 + dr)
			out[o+1] = clamp8(y0 + dg)
			out[o+2] = clamp8(y0 + db)
			out[o+3] = clamp8(y1 + dr)
			out[o+4] = clamp8(y1 + dg)
			out[o+5] = clamp8(y1 + db)
		}
	}
}
