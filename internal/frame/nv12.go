package frame

// nv12ToRGB converts planar NV12 4:2:0 to packed RGB.
// Layout: w*h luma bytes, then (h/2) rows of w bytes holding U,V pairs.
// Chroma is upsampled nearest-neighbour: every 2x2 luma block shares one pair.
func nv12ToRGB(src []byte, w, h int, out []byte) {
	yPlane := src[:w*h]
	uvPlane := src[w*h:]
	for row := 0; row < h; row++ {
		yi := row * w
		ci := (row / 2) * w
		dstOff := row * w * 3
		for x := 0; x < w; x += 2 {
			c := ci + x // (x/2)*2 for even x
			dr, dg, db := chroma(uvPlane[c+0], uvPlane[c+1])
			y0 := int(yPlane[yi+x])
			y1 := int(yPlane[yi+x+1])

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
