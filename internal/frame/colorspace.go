package frame

// Full-range BT.601 YUV -> RGB in 16.16 fixed point:
//
//	R = Y + 1.402*(V-128)
//	G = Y - 0.344136*(U-128) - 0.714136*(V-128)
//	B = Y + 1.772*(U-128)
const (
	fixShift = 16
	fixHalf  = 1 << (fixShift - 1)

	coefVR = 91881  // 1.402
	coefUG = 22554  // 0.344136
	coefVG = 46802  // 0.714136
	coefUB = 116130 // 1.772
)

// chroma returns the per-channel offsets contributed by one (U, V) pair.
// Pixels sharing a chroma sample add the same offsets to their own luma.
func chroma(u, v byte) (dr, dg, db int) {
	d := int(u) - 128
	e := int(v) - 128
	dr = (coefVR*e + fixHalf) >> fixShift
	dg = (-coefUG*d - coefVG*e + fixHalf) >> fixShift
	db = (coefUB*d + fixHalf) >> fixShift
	return
}

// YUVToRGB converts one full-range sample triple, saturating each channel to [0,255].
func YUVToRGB(y, u, v byte) (r, g, b byte) {
	dr, dg, db := chroma(u, v)
	Y := int(y)
	return clamp8(Y + dr), clamp8(Y + dg), clamp8(Y + db)
}

func clamp8(x int) byte {
	if x < 0 {
		return 0
	}
	if x > 255 {
		return 255
	}
	return byte(x)
}
