package tonemap

// Luma derives a single intensity from RGB under the given policy.
// Unknown policies fall back to BT.601.
func Luma(r, g, b uint8, p LumaPolicy) uint8 {
	switch p {
	case LumaMax:
		return max(r, g, b)
	case LumaMin:
		return min(r, g, b)
	default:
		return uint8((299*uint32(r) + 587*uint32(g) + 114*uint32(b)) / 1000)
	}
}

// setOpaque writes v to RGB of pixel i, applying the transparency rule.
func setOpaque(dst, src []uint8, i int, v uint8) {
	if src[i+3] == 0 {
		dst[i], dst[i+1], dst[i+2], dst[i+3] = 0, 0, 0, 0
		return
	}
	dst[i], dst[i+1], dst[i+2], dst[i+3] = v, v, v, 255
}
