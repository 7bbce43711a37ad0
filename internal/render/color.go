package render

// Hex unpacks a 0xRRGGBB literal.
func Hex(v uint32) Color {
	return Color{uint8(v >> 16), uint8(v >> 8), uint8(v)}
}

// Scale8 scales v by s/256, with Scale8(x, 255) == x.
func Scale8(v, s uint8) uint8 {
	return uint8((int(v) * (int(s) + 1)) >> 8)
}

// Qadd8 adds with saturation at 255.
func Qadd8(a, b uint8) uint8 {
	if s := int(a) + int(b); s < 255 {
		return uint8(s)
	}
	return 255
}

// Qsub8 subtracts with saturation at 0.
func Qsub8(a, b uint8) uint8 {
	if a > b {
		return a - b
	}
	return 0
}

func (c Color) Scale(s uint8) Color {
	return Color{Scale8(c.R, s), Scale8(c.G, s), Scale8(c.B, s)}
}

func (c Color) Add(o Color) Color {
	return Color{Qadd8(c.R, o.R), Qadd8(c.G, o.G), Qadd8(c.B, o.B)}
}

// Blend moves a toward b by amt/255.
func Blend(a, b Color, amt uint8) Color {
	return Color{blend8(a.R, b.R, amt), blend8(a.G, b.G, amt), blend8(a.B, b.B, amt)}
}

func blend8(a, b, amt uint8) uint8 {
	return uint8((int(a)*(255-int(amt)) + int(b)*int(amt) + 127) / 255)
}

// HSV converts an 8-bit hue/saturation/value triple. Hue wraps at 256.
func HSV(h, s, v uint8) Color {
	if s == 0 {
		return Color{v, v, v}
	}
	region := int(h) / 43
	rem := (int(h) - region*43) * 6
	vv, ss := int(v), int(s)

	p := (vv * (255 - ss)) >> 8
	q := (vv * (255 - ((ss * rem) >> 8))) >> 8
	t := (vv * (255 - ((ss * (255 - rem)) >> 8))) >> 8

	switch region {
	case 0:
		return Color{v, uint8(t), uint8(p)}
	case 1:
		return Color{uint8(q), v, uint8(p)}
	case 2:
		return Color{uint8(p), v, uint8(t)}
	case 3:
		return Color{uint8(p), uint8(q), v}
	case 4:
		return Color{uint8(t), uint8(p), v}
	default:
		return Color{v, uint8(p), uint8(q)}
	}
}

func Fill(dst []Color, c Color) {
	for i := range dst {
		dst[i] = c
	}
}

// FillRainbow paints consecutive hues starting at hue, advancing delta per pixel.
func FillRainbow(dst []Color, hue, delta uint8) {
	for i := range dst {
		dst[i] = HSV(hue, 240, 255)
		hue += delta
	}
}

// FadeToBlackBy dims every pixel by amt/256 of its value.
func FadeToBlackBy(dst []Color, amt uint8) {
	keep := 255 - amt
	for i := range dst {
		dst[i] = dst[i].Scale(keep)
	}
}

// Glitter adds a white spark at a random pixel with probability chance/256.
func (b *Base) Glitter(dst []Color, chance uint8) {
	if len(dst) == 0 {
		return
	}
	if uint8(b.Rand.IntN(256)) < chance {
		i := b.Rand.IntN(len(dst))
		dst[i] = dst[i].Add(White)
	}
}
