package render

// Palette is a 16-entry gradient sampled with an 8-bit index.
type Palette [16]Color

func palette(vals ...uint32) Palette {
	var p Palette
	for i, v := range vals {
		p[i] = Hex(v)
	}
	return p
}

var (
	RainbowPalette = palette(
		0xFF0000, 0xD52A00, 0xAB5500, 0xAB7F00, 0xABAB00, 0x56D500, 0x00FF00, 0x00D52A,
		0x00AB55, 0x0056AA, 0x0000FF, 0x2A00D5, 0x5500AB, 0x7F0081, 0xAB0055, 0xD5002B)
	PartyPalette = palette(
		0x5500AB, 0x84007C, 0xB5004B, 0xE5001B, 0xE81700, 0xB84700, 0xAB7700, 0xABAB00,
		0xAB5500, 0xDD2200, 0xF2000E, 0xC2003E, 0x8F0071, 0x5F00A1, 0x2F00D0, 0x0007F9)
	LavaPalette = palette(
		0x000000, 0x800000, 0x000000, 0x800000, 0x8B0000, 0x8B0000, 0x800000, 0x8B0000,
		0x8B0000, 0x8B0000, 0xFF0000, 0xFFA500, 0xFFFFFF, 0xFFA500, 0xFF0000, 0x8B0000)
	OceanPalette = palette(
		0x191970, 0x00008B, 0x191970, 0x000080, 0x00008B, 0x0000CD, 0x2E8B57, 0x008080,
		0x5F9EA0, 0x0000FF, 0x008B8B, 0x6495ED, 0x7FFFD4, 0x2E8B57, 0x00FFFF, 0x87CEFA)
	HeatPalette = palette(
		0x000000, 0x330000, 0x660000, 0x990000, 0xCC0000, 0xFF0000, 0xFF3300, 0xFF6600,
		0xFF9900, 0xFFCC00, 0xFFFF00, 0xFFFF33, 0xFFFF66, 0xFFFF99, 0xFFFFCC, 0xFFFFFF)
)

// At samples the palette, blending between neighbouring entries, then scales
// by brightness.
func (p *Palette) At(index, brightness uint8) Color {
	hi, lo := index>>4, index&0x0F
	c := p[hi]
	if lo != 0 {
		c = Blend(c, p[(hi+1)&0x0F], lo<<4)
	}
	if brightness != 255 {
		c = c.Scale(brightness)
	}
	return c
}
