package chip8

const (
	// FontAddress is where the hexadecimal digit glyphs are stored.
	FontAddress = 0x000

	// GlyphSize is the number of bytes (rows) per glyph.
	GlyphSize = 5
)

// font holds the 4x5 glyphs for the digits 0-F, one byte per row with the
// pixels in the high nibble.
var font = [16 * GlyphSize]byte{
	0xF0, 0x90, 0x90, 0x90, 0xF0, // 0
	0x20, 0x60, 0x20, 0x20, 0x70, // 1
	0xF0, 0x10, 0xF0, 0x80, 0xF0, // 2
	0xF0, 0x10, 0xF0, 0x10, 0xF0, // 3
	0x90, 0x90, 0xF0, 0x10, 0x10, // 4
	0xF0, 0x80, 0xF0, 0x10, 0xF0, // 5
	0xF0, 0x80, 0xF0, 0x90, 0xF0, // 6
	0xF0, 0x10, 0x20, 0x40, 0x40, // 7
	0xF0, 0x90, 0xF0, 0x90, 0xF0, // 8
	0xF0, 0x90, 0xF0, 0x10, 0xF0, // 9
	0xF0, 0x90, 0xF0, 0x90, 0x90, // A
	0xE0, 0x90, 0xE0, 0x90, 0xE0, // B
	0xF0, 0x80, 0x80, 0x80, 0xF0, // C
	0xE0, 0x90, 0x90, 0x90, 0xE0, // D
	0xF0, 0x80, 0xF0, 0x80, 0xF0, // E
	0xF0, 0x80, 0xF0, 0x80, 0x80, // F
}

// Glyph returns the sprite rows for a hexadecimal digit. Only the low
// nibble of digit is used.
func Glyph(digit byte) []byte {
	start := int(digit&0xF) * GlyphSize
	glyph := make([]byte, GlyphSize)
	copy(glyph, font[start:start+GlyphSize])
	return glyph
}

// glyphAddress returns the memory address of a digit glyph.
func glyphAddress(digit byte) uint16 {
	return FontAddress + uint16(digit&0xF)*GlyphSize
}
