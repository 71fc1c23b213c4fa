// Package gfx holds Doom's indexed-colour graphics in decoded form: pictures, composite wall
// textures, flats, sprite frames, the palette and the light-banded colormaps.
package gfx

// The doom picture (image) format, expanded. Each column holds Height palette indices with
// Transparent marking holes, so a picture can be drawn without walking its posts.
type Picture struct {
	Name                  string // Useful for debugging
	Width, Height         int
	LeftOffset, TopOffset int // Allows soulspheres, weapons and keys to float
	Columns               []Column
	Transparent           byte
}

// Rather than implement column posts, just set column to transparent and fill in post data.
type Column []byte

// NewPicture allocates a picture with every pixel transparent
func NewPicture(name string, width, height int, transparent byte) *Picture {
	pic := &Picture{
		Name:        name,
		Width:       width,
		Height:      height,
		Columns:     make([]Column, width),
		Transparent: transparent,
	}
	for x := range pic.Columns {
		pic.Columns[x] = make(Column, height)
		for y := range pic.Columns[x] {
			pic.Columns[x][y] = transparent
		}
	}
	return pic
}

// Blit copies the opaque pixels of src into p with src's top left corner at (x, y)
func (p *Picture) Blit(src *Picture, x, y int) {
	for sx, col := range src.Columns {
		dx := x + sx
		if dx < 0 || dx >= p.Width {
			continue
		}
		dst := p.Columns[dx]
		for sy, b := range col {
			dy := y + sy
			if dy < 0 || dy >= p.Height || b == src.Transparent {
				continue
			}
			dst[dy] = b
		}
	}
}

// Texture is a wall texture composed from one or more patches
type Texture struct {
	Name          string
	Width, Height int
	Masked        bool
	Picture       *Picture
}

// Column returns texture column x, wrapping in both directions
func (t *Texture) Column(x int) Column {
	return t.Picture.Columns[Wrap(x, t.Width)]
}

// Transparent reports the palette index used for holes in the texture
func (t *Texture) Transparent() byte {
	return t.Picture.Transparent
}

// A flat is a raw 64x64 block of palette indices drawn on floors and ceilings, always aligned to
// a fixed world grid.
type Flat struct {
	Name string
	Data []byte
}

const FlatWidth, FlatHeight = 64, 64

// At returns the palette index at world grid position (s, t)
func (f *Flat) At(s, t int) byte {
	return f.Data[(t&(FlatHeight-1))*FlatWidth+(s&(FlatWidth-1))]
}

// SpriteFrame holds the pictures of one animation frame seen from eight directions. Rotation 0
// faces the viewer. A frame that is not Rotational uses rotation 0 for every direction.
type SpriteFrame struct {
	Rotational bool
	Rotations  [8]SpriteRotation
}

type SpriteRotation struct {
	Picture   *Picture
	IsFlipped bool
}

type RGB struct {
	Red, Green, Blue uint8
}

// Pack returns the colour as an opaque 0xAARRGGBB pixel
func (c RGB) Pack() uint32 {
	return 0xFF000000 | uint32(c.Red)<<16 | uint32(c.Green)<<8 | uint32(c.Blue)
}

// Each palette contains 256 three-ubyte colors.
type Palette [256]RGB

// Each color map is a table 256 bytes long, indexed by a pixel value and yielding a
// brightness-adjusted pixel value.
type ColorMap [256]byte

// LightMaps is the number of light-graded colormaps at the start of the COLORMAP lump, brightest
// first. The remaining maps (invulnerability, all black) are not used for lighting.
const LightMaps = 32

// Wrap returns n modulo size in the range [0, size)
func Wrap(n, size int) int {
	n %= size
	if n < 0 {
		n += size
	}
	return n
}
