package render

import (
	"testing"

	"github.com/stuarthighley/doomview/bam"
	"github.com/stuarthighley/doomview/gfx"
	"github.com/stuarthighley/doomview/level"
)

// Palette indices used as solid colours by the test materials
const (
	wallColor    = 10
	floorColor   = 20
	ceilColor    = 30
	spriteColor  = 40
	fenceColor   = 50
	lowerColor   = 60
	upperColor   = 70
	skyColor     = 80
	transparentI = 255
)

const (
	wallTex level.TextureNum = iota
	fenceTex
	lowerTex
	upperTex
	skyTex
)

const (
	floorFlat level.FlatNum = iota
	ceilFlat
	skyFlat
)

const testW, testH = 320, 200

// fakeMaterials serves solid colour graphics. Every colormap is the identity, so a pixel's low
// byte is the palette index that produced it.
type fakeMaterials struct {
	textures map[level.TextureNum]*gfx.Texture
	flats    map[level.FlatNum]*gfx.Flat
	frames   map[[2]int]*gfx.SpriteFrame
	palette  gfx.Palette
	cms      []gfx.ColorMap
}

func solidPicture(name string, w, h int, color byte) *gfx.Picture {
	pic := gfx.NewPicture(name, w, h, transparentI)
	for x := range pic.Columns {
		for y := range pic.Columns[x] {
			pic.Columns[x][y] = color
		}
	}
	return pic
}

func solidTexture(name string, w, h int, color byte, masked bool) *gfx.Texture {
	return &gfx.Texture{Name: name, Width: w, Height: h, Masked: masked, Picture: solidPicture(name, w, h, color)}
}

func solidFlat(name string, color byte) *gfx.Flat {
	f := &gfx.Flat{Name: name, Data: make([]byte, gfx.FlatWidth*gfx.FlatHeight)}
	for i := range f.Data {
		f.Data[i] = color
	}
	return f
}

func newFakeMaterials() *fakeMaterials {
	m := &fakeMaterials{
		textures: map[level.TextureNum]*gfx.Texture{
			wallTex:  solidTexture("WALL", 64, 128, wallColor, false),
			fenceTex: solidTexture("FENCE", 8, 64, fenceColor, true),
			lowerTex: solidTexture("LOWER", 64, 64, lowerColor, false),
			upperTex: solidTexture("UPPER", 64, 64, upperColor, false),
			skyTex:   solidTexture("SKY", 256, 128, skyColor, false),
		},
		flats: map[level.FlatNum]*gfx.Flat{
			floorFlat: solidFlat("FLOOR", floorColor),
			ceilFlat:  solidFlat("CEIL", ceilColor),
			skyFlat:   solidFlat("F_SKY1", 0),
		},
		frames: map[[2]int]*gfx.SpriteFrame{},
		cms:    make([]gfx.ColorMap, gfx.LightMaps),
	}
	for i := range m.palette {
		m.palette[i] = gfx.RGB{Red: uint8(i), Green: uint8(i), Blue: uint8(i)}
	}
	for c := range m.cms {
		for i := range m.cms[c] {
			m.cms[c][i] = byte(i)
		}
	}

	pic := solidPicture("TROOA0", 32, 64, spriteColor)
	pic.LeftOffset, pic.TopOffset = 16, 64
	frame := &gfx.SpriteFrame{}
	frame.Rotations[0].Picture = pic
	m.frames[[2]int{0, 0}] = frame
	return m
}

func (m *fakeMaterials) Texture(n level.TextureNum) *gfx.Texture { return m.textures[n] }
func (m *fakeMaterials) Flat(n level.FlatNum) *gfx.Flat { return m.flats[n] }
func (m *fakeMaterials) SpriteFrame(sprite, frame int) *gfx.SpriteFrame {
	return m.frames[[2]int{sprite, frame}]
}
func (m *fakeMaterials) Palette() *gfx.Palette { return &m.palette }
func (m *fakeMaterials) ColorMaps() []gfx.ColorMap { return m.cms }

// builder assembles small levels. Lines have their front side on the right of v1 to v2.
type builder struct {
	l *level.Level
}

func newBuilder() *builder {
	return &builder{l: &level.Level{SkyFlat: skyFlat, SkyTexture: skyTex}}
}

func (b *builder) vertex(x, y int) int {
	b.l.Vertices = append(b.l.Vertices, level.Vertex{X: x, Y: y})
	return len(b.l.Vertices) - 1
}

func (b *builder) sector(floor, ceil float64) int {
	b.l.Sectors = append(b.l.Sectors, level.Sector{
		FloorHeight:   floor,
		CeilingHeight: ceil,
		FloorFlat:     floorFlat,
		CeilingFlat:   ceilFlat,
		LightLevel:    192,
	})
	return len(b.l.Sectors) - 1
}

func (b *builder) side(sector int, upper, lower, mid level.TextureNum) int {
	b.l.Sides = append(b.l.Sides, level.Side{Upper: upper, Lower: lower, Middle: mid, Sector: sector})
	return len(b.l.Sides) - 1
}

// wall adds a one-sided line
func (b *builder) wall(v1, v2, sector int) int {
	b.l.Lines = append(b.l.Lines, level.Line{
		V1: v1, V2: v2,
		Front: b.side(sector, level.NoTexture, level.NoTexture, wallTex),
		Back:  level.NoSide,
	})
	return len(b.l.Lines) - 1
}

// portal adds a two-sided line with step textures on both sides and mid on the front
func (b *builder) portal(v1, v2, front, back int, mid level.TextureNum, flags level.LineFlags) int {
	b.l.Lines = append(b.l.Lines, level.Line{
		V1: v1, V2: v2,
		Flags: flags | level.TwoSided,
		Front: b.side(front, upperTex, lowerTex, mid),
		Back:  b.side(back, upperTex, lowerTex, level.NoTexture),
	})
	return len(b.l.Lines) - 1
}

// seg adds a seg along line, against the line's direction if reversed
func (b *builder) seg(line int, reversed bool) {
	ln := b.l.Lines[line]
	sg := level.Seg{V1: ln.V1, V2: ln.V2, Line: line, Front: ln.Front, Back: ln.Back}
	if reversed {
		sg.V1, sg.V2, sg.Front, sg.Back = ln.V2, ln.V1, ln.Back, ln.Front
	}
	v1, v2 := b.l.Vertices[sg.V1], b.l.Vertices[sg.V2]
	sg.Angle = bam.Atan2(float64(v2.Y-v1.Y), float64(v2.X-v1.X))
	b.l.Segs = append(b.l.Segs, sg)
}

// subsector closes a leaf over the segs added since the previous one
func (b *builder) subsector() {
	first := 0
	if n := len(b.l.SubSectors); n > 0 {
		last := b.l.SubSectors[n-1]
		first = last.FirstSeg + last.NumSegs
	}
	b.l.SubSectors = append(b.l.SubSectors, level.SubSector{FirstSeg: first, NumSegs: len(b.l.Segs) - first})
}

func (b *builder) build(t *testing.T) *level.Level {
	t.Helper()
	if err := b.l.ResolveSubSectors(); err != nil {
		t.Fatal(err)
	}
	if err := b.l.Validate(); err != nil {
		t.Fatal(err)
	}
	return b.l
}

// roomLevel is one 512x512 sector, floor 0 and ceiling 128, centred on the origin
func roomLevel(t *testing.T) *level.Level {
	b := newBuilder()
	s := b.sector(0, 128)
	v0 := b.vertex(-256, -256)
	v1 := b.vertex(-256, 256)
	v2 := b.vertex(256, 256)
	v3 := b.vertex(256, -256)
	for _, ln := range []int{b.wall(v0, v1, s), b.wall(v1, v2, s), b.wall(v2, v3, s), b.wall(v3, v0, s)} {
		b.seg(ln, false)
	}
	b.subsector()
	return b.build(t)
}

// twoRoomLevel is two 256x512 rooms either side of x=0. The west room (sector 0) has floor 0,
// the east room (sector 1) the given floor. The line between them carries mid as its west side
// mid texture.
func twoRoomLevel(t *testing.T, eastFloor float64, mid level.TextureNum, flags level.LineFlags) *level.Level {
	b := newBuilder()
	west := b.sector(0, 128)
	east := b.sector(eastFloor, 128)

	v0 := b.vertex(-256, -256)
	v1 := b.vertex(0, -256)
	v2 := b.vertex(0, 256)
	v3 := b.vertex(-256, 256)
	v4 := b.vertex(256, -256)
	v5 := b.vertex(256, 256)

	shared := b.portal(v2, v1, west, east, mid, flags)

	// West leaf
	b.seg(b.wall(v0, v3, west), false)
	b.seg(b.wall(v3, v2, west), false)
	b.seg(b.wall(v1, v0, west), false)
	b.seg(shared, false)
	b.subsector()

	// East leaf
	b.seg(shared, true)
	b.seg(b.wall(v4, v1, east), false)
	b.seg(b.wall(v5, v4, east), false)
	b.seg(b.wall(v2, v5, east), false)
	b.subsector()

	// Partition along x=0 pointing north: east is in front
	b.l.Nodes = []level.Node{{
		X: 0, Y: 0, DX: 0, DY: 256,
		BBox: [2]level.BoundBox{
			{Top: 256, Bottom: -256, Left: 0, Right: 256},
			{Top: 256, Bottom: -256, Left: -256, Right: 0},
		},
		Children: [2]int{1 | level.LeafFlag, 0 | level.LeafFlag},
	}}
	return b.build(t)
}

// closetLevel is a 512x512 room, floor 0 and ceiling 128, open to the void on its east side. A
// separate 200x100 closet (sector 1) lies north of the room's north wall, which is left out when
// northWall is false.
func closetLevel(t *testing.T, northWall bool) *level.Level {
	b := newBuilder()
	room := b.sector(0, 128)
	closet := b.sector(0, 128)

	v0 := b.vertex(-256, -256)
	v1 := b.vertex(-256, 256)
	v2 := b.vertex(256, 256)
	v3 := b.vertex(256, -256)
	b.seg(b.wall(v0, v1, room), false)
	if northWall {
		b.seg(b.wall(v1, v2, room), false)
	}
	b.seg(b.wall(v3, v0, room), false)
	b.subsector()

	c0 := b.vertex(-100, 300)
	c1 := b.vertex(100, 300)
	c2 := b.vertex(100, 400)
	c3 := b.vertex(-100, 400)
	for _, ln := range []int{b.wall(c0, c3, closet), b.wall(c3, c2, closet), b.wall(c2, c1, closet), b.wall(c1, c0, closet)} {
		b.seg(ln, false)
	}
	b.subsector()

	// Partition along y=256 pointing east: the room is in front
	b.l.Nodes = []level.Node{{
		X: -256, Y: 256, DX: 512, DY: 0,
		BBox: [2]level.BoundBox{
			{Top: 256, Bottom: -256, Left: -256, Right: 256},
			{Top: 400, Bottom: 300, Left: -100, Right: 100},
		},
		Children: [2]int{0 | level.LeafFlag, 1 | level.LeafFlag},
	}}
	return b.build(t)
}

func newTestRenderer(t *testing.T, lvl *level.Level, opts Options) (*Renderer, []uint32) {
	t.Helper()
	pixels := make([]uint32, testW*testH)
	r := New(lvl, newFakeMaterials(), opts)
	if err := r.Init(testW, testH, pixels); err != nil {
		t.Fatal(err)
	}
	return r, pixels
}

// colorAt returns the palette index drawn at (x, y), or -1 if the pixel was never written
func colorAt(pixels []uint32, x, y int) int {
	p := pixels[y*testW+x]
	if p>>24 == 0 {
		return -1
	}
	return int(p & 0xFF)
}
