// Package wad provides access to Doom's data archives also known as WAD files.
// The file format is documented in The Unofficial DOOM Specs:
// http://www.gamers.org/dhs/helpdocs/dmsp1666.html
//
// A WAD serves the graphics a renderer asks for by number, decoding and caching each texture,
// flat and sprite frame the first time it is used. A WAD is not safe for concurrent use.
package wad

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/exp/slices"

	"github.com/stuarthighley/doomview/gfx"
	"github.com/stuarthighley/doomview/level"
)

var (
	ErrBadMagic      = errors.New("wad: bad magic")
	ErrLumpNotFound  = errors.New("wad: lump not found")
	ErrLevelNotFound = errors.New("wad: level not found")
	ErrTruncated     = errors.New("wad: truncated lump")
	ErrBadPicture    = errors.New("wad: malformed picture")
)

// WAD is Doom's data archive that contains graphics, sounds, and level data. The data is
// organized as named lumps.
type WAD struct {
	r      io.ReaderAt
	closer io.Closer
	header Header

	lumpInfos []LumpInfo
	lumpNums  map[string]int
	levels    map[string]int

	palettes  Palettes
	colorMaps ColorMaps

	patchNames []string
	pictures   map[string]*gfx.Picture

	textureDefs []textureDef
	textureNums map[string]level.TextureNum
	textures    []*gfx.Texture

	flatLumps []int
	flatNums  map[string]level.FlatNum
	flats     []*gfx.Flat

	spriteDefs   []spriteDef
	spriteNums   map[string]int
	spriteFrames map[[2]int]*gfx.SpriteFrame

	TransparentIndex byte
}

type binHeader struct {
	Magic        [4]byte
	NumLumps     int32
	InfoTableOfs int32
}

type Header struct {
	Magic        string
	NumLumps     int
	InfoTableOfs int
}

type binLumpInfo struct {
	Filepos int32
	Size    int32
	Name    String8
}

type LumpInfo struct {
	Name    string
	Filepos int
	Size    int
}

// PLAYPAL lump. A set of color palettes used to set the main graphics colors. The Doom engine can
// only display 256 simultaneous colors, so it performs palette swaps to achieve these effects.
// The first palette is the normal one.
type Palettes [14]gfx.Palette

// The COLORMAP lump contains 34 color maps of indices into the PLAYPAL palette chosen at that time
// through which colors can be remapped for sector lighting, distance fading, and partial screen
// color changes (such as the invulnerability effect).
type ColorMaps [34]gfx.ColorMap

// WAD eight-character string type. Null-terminated for short strings.
type String8 [8]byte

// String converts String8 to string
func (s String8) String() string {
	i := bytes.IndexByte(s[:], 0)
	if i == -1 {
		i = len(s)
	}
	return string(s[0:i])
}

// Special lump names
const (
	SkyFlatName   = "F_SKY1"
	NoTextureName = "-"
)

// Open opens a WAD file. Close releases it.
func Open(filename string) (*WAD, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	w, err := NewWAD(file)
	if err != nil {
		file.Close()
		return nil, fmt.Errorf("%s: %w", filename, err)
	}
	w.closer = file
	return w, nil
}

// NewWAD reads the WAD directory and the palette, colormap and graphics indexes from r. Graphics
// themselves are read on first use, so r must stay readable for the life of the WAD.
func NewWAD(r io.ReaderAt) (*WAD, error) {
	logger.Println("Start reading WAD")
	w := &WAD{
		r:                r,
		pictures:         make(map[string]*gfx.Picture),
		spriteFrames:     make(map[[2]int]*gfx.SpriteFrame),
		TransparentIndex: 255,
	}

	// Read header
	var bh binHeader
	if err := binary.Read(io.NewSectionReader(r, 0, 12), binary.LittleEndian, &bh); err != nil {
		return nil, err
	}
	magic := string(bh.Magic[:])
	if magic != "IWAD" && magic != "PWAD" {
		return nil, fmt.Errorf("%w: %q", ErrBadMagic, magic)
	}
	w.header = Header{magic, int(bh.NumLumps), int(bh.InfoTableOfs)}

	if err := w.readInfoTables(); err != nil {
		return nil, err
	}
	if err := w.readLumpInto("PLAYPAL", &w.palettes); err != nil {
		return nil, err
	}
	if err := w.readLumpInto("COLORMAP", &w.colorMaps); err != nil {
		return nil, err
	}
	if err := w.readPatchNames(); err != nil {
		return nil, err
	}
	if err := w.readTextureDefs(); err != nil {
		return nil, err
	}
	if err := w.indexFlats(); err != nil {
		return nil, err
	}
	w.indexSprites()
	return w, nil
}

// Close closes the file opened by Open. It does nothing for a WAD made with NewWAD.
func (w *WAD) Close() error {
	if w.closer == nil {
		return nil
	}
	return w.closer.Close()
}

func (w *WAD) Header() Header {
	return w.header
}

func (w *WAD) readInfoTables() error {
	if w.header.NumLumps < 0 || w.header.InfoTableOfs < 0 {
		return fmt.Errorf("%w: directory of %d lumps at %d", ErrTruncated, w.header.NumLumps, w.header.InfoTableOfs)
	}
	binInfos := make([]binLumpInfo, w.header.NumLumps)
	dir := io.NewSectionReader(w.r, int64(w.header.InfoTableOfs), int64(w.header.NumLumps)*16)
	if err := binary.Read(dir, binary.LittleEndian, binInfos); err != nil {
		return fmt.Errorf("reading directory: %w", err)
	}

	w.lumpNums = make(map[string]int, len(binInfos))
	w.levels = make(map[string]int)
	w.lumpInfos = make([]LumpInfo, len(binInfos))
	for i, bi := range binInfos {
		info := LumpInfo{strings.ToUpper(bi.Name.String()), int(bi.Filepos), int(bi.Size)}
		if info.Name == "THINGS" && i > 0 {
			w.levels[w.lumpInfos[i-1].Name] = i - 1
		}
		// Later lumps override earlier ones, as with a PWAD loaded over an IWAD
		w.lumpNums[info.Name] = i
		w.lumpInfos[i] = info
	}
	logger.Printf("Read %v lumps, %v levels", len(w.lumpInfos), len(w.levels))
	return nil
}

// Lumps returns the lump directory in file order
func (w *WAD) Lumps() []LumpInfo {
	return w.lumpInfos
}

// LumpNum returns the index of the last lump called name
func (w *WAD) LumpNum(name string) (int, bool) {
	i, ok := w.lumpNums[strings.ToUpper(name)]
	return i, ok
}

// ReadLump reads the whole of lump i
func (w *WAD) ReadLump(i int) ([]byte, error) {
	info := w.lumpInfos[i]
	lump := make([]byte, info.Size)
	n, err := w.r.ReadAt(lump, int64(info.Filepos))
	if n == len(lump) {
		return lump, nil
	}
	if err == nil || err == io.EOF {
		err = ErrTruncated
	}
	return nil, fmt.Errorf("%s: %w", info.Name, err)
}

// lumpReader returns a reader over lump i
func (w *WAD) lumpReader(i int) *io.SectionReader {
	info := w.lumpInfos[i]
	return io.NewSectionReader(w.r, int64(info.Filepos), int64(info.Size))
}

// readLumpInto decodes the named lump into data with binary.Read
func (w *WAD) readLumpInto(name string, data any) error {
	logger.Printf("Loading %v ...", name)
	i, ok := w.lumpNums[name]
	if !ok {
		return fmt.Errorf("%w: %s", ErrLumpNotFound, name)
	}
	if err := binary.Read(w.lumpReader(i), binary.LittleEndian, data); err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}
	return nil
}

// Palette returns the normal palette
func (w *WAD) Palette() *gfx.Palette {
	return &w.palettes[0]
}

// Palettes returns every palette in PLAYPAL
func (w *WAD) Palettes() *Palettes {
	return &w.palettes
}

// ColorMaps returns all colormaps, the light-graded ones first
func (w *WAD) ColorMaps() []gfx.ColorMap {
	return w.colorMaps[:]
}

// LevelNames returns a slice of level names found in the WAD archive.
func (w *WAD) LevelNames() []string {
	result := make([]string, 0, len(w.levels))
	for name := range w.levels {
		result = append(result, name)
	}
	slices.Sort(result)
	return result
}
