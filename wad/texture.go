package wad

import (
	"encoding/binary"
	"fmt"
	"io"
	"strings"

	"github.com/stuarthighley/doomview/gfx"
	"github.com/stuarthighley/doomview/level"
)

type binTextureHeader struct {
	TextureName String8
	Masked      int32
	Width       int16
	Height      int16
	Unused      int32 // ColumnDirectory
	NumPatches  int16
}

type binPatch struct {
	XOffset      int16
	YOffset      int16
	PatchNameIdx int16
	Unused1      int16 // StepDir
	Unused2      int16 // ColorMap
}

// textureDef is a wall texture as listed in TEXTUREn, before its patches are stitched
type textureDef struct {
	name          string
	masked        bool
	width, height int
	patches       []patchDef
}

type patchDef struct {
	xOffset int // horizontal offset of patch relative to upper-left of texture
	yOffset int // vertical offset of patch relative to upper-left of texture
	name    string
}

// readPatchNames reads the PNAMES lump to populate a slice of patch names
func (w *WAD) readPatchNames() error {
	logger.Printf("Loading patch names ...")
	i, ok := w.lumpNums["PNAMES"]
	if !ok {
		logger.Printf("No PNAMES lump")
		return nil
	}
	r := w.lumpReader(i)

	// Read PNAMES header
	var count uint32
	if err := binary.Read(r, binary.LittleEndian, &count); err != nil {
		return fmt.Errorf("PNAMES: %w", err)
	}
	if int64(count)*8 > r.Size()-4 {
		return fmt.Errorf("PNAMES: %w: %d names", ErrTruncated, count)
	}

	// Read and translate PNAMES body
	pnames := make([]String8, count)
	if err := binary.Read(r, binary.LittleEndian, pnames); err != nil {
		return fmt.Errorf("PNAMES: %w", err)
	}
	w.patchNames = make([]string, count)
	for i, p := range pnames {
		w.patchNames[i] = strings.ToUpper(p.String()) // ToUpper required for "w94_1" patch
	}
	return nil
}

// readTextureDefs reads the texture lists in TEXTURE1 and TEXTURE2. Textures are numbered in
// the order listed.
func (w *WAD) readTextureDefs() error {
	logger.Println("Loading textures ...")
	w.textureNums = make(map[string]level.TextureNum)

	for i := 1; i < 10; i++ {
		name := fmt.Sprintf("TEXTURE%v", i)
		lumpNum, ok := w.lumpNums[name]
		if !ok {
			continue
		}
		logger.Printf("Loading %v ...", name)
		if err := w.readTextureLump(lumpNum); err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
	}
	w.textures = make([]*gfx.Texture, len(w.textureDefs))
	logger.Printf("Loaded %v textures", len(w.textureDefs))
	return nil
}

func (w *WAD) readTextureLump(lumpNum int) error {
	r := w.lumpReader(lumpNum)

	// Read header
	var count uint32
	if err := binary.Read(r, binary.LittleEndian, &count); err != nil {
		return err
	}
	if int64(count)*4 > r.Size()-4 {
		return fmt.Errorf("%w: %d textures", ErrTruncated, count)
	}

	// Read offsets
	offsets := make([]int32, count)
	if err := binary.Read(r, binary.LittleEndian, offsets); err != nil {
		return err
	}

	// For each offset...
	for _, offset := range offsets {
		if _, err := r.Seek(int64(offset), io.SeekStart); err != nil {
			return err
		}

		// Read header
		var header binTextureHeader
		if err := binary.Read(r, binary.LittleEndian, &header); err != nil {
			return err
		}
		def := textureDef{
			name:   strings.ToUpper(header.TextureName.String()),
			masked: header.Masked != 0,
			width:  int(header.Width),
			height: int(header.Height),
		}
		if def.width <= 0 || def.height <= 0 || header.NumPatches < 0 {
			logger.Printf("Skipping texture %v: %vx%v", def.name, def.width, def.height)
			continue
		}

		// Add patches to texture
		binPatches := make([]binPatch, header.NumPatches)
		if err := binary.Read(r, binary.LittleEndian, binPatches); err != nil {
			return err
		}
		for _, p := range binPatches {
			if p.PatchNameIdx < 0 || int(p.PatchNameIdx) >= len(w.patchNames) {
				logger.Printf("Texture %v: bad patch number %v", def.name, p.PatchNameIdx)
				continue
			}
			def.patches = append(def.patches, patchDef{
				xOffset: int(p.XOffset),
				yOffset: int(p.YOffset),
				name:    w.patchNames[p.PatchNameIdx],
			})
		}

		// The first definition of a name wins
		if _, ok := w.textureNums[def.name]; !ok {
			w.textureNums[def.name] = level.TextureNum(len(w.textureDefs))
		}
		w.textureDefs = append(w.textureDefs, def)
	}
	return nil
}

// TextureNum returns the number of the named wall texture. The name "-" and unknown names give
// level.NoTexture.
func (w *WAD) TextureNum(name string) level.TextureNum {
	if n, ok := w.textureNums[strings.ToUpper(name)]; ok {
		return n
	}
	return level.NoTexture
}

// TextureNames returns the wall texture names in number order
func (w *WAD) TextureNames() []string {
	names := make([]string, len(w.textureDefs))
	for i, def := range w.textureDefs {
		names[i] = def.name
	}
	return names
}

// Texture returns wall texture n, stitching its patches into one picture on first use. It
// returns nil for level.NoTexture or an unknown number.
func (w *WAD) Texture(n level.TextureNum) *gfx.Texture {
	if n < 0 || int(n) >= len(w.textures) {
		return nil
	}
	if t := w.textures[n]; t != nil {
		return t
	}

	def := &w.textureDefs[n]
	texture := &gfx.Texture{
		Name:    def.name,
		Width:   def.width,
		Height:  def.height,
		Masked:  def.masked,
		Picture: gfx.NewPicture(def.name, def.width, def.height, w.TransparentIndex),
	}

	// Expand out patches to create composite Picture
	for _, p := range def.patches {
		pic, err := w.GetPicture(p.name)
		if err != nil {
			logger.Printf("Texture %v: %v", def.name, err)
			continue
		}
		texture.Picture.Blit(pic, p.xOffset, p.yOffset)
	}
	w.textures[n] = texture
	return texture
}

// indexFlats numbers the flat lumps between F_START and F_END. Their data is read on first use.
func (w *WAD) indexFlats() error {
	logger.Println("Loading flats ...")
	w.flatNums = make(map[string]level.FlatNum)

	startLump, ok := w.lumpNums["F_START"]
	if !ok {
		return fmt.Errorf("%w: F_START", ErrLumpNotFound)
	}
	endLump, ok := w.lumpNums["F_END"]
	if !ok {
		return fmt.Errorf("%w: F_END", ErrLumpNotFound)
	}

	// For each flat lump
	for i := startLump + 1; i < endLump; i++ {
		lumpInfo := w.lumpInfos[i]

		// Skip marker lumps
		if lumpInfo.Size == 0 {
			continue
		}
		w.flatNums[lumpInfo.Name] = level.FlatNum(len(w.flatLumps))
		w.flatLumps = append(w.flatLumps, i)
	}
	w.flats = make([]*gfx.Flat, len(w.flatLumps))
	logger.Printf("Loaded %v flats", len(w.flatLumps))
	return nil
}

// FlatNum returns the number of the named flat, or level.NoFlat if there is none
func (w *WAD) FlatNum(name string) level.FlatNum {
	if n, ok := w.flatNums[strings.ToUpper(name)]; ok {
		return n
	}
	return level.NoFlat
}

// FlatNames returns the flat names in number order
func (w *WAD) FlatNames() []string {
	names := make([]string, len(w.flatLumps))
	for i, lump := range w.flatLumps {
		names[i] = w.lumpInfos[lump].Name
	}
	return names
}

// Flat returns flat n, reading it on first use. It returns nil for an unknown number or a lump
// too short to hold a flat.
func (w *WAD) Flat(n level.FlatNum) *gfx.Flat {
	if n < 0 || int(n) >= len(w.flats) {
		return nil
	}
	if f := w.flats[n]; f != nil {
		return f
	}

	lump := w.flatLumps[n]
	data, err := w.ReadLump(lump)
	if err == nil && len(data) < gfx.FlatWidth*gfx.FlatHeight {
		err = fmt.Errorf("%s: %w", w.lumpInfos[lump].Name, ErrTruncated)
	}
	if err != nil {
		logger.Printf("Flat %v: %v", n, err)
		return nil
	}
	flat := &gfx.Flat{Name: w.lumpInfos[lump].Name, Data: data[:gfx.FlatWidth*gfx.FlatHeight]}
	w.flats[n] = flat
	return flat
}
