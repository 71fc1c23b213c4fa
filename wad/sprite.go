package wad

import "github.com/stuarthighley/doomview/gfx"

// Sprites are pictures with a special naming convention so they can be recognized at start up.
// The base name is NNNNFx or NNNNFxFx, with x indicating the rotation, x = 0, 1-8.
// A sprite is a picture that is assumed to represent a 3D object and may have multiple
// rotations pre drawn.
// Horizontal flipping is used to save space, thus NNNNF2F8 defines a mirrored picture.
// Some sprites will only have one picture used for all views: NNNNF0
type spriteDef struct {
	name   string
	frames []frameDef
}

// frameDef lists the lumps of one frame, by rotation
type frameDef struct {
	rotational bool
	lumps      [8]int // -1 for none
	flipped    [8]bool
}

func newFrameDef() frameDef {
	f := frameDef{}
	for i := range f.lumps {
		f.lumps[i] = -1
	}
	return f
}

// indexSprites records which lump holds each frame and rotation of every sprite between S_START
// and S_END. Pictures are read on first use.
func (w *WAD) indexSprites() {
	logger.Println("Loading sprites ...")
	w.spriteNums = make(map[string]int)

	// Find start and end lumps
	startLump, ok := w.lumpNums["S_START"]
	if !ok {
		logger.Println("S_START not found")
		return
	}
	endLump, ok := w.lumpNums["S_END"]
	if !ok {
		logger.Println("S_END not found")
		return
	}

	// For each sprite picture lump
	for i := startLump + 1; i < endLump; i++ {
		lumpInfo := w.lumpInfos[i]

		// Skip marker lumps
		if lumpInfo.Size == 0 {
			continue
		}
		name := lumpInfo.Name
		if len(name) != 6 && len(name) != 8 {
			logger.Println("ERR: Bad sprite name:", name)
			continue
		}

		s := w.spriteDef(name[:4])
		if !s.install(name[4], name[5], i, false) {
			logger.Println("ERR: Bad sprite frame:", name)
			continue
		}
		if len(name) == 8 && !s.install(name[6], name[7], i, true) {
			logger.Println("ERR: Bad flipped sprite frame:", name)
		}
	}
	logger.Printf("Loaded %v sprites", len(w.spriteDefs))
}

// spriteDef returns the named sprite's definition, adding it if new
func (w *WAD) spriteDef(name string) *spriteDef {
	n, ok := w.spriteNums[name]
	if !ok {
		n = len(w.spriteDefs)
		w.spriteNums[name] = n
		w.spriteDefs = append(w.spriteDefs, spriteDef{name: name})
	}
	return &w.spriteDefs[n]
}

// install records lump as frame letter f seen from rotation digit r. Rotation 0 is used for all
// directions.
func (s *spriteDef) install(f, r byte, lump int, flipped bool) bool {
	frame := int(f) - 'A'
	if frame < 0 || frame >= 29 || r < '0' || r > '8' {
		return false
	}
	for len(s.frames) <= frame {
		s.frames = append(s.frames, newFrameDef())
	}
	fd := &s.frames[frame]

	if r == '0' {
		if flipped {
			return false
		}
		fd.rotational = false
		for i := range fd.lumps {
			fd.lumps[i] = lump
			fd.flipped[i] = false
		}
		return true
	}
	rotation := int(r - '1')
	fd.rotational = true
	fd.lumps[rotation] = lump
	fd.flipped[rotation] = flipped
	return true
}

// SpriteNum returns the number of the named sprite, or -1 if there is none
func (w *WAD) SpriteNum(name string) int {
	if n, ok := w.spriteNums[name]; ok {
		return n
	}
	return -1
}

// SpriteNames returns the sprite names in number order
func (w *WAD) SpriteNames() []string {
	names := make([]string, len(w.spriteDefs))
	for i, s := range w.spriteDefs {
		names[i] = s.name
	}
	return names
}

// NumFrames returns how many frames sprite has
func (w *WAD) NumFrames(sprite int) int {
	if sprite < 0 || sprite >= len(w.spriteDefs) {
		return 0
	}
	return len(w.spriteDefs[sprite].frames)
}

// SpriteFrame returns a frame of a sprite with its pictures read, or nil if the sprite has no
// such frame.
func (w *WAD) SpriteFrame(sprite, frame int) *gfx.SpriteFrame {
	key := [2]int{sprite, frame}
	if sf, ok := w.spriteFrames[key]; ok {
		return sf
	}
	if sprite < 0 || sprite >= len(w.spriteDefs) || frame < 0 || frame >= len(w.spriteDefs[sprite].frames) {
		return nil
	}

	fd := &w.spriteDefs[sprite].frames[frame]
	sf := &gfx.SpriteFrame{Rotational: fd.rotational}
	for rot, lump := range fd.lumps {
		if lump < 0 {
			continue
		}
		pic, err := w.GetPicture(w.lumpInfos[lump].Name)
		if err != nil {
			logger.Printf("Sprite %v frame %c: %v", w.spriteDefs[sprite].name, 'A'+frame, err)
			continue
		}
		sf.Rotations[rot] = gfx.SpriteRotation{Picture: pic, IsFlipped: fd.flipped[rot]}
	}
	w.spriteFrames[key] = sf
	return sf
}
