package wad

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"strings"

	"github.com/stuarthighley/doomview/gfx"
)

type binPatchImageHeader struct {
	Width, Height, LeftOffset, TopOffset int16
}

// GetPicture reads a picture lump, expanding its posts into full height columns with holes set
// to the transparent index. Pictures are cached by name.
func (w *WAD) GetPicture(name string) (*gfx.Picture, error) {
	name = strings.ToUpper(name)

	// If cache hit, return it
	if p, ok := w.pictures[name]; ok {
		return p, nil
	}

	lumpNum, ok := w.lumpNums[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrLumpNotFound, name)
	}
	pic, err := w.readPicture(lumpNum)
	if err != nil {
		return nil, err
	}
	w.pictures[name] = pic
	return pic, nil
}

// readPicture decodes picture lump i
func (w *WAD) readPicture(i int) (*gfx.Picture, error) {
	lump, err := w.ReadLump(i)
	if err != nil {
		return nil, err
	}
	name := w.lumpInfos[i].Name

	// Read patch lump header
	reader := bytes.NewReader(lump)
	var header binPatchImageHeader
	if err := binary.Read(reader, binary.LittleEndian, &header); err != nil {
		return nil, fmt.Errorf("%w: %s header", ErrBadPicture, name)
	}
	if header.Width <= 0 || header.Height <= 0 {
		return nil, fmt.Errorf("%w: %s is %dx%d", ErrBadPicture, name, header.Width, header.Height)
	}

	// Initialise rectangular picture space to transparent
	pic := gfx.NewPicture(name, int(header.Width), int(header.Height), w.TransparentIndex)
	pic.LeftOffset = int(header.LeftOffset)
	pic.TopOffset = int(header.TopOffset)

	// Read column offsets
	offsets := make([]int32, header.Width)
	if err := binary.Read(reader, binary.LittleEndian, offsets); err != nil {
		return nil, fmt.Errorf("%w: %s column offsets", ErrBadPicture, name)
	}

	// For each column offset, expand out the posts into columns
	for columnIndex, offset := range offsets {
		column := pic.Columns[columnIndex]
		pos := int(offset)
		for {
			if pos < 0 || pos >= len(lump) {
				return nil, fmt.Errorf("%w: %s column %d runs off the lump", ErrBadPicture, name, columnIndex)
			}
			topDelta := int(lump[pos])
			if topDelta == 255 {
				break
			}
			if pos+1 >= len(lump) {
				return nil, fmt.Errorf("%w: %s column %d runs off the lump", ErrBadPicture, name, columnIndex)
			}
			numPixels := int(lump[pos+1])
			pixels := pos + 3 // Skip padding
			if pixels+numPixels > len(lump) {
				return nil, fmt.Errorf("%w: %s column %d runs off the lump", ErrBadPicture, name, columnIndex)
			}
			// Posts running past the bottom are cut off
			if topDelta < len(column) {
				copy(column[topDelta:], lump[pixels:pixels+numPixels])
			}
			pos = pixels + numPixels + 1 // Padding
		}
	}
	return pic, nil
}
