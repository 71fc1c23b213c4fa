package main

import (
	"fmt"
	"image"
	"image/color"
	"image/png"
	"os"

	"github.com/stuarthighley/doomview/gfx"
	"github.com/stuarthighley/doomview/level"
	"github.com/stuarthighley/doomview/wad"
)

// graphicImage finds a texture, flat or picture lump by name, in that order
func graphicImage(w *wad.WAD, name string) (image.Image, error) {
	pal := w.Palette()
	if n := w.TextureNum(name); n != level.NoTexture {
		return pictureImage(w.Texture(n).Picture, pal), nil
	}
	if n := w.FlatNum(name); n != level.NoFlat {
		if f := w.Flat(n); f != nil {
			return flatImage(f, pal), nil
		}
	}
	pic, err := w.GetPicture(name)
	if err != nil {
		return nil, fmt.Errorf("%s is not a texture, flat or picture: %w", name, err)
	}
	return pictureImage(pic, pal), nil
}

// pictureImage converts a picture, leaving its transparent pixels clear
func pictureImage(p *gfx.Picture, pal *gfx.Palette) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, p.Width, p.Height))

	// Set color for each pixel.
	for x := range p.Columns {
		for y, b := range p.Columns[x] {
			if b != p.Transparent {
				c := pal[b]
				img.SetRGBA(x, y, color.RGBA{c.Red, c.Green, c.Blue, 0xff})
			}
		}
	}
	return img
}

func flatImage(f *gfx.Flat, pal *gfx.Palette) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, gfx.FlatWidth, gfx.FlatHeight))

	// Set color for each pixel.
	for i, b := range f.Data {
		c := pal[b]
		img.SetRGBA(i%gfx.FlatWidth, i/gfx.FlatWidth, color.RGBA{c.Red, c.Green, c.Blue, 0xff})
	}
	return img
}

// frameImage converts a rendered 0xAARRGGBB frame. Pixels the renderer never wrote stay clear.
func frameImage(pixels []uint32, w, h int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for i, p := range pixels[:w*h] {
		img.SetRGBA(i%w, i/w, color.RGBA{byte(p >> 16), byte(p >> 8), byte(p), byte(p >> 24)})
	}
	return img
}

func writePNG(path string, img image.Image) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := png.Encode(f, img); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
