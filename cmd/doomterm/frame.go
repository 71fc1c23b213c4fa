package main

import (
	"image"

	"golang.org/x/image/draw"
)

// toImage copies a row major 0xAARRGGBB frame into img, which must be w x h
func toImage(pixels []uint32, w, h int, img *image.RGBA) {
	for y := range h {
		row := img.Pix[y*img.Stride : y*img.Stride+w*4]
		for x := range w {
			p := pixels[y*w+x]
			row[x*4] = byte(p >> 16)
			row[x*4+1] = byte(p >> 8)
			row[x*4+2] = byte(p)
			row[x*4+3] = 0xFF
		}
	}
}

// scaleTo resamples src to fill dst
func scaleTo(dst, src *image.RGBA) {
	draw.ApproxBiLinear.Scale(dst, dst.Bounds(), src, src.Bounds(), draw.Src, nil)
}
