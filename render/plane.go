package render

import (
	"math"

	"github.com/stuarthighley/doomview/bam"
	"github.com/stuarthighley/doomview/gfx"
)

// Sky texels per 90 degrees of view angle
const skyWidth = 256

func (r *Renderer) drawPlanes() {
	planes := r.planes.active()
	for i := range planes {
		r.drawPlane(&planes[i])
	}
}

// drawPlane fills a visplane with horizontal spans. A span starts where a row enters the plane
// and is flushed where it leaves, so adjacent columns sharing rows draw as one span.
func (r *Renderer) drawPlane(p *visplane) {
	if p.x1 < 0 {
		return
	}
	if r.isSky(p.flat) {
		r.drawSky(p)
		return
	}
	flat := r.mat.Flat(p.flat)
	if flat == nil {
		return
	}

	x := p.x1
	for x <= p.x2 && p.empty(x) {
		x++
	}
	if x > p.x2 {
		return
	}
	for y := p.tops[x]; y <= p.bottoms[x]; y++ {
		r.spanStart[y] = x
	}

	for x++; x <= p.x2; x++ {
		if p.empty(x) {
			if !p.empty(x - 1) {
				for y := p.tops[x-1]; y <= p.bottoms[x-1]; y++ {
					r.drawSpan(p, flat, y, r.spanStart[y], x-1)
				}
			}
			continue
		}

		if p.empty(x - 1) {
			for y := p.tops[x]; y <= p.bottoms[x]; y++ {
				r.spanStart[y] = x
			}
			continue
		}

		if p.tops[x] > p.tops[x-1] {
			for y := p.tops[x-1]; y <= min(p.tops[x]-1, p.bottoms[x-1]); y++ {
				r.drawSpan(p, flat, y, r.spanStart[y], x-1)
			}
		} else if p.tops[x] < p.tops[x-1] {
			for y := p.tops[x]; y <= min(p.tops[x-1]-1, p.bottoms[x]); y++ {
				r.spanStart[y] = x
			}
		}

		if p.bottoms[x] < p.bottoms[x-1] {
			for y := max(p.bottoms[x]+1, p.tops[x-1]); y <= p.bottoms[x-1]; y++ {
				r.drawSpan(p, flat, y, r.spanStart[y], x-1)
			}
		} else if p.bottoms[x] > p.bottoms[x-1] {
			for y := p.bottoms[x-1] + 1; y <= p.bottoms[x]; y++ {
				r.spanStart[y] = x
			}
		}
	}

	if !p.empty(x - 1) {
		for y := p.tops[x-1]; y <= p.bottoms[x-1]; y++ {
			r.drawSpan(p, flat, y, r.spanStart[y], x-1)
		}
	}
}

// drawSpan draws row y of a plane from column x1 to x2 inclusive
func (r *Renderer) drawSpan(p *visplane, flat *gfx.Flat, y, x1, x2 int) {
	tan := r.YToAngle(y).Tan()
	if tan == 0 {
		return
	}
	dist := p.z / tan
	if !(dist > 0) || math.IsInf(dist, 0) {
		return
	}
	cmap := r.zLight[p.light][zBand(dist)]

	view := r.view
	rel := r.XToAngle(x1)
	a1 := view.Angle + rel
	d := dist / rel.Cos()
	worldX := view.X + a1.Cos()*d
	worldY := view.Y + a1.Sin()*d

	step := dist / r.projection
	dx := view.Angle.Sin() * step
	dy := -view.Angle.Cos() * step

	dst := y*r.width + x1
	for x := x1; x <= x2; x++ {
		b := flat.At(int(math.Floor(worldX)), int(math.Floor(worldY)))
		r.pixels[dst] = r.palette[cmap[b]]
		worldX += dx
		worldY += dy
		dst++
	}
}

// drawSky fills a sky plane with columns of the sky texture chosen by view angle alone, at full
// brightness
func (r *Renderer) drawSky(p *visplane) {
	sky := r.mat.Texture(r.lvl.SkyTexture)
	if sky == nil {
		return
	}
	tStep := 320 / float64(r.height) / 2

	for x := p.x1; x <= p.x2; x++ {
		if p.empty(x) || p.tops[x] > p.bottoms[x] {
			continue
		}
		top := clamp(p.tops[x], 0, r.height-1)
		bottom := clamp(p.bottoms[x], 0, r.height-1)

		a := r.XToAngle(x) + r.view.Angle
		s := int(float64(a) / float64(bam.Ang90) * skyWidth)
		t := r.halfy + (float64(top)-r.halfy)*tStep
		r.drawColumn(sky.Column(s), r.brightMap, x, top, bottom, t, tStep)
	}
}
