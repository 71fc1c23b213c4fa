package render

import (
	"math"

	"github.com/stuarthighley/doomview/bam"
	"github.com/stuarthighley/doomview/gfx"
	"github.com/stuarthighley/doomview/level"
)

// renderSeg projects seg i and hands its visible columns to the clipper. Segs facing away, or
// entirely outside the 90 degree field of view, are skipped.
func (r *Renderer) renderSeg(i int) {
	lvl := r.lvl
	seg := &lvl.Segs[i]
	v1, v2 := lvl.Vertices[seg.V1], lvl.Vertices[seg.V2]

	a1 := bam.Atan2(float64(v1.Y)-r.view.Y, float64(v1.X)-r.view.X)
	a2 := bam.Atan2(float64(v2.Y)-r.view.Y, float64(v2.X)-r.view.X)
	r.unclippedA1 = a1

	theta := a1 - a2
	if theta >= bam.Ang180-1 {
		return
	}

	a1 -= r.view.Angle
	a2 -= r.view.Angle

	if a1 < bam.Ang315 && a1 > bam.Ang45 && a1-bam.Ang45 >= theta {
		return
	}
	if a2 > bam.Ang45 && a2 < bam.Ang315 && bam.Ang315-a2 >= theta {
		return
	}
	if a1 < bam.Ang315 && a1 > bam.Ang45 {
		a1 = bam.Ang45
	}
	if a2 > bam.Ang45 && a2 < bam.Ang315 {
		a2 = bam.Ang315
	}

	x1 := r.AngleToX(a1)
	x2 := r.AngleToX(a2) - 1 // Adjoining segs share no column
	if x1 > x2 {
		return
	}

	r.curSeg = i
	front := &lvl.Sectors[lvl.Sides[seg.Front].Sector]
	if seg.Back == level.NoSide {
		r.clip.clipAndAdd(x1, x2, r.rangeFn)
		return
	}
	back := &lvl.Sectors[lvl.Sides[seg.Back].Sector]
	if closed(front, back) {
		r.clip.clipAndAdd(x1, x2, r.rangeFn)
		return
	}

	// Nothing changes across the line
	if lvl.Sides[seg.Front].Middle == level.NoTexture && front.SameSurface(back) {
		return
	}

	r.clip.clipOnly(x1, x2, r.rangeFn)
}

// closed reports whether a two-sided wall leaves no gap to see through
func closed(front, back *level.Sector) bool {
	return back.CeilingHeight <= front.FloorHeight || back.FloorHeight >= front.CeilingHeight
}

// segRange rasterizes columns [x1, x2] of the current seg. It draws the solid parts of the wall,
// narrows the column clips, marks floor and ceiling visplanes, and records draw segs for later
// sprite and masked texture clipping.
func (r *Renderer) segRange(x1, x2 int) {
	lvl := r.lvl
	seg := &lvl.Segs[r.curSeg]
	line := &lvl.Lines[seg.Line]
	side := &lvl.Sides[seg.Front]
	front := &lvl.Sectors[side.Sector]
	var back *level.Sector
	if seg.Back != level.NoSide {
		back = &lvl.Sectors[lvl.Sides[seg.Back].Sector]
	}
	v1, v2 := lvl.Vertices[seg.V1], lvl.Vertices[seg.V2]
	view := r.view

	a1 := r.XToAngle(x1) + view.Angle
	a2 := r.XToAngle(x2) + view.Angle

	// Perpendicular distance from the viewer to the seg's line
	normal := seg.Angle + bam.Ang90
	dist := math.Hypot(float64(v1.X)-view.X, float64(v1.Y)-view.Y) * (r.unclippedA1 - normal).Cos()

	scale1 := r.wallScale(a1, normal, dist)
	scale2 := r.wallScale(a2, normal, dist)
	scaleStep := 0.0
	if x2 > x1 {
		scaleStep = (scale2 - scale1) / float64(x2-x1)
	}

	worldTop, worldBottom := front.CeilingHeight, front.FloorHeight
	portalTop, portalBottom := worldTop, worldBottom
	if back != nil {
		portalTop = min(portalTop, back.CeilingHeight)
		portalBottom = max(portalBottom, back.FloorHeight)

		// No upper wall between two skies
		if r.isSky(front.CeilingFlat) && r.isSky(back.CeilingFlat) {
			worldTop = portalTop
		}
	}
	drawTop := worldTop > portalTop
	drawBottom := worldBottom < portalBottom
	solid := back == nil || closed(front, back)

	mid := r.mat.Texture(side.Middle)
	var upper, lower *gfx.Texture
	if drawTop {
		upper = r.mat.Texture(side.Upper)
	}
	if drawBottom {
		lower = r.mat.Texture(side.Lower)
	}

	top := -(worldTop-view.Z)*scale1 + r.halfy
	topStep := -(worldTop - view.Z) * scaleStep
	height := (worldTop - worldBottom) * scale1
	hStep := (worldTop - worldBottom) * scaleStep

	var tSil, tSilStep, bSil, bSilStep float64
	if drawTop {
		tSil = (worldTop - portalTop) * scale1
		tSilStep = (worldTop - portalTop) * scaleStep
	}
	if drawBottom {
		bSil = (portalBottom - worldBottom) * scale1
		bSilStep = (portalBottom - worldBottom) * scaleStep
	}

	planeLight := sectorLight(front)
	light := wallLight(front, v1, v2)

	drawCeil := front.CeilingHeight > view.Z || r.isSky(front.CeilingFlat)
	if back != nil &&
		back.CeilingHeight == front.CeilingHeight &&
		back.CeilingFlat == front.CeilingFlat &&
		back.FloorHeight < back.CeilingHeight &&
		back.LightLevel == front.LightLevel {
		drawCeil = false
	}
	drawFloor := front.FloorHeight < view.Z
	if back != nil &&
		back.FloorHeight == front.FloorHeight &&
		back.FloorFlat == front.FloorFlat &&
		back.CeilingHeight > back.FloorHeight &&
		back.LightLevel == front.LightLevel {
		drawFloor = false
	}

	var ceilPlane, floorPlane *visplane
	if drawCeil {
		if p := r.findPlane(front.CeilingHeight-view.Z, front.CeilingFlat, planeLight); p != nil {
			ceilPlane = r.splitPlane(p, x1, x2)
		}
	}
	if drawFloor {
		if p := r.findPlane(front.FloorHeight-view.Z, front.FloorFlat, planeLight); p != nil {
			floorPlane = r.splitPlane(p, x1, x2)
		}
	}

	var masked *drawSeg
	if back != nil && mid != nil && !solid {
		masked = r.addMasked(x1, x2, scale1, scale2, scaleStep)
	}

	sBase := side.XOffset + seg.Offset
	tanA1 := (r.unclippedA1 - normal).Tan()
	drewTop, drewBottom := false, false

	scale := scale1
	for x := x1; x <= x2; x++ {
		tStep := 1 / scale
		s := sBase + dist*(tanA1-(r.XToAngle(x)+view.Angle-normal).Tan())
		texCol := int(math.Floor(s))
		cmap := r.scaleLight[light][r.scaleBand(scale)]

		if ceilPlane != nil {
			plTop := r.topClip[x] + 1
			plBot := int(math.Floor(top))
			if plBot >= r.bottomClip[x] {
				plBot = r.bottomClip[x] - 1
			}
			if plTop <= plBot {
				ceilPlane.tops[x] = clamp(plTop, 0, r.height-1)
				ceilPlane.bottoms[x] = clamp(plBot, 0, r.height-1)
			} else {
				ceilPlane.setEmpty(x)
			}
		}

		if floorPlane != nil {
			plTop := int(math.Floor(top+height)) + 1
			plBot := r.bottomClip[x] - 1
			if plTop <= r.topClip[x] {
				plTop = r.topClip[x] + 1
			}
			if plTop <= plBot {
				floorPlane.tops[x] = clamp(plTop, 0, r.height-1)
				floorPlane.bottoms[x] = clamp(plBot, 0, r.height-1)
			} else {
				floorPlane.setEmpty(x)
			}
		}

		// Mid section, between the portal edges
		if portalTop > portalBottom {
			fTop := top + tSil
			fBottom := top + height - bSil
			pxTop, pxBottom := r.clipRows(x, int(math.Floor(fTop+1)), int(math.Floor(fBottom)))

			if !drawTop {
				if drawCeil {
					r.topClip[x] = pxTop - 1
				}
				drewTop = back != nil
			}
			if !drawBottom {
				if drawFloor {
					r.bottomClip[x] = pxBottom + 1
				}
				drewBottom = back != nil
			}

			if back == nil {
				r.topClip[x] = r.height
				r.bottomClip[x] = -1

				if pxTop <= pxBottom && mid != nil {
					tTop := side.YOffset
					if line.Flags.Has(level.LowerUnpegged) {
						tTop = float64(mid.Height) - (portalTop - portalBottom) + side.YOffset
					}
					t := tStep*(float64(pxTop)-fTop) + tTop
					r.drawColumn(mid.Column(texCol), cmap, x, pxTop, pxBottom, t, tStep)
				}
			} else if pxTop <= pxBottom && masked != nil {
				masked.masked[x-x1] = texCol
			}
		}

		if drawTop {
			fTop := top
			fBottom := top + tSil
			tSil += tSilStep
			pxTop, pxBottom := r.clipRows(x, int(math.Floor(fTop+1)), int(math.Floor(fBottom)))

			if pxBottom > r.topClip[x] {
				r.topClip[x] = pxBottom
				drewTop = true
			}

			if pxTop <= pxBottom && upper != nil {
				tTop := float64(upper.Height) - (worldTop - portalTop) + side.YOffset
				if line.Flags.Has(level.UpperUnpegged) {
					tTop = side.YOffset
				}
				t := tStep*(float64(pxTop)-fTop) + tTop
				r.drawColumn(upper.Column(texCol), cmap, x, pxTop, pxBottom, t, tStep)
			}
		}

		if drawBottom {
			fTop := top + height - bSil
			fBottom := top + height
			bSil += bSilStep
			pxTop, pxBottom := r.clipRows(x, int(math.Floor(fTop+1)), int(math.Floor(fBottom)))

			if pxTop < r.bottomClip[x] {
				r.bottomClip[x] = pxTop
				drewBottom = true
			}

			if pxTop <= pxBottom && lower != nil {
				tTop := side.YOffset
				if line.Flags.Has(level.LowerUnpegged) {
					tTop = worldTop - portalBottom + side.YOffset
				}
				t := tStep*(float64(pxTop)-fTop) + tTop
				r.drawColumn(lower.Column(texCol), cmap, x, pxTop, pxBottom, t, tStep)
			}
		}

		top += topStep
		height += hStep
		scale += scaleStep
	}

	if solid {
		r.addDrawSeg(x1, x2, scale1, scale2, scaleStep)
		return
	}
	if drewTop {
		r.addSilhouette(x1, x2, scale1, scale2, scaleStep, r.topClip, true)
	}
	if drewBottom {
		r.addSilhouette(x1, x2, scale1, scale2, scaleStep, r.bottomClip, false)
	}
	if masked != nil {
		copy(masked.top, r.topClip[x1:x2+1])
		copy(masked.bottom, r.bottomClip[x1:x2+1])
	}
}

// clipRows limits rows [y1, y2] of column x to those not yet occluded
func (r *Renderer) clipRows(x, y1, y2 int) (int, int) {
	if y1 <= r.topClip[x] {
		y1 = r.topClip[x] + 1
	}
	if y2 >= r.bottomClip[x] {
		y2 = r.bottomClip[x] - 1
	}
	return y1, y2
}

// drawColumn draws rows [y1, y2] of screen column x from a texture column, starting at texture
// row t and stepping tStep per row. Texture rows wrap.
func (r *Renderer) drawColumn(col gfx.Column, cmap *gfx.ColorMap, x, y1, y2 int, t, tStep float64) {
	h := len(col)
	dst := y1*r.width + x
	for y := y1; y <= y2; y++ {
		r.pixels[dst] = r.palette[cmap[col[gfx.Wrap(int(math.Floor(t)), h)]]]
		t += tStep
		dst += r.width
	}
}
