package render

import (
	"cmp"
	"math"

	"golang.org/x/exp/slices"

	"github.com/stuarthighley/doomview/bam"
	"github.com/stuarthighley/doomview/gfx"
	"github.com/stuarthighley/doomview/level"
)

// A visThing is a mobj projected to the screen for this frame
type visThing struct {
	mobj  int
	x, y  int // Top left of the scaled picture
	w, h  int
	scale float64
	pic   *gfx.Picture
	flip  bool
	cmap  *gfx.ColorMap
}

// addSectorThings projects the mobjs of a sector, once per frame however many of its
// subsectors are drawn
func (r *Renderer) addSectorThings(sector *level.Sector) {
	if sector.RenderFrame == r.frame {
		return
	}
	sector.RenderFrame = r.frame

	for _, i := range sector.Mobjs {
		if i == r.view.Self {
			continue
		}
		vt, ok := r.projectThing(i)
		if !ok {
			continue
		}
		if len(r.things) == cap(r.things) {
			r.drop(overflowVisThings)
			continue
		}
		r.things = append(r.things, vt)
	}
}

// projectThing places mobj i on screen. It reports false if the mobj is behind the viewer,
// off screen, or has no picture for its frame and rotation.
func (r *Renderer) projectThing(i int) (visThing, bool) {
	m := &r.lvl.Mobjs[i]
	view := r.view
	sin, cos := view.Angle.Sin(), view.Angle.Cos()

	dx := m.X - view.X
	dy := m.Y - view.Y
	dz := m.Z - view.Z

	dist := dx*cos + dy*sin
	if dist < 1 {
		return visThing{}, false
	}
	vt := visThing{mobj: i, scale: r.projection / dist}
	centerX := r.halfx + (dx*sin-dy*cos)*vt.scale
	centerY := r.halfy - dz*vt.scale

	frame := r.mat.SpriteFrame(m.Sprite, m.Frame)
	if frame == nil {
		return visThing{}, false
	}
	rot := 0
	if frame.Rotational {
		theta := bam.Atan2(dy, dx) - m.Angle + bam.Ang45/2
		rot = int((theta + bam.Ang180) / bam.Ang45)
	}
	vt.pic = frame.Rotations[rot].Picture
	vt.flip = frame.Rotations[rot].IsFlipped
	if vt.pic == nil {
		return visThing{}, false
	}

	if m.FullBright {
		vt.cmap = r.brightMap
	} else {
		sector := &r.lvl.Sectors[r.lvl.SubSectors[m.SubSector].Sector]
		vt.cmap = r.scaleLight[sectorLight(sector)][r.scaleBand(vt.scale)]
	}

	vt.x = int(math.Floor(centerX - float64(vt.pic.LeftOffset)*vt.scale))
	vt.y = int(math.Floor(centerY - float64(vt.pic.TopOffset)*vt.scale))
	if vt.x >= r.width || vt.y >= r.height {
		return visThing{}, false
	}
	vt.w = int(float64(vt.pic.Width) * vt.scale)
	vt.h = int(float64(vt.pic.Height) * vt.scale)
	if vt.x+vt.w < 0 || vt.y+vt.h < 0 {
		return visThing{}, false
	}
	return vt, true
}

// drawThings draws the projected mobjs from farthest to nearest, then whatever masked wall
// columns no sprite needed drawn earlier
func (r *Renderer) drawThings() {
	slices.SortStableFunc(r.things, func(a, b visThing) int {
		return cmp.Compare(b.scale, a.scale)
	})
	for i := len(r.things) - 1; i >= 0; i-- {
		r.drawThing(&r.things[i])
	}

	for i := len(r.drawSegs) - 1; i >= 0; i-- {
		if r.drawSegs[i].masked != nil {
			r.drawMasked(&r.drawSegs[i], r.drawSegs[i].x1, r.drawSegs[i].x2, 0)
		}
	}
}

func (r *Renderer) drawThing(vt *visThing) {
	if vt.w <= 0 || vt.h <= 0 {
		return
	}
	xEnd := min(vt.x+vt.w, r.width)
	for x := max(vt.x, 0); x < xEnd; x++ {
		r.thingTop[x] = -1
		r.thingBottom[x] = r.height
	}

	r.clipThing(vt)

	iscale := 1 / vt.scale
	s, sStep := 0.0, iscale
	if vt.flip {
		s, sStep = float64(vt.pic.Width)-1.0/65536, -iscale
	}
	x := vt.x
	if x < 0 {
		s += sStep * float64(-x)
		x = 0
	}

	for ; x < xEnd; x, s = x+1, s+sStep {
		y1 := max(vt.y, r.thingTop[x]+1)
		y2 := min(vt.y+vt.h-1, r.thingBottom[x]-1)
		if y1 > y2 {
			continue
		}
		c := int(math.Floor(s))
		if c < 0 || c >= vt.pic.Width {
			continue
		}
		r.drawPicColumn(vt.pic.Columns[c], vt.pic.Transparent, vt.cmap, x, y1, y2, float64(vt.y), iscale)
	}
}

// clipThing narrows the sprite's per column row limits by every wall nearer than it. Masked mid
// textures farther than the sprite are drawn first so the sprite covers them.
func (r *Renderer) clipThing(vt *visThing) {
	for i := len(r.drawSegs) - 1; i >= 0; i-- {
		ds := &r.drawSegs[i]
		farthest := min(ds.scale1, ds.scale2)
		closest := max(ds.scale1, ds.scale2)

		x1 := max(ds.x1, vt.x)
		x2 := min(ds.x2, vt.x+vt.w-1)
		if x1 > x2 {
			continue
		}

		if farthest < vt.scale && ds.masked != nil {
			r.drawMasked(ds, x1, x2, vt.scale)
		}
		if closest <= vt.scale || ds.masked != nil {
			continue
		}

		scale := ds.scale1 + float64(x1-ds.x1)*ds.scaleStep
		for x := x1; x <= x2; x, scale = x+1, scale+ds.scaleStep {
			if scale <= vt.scale {
				continue
			}
			if ds.opaque() {
				r.thingTop[x] = r.height
				r.thingBottom[x] = -1
				continue
			}
			if ds.top != nil {
				r.thingTop[x] = max(r.thingTop[x], ds.top[x-ds.x1])
			}
			if ds.bottom != nil {
				r.thingBottom[x] = min(r.thingBottom[x], ds.bottom[x-ds.x1])
			}
		}
	}
}

// drawMasked draws columns [x1, x2] of a masked mid texture. If maxScale is positive, only
// columns farther than it are drawn. Drawn columns are marked done.
func (r *Renderer) drawMasked(ds *drawSeg, x1, x2 int, maxScale float64) {
	lvl := r.lvl
	seg := &lvl.Segs[ds.seg]
	side := &lvl.Sides[seg.Front]
	front := &lvl.Sectors[side.Sector]
	back := &lvl.Sectors[lvl.Sides[seg.Back].Sector]
	tex := r.mat.Texture(side.Middle)
	if tex == nil {
		return
	}
	light := wallLight(front, lvl.Vertices[seg.V1], lvl.Vertices[seg.V2])

	portalTop := min(front.CeilingHeight, back.CeilingHeight)
	portalBottom := max(front.FloorHeight, back.FloorHeight)
	tTop := side.YOffset
	if lvl.Lines[seg.Line].Flags.Has(level.LowerUnpegged) {
		tTop = float64(tex.Height) - (portalTop - portalBottom) + side.YOffset
	}

	scale := ds.scale1 + float64(x1-ds.x1)*ds.scaleStep
	for x := x1; x <= x2; x, scale = x+1, scale+ds.scaleStep {
		i := x - ds.x1
		if ds.masked[i] == maskedDone {
			continue
		}
		if maxScale > 0 && scale >= maxScale {
			continue
		}

		top := (r.view.Z-portalTop)*scale + r.halfy
		bottom := top + (portalTop-portalBottom)*scale
		pxTop := int(math.Floor(top)) + 1
		pxBottom := int(math.Floor(bottom))
		if pxTop <= ds.top[i] {
			pxTop = ds.top[i] + 1
		}
		if pxBottom >= ds.bottom[i] {
			pxBottom = ds.bottom[i] - 1
		}
		if pxTop > pxBottom {
			continue
		}

		// Texture row 0 sits tTop rows above the portal top; the texture is not tiled
		origin := top - tTop*scale
		cmap := r.scaleLight[light][r.scaleBand(scale)]
		r.drawPicColumn(tex.Column(ds.masked[i]), tex.Transparent(), cmap, x, pxTop, pxBottom, origin, 1/scale)
		ds.masked[i] = maskedDone
	}
}

// drawPicColumn draws the opaque pixels of a picture column into rows [y1, y2] of screen column
// x. Picture row 0 is at screen row origin and each screen row advances iscale picture rows.
func (r *Renderer) drawPicColumn(col gfx.Column, transparent byte, cmap *gfx.ColorMap, x, y1, y2 int, origin, iscale float64) {
	dst := y1*r.width + x
	for y := y1; y <= y2; y, dst = y+1, dst+r.width {
		t := int(math.Floor((float64(y) - origin) * iscale))
		if t < 0 || t >= len(col) {
			continue
		}
		if b := col[t]; b != transparent {
			r.pixels[dst] = r.palette[cmap[b]]
		}
	}
}
