package render

import (
	"github.com/stuarthighley/doomview/bam"
	"github.com/stuarthighley/doomview/level"
)

// renderNode walks the BSP tree front to back from child, drawing every leaf reached. The walk
// stops early once every screen column is behind a solid wall, and skips a far child whose
// bounding box is already hidden.
func (r *Renderer) renderNode(child int) {
	if r.clip.full() {
		return
	}
	if level.IsLeaf(child) {
		r.renderSubSector(level.LeafIndex(child))
		return
	}

	node := &r.lvl.Nodes[child]
	side := level.NodeSide(node, r.view.X, r.view.Y)
	r.renderNode(node.Children[side])
	if r.boxVisible(&node.BBox[side^1]) {
		r.renderNode(node.Children[side^1])
	}
}

// boxCorners picks the two corners of a box that bound it in angle, left then right as seen from
// the viewer. It is indexed by the viewer's row (above, level with, below) and column (left of,
// within, right of) relative to the box. Each entry indexes {Top, Bottom, Left, Right} as x1, y1,
// x2, y2.
var boxCorners = [3][3][4]int{
	{{3, 0, 2, 1}, {3, 0, 2, 0}, {3, 1, 2, 0}},
	{{2, 0, 2, 1}, {}, {3, 1, 3, 0}},
	{{2, 0, 3, 1}, {2, 1, 3, 1}, {2, 1, 3, 0}},
}

// boxVisible reports whether any column the box spans on screen is still open
func (r *Renderer) boxVisible(b *level.BoundBox) bool {
	view := r.view

	col := 0
	switch {
	case view.X <= b.Left:
	case view.X < b.Right:
		col = 1
	default:
		col = 2
	}
	row := 0
	switch {
	case view.Y >= b.Top:
	case view.Y > b.Bottom:
		row = 1
	default:
		row = 2
	}
	if row == 1 && col == 1 {
		return true
	}

	coords := [4]float64{b.Top, b.Bottom, b.Left, b.Right}
	c := boxCorners[row][col]
	a1 := bam.Atan2(coords[c[1]]-view.Y, coords[c[0]]-view.X) - view.Angle
	a2 := bam.Atan2(coords[c[3]]-view.Y, coords[c[2]]-view.X) - view.Angle

	// The viewer is on the box's edge
	span := a1 - a2
	if span >= bam.Ang180 {
		return true
	}

	if a1 < bam.Ang315 && a1 > bam.Ang45 {
		if a1-bam.Ang45 >= span {
			return false
		}
		a1 = bam.Ang45
	}
	if a2 > bam.Ang45 && a2 < bam.Ang315 {
		if bam.Ang315-a2 >= span {
			return false
		}
		a2 = bam.Ang315
	}

	x1 := r.AngleToX(a1)
	x2 := r.AngleToX(a2) - 1
	if x1 > x2 {
		return false
	}
	return !r.clip.covers(x1, x2)
}

func (r *Renderer) renderSubSector(i int) {
	ss := &r.lvl.SubSectors[i]
	r.addSectorThings(&r.lvl.Sectors[ss.Sector])

	for s := ss.FirstSeg; s < ss.FirstSeg+ss.NumSegs; s++ {
		r.renderSeg(s)
	}
}
