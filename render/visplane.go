package render

import "github.com/stuarthighley/doomview/level"

// A visplane is a floor or ceiling region waiting to be filled once all walls are drawn. Each
// column in [x1, x2] holds a row range, or empty (-1, -1).
type visplane struct {
	x1, x2  int
	tops    []int
	bottoms []int
	z       float64 // Height relative to the viewer
	flat    level.FlatNum
	light   int
}

const emptyColumn = -1

func (p *visplane) empty(x int) bool {
	return p.tops[x] == emptyColumn || p.bottoms[x] == emptyColumn
}

func (p *visplane) setEmpty(x int) {
	p.tops[x], p.bottoms[x] = emptyColumn, emptyColumn
}

// planeTable is the fixed capacity store of this frame's visplanes
type planeTable struct {
	planes []visplane
	n      int
	width  int
}

func (t *planeTable) init(capacity, width int) {
	t.planes = make([]visplane, capacity)
	t.width = width
	t.n = 0
}

func (t *planeTable) reset() {
	t.n = 0
}

func (t *planeTable) active() []visplane {
	return t.planes[:t.n]
}

// alloc takes the next free plane, or nil when the table is full. Column arrays are allocated
// on first use and kept across frames.
func (t *planeTable) alloc(x1, x2 int, z float64, flat level.FlatNum, light int) *visplane {
	if t.n >= len(t.planes) {
		return nil
	}
	p := &t.planes[t.n]
	t.n++
	if len(p.tops) != t.width {
		p.tops = make([]int, t.width)
		p.bottoms = make([]int, t.width)
	}
	p.x1, p.x2 = x1, x2
	p.z, p.flat, p.light = z, flat, light
	return p
}

// findPlane returns the newest visplane with the given identity, creating one with no columns if
// none exists. Sky planes ignore height and light so that all sky merges. It returns nil when a
// new plane is needed and the table is full.
func (r *Renderer) findPlane(z float64, flat level.FlatNum, light int) *visplane {
	if r.isSky(flat) {
		z, light = 0, 0
	}

	planes := r.planes.active()
	for i := len(planes) - 1; i >= 0; i-- {
		p := &planes[i]
		if p.z == z && p.flat == flat && p.light == light {
			return p
		}
	}

	p := r.planes.alloc(-1, -1, z, flat, light)
	if p == nil {
		r.drop(overflowVisplanes)
	}
	return p
}

// splitPlane prepares p to receive columns [x1, x2]. A plane with no columns takes the range, and
// a disjoint range extends the plane with empty columns in between. If any column of [x1, x2] is
// already filled, a new plane with the same identity is returned instead.
func (r *Renderer) splitPlane(p *visplane, x1, x2 int) *visplane {
	if p.x1 == -1 || p.x2 == -1 {
		p.x1, p.x2 = x1, x2
		for x := x1; x <= x2; x++ {
			p.setEmpty(x)
		}
		return p
	}

	if x2 < p.x1 || x1 > p.x2 {
		for x := x2 + 1; x < p.x1; x++ {
			p.setEmpty(x)
		}
		for x := p.x2 + 1; x < x1; x++ {
			p.setEmpty(x)
		}
		p.x1, p.x2 = min(x1, p.x1), max(x2, p.x2)
		return p
	}

	for x := max(x1, p.x1); x <= min(x2, p.x2); x++ {
		if p.tops[x] == emptyColumn && p.bottoms[x] == emptyColumn {
			continue
		}
		np := r.planes.alloc(x1, x2, p.z, p.flat, p.light)
		if np == nil {
			r.drop(overflowVisplanes)
		}
		return np
	}

	p.x1, p.x2 = min(x1, p.x1), max(x2, p.x2)
	return p
}
