package render

import (
	"math"

	"golang.org/x/exp/slices"
)

// span is a run of screen columns fully hidden by solid walls
type span struct {
	x1, x2 int
}

// clipper keeps the sorted, coalesced spans of occluded columns, bounded by sentinels that cover
// everything off screen.
type clipper struct {
	spans []span
}

func (c *clipper) reset(width int) {
	c.spans = append(c.spans[:0], span{math.MinInt16, -1}, span{width, math.MaxInt16})
}

// clipAndAdd calls draw for each uncovered run of [x1, x2], then marks all of [x1, x2] as
// occluded, merging with touching spans.
func (c *clipper) clipAndAdd(x1, x2 int, draw func(x1, x2 int)) {
	i := 0
	for ; x1 <= x2 && x2 >= c.spans[i].x1-1; i++ {
		if c.spans[i].x2 < x1-1 {
			continue
		}

		if x1 < c.spans[i].x1 {
			draw(x1, c.spans[i].x1-1)
			c.spans[i].x1 = x1

			if c.spans[i-1].x2 >= c.spans[i].x1-1 {
				c.spans[i-1].x2 = c.spans[i].x2
				c.spans = slices.Delete(c.spans, i, i+1)
				i--
			}
		}

		x1 = c.spans[i].x2 + 1
	}

	if x1 > x2 {
		return
	}
	draw(x1, x2)
	if c.spans[i-1].x2 >= x1-1 {
		c.spans[i-1].x2 = x2
	} else {
		c.spans = slices.Insert(c.spans, i, span{x1, x2})
	}
}

// clipOnly calls draw for each uncovered run of [x1, x2] without occluding anything
func (c *clipper) clipOnly(x1, x2 int, draw func(x1, x2 int)) {
	for i := 0; x1 <= x2 && x2 >= c.spans[i].x1; i++ {
		if c.spans[i].x2 < x1 {
			continue
		}
		if x1 < c.spans[i].x1 {
			draw(x1, c.spans[i].x1-1)
		}
		x1 = c.spans[i].x2 + 1
	}

	if x1 <= x2 {
		draw(x1, x2)
	}
}

// covers reports whether all of [x1, x2] is occluded. Spans are coalesced, so one span must hold
// the whole run.
func (c *clipper) covers(x1, x2 int) bool {
	i := 0
	for c.spans[i].x2 < x2 {
		i++
	}
	return x1 >= c.spans[i].x1
}

// full reports whether every screen column is occluded, which merges the two sentinels
func (c *clipper) full() bool {
	return len(c.spans) == 1
}
