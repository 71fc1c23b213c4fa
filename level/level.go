// Package level holds a Doom map in memory as flat, index-linked tables: vertices, sectors,
// sidedefs, linedefs, segs, subsectors and BSP nodes, plus the dynamic objects placed in it.
// Cross references are indices into the owning Level's slices rather than pointers.
package level

import (
	"errors"
	"fmt"

	"github.com/stuarthighley/doomview/bam"
)

// ErrMalformed is returned by Validate and ResolveSubSectors when the level's tables do not
// reference each other consistently.
var ErrMalformed = errors.New("malformed level")

// TextureNum identifies a wall texture. NoTexture means the side has none.
type TextureNum int

// FlatNum identifies a floor or ceiling flat.
type FlatNum int

const (
	NoTexture TextureNum = -1
	NoFlat    FlatNum    = -1
)

type Vertex struct {
	X, Y int
}

type Sector struct {
	FloorHeight   float64
	CeilingHeight float64
	FloorFlat     FlatNum
	CeilingFlat   FlatNum
	LightLevel    int // 0-255
	Special       SectorType
	Tag           int

	// RenderFrame is the last frame whose renderer collected Mobjs. Owned by the renderer.
	RenderFrame int
	Mobjs       []int // Indices into Level.Mobjs
}

type Side struct {
	XOffset float64
	YOffset float64
	Upper   TextureNum
	Lower   TextureNum
	Middle  TextureNum
	Sector  int
}

// Seg is a directed piece of a linedef lying in exactly one subsector
type Seg struct {
	V1, V2 int
	Angle  bam.Angle
	Line   int
	Offset float64 // Distance along line to start of segment
	Front  int     // Side facing the seg's right
	Back   int     // Side on the other line face, NoSide for one-sided lines
}

// SubSector is a convex BSP leaf: a run of segs and the sector they enclose
type SubSector struct {
	FirstSeg int
	NumSegs  int
	Sector   int // Resolved by ResolveSubSectors
}

type BoundBox struct {
	Top, Bottom, Left, Right float64
}

// LeafFlag marks a node child index as a subsector reference
const LeafFlag = 0x8000

// Node is a BSP partition line through (X, Y) with direction (DX, DY). Children[0] is the right
// (front) side and Children[1] the left.
type Node struct {
	X, Y     float64
	DX, DY   float64
	BBox     [2]BoundBox
	Children [2]int
}

// IsLeaf reports whether a node child index refers to a subsector
func IsLeaf(child int) bool {
	return child&LeafFlag != 0
}

// LeafIndex returns the subsector index of a leaf child reference
func LeafIndex(child int) int {
	return child &^ LeafFlag
}

type Thing struct {
	X, Y            int
	Angle           bam.Angle
	Type            int
	Skill1and2      bool
	Skill3          bool
	Skill4and5      bool
	Ambush          bool
	MultiplayerOnly bool
}

// Mobj is a dynamic object in the level. Gameplay owns it; the renderer only reads it.
type Mobj struct {
	X, Y, Z    float64
	Angle      bam.Angle
	Sprite     int
	Frame      int
	FullBright bool
	SubSector  int
}

type Level struct {
	Name       string
	Vertices   []Vertex
	Sectors    []Sector
	Sides      []Side
	Lines      []Line
	Segs       []Seg
	SubSectors []SubSector
	Nodes      []Node
	Things     []Thing
	Mobjs      []Mobj

	SkyFlat    FlatNum    // Ceilings with this flat show the sky
	SkyTexture TextureNum // Picture drawn for sky
}

// Root returns the child reference of the BSP root. A level with no nodes is a single leaf.
func (l *Level) Root() int {
	if len(l.Nodes) == 0 {
		return LeafFlag
	}
	return len(l.Nodes) - 1
}

// NodeSide returns 0 if (x, y) is on the front side of the node's partition line, otherwise 1
func NodeSide(n *Node, x, y float64) int {
	dx := x - n.X
	dy := y - n.Y
	if dx*n.DY-n.DX*dy < 0 {
		return 1
	}
	return 0
}

// PointInSubSector returns the subsector containing (x, y)
func (l *Level) PointInSubSector(x, y float64) int {
	child := l.Root()
	for !IsLeaf(child) {
		n := &l.Nodes[child]
		child = n.Children[NodeSide(n, x, y)]
	}
	return LeafIndex(child)
}

// SectorAt returns the sector containing (x, y)
func (l *Level) SectorAt(x, y float64) *Sector {
	return &l.Sectors[l.SubSectors[l.PointInSubSector(x, y)].Sector]
}

// ResolveSubSectors sets each subsector's sector from the front side of its first seg
func (l *Level) ResolveSubSectors() error {
	for i := range l.SubSectors {
		ss := &l.SubSectors[i]
		if ss.NumSegs <= 0 || ss.FirstSeg < 0 || ss.FirstSeg+ss.NumSegs > len(l.Segs) {
			return fmt.Errorf("%w: subsector %d has segs %d+%d of %d", ErrMalformed, i, ss.FirstSeg, ss.NumSegs, len(l.Segs))
		}
		side := l.Segs[ss.FirstSeg].Front
		if side < 0 || side >= len(l.Sides) {
			return fmt.Errorf("%w: subsector %d first seg has side %d", ErrMalformed, i, side)
		}
		ss.Sector = l.Sides[side].Sector
	}
	return nil
}

// Validate checks every cross reference in the level and that the BSP tree is acyclic with each
// node reachable at most once from the root. It should be run once after loading; the renderer
// does not check references per frame.
func (l *Level) Validate() error {
	inRange := func(i, n int) bool { return i >= 0 && i < n }

	for i, s := range l.Sides {
		if !inRange(s.Sector, len(l.Sectors)) {
			return fmt.Errorf("%w: side %d sector %d", ErrMalformed, i, s.Sector)
		}
	}
	for i, ln := range l.Lines {
		if !inRange(ln.V1, len(l.Vertices)) || !inRange(ln.V2, len(l.Vertices)) {
			return fmt.Errorf("%w: line %d vertices %d,%d", ErrMalformed, i, ln.V1, ln.V2)
		}
		if !inRange(ln.Front, len(l.Sides)) {
			return fmt.Errorf("%w: line %d has no front side", ErrMalformed, i)
		}
		if ln.Back != NoSide && !inRange(ln.Back, len(l.Sides)) {
			return fmt.Errorf("%w: line %d back side %d", ErrMalformed, i, ln.Back)
		}
	}
	for i, sg := range l.Segs {
		if !inRange(sg.V1, len(l.Vertices)) || !inRange(sg.V2, len(l.Vertices)) {
			return fmt.Errorf("%w: seg %d vertices %d,%d", ErrMalformed, i, sg.V1, sg.V2)
		}
		if !inRange(sg.Line, len(l.Lines)) || !inRange(sg.Front, len(l.Sides)) {
			return fmt.Errorf("%w: seg %d line %d side %d", ErrMalformed, i, sg.Line, sg.Front)
		}
		if sg.Back != NoSide && !inRange(sg.Back, len(l.Sides)) {
			return fmt.Errorf("%w: seg %d back side %d", ErrMalformed, i, sg.Back)
		}
	}
	for i, ss := range l.SubSectors {
		if ss.NumSegs <= 0 || ss.FirstSeg < 0 || ss.FirstSeg+ss.NumSegs > len(l.Segs) {
			return fmt.Errorf("%w: subsector %d segs %d+%d", ErrMalformed, i, ss.FirstSeg, ss.NumSegs)
		}
		if !inRange(ss.Sector, len(l.Sectors)) {
			return fmt.Errorf("%w: subsector %d sector %d", ErrMalformed, i, ss.Sector)
		}
	}
	if len(l.SubSectors) == 0 {
		return fmt.Errorf("%w: no subsectors", ErrMalformed)
	}

	// Walk the tree from the root, refusing to enter any node twice
	seen := make([]bool, len(l.Nodes))
	stack := []int{l.Root()}
	for len(stack) > 0 {
		child := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if IsLeaf(child) {
			if !inRange(LeafIndex(child), len(l.SubSectors)) {
				return fmt.Errorf("%w: leaf reference %d", ErrMalformed, LeafIndex(child))
			}
			continue
		}
		if !inRange(child, len(l.Nodes)) {
			return fmt.Errorf("%w: node reference %d", ErrMalformed, child)
		}
		if seen[child] {
			return fmt.Errorf("%w: node %d reached twice", ErrMalformed, child)
		}
		seen[child] = true
		stack = append(stack, l.Nodes[child].Children[0], l.Nodes[child].Children[1])
	}
	return nil
}

// SpawnMobj adds m to the level, linking it into the sector under its position. If onFloor is
// set, Z is taken from that sector's floor. It returns the new mobj's index.
func (l *Level) SpawnMobj(m Mobj, onFloor bool) int {
	i := len(l.Mobjs)
	m.SubSector = l.PointInSubSector(m.X, m.Y)
	sector := &l.Sectors[l.SubSectors[m.SubSector].Sector]
	if onFloor {
		m.Z = sector.FloorHeight
	}
	l.Mobjs = append(l.Mobjs, m)
	sector.Mobjs = append(sector.Mobjs, i)
	return i
}

// MoveMobj repositions mobj i, relinking it if it crosses into another sector
func (l *Level) MoveMobj(i int, x, y, z float64) {
	m := &l.Mobjs[i]
	old := l.SubSectors[m.SubSector].Sector
	m.X, m.Y, m.Z = x, y, z
	m.SubSector = l.PointInSubSector(x, y)
	sector := l.SubSectors[m.SubSector].Sector
	if sector == old {
		return
	}
	list := l.Sectors[old].Mobjs
	for j, k := range list {
		if k == i {
			l.Sectors[old].Mobjs = append(list[:j], list[j+1:]...)
			break
		}
	}
	l.Sectors[sector].Mobjs = append(l.Sectors[sector].Mobjs, i)
}

// PlayerStart returns the start spot of player n, numbered from 1
func (l *Level) PlayerStart(n int) (Thing, bool) {
	for _, t := range l.Things {
		if t.Type == n {
			return t, true
		}
	}
	return Thing{}, false
}
