package level

// Line is a linedef: a wall between two vertices with a right (front) side and, for two-sided
// lines, a left (back) side.
type Line struct {
	V1, V2      int
	Flags       LineFlags
	Special     int // Consumed by gameplay, never by the renderer
	Tag         int
	Front, Back int // Side indices, NoSide if absent
}

// NoSide marks a missing sidedef on a one-sided line
const NoSide = -1

type LineFlags uint16

const (
	BlockPlayerAndMonsters LineFlags = 1 << iota
	BlockMonsters
	TwoSided
	UpperUnpegged // Upper texture is anchored at the top of the upper step
	LowerUnpegged // Lower and middle textures are anchored at the bottom
	Secret
	BlocksSound
	NeverMap
	AlwaysMap
)

// Has reports whether all bits of flag are set
func (f LineFlags) Has(flag LineFlags) bool {
	return f&flag == flag
}

// IsTwoSided reports whether the line has sides facing two sectors
func (l *Line) IsTwoSided() bool {
	return l.Back != NoSide
}
