package level

// SectorType is a sector's special behaviour number as stored in the WAD. The renderer ignores
// it.
type SectorType int

// SameSurface reports whether two sectors look identical from a wall between them: same
// heights, flats and light. Such walls hide nothing.
func (s *Sector) SameSurface(o *Sector) bool {
	return s.FloorHeight == o.FloorHeight &&
		s.CeilingHeight == o.CeilingHeight &&
		s.FloorFlat == o.FloorFlat &&
		s.CeilingFlat == o.CeilingFlat &&
		s.LightLevel == o.LightLevel
}
