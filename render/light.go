package render

import (
	"github.com/stuarthighley/doomview/gfx"
	"github.com/stuarthighley/doomview/level"
)

const (
	lightLevels = 16
	lightShift  = 4 // 0-255 to 0-15
	scaleBands  = 48
	zBands      = 128
)

// buildLightTables picks, for each sector light level, a colormap per wall scale band and per
// floor distance band. Nearer is brighter in both.
func (r *Renderer) buildLightTables(cms []gfx.ColorMap) {
	maps := min(len(cms), gfx.LightMaps)
	r.brightMap = &cms[0]

	for i := range lightLevels {
		base := (lightLevels - 1 - i) * 2 * gfx.LightMaps / lightLevels
		for j := range scaleBands {
			r.scaleLight[i][j] = &cms[clamp(base-j/2, 0, maps-1)]
		}
		for j := range zBands {
			scale := r.halfx / float64(j+1)
			r.zLight[i][j] = &cms[clamp(int(float64(base)-scale/2), 0, maps-1)]
		}
	}
}

// scaleBand is the wall light band for a projected scale, normalised to a 320 wide screen
func (r *Renderer) scaleBand(scale float64) int {
	return int(clamp(scale*16*320/float64(r.width), 0, scaleBands-1))
}

// zBand is the plane light band for a distance
func zBand(dist float64) int {
	return int(clamp(dist/16, 0, zBands-1))
}

// sectorLight is a sector's light level index
func sectorLight(s *level.Sector) int {
	return clamp(s.LightLevel>>lightShift, 0, lightLevels-1)
}

// wallLight is the light level index of a wall. Walls running exactly east-west are one level
// darker and north-south one level lighter.
func wallLight(s *level.Sector, v1, v2 level.Vertex) int {
	light := s.LightLevel >> lightShift
	if v1.Y == v2.Y {
		light--
	} else if v1.X == v2.X {
		light++
	}
	return clamp(light, 0, lightLevels-1)
}
