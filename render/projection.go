package render

import (
	"math"

	"github.com/stuarthighley/doomview/bam"
)

// AngleToX returns the screen column an angle relative to the view direction projects to,
// saturated to [0, width]. Positive angles are left of centre.
func (r *Renderer) AngleToX(a bam.Angle) int {
	alpha := a.Tan() / (hplane / 2)
	f := (0.5-alpha/2)*float64(r.width) + 1.0/1024
	if f <= 0 {
		return 0
	}
	if f >= float64(r.width) {
		return r.width
	}
	return int(f)
}

// XToAngle returns the view relative angle through the centre of screen column x
func (r *Renderer) XToAngle(x int) bam.Angle {
	f := float64(x) + 0.5
	alpha := 1 - 2*f/float64(r.width)
	return bam.Atan(alpha * hplane / 2)
}

// YToAngle returns the angle above the view direction of screen row y
func (r *Renderer) YToAngle(y int) bam.Angle {
	alpha := (r.halfy - float64(y)) / r.halfy
	return bam.Atan(alpha * r.vplane / 2)
}

// wallScale is the projected size of one world unit of a wall seen along view angle a. The wall
// lies dist units from the viewer along its normal.
func (r *Renderer) wallScale(a, normal bam.Angle, dist float64) float64 {
	return (a - normal).Cos() / math.Max(dist*(a-r.view.Angle).Cos(), 0.05) * r.projection
}
