// Package bam implements binary angle measurement. A full circle maps onto the whole uint32
// range so that angle arithmetic wraps on overflow, and differences between angles compare
// correctly across the 0/360 boundary without any explicit modulo.
package bam

import (
	"math"

	"golang.org/x/exp/constraints"
)

// Angle is a binary angle. 0 is east, angles grow anticlockwise.
type Angle uint32

const (
	Ang0   Angle = 0
	Ang45  Angle = 0x20000000
	Ang90  Angle = 0x40000000
	Ang180 Angle = 0x80000000
	Ang270 Angle = 0xC0000000
	Ang315 Angle = 0xE0000000
	Ang1   Angle = Ang45 / 45
)

// Scale is the number of binary angle units in a full circle
const Scale = float64(1 << 32)

// FromRadians converts radians to a binary angle, wrapping out of range values
func FromRadians[T constraints.Float](rad T) Angle {
	return Angle(int64(float64(rad) / (2 * math.Pi) * Scale))
}

// FromDegrees converts degrees to a binary angle, wrapping out of range values
func FromDegrees[T constraints.Integer | constraints.Float](deg T) Angle {
	return Angle(int64(float64(deg) / 360 * Scale))
}

// Radians returns the angle in radians in the range [0, 2π)
func (a Angle) Radians() float64 {
	return float64(a) / Scale * 2 * math.Pi
}

// Degrees returns the angle in degrees in the range [0, 360)
func (a Angle) Degrees() float64 {
	return float64(a) / Scale * 360
}

// Signed returns the angle as a signed value, so that angles past 180 degrees become negative
func (a Angle) Signed() int32 {
	return int32(a)
}

func (a Angle) Sin() float64 {
	return math.Sin(a.Radians())
}

func (a Angle) Cos() float64 {
	return math.Cos(a.Radians())
}

func (a Angle) Tan() float64 {
	return math.Tan(a.Radians())
}

// Atan2 returns the angle of the vector (x, y)
func Atan2(y, x float64) Angle {
	return FromRadians(math.Atan2(y, x))
}

// Atan returns the angle whose tangent is t, in the range (-90, 90) degrees
func Atan(t float64) Angle {
	return FromRadians(math.Atan(t))
}
