// Math primitives for field-oriented control: electrical-angle
// trigonometry and the Clarke/Park transform pair.
package core

import "math"

const k2Pi = float32(2 * math.Pi)

// SinCos caches the sine and cosine of an electrical angle so a single
// evaluation serves every transform in one control cycle.
type SinCos struct {
	Theta float32
	Sin   float32
	Cos   float32
}

// NewSinCos evaluates sin/cos of theta (radians).
func NewSinCos(theta float32) SinCos {
	s, c := math.Sincos(float64(theta))
	return SinCos{
		Theta: theta,
		Sin:   float32(s),
		Cos:   float32(c),
	}
}

// DqTransform is the amplitude-invariant Clarke+Park transform: three
// phase quantities into the rotor frame at the angle captured in sc.
type DqTransform struct {
	D float32
	Q float32
}

// NewDqTransform maps phase quantities (a, b, c) into rotor-frame (d, q).
func NewDqTransform(sc SinCos, a, b, c float32) DqTransform {
	alpha := a
	beta := (b - c) * (1.0 / sqrt3)
	return DqTransform{
		D: alpha*sc.Cos + beta*sc.Sin,
		Q: -alpha*sc.Sin + beta*sc.Cos,
	}
}

// InverseDqTransform maps rotor-frame (d, q) back into three phase
// quantities at the angle captured in sc.
type InverseDqTransform struct {
	A float32
	B float32
	C float32
}

// NewInverseDqTransform computes the inverse Park+Clarke transform.
func NewInverseDqTransform(sc SinCos, d, q float32) InverseDqTransform {
	alpha := d*sc.Cos - q*sc.Sin
	beta := d*sc.Sin + q*sc.Cos
	return InverseDqTransform{
		A: alpha,
		B: (-alpha + sqrt3*beta) * 0.5,
		C: (-alpha - sqrt3*beta) * 0.5,
	}
}

const sqrt3 = float32(1.7320508075688772)

// Limit clamps a to [min, max].
func Limit(a, min, max float32) float32 {
	if a < min {
		return min
	}
	if a > max {
		return max
	}
	return a
}

// MapConfig maps a raw config value onto an index into a sorted table:
// the index of the first entry >= value, saturating at the last entry.
func MapConfig(table []uint16, value int) int {
	result := 0
	for _, item := range table {
		if value <= int(item) {
			return result
		}
		result++
	}
	// Never return past the end.
	return result - 1
}

// wrapUnit reduces x to [0, 1).
func wrapUnit(x float32) float32 {
	f := float32(math.Mod(float64(x), 1.0))
	if f < 0 {
		f += 1.0
	}
	return f
}
