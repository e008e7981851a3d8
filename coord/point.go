package coord

import (
	"math"
)

// Point is a position or displacement in machine coordinates, always in
// millimeters.
type Point struct{ X, Y, Z float64 }

func (p Point) Equal(b Point) bool {
	return p.X == b.X && p.Y == b.Y && p.Z == b.Z
}

// Add will add the target values to p.
func (p Point) Add(target Point) Point {
	p.X += target.X
	p.Y += target.Y
	p.Z += target.Z
	return p
}

// Sub will subtract the target values from p.
func (p Point) Sub(target Point) Point {
	p.X -= target.X
	p.Y -= target.Y
	p.Z -= target.Z
	return p
}

func (p Point) Mul(val float64) Point {
	p.X *= val
	p.Y *= val
	p.Z *= val
	return p
}

// Abs returns p with each component replaced by its magnitude.
func (p Point) Abs() Point {
	p.X = math.Abs(p.X)
	p.Y = math.Abs(p.Y)
	p.Z = math.Abs(p.Z)
	return p
}

// Neg returns p with each component negated.
func (p Point) Neg() Point {
	return Point{-p.X, -p.Y, -p.Z}
}

func (p Point) Length() float64 {
	return math.Sqrt(p.X*p.X + p.Y*p.Y + p.Z*p.Z)
}

// Min returns the component-wise minimum of p and b.
func (p Point) Min(b Point) Point {
	return Point{math.Min(p.X, b.X), math.Min(p.Y, b.Y), math.Min(p.Z, b.Z)}
}

// Max returns the component-wise maximum of p and b.
func (p Point) Max(b Point) Point {
	return Point{math.Max(p.X, b.X), math.Max(p.Y, b.Y), math.Max(p.Z, b.Z)}
}
