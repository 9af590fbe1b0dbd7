// Package geometry implements the rotated-rectangle math behind the editor:
// corner computation, separating-axis overlap tests and hit testing.
//
// All coordinates are canvas pixels with y pointing down, so a positive
// angle rotates clockwise on screen. Angles are expressed in degrees.
package geometry

import "math"

// Point is a position in canvas space.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Add returns p translated by q.
func (p Point) Add(q Point) Point { return Point{p.X + q.X, p.Y + q.Y} }

// Sub returns the vector from q to p.
func (p Point) Sub(q Point) Point { return Point{p.X - q.X, p.Y - q.Y} }

// Dot returns the dot product of p and q.
func (p Point) Dot(q Point) float64 { return p.X*q.X + p.Y*q.Y }

// Box is a rectangle given by its top-left corner before rotation, its size
// and a rotation in degrees about its own center.
type Box struct {
	X, Y  float64
	W, H  float64
	Angle float64
}

// Center returns the rotation center of b.
func (b Box) Center() Point {
	return Point{b.X + b.W/2, b.Y + b.H/2}
}

// Radians converts degrees to radians.
func Radians(deg float64) float64 { return deg * math.Pi / 180 }

// Degrees converts radians to degrees.
func Degrees(rad float64) float64 { return rad * 180 / math.Pi }

// Rotate rotates p around center by deg degrees.
func Rotate(p, center Point, deg float64) Point {
	sin, cos := math.Sincos(Radians(deg))
	d := p.Sub(center)
	return Point{
		X: center.X + d.X*cos - d.Y*sin,
		Y: center.Y + d.X*sin + d.Y*cos,
	}
}

// Distance returns the Euclidean distance between a and b.
func Distance(a, b Point) float64 {
	return math.Hypot(b.X-a.X, b.Y-a.Y)
}

// AngleDeg returns the angle of p as seen from center, in degrees.
func AngleDeg(center, p Point) float64 {
	return Degrees(math.Atan2(p.Y-center.Y, p.X-center.X))
}

// Corners returns the four corners of b in perimeter order: top-left,
// top-right, bottom-right, bottom-left of the unrotated rectangle.
func Corners(b Box) [4]Point {
	c := b.Center()
	hw, hh := b.W/2, b.H/2
	offsets := [4]Point{{-hw, -hh}, {hw, -hh}, {hw, hh}, {-hw, hh}}
	var out [4]Point
	for i, o := range offsets {
		out[i] = Rotate(c.Add(o), c, b.Angle)
	}
	return out
}

// Valid reports whether every field of b is a finite number.
func (b Box) Valid() bool {
	for _, v := range [5]float64{b.X, b.Y, b.W, b.H, b.Angle} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

// Overlap reports whether a and b intersect. Rectangles that only touch
// along an edge or corner are considered overlapping. Boxes with non-finite
// fields never overlap anything.
func Overlap(a, b Box) bool {
	if !a.Valid() || !b.Valid() {
		return false
	}
	pa, pb := Corners(a), Corners(b)
	for _, poly := range [2][4]Point{pa, pb} {
		for i := range poly {
			edge := poly[(i+1)%len(poly)].Sub(poly[i])
			axis := Point{-edge.Y, edge.X}
			minA, maxA := project(pa, axis)
			minB, maxB := project(pb, axis)
			if maxA < minB || maxB < minA {
				return false
			}
		}
	}
	return true
}

func project(poly [4]Point, axis Point) (lo, hi float64) {
	lo, hi = math.Inf(1), math.Inf(-1)
	for _, p := range poly {
		v := p.Dot(axis)
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	return lo, hi
}

// HitTest reports whether p lies inside b, boundary included.
func HitTest(p Point, b Box) bool {
	c := b.Center()
	local := Rotate(p, c, -b.Angle)
	return math.Abs(local.X-c.X) <= b.W/2 && math.Abs(local.Y-c.Y) <= b.H/2
}
