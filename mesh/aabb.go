package mesh

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// AABB represents an axis-aligned bounding box
type AABB struct {
	Min mgl64.Vec3
	Max mgl64.Vec3
}

// EmptyAABB returns an inverted box that unions correctly with any point
func EmptyAABB() AABB {
	return AABB{
		Min: mgl64.Vec3{math.Inf(1), math.Inf(1), math.Inf(1)},
		Max: mgl64.Vec3{math.Inf(-1), math.Inf(-1), math.Inf(-1)},
	}
}

// ContainsPoint checks if a point is inside the AABB
func (a AABB) ContainsPoint(point mgl64.Vec3) bool {
	return point.X() >= a.Min.X() && point.X() <= a.Max.X() &&
		point.Y() >= a.Min.Y() && point.Y() <= a.Max.Y() &&
		point.Z() >= a.Min.Z() && point.Z() <= a.Max.Z()
}

// Contains checks if the other AABB lies entirely inside this one
func (a AABB) Contains(other AABB) bool {
	return a.ContainsPoint(other.Min) && a.ContainsPoint(other.Max)
}

// Overlaps checks if two AABBs overlap
func (a AABB) Overlaps(other AABB) bool {
	// AABBs overlap if they overlap on all three axes
	return a.Max.X() >= other.Min.X() && a.Min.X() <= other.Max.X() &&
		a.Max.Y() >= other.Min.Y() && a.Min.Y() <= other.Max.Y() &&
		a.Max.Z() >= other.Min.Z() && a.Min.Z() <= other.Max.Z()
}

// ExtendPoint grows the AABB to include a point
func (a AABB) ExtendPoint(point mgl64.Vec3) AABB {
	for i := 0; i < 3; i++ {
		a.Min[i] = math.Min(a.Min[i], point[i])
		a.Max[i] = math.Max(a.Max[i], point[i])
	}
	return a
}

// Union returns the smallest AABB containing both boxes
func (a AABB) Union(other AABB) AABB {
	return a.ExtendPoint(other.Min).ExtendPoint(other.Max)
}

// Expand grows the AABB by the same margin on every side
func (a AABB) Expand(margin float64) AABB {
	m := mgl64.Vec3{margin, margin, margin}
	return AABB{Min: a.Min.Sub(m), Max: a.Max.Add(m)}
}

// Size returns the per-axis extents
func (a AABB) Size() mgl64.Vec3 {
	return a.Max.Sub(a.Min)
}

// Center returns the box center
func (a AABB) Center() mgl64.Vec3 {
	return a.Min.Add(a.Max).Mul(0.5)
}

// LongestAxis returns 0, 1 or 2 for the axis with the largest extent
func (a AABB) LongestAxis() int {
	size := a.Size()
	axis := 0
	if size.Y() > size.X() && size.Y() > size.Z() {
		axis = 1
	} else if size.Z() > size.X() && size.Z() > size.Y() {
		axis = 2
	}
	return axis
}

// DistanceSqToPoint returns the squared distance from a point to the box,
// 0 if the point is inside
func (a AABB) DistanceSqToPoint(point mgl64.Vec3) float64 {
	sq := 0.0
	for i := 0; i < 3; i++ {
		if d := a.Min[i] - point[i]; d > 0 {
			sq += d * d
		} else if d := point[i] - a.Max[i]; d > 0 {
			sq += d * d
		}
	}
	return sq
}

// Transformed returns the AABB of this box transformed by an affine matrix.
// All 8 corners are transformed and re-unioned, so the result can be larger
// than the rotated box itself.
func (a AABB) Transformed(transform mgl64.Mat4) AABB {
	corners := [8]mgl64.Vec3{
		{a.Min.X(), a.Min.Y(), a.Min.Z()},
		{a.Max.X(), a.Min.Y(), a.Min.Z()},
		{a.Min.X(), a.Max.Y(), a.Min.Z()},
		{a.Max.X(), a.Max.Y(), a.Min.Z()},
		{a.Min.X(), a.Min.Y(), a.Max.Z()},
		{a.Max.X(), a.Min.Y(), a.Max.Z()},
		{a.Min.X(), a.Max.Y(), a.Max.Z()},
		{a.Max.X(), a.Max.Y(), a.Max.Z()},
	}

	out := EmptyAABB()
	for _, corner := range corners {
		out = out.ExtendPoint(transform.Mul4x1(corner.Vec4(1)).Vec3())
	}
	return out
}
