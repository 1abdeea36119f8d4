// Package field implements the dense signed-distance volume the sculpting
// pipeline edits: generation from a linear BVH, boolean composition, and
// local brush deformation. Values are negative inside the solid, positive
// outside, with magnitude accurate only inside the narrow band.
package field

import (
	"fmt"
	"math"

	"github.com/akmonengine/chisel/mesh"
	"github.com/go-gl/mathgl/mgl64"
)

// Volume is a dense 3-D scalar grid over a world-space box. Samples sit at
// voxel centers: sample (i,j,k) is at Bounds.Min + (i+0.5, j+0.5, k+0.5) *
// voxel size. The grid always covers Bounds; changing bounds or resolution
// requires full regeneration because values outside the band are sentinels,
// not distances.
type Volume struct {
	Bounds mesh.AABB
	Res    [3]int
	Data   []float32
}

// New allocates a volume with the given box and per-axis sample counts,
// initialized to value (positive = empty space, negative = full solid).
func New(bounds mesh.AABB, res [3]int, value float32) (*Volume, error) {
	for i := 0; i < 3; i++ {
		if res[i] < 2 {
			return nil, fmt.Errorf("field: resolution %v must be at least 2 per axis", res)
		}
		if bounds.Max[i] <= bounds.Min[i] {
			return nil, fmt.Errorf("field: zero-size bounds on axis %d", i)
		}
	}

	v := &Volume{
		Bounds: bounds,
		Res:    res,
		Data:   make([]float32, res[0]*res[1]*res[2]),
	}
	v.Fill(value)
	return v, nil
}

// Fill sets every sample to the same value
func (v *Volume) Fill(value float32) {
	for i := range v.Data {
		v.Data[i] = value
	}
}

// VoxelSize returns the per-axis sample spacing
func (v *Volume) VoxelSize() mgl64.Vec3 {
	size := v.Bounds.Size()
	return mgl64.Vec3{
		size.X() / float64(v.Res[0]),
		size.Y() / float64(v.Res[1]),
		size.Z() / float64(v.Res[2]),
	}
}

// MaxVoxelSize returns the largest per-axis spacing
func (v *Volume) MaxVoxelSize() float64 {
	voxel := v.VoxelSize()
	return math.Max(voxel.X(), math.Max(voxel.Y(), voxel.Z()))
}

// Index returns the flat data offset of sample (x,y,z)
func (v *Volume) Index(x, y, z int) int {
	return (z*v.Res[1]+y)*v.Res[0] + x
}

// At returns the stored value at sample (x,y,z)
func (v *Volume) At(x, y, z int) float32 {
	return v.Data[v.Index(x, y, z)]
}

// Set stores a value at sample (x,y,z)
func (v *Volume) Set(x, y, z int, value float32) {
	v.Data[v.Index(x, y, z)] = value
}

// SamplePosition returns the world-space center of sample (x,y,z)
func (v *Volume) SamplePosition(x, y, z int) mgl64.Vec3 {
	voxel := v.VoxelSize()
	return mgl64.Vec3{
		v.Bounds.Min.X() + (float64(x)+0.5)*voxel.X(),
		v.Bounds.Min.Y() + (float64(y)+0.5)*voxel.Y(),
		v.Bounds.Min.Z() + (float64(z)+0.5)*voxel.Z(),
	}
}

// Sample evaluates the field at an arbitrary world position with trilinear
// interpolation between the eight surrounding samples. Positions outside
// the grid clamp to the border samples, so querying beyond the box returns
// the border's (saturated, positive) value rather than extrapolating.
func (v *Volume) Sample(p mgl64.Vec3) float32 {
	voxel := v.VoxelSize()

	var idx [3]int
	var frac [3]float64
	for i := 0; i < 3; i++ {
		t := (p[i]-v.Bounds.Min[i])/voxel[i] - 0.5
		t = math.Max(0, math.Min(t, float64(v.Res[i]-1)))
		f := math.Floor(t)
		idx[i] = min(int(f), v.Res[i]-2)
		frac[i] = t - float64(idx[i])
	}

	x, y, z := idx[0], idx[1], idx[2]
	fx, fy, fz := float32(frac[0]), float32(frac[1]), float32(frac[2])

	c00 := v.At(x, y, z)*(1-fx) + v.At(x+1, y, z)*fx
	c10 := v.At(x, y+1, z)*(1-fx) + v.At(x+1, y+1, z)*fx
	c01 := v.At(x, y, z+1)*(1-fx) + v.At(x+1, y, z+1)*fx
	c11 := v.At(x, y+1, z+1)*(1-fx) + v.At(x+1, y+1, z+1)*fx

	c0 := c00*(1-fy) + c10*fy
	c1 := c01*(1-fy) + c11*fy
	return c0*(1-fz) + c1*fz
}

// Gradient estimates the field gradient at a world position by central
// differences of trilinear samples, one voxel apart per axis.
func (v *Volume) Gradient(p mgl64.Vec3) mgl64.Vec3 {
	voxel := v.VoxelSize()
	var g mgl64.Vec3
	for i := 0; i < 3; i++ {
		var step mgl64.Vec3
		step[i] = voxel[i]
		g[i] = float64(v.Sample(p.Add(step))-v.Sample(p.Sub(step))) / (2 * voxel[i])
	}
	return g
}

// Clone returns a byte-for-byte copy of the volume, the unit of undo/redo
// snapshotting for callers that keep history.
func (v *Volume) Clone() *Volume {
	data := make([]float32, len(v.Data))
	copy(data, v.Data)
	return &Volume{Bounds: v.Bounds, Res: v.Res, Data: data}
}
