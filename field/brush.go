package field

import (
	"math"

	"github.com/akmonengine/chisel/internal/par"
	"github.com/go-gl/mathgl/mgl64"
)

// DefaultFalloff is the falloff exponent when Brush.Falloff is unset
const DefaultFalloff = 2.0

// DefaultEndpointScale is the strength multiplier applied to the first and
// last sample of a stroke when Stroke.EndpointScale is unset. Stroke ends
// overlap with the neighboring sample's support, so full strength there
// would read as a double-strength dab.
const DefaultEndpointScale = 0.5

// BrushKind selects a deformation operator
type BrushKind int

const (
	// BrushPush presses the surface inward (removes material)
	BrushPush BrushKind = iota
	// BrushPull drags the surface outward (adds material)
	BrushPull
	// BrushSmooth relaxes samples toward their local spatial average
	BrushSmooth
)

// Brush is a single-point local deformation. It perturbs only samples
// within Radius of Center: a sample at distance d gets a falloff weight
// (1 - d/Radius)^Falloff, and samples with d > Radius are skipped outright,
// not attenuated to zero. A brush never changes the field's box or
// resolution.
type Brush struct {
	Kind     BrushKind
	Center   mgl64.Vec3
	Radius   float64
	Strength float64
	// Falloff is the falloff exponent (0 uses DefaultFalloff)
	Falloff float64
}

func (b Brush) falloff() float64 {
	if b.Falloff > 0 {
		return b.Falloff
	}
	return DefaultFalloff
}

// Apply runs the brush over the volume in place. Only the sample range
// covered by the brush support is visited; work is split over Z slices of
// that range.
func Apply(v *Volume, b Brush, workers int) {
	if b.Radius <= 0 {
		return
	}

	x0, x1 := v.clampAxisRange(0, b.Center.X(), b.Radius)
	y0, y1 := v.clampAxisRange(1, b.Center.Y(), b.Radius)
	z0, z1 := v.clampAxisRange(2, b.Center.Z(), b.Radius)
	if x0 > x1 || y0 > y1 || z0 > z1 {
		return
	}

	// Smoothing reads neighbors while writing in place, so it blends from
	// an immutable snapshot to keep every sample independent.
	var snapshot *Volume
	if b.Kind == BrushSmooth {
		snapshot = v.Clone()
	}

	exponent := b.falloff()

	par.Ranges(workers, z1-z0+1, func(zs, ze int) {
		for z := z0 + zs; z <= z0+ze-1; z++ {
			for y := y0; y <= y1; y++ {
				for x := x0; x <= x1; x++ {
					p := v.SamplePosition(x, y, z)
					d := p.Sub(b.Center).Len()
					if d > b.Radius {
						continue
					}

					f := math.Pow(1-d/b.Radius, exponent)
					i := v.Index(x, y, z)

					switch b.Kind {
					case BrushPush:
						v.Data[i] += float32(b.Strength * f)
					case BrushPull:
						v.Data[i] -= float32(b.Strength * f)
					case BrushSmooth:
						avg := snapshot.neighborAverage(x, y, z)
						t := float32(math.Min(math.Abs(b.Strength)*f, 1))
						v.Data[i] += (avg - v.Data[i]) * t
					}
				}
			}
		}
	})
}

// clampAxisRange returns the inclusive sample range on one axis whose
// centers can be within radius of the given coordinate
func (v *Volume) clampAxisRange(axis int, center, radius float64) (int, int) {
	voxel := v.VoxelSize()[axis]
	lo := int(math.Floor((center - radius - v.Bounds.Min[axis]) / voxel))
	hi := int(math.Ceil((center + radius - v.Bounds.Min[axis]) / voxel))
	return max(lo, 0), min(hi, v.Res[axis]-1)
}

// neighborAverage returns the mean of the six axis neighbors, clamping at
// the grid border
func (v *Volume) neighborAverage(x, y, z int) float32 {
	sum := float32(0)
	count := 0
	add := func(x, y, z int) {
		if x < 0 || y < 0 || z < 0 || x >= v.Res[0] || y >= v.Res[1] || z >= v.Res[2] {
			return
		}
		sum += v.At(x, y, z)
		count++
	}
	add(x-1, y, z)
	add(x+1, y, z)
	add(x, y-1, z)
	add(x, y+1, z)
	add(x, y, z-1)
	add(x, y, z+1)
	if count == 0 {
		return v.At(x, y, z)
	}
	return sum / float32(count)
}

// Stroke is the repeated, independent application of a brush at each of a
// series of points. The first and last points are attenuated by
// EndpointScale, a modeling policy to avoid double-strength dabs where
// consecutive strokes meet.
type Stroke struct {
	Brush  Brush
	Points []mgl64.Vec3
	// EndpointScale multiplies Strength at the stroke's first and last
	// point (0 uses DefaultEndpointScale)
	EndpointScale float64
}

func (s Stroke) endpointScale() float64 {
	if s.EndpointScale > 0 {
		return s.EndpointScale
	}
	return DefaultEndpointScale
}

// Apply runs the stroke point by point
func (s Stroke) Apply(v *Volume, workers int) {
	scale := s.endpointScale()
	for i, p := range s.Points {
		b := s.Brush
		b.Center = p
		if i == 0 || i == len(s.Points)-1 {
			b.Strength *= scale
		}
		Apply(v, b, workers)
	}
}
