package field

import (
	"math"

	"github.com/akmonengine/chisel/bvh"
	"github.com/akmonengine/chisel/internal/par"
)

const (
	// DefaultBandVoxels is the narrow-band half-width in voxels when
	// GenerateOptions.Band is unset.
	DefaultBandVoxels = 5

	// DefaultChunkZ is the Z-slab batch size for generation when
	// GenerateOptions.ChunkZ is unset.
	DefaultChunkZ = 8
)

// GenerateOptions controls signed-distance generation.
//
// Band and SolidInterior are deliberately two parameters. Band is a
// numerical-accuracy radius: samples within Band of the surface hold a true
// distance, samples beyond it saturate to ±Band (correct sign only).
// SolidInterior changes what "inside" stores: when set, interior samples
// keep their true negative distance at any depth, so the solid stays solid
// no matter how far a later edit cuts into it.
type GenerateOptions struct {
	// Band is the narrow-band half-width in world units
	// (0 uses DefaultBandVoxels × the largest voxel size)
	Band float64
	// SolidInterior disables band saturation for inside samples
	SolidInterior bool
	// Workers is the number of concurrent slab workers (0 means 1)
	Workers int
	// ChunkZ is the number of Z slices per scheduled batch
	// (0 uses DefaultChunkZ)
	ChunkZ int
}

func (o GenerateOptions) band(v *Volume) float64 {
	if o.Band > 0 {
		return o.Band
	}
	return DefaultBandVoxels * v.MaxVoxelSize()
}

func (o GenerateOptions) chunkZ() int {
	if o.ChunkZ > 0 {
		return o.ChunkZ
	}
	return DefaultChunkZ
}

// Generate populates the volume with signed distances to the indexed
// surface. Each sample is independent: the linear index is traversed for
// the nearest triangle, the sign is taken from agreement with that
// triangle's face normal, and samples beyond the band saturate.
//
// An empty index means no geometry: the whole grid is set to +band.
func Generate(v *Volume, index *bvh.Linear, opts GenerateOptions) error {
	band := opts.band(v)
	saturation := float32(band)

	if index.Empty() {
		v.Fill(saturation)
		return nil
	}

	// Samples farther than the band from the source mesh's own box cannot
	// be in range; the expanded box rejects whole regions without
	// traversal. Outside the box the sign is always positive.
	rejectBox := index.Bounds()
	bandSq := band * band

	return par.Chunks(opts.Workers, v.Res[2], opts.chunkZ(), func(z0, z1 int) error {
		for z := z0; z < z1; z++ {
			for y := 0; y < v.Res[1]; y++ {
				for x := 0; x < v.Res[0]; x++ {
					p := v.SamplePosition(x, y, z)

					if rejectBox.DistanceSqToPoint(p) > bandSq {
						v.Set(x, y, z, saturation)
						continue
					}

					nearest, ok := index.Nearest(p)
					if !ok {
						v.Set(x, y, z, saturation)
						continue
					}

					dist := math.Sqrt(nearest.DistanceSq)
					normal := index.Triangles[nearest.Triangle].Normal()
					inside := p.Sub(nearest.Point).Dot(normal) < 0

					value := dist
					if inside {
						value = -dist
					}

					switch {
					case !inside && dist > band:
						value = band
					case inside && dist > band && !opts.SolidInterior:
						value = -band
					}

					v.Set(x, y, z, float32(value))
				}
			}
		}
		return nil
	})
}
