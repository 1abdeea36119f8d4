// Package march extracts a triangle mesh from a scalar field's iso-surface
// with the marching cubes algorithm. Cells are independent: the topology of
// each is table-driven from its 8 corner signs, so the result is
// deterministic for a given field and iso-level no matter how cells are
// scheduled. The only cross-cell coordination is the atomic append counter
// that assigns output slots.
package march

import (
	"fmt"
	"math"
	"sync/atomic"

	"github.com/akmonengine/chisel/field"
	"github.com/akmonengine/chisel/internal/par"
	"github.com/akmonengine/chisel/mesh"
	"github.com/go-gl/mathgl/mgl64"
)

// DefaultMaxTriangles is the output capacity when Options.MaxTriangles is
// unset.
const DefaultMaxTriangles = 1 << 20

// Options controls surface extraction
type Options struct {
	// IsoLevel is the surface value, conventionally 0
	IsoLevel float64
	// MaxTriangles is the preallocated output capacity
	// (0 uses DefaultMaxTriangles). Vertices are not shared between
	// triangles, so vertex capacity is 3 × MaxTriangles.
	MaxTriangles int
	// Workers is the number of concurrent cell workers (0 means 1)
	Workers int
}

func (o Options) maxTriangles() int {
	if o.MaxTriangles > 0 {
		return o.MaxTriangles
	}
	return DefaultMaxTriangles
}

// Extract walks every cell of the field and emits the iso-surface mesh.
//
// The returned bool reports truncation: when the true triangle count
// exceeds the capacity, the mesh holds the triangles that fit and the flag
// is set so the caller can retry with a larger capacity or a coarser
// field. A mesh with zero vertices and zero triangles is a valid
// "no surface" result, not an error.
func Extract(v *field.Volume, opts Options) (*mesh.Mesh, bool, error) {
	for i := 0; i < 3; i++ {
		if v.Res[i] < 2 {
			return nil, false, fmt.Errorf("march: resolution %v has no cells", v.Res)
		}
	}

	maxTris := opts.maxTriangles()
	vertices := make([]float32, maxTris*9)
	normals := make([]float32, maxTris*9)
	indices := make([]uint32, maxTris*3)

	// reserved hands out triangle slots; committed tracks the highest slot
	// actually written. Once one reservation exceeds capacity every later
	// one does too (the counter only grows), so written triangles always
	// form a gap-free prefix.
	var reserved, committed atomic.Int64

	iso := opts.IsoLevel
	cellsZ := v.Res[2] - 1

	par.Ranges(opts.Workers, cellsZ, func(z0, z1 int) {
		ex := extractor{
			volume:   v,
			iso:      iso,
			maxTris:  int64(maxTris),
			vertices: vertices,
			normals:  normals,
			indices:  indices,
			reserved: &reserved,
			committed: &committed,
		}
		for z := z0; z < z1; z++ {
			for y := 0; y < v.Res[1]-1; y++ {
				for x := 0; x < v.Res[0]-1; x++ {
					ex.cell(x, y, z)
				}
			}
		}
	})

	count := committed.Load()
	out := &mesh.Mesh{
		Vertices: vertices[:count*9],
		Normals:  normals[:count*9],
		Indices:  indices[:count*3],
	}
	return out, reserved.Load() > int64(maxTris), nil
}

// extractor carries the per-worker view of the shared output buffers
type extractor struct {
	volume    *field.Volume
	iso       float64
	maxTris   int64
	vertices  []float32
	normals   []float32
	indices   []uint32
	reserved  *atomic.Int64
	committed *atomic.Int64
}

// cell processes one grid cell: build the 8-bit corner configuration, look
// up the crossed edges, interpolate their iso-crossing positions, and
// append the resulting triangles.
func (ex *extractor) cell(x, y, z int) {
	var values [8]float64
	cubeIndex := 0
	for i, off := range cornerOffsets {
		values[i] = float64(ex.volume.At(x+off[0], y+off[1], z+off[2]))
		if values[i] < ex.iso {
			cubeIndex |= 1 << i
		}
	}

	edges := edgeTable[cubeIndex]
	if edges == 0 {
		return
	}

	// Interpolate only the crossed edges
	var edgePoints [12]mgl64.Vec3
	for e := 0; e < 12; e++ {
		if edges&(1<<e) == 0 {
			continue
		}
		c0, c1 := edgeCorners[e][0], edgeCorners[e][1]
		p0 := ex.corner(x, y, z, c0)
		p1 := ex.corner(x, y, z, c1)
		edgePoints[e] = interpolate(ex.iso, p0, p1, values[c0], values[c1])
	}

	row := triTable[cubeIndex]
	nTris := int64(len(row) / 3)

	base := ex.reserved.Add(nTris) - nTris
	if base+nTris > ex.maxTris {
		// Over capacity: the counter stays advanced so the caller sees the
		// overflow, but nothing is written.
		return
	}

	for t := int64(0); t < nTris; t++ {
		for k := 0; k < 3; k++ {
			p := edgePoints[row[t*3+int64(k)]]
			slot := (base + t) * 3
			vi := (slot + int64(k)) * 3

			ex.vertices[vi] = float32(p.X())
			ex.vertices[vi+1] = float32(p.Y())
			ex.vertices[vi+2] = float32(p.Z())

			n := ex.normal(p, row[t*3:t*3+3], edgePoints)
			ex.normals[vi] = float32(n.X())
			ex.normals[vi+1] = float32(n.Y())
			ex.normals[vi+2] = float32(n.Z())

			ex.indices[slot+int64(k)] = uint32(slot + int64(k))
		}
	}

	storeMax(ex.committed, base+nTris)
}

// corner returns the world position of a cell corner sample
func (ex *extractor) corner(x, y, z, c int) mgl64.Vec3 {
	off := cornerOffsets[c]
	return ex.volume.SamplePosition(x+off[0], y+off[1], z+off[2])
}

// normal derives a vertex normal from the field gradient; a degenerate
// gradient falls back to the triangle's face normal rather than failing.
func (ex *extractor) normal(p mgl64.Vec3, tri []int8, edgePoints [12]mgl64.Vec3) mgl64.Vec3 {
	g := ex.volume.Gradient(p)
	if g.LenSqr() > 1e-20 {
		return g.Normalize()
	}

	a, b, c := edgePoints[tri[0]], edgePoints[tri[1]], edgePoints[tri[2]]
	face := b.Sub(a).Cross(c.Sub(a))
	if face.LenSqr() > 1e-20 {
		return face.Normalize()
	}
	return mgl64.Vec3{0, 0, 1}
}

// interpolate finds the iso-crossing position on an edge
func interpolate(iso float64, p0, p1 mgl64.Vec3, v0, v1 float64) mgl64.Vec3 {
	if math.Abs(v1-v0) < 1e-12 {
		return p0.Add(p1).Mul(0.5)
	}
	t := (iso - v0) / (v1 - v0)
	t = math.Max(0, math.Min(1, t))
	return p0.Add(p1.Sub(p0).Mul(t))
}

// storeMax raises the counter to at least v
func storeMax(counter *atomic.Int64, v int64) {
	for {
		current := counter.Load()
		if current >= v || counter.CompareAndSwap(current, v) {
			return
		}
	}
}
