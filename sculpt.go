// Package chisel carves and deforms solid surfaces represented as triangle
// meshes through a volumetric pipeline: the source mesh is indexed into a
// linear BVH, converted into a dense signed-distance volume, edited with
// boolean and brush operators on that volume, and turned back into a
// triangle mesh by marching cubes.
//
// The index is only rebuilt when the source mesh changes; edits after that
// point touch nothing but the field. A field being edited must not be
// extracted concurrently: callers serialize "mutate" and "extract" phases.
package chisel

import (
	"github.com/akmonengine/chisel/bvh"
	"github.com/akmonengine/chisel/field"
	"github.com/akmonengine/chisel/march"
	"github.com/akmonengine/chisel/mesh"
	"github.com/go-gl/mathgl/mgl64"
)

const DEFAULT_WORKERS = 1

// Sculptor is an editing session over one signed-distance volume.
type Sculptor struct {
	// Volume is the field being edited
	Volume *field.Volume
	// Index is the linear BVH over the current source mesh
	Index *bvh.Linear
	// Workers is the worker count for all parallel kernels
	Workers int
	// ChunkZ is the Z-slab batch size for field generation
	ChunkZ int
	// Band is the narrow-band half-width (0 uses the field default)
	Band float64
	// SolidInterior keeps true negative distances at any interior depth
	SolidInterior bool

	Events Events
}

// NewSculptor creates a session over a fresh, empty volume covering the
// given world box at the given per-axis resolution.
func NewSculptor(bounds mesh.AABB, res [3]int) (*Sculptor, error) {
	volume, err := field.New(bounds, res, 0)
	if err != nil {
		return nil, err
	}
	// Empty solid: everything saturated positive at the default band
	volume.Fill(float32(field.DefaultBandVoxels * volume.MaxVoxelSize()))

	return &Sculptor{
		Volume: volume,
		Index:  &bvh.Linear{},
		Events: NewEvents(),
	}, nil
}

func (s *Sculptor) workers() int {
	return max(DEFAULT_WORKERS, s.Workers)
}

// SetMesh replaces the source mesh, rebuilding the linear index over the
// soup transformed to world space. The index stores pre-transformed
// positions: if the source moves later, SetMesh must be called again.
func (s *Sculptor) SetMesh(soup *mesh.Soup, world mgl64.Mat4) {
	s.Index = bvh.BuildLinear(soup, world, bvh.Options{})
	s.Events.emit(IndexRebuiltEvent{Triangles: len(s.Index.Triangles)})
	s.Events.flush()
}

// Generate populates the volume with signed distances to the indexed
// surface, overwriting any previous edits.
func (s *Sculptor) Generate() error {
	opts := field.GenerateOptions{
		Band:          s.Band,
		SolidInterior: s.SolidInterior,
		Workers:       s.workers(),
		ChunkZ:        s.ChunkZ,
	}
	if err := field.Generate(s.Volume, s.Index, opts); err != nil {
		return err
	}

	s.Events.emit(FieldGeneratedEvent{Band: opts.Band})
	s.Events.flush()
	return nil
}

// Union merges a tool field into the volume, with optional smooth blending
func (s *Sculptor) Union(tool *field.Volume, blend float64) error {
	return s.combine(tool, field.OpUnion, blend)
}

// Subtract carves a tool field out of the volume
func (s *Sculptor) Subtract(tool *field.Volume, blend float64) error {
	return s.combine(tool, field.OpSubtract, blend)
}

// Intersect keeps only the overlap of the volume and a tool field
func (s *Sculptor) Intersect(tool *field.Volume, blend float64) error {
	return s.combine(tool, field.OpIntersect, blend)
}

func (s *Sculptor) combine(tool *field.Volume, op field.Op, blend float64) error {
	opts := field.CSGOptions{Blend: blend, Workers: s.workers()}
	if err := field.Combine(s.Volume, tool, op, opts); err != nil {
		return err
	}

	s.Events.emit(FieldEditedEvent{})
	s.Events.flush()
	return nil
}

// ApplyBrush runs a single-point deformation on the volume
func (s *Sculptor) ApplyBrush(b field.Brush) {
	field.Apply(s.Volume, b, s.workers())
	s.Events.emit(FieldEditedEvent{})
	s.Events.flush()
}

// ApplyStroke runs a multi-point deformation stroke on the volume
func (s *Sculptor) ApplyStroke(st field.Stroke) {
	st.Apply(s.Volume, s.workers())
	s.Events.emit(FieldEditedEvent{})
	s.Events.flush()
}

// Extract reconstructs the triangle mesh of the volume's zero iso-surface.
// maxTriangles bounds the output capacity (0 uses the march default); the
// bool reports truncation against that capacity.
func (s *Sculptor) Extract(maxTriangles int) (*mesh.Mesh, bool, error) {
	out, truncated, err := march.Extract(s.Volume, march.Options{
		MaxTriangles: maxTriangles,
		Workers:      s.workers(),
	})
	if err != nil {
		return nil, false, err
	}

	s.Events.emit(MeshExtractedEvent{Mesh: out})
	if truncated {
		s.Events.emit(MeshTruncatedEvent{Capacity: maxTriangles})
	}
	s.Events.flush()
	return out, truncated, nil
}

// Checkpoint serializes the current volume for undo history or export
func (s *Sculptor) Checkpoint() []byte {
	return EncodeVolume(s.Volume)
}

// Restore replaces the current volume with a serialized checkpoint. The
// checkpoint must describe the same bounds and resolution layout the
// session was created with only if the caller relies on tool volumes
// aligned to the old grid; the decoded volume is otherwise self-contained.
func (s *Sculptor) Restore(data []byte) error {
	volume, err := DecodeVolume(data)
	if err != nil {
		return err
	}

	s.Volume = volume
	s.Events.emit(FieldEditedEvent{})
	s.Events.flush()
	return nil
}
