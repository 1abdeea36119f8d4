// Package mesh holds the triangle data exchanged with the volumetric
// pipeline: the immutable triangle soup consumed when building a spatial
// index, and the vertex/normal/index triple produced by surface extraction.
package mesh

import "github.com/go-gl/mathgl/mgl64"

// Soup is an immutable triangle soup: a vertex array plus a flat index
// array whose length is a multiple of 3. The caller owns both slices and
// guarantees every index is in range; the pipeline only reads them.
type Soup struct {
	Vertices []mgl64.Vec3
	Indices  []uint32
}

// TriangleCount returns the number of index triples
func (s *Soup) TriangleCount() int {
	return len(s.Indices) / 3
}

// Triangle returns the three corner positions of triangle i
func (s *Soup) Triangle(i int) (a, b, c mgl64.Vec3) {
	a = s.Vertices[s.Indices[i*3]]
	b = s.Vertices[s.Indices[i*3+1]]
	c = s.Vertices[s.Indices[i*3+2]]
	return a, b, c
}

// Bounds returns the AABB of all vertices
func (s *Soup) Bounds() AABB {
	bounds := EmptyAABB()
	for _, v := range s.Vertices {
		bounds = bounds.ExtendPoint(v)
	}
	return bounds
}

// Mesh is the output of surface extraction. Vertices and Normals are
// parallel arrays of xyz triples; Indices holds triangle corner triples
// into them. No UV or adjacency data is produced here.
type Mesh struct {
	Vertices []float32
	Normals  []float32
	Indices  []uint32
}

// VertexCount returns the number of emitted vertices
func (m *Mesh) VertexCount() int {
	return len(m.Vertices) / 3
}

// TriangleCount returns the number of emitted triangles
func (m *Mesh) TriangleCount() int {
	return len(m.Indices) / 3
}

// Bounds returns the AABB of the emitted vertices
func (m *Mesh) Bounds() AABB {
	bounds := EmptyAABB()
	for i := 0; i+2 < len(m.Vertices); i += 3 {
		bounds = bounds.ExtendPoint(mgl64.Vec3{
			float64(m.Vertices[i]),
			float64(m.Vertices[i+1]),
			float64(m.Vertices[i+2]),
		})
	}
	return bounds
}
