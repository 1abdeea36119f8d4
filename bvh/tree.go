// Package bvh builds a bounding-volume hierarchy over a triangle soup and
// flattens it into a pointer-free linear index for iterative traversal.
//
// The linear form is the only representation consumed by distance queries:
// a node array plus a flat world-space triangle array, addressed by integer
// offsets so the whole index can be handed to any parallel executor as
// opaque bytes.
//
// References:
//   - Wald: "On fast Construction of SAH-based Bounding Volume Hierarchies" (2007)
//   - wikipedia.org/wiki/Bounding_volume_hierarchy
package bvh

import (
	"sort"

	"github.com/akmonengine/chisel/mesh"
	"github.com/go-gl/mathgl/mgl64"
)

const (
	// DefaultLeafSize is the triangle-count threshold under which a node
	// becomes a leaf.
	DefaultLeafSize = 4

	// DefaultMaxDepth bounds the tree height regardless of triangle count.
	DefaultMaxDepth = 25
)

// Options controls tree construction
type Options struct {
	// LeafSize is the maximum triangle count per leaf (0 uses DefaultLeafSize)
	LeafSize int
	// MaxDepth is the maximum tree height (0 uses DefaultMaxDepth)
	MaxDepth int
}

func (o Options) leafSize() int {
	if o.LeafSize <= 0 {
		return DefaultLeafSize
	}
	return o.LeafSize
}

func (o Options) maxDepth() int {
	if o.MaxDepth <= 0 {
		return DefaultMaxDepth
	}
	return o.MaxDepth
}

// Node is a tree-form BVH node: an AABB plus either two children (internal)
// or a list of triangle indices (leaf). The box is always the tight union of
// the member triangles' boxes.
type Node struct {
	Bounds    mesh.AABB
	Left      *Node
	Right     *Node
	Triangles []int32 // leaf only
}

// IsLeaf reports whether the node holds triangles directly
func (n *Node) IsLeaf() bool {
	return n.Left == nil
}

// Tree is the pointer form of the index: scaffolding for flattening, or for
// CPU-side point queries by callers who retain it. Triangle corner positions
// are resolved to world space once, up front, so the sort comparator and all
// later distance math never touch the source vertex buffer again.
type Tree struct {
	Root      *Node
	Positions []mgl64.Vec3 // 3 world-space corners per triangle
}

// Corners returns the world-space corners of triangle i
func (t *Tree) Corners(i int32) (a, b, c mgl64.Vec3) {
	return t.Positions[i*3], t.Positions[i*3+1], t.Positions[i*3+2]
}

// Build constructs a BVH over the soup's triangles, transformed to world
// space by the given affine matrix. An empty soup yields a Tree with a nil
// Root; downstream consumers treat it as "no geometry".
func Build(soup *mesh.Soup, world mgl64.Mat4, opts Options) *Tree {
	tree := &Tree{Positions: worldPositions(soup, world)}

	count := soup.TriangleCount()
	if count == 0 {
		return tree
	}

	order := make([]int32, count)
	for i := range order {
		order[i] = int32(i)
	}

	tree.Root = buildNode(tree, order, 0, opts)
	return tree
}

// worldPositions resolves every triangle corner to world space once
func worldPositions(soup *mesh.Soup, world mgl64.Mat4) []mgl64.Vec3 {
	positions := make([]mgl64.Vec3, 0, len(soup.Indices))
	for _, idx := range soup.Indices {
		p := world.Mul4x1(soup.Vertices[idx].Vec4(1)).Vec3()
		positions = append(positions, p)
	}
	return positions
}

// buildNode recursively partitions the active triangle set. Termination:
// set size ≤ leaf threshold, or max depth reached. Split: longest axis of
// the node box, triangles sorted by centroid, cut at the median with at
// least one triangle per side so duplicate positions cannot recurse forever.
func buildNode(tree *Tree, order []int32, depth int, opts Options) *Node {
	node := &Node{Bounds: trianglesBounds(tree, order)}

	if len(order) <= opts.leafSize() || depth >= opts.maxDepth() {
		node.Triangles = order
		return node
	}

	axis := node.Bounds.LongestAxis()
	sort.Slice(order, func(i, j int) bool {
		return centroidAxis(tree, order[i], axis) < centroidAxis(tree, order[j], axis)
	})

	mid := len(order) / 2
	if mid == 0 {
		mid = 1
	}

	node.Left = buildNode(tree, order[:mid], depth+1, opts)
	node.Right = buildNode(tree, order[mid:], depth+1, opts)
	return node
}

// trianglesBounds computes the union AABB of the member triangles
func trianglesBounds(tree *Tree, order []int32) mesh.AABB {
	bounds := mesh.EmptyAABB()
	for _, t := range order {
		a, b, c := tree.Corners(t)
		bounds = bounds.ExtendPoint(a).ExtendPoint(b).ExtendPoint(c)
	}
	return bounds
}

func centroidAxis(tree *Tree, t int32, axis int) float64 {
	a, b, c := tree.Corners(t)
	return (a[axis] + b[axis] + c[axis]) / 3
}
