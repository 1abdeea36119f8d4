package bvh

import (
	"sort"

	"github.com/akmonengine/chisel/mesh"
	"github.com/go-gl/mathgl/mgl64"
)

// Triangle is a world-space triangle stored by value in the flat triangle
// buffer, so the distance kernel needs no vertex-buffer indirection.
type Triangle struct {
	A, B, C mgl64.Vec3
}

// Bounds returns the triangle's AABB
func (t Triangle) Bounds() mesh.AABB {
	return mesh.EmptyAABB().ExtendPoint(t.A).ExtendPoint(t.B).ExtendPoint(t.C)
}

// Normal returns the (unnormalized) face normal
func (t Triangle) Normal() mgl64.Vec3 {
	return t.B.Sub(t.A).Cross(t.C.Sub(t.A))
}

// LinearNode is one fixed-size entry of the flattened index.
//
// Encoding: if RightChildOrCount > 0 the node is a leaf and
// LeftOrTriangleOffset indexes RightChildOrCount consecutive triangles in
// the flat buffer. If RightChildOrCount <= 0 the node is internal,
// LeftOrTriangleOffset is the left child's array index (always the
// immediate next node, the layout is depth-first pre-order) and
// -RightChildOrCount is the right child's index.
type LinearNode struct {
	BoundsMin            mgl64.Vec3
	BoundsMax            mgl64.Vec3
	LeftOrTriangleOffset int32
	RightChildOrCount    int32
}

// IsLeaf reports whether the node references triangles directly
func (n *LinearNode) IsLeaf() bool {
	return n.RightChildOrCount > 0
}

// Linear is the flattened, pointer-free index: a node array and a flat
// world-space triangle array, nothing else. An empty soup produces zero
// nodes and zero triangles; consumers treat that as "no geometry, skip".
type Linear struct {
	Nodes     []LinearNode
	Triangles []Triangle
}

// Empty reports whether the index holds no geometry
func (l *Linear) Empty() bool {
	return len(l.Triangles) == 0
}

// Bounds returns the root box, or an empty box for an empty index
func (l *Linear) Bounds() mesh.AABB {
	if len(l.Nodes) == 0 {
		return mesh.EmptyAABB()
	}
	return mesh.AABB{Min: l.Nodes[0].BoundsMin, Max: l.Nodes[0].BoundsMax}
}

// Flatten converts a pointer tree into the linear layout with a depth-first
// pre-order walk. A node's left child lands immediately after the node
// itself; leaf triangle data is appended to the flat buffer in traversal
// order and the leaf stores (offset, count) into it.
func Flatten(tree *Tree) *Linear {
	linear := &Linear{}
	if tree.Root == nil {
		return linear
	}

	linear.Nodes = make([]LinearNode, 0, nodeCount(tree.Root))
	linear.Triangles = make([]Triangle, 0, len(tree.Positions)/3)
	flattenNode(tree, tree.Root, linear)
	return linear
}

func nodeCount(n *Node) int {
	if n.IsLeaf() {
		return 1
	}
	return 1 + nodeCount(n.Left) + nodeCount(n.Right)
}

func flattenNode(tree *Tree, n *Node, linear *Linear) int32 {
	idx := int32(len(linear.Nodes))
	linear.Nodes = append(linear.Nodes, LinearNode{
		BoundsMin: n.Bounds.Min,
		BoundsMax: n.Bounds.Max,
	})

	if n.IsLeaf() {
		linear.Nodes[idx].LeftOrTriangleOffset = int32(len(linear.Triangles))
		linear.Nodes[idx].RightChildOrCount = int32(len(n.Triangles))
		for _, t := range n.Triangles {
			a, b, c := tree.Corners(t)
			linear.Triangles = append(linear.Triangles, Triangle{A: a, B: b, C: c})
		}
		return idx
	}

	flattenNode(tree, n.Left, linear) // lands at idx+1
	right := flattenNode(tree, n.Right, linear)
	linear.Nodes[idx].LeftOrTriangleOffset = idx + 1
	linear.Nodes[idx].RightChildOrCount = -right
	return idx
}

// BuildLinear is the fast path: it produces the exact same layout as
// Build followed by Flatten, but bisects array ranges top-down and writes
// nodes directly into the output, skipping the pointer tree entirely.
func BuildLinear(soup *mesh.Soup, world mgl64.Mat4, opts Options) *Linear {
	linear := &Linear{}

	count := soup.TriangleCount()
	if count == 0 {
		return linear
	}

	positions := worldPositions(soup, world)
	scratch := make([]Triangle, count)
	for i := range scratch {
		scratch[i] = Triangle{
			A: positions[i*3],
			B: positions[i*3+1],
			C: positions[i*3+2],
		}
	}

	linear.Triangles = make([]Triangle, 0, count)
	bisectRange(scratch, 0, linear, opts)
	return linear
}

// bisectRange emits the node for one triangle range, then recurses on the
// two halves. The range is sorted in place by centroid along the box's
// longest axis before the median cut, which reproduces the tree builder's
// partition exactly.
func bisectRange(tris []Triangle, depth int, linear *Linear, opts Options) int32 {
	bounds := mesh.EmptyAABB()
	for _, t := range tris {
		bounds = bounds.Union(t.Bounds())
	}

	idx := int32(len(linear.Nodes))
	linear.Nodes = append(linear.Nodes, LinearNode{
		BoundsMin: bounds.Min,
		BoundsMax: bounds.Max,
	})

	if len(tris) <= opts.leafSize() || depth >= opts.maxDepth() {
		linear.Nodes[idx].LeftOrTriangleOffset = int32(len(linear.Triangles))
		linear.Nodes[idx].RightChildOrCount = int32(len(tris))
		linear.Triangles = append(linear.Triangles, tris...)
		return idx
	}

	axis := bounds.LongestAxis()
	sort.Slice(tris, func(i, j int) bool {
		return triangleCentroidAxis(tris[i], axis) < triangleCentroidAxis(tris[j], axis)
	})

	mid := len(tris) / 2
	if mid == 0 {
		mid = 1
	}

	bisectRange(tris[:mid], depth+1, linear, opts)
	right := bisectRange(tris[mid:], depth+1, linear, opts)
	linear.Nodes[idx].LeftOrTriangleOffset = idx + 1
	linear.Nodes[idx].RightChildOrCount = -right
	return idx
}

func triangleCentroidAxis(t Triangle, axis int) float64 {
	return (t.A[axis] + t.B[axis] + t.C[axis]) / 3
}
