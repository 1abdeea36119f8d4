package bvh

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// traversalStackSize is the initial iterative-stack capacity. The builder
// bounds the tree height by MaxDepth, so this rarely grows.
const traversalStackSize = 64

// NearestResult describes the closest triangle found by a point query
type NearestResult struct {
	// Triangle is the index of the closest triangle in the flat buffer
	Triangle int32
	// Point is the closest point on that triangle
	Point mgl64.Vec3
	// DistanceSq is the squared distance from the query point to Point
	DistanceSq float64
}

// Nearest finds the triangle closest to p with an iterative stack walk over
// the linear node array, pruning every subtree whose box lower bound cannot
// beat the best distance found so far. The near child is visited first so
// the bound tightens early.
//
// Returns false for an empty index.
func (l *Linear) Nearest(p mgl64.Vec3) (NearestResult, bool) {
	best := NearestResult{Triangle: -1, DistanceSq: math.Inf(1)}
	if l.Empty() {
		return best, false
	}

	stack := make([]int32, 1, traversalStackSize)
	stack[0] = 0

	for len(stack) > 0 {
		node := &l.Nodes[stack[len(stack)-1]]
		stack = stack[:len(stack)-1]

		if boxDistanceSq(node, p) >= best.DistanceSq {
			continue
		}

		if node.IsLeaf() {
			offset := node.LeftOrTriangleOffset
			for i := int32(0); i < node.RightChildOrCount; i++ {
				closest := l.Triangles[offset+i].ClosestPointOn(p)
				distSq := p.Sub(closest).LenSqr()
				if distSq < best.DistanceSq {
					best = NearestResult{Triangle: offset + i, Point: closest, DistanceSq: distSq}
				}
			}
			continue
		}

		left := node.LeftOrTriangleOffset
		right := -node.RightChildOrCount
		leftDist := boxDistanceSq(&l.Nodes[left], p)
		rightDist := boxDistanceSq(&l.Nodes[right], p)

		// Push far child first so the near one is processed next
		if leftDist <= rightDist {
			left, right = right, left
			leftDist, rightDist = rightDist, leftDist
		}
		if leftDist < best.DistanceSq {
			stack = append(stack, left)
		}
		if rightDist < best.DistanceSq {
			stack = append(stack, right)
		}
	}

	return best, best.Triangle >= 0
}

// boxDistanceSq is the squared distance from p to the node's box, 0 inside
func boxDistanceSq(n *LinearNode, p mgl64.Vec3) float64 {
	sq := 0.0
	for i := 0; i < 3; i++ {
		if d := n.BoundsMin[i] - p[i]; d > 0 {
			sq += d * d
		} else if d := p[i] - n.BoundsMax[i]; d > 0 {
			sq += d * d
		}
	}
	return sq
}
