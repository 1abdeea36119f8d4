package bvh

import (
	"testing"

	"github.com/akmonengine/chisel/mesh"
	"github.com/go-gl/mathgl/mgl64"
)

// collectLeafTriangles walks the linear index and returns every triangle
// referenced by a leaf, in traversal order
func collectLeafTriangles(t *testing.T, l *Linear) []Triangle {
	t.Helper()
	var out []Triangle

	var walk func(idx int32)
	walk = func(idx int32) {
		node := &l.Nodes[idx]
		if node.IsLeaf() {
			for i := int32(0); i < node.RightChildOrCount; i++ {
				out = append(out, l.Triangles[node.LeftOrTriangleOffset+i])
			}
			return
		}
		if node.LeftOrTriangleOffset != idx+1 {
			t.Fatalf("node %d: left child at %d, want adjacency %d", idx, node.LeftOrTriangleOffset, idx+1)
		}
		walk(node.LeftOrTriangleOffset)
		walk(-node.RightChildOrCount)
	}

	if len(l.Nodes) > 0 {
		walk(0)
	}
	return out
}

func triangleKey(t Triangle) [9]float64 {
	return [9]float64{
		t.A.X(), t.A.Y(), t.A.Z(),
		t.B.X(), t.B.Y(), t.B.Z(),
		t.C.X(), t.C.Y(), t.C.Z(),
	}
}

// TestFlattenFidelity checks that the leaf triangle set, unioned, equals
// the source triangle set exactly once each
func TestFlattenFidelity(t *testing.T) {
	for _, tc := range []struct {
		name  string
		count int
	}{
		{name: "Cube", count: 12},
		{name: "Random 257", count: 257},
	} {
		t.Run(tc.name, func(t *testing.T) {
			soup := randomSoup(tc.count, 8, int64(tc.count))
			if tc.name == "Cube" {
				soup = cubeSoup()
			}

			linear := Flatten(Build(soup, mgl64.Ident4(), Options{}))

			leaves := collectLeafTriangles(t, linear)
			if len(leaves) != soup.TriangleCount() {
				t.Fatalf("leaf union has %d triangles, want %d", len(leaves), soup.TriangleCount())
			}

			seen := make(map[[9]float64]int)
			for _, tri := range leaves {
				seen[triangleKey(tri)]++
			}
			for i := 0; i < soup.TriangleCount(); i++ {
				a, b, c := soup.Triangle(i)
				key := triangleKey(Triangle{A: a, B: b, C: c})
				if seen[key] == 0 {
					t.Errorf("source triangle %d missing from leaves", i)
				}
				seen[key]--
			}
		})
	}
}

func TestFlattenLeafEncoding(t *testing.T) {
	linear := Flatten(Build(randomSoup(100, 5, 7), mgl64.Ident4(), Options{}))

	// Leaf triangle ranges must tile the flat buffer in traversal order
	offset := int32(0)
	for i := range linear.Nodes {
		node := &linear.Nodes[i]
		if !node.IsLeaf() {
			continue
		}
		if node.LeftOrTriangleOffset != offset {
			t.Fatalf("leaf %d: triangle offset %d, want %d", i, node.LeftOrTriangleOffset, offset)
		}
		offset += node.RightChildOrCount
	}
	if int(offset) != len(linear.Triangles) {
		t.Errorf("leaf ranges cover %d triangles, buffer has %d", offset, len(linear.Triangles))
	}
}

// TestBuildLinearMatchesFlatten checks the array-range fast path produces
// the same layout as tree build + flatten
func TestBuildLinearMatchesFlatten(t *testing.T) {
	for _, tc := range []struct {
		name string
		seed int64
	}{
		{name: "Small", seed: 11},
		{name: "Large", seed: 13},
	} {
		t.Run(tc.name, func(t *testing.T) {
			count := 50
			if tc.name == "Large" {
				count = 800
			}
			soup := randomSoup(count, 10, tc.seed)

			viaTree := Flatten(Build(soup, mgl64.Ident4(), Options{}))
			direct := BuildLinear(soup, mgl64.Ident4(), Options{})

			if len(direct.Nodes) != len(viaTree.Nodes) {
				t.Fatalf("fast path has %d nodes, tree path %d", len(direct.Nodes), len(viaTree.Nodes))
			}
			if len(direct.Triangles) != len(viaTree.Triangles) {
				t.Fatalf("fast path has %d triangles, tree path %d", len(direct.Triangles), len(viaTree.Triangles))
			}

			for i := range direct.Nodes {
				a, b := direct.Nodes[i], viaTree.Nodes[i]
				if a.LeftOrTriangleOffset != b.LeftOrTriangleOffset || a.RightChildOrCount != b.RightChildOrCount {
					t.Errorf("node %d encoding differs: fast (%d, %d), tree (%d, %d)",
						i, a.LeftOrTriangleOffset, a.RightChildOrCount, b.LeftOrTriangleOffset, b.RightChildOrCount)
				}
				if !approxVec(a.BoundsMin, b.BoundsMin, 1e-12) || !approxVec(a.BoundsMax, b.BoundsMax, 1e-12) {
					t.Errorf("node %d bounds differ", i)
				}
			}
		})
	}
}

func TestBuildLinearEmptySoup(t *testing.T) {
	linear := BuildLinear(&mesh.Soup{}, mgl64.Ident4(), Options{})
	if !linear.Empty() || len(linear.Nodes) != 0 {
		t.Errorf("empty soup should produce a zero-length index")
	}
}
