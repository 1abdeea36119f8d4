package field

import (
	"math"
	"testing"

	"github.com/akmonengine/chisel/mesh"
	"github.com/go-gl/mathgl/mgl64"
)

// fillSphere writes the analytic sphere distance into every sample
func fillSphere(v *Volume, center mgl64.Vec3, radius float64) {
	for z := 0; z < v.Res[2]; z++ {
		for y := 0; y < v.Res[1]; y++ {
			for x := 0; x < v.Res[0]; x++ {
				p := v.SamplePosition(x, y, z)
				v.Set(x, y, z, float32(p.Sub(center).Len()-radius))
			}
		}
	}
}

func newSphereVolume(t *testing.T, center mgl64.Vec3, radius float64) *Volume {
	t.Helper()
	v, err := New(unitBounds(), [3]int{16, 16, 16}, 0)
	if err != nil {
		t.Fatal(err)
	}
	fillSphere(v, center, radius)
	return v
}

func TestCombineRejectsZeroSizeTool(t *testing.T) {
	dst := newSphereVolume(t, mgl64.Vec3{}, 0.5)
	tool := dst.Clone()
	tool.Bounds.Max[1] = tool.Bounds.Min[1]

	if err := Combine(dst, tool, OpUnion, CSGOptions{}); err == nil {
		t.Errorf("Combine() should reject a zero-size tool box")
	}
}

func TestCombineUnionWithEmptyToolIsIdentity(t *testing.T) {
	dst := newSphereVolume(t, mgl64.Vec3{}, 0.5)
	before := dst.Clone()

	tool, err := New(unitBounds(), [3]int{8, 8, 8}, farOutside)
	if err != nil {
		t.Fatal(err)
	}
	if err := Combine(dst, tool, OpUnion, CSGOptions{Workers: 4}); err != nil {
		t.Fatal(err)
	}

	for i := range dst.Data {
		if dst.Data[i] != before.Data[i] {
			t.Fatalf("sample %d changed under union with an empty tool: %v vs %v", i, dst.Data[i], before.Data[i])
		}
	}
}

func TestCombineSubtractSelfLeavesNothingInside(t *testing.T) {
	dst := newSphereVolume(t, mgl64.Vec3{}, 0.5)
	tool := dst.Clone()

	if err := Combine(dst, tool, OpSubtract, CSGOptions{}); err != nil {
		t.Fatal(err)
	}

	for i, value := range dst.Data {
		if value < 0 {
			t.Fatalf("sample %d = %v, subtracting a field from itself must leave no interior", i, value)
		}
	}
}

func TestCombineOperators(t *testing.T) {
	a := newSphereVolume(t, mgl64.Vec3{-0.2, 0, 0}, 0.4)
	b := newSphereVolume(t, mgl64.Vec3{0.2, 0, 0}, 0.4)

	tests := []struct {
		name string
		op   Op
		want func(a, b float32) float32
	}{
		{name: "Union", op: OpUnion, want: func(a, b float32) float32 { return min(a, b) }},
		{name: "Subtract", op: OpSubtract, want: func(a, b float32) float32 { return max(a, -b) }},
		{name: "Intersect", op: OpIntersect, want: func(a, b float32) float32 { return max(a, b) }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dst := a.Clone()
			if err := Combine(dst, b, tt.op, CSGOptions{Workers: 2}); err != nil {
				t.Fatal(err)
			}

			for z := 0; z < dst.Res[2]; z++ {
				for y := 0; y < dst.Res[1]; y++ {
					for x := 0; x < dst.Res[0]; x++ {
						// Sample positions coincide across a and b, so the
						// trilinear read reproduces b's stored value
						want := tt.want(a.At(x, y, z), b.At(x, y, z))
						got := dst.At(x, y, z)
						if math.Abs(float64(got-want)) > 1e-5 {
							t.Fatalf("sample (%d,%d,%d) = %v, want %v", x, y, z, got, want)
						}
					}
				}
			}
		})
	}
}

func TestCombineToolCoverage(t *testing.T) {
	dst := newSphereVolume(t, mgl64.Vec3{}, 0.6)
	before := dst.Clone()

	// Tool covers only the +X half of the target at its own resolution
	toolBounds := mesh.AABB{Min: mgl64.Vec3{0, -1, -1}, Max: mgl64.Vec3{1, 1, 1}}
	tool, err := New(toolBounds, [3]int{16, 32, 32}, 0)
	if err != nil {
		t.Fatal(err)
	}
	tool.Fill(-1)

	if err := Combine(dst, tool, OpSubtract, CSGOptions{}); err != nil {
		t.Fatal(err)
	}

	for z := 0; z < dst.Res[2]; z++ {
		for y := 0; y < dst.Res[1]; y++ {
			for x := 0; x < dst.Res[0]; x++ {
				p := dst.SamplePosition(x, y, z)
				got := dst.At(x, y, z)
				if toolBounds.ContainsPoint(p) {
					if got < 1 {
						t.Fatalf("covered sample %v = %v, subtracting a solid tool must carve it out", p, got)
					}
				} else if got != before.At(x, y, z) {
					t.Fatalf("uncovered sample %v changed: %v vs %v", p, got, before.At(x, y, z))
				}
			}
		}
	}
}

func TestSmoothKernels(t *testing.T) {
	const k = 0.1

	t.Run("Far apart equals hard min", func(t *testing.T) {
		if got := smoothMin(0.5, -0.5, k); got != -0.5 {
			t.Errorf("smoothMin(0.5, -0.5, %v) = %v, want -0.5", k, got)
		}
	})

	t.Run("Equal inputs blend below min", func(t *testing.T) {
		got := smoothMin(0.2, 0.2, k)
		want := float32(0.2 - k*0.25)
		if math.Abs(float64(got-want)) > 1e-6 {
			t.Errorf("smoothMin(0.2, 0.2, %v) = %v, want %v", k, got, want)
		}
	})

	t.Run("Max mirrors min", func(t *testing.T) {
		got := smoothMax(0.2, 0.2, k)
		want := -smoothMin(-0.2, -0.2, k)
		if got != want {
			t.Errorf("smoothMax(0.2, 0.2, %v) = %v, want %v", k, got, want)
		}
	})
}
