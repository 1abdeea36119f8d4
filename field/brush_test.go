package field

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
)

func TestApplyBrushLocality(t *testing.T) {
	v, err := New(unitBounds(), [3]int{16, 16, 16}, 0.3)
	if err != nil {
		t.Fatal(err)
	}
	before := v.Clone()

	b := Brush{Kind: BrushPush, Center: mgl64.Vec3{0.2, 0, 0}, Radius: 0.3, Strength: 0.5}
	Apply(v, b, 4)

	touched := 0
	for z := 0; z < v.Res[2]; z++ {
		for y := 0; y < v.Res[1]; y++ {
			for x := 0; x < v.Res[0]; x++ {
				p := v.SamplePosition(x, y, z)
				d := p.Sub(b.Center).Len()
				changed := v.At(x, y, z) != before.At(x, y, z)

				if d > b.Radius && changed {
					t.Fatalf("sample %v at distance %v > radius changed", p, d)
				}
				if changed {
					touched++
				}
			}
		}
	}
	if touched == 0 {
		t.Fatal("brush changed no samples inside its support")
	}
}

func TestApplyBrushDirection(t *testing.T) {
	tests := []struct {
		name string
		kind BrushKind
		sign float64
	}{
		{name: "Push raises values", kind: BrushPush, sign: 1},
		{name: "Pull lowers values", kind: BrushPull, sign: -1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, err := New(unitBounds(), [3]int{16, 16, 16}, 0)
			if err != nil {
				t.Fatal(err)
			}

			Apply(v, Brush{Kind: tt.kind, Center: mgl64.Vec3{}, Radius: 0.5, Strength: 0.4}, 1)

			center := float64(v.Sample(mgl64.Vec3{}))
			if center*tt.sign <= 0 {
				t.Errorf("center value = %v, want sign %v", center, tt.sign)
			}

			// Falloff: the sample nearest the center moved the most
			nearDelta := math.Abs(float64(v.At(8, 8, 8)))
			farDelta := math.Abs(float64(v.At(11, 8, 8)))
			if farDelta >= nearDelta {
				t.Errorf("falloff not monotonic: near %v, far %v", nearDelta, farDelta)
			}
		})
	}
}

func TestApplyBrushZeroRadius(t *testing.T) {
	v, err := New(unitBounds(), [3]int{8, 8, 8}, 0.1)
	if err != nil {
		t.Fatal(err)
	}
	before := v.Clone()

	Apply(v, Brush{Kind: BrushPull, Center: mgl64.Vec3{}, Radius: 0, Strength: 1}, 1)

	for i := range v.Data {
		if v.Data[i] != before.Data[i] {
			t.Fatal("zero-radius brush must be a no-op")
		}
	}
}

func TestApplyBrushSmooth(t *testing.T) {
	v, err := New(unitBounds(), [3]int{16, 16, 16}, 0)
	if err != nil {
		t.Fatal(err)
	}
	v.Set(8, 8, 8, 10)

	Apply(v, Brush{Kind: BrushSmooth, Center: v.SamplePosition(8, 8, 8), Radius: 0.4, Strength: 0.8}, 2)

	spike := v.At(8, 8, 8)
	if spike >= 10 || spike < 0 {
		t.Errorf("smoothing left the spike at %v, want a value pulled toward the neighborhood", spike)
	}

	// Neighbors blend toward a snapshot that still held the spike, so they
	// rise; they must not overshoot the spike itself
	neighbor := v.At(9, 8, 8)
	if neighbor <= 0 || neighbor >= spike {
		t.Errorf("neighbor = %v after smoothing, spike = %v", neighbor, spike)
	}
}

func TestStrokeEndpointAttenuation(t *testing.T) {
	base := Brush{Kind: BrushPush, Radius: 0.2, Strength: 0.6}

	// Centers a whole number of voxels apart, so each dab sees the same
	// sample pattern and the deltas compare exactly
	points := []mgl64.Vec3{{-0.625, 0, 0}, {0, 0, 0}, {0.625, 0, 0}}

	v, err := New(unitBounds(), [3]int{32, 32, 32}, 0)
	if err != nil {
		t.Fatal(err)
	}
	Stroke{Brush: base, Points: points}.Apply(v, 2)

	// Reference single dab at full strength, far from the stroke supports
	ref, err := New(unitBounds(), [3]int{32, 32, 32}, 0)
	if err != nil {
		t.Fatal(err)
	}
	Apply(ref, Brush{Kind: base.Kind, Center: points[1], Radius: base.Radius, Strength: base.Strength}, 1)

	full := float64(ref.Sample(points[1]))
	middle := float64(v.Sample(points[1]))
	endpoint := float64(v.Sample(points[0]))

	if math.Abs(middle-full) > 1e-6 {
		t.Errorf("middle dab = %v, want full strength %v", middle, full)
	}
	if math.Abs(endpoint-full*DefaultEndpointScale) > 1e-6 {
		t.Errorf("endpoint dab = %v, want %v", endpoint, full*DefaultEndpointScale)
	}
}
