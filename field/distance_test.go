package field

import (
	"math"
	"testing"

	"github.com/akmonengine/chisel/bvh"
	"github.com/akmonengine/chisel/mesh"
	"github.com/go-gl/mathgl/mgl64"
)

// testCube returns a unit cube centered at the origin with outward winding
func testCube() *mesh.Soup {
	h := 0.5
	return &mesh.Soup{
		Vertices: []mgl64.Vec3{
			{-h, -h, -h}, {h, -h, -h}, {h, h, -h}, {-h, h, -h},
			{-h, -h, h}, {h, -h, h}, {h, h, h}, {-h, h, h},
		},
		Indices: []uint32{
			0, 2, 1, 0, 3, 2,
			4, 5, 6, 4, 6, 7,
			0, 4, 7, 0, 7, 3,
			1, 2, 6, 1, 6, 5,
			0, 1, 5, 0, 5, 4,
			3, 7, 6, 3, 6, 2,
		},
	}
}

// boxDistance is the analytic signed distance to an axis-aligned box of the
// given half extent, centered at the origin
func boxDistance(p mgl64.Vec3, half float64) float64 {
	q := mgl64.Vec3{
		math.Abs(p.X()) - half,
		math.Abs(p.Y()) - half,
		math.Abs(p.Z()) - half,
	}
	outside := mgl64.Vec3{
		math.Max(q.X(), 0),
		math.Max(q.Y(), 0),
		math.Max(q.Z(), 0),
	}
	inside := math.Min(math.Max(q.X(), math.Max(q.Y(), q.Z())), 0)
	return outside.Len() + inside
}

func TestGenerateEmptyIndex(t *testing.T) {
	v, err := New(unitBounds(), [3]int{8, 8, 8}, -1)
	if err != nil {
		t.Fatal(err)
	}

	opts := GenerateOptions{Band: 0.5}
	if err := Generate(v, &bvh.Linear{}, opts); err != nil {
		t.Fatal(err)
	}

	for i, value := range v.Data {
		if value != 0.5 {
			t.Fatalf("sample %d = %v, want +band for an empty index", i, value)
		}
	}
}

func TestGenerateCubeDistances(t *testing.T) {
	v, err := New(unitBounds(), [3]int{32, 32, 32}, 0)
	if err != nil {
		t.Fatal(err)
	}
	index := bvh.BuildLinear(testCube(), mgl64.Ident4(), bvh.Options{})

	const band = 0.25
	if err := Generate(v, index, GenerateOptions{Band: band, Workers: 4}); err != nil {
		t.Fatal(err)
	}

	checked := 0
	for z := 0; z < v.Res[2]; z++ {
		for y := 0; y < v.Res[1]; y++ {
			for x := 0; x < v.Res[0]; x++ {
				p := v.SamplePosition(x, y, z)
				analytic := boxDistance(p, 0.5)
				got := float64(v.At(x, y, z))

				switch {
				case analytic > band:
					if math.Abs(got-band) > 1e-6 {
						t.Fatalf("sample %v outside the band = %v, want +%v", p, got, band)
					}
				case analytic < -band:
					if math.Abs(got+band) > 1e-6 {
						t.Fatalf("sample %v deep inside = %v, want -%v", p, got, band)
					}
				default:
					// Within the band the value is the true distance; the
					// triangulated faces are exact planes of the box
					if math.Abs(got-analytic) > 1e-6 {
						t.Fatalf("sample %v = %v, analytic %v", p, got, analytic)
					}
					checked++
				}
			}
		}
	}
	if checked == 0 {
		t.Fatal("no samples fell within the band")
	}
}

func TestGenerateSolidInterior(t *testing.T) {
	index := bvh.BuildLinear(testCube(), mgl64.Ident4(), bvh.Options{})
	const band = 0.25

	saturated, err := New(unitBounds(), [3]int{32, 32, 32}, 0)
	if err != nil {
		t.Fatal(err)
	}
	if err := Generate(saturated, index, GenerateOptions{Band: band}); err != nil {
		t.Fatal(err)
	}

	solid := saturated.Clone()
	if err := Generate(solid, index, GenerateOptions{Band: band, SolidInterior: true}); err != nil {
		t.Fatal(err)
	}

	deepSamples := 0
	for z := 0; z < solid.Res[2]; z++ {
		for y := 0; y < solid.Res[1]; y++ {
			for x := 0; x < solid.Res[0]; x++ {
				p := solid.SamplePosition(x, y, z)
				analytic := boxDistance(p, 0.5)
				if analytic >= -band {
					continue
				}
				deepSamples++

				if got := float64(saturated.At(x, y, z)); math.Abs(got+band) > 1e-6 {
					t.Fatalf("deep sample %v saturated value = %v, want -%v", p, got, band)
				}
				if got := float64(solid.At(x, y, z)); math.Abs(got-analytic) > 1e-6 {
					t.Fatalf("deep sample %v solid value = %v, want true depth %v", p, got, analytic)
				}
			}
		}
	}
	if deepSamples == 0 {
		t.Fatal("no samples were deeper than the band")
	}
}

func TestGenerateWorkerCountIsInvisible(t *testing.T) {
	index := bvh.BuildLinear(testCube(), mgl64.Ident4(), bvh.Options{})

	serial, err := New(unitBounds(), [3]int{16, 16, 16}, 0)
	if err != nil {
		t.Fatal(err)
	}
	if err := Generate(serial, index, GenerateOptions{Workers: 1, ChunkZ: 16}); err != nil {
		t.Fatal(err)
	}

	parallel := serial.Clone()
	parallel.Fill(0)
	if err := Generate(parallel, index, GenerateOptions{Workers: 8, ChunkZ: 2}); err != nil {
		t.Fatal(err)
	}

	for i := range serial.Data {
		if serial.Data[i] != parallel.Data[i] {
			t.Fatalf("sample %d differs between worker counts: %v vs %v", i, serial.Data[i], parallel.Data[i])
		}
	}
}
