package main

import (
	"fmt"
	"math"

	"github.com/akmonengine/chisel"
	"github.com/akmonengine/chisel/field"
	"github.com/akmonengine/chisel/mesh"
	"github.com/go-gl/mathgl/mgl64"
)

func main() {
	bounds := mesh.AABB{Min: mgl64.Vec3{-2, -2, -2}, Max: mgl64.Vec3{2, 2, 2}}

	sculptor, err := chisel.NewSculptor(bounds, [3]int{64, 64, 64})
	if err != nil {
		panic(err)
	}
	sculptor.Workers = 4

	sculptor.Events.Subscribe(chisel.MESH_TRUNCATED, func(event chisel.Event) {
		e := event.(chisel.MeshTruncatedEvent)
		fmt.Printf("mesh truncated at %d triangles, retry with more capacity\n", e.Capacity)
	})

	// Base shape: a unit sphere mesh
	sculptor.SetMesh(sphereSoup(1.0, 32, 16), mgl64.Ident4())
	if err := sculptor.Generate(); err != nil {
		panic(err)
	}

	// Carve a smaller sphere out of the upper hemisphere
	toolBounds := mesh.AABB{Min: mgl64.Vec3{-0.8, 0.2, -0.8}, Max: mgl64.Vec3{0.8, 1.8, 0.8}}
	tool, err := field.New(toolBounds, [3]int{32, 32, 32}, 0)
	if err != nil {
		panic(err)
	}
	fillSphere(tool, mgl64.Vec3{0, 1, 0}, 0.6)

	if err := sculptor.Subtract(tool, 0.05); err != nil {
		panic(err)
	}

	// A quick pull stroke across the equator
	sculptor.ApplyStroke(field.Stroke{
		Brush: field.Brush{Kind: field.BrushPull, Radius: 0.4, Strength: 0.08},
		Points: []mgl64.Vec3{
			{-1, 0, 0},
			{-0.5, 0, 0.8},
			{0.5, 0, 0.8},
			{1, 0, 0},
		},
	})

	out, truncated, err := sculptor.Extract(0)
	if err != nil {
		panic(err)
	}

	fmt.Printf("extracted %d vertices, %d triangles (truncated: %v)\n",
		out.VertexCount(), out.TriangleCount(), truncated)
	fmt.Printf("mesh bounds: %v\n", out.Bounds())
}

// sphereSoup builds a UV sphere triangle soup
func sphereSoup(radius float64, segments, rings int) *mesh.Soup {
	soup := &mesh.Soup{}

	for r := 0; r <= rings; r++ {
		phi := math.Pi * float64(r) / float64(rings)
		for s := 0; s <= segments; s++ {
			theta := 2 * math.Pi * float64(s) / float64(segments)
			soup.Vertices = append(soup.Vertices, mgl64.Vec3{
				radius * math.Sin(phi) * math.Cos(theta),
				radius * math.Cos(phi),
				radius * math.Sin(phi) * math.Sin(theta),
			})
		}
	}

	stride := uint32(segments + 1)
	for r := 0; r < rings; r++ {
		for s := 0; s < segments; s++ {
			a := uint32(r)*stride + uint32(s)
			b := a + stride
			soup.Indices = append(soup.Indices,
				a, b, a+1,
				a+1, b, b+1,
			)
		}
	}
	return soup
}

// fillSphere writes an analytic sphere SDF into a tool volume
func fillSphere(v *field.Volume, center mgl64.Vec3, radius float64) {
	for z := 0; z < v.Res[2]; z++ {
		for y := 0; y < v.Res[1]; y++ {
			for x := 0; x < v.Res[0]; x++ {
				p := v.SamplePosition(x, y, z)
				v.Set(x, y, z, float32(p.Sub(center).Len()-radius))
			}
		}
	}
}
