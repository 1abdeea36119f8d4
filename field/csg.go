package field

import (
	"fmt"
	"math"

	"github.com/akmonengine/chisel/internal/par"
)

// farOutside is the tool value for target samples the tool volume does not
// cover at all: far outside any solid, sign-correct and large enough to be
// the identity for union and subtraction.
const farOutside float32 = 1e6

// Op selects a boolean composition operator. The kind is dispatched once
// per batch; the per-sample body is the selected closure, not a branch.
type Op int

const (
	// OpUnion keeps the combined solid: min(A, B)
	OpUnion Op = iota
	// OpSubtract removes the tool from the target: max(A, -B)
	OpSubtract
	// OpIntersect keeps the overlap: max(A, B)
	OpIntersect
)

// CSGOptions controls boolean composition
type CSGOptions struct {
	// Blend is the smooth-blend radius in world units; 0 gives hard edges
	Blend float64
	// Workers is the number of concurrent sample workers (0 means 1)
	Workers int
}

// Combine composes the tool field into the target field in place. The tool
// may have different bounds and resolution: its value at each target sample
// position is resolved through its own box/resolution mapping with
// trilinear interpolation, and positions the tool box does not cover read
// as far-outside. Callers needing a non-destructive preview must clone the
// target first.
func Combine(dst, tool *Volume, op Op, opts CSGOptions) error {
	for i := 0; i < 3; i++ {
		if tool.Bounds.Max[i] <= tool.Bounds.Min[i] {
			return fmt.Errorf("field: tool volume has zero-size bounds on axis %d", i)
		}
	}

	kernel, err := csgKernel(op, float32(opts.Blend))
	if err != nil {
		return err
	}

	par.Ranges(opts.Workers, dst.Res[2], func(z0, z1 int) {
		for z := z0; z < z1; z++ {
			for y := 0; y < dst.Res[1]; y++ {
				for x := 0; x < dst.Res[0]; x++ {
					p := dst.SamplePosition(x, y, z)

					b := farOutside
					if tool.Bounds.ContainsPoint(p) {
						b = tool.Sample(p)
					}

					i := dst.Index(x, y, z)
					dst.Data[i] = kernel(dst.Data[i], b)
				}
			}
		}
	})
	return nil
}

// csgKernel resolves the operator enum to a per-sample closure
func csgKernel(op Op, blend float32) (func(a, b float32) float32, error) {
	if blend <= 0 {
		switch op {
		case OpUnion:
			return func(a, b float32) float32 { return min(a, b) }, nil
		case OpSubtract:
			return func(a, b float32) float32 { return max(a, -b) }, nil
		case OpIntersect:
			return func(a, b float32) float32 { return max(a, b) }, nil
		}
		return nil, fmt.Errorf("field: unknown CSG op %d", op)
	}

	switch op {
	case OpUnion:
		return func(a, b float32) float32 { return smoothMin(a, b, blend) }, nil
	case OpSubtract:
		return func(a, b float32) float32 { return smoothMax(a, -b, blend) }, nil
	case OpIntersect:
		return func(a, b float32) float32 { return smoothMax(a, b, blend) }, nil
	}
	return nil, fmt.Errorf("field: unknown CSG op %d", op)
}

// smoothMin is the polynomial smooth minimum with blend radius k.
// It equals min(a, b) whenever |a-b| >= k.
func smoothMin(a, b, k float32) float32 {
	h := float32(math.Max(float64(k-abs32(a-b)), 0)) / k
	return min(a, b) - h*h*k*0.25
}

func smoothMax(a, b, k float32) float32 {
	return -smoothMin(-a, -b, k)
}

func abs32(x float32) float32 {
	if x < 0 {
		return -x
	}
	return x
}
