package bvh

import "github.com/go-gl/mathgl/mgl64"

// ClosestPoint returns the point on triangle abc closest to p, using the
// standard barycentric Voronoi-region walk: test the vertex regions, then
// the edge regions, and fall through to the face interior.
//
// Reference: Ericson, "Real-Time Collision Detection" (2005), §5.1.5.
func ClosestPoint(p, a, b, c mgl64.Vec3) mgl64.Vec3 {
	ab := b.Sub(a)
	ac := c.Sub(a)
	ap := p.Sub(a)

	// Vertex region A
	d1 := ab.Dot(ap)
	d2 := ac.Dot(ap)
	if d1 <= 0 && d2 <= 0 {
		return a
	}

	// Vertex region B
	bp := p.Sub(b)
	d3 := ab.Dot(bp)
	d4 := ac.Dot(bp)
	if d3 >= 0 && d4 <= d3 {
		return b
	}

	// Edge region AB
	vc := d1*d4 - d3*d2
	if vc <= 0 && d1 >= 0 && d3 <= 0 {
		v := d1 / (d1 - d3)
		return a.Add(ab.Mul(v))
	}

	// Vertex region C
	cp := p.Sub(c)
	d5 := ab.Dot(cp)
	d6 := ac.Dot(cp)
	if d6 >= 0 && d5 <= d6 {
		return c
	}

	// Edge region AC
	vb := d5*d2 - d1*d6
	if vb <= 0 && d2 >= 0 && d6 <= 0 {
		w := d2 / (d2 - d6)
		return a.Add(ac.Mul(w))
	}

	// Edge region BC
	va := d3*d6 - d5*d4
	if va <= 0 && d4-d3 >= 0 && d5-d6 >= 0 {
		w := (d4 - d3) / ((d4 - d3) + (d5 - d6))
		return b.Add(c.Sub(b).Mul(w))
	}

	// Face interior. A zero-area triangle cannot reach here with a valid
	// denominator, so clamp to a vertex instead of dividing by zero.
	denom := va + vb + vc
	if denom <= 0 {
		return a
	}
	v := vb / denom
	w := vc / denom
	return a.Add(ab.Mul(v)).Add(ac.Mul(w))
}

// ClosestPointOn returns the point on the stored triangle closest to p
func (t Triangle) ClosestPointOn(p mgl64.Vec3) mgl64.Vec3 {
	return ClosestPoint(p, t.A, t.B, t.C)
}
