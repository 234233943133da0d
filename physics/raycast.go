package physics

import (
	"math"

	"github.com/setanarut/v"
)

// Raycast fires a ray from origin along dir (any non-zero length; it is
// normalized internally) and reports the closest body surface hit within
// maxDistance. Returns false if nothing is hit or the inputs are degenerate.
func (sc *Scene) Raycast(origin, dir v.Vec, maxDistance float64) (RaycastHit, bool) {
	if maxDistance <= 0 || dir.MagSq() == 0 {
		return RaycastHit{}, false
	}
	end := origin.Add(dir.Unit().Scale(maxDistance))

	hit := RaycastHit{Body: InvalidBodyId, Distance: infinity}
	for i := range sc.bodies {
		b := &sc.bodies[i]
		if !b.alive {
			continue
		}

		var (
			alpha  float64
			normal v.Vec
			ok     bool
		)
		switch b.def.Shape {
		case Circle:
			alpha, normal, ok = rayCircle(origin, end, b.pos, b.def.Extents.X)
		default:
			alpha, normal, ok = rayBox(origin, end, b.bb())
		}
		if ok && alpha*maxDistance < hit.Distance {
			hit = RaycastHit{
				Body:     BodyId(i),
				Point:    origin.Lerp(end, alpha),
				Normal:   normal,
				Distance: alpha * maxDistance,
			}
		}
	}
	return hit, hit.Body != InvalidBodyId
}

// rayCircle intersects the segment a-b with a circle using the quadratic
// formula, keeping the smaller non-negative root.
func rayCircle(a, b, center v.Vec, r float64) (float64, v.Vec, bool) {
	da := a.Sub(center)
	db := b.Sub(center)

	qa := da.Dot(da) - 2*da.Dot(db) + db.Dot(db)
	qb := da.Dot(db) - da.Dot(da)
	det := qb*qb - qa*(da.Dot(da)-r*r)
	if det < 0 || qa == 0 {
		return 0, v.Vec{}, false
	}

	t := (-qb - math.Sqrt(det)) / qa
	if t < 0 || t > 1 {
		return 0, v.Vec{}, false
	}
	n := da.Lerp(db, t).Unit()
	return t, n, true
}

// rayBox is the slab test against an axis-aligned box, tracking which slab
// produced the entry so the face normal falls out for free.
func rayBox(a, b v.Vec, bb BB) (float64, v.Vec, bool) {
	delta := b.Sub(a)
	tmin, tmax := -infinity, infinity
	normal := v.Vec{}

	if delta.X == 0 {
		if a.X < bb.L || bb.R < a.X {
			return 0, v.Vec{}, false
		}
	} else {
		t1 := (bb.L - a.X) / delta.X
		t2 := (bb.R - a.X) / delta.X
		n := v.Vec{X: -1, Y: 0}
		if t2 < t1 {
			t1, t2 = t2, t1
			n = v.Vec{X: 1, Y: 0}
		}
		if t1 > tmin {
			tmin = t1
			normal = n
		}
		tmax = math.Min(tmax, t2)
	}

	if delta.Y == 0 {
		if a.Y < bb.B || bb.T < a.Y {
			return 0, v.Vec{}, false
		}
	} else {
		t1 := (bb.B - a.Y) / delta.Y
		t2 := (bb.T - a.Y) / delta.Y
		n := v.Vec{X: 0, Y: -1}
		if t2 < t1 {
			t1, t2 = t2, t1
			n = v.Vec{X: 0, Y: 1}
		}
		if t1 > tmin {
			tmin = t1
			normal = n
		}
		tmax = math.Min(tmax, t2)
	}

	if tmin > tmax || tmin < 0 || tmin > 1 {
		return 0, v.Vec{}, false
	}
	return tmin, normal, true
}
