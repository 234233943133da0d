package physics

import (
	"math"

	"github.com/setanarut/v"
)

const magicEpsilon float64 = 1e-5

const infinity float64 = math.MaxFloat64

// contact is the narrow-phase result for one overlapping pair. The normal
// points from body a toward body b.
type contact struct {
	normal      v.Vec
	penetration float64
	point       v.Vec
}

// collide performs the exact overlap test for a candidate pair, dispatched on
// shape kind. It reports whether the shapes overlap and, if so, the contact.
func collide(a, b *body) (contact, bool) {
	switch {
	case a.def.Shape == Circle && b.def.Shape == Circle:
		return circleToCircle(a, b)
	case a.def.Shape == Box && b.def.Shape == Box:
		return boxToBox(a, b)
	case a.def.Shape == Box && b.def.Shape == Circle:
		return boxToCircle(a, b)
	default:
		c, ok := boxToCircle(b, a)
		c.normal = c.normal.Neg()
		return c, ok
	}
}

func circleToCircle(a, b *body) (contact, bool) {
	r1 := a.def.Extents.X
	r2 := b.def.Extents.X
	mindist := r1 + r2

	delta := b.pos.Sub(a.pos)
	distsq := delta.MagSq()
	if distsq >= mindist*mindist {
		return contact{}, false
	}

	dist := math.Sqrt(distsq)
	n := v.Vec{X: 1, Y: 0}
	if dist != 0 {
		n = delta.Scale(1 / dist)
	}
	return contact{
		normal:      n,
		penetration: mindist - dist,
		point:       a.pos.Add(n.Scale(r1 - (mindist-dist)*0.5)),
	}, true
}

// boxToBox resolves along the axis of minimum penetration, which keeps stacked
// boxes from being shoved sideways.
func boxToBox(a, b *body) (contact, bool) {
	bba := a.bb()
	bbb := b.bb()

	overlapX := math.Min(bba.R, bbb.R) - math.Max(bba.L, bbb.L)
	overlapY := math.Min(bba.T, bbb.T) - math.Max(bba.B, bbb.B)
	if overlapX <= 0 || overlapY <= 0 {
		return contact{}, false
	}

	delta := b.pos.Sub(a.pos)
	var c contact
	if overlapX < overlapY {
		c.penetration = overlapX
		c.normal = v.Vec{X: 1, Y: 0}
		if delta.X < 0 {
			c.normal = v.Vec{X: -1, Y: 0}
		}
		c.point = v.Vec{X: math.Max(bba.L, bbb.L) + overlapX*0.5, Y: (math.Max(bba.B, bbb.B) + math.Min(bba.T, bbb.T)) * 0.5}
	} else {
		c.penetration = overlapY
		c.normal = v.Vec{X: 0, Y: 1}
		if delta.Y < 0 {
			c.normal = v.Vec{X: 0, Y: -1}
		}
		c.point = v.Vec{X: (math.Max(bba.L, bbb.L) + math.Min(bba.R, bbb.R)) * 0.5, Y: math.Max(bba.B, bbb.B) + overlapY*0.5}
	}
	return c, true
}

// boxToCircle expects the box as a and the circle as b.
func boxToCircle(a, b *body) (contact, bool) {
	bb := a.bb()
	r := b.def.Extents.X

	// Closest point on the box to the circle center.
	closest := v.Vec{X: clamp(b.pos.X, bb.L, bb.R), Y: clamp(b.pos.Y, bb.B, bb.T)}

	delta := b.pos.Sub(closest)
	distsq := delta.MagSq()
	if distsq > r*r {
		return contact{}, false
	}

	if distsq > magicEpsilon*magicEpsilon {
		dist := math.Sqrt(distsq)
		n := delta.Scale(1 / dist)
		return contact{
			normal:      n,
			penetration: r - dist,
			point:       closest,
		}, true
	}

	// Circle center inside the box: push out along the face the center is
	// nearest to.
	left := b.pos.X - bb.L
	right := bb.R - b.pos.X
	bottom := b.pos.Y - bb.B
	top := bb.T - b.pos.Y

	minDepth := left
	n := v.Vec{X: -1, Y: 0}
	if right < minDepth {
		minDepth = right
		n = v.Vec{X: 1, Y: 0}
	}
	if bottom < minDepth {
		minDepth = bottom
		n = v.Vec{X: 0, Y: -1}
	}
	if top < minDepth {
		minDepth = top
		n = v.Vec{X: 0, Y: 1}
	}
	return contact{
		normal:      n,
		penetration: minDepth + r,
		point:       b.pos,
	}, true
}

func clamp(val, min, max float64) float64 {
	return math.Min(math.Max(val, min), max)
}
