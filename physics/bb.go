package physics

import (
	"fmt"

	"github.com/setanarut/v"
)

// BB is an axis-aligned 2D bounding box. (left, bottom, right, top)
type BB struct {
	L, B, R, T float64
}

// NewBB is a convenience constructor for BB structs.
func NewBB(l, b, r, t float64) BB {
	return BB{L: l, B: b, R: r, T: t}
}

func (bb BB) String() string {
	return fmt.Sprintf("%v %v %v %v", bb.L, bb.B, bb.R, bb.T)
}

// NewBBForExtents constructs a BB centered on a point with the given extents
// (half sizes).
func NewBBForExtents(c v.Vec, hw, hh float64) BB {
	return BB{
		L: c.X - hw,
		B: c.Y - hh,
		R: c.X + hw,
		T: c.Y + hh,
	}
}

// NewBBForCircle constructs a BB for a circle with the given position and
// radius.
func NewBBForCircle(p v.Vec, r float64) BB {
	return NewBBForExtents(p, r, r)
}

// Intersects returns true if a and b intersect.
func (bb BB) Intersects(b BB) bool {
	return bb.L <= b.R && b.L <= bb.R && bb.B <= b.T && b.B <= bb.T
}

// ContainsVect returns true if bb contains v.
func (bb BB) ContainsVect(p v.Vec) bool {
	return bb.L <= p.X && bb.R >= p.X && bb.B <= p.Y && bb.T >= p.Y
}

// Center returns the center of the bounding box.
func (bb BB) Center() v.Vec {
	return v.Vec{X: bb.L, Y: bb.B}.Lerp(v.Vec{X: bb.R, Y: bb.T}, 0.5)
}
