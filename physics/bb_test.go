package physics_test

import (
	"testing"

	"github.com/setanarut/v"

	"github.com/simkit/simkit/physics"
)

func TestBBIntersects(t *testing.T) {
	a := physics.NewBB(-1, -1, 1, 1)
	if !a.Intersects(physics.NewBB(0.5, 0.5, 3, 3)) {
		t.Error("overlapping boxes should intersect")
	}
	if a.Intersects(physics.NewBB(2, 2, 3, 3)) {
		t.Error("disjoint boxes should not intersect")
	}
	// Touching edges count as intersecting.
	if !a.Intersects(physics.NewBB(1, -1, 2, 1)) {
		t.Error("edge contact should intersect")
	}
}

func TestBBContainsVect(t *testing.T) {
	bb := physics.NewBB(-1, -2, 1, 2)
	if !bb.ContainsVect(v.Vec{X: 0, Y: 1.5}) {
		t.Error("interior point should be contained")
	}
	if bb.ContainsVect(v.Vec{X: 0, Y: 2.5}) {
		t.Error("exterior point should not be contained")
	}
}

func TestBodyBB(t *testing.T) {
	sc := newScene(t, zeroGravity())

	circle, _ := sc.CreateBody(dynamicCircle(v.Vec{X: 2, Y: 3}, 1))
	box, _ := sc.CreateBody(dynamicBox(v.Vec{X: 0, Y: 0}, v.Vec{X: 2, Y: 1}))

	bb, err := sc.BodyBB(circle)
	if err != nil {
		t.Fatal(err)
	}
	if bb != physics.NewBB(1, 2, 3, 4) {
		t.Errorf("circle bb = %v", bb)
	}

	bb, err = sc.BodyBB(box)
	if err != nil {
		t.Fatal(err)
	}
	if bb != physics.NewBB(-2, -1, 2, 1) {
		t.Errorf("box bb = %v", bb)
	}

	if c := bb.Center(); c.X != 0 || c.Y != 0 {
		t.Errorf("center = %v", c)
	}
}
