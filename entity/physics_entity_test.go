package entity_test

import (
	"errors"
	"math"
	"testing"

	"github.com/setanarut/v"

	"github.com/simkit/simkit/entity"
	"github.com/simkit/simkit/physics"
)

// fakeEntity is a stand-in for the visual layer's entity type.
type fakeEntity struct {
	pos v.Vec
	rot float64
}

func (f *fakeEntity) Position() v.Vec       { return f.pos }
func (f *fakeEntity) SetPosition(p v.Vec)   { f.pos = p }
func (f *fakeEntity) Rotation() float64     { return f.rot }
func (f *fakeEntity) SetRotation(r float64) { f.rot = r }

func testScene(t *testing.T) *physics.Scene {
	t.Helper()
	cfg := physics.DefaultConfig()
	cfg.Gravity = v.Vec{}
	sc, err := physics.NewScene(cfg)
	if err != nil {
		t.Fatal(err)
	}
	return sc
}

func ballDef(pos v.Vec) physics.BodyDef {
	return physics.BodyDef{
		Kind:     physics.Dynamic,
		Shape:    physics.Circle,
		Position: pos,
		Extents:  v.Vec{X: 1, Y: 0},
		Mass:     1,
	}
}

func TestCreateWithoutScene(t *testing.T) {
	pe := entity.NewPhysicsEntity(&fakeEntity{})
	if _, err := pe.CreatePhysicsBody(ballDef(v.Vec{})); !errors.Is(err, entity.ErrNoScene) {
		t.Errorf("expected ErrNoScene, got %v", err)
	}
}

func TestOneBodyPerEntity(t *testing.T) {
	sc := testScene(t)
	pe := entity.NewPhysicsEntity(&fakeEntity{})
	pe.AttachPhysics(sc)

	if _, err := pe.CreatePhysicsBody(ballDef(v.Vec{})); err != nil {
		t.Fatal(err)
	}
	if _, err := pe.CreatePhysicsBody(ballDef(v.Vec{})); !errors.Is(err, entity.ErrBodyAlreadyCreated) {
		t.Errorf("expected ErrBodyAlreadyCreated, got %v", err)
	}
}

func TestDetachDestroysBody(t *testing.T) {
	sc := testScene(t)
	pe := entity.NewPhysicsEntity(&fakeEntity{})
	pe.AttachPhysics(sc)

	id, err := pe.CreatePhysicsBody(ballDef(v.Vec{}))
	if err != nil {
		t.Fatal(err)
	}
	if err := pe.DetachPhysics(); err != nil {
		t.Fatal(err)
	}
	if sc.HasBody(id) {
		t.Error("detach should destroy the underlying body")
	}
	if err := pe.ApplyForce(v.Vec{X: 1, Y: 0}); !errors.Is(err, entity.ErrNoScene) {
		t.Errorf("detached entity should reject physics calls, got %v", err)
	}
}

func TestSyncFromPhysicsBlendsPose(t *testing.T) {
	sc := testScene(t)
	owner := &fakeEntity{}
	pe := entity.NewPhysicsEntity(owner)
	pe.AttachPhysics(sc)

	if _, err := pe.CreatePhysicsBody(ballDef(v.Vec{})); err != nil {
		t.Fatal(err)
	}
	if err := pe.SetLinearVelocity(v.Vec{X: 6, Y: 0}); err != nil {
		t.Fatal(err)
	}

	// One and a half fixed steps: one sub-step runs, half a step remains in
	// the accumulator.
	dt := sc.Config().FixedDt
	if err := sc.Step(1.5 * dt); err != nil {
		t.Fatal(err)
	}
	alpha := sc.InterpolationAlpha()
	if math.Abs(alpha-0.5) > 1e-9 {
		t.Fatalf("alpha = %v, want 0.5", alpha)
	}

	if err := pe.SyncFromPhysics(alpha); err != nil {
		t.Fatal(err)
	}
	// Body moved from 0 to 6*dt this sub-step; blended halfway is 3*dt.
	want := 3 * dt
	if math.Abs(owner.pos.X-want) > 1e-9 {
		t.Errorf("blended x = %v, want %v", owner.pos.X, want)
	}
}

func TestSyncToPhysics(t *testing.T) {
	sc := testScene(t)
	owner := &fakeEntity{pos: v.Vec{X: 7, Y: -2}, rot: 0.3}
	pe := entity.NewPhysicsEntity(owner)
	pe.AttachPhysics(sc)

	id, err := pe.CreatePhysicsBody(ballDef(v.Vec{}))
	if err != nil {
		t.Fatal(err)
	}
	if err := pe.SyncToPhysics(); err != nil {
		t.Fatal(err)
	}

	state, err := sc.BodyState(id)
	if err != nil {
		t.Fatal(err)
	}
	if state.Position != owner.pos || state.Rotation != owner.rot {
		t.Errorf("body state %+v does not match owner transform %+v", state, owner)
	}
}

func TestForwarders(t *testing.T) {
	sc := testScene(t)
	pe := entity.NewPhysicsEntity(&fakeEntity{})
	pe.AttachPhysics(sc)

	if err := pe.ApplyImpulse(v.Vec{X: 1, Y: 0}); !errors.Is(err, entity.ErrNoBody) {
		t.Errorf("expected ErrNoBody before creation, got %v", err)
	}

	id, err := pe.CreatePhysicsBody(ballDef(v.Vec{}))
	if err != nil {
		t.Fatal(err)
	}
	if err := pe.ApplyImpulse(v.Vec{X: 2, Y: 0}); err != nil {
		t.Fatal(err)
	}
	state, _ := sc.BodyState(id)
	if state.Velocity.X != 2 {
		t.Errorf("impulse did not reach the body, velocity %v", state.Velocity)
	}
}

func TestAutoSyncFlag(t *testing.T) {
	pe := entity.NewPhysicsEntity(&fakeEntity{})
	if !pe.AutoSync() {
		t.Error("auto sync should default to on")
	}
	pe.SetAutoSync(false)
	if pe.AutoSync() {
		t.Error("auto sync should be off")
	}
}
