package entity_test

import (
	"math"
	"testing"

	"github.com/setanarut/v"

	"github.com/simkit/simkit/entity"
	"github.com/simkit/simkit/sched"
)

func TestFramePhaseHandOff(t *testing.T) {
	sc := testScene(t)
	s := sched.NewScheduler()

	f, err := entity.NewFrame(s, sc)
	if err != nil {
		t.Fatal(err)
	}

	owner := &fakeEntity{}
	pe := entity.NewPhysicsEntity(owner)
	pe.AttachPhysics(sc)
	if _, err := pe.CreatePhysicsBody(ballDef(v.Vec{})); err != nil {
		t.Fatal(err)
	}
	if err := pe.SetLinearVelocity(v.Vec{X: 6, Y: 0}); err != nil {
		t.Fatal(err)
	}
	f.Register(pe)

	dt := sc.Config().FixedDt
	f.SetDelta(1.5 * dt)
	if err := s.Execute(); err != nil {
		t.Fatal(err)
	}

	// The PostPhysics sync ran after the Physics step and used its alpha:
	// the owner transform holds the half-blended pose.
	order := s.LastExecutionOrder()
	if len(order) != 2 || order[0] != f.StepTask || order[1] != f.SyncTask {
		t.Fatalf("execution order %v, want [step sync]", order)
	}
	if sc.LastStepCount() != 1 {
		t.Fatalf("LastStepCount = %d, want 1", sc.LastStepCount())
	}
	if want := 3 * dt; math.Abs(owner.pos.X-want) > 1e-9 {
		t.Errorf("owner x = %v, want %v", owner.pos.X, want)
	}
}

func TestFrameSkipsNonAutoSync(t *testing.T) {
	sc := testScene(t)
	s := sched.NewScheduler()
	f, err := entity.NewFrame(s, sc)
	if err != nil {
		t.Fatal(err)
	}

	owner := &fakeEntity{pos: v.Vec{X: 42, Y: 0}}
	pe := entity.NewPhysicsEntity(owner)
	pe.AttachPhysics(sc)
	if _, err := pe.CreatePhysicsBody(ballDef(v.Vec{})); err != nil {
		t.Fatal(err)
	}
	pe.SetAutoSync(false)
	f.Register(pe)

	f.SetDelta(sc.Config().FixedDt)
	if err := s.Execute(); err != nil {
		t.Fatal(err)
	}
	if owner.pos.X != 42 {
		t.Errorf("non-auto-sync owner was written to: %v", owner.pos)
	}
}

func TestFrameDeregister(t *testing.T) {
	sc := testScene(t)
	s := sched.NewScheduler()
	f, err := entity.NewFrame(s, sc)
	if err != nil {
		t.Fatal(err)
	}

	owner := &fakeEntity{pos: v.Vec{X: 7, Y: 0}}
	pe := entity.NewPhysicsEntity(owner)
	pe.AttachPhysics(sc)
	if _, err := pe.CreatePhysicsBody(ballDef(v.Vec{})); err != nil {
		t.Fatal(err)
	}
	f.Register(pe)
	f.Deregister(pe)

	f.SetDelta(sc.Config().FixedDt)
	if err := s.Execute(); err != nil {
		t.Fatal(err)
	}
	if owner.pos.X != 7 {
		t.Errorf("deregistered owner was written to: %v", owner.pos)
	}
}
