package entity

import (
	"github.com/simkit/simkit/physics"
	"github.com/simkit/simkit/sched"
)

// Frame wires a scene into a scheduler the way the engine's frame loop does:
// a Physics-phase task steps the scene with the frame delta, and a
// PostPhysics-phase task depending on it walks the registered entities and
// syncs every auto-sync one with the step's interpolation alpha. The
// orchestrator only has to publish the delta and call Execute.
type Frame struct {
	scene    *physics.Scene
	entities []*PhysicsEntity

	// delta is the wall-clock frame time consumed by the next physics step,
	// set by the orchestrator before Execute.
	delta float64

	StepTask sched.TaskId
	SyncTask sched.TaskId
}

// NewFrame registers the physics step and post-physics sync tasks on s.
// The returned Frame keeps the task ids for callers that want to hang
// further dependencies off them.
func NewFrame(s *sched.Scheduler, scene *physics.Scene) (*Frame, error) {
	f := &Frame{scene: scene}

	stepId, err := s.AddTask(sched.TaskDescriptor{
		Name:  "physics.step",
		Phase: sched.PhasePhysics,
		Work: func() {
			// Errors here mean a negative delta, a programming error in the
			// orchestrator; the frame task cannot meaningfully recover.
			if err := scene.Step(f.delta); err != nil {
				panic(err)
			}
		},
	})
	if err != nil {
		return nil, err
	}

	syncId, err := s.AddTask(sched.TaskDescriptor{
		Name:      "physics.sync",
		Phase:     sched.PhasePostPhysics,
		DependsOn: []sched.TaskId{stepId},
		Work: func() {
			alpha := scene.InterpolationAlpha()
			for _, pe := range f.entities {
				if pe.AutoSync() {
					// A destroyed body just skips its sync; the entity is on
					// its way out of the frame.
					_ = pe.SyncFromPhysics(alpha)
				}
			}
		},
	})
	if err != nil {
		return nil, err
	}

	f.StepTask = stepId
	f.SyncTask = syncId
	return f, nil
}

// SetDelta publishes the frame's wall-clock delta for the next Execute.
func (f *Frame) SetDelta(dt float64) { f.delta = dt }

// Register adds an entity to the post-physics sync walk.
func (f *Frame) Register(pe *PhysicsEntity) {
	f.entities = append(f.entities, pe)
}

// Deregister removes an entity from the sync walk.
func (f *Frame) Deregister(pe *PhysicsEntity) {
	for i, e := range f.entities {
		if e == pe {
			f.entities = append(f.entities[:i], f.entities[i+1:]...)
			return
		}
	}
}
