package physics

import (
	"errors"
	"fmt"
	"math"
	"slices"

	"github.com/setanarut/v"
)

var (
	// ErrInvalidConfig is returned by NewScene for out-of-range config values.
	ErrInvalidConfig = errors.New("physics: invalid config")
	// ErrInvalidBodyDef is returned by CreateBody for malformed definitions.
	ErrInvalidBodyDef = errors.New("physics: invalid body definition")
	// ErrBodyNotFound is returned for ids that were never created or whose
	// body has been destroyed.
	ErrBodyNotFound = errors.New("physics: body not found")
	// ErrBodyNotDynamic is returned when a force or impulse targets a body
	// the solver does not move.
	ErrBodyNotDynamic = errors.New("physics: body is not dynamic")
	// ErrInvalidArgument is returned for malformed call arguments, such as a
	// negative step delta.
	ErrInvalidArgument = errors.New("physics: invalid argument")
)

// Scene owns a world of rigid bodies and advances them on a fixed timestep
// decoupled from the caller's frame rate by an accumulator. All external
// access is by BodyId; internal records are never aliased out, so destroying
// a body cannot leave dangling references elsewhere.
//
// A Scene is not safe for concurrent mutation. Running separate Scenes on
// separate goroutines is fine; each instance's state is self-contained.
type Scene struct {
	cfg Config

	// bodies is a dense arena indexed by BodyId. Slots are tombstoned, never
	// recycled, so stale-id detection stays O(1) and unambiguous.
	bodies []body
	alive  int

	accumulator   float64
	lastStepCount int

	// livePairs maps each currently overlapping pair to its latest contact,
	// the previous-step set that begin/end dispatch diffs against.
	livePairs map[bodyPair]contact

	onBegin CollisionFunc
	onEnd   CollisionFunc
}

// NewScene creates an empty scene from cfg.
func NewScene(cfg Config) (*Scene, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &Scene{
		cfg:       cfg,
		livePairs: make(map[bodyPair]contact),
	}, nil
}

// CreateBody allocates a body slot from def and returns a fresh id.
func (sc *Scene) CreateBody(def BodyDef) (BodyId, error) {
	if def.Kind > Dynamic || def.Shape > Circle {
		return InvalidBodyId, fmt.Errorf("%w: unknown kind or shape", ErrInvalidBodyDef)
	}
	if def.Kind == Dynamic && def.Mass <= 0 {
		return InvalidBodyId, fmt.Errorf("%w: dynamic body needs positive mass, got %v", ErrInvalidBodyDef, def.Mass)
	}
	if def.Extents.X <= 0 || (def.Shape == Box && def.Extents.Y <= 0) {
		return InvalidBodyId, fmt.Errorf("%w: non-positive extents", ErrInvalidBodyDef)
	}

	id := BodyId(len(sc.bodies))
	sc.bodies = append(sc.bodies, body{
		def:     def,
		alive:   true,
		pos:     def.Position,
		prevPos: def.Position,
	})
	sc.alive++
	return id, nil
}

// DestroyBody invalidates id immediately. Per-body callbacks are cleared and
// any in-flight collision pairs involving the body are dropped, so no end
// event is ever delivered for a destroyed body.
func (sc *Scene) DestroyBody(id BodyId) error {
	b, err := sc.lookup(id)
	if err != nil {
		return err
	}
	b.alive = false
	b.onBegin = nil
	b.onEnd = nil
	sc.alive--

	for pair := range sc.livePairs {
		if pair.a == id || pair.b == id {
			delete(sc.livePairs, pair)
		}
	}
	return nil
}

// HasBody reports whether id refers to a live body.
func (sc *Scene) HasBody(id BodyId) bool {
	return id >= 0 && int(id) < len(sc.bodies) && sc.bodies[id].alive
}

// BodyState returns the current snapshot of a body.
func (sc *Scene) BodyState(id BodyId) (BodyState, error) {
	b, err := sc.lookup(id)
	if err != nil {
		return BodyState{}, err
	}
	return BodyState{Position: b.pos, Rotation: b.rot, Velocity: b.vel}, nil
}

// PrevBodyState returns the body's pose as of the top of the latest sub-step,
// the "from" end when interpolating for rendering. Velocity is the current
// one; only the pose is historical.
func (sc *Scene) PrevBodyState(id BodyId) (BodyState, error) {
	b, err := sc.lookup(id)
	if err != nil {
		return BodyState{}, err
	}
	return BodyState{Position: b.prevPos, Rotation: b.prevRot, Velocity: b.vel}, nil
}

// BodyDef returns the definition the body was created with.
func (sc *Scene) BodyDef(id BodyId) (BodyDef, error) {
	b, err := sc.lookup(id)
	if err != nil {
		return BodyDef{}, err
	}
	return b.def, nil
}

// ApplyForce accumulates a force consumed by the next Step. Only dynamic
// bodies accept forces.
func (sc *Scene) ApplyForce(id BodyId, force v.Vec) error {
	b, err := sc.lookupDynamic(id)
	if err != nil {
		return err
	}
	b.force = b.force.Add(force)
	return nil
}

// ApplyImpulse changes a dynamic body's velocity immediately by impulse/mass.
func (sc *Scene) ApplyImpulse(id BodyId, impulse v.Vec) error {
	b, err := sc.lookupDynamic(id)
	if err != nil {
		return err
	}
	b.vel = b.vel.Add(impulse.Scale(1 / b.def.Mass))
	return nil
}

// SetLinearVelocity sets a body's velocity immediately. Kinematic bodies are
// allowed; velocity is exactly how game logic drives them. Static bodies are
// rejected.
func (sc *Scene) SetLinearVelocity(id BodyId, vel v.Vec) error {
	b, err := sc.lookup(id)
	if err != nil {
		return err
	}
	if b.def.Kind == Static {
		return fmt.Errorf("%w: %d is static", ErrBodyNotDynamic, id)
	}
	b.vel = vel
	return nil
}

// SetBodyPosition teleports a body of any kind. The interpolation history is
// reset so the body does not visually sweep across the teleport.
func (sc *Scene) SetBodyPosition(id BodyId, pos v.Vec) error {
	b, err := sc.lookup(id)
	if err != nil {
		return err
	}
	b.pos = pos
	b.prevPos = pos
	return nil
}

// SetBodyRotation sets a body's rotation in radians, resetting interpolation
// history like SetBodyPosition.
func (sc *Scene) SetBodyRotation(id BodyId, radians float64) error {
	b, err := sc.lookup(id)
	if err != nil {
		return err
	}
	b.rot = radians
	b.prevRot = radians
	return nil
}

// SetOnCollisionBegin registers the global callback fired when a pair starts
// overlapping. Nil unregisters.
func (sc *Scene) SetOnCollisionBegin(f CollisionFunc) { sc.onBegin = f }

// SetOnCollisionEnd registers the global callback fired when an overlap
// episode ends. Nil unregisters.
func (sc *Scene) SetOnCollisionEnd(f CollisionFunc) { sc.onEnd = f }

// SetBodyOnCollisionBegin registers a begin callback for one body. The event
// it receives always has that body as BodyA.
func (sc *Scene) SetBodyOnCollisionBegin(id BodyId, f CollisionFunc) error {
	b, err := sc.lookup(id)
	if err != nil {
		return err
	}
	b.onBegin = f
	return nil
}

// SetBodyOnCollisionEnd registers an end callback for one body.
func (sc *Scene) SetBodyOnCollisionEnd(id BodyId, f CollisionFunc) error {
	b, err := sc.lookup(id)
	if err != nil {
		return err
	}
	b.onEnd = f
	return nil
}

// Config returns the scene's configuration, with Gravity at its current value.
func (sc *Scene) Config() Config { return sc.cfg }

// Gravity returns the current gravity vector.
func (sc *Scene) Gravity() v.Vec { return sc.cfg.Gravity }

// SetGravity changes gravity for subsequent steps.
func (sc *Scene) SetGravity(g v.Vec) { sc.cfg.Gravity = g }

// InterpolationAlpha returns the fraction of a fixed step left in the
// accumulator after the latest Step, always in [0, 1). Blending the previous
// and current pose by this factor removes stutter when the render rate and
// FixedDt differ.
func (sc *Scene) InterpolationAlpha() float64 {
	return sc.accumulator / sc.cfg.FixedDt
}

// LastStepCount returns how many fixed sub-steps the latest Step executed.
func (sc *Scene) LastStepCount() int { return sc.lastStepCount }

// BodyCount returns the number of body slots ever created, destroyed ones
// included.
func (sc *Scene) BodyCount() int { return len(sc.bodies) }

// ActiveBodyCount returns the number of live bodies.
func (sc *Scene) ActiveBodyCount() int { return sc.alive }

// Step advances the simulation by dt seconds of wall-clock time, running as
// many fixed sub-steps as the accumulator covers, capped at MaxSubSteps. Time
// the cap sheds is dropped rather than carried, keeping the accumulator in
// [0, FixedDt) and the next frame's workload bounded.
func (sc *Scene) Step(dt float64) error {
	if dt < 0 || math.IsNaN(dt) || math.IsInf(dt, 0) {
		return fmt.Errorf("%w: step delta %v", ErrInvalidArgument, dt)
	}

	sc.accumulator += dt
	steps := 0
	for sc.accumulator >= sc.cfg.FixedDt && steps < sc.cfg.MaxSubSteps {
		sc.subStep(sc.cfg.FixedDt)
		sc.accumulator -= sc.cfg.FixedDt
		steps++
	}
	if sc.accumulator >= sc.cfg.FixedDt {
		sc.accumulator = math.Mod(sc.accumulator, sc.cfg.FixedDt)
	}
	sc.lastStepCount = steps
	return nil
}

// subStep runs one fixed timestep: integrate, detect, resolve, dispatch.
func (sc *Scene) subStep(dt float64) {
	sc.integrate(dt)

	// Broad-phase candidates, narrow-phase exact tests.
	current := make(map[bodyPair]contact)
	pairs := sc.candidatePairs()
	for _, pair := range pairs {
		a := &sc.bodies[pair.a]
		b := &sc.bodies[pair.b]
		if c, ok := collide(a, b); ok {
			current[pair] = c
		}
	}

	// Resolution. Sensor pairs and pairs without a dynamic member generate
	// events only.
	for i := 0; i < sc.cfg.Iterations; i++ {
		for _, pair := range pairs {
			c, ok := current[pair]
			if !ok {
				continue
			}
			a := &sc.bodies[pair.a]
			b := &sc.bodies[pair.b]
			if a.def.Sensor || b.def.Sensor {
				continue
			}
			if a.def.Kind != Dynamic && b.def.Kind != Dynamic {
				continue
			}
			sc.resolve(a, b, c)
		}
	}
	for _, pair := range pairs {
		c, ok := current[pair]
		if !ok {
			continue
		}
		a := &sc.bodies[pair.a]
		b := &sc.bodies[pair.b]
		if a.def.Sensor || b.def.Sensor || (a.def.Kind != Dynamic && b.def.Kind != Dynamic) {
			continue
		}
		sc.correctPositions(a, b, c)
	}

	// Swap the live set in before dispatching so a callback that destroys a
	// body scrubs the new set; otherwise the destroyed pair would resurface
	// from the stale one and emit a dangling end event on a later step.
	previous := sc.livePairs
	sc.livePairs = current
	sc.dispatchEvents(previous, current)
}

// integrate records each body's previous pose, then advances velocity and
// position. Dynamic bodies feel gravity, accumulated forces and damping;
// kinematic bodies integrate position from velocity only; static bodies never
// move. Accumulated forces are cleared afterwards.
func (sc *Scene) integrate(dt float64) {
	for i := range sc.bodies {
		b := &sc.bodies[i]
		if !b.alive {
			continue
		}
		b.prevPos = b.pos
		b.prevRot = b.rot

		switch b.def.Kind {
		case Dynamic:
			accel := sc.cfg.Gravity.Add(b.force.Scale(1 / b.def.Mass))
			b.vel = b.vel.Add(accel.Scale(dt))
			if b.def.LinearDamping > 0 {
				b.vel = b.vel.Scale(1 / (1 + b.def.LinearDamping*dt))
			}
			b.pos = b.pos.Add(b.vel.Scale(dt))
		case Kinematic:
			b.pos = b.pos.Add(b.vel.Scale(dt))
		}
		b.force = v.Vec{}
	}
}

// resolve applies an impulse along the contact normal sized from the relative
// velocity, combined restitution and friction.
func (sc *Scene) resolve(a, b *body, c contact) {
	invA := a.invMass()
	invB := b.invMass()
	invSum := invA + invB
	if invSum == 0 {
		return
	}

	rv := b.vel.Sub(a.vel)
	velAlongNormal := rv.Dot(c.normal)
	if velAlongNormal > 0 {
		// Already separating.
		return
	}

	e := a.def.Restitution * b.def.Restitution
	j := -(1 + e) * velAlongNormal / invSum
	impulse := c.normal.Scale(j)
	a.vel = a.vel.Sub(impulse.Scale(invA))
	b.vel = b.vel.Add(impulse.Scale(invB))

	// Coulomb friction along the tangent, clamped by the normal impulse.
	rv = b.vel.Sub(a.vel)
	tangent := rv.Sub(c.normal.Scale(rv.Dot(c.normal)))
	if tangent.MagSq() < magicEpsilon*magicEpsilon {
		return
	}
	tangent = tangent.Unit()
	jt := -rv.Dot(tangent) / invSum
	mu := math.Sqrt(a.def.Friction * b.def.Friction)
	jt = clamp(jt, -j*mu, j*mu)
	frictionImpulse := tangent.Scale(jt)
	a.vel = a.vel.Sub(frictionImpulse.Scale(invA))
	b.vel = b.vel.Add(frictionImpulse.Scale(invB))
}

// correctPositions removes a fraction of the remaining penetration each
// sub-step so resting bodies do not sink into each other.
func (sc *Scene) correctPositions(a, b *body, c contact) {
	invA := a.invMass()
	invB := b.invMass()
	invSum := invA + invB
	if invSum == 0 {
		return
	}
	depth := math.Max(c.penetration-sc.cfg.CollisionSlop, 0)
	if depth == 0 {
		return
	}
	correction := c.normal.Scale(depth / invSum * sc.cfg.PositionCorrection)
	a.pos = a.pos.Sub(correction.Scale(invA))
	b.pos = b.pos.Add(correction.Scale(invB))
}

// dispatchEvents diffs the current overlapping-pair set against the previous
// one: pairs present now but not before fire begin, pairs gone fire end. A
// begin therefore fires at most once per continuous overlap episode. Pair
// order is ascending, so callback order is reproducible. A callback may
// destroy a body mid-dispatch; pairs that lost a member emit nothing further.
func (sc *Scene) dispatchEvents(previous, current map[bodyPair]contact) {
	begins := make([]bodyPair, 0, len(current))
	for pair := range current {
		if _, ok := previous[pair]; !ok {
			begins = append(begins, pair)
		}
	}
	ends := make([]bodyPair, 0)
	for pair := range previous {
		if _, ok := current[pair]; !ok {
			ends = append(ends, pair)
		}
	}
	slices.SortFunc(begins, comparePairs)
	slices.SortFunc(ends, comparePairs)

	for _, pair := range begins {
		if !sc.bodies[pair.a].alive || !sc.bodies[pair.b].alive {
			continue
		}
		sc.emit(pair, current[pair], true)
	}
	for _, pair := range ends {
		if !sc.bodies[pair.a].alive || !sc.bodies[pair.b].alive {
			continue
		}
		sc.emit(pair, previous[pair], false)
	}
}

// emit delivers one event to the global callback and to each body's own
// callback. Per-body callbacks always see their body as BodyA.
func (sc *Scene) emit(pair bodyPair, c contact, begin bool) {
	event := CollisionEvent{
		BodyA:       pair.a,
		BodyB:       pair.b,
		Normal:      c.normal,
		Penetration: c.penetration,
		Point:       c.point,
	}
	swapped := CollisionEvent{
		BodyA:       pair.b,
		BodyB:       pair.a,
		Normal:      c.normal.Neg(),
		Penetration: c.penetration,
		Point:       c.point,
	}

	global, cbA, cbB := sc.onBegin, sc.bodies[pair.a].onBegin, sc.bodies[pair.b].onBegin
	if !begin {
		global, cbA, cbB = sc.onEnd, sc.bodies[pair.a].onEnd, sc.bodies[pair.b].onEnd
	}
	if global != nil {
		global(event)
	}
	if cbA != nil {
		cbA(event)
	}
	if cbB != nil {
		cbB(swapped)
	}
}

// BodyBB returns the body's current axis-aligned bounding box, the box the
// broad-phase and QueryAABB see. Handy for debug drawing layers.
func (sc *Scene) BodyBB(id BodyId) (BB, error) {
	b, err := sc.lookup(id)
	if err != nil {
		return BB{}, err
	}
	return b.bb(), nil
}

// QueryAABB returns every live body whose bounding box overlaps the rectangle
// spanned by min and max, in ascending id order.
func (sc *Scene) QueryAABB(min, max v.Vec) []BodyId {
	query := BB{L: min.X, B: min.Y, R: max.X, T: max.Y}
	var ids []BodyId
	for i := range sc.bodies {
		b := &sc.bodies[i]
		if b.alive && b.bb().Intersects(query) {
			ids = append(ids, BodyId(i))
		}
	}
	return ids
}

// QueryPoint returns every live body whose shape contains the point, in
// ascending id order.
func (sc *Scene) QueryPoint(p v.Vec) []BodyId {
	var ids []BodyId
	for i := range sc.bodies {
		b := &sc.bodies[i]
		if !b.alive {
			continue
		}
		switch b.def.Shape {
		case Circle:
			r := b.def.Extents.X
			if p.Sub(b.pos).MagSq() <= r*r {
				ids = append(ids, BodyId(i))
			}
		default:
			if b.bb().ContainsVect(p) {
				ids = append(ids, BodyId(i))
			}
		}
	}
	return ids
}

func (sc *Scene) lookup(id BodyId) (*body, error) {
	if id < 0 || int(id) >= len(sc.bodies) {
		return nil, fmt.Errorf("%w: %d", ErrBodyNotFound, id)
	}
	b := &sc.bodies[id]
	if !b.alive {
		return nil, fmt.Errorf("%w: %d (destroyed)", ErrBodyNotFound, id)
	}
	return b, nil
}

func (sc *Scene) lookupDynamic(id BodyId) (*body, error) {
	b, err := sc.lookup(id)
	if err != nil {
		return nil, err
	}
	if b.def.Kind != Dynamic {
		return nil, fmt.Errorf("%w: %d is %v", ErrBodyNotDynamic, id, b.def.Kind)
	}
	return b, nil
}
