package physics

import (
	"github.com/setanarut/v"
)

// BodyId is an opaque handle for a body owned by a Scene. Ids are assigned
// monotonically and never reused, so a stale id stays detectably dead instead
// of silently aliasing a newer body.
type BodyId int64

// InvalidBodyId is the sentinel value for "no body".
const InvalidBodyId BodyId = -1

// BodyKind for bodies; Static, Kinematic or Dynamic.
type BodyKind uint8

const (
	// Static bodies never move and ignore velocity, forces and gravity.
	Static BodyKind = iota
	// Kinematic bodies integrate position from velocity but ignore forces
	// and gravity; they are moved by game logic, not by the solver.
	Kinematic
	// Dynamic bodies are fully simulated.
	Dynamic
)

var bodyKindNames = [...]string{"Static", "Kinematic", "Dynamic"}

func (k BodyKind) String() string {
	if int(k) < len(bodyKindNames) {
		return bodyKindNames[k]
	}
	return "Unknown"
}

// ShapeKind selects the collision shape of a body.
type ShapeKind uint8

const (
	Box ShapeKind = iota
	Circle
)

var shapeKindNames = [...]string{"Box", "Circle"}

func (k ShapeKind) String() string {
	if int(k) < len(shapeKindNames) {
		return shapeKindNames[k]
	}
	return "Unknown"
}

// BodyDef describes a body at creation time. It is immutable once the body
// exists; in particular Kind is fixed for the body's lifetime.
type BodyDef struct {
	Kind  BodyKind
	Shape ShapeKind
	// Position is the initial position of the body center.
	Position v.Vec
	// Extents holds the half extents for a Box and the radius in X for a
	// Circle (Y is ignored for circles).
	Extents v.Vec
	// Mass must be positive for Dynamic bodies and is ignored otherwise.
	Mass float64
	// LinearDamping is the velocity decay rate per second. Zero disables it.
	LinearDamping float64
	Friction      float64
	Restitution   float64
	// Sensor bodies detect overlap and fire collision callbacks but never
	// contribute a collision response.
	Sensor bool
}

// BodyState is the per-frame snapshot of a body exposed to callers. Internal
// body records are never aliased outside the Scene.
type BodyState struct {
	Position v.Vec
	Rotation float64
	Velocity v.Vec
}

// body is a slot in the Scene's body arena, addressed by id, never by pointer
// from outside the package.
type body struct {
	def   BodyDef
	alive bool

	pos v.Vec
	rot float64
	vel v.Vec
	// force accumulates ApplyForce calls and is consumed by the next sub-step.
	force v.Vec
	// prevPos/prevRot hold the pose at the top of the latest sub-step, the
	// "from" end of render interpolation.
	prevPos v.Vec
	prevRot float64

	onBegin CollisionFunc
	onEnd   CollisionFunc
}

func (b *body) invMass() float64 {
	if b.def.Kind != Dynamic {
		return 0
	}
	return 1 / b.def.Mass
}

// bb returns the body's axis-aligned bounding box at its current position.
func (b *body) bb() BB {
	switch b.def.Shape {
	case Circle:
		return NewBBForCircle(b.pos, b.def.Extents.X)
	default:
		return NewBBForExtents(b.pos, b.def.Extents.X, b.def.Extents.Y)
	}
}
