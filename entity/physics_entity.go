// Package entity binds a visual entity's transform to a physics body without
// the entity needing to know simulation internals. PhysicsEntity is a
// composition object the concrete entity type holds and delegates to from its
// own lifecycle hooks; there is no inheritance relationship anywhere.
package entity

import (
	"errors"

	"github.com/setanarut/v"

	"github.com/simkit/simkit/physics"
)

var (
	// ErrNoScene is returned when a physics operation is attempted before
	// AttachPhysics.
	ErrNoScene = errors.New("entity: no physics scene attached")
	// ErrNoBody is returned when a physics operation is attempted before
	// CreatePhysicsBody.
	ErrNoBody = errors.New("entity: no physics body created")
	// ErrBodyAlreadyCreated is returned by a second CreatePhysicsBody call;
	// an entity owns exactly one body.
	ErrBodyAlreadyCreated = errors.New("entity: body already created")
)

// Transformer is the owning visual entity as seen from here: something with a
// position and rotation the physics pose can be copied into and out of. The
// visual layer implements it; this package only calls it.
type Transformer interface {
	Position() v.Vec
	SetPosition(v.Vec)
	Rotation() float64
	SetRotation(float64)
}

// PhysicsEntity positions an owning visual entity from a physics body. It
// stores only the scene reference and the body id; body state always lives in
// the scene and is read back on demand.
type PhysicsEntity struct {
	owner    Transformer
	scene    *physics.Scene
	body     physics.BodyId
	autoSync bool
}

// NewPhysicsEntity returns an unattached PhysicsEntity for owner. AutoSync
// defaults to on.
func NewPhysicsEntity(owner Transformer) *PhysicsEntity {
	return &PhysicsEntity{
		owner:    owner,
		body:     physics.InvalidBodyId,
		autoSync: true,
	}
}

// AttachPhysics connects the entity to a scene. Called when the owning entity
// joins a scene.
func (pe *PhysicsEntity) AttachPhysics(scene *physics.Scene) {
	pe.scene = scene
}

// DetachPhysics destroys the underlying body, if any, and disconnects the
// scene. Called when the owning entity leaves its scene.
func (pe *PhysicsEntity) DetachPhysics() error {
	if pe.scene != nil && pe.body != physics.InvalidBodyId {
		if err := pe.scene.DestroyBody(pe.body); err != nil {
			return err
		}
	}
	pe.body = physics.InvalidBodyId
	pe.scene = nil
	return nil
}

// CreatePhysicsBody creates the entity's body in the attached scene.
func (pe *PhysicsEntity) CreatePhysicsBody(def physics.BodyDef) (physics.BodyId, error) {
	if pe.scene == nil {
		return physics.InvalidBodyId, ErrNoScene
	}
	if pe.body != physics.InvalidBodyId {
		return physics.InvalidBodyId, ErrBodyAlreadyCreated
	}
	id, err := pe.scene.CreateBody(def)
	if err != nil {
		return physics.InvalidBodyId, err
	}
	pe.body = id
	return id, nil
}

// Body returns the entity's body id, or InvalidBodyId before creation.
func (pe *PhysicsEntity) Body() physics.BodyId { return pe.body }

// ApplyForce forwards to the scene.
func (pe *PhysicsEntity) ApplyForce(force v.Vec) error {
	if err := pe.check(); err != nil {
		return err
	}
	return pe.scene.ApplyForce(pe.body, force)
}

// ApplyImpulse forwards to the scene.
func (pe *PhysicsEntity) ApplyImpulse(impulse v.Vec) error {
	if err := pe.check(); err != nil {
		return err
	}
	return pe.scene.ApplyImpulse(pe.body, impulse)
}

// SetLinearVelocity forwards to the scene.
func (pe *PhysicsEntity) SetLinearVelocity(vel v.Vec) error {
	if err := pe.check(); err != nil {
		return err
	}
	return pe.scene.SetLinearVelocity(pe.body, vel)
}

// SyncFromPhysics blends the body's previous and current pose by alpha and
// writes the result into the owner's transform. With alpha taken from
// Scene.InterpolationAlpha this hides the mismatch between the fixed physics
// rate and the variable render rate.
func (pe *PhysicsEntity) SyncFromPhysics(alpha float64) error {
	if err := pe.check(); err != nil {
		return err
	}
	prev, err := pe.scene.PrevBodyState(pe.body)
	if err != nil {
		return err
	}
	curr, err := pe.scene.BodyState(pe.body)
	if err != nil {
		return err
	}
	pe.owner.SetPosition(prev.Position.Lerp(curr.Position, alpha))
	pe.owner.SetRotation(prev.Rotation + (curr.Rotation-prev.Rotation)*alpha)
	return nil
}

// SyncToPhysics pushes the owner's current transform into the body, for game
// logic that teleports the entity and needs the body to follow.
func (pe *PhysicsEntity) SyncToPhysics() error {
	if err := pe.check(); err != nil {
		return err
	}
	if err := pe.scene.SetBodyPosition(pe.body, pe.owner.Position()); err != nil {
		return err
	}
	return pe.scene.SetBodyRotation(pe.body, pe.owner.Rotation())
}

// SetAutoSync toggles whether the PostPhysics frame task calls
// SyncFromPhysics for this entity.
func (pe *PhysicsEntity) SetAutoSync(auto bool) { pe.autoSync = auto }

// AutoSync reports whether the entity participates in automatic post-physics
// syncing.
func (pe *PhysicsEntity) AutoSync() bool { return pe.autoSync }

func (pe *PhysicsEntity) check() error {
	if pe.scene == nil {
		return ErrNoScene
	}
	if pe.body == physics.InvalidBodyId {
		return ErrNoBody
	}
	return nil
}
