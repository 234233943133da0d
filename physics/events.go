package physics

import (
	"github.com/setanarut/v"
)

// CollisionEvent describes a contact between two bodies, delivered to begin
// and end callbacks. For an end event the contact fields hold the values of
// the last sub-step in which the pair overlapped.
type CollisionEvent struct {
	BodyA BodyId
	BodyB BodyId
	// Normal is the contact normal pointing from BodyA toward BodyB.
	Normal v.Vec
	// Penetration is the overlap depth along Normal.
	Penetration float64
	// Point is the representative contact point in world coordinates.
	Point v.Vec
}

// CollisionFunc is a collision callback. Callbacks run synchronously from
// inside Scene.Step, so downstream game logic observes events before later
// phases of the same frame.
type CollisionFunc func(CollisionEvent)

// RaycastHit reports the closest body hit by a Scene.Raycast.
type RaycastHit struct {
	Body BodyId
	// Point is the hit position on the body surface.
	Point v.Vec
	// Normal is the surface normal at the hit point.
	Normal v.Vec
	// Distance is measured along the ray from its origin.
	Distance float64
}
