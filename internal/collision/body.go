// Package collision holds the interaction graph: the set of object pairs
// whose collision meshes are tested against each other while a scene steps.
package collision

import "github.com/go-gl/mathgl/mgl64"

// Body is the view of a simulated object the contact solver needs.
type Body interface {
	Name() string
	Collidable() bool
	Proximity() float64
	ContactStiffness() float64

	CollisionTriangles() [][3]int
	NumCollisionPoints() int
	// CollisionToPhysics returns the physics point that drives collision point i.
	CollisionToPhysics(i int) int

	InvMass(physicsIdx int) float64
	Predicted() []mgl64.Vec3
	Committed() []mgl64.Vec3
	Correct(physicsIdx int, delta mgl64.Vec3)
}

// Registry resolves object names to bodies.
type Registry interface {
	Body(name string) (Body, bool)
}
