package mesh

import (
	"fmt"

	"github.com/san-kum/softsim/internal/dynamo"
)

// Representations are the three meshes describing one simulated object
// plus the point correspondences between them.
type Representations struct {
	Physics   *Mesh
	Collision *Mesh
	Visual    *Mesh

	PhysicsToCollision Map
	PhysicsToVisual    Map
	CollisionToVisual  Map
}

// Aliased reports whether all three representations share one mesh.
func (r *Representations) Aliased() bool {
	return r.Physics == r.Collision && r.Physics == r.Visual
}

type BuildOptions struct {
	Deformable bool
	// Scale is applied to the input mesh before extraction; 0 and 1 are no-ops.
	Scale float64
	// Visual replaces the extracted surface as the visual representation.
	Visual *Mesh
}

// Build derives the representations an object needs from m.
//
// A volumetric mesh gets its boundary surface extracted once; the surface
// serves as collision and visual representation. Immovable objects alias a
// single mesh for all three roles. Correspondence maps are computed here and
// are read-only afterwards.
func Build(m *Mesh, opts BuildOptions) (*Representations, error) {
	if err := m.Validate(); err != nil {
		return nil, err
	}
	m.Scale(opts.Scale)

	if m.Topology() == TopologySurface {
		if len(m.Triangles) == 0 && !opts.Deformable {
			return nil, dynamo.Errorf("build representations", "", fmt.Errorf("surface mesh has no triangles: %w", dynamo.ErrGeometry))
		}
		return withVisual(aliased(m), opts.Visual)
	}

	surf, surfToVol, err := ExtractSurface(m)
	if err != nil {
		return nil, err
	}
	if !opts.Deformable {
		return withVisual(aliased(surf), opts.Visual)
	}

	p2c := FromIndices(surfToVol)
	r := &Representations{
		Physics:            m,
		Collision:          surf,
		Visual:             surf,
		PhysicsToCollision: p2c,
		PhysicsToVisual:    p2c,
		CollisionToVisual:  Identity(surf.NumPoints()),
	}
	return withVisual(r, opts.Visual)
}

func aliased(m *Mesh) *Representations {
	id := Identity(m.NumPoints())
	return &Representations{
		Physics:            m,
		Collision:          m,
		Visual:             m,
		PhysicsToCollision: id,
		PhysicsToVisual:    id,
		CollisionToVisual:  id,
	}
}

func withVisual(r *Representations, visual *Mesh) (*Representations, error) {
	if visual == nil {
		return r, nil
	}
	if err := visual.Validate(); err != nil {
		return nil, err
	}
	p2v, err := ComputeMap(r.Physics, visual)
	if err != nil {
		return nil, err
	}
	c2v, err := ComputeMap(r.Collision, visual)
	if err != nil {
		return nil, err
	}
	r.Visual = visual
	r.PhysicsToVisual = p2v
	r.CollisionToVisual = c2v
	return r, nil
}
