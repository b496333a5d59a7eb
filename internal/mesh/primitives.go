package mesh

import "github.com/go-gl/mathgl/mgl64"

// Tetrahedron returns a single right-corner tetrahedron of the given edge
// length with its base on the plane z = origin.Z().
func Tetrahedron(origin mgl64.Vec3, edge float64) *Mesh {
	return &Mesh{
		Points: []mgl64.Vec3{
			origin,
			origin.Add(mgl64.Vec3{edge, 0, 0}),
			origin.Add(mgl64.Vec3{0, edge, 0}),
			origin.Add(mgl64.Vec3{0, 0, edge}),
		},
		Tetrahedra: [][4]int{{0, 1, 2, 3}},
	}
}

// Quad returns a flat square of side 2*half centred on (cx, cy) at height z,
// split into two upward-facing triangles.
func Quad(cx, cy, half, z float64) *Mesh {
	return &Mesh{
		Points: []mgl64.Vec3{
			{cx - half, cy - half, z},
			{cx + half, cy - half, z},
			{cx + half, cy + half, z},
			{cx - half, cy + half, z},
		},
		Triangles: [][3]int{{0, 1, 2}, {0, 2, 3}},
	}
}

// Triangle returns a single triangle with the given corners.
func Triangle(a, b, c mgl64.Vec3) *Mesh {
	return &Mesh{
		Points:    []mgl64.Vec3{a, b, c},
		Triangles: [][3]int{{0, 1, 2}},
	}
}
