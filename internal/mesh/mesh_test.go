package mesh

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/san-kum/softsim/internal/dynamo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// two tetrahedra sharing the face (1,2,3)
func twoTets() *Mesh {
	return &Mesh{
		Points: []mgl64.Vec3{
			{0, 0, 0}, {1, 0, 0}, {0, 1, 0}, {0, 0, 1}, {1, 1, 1},
		},
		Tetrahedra: [][4]int{{0, 1, 2, 3}, {1, 2, 3, 4}},
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name string
		mesh *Mesh
		ok   bool
	}{
		{"nil", nil, false},
		{"empty", &Mesh{}, false},
		{"tet", Tetrahedron(mgl64.Vec3{}, 1), true},
		{"bad triangle index", &Mesh{Points: []mgl64.Vec3{{}}, Triangles: [][3]int{{0, 1, 2}}}, false},
		{"bad tet index", &Mesh{Points: []mgl64.Vec3{{}}, Tetrahedra: [][4]int{{0, 0, 0, -1}}}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.mesh.Validate()
			if tt.ok {
				assert.NoError(t, err)
			} else {
				assert.True(t, errors.Is(err, dynamo.ErrGeometry), "got %v", err)
			}
		})
	}
}

func TestExtractSurface_SingleTet(t *testing.T) {
	vol := Tetrahedron(mgl64.Vec3{0, 0, 0}, 1)
	surf, idx, err := ExtractSurface(vol)
	require.NoError(t, err)

	assert.Len(t, surf.Points, 4)
	assert.Len(t, surf.Triangles, 4)
	assert.Equal(t, []int{0, 1, 2, 3}, idx)

	centroid := dynamo.Points(surf.Points).Centroid()
	for _, tri := range surf.Triangles {
		a, b, c := surf.Points[tri[0]], surf.Points[tri[1]], surf.Points[tri[2]]
		n := b.Sub(a).Cross(c.Sub(a))
		assert.Less(t, n.Dot(centroid.Sub(a)), 0.0, "triangle %v must face outward", tri)
	}
}

func TestExtractSurface_SharedFaceIsInterior(t *testing.T) {
	surf, idx, err := ExtractSurface(twoTets())
	require.NoError(t, err)

	assert.Len(t, surf.Triangles, 6)
	assert.Len(t, idx, 5)
}

func TestExtractSurface_RequiresTetrahedra(t *testing.T) {
	_, _, err := ExtractSurface(Quad(0, 0, 1, 0))
	assert.True(t, errors.Is(err, dynamo.ErrGeometry))
}

func TestComputeMap_EveryPointMapsToValidMaster(t *testing.T) {
	master := twoTets()
	slave := &Mesh{Points: []mgl64.Vec3{{0.9, 0.1, 0}, {0, 0, 0}, {1.1, 1, 0.9}}}

	m, err := ComputeMap(master, slave)
	require.NoError(t, err)

	assert.Equal(t, slave.NumPoints(), m.Len())
	assert.True(t, m.Valid(master.NumPoints()))
	assert.Equal(t, 1, m.Master(0))
	assert.Equal(t, 0, m.Master(1))
	assert.Equal(t, 4, m.Master(2))
}

func TestComputeMap_Empty(t *testing.T) {
	_, err := ComputeMap(&Mesh{}, Quad(0, 0, 1, 0))
	assert.True(t, errors.Is(err, dynamo.ErrGeometry))
}

func TestBuild_Deformable(t *testing.T) {
	vol := twoTets()
	reps, err := Build(vol, BuildOptions{Deformable: true})
	require.NoError(t, err)

	assert.Same(t, vol, reps.Physics)
	assert.Same(t, reps.Collision, reps.Visual)
	assert.False(t, reps.Aliased())

	assert.Equal(t, reps.Visual.NumPoints(), reps.PhysicsToVisual.Len())
	assert.True(t, reps.PhysicsToVisual.Valid(vol.NumPoints()))
	assert.True(t, reps.PhysicsToCollision.Valid(vol.NumPoints()))
	assert.True(t, reps.CollisionToVisual.IsIdentity())

	// collision points are exactly the mapped physics points
	mapped := reps.PhysicsToCollision.Apply(vol.Points, nil)
	assert.Equal(t, reps.Collision.Points, mapped)
}

func TestBuild_ImmovableAliases(t *testing.T) {
	quad := Quad(0, 0, 1, 0)
	reps, err := Build(quad, BuildOptions{})
	require.NoError(t, err)

	assert.True(t, reps.Aliased())
	assert.Equal(t, quad.NumPoints(), reps.Visual.NumPoints())
	assert.True(t, reps.PhysicsToVisual.IsIdentity())
}

func TestBuild_ScaleAndVisualOverride(t *testing.T) {
	vol := Tetrahedron(mgl64.Vec3{}, 1)
	visual := &Mesh{Points: []mgl64.Vec3{{2, 0, 0}, {0, 0, 2}}}

	reps, err := Build(vol, BuildOptions{Deformable: true, Scale: 2, Visual: visual})
	require.NoError(t, err)

	assert.Equal(t, mgl64.Vec3{2, 0, 0}, vol.Points[1])
	assert.Same(t, visual, reps.Visual)
	assert.Equal(t, 2, reps.PhysicsToVisual.Len())
	assert.Equal(t, 1, reps.PhysicsToVisual.Master(0))
	assert.Equal(t, 3, reps.PhysicsToVisual.Master(1))
}

func TestBuild_Empty(t *testing.T) {
	_, err := Build(&Mesh{}, BuildOptions{Deformable: true})
	assert.True(t, errors.Is(err, dynamo.ErrGeometry))
}

func TestVTKRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteVTK(&buf, twoTets(), "kidney"))

	got, err := ReadVTK(&buf)
	require.NoError(t, err)
	assert.Equal(t, twoTets(), got)
}

func TestReadVTK_PolydataQuad(t *testing.T) {
	src := `# vtk DataFile Version 3.0
floor
ASCII
DATASET POLYDATA
POINTS 4 float
-1 -1 0  1 -1 0  1 1 0  -1 1 0
POLYGONS 1 5
4 0 1 2 3
POINT_DATA 4
`
	m, err := ReadVTK(strings.NewReader(src))
	require.NoError(t, err)
	assert.Len(t, m.Points, 4)
	assert.Equal(t, [][3]int{{0, 1, 2}, {0, 2, 3}}, m.Triangles)
}

func TestReadVTK_Binary(t *testing.T) {
	_, err := ReadVTK(strings.NewReader("# vtk DataFile Version 3.0\nx\nBINARY\n"))
	assert.True(t, errors.Is(err, dynamo.ErrGeometry))
}

func TestReadVTK_MalformedCounts(t *testing.T) {
	const header = "# vtk DataFile Version 3.0\nbad\nASCII\nDATASET UNSTRUCTURED_GRID\n"
	tests := []struct {
		name string
		body string
	}{
		{"negative points", "POINTS -1 float\n"},
		{"negative cells", "POINTS 1 float\n0 0 0\nCELLS -2 0\n"},
		{"negative cell size", "POINTS 1 float\n0 0 0\nCELLS 1 2\n-3\n"},
		{"negative cell types", "POINTS 1 float\n0 0 0\nCELL_TYPES -1\n"},
		{"points beyond input", "POINTS 4000000000000 float\n0 0 0\n"},
		{"cells beyond input", "POINTS 1 float\n0 0 0\nCELLS 4000000000000 1\n1 0\n"},
		{"cell size beyond input", "POINTS 1 float\n0 0 0\nCELLS 1 2\n4000000000000 0\n"},
		{"not a count", "POINTS many float\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, err := ReadVTK(strings.NewReader(header + tt.body))
			assert.Nil(t, m)
			assert.True(t, errors.Is(err, dynamo.ErrGeometry), "got %v", err)
		})
	}
}
