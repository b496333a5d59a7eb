package scene

import (
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/san-kum/softsim/internal/control"
	"github.com/san-kum/softsim/internal/dynamo"
	"github.com/san-kum/softsim/internal/mesh"
	"github.com/san-kum/softsim/internal/physics"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func floorReps(t *testing.T) *mesh.Representations {
	t.Helper()
	reps, err := mesh.Build(mesh.Quad(0, 0, 1, 0), mesh.BuildOptions{})
	require.NoError(t, err)
	return reps
}

func tetReps(t *testing.T, origin mgl64.Vec3) *mesh.Representations {
	t.Helper()
	reps, err := mesh.Build(mesh.Tetrahedron(origin, 0.5), mesh.BuildOptions{Deformable: true})
	require.NoError(t, err)
	return reps
}

// floorDrop is the quad + falling tetrahedron scene.
func floorDrop(t *testing.T) *Scene {
	t.Helper()
	sc := New("drop")
	_, err := sc.AddObject("floor", floorReps(t), physics.DefaultImmovable())
	require.NoError(t, err)

	cfg := physics.DefaultDeformable()
	cfg.Dt = 0.01
	_, err = sc.AddObject("tet", tetReps(t, mgl64.Vec3{-0.25, -0.25, 0.5}), cfg)
	require.NoError(t, err)
	require.NoError(t, sc.AddCollisionInteraction("floor", "tet", 0))
	return sc
}

func TestAddObject_DuplicateDoesNotMutate(t *testing.T) {
	sc := New("s")
	first, err := sc.AddObject("a", floorReps(t), physics.DefaultImmovable())
	require.NoError(t, err)

	_, err = sc.AddObject("a", tetReps(t, mgl64.Vec3{}), physics.DefaultDeformable())
	assert.ErrorIs(t, err, dynamo.ErrDuplicateName)

	assert.Equal(t, 1, sc.Len())
	got, ok := sc.Object("a")
	require.True(t, ok)
	assert.Same(t, first, got)
	assert.Equal(t, physics.Immovable, got.Kind())
}

func TestAddObject_InvalidGeometry(t *testing.T) {
	sc := New("s")
	_, err := sc.AddObject("a", &mesh.Representations{}, physics.DefaultDeformable())
	assert.ErrorIs(t, err, dynamo.ErrInvalidGeometry)
	assert.Zero(t, sc.Len())
}

func TestAddObject_AliasedRoundTrip(t *testing.T) {
	in := mesh.Quad(0, 0, 1, 0)
	reps, err := mesh.Build(in, mesh.BuildOptions{})
	require.NoError(t, err)

	sc := New("s")
	obj, err := sc.AddObject("floor", reps, physics.DefaultImmovable())
	require.NoError(t, err)
	assert.Equal(t, len(in.Points), obj.Representations().Visual.NumPoints())
}

func TestAddCollisionInteraction_UnknownObject(t *testing.T) {
	sc := New("s")
	_, err := sc.AddObject("floor", floorReps(t), physics.DefaultImmovable())
	require.NoError(t, err)

	err = sc.AddCollisionInteraction("floor", "tet", 0)
	assert.ErrorIs(t, err, dynamo.ErrUnknownObject)
	assert.Empty(t, sc.Interactions())
}

func TestAttach(t *testing.T) {
	sc := floorDrop(t)
	_, err := sc.Attach("ghost", control.NewStatic())
	assert.ErrorIs(t, err, dynamo.ErrUnknownObject)

	b, err := sc.Attach("tet", control.NewStatic())
	require.NoError(t, err)
	assert.Len(t, sc.Bindings(), 1)
	assert.True(t, sc.Detach(b))
	assert.False(t, sc.Detach(b))
}

func TestRemoveObject(t *testing.T) {
	sc := floorDrop(t)
	_, err := sc.Attach("tet", control.NewStatic())
	require.NoError(t, err)

	require.NoError(t, sc.RemoveObject("tet"))
	assert.Equal(t, 1, sc.Len())
	assert.Empty(t, sc.Interactions())
	assert.Empty(t, sc.Bindings())
	_, ok := sc.Object("tet")
	assert.False(t, ok)

	assert.ErrorIs(t, sc.RemoveObject("tet"), dynamo.ErrUnknownObject)

	// the name is free again
	_, err = sc.AddObject("tet", tetReps(t, mgl64.Vec3{}), physics.DefaultDeformable())
	assert.NoError(t, err)
}

func TestDt(t *testing.T) {
	sc := New("s")
	assert.Equal(t, physics.DefaultDt, sc.Dt())
	assert.Equal(t, 0.01, floorDrop(t).Dt())
}

func TestStep_FloorDrop(t *testing.T) {
	sc := floorDrop(t)
	for i := 0; i < 100; i++ {
		require.NoError(t, sc.Step(0.01))
	}

	tet, _ := sc.Object("tet")
	floor, _ := sc.Object("floor")
	lowest := dynamo.Points(tet.Committed()).Min(2)
	surface := dynamo.Points(floor.Committed()).Min(2)
	assert.GreaterOrEqual(t, lowest, surface-physics.DefaultProximity)
	assert.Less(t, lowest, 0.5, "the tetrahedron should have fallen")
	assert.InDelta(t, 1.0, sc.Time(), 1e-9)
}

func TestStep_RejectsNonPositiveDt(t *testing.T) {
	assert.ErrorIs(t, floorDrop(t).Step(0), dynamo.ErrInvalidConfig)
}

func TestStep_TargetDrivesImmovable(t *testing.T) {
	sc := New("s")
	_, err := sc.AddObject("tool", floorReps(t), physics.DefaultImmovable())
	require.NoError(t, err)
	b, err := sc.Attach("tool", control.NewStatic())
	require.NoError(t, err)

	b.UpdateFromExternalPose(mgl64.Vec3{0, 0, 2}, mgl64.QuatIdent())
	require.NoError(t, sc.Step(0.01))

	tool, _ := sc.Object("tool")
	c := dynamo.Points(tool.Committed()).Centroid()
	assert.InDelta(t, 2, c.Z(), 1e-9)
	assert.InDelta(t, 0, b.LastError(), 1e-9)
}

func TestStep_ForceModePullsDeformable(t *testing.T) {
	sc := New("s")
	cfg := physics.DefaultDeformable()
	cfg.Gravity = mgl64.Vec3{}
	obj, err := sc.AddObject("tet", tetReps(t, mgl64.Vec3{}), cfg)
	require.NoError(t, err)
	b, err := sc.Attach("tet", control.NewStatic())
	require.NoError(t, err)
	b.Mode = control.ModeForce

	start := dynamo.Points(obj.Committed()).Centroid()
	b.UpdateFromExternalPose(start.Add(mgl64.Vec3{1, 0, 0}), mgl64.QuatIdent())
	for i := 0; i < 10; i++ {
		require.NoError(t, sc.Step(0.01))
	}
	c := dynamo.Points(obj.Committed()).Centroid()
	assert.Greater(t, c.X(), start.X())
}
