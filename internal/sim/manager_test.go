package sim

import (
	"bytes"
	"context"
	"log/slog"
	"math"
	"sync"
	"testing"
	"time"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/san-kum/softsim/internal/control"
	"github.com/san-kum/softsim/internal/dynamo"
	"github.com/san-kum/softsim/internal/logging"
	"github.com/san-kum/softsim/internal/mesh"
	"github.com/san-kum/softsim/internal/physics"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingRecorder struct {
	mu          sync.Mutex
	steps       int
	transitions []string
}

func (r *countingRecorder) ObserveStep(string, time.Duration) {
	r.mu.Lock()
	r.steps++
	r.mu.Unlock()
}

func (r *countingRecorder) StateChanged(from, to string) {
	r.mu.Lock()
	r.transitions = append(r.transitions, from+"->"+to)
	r.mu.Unlock()
}

func TestCreateScene(t *testing.T) {
	m := New(Config{})
	_, err := m.ActiveScene()
	assert.ErrorIs(t, err, dynamo.ErrUnknownScene)

	a, err := m.CreateScene("a", true)
	require.NoError(t, err)
	_, err = m.CreateScene("a", false)
	assert.ErrorIs(t, err, dynamo.ErrDuplicateName)

	_, err = m.CreateScene("b", false)
	require.NoError(t, err)
	active, err := m.ActiveScene()
	require.NoError(t, err)
	assert.Same(t, a, active)

	assert.ErrorIs(t, m.SetActiveScene("missing", true), dynamo.ErrUnknownScene)

	// keep a when switching without unloading
	require.NoError(t, m.SetActiveScene("b", false))
	_, err = m.Scene("a")
	assert.NoError(t, err)

	// unload b when switching back
	require.NoError(t, m.SetActiveScene("a", true))
	_, err = m.Scene("b")
	assert.ErrorIs(t, err, dynamo.ErrUnknownScene)
}

func TestUnloadScene(t *testing.T) {
	m := New(Config{})
	_, err := m.CreateScene("a", true)
	require.NoError(t, err)
	require.NoError(t, m.UnloadScene("a"))
	assert.ErrorIs(t, m.UnloadScene("a"), dynamo.ErrUnknownScene)
	_, err = m.ActiveScene()
	assert.ErrorIs(t, err, dynamo.ErrUnknownScene)
}

func TestGetDeformedPositions_UnknownObject(t *testing.T) {
	m := New(Config{})
	_, err := m.GetDeformedPositions("ghost")
	assert.ErrorIs(t, err, dynamo.ErrUnknownObject)
}

// A reader polling from another goroutine while 1000 steps run never sees
// a point count other than the mesh's.
func TestConcurrentReadout(t *testing.T) {
	m := New(Config{MaxSteps: 1000})
	sc, err := m.CreateScene("tri", true)
	require.NoError(t, err)

	tri := mesh.Triangle(mgl64.Vec3{0, 0, 1}, mgl64.Vec3{1, 0, 1}, mgl64.Vec3{0, 1, 1})
	reps, err := mesh.Build(tri, mesh.BuildOptions{Deformable: true})
	require.NoError(t, err)
	cfg := physics.DefaultDeformable()
	cfg.Gravity = mgl64.Vec3{}
	_, err = sc.AddObject("tri", reps, cfg)
	require.NoError(t, err)

	require.NoError(t, m.Start(context.Background()))

	var wg sync.WaitGroup
	for r := 0; r < 3; r++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			buf := make([]mgl64.Vec3, 0, 3)
			for {
				select {
				case <-m.Done():
					return
				default:
				}
				pts, err := m.GetDeformedPositions("tri")
				if assert.NoError(t, err) {
					assert.Len(t, pts, 3)
				}
				buf, _, err = m.ReadPositions("tri", buf)
				if assert.NoError(t, err) {
					assert.Len(t, buf, 3)
				}
			}
		}()
	}

	select {
	case <-m.Done():
	case <-time.After(10 * time.Second):
		t.Fatal("run did not finish")
	}
	wg.Wait()
	assert.Equal(t, uint64(1000), m.Steps())
	assert.Equal(t, Stopped, m.State())
}

func TestStepEvents(t *testing.T) {
	m := New(Config{MaxSteps: 5, EventBuffer: 16})
	sc, err := m.CreateScene("s", true)
	require.NoError(t, err)
	reps, err := mesh.Build(mesh.Quad(0, 0, 1, 0), mesh.BuildOptions{})
	require.NoError(t, err)
	_, err = sc.AddObject("floor", reps, physics.DefaultImmovable())
	require.NoError(t, err)

	require.NoError(t, m.Start(context.Background()))
	<-m.Done()

	var steps []uint64
	for len(m.Events()) > 0 {
		ev := <-m.Events()
		assert.Equal(t, "s", ev.Scene)
		steps = append(steps, ev.Step)
	}
	assert.Equal(t, []uint64{1, 2, 3, 4, 5}, steps)
}

func TestTickInterval(t *testing.T) {
	assert.Equal(t, 10*time.Millisecond, tickInterval(0.01))
	assert.Equal(t, time.Nanosecond, tickInterval(1e-12))
	assert.Equal(t, time.Nanosecond, tickInterval(0))
}

func TestRealTimeSubNanosecondStep(t *testing.T) {
	m := New(Config{Dt: 1e-12, MaxSteps: 5, RealTime: true})
	sc, err := m.CreateScene("s", true)
	require.NoError(t, err)
	reps, err := mesh.Build(mesh.Quad(0, 0, 1, 0), mesh.BuildOptions{})
	require.NoError(t, err)
	_, err = sc.AddObject("floor", reps, physics.DefaultImmovable())
	require.NoError(t, err)

	require.NoError(t, m.Start(context.Background()))
	select {
	case <-m.Done():
	case <-time.After(5 * time.Second):
		t.Fatal("real-time run did not finish")
	}
	require.NoError(t, m.Err())
	assert.Equal(t, uint64(5), m.Steps())
	assert.Equal(t, Stopped, m.State())
}

func TestDivergenceStopsRun(t *testing.T) {
	var buf bytes.Buffer
	rec := &countingRecorder{}
	m := New(Config{}, WithLogger(logging.NewWriter(&buf, slog.LevelDebug)), WithRecorder(rec))
	sc, err := m.CreateScene("s", true)
	require.NoError(t, err)

	reps, err := mesh.Build(mesh.Tetrahedron(mgl64.Vec3{}, 1), mesh.BuildOptions{Deformable: true})
	require.NoError(t, err)
	obj, err := sc.AddObject("tet", reps, physics.DefaultDeformable())
	require.NoError(t, err)
	b, err := sc.Attach("tet", control.NewStatic())
	require.NoError(t, err)
	b.UpdateFromExternalPose(mgl64.Vec3{math.Inf(1), 0, 0}, mgl64.QuatIdent())

	before := dynamo.Points(obj.Committed()).Clone()
	require.NoError(t, m.Start(context.Background()))
	select {
	case <-m.Done():
	case <-time.After(5 * time.Second):
		t.Fatal("run did not stop")
	}

	assert.Equal(t, Stopped, m.State())
	assert.ErrorIs(t, m.Err(), dynamo.ErrDiverged)
	assert.Contains(t, buf.String(), "step failed")
	assert.Contains(t, buf.String(), "scene=s")

	// the readout still holds the last good frame
	pts, err := m.GetDeformedPositions("tet")
	require.NoError(t, err)
	assert.Equal(t, []mgl64.Vec3(before), pts)

	rec.mu.Lock()
	defer rec.mu.Unlock()
	assert.Equal(t, []string{"idle->running", "running->stopped"}, rec.transitions)
}

func TestGetVisualPositions(t *testing.T) {
	m := New(Config{MaxSteps: 1})
	sc, err := m.CreateScene("s", true)
	require.NoError(t, err)

	vis := mesh.Triangle(mgl64.Vec3{0, 0, 0}, mgl64.Vec3{1, 0, 0}, mgl64.Vec3{0, 1, 0})
	reps, err := mesh.Build(mesh.Tetrahedron(mgl64.Vec3{}, 1), mesh.BuildOptions{Deformable: true, Visual: vis})
	require.NoError(t, err)
	cfg := physics.DefaultDeformable()
	cfg.Gravity = mgl64.Vec3{}
	_, err = sc.AddObject("tet", reps, cfg)
	require.NoError(t, err)

	require.NoError(t, m.Start(context.Background()))
	<-m.Done()

	pts, err := m.GetVisualPositions("tet")
	require.NoError(t, err)
	assert.Len(t, pts, 3)
	phys, _ := m.GetDeformedPositions("tet")
	assert.Equal(t, phys[1], pts[1])
}
