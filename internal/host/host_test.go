package host

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/san-kum/softsim/internal/dynamo"
	"github.com/san-kum/softsim/internal/mesh"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixedSource map[string][]mgl64.Vec3

func (f fixedSource) GetVisualPositions(name string) ([]mgl64.Vec3, error) {
	p, ok := f[name]
	if !ok {
		return nil, dynamo.ErrUnknownObject
	}
	return p, nil
}

func TestAcquire(t *testing.T) {
	dir := t.TempDir()
	doc := NewMemoryDocument()
	doc.SetTempDir(dir)
	doc.Put("liver", mesh.Tetrahedron(mgl64.Vec3{1, 2, 3}, 2))

	m, err := Acquire(doc, "liver", nil)
	require.NoError(t, err)
	assert.Len(t, m.Points, 4)
	assert.Equal(t, [][4]int{{0, 1, 2, 3}}, m.Tetrahedra)
	assert.Equal(t, mgl64.Vec3{1, 2, 5}, m.Points[3])

	// the temporary file is gone
	left, err := filepath.Glob(filepath.Join(dir, "*.vtk"))
	require.NoError(t, err)
	assert.Empty(t, left)
}

func TestAcquire_UnknownHandle(t *testing.T) {
	_, err := Acquire(NewMemoryDocument(), "ghost", nil)
	assert.ErrorIs(t, err, dynamo.ErrUnknownObject)
}

func TestMemoryDocument_WriteMismatch(t *testing.T) {
	doc := NewMemoryDocument()
	doc.Put("quad", mesh.Quad(0, 0, 1, 0))
	err := doc.WriteMeshGeometry("quad", []mgl64.Vec3{{}})
	assert.ErrorIs(t, err, dynamo.ErrGeometry)
	assert.Zero(t, doc.Writes("quad"))
}

func TestSyncer(t *testing.T) {
	doc := NewMemoryDocument()
	doc.Put("tri", mesh.Triangle(mgl64.Vec3{}, mgl64.Vec3{1, 0, 0}, mgl64.Vec3{0, 1, 0}))
	doc.Put("quad", mesh.Quad(0, 0, 1, 0))

	moved := []mgl64.Vec3{{0, 0, 1}, {1, 0, 1}, {0, 1, 1}}
	src := fixedSource{"tri": moved, "quad": moved}

	s := &Syncer{Doc: doc, Source: src}
	s.Track("tri", "tri")
	s.Track("quad", "quad")
	s.Track("ghost", "tri")

	assert.Equal(t, 1, s.SyncOnce())
	m, err := doc.ReadMeshGeometry("tri")
	require.NoError(t, err)
	assert.Equal(t, moved, m.Points)
	assert.Zero(t, doc.Writes("quad"))
}

func TestSyncer_Run(t *testing.T) {
	doc := NewMemoryDocument()
	doc.Put("tri", mesh.Triangle(mgl64.Vec3{}, mgl64.Vec3{1, 0, 0}, mgl64.Vec3{0, 1, 0}))
	s := &Syncer{
		Doc:      doc,
		Source:   fixedSource{"tri": {{0, 0, 2}, {1, 0, 2}, {0, 1, 2}}},
		Interval: time.Millisecond,
	}
	s.Track("tri", "tri")

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Run(ctx) }()

	assert.Eventually(t, func() bool { return doc.Writes("tri") > 2 }, time.Second, time.Millisecond)
	cancel()
	assert.ErrorIs(t, <-done, context.Canceled)
}

func TestTemporaryFileWrite(t *testing.T) {
	doc := NewMemoryDocument()
	doc.SetTempDir(t.TempDir())
	doc.Put("quad", mesh.Quad(0, 0, 1, 0))
	path, err := doc.TemporaryFileWrite("quad")
	require.NoError(t, err)
	defer os.Remove(path)

	m, err := mesh.ReadVTKFile(path)
	require.NoError(t, err)
	assert.Len(t, m.Triangles, 2)
}
