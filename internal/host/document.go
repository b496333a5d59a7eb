// Package host models the application document that stores meshes
// persistently, and the two bridges between it and a running simulation:
// mesh acquisition and periodic write-back of deformed points.
package host

import (
	"fmt"
	"os"
	"sync"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/san-kum/softsim/internal/dynamo"
	"github.com/san-kum/softsim/internal/mesh"
)

// Document is the host's mesh store.
type Document interface {
	ReadMeshGeometry(handle string) (*mesh.Mesh, error)
	WriteMeshGeometry(handle string, points []mgl64.Vec3) error
	// TemporaryFileWrite exports the mesh to a file readable by
	// mesh.ReadVTKFile and returns its path. The caller removes it.
	TemporaryFileWrite(handle string) (string, error)
}

// MemoryDocument is an in-process Document.
type MemoryDocument struct {
	mu      sync.RWMutex
	meshes  map[string]*mesh.Mesh
	writes  map[string]int
	tempDir string
}

func NewMemoryDocument() *MemoryDocument {
	return &MemoryDocument{
		meshes: make(map[string]*mesh.Mesh),
		writes: make(map[string]int),
	}
}

// SetTempDir selects where TemporaryFileWrite creates files; empty uses os.TempDir.
func (d *MemoryDocument) SetTempDir(dir string) {
	d.mu.Lock()
	d.tempDir = dir
	d.mu.Unlock()
}

// Put stores a copy of m under handle.
func (d *MemoryDocument) Put(handle string, m *mesh.Mesh) {
	d.mu.Lock()
	d.meshes[handle] = m.Clone()
	d.mu.Unlock()
}

func (d *MemoryDocument) Handles() []string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	out := make([]string, 0, len(d.meshes))
	for h := range d.meshes {
		out = append(out, h)
	}
	return out
}

// Writes counts successful WriteMeshGeometry calls for handle.
func (d *MemoryDocument) Writes(handle string) int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.writes[handle]
}

func (d *MemoryDocument) ReadMeshGeometry(handle string) (*mesh.Mesh, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	m, ok := d.meshes[handle]
	if !ok {
		return nil, dynamo.Errorf("read mesh geometry", handle, dynamo.ErrUnknownObject)
	}
	return m.Clone(), nil
}

func (d *MemoryDocument) WriteMeshGeometry(handle string, points []mgl64.Vec3) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	m, ok := d.meshes[handle]
	if !ok {
		return dynamo.Errorf("write mesh geometry", handle, dynamo.ErrUnknownObject)
	}
	if len(points) != len(m.Points) {
		return dynamo.Errorf("write mesh geometry", handle,
			fmt.Errorf("%d points for a mesh of %d: %w", len(points), len(m.Points), dynamo.ErrGeometry))
	}
	copy(m.Points, points)
	d.writes[handle]++
	return nil
}

func (d *MemoryDocument) TemporaryFileWrite(handle string) (string, error) {
	m, err := d.ReadMeshGeometry(handle)
	if err != nil {
		return "", err
	}
	d.mu.RLock()
	dir := d.tempDir
	d.mu.RUnlock()

	f, err := os.CreateTemp(dir, "softsim-*.vtk")
	if err != nil {
		return "", fmt.Errorf("create temporary mesh file: %w", err)
	}
	if err := mesh.WriteVTK(f, m, handle); err != nil {
		f.Close()
		os.Remove(f.Name())
		return "", err
	}
	if err := f.Close(); err != nil {
		os.Remove(f.Name())
		return "", err
	}
	return f.Name(), nil
}
