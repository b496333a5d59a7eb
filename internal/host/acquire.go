package host

import (
	"log/slog"
	"os"

	"github.com/san-kum/softsim/internal/logging"
	"github.com/san-kum/softsim/internal/mesh"
)

// Acquire loads a document mesh through the mesh file reader: the mesh is
// exported to a temporary file, read back and the file removed. A failed
// removal is logged and does not fail the call.
func Acquire(doc Document, handle string, log *slog.Logger) (*mesh.Mesh, error) {
	if log == nil {
		log = logging.NewNop()
	}
	path, err := doc.TemporaryFileWrite(handle)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := os.Remove(path); err != nil {
			log.Warn("could not remove temporary mesh file", "path", path, "err", err)
		}
	}()
	return mesh.ReadVTKFile(path)
}
