package host

import (
	"context"
	"log/slog"
	"time"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/san-kum/softsim/internal/logging"
)

// PositionSource is the readout side of a running simulation.
type PositionSource interface {
	GetVisualPositions(name string) ([]mgl64.Vec3, error)
}

// Syncer copies deformed positions back into the document at its own
// cadence, independent of the simulation step.
type Syncer struct {
	Doc      Document
	Source   PositionSource
	Interval time.Duration
	Logger   *slog.Logger

	// Tracked maps simulation object names to document handles.
	Tracked map[string]string
}

func (s *Syncer) Track(object, handle string) {
	if s.Tracked == nil {
		s.Tracked = make(map[string]string)
	}
	s.Tracked[object] = handle
}

// SyncOnce writes every tracked object once and returns how many were
// written. Objects without a frame or with a point count that does not
// match the document mesh are skipped.
func (s *Syncer) SyncOnce() int {
	log := s.Logger
	if log == nil {
		log = logging.NewNop()
	}
	written := 0
	for obj, handle := range s.Tracked {
		pts, err := s.Source.GetVisualPositions(obj)
		if err != nil {
			continue
		}
		doc, err := s.Doc.ReadMeshGeometry(handle)
		if err != nil {
			log.Debug("sync skipped", "object", obj, "handle", handle, "err", err)
			continue
		}
		if len(doc.Points) != len(pts) {
			log.Debug("sync skipped", "object", obj, "handle", handle, "points", len(pts), "want", len(doc.Points))
			continue
		}
		if err := s.Doc.WriteMeshGeometry(handle, pts); err != nil {
			log.Warn("write back failed", "object", obj, "handle", handle, "err", err)
			continue
		}
		written++
	}
	return written
}

// Run syncs every Interval until ctx ends, then syncs one final time so
// the document holds the last committed step. It returns ctx.Err().
func (s *Syncer) Run(ctx context.Context) error {
	interval := s.Interval
	if interval <= 0 {
		interval = 50 * time.Millisecond
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.SyncOnce()
			return ctx.Err()
		case <-ticker.C:
			s.SyncOnce()
		}
	}
}
