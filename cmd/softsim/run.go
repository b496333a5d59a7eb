package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"time"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/san-kum/softsim/internal/config"
	"github.com/san-kum/softsim/internal/control"
	"github.com/san-kum/softsim/internal/host"
	"github.com/san-kum/softsim/internal/mesh"
	"github.com/san-kum/softsim/internal/metrics"
	"github.com/san-kum/softsim/internal/physics"
	"github.com/san-kum/softsim/internal/scene"
	"github.com/san-kum/softsim/internal/sim"
	"github.com/san-kum/softsim/internal/storage"
	"github.com/san-kum/softsim/internal/tui"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

const pollInterval = 10 * time.Millisecond

// session is a built scene on a manager, ready to start.
type session struct {
	cfg      *config.Config
	mgr      *sim.Manager
	scene    *scene.Scene
	bindings []*control.Binding
	dt       float64
	log      *slog.Logger
}

func newSession(cmd *cobra.Command, opts ...sim.Option) (*session, error) {
	log, err := newLogger()
	if err != nil {
		return nil, err
	}
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}

	opts = append([]sim.Option{sim.WithLogger(log)}, opts...)
	mgr := sim.New(cfg.SimConfig(), opts...)
	sc, bindings, err := config.Build(cfg, mgr)
	if err != nil {
		return nil, err
	}

	step := cfg.Dt
	if step <= 0 {
		step = sc.Dt()
	}
	return &session{cfg: cfg, mgr: mgr, scene: sc, bindings: bindings, dt: step, log: log}, nil
}

// pollers forwards every controller's pose source into its binding until
// ctx ends.
func (s *session) pollers(ctx context.Context, g *errgroup.Group) {
	for _, b := range s.bindings {
		b := b
		g.Go(func() error {
			err := control.Poll(ctx, b.Source(), b, pollInterval)
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		})
	}
}

func (s *session) frameInterval() time.Duration {
	fps := s.cfg.FPS
	if fps <= 0 {
		fps = config.DefaultFPS
	}
	return time.Second / time.Duration(fps)
}

func runScene(cmd *cobra.Command, args []string) error {
	prom := metrics.NewPrometheus()
	s, err := newSession(cmd, sim.WithRecorder(prom))
	if err != nil {
		return err
	}
	if sampleN == 0 {
		sampleN = 1
	}

	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}

	doc := host.NewMemoryDocument()
	syncer := &host.Syncer{Doc: doc, Source: s.mgr, Interval: s.frameInterval(), Logger: s.log}
	for _, o := range s.scene.Objects() {
		doc.Put(o.Name(), o.Representations().Visual.Clone())
		syncer.Track(o.Name(), o.Name())
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	auxCtx, stopAux := context.WithCancel(ctx)
	defer stopAux()
	g, gctx := errgroup.WithContext(auxCtx)

	s.pollers(gctx, g)
	g.Go(func() error {
		err := syncer.Run(gctx)
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return err
	})
	if metricAddr != "" {
		srv := &http.Server{Addr: metricAddr, Handler: prom.Handler()}
		g.Go(func() error {
			s.log.Info("serving metrics", "addr", metricAddr)
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		})
		g.Go(func() error {
			<-gctx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		})
	}

	rec := newRecorder(s)
	fmt.Printf("running %s (%d objects, dt %g)...\n", s.cfg.Scene.Name, len(s.scene.Objects()), s.dt)
	start := time.Now()

	if err := rec.run(gctx, g, stopAux); err != nil {
		return err
	}
	elapsed := time.Since(start)

	runErr := s.mgr.Err()
	meta := storage.RunMetadata{
		Scene:        s.cfg.Scene.Name,
		Timestamp:    start,
		Dt:           s.dt,
		Steps:        s.mgr.Steps(),
		Objects:      rec.objectMeta(),
		Interactions: len(s.scene.Interactions()),
		Metrics:      rec.values(),
	}
	if runErr != nil {
		meta.Error = runErr.Error()
	}
	runID, err := st.Save(meta, rec.recording)
	if err != nil {
		return err
	}

	if outDir != "" {
		if err := writeMeshes(doc, outDir, s.log); err != nil {
			return err
		}
	}

	fmt.Printf("completed in %v\n", elapsed)
	fmt.Printf("run id: %s\n", runID)
	fmt.Printf("steps: %d\n", meta.Steps)
	fmt.Println("\nmetrics:")
	names := make([]string, 0, len(meta.Metrics))
	for name := range meta.Metrics {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Printf("  %s: %.6f\n", name, meta.Metrics[name])
	}
	return runErr
}

// writeMeshes acquires every document mesh through the temporary file bridge
// and writes it to dir as <handle>.vtk.
func writeMeshes(doc *host.MemoryDocument, dir string, log *slog.Logger) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}
	for _, h := range doc.Handles() {
		m, err := host.Acquire(doc, h, log)
		if err != nil {
			return err
		}
		path := filepath.Join(dir, h+".vtk")
		if err := mesh.WriteVTKFile(path, m, h); err != nil {
			return err
		}
		fmt.Printf("wrote %s\n", path)
	}
	return nil
}

// recorder samples the readout on step events into a recording and the
// per-object metrics.
type recorder struct {
	s         *session
	recording *storage.Recording
	metrics   map[string][]metrics.Metric
	effort    map[string]*control.Binding
	buf       map[string][]mgl64.Vec3
	last      uint64
}

func newRecorder(s *session) *recorder {
	r := &recorder{
		s:         s,
		recording: &storage.Recording{},
		metrics:   make(map[string][]metrics.Metric),
		effort:    make(map[string]*control.Binding),
		buf:       make(map[string][]mgl64.Vec3),
	}
	for _, o := range s.scene.Objects() {
		if o.Kind() == physics.Deformable {
			r.metrics[o.Name()] = metrics.Defaults(o.Config().Mass)
		}
	}
	for _, b := range s.bindings {
		r.effort[b.Object()] = b
	}
	return r
}

// run starts the manager and samples its step events until the run ends.
// stop cancels ctx; g is joined before the final sample is taken, so the
// recorder is only touched by one goroutine at a time.
func (r *recorder) run(ctx context.Context, g *errgroup.Group, stop context.CancelFunc) error {
	if err := r.s.mgr.Start(ctx); err != nil {
		stop()
		_ = g.Wait()
		return err
	}
	g.Go(func() error {
		r.consume(ctx)
		return nil
	})

	<-r.s.mgr.Done()
	stop()
	if err := g.Wait(); err != nil {
		return err
	}
	r.sample()
	return nil
}

func (r *recorder) consume(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-r.s.mgr.Done():
			return
		case ev := <-r.s.mgr.Events():
			if ev.Step-r.last >= sampleN {
				r.sample()
			}
		}
	}
}

// sample records the latest committed frame once per step.
func (r *recorder) sample() {
	var step uint64
	positions := make(map[string][]mgl64.Vec3, len(r.buf))
	for _, name := range r.s.mgr.Objects() {
		pts, n, err := r.s.mgr.ReadPositions(name, r.buf[name])
		if err != nil {
			continue
		}
		r.buf[name] = pts
		positions[name] = pts
		step = n
	}
	if len(positions) == 0 || (step == r.last && len(r.recording.Frames) > 0) {
		return
	}
	r.last = step

	t := float64(step) * r.s.dt
	r.recording.Add(step, t, positions)
	for name, ms := range r.metrics {
		pts, ok := positions[name]
		if !ok {
			continue
		}
		var effort float64
		if b, ok := r.effort[name]; ok {
			effort = b.LastError()
		}
		for _, m := range ms {
			m.Observe(pts, effort, t)
		}
	}
}

func (r *recorder) values() map[string]float64 {
	out := make(map[string]float64)
	for name, ms := range r.metrics {
		for _, m := range ms {
			out[name+"."+m.Name()] = m.Value()
		}
	}
	return out
}

func (r *recorder) objectMeta() []storage.ObjectMeta {
	objs := r.s.scene.Objects()
	out := make([]storage.ObjectMeta, 0, len(objs))
	for _, o := range objs {
		out = append(out, storage.ObjectMeta{
			Name:   o.Name(),
			Kind:   o.Kind().String(),
			Points: o.Model().NumPoints(),
		})
	}
	return out
}

func runLive(cmd *cobra.Command, args []string) error {
	s, err := newSession(cmd)
	if err != nil {
		return err
	}

	track := tracked
	if track == "" {
		for _, o := range s.scene.Objects() {
			if o.Kind() == physics.Deformable {
				track = o.Name()
				break
			}
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	g, gctx := errgroup.WithContext(ctx)
	s.pollers(gctx, g)

	if err := s.mgr.Start(gctx); err != nil {
		return err
	}
	g.Go(func() error {
		defer stop()
		return tui.RunLive(s.mgr, s.cfg.Scene.Name, track, s.frameInterval())
	})
	if err := g.Wait(); err != nil {
		return err
	}

	if st := s.mgr.State(); st == sim.Running || st == sim.Paused {
		if err := s.mgr.Stop(); err != nil {
			return err
		}
	}
	<-s.mgr.Done()
	return s.mgr.Err()
}
