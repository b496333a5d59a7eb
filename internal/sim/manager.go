package sim

import (
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/san-kum/softsim/internal/dynamo"
	"github.com/san-kum/softsim/internal/logging"
	"github.com/san-kum/softsim/internal/meshsync"
	"github.com/san-kum/softsim/internal/physics"
	"github.com/san-kum/softsim/internal/scene"
)

type Option func(*Manager)

func WithLogger(l *slog.Logger) Option {
	return func(m *Manager) {
		if l != nil {
			m.log = l
		}
	}
}

func WithRecorder(r Recorder) Option {
	return func(m *Manager) {
		if r != nil {
			m.rec = r
		}
	}
}

// Manager owns named scenes, tracks the active one and runs it on a
// dedicated stepping goroutine through the Idle, Running, Paused, Stopped
// lifecycle.
type Manager struct {
	cfg Config
	log *slog.Logger
	rec Recorder

	// transition serializes lifecycle calls; mu guards the fields below it.
	transition sync.Mutex
	mu         sync.Mutex
	scenes     map[string]*scene.Scene
	active     string
	state      State
	cmds       chan command
	done       chan struct{}
	err        error

	steps   atomic.Uint64
	snap    *meshsync.Channel
	objects sync.Map // name -> *physics.Object of the running scene
	events  chan StepEvent
}

func New(cfg Config, opts ...Option) *Manager {
	if cfg.EventBuffer <= 0 {
		cfg.EventBuffer = 64
	}
	m := &Manager{
		cfg:    cfg,
		log:    logging.NewNop(),
		rec:    nopRecorder{},
		scenes: make(map[string]*scene.Scene),
		done:   make(chan struct{}),
		snap:   meshsync.NewChannel(),
		events: make(chan StepEvent, cfg.EventBuffer),
	}
	for _, o := range opts {
		o(m)
	}
	return m
}

func (m *Manager) Config() Config { return m.cfg }

// CreateScene registers an empty scene. With makeActive it also becomes
// the active scene, unloading the previous one.
func (m *Manager) CreateScene(name string, makeActive bool) (*scene.Scene, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.scenes[name]; ok {
		return nil, dynamo.Errorf("create scene", name, dynamo.ErrDuplicateName)
	}
	if makeActive && m.stepping() {
		return nil, &LifecycleError{Op: "create scene", From: m.state}
	}
	sc := scene.New(name)
	m.scenes[name] = sc
	if makeActive {
		m.activate(name, true)
	}
	return sc, nil
}

// SetActiveScene makes name the scene that Start will step. With
// unloadPrevious the previously active scene is destroyed.
func (m *Manager) SetActiveScene(name string, unloadPrevious bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.scenes[name]; !ok {
		return dynamo.Errorf("set active scene", name, dynamo.ErrUnknownScene)
	}
	if m.stepping() {
		return &LifecycleError{Op: "set active scene", From: m.state}
	}
	m.activate(name, unloadPrevious)
	return nil
}

func (m *Manager) activate(name string, unloadPrevious bool) {
	if m.active != "" && m.active != name && unloadPrevious {
		delete(m.scenes, m.active)
		m.log.Debug("scene unloaded", "scene", m.active)
	}
	if m.active != name {
		m.clearReadout()
	}
	m.active = name
}

// UnloadScene destroys a scene. The active scene cannot be unloaded while
// it is being stepped.
func (m *Manager) UnloadScene(name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.scenes[name]; !ok {
		return dynamo.Errorf("unload scene", name, dynamo.ErrUnknownScene)
	}
	if name == m.active {
		if m.stepping() {
			return &LifecycleError{Op: "unload scene", From: m.state}
		}
		m.active = ""
		m.clearReadout()
	}
	delete(m.scenes, name)
	return nil
}

func (m *Manager) Scene(name string) (*scene.Scene, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	sc, ok := m.scenes[name]
	if !ok {
		return nil, dynamo.Errorf("scene", name, dynamo.ErrUnknownScene)
	}
	return sc, nil
}

// ActiveScene returns the active scene, or ErrUnknownScene when none is set.
func (m *Manager) ActiveScene() (*scene.Scene, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.active == "" {
		return nil, dynamo.Errorf("active scene", "", dynamo.ErrUnknownScene)
	}
	return m.scenes[m.active], nil
}

func (m *Manager) SceneNames() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	names := make([]string, 0, len(m.scenes))
	for n := range m.scenes {
		names = append(names, n)
	}
	return names
}

func (m *Manager) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// Done is closed when the current run ends.
func (m *Manager) Done() <-chan struct{} {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.done
}

// Err is the error that stopped the current run, if any.
func (m *Manager) Err() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.err
}

// Events delivers a notification after every committed step.
func (m *Manager) Events() <-chan StepEvent { return m.events }

// Steps counts the steps committed in the current run.
func (m *Manager) Steps() uint64 { return m.steps.Load() }

// stepping reports whether a stepping goroutine owns the active scene.
// Callers hold m.mu.
func (m *Manager) stepping() bool {
	return m.state == Running || m.state == Paused
}

// setState records a transition. Callers hold m.mu.
func (m *Manager) setState(to State) {
	from := m.state
	if from == to {
		return
	}
	m.state = to
	m.log.Debug("lifecycle", "from", from.String(), "to", to.String())
	m.rec.StateChanged(from.String(), to.String())
}

func (m *Manager) clearReadout() {
	m.snap.Reset()
	m.objects.Range(func(k, _ any) bool {
		m.objects.Delete(k)
		return true
	})
}

func (m *Manager) lookupObject(name string) (*physics.Object, bool) {
	v, ok := m.objects.Load(name)
	if !ok {
		return nil, false
	}
	return v.(*physics.Object), true
}
