package sim

import (
	"context"

	"github.com/san-kum/softsim/internal/dynamo"
)

type commandKind int

const (
	cmdPause commandKind = iota
	cmdResume
	cmdStop
)

type command struct {
	kind commandKind
	ack  chan struct{}
}

// Start steps the active scene on a new goroutine. It is valid only while
// Idle. Cancelling ctx stops the run like Stop.
func (m *Manager) Start(ctx context.Context) error {
	m.transition.Lock()
	defer m.transition.Unlock()

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.state != Idle {
		return &LifecycleError{Op: "start", From: m.state}
	}
	if m.active == "" {
		return dynamo.Errorf("start", "", dynamo.ErrUnknownScene)
	}
	sc := m.scenes[m.active]
	dt := m.cfg.Dt
	if dt <= 0 {
		dt = sc.Dt()
	}

	m.steps.Store(0)
	m.err = nil
	published := m.publish(sc, 0, nil)

	ctx, cancel := context.WithCancel(ctx)
	m.cmds = make(chan command)
	r := &run{m: m, sc: sc, dt: dt, cmds: m.cmds, done: m.done, cancel: cancel, published: published}
	m.setState(Running)
	go r.loop(ctx)
	return nil
}

// Pause freezes stepping once the in-flight step has completed. The last
// committed step stays readable.
func (m *Manager) Pause() error {
	return m.send(cmdPause, "pause", Running)
}

// Resume continues a paused run.
func (m *Manager) Resume() error {
	return m.send(cmdResume, "resume", Paused)
}

// Stop ends the run after the in-flight step and waits for the stepping
// goroutine to exit. The last committed positions stay readable.
func (m *Manager) Stop() error {
	return m.send(cmdStop, "stop", Running, Paused)
}

func (m *Manager) send(kind commandKind, op string, from ...State) error {
	m.transition.Lock()
	defer m.transition.Unlock()

	m.mu.Lock()
	st, cmds, done := m.state, m.cmds, m.done
	m.mu.Unlock()

	allowed := false
	for _, s := range from {
		if st == s {
			allowed = true
		}
	}
	if !allowed {
		return &LifecycleError{Op: op, From: st}
	}

	ack := make(chan struct{})
	select {
	case cmds <- command{kind: kind, ack: ack}:
	case <-done:
		// the run ended on its own in the meantime
		return &LifecycleError{Op: op, From: m.State()}
	}
	select {
	case <-ack:
	case <-done:
	}
	if kind == cmdStop {
		<-done
	}
	return nil
}

// Reset prepares a new run after Stopped: the finished active scene is
// unloaded, the readout cleared and the manager returns to Idle.
func (m *Manager) Reset() error {
	m.transition.Lock()
	defer m.transition.Unlock()

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state != Stopped {
		return &LifecycleError{Op: "reset", From: m.state}
	}
	if m.active != "" {
		delete(m.scenes, m.active)
		m.active = ""
	}
	m.clearReadout()
	m.steps.Store(0)
	m.err = nil
	m.cmds = nil
	m.done = make(chan struct{})
	m.setState(Idle)
	return nil
}
