package tui

import (
	"fmt"
	"sort"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/guptarohit/asciigraph"
	"github.com/san-kum/softsim/internal/dynamo"
	"github.com/san-kum/softsim/internal/sim"
)

var (
	cyan   = lipgloss.NewStyle().Foreground(lipgloss.Color("86"))
	white  = lipgloss.NewStyle().Foreground(lipgloss.Color("255"))
	dim    = lipgloss.NewStyle().Foreground(lipgloss.Color("242"))
	dimmer = lipgloss.NewStyle().Foreground(lipgloss.Color("238"))
	green  = lipgloss.NewStyle().Foreground(lipgloss.Color("82"))
	yellow = lipgloss.NewStyle().Foreground(lipgloss.Color("220"))
	red    = lipgloss.NewStyle().Foreground(lipgloss.Color("203"))
)

var glyphs = []rune{'#', 'o', '*', '+', 'x', '@'}

// Simulation is the part of a manager the live view polls and drives.
type Simulation interface {
	State() sim.State
	Steps() uint64
	Objects() []string
	GetVisualPositions(name string) ([]mgl64.Vec3, error)
	Pause() error
	Resume() error
	Stop() error
}

type tickMsg time.Time

type model struct {
	sim      Simulation
	title    string
	interval time.Duration
	tracked  string

	state     sim.State
	steps     uint64
	positions map[string][]mgl64.Vec3
	names     []string
	history   []float64
	lastSteps uint64
	lastFrame time.Time
	rate      float64
	err       error

	width  int
	height int
}

// NewLive returns a view that polls s every interval; the lowest point
// of tracked is graphed over time.
func NewLive(s Simulation, title, tracked string, interval time.Duration) tea.Model {
	if interval <= 0 {
		interval = 33 * time.Millisecond
	}
	return model{
		sim:       s,
		title:     title,
		interval:  interval,
		tracked:   tracked,
		positions: make(map[string][]mgl64.Vec3),
		history:   make([]float64, 0, 120),
		width:     80,
		height:    30,
	}
}

func (m model) tick() tea.Cmd {
	return tea.Tick(m.interval, func(t time.Time) tea.Msg { return tickMsg(t) })
}

func (m model) Init() tea.Cmd { return m.tick() }

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil
	case tickMsg:
		m.poll(time.Time(msg))
		return m, m.tick()
	}
	return m, nil
}

func (m model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "esc", "ctrl+c":
		if s := m.sim.State(); s == sim.Running || s == sim.Paused {
			m.err = m.sim.Stop()
		}
		return m, tea.Quit
	case " ", "p":
		switch m.sim.State() {
		case sim.Running:
			m.err = m.sim.Pause()
		case sim.Paused:
			m.err = m.sim.Resume()
		}
		m.state = m.sim.State()
	}
	return m, nil
}

// poll copies the latest frame of every object out of the simulation.
func (m *model) poll(now time.Time) {
	m.state = m.sim.State()
	m.steps = m.sim.Steps()

	if !m.lastFrame.IsZero() {
		if dt := now.Sub(m.lastFrame).Seconds(); dt > 0 {
			m.rate = float64(m.steps-m.lastSteps) / dt
		}
	}
	m.lastFrame = now
	m.lastSteps = m.steps

	names := m.sim.Objects()
	sort.Strings(names)
	m.names = names
	positions := make(map[string][]mgl64.Vec3, len(names))
	for _, n := range names {
		pts, err := m.sim.GetVisualPositions(n)
		if err != nil {
			continue
		}
		positions[n] = pts
	}
	m.positions = positions

	if pts, ok := positions[m.tracked]; ok && len(pts) > 0 {
		m.history = append(m.history, dynamo.Points(pts).Min(2))
		if len(m.history) > 120 {
			m.history = m.history[1:]
		}
	}
}

func (m model) View() string {
	cw := m.width - 6
	ch := m.height - 16
	if cw < 40 {
		cw = 40
	}
	if ch < 10 {
		ch = 10
	}

	c := newCanvas(cw, ch)
	v := fitView(m.positions, cw, ch)
	for i, name := range m.names {
		g := glyphs[i%len(glyphs)]
		pts := m.positions[name]
		for j := 1; j < len(pts); j++ {
			x1, y1 := v.project(pts[j-1])
			x2, y2 := v.project(pts[j])
			if intAbs(x2-x1) <= 1 && intAbs(y2-y1) <= 1 {
				continue
			}
			c.line(x1, y1, x2, y2, '.')
		}
		for _, p := range pts {
			x, y := v.project(p)
			c.set(x, y, g)
		}
	}

	var b strings.Builder

	icon, text := green.Render("●"), green.Render(m.state.String())
	switch m.state {
	case sim.Paused:
		icon, text = yellow.Render("○"), yellow.Render(m.state.String())
	case sim.Stopped:
		icon, text = red.Render("■"), red.Render(m.state.String())
	case sim.Idle:
		icon, text = dim.Render("·"), dim.Render(m.state.String())
	}
	b.WriteString(fmt.Sprintf("\n   %s %s  %s  %s\n", icon, cyan.Render(m.title), text,
		dim.Render(fmt.Sprintf("step %d  %.0f steps/s", m.steps, m.rate))))
	b.WriteString(dimmer.Render("   "+strings.Repeat("─", cw)) + "\n")

	for _, row := range c.rows() {
		b.WriteString("   " + row + "\n")
	}
	b.WriteString(dimmer.Render("   "+strings.Repeat("─", cw)) + "\n")

	var legend strings.Builder
	legend.WriteString("   ")
	for i, name := range m.names {
		legend.WriteString(white.Render(string(glyphs[i%len(glyphs)])) + " " + dim.Render(name) + "  ")
	}
	b.WriteString(legend.String() + "\n")

	if len(m.history) > 1 {
		graph := asciigraph.Plot(m.history,
			asciigraph.Height(4),
			asciigraph.Width(cw-12),
			asciigraph.Caption("lowest z of "+m.tracked))
		for _, line := range strings.Split(graph, "\n") {
			b.WriteString("   " + cyan.Render(line) + "\n")
		}
	}

	if m.err != nil {
		b.WriteString("   " + red.Render(m.err.Error()) + "\n")
	}
	b.WriteString("\n" + dim.Render("   space pause/resume  q stop and quit") + "\n")
	return b.String()
}

// RunLive runs the live view until the user quits.
func RunLive(s Simulation, title, tracked string, interval time.Duration) error {
	p := tea.NewProgram(NewLive(s, title, tracked, interval), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
