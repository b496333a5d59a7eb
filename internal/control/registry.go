package control

import (
	"fmt"
	"math"
	"sort"

	"github.com/go-gl/mathgl/mgl64"
)

// Params configures a scripted source.
type Params struct {
	Center mgl64.Vec3
	Radius float64
	Period float64
}

// Registry maps source names to factories.
type Registry struct {
	sources map[string]func(Params) PoseSource
}

func NewRegistry() *Registry {
	r := &Registry{
		sources: make(map[string]func(Params) PoseSource),
	}

	r.sources["static"] = func(p Params) PoseSource {
		s := NewStatic()
		s.SetPosition(p.Center)
		return s
	}
	r.sources["circle"] = func(p Params) PoseSource {
		radius := p.Radius
		if radius == 0 {
			radius = 1
		}
		period := p.Period
		if period <= 0 {
			period = 4
		}
		c := NewCircleSource(radius, 2*math.Pi/period)
		c.Center = p.Center
		return c
	}

	return r
}

func (r *Registry) Register(name string, fn func(Params) PoseSource) {
	r.sources[name] = fn
}

func (r *Registry) GetSource(name string, p Params) (PoseSource, error) {
	fn, ok := r.sources[name]
	if !ok {
		return nil, fmt.Errorf("unknown pose source: %s", name)
	}
	return fn(p), nil
}

func (r *Registry) ListSources() []string {
	names := make([]string, 0, len(r.sources))
	for name := range r.sources {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
