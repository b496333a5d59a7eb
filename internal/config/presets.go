package config

import (
	"sort"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/san-kum/softsim/internal/mesh"
)

func floorObject() ObjectConfig {
	o := DefaultImmovable("floor")
	o.Inline = Inline(mesh.Quad(0, 0, 1, 0))
	return o
}

func tetObject(name string, origin mgl64.Vec3) ObjectConfig {
	o := DefaultDeformable(name)
	o.Inline = Inline(mesh.Tetrahedron(mgl64.Vec3{}, 0.5))
	o.Offset = [3]float64(origin)
	o.Dt = 0.01
	return o
}

var Presets = map[string]*Config{
	"floor-drop": {
		Steps: 300, FPS: DefaultFPS,
		Scene: SceneConfig{
			Name: "floor-drop",
			Objects: []ObjectConfig{
				floorObject(),
				tetObject("tet", mgl64.Vec3{-0.25, -0.25, 0.5}),
			},
			Interactions: []InteractionConfig{{A: "floor", B: "tet"}},
		},
	},
	"stack": {
		Steps: 500, FPS: DefaultFPS,
		Scene: SceneConfig{
			Name: "stack",
			Objects: []ObjectConfig{
				floorObject(),
				tetObject("lower", mgl64.Vec3{-0.25, -0.25, 0.3}),
				tetObject("upper", mgl64.Vec3{-0.2, -0.2, 1.2}),
			},
			Interactions: []InteractionConfig{
				{A: "floor", B: "lower"},
				{A: "floor", B: "upper"},
				{A: "lower", B: "upper"},
			},
		},
	},
	"driven": {
		Steps: 1000, FPS: DefaultFPS, RealTime: true,
		Scene: SceneConfig{
			Name: "driven",
			Objects: []ObjectConfig{
				floorObject(),
				tetObject("tet", mgl64.Vec3{-0.25, -0.25, 0.5}),
			},
			Interactions: []InteractionConfig{{A: "floor", B: "tet"}},
			Controllers: []ControllerConfig{{
				Object: "tet", Source: "circle", Mode: "target",
				Center: [3]float64{0, 0, 0.6}, Radius: 0.5, Period: 4,
			}},
		},
	},
}

// GetPreset returns a copy of the named preset, or nil.
func GetPreset(name string) *Config {
	cfg, ok := Presets[name]
	if !ok {
		return nil
	}
	c := *cfg
	c.Scene.Objects = append([]ObjectConfig(nil), cfg.Scene.Objects...)
	c.Scene.Interactions = append([]InteractionConfig(nil), cfg.Scene.Interactions...)
	c.Scene.Controllers = append([]ControllerConfig(nil), cfg.Scene.Controllers...)
	return &c
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
