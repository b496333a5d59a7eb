package tui

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

type canvas struct {
	w, h  int
	cells [][]rune
}

func newCanvas(w, h int) *canvas {
	c := &canvas{w: w, h: h, cells: make([][]rune, h)}
	for i := range c.cells {
		c.cells[i] = make([]rune, w)
		for j := range c.cells[i] {
			c.cells[i][j] = ' '
		}
	}
	return c
}

func (c *canvas) set(x, y int, r rune) {
	if x >= 0 && x < c.w && y >= 0 && y < c.h {
		c.cells[y][x] = r
	}
}

func (c *canvas) line(x1, y1, x2, y2 int, r rune) {
	dx := intAbs(x2 - x1)
	dy := intAbs(y2 - y1)
	sx, sy := 1, 1
	if x1 > x2 {
		sx = -1
	}
	if y1 > y2 {
		sy = -1
	}
	err := dx - dy
	for {
		c.set(x1, y1, r)
		if x1 == x2 && y1 == y2 {
			break
		}
		e2 := 2 * err
		if e2 > -dy {
			err -= dy
			x1 += sx
		}
		if e2 < dx {
			err += dx
			y1 += sy
		}
	}
}

func (c *canvas) rows() []string {
	out := make([]string, len(c.cells))
	for i, row := range c.cells {
		out[i] = string(row)
	}
	return out
}

// view maps the xz plane onto the canvas, z up.
type view struct {
	minX, maxX, minZ, maxZ float64
	w, h                   int
}

func fitView(objs map[string][]mgl64.Vec3, w, h int) view {
	v := view{minX: math.Inf(1), maxX: math.Inf(-1), minZ: math.Inf(1), maxZ: math.Inf(-1), w: w, h: h}
	for _, pts := range objs {
		for _, p := range pts {
			v.minX = math.Min(v.minX, p.X())
			v.maxX = math.Max(v.maxX, p.X())
			v.minZ = math.Min(v.minZ, p.Z())
			v.maxZ = math.Max(v.maxZ, p.Z())
		}
	}
	if math.IsInf(v.minX, 1) {
		v.minX, v.maxX, v.minZ, v.maxZ = -1, 1, -1, 1
	}
	pad := 0.1 * math.Max(math.Max(v.maxX-v.minX, v.maxZ-v.minZ), 1)
	v.minX -= pad
	v.maxX += pad
	v.minZ -= pad
	v.maxZ += pad
	return v
}

func (v view) project(p mgl64.Vec3) (int, int) {
	x := (p.X() - v.minX) / (v.maxX - v.minX) * float64(v.w-1)
	y := (v.maxZ - p.Z()) / (v.maxZ - v.minZ) * float64(v.h-1)
	return int(math.Round(x)), int(math.Round(y))
}

func intAbs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
