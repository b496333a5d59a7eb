// Package export renders recorded runs into standalone files.
package export

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/san-kum/softsim/internal/dynamo"
	"github.com/san-kum/softsim/internal/storage"
)

var palette = []string{"#00ff9f", "#ffd75f", "#ff5f87", "#5fafff", "#d787ff", "#ffffff"}

// Path is the xz trajectory of one object.
type Path struct {
	Name   string
	Points [][2]float64
}

// CentroidPaths returns the xz path of every object's centroid over the
// frames of rec, sorted by name.
func CentroidPaths(rec *storage.Recording) []Path {
	byName := make(map[string][][2]float64)
	for _, f := range rec.Frames {
		for name, pts := range f.Positions {
			c := dynamo.Points(pts).Centroid()
			byName[name] = append(byName[name], [2]float64{c.X(), c.Z()})
		}
	}
	out := make([]Path, 0, len(byName))
	for name, pts := range byName {
		out = append(out, Path{Name: name, Points: pts})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// TrajectoriesToSVG draws every path into one SVG with a shared scale, z up.
func TrajectoriesToSVG(paths []Path, width, height int) string {
	minX, maxX := math.Inf(1), math.Inf(-1)
	minY, maxY := math.Inf(1), math.Inf(-1)
	for _, p := range paths {
		for _, pt := range p.Points {
			minX = math.Min(minX, pt[0])
			maxX = math.Max(maxX, pt[0])
			minY = math.Min(minY, pt[1])
			maxY = math.Max(maxY, pt[1])
		}
	}
	if math.IsInf(minX, 1) {
		return ""
	}

	// Add padding
	rangeX := maxX - minX
	rangeY := maxY - minY
	if rangeX == 0 {
		rangeX = 1
	}
	if rangeY == 0 {
		rangeY = 1
	}
	minX -= rangeX * 0.1
	maxX += rangeX * 0.1
	minY -= rangeY * 0.1
	maxY += rangeY * 0.1
	rangeX = maxX - minX
	rangeY = maxY - minY

	project := func(pt [2]float64) (float64, float64) {
		x := (pt[0] - minX) / rangeX * float64(width)
		y := float64(height) - (pt[1]-minY)/rangeY*float64(height)
		return x, y
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">
<rect width="100%%" height="100%%" fill="#0a0a0a"/>
`, width, height, width, height))

	for i, p := range paths {
		if len(p.Points) == 0 {
			continue
		}
		color := palette[i%len(palette)]
		if len(p.Points) == 1 {
			x, y := project(p.Points[0])
			sb.WriteString(fmt.Sprintf(`<circle data-object="%s" cx="%.1f" cy="%.1f" r="2" fill="%s"/>
`, p.Name, x, y, color))
			continue
		}
		sb.WriteString(fmt.Sprintf(`<path data-object="%s" fill="none" stroke="%s" stroke-width="1.5" d="M`, p.Name, color))
		for j, pt := range p.Points {
			x, y := project(pt)
			if j == 0 {
				sb.WriteString(fmt.Sprintf("%.1f,%.1f", x, y))
			} else {
				sb.WriteString(fmt.Sprintf(" L%.1f,%.1f", x, y))
			}
		}
		sb.WriteString("\"/>\n")
	}

	sb.WriteString("</svg>")
	return sb.String()
}
