package physics

import "github.com/go-gl/mathgl/mgl64"

const epsilon = 1e-12

type distanceConstraint struct {
	a, b int
	rest float64
}

func (c distanceConstraint) project(p []mgl64.Vec3, w []float64, k float64) {
	wSum := w[c.a] + w[c.b]
	if wSum == 0 {
		return
	}
	d := p[c.a].Sub(p[c.b])
	l := d.Len()
	if l < epsilon {
		return
	}
	corr := d.Mul((l - c.rest) / (l * wSum) * k)
	p[c.a] = p[c.a].Sub(corr.Mul(w[c.a]))
	p[c.b] = p[c.b].Add(corr.Mul(w[c.b]))
}

type volumeConstraint struct {
	idx  [4]int
	rest float64
}

func tetVolume(p1, p2, p3, p4 mgl64.Vec3) float64 {
	return p2.Sub(p1).Dot(p3.Sub(p1).Cross(p4.Sub(p1))) / 6
}

func (c volumeConstraint) project(p []mgl64.Vec3, w []float64, k float64) {
	p1, p2, p3, p4 := p[c.idx[0]], p[c.idx[1]], p[c.idx[2]], p[c.idx[3]]

	var g [4]mgl64.Vec3
	g[1] = p3.Sub(p1).Cross(p4.Sub(p1)).Mul(1.0 / 6)
	g[2] = p4.Sub(p1).Cross(p2.Sub(p1)).Mul(1.0 / 6)
	g[3] = p2.Sub(p1).Cross(p3.Sub(p1)).Mul(1.0 / 6)
	g[0] = g[1].Add(g[2]).Add(g[3]).Mul(-1)

	denom := 0.0
	for i, gi := range g {
		denom += w[c.idx[i]] * gi.LenSqr()
	}
	if denom < epsilon {
		return
	}
	lambda := -k * (tetVolume(p1, p2, p3, p4) - c.rest) / denom
	for i, gi := range g {
		j := c.idx[i]
		p[j] = p[j].Add(gi.Mul(lambda * w[j]))
	}
}

type edge [2]int

func makeEdge(a, b int) edge {
	if a > b {
		a, b = b, a
	}
	return edge{a, b}
}

func buildDistanceConstraints(pts []mgl64.Vec3, tris [][3]int, tets [][4]int) []distanceConstraint {
	seen := make(map[edge]struct{})
	var out []distanceConstraint
	add := func(a, b int) {
		e := makeEdge(a, b)
		if _, ok := seen[e]; ok {
			return
		}
		seen[e] = struct{}{}
		out = append(out, distanceConstraint{a: e[0], b: e[1], rest: pts[e[0]].Sub(pts[e[1]]).Len()})
	}
	for _, t := range tets {
		for i := 0; i < 4; i++ {
			for j := i + 1; j < 4; j++ {
				add(t[i], t[j])
			}
		}
	}
	for _, t := range tris {
		add(t[0], t[1])
		add(t[1], t[2])
		add(t[2], t[0])
	}
	return out
}
