package collision

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

const epsilon = 1e-12

// deltas accumulates corrections for one body's physics points.
type deltas struct {
	d     []mgl64.Vec3
	count []int
}

func (g *Graph) deltasFor(b Body) *deltas {
	n := len(b.Predicted())
	d, ok := g.buf[b.Name()]
	if !ok || len(d.d) != n {
		d = &deltas{d: make([]mgl64.Vec3, n), count: make([]int, n)}
		g.buf[b.Name()] = d
	}
	return d
}

func (d *deltas) add(i int, v mgl64.Vec3) {
	d.d[i] = d.d[i].Add(v)
	d.count[i]++
}

func (d *deltas) reset() {
	for i := range d.d {
		d.d[i] = mgl64.Vec3{}
		d.count[i] = 0
	}
}

// Resolve runs collision pass iter over every pair whose iteration count
// exceeds iter and returns the number of contacts found.
//
// Detection for all pairs reads the same predicted positions. Corrections
// are not summed: every correction a point receives in this pass, from any
// pair, is averaged, and the average is applied once after every pair has
// been processed. A point touching two objects therefore moves by the mean
// of its two corrections, and the outcome does not depend on pair order.
func (g *Graph) Resolve(iter int) int {
	type active struct {
		a, b Body
	}
	var work []active
	for _, p := range g.pairs {
		if iter >= p.Iterations {
			continue
		}
		a, okA := g.reg.Body(p.A)
		b, okB := g.reg.Body(p.B)
		if !okA || !okB || !a.Collidable() || !b.Collidable() {
			continue
		}
		work = append(work, active{a, b})
	}
	if len(work) == 0 {
		return 0
	}

	touched := make(map[string]Body)
	contacts := 0
	for _, w := range work {
		prox := math.Max(w.a.Proximity(), w.b.Proximity())
		k := math.Max(w.a.ContactStiffness(), w.b.ContactStiffness())
		da, db := g.deltasFor(w.a), g.deltasFor(w.b)
		contacts += detect(w.a, w.b, da, db, prox, k)
		contacts += detect(w.b, w.a, db, da, prox, k)
		touched[w.a.Name()] = w.a
		touched[w.b.Name()] = w.b
	}

	for name, b := range touched {
		d := g.buf[name]
		for i, v := range d.d {
			if d.count[i] > 0 {
				b.Correct(i, v.Mul(1/float64(d.count[i])))
			}
		}
		d.reset()
	}
	return contacts
}

// detect tests the collision points of pb against the collision triangles
// of tb and records corrections in dp and dt.
func detect(pb, tb Body, dp, dt *deltas, prox, k float64) int {
	pPred, pPrev := pb.Predicted(), pb.Committed()
	tPred, tPrev := tb.Predicted(), tb.Committed()
	tris := tb.CollisionTriangles()
	if len(tris) == 0 {
		return 0
	}

	contacts := 0
	for ci := 0; ci < pb.NumCollisionPoints(); ci++ {
		pi := pb.CollisionToPhysics(ci)
		wp := pb.InvMass(pi)
		x := pPred[pi]

		for _, tri := range tris {
			v := [3]int{tb.CollisionToPhysics(tri[0]), tb.CollisionToPhysics(tri[1]), tb.CollisionToPhysics(tri[2])}
			a, b, c := tPred[v[0]], tPred[v[1]], tPred[v[2]]
			n := b.Sub(a).Cross(c.Sub(a))
			if n.Len() < epsilon {
				continue
			}
			n = n.Normalize()

			bary, ok := barycentric(x, a, b, c, n)
			if !ok {
				continue
			}

			// side is taken from the committed state so a point that
			// tunnelled during prediction is pushed back the way it came
			side := 1.0
			prevN := tPrev[v[1]].Sub(tPrev[v[0]]).Cross(tPrev[v[2]].Sub(tPrev[v[0]]))
			if pPrev[pi].Sub(tPrev[v[0]]).Dot(prevN) < 0 {
				side = -1
			}

			dist := side * x.Sub(a).Dot(n)
			if dist >= prox {
				continue
			}

			denom := wp
			for i := range v {
				denom += bary[i] * bary[i] * tb.InvMass(v[i])
			}
			if denom < epsilon {
				continue
			}
			contacts++

			s := (prox - dist) / denom * k
			dir := n.Mul(side)
			if wp > 0 {
				dp.add(pi, dir.Mul(s*wp))
			}
			for i := range v {
				if w := tb.InvMass(v[i]); w > 0 {
					dt.add(v[i], dir.Mul(-s*bary[i]*w))
				}
			}
		}
	}
	return contacts
}

// barycentric projects x onto the plane of abc and reports whether the
// projection falls inside the triangle.
func barycentric(x, a, b, c, n mgl64.Vec3) ([3]float64, bool) {
	p := x.Sub(n.Mul(x.Sub(a).Dot(n)))
	v0, v1, v2 := b.Sub(a), c.Sub(a), p.Sub(a)
	d00, d01, d11 := v0.Dot(v0), v0.Dot(v1), v1.Dot(v1)
	d20, d21 := v2.Dot(v0), v2.Dot(v1)
	den := d00*d11 - d01*d01
	if math.Abs(den) < epsilon {
		return [3]float64{}, false
	}
	u := (d11*d20 - d01*d21) / den
	w := (d00*d21 - d01*d20) / den
	bary := [3]float64{1 - u - w, u, w}
	const tol = -1e-9
	return bary, bary[0] >= tol && bary[1] >= tol && bary[2] >= tol
}
