package mesh

import (
	"fmt"
	"sort"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/san-kum/softsim/internal/dynamo"
)

var tetFaces = [4][4]int{
	{0, 1, 2, 3},
	{0, 1, 3, 2},
	{0, 2, 3, 1},
	{1, 2, 3, 0},
}

type faceKey [3]int

func makeFaceKey(a, b, c int) faceKey {
	k := faceKey{a, b, c}
	sort.Ints(k[:])
	return k
}

type boundaryFace struct {
	tri      [3]int
	opposite int
	count    int
	order    int
}

// ExtractSurface returns the boundary triangles of a tetrahedral mesh as a
// compact surface mesh with outward winding, together with the index of
// the volume point each surface point was taken from.
func ExtractSurface(vol *Mesh) (*Mesh, []int, error) {
	if err := vol.Validate(); err != nil {
		return nil, nil, err
	}
	if len(vol.Tetrahedra) == 0 {
		return nil, nil, dynamo.Errorf("extract surface", "", fmt.Errorf("mesh has no tetrahedra: %w", dynamo.ErrGeometry))
	}

	faces := make(map[faceKey]*boundaryFace, len(vol.Tetrahedra)*4)
	order := 0
	for _, tet := range vol.Tetrahedra {
		for _, f := range tetFaces {
			a, b, c := tet[f[0]], tet[f[1]], tet[f[2]]
			key := makeFaceKey(a, b, c)
			if bf, ok := faces[key]; ok {
				bf.count++
				continue
			}
			faces[key] = &boundaryFace{tri: [3]int{a, b, c}, opposite: tet[f[3]], count: 1, order: order}
			order++
		}
	}

	boundary := make([]*boundaryFace, 0, len(faces))
	for _, bf := range faces {
		if bf.count == 1 {
			boundary = append(boundary, bf)
		}
	}
	if len(boundary) == 0 {
		return nil, nil, dynamo.Errorf("extract surface", "", fmt.Errorf("no boundary faces: %w", dynamo.ErrGeometry))
	}
	sort.Slice(boundary, func(i, j int) bool { return boundary[i].order < boundary[j].order })

	used := make(map[int]struct{})
	for _, bf := range boundary {
		for _, idx := range bf.tri {
			used[idx] = struct{}{}
		}
	}
	surfToVol := make([]int, 0, len(used))
	for idx := range used {
		surfToVol = append(surfToVol, idx)
	}
	sort.Ints(surfToVol)
	volToSurf := make(map[int]int, len(surfToVol))
	for i, v := range surfToVol {
		volToSurf[v] = i
	}

	surf := &Mesh{
		Points:    make([]mgl64.Vec3, len(surfToVol)),
		Triangles: make([][3]int, 0, len(boundary)),
	}
	for i, v := range surfToVol {
		surf.Points[i] = vol.Points[v]
	}
	for _, bf := range boundary {
		a, b, c := bf.tri[0], bf.tri[1], bf.tri[2]
		pa, pb, pc := vol.Points[a], vol.Points[b], vol.Points[c]
		n := pb.Sub(pa).Cross(pc.Sub(pa))
		if n.Dot(vol.Points[bf.opposite].Sub(pa)) > 0 {
			b, c = c, b
		}
		surf.Triangles = append(surf.Triangles, [3]int{volToSurf[a], volToSurf[b], volToSurf[c]})
	}
	return surf, surfToVol, nil
}
