package mesh

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/san-kum/softsim/internal/dynamo"
)

// Legacy VTK cell type identifiers.
const (
	vtkTriangle    = 5
	vtkQuad        = 9
	vtkTetrahedron = 10
)

// ReadVTKFile reads a legacy ASCII .vtk file.
func ReadVTKFile(path string) (*Mesh, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ReadVTK(f)
}

// ReadVTK parses a legacy ASCII UNSTRUCTURED_GRID or POLYDATA stream.
// Triangles, quads (split in two) and tetrahedra are kept; other cells are skipped.
func ReadVTK(r io.Reader) (*Mesh, error) {
	br := bufio.NewReader(r)
	// header, title, encoding
	for i := 0; i < 3; i++ {
		line, err := br.ReadString('\n')
		if err != nil && (err != io.EOF || line == "") {
			return nil, vtkErr("truncated header")
		}
		if i == 2 && strings.TrimSpace(strings.ToUpper(line)) != "ASCII" {
			return nil, vtkErr("only ASCII files are supported")
		}
	}

	sc := bufio.NewScanner(br)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	sc.Split(bufio.ScanWords)

	tok := &tokens{sc: sc}
	m := &Mesh{}
	var cells [][]int
	for {
		word, ok := tok.next()
		if !ok {
			break
		}
		switch strings.ToUpper(word) {
		case "DATASET":
			tok.next()
		case "POINTS":
			n, err := tok.count()
			if err != nil {
				return nil, err
			}
			tok.next() // data type
			m.Points = make([]mgl64.Vec3, 0, preallocated(n))
			for i := 0; i < n; i++ {
				var p mgl64.Vec3
				for c := 0; c < 3; c++ {
					if p[c], err = tok.float(); err != nil {
						return nil, err
					}
				}
				m.Points = append(m.Points, p)
			}
		case "CELLS", "POLYGONS":
			polys := strings.ToUpper(word) == "POLYGONS"
			n, err := tok.count()
			if err != nil {
				return nil, err
			}
			if _, err := tok.count(); err != nil {
				return nil, err
			}
			cells = make([][]int, 0, preallocated(n))
			for i := 0; i < n; i++ {
				k, err := tok.count()
				if err != nil {
					return nil, err
				}
				cell := make([]int, 0, preallocated(k))
				for j := 0; j < k; j++ {
					v, err := tok.int()
					if err != nil {
						return nil, err
					}
					cell = append(cell, v)
				}
				cells = append(cells, cell)
			}
			if polys {
				for _, cell := range cells {
					addPolygon(m, cell)
				}
				cells = nil
			}
		case "CELL_TYPES":
			n, err := tok.count()
			if err != nil {
				return nil, err
			}
			if n != len(cells) {
				return nil, vtkErr(fmt.Sprintf("CELL_TYPES count %d does not match CELLS count %d", n, len(cells)))
			}
			for i := 0; i < n; i++ {
				ct, err := tok.int()
				if err != nil {
					return nil, err
				}
				switch {
				case ct == vtkTetrahedron && len(cells[i]) == 4:
					m.Tetrahedra = append(m.Tetrahedra, [4]int{cells[i][0], cells[i][1], cells[i][2], cells[i][3]})
				case ct == vtkTriangle || ct == vtkQuad:
					addPolygon(m, cells[i])
				}
			}
		case "POINT_DATA", "CELL_DATA", "FIELD":
			return m, m.Validate()
		}
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return m, m.Validate()
}

func addPolygon(m *Mesh, cell []int) {
	switch len(cell) {
	case 3:
		m.Triangles = append(m.Triangles, [3]int{cell[0], cell[1], cell[2]})
	case 4:
		m.Triangles = append(m.Triangles,
			[3]int{cell[0], cell[1], cell[2]},
			[3]int{cell[0], cell[2], cell[3]})
	}
}

// WriteVTK writes m as legacy ASCII: an UNSTRUCTURED_GRID of tetrahedra for
// volume meshes, POLYDATA otherwise.
func WriteVTK(w io.Writer, m *Mesh, title string) error {
	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, "# vtk DataFile Version 3.0\n%s\nASCII\n", title)
	if m.Topology() == TopologyVolume {
		fmt.Fprintln(bw, "DATASET UNSTRUCTURED_GRID")
	} else {
		fmt.Fprintln(bw, "DATASET POLYDATA")
	}
	fmt.Fprintf(bw, "POINTS %d double\n", len(m.Points))
	for _, p := range m.Points {
		fmt.Fprintf(bw, "%s %s %s\n", fmtFloat(p[0]), fmtFloat(p[1]), fmtFloat(p[2]))
	}
	if m.Topology() == TopologyVolume {
		fmt.Fprintf(bw, "CELLS %d %d\n", len(m.Tetrahedra), len(m.Tetrahedra)*5)
		for _, t := range m.Tetrahedra {
			fmt.Fprintf(bw, "4 %d %d %d %d\n", t[0], t[1], t[2], t[3])
		}
		fmt.Fprintf(bw, "CELL_TYPES %d\n", len(m.Tetrahedra))
		for range m.Tetrahedra {
			fmt.Fprintln(bw, vtkTetrahedron)
		}
	} else if len(m.Triangles) > 0 {
		fmt.Fprintf(bw, "POLYGONS %d %d\n", len(m.Triangles), len(m.Triangles)*4)
		for _, t := range m.Triangles {
			fmt.Fprintf(bw, "3 %d %d %d\n", t[0], t[1], t[2])
		}
	}
	return bw.Flush()
}

// WriteVTKFile writes m to path.
func WriteVTKFile(path string, m *Mesh, title string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := WriteVTK(f, m, title); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func fmtFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

func vtkErr(msg string) error {
	return dynamo.Errorf("read vtk", "", fmt.Errorf("%s: %w", msg, dynamo.ErrGeometry))
}

type tokens struct {
	sc *bufio.Scanner
}

func (t *tokens) next() (string, bool) {
	if !t.sc.Scan() {
		return "", false
	}
	return t.sc.Text(), true
}

func (t *tokens) int() (int, error) {
	s, ok := t.next()
	if !ok {
		return 0, vtkErr("unexpected end of file")
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return 0, vtkErr(fmt.Sprintf("expected integer, got %q", s))
	}
	return v, nil
}

// count reads a size field. Sizes are never trusted for allocation beyond
// preallocated; a count the input cannot back ends in an EOF error.
func (t *tokens) count() (int, error) {
	v, err := t.int()
	if err != nil {
		return 0, err
	}
	if v < 0 {
		return 0, vtkErr(fmt.Sprintf("negative count %d", v))
	}
	return v, nil
}

// preallocated caps the capacity reserved up front for a declared count.
func preallocated(n int) int {
	const maxPrealloc = 1 << 16
	if n > maxPrealloc {
		return maxPrealloc
	}
	return n
}

func (t *tokens) float() (float64, error) {
	s, ok := t.next()
	if !ok {
		return 0, vtkErr("unexpected end of file")
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, vtkErr(fmt.Sprintf("expected number, got %q", s))
	}
	return v, nil
}
