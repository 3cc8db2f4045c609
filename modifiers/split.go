package modifiers

import (
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/notargets/femesh/mesh"
)

// Refinement splitters. Each replaces one element kind with smaller elements of the same kind on
// a lattice of edge, face and center nodes; other kinds are copied.

func typePlan(t mesh.ElementType, p *plan) planner {
	return func(_ *mesh.Mesh, el *mesh.Element) *plan {
		if el.Type != t {
			return nil
		}
		return p
	}
}

func applySplit(name string, m *mesh.Mesh, pf planner, smooth bool) (*mesh.Mesh, error) {
	return Run(name, m, func(m *mesh.Mesh) (*mesh.Mesh, error) {
		return subdivide(m, pf, smooth)
	})
}

// Quad2Tri cuts every Quad4 along its 0-2 diagonal
type Quad2Tri struct{}

func (Quad2Tri) Name() string { return "quad4 to tri3" }

var quad2triPlan = &plan{children: []child{
	{typ: mesh.Tri3, nodes: []int{0, 1, 2}},
	{typ: mesh.Tri3, nodes: []int{2, 3, 0}},
}}

func (c Quad2Tri) Apply(m *mesh.Mesh) (*mesh.Mesh, error) {
	return applySplit(c.Name(), m, typePlan(mesh.Quad4, quad2triPlan), false)
}

// TriSplit cuts every Tri3 into four through its edge midpoints
type TriSplit struct{}

func (TriSplit) Name() string { return "tri3 split" }

var triSplitPlan = &plan{lattice: lattice{edgeNodes: 1}, children: []child{
	{typ: mesh.Tri3, nodes: []int{0, 3, 5}},
	{typ: mesh.Tri3, nodes: []int{3, 1, 4}},
	{typ: mesh.Tri3, nodes: []int{5, 4, 2}},
	{typ: mesh.Tri3, nodes: []int{3, 4, 5}},
}}

func (c TriSplit) Apply(m *mesh.Mesh) (*mesh.Mesh, error) {
	return applySplit(c.Name(), m, typePlan(mesh.Tri3, triSplitPlan), false)
}

// quadLattice is the Quad9 numbering of a 3x3 point grid, indexed [i][j]
var quadLattice = [3][3]int{
	{0, 7, 3},
	{4, 8, 6},
	{1, 5, 2},
}

// QuadSplit cuts every Quad4 into four through its edge midpoints and center
type QuadSplit struct{}

func (QuadSplit) Name() string { return "quad4 split" }

var quadSplitPlan = func() (p *plan) {
	L := quadLattice
	p = &plan{lattice: lattice{edgeNodes: 1, center: true}}
	for j := 0; j < 2; j++ {
		for i := 0; i < 2; i++ {
			p.children = append(p.children, child{typ: mesh.Quad4,
				nodes: []int{L[i][j], L[i+1][j], L[i+1][j+1], L[i][j+1]}})
		}
	}
	return
}()

func (c QuadSplit) Apply(m *mesh.Mesh) (*mesh.Mesh, error) {
	return applySplit(c.Name(), m, typePlan(mesh.Quad4, quadSplitPlan), false)
}

// hexLattice is the Hex27 numbering of a 3x3x3 point grid, indexed [i][j][k]
var hexLattice = func() (L [3][3][3]int) {
	set := func(i, j, k, n int) { L[i][j][k] = n }
	// corners
	set(0, 0, 0, 0)
	set(2, 0, 0, 1)
	set(2, 2, 0, 2)
	set(0, 2, 0, 3)
	set(0, 0, 2, 4)
	set(2, 0, 2, 5)
	set(2, 2, 2, 6)
	set(0, 2, 2, 7)
	// edges
	set(1, 0, 0, 8)
	set(2, 1, 0, 9)
	set(1, 2, 0, 10)
	set(0, 1, 0, 11)
	set(1, 0, 2, 12)
	set(2, 1, 2, 13)
	set(1, 2, 2, 14)
	set(0, 1, 2, 15)
	set(0, 0, 1, 16)
	set(2, 0, 1, 17)
	set(2, 2, 1, 18)
	set(0, 2, 1, 19)
	// faces, center
	set(1, 0, 1, 20)
	set(2, 1, 1, 21)
	set(1, 2, 1, 22)
	set(0, 1, 1, 23)
	set(1, 1, 0, 24)
	set(1, 1, 2, 25)
	set(1, 1, 1, 26)
	return
}()

func hexChildren(ks []int) (children []child) {
	L := hexLattice
	for _, k := range ks {
		for j := 0; j < 2; j++ {
			for i := 0; i < 2; i++ {
				children = append(children, child{typ: mesh.Hex8, nodes: []int{
					L[i][j][k], L[i+1][j][k], L[i+1][j+1][k], L[i][j+1][k],
					L[i][j][k+step(ks)], L[i+1][j][k+step(ks)], L[i+1][j+1][k+step(ks)], L[i][j+1][k+step(ks)],
				}})
			}
		}
	}
	return
}

// step is the k spacing of the child layers: one lattice layer, or the full height for a single layer
func step(ks []int) int {
	if len(ks) == 1 {
		return 2
	}
	return 1
}

var (
	hexSplitPlan = &plan{lattice: lattice{edgeNodes: 1, faceNodes: true, center: true},
		children: hexChildren([]int{0, 1})}
	hex2DSplitPlan = &plan{lattice: lattice{edgeNodes: 1, faceNodes: true},
		children: hexChildren([]int{0})}
)

// HexSplit cuts every Hex8 into eight
type HexSplit struct {
	Smooth bool
}

func (HexSplit) Name() string { return "hex8 split" }

func (c HexSplit) Apply(m *mesh.Mesh) (*mesh.Mesh, error) {
	return applySplit(c.Name(), m, typePlan(mesh.Hex8, hexSplitPlan), c.Smooth)
}

// Hex2DSplit cuts every Hex8 into four in its r-s plane, the bottom and top faces are split and
// the element keeps a single layer through its thickness
type Hex2DSplit struct {
	Smooth bool
}

func (Hex2DSplit) Name() string { return "hex8 split in plane" }

func (c Hex2DSplit) Apply(m *mesh.Mesh) (*mesh.Mesh, error) {
	return applySplit(c.Name(), m, typePlan(mesh.Hex8, hex2DSplitPlan), c.Smooth)
}

/*
TetSplit cuts every Tet4 into eight: four corner tets on the edge midpoints and four tets filling
the inner octahedron. The octahedron is cut along the shortest of its three diagonals (4-9, 5-7 or
6-8 on the Tet10 numbering), the first one on ties.
*/
type TetSplit struct{}

func (TetSplit) Name() string { return "tet4 split" }

var (
	tetCorners = [4][]int{{0, 4, 6, 7}, {4, 1, 5, 8}, {6, 5, 2, 9}, {7, 8, 9, 3}}
	tetOcta    = [3][4][]int{
		{{4, 9, 5, 6}, {4, 9, 6, 7}, {4, 9, 7, 8}, {4, 9, 8, 5}},
		{{5, 7, 4, 8}, {5, 7, 8, 9}, {5, 7, 9, 6}, {5, 7, 6, 4}},
		{{6, 8, 4, 5}, {6, 8, 5, 9}, {6, 8, 9, 7}, {6, 8, 7, 4}},
	}
	// the corner edges whose midpoints the diagonals join
	tetDiagonals = [3][2][2]int{
		{{0, 1}, {2, 3}},
		{{1, 2}, {0, 3}},
		{{2, 0}, {1, 3}},
	}
	tetSplitPlans = func() (plans [3]*plan) {
		for d := range plans {
			p := &plan{lattice: lattice{edgeNodes: 1}}
			for _, c := range tetCorners {
				p.children = append(p.children, child{typ: mesh.Tet4, nodes: c})
			}
			for _, c := range tetOcta[d] {
				p.children = append(p.children, child{typ: mesh.Tet4, nodes: c})
			}
			plans[d] = p
		}
		return
	}()
)

func tetSplitPlan(src *mesh.Mesh, el *mesh.Element) *plan {
	if el.Type != mesh.Tet4 {
		return nil
	}
	mid := func(e [2]int) r3.Vec {
		return r3.Scale(0.5, r3.Add(src.Nodes[el.Nodes[e[0]]].Pos, src.Nodes[el.Nodes[e[1]]].Pos))
	}
	best, lmin := 0, 0.0
	for d, dg := range tetDiagonals {
		l := r3.Norm2(r3.Sub(mid(dg[0]), mid(dg[1])))
		if d == 0 || l < lmin {
			best, lmin = d, l
		}
	}
	return tetSplitPlans[best]
}

func (c TetSplit) Apply(m *mesh.Mesh) (*mesh.Mesh, error) {
	return applySplit(c.Name(), m, tetSplitPlan, false)
}
