package mesh

import (
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/spatial/r3"
)

// Tet decompositions of the non-simplex solids, each tet positively oriented for a correctly wound parent
var (
	hexTets   = [6][4]int{{0, 1, 2, 6}, {0, 1, 6, 5}, {0, 2, 3, 6}, {0, 3, 7, 6}, {0, 4, 5, 6}, {0, 7, 4, 6}}
	pentaTets = [3][4]int{{0, 1, 2, 3}, {1, 2, 3, 4}, {2, 3, 4, 5}}
	pyraTets  = [2][4]int{{0, 1, 2, 4}, {0, 2, 3, 4}}
)

// HexTets is the six-tet split of a hex around its 0-6 diagonal
func HexTets() [6][4]int { return hexTets }

// TetVolume is the signed volume of the tet a, b, c, d
func TetVolume(a, b, c, d r3.Vec) float64 {
	return r3.Dot(r3.Sub(b, a), r3.Cross(r3.Sub(c, a), r3.Sub(d, a))) / 6
}

func (m *Mesh) pos(el *Element, i int) r3.Vec {
	return m.Nodes[el.Nodes[i]].Pos
}

func (m *Mesh) sumTets(el *Element, tets [][4]int) float64 {
	vols := make([]float64, len(tets))
	for i, t := range tets {
		vols[i] = TetVolume(m.pos(el, t[0]), m.pos(el, t[1]), m.pos(el, t[2]), m.pos(el, t[3]))
	}
	return floats.Sum(vols)
}

// ElementVolume returns the signed volume of a solid, the area of a shell or the length of a beam.
// Higher-order solids are measured on their corners.
func (m *Mesh) ElementVolume(el *Element) float64 {
	switch el.Type.Spec().Linear {
	case Tet4:
		return TetVolume(m.pos(el, 0), m.pos(el, 1), m.pos(el, 2), m.pos(el, 3))
	case Hex8:
		return m.sumTets(el, hexTets[:])
	case Penta6:
		return m.sumTets(el, pentaTets[:])
	case Pyra5:
		return m.sumTets(el, pyraTets[:])
	case Tri3, Quad4:
		return r3.Norm(m.polygonNormal(el.Nodes[:el.Spec().Corners])) / 2
	case Beam2:
		return r3.Norm(r3.Sub(m.pos(el, 1), m.pos(el, 0)))
	}
	return 0
}

// ElementCenter is the average position of all element nodes
func (m *Mesh) ElementCenter(el *Element) (c r3.Vec) {
	for _, n := range el.Nodes {
		c = r3.Add(c, m.Nodes[n].Pos)
	}
	return r3.Scale(1/float64(len(el.Nodes)), c)
}

// polygonNormal is the Newell normal of a corner cycle, its length is twice the polygon area
func (m *Mesh) polygonNormal(cycle []int) (n r3.Vec) {
	nc := len(cycle)
	for i := 0; i < nc; i++ {
		a, b := m.Nodes[cycle[i]].Pos, m.Nodes[cycle[(i+1)%nc]].Pos
		n.X += (a.Y - b.Y) * (a.Z + b.Z)
		n.Y += (a.Z - b.Z) * (a.X + b.X)
		n.Z += (a.X - b.X) * (a.Y + b.Y)
	}
	return
}

// FaceNormal is the unit outward normal of a face, zero for a degenerate face
func (m *Mesh) FaceNormal(f *Face) r3.Vec {
	n := m.polygonNormal(f.Nodes[:f.Type.Corners()])
	if r3.Norm(n) == 0 {
		return r3.Vec{}
	}
	return r3.Unit(n)
}

// FaceArea is the area of the face's corner polygon
func (m *Mesh) FaceArea(f *Face) float64 {
	return r3.Norm(m.polygonNormal(f.Nodes[:f.Type.Corners()])) / 2
}

// FaceCenter is the average of the face's corners
func (m *Mesh) FaceCenter(f *Face) (c r3.Vec) {
	nc := f.Type.Corners()
	for _, n := range f.Nodes[:nc] {
		c = r3.Add(c, m.Nodes[n].Pos)
	}
	return r3.Scale(1/float64(nc), c)
}

// InvertElement reorders the element's nodes so its orientation flips, thickness follows its node
func InvertElement(el *Element) {
	perm := el.Spec().Invert
	nodes := make([]int, len(el.Nodes))
	for i, p := range perm {
		nodes[i] = el.Nodes[p]
	}
	el.Nodes = nodes
	if el.H != nil {
		h := make([]float64, len(el.H))
		for i, p := range perm {
			h[i] = el.H[p]
		}
		el.H = h
	}
}

// InvertFace reverses the winding of a face record, keeping the first corner in place
func InvertFace(f *Face) {
	var (
		nc  = f.Type.Corners()
		ne  = f.Type.EdgeNodes()
		old = f.Nodes
	)
	nodes := make([]int, len(old))
	for i := 0; i < nc; i++ {
		nodes[i] = old[(nc-i)%nc]
		// new edge i runs over old edge (nc-i-1) backwards
		j := (nc - i - 1 + nc) % nc
		for k := 0; k < ne; k++ {
			nodes[nc+i*ne+k] = old[nc+j*ne+(ne-1-k)]
		}
	}
	for i := nc + nc*ne; i < len(old); i++ {
		nodes[i] = old[i]
	}
	f.Nodes = nodes
	f.Normal = r3.Scale(-1, f.Normal)
	if len(f.Nbr) == nc {
		nbr := make([]int, nc)
		for i := 0; i < nc; i++ {
			nbr[i] = f.Nbr[(nc-i-1+nc)%nc]
		}
		f.Nbr = nbr
	}
}

// TotalVolume sums ElementVolume over all solid elements
func (m *Mesh) TotalVolume() float64 {
	vols := make([]float64, 0, len(m.Elements))
	for i := range m.Elements {
		if m.Elements[i].Spec().Class == Solid {
			vols = append(vols, m.ElementVolume(&m.Elements[i]))
		}
	}
	return floats.Sum(vols)
}
