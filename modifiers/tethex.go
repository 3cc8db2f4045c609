package modifiers

import (
	"go.uber.org/zap"

	"github.com/notargets/femesh/logger"
	"github.com/notargets/femesh/mesh"
)

// hexRot[v] renumbers a hex so corner v becomes corner 0, keeping the orientation
var hexRot = [8][8]int{
	{0, 1, 2, 3, 4, 5, 6, 7},
	{1, 2, 3, 0, 5, 6, 7, 4},
	{2, 3, 0, 1, 6, 7, 4, 5},
	{3, 0, 1, 2, 7, 4, 5, 6},
	{4, 7, 6, 5, 0, 3, 2, 1},
	{5, 4, 7, 6, 1, 0, 3, 2},
	{6, 5, 4, 7, 2, 1, 0, 3},
	{7, 6, 5, 4, 3, 2, 1, 0},
}

/*
Hex2Tet splits every Hex8 into six Tet4 around the diagonal from its lowest numbered corner.
The three faces at that corner are cut through it and the three opposite faces through the far
corner. Neighbors agree on the cut of a shared face on structured numberings; where they do not the
split is nonconforming and a warning reports the count of unmatched faces.
*/
type Hex2Tet struct{}

func (Hex2Tet) Name() string { return "hex8 to tet4" }

func hex2tetPlan(_ *mesh.Mesh, el *mesh.Element) *plan {
	if el.Type != mesh.Hex8 {
		return nil
	}
	v := 0
	for i := 1; i < 8; i++ {
		if el.Nodes[i] < el.Nodes[v] {
			v = i
		}
	}
	r := hexRot[v]
	p := &plan{children: make([]child, 0, 6)}
	for _, t := range mesh.HexTets() {
		p.children = append(p.children, child{typ: mesh.Tet4, nodes: []int{r[t[0]], r[t[1]], r[t[2]], r[t[3]]}})
	}
	return p
}

func (c Hex2Tet) Apply(m *mesh.Mesh) (*mesh.Mesh, error) {
	return Run(c.Name(), m, func(m *mesh.Mesh) (out *mesh.Mesh, err error) {
		if out, err = subdivide(m, hex2tetPlan, false); err != nil {
			return
		}
		// a conforming split turns each hex boundary quad into two triangles
		want := 0
		for i := range m.Faces {
			if m.Elements[m.Faces[i].Elem].Type == mesh.Hex8 {
				want += 2
			} else {
				want++
			}
		}
		if extra := out.FaceCount() - want; extra > 0 {
			logger.Log.Warn("hex to tet split left nonconforming faces", zap.Int("faces", extra))
		}
		return
	})
}

// tet2hex are the four hexes of a tet on the Tet15 lattice, one per corner
var tet2hex = [4][]int{
	{0, 4, 13, 6, 7, 10, 14, 12},
	{1, 5, 13, 4, 8, 11, 14, 10},
	{2, 6, 13, 5, 9, 12, 14, 11},
	{3, 8, 10, 7, 9, 11, 14, 12},
}

// Tet2Hex splits every Tet4 into four Hex8 using edge midpoints, face centers and the centroid
type Tet2Hex struct {
	Smooth bool
}

func (Tet2Hex) Name() string { return "tet4 to hex8" }

func (c Tet2Hex) Apply(m *mesh.Mesh) (*mesh.Mesh, error) {
	p := &plan{lattice: lattice{edgeNodes: 1, faceNodes: true, center: true}}
	for _, h := range tet2hex {
		p.children = append(p.children, child{typ: mesh.Hex8, nodes: h})
	}
	return Run(c.Name(), m, func(m *mesh.Mesh) (*mesh.Mesh, error) {
		return subdivide(m, func(_ *mesh.Mesh, el *mesh.Element) *plan {
			if el.Type != mesh.Tet4 {
				return nil
			}
			return p
		}, c.Smooth)
	})
}
