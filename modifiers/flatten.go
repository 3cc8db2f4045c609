package modifiers

import (
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/notargets/femesh/mesh"
	"github.com/notargets/femesh/mesh/query"
)

/*
FlattenFaces projects the nodes of the selected faces onto the plane through the lowest of them,
normal to the mean face normal (or Normal with UseNormal). Every other node moves along the same
normal by the displacement of its nearest flattened node, scaled by 1 - distance/Radius, so the
surroundings blend into the flat patch within Radius.
*/
type FlattenFaces struct {
	Normal    r3.Vec
	UseNormal bool
	Radius    float64
}

func (FlattenFaces) Name() string { return "flatten faces" }

func (c FlattenFaces) Apply(m *mesh.Mesh) (*mesh.Mesh, error) {
	if c.Radius < 0 {
		return nil, invalidf("blend radius must not be negative, have %g", c.Radius)
	}
	return Run(c.Name(), m, func(m *mesh.Mesh) (*mesh.Mesh, error) {
		var (
			flat = make([]bool, m.NodeCount())
			na   r3.Vec
		)
		for i := range m.Faces {
			f := &m.Faces[i]
			if !f.Selected {
				continue
			}
			for _, n := range f.Nodes {
				flat[n] = true
			}
			na = r3.Add(na, f.Normal)
		}
		if c.UseNormal {
			na = c.Normal
		}
		if r3.Norm(na) == 0 {
			return nil, inapplicablef("no faces selected or zero normal")
		}
		na = r3.Unit(na)

		var (
			tagged []int
			pts    []r3.Vec
			d0     float64
		)
		for n, ok := range flat {
			if !ok {
				continue
			}
			x := m.Nodes[n].Pos
			if d := r3.Dot(na, x); len(tagged) == 0 || d < d0 {
				d0 = d
			}
			tagged = append(tagged, n)
			pts = append(pts, x)
		}
		if len(tagged) == 0 {
			return nil, inapplicablef("selected faces have no nodes")
		}

		wgt := make([]float64, m.NodeCount())
		for _, n := range tagged {
			wgt[n] = r3.Dot(na, m.Nodes[n].Pos) - d0
		}
		nnq := query.NewNNQuery(pts)
		for n := range m.Nodes {
			if flat[n] || c.Radius == 0 {
				continue
			}
			x := m.Nodes[n].Pos
			j := nnq.Find(x)
			f := 1 - r3.Norm(r3.Sub(x, pts[j]))/c.Radius
			wgt[n] = max(0, wgt[tagged[j]]*f)
		}

		out := m.Clone()
		for n := range out.Nodes {
			if wgt[n] > 0 {
				out.Nodes[n].Pos = r3.Sub(out.Nodes[n].Pos, r3.Scale(wgt[n], na))
			}
		}
		out.Rebuild(m, nil)
		return out, nil
	})
}
