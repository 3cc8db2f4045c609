package modifiers

import (
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/notargets/femesh/mesh"
	"github.com/notargets/femesh/mesh/query"
	"github.com/notargets/femesh/utils"
)

// SmoothNodes runs Laplacian smoothing: each pass moves a node by Factor toward the mean of its
// edge neighbors. Only selected nodes move, or every interior node when none is selected;
// boundary nodes never move.
type SmoothNodes struct {
	Iterations int
	Factor     float64
}

func (SmoothNodes) Name() string { return "smooth nodes" }

func (c SmoothNodes) Apply(m *mesh.Mesh) (*mesh.Mesh, error) {
	if c.Iterations < 1 {
		return nil, invalidf("iterations must be at least 1, have %d", c.Iterations)
	}
	if c.Factor <= 0 || c.Factor > 1 {
		return nil, invalidf("smoothing factor must be in (0,1], have %g", c.Factor)
	}
	return Run(c.Name(), m, func(m *mesh.Mesh) (*mesh.Mesh, error) {
		var (
			nnl    = query.NewNodeNodeList(m)
			nn     = m.NodeCount()
			moving = make([]bool, nn)
			anySel bool
		)
		for i := range m.Nodes {
			anySel = anySel || m.Nodes[i].Selected
		}
		for i := range m.Nodes {
			nd := &m.Nodes[i]
			moving[i] = !nd.Exterior && nnl.Valence(i) > 0 && (!anySel || nd.Selected)
		}
		out := m.Clone()
		next := make([]r3.Vec, nn)
		pm := utils.NewPartitionMap(utils.DefaultParallelDegree(), nn)
		for it := 0; it < c.Iterations; it++ {
			pm.ParallelFor(func(_, kMin, kMax int) {
				for n := kMin; n < kMax; n++ {
					x := out.Nodes[n].Pos
					if !moving[n] {
						next[n] = x
						continue
					}
					var avg r3.Vec
					for _, j := range nnl.Nodes(n) {
						avg = r3.Add(avg, out.Nodes[j].Pos)
					}
					avg = r3.Scale(1/float64(nnl.Valence(n)), avg)
					next[n] = r3.Add(x, r3.Scale(c.Factor, r3.Sub(avg, x)))
				}
			})
			for n := range next {
				out.Nodes[n].Pos = next[n]
			}
		}
		out.Rebuild(m, nil)
		return out, nil
	})
}
