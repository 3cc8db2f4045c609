package modifiers

import (
	"github.com/notargets/femesh/mesh"
	"github.com/notargets/femesh/mesh/query"
)

// RemoveDuplicateElements deletes elements of the same kind over the same node set as a lower
// numbered element. Candidates are only compared when they share a node.
type RemoveDuplicateElements struct{}

func (RemoveDuplicateElements) Name() string { return "remove duplicate elements" }

func (c RemoveDuplicateElements) Apply(m *mesh.Mesh) (*mesh.Mesh, error) {
	return Run(c.Name(), m, func(m *mesh.Mesh) (*mesh.Mesh, error) {
		var (
			nel  = query.NewNodeElementList(m)
			dup  = make([]bool, m.ElementCount())
			ndup int
		)
		for n := 0; n < m.NodeCount(); n++ {
			around := nel.Elements(n)
			for j, a := range around {
				if dup[a] {
					continue
				}
				for _, b := range around[j+1:] {
					if !dup[b] && mesh.ElementsEqual(&m.Elements[a], &m.Elements[b]) {
						// the list is ascending, so a < b survives
						dup[b] = true
						ndup++
					}
				}
			}
		}
		if ndup == 0 {
			return m.Clone(), nil
		}
		out := &mesh.Mesh{
			Nodes:    append([]mesh.Node(nil), m.Nodes...),
			Elements: make([]mesh.Element, 0, m.ElementCount()-ndup),
		}
		for i := range m.Elements {
			if !dup[i] {
				out.Elements = append(out.Elements, m.Elements[i].Clone())
			}
		}
		out.Rebuild(m, nil)
		return out, nil
	})
}
