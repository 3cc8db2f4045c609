package modifiers

import (
	"github.com/notargets/femesh/mesh"
)

/*
DetachElements disconnects the selected elements from the rest of the mesh. Every node on a face
(solid) or edge (shell) between a selected and an unselected element is duplicated, the copies are
appended in node order and only the selected elements are rewired to them. With Repartition the
selected elements move to new partitions numbered after the existing ones.
*/
type DetachElements struct {
	Repartition bool
}

func (DetachElements) Name() string { return "detach elements" }

func (d DetachElements) Apply(m *mesh.Mesh) (*mesh.Mesh, error) {
	return Run(d.Name(), m, func(m *mesh.Mesh) (*mesh.Mesh, error) {
		if len(m.SelectedElements()) == 0 {
			return nil, inapplicablef("no elements selected")
		}
		nn := m.NodeCount()
		dupOf := make([]int, nn)
		for i := range dupOf {
			dupOf[i] = -1
		}
		for i := range m.Elements {
			el := &m.Elements[i]
			if !el.Selected {
				continue
			}
			es := el.Spec()
			for j, nb := range el.Nbr {
				if nb < 0 || m.Elements[nb].Selected {
					continue
				}
				var local []int
				switch es.Class {
				case mesh.Solid:
					local = es.FaceLocal[j]
				case mesh.Shell:
					local = es.EdgeLocal(j, false)
				default:
					local = []int{j}
				}
				for _, l := range local {
					dupOf[el.Nodes[l]] = 0
				}
			}
		}

		out := &mesh.Mesh{
			Nodes:    append([]mesh.Node(nil), m.Nodes...),
			Elements: make([]mesh.Element, m.ElementCount()),
		}
		support := identitySupport(nn)
		for n := 0; n < nn; n++ {
			if dupOf[n] < 0 {
				continue
			}
			dupOf[n] = len(out.Nodes)
			out.Nodes = append(out.Nodes, m.Nodes[n])
			support = append(support, []int{n})
		}
		ng := m.CountElementPartitions()
		for i := range m.Elements {
			out.Elements[i] = m.Elements[i].Clone()
			el := &out.Elements[i]
			if !el.Selected {
				continue
			}
			for j, n := range el.Nodes {
				if dupOf[n] >= 0 {
					el.Nodes[j] = dupOf[n]
				}
			}
			if d.Repartition {
				el.GID += ng
			}
		}
		out.Rebuild(m, support)
		return out, nil
	})
}
