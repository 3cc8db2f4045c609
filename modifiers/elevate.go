package modifiers

import (
	"fmt"

	"github.com/notargets/femesh/mesh"
)

// quadraticOf is the kind LinearToQuadratic produces for each linear kind
var quadraticOf = map[mesh.ElementType]mesh.ElementType{
	mesh.Beam2: mesh.Beam3,
	mesh.Tri3:  mesh.Tri6,
	mesh.Quad4: mesh.Quad8,
	mesh.Tet4:  mesh.Tet10,
	mesh.Hex8:  mesh.Hex20,
}

// elevationPlan is the single identity child of type target, with the lattice target's layout needs
func elevationPlan(target mesh.ElementType) *plan {
	ts := target.Spec()
	p := &plan{
		lattice: lattice{
			edgeNodes: len(ts.EdgeNodes[0]),
			center:    ts.CenterNode >= 0,
		},
	}
	for _, fn := range ts.FaceNodes {
		if fn >= 0 {
			p.faceNodes = true
		}
	}
	nodes := make([]int, ts.Nodes)
	for i := range nodes {
		nodes[i] = i
	}
	p.children = []child{{typ: target, nodes: nodes}}
	return p
}

// Elevate converts every element of Target's linear kind into Target, adding edge, face and
// center nodes. Shared edges and faces get one set of nodes.
type Elevate struct {
	Target mesh.ElementType
	Smooth bool
}

func (e Elevate) Name() string { return fmt.Sprintf("elevate to %v", e.Target) }

func (e Elevate) Apply(m *mesh.Mesh) (*mesh.Mesh, error) {
	ts := e.Target.Spec()
	if ts == nil || ts.Linear == e.Target {
		return nil, invalidf("%v is not a higher-order element", e.Target)
	}
	p := elevationPlan(e.Target)
	return Run(e.Name(), m, func(m *mesh.Mesh) (*mesh.Mesh, error) {
		return subdivide(m, func(_ *mesh.Mesh, el *mesh.Element) *plan {
			if el.Type != ts.Linear {
				return nil
			}
			return p
		}, e.Smooth)
	})
}

// LinearToQuadratic elevates every linear element with a quadratic counterpart:
// Beam2, Tri3, Quad4, Tet4 and Hex8. Pentas and pyramids are copied.
type LinearToQuadratic struct {
	Smooth bool
}

func (LinearToQuadratic) Name() string { return "linear to quadratic" }

func (c LinearToQuadratic) Apply(m *mesh.Mesh) (*mesh.Mesh, error) {
	plans := make(map[mesh.ElementType]*plan, len(quadraticOf))
	for lin, quad := range quadraticOf {
		plans[lin] = elevationPlan(quad)
	}
	return Run(c.Name(), m, func(m *mesh.Mesh) (*mesh.Mesh, error) {
		return subdivide(m, func(_ *mesh.Mesh, el *mesh.Element) *plan {
			return plans[el.Type]
		}, c.Smooth)
	})
}

// Reduce converts every element of type From to its linear kind, keeping the corners.
// Nodes no element uses any more are dropped and the rest renumbered in order.
type Reduce struct {
	From mesh.ElementType
}

func (r Reduce) Name() string { return fmt.Sprintf("reduce %v", r.From) }

func (r Reduce) Apply(m *mesh.Mesh) (*mesh.Mesh, error) {
	if r.From.IsLinear() || !r.From.Valid() {
		return nil, invalidf("%v is not a higher-order element", r.From)
	}
	return Run(r.Name(), m, func(m *mesh.Mesh) (*mesh.Mesh, error) {
		return reduce(m, func(el *mesh.Element) bool { return el.Type == r.From })
	})
}

// QuadraticToLinear reduces every higher-order element to its linear kind
type QuadraticToLinear struct{}

func (QuadraticToLinear) Name() string { return "quadratic to linear" }

func (c QuadraticToLinear) Apply(m *mesh.Mesh) (*mesh.Mesh, error) {
	return Run(c.Name(), m, func(m *mesh.Mesh) (*mesh.Mesh, error) {
		return reduce(m, func(el *mesh.Element) bool { return !el.Type.IsLinear() })
	})
}

func reduce(src *mesh.Mesh, pick func(el *mesh.Element) bool) (*mesh.Mesh, error) {
	out := &mesh.Mesh{
		Nodes:    src.Nodes,
		Elements: make([]mesh.Element, src.ElementCount()),
	}
	var picked int
	for i := range src.Elements {
		el := &src.Elements[i]
		if !pick(el) {
			out.Elements[i] = el.Clone()
			continue
		}
		picked++
		es := el.Spec()
		d := &out.Elements[i]
		d.SetType(es.Linear)
		copy(d.Nodes, el.Nodes[:es.Corners])
		d.CopyAttributes(el)
		if d.H != nil && el.H != nil {
			copy(d.H, el.H[:es.Corners])
		}
	}
	if picked == 0 {
		return nil, inapplicablef("no higher-order element")
	}
	// keep nodes that are still used, and the ones no element used to begin with
	keep := make([]bool, src.NodeCount())
	before := usedNodes(src)
	after := usedNodes(out)
	for i := range keep {
		keep[i] = after[i] || !before[i]
	}
	support := compactNodes(out, src.Nodes, keep)
	out.Rebuild(src, support)
	return out, nil
}

func usedNodes(m *mesh.Mesh) (used []bool) {
	used = make([]bool, m.NodeCount())
	for i := range m.Elements {
		for _, n := range m.Elements[i].Nodes {
			used[n] = true
		}
	}
	return
}

// compactNodes rebuilds m.Nodes from the kept entries of nodes, renumbers the element lists and
// returns the support of each surviving node
func compactNodes(m *mesh.Mesh, nodes []mesh.Node, keep []bool) (support [][]int) {
	remap := make([]int, len(nodes))
	kept := make([]mesh.Node, 0, len(nodes))
	for i := range nodes {
		remap[i] = -1
		if keep[i] {
			remap[i] = len(kept)
			kept = append(kept, nodes[i])
			support = append(support, []int{i})
		}
	}
	m.Nodes = kept
	for i := range m.Elements {
		el := &m.Elements[i]
		for j, n := range el.Nodes {
			el.Nodes[j] = remap[n]
		}
	}
	return
}
