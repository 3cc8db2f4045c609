// Package query holds the adjacency lists and spatial search structures built on demand by the modifiers.
// None of them are kept on the mesh: build one per algorithm run and drop it.
package query

import (
	"sort"

	"github.com/james-bowman/sparse"

	"github.com/notargets/femesh/mesh"
)

// NodeElementList maps each node to the elements that use it, in compressed row form
type NodeElementList struct {
	m      *mesh.Mesh
	offset []int // len NodeCount+1
	elems  []int
	local  []int // position of the node in the element's node list
}

func NewNodeElementList(m *mesh.Mesh) (nel *NodeElementList) {
	var (
		nn = m.NodeCount()
	)
	nel = &NodeElementList{m: m, offset: make([]int, nn+1)}
	for i := range m.Elements {
		for _, n := range m.Elements[i].Nodes {
			nel.offset[n+1]++
		}
	}
	for n := 0; n < nn; n++ {
		nel.offset[n+1] += nel.offset[n]
	}
	total := nel.offset[nn]
	nel.elems = make([]int, total)
	nel.local = make([]int, total)
	fill := append([]int(nil), nel.offset[:nn]...)
	for i := range m.Elements {
		for j, n := range m.Elements[i].Nodes {
			nel.elems[fill[n]] = i
			nel.local[fill[n]] = j
			fill[n]++
		}
	}
	return
}

// Valence is the number of elements using node n
func (nel *NodeElementList) Valence(n int) int {
	return nel.offset[n+1] - nel.offset[n]
}

// ElementIndex is the index of the j-th element using node n, elements are listed in ascending order
func (nel *NodeElementList) ElementIndex(n, j int) int {
	return nel.elems[nel.offset[n]+j]
}

func (nel *NodeElementList) Element(n, j int) *mesh.Element {
	return &nel.m.Elements[nel.ElementIndex(n, j)]
}

// LocalIndex is the position of node n in the node list of its j-th element
func (nel *NodeElementList) LocalIndex(n, j int) int {
	return nel.local[nel.offset[n]+j]
}

// Elements returns the element indices around node n, the slice aliases the list
func (nel *NodeElementList) Elements(n int) []int {
	return nel.elems[nel.offset[n]:nel.offset[n+1]]
}

// NodeNodeList maps each node to the nodes it shares an element edge with.
// Edge interior nodes chain along their edge, face and body interior nodes link to the corners around them.
type NodeNodeList struct {
	offset []int
	nodes  []int
}

func NewNodeNodeList(m *mesh.Mesh) (nnl *NodeNodeList) {
	var (
		nn  = m.NodeCount()
		dok = sparse.NewDOK(max(nn, 1), max(nn, 1))
	)
	link := func(a, b int) {
		if a != b {
			dok.Set(a, b, 1)
			dok.Set(b, a, 1)
		}
	}
	for i := range m.Elements {
		el := &m.Elements[i]
		es := el.Spec()
		for k := range es.Edges {
			chain := es.EdgeLocal(k, false)
			// corners first, then the interior nodes from the first corner on
			prev := chain[0]
			for _, l := range chain[2:] {
				link(el.Nodes[prev], el.Nodes[l])
				prev = l
			}
			link(el.Nodes[prev], el.Nodes[chain[1]])
		}
		for f, fn := range es.FaceNodes {
			if fn < 0 {
				continue
			}
			for _, c := range es.Faces[f] {
				link(el.Nodes[fn], el.Nodes[c])
			}
		}
		if es.CenterNode >= 0 {
			for c := 0; c < es.Corners; c++ {
				link(el.Nodes[es.CenterNode], el.Nodes[c])
			}
		}
	}
	raw := dok.ToCSR().RawMatrix()
	nnl = &NodeNodeList{offset: make([]int, nn+1)}
	if nn == 0 {
		return
	}
	copy(nnl.offset, raw.Indptr[:nn+1])
	nnl.nodes = append([]int(nil), raw.Ind[:raw.Indptr[nn]]...)
	for n := 0; n < nn; n++ {
		sort.Ints(nnl.nodes[nnl.offset[n]:nnl.offset[n+1]])
	}
	return
}

func (nnl *NodeNodeList) Valence(n int) int {
	return nnl.offset[n+1] - nnl.offset[n]
}

// Node is the j-th neighbor of node n, neighbors are listed in ascending order
func (nnl *NodeNodeList) Node(n, j int) int {
	return nnl.nodes[nnl.offset[n]+j]
}

// Nodes returns the neighbors of node n, the slice aliases the list
func (nnl *NodeNodeList) Nodes(n int) []int {
	return nnl.nodes[nnl.offset[n]:nnl.offset[n+1]]
}
