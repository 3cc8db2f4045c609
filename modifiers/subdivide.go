package modifiers

import (
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/notargets/femesh/mesh"
	"github.com/notargets/femesh/types"
	"github.com/notargets/femesh/utils"
)

/*
lattice describes the new nodes a linear element contributes to its replacement. Together with the
corners they form the element's work list:

	corners                      0 .. nc-1
	edge k, node j               nc + k*edgeNodes + j, ordered from Edges[k][0] to Edges[k][1]
	face f                       nc + nEdges*edgeNodes + f
	center                       last

This is the canonical layout of the higher-order elements (Tet10, Tet15, Tet20, Hex20, Hex27,
Quad8, Quad9, Tri6, Tri7, Beam3), so elevating to one of them is a single identity child.
*/
type lattice struct {
	edgeNodes int
	faceNodes bool
	center    bool
}

// child is one output element with its nodes given as work list positions
type child struct {
	typ   mesh.ElementType
	nodes []int
}

// plan replaces one element, a nil plan copies the element unchanged
type plan struct {
	lattice
	children []child
}

type planner func(src *mesh.Mesh, el *mesh.Element) *plan

func (p *plan) size(es *mesh.ElementSpec) (n int) {
	n = es.Corners + len(es.Edges)*p.edgeNodes
	if p.faceNodes {
		n += len(es.Faces)
	}
	if p.center {
		n++
	}
	return
}

// used flags the work list positions referenced by at least one child
func (p *plan) used(es *mesh.ElementSpec) (u []bool) {
	u = make([]bool, p.size(es))
	for _, ch := range p.children {
		for _, l := range ch.nodes {
			u[l] = true
		}
	}
	return
}

type nodeKind uint8

const (
	onEdge nodeKind = iota
	onFace
	inBody
)

// newNode records where a node created by the subdivision sits
type newNode struct {
	kind    nodeKind
	a, b    int     // edge ends, a < b
	t       float64 // parameter from a to b
	corners []int   // face or element corners
}

func (nd *newNode) support() []int {
	if nd.kind == onEdge {
		return []int{nd.a, nd.b}
	}
	return nd.corners
}

type edgeSlot struct {
	key types.EdgeKey
	n   int
}

/*
subdivide replaces every element that planFor returns a plan for and rebuilds the derived lists.
New nodes on a shared edge or face are created once, so neighbors stay conforming. Node numbering
is serial and follows element order; positions and element records are filled in parallel.
It returns ErrInapplicable when no element was planned.
*/
func subdivide(src *mesh.Mesh, planFor planner, smooth bool) (out *mesh.Mesh, err error) {
	var (
		nn0     = src.NodeCount()
		ne0     = src.ElementCount()
		plans   = make([]*plan, ne0)
		work    = make([][]int, ne0)
		offset  = make([]int, ne0+1)
		edgeMap = make(map[edgeSlot]int)
		faceMap = make(map[types.FaceKey]int)
		added   []newNode
		planned int
	)
	for i := range src.Elements {
		el := &src.Elements[i]
		p := planFor(src, el)
		offset[i+1] = 1
		if p == nil {
			continue
		}
		planned++
		plans[i] = p
		offset[i+1] = len(p.children)
		work[i] = numberLattice(el, p, nn0, &added, edgeMap, faceMap)
	}
	if planned == 0 {
		return nil, inapplicablef("no element of a supported type")
	}
	for i := 0; i < ne0; i++ {
		offset[i+1] += offset[i]
	}

	out = &mesh.Mesh{
		Nodes:    make([]mesh.Node, nn0+len(added)),
		Elements: make([]mesh.Element, offset[ne0]),
	}
	copy(out.Nodes, src.Nodes)
	var sm *smoother
	if smooth {
		sm = newSmoother(src)
	}
	deg := utils.DefaultParallelDegree()
	utils.NewPartitionMap(deg, len(added)).ParallelFor(func(_, kMin, kMax int) {
		for k := kMin; k < kMax; k++ {
			out.Nodes[nn0+k] = mesh.Node{Pos: placeNode(src, &added[k], sm), GID: -1}
		}
	})
	utils.NewPartitionMap(deg, ne0).ParallelFor(func(_, kMin, kMax int) {
		for i := kMin; i < kMax; i++ {
			el := &src.Elements[i]
			if plans[i] == nil {
				out.Elements[offset[i]] = el.Clone()
				continue
			}
			fillChildren(out.Elements[offset[i]:offset[i+1]], el, plans[i], work[i])
		}
	})

	support := make([][]int, len(out.Nodes))
	for i := 0; i < nn0; i++ {
		support[i] = []int{i}
	}
	for k := range added {
		support[nn0+k] = added[k].support()
	}
	out.Rebuild(src, support)
	return
}

// numberLattice builds the work list of one element, creating the nodes it needs that no earlier
// element created. Unused positions are -1.
func numberLattice(el *mesh.Element, p *plan, nn0 int, added *[]newNode,
	edgeMap map[edgeSlot]int, faceMap map[types.FaceKey]int) (wl []int) {
	var (
		es   = el.Spec()
		nc   = es.Corners
		used = p.used(es)
		next = func() int { return nn0 + len(*added) }
	)
	wl = make([]int, len(used))
	for i := range wl {
		wl[i] = -1
	}
	copy(wl, el.Nodes[:nc])
	pos := nc
	for _, e := range es.Edges {
		if p.edgeNodes == 0 {
			break
		}
		need := false
		for j := 0; j < p.edgeNodes; j++ {
			need = need || used[pos+j]
		}
		if need {
			a, b := el.Nodes[e[0]], el.Nodes[e[1]]
			slot := edgeSlot{key: types.NewEdgeKey([2]int{a, b}), n: p.edgeNodes}
			first, ok := edgeMap[slot]
			if !ok {
				first = next()
				edgeMap[slot] = first
				lo, hi := min(a, b), max(a, b)
				for j := 0; j < p.edgeNodes; j++ {
					*added = append(*added, newNode{kind: onEdge, a: lo, b: hi,
						t: float64(j+1) / float64(p.edgeNodes+1)})
				}
			}
			for j := 0; j < p.edgeNodes; j++ {
				if a < b {
					wl[pos+j] = first + j
				} else {
					wl[pos+j] = first + p.edgeNodes - 1 - j
				}
			}
		}
		pos += p.edgeNodes
	}
	if p.faceNodes {
		for _, cycle := range es.Faces {
			if used[pos] {
				corners := make([]int, len(cycle))
				for i, c := range cycle {
					corners[i] = el.Nodes[c]
				}
				key := types.NewFaceKey(corners)
				idx, ok := faceMap[key]
				if !ok {
					idx = next()
					faceMap[key] = idx
					*added = append(*added, newNode{kind: onFace, corners: corners})
				}
				wl[pos] = idx
			}
			pos++
		}
	}
	if p.center && used[pos] {
		wl[pos] = next()
		*added = append(*added, newNode{kind: inBody, corners: append([]int(nil), el.Nodes[:nc]...)})
	}
	return
}

func average(src *mesh.Mesh, nodes []int) (c r3.Vec) {
	for _, n := range nodes {
		c = r3.Add(c, src.Nodes[n].Pos)
	}
	return r3.Scale(1/float64(len(nodes)), c)
}

func placeNode(src *mesh.Mesh, nd *newNode, sm *smoother) r3.Vec {
	switch nd.kind {
	case onEdge:
		if sm != nil {
			return sm.edgePoint(nd.a, nd.b, nd.t)
		}
		pa, pb := src.Nodes[nd.a].Pos, src.Nodes[nd.b].Pos
		return r3.Add(pa, r3.Scale(nd.t, r3.Sub(pb, pa)))
	case onFace:
		if sm != nil {
			return sm.facePoint(nd.corners)
		}
	}
	return average(src, nd.corners)
}

// fillChildren writes the replacement elements of el into dst
func fillChildren(dst []mesh.Element, el *mesh.Element, p *plan, wl []int) {
	h := latticeThickness(el, p, len(wl))
	for c, ch := range p.children {
		d := &dst[c]
		d.SetType(ch.typ)
		for j, l := range ch.nodes {
			d.Nodes[j] = wl[l]
		}
		d.CopyAttributes(el)
		if d.H != nil && h != nil {
			for j, l := range ch.nodes {
				d.H[j] = h[l]
			}
		}
	}
}

// latticeThickness interpolates shell thickness onto the work list, nil when el carries none
func latticeThickness(el *mesh.Element, p *plan, n int) (h []float64) {
	if el.H == nil {
		return nil
	}
	var (
		es   = el.Spec()
		nc   = es.Corners
		mean float64
	)
	h = make([]float64, n)
	copy(h, el.H[:nc])
	for c := 0; c < nc; c++ {
		mean += el.H[c]
	}
	mean /= float64(nc)
	pos := nc
	for _, e := range es.Edges {
		for j := 0; j < p.edgeNodes; j++ {
			t := float64(j+1) / float64(p.edgeNodes+1)
			h[pos] = (1-t)*el.H[e[0]] + t*el.H[e[1]]
			pos++
		}
	}
	for ; pos < n; pos++ {
		h[pos] = mean
	}
	return
}

/*
smoother places new boundary nodes on a cubic through the surface instead of the straight edge.
Each surface node carries the area weighted normal of its faces; an edge point at parameter t is

	p = a + t*d - h10(t)*(d.na)*na - h11(t)*(d.nb)*nb,   d = b - a

with the Hermite basis h10 = t^3-2t^2+t and h11 = t^3-t^2, which bends the edge so its tangents
are perpendicular to the end normals. A face node on the surface is the mean of its smoothed edge
midpoints. Interior edges and faces stay linear.
*/
type smoother struct {
	src     *mesh.Mesh
	normal  map[int]r3.Vec
	onEdges map[types.EdgeKey]struct{}
	onFaces map[types.FaceKey]struct{}
}

func newSmoother(src *mesh.Mesh) (sm *smoother) {
	sm = &smoother{
		src:     src,
		normal:  make(map[int]r3.Vec),
		onEdges: make(map[types.EdgeKey]struct{}),
		onFaces: make(map[types.FaceKey]struct{}),
	}
	for i := range src.Faces {
		f := &src.Faces[i]
		nc := f.Type.Corners()
		corners := f.Nodes[:nc]
		wn := r3.Scale(src.FaceArea(f), f.Normal)
		for k, n := range corners {
			sm.normal[n] = r3.Add(sm.normal[n], wn)
			sm.onEdges[types.NewEdgeKey([2]int{n, corners[(k+1)%nc]})] = struct{}{}
		}
		sm.onFaces[types.NewFaceKey(corners)] = struct{}{}
	}
	for n, v := range sm.normal {
		if l := r3.Norm(v); l > 0 {
			sm.normal[n] = r3.Scale(1/l, v)
		}
	}
	return
}

func (sm *smoother) edgePoint(a, b int, t float64) r3.Vec {
	pa, pb := sm.src.Nodes[a].Pos, sm.src.Nodes[b].Pos
	d := r3.Sub(pb, pa)
	p := r3.Add(pa, r3.Scale(t, d))
	if _, ok := sm.onEdges[types.NewEdgeKey([2]int{a, b})]; !ok {
		return p
	}
	na, nb := sm.normal[a], sm.normal[b]
	h10 := t*t*t - 2*t*t + t
	h11 := t*t*t - t*t
	p = r3.Sub(p, r3.Scale(h10*r3.Dot(d, na), na))
	return r3.Sub(p, r3.Scale(h11*r3.Dot(d, nb), nb))
}

func (sm *smoother) facePoint(corners []int) (c r3.Vec) {
	if _, ok := sm.onFaces[types.NewFaceKey(corners)]; !ok {
		return average(sm.src, corners)
	}
	nc := len(corners)
	for k, a := range corners {
		b := corners[(k+1)%nc]
		c = r3.Add(c, sm.edgePoint(min(a, b), max(a, b), 0.5))
	}
	return r3.Scale(1/float64(nc), c)
}
