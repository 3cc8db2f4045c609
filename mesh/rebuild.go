package mesh

import (
	"sort"

	"go.uber.org/zap"

	"github.com/notargets/femesh/logger"
	"github.com/notargets/femesh/types"
)

type slotUse struct {
	elem, slot int
}

/*
Rebuild recomputes everything derived from the element list: boundary faces, feature edges,
element and face neighbors, face normals, exterior node flags, node IDs and the bounding box.

ref is the mesh m was derived from and support[i] lists the ref nodes that node i was built from
(a copied node supports itself, an edge node its two edge corners, a face node the face corners).
A face keeps the partition and smoothing group of the ref face whose corners contain the union of
its corner supports; an edge likewise keeps the partition of the matching ref edge. A nil support
means node i of m is node i of ref. Pass ref == nil to start partitions from scratch.
*/
func (m *Mesh) Rebuild(ref *Mesh, support [][]int) {
	var refFaces []Face
	var refEdges []Edge
	if ref != nil {
		refFaces, refEdges = ref.Faces, ref.Edges
	}
	supp := func(n int) []int {
		if support == nil {
			return []int{n}
		}
		return support[n]
	}

	edgeFaces := m.buildFaces()
	m.inheritFaceGIDs(refFaces, supp)
	groups := m.buildEdges(edgeFaces)
	m.inheritEdgeGIDs(refEdges, groups, supp)

	for i := range m.Nodes {
		m.Nodes[i].ID = i + 1
		m.Nodes[i].Exterior = false
	}
	for i := range m.Faces {
		f := &m.Faces[i]
		f.Normal = m.FaceNormal(f)
		for _, n := range f.Nodes {
			m.Nodes[n].Exterior = true
		}
	}
	m.UpdateBox()

	logger.Log.Debug("rebuild",
		zap.Int("nodes", len(m.Nodes)), zap.Int("elements", len(m.Elements)),
		zap.Int("faces", len(m.Faces)), zap.Int("edges", len(m.Edges)))
}

// BuildMesh rebuilds the derived lists keeping the partitions of the current faces and edges
func (m *Mesh) BuildMesh() {
	snapshot := &Mesh{Faces: m.Faces, Edges: m.Edges}
	m.Rebuild(snapshot, nil)
}

// globalNodes maps local element indices to mesh nodes
func globalNodes(el *Element, local []int) (g []int) {
	g = make([]int, len(local))
	for i, l := range local {
		g[i] = el.Nodes[l]
	}
	return
}

// buildFaces sets element neighbors and the face list, and returns the faces sharing each corner edge
func (m *Mesh) buildFaces() (edgeFaces map[types.EdgeKey][]int) {
	var (
		solidFaces = make(map[types.FaceKey][]slotUse)
		shellEdges = make(map[types.EdgeKey][]slotUse)
		beamEnds   = make(map[int][]slotUse)
		faceKeys   = make([][]types.FaceKey, len(m.Elements))
	)
	for i := range m.Elements {
		el := &m.Elements[i]
		es := el.Spec()
		el.Nbr = make([]int, es.NeighborSlots())
		for j := range el.Nbr {
			el.Nbr[j] = -1
		}
		switch es.Class {
		case Solid:
			faceKeys[i] = make([]types.FaceKey, len(es.Faces))
			for f, cycle := range es.Faces {
				key := types.NewFaceKey(globalNodes(el, cycle))
				faceKeys[i][f] = key
				solidFaces[key] = append(solidFaces[key], slotUse{i, f})
			}
		case Shell:
			for k, e := range es.Edges {
				key := types.NewEdgeKey([2]int{el.Nodes[e[0]], el.Nodes[e[1]]})
				shellEdges[key] = append(shellEdges[key], slotUse{i, k})
			}
		case Beam:
			for j := 0; j < 2; j++ {
				beamEnds[el.Nodes[j]] = append(beamEnds[el.Nodes[j]], slotUse{i, j})
			}
		}
	}
	pair := func(uses []slotUse) {
		if len(uses) != 2 {
			return
		}
		a, b := uses[0], uses[1]
		m.Elements[a.elem].Nbr[a.slot] = b.elem
		m.Elements[b.elem].Nbr[b.slot] = a.elem
	}
	for _, uses := range solidFaces {
		pair(uses)
	}
	for _, uses := range shellEdges {
		pair(uses)
	}
	for _, uses := range beamEnds {
		pair(uses)
	}

	m.Faces = make([]Face, 0, len(m.Faces))
	for i := range m.Elements {
		el := &m.Elements[i]
		es := el.Spec()
		switch es.Class {
		case Solid:
			for f := range es.Faces {
				if len(solidFaces[faceKeys[i][f]]) == 1 {
					m.Faces = append(m.Faces, newFace(el, i, f))
				}
			}
		case Shell:
			m.Faces = append(m.Faces, newFace(el, i, 0))
		}
	}

	edgeFaces = make(map[types.EdgeKey][]int)
	for fi := range m.Faces {
		f := &m.Faces[fi]
		nc := f.Type.Corners()
		for j := 0; j < nc; j++ {
			key := types.NewEdgeKey([2]int{f.Nodes[j], f.Nodes[(j+1)%nc]})
			edgeFaces[key] = append(edgeFaces[key], fi)
		}
	}
	for fi := range m.Faces {
		f := &m.Faces[fi]
		nc := f.Type.Corners()
		f.Nbr = make([]int, nc)
		for j := 0; j < nc; j++ {
			f.Nbr[j] = -1
			uses := edgeFaces[types.NewEdgeKey([2]int{f.Nodes[j], f.Nodes[(j+1)%nc]})]
			if len(uses) == 2 {
				if uses[0] == fi {
					f.Nbr[j] = uses[1]
				} else {
					f.Nbr[j] = uses[0]
				}
			}
		}
	}
	return
}

func newFace(el *Element, elem, local int) (f Face) {
	nodes := globalNodes(el, el.Spec().FaceLocal[local])
	ft, _ := faceTypeFromCount(len(nodes))
	return Face{
		Type:      ft,
		Nodes:     nodes,
		Elem:      elem,
		LocalFace: local,
	}
}

// supportUnion collects the sorted, distinct ref nodes behind a list of nodes
func supportUnion(nodes []int, supp func(int) []int) (u []int) {
	for _, n := range nodes {
		for _, s := range supp(n) {
			found := false
			for _, x := range u {
				if x == s {
					found = true
					break
				}
			}
			if !found {
				u = append(u, s)
			}
		}
	}
	sort.Ints(u)
	return
}

// matchSupport finds the candidate whose corners contain u, preferring fewer corners then lower index
func matchSupport(u []int, byNode map[int][]int, corners func(i int) []int) (best int) {
	best = -1
	if len(u) == 0 {
		return
	}
	bestCount := 0
	for _, c := range byNode[u[0]] {
		cs := corners(c)
		if len(cs) < len(u) {
			continue
		}
		ok := true
		for _, x := range u[1:] {
			found := false
			for _, y := range cs {
				if x == y {
					found = true
					break
				}
			}
			if !found {
				ok = false
				break
			}
		}
		if !ok {
			continue
		}
		if best < 0 || len(cs) < bestCount || (len(cs) == bestCount && c < best) {
			best, bestCount = c, len(cs)
		}
	}
	return
}

func (m *Mesh) inheritFaceGIDs(refFaces []Face, supp func(int) []int) {
	var (
		byNode  = make(map[int][]int)
		maxGID  = -1
		newGIDs = make(map[int]int)
	)
	for i := range refFaces {
		f := &refFaces[i]
		for _, n := range f.Nodes[:f.Type.Corners()] {
			byNode[n] = append(byNode[n], i)
		}
		maxGID = max(maxGID, f.GID)
	}
	corners := func(i int) []int {
		return refFaces[i].Nodes[:refFaces[i].Type.Corners()]
	}
	for i := range m.Faces {
		f := &m.Faces[i]
		u := supportUnion(f.Nodes[:f.Type.Corners()], supp)
		if r := matchSupport(u, byNode, corners); r >= 0 {
			f.GID, f.SID = refFaces[r].GID, refFaces[r].SID
			continue
		}
		owner := m.Elements[f.Elem].GID
		gid, ok := newGIDs[owner]
		if !ok {
			gid = maxGID + 1 + len(newGIDs)
			newGIDs[owner] = gid
		}
		f.GID, f.SID = gid, 0
	}
}

type edgeSeed struct {
	edge  Edge
	group [2]int
}

// buildEdges collects free edges, edges between faces of different partitions and beams.
// groups[i] is the face partition pair of edge i, or the beam partition with -2.
func (m *Mesh) buildEdges(edgeFaces map[types.EdgeKey][]int) (groups [][2]int) {
	var (
		done  = make(map[types.EdgeKey]bool)
		seeds []edgeSeed
	)
	for fi := range m.Faces {
		f := &m.Faces[fi]
		nc, ne := f.Type.Corners(), f.Type.EdgeNodes()
		for j := 0; j < nc; j++ {
			a, b := f.Nodes[j], f.Nodes[(j+1)%nc]
			key := types.NewEdgeKey([2]int{a, b})
			if done[key] {
				continue
			}
			done[key] = true
			uses := edgeFaces[key]
			group := [2]int{m.Faces[uses[0]].GID, -1}
			if len(uses) > 1 {
				group[1] = m.Faces[uses[1]].GID
			}
			if len(uses) == 2 && group[0] == group[1] {
				continue
			}
			if group[1] >= 0 && group[1] < group[0] {
				group[0], group[1] = group[1], group[0]
			}
			nodes := []int{a, b}
			nodes = append(nodes, f.Nodes[nc+j*ne:nc+(j+1)*ne]...)
			seeds = append(seeds, edgeSeed{
				edge:  Edge{Type: EdgeTypeFromCount(len(nodes)), Nodes: nodes},
				group: group,
			})
		}
	}
	for i := range m.Elements {
		el := &m.Elements[i]
		if el.Spec().Class != Beam {
			continue
		}
		nodes := append([]int(nil), el.Nodes...)
		seeds = append(seeds, edgeSeed{
			edge:  Edge{Type: EdgeTypeFromCount(len(nodes)), Nodes: nodes},
			group: [2]int{el.GID, -2},
		})
	}
	m.Edges = make([]Edge, len(seeds))
	groups = make([][2]int, len(seeds))
	for i, s := range seeds {
		m.Edges[i] = s.edge
		groups[i] = s.group
	}
	return
}

func (m *Mesh) inheritEdgeGIDs(refEdges []Edge, groups [][2]int, supp func(int) []int) {
	var (
		byNode  = make(map[int][]int)
		maxGID  = -1
		newGIDs = make(map[[2]int]int)
	)
	for i := range refEdges {
		e := &refEdges[i]
		for _, n := range e.Nodes[:2] {
			byNode[n] = append(byNode[n], i)
		}
		maxGID = max(maxGID, e.GID)
	}
	corners := func(i int) []int { return refEdges[i].Nodes[:2] }
	for i := range m.Edges {
		e := &m.Edges[i]
		u := supportUnion(e.Nodes[:2], supp)
		if r := matchSupport(u, byNode, corners); r >= 0 {
			e.GID = refEdges[r].GID
			continue
		}
		group := groups[i]
		gid, ok := newGIDs[group]
		if !ok {
			gid = maxGID + 1 + len(newGIDs)
			newGIDs[group] = gid
		}
		e.GID = gid
	}
}

// BoundaryEdgeCount counts the corner edges of the face list used by exactly one face
func (m *Mesh) BoundaryEdgeCount() (count int) {
	uses := make(map[types.EdgeKey]int)
	for i := range m.Faces {
		f := &m.Faces[i]
		nc := f.Type.Corners()
		for j := 0; j < nc; j++ {
			uses[types.NewEdgeKey([2]int{f.Nodes[j], f.Nodes[(j+1)%nc]})]++
		}
	}
	for _, n := range uses {
		if n == 1 {
			count++
		}
	}
	return
}
