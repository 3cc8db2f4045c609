package mesh

import (
	"fmt"
	"strings"
)

// ElementType is the closed set of element kinds the engine understands
type ElementType int

const (
	None  ElementType = iota - 2 // empty mesh
	Mixed                        // more than one element kind
	Beam2
	Beam3
	Tri3
	Tri6
	Tri7
	Quad4
	Quad8
	Quad9
	Tet4
	Tet5
	Tet10
	Tet15
	Tet20
	Hex8
	Hex20
	Hex27
	Penta6
	Pyra5
	numElementTypes
)

var elementTypeNames = [...]string{"Beam2", "Beam3", "Tri3", "Tri6", "Tri7", "Quad4", "Quad8", "Quad9",
	"Tet4", "Tet5", "Tet10", "Tet15", "Tet20", "Hex8", "Hex20", "Hex27", "Penta6", "Pyra5"}

func (e ElementType) String() string {
	switch {
	case e == None:
		return "None"
	case e == Mixed:
		return "Mixed"
	case e >= 0 && e < numElementTypes:
		return elementTypeNames[e]
	}
	return fmt.Sprintf("ElementType(%d)", int(e))
}

// Valid reports whether e names a concrete element kind
func (e ElementType) Valid() bool {
	return e >= 0 && e < numElementTypes
}

// ParseElementType accepts names like "tet10", "Hex8", "penta6" or "wedge"
func ParseElementType(name string) (ElementType, error) {
	lname := strings.ToLower(strings.TrimSpace(name))
	switch lname {
	case "wedge", "prism", "penta", "penta6":
		return Penta6, nil
	case "pyramid", "pyra", "pyra5":
		return Pyra5, nil
	}
	for i, n := range elementTypeNames {
		if strings.ToLower(n) == lname {
			return ElementType(i), nil
		}
	}
	return None, fmt.Errorf("unknown element type %q", name)
}

// ElementClass separates line, surface and volume elements
type ElementClass uint8

const (
	Beam ElementClass = iota
	Shell
	Solid
)

func (c ElementClass) String() string {
	return [...]string{"Beam", "Shell", "Solid"}[c]
}

// FaceType is the node layout of a face record
type FaceType uint8

const (
	FaceTri3 FaceType = iota
	FaceTri6
	FaceTri7
	FaceTri10
	FaceQuad4
	FaceQuad8
	FaceQuad9
)

func (f FaceType) String() string {
	return [...]string{"Tri3", "Tri6", "Tri7", "Tri10", "Quad4", "Quad8", "Quad9"}[f]
}

// Corners returns 3 or 4
func (f FaceType) Corners() int {
	if f >= FaceQuad4 {
		return 4
	}
	return 3
}

// EdgeNodes is the number of interior nodes on each side of the face
func (f FaceType) EdgeNodes() int {
	switch f {
	case FaceTri3, FaceQuad4:
		return 0
	case FaceTri10:
		return 2
	}
	return 1
}

// faceTypeFromCount maps a face record node count to its layout
func faceTypeFromCount(n int) (FaceType, bool) {
	switch n {
	case 3:
		return FaceTri3, true
	case 6:
		return FaceTri6, true
	case 7:
		return FaceTri7, true
	case 10:
		return FaceTri10, true
	case 4:
		return FaceQuad4, true
	case 8:
		return FaceQuad8, true
	case 9:
		return FaceQuad9, true
	}
	return 0, false
}

// EdgeType is the node layout of an edge record
type EdgeType uint8

const (
	EdgeLine2 EdgeType = iota
	EdgeLine3
	EdgeLine4
)

func (e EdgeType) String() string {
	return [...]string{"Line2", "Line3", "Line4"}[e]
}

/*
ElementSpec holds the canonical local node ordering of an element kind.

	Edges      corner pairs, the edge runs from Edges[k][0] to Edges[k][1]
	EdgeNodes  interior nodes of edge k, ordered from Edges[k][0] to Edges[k][1]
	Faces      outward corner cycles of a solid (nil for shells and beams)
	FaceNodes  interior node of face f, -1 when there is none
	CenterNode body (solid) or face (shell) interior node, -1 when there is none

Derived tables, filled in by init():

	FaceLocal  full local node list of each face: corner cycle, edge nodes along the cycle, face node
	Invert     node permutation that flips the element's orientation
*/
type ElementSpec struct {
	Type       ElementType
	Nodes      int
	Corners    int
	Class      ElementClass
	Edges      [][2]int
	EdgeNodes  [][]int
	Faces      [][]int
	FaceNodes  []int
	CenterNode int
	Linear     ElementType

	FaceLocal [][]int
	Invert    []int

	cornerInvert []int
}

var (
	tetEdges   = [][2]int{{0, 1}, {1, 2}, {2, 0}, {0, 3}, {1, 3}, {2, 3}}
	tetFaces   = [][]int{{0, 1, 3}, {1, 2, 3}, {2, 0, 3}, {2, 1, 0}}
	hexEdges   = [][2]int{{0, 1}, {1, 2}, {2, 3}, {3, 0}, {4, 5}, {5, 6}, {6, 7}, {7, 4}, {0, 4}, {1, 5}, {2, 6}, {3, 7}}
	hexFaces   = [][]int{{0, 1, 5, 4}, {1, 2, 6, 5}, {2, 3, 7, 6}, {3, 0, 4, 7}, {3, 2, 1, 0}, {4, 5, 6, 7}}
	pentaEdges = [][2]int{{0, 1}, {1, 2}, {2, 0}, {3, 4}, {4, 5}, {5, 3}, {0, 3}, {1, 4}, {2, 5}}
	pentaFaces = [][]int{{0, 1, 4, 3}, {1, 2, 5, 4}, {0, 3, 5, 2}, {0, 2, 1}, {3, 4, 5}}
	pyraEdges  = [][2]int{{0, 1}, {1, 2}, {2, 3}, {3, 0}, {0, 4}, {1, 4}, {2, 4}, {3, 4}}
	pyraFaces  = [][]int{{0, 1, 4}, {1, 2, 4}, {2, 3, 4}, {3, 0, 4}, {3, 2, 1, 0}}
	triEdges   = [][2]int{{0, 1}, {1, 2}, {2, 0}}
	quadEdges  = [][2]int{{0, 1}, {1, 2}, {2, 3}, {3, 0}}
	beamEdges  = [][2]int{{0, 1}}
)

// seq returns n single node lists starting at first, one per edge
func seq(first, n, per int) (lists [][]int) {
	lists = make([][]int, n)
	for k := 0; k < n; k++ {
		lists[k] = make([]int, per)
		for j := 0; j < per; j++ {
			lists[k][j] = first + per*k + j
		}
	}
	return
}

func noNodes(n int) [][]int {
	return make([][]int, n)
}

func noFaceNodes(n int) (fn []int) {
	fn = make([]int, n)
	for i := range fn {
		fn[i] = -1
	}
	return
}

func ints(first, n int) (r []int) {
	r = make([]int, n)
	for i := range r {
		r[i] = first + i
	}
	return
}

var elementSpecs = [numElementTypes]*ElementSpec{
	Beam2: {Nodes: 2, Corners: 2, Class: Beam, Edges: beamEdges, EdgeNodes: noNodes(1), CenterNode: -1,
		Linear: Beam2, cornerInvert: []int{1, 0}},
	Beam3: {Nodes: 3, Corners: 2, Class: Beam, Edges: beamEdges, EdgeNodes: seq(2, 1, 1), CenterNode: -1,
		Linear: Beam2, cornerInvert: []int{1, 0}},
	Tri3: {Nodes: 3, Corners: 3, Class: Shell, Edges: triEdges, EdgeNodes: noNodes(3), CenterNode: -1,
		Linear: Tri3, cornerInvert: []int{0, 2, 1}},
	Tri6: {Nodes: 6, Corners: 3, Class: Shell, Edges: triEdges, EdgeNodes: seq(3, 3, 1), CenterNode: -1,
		Linear: Tri3, cornerInvert: []int{0, 2, 1}},
	Tri7: {Nodes: 7, Corners: 3, Class: Shell, Edges: triEdges, EdgeNodes: seq(3, 3, 1), CenterNode: 6,
		Linear: Tri3, cornerInvert: []int{0, 2, 1}},
	Quad4: {Nodes: 4, Corners: 4, Class: Shell, Edges: quadEdges, EdgeNodes: noNodes(4), CenterNode: -1,
		Linear: Quad4, cornerInvert: []int{0, 3, 2, 1}},
	Quad8: {Nodes: 8, Corners: 4, Class: Shell, Edges: quadEdges, EdgeNodes: seq(4, 4, 1), CenterNode: -1,
		Linear: Quad4, cornerInvert: []int{0, 3, 2, 1}},
	Quad9: {Nodes: 9, Corners: 4, Class: Shell, Edges: quadEdges, EdgeNodes: seq(4, 4, 1), CenterNode: 8,
		Linear: Quad4, cornerInvert: []int{0, 3, 2, 1}},
	Tet4: {Nodes: 4, Corners: 4, Class: Solid, Edges: tetEdges, EdgeNodes: noNodes(6), Faces: tetFaces,
		FaceNodes: noFaceNodes(4), CenterNode: -1, Linear: Tet4, cornerInvert: []int{0, 2, 1, 3}},
	Tet5: {Nodes: 5, Corners: 4, Class: Solid, Edges: tetEdges, EdgeNodes: noNodes(6), Faces: tetFaces,
		FaceNodes: noFaceNodes(4), CenterNode: 4, Linear: Tet4, cornerInvert: []int{0, 2, 1, 3}},
	Tet10: {Nodes: 10, Corners: 4, Class: Solid, Edges: tetEdges, EdgeNodes: seq(4, 6, 1), Faces: tetFaces,
		FaceNodes: noFaceNodes(4), CenterNode: -1, Linear: Tet4, cornerInvert: []int{0, 2, 1, 3}},
	Tet15: {Nodes: 15, Corners: 4, Class: Solid, Edges: tetEdges, EdgeNodes: seq(4, 6, 1), Faces: tetFaces,
		FaceNodes: ints(10, 4), CenterNode: 14, Linear: Tet4, cornerInvert: []int{0, 2, 1, 3}},
	Tet20: {Nodes: 20, Corners: 4, Class: Solid, Edges: tetEdges, EdgeNodes: seq(4, 6, 2), Faces: tetFaces,
		FaceNodes: ints(16, 4), CenterNode: -1, Linear: Tet4, cornerInvert: []int{0, 2, 1, 3}},
	Hex8: {Nodes: 8, Corners: 8, Class: Solid, Edges: hexEdges, EdgeNodes: noNodes(12), Faces: hexFaces,
		FaceNodes: noFaceNodes(6), CenterNode: -1, Linear: Hex8, cornerInvert: []int{0, 3, 2, 1, 4, 7, 6, 5}},
	Hex20: {Nodes: 20, Corners: 8, Class: Solid, Edges: hexEdges, EdgeNodes: seq(8, 12, 1), Faces: hexFaces,
		FaceNodes: noFaceNodes(6), CenterNode: -1, Linear: Hex8, cornerInvert: []int{0, 3, 2, 1, 4, 7, 6, 5}},
	Hex27: {Nodes: 27, Corners: 8, Class: Solid, Edges: hexEdges, EdgeNodes: seq(8, 12, 1), Faces: hexFaces,
		FaceNodes: ints(20, 6), CenterNode: 26, Linear: Hex8, cornerInvert: []int{0, 3, 2, 1, 4, 7, 6, 5}},
	Penta6: {Nodes: 6, Corners: 6, Class: Solid, Edges: pentaEdges, EdgeNodes: noNodes(9), Faces: pentaFaces,
		FaceNodes: noFaceNodes(5), CenterNode: -1, Linear: Penta6, cornerInvert: []int{0, 2, 1, 3, 5, 4}},
	Pyra5: {Nodes: 5, Corners: 5, Class: Solid, Edges: pyraEdges, EdgeNodes: noNodes(8), Faces: pyraFaces,
		FaceNodes: noFaceNodes(5), CenterNode: -1, Linear: Pyra5, cornerInvert: []int{0, 3, 2, 1, 4}},
}

func init() {
	for i, es := range elementSpecs {
		es.Type = ElementType(i)
		es.buildFaceLocal()
		es.buildInvert()
	}
}

// Spec returns the layout table of an element kind, nil for None and Mixed
func (e ElementType) Spec() *ElementSpec {
	if !e.Valid() {
		return nil
	}
	return elementSpecs[e]
}

// FindEdge returns the local edge joining corners a and b, and whether it runs from b to a
func (es *ElementSpec) FindEdge(a, b int) (edge int, reversed bool) {
	for k, e := range es.Edges {
		switch {
		case e[0] == a && e[1] == b:
			return k, false
		case e[0] == b && e[1] == a:
			return k, true
		}
	}
	return -1, false
}

// EdgeLocal returns the local nodes of edge k running from a to b, corners included
func (es *ElementSpec) EdgeLocal(k int, reversed bool) (local []int) {
	e := es.Edges[k]
	in := es.EdgeNodes[k]
	local = make([]int, 0, 2+len(in))
	if !reversed {
		local = append(local, e[0], e[1])
		local = append(local, in...)
		return
	}
	local = append(local, e[1], e[0])
	for j := len(in) - 1; j >= 0; j-- {
		local = append(local, in[j])
	}
	return
}

// faceLocalFromCycle lays out a face: corner cycle, edge nodes along the cycle, interior node
func (es *ElementSpec) faceLocalFromCycle(cycle []int, center int) (local []int) {
	nc := len(cycle)
	local = append(local, cycle...)
	for i := 0; i < nc; i++ {
		k, rev := es.FindEdge(cycle[i], cycle[(i+1)%nc])
		el := es.EdgeLocal(k, rev)
		local = append(local, el[2:]...)
	}
	if center >= 0 {
		local = append(local, center)
	}
	return
}

func (es *ElementSpec) buildFaceLocal() {
	switch es.Class {
	case Solid:
		es.FaceLocal = make([][]int, len(es.Faces))
		for f, cycle := range es.Faces {
			es.FaceLocal[f] = es.faceLocalFromCycle(cycle, es.FaceNodes[f])
		}
	case Shell:
		es.FaceLocal = [][]int{es.faceLocalFromCycle(ints(0, es.Corners), es.CenterNode)}
	}
}

// buildInvert extends the corner permutation to every node of the element
func (es *ElementSpec) buildInvert() {
	p := es.cornerInvert
	es.Invert = make([]int, es.Nodes)
	copy(es.Invert, p)
	for k, e := range es.Edges {
		ok, rev := es.FindEdge(p[e[0]], p[e[1]])
		old := es.EdgeLocal(ok, rev)[2:]
		for j, n := range es.EdgeNodes[k] {
			es.Invert[n] = old[j]
		}
	}
	for f, cycle := range es.Faces {
		if es.FaceNodes[f] < 0 {
			continue
		}
		mapped := make([]int, len(cycle))
		for i, c := range cycle {
			mapped[i] = p[c]
		}
		es.Invert[es.FaceNodes[f]] = es.FaceNodes[es.findFace(mapped)]
	}
	if es.CenterNode >= 0 {
		es.Invert[es.CenterNode] = es.CenterNode
	}
}

// findFace returns the local face with the given corner set in any order
func (es *ElementSpec) findFace(corners []int) int {
	for f, cycle := range es.Faces {
		if len(cycle) != len(corners) {
			continue
		}
		match := 0
		for _, a := range cycle {
			for _, b := range corners {
				if a == b {
					match++
				}
			}
		}
		if match == len(cycle) {
			return f
		}
	}
	return -1
}

// NeighborSlots is the length of Element.Nbr: faces for solids, edges for shells, end nodes for beams
func (es *ElementSpec) NeighborSlots() int {
	switch es.Class {
	case Solid:
		return len(es.Faces)
	case Shell:
		return len(es.Edges)
	}
	return 2
}

// IsLinear reports whether the kind carries corner nodes only
func (e ElementType) IsLinear() bool {
	es := e.Spec()
	return es != nil && es.Nodes == es.Corners
}

// EdgeTypeFromCount maps an edge record node count to its layout
func EdgeTypeFromCount(n int) EdgeType {
	switch n {
	case 3:
		return EdgeLine3
	case 4:
		return EdgeLine4
	}
	return EdgeLine2
}
