package mesh

import (
	"errors"
	"fmt"
	"sort"

	"gonum.org/v1/gonum/spatial/r3"
)

// ErrCorruptMesh flags a mesh whose indices or node counts break the element layout tables
var ErrCorruptMesh = errors.New("corrupt mesh")

// Node is a mesh vertex. Tag is scratch space for algorithms and is reset per run.
type Node struct {
	Pos      r3.Vec
	ID       int // 1-based, reassigned by Rebuild
	GID      int // vertex partition, -1 when the node is not a geometry vertex
	Tag      int
	Selected bool
	Exterior bool
}

// Element is a single finite element. Nodes follows the canonical ordering of its ElementSpec.
type Element struct {
	Type     ElementType
	Nodes    []int
	GID      int // partition
	Tag      int
	Selected bool
	H        []float64 // shell thickness per node, nil for solids and beams
	Q        [3][3]float64
	QActive  bool
	Fiber    r3.Vec
	Nbr      []int // per face (solid), edge (shell) or end node (beam), -1 is a boundary
}

// Face is a boundary face derived from the element list
type Face struct {
	Type      FaceType
	Nodes     []int // corner cycle, edge nodes along the cycle, face node
	Elem      int   // owning element
	LocalFace int   // face of the owning element, 0 for shells
	GID       int   // surface partition
	SID       int   // smoothing group
	Tag       int
	Selected  bool
	Normal    r3.Vec
	Nbr       []int // per corner edge, -1 when the edge is free or non-manifold
}

// Edge is a feature edge derived from the face list, or a beam element
type Edge struct {
	Type     EdgeType
	Nodes    []int // two corners followed by interior nodes
	GID      int
	Tag      int
	Selected bool
}

// Mesh owns nodes, elements, faces and edges in contiguous arrays addressed by index
type Mesh struct {
	Nodes    []Node
	Elements []Element
	Faces    []Face
	Edges    []Edge
	Box      r3.Box
}

// NewMesh allocates a mesh with the given record counts
func NewMesh(nodes, elems, faces, edges int) *Mesh {
	m := &Mesh{}
	m.Create(nodes, elems, faces, edges)
	return m
}

// Create bulk-allocates all record arrays, discarding any previous content
func (m *Mesh) Create(nodes, elems, faces, edges int) {
	m.Nodes = make([]Node, nodes)
	m.Elements = make([]Element, elems)
	m.Faces = make([]Face, faces)
	m.Edges = make([]Edge, edges)
	m.Box = r3.Box{}
	for i := range m.Nodes {
		m.Nodes[i].ID = i + 1
		m.Nodes[i].GID = -1
	}
}

// SetType sets the element kind and sizes the node, thickness and neighbor arrays to match
func (el *Element) SetType(t ElementType) {
	es := t.Spec()
	el.Type = t
	el.Nodes = make([]int, es.Nodes)
	el.Nbr = make([]int, es.NeighborSlots())
	for i := range el.Nbr {
		el.Nbr[i] = -1
	}
	el.H = nil
	if es.Class == Shell {
		el.H = make([]float64, es.Nodes)
	}
}

// CopyAttributes copies partition, selection, frame and fiber from src, leaving type and nodes alone
func (el *Element) CopyAttributes(src *Element) {
	el.GID = src.GID
	el.Selected = src.Selected
	el.Q = src.Q
	el.QActive = src.QActive
	el.Fiber = src.Fiber
}

// Spec is a shortcut for el.Type.Spec()
func (el *Element) Spec() *ElementSpec {
	return el.Type.Spec()
}

// Clone deep-copies the element
func (el *Element) Clone() (c Element) {
	c = *el
	c.Nodes = append([]int(nil), el.Nodes...)
	c.Nbr = append([]int(nil), el.Nbr...)
	if el.H != nil {
		c.H = append([]float64(nil), el.H...)
	}
	return
}

// Clone deep-copies the mesh; the copy shares no slices with m
func (m *Mesh) Clone() (c *Mesh) {
	c = &Mesh{
		Nodes:    append([]Node(nil), m.Nodes...),
		Elements: make([]Element, len(m.Elements)),
		Faces:    make([]Face, len(m.Faces)),
		Edges:    make([]Edge, len(m.Edges)),
		Box:      m.Box,
	}
	for i := range m.Elements {
		c.Elements[i] = m.Elements[i].Clone()
	}
	for i, f := range m.Faces {
		f.Nodes = append([]int(nil), f.Nodes...)
		f.Nbr = append([]int(nil), f.Nbr...)
		c.Faces[i] = f
	}
	for i, e := range m.Edges {
		e.Nodes = append([]int(nil), e.Nodes...)
		c.Edges[i] = e
	}
	return
}

func (m *Mesh) Node(i int) *Node       { return &m.Nodes[i] }
func (m *Mesh) Element(i int) *Element { return &m.Elements[i] }
func (m *Mesh) Face(i int) *Face       { return &m.Faces[i] }
func (m *Mesh) Edge(i int) *Edge       { return &m.Edges[i] }

func (m *Mesh) NodeCount() int    { return len(m.Nodes) }
func (m *Mesh) ElementCount() int { return len(m.Elements) }
func (m *Mesh) FaceCount() int    { return len(m.Faces) }
func (m *Mesh) EdgeCount() int    { return len(m.Edges) }

func (m *Mesh) countClass(c ElementClass) (n int) {
	for i := range m.Elements {
		if es := m.Elements[i].Spec(); es != nil && es.Class == c {
			n++
		}
	}
	return
}

func (m *Mesh) ShellElements() int { return m.countClass(Shell) }
func (m *Mesh) SolidElements() int { return m.countClass(Solid) }
func (m *Mesh) BeamElements() int  { return m.countClass(Beam) }

// IsShell is true when every element is a shell
func (m *Mesh) IsShell() bool {
	return len(m.Elements) > 0 && m.ShellElements() == len(m.Elements)
}

// IsSolid is true when every element is a solid
func (m *Mesh) IsSolid() bool {
	return len(m.Elements) > 0 && m.SolidElements() == len(m.Elements)
}

// MeshType returns the single element kind of the mesh, Mixed, or None when there are no elements
func (m *Mesh) MeshType() ElementType {
	if len(m.Elements) == 0 {
		return None
	}
	t := m.Elements[0].Type
	for i := 1; i < len(m.Elements); i++ {
		if m.Elements[i].Type != t {
			return Mixed
		}
	}
	return t
}

func maxPlusOne(n int, gid func(i int) int) (count int) {
	for i := 0; i < n; i++ {
		if g := gid(i); g+1 > count {
			count = g + 1
		}
	}
	return
}

func (m *Mesh) CountNodePartitions() int {
	return maxPlusOne(len(m.Nodes), func(i int) int { return m.Nodes[i].GID })
}

func (m *Mesh) CountEdgePartitions() int {
	return maxPlusOne(len(m.Edges), func(i int) int { return m.Edges[i].GID })
}

func (m *Mesh) CountFacePartitions() int {
	return maxPlusOne(len(m.Faces), func(i int) int { return m.Faces[i].GID })
}

func (m *Mesh) CountElementPartitions() int {
	return maxPlusOne(len(m.Elements), func(i int) int { return m.Elements[i].GID })
}

func (m *Mesh) CountSmoothingGroups() int {
	return maxPlusOne(len(m.Faces), func(i int) int { return m.Faces[i].SID })
}

func (m *Mesh) TagAllNodes(tag int) {
	for i := range m.Nodes {
		m.Nodes[i].Tag = tag
	}
}

func (m *Mesh) TagAllElements(tag int) {
	for i := range m.Elements {
		m.Elements[i].Tag = tag
	}
}

// SelectElements marks exactly the listed elements as selected
func (m *Mesh) SelectElements(list ...int) {
	for i := range m.Elements {
		m.Elements[i].Selected = false
	}
	for _, i := range list {
		m.Elements[i].Selected = true
	}
}

// SelectedElements returns the indices of the selected elements
func (m *Mesh) SelectedElements() (list []int) {
	for i := range m.Elements {
		if m.Elements[i].Selected {
			list = append(list, i)
		}
	}
	return
}

// FindNodesFromPart returns the sorted nodes used by elements of partition gid
func (m *Mesh) FindNodesFromPart(gid int) (nodes []int) {
	seen := make(map[int]struct{})
	for i := range m.Elements {
		el := &m.Elements[i]
		if el.GID != gid {
			continue
		}
		for _, n := range el.Nodes {
			if _, ok := seen[n]; !ok {
				seen[n] = struct{}{}
				nodes = append(nodes, n)
			}
		}
	}
	sort.Ints(nodes)
	return
}

// IsExterior reports whether the element has at least one boundary neighbor slot
func (m *Mesh) IsExterior(el *Element) bool {
	for _, nb := range el.Nbr {
		if nb < 0 {
			return true
		}
	}
	return false
}

// ElementsEqual is true when a and b are the same kind and use the same set of nodes in any order
func ElementsEqual(a, b *Element) bool {
	if a.Type != b.Type || len(a.Nodes) != len(b.Nodes) {
		return false
	}
	sa := append([]int(nil), a.Nodes...)
	sb := append([]int(nil), b.Nodes...)
	sort.Ints(sa)
	sort.Ints(sb)
	for i := range sa {
		if sa[i] != sb[i] {
			return false
		}
	}
	return true
}

// Validate checks the element, face and edge records against the layout tables and index ranges
func (m *Mesh) Validate() error {
	nn, ne := len(m.Nodes), len(m.Elements)
	for i := range m.Elements {
		el := &m.Elements[i]
		es := el.Spec()
		if es == nil {
			return fmt.Errorf("element %d has unknown type %v: %w", i, el.Type, ErrCorruptMesh)
		}
		if len(el.Nodes) != es.Nodes {
			return fmt.Errorf("element %d of type %v has %d nodes, want %d: %w",
				i, el.Type, len(el.Nodes), es.Nodes, ErrCorruptMesh)
		}
		for _, n := range el.Nodes {
			if n < 0 || n >= nn {
				return fmt.Errorf("element %d references node %d, mesh has %d nodes: %w", i, n, nn, ErrCorruptMesh)
			}
		}
		if el.Nbr != nil && len(el.Nbr) != es.NeighborSlots() {
			return fmt.Errorf("element %d has %d neighbor slots, want %d: %w",
				i, len(el.Nbr), es.NeighborSlots(), ErrCorruptMesh)
		}
		for _, nb := range el.Nbr {
			if nb < -1 || nb >= ne {
				return fmt.Errorf("element %d has neighbor %d out of range: %w", i, nb, ErrCorruptMesh)
			}
		}
		if el.H != nil && len(el.H) != es.Nodes {
			return fmt.Errorf("element %d has %d thickness values, want %d: %w", i, len(el.H), es.Nodes, ErrCorruptMesh)
		}
	}
	for i := range m.Faces {
		f := &m.Faces[i]
		if f.Elem < 0 || f.Elem >= ne {
			return fmt.Errorf("face %d owned by element %d out of range: %w", i, f.Elem, ErrCorruptMesh)
		}
		for _, n := range f.Nodes {
			if n < 0 || n >= nn {
				return fmt.Errorf("face %d references node %d out of range: %w", i, n, ErrCorruptMesh)
			}
		}
		for _, nb := range f.Nbr {
			if nb < -1 || nb >= len(m.Faces) {
				return fmt.Errorf("face %d has neighbor %d out of range: %w", i, nb, ErrCorruptMesh)
			}
		}
	}
	for i := range m.Edges {
		for _, n := range m.Edges[i].Nodes {
			if n < 0 || n >= nn {
				return fmt.Errorf("edge %d references node %d out of range: %w", i, n, ErrCorruptMesh)
			}
		}
	}
	return nil
}

// UpdateBox recomputes the bounding box from the node positions
func (m *Mesh) UpdateBox() {
	if len(m.Nodes) == 0 {
		m.Box = r3.Box{}
		return
	}
	lo, hi := m.Nodes[0].Pos, m.Nodes[0].Pos
	for i := 1; i < len(m.Nodes); i++ {
		p := m.Nodes[i].Pos
		lo = r3.Vec{X: min(lo.X, p.X), Y: min(lo.Y, p.Y), Z: min(lo.Z, p.Z)}
		hi = r3.Vec{X: max(hi.X, p.X), Y: max(hi.Y, p.Y), Z: max(hi.Z, p.Z)}
	}
	m.Box = r3.Box{Min: lo, Max: hi}
}
