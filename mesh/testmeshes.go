package mesh

import (
	"gonum.org/v1/gonum/spatial/r3"
)

// Small meshes built in code, shared by the tests of this module and handy at the command line.
// Each is returned fully built (faces, edges, neighbors).

// gridIndex numbers lattice points with i fastest
func gridIndex(nx, ny int) func(i, j, k int) int {
	return func(i, j, k int) int {
		return i + (nx+1)*(j+(ny+1)*k)
	}
}

func gridNodes(nx, ny, nz int) (nodes []Node) {
	nodes = make([]Node, 0, (nx+1)*(ny+1)*(nz+1))
	for k := 0; k <= nz; k++ {
		for j := 0; j <= ny; j++ {
			for i := 0; i <= nx; i++ {
				nodes = append(nodes, Node{Pos: r3.Vec{X: float64(i), Y: float64(j), Z: float64(k)}})
			}
		}
	}
	return
}

func fromLists(nodes []Node, types []ElementType, conn [][]int) (m *Mesh) {
	m = NewMesh(len(nodes), len(conn), 0, 0)
	for i := range nodes {
		m.Nodes[i].Pos = nodes[i].Pos
	}
	for i, c := range conn {
		el := &m.Elements[i]
		el.SetType(types[i])
		copy(el.Nodes, c)
	}
	m.BuildMesh()
	return
}

func repeat(t ElementType, n int) (ts []ElementType) {
	ts = make([]ElementType, n)
	for i := range ts {
		ts[i] = t
	}
	return
}

// UnitCube is a single Hex8 spanning [0,1]^3
func UnitCube() *Mesh {
	return HexGrid(1, 1, 1)
}

// HexGrid is an nx by ny by nz block of unit Hex8 elements
func HexGrid(nx, ny, nz int) *Mesh {
	var (
		id   = gridIndex(nx, ny)
		conn [][]int
	)
	for k := 0; k < nz; k++ {
		for j := 0; j < ny; j++ {
			for i := 0; i < nx; i++ {
				conn = append(conn, []int{
					id(i, j, k), id(i+1, j, k), id(i+1, j+1, k), id(i, j+1, k),
					id(i, j, k+1), id(i+1, j, k+1), id(i+1, j+1, k+1), id(i, j+1, k+1),
				})
			}
		}
	}
	return fromLists(gridNodes(nx, ny, nz), repeat(Hex8, len(conn)), conn)
}

// TetGrid splits every cell of an nx by ny by nz unit block into six conforming Tet4
func TetGrid(nx, ny, nz int) *Mesh {
	var (
		id   = gridIndex(nx, ny)
		conn [][]int
	)
	for k := 0; k < nz; k++ {
		for j := 0; j < ny; j++ {
			for i := 0; i < nx; i++ {
				hex := []int{
					id(i, j, k), id(i+1, j, k), id(i+1, j+1, k), id(i, j+1, k),
					id(i, j, k+1), id(i+1, j, k+1), id(i+1, j+1, k+1), id(i, j+1, k+1),
				}
				for _, t := range hexTets {
					conn = append(conn, []int{hex[t[0]], hex[t[1]], hex[t[2]], hex[t[3]]})
				}
			}
		}
	}
	return fromLists(gridNodes(nx, ny, nz), repeat(Tet4, len(conn)), conn)
}

// QuadGrid is an nx by ny sheet of unit Quad4 shells in the z=0 plane, normals along +z
func QuadGrid(nx, ny int) *Mesh {
	var (
		id   = gridIndex(nx, ny)
		conn [][]int
	)
	for j := 0; j < ny; j++ {
		for i := 0; i < nx; i++ {
			conn = append(conn, []int{id(i, j, 0), id(i+1, j, 0), id(i+1, j+1, 0), id(i, j+1, 0)})
		}
	}
	m := fromLists(gridNodes(nx, ny, 0), repeat(Quad4, len(conn)), conn)
	for i := range m.Elements {
		for j := range m.Elements[i].H {
			m.Elements[i].H[j] = 0.1
		}
	}
	return m
}

// SingleTet is the unit right-angle Tet4
func SingleTet() *Mesh {
	nodes := []Node{
		{Pos: r3.Vec{}},
		{Pos: r3.Vec{X: 1}},
		{Pos: r3.Vec{Y: 1}},
		{Pos: r3.Vec{Z: 1}},
	}
	return fromLists(nodes, []ElementType{Tet4}, [][]int{{0, 1, 2, 3}})
}

// TwoTets shares the face 1-2-3 between two positively oriented Tet4
func TwoTets() *Mesh {
	nodes := []Node{
		{Pos: r3.Vec{}},
		{Pos: r3.Vec{X: 1}},
		{Pos: r3.Vec{Y: 1}},
		{Pos: r3.Vec{Z: 1}},
		{Pos: r3.Vec{X: 1, Y: 1, Z: 1}},
	}
	return fromLists(nodes, []ElementType{Tet4, Tet4}, [][]int{{0, 1, 2, 3}, {1, 2, 3, 4}})
}

// HexPyramid is a unit Hex8 capped by a Pyra5 sitting on its top face
func HexPyramid() *Mesh {
	nodes := gridNodes(1, 1, 1)
	nodes = append(nodes, Node{Pos: r3.Vec{X: 0.5, Y: 0.5, Z: 1.5}})
	return fromLists(nodes, []ElementType{Hex8, Pyra5},
		[][]int{{0, 1, 2, 3, 4, 5, 6, 7}, {4, 5, 6, 7, 8}})
}

// Wedge is a single Penta6 over the unit right triangle, unit height
func Wedge() *Mesh {
	nodes := []Node{
		{Pos: r3.Vec{}}, {Pos: r3.Vec{X: 1}}, {Pos: r3.Vec{Y: 1}},
		{Pos: r3.Vec{Z: 1}}, {Pos: r3.Vec{X: 1, Z: 1}}, {Pos: r3.Vec{Y: 1, Z: 1}},
	}
	return fromLists(nodes, []ElementType{Penta6}, [][]int{{0, 1, 2, 3, 4, 5}})
}

// BeamLine is a straight chain of n Beam2 elements along x
func BeamLine(n int) *Mesh {
	nodes := make([]Node, n+1)
	conn := make([][]int, n)
	for i := 0; i <= n; i++ {
		nodes[i].Pos = r3.Vec{X: float64(i)}
	}
	for i := 0; i < n; i++ {
		conn[i] = []int{i, i + 1}
	}
	return fromLists(nodes, repeat(Beam2, n), conn)
}
