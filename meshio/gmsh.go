// Package meshio reads and writes meshes in the Gmsh MSH 2.2 ASCII format.
package meshio

import (
	"errors"

	"github.com/notargets/femesh/mesh"
)

var (
	// ErrFormat flags a file that is not valid MSH 2.2 ASCII
	ErrFormat = errors.New("malformed gmsh file")
	// ErrUnsupported flags an element kind with no gmsh equivalent
	ErrUnsupported = errors.New("element type not supported by gmsh 2.2")
)

// gmshType is one gmsh element code and its node order. order[i] is the gmsh position of
// canonical node i; nil means the orders agree.
type gmshType struct {
	code  int
	dim   int
	order []int
}

var (
	tet10Order = []int{0, 1, 2, 3, 4, 5, 6, 7, 9, 8}
	hex20Order = []int{0, 1, 2, 3, 4, 5, 6, 7, 8, 11, 13, 9, 16, 18, 19, 17, 10, 12, 14, 15}
	hex27Order = append(append([]int(nil), hex20Order...), 21, 23, 24, 22, 20, 25, 26)
)

var elementCodes = map[mesh.ElementType]gmshType{
	mesh.Beam2:  {code: 1, dim: 1},
	mesh.Beam3:  {code: 8, dim: 1},
	mesh.Tri3:   {code: 2, dim: 2},
	mesh.Tri6:   {code: 9, dim: 2},
	mesh.Quad4:  {code: 3, dim: 2},
	mesh.Quad8:  {code: 16, dim: 2},
	mesh.Quad9:  {code: 10, dim: 2},
	mesh.Tet4:   {code: 4, dim: 3},
	mesh.Tet10:  {code: 11, dim: 3, order: tet10Order},
	mesh.Hex8:   {code: 5, dim: 3},
	mesh.Hex20:  {code: 17, dim: 3, order: hex20Order},
	mesh.Hex27:  {code: 12, dim: 3, order: hex27Order},
	mesh.Penta6: {code: 6, dim: 3},
	mesh.Pyra5:  {code: 7, dim: 3},
}

// faceCodes maps boundary face kinds to the gmsh surface element written for them
var faceCodes = map[mesh.FaceType]int{
	mesh.FaceTri3:  2,
	mesh.FaceTri6:  9,
	mesh.FaceQuad4: 3,
	mesh.FaceQuad8: 16,
	mesh.FaceQuad9: 10,
}

// byCode is the reverse of elementCodes
var byCode = func() map[int]mesh.ElementType {
	r := make(map[int]mesh.ElementType, len(elementCodes))
	for t, g := range elementCodes {
		r[g.code] = t
	}
	return r
}()

// toCanonical reorders gmsh nodes into the canonical element order
func (g gmshType) toCanonical(nodes []int) []int {
	if g.order == nil {
		return nodes
	}
	c := make([]int, len(nodes))
	for i, p := range g.order {
		c[i] = nodes[p]
	}
	return c
}

// toGmsh reorders canonical nodes into the gmsh element order
func (g gmshType) toGmsh(nodes []int) []int {
	if g.order == nil {
		return nodes
	}
	c := make([]int, len(nodes))
	for i, p := range g.order {
		c[p] = nodes[i]
	}
	return c
}
