package modifiers

import (
	"fmt"
	"strings"

	"github.com/notargets/femesh/mesh"
)

// Conversion names one element conversion the Convert dispatcher knows
type Conversion int

const (
	Quad4ToTri3 Conversion = iota
	Quad4ToQuad8
	Hex8ToHex20
	Hex8ToTet4
	Tet4ToHex8
	Tet4ToTet10
	Tet4ToTet15
	Tet4ToTet20
	Tet4ToTet5
	Tet5ToTet4
	Tet10ToTet4
	Tet15ToTet4
	Tet20ToTet4
	Hex20ToHex8
	Quad8ToQuad4
	Tri3ToTri6
	Tri6ToTri3
	LinearToQuadraticConversion
	QuadraticToLinearConversion
	numConversions
)

type conversionInfo struct {
	name     string
	from, to mesh.ElementType
}

// from and to are Mixed for the two whole-mesh conversions
var conversions = [numConversions]conversionInfo{
	Quad4ToTri3:                 {"Quad4ToTri3", mesh.Quad4, mesh.Tri3},
	Quad4ToQuad8:                {"Quad4ToQuad8", mesh.Quad4, mesh.Quad8},
	Hex8ToHex20:                 {"Hex8ToHex20", mesh.Hex8, mesh.Hex20},
	Hex8ToTet4:                  {"Hex8ToTet4", mesh.Hex8, mesh.Tet4},
	Tet4ToHex8:                  {"Tet4ToHex8", mesh.Tet4, mesh.Hex8},
	Tet4ToTet10:                 {"Tet4ToTet10", mesh.Tet4, mesh.Tet10},
	Tet4ToTet15:                 {"Tet4ToTet15", mesh.Tet4, mesh.Tet15},
	Tet4ToTet20:                 {"Tet4ToTet20", mesh.Tet4, mesh.Tet20},
	Tet4ToTet5:                  {"Tet4ToTet5", mesh.Tet4, mesh.Tet5},
	Tet5ToTet4:                  {"Tet5ToTet4", mesh.Tet5, mesh.Tet4},
	Tet10ToTet4:                 {"Tet10ToTet4", mesh.Tet10, mesh.Tet4},
	Tet15ToTet4:                 {"Tet15ToTet4", mesh.Tet15, mesh.Tet4},
	Tet20ToTet4:                 {"Tet20ToTet4", mesh.Tet20, mesh.Tet4},
	Hex20ToHex8:                 {"Hex20ToHex8", mesh.Hex20, mesh.Hex8},
	Quad8ToQuad4:                {"Quad8ToQuad4", mesh.Quad8, mesh.Quad4},
	Tri3ToTri6:                  {"Tri3ToTri6", mesh.Tri3, mesh.Tri6},
	Tri6ToTri3:                  {"Tri6ToTri3", mesh.Tri6, mesh.Tri3},
	LinearToQuadraticConversion: {"LinearToQuadratic", mesh.Mixed, mesh.Mixed},
	QuadraticToLinearConversion: {"QuadraticToLinear", mesh.Mixed, mesh.Mixed},
}

func (c Conversion) String() string {
	if c < 0 || c >= numConversions {
		return fmt.Sprintf("Conversion(%d)", int(c))
	}
	return conversions[c].name
}

// AllowedConversions lists the options offered for a mesh of a single element kind; see Allowed
var AllowedConversions = map[mesh.ElementType][]Conversion{
	mesh.Quad4: {Quad4ToTri3, Quad4ToQuad8},
	mesh.Hex8:  {Hex8ToHex20, Hex8ToTet4},
	mesh.Tet4:  {Tet4ToHex8, Tet4ToTet10, Tet4ToTet15, Tet4ToTet20, Tet4ToTet5},
	mesh.Tet5:  {Tet5ToTet4},
	mesh.Tet10: {Tet10ToTet4},
	mesh.Tet15: {Tet15ToTet4},
	mesh.Tet20: {Tet20ToTet4},
	mesh.Hex20: {Hex20ToHex8},
	mesh.Quad8: {Quad8ToQuad4},
	mesh.Tri3:  {Tri3ToTri6},
	mesh.Tri6:  {Tri6ToTri3},
}

// Allowed returns the conversions offered for a mesh type. A mixed mesh is offered every option.
func Allowed(t mesh.ElementType) (list []Conversion) {
	if t != mesh.Mixed {
		return AllowedConversions[t]
	}
	for c := Conversion(0); c < numConversions; c++ {
		list = append(list, c)
	}
	return
}

// ParseConversion accepts "Tet4ToTet10", "tet4-tet10", "tet4 to tet10" or "linear-to-quadratic"
func ParseConversion(name string) (Conversion, error) {
	norm := func(s string) string {
		s = strings.ToLower(s)
		return strings.NewReplacer("-", "", "_", "", " ", "", "to", "").Replace(s)
	}
	key := norm(strings.TrimSpace(name))
	for c := Conversion(0); c < numConversions; c++ {
		if norm(conversions[c].name) == key {
			return c, nil
		}
	}
	return 0, invalidf("unknown conversion %q", name)
}

// Modifier returns the operation performing conversion c
func (c Conversion) Modifier(smooth bool) (Modifier, error) {
	switch c {
	case Quad4ToTri3:
		return Quad2Tri{}, nil
	case Hex8ToTet4:
		return Hex2Tet{}, nil
	case Tet4ToHex8:
		return Tet2Hex{Smooth: smooth}, nil
	case LinearToQuadraticConversion:
		return LinearToQuadratic{Smooth: smooth}, nil
	case QuadraticToLinearConversion:
		return QuadraticToLinear{}, nil
	}
	if c < 0 || c >= numConversions {
		return nil, invalidf("unknown conversion %d", int(c))
	}
	ci := conversions[c]
	if ci.from.IsLinear() {
		return Elevate{Target: ci.to, Smooth: smooth}, nil
	}
	return Reduce{From: ci.from}, nil
}

// Convert checks Option against the mesh's allowed conversions and runs it
type Convert struct {
	Option Conversion
	Smooth bool
}

func (c Convert) Name() string { return "convert " + c.Option.String() }

func (c Convert) Apply(m *mesh.Mesh) (*mesh.Mesh, error) {
	if m == nil {
		return nil, fmt.Errorf("%s: no mesh: %w", c.Name(), ErrInapplicable)
	}
	t := m.MeshType()
	allowed := false
	for _, o := range Allowed(t) {
		allowed = allowed || o == c.Option
	}
	if !allowed {
		return nil, fmt.Errorf("%s: %w", c.Name(), invalidf("not available for a %v mesh", t))
	}
	mod, err := c.Option.Modifier(c.Smooth)
	if err != nil {
		return nil, err
	}
	return mod.Apply(m)
}
