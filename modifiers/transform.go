package modifiers

import (
	"fmt"
	"strings"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/notargets/femesh/mesh"
)

// Axis names a coordinate direction
type Axis int

const (
	AxisX Axis = iota
	AxisY
	AxisZ
)

func (a Axis) String() string {
	switch a {
	case AxisX:
		return "X"
	case AxisY:
		return "Y"
	case AxisZ:
		return "Z"
	}
	return fmt.Sprintf("Axis(%d)", int(a))
}

func ParseAxis(name string) (Axis, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "x", "x-plane", "yz":
		return AxisX, nil
	case "y", "y-plane", "xz":
		return AxisY, nil
	case "z", "z-plane", "xy":
		return AxisZ, nil
	}
	return 0, invalidf("unknown axis %q", name)
}

func component(v r3.Vec, a Axis) float64 {
	switch a {
	case AxisX:
		return v.X
	case AxisY:
		return v.Y
	}
	return v.Z
}

func setComponent(v *r3.Vec, a Axis, x float64) {
	switch a {
	case AxisX:
		v.X = x
	case AxisY:
		v.Y = x
	default:
		v.Z = x
	}
}

// Mirror reflects the mesh about the plane normal to Plane through Center. Elements are inverted
// so the mirrored volumes stay positive.
type Mirror struct {
	Plane  Axis
	Center r3.Vec
}

func (Mirror) Name() string { return "mirror" }

func (c Mirror) Apply(m *mesh.Mesh) (*mesh.Mesh, error) {
	if c.Plane < AxisX || c.Plane > AxisZ {
		return nil, invalidf("unknown mirror plane %v", c.Plane)
	}
	return Run(c.Name(), m, func(m *mesh.Mesh) (*mesh.Mesh, error) {
		out := m.Clone()
		for i := range out.Nodes {
			p := &out.Nodes[i].Pos
			setComponent(p, c.Plane, 2*component(c.Center, c.Plane)-component(*p, c.Plane))
		}
		for i := range out.Elements {
			mesh.InvertElement(&out.Elements[i])
		}
		out.Rebuild(m, nil)
		return out, nil
	})
}

// AlignDirection is one of +X, -X, +Y, -Y, +Z, -Z
type AlignDirection struct {
	Axis     Axis
	Negative bool
}

func (d AlignDirection) String() string {
	if d.Negative {
		return "-" + d.Axis.String()
	}
	return "+" + d.Axis.String()
}

func ParseAlignDirection(name string) (d AlignDirection, err error) {
	s := strings.TrimSpace(name)
	switch {
	case strings.HasPrefix(s, "-"):
		d.Negative = true
		s = s[1:]
	case strings.HasPrefix(s, "+"):
		s = s[1:]
	}
	d.Axis, err = ParseAxis(s)
	return
}

// AlignNodes moves the selected nodes onto the plane through the outermost of them in Direction
type AlignNodes struct {
	Direction AlignDirection
}

func (c AlignNodes) Name() string { return "align nodes " + c.Direction.String() }

func (c AlignNodes) Apply(m *mesh.Mesh) (*mesh.Mesh, error) {
	return Run(c.Name(), m, func(m *mesh.Mesh) (*mesh.Mesh, error) {
		var (
			a     = c.Direction.Axis
			found bool
			x     float64
		)
		for i := range m.Nodes {
			nd := &m.Nodes[i]
			if !nd.Selected {
				continue
			}
			xi := component(nd.Pos, a)
			switch {
			case !found:
				x, found = xi, true
			case c.Direction.Negative:
				x = min(x, xi)
			default:
				x = max(x, xi)
			}
		}
		if !found {
			return nil, inapplicablef("no nodes selected")
		}
		out := m.Clone()
		for i := range out.Nodes {
			if out.Nodes[i].Selected {
				setComponent(&out.Nodes[i].Pos, a, x)
			}
		}
		out.Rebuild(m, nil)
		return out, nil
	})
}

// AddNode appends a free node at Position
type AddNode struct {
	Position r3.Vec
}

func (AddNode) Name() string { return "add node" }

func (c AddNode) Apply(m *mesh.Mesh) (*mesh.Mesh, error) {
	return Run(c.Name(), m, func(m *mesh.Mesh) (*mesh.Mesh, error) {
		out := m.Clone()
		out.Nodes = append(out.Nodes, mesh.Node{Pos: c.Position, ID: len(out.Nodes) + 1, GID: -1})
		out.UpdateBox()
		return out, nil
	})
}

/*
InvertMesh flips the orientation of the selected elements, or of every element when none is
selected. With Faces instead of Elements it flips the selected boundary faces; a shell face flips
its element with it. Elements take priority when both are set.
*/
type InvertMesh struct {
	Elements bool
	Faces    bool
}

func (InvertMesh) Name() string { return "invert" }

func (c InvertMesh) Apply(m *mesh.Mesh) (*mesh.Mesh, error) {
	if !c.Elements && !c.Faces {
		return nil, invalidf("nothing to invert: set elements or faces")
	}
	return Run(c.Name(), m, func(m *mesh.Mesh) (*mesh.Mesh, error) {
		out := m.Clone()
		if c.Elements {
			all := len(m.SelectedElements()) == 0
			for i := range out.Elements {
				if all || out.Elements[i].Selected {
					mesh.InvertElement(&out.Elements[i])
				}
			}
			out.Rebuild(m, nil)
			return out, nil
		}
		n := 0
		for i := range out.Faces {
			f := &out.Faces[i]
			if !f.Selected {
				continue
			}
			n++
			mesh.InvertFace(f)
			if el := &out.Elements[f.Elem]; el.Spec().Class == mesh.Shell {
				mesh.InvertElement(el)
			}
		}
		if n == 0 {
			return nil, inapplicablef("no faces selected")
		}
		return out, nil
	})
}
