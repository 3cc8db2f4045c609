package modifiers

import (
	"fmt"
	"math"
	"strings"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/notargets/femesh/mesh"
)

// targets returns the selected elements, or all of them when none is selected
func targets(m *mesh.Mesh) (list []int) {
	if list = m.SelectedElements(); len(list) > 0 {
		return
	}
	list = make([]int, m.ElementCount())
	for i := range list {
		list[i] = i
	}
	return
}

// SetShellThickness sets the nodal thickness of the selected shell elements
type SetShellThickness struct {
	H float64
}

func (SetShellThickness) Name() string { return "set shell thickness" }

func (c SetShellThickness) Apply(m *mesh.Mesh) (*mesh.Mesh, error) {
	if c.H <= 0 {
		return nil, invalidf("shell thickness must be positive, have %g", c.H)
	}
	return Run(c.Name(), m, func(m *mesh.Mesh) (*mesh.Mesh, error) {
		out := m.Clone()
		n := 0
		for i := range out.Elements {
			el := &out.Elements[i]
			if !el.Selected || el.H == nil {
				continue
			}
			for j := range el.H {
				el.H[j] = c.H
			}
			n++
		}
		if n == 0 {
			return nil, inapplicablef("no shell elements selected")
		}
		return out, nil
	})
}

// SetFiberOrientation sets the fiber of the selected elements, or all when none is selected.
// The fiber is Vector, or with UseNodes the direction from local node N0 to local node N1.
type SetFiberOrientation struct {
	Vector   r3.Vec
	UseNodes bool
	N0, N1   int
}

func (SetFiberOrientation) Name() string { return "set fiber orientation" }

func (c SetFiberOrientation) Apply(m *mesh.Mesh) (*mesh.Mesh, error) {
	if !c.UseNodes && r3.Norm(c.Vector) == 0 {
		return nil, invalidf("fiber vector is zero")
	}
	return Run(c.Name(), m, func(m *mesh.Mesh) (*mesh.Mesh, error) {
		out := m.Clone()
		for _, i := range targets(out) {
			el := &out.Elements[i]
			if !c.UseNodes {
				el.Fiber = r3.Unit(c.Vector)
				continue
			}
			nn := len(el.Nodes)
			if c.N0 < 0 || c.N0 >= nn || c.N1 < 0 || c.N1 >= nn {
				return nil, invalidf("fiber nodes %d, %d out of range for a %v", c.N0, c.N1, el.Type)
			}
			d := r3.Sub(out.Nodes[el.Nodes[c.N1]].Pos, out.Nodes[el.Nodes[c.N0]].Pos)
			if r3.Norm(d) == 0 {
				return nil, invalidf("fiber nodes of element %d coincide", i)
			}
			el.Fiber = r3.Unit(d)
		}
		return out, nil
	})
}

// AxesMode is how SetAxesOrientation builds the local frame
type AxesMode int

const (
	AxesVectors AxesMode = iota
	AxesNodes
	AxesAngles
	AxesCylindrical
)

var axesModeNames = [...]string{"vectors", "nodes", "angles", "cylindrical"}

func (a AxesMode) String() string {
	if a < 0 || int(a) >= len(axesModeNames) {
		return fmt.Sprintf("AxesMode(%d)", int(a))
	}
	return axesModeNames[a]
}

func ParseAxesMode(name string) (AxesMode, error) {
	lname := strings.ToLower(strings.TrimSpace(name))
	for i, n := range axesModeNames {
		if n == lname || strings.TrimSuffix(n, "s") == lname {
			return AxesMode(i), nil
		}
	}
	return 0, invalidf("unknown axes mode %q", name)
}

/*
SetAxesOrientation sets the local material frame Q of the selected elements, or of all elements when
none is selected. The columns of Q are the unit axes e1, e2, e3.

	AxesVectors      e1 along A, e3 = A x D, e2 = e3 x e1
	AxesNodes        as AxesVectors with A = x[N1]-x[N0], D = x[N2]-x[N0]; nodes are 1-based local indices
	AxesAngles       e1 at polar angle Phi from z and azimuth Theta from x, in degrees
	AxesCylindrical  axis A through the origin, reference D rotated around it to each element center
*/
type SetAxesOrientation struct {
	Mode       AxesMode
	A, D       r3.Vec
	N0, N1, N2 int
	Theta, Phi float64
}

func (SetAxesOrientation) Name() string { return "set axes orientation" }

func frameFromVectors(a, d r3.Vec) (q [3][3]float64) {
	c := r3.Cross(a, d)
	b := r3.Cross(c, a)
	return frameColumns(unitOrZero(a), unitOrZero(b), unitOrZero(c))
}

func unitOrZero(v r3.Vec) r3.Vec {
	if r3.Norm(v) == 0 {
		return v
	}
	return r3.Unit(v)
}

func frameColumns(e1, e2, e3 r3.Vec) (q [3][3]float64) {
	for i, e := range []r3.Vec{e1, e2, e3} {
		q[0][i], q[1][i], q[2][i] = e.X, e.Y, e.Z
	}
	return
}

// frameDet is the determinant of q, zero for a degenerate frame
func frameDet(q [3][3]float64) float64 {
	data := make([]float64, 0, 9)
	for _, row := range q {
		data = append(data, row[:]...)
	}
	return mat.Det(mat.NewDense(3, 3, data))
}

// rotationTo turns the x axis onto the unit vector b
func rotationTo(b r3.Vec) r3.Rotation {
	x := r3.Vec{X: 1}
	axis := r3.Cross(x, b)
	if r3.Norm(axis) < 1e-12 {
		if b.X < 0 {
			return r3.NewRotation(math.Pi, r3.Vec{Z: 1})
		}
		return r3.NewRotation(0, r3.Vec{Z: 1})
	}
	angle := math.Acos(math.Max(-1, math.Min(1, r3.Dot(x, b))))
	return r3.NewRotation(angle, r3.Unit(axis))
}

func (c SetAxesOrientation) cylindrical(m *mesh.Mesh, el *mesh.Element) (q [3][3]float64) {
	a := unitOrZero(c.A)
	p := m.ElementCenter(el)
	b := unitOrZero(r3.Sub(p, r3.Scale(r3.Dot(a, p), a)))
	rot := rotationTo(b)
	r := rot.Rotate(unitOrZero(c.D))
	d := rot.Rotate(r3.Vec{Y: 1})
	if math.Abs(r3.Dot(d, r)) > 0.99 {
		d = rot.Rotate(r3.Vec{Z: 1})
	}
	e1 := r
	e3 := unitOrZero(r3.Cross(e1, d))
	e2 := r3.Cross(e3, e1)
	return frameColumns(e1, e2, e3)
}

func (c SetAxesOrientation) Apply(m *mesh.Mesh) (*mesh.Mesh, error) {
	switch c.Mode {
	case AxesVectors, AxesCylindrical:
		if r3.Norm(c.A) == 0 || r3.Norm(c.D) == 0 {
			return nil, invalidf("axes vectors must be non-zero")
		}
	case AxesNodes, AxesAngles:
	default:
		return nil, invalidf("unknown axes mode %v", c.Mode)
	}
	return Run(c.Name(), m, func(m *mesh.Mesh) (*mesh.Mesh, error) {
		out := m.Clone()
		for _, i := range targets(out) {
			el := &out.Elements[i]
			var q [3][3]float64
			switch c.Mode {
			case AxesVectors:
				q = frameFromVectors(c.A, c.D)
			case AxesNodes:
				n0, n1, n2 := c.N0-1, c.N1-1, c.N2-1
				nn := len(el.Nodes)
				for _, n := range []int{n0, n1, n2} {
					if n < 0 || n >= nn {
						return nil, invalidf("axes node %d out of range for a %v", n+1, el.Type)
					}
				}
				x0 := out.Nodes[el.Nodes[n0]].Pos
				q = frameFromVectors(r3.Sub(out.Nodes[el.Nodes[n1]].Pos, x0), r3.Sub(out.Nodes[el.Nodes[n2]].Pos, x0))
			case AxesAngles:
				th, ph := c.Theta*math.Pi/180, c.Phi*math.Pi/180
				q = [3][3]float64{
					{math.Sin(ph) * math.Cos(th), -math.Sin(th), -math.Cos(ph) * math.Cos(th)},
					{math.Sin(ph) * math.Sin(th), math.Cos(th), -math.Cos(ph) * math.Sin(th)},
					{math.Cos(ph), 0, math.Sin(ph)},
				}
			case AxesCylindrical:
				q = c.cylindrical(out, el)
			}
			if math.Abs(frameDet(q)) < 1e-9 {
				return nil, invalidf("degenerate local frame for element %d", i)
			}
			el.Q, el.QActive = q, true
		}
		return out, nil
	})
}
