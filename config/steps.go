package config

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/notargets/femesh/mesh"
	"github.com/notargets/femesh/modifiers"
	"github.com/notargets/femesh/partitioner"
)

// Step names one operation. Params is decoded into the parameter set of Op.
type Step struct {
	Op     string          `json:"Op"`
	Params json.RawMessage `json:"Params,omitempty"`
	Select *Selection      `json:"Select,omitempty"`
}

// Selection replaces the mesh selection before a step runs. Indices are 0-based.
type Selection struct {
	Elements []int `json:"elements,omitempty"`
	Faces    []int `json:"faces,omitempty"`
	Nodes    []int `json:"nodes,omitempty"`
	Edges    []int `json:"edges,omitempty"`
}

func checkRange(kind string, list []int, n int) error {
	for _, i := range list {
		if i < 0 || i >= n {
			return fmt.Errorf("selected %s %d out of range [0,%d): %w", kind, i, n, modifiers.ErrInvalidParameter)
		}
	}
	return nil
}

func (s *Selection) apply(m *mesh.Mesh) error {
	if err := checkRange("element", s.Elements, m.ElementCount()); err != nil {
		return err
	}
	if err := checkRange("face", s.Faces, m.FaceCount()); err != nil {
		return err
	}
	if err := checkRange("node", s.Nodes, m.NodeCount()); err != nil {
		return err
	}
	if err := checkRange("edge", s.Edges, m.EdgeCount()); err != nil {
		return err
	}
	m.SelectElements(s.Elements...)
	for i := range m.Faces {
		m.Faces[i].Selected = false
	}
	for _, i := range s.Faces {
		m.Faces[i].Selected = true
	}
	for i := range m.Nodes {
		m.Nodes[i].Selected = false
	}
	for _, i := range s.Nodes {
		m.Nodes[i].Selected = true
	}
	for i := range m.Edges {
		m.Edges[i].Selected = false
	}
	for _, i := range s.Edges {
		m.Edges[i].Selected = true
	}
	return nil
}

// Vec is a point or direction written as [x, y, z]
type Vec [3]float64

func (v *Vec) vec() r3.Vec {
	if v == nil {
		return r3.Vec{}
	}
	return r3.Vec{X: v[0], Y: v[1], Z: v[2]}
}

type convertParams struct {
	Option string `json:"option"`
	Smooth bool   `json:"smooth"`
}

type refineParams struct {
	Iterations int  `json:"iterations"`
	Smooth     bool `json:"smooth"`
	Hex2D      bool `json:"hex2d"`
}

type smoothFlag struct {
	Smooth bool `json:"smooth"`
}

type detachParams struct {
	Repartition bool `json:"repartition"`
}

type mirrorParams struct {
	Plane  string `json:"plane"`
	Center *Vec   `json:"center"`
}

type alignParams struct {
	Direction string `json:"direction"`
}

type addNodeParams struct {
	Position *Vec `json:"position"`
}

type invertParams struct {
	Elements bool `json:"elements"`
	Faces    bool `json:"faces"`
}

type partitionParams struct {
	Target string `json:"target"`
	New    bool   `json:"new"`
	GID    int    `json:"gid"`
}

type autoPartitionParams struct {
	Parts     int     `json:"parts"`
	Imbalance float32 `json:"imbalance"`
	Objective string  `json:"objective"`
}

type thicknessParams struct {
	H float64 `json:"h"`
}

type fiberParams struct {
	Vector *Vec  `json:"vector"`
	Nodes  []int `json:"nodes"`
}

type axesParams struct {
	Mode  string  `json:"mode"`
	A     *Vec    `json:"a"`
	D     *Vec    `json:"d"`
	Nodes []int   `json:"nodes"`
	Theta float64 `json:"theta"`
	Phi   float64 `json:"phi"`
}

type flattenParams struct {
	Normal *Vec    `json:"normal"`
	Radius float64 `json:"radius"`
}

type smoothParams struct {
	Iterations int     `json:"iterations"`
	Factor     float64 `json:"factor"`
}

// decode fills p from the step parameters, rejecting unknown keys
func (s *Step) decode(p interface{}) error {
	if len(s.Params) == 0 || string(s.Params) == "null" {
		return nil
	}
	dec := json.NewDecoder(bytes.NewReader(s.Params))
	dec.DisallowUnknownFields()
	if err := dec.Decode(p); err != nil {
		return fmt.Errorf("%s parameters: %v: %w", s.Op, err, modifiers.ErrInvalidParameter)
	}
	return nil
}

// normalizeOp folds case and separators, "Add_Node" and "add-node" are the same op
func normalizeOp(op string) string {
	r := strings.NewReplacer("-", "", "_", "", " ", "")
	return r.Replace(strings.ToLower(strings.TrimSpace(op)))
}

// Build returns the modifier for the step, wrapped to apply Select first when present
func (s *Step) Build() (mod modifiers.Modifier, err error) {
	if mod, err = s.build(); err != nil {
		return nil, err
	}
	if s.Select != nil {
		mod = selecting{sel: s.Select, mod: mod}
	}
	return
}

func (s *Step) build() (modifiers.Modifier, error) {
	switch normalizeOp(s.Op) {
	case "convert":
		var p convertParams
		if err := s.decode(&p); err != nil {
			return nil, err
		}
		c, err := modifiers.ParseConversion(p.Option)
		if err != nil {
			return nil, err
		}
		return modifiers.Convert{Option: c, Smooth: p.Smooth}, nil
	case "refine":
		p := refineParams{Iterations: 1}
		if err := s.decode(&p); err != nil {
			return nil, err
		}
		return modifiers.Refine{Iterations: p.Iterations, Smooth: p.Smooth, Hex2D: p.Hex2D}, nil
	case "quad2tri":
		return modifiers.Quad2Tri{}, s.decode(&struct{}{})
	case "hex2tet":
		return modifiers.Hex2Tet{}, s.decode(&struct{}{})
	case "tet2hex":
		var p smoothFlag
		if err := s.decode(&p); err != nil {
			return nil, err
		}
		return modifiers.Tet2Hex{Smooth: p.Smooth}, nil
	case "removeduplicates":
		return modifiers.RemoveDuplicateElements{}, s.decode(&struct{}{})
	case "detach":
		var p detachParams
		if err := s.decode(&p); err != nil {
			return nil, err
		}
		return modifiers.DetachElements{Repartition: p.Repartition}, nil
	case "mirror":
		p := mirrorParams{Plane: "x"}
		if err := s.decode(&p); err != nil {
			return nil, err
		}
		a, err := modifiers.ParseAxis(p.Plane)
		if err != nil {
			return nil, err
		}
		return modifiers.Mirror{Plane: a, Center: p.Center.vec()}, nil
	case "align":
		var p alignParams
		if err := s.decode(&p); err != nil {
			return nil, err
		}
		d, err := modifiers.ParseAlignDirection(p.Direction)
		if err != nil {
			return nil, err
		}
		return modifiers.AlignNodes{Direction: d}, nil
	case "addnode":
		var p addNodeParams
		if err := s.decode(&p); err != nil {
			return nil, err
		}
		return modifiers.AddNode{Position: p.Position.vec()}, nil
	case "invert":
		p := invertParams{Elements: true}
		if err := s.decode(&p); err != nil {
			return nil, err
		}
		return modifiers.InvertMesh{Elements: p.Elements, Faces: p.Faces}, nil
	case "partition":
		p := partitionParams{Target: "elements", New: true}
		if err := s.decode(&p); err != nil {
			return nil, err
		}
		t, err := modifiers.ParsePartitionTarget(p.Target)
		if err != nil {
			return nil, err
		}
		return modifiers.PartitionSelection{Target: t, NewPartition: p.New, GID: p.GID}, nil
	case "autopartition":
		var p autoPartitionParams
		if err := s.decode(&p); err != nil {
			return nil, err
		}
		ap := partitioner.DefaultAutoPartition(p.Parts)
		if p.Imbalance != 0 {
			ap.Imbalance = p.Imbalance
		}
		if p.Objective != "" {
			ap.Objective = p.Objective
		}
		return ap, nil
	case "shellthickness":
		var p thicknessParams
		if err := s.decode(&p); err != nil {
			return nil, err
		}
		return modifiers.SetShellThickness{H: p.H}, nil
	case "fiber":
		var p fiberParams
		if err := s.decode(&p); err != nil {
			return nil, err
		}
		if p.Nodes == nil {
			return modifiers.SetFiberOrientation{Vector: p.Vector.vec()}, nil
		}
		if len(p.Nodes) != 2 {
			return nil, fmt.Errorf("fiber needs 2 nodes, have %d: %w", len(p.Nodes), modifiers.ErrInvalidParameter)
		}
		return modifiers.SetFiberOrientation{UseNodes: true, N0: p.Nodes[0], N1: p.Nodes[1]}, nil
	case "axes":
		p := axesParams{Mode: "vectors"}
		if err := s.decode(&p); err != nil {
			return nil, err
		}
		mode, err := modifiers.ParseAxesMode(p.Mode)
		if err != nil {
			return nil, err
		}
		a := modifiers.SetAxesOrientation{Mode: mode, A: p.A.vec(), D: p.D.vec(), Theta: p.Theta, Phi: p.Phi}
		if mode == modifiers.AxesNodes {
			if len(p.Nodes) != 3 {
				return nil, fmt.Errorf("axes need 3 nodes, have %d: %w", len(p.Nodes), modifiers.ErrInvalidParameter)
			}
			a.N0, a.N1, a.N2 = p.Nodes[0], p.Nodes[1], p.Nodes[2]
		}
		return a, nil
	case "flatten":
		var p flattenParams
		if err := s.decode(&p); err != nil {
			return nil, err
		}
		return modifiers.FlattenFaces{Normal: p.Normal.vec(), UseNormal: p.Normal != nil, Radius: p.Radius}, nil
	case "smooth":
		p := smoothParams{Iterations: 1, Factor: 0.5}
		if err := s.decode(&p); err != nil {
			return nil, err
		}
		return modifiers.SmoothNodes{Iterations: p.Iterations, Factor: p.Factor}, nil
	}
	return nil, fmt.Errorf("unknown op %q: %w", s.Op, modifiers.ErrInvalidParameter)
}
