// Package partitioner splits a mesh into element partitions with METIS.
package partitioner

import (
	"fmt"
	"strings"

	metis "github.com/notargets/go-metis"
	"go.uber.org/zap"

	"github.com/notargets/femesh/logger"
	"github.com/notargets/femesh/mesh"
	"github.com/notargets/femesh/modifiers"
)

// AutoPartition assigns every element to one of Parts new partitions, numbered after the
// existing ones, minimising the cut between them.
type AutoPartition struct {
	Parts     int
	Imbalance float32 // e.g. 1.05 for 5% imbalance, 0 picks the default
	Objective string  // "cut" or "vol"
}

// DefaultAutoPartition minimises communication volume with 5% imbalance
func DefaultAutoPartition(parts int) AutoPartition {
	return AutoPartition{
		Parts:     parts,
		Imbalance: 1.05,
		Objective: "vol",
	}
}

func (AutoPartition) Name() string { return "auto partition" }

// weight is the relative cost of an element, its corner count
func weight(el *mesh.Element) int32 {
	return int32(el.Spec().Corners)
}

/*
DualGraph is the element adjacency in METIS CSR form. Elements are vertices weighted by their
corner count; two elements are joined when they share a neighbor slot (face, shell edge or beam
end), weighted by the number of nodes on that slot.
*/
func DualGraph(m *mesh.Mesh) (xadj, adjncy, vwgt, adjwgt []int32) {
	ne := m.ElementCount()
	xadj = make([]int32, ne+1)
	vwgt = make([]int32, ne)
	for i := range m.Elements {
		el := &m.Elements[i]
		es := el.Spec()
		vwgt[i] = weight(el)
		for j, nb := range el.Nbr {
			if nb < 0 || nb == i {
				continue
			}
			adjncy = append(adjncy, int32(nb))
			var w int
			switch es.Class {
			case mesh.Solid:
				w = len(es.FaceLocal[j])
			case mesh.Shell:
				w = len(es.EdgeLocal(j, false))
			default:
				w = 1
			}
			adjwgt = append(adjwgt, int32(w))
		}
		xadj[i+1] = int32(len(adjncy))
	}
	return
}

func (p AutoPartition) options() (opts []int32, err error) {
	opts = make([]int32, metis.NoOptions)
	if err = metis.SetDefaultOptions(opts); err != nil {
		return nil, fmt.Errorf("failed to set METIS options: %w", err)
	}
	switch strings.ToLower(p.Objective) {
	case "", "vol":
		opts[metis.OptionObjType] = metis.ObjTypeVol
	case "cut":
		opts[metis.OptionObjType] = metis.ObjTypeCut
	default:
		return nil, fmt.Errorf("unknown partition objective %q: %w", p.Objective, modifiers.ErrInvalidParameter)
	}
	return
}

func (p AutoPartition) Apply(m *mesh.Mesh) (*mesh.Mesh, error) {
	if p.Parts < 1 {
		return nil, fmt.Errorf("partition count must be at least 1, have %d: %w", p.Parts, modifiers.ErrInvalidParameter)
	}
	imbalance := p.Imbalance
	if imbalance == 0 {
		imbalance = 1.05
	}
	if imbalance < 1 {
		return nil, fmt.Errorf("imbalance must be at least 1, have %g: %w", imbalance, modifiers.ErrInvalidParameter)
	}
	opts, err := p.options()
	if err != nil {
		return nil, err
	}
	return modifiers.Run(p.Name(), m, func(m *mesh.Mesh) (*mesh.Mesh, error) {
		ne := m.ElementCount()
		if ne == 0 {
			return nil, fmt.Errorf("mesh has no elements: %w", modifiers.ErrInapplicable)
		}
		if p.Parts > ne {
			return nil, fmt.Errorf("%d partitions for %d elements: %w", p.Parts, ne, modifiers.ErrInvalidParameter)
		}
		part := make([]int32, ne)
		var objval int32
		if p.Parts > 1 {
			xadj, adjncy, vwgt, adjwgt := DualGraph(m)
			part, objval, err = metis.PartGraphKwayWeighted(xadj, adjncy, vwgt, adjwgt,
				int32(p.Parts), nil, []float32{imbalance}, opts)
			if err != nil {
				return nil, fmt.Errorf("METIS partitioning failed: %w", err)
			}
		}
		base := m.CountElementPartitions()
		out := m.Clone()
		sizes := make([]int, p.Parts)
		for i := range out.Elements {
			out.Elements[i].GID = base + int(part[i])
			sizes[part[i]]++
		}
		logger.Log.Info("partitioned mesh",
			zap.Int("elements", ne), zap.Int("parts", p.Parts),
			zap.Int32("objective", objval), zap.Ints("sizes", sizes))
		return out, nil
	})
}
