package modifiers

import (
	"fmt"
	"strings"

	"github.com/notargets/femesh/mesh"
)

// PartitionTarget picks the record kind PartitionSelection works on
type PartitionTarget int

const (
	PartitionElements PartitionTarget = iota
	PartitionFaces
	PartitionNodes
	PartitionEdges
)

var partitionTargetNames = [...]string{"elements", "faces", "nodes", "edges"}

func (t PartitionTarget) String() string {
	if t < 0 || int(t) >= len(partitionTargetNames) {
		return fmt.Sprintf("PartitionTarget(%d)", int(t))
	}
	return partitionTargetNames[t]
}

func ParsePartitionTarget(name string) (PartitionTarget, error) {
	lname := strings.ToLower(strings.TrimSpace(name))
	for i, n := range partitionTargetNames {
		if n == lname || strings.TrimSuffix(n, "s") == lname {
			return PartitionTarget(i), nil
		}
	}
	return 0, invalidf("unknown partition target %q", name)
}

/*
PartitionSelection moves the selected records of Target into one partition: a new one numbered
after the existing partitions when NewPartition is set, otherwise the existing partition GID.
Repartitioned elements get fresh surface partitions for their boundary faces.
*/
type PartitionSelection struct {
	Target       PartitionTarget
	NewPartition bool
	GID          int
}

func (PartitionSelection) Name() string { return "partition selection" }

func (p PartitionSelection) Apply(m *mesh.Mesh) (*mesh.Mesh, error) {
	return Run(p.Name(), m, func(m *mesh.Mesh) (out *mesh.Mesh, err error) {
		out = m.Clone()
		var (
			count int
			sel   []*int // GID fields of the selected records
		)
		switch p.Target {
		case PartitionElements:
			count = out.CountElementPartitions()
			for i := range out.Elements {
				if out.Elements[i].Selected {
					sel = append(sel, &out.Elements[i].GID)
				}
			}
		case PartitionFaces:
			count = out.CountFacePartitions()
			for i := range out.Faces {
				if out.Faces[i].Selected {
					sel = append(sel, &out.Faces[i].GID)
				}
			}
		case PartitionNodes:
			count = out.CountNodePartitions()
			for i := range out.Nodes {
				if out.Nodes[i].Selected {
					sel = append(sel, &out.Nodes[i].GID)
				}
			}
		case PartitionEdges:
			count = out.CountEdgePartitions()
			for i := range out.Edges {
				if out.Edges[i].Selected {
					sel = append(sel, &out.Edges[i].GID)
				}
			}
		default:
			return nil, invalidf("unknown partition target %v", p.Target)
		}
		gid := count
		if !p.NewPartition {
			if p.GID < 0 || p.GID >= count {
				return nil, invalidf("partition %d out of range [0,%d)", p.GID, count)
			}
			gid = p.GID
		}
		if len(sel) == 0 {
			return nil, inapplicablef("no %v selected", p.Target)
		}
		for _, g := range sel {
			*g = gid
		}

		if p.Target == PartitionElements {
			// faces of the moved elements start a new surface partition
			fgid := out.CountFacePartitions()
			for i := range out.Faces {
				if out.Elements[out.Faces[i].Elem].Selected {
					out.Faces[i].GID, out.Faces[i].SID = fgid, 0
				}
			}
		}
		out.BuildMesh()
		return
	})
}
