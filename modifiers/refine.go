package modifiers

import (
	"context"

	"go.uber.org/zap"

	"github.com/notargets/femesh/logger"
	"github.com/notargets/femesh/mesh"
)

/*
Refine applies the splitter matching the mesh's element kind Iterations times: QuadSplit, TriSplit,
TetSplit, or HexSplit (Hex2DSplit with Hex2D). Smooth applies to the hex splitters. Progress, when
set, is called after every pass with the percentage done.
*/
type Refine struct {
	Iterations int
	Smooth     bool
	Hex2D      bool
	Progress   func(pct float64)
}

func (Refine) Name() string { return "refine" }

func (r Refine) splitter(t mesh.ElementType) (Modifier, error) {
	switch t {
	case mesh.Quad4:
		return QuadSplit{}, nil
	case mesh.Tri3:
		return TriSplit{}, nil
	case mesh.Tet4:
		return TetSplit{}, nil
	case mesh.Hex8:
		if r.Hex2D {
			return Hex2DSplit{Smooth: r.Smooth}, nil
		}
		return HexSplit{Smooth: r.Smooth}, nil
	}
	return nil, inapplicablef("cannot refine a %v mesh", t)
}

func (r Refine) Apply(m *mesh.Mesh) (*mesh.Mesh, error) {
	return r.ApplyContext(context.Background(), m)
}

// ApplyContext is Apply with cancellation checked between passes. A cancelled run returns no mesh.
func (r Refine) ApplyContext(ctx context.Context, m *mesh.Mesh) (*mesh.Mesh, error) {
	if r.Iterations < 1 {
		return nil, invalidf("iterations must be at least 1, have %d", r.Iterations)
	}
	return Run(r.Name(), m, func(m *mesh.Mesh) (out *mesh.Mesh, err error) {
		var split Modifier
		if split, err = r.splitter(m.MeshType()); err != nil {
			return
		}
		out = m
		for i := 0; i < r.Iterations; i++ {
			if err = ctx.Err(); err != nil {
				return nil, err
			}
			if out, err = split.Apply(out); err != nil {
				return nil, err
			}
			logger.Log.Debug("refine pass", zap.Int("pass", i+1), zap.Int("elements", out.ElementCount()))
			if r.Progress != nil {
				r.Progress(100 * float64(i+1) / float64(r.Iterations))
			}
		}
		return
	})
}
