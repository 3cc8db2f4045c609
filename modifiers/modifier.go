// Package modifiers holds the mesh operations: element conversions, refinement and the topology-preserving edits.
// Every modifier reads its input and builds a new mesh; the input is never written.
package modifiers

import (
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/notargets/femesh/logger"
	"github.com/notargets/femesh/mesh"
)

var (
	// ErrInvalidParameter is returned for out of range values, unknown options and bad enums
	ErrInvalidParameter = errors.New("invalid parameter")
	// ErrInapplicable is returned when the parameters are fine but there is nothing to operate on
	ErrInapplicable = errors.New("operation does not apply")
	// ErrCorruptMesh is returned when the input breaks the element layout or index invariants
	ErrCorruptMesh = mesh.ErrCorruptMesh
)

// Modifier is one mesh operation. Apply returns a new mesh, or nil and an error; the input is left untouched.
type Modifier interface {
	Name() string
	Apply(m *mesh.Mesh) (*mesh.Mesh, error)
}

// Run validates the input, times the operation and logs the outcome. Modifiers outside this
// package use it to get the same error wrapping and logging.
func Run(name string, m *mesh.Mesh, fn func(m *mesh.Mesh) (*mesh.Mesh, error)) (out *mesh.Mesh, err error) {
	if m == nil {
		return nil, fmt.Errorf("%s: no mesh: %w", name, ErrInapplicable)
	}
	if err = m.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	start := time.Now()
	if out, err = fn(m); err != nil {
		logger.Log.Debug("modifier failed", zap.String("name", name), zap.Error(err))
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	logger.Log.Debug("modifier",
		zap.String("name", name),
		zap.Int("nodes_in", m.NodeCount()), zap.Int("nodes_out", out.NodeCount()),
		zap.Int("elems_in", m.ElementCount()), zap.Int("elems_out", out.ElementCount()),
		zap.Duration("elapsed", time.Since(start)))
	return
}

func invalidf(format string, args ...interface{}) error {
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), ErrInvalidParameter)
}

func inapplicablef(format string, args ...interface{}) error {
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), ErrInapplicable)
}

// identitySupport is the node support of a mesh that kept every node in place
func identitySupport(n int) (s [][]int) {
	s = make([][]int, n)
	for i := range s {
		s[i] = []int{i}
	}
	return
}
