// Package history keeps the undo and redo stacks of modifier invocations. Each command holds the
// mesh before and after, which is safe because modifiers never write their input.
package history

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/notargets/femesh/logger"
	"github.com/notargets/femesh/mesh"
	"github.com/notargets/femesh/modifiers"
)

var (
	ErrNothingToUndo = errors.New("nothing to undo")
	ErrNothingToRedo = errors.New("nothing to redo")
)

// Command is one applied modifier
type Command struct {
	ID      uuid.UUID
	Name    string
	Applied time.Time
	Before  *mesh.Mesh
	After   *mesh.Mesh
}

// Stack is an undo history rooted at an initial mesh. The zero value is not usable, call NewStack.
type Stack struct {
	current *mesh.Mesh
	undo    []*Command
	redo    []*Command
	limit   int
}

// NewStack starts a history at m. A positive limit caps the number of commands that can be undone.
func NewStack(m *mesh.Mesh, limit int) *Stack {
	return &Stack{current: m, limit: limit}
}

// Current is the mesh after the last applied or redone command
func (s *Stack) Current() *mesh.Mesh { return s.current }

func (s *Stack) CanUndo() bool { return len(s.undo) > 0 }
func (s *Stack) CanRedo() bool { return len(s.redo) > 0 }

// Commands lists the undoable commands, oldest first
func (s *Stack) Commands() []*Command {
	return append([]*Command(nil), s.undo...)
}

// Do applies mod to the current mesh. On success the result becomes current and the redo stack is
// cleared; on failure nothing changes and the modifier's error is returned.
func (s *Stack) Do(mod modifiers.Modifier) (*Command, error) {
	out, err := mod.Apply(s.current)
	if err != nil {
		return nil, err
	}
	cmd := &Command{
		ID:      uuid.New(),
		Name:    mod.Name(),
		Applied: time.Now(),
		Before:  s.current,
		After:   out,
	}
	s.undo = append(s.undo, cmd)
	if s.limit > 0 && len(s.undo) > s.limit {
		s.undo = s.undo[len(s.undo)-s.limit:]
	}
	s.redo = nil
	s.current = out
	logger.Log.Debug("command", zap.String("id", cmd.ID.String()), zap.String("name", cmd.Name))
	return cmd, nil
}

// Undo restores the mesh from before the last command and returns it
func (s *Stack) Undo() (*mesh.Mesh, error) {
	if len(s.undo) == 0 {
		return nil, ErrNothingToUndo
	}
	cmd := s.undo[len(s.undo)-1]
	s.undo = s.undo[:len(s.undo)-1]
	s.redo = append(s.redo, cmd)
	s.current = cmd.Before
	logger.Log.Debug("undo", zap.String("id", cmd.ID.String()), zap.String("name", cmd.Name))
	return s.current, nil
}

// Redo reapplies the last undone command by restoring its result
func (s *Stack) Redo() (*mesh.Mesh, error) {
	if len(s.redo) == 0 {
		return nil, ErrNothingToRedo
	}
	cmd := s.redo[len(s.redo)-1]
	s.redo = s.redo[:len(s.redo)-1]
	s.undo = append(s.undo, cmd)
	s.current = cmd.After
	logger.Log.Debug("redo", zap.String("id", cmd.ID.String()), zap.String("name", cmd.Name))
	return s.current, nil
}

// Find returns the undoable command with the given ID
func (s *Stack) Find(id uuid.UUID) (*Command, error) {
	for _, c := range s.undo {
		if c.ID == id {
			return c, nil
		}
	}
	return nil, fmt.Errorf("command %s not in history", id)
}
