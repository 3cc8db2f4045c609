// Package config reads modifier pipelines from YAML files.
package config

import (
	"fmt"
	"io"
	"os"

	"github.com/ghodss/yaml"
	"go.uber.org/zap"

	"github.com/notargets/femesh/history"
	"github.com/notargets/femesh/logger"
	"github.com/notargets/femesh/mesh"
	"github.com/notargets/femesh/modifiers"
)

/*
Pipeline is a list of modifier steps applied in order, e.g.

	Title: refine and split
	Steps:
	  - Op: refine
	    Params: {iterations: 2, smooth: true}
	  - Op: detach
	    Select: {elements: [0, 1]}
	    Params: {repartition: true}
*/
type Pipeline struct {
	Title string `json:"Title"`
	Steps []Step `json:"Steps"`
}

// ReadFile parses the pipeline file at path
func ReadFile(path string) (p *Pipeline, err error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	p = &Pipeline{}
	if err = p.Parse(data); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return
}

// Parse decodes YAML and checks that every step builds
func (p *Pipeline) Parse(data []byte) error {
	if err := yaml.Unmarshal(data, p); err != nil {
		return err
	}
	for i := range p.Steps {
		if _, err := p.Steps[i].Build(); err != nil {
			return fmt.Errorf("step %d: %w", i+1, err)
		}
	}
	return nil
}

func (p *Pipeline) Print() {
	p.Fprint(os.Stdout)
}

func (p *Pipeline) Fprint(w io.Writer) {
	fmt.Fprintf(w, "\"%s\"\t\t= Title\n", p.Title)
	for i, s := range p.Steps {
		fmt.Fprintf(w, "[%d]\t%-18s %s", i+1, s.Op, string(s.Params))
		if s.Select != nil {
			fmt.Fprintf(w, "\tselect %v", *s.Select)
		}
		fmt.Fprintln(w)
	}
}

// Run applies every step to m through an undo history and returns the history. A failing step
// stops the pipeline; the history then holds the steps that succeeded.
func (p *Pipeline) Run(m *mesh.Mesh, progress func(step int, name string)) (*history.Stack, error) {
	s := history.NewStack(m, 0)
	for i := range p.Steps {
		mod, err := p.Steps[i].Build()
		if err != nil {
			return s, fmt.Errorf("step %d: %w", i+1, err)
		}
		if progress != nil {
			progress(i+1, mod.Name())
		}
		if _, err = s.Do(mod); err != nil {
			return s, fmt.Errorf("step %d: %w", i+1, err)
		}
		cur := s.Current()
		logger.Log.Info("pipeline step",
			zap.Int("step", i+1), zap.String("op", mod.Name()),
			zap.Int("nodes", cur.NodeCount()), zap.Int("elements", cur.ElementCount()))
	}
	return s, nil
}

// selecting applies a selection to a copy of the mesh before running the wrapped modifier
type selecting struct {
	sel *Selection
	mod modifiers.Modifier
}

func (s selecting) Name() string { return s.mod.Name() }

func (s selecting) Apply(m *mesh.Mesh) (*mesh.Mesh, error) {
	if m == nil {
		return s.mod.Apply(nil)
	}
	c := m.Clone()
	if err := s.sel.apply(c); err != nil {
		return nil, fmt.Errorf("%s: %w", s.mod.Name(), err)
	}
	return s.mod.Apply(c)
}
