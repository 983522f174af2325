package topology

import (
	"fmt"

	"github.com/chazu/brepcad/pkg/base"
)

// Solid is a region bounded by closed, connected, manifold shells.
type Solid[P any, C Curve[C], S any] struct {
	boundaries []*Shell[P, C, S]
}

// NewSolid returns the solid bounded by shells.
func NewSolid[P any, C Curve[C], S any](shells ...*Shell[P, C, S]) (*Solid[P, C, S], error) {
	if err := checkShells(shells); err != nil {
		return nil, err
	}
	return &Solid[P, C, S]{boundaries: shells}, nil
}

// NewSolidUnchecked is NewSolid without validation in release builds.
func NewSolidUnchecked[P any, C Curve[C], S any](shells ...*Shell[P, C, S]) *Solid[P, C, S] {
	if base.DebugBuild {
		if err := checkShells(shells); err != nil {
			panic(err)
		}
	}
	return &Solid[P, C, S]{boundaries: shells}
}

func checkShells[P any, C Curve[C], S any](shells []*Shell[P, C, S]) error {
	for i, s := range shells {
		switch {
		case s.Len() == 0:
			return fmt.Errorf("%w: shell %d", ErrEmptyShell, i)
		case !s.IsConnected():
			return fmt.Errorf("%w: shell %d", ErrNotConnected, i)
		case s.ShellCondition() != Closed:
			return fmt.Errorf("%w: shell %d is %v", ErrNotClosedShell, i, s.ShellCondition())
		}
		if sv := s.SingularVertices(); len(sv) > 0 {
			return fmt.Errorf("%w: shell %d has %d", ErrNotManifold, i, len(sv))
		}
	}
	return nil
}

// Boundaries returns the boundary shells.
func (s *Solid[P, C, S]) Boundaries() []*Shell[P, C, S] { return s.boundaries }

// Not returns the complement: every boundary shell inverted.
func (s *Solid[P, C, S]) Not() *Solid[P, C, S] {
	res := &Solid[P, C, S]{boundaries: make([]*Shell[P, C, S], len(s.boundaries))}
	for i, shell := range s.boundaries {
		res.boundaries[i] = shell.Inverse()
	}
	return res
}
