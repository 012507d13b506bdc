// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package core

import (
	"sync/atomic"
)

// shared counts the owners of a component. The owner that drops the
// last reference runs the teardown, which destroys the component's own
// handles before releasing the components it depends on.
type shared struct {
	refs     atomic.Int32
	teardown func()
}

func (s *shared) init(teardown func()) {
	s.teardown = teardown
	s.refs.Store(1)
}

func (s *shared) retain() {
	if s.refs.Add(1) <= 1 {
		panic("core: retain of a released component")
	}
}

func (s *shared) release() {
	switch n := s.refs.Add(-1); {
	case n == 0:
		s.teardown()
	case n < 0:
		panic("core: component released too many times")
	}
}

// rollback collects undo steps while a component is being built and
// runs them newest first if the build fails.
type rollback []func()

func (r *rollback) push(undo func()) {
	*r = append(*r, undo)
}

func (r rollback) run() {
	for i := len(r) - 1; i >= 0; i-- {
		r[i]()
	}
}
