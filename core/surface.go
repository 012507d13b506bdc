// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package core

import (
	"github.com/devblok/koruvk/gfx"
)

var _ gfx.Releasable = (*Surface)(nil)

// Surface owns the presentation target of a window.
type Surface struct {
	shared

	instance *Instance
	window   Window
	handle   gfx.Surface
}

// NewSurface creates a surface for window. The surface keeps the
// instance alive until it is destroyed.
func NewSurface(instance *Instance, window Window) (*Surface, error) {
	handle, err := window.CreateSurface(instance.driver)
	if err != nil {
		return nil, driverError(err, "create surface")
	}
	s := &Surface{
		instance: instance.Retain(),
		window:   window,
		handle:   handle,
	}
	s.init(s.destroy)
	instance.log.Debug("presentation surface created")
	return s, nil
}

func (s *Surface) destroy() {
	s.instance.driver.DestroySurface(s.handle)
	s.instance.log.Debug("presentation surface destroyed")
	s.instance.Release()
}

// Retain adds an owner to the surface.
func (s *Surface) Retain() *Surface {
	s.retain()
	return s
}

// Release drops an owner. The last owner destroys the surface and
// releases the instance.
func (s *Surface) Release() {
	s.release()
}

// Handle returns the driver surface.
func (s *Surface) Handle() gfx.Surface {
	return s.handle
}

// Window returns the window the surface presents to.
func (s *Surface) Window() Window {
	return s.window
}
