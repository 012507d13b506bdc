// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package gfxtest

import (
	"github.com/devblok/koruvk/gfx"
)

// Window is a scripted native window.
type Window struct {
	Extensions []string
	Size       gfx.Extent2D

	// Err is returned from every call when set.
	Err error
}

// NewWindow returns an 800x600 window needing the surface extensions of
// the default driver.
func NewWindow() *Window {
	return &Window{
		Extensions: []string{SurfaceExtension, XlibSurfaceExtension},
		Size:       gfx.Extent2D{Width: 800, Height: 600},
	}
}

// RequiredExtensions returns the scripted extensions.
func (w *Window) RequiredExtensions() ([]string, error) {
	if w.Err != nil {
		return nil, w.Err
	}
	return append([]string(nil), w.Extensions...), nil
}

// CreateSurface imports a fake native surface into instance.
func (w *Window) CreateSurface(instance gfx.Instance) (gfx.Surface, error) {
	if w.Err != nil {
		return 0, w.Err
	}
	return instance.ImportSurface(DefaultRawSurface)
}

// Extent returns the scripted size.
func (w *Window) Extent() gfx.Extent2D {
	return w.Size
}
