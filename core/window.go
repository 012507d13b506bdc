// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package core

import "github.com/devblok/koruvk/gfx"

// Window is the native window the backend presents to.
type Window interface {
	// RequiredExtensions lists the instance extensions the window
	// system needs for presentation.
	RequiredExtensions() ([]string, error)

	// CreateSurface creates a presentation surface for the window.
	CreateSurface(instance gfx.Instance) (gfx.Surface, error)

	// Extent returns the current drawable size in pixels.
	Extent() gfx.Extent2D
}
