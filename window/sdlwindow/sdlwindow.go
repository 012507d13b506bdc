// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

// Package sdlwindow presents to an SDL window.
package sdlwindow

import (
	"github.com/cockroachdb/errors"
	"github.com/veandco/go-sdl2/sdl"

	"github.com/devblok/koruvk/core"
	"github.com/devblok/koruvk/gfx"
)

// Window adapts an SDL window created with sdl.WINDOW_VULKAN.
type Window struct {
	window *sdl.Window
}

var _ core.Window = (*Window)(nil)

// New creates a resizable Vulkan window from the window configuration.
func New(cfg core.WindowConfiguration) (*Window, error) {
	window, err := sdl.CreateWindow(cfg.Title,
		sdl.WINDOWPOS_UNDEFINED,
		sdl.WINDOWPOS_UNDEFINED,
		int32(cfg.Width),
		int32(cfg.Height),
		sdl.WINDOW_VULKAN|sdl.WINDOW_RESIZABLE)
	if err != nil {
		return nil, errors.Wrap(err, "sdl.CreateWindow()")
	}
	return &Window{window: window}, nil
}

// Wrap adapts an existing window.
func Wrap(window *sdl.Window) *Window {
	return &Window{window: window}
}

// SDL returns the wrapped window.
func (w *Window) SDL() *sdl.Window {
	return w.window
}

// RequiredExtensions implements core.Window.
func (w *Window) RequiredExtensions() ([]string, error) {
	extensions := w.window.VulkanGetInstanceExtensions()
	if len(extensions) == 0 {
		if err := sdl.GetError(); err != nil {
			return nil, errors.Wrap(err, "sdl.VulkanGetInstanceExtensions()")
		}
		return nil, errors.New("sdl.VulkanGetInstanceExtensions(): no extensions")
	}
	return extensions, nil
}

// CreateSurface implements core.Window. The surface is created by SDL on
// the native instance and handed to the driver.
func (w *Window) CreateSurface(instance gfx.Instance) (gfx.Surface, error) {
	surface, err := w.window.VulkanCreateSurface(instance.Native())
	if err != nil {
		return 0, errors.Wrap(err, "sdl.VulkanCreateSurface()")
	}
	return instance.ImportSurface(uintptr(surface))
}

// Extent implements core.Window. It is the drawable size in pixels, which
// differs from the window size on high density displays.
func (w *Window) Extent() gfx.Extent2D {
	width, height := w.window.VulkanGetDrawableSize()
	return gfx.Extent2D{Width: uint32(width), Height: uint32(height)}
}

// Destroy destroys the window. Surfaces created from it must be gone.
func (w *Window) Destroy() error {
	return errors.Wrap(w.window.Destroy(), "sdl.Window.Destroy()")
}
