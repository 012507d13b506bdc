// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package core_test

import (
	"testing"

	qt "github.com/frankban/quicktest"
	"github.com/go-gl/mathgl/mgl32"

	"github.com/devblok/koruvk/core"
	"github.com/devblok/koruvk/gfx"
	"github.com/devblok/koruvk/gfx/gfxtest"
)

func TestSelectSurfaceFormat(t *testing.T) {
	hdr := gfx.SurfaceFormat{Format: gfx.FormatR16G16B16A16Sfloat, ColorSpace: gfx.ColorSpaceExtendedSrgbLinear}
	srgb := gfx.SurfaceFormat{Format: gfx.FormatB8G8R8A8Srgb, ColorSpace: gfx.ColorSpaceSrgbNonlinear}

	tests := []struct {
		name      string
		supported []gfx.SurfaceFormat
		want      gfx.SurfaceFormat
	}{{
		name:      "extended range wins",
		supported: []gfx.SurfaceFormat{srgb, hdr},
		want:      hdr,
	}, {
		name: "float without extended color space is skipped",
		supported: []gfx.SurfaceFormat{
			{Format: gfx.FormatB8G8R8A8Unorm},
			{Format: gfx.FormatR16G16B16A16Sfloat, ColorSpace: gfx.ColorSpaceSrgbNonlinear},
		},
		want: gfx.SurfaceFormat{Format: gfx.FormatB8G8R8A8Unorm},
	}, {
		name: "preference order not driver order",
		supported: []gfx.SurfaceFormat{
			{Format: gfx.FormatB8G8R8A8Unorm},
			{Format: gfx.FormatR8G8B8A8Unorm},
			srgb,
		},
		want: srgb,
	}, {
		name: "rgba srgb first",
		supported: []gfx.SurfaceFormat{
			srgb,
			{Format: gfx.FormatR8G8B8A8Srgb},
		},
		want: gfx.SurfaceFormat{Format: gfx.FormatR8G8B8A8Srgb},
	}}

	c := qt.New(t)
	for _, test := range tests {
		c.Run(test.name, func(c *qt.C) {
			got, err := core.SelectSurfaceFormat(test.supported)
			c.Assert(err, qt.IsNil)
			c.Assert(got, qt.Equals, test.want)
		})
	}

	c.Run("nothing usable", func(c *qt.C) {
		_, err := core.SelectSurfaceFormat([]gfx.SurfaceFormat{{Format: 123}, {Format: gfx.FormatR16G16B16A16Sfloat}})
		c.Assert(err, qt.ErrorIs, core.ErrNoSuitableSurfaceFormat)
		_, err = core.SelectSurfaceFormat(nil)
		c.Assert(err, qt.ErrorIs, core.ErrNoSuitableSurfaceFormat)
	})
}

func TestSelectPresentMode(t *testing.T) {
	c := qt.New(t)

	all := []gfx.PresentMode{gfx.PresentModeFifo, gfx.PresentModeMailbox, gfx.PresentModeImmediate, gfx.PresentModeFifoRelaxed}
	c.Assert(core.SelectPresentMode(all, true), qt.Equals, gfx.PresentModeFifo)
	c.Assert(core.SelectPresentMode(nil, true), qt.Equals, gfx.PresentModeFifo)
	c.Assert(core.SelectPresentMode(all, false), qt.Equals, gfx.PresentModeImmediate)
	c.Assert(core.SelectPresentMode([]gfx.PresentMode{gfx.PresentModeFifo, gfx.PresentModeMailbox}, false), qt.Equals, gfx.PresentModeMailbox)
	c.Assert(core.SelectPresentMode([]gfx.PresentMode{gfx.PresentModeFifoRelaxed}, false), qt.Equals, gfx.PresentModeFifo)
}

func TestNewSwapchain(t *testing.T) {
	c := qt.New(t)

	drv := gfxtest.NewDriver()
	s := newStack(c, drv, gfxtest.NewWindow(), false)

	infos := drv.SwapchainInfos()
	c.Assert(infos, qt.HasLen, 1)
	info := infos[0]
	c.Assert(info.MinImageCount, qt.Equals, uint32(3))
	c.Assert(info.Format, qt.Equals, gfx.FormatB8G8R8A8Srgb)
	c.Assert(info.ColorSpace, qt.Equals, gfx.ColorSpaceSrgbNonlinear)
	c.Assert(info.Extent, qt.Equals, gfx.Extent2D{Width: 800, Height: 600})
	c.Assert(info.PresentMode, qt.Equals, gfx.PresentModeMailbox)
	c.Assert(info.Transform, qt.Equals, gfx.SurfaceTransformIdentity)
	c.Assert(info.CompositeAlpha, qt.Equals, gfx.CompositeAlphaOpaque)
	c.Assert(info.ArrayLayers, qt.Equals, uint32(1))
	c.Assert(info.Usage, qt.Equals, gfx.ImageUsageColorAttachment)
	c.Assert(info.OldSwapchain, qt.Equals, gfx.Swapchain(0))
	c.Assert(info.Surface, qt.Equals, s.surface.Handle())

	passes := drv.RenderPassInfos()
	c.Assert(passes, qt.HasLen, 1)
	c.Assert(passes[0].Attachments, qt.DeepEquals, []gfx.AttachmentDescription{{
		Format:        gfx.FormatB8G8R8A8Srgb,
		LoadOp:        gfx.AttachmentLoadOpClear,
		StoreOp:       gfx.AttachmentStoreOpStore,
		InitialLayout: gfx.ImageLayoutUndefined,
		FinalLayout:   gfx.ImageLayoutPresentSrc,
	}})
	c.Assert(passes[0].Subpasses, qt.HasLen, 1)

	c.Assert(s.swapchain.Images(), qt.HasLen, 3)
	c.Assert(s.swapchain.Views(), qt.HasLen, 3)
	c.Assert(s.swapchain.Framebuffers(), qt.HasLen, 3)
	c.Assert(s.swapchain.PresentMode(), qt.Equals, gfx.PresentModeMailbox)

	s.release()
	c.Assert(drv.Destroyed(), qt.DeepEquals, []string{
		"framebuffer", "framebuffer", "framebuffer",
		"imageview", "imageview", "imageview",
		"swapchain", "renderpass", "device", "surface", "instance",
	})
	c.Assert(drv.Violations(), qt.HasLen, 0)
	c.Assert(drv.Live(), qt.HasLen, 0)
}

func TestSwapchainImageCount(t *testing.T) {
	tests := []struct {
		name     string
		min, max uint32
		want     uint32
	}{
		{"at least three", 1, 8, 3},
		{"surface minimum", 4, 8, 4},
		{"clamped to maximum", 1, 2, 2},
		{"unbounded", 5, 0, 5},
	}

	c := qt.New(t)
	for _, test := range tests {
		c.Run(test.name, func(c *qt.C) {
			drv := gfxtest.NewDriver()
			drv.Devices[0].Capabilities.MinImageCount = test.min
			drv.Devices[0].Capabilities.MaxImageCount = test.max
			s := newStack(c, drv, gfxtest.NewWindow(), true)
			defer s.release()
			c.Assert(drv.SwapchainInfos()[0].MinImageCount, qt.Equals, test.want)
			c.Assert(s.swapchain.Framebuffers(), qt.HasLen, int(test.want))
		})
	}
}

func TestSwapchainExtentFromWindow(t *testing.T) {
	c := qt.New(t)

	drv := gfxtest.NewDriver()
	caps := &drv.Devices[0].Capabilities
	caps.CurrentExtent = gfx.Extent2D{Width: gfx.UndefinedExtent, Height: gfx.UndefinedExtent}
	caps.MaxImageExtent = gfx.Extent2D{Width: 1024, Height: 1024}
	win := gfxtest.NewWindow()
	win.Size = gfx.Extent2D{Width: 1920, Height: 720}

	s := newStack(c, drv, win, true)
	defer s.release()
	c.Assert(s.swapchain.Extent(), qt.Equals, gfx.Extent2D{Width: 1024, Height: 720})
}

func TestSwapchainRecreate(t *testing.T) {
	c := qt.New(t)

	drv := gfxtest.NewDriver()
	s := newStack(c, drv, gfxtest.NewWindow(), true)
	old := s.swapchain.Handle()

	drv.Devices[0].Capabilities.CurrentExtent = gfx.Extent2D{Width: 1280, Height: 720}
	c.Assert(s.swapchain.Recreate(), qt.IsNil)

	infos := drv.SwapchainInfos()
	c.Assert(infos, qt.HasLen, 2)
	c.Assert(infos[1].OldSwapchain, qt.Equals, old)
	c.Assert(infos[1].Extent, qt.Equals, gfx.Extent2D{Width: 1280, Height: 720})
	c.Assert(s.swapchain.Handle(), qt.Not(qt.Equals), old)
	c.Assert(s.swapchain.Extent(), qt.Equals, gfx.Extent2D{Width: 1280, Height: 720})
	c.Assert(drv.Violations(), qt.HasLen, 0)

	s.release()
	c.Assert(drv.Violations(), qt.HasLen, 0)
	c.Assert(drv.Live(), qt.HasLen, 0)
}

func TestSwapchainRecreateZeroExtent(t *testing.T) {
	c := qt.New(t)

	drv := gfxtest.NewDriver()
	s := newStack(c, drv, gfxtest.NewWindow(), true)
	defer s.release()
	before := s.swapchain.Handle()

	drv.Devices[0].Capabilities.CurrentExtent = gfx.Extent2D{}
	c.Assert(s.swapchain.Recreate(), qt.ErrorIs, core.ErrSurfaceExtentZero)
	c.Assert(s.swapchain.Handle(), qt.Equals, before)
	c.Assert(drv.SwapchainInfos(), qt.HasLen, 1)
}

func TestSwapchainRecreateFailureKeepsOld(t *testing.T) {
	c := qt.New(t)

	drv := gfxtest.NewDriver()
	s := newStack(c, drv, gfxtest.NewWindow(), true)
	before := s.swapchain.Handle()
	live := len(drv.Live())

	// the stack made three framebuffers, fail the second one of the new chain
	drv.Fail("CreateFramebuffer", gfx.ErrorOutOfDeviceMemory, 4)
	c.Assert(s.swapchain.Recreate(), qt.ErrorIs, core.ErrDriverCallFailed)
	c.Assert(s.swapchain.Handle(), qt.Equals, before)
	c.Assert(drv.Live(), qt.HasLen, live)

	s.release()
	c.Assert(drv.Violations(), qt.HasLen, 0)
	c.Assert(drv.Live(), qt.HasLen, 0)
}

func TestNewSwapchainFailures(t *testing.T) {
	c := qt.New(t)

	for _, call := range []string{"SurfaceCapabilities", "SurfaceFormats", "CreateRenderPass", "CreateSwapchain", "SwapchainImages", "CreateImageView", "CreateFramebuffer"} {
		c.Run(call, func(c *qt.C) {
			drv := gfxtest.NewDriver()
			instance, surface := newInstanceAndSurface(c, drv)
			device, err := core.NewDevice(instance, surface, 1, negotiateDevice)
			c.Assert(err, qt.IsNil)

			after := 0
			if call == "CreateImageView" || call == "CreateFramebuffer" {
				// let the first image through so there is something to roll back
				after = 1
			}
			drv.Fail(call, gfx.ErrorOutOfDeviceMemory, after)
			_, err = core.NewSwapchain(instance, surface, device, core.SwapchainConfiguration{})
			c.Assert(err, qt.ErrorIs, core.ErrDriverCallFailed)

			device.Release()
			surface.Release()
			instance.Release()
			c.Assert(drv.Violations(), qt.HasLen, 0)
			c.Assert(drv.Live(), qt.HasLen, 0)
		})
	}

	c.Run("no usable format", func(c *qt.C) {
		drv := gfxtest.NewDriver()
		drv.Devices[0].Formats = []gfx.SurfaceFormat{{Format: 1}}
		instance, surface := newInstanceAndSurface(c, drv)
		device, err := core.NewDevice(instance, surface, 1, negotiateDevice)
		c.Assert(err, qt.IsNil)
		_, err = core.NewSwapchain(instance, surface, device, core.SwapchainConfiguration{})
		c.Assert(err, qt.ErrorIs, core.ErrNoSuitableSurfaceFormat)
		c.Assert(drv.Calls("CreateRenderPass"), qt.Equals, 0)
		device.Release()
		surface.Release()
		instance.Release()
	})

	c.Run("swapchain extension not enabled", func(c *qt.C) {
		drv := gfxtest.NewDriver()
		instance, surface := newInstanceAndSurface(c, drv)
		device, err := core.NewDevice(instance, surface, 1, func(*core.PhysicalDeviceInfo, *core.DeviceExtensions, *gfx.Features) error {
			return nil
		})
		c.Assert(err, qt.IsNil)
		_, err = core.NewSwapchain(instance, surface, device, core.SwapchainConfiguration{})
		c.Assert(err, qt.ErrorIs, core.ErrCapabilityRequiredButUnsupported)
		device.Release()
		surface.Release()
		instance.Release()
	})
}

func TestSwapchainClearColor(t *testing.T) {
	c := qt.New(t)

	drv := gfxtest.NewDriver()
	instance, surface := newInstanceAndSurface(c, drv)
	device, err := core.NewDevice(instance, surface, 1, negotiateDevice)
	c.Assert(err, qt.IsNil)
	color := mgl32.Vec4{0.1, 0.2, 0.3, 1}
	swapchain, err := core.NewSwapchain(instance, surface, device, core.SwapchainConfiguration{ClearColor: color})
	c.Assert(err, qt.IsNil)
	c.Assert(swapchain.ClearColor(), qt.Equals, color)

	swapchain.Release()
	device.Release()
	surface.Release()
	instance.Release()
	c.Assert(drv.Live(), qt.HasLen, 0)
}
