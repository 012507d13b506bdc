// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package core_test

import (
	qt "github.com/frankban/quicktest"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"

	"github.com/devblok/koruvk/core"
	"github.com/devblok/koruvk/gfx"
	"github.com/devblok/koruvk/gfx/gfxtest"
)

func negotiateInstance(loader gfx.Loader, _ *core.Layers, _ *core.InstanceExtensions) (gfx.Version, error) {
	return loader.InstanceVersion()
}

func negotiateDebugInstance(loader gfx.Loader, layers *core.Layers, extensions *core.InstanceExtensions) (gfx.Version, error) {
	layers.TryEnable(core.LayerValidation)
	extensions.TryEnable(core.ExtensionDebugReport)
	return loader.InstanceVersion()
}

func negotiateDevice(_ *core.PhysicalDeviceInfo, extensions *core.DeviceExtensions, _ *gfx.Features) error {
	return extensions.Enable(core.ExtensionSwapchain)
}

func quietConfiguration() (core.InstanceConfiguration, *test.Hook) {
	logger, hook := test.NewNullLogger()
	logger.SetLevel(logrus.DebugLevel)
	return core.InstanceConfiguration{
		ApplicationName: "koru_test",
		EngineName:      "koru",
		Logger:          logger,
	}, hook
}

type stack struct {
	instance  *core.Instance
	surface   *core.Surface
	device    *core.Device
	swapchain *core.Swapchain
}

// newStack builds instance, surface, device and swapchain on drv.
func newStack(c *qt.C, drv *gfxtest.Driver, win *gfxtest.Window, vsync bool) stack {
	cfg, _ := quietConfiguration()
	instance, err := core.NewInstance(drv, win, cfg, negotiateInstance)
	c.Assert(err, qt.IsNil)
	surface, err := core.NewSurface(instance, win)
	c.Assert(err, qt.IsNil)
	pd, err := instance.FindOptimalPhysicalDevice()
	c.Assert(err, qt.IsNil)
	device, err := core.NewDevice(instance, surface, pd.Handle, negotiateDevice)
	c.Assert(err, qt.IsNil)
	swapchain, err := core.NewSwapchain(instance, surface, device, core.SwapchainConfiguration{VSync: vsync})
	c.Assert(err, qt.IsNil)
	return stack{instance, surface, device, swapchain}
}

func (s stack) release() {
	s.instance.Release()
	s.surface.Release()
	s.device.Release()
	s.swapchain.Release()
}

// newDebugStack is newStack with validation and diagnostics enabled.
func newDebugStack(c *qt.C, drv *gfxtest.Driver) stack {
	cfg, _ := quietConfiguration()
	win := gfxtest.NewWindow()
	instance, err := core.NewInstance(drv, win, cfg, negotiateDebugInstance)
	c.Assert(err, qt.IsNil)
	surface, err := core.NewSurface(instance, win)
	c.Assert(err, qt.IsNil)
	device, err := core.NewDevice(instance, surface, 1, negotiateDevice)
	c.Assert(err, qt.IsNil)
	swapchain, err := core.NewSwapchain(instance, surface, device, core.SwapchainConfiguration{VSync: true})
	c.Assert(err, qt.IsNil)
	return stack{instance, surface, device, swapchain}
}
