// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package core_test

import (
	stderrors "errors"
	"testing"

	"github.com/cockroachdb/errors"
	qt "github.com/frankban/quicktest"

	"github.com/devblok/koruvk/core"
	"github.com/devblok/koruvk/gfx"
	"github.com/devblok/koruvk/gfx/gfxtest"
)

// assertDriverFailure checks that err is a failed driver call with status
// want, whichever errors package the caller matches with.
func assertDriverFailure(c *qt.C, err error, want gfx.Result) {
	c.Helper()
	c.Assert(err, qt.ErrorIs, core.ErrDriverCallFailed)
	c.Assert(stderrors.Is(err, core.ErrDriverCallFailed), qt.IsTrue)
	c.Assert(errors.Is(err, core.ErrDriverCallFailed), qt.IsTrue)
	c.Assert(errors.Is(errors.Wrap(err, "outer"), core.ErrDriverCallFailed), qt.IsTrue)

	status, ok := core.DriverStatus(errors.Wrap(err, "outer"))
	c.Assert(ok, qt.IsTrue)
	c.Assert(status, qt.Equals, want)
	c.Assert(err, qt.ErrorIs, want)
}

func TestDriverCallFailed(t *testing.T) {
	c := qt.New(t)

	c.Run("instance", func(c *qt.C) {
		drv := gfxtest.NewDriver()
		drv.Fail("CreateInstance", gfx.ErrorInitializationFailed, 0)
		cfg, _ := quietConfiguration()
		_, err := core.NewInstance(drv, gfxtest.NewWindow(), cfg, negotiateInstance)
		assertDriverFailure(c, err, gfx.ErrorInitializationFailed)
		c.Assert(err, qt.ErrorMatches, `create instance: CreateInstance\(\): initialization failed.*`)
	})

	c.Run("surface", func(c *qt.C) {
		drv := gfxtest.NewDriver()
		drv.Fail("ImportSurface", gfx.ErrorSurfaceLost, 0)
		cfg, _ := quietConfiguration()
		win := gfxtest.NewWindow()
		instance, err := core.NewInstance(drv, win, cfg, negotiateInstance)
		c.Assert(err, qt.IsNil)
		_, err = core.NewSurface(instance, win)
		assertDriverFailure(c, err, gfx.ErrorSurfaceLost)
		instance.Release()
		c.Assert(drv.Live(), qt.HasLen, 0)
	})

	c.Run("device", func(c *qt.C) {
		drv := gfxtest.NewDriver()
		drv.Fail("CreateDevice", gfx.ErrorDeviceLost, 0)
		instance, surface := newInstanceAndSurface(c, drv)
		_, err := core.NewDevice(instance, surface, 1, negotiateDevice)
		assertDriverFailure(c, err, gfx.ErrorDeviceLost)
		surface.Release()
		instance.Release()
		c.Assert(drv.Live(), qt.HasLen, 0)
	})

	c.Run("swapchain", func(c *qt.C) {
		drv := gfxtest.NewDriver()
		instance, surface := newInstanceAndSurface(c, drv)
		device, err := core.NewDevice(instance, surface, 1, negotiateDevice)
		c.Assert(err, qt.IsNil)
		drv.Fail("CreateSwapchain", gfx.ErrorOutOfDeviceMemory, 0)
		_, err = core.NewSwapchain(instance, surface, device, core.SwapchainConfiguration{})
		assertDriverFailure(c, err, gfx.ErrorOutOfDeviceMemory)
		device.Release()
		surface.Release()
		instance.Release()
		c.Assert(drv.Live(), qt.HasLen, 0)
	})
}

func TestDriverStatusWithoutDriverCall(t *testing.T) {
	c := qt.New(t)

	_, ok := core.DriverStatus(core.ErrNoPhysicalDevice)
	c.Assert(ok, qt.IsFalse)
	c.Assert(stderrors.Is(core.ErrNoPhysicalDevice, core.ErrDriverCallFailed), qt.IsFalse)
}
