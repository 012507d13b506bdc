// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package core_test

import (
	"testing"

	"github.com/cockroachdb/errors"
	qt "github.com/frankban/quicktest"

	"github.com/devblok/koruvk/core"
	"github.com/devblok/koruvk/gfx/gfxtest"
)

func TestCapabilitySetTryEnable(t *testing.T) {
	c := qt.New(t)

	set := core.NewCapabilitySet("extension", []string{"a", "b", "c"})
	c.Assert(set.TryEnable("b"), qt.IsTrue)
	c.Assert(set.IsEnabled("b"), qt.IsTrue)

	c.Run("already enabled", func(c *qt.C) {
		c.Assert(set.TryEnable("b"), qt.IsFalse)
		c.Assert(set.Enabled(), qt.DeepEquals, []string{"b"})
	})

	c.Run("unsupported", func(c *qt.C) {
		c.Assert(set.TryEnable("z"), qt.IsFalse)
		c.Assert(set.IsEnabled("z"), qt.IsFalse)
		c.Assert(set.IsSupported("z"), qt.IsFalse)
	})

	c.Run("insertion order", func(c *qt.C) {
		c.Assert(set.TryEnable("c"), qt.IsTrue)
		c.Assert(set.TryEnable("a"), qt.IsTrue)
		c.Assert(set.Enabled(), qt.DeepEquals, []string{"b", "c", "a"})
		c.Assert(set.Supported(), qt.DeepEquals, []string{"a", "b", "c"})
	})
}

func TestCapabilitySetEnable(t *testing.T) {
	c := qt.New(t)

	set := core.NewCapabilitySet("layer", []string{"a"})
	c.Assert(set.Enable("a"), qt.IsNil)
	c.Assert(set.Enable("a"), qt.IsNil)
	c.Assert(set.Enabled(), qt.DeepEquals, []string{"a"})

	err := set.Enable("missing")
	c.Assert(err, qt.ErrorIs, core.ErrCapabilityRequiredButUnsupported)
	c.Assert(err, qt.ErrorMatches, "layer missing: required capability unsupported")
	c.Assert(errors.GetAllHints(err), qt.HasLen, 1)
	c.Assert(set.IsEnabled("missing"), qt.IsFalse)
}

func TestCapabilitySetNeverEnablesUnsupported(t *testing.T) {
	c := qt.New(t)

	supported := []string{"x", "y"}
	set := core.NewCapabilitySet("extension", supported)
	for _, name := range []string{"x", "q", "y", "x", "", "y", "r"} {
		set.TryEnable(name)
	}
	for _, name := range set.Enabled() {
		c.Assert(set.IsSupported(name), qt.IsTrue, qt.Commentf("%s", name))
	}
	c.Assert(set.Enabled(), qt.DeepEquals, []string{"x", "y"})
}

func TestWellKnownFlags(t *testing.T) {
	c := qt.New(t)

	layers := core.NewLayers(gfxtest.Layers(core.LayerValidation))
	c.Assert(layers.Validation(), qt.IsFalse)
	c.Assert(layers.TryEnable(core.LayerValidation), qt.IsTrue)
	c.Assert(layers.Validation(), qt.IsTrue)

	instance := core.NewInstanceExtensions(gfxtest.Extensions(
		core.ExtensionSurface, core.ExtensionDebugReport, core.ExtensionGetSurfaceCapabilities2))
	c.Assert(instance.Enable(core.ExtensionSurface), qt.IsNil)
	c.Assert(instance.Surface(), qt.IsTrue)
	c.Assert(instance.DebugReport(), qt.IsFalse)
	c.Assert(instance.TryEnable(core.ExtensionDebugReport), qt.IsTrue)
	c.Assert(instance.DebugReport(), qt.IsTrue)
	c.Assert(instance.GetSurfaceCapabilities2(), qt.IsFalse)

	device := core.NewDeviceExtensions(gfxtest.Extensions(core.ExtensionSwapchain, core.ExtensionMeshShader))
	c.Assert(device.TryEnable(core.ExtensionPortabilitySubset), qt.IsFalse)
	c.Assert(device.PortabilitySubset(), qt.IsFalse)
	c.Assert(device.Enable(core.ExtensionSwapchain), qt.IsNil)
	c.Assert(device.Swapchain(), qt.IsTrue)
	c.Assert(device.MeshShader(), qt.IsFalse)
	c.Assert(device.TryEnable(core.ExtensionMeshShader), qt.IsTrue)
	c.Assert(device.MeshShader(), qt.IsTrue)
}
