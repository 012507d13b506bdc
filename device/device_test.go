// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package device_test

import (
	"context"
	"testing"

	qt "github.com/frankban/quicktest"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus/hooks/test"

	"github.com/devblok/koruvk/core"
	"github.com/devblok/koruvk/device"
	"github.com/devblok/koruvk/gfx"
	"github.com/devblok/koruvk/gfx/gfxtest"
)

func newInstance(c *qt.C, drv *gfxtest.Driver) *core.Instance {
	logger, _ := test.NewNullLogger()
	instance, err := core.NewInstance(drv, gfxtest.NewWindow(), core.InstanceConfiguration{Logger: logger},
		func(loader gfx.Loader, _ *core.Layers, _ *core.InstanceExtensions) (gfx.Version, error) {
			return loader.InstanceVersion()
		})
	c.Assert(err, qt.IsNil)
	c.Cleanup(instance.Release)
	return instance
}

func TestReport(t *testing.T) {
	c := qt.New(t)

	drv := gfxtest.NewDriver()
	integrated := gfxtest.GPU("Mock Integrated", gfx.PhysicalDeviceTypeIntegratedGPU, 512<<20)
	integrated.Layers = gfxtest.Layers(gfxtest.ValidationLayer)
	integrated.Extensions = gfxtest.Extensions(gfxtest.SwapchainExtension, gfxtest.MeshShaderExtension)
	integrated.Properties.MeshShader.MaxDrawMeshTasksCount = 65535
	integrated.Properties.PipelineCacheUUID = uuid.MustParse("6ba7b810-9dad-11d1-80b4-00c04fd430c8")
	drv.Devices = append(drv.Devices, integrated)

	infos, err := device.Report(context.Background(), newInstance(c, drv))
	c.Assert(err, qt.IsNil)
	c.Assert(infos, qt.HasLen, 2)

	discrete := infos[0]
	c.Assert(discrete.Name, qt.Equals, "Mock Discrete")
	c.Assert(discrete.Type, qt.Equals, "discrete")
	c.Assert(discrete.APIVersion, qt.Equals, "1.2.0")
	c.Assert(discrete.VendorID, qt.Equals, uint32(0x10de))
	c.Assert(discrete.DeviceLocalMemory, qt.Equals, uint64(8<<30))
	c.Assert(discrete.Memory, qt.Equals, uint64(8<<30+16<<30))
	c.Assert(discrete.Extensions, qt.DeepEquals, []string{gfxtest.SwapchainExtension})
	c.Assert(discrete.MeshShader, qt.IsNil)
	c.Assert(discrete.Features.SamplerAnisotropy, qt.IsTrue)
	c.Assert(discrete.QueueFamilies, qt.DeepEquals, []device.QueueInfo{
		{Index: 0, Count: 4, Graphics: true, Compute: true, Transfer: true},
		{Index: 1, Count: 2, Compute: true},
	})
	c.Assert(discrete.Optimal, qt.IsTrue)

	other := infos[1]
	c.Assert(other.Name, qt.Equals, "Mock Integrated")
	c.Assert(other.Type, qt.Equals, "integrated")
	c.Assert(other.Layers, qt.DeepEquals, []string{gfxtest.ValidationLayer})
	c.Assert(other.PipelineCacheUUID.String(), qt.Equals, "6ba7b810-9dad-11d1-80b4-00c04fd430c8")
	c.Assert(other.MeshShader, qt.Not(qt.IsNil))
	c.Assert(other.MeshShader.MaxDrawMeshTasksCount, qt.Equals, uint32(65535))
	c.Assert(other.Optimal, qt.IsFalse)
}

func TestReportFailure(t *testing.T) {
	c := qt.New(t)

	drv := gfxtest.NewDriver()
	instance := newInstance(c, drv)
	drv.Fail("DeviceExtensions", gfx.ErrorDeviceLost, 0)

	_, err := device.Report(context.Background(), instance)
	c.Assert(err, qt.ErrorMatches, "describe Mock Discrete: enumerate device extensions: .*")
	c.Assert(err, qt.ErrorIs, gfx.ErrorDeviceLost)
}

func TestReportCancelled(t *testing.T) {
	c := qt.New(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := device.Report(ctx, newInstance(c, gfxtest.NewDriver()))
	c.Assert(err, qt.ErrorIs, context.Canceled)
}

func TestReportNoDevices(t *testing.T) {
	c := qt.New(t)

	drv := gfxtest.NewDriver()
	drv.Devices = nil
	infos, err := device.Report(context.Background(), newInstance(c, drv))
	c.Assert(err, qt.IsNil)
	c.Assert(infos, qt.HasLen, 0)
}
