// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package core

import (
	"github.com/cockroachdb/errors"
	"github.com/sirupsen/logrus"

	"github.com/devblok/koruvk/gfx"
)

// PhysicalDeviceInfo is what is known about a GPU before a logical device
// is created on it.
type PhysicalDeviceInfo struct {
	Handle        gfx.PhysicalDevice
	Properties    gfx.PhysicalDeviceProperties
	Memory        gfx.MemoryProperties
	QueueFamilies []gfx.QueueFamilyProperties
	Features      gfx.Features
}

// DeviceNegotiator lets the host inspect a GPU, enable device extensions
// and fill in the features to enable. An error aborts device creation.
type DeviceNegotiator func(info *PhysicalDeviceInfo, extensions *DeviceExtensions, enabled *gfx.Features) error

var _ gfx.Releasable = (*Device)(nil)

// Device owns the logical device and its queues.
type Device struct {
	shared

	instance *Instance
	surface  *Surface

	info       PhysicalDeviceInfo
	extensions *DeviceExtensions
	features   gfx.Features

	driver     gfx.Device
	swapchains gfx.SwapchainDispatch
	meshShader gfx.MeshShaderDispatch

	direct   Queue
	compute  Queue
	transfer Queue
}

// NewDevice creates a logical device on pd with a direct queue able to
// present to surface, plus compute and transfer queues from dedicated
// families where the GPU has them.
func NewDevice(instance *Instance, surface *Surface, pd gfx.PhysicalDevice, negotiate DeviceNegotiator) (*Device, error) {
	drv := instance.driver

	info, err := QueryPhysicalDevice(drv, pd)
	if err != nil {
		return nil, err
	}
	extensionProps, err := drv.DeviceExtensions(pd)
	if err != nil {
		return nil, driverError(err, "enumerate device extensions")
	}
	extensions := NewDeviceExtensions(extensionProps)

	var features gfx.Features
	if err := negotiate(&info, extensions, &features); err != nil {
		return nil, errors.Wrap(err, "negotiate device capabilities")
	}

	families := make([]QueueFamily, len(info.QueueFamilies))
	for i, props := range info.QueueFamilies {
		present, err := drv.SurfaceSupport(pd, uint32(i), surface.handle)
		if err != nil {
			return nil, driverError(err, "query surface support")
		}
		families[i] = QueueFamily{QueueFamilyProperties: props, Index: uint32(i), Present: present}
	}

	direct, ok := FindDirectQueueFamily(families)
	if !ok {
		return nil, errors.Wrapf(ErrNoSuitableQueueFamily, "%s has no presentable graphics, compute and transfer family", info.Properties.DeviceName)
	}
	compute := FindComputeQueueFamily(families, direct)
	transfer := FindTransferQueueFamily(families, direct)

	dev, err := drv.CreateDevice(pd, gfx.DeviceCreateInfo{
		Queues:     QueueRequests(direct, compute, transfer),
		Extensions: extensions.Enabled(),
		Features:   features,
	})
	if err != nil {
		return nil, driverError(err, "create device")
	}

	d := &Device{
		instance:   instance.Retain(),
		surface:    surface.Retain(),
		info:       info,
		extensions: extensions,
		features:   features,
		driver:     dev,
		swapchains: dev.SwapchainDispatch(),
		meshShader: dev.MeshShaderDispatch(),
		direct:     Queue{Handle: dev.Queue(direct, 0), FamilyIndex: direct},
		compute:    Queue{Handle: dev.Queue(compute, 0), FamilyIndex: compute},
		transfer:   Queue{Handle: dev.Queue(transfer, 0), FamilyIndex: transfer},
	}
	d.init(d.destroy)

	instance.log.WithFields(logrus.Fields{
		"device":     info.Properties.DeviceName,
		"type":       info.Properties.DeviceType.String(),
		"extensions": extensions.Enabled(),
		"direct":     direct,
		"compute":    compute,
		"transfer":   transfer,
	}).Info("logical device created")
	return d, nil
}

// QueryPhysicalDevice snapshots the properties, memory layout, queue
// families and supported features of pd.
func QueryPhysicalDevice(drv gfx.Instance, pd gfx.PhysicalDevice) (PhysicalDeviceInfo, error) {
	info := PhysicalDeviceInfo{Handle: pd}
	var err error
	if info.Properties, err = drv.Properties(pd); err != nil {
		return info, driverError(err, "query physical device properties")
	}
	if info.Memory, err = drv.MemoryProperties(pd); err != nil {
		return info, driverError(err, "query physical device memory")
	}
	if info.QueueFamilies, err = drv.QueueFamilies(pd); err != nil {
		return info, driverError(err, "query queue families")
	}
	if info.Features, err = drv.Features(pd); err != nil {
		return info, driverError(err, "query physical device features")
	}
	return info, nil
}

func (d *Device) destroy() {
	if err := d.driver.WaitIdle(); err != nil {
		d.instance.log.WithError(err).Warn("device did not go idle before destruction")
	}
	d.driver.Destroy()
	d.instance.log.Debug("logical device destroyed")
	d.surface.Release()
	d.instance.Release()
}

// Retain adds an owner to the device.
func (d *Device) Retain() *Device {
	d.retain()
	return d
}

// Release drops an owner. The last owner destroys the device and
// releases the surface and instance.
func (d *Device) Release() {
	d.release()
}

// Driver returns the driver device.
func (d *Device) Driver() gfx.Device {
	return d.driver
}

// Info returns the snapshot of the GPU the device was created on.
func (d *Device) Info() PhysicalDeviceInfo {
	return d.info
}

// Extensions returns the negotiated device extensions.
func (d *Device) Extensions() *DeviceExtensions {
	return d.extensions
}

// Features returns the enabled features.
func (d *Device) Features() gfx.Features {
	return d.features
}

// Direct returns the queue that does graphics, compute, transfer and
// presentation.
func (d *Device) Direct() Queue {
	return d.direct
}

// Compute returns the compute queue. It shares the direct family when the
// GPU has no better one.
func (d *Device) Compute() Queue {
	return d.compute
}

// Transfer returns the transfer queue. It shares the direct family when
// the GPU has no better one.
func (d *Device) Transfer() Queue {
	return d.transfer
}

// Swapchains returns the swapchain function table.
func (d *Device) Swapchains() gfx.SwapchainDispatch {
	return d.swapchains
}

// MeshShader returns the mesh shading function table and whether the
// extension backing it is enabled.
func (d *Device) MeshShader() (gfx.MeshShaderDispatch, bool) {
	return d.meshShader, d.extensions.MeshShader()
}

// WaitIdle blocks until the device has finished all submitted work.
func (d *Device) WaitIdle() error {
	if err := d.driver.WaitIdle(); err != nil {
		return driverError(err, "wait for device idle")
	}
	return nil
}
