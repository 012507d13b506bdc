// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package gfxtest

import (
	"github.com/cockroachdb/errors"

	"github.com/devblok/koruvk/gfx"
)

// Instance is a scripted driver connection.
type Instance struct {
	driver     *Driver
	id         uint64
	extensions []string
}

// ID returns the tracking id of the instance.
func (i *Instance) ID() uint64 {
	return i.id
}

// Native implements gfx.Instance.
func (i *Instance) Native() interface{} {
	return i.id
}

func (i *Instance) device(pd gfx.PhysicalDevice) (*PhysicalDevice, error) {
	idx := int(pd) - 1
	if idx < 0 || idx >= len(i.driver.Devices) {
		return nil, errors.Wrapf(gfx.ErrorInitializationFailed, "unknown physical device %d", pd)
	}
	return &i.driver.Devices[idx], nil
}

func (i *Instance) enter(call string) (func(), error) {
	i.driver.mu.Lock()
	if !i.driver.alive(i.id) {
		i.driver.violations = append(i.driver.violations, call+" on destroyed instance")
	}
	if err := i.driver.check(call); err != nil {
		i.driver.mu.Unlock()
		return nil, err
	}
	return i.driver.mu.Unlock, nil
}

// PhysicalDevices implements gfx.Instance.
func (i *Instance) PhysicalDevices() ([]gfx.PhysicalDevice, error) {
	unlock, err := i.enter("PhysicalDevices")
	if err != nil {
		return nil, err
	}
	defer unlock()
	devices := make([]gfx.PhysicalDevice, len(i.driver.Devices))
	for idx := range devices {
		devices[idx] = gfx.PhysicalDevice(idx + 1)
	}
	return devices, nil
}

// Properties implements gfx.Instance.
func (i *Instance) Properties(pd gfx.PhysicalDevice) (gfx.PhysicalDeviceProperties, error) {
	unlock, err := i.enter("Properties")
	if err != nil {
		return gfx.PhysicalDeviceProperties{}, err
	}
	defer unlock()
	dev, err := i.device(pd)
	if err != nil {
		return gfx.PhysicalDeviceProperties{}, err
	}
	return dev.Properties, nil
}

// MemoryProperties implements gfx.Instance.
func (i *Instance) MemoryProperties(pd gfx.PhysicalDevice) (gfx.MemoryProperties, error) {
	unlock, err := i.enter("MemoryProperties")
	if err != nil {
		return gfx.MemoryProperties{}, err
	}
	defer unlock()
	dev, err := i.device(pd)
	if err != nil {
		return gfx.MemoryProperties{}, err
	}
	return dev.Memory, nil
}

// QueueFamilies implements gfx.Instance.
func (i *Instance) QueueFamilies(pd gfx.PhysicalDevice) ([]gfx.QueueFamilyProperties, error) {
	unlock, err := i.enter("QueueFamilies")
	if err != nil {
		return nil, err
	}
	defer unlock()
	dev, err := i.device(pd)
	if err != nil {
		return nil, err
	}
	families := make([]gfx.QueueFamilyProperties, len(dev.QueueFamilies))
	for idx, family := range dev.QueueFamilies {
		families[idx] = family.QueueFamilyProperties
	}
	return families, nil
}

// Features implements gfx.Instance.
func (i *Instance) Features(pd gfx.PhysicalDevice) (gfx.Features, error) {
	unlock, err := i.enter("Features")
	if err != nil {
		return gfx.Features{}, err
	}
	defer unlock()
	dev, err := i.device(pd)
	if err != nil {
		return gfx.Features{}, err
	}
	return dev.Features, nil
}

// DeviceLayers implements gfx.Instance.
func (i *Instance) DeviceLayers(pd gfx.PhysicalDevice) ([]gfx.LayerProperties, error) {
	unlock, err := i.enter("DeviceLayers")
	if err != nil {
		return nil, err
	}
	defer unlock()
	dev, err := i.device(pd)
	if err != nil {
		return nil, err
	}
	return append([]gfx.LayerProperties(nil), dev.Layers...), nil
}

// DeviceExtensions implements gfx.Instance.
func (i *Instance) DeviceExtensions(pd gfx.PhysicalDevice) ([]gfx.ExtensionProperties, error) {
	unlock, err := i.enter("DeviceExtensions")
	if err != nil {
		return nil, err
	}
	defer unlock()
	dev, err := i.device(pd)
	if err != nil {
		return nil, err
	}
	return append([]gfx.ExtensionProperties(nil), dev.Extensions...), nil
}

// SurfaceSupport implements gfx.Instance.
func (i *Instance) SurfaceSupport(pd gfx.PhysicalDevice, family uint32, surface gfx.Surface) (bool, error) {
	unlock, err := i.enter("SurfaceSupport")
	if err != nil {
		return false, err
	}
	defer unlock()
	dev, err := i.device(pd)
	if err != nil {
		return false, err
	}
	if !i.driver.alive(uint64(surface)) {
		i.driver.violations = append(i.driver.violations, "SurfaceSupport on dead surface")
	}
	if int(family) >= len(dev.QueueFamilies) {
		return false, errors.Wrapf(gfx.ErrorInitializationFailed, "queue family %d out of range", family)
	}
	return dev.QueueFamilies[family].Present, nil
}

// SurfaceCapabilities implements gfx.Instance.
func (i *Instance) SurfaceCapabilities(pd gfx.PhysicalDevice, _ gfx.Surface) (gfx.SurfaceCapabilities, error) {
	unlock, err := i.enter("SurfaceCapabilities")
	if err != nil {
		return gfx.SurfaceCapabilities{}, err
	}
	defer unlock()
	dev, err := i.device(pd)
	if err != nil {
		return gfx.SurfaceCapabilities{}, err
	}
	return dev.Capabilities, nil
}

// SurfaceFormats implements gfx.Instance.
func (i *Instance) SurfaceFormats(pd gfx.PhysicalDevice, _ gfx.Surface) ([]gfx.SurfaceFormat, error) {
	unlock, err := i.enter("SurfaceFormats")
	if err != nil {
		return nil, err
	}
	defer unlock()
	dev, err := i.device(pd)
	if err != nil {
		return nil, err
	}
	return append([]gfx.SurfaceFormat(nil), dev.Formats...), nil
}

// SurfacePresentModes implements gfx.Instance.
func (i *Instance) SurfacePresentModes(pd gfx.PhysicalDevice, _ gfx.Surface) ([]gfx.PresentMode, error) {
	unlock, err := i.enter("SurfacePresentModes")
	if err != nil {
		return nil, err
	}
	defer unlock()
	dev, err := i.device(pd)
	if err != nil {
		return nil, err
	}
	return append([]gfx.PresentMode(nil), dev.PresentModes...), nil
}

// ImportSurface implements gfx.Instance.
func (i *Instance) ImportSurface(raw uintptr) (gfx.Surface, error) {
	unlock, err := i.enter("ImportSurface")
	if err != nil {
		return 0, err
	}
	defer unlock()
	if raw == 0 {
		return 0, errors.Wrap(gfx.ErrorSurfaceLost, "ImportSurface(): null surface")
	}
	return gfx.Surface(i.driver.create("surface", false, i.id)), nil
}

// DestroySurface implements gfx.Instance.
func (i *Instance) DestroySurface(surface gfx.Surface) {
	i.driver.destroy("surface", uint64(surface))
}

// CreateDebugMessenger implements gfx.Instance.
func (i *Instance) CreateDebugMessenger(info gfx.DebugMessengerCreateInfo) (gfx.DebugMessenger, error) {
	unlock, err := i.enter("CreateDebugMessenger")
	if err != nil {
		return 0, err
	}
	defer unlock()
	if !contains(i.extensions, DebugReportExtension) {
		return 0, errors.Wrap(gfx.ErrorExtensionNotPresent, "CreateDebugMessenger(): diagnostics extension not enabled")
	}
	id := i.driver.create("messenger", false, i.id)
	if i.driver.handlers == nil {
		i.driver.handlers = make(map[uint64]gfx.DebugMessengerCreateInfo)
	}
	i.driver.handlers[id] = info
	return gfx.DebugMessenger(id), nil
}

// DestroyDebugMessenger implements gfx.Instance.
func (i *Instance) DestroyDebugMessenger(messenger gfx.DebugMessenger) {
	i.driver.mu.Lock()
	delete(i.driver.handlers, uint64(messenger))
	i.driver.mu.Unlock()
	i.driver.destroy("messenger", uint64(messenger))
}

// CreateDevice implements gfx.Instance.
func (i *Instance) CreateDevice(pd gfx.PhysicalDevice, info gfx.DeviceCreateInfo) (gfx.Device, error) {
	unlock, err := i.enter("CreateDevice")
	if err != nil {
		return nil, err
	}
	defer unlock()
	dev, err := i.device(pd)
	if err != nil {
		return nil, err
	}
	for _, name := range info.Extensions {
		if !hasExtension(dev.Extensions, name) {
			return nil, errors.Wrapf(gfx.ErrorExtensionNotPresent, "CreateDevice(): %s", name)
		}
	}
	if (info.Features.MeshShader && !dev.Features.MeshShader) || (info.Features.TaskShader && !dev.Features.TaskShader) {
		return nil, errors.Wrap(gfx.ErrorFeatureNotPresent, "CreateDevice()")
	}
	seen := make(map[uint32]bool)
	for _, q := range info.Queues {
		if seen[q.FamilyIndex] {
			i.driver.violations = append(i.driver.violations, "duplicate queue family request")
			return nil, errors.Wrapf(gfx.ErrorInitializationFailed, "CreateDevice(): family %d requested twice", q.FamilyIndex)
		}
		if int(q.FamilyIndex) >= len(dev.QueueFamilies) || len(q.Priorities) == 0 {
			return nil, errors.Wrapf(gfx.ErrorInitializationFailed, "CreateDevice(): bad queue request for family %d", q.FamilyIndex)
		}
		seen[q.FamilyIndex] = true
	}
	i.driver.deviceInfos = append(i.driver.deviceInfos, info)
	return &Device{
		driver:   i.driver,
		id:       i.driver.create("device", false, i.id),
		families: seen,
		mesh:     contains(info.Extensions, MeshShaderExtension),
		caps:     dev.Capabilities,
	}, nil
}

// Destroy implements gfx.Instance.
func (i *Instance) Destroy() {
	i.driver.destroy("instance", i.id)
}

func contains(names []string, name string) bool {
	for _, n := range names {
		if n == name {
			return true
		}
	}
	return false
}
