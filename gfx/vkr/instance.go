// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package vkr

import (
	"runtime"
	"sync"
	"unsafe"

	"github.com/cockroachdb/errors"
	vk "github.com/vulkan-go/vulkan"

	"github.com/devblok/koruvk/gfx"
)

// Instance is a Vulkan instance.
type Instance struct {
	handle     vk.Instance
	procs      *instanceProcs
	extensions []string

	mu         sync.Mutex
	gpus       []vk.PhysicalDevice
	surfaces   handles[vk.Surface]
	messengers handles[vk.DebugReportCallback]
}

func newInstance(handle vk.Instance, procs *instanceProcs, extensions []string) *Instance {
	return &Instance{
		handle:     handle,
		procs:      procs,
		extensions: extensions,
	}
}

// Native returns the vk.Instance.
func (i *Instance) Native() interface{} {
	return i.handle
}

// PhysicalDevices implements gfx.Instance. Handles are stable for the
// lifetime of the instance.
func (i *Instance) PhysicalDevices() ([]gfx.PhysicalDevice, error) {
	i.mu.Lock()
	defer i.mu.Unlock()
	if i.gpus == nil {
		var count uint32
		if err := check(vk.EnumeratePhysicalDevices(i.handle, &count, nil), "vk.EnumeratePhysicalDevices"); err != nil {
			return nil, err
		}
		gpus := make([]vk.PhysicalDevice, count)
		if err := check(vk.EnumeratePhysicalDevices(i.handle, &count, gpus), "vk.EnumeratePhysicalDevices"); err != nil {
			return nil, err
		}
		i.gpus = gpus[:count]
	}
	out := make([]gfx.PhysicalDevice, len(i.gpus))
	for n := range i.gpus {
		out[n] = gfx.PhysicalDevice(n + 1)
	}
	return out, nil
}

func (i *Instance) gpu(pd gfx.PhysicalDevice) (vk.PhysicalDevice, error) {
	i.mu.Lock()
	defer i.mu.Unlock()
	if pd == 0 || int(pd) > len(i.gpus) {
		return nil, errors.Wrapf(gfx.ErrorInitializationFailed, "unknown physical device %d", pd)
	}
	return i.gpus[pd-1], nil
}

func (i *Instance) surface(s gfx.Surface) (vk.Surface, error) {
	i.mu.Lock()
	defer i.mu.Unlock()
	surface, ok := i.surfaces.get(uint64(s))
	if !ok {
		return nil, errors.Wrapf(gfx.ErrorSurfaceLost, "unknown surface %d", s)
	}
	return surface, nil
}

// Properties implements gfx.Instance. Mesh shading limits are filled in
// when the device has the extension.
func (i *Instance) Properties(pd gfx.PhysicalDevice) (gfx.PhysicalDeviceProperties, error) {
	gpu, err := i.gpu(pd)
	if err != nil {
		return gfx.PhysicalDeviceProperties{}, err
	}
	var props vk.PhysicalDeviceProperties
	vk.GetPhysicalDeviceProperties(gpu, &props)
	out := physicalDeviceProperties(props)

	if i.hasDeviceExtension(gpu, meshShaderExtension) {
		out.MeshShader, _ = i.procs.meshShaderProperties(uintptr(unsafe.Pointer(gpu)))
	}
	return out, nil
}

// MemoryProperties implements gfx.Instance.
func (i *Instance) MemoryProperties(pd gfx.PhysicalDevice) (gfx.MemoryProperties, error) {
	gpu, err := i.gpu(pd)
	if err != nil {
		return gfx.MemoryProperties{}, err
	}
	var props vk.PhysicalDeviceMemoryProperties
	vk.GetPhysicalDeviceMemoryProperties(gpu, &props)
	return memoryProperties(props), nil
}

// QueueFamilies implements gfx.Instance.
func (i *Instance) QueueFamilies(pd gfx.PhysicalDevice) ([]gfx.QueueFamilyProperties, error) {
	gpu, err := i.gpu(pd)
	if err != nil {
		return nil, err
	}
	var count uint32
	vk.GetPhysicalDeviceQueueFamilyProperties(gpu, &count, nil)
	families := make([]vk.QueueFamilyProperties, count)
	vk.GetPhysicalDeviceQueueFamilyProperties(gpu, &count, families)
	return queueFamilyProperties(families[:count]), nil
}

// Features implements gfx.Instance.
func (i *Instance) Features(pd gfx.PhysicalDevice) (gfx.Features, error) {
	gpu, err := i.gpu(pd)
	if err != nil {
		return gfx.Features{}, err
	}
	var f vk.PhysicalDeviceFeatures
	vk.GetPhysicalDeviceFeatures(gpu, &f)
	out := features(f)
	if i.hasDeviceExtension(gpu, meshShaderExtension) {
		out.TaskShader, out.MeshShader = i.procs.meshShaderFeatures(uintptr(unsafe.Pointer(gpu)))
	}
	return out, nil
}

// DeviceLayers implements gfx.Instance.
func (i *Instance) DeviceLayers(pd gfx.PhysicalDevice) ([]gfx.LayerProperties, error) {
	gpu, err := i.gpu(pd)
	if err != nil {
		return nil, err
	}
	var count uint32
	if err := check(vk.EnumerateDeviceLayerProperties(gpu, &count, nil), "vk.EnumerateDeviceLayerProperties"); err != nil {
		return nil, err
	}
	layers := make([]vk.LayerProperties, count)
	if err := check(vk.EnumerateDeviceLayerProperties(gpu, &count, layers), "vk.EnumerateDeviceLayerProperties"); err != nil {
		return nil, err
	}
	return layerProperties(layers[:count]), nil
}

// DeviceExtensions implements gfx.Instance.
func (i *Instance) DeviceExtensions(pd gfx.PhysicalDevice) ([]gfx.ExtensionProperties, error) {
	gpu, err := i.gpu(pd)
	if err != nil {
		return nil, err
	}
	return deviceExtensions(gpu)
}

func deviceExtensions(gpu vk.PhysicalDevice) ([]gfx.ExtensionProperties, error) {
	var count uint32
	if err := check(vk.EnumerateDeviceExtensionProperties(gpu, "", &count, nil), "vk.EnumerateDeviceExtensionProperties"); err != nil {
		return nil, err
	}
	extensions := make([]vk.ExtensionProperties, count)
	if err := check(vk.EnumerateDeviceExtensionProperties(gpu, "", &count, extensions), "vk.EnumerateDeviceExtensionProperties"); err != nil {
		return nil, err
	}
	return extensionProperties(extensions[:count]), nil
}

func (i *Instance) hasDeviceExtension(gpu vk.PhysicalDevice, name string) bool {
	extensions, err := deviceExtensions(gpu)
	if err != nil {
		return false
	}
	for _, ext := range extensions {
		if ext.Name == name {
			return true
		}
	}
	return false
}

func contains(names []string, name string) bool {
	for _, n := range names {
		if n == name {
			return true
		}
	}
	return false
}

// SurfaceSupport implements gfx.Instance.
func (i *Instance) SurfaceSupport(pd gfx.PhysicalDevice, family uint32, s gfx.Surface) (bool, error) {
	gpu, err := i.gpu(pd)
	if err != nil {
		return false, err
	}
	surface, err := i.surface(s)
	if err != nil {
		return false, err
	}
	var supported vk.Bool32
	if err := check(vk.GetPhysicalDeviceSurfaceSupport(gpu, family, surface, &supported), "vk.GetPhysicalDeviceSurfaceSupport"); err != nil {
		return false, err
	}
	return supported == vk.True, nil
}

// SurfaceCapabilities implements gfx.Instance.
func (i *Instance) SurfaceCapabilities(pd gfx.PhysicalDevice, s gfx.Surface) (gfx.SurfaceCapabilities, error) {
	gpu, err := i.gpu(pd)
	if err != nil {
		return gfx.SurfaceCapabilities{}, err
	}
	surface, err := i.surface(s)
	if err != nil {
		return gfx.SurfaceCapabilities{}, err
	}
	var caps vk.SurfaceCapabilities
	if err := check(vk.GetPhysicalDeviceSurfaceCapabilities(gpu, surface, &caps), "vk.GetPhysicalDeviceSurfaceCapabilities"); err != nil {
		return gfx.SurfaceCapabilities{}, err
	}
	return surfaceCapabilities(caps), nil
}

// SurfaceFormats implements gfx.Instance.
func (i *Instance) SurfaceFormats(pd gfx.PhysicalDevice, s gfx.Surface) ([]gfx.SurfaceFormat, error) {
	gpu, err := i.gpu(pd)
	if err != nil {
		return nil, err
	}
	surface, err := i.surface(s)
	if err != nil {
		return nil, err
	}
	var count uint32
	if err := check(vk.GetPhysicalDeviceSurfaceFormats(gpu, surface, &count, nil), "vk.GetPhysicalDeviceSurfaceFormats"); err != nil {
		return nil, err
	}
	formats := make([]vk.SurfaceFormat, count)
	if err := check(vk.GetPhysicalDeviceSurfaceFormats(gpu, surface, &count, formats), "vk.GetPhysicalDeviceSurfaceFormats"); err != nil {
		return nil, err
	}
	return surfaceFormats(formats[:count]), nil
}

// SurfacePresentModes implements gfx.Instance.
func (i *Instance) SurfacePresentModes(pd gfx.PhysicalDevice, s gfx.Surface) ([]gfx.PresentMode, error) {
	gpu, err := i.gpu(pd)
	if err != nil {
		return nil, err
	}
	surface, err := i.surface(s)
	if err != nil {
		return nil, err
	}
	var count uint32
	if err := check(vk.GetPhysicalDeviceSurfacePresentModes(gpu, surface, &count, nil), "vk.GetPhysicalDeviceSurfacePresentModes"); err != nil {
		return nil, err
	}
	modes := make([]vk.PresentMode, count)
	if err := check(vk.GetPhysicalDeviceSurfacePresentModes(gpu, surface, &count, modes), "vk.GetPhysicalDeviceSurfacePresentModes"); err != nil {
		return nil, err
	}
	out := make([]gfx.PresentMode, count)
	for n, mode := range modes[:count] {
		out[n] = gfx.PresentMode(mode)
	}
	return out, nil
}

// ImportSurface implements gfx.Instance. raw is a VkSurfaceKHR created on
// this instance.
func (i *Instance) ImportSurface(raw uintptr) (gfx.Surface, error) {
	if raw == 0 {
		return 0, errors.Wrap(gfx.ErrorSurfaceLost, "ImportSurface(): null surface")
	}
	i.mu.Lock()
	defer i.mu.Unlock()
	return gfx.Surface(i.surfaces.add(vk.SurfaceFromPointer(raw))), nil
}

// DestroySurface implements gfx.Instance.
func (i *Instance) DestroySurface(s gfx.Surface) {
	i.mu.Lock()
	surface, ok := i.surfaces.remove(uint64(s))
	i.mu.Unlock()
	if ok {
		vk.DestroySurface(i.handle, surface, nil)
	}
}

// CreateDebugMessenger implements gfx.Instance with VK_EXT_debug_report.
func (i *Instance) CreateDebugMessenger(info gfx.DebugMessengerCreateInfo) (gfx.DebugMessenger, error) {
	if !contains(i.extensions, debugReportExtension) {
		return 0, errors.Wrapf(gfx.ErrorExtensionNotPresent, "CreateDebugMessenger(): %s not enabled", debugReportExtension)
	}
	handler := info.Handler
	categories := info.Categories
	var callback vk.DebugReportCallback
	if err := check(vk.CreateDebugReportCallback(i.handle, &vk.DebugReportCallbackCreateInfo{
		SType: vk.StructureTypeDebugReportCallbackCreateInfo,
		Flags: debugReportFlags(info.Severities, info.Categories),
		PfnCallback: func(flags vk.DebugReportFlags, _ vk.DebugReportObjectType, _ uint64, _ uint,
			code int32, layer string, text string, _ unsafe.Pointer) vk.Bool32 {
			msg := debugMessage(flags, code, layer, text)
			if msg.Categories&categories != 0 {
				handler(msg)
			}
			return vk.False
		},
	}, nil, &callback), "vk.CreateDebugReportCallback"); err != nil {
		return 0, err
	}
	i.mu.Lock()
	defer i.mu.Unlock()
	return gfx.DebugMessenger(i.messengers.add(callback)), nil
}

// DestroyDebugMessenger implements gfx.Instance.
func (i *Instance) DestroyDebugMessenger(m gfx.DebugMessenger) {
	i.mu.Lock()
	callback, ok := i.messengers.remove(uint64(m))
	i.mu.Unlock()
	if ok {
		vk.DestroyDebugReportCallback(i.handle, callback, nil)
	}
}

// CreateDevice implements gfx.Instance. Task and mesh shading features
// are chained onto the create info when requested.
func (i *Instance) CreateDevice(pd gfx.PhysicalDevice, info gfx.DeviceCreateInfo) (gfx.Device, error) {
	gpu, err := i.gpu(pd)
	if err != nil {
		return nil, err
	}
	queues := make([]vk.DeviceQueueCreateInfo, len(info.Queues))
	for n, q := range info.Queues {
		queues[n] = vk.DeviceQueueCreateInfo{
			SType:            vk.StructureTypeDeviceQueueCreateInfo,
			QueueFamilyIndex: q.FamilyIndex,
			QueueCount:       uint32(len(q.Priorities)),
			PQueuePriorities: q.Priorities,
		}
	}
	extensions := cStrings(info.Extensions)

	var pinner runtime.Pinner
	defer pinner.Unpin()
	var next unsafe.Pointer
	if info.Features.TaskShader || info.Features.MeshShader {
		mesh := &meshShaderFeaturesNV{
			sType:      structureTypeMeshShaderFeaturesNV,
			taskShader: uint32(bool32(info.Features.TaskShader)),
			meshShader: uint32(bool32(info.Features.MeshShader)),
		}
		pinner.Pin(mesh)
		next = unsafe.Pointer(mesh)
	}

	var device vk.Device
	if err := check(vk.CreateDevice(gpu, &vk.DeviceCreateInfo{
		SType:                   vk.StructureTypeDeviceCreateInfo,
		PNext:                   next,
		QueueCreateInfoCount:    uint32(len(queues)),
		PQueueCreateInfos:       queues,
		EnabledExtensionCount:   uint32(len(extensions)),
		PpEnabledExtensionNames: extensions,
		PEnabledFeatures:        []vk.PhysicalDeviceFeatures{vkFeatures(info.Features)},
	}, nil, &device), "vk.CreateDevice"); err != nil {
		return nil, err
	}
	mesh := contains(info.Extensions, meshShaderExtension)
	return newDevice(i, device, i.procs.device(uintptr(unsafe.Pointer(device)), mesh)), nil
}

// Destroy implements gfx.Instance.
func (i *Instance) Destroy() {
	vk.DestroyInstance(i.handle, nil)
}
