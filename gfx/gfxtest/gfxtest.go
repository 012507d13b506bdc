// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

// Package gfxtest implements an in-memory graphics driver for tests.
//
// The driver tracks every handle it gives out together with the handles it
// was created from. Destroying a handle while something created from it is
// still live is recorded as a violation, as is destroying a handle twice.
package gfxtest

import (
	"fmt"
	"sort"
	"sync"

	"github.com/cockroachdb/errors"

	"github.com/devblok/koruvk/gfx"
)

// Well-known names used by the default configuration.
const (
	ValidationLayer         = "VK_LAYER_KHRONOS_validation"
	SurfaceExtension        = "VK_KHR_surface"
	XlibSurfaceExtension    = "VK_KHR_xlib_surface"
	DebugReportExtension    = "VK_EXT_debug_report"
	SurfaceCaps2Extension   = "VK_KHR_get_surface_capabilities2"
	SwapchainExtension      = "VK_KHR_swapchain"
	MeshShaderExtension     = "VK_NV_mesh_shader"
	PortabilityExtension    = "VK_KHR_portability_subset"
	DefaultRawSurface       = 0xC0FFEE
	defaultDeviceLocalBytes = 8 << 30
)

// QueueFamily is a scripted queue family.
type QueueFamily struct {
	gfx.QueueFamilyProperties

	// Present reports support for presenting to any surface.
	Present bool
}

// PhysicalDevice is a scripted GPU.
type PhysicalDevice struct {
	Properties    gfx.PhysicalDeviceProperties
	Memory        gfx.MemoryProperties
	QueueFamilies []QueueFamily
	Features      gfx.Features
	Layers        []gfx.LayerProperties
	Extensions    []gfx.ExtensionProperties
	Capabilities  gfx.SurfaceCapabilities
	Formats       []gfx.SurfaceFormat
	PresentModes  []gfx.PresentMode
}

// Driver is a scripted driver implementing gfx.Loader.
// Fields may be changed freely until the first instance is created.
type Driver struct {
	Version    gfx.Version
	Layers     []gfx.LayerProperties
	Extensions []gfx.ExtensionProperties
	Devices    []PhysicalDevice

	mu         sync.Mutex
	next       uint64
	objects    map[uint64]*object
	violations []string
	destroyed  []string
	failures   map[string]*failure
	calls      map[string]int
	handlers   map[uint64]gfx.DebugMessengerCreateInfo

	instanceInfos  []gfx.InstanceCreateInfo
	deviceInfos    []gfx.DeviceCreateInfo
	renderPasses   []gfx.RenderPassCreateInfo
	swapchainInfos []gfx.SwapchainCreateInfo
	meshDraws      int
}

type object struct {
	id      uint64
	kind    string
	parents []uint64
	owned   bool
}

type failure struct {
	result gfx.Result
	after  int
}

// Extensions builds extension properties from names.
func Extensions(names ...string) []gfx.ExtensionProperties {
	props := make([]gfx.ExtensionProperties, len(names))
	for i, name := range names {
		props[i] = gfx.ExtensionProperties{Name: name, SpecVersion: 1}
	}
	return props
}

// Layers builds layer properties from names.
func Layers(names ...string) []gfx.LayerProperties {
	props := make([]gfx.LayerProperties, len(names))
	for i, name := range names {
		props[i] = gfx.LayerProperties{Name: name, SpecVersion: gfx.MakeVersion(1, 2, 0), ImplementationVersion: 1}
	}
	return props
}

// Family builds a queue family.
func Family(flags gfx.QueueFlags, count uint32, present bool) QueueFamily {
	return QueueFamily{
		QueueFamilyProperties: gfx.QueueFamilyProperties{Flags: flags, Count: count},
		Present:               present,
	}
}

// GPU builds a presentable device of the given class with one device local
// heap of localBytes and one host heap.
func GPU(name string, class gfx.PhysicalDeviceType, localBytes uint64) PhysicalDevice {
	return PhysicalDevice{
		Properties: gfx.PhysicalDeviceProperties{
			APIVersion: gfx.MakeVersion(1, 2, 0),
			DeviceType: class,
			DeviceName: name,
			VendorID:   0x10de,
			Limits: gfx.Limits{
				MaxImageDimension2D:  16384,
				MaxFramebufferWidth:  16384,
				MaxFramebufferHeight: 16384,
				MaxFramebufferLayers: 2048,
				MaxColorAttachments:  8,
			},
		},
		Memory: gfx.MemoryProperties{
			Types: []gfx.MemoryType{
				{Flags: gfx.MemoryPropertyDeviceLocal, HeapIndex: 0},
				{Flags: gfx.MemoryPropertyHostVisible | gfx.MemoryPropertyHostCoherent, HeapIndex: 1},
			},
			Heaps: []gfx.MemoryHeap{
				{Size: localBytes, Flags: gfx.MemoryHeapDeviceLocal},
				{Size: 16 << 30},
			},
		},
		QueueFamilies: []QueueFamily{
			Family(gfx.QueueGraphics|gfx.QueueCompute|gfx.QueueTransfer, 4, true),
			Family(gfx.QueueCompute, 2, false),
		},
		Features:   gfx.Features{SamplerAnisotropy: true, GeometryShader: true},
		Extensions: Extensions(SwapchainExtension),
		Capabilities: gfx.SurfaceCapabilities{
			MinImageCount:           2,
			MaxImageCount:           8,
			CurrentExtent:           gfx.Extent2D{Width: 800, Height: 600},
			MinImageExtent:          gfx.Extent2D{Width: 1, Height: 1},
			MaxImageExtent:          gfx.Extent2D{Width: 16384, Height: 16384},
			MaxImageArrayLayers:     1,
			SupportedTransforms:     gfx.SurfaceTransformIdentity,
			CurrentTransform:        gfx.SurfaceTransformIdentity,
			SupportedCompositeAlpha: gfx.CompositeAlphaOpaque,
			SupportedUsage:          gfx.ImageUsageColorAttachment | gfx.ImageUsageTransferDst,
		},
		Formats: []gfx.SurfaceFormat{
			{Format: gfx.FormatB8G8R8A8Unorm, ColorSpace: gfx.ColorSpaceSrgbNonlinear},
			{Format: gfx.FormatB8G8R8A8Srgb, ColorSpace: gfx.ColorSpaceSrgbNonlinear},
		},
		PresentModes: []gfx.PresentMode{gfx.PresentModeFifo, gfx.PresentModeMailbox},
	}
}

// NewDriver returns a 1.2 driver with the validation layer, the surface,
// diagnostics and surface capabilities 2 extensions, and a single discrete GPU.
func NewDriver() *Driver {
	return &Driver{
		Version:    gfx.MakeVersion(1, 2, 0),
		Layers:     Layers(ValidationLayer),
		Extensions: Extensions(SurfaceExtension, XlibSurfaceExtension, DebugReportExtension, SurfaceCaps2Extension),
		Devices:    []PhysicalDevice{GPU("Mock Discrete", gfx.PhysicalDeviceTypeDiscreteGPU, defaultDeviceLocalBytes)},
	}
}

// Fail makes the named call fail with result once it succeeded after times.
func (d *Driver) Fail(call string, result gfx.Result, after int) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.failures == nil {
		d.failures = make(map[string]*failure)
	}
	d.failures[call] = &failure{result: result, after: after}
}

// check counts a call and returns its scripted failure.
func (d *Driver) check(call string) error {
	if d.calls == nil {
		d.calls = make(map[string]int)
	}
	d.calls[call]++
	if f, ok := d.failures[call]; ok && d.calls[call] > f.after {
		return errors.Wrapf(f.result, "%s()", call)
	}
	return nil
}

// Calls returns how many times the named call was made.
func (d *Driver) Calls(call string) int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.calls[call]
}

func (d *Driver) create(kind string, owned bool, parents ...uint64) uint64 {
	if d.objects == nil {
		d.objects = make(map[uint64]*object)
	}
	for _, parent := range parents {
		if _, ok := d.objects[parent]; !ok {
			d.violations = append(d.violations, fmt.Sprintf("%s created from dead handle %d", kind, parent))
		}
	}
	d.next++
	d.objects[d.next] = &object{id: d.next, kind: kind, parents: parents, owned: owned}
	return d.next
}

// dependents lists the live, not owned objects created from id, looking
// through owned children such as swapchain images.
func (d *Driver) dependents(id uint64) []*object {
	var deps []*object
	for _, o := range d.objects {
		for _, parent := range o.parents {
			if parent != id {
				continue
			}
			if o.owned {
				deps = append(deps, d.dependents(o.id)...)
			} else {
				deps = append(deps, o)
			}
			break
		}
	}
	return deps
}

func (d *Driver) removeOwned(id uint64) {
	for _, o := range d.objects {
		if o.owned && len(o.parents) > 0 && o.parents[0] == id {
			delete(d.objects, o.id)
		}
	}
}

func (d *Driver) destroy(kind string, id uint64) {
	d.mu.Lock()
	defer d.mu.Unlock()
	o, ok := d.objects[id]
	if !ok || o.kind != kind {
		d.violations = append(d.violations, fmt.Sprintf("destroy of unknown %s %d", kind, id))
		return
	}
	deps := d.dependents(id)
	sort.Slice(deps, func(i, j int) bool { return deps[i].id < deps[j].id })
	for _, dep := range deps {
		d.violations = append(d.violations, fmt.Sprintf("%s %d destroyed while %s %d is live", kind, id, dep.kind, dep.id))
	}
	d.removeOwned(id)
	delete(d.objects, id)
	d.destroyed = append(d.destroyed, kind)
}

func (d *Driver) alive(id uint64) bool {
	_, ok := d.objects[id]
	return ok
}

// Violations returns every ordering violation recorded so far.
func (d *Driver) Violations() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]string(nil), d.violations...)
}

// Destroyed returns the kinds of destroyed handles in destruction order.
func (d *Driver) Destroyed() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]string(nil), d.destroyed...)
}

// Live returns a sorted description of every handle not yet destroyed.
func (d *Driver) Live() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	var live []string
	for _, o := range d.objects {
		if !o.owned {
			live = append(live, fmt.Sprintf("%s %d", o.kind, o.id))
		}
	}
	sort.Strings(live)
	return live
}

// InstanceInfos returns the create infos of every instance.
func (d *Driver) InstanceInfos() []gfx.InstanceCreateInfo {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]gfx.InstanceCreateInfo(nil), d.instanceInfos...)
}

// DeviceInfos returns the create infos of every logical device.
func (d *Driver) DeviceInfos() []gfx.DeviceCreateInfo {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]gfx.DeviceCreateInfo(nil), d.deviceInfos...)
}

// RenderPassInfos returns the create infos of every render pass.
func (d *Driver) RenderPassInfos() []gfx.RenderPassCreateInfo {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]gfx.RenderPassCreateInfo(nil), d.renderPasses...)
}

// SwapchainInfos returns the create infos of every swapchain.
func (d *Driver) SwapchainInfos() []gfx.SwapchainCreateInfo {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]gfx.SwapchainCreateInfo(nil), d.swapchainInfos...)
}

// MeshDraws returns the number of recorded mesh task draws.
func (d *Driver) MeshDraws() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.meshDraws
}

// Emit delivers a diagnostic to every messenger whose filter accepts it.
func (d *Driver) Emit(msg gfx.DebugMessage) {
	d.mu.Lock()
	var handlers []gfx.DebugHandler
	for _, info := range d.handlers {
		if info.Severities&msg.Severity != 0 && info.Categories&msg.Categories != 0 {
			handlers = append(handlers, info.Handler)
		}
	}
	d.mu.Unlock()
	for _, h := range handlers {
		h(msg)
	}
}

// InstanceVersion implements gfx.Loader.
func (d *Driver) InstanceVersion() (gfx.Version, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.check("InstanceVersion"); err != nil {
		return 0, err
	}
	return d.Version, nil
}

// InstanceLayers implements gfx.Loader.
func (d *Driver) InstanceLayers() ([]gfx.LayerProperties, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.check("InstanceLayers"); err != nil {
		return nil, err
	}
	return append([]gfx.LayerProperties(nil), d.Layers...), nil
}

// InstanceExtensions implements gfx.Loader.
func (d *Driver) InstanceExtensions() ([]gfx.ExtensionProperties, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.check("InstanceExtensions"); err != nil {
		return nil, err
	}
	return append([]gfx.ExtensionProperties(nil), d.Extensions...), nil
}

// CreateInstance implements gfx.Loader.
func (d *Driver) CreateInstance(info gfx.InstanceCreateInfo) (gfx.Instance, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.check("CreateInstance"); err != nil {
		return nil, err
	}
	for _, name := range info.Layers {
		if !hasLayer(d.Layers, name) {
			return nil, errors.Wrapf(gfx.ErrorLayerNotPresent, "CreateInstance(): %s", name)
		}
	}
	for _, name := range info.Extensions {
		if !hasExtension(d.Extensions, name) {
			return nil, errors.Wrapf(gfx.ErrorExtensionNotPresent, "CreateInstance(): %s", name)
		}
	}
	d.instanceInfos = append(d.instanceInfos, info)
	return &Instance{
		driver:     d,
		id:         d.create("instance", false),
		extensions: append([]string(nil), info.Extensions...),
	}, nil
}

func hasLayer(props []gfx.LayerProperties, name string) bool {
	for _, p := range props {
		if p.Name == name {
			return true
		}
	}
	return false
}

func hasExtension(props []gfx.ExtensionProperties, name string) bool {
	for _, p := range props {
		if p.Name == name {
			return true
		}
	}
	return false
}
