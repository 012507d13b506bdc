// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package core

import (
	"github.com/cockroachdb/errors"

	"github.com/devblok/koruvk/gfx"
)

// Well-known capability names the backend itself depends on.
const (
	LayerValidation = "VK_LAYER_KHRONOS_validation"

	ExtensionSurface                 = "VK_KHR_surface"
	ExtensionDebugReport             = "VK_EXT_debug_report"
	ExtensionGetSurfaceCapabilities2 = "VK_KHR_get_surface_capabilities2"

	ExtensionPortabilitySubset = "VK_KHR_portability_subset"
	ExtensionSwapchain         = "VK_KHR_swapchain"
	ExtensionMeshShader        = "VK_NV_mesh_shader"
)

// CapabilitySet tracks the names a driver supports and the subset that
// has been enabled. Names are only ever added to the enabled list, in
// the order they were enabled. A set is not safe for concurrent use.
type CapabilitySet struct {
	kind      string
	supported []string
	enabled   []string
}

// NewCapabilitySet creates a set over the supported names. kind names
// what the set holds in error messages.
func NewCapabilitySet(kind string, supported []string) *CapabilitySet {
	return &CapabilitySet{
		kind:      kind,
		supported: append([]string(nil), supported...),
	}
}

// Supported returns the names reported by the driver.
func (c *CapabilitySet) Supported() []string {
	return append([]string(nil), c.supported...)
}

// Enabled returns the enabled names in the order they were enabled.
func (c *CapabilitySet) Enabled() []string {
	return append([]string(nil), c.enabled...)
}

// IsSupported reports whether the driver supports name.
func (c *CapabilitySet) IsSupported(name string) bool {
	return contains(c.supported, name)
}

// IsEnabled reports whether name has been enabled.
func (c *CapabilitySet) IsEnabled(name string) bool {
	return contains(c.enabled, name)
}

// TryEnable enables name and reports whether it did. Names the driver
// does not support and names already enabled are left alone.
func (c *CapabilitySet) TryEnable(name string) bool {
	if !c.IsSupported(name) || c.IsEnabled(name) {
		return false
	}
	c.enabled = append(c.enabled, name)
	return true
}

// Enable enables name, failing if the driver does not support it.
func (c *CapabilitySet) Enable(name string) error {
	if !c.IsSupported(name) {
		return errors.WithHintf(
			errors.Wrapf(ErrCapabilityRequiredButUnsupported, "%s %s", c.kind, name),
			"the driver supports %d %ss, %s is not one of them", len(c.supported), c.kind, name)
	}
	c.TryEnable(name)
	return nil
}

func contains(names []string, name string) bool {
	for _, n := range names {
		if n == name {
			return true
		}
	}
	return false
}

// Layers is the capability set of instance layers.
type Layers struct {
	CapabilitySet
}

// NewLayers creates the layer set from the driver's layer list.
func NewLayers(props []gfx.LayerProperties) *Layers {
	names := make([]string, len(props))
	for i, p := range props {
		names[i] = p.Name
	}
	return &Layers{*NewCapabilitySet("layer", names)}
}

// Validation reports whether the validation layer is enabled.
func (l *Layers) Validation() bool {
	return l.IsEnabled(LayerValidation)
}

// InstanceExtensions is the capability set of instance extensions.
type InstanceExtensions struct {
	CapabilitySet
}

// NewInstanceExtensions creates the instance extension set.
func NewInstanceExtensions(props []gfx.ExtensionProperties) *InstanceExtensions {
	return &InstanceExtensions{*NewCapabilitySet("instance extension", extensionNames(props))}
}

// Surface reports whether the surface extension is enabled.
func (e *InstanceExtensions) Surface() bool {
	return e.IsEnabled(ExtensionSurface)
}

// DebugReport reports whether the diagnostics extension is enabled.
func (e *InstanceExtensions) DebugReport() bool {
	return e.IsEnabled(ExtensionDebugReport)
}

// GetSurfaceCapabilities2 reports whether the extended surface query
// extension is enabled.
func (e *InstanceExtensions) GetSurfaceCapabilities2() bool {
	return e.IsEnabled(ExtensionGetSurfaceCapabilities2)
}

// DeviceExtensions is the capability set of device extensions.
type DeviceExtensions struct {
	CapabilitySet
}

// NewDeviceExtensions creates the device extension set.
func NewDeviceExtensions(props []gfx.ExtensionProperties) *DeviceExtensions {
	return &DeviceExtensions{*NewCapabilitySet("device extension", extensionNames(props))}
}

// PortabilitySubset reports whether the portability subset extension
// is enabled. Drivers exposing it require it to be enabled.
func (e *DeviceExtensions) PortabilitySubset() bool {
	return e.IsEnabled(ExtensionPortabilitySubset)
}

// Swapchain reports whether the swapchain extension is enabled.
func (e *DeviceExtensions) Swapchain() bool {
	return e.IsEnabled(ExtensionSwapchain)
}

// MeshShader reports whether the mesh shader extension is enabled.
func (e *DeviceExtensions) MeshShader() bool {
	return e.IsEnabled(ExtensionMeshShader)
}

func extensionNames(props []gfx.ExtensionProperties) []string {
	names := make([]string, len(props))
	for i, p := range props {
		names[i] = p.Name
	}
	return names
}
