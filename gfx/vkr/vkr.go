// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

// Package vkr implements the gfx driver interfaces on top of Vulkan.
//
// Calls go through github.com/vulkan-go/vulkan. Entry points that package
// does not bind, such as the version query and the extensible property
// queries, are resolved at runtime and called through purego.
package vkr

import (
	"strings"
	"unsafe"

	"github.com/cockroachdb/errors"
	vk "github.com/vulkan-go/vulkan"

	"github.com/devblok/koruvk/gfx"
)

// Extensions the driver itself depends on.
const (
	debugReportExtension = "VK_EXT_debug_report"
	meshShaderExtension  = "VK_NV_mesh_shader"
)

var (
	_ gfx.Loader             = (*Loader)(nil)
	_ gfx.Instance           = (*Instance)(nil)
	_ gfx.Device             = (*Device)(nil)
	_ gfx.SwapchainDispatch  = swapchainDispatch{}
	_ gfx.MeshShaderDispatch = meshShaderDispatch{}
)

// Loader is the Vulkan entry point.
type Loader struct {
	procs *loaderProcs
}

// NewLoader initializes Vulkan through procAddr, the address of
// vkGetInstanceProcAddr as handed out by a windowing library. A nil
// procAddr loads the system Vulkan library.
func NewLoader(procAddr unsafe.Pointer) (*Loader, error) {
	if procAddr == nil {
		if err := vk.SetDefaultGetInstanceProcAddr(); err != nil {
			return nil, errors.Wrap(err, "vk.SetDefaultGetInstanceProcAddr()")
		}
	} else {
		vk.SetGetInstanceProcAddr(procAddr)
	}
	if err := vk.Init(); err != nil {
		return nil, errors.Wrap(err, "vk.Init()")
	}

	gipa := uintptr(procAddr)
	if gipa == 0 {
		var err error
		if gipa, err = openGetInstanceProcAddr(); err != nil {
			return nil, err
		}
	}
	return &Loader{procs: newLoaderProcs(gipa)}, nil
}

// InstanceVersion implements gfx.Loader. Drivers that predate the version
// query are 1.0.
func (l *Loader) InstanceVersion() (gfx.Version, error) {
	if l.procs.enumerateInstanceVersion == nil {
		return gfx.MakeVersion(1, 0, 0), nil
	}
	var version uint32
	if err := check(vk.Result(l.procs.enumerateInstanceVersion(&version)), "vkEnumerateInstanceVersion"); err != nil {
		return 0, err
	}
	return gfx.Version(version), nil
}

// InstanceLayers implements gfx.Loader.
func (l *Loader) InstanceLayers() ([]gfx.LayerProperties, error) {
	var count uint32
	if err := check(vk.EnumerateInstanceLayerProperties(&count, nil), "vk.EnumerateInstanceLayerProperties"); err != nil {
		return nil, err
	}
	layers := make([]vk.LayerProperties, count)
	if err := check(vk.EnumerateInstanceLayerProperties(&count, layers), "vk.EnumerateInstanceLayerProperties"); err != nil {
		return nil, err
	}
	return layerProperties(layers[:count]), nil
}

// InstanceExtensions implements gfx.Loader.
func (l *Loader) InstanceExtensions() ([]gfx.ExtensionProperties, error) {
	var count uint32
	if err := check(vk.EnumerateInstanceExtensionProperties("", &count, nil), "vk.EnumerateInstanceExtensionProperties"); err != nil {
		return nil, err
	}
	extensions := make([]vk.ExtensionProperties, count)
	if err := check(vk.EnumerateInstanceExtensionProperties("", &count, extensions), "vk.EnumerateInstanceExtensionProperties"); err != nil {
		return nil, err
	}
	return extensionProperties(extensions[:count]), nil
}

// CreateInstance implements gfx.Loader.
func (l *Loader) CreateInstance(info gfx.InstanceCreateInfo) (gfx.Instance, error) {
	appInfo := &vk.ApplicationInfo{
		SType:              vk.StructureTypeApplicationInfo,
		PApplicationName:   cString(info.ApplicationName),
		ApplicationVersion: uint32(info.ApplicationVersion),
		PEngineName:        cString(info.EngineName),
		EngineVersion:      uint32(info.EngineVersion),
		ApiVersion:         uint32(info.APIVersion),
	}
	layers := cStrings(info.Layers)
	extensions := cStrings(info.Extensions)

	var instance vk.Instance
	if err := check(vk.CreateInstance(&vk.InstanceCreateInfo{
		SType:                   vk.StructureTypeInstanceCreateInfo,
		PApplicationInfo:        appInfo,
		EnabledExtensionCount:   uint32(len(extensions)),
		PpEnabledExtensionNames: extensions,
		EnabledLayerCount:       uint32(len(layers)),
		PpEnabledLayerNames:     layers,
	}, nil, &instance), "vk.CreateInstance"); err != nil {
		return nil, err
	}
	if err := vk.InitInstance(instance); err != nil {
		vk.DestroyInstance(instance, nil)
		return nil, errors.Wrap(err, "vk.InitInstance()")
	}
	return newInstance(instance, l.procs.instance(uintptr(unsafe.Pointer(instance))), info.Extensions), nil
}

// check turns a failed result into an error carrying the gfx status.
func check(res vk.Result, call string) error {
	if r := gfx.Result(res); r.Failed() {
		return errors.Wrapf(r, "%s()", call)
	}
	return nil
}

func cString(s string) string {
	if strings.HasSuffix(s, "\x00") {
		return s
	}
	return s + "\x00"
}

func cStrings(names []string) []string {
	out := make([]string, len(names))
	for i, name := range names {
		out[i] = cString(name)
	}
	return out
}

func bool32(b bool) vk.Bool32 {
	if b {
		return vk.True
	}
	return vk.False
}
