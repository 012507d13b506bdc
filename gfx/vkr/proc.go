// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package vkr

import (
	"unsafe"

	"github.com/ebitengine/purego"
)

// loaderProcs are the global entry points resolved through
// vkGetInstanceProcAddr.
type loaderProcs struct {
	getInstanceProcAddr      func(instance uintptr, name string) uintptr
	enumerateInstanceVersion func(version *uint32) int32
}

func newLoaderProcs(gipa uintptr) *loaderProcs {
	p := &loaderProcs{}
	purego.RegisterFunc(&p.getInstanceProcAddr, gipa)
	resolve(&p.enumerateInstanceVersion, p.getInstanceProcAddr(0, "vkEnumerateInstanceVersion"))
	return p
}

// instanceProcs are instance level entry points. Each may be nil when
// the driver does not have it.
type instanceProcs struct {
	getPhysicalDeviceProperties2 func(gpu uintptr, properties unsafe.Pointer)
	getPhysicalDeviceFeatures2   func(gpu uintptr, features unsafe.Pointer)
	getDeviceProcAddr            func(device uintptr, name string) uintptr
}

func (p *loaderProcs) instance(instance uintptr) *instanceProcs {
	ip := &instanceProcs{}
	lookup := func(names ...string) uintptr {
		for _, name := range names {
			if fn := p.getInstanceProcAddr(instance, name); fn != 0 {
				return fn
			}
		}
		return 0
	}
	resolve(&ip.getPhysicalDeviceProperties2, lookup("vkGetPhysicalDeviceProperties2", "vkGetPhysicalDeviceProperties2KHR"))
	resolve(&ip.getPhysicalDeviceFeatures2, lookup("vkGetPhysicalDeviceFeatures2", "vkGetPhysicalDeviceFeatures2KHR"))
	resolve(&ip.getDeviceProcAddr, lookup("vkGetDeviceProcAddr"))
	return ip
}

// deviceProcs are device level entry points of optional extensions.
type deviceProcs struct {
	cmdDrawMeshTasks func(cmd uintptr, taskCount, firstTask uint32)
}

func (ip *instanceProcs) device(device uintptr, meshShader bool) *deviceProcs {
	dp := &deviceProcs{}
	if ip.getDeviceProcAddr == nil {
		return dp
	}
	if meshShader {
		resolve(&dp.cmdDrawMeshTasks, ip.getDeviceProcAddr(device, "vkCmdDrawMeshTasksNV"))
	}
	return dp
}

// resolve binds fn to the C function at addr. fn stays nil for a zero addr.
func resolve(fn interface{}, addr uintptr) {
	if addr != 0 {
		purego.RegisterFunc(fn, addr)
	}
}
