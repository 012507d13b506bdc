// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

//go:build darwin || freebsd || linux

package vkr

import (
	"runtime"

	"github.com/cockroachdb/errors"
	"github.com/ebitengine/purego"
)

func libraryNames() []string {
	if runtime.GOOS == "darwin" {
		return []string{"libvulkan.1.dylib", "libvulkan.dylib", "libMoltenVK.dylib"}
	}
	return []string{"libvulkan.so.1", "libvulkan.so"}
}

// openGetInstanceProcAddr loads the system Vulkan library.
func openGetInstanceProcAddr() (uintptr, error) {
	var errs error
	for _, name := range libraryNames() {
		lib, err := purego.Dlopen(name, purego.RTLD_NOW|purego.RTLD_GLOBAL)
		if err != nil {
			errs = errors.CombineErrors(errs, err)
			continue
		}
		sym, err := purego.Dlsym(lib, "vkGetInstanceProcAddr")
		if err != nil {
			return 0, errors.Wrapf(err, "vkGetInstanceProcAddr in %s", name)
		}
		return sym, nil
	}
	return 0, errors.Wrap(errs, "no vulkan library")
}
