// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package vkr

import (
	"syscall"

	"github.com/cockroachdb/errors"
)

// openGetInstanceProcAddr loads the system Vulkan library.
func openGetInstanceProcAddr() (uintptr, error) {
	lib, err := syscall.LoadLibrary("vulkan-1.dll")
	if err != nil {
		return 0, errors.Wrap(err, "no vulkan library")
	}
	sym, err := syscall.GetProcAddress(lib, "vkGetInstanceProcAddr")
	if err != nil {
		return 0, errors.Wrap(err, "vkGetInstanceProcAddr in vulkan-1.dll")
	}
	return sym, nil
}
