// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

// Package gfx defines the graphics driver surface that backends must implement.
// Everything the driver hands out is an opaque handle or a plain value snapshot,
// so code above this package never touches binding types.
package gfx

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/cockroachdb/errors"
)

// Releasable defines any item holding driver resources that can be freed.
type Releasable interface {

	// Release gives up the caller's claim on the resources.
	Release()
}

// Opaque driver handles. The zero value of every handle is the null handle.
type (
	// PhysicalDevice identifies an enumerated GPU.
	PhysicalDevice uint64
	// Surface identifies a window-bound presentation target.
	Surface uint64
	// DebugMessenger identifies an installed diagnostics callback.
	DebugMessenger uint64
	// Queue identifies a device queue.
	Queue uint64
	// RenderPass identifies a render target description.
	RenderPass uint64
	// Image identifies an image, swapchain images are owned by the driver.
	Image uint64
	// ImageView identifies a view over an image.
	ImageView uint64
	// Framebuffer identifies a set of attachments bound to a render pass.
	Framebuffer uint64
	// Swapchain identifies a presentable chain of images.
	Swapchain uint64
	// CommandBuffer identifies a command buffer being recorded.
	CommandBuffer uint64
)

// Version is a packed driver API version.
type Version uint32

// MakeVersion packs major, minor and patch into a Version.
func MakeVersion(major, minor, patch uint32) Version {
	return Version(major<<22 | (minor&0x3ff)<<12 | patch&0xfff)
}

// Major returns the major component.
func (v Version) Major() uint32 {
	return uint32(v) >> 22
}

// Minor returns the minor component.
func (v Version) Minor() uint32 {
	return uint32(v) >> 12 & 0x3ff
}

// Patch returns the patch component.
func (v Version) Patch() uint32 {
	return uint32(v) & 0xfff
}

// AtLeast reports whether v is not older than major.minor.
func (v Version) AtLeast(major, minor uint32) bool {
	return v >= MakeVersion(major, minor, 0)
}

func (v Version) String() string {
	return fmt.Sprintf("%d.%d.%d", v.Major(), v.Minor(), v.Patch())
}

// versionBits are the widths of the major, minor and patch fields.
var versionBits = [3]int{10, 10, 12}

// ParseVersion reads a "major.minor" or "major.minor.patch" string. Each
// component must be a decimal number that fits its field.
func ParseVersion(s string) (Version, error) {
	parts := strings.Split(s, ".")
	if len(parts) < 2 || len(parts) > 3 {
		return 0, errors.Newf("gfx.ParseVersion(): malformed version %q", s)
	}
	var components [3]uint32
	for i, part := range parts {
		n, err := strconv.ParseUint(part, 10, versionBits[i])
		if err != nil {
			return 0, errors.Newf("gfx.ParseVersion(): malformed version %q", s)
		}
		components[i] = uint32(n)
	}
	return MakeVersion(components[0], components[1], components[2]), nil
}

// Extent2D is a two dimensional size in pixels.
type Extent2D struct {
	Width  uint32
	Height uint32
}

// Extent3D is a three dimensional size in texels.
type Extent3D struct {
	Width  uint32
	Height uint32
	Depth  uint32
}

// UndefinedExtent is reported as the current surface extent when the
// window decides the size of the swapchain.
const UndefinedExtent = 0xFFFFFFFF
