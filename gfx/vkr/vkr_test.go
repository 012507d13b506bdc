// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package vkr

import (
	"testing"
	"unsafe"

	"github.com/cockroachdb/errors"
	qt "github.com/frankban/quicktest"
	vk "github.com/vulkan-go/vulkan"

	"github.com/devblok/koruvk/gfx"
)

func TestChainLayout(t *testing.T) {
	c := qt.New(t)

	c.Assert(unsafe.Offsetof(meshShaderFeaturesNV{}.pNext), qt.Equals, uintptr(8))
	c.Assert(unsafe.Sizeof(meshShaderFeaturesNV{}), qt.Equals, uintptr(24))
	c.Assert(unsafe.Offsetof(meshShaderPropertiesNV{}.maxDrawMeshTasksCount), qt.Equals, uintptr(16))
	c.Assert(unsafe.Sizeof(meshShaderPropertiesNV{}), qt.Equals, uintptr(88))
	c.Assert(unsafe.Offsetof(physicalDeviceFeatures2{}.features), qt.Equals, uintptr(16))
	c.Assert(unsafe.Offsetof(physicalDeviceProperties2{}.properties), qt.Equals, uintptr(16))
}

func TestCheck(t *testing.T) {
	c := qt.New(t)

	c.Assert(check(vk.Success, "vk.Fine"), qt.IsNil)
	c.Assert(check(vk.Incomplete, "vk.Fine"), qt.IsNil)

	err := check(vk.ErrorOutOfDeviceMemory, "vk.CreateDevice")
	c.Assert(err, qt.ErrorMatches, `vk.CreateDevice\(\): out of device memory \(-2\)`)
	var result gfx.Result
	c.Assert(errors.As(err, &result), qt.IsTrue)
	c.Assert(result, qt.Equals, gfx.ErrorOutOfDeviceMemory)
}

func TestCString(t *testing.T) {
	c := qt.New(t)

	c.Assert(cString("VK_KHR_surface"), qt.Equals, "VK_KHR_surface\x00")
	c.Assert(cString("VK_KHR_surface\x00"), qt.Equals, "VK_KHR_surface\x00")
	c.Assert(cStrings([]string{"a", "b\x00"}), qt.DeepEquals, []string{"a\x00", "b\x00"})
	c.Assert(cStrings(nil), qt.HasLen, 0)
}

func TestHandles(t *testing.T) {
	c := qt.New(t)

	var h handles[string]
	a := h.add("a")
	b := h.add("b")
	c.Assert(a, qt.Equals, uint64(1))
	c.Assert(b, qt.Equals, uint64(2))

	v, ok := h.get(b)
	c.Assert(ok, qt.IsTrue)
	c.Assert(v, qt.Equals, "b")

	v, ok = h.remove(a)
	c.Assert(ok, qt.IsTrue)
	c.Assert(v, qt.Equals, "a")
	_, ok = h.remove(a)
	c.Assert(ok, qt.IsFalse)
	c.Assert(h.len(), qt.Equals, 1)

	// removed handles are not reused
	c.Assert(h.add("c"), qt.Equals, uint64(3))
}

func TestDebugReportFlags(t *testing.T) {
	c := qt.New(t)

	c.Assert(debugReportFlags(gfx.AllSeverities, gfx.AllCategories), qt.Equals, vk.DebugReportFlags(
		vk.DebugReportDebugBit|vk.DebugReportInformationBit|vk.DebugReportWarningBit|
			vk.DebugReportPerformanceWarningBit|vk.DebugReportErrorBit))
	c.Assert(debugReportFlags(gfx.SeverityWarning|gfx.SeverityError, gfx.CategoryValidation), qt.Equals,
		vk.DebugReportFlags(vk.DebugReportWarningBit|vk.DebugReportErrorBit))
	c.Assert(debugReportFlags(0, gfx.AllCategories), qt.Equals, vk.DebugReportFlags(0))
}

func TestDebugMessage(t *testing.T) {
	tests := []struct {
		name  string
		flags vk.DebugReportFlagBits
		layer string
		want  gfx.DebugMessage
	}{{
		name:  "validation error",
		flags: vk.DebugReportErrorBit,
		layer: "Validation",
		want:  gfx.DebugMessage{Severity: gfx.SeverityError, Categories: gfx.CategoryValidation, Layer: "Validation"},
	}, {
		name:  "performance warning",
		flags: vk.DebugReportPerformanceWarningBit,
		layer: "Validation",
		want:  gfx.DebugMessage{Severity: gfx.SeverityWarning, Categories: gfx.CategoryPerformance, Layer: "Validation"},
	}, {
		name:  "loader info",
		flags: vk.DebugReportInformationBit,
		layer: "Loader Message",
		want:  gfx.DebugMessage{Severity: gfx.SeverityInfo, Categories: gfx.CategoryGeneral, Layer: "Loader Message"},
	}, {
		name:  "debug",
		flags: vk.DebugReportDebugBit,
		layer: "Loader Message",
		want:  gfx.DebugMessage{Severity: gfx.SeverityDebug, Categories: gfx.CategoryGeneral, Layer: "Loader Message"},
	}}

	c := qt.New(t)
	for _, test := range tests {
		c.Run(test.name, func(c *qt.C) {
			test.want.Code = 42
			test.want.Text = "text"
			c.Assert(debugMessage(vk.DebugReportFlags(test.flags), 42, test.layer, "text"), qt.Equals, test.want)
		})
	}
}

func TestRenderPassInfo(t *testing.T) {
	c := qt.New(t)

	ci := renderPassInfo(gfx.RenderPassCreateInfo{
		Attachments: []gfx.AttachmentDescription{{
			Format:        gfx.FormatB8G8R8A8Srgb,
			LoadOp:        gfx.AttachmentLoadOpClear,
			StoreOp:       gfx.AttachmentStoreOpStore,
			InitialLayout: gfx.ImageLayoutUndefined,
			FinalLayout:   gfx.ImageLayoutPresentSrc,
		}},
		Subpasses: []gfx.SubpassDescription{{
			ColorAttachments: []gfx.AttachmentReference{{Attachment: 0, Layout: gfx.ImageLayoutColorAttachmentOptimal}},
		}},
	})
	c.Assert(ci.AttachmentCount, qt.Equals, uint32(1))
	c.Assert(ci.PAttachments[0].Format, qt.Equals, vk.FormatB8g8r8a8Srgb)
	c.Assert(ci.PAttachments[0].LoadOp, qt.Equals, vk.AttachmentLoadOpClear)
	c.Assert(ci.PAttachments[0].StoreOp, qt.Equals, vk.AttachmentStoreOpStore)
	c.Assert(ci.PAttachments[0].FinalLayout, qt.Equals, vk.ImageLayoutPresentSrc)
	c.Assert(ci.PAttachments[0].Samples, qt.Equals, vk.SampleCount1Bit)
	c.Assert(ci.SubpassCount, qt.Equals, uint32(1))
	c.Assert(ci.PSubpasses[0].ColorAttachmentCount, qt.Equals, uint32(1))
	c.Assert(ci.PSubpasses[0].PColorAttachments[0].Layout, qt.Equals, vk.ImageLayoutColorAttachmentOptimal)
}

func TestFeatures(t *testing.T) {
	c := qt.New(t)

	f := vkFeatures(gfx.Features{SamplerAnisotropy: true, GeometryShader: true, MeshShader: true})
	c.Assert(f.SamplerAnisotropy, qt.Equals, vk.Bool32(vk.True))
	c.Assert(f.GeometryShader, qt.Equals, vk.Bool32(vk.True))
	c.Assert(f.WideLines, qt.Equals, vk.Bool32(vk.False))
	// mesh shading is chained, it has no core feature bit
	c.Assert(features(f), qt.Equals, gfx.Features{SamplerAnisotropy: true, GeometryShader: true})
}

func TestMeshShaderProperties(t *testing.T) {
	c := qt.New(t)

	m := meshShaderPropertiesNV{
		maxDrawMeshTasksCount: 65535,
		maxTaskWorkGroupSize:  [3]uint32{32, 1, 1},
		maxMeshOutputVertices: 256,
	}
	got := m.gfx()
	c.Assert(got.MaxDrawMeshTasksCount, qt.Equals, uint32(65535))
	c.Assert(got.MaxTaskWorkGroupSize, qt.Equals, [3]uint32{32, 1, 1})
	c.Assert(got.MaxMeshOutputVertices, qt.Equals, uint32(256))
}

func TestExtensionNames(t *testing.T) {
	c := qt.New(t)

	c.Assert(meshShaderExtension, qt.Equals, "VK_NV_mesh_shader")
	c.Assert(debugReportExtension, qt.Equals, "VK_EXT_debug_report")
	c.Assert(contains([]string{"VK_KHR_surface", meshShaderExtension}, meshShaderExtension), qt.IsTrue)
	c.Assert(contains(nil, debugReportExtension), qt.IsFalse)
}
