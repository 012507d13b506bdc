// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package vkr

import (
	"github.com/google/uuid"
	vk "github.com/vulkan-go/vulkan"

	"github.com/devblok/koruvk/gfx"
)

func layerProperties(layers []vk.LayerProperties) []gfx.LayerProperties {
	out := make([]gfx.LayerProperties, len(layers))
	for i, layer := range layers {
		layer.Deref()
		out[i] = gfx.LayerProperties{
			Name:                  vk.ToString(layer.LayerName[:]),
			SpecVersion:           gfx.Version(layer.SpecVersion),
			ImplementationVersion: layer.ImplementationVersion,
			Description:           vk.ToString(layer.Description[:]),
		}
	}
	return out
}

func extensionProperties(extensions []vk.ExtensionProperties) []gfx.ExtensionProperties {
	out := make([]gfx.ExtensionProperties, len(extensions))
	for i, ext := range extensions {
		ext.Deref()
		out[i] = gfx.ExtensionProperties{
			Name:        vk.ToString(ext.ExtensionName[:]),
			SpecVersion: ext.SpecVersion,
		}
	}
	return out
}

func physicalDeviceProperties(props vk.PhysicalDeviceProperties) gfx.PhysicalDeviceProperties {
	props.Deref()
	props.Limits.Deref()
	return gfx.PhysicalDeviceProperties{
		APIVersion:        gfx.Version(props.ApiVersion),
		DriverVersion:     props.DriverVersion,
		VendorID:          props.VendorID,
		DeviceID:          props.DeviceID,
		DeviceType:        gfx.PhysicalDeviceType(props.DeviceType),
		DeviceName:        vk.ToString(props.DeviceName[:]),
		PipelineCacheUUID: uuid.UUID(props.PipelineCacheUUID),
		Limits: gfx.Limits{
			MaxImageDimension2D:  props.Limits.MaxImageDimension2D,
			MaxFramebufferWidth:  props.Limits.MaxFramebufferWidth,
			MaxFramebufferHeight: props.Limits.MaxFramebufferHeight,
			MaxFramebufferLayers: props.Limits.MaxFramebufferLayers,
			MaxColorAttachments:  props.Limits.MaxColorAttachments,
			MaxMemoryAllocations: props.Limits.MaxMemoryAllocationCount,
		},
	}
}

func memoryProperties(props vk.PhysicalDeviceMemoryProperties) gfx.MemoryProperties {
	props.Deref()
	var out gfx.MemoryProperties
	for i := uint32(0); i < props.MemoryTypeCount; i++ {
		t := props.MemoryTypes[i]
		t.Deref()
		out.Types = append(out.Types, gfx.MemoryType{
			Flags:     gfx.MemoryPropertyFlags(t.PropertyFlags),
			HeapIndex: t.HeapIndex,
		})
	}
	for i := uint32(0); i < props.MemoryHeapCount; i++ {
		h := props.MemoryHeaps[i]
		h.Deref()
		out.Heaps = append(out.Heaps, gfx.MemoryHeap{
			Size:  uint64(h.Size),
			Flags: gfx.MemoryHeapFlags(h.Flags),
		})
	}
	return out
}

func queueFamilyProperties(families []vk.QueueFamilyProperties) []gfx.QueueFamilyProperties {
	out := make([]gfx.QueueFamilyProperties, len(families))
	for i, family := range families {
		family.Deref()
		family.MinImageTransferGranularity.Deref()
		out[i] = gfx.QueueFamilyProperties{
			Flags:              gfx.QueueFlags(family.QueueFlags),
			Count:              family.QueueCount,
			TimestampValidBits: family.TimestampValidBits,
			MinImageTransferGranularity: gfx.Extent3D{
				Width:  family.MinImageTransferGranularity.Width,
				Height: family.MinImageTransferGranularity.Height,
				Depth:  family.MinImageTransferGranularity.Depth,
			},
		}
	}
	return out
}

func features(f vk.PhysicalDeviceFeatures) gfx.Features {
	f.Deref()
	return gfx.Features{
		RobustBufferAccess:       f.RobustBufferAccess == vk.True,
		FullDrawIndexUint32:      f.FullDrawIndexUint32 == vk.True,
		ImageCubeArray:           f.ImageCubeArray == vk.True,
		IndependentBlend:         f.IndependentBlend == vk.True,
		GeometryShader:           f.GeometryShader == vk.True,
		TessellationShader:       f.TessellationShader == vk.True,
		MultiDrawIndirect:        f.MultiDrawIndirect == vk.True,
		FillModeNonSolid:         f.FillModeNonSolid == vk.True,
		WideLines:                f.WideLines == vk.True,
		SamplerAnisotropy:        f.SamplerAnisotropy == vk.True,
		TextureCompressionBC:     f.TextureCompressionBC == vk.True,
		ShaderInt64:              f.ShaderInt64 == vk.True,
		FragmentStoresAndAtomics: f.FragmentStoresAndAtomics == vk.True,
	}
}

// vkFeatures converts the core features, task and mesh shading are chained
// separately.
func vkFeatures(f gfx.Features) vk.PhysicalDeviceFeatures {
	return vk.PhysicalDeviceFeatures{
		RobustBufferAccess:       bool32(f.RobustBufferAccess),
		FullDrawIndexUint32:      bool32(f.FullDrawIndexUint32),
		ImageCubeArray:           bool32(f.ImageCubeArray),
		IndependentBlend:         bool32(f.IndependentBlend),
		GeometryShader:           bool32(f.GeometryShader),
		TessellationShader:       bool32(f.TessellationShader),
		MultiDrawIndirect:        bool32(f.MultiDrawIndirect),
		FillModeNonSolid:         bool32(f.FillModeNonSolid),
		WideLines:                bool32(f.WideLines),
		SamplerAnisotropy:        bool32(f.SamplerAnisotropy),
		TextureCompressionBC:     bool32(f.TextureCompressionBC),
		ShaderInt64:              bool32(f.ShaderInt64),
		FragmentStoresAndAtomics: bool32(f.FragmentStoresAndAtomics),
	}
}

func surfaceCapabilities(caps vk.SurfaceCapabilities) gfx.SurfaceCapabilities {
	caps.Deref()
	caps.CurrentExtent.Deref()
	caps.MinImageExtent.Deref()
	caps.MaxImageExtent.Deref()
	return gfx.SurfaceCapabilities{
		MinImageCount:           caps.MinImageCount,
		MaxImageCount:           caps.MaxImageCount,
		CurrentExtent:           extent(caps.CurrentExtent),
		MinImageExtent:          extent(caps.MinImageExtent),
		MaxImageExtent:          extent(caps.MaxImageExtent),
		MaxImageArrayLayers:     caps.MaxImageArrayLayers,
		SupportedTransforms:     gfx.SurfaceTransform(caps.SupportedTransforms),
		CurrentTransform:        gfx.SurfaceTransform(caps.CurrentTransform),
		SupportedCompositeAlpha: gfx.CompositeAlpha(caps.SupportedCompositeAlpha),
		SupportedUsage:          gfx.ImageUsage(caps.SupportedUsageFlags),
	}
}

func extent(e vk.Extent2D) gfx.Extent2D {
	return gfx.Extent2D{Width: e.Width, Height: e.Height}
}

func surfaceFormats(formats []vk.SurfaceFormat) []gfx.SurfaceFormat {
	out := make([]gfx.SurfaceFormat, len(formats))
	for i, f := range formats {
		f.Deref()
		out[i] = gfx.SurfaceFormat{
			Format:     gfx.Format(f.Format),
			ColorSpace: gfx.ColorSpace(f.ColorSpace),
		}
	}
	return out
}

func renderPassInfo(info gfx.RenderPassCreateInfo) vk.RenderPassCreateInfo {
	attachments := make([]vk.AttachmentDescription, len(info.Attachments))
	for i, a := range info.Attachments {
		attachments[i] = vk.AttachmentDescription{
			Format:         vk.Format(a.Format),
			Samples:        vk.SampleCount1Bit,
			LoadOp:         vk.AttachmentLoadOp(a.LoadOp),
			StoreOp:        vk.AttachmentStoreOp(a.StoreOp),
			StencilLoadOp:  vk.AttachmentLoadOpDontCare,
			StencilStoreOp: vk.AttachmentStoreOpDontCare,
			InitialLayout:  vk.ImageLayout(a.InitialLayout),
			FinalLayout:    vk.ImageLayout(a.FinalLayout),
		}
	}
	subpasses := make([]vk.SubpassDescription, len(info.Subpasses))
	for i, s := range info.Subpasses {
		refs := make([]vk.AttachmentReference, len(s.ColorAttachments))
		for j, ref := range s.ColorAttachments {
			refs[j] = vk.AttachmentReference{
				Attachment: ref.Attachment,
				Layout:     vk.ImageLayout(ref.Layout),
			}
		}
		subpasses[i] = vk.SubpassDescription{
			PipelineBindPoint:    vk.PipelineBindPointGraphics,
			ColorAttachmentCount: uint32(len(refs)),
			PColorAttachments:    refs,
		}
	}
	return vk.RenderPassCreateInfo{
		SType:           vk.StructureTypeRenderPassCreateInfo,
		AttachmentCount: uint32(len(attachments)),
		PAttachments:    attachments,
		SubpassCount:    uint32(len(subpasses)),
		PSubpasses:      subpasses,
	}
}

// debugReportFlags maps severities to VK_EXT_debug_report flags. Warnings
// include performance warnings when performance messages are wanted.
func debugReportFlags(severities gfx.Severity, categories gfx.Category) vk.DebugReportFlags {
	var flags vk.DebugReportFlagBits
	if severities&gfx.SeverityDebug != 0 {
		flags |= vk.DebugReportDebugBit
	}
	if severities&gfx.SeverityInfo != 0 {
		flags |= vk.DebugReportInformationBit
	}
	if severities&gfx.SeverityWarning != 0 {
		flags |= vk.DebugReportWarningBit
		if categories&gfx.CategoryPerformance != 0 {
			flags |= vk.DebugReportPerformanceWarningBit
		}
	}
	if severities&gfx.SeverityError != 0 {
		flags |= vk.DebugReportErrorBit
	}
	return vk.DebugReportFlags(flags)
}

// debugMessage converts a debug report callback to a message.
func debugMessage(flags vk.DebugReportFlags, code int32, layer, text string) gfx.DebugMessage {
	bits := vk.DebugReportFlagBits(flags)
	msg := gfx.DebugMessage{Layer: layer, Code: code, Text: text, Categories: gfx.CategoryGeneral}
	switch {
	case bits&vk.DebugReportErrorBit != 0:
		msg.Severity = gfx.SeverityError
	case bits&(vk.DebugReportWarningBit|vk.DebugReportPerformanceWarningBit) != 0:
		msg.Severity = gfx.SeverityWarning
	case bits&vk.DebugReportInformationBit != 0:
		msg.Severity = gfx.SeverityInfo
	default:
		msg.Severity = gfx.SeverityDebug
	}
	if bits&vk.DebugReportPerformanceWarningBit != 0 {
		msg.Categories = gfx.CategoryPerformance
	} else if layer == "Validation" || layer == "Khronos Validation" || layer == "DS" {
		msg.Categories = gfx.CategoryValidation
	}
	return msg
}
