// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package gfx

import "github.com/google/uuid"

// LayerProperties describes a driver layer.
type LayerProperties struct {
	Name                  string
	SpecVersion           Version
	ImplementationVersion uint32
	Description           string
}

// ExtensionProperties describes a driver extension.
type ExtensionProperties struct {
	Name        string
	SpecVersion uint32
}

// PhysicalDeviceType classifies a GPU.
type PhysicalDeviceType uint32

// Physical device classes.
const (
	PhysicalDeviceTypeOther PhysicalDeviceType = iota
	PhysicalDeviceTypeIntegratedGPU
	PhysicalDeviceTypeDiscreteGPU
	PhysicalDeviceTypeVirtualGPU
	PhysicalDeviceTypeCPU
)

func (t PhysicalDeviceType) String() string {
	switch t {
	case PhysicalDeviceTypeIntegratedGPU:
		return "integrated"
	case PhysicalDeviceTypeDiscreteGPU:
		return "discrete"
	case PhysicalDeviceTypeVirtualGPU:
		return "virtual"
	case PhysicalDeviceTypeCPU:
		return "cpu"
	default:
		return "other"
	}
}

// Limits is the subset of device limits the backend reads.
type Limits struct {
	MaxImageDimension2D  uint32
	MaxFramebufferWidth  uint32
	MaxFramebufferHeight uint32
	MaxFramebufferLayers uint32
	MaxColorAttachments  uint32
	MaxMemoryAllocations uint32
}

// MeshShaderProperties are the limits of the mesh shading pipeline.
// All zero when the device does not expose mesh shading.
type MeshShaderProperties struct {
	MaxDrawMeshTasksCount             uint32
	MaxTaskWorkGroupInvocations       uint32
	MaxTaskWorkGroupSize              [3]uint32
	MaxTaskTotalMemorySize            uint32
	MaxTaskOutputCount                uint32
	MaxMeshWorkGroupInvocations       uint32
	MaxMeshWorkGroupSize              [3]uint32
	MaxMeshTotalMemorySize            uint32
	MaxMeshOutputVertices             uint32
	MaxMeshOutputPrimitives           uint32
	MaxMeshMultiviewViewCount         uint32
	MeshOutputPerVertexGranularity    uint32
	MeshOutputPerPrimitiveGranularity uint32
}

// PhysicalDeviceProperties is a snapshot of general device properties.
type PhysicalDeviceProperties struct {
	APIVersion        Version
	DriverVersion     uint32
	VendorID          uint32
	DeviceID          uint32
	DeviceType        PhysicalDeviceType
	DeviceName        string
	PipelineCacheUUID uuid.UUID
	Limits            Limits
	MeshShader        MeshShaderProperties
}

// MemoryPropertyFlags describe a memory type.
type MemoryPropertyFlags uint32

// Memory type flags.
const (
	MemoryPropertyDeviceLocal MemoryPropertyFlags = 1 << iota
	MemoryPropertyHostVisible
	MemoryPropertyHostCoherent
	MemoryPropertyHostCached
	MemoryPropertyLazilyAllocated
)

// MemoryHeapFlags describe a memory heap.
type MemoryHeapFlags uint32

// Memory heap flags.
const (
	MemoryHeapDeviceLocal MemoryHeapFlags = 1 << iota
	MemoryHeapMultiInstance
)

// MemoryType is a kind of memory allocated from one heap.
type MemoryType struct {
	Flags     MemoryPropertyFlags
	HeapIndex uint32
}

// MemoryHeap is a pool of memory.
type MemoryHeap struct {
	Size  uint64
	Flags MemoryHeapFlags
}

// MemoryProperties is a snapshot of the device memory layout.
type MemoryProperties struct {
	Types []MemoryType
	Heaps []MemoryHeap
}

// DeviceLocalSize sums the sizes of all device local heaps.
func (m MemoryProperties) DeviceLocalSize() uint64 {
	var total uint64
	for _, heap := range m.Heaps {
		if heap.Flags&MemoryHeapDeviceLocal != 0 {
			total += heap.Size
		}
	}
	return total
}

// TotalSize sums the sizes of all heaps.
func (m MemoryProperties) TotalSize() uint64 {
	var total uint64
	for _, heap := range m.Heaps {
		total += heap.Size
	}
	return total
}

// QueueFlags describe what a queue family can do.
type QueueFlags uint32

// Queue capabilities.
const (
	QueueGraphics QueueFlags = 1 << iota
	QueueCompute
	QueueTransfer
	QueueSparseBinding
)

// Has reports whether every bit in want is set.
func (f QueueFlags) Has(want QueueFlags) bool {
	return f&want == want
}

// Any reports whether any bit in mask is set.
func (f QueueFlags) Any(mask QueueFlags) bool {
	return f&mask != 0
}

// QueueFamilyProperties is a snapshot of one queue family.
type QueueFamilyProperties struct {
	Flags                       QueueFlags
	Count                       uint32
	TimestampValidBits          uint32
	MinImageTransferGranularity Extent3D
}

// Features is the set of optional device features the backend negotiates.
type Features struct {
	RobustBufferAccess       bool
	FullDrawIndexUint32      bool
	ImageCubeArray           bool
	IndependentBlend         bool
	GeometryShader           bool
	TessellationShader       bool
	MultiDrawIndirect        bool
	FillModeNonSolid         bool
	WideLines                bool
	SamplerAnisotropy        bool
	TextureCompressionBC     bool
	ShaderInt64              bool
	FragmentStoresAndAtomics bool

	TaskShader bool
	MeshShader bool
}

// Format is a texel format.
type Format uint32

// Formats the backend selects between.
const (
	FormatUndefined          Format = 0
	FormatR8G8B8A8Unorm      Format = 37
	FormatR8G8B8A8Srgb       Format = 43
	FormatB8G8R8A8Unorm      Format = 44
	FormatB8G8R8A8Srgb       Format = 50
	FormatR16G16B16A16Sfloat Format = 97
)

// ColorSpace is a presentation color space.
type ColorSpace uint32

// Color spaces.
const (
	ColorSpaceSrgbNonlinear      ColorSpace = 0
	ColorSpaceExtendedSrgbLinear ColorSpace = 1000104002
)

// SurfaceFormat pairs a format with a color space.
type SurfaceFormat struct {
	Format     Format
	ColorSpace ColorSpace
}

// PresentMode is a presentation queueing policy.
type PresentMode uint32

// Presentation modes.
const (
	PresentModeImmediate PresentMode = iota
	PresentModeMailbox
	PresentModeFifo
	PresentModeFifoRelaxed
)

func (m PresentMode) String() string {
	switch m {
	case PresentModeImmediate:
		return "immediate"
	case PresentModeMailbox:
		return "mailbox"
	case PresentModeFifo:
		return "fifo"
	case PresentModeFifoRelaxed:
		return "fifo-relaxed"
	default:
		return "unknown"
	}
}

// SurfaceTransform is a presentation transform.
type SurfaceTransform uint32

// Surface transforms.
const (
	SurfaceTransformIdentity SurfaceTransform = 1
)

// CompositeAlpha is an alpha compositing mode.
type CompositeAlpha uint32

// Composite alpha modes.
const (
	CompositeAlphaOpaque CompositeAlpha = 1
)

// ImageUsage describes how an image is used.
type ImageUsage uint32

// Image usages.
const (
	ImageUsageTransferSrc     ImageUsage = 0x01
	ImageUsageTransferDst     ImageUsage = 0x02
	ImageUsageColorAttachment ImageUsage = 0x10
)

// SurfaceCapabilities is a snapshot of what a surface accepts.
type SurfaceCapabilities struct {
	MinImageCount           uint32
	MaxImageCount           uint32
	CurrentExtent           Extent2D
	MinImageExtent          Extent2D
	MaxImageExtent          Extent2D
	MaxImageArrayLayers     uint32
	SupportedTransforms     SurfaceTransform
	CurrentTransform        SurfaceTransform
	SupportedCompositeAlpha CompositeAlpha
	SupportedUsage          ImageUsage
}
