// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package gfx

// InstanceCreateInfo describes the driver connection to create.
type InstanceCreateInfo struct {
	ApplicationName    string
	ApplicationVersion Version
	EngineName         string
	EngineVersion      Version
	APIVersion         Version
	Layers             []string
	Extensions         []string
}

// QueueCreateInfo requests queues from one family.
type QueueCreateInfo struct {
	FamilyIndex uint32
	Priorities  []float32
}

// DeviceCreateInfo describes the logical device to create.
type DeviceCreateInfo struct {
	Queues     []QueueCreateInfo
	Extensions []string
	Features   Features
}

// AttachmentLoadOp says what happens to an attachment when a pass begins.
type AttachmentLoadOp uint32

// Load operations.
const (
	AttachmentLoadOpLoad AttachmentLoadOp = iota
	AttachmentLoadOpClear
	AttachmentLoadOpDontCare
)

// AttachmentStoreOp says what happens to an attachment when a pass ends.
type AttachmentStoreOp uint32

// Store operations.
const (
	AttachmentStoreOpStore AttachmentStoreOp = iota
	AttachmentStoreOpDontCare
)

// ImageLayout is the memory layout of an image.
type ImageLayout uint32

// Image layouts.
const (
	ImageLayoutUndefined              ImageLayout = 0
	ImageLayoutColorAttachmentOptimal ImageLayout = 2
	ImageLayoutPresentSrc             ImageLayout = 1000001002
)

// AttachmentDescription describes one render pass attachment.
type AttachmentDescription struct {
	Format        Format
	LoadOp        AttachmentLoadOp
	StoreOp       AttachmentStoreOp
	InitialLayout ImageLayout
	FinalLayout   ImageLayout
}

// AttachmentReference points a subpass at an attachment.
type AttachmentReference struct {
	Attachment uint32
	Layout     ImageLayout
}

// SubpassDescription describes a graphics subpass.
type SubpassDescription struct {
	ColorAttachments []AttachmentReference
}

// RenderPassCreateInfo describes a render target.
type RenderPassCreateInfo struct {
	Attachments []AttachmentDescription
	Subpasses   []SubpassDescription
}

// ImageAspect selects image aspects.
type ImageAspect uint32

// Image aspects.
const (
	ImageAspectColor ImageAspect = 1
)

// ImageViewCreateInfo describes a 2D view over an image.
type ImageViewCreateInfo struct {
	Image          Image
	Format         Format
	Aspect         ImageAspect
	BaseMipLevel   uint32
	LevelCount     uint32
	BaseArrayLayer uint32
	LayerCount     uint32
}

// FramebufferCreateInfo binds views to a render pass.
type FramebufferCreateInfo struct {
	RenderPass  RenderPass
	Attachments []ImageView
	Width       uint32
	Height      uint32
	Layers      uint32
}

// SwapchainCreateInfo describes a presentable chain.
type SwapchainCreateInfo struct {
	Surface        Surface
	MinImageCount  uint32
	Format         Format
	ColorSpace     ColorSpace
	Extent         Extent2D
	ArrayLayers    uint32
	Usage          ImageUsage
	Transform      SurfaceTransform
	CompositeAlpha CompositeAlpha
	PresentMode    PresentMode
	Clipped        bool
	OldSwapchain   Swapchain
}

// Loader is the driver entry point, valid before any instance exists.
type Loader interface {
	// InstanceVersion returns the highest API version the driver supports.
	InstanceVersion() (Version, error)

	// InstanceLayers lists the layers the driver can enable.
	InstanceLayers() ([]LayerProperties, error)

	// InstanceExtensions lists the instance extensions the driver supports.
	InstanceExtensions() ([]ExtensionProperties, error)

	// CreateInstance connects to the driver.
	CreateInstance(InstanceCreateInfo) (Instance, error)
}

// Instance is a driver connection.
type Instance interface {
	// Native returns the handle of the underlying API, for windowing
	// libraries that create surfaces themselves.
	Native() interface{}

	PhysicalDevices() ([]PhysicalDevice, error)
	Properties(PhysicalDevice) (PhysicalDeviceProperties, error)
	MemoryProperties(PhysicalDevice) (MemoryProperties, error)
	QueueFamilies(PhysicalDevice) ([]QueueFamilyProperties, error)
	Features(PhysicalDevice) (Features, error)
	DeviceLayers(PhysicalDevice) ([]LayerProperties, error)
	DeviceExtensions(PhysicalDevice) ([]ExtensionProperties, error)

	SurfaceSupport(pd PhysicalDevice, family uint32, surface Surface) (bool, error)
	SurfaceCapabilities(PhysicalDevice, Surface) (SurfaceCapabilities, error)
	SurfaceFormats(PhysicalDevice, Surface) ([]SurfaceFormat, error)
	SurfacePresentModes(PhysicalDevice, Surface) ([]PresentMode, error)

	// ImportSurface takes ownership of a surface created outside the driver,
	// raw is the native surface handle value.
	ImportSurface(raw uintptr) (Surface, error)
	DestroySurface(Surface)

	CreateDebugMessenger(DebugMessengerCreateInfo) (DebugMessenger, error)
	DestroyDebugMessenger(DebugMessenger)

	CreateDevice(PhysicalDevice, DeviceCreateInfo) (Device, error)

	// Destroy closes the connection. Every child must be destroyed first.
	Destroy()
}

// Device is a logical device.
type Device interface {
	// Queue returns a queue that was requested at creation.
	Queue(family, index uint32) Queue

	CreateRenderPass(RenderPassCreateInfo) (RenderPass, error)
	DestroyRenderPass(RenderPass)
	CreateImageView(ImageViewCreateInfo) (ImageView, error)
	DestroyImageView(ImageView)
	CreateFramebuffer(FramebufferCreateInfo) (Framebuffer, error)
	DestroyFramebuffer(Framebuffer)

	// SwapchainDispatch returns the swapchain function table. Only valid
	// to call if the swapchain extension was enabled.
	SwapchainDispatch() SwapchainDispatch

	// MeshShaderDispatch returns the mesh shading function table. Only valid
	// to call if the mesh shader extension was enabled.
	MeshShaderDispatch() MeshShaderDispatch

	WaitIdle() error

	// Destroy destroys the device. Every child must be destroyed first.
	Destroy()
}

// SwapchainDispatch is the swapchain extension function table.
type SwapchainDispatch interface {
	CreateSwapchain(SwapchainCreateInfo) (Swapchain, error)
	SwapchainImages(Swapchain) ([]Image, error)
	DestroySwapchain(Swapchain)
}

// MeshShaderDispatch is the mesh shading extension function table.
type MeshShaderDispatch interface {
	// Loaded reports whether the entry points were resolved.
	Loaded() bool

	CmdDrawMeshTasks(cmd CommandBuffer, taskCount, firstTask uint32)
}
