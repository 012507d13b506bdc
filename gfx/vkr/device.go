// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package vkr

import (
	"sync"
	"unsafe"

	"github.com/cockroachdb/errors"
	vk "github.com/vulkan-go/vulkan"

	"github.com/devblok/koruvk/gfx"
)

// Device is a Vulkan logical device.
type Device struct {
	instance *Instance
	handle   vk.Device
	procs    *deviceProcs

	mu           sync.Mutex
	renderPasses handles[vk.RenderPass]
	views        handles[vk.ImageView]
	framebuffers handles[vk.Framebuffer]
	swapchains   handles[vk.Swapchain]
	images       handles[vk.Image]

	// swapchainImages are the image handles owned by each swapchain.
	swapchainImages map[uint64][]uint64
}

func newDevice(instance *Instance, handle vk.Device, procs *deviceProcs) *Device {
	return &Device{
		instance:        instance,
		handle:          handle,
		procs:           procs,
		swapchainImages: make(map[uint64][]uint64),
	}
}

// Queue implements gfx.Device. The handle is the VkQueue itself.
func (d *Device) Queue(family, index uint32) gfx.Queue {
	var queue vk.Queue
	vk.GetDeviceQueue(d.handle, family, index, &queue)
	return gfx.Queue(uintptr(unsafe.Pointer(queue)))
}

// CreateRenderPass implements gfx.Device.
func (d *Device) CreateRenderPass(info gfx.RenderPassCreateInfo) (gfx.RenderPass, error) {
	ci := renderPassInfo(info)
	var rp vk.RenderPass
	if err := check(vk.CreateRenderPass(d.handle, &ci, nil, &rp), "vk.CreateRenderPass"); err != nil {
		return 0, err
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	return gfx.RenderPass(d.renderPasses.add(rp)), nil
}

// DestroyRenderPass implements gfx.Device.
func (d *Device) DestroyRenderPass(h gfx.RenderPass) {
	d.mu.Lock()
	rp, ok := d.renderPasses.remove(uint64(h))
	d.mu.Unlock()
	if ok {
		vk.DestroyRenderPass(d.handle, rp, nil)
	}
}

// CreateImageView implements gfx.Device.
func (d *Device) CreateImageView(info gfx.ImageViewCreateInfo) (gfx.ImageView, error) {
	d.mu.Lock()
	image, ok := d.images.get(uint64(info.Image))
	d.mu.Unlock()
	if !ok {
		return 0, errors.Wrapf(gfx.ErrorInitializationFailed, "CreateImageView(): unknown image %d", info.Image)
	}
	var view vk.ImageView
	if err := check(vk.CreateImageView(d.handle, &vk.ImageViewCreateInfo{
		SType:    vk.StructureTypeImageViewCreateInfo,
		Image:    image,
		ViewType: vk.ImageViewType2d,
		Format:   vk.Format(info.Format),
		Components: vk.ComponentMapping{
			R: vk.ComponentSwizzleIdentity,
			G: vk.ComponentSwizzleIdentity,
			B: vk.ComponentSwizzleIdentity,
			A: vk.ComponentSwizzleIdentity,
		},
		SubresourceRange: vk.ImageSubresourceRange{
			AspectMask:     vk.ImageAspectFlags(info.Aspect),
			BaseMipLevel:   info.BaseMipLevel,
			LevelCount:     info.LevelCount,
			BaseArrayLayer: info.BaseArrayLayer,
			LayerCount:     info.LayerCount,
		},
	}, nil, &view), "vk.CreateImageView"); err != nil {
		return 0, err
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	return gfx.ImageView(d.views.add(view)), nil
}

// DestroyImageView implements gfx.Device.
func (d *Device) DestroyImageView(h gfx.ImageView) {
	d.mu.Lock()
	view, ok := d.views.remove(uint64(h))
	d.mu.Unlock()
	if ok {
		vk.DestroyImageView(d.handle, view, nil)
	}
}

// CreateFramebuffer implements gfx.Device.
func (d *Device) CreateFramebuffer(info gfx.FramebufferCreateInfo) (gfx.Framebuffer, error) {
	d.mu.Lock()
	rp, ok := d.renderPasses.get(uint64(info.RenderPass))
	attachments := make([]vk.ImageView, len(info.Attachments))
	for n, h := range info.Attachments {
		view, found := d.views.get(uint64(h))
		ok = ok && found
		attachments[n] = view
	}
	d.mu.Unlock()
	if !ok {
		return 0, errors.Wrap(gfx.ErrorInitializationFailed, "CreateFramebuffer(): unknown render pass or attachment")
	}

	var fb vk.Framebuffer
	if err := check(vk.CreateFramebuffer(d.handle, &vk.FramebufferCreateInfo{
		SType:           vk.StructureTypeFramebufferCreateInfo,
		RenderPass:      rp,
		AttachmentCount: uint32(len(attachments)),
		PAttachments:    attachments,
		Width:           info.Width,
		Height:          info.Height,
		Layers:          info.Layers,
	}, nil, &fb), "vk.CreateFramebuffer"); err != nil {
		return 0, err
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	return gfx.Framebuffer(d.framebuffers.add(fb)), nil
}

// DestroyFramebuffer implements gfx.Device.
func (d *Device) DestroyFramebuffer(h gfx.Framebuffer) {
	d.mu.Lock()
	fb, ok := d.framebuffers.remove(uint64(h))
	d.mu.Unlock()
	if ok {
		vk.DestroyFramebuffer(d.handle, fb, nil)
	}
}

// SwapchainDispatch implements gfx.Device.
func (d *Device) SwapchainDispatch() gfx.SwapchainDispatch {
	return swapchainDispatch{d}
}

// MeshShaderDispatch implements gfx.Device.
func (d *Device) MeshShaderDispatch() gfx.MeshShaderDispatch {
	return meshShaderDispatch{d.procs}
}

// WaitIdle implements gfx.Device.
func (d *Device) WaitIdle() error {
	return check(vk.DeviceWaitIdle(d.handle), "vk.DeviceWaitIdle")
}

// Destroy implements gfx.Device.
func (d *Device) Destroy() {
	vk.DestroyDevice(d.handle, nil)
}

type swapchainDispatch struct {
	*Device
}

func (s swapchainDispatch) CreateSwapchain(info gfx.SwapchainCreateInfo) (gfx.Swapchain, error) {
	surface, err := s.instance.surface(info.Surface)
	if err != nil {
		return 0, err
	}
	s.mu.Lock()
	var old vk.Swapchain
	if info.OldSwapchain != 0 {
		old, _ = s.swapchains.get(uint64(info.OldSwapchain))
	}
	s.mu.Unlock()

	var swapchain vk.Swapchain
	if err := check(vk.CreateSwapchain(s.handle, &vk.SwapchainCreateInfo{
		SType:           vk.StructureTypeSwapchainCreateInfo,
		Surface:         surface,
		MinImageCount:   info.MinImageCount,
		ImageFormat:     vk.Format(info.Format),
		ImageColorSpace: vk.ColorSpace(info.ColorSpace),
		ImageExtent: vk.Extent2D{
			Width:  info.Extent.Width,
			Height: info.Extent.Height,
		},
		ImageArrayLayers: info.ArrayLayers,
		ImageUsage:       vk.ImageUsageFlags(info.Usage),
		ImageSharingMode: vk.SharingModeExclusive,
		PreTransform:     vk.SurfaceTransformFlagBits(info.Transform),
		CompositeAlpha:   vk.CompositeAlphaFlagBits(info.CompositeAlpha),
		PresentMode:      vk.PresentMode(info.PresentMode),
		Clipped:          bool32(info.Clipped),
		OldSwapchain:     old,
	}, nil, &swapchain), "vk.CreateSwapchain"); err != nil {
		return 0, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return gfx.Swapchain(s.swapchains.add(swapchain)), nil
}

// SwapchainImages returns the same handles on every call.
func (s swapchainDispatch) SwapchainImages(h gfx.Swapchain) ([]gfx.Image, error) {
	s.mu.Lock()
	swapchain, ok := s.swapchains.get(uint64(h))
	known := s.swapchainImages[uint64(h)]
	s.mu.Unlock()
	if !ok {
		return nil, errors.Wrapf(gfx.ErrorInitializationFailed, "SwapchainImages(): unknown swapchain %d", h)
	}
	if known == nil {
		var count uint32
		if err := check(vk.GetSwapchainImages(s.handle, swapchain, &count, nil), "vk.GetSwapchainImages"); err != nil {
			return nil, err
		}
		images := make([]vk.Image, count)
		if err := check(vk.GetSwapchainImages(s.handle, swapchain, &count, images), "vk.GetSwapchainImages"); err != nil {
			return nil, err
		}
		s.mu.Lock()
		for _, image := range images[:count] {
			known = append(known, s.images.add(image))
		}
		s.swapchainImages[uint64(h)] = known
		s.mu.Unlock()
	}
	out := make([]gfx.Image, len(known))
	for n, id := range known {
		out[n] = gfx.Image(id)
	}
	return out, nil
}

// DestroySwapchain also forgets the swapchain's images.
func (s swapchainDispatch) DestroySwapchain(h gfx.Swapchain) {
	s.mu.Lock()
	swapchain, ok := s.swapchains.remove(uint64(h))
	for _, id := range s.swapchainImages[uint64(h)] {
		s.images.remove(id)
	}
	delete(s.swapchainImages, uint64(h))
	s.mu.Unlock()
	if ok {
		vk.DestroySwapchain(s.handle, swapchain, nil)
	}
}

type meshShaderDispatch struct {
	procs *deviceProcs
}

func (m meshShaderDispatch) Loaded() bool {
	return m.procs.cmdDrawMeshTasks != nil
}

// CmdDrawMeshTasks records vkCmdDrawMeshTasksNV. cmd is the VkCommandBuffer.
func (m meshShaderDispatch) CmdDrawMeshTasks(cmd gfx.CommandBuffer, taskCount, firstTask uint32) {
	m.procs.cmdDrawMeshTasks(uintptr(cmd), taskCount, firstTask)
}
