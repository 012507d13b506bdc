// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package gfxtest

import (
	"github.com/cockroachdb/errors"

	"github.com/devblok/koruvk/gfx"
)

// Device is a scripted logical device.
type Device struct {
	driver   *Driver
	id       uint64
	families map[uint32]bool
	mesh     bool
	caps     gfx.SurfaceCapabilities
}

func (d *Device) enter(call string) (func(), error) {
	d.driver.mu.Lock()
	if !d.driver.alive(d.id) {
		d.driver.violations = append(d.driver.violations, call+" on destroyed device")
	}
	if err := d.driver.check(call); err != nil {
		d.driver.mu.Unlock()
		return nil, err
	}
	return d.driver.mu.Unlock, nil
}

// Queue implements gfx.Device.
func (d *Device) Queue(family, index uint32) gfx.Queue {
	d.driver.mu.Lock()
	defer d.driver.mu.Unlock()
	if !d.families[family] || index != 0 {
		d.driver.violations = append(d.driver.violations, "queue retrieved from a family that was not requested")
	}
	return gfx.Queue(d.id<<16 | uint64(family)<<8 | uint64(index))
}

// CreateRenderPass implements gfx.Device.
func (d *Device) CreateRenderPass(info gfx.RenderPassCreateInfo) (gfx.RenderPass, error) {
	unlock, err := d.enter("CreateRenderPass")
	if err != nil {
		return 0, err
	}
	defer unlock()
	d.driver.renderPasses = append(d.driver.renderPasses, info)
	return gfx.RenderPass(d.driver.create("renderpass", false, d.id)), nil
}

// DestroyRenderPass implements gfx.Device.
func (d *Device) DestroyRenderPass(rp gfx.RenderPass) {
	d.driver.destroy("renderpass", uint64(rp))
}

// CreateImageView implements gfx.Device.
func (d *Device) CreateImageView(info gfx.ImageViewCreateInfo) (gfx.ImageView, error) {
	unlock, err := d.enter("CreateImageView")
	if err != nil {
		return 0, err
	}
	defer unlock()
	if info.LevelCount == 0 || info.LayerCount == 0 {
		return 0, errors.Wrap(gfx.ErrorInitializationFailed, "CreateImageView(): empty subresource range")
	}
	return gfx.ImageView(d.driver.create("imageview", false, d.id, uint64(info.Image))), nil
}

// DestroyImageView implements gfx.Device.
func (d *Device) DestroyImageView(view gfx.ImageView) {
	d.driver.destroy("imageview", uint64(view))
}

// CreateFramebuffer implements gfx.Device.
func (d *Device) CreateFramebuffer(info gfx.FramebufferCreateInfo) (gfx.Framebuffer, error) {
	unlock, err := d.enter("CreateFramebuffer")
	if err != nil {
		return 0, err
	}
	defer unlock()
	parents := []uint64{d.id, uint64(info.RenderPass)}
	for _, view := range info.Attachments {
		parents = append(parents, uint64(view))
	}
	return gfx.Framebuffer(d.driver.create("framebuffer", false, parents...)), nil
}

// DestroyFramebuffer implements gfx.Device.
func (d *Device) DestroyFramebuffer(fb gfx.Framebuffer) {
	d.driver.destroy("framebuffer", uint64(fb))
}

// SwapchainDispatch implements gfx.Device.
func (d *Device) SwapchainDispatch() gfx.SwapchainDispatch {
	return swapchainDispatch{d}
}

// MeshShaderDispatch implements gfx.Device.
func (d *Device) MeshShaderDispatch() gfx.MeshShaderDispatch {
	return meshDispatch{d}
}

// WaitIdle implements gfx.Device.
func (d *Device) WaitIdle() error {
	unlock, err := d.enter("WaitIdle")
	if err != nil {
		return err
	}
	unlock()
	return nil
}

// Destroy implements gfx.Device.
func (d *Device) Destroy() {
	d.driver.destroy("device", d.id)
}

type swapchainDispatch struct {
	*Device
}

func (s swapchainDispatch) CreateSwapchain(info gfx.SwapchainCreateInfo) (gfx.Swapchain, error) {
	unlock, err := s.enter("CreateSwapchain")
	if err != nil {
		return 0, err
	}
	defer unlock()
	if info.Extent.Width == 0 || info.Extent.Height == 0 {
		return 0, errors.Wrap(gfx.ErrorInitializationFailed, "CreateSwapchain(): zero extent")
	}
	if s.caps.MaxImageCount != 0 && info.MinImageCount > s.caps.MaxImageCount {
		return 0, errors.Wrap(gfx.ErrorInitializationFailed, "CreateSwapchain(): too many images")
	}
	if info.OldSwapchain != 0 && !s.driver.alive(uint64(info.OldSwapchain)) {
		s.driver.violations = append(s.driver.violations, "swapchain chained from a destroyed swapchain")
	}
	s.driver.swapchainInfos = append(s.driver.swapchainInfos, info)
	id := s.driver.create("swapchain", false, s.id, uint64(info.Surface))
	for n := uint32(0); n < info.MinImageCount; n++ {
		s.driver.create("image", true, id)
	}
	return gfx.Swapchain(id), nil
}

func (s swapchainDispatch) SwapchainImages(sc gfx.Swapchain) ([]gfx.Image, error) {
	unlock, err := s.enter("SwapchainImages")
	if err != nil {
		return nil, err
	}
	defer unlock()
	var images []gfx.Image
	for id := uint64(sc) + 1; ; id++ {
		o, ok := s.driver.objects[id]
		if !ok || o.kind != "image" || o.parents[0] != uint64(sc) {
			break
		}
		images = append(images, gfx.Image(id))
	}
	return images, nil
}

func (s swapchainDispatch) DestroySwapchain(sc gfx.Swapchain) {
	s.driver.destroy("swapchain", uint64(sc))
}

type meshDispatch struct {
	*Device
}

func (m meshDispatch) Loaded() bool {
	return m.mesh
}

func (m meshDispatch) CmdDrawMeshTasks(_ gfx.CommandBuffer, _, _ uint32) {
	m.driver.mu.Lock()
	defer m.driver.mu.Unlock()
	if !m.mesh {
		m.driver.violations = append(m.driver.violations, "mesh draw without the mesh shader extension")
	}
	m.driver.meshDraws++
}
