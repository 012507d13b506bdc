// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package core

import (
	"github.com/cockroachdb/errors"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/sirupsen/logrus"

	"github.com/devblok/koruvk/gfx"
)

// minSwapchainImages is the image count asked for unless the surface
// demands more.
const minSwapchainImages = 3

var (
	hdrSurfaceFormat = gfx.SurfaceFormat{
		Format:     gfx.FormatR16G16B16A16Sfloat,
		ColorSpace: gfx.ColorSpaceExtendedSrgbLinear,
	}

	// ldrSurfaceFormats in order of preference.
	ldrSurfaceFormats = []gfx.Format{
		gfx.FormatR8G8B8A8Srgb,
		gfx.FormatB8G8R8A8Srgb,
		gfx.FormatR8G8B8A8Unorm,
		gfx.FormatB8G8R8A8Unorm,
	}
)

// SwapchainConfiguration configures presentation.
type SwapchainConfiguration struct {
	// VSync forces the FIFO present mode.
	VSync bool

	// ClearColor is what the render target is cleared to when a pass begins.
	ClearColor mgl32.Vec4
}

var _ gfx.Releasable = (*Swapchain)(nil)

// Swapchain owns the presentable images of a surface together with the
// render pass, views and framebuffers used to draw into them.
type Swapchain struct {
	shared

	instance *Instance
	surface  *Surface
	device   *Device
	cfg      SwapchainConfiguration

	current *chain
}

// chain is one generation of the swapchain. Recreation builds a new
// chain from the old one before destroying the old one.
type chain struct {
	capabilities gfx.SurfaceCapabilities
	format       gfx.SurfaceFormat
	presentMode  gfx.PresentMode
	extent       gfx.Extent2D

	renderPass   gfx.RenderPass
	handle       gfx.Swapchain
	images       []gfx.Image
	views        []gfx.ImageView
	framebuffers []gfx.Framebuffer
}

// NewSwapchain creates a swapchain presenting device's direct queue output
// to surface.
func NewSwapchain(instance *Instance, surface *Surface, device *Device, cfg SwapchainConfiguration) (*Swapchain, error) {
	if !device.extensions.Swapchain() {
		return nil, errors.Wrap(ErrCapabilityRequiredButUnsupported, "device extension "+ExtensionSwapchain+" is not enabled")
	}
	s := &Swapchain{
		instance: instance,
		surface:  surface,
		device:   device,
		cfg:      cfg,
	}
	current, err := s.build(0)
	if err != nil {
		return nil, err
	}
	s.current = current
	s.instance.Retain()
	s.surface.Retain()
	s.device.Retain()
	s.init(s.destroy)
	s.logChain("swapchain created")
	return s, nil
}

// Recreate rebuilds the swapchain for the current state of the surface,
// usually after the window was resized. The old swapchain is handed to the
// driver so presentation continues without a gap, then destroyed. On
// failure the old swapchain stays in use. Recreating a released swapchain
// panics.
func (s *Swapchain) Recreate() error {
	if s.current == nil {
		panic("core: recreate of a released swapchain")
	}
	if err := s.device.WaitIdle(); err != nil {
		return err
	}
	next, err := s.build(s.current.handle)
	if err != nil {
		return err
	}
	s.destroyChain(s.current)
	s.current = next
	s.logChain("swapchain recreated")
	return nil
}

func (s *Swapchain) build(old gfx.Swapchain) (_ *chain, err error) {
	drv := s.instance.driver
	pd := s.device.info.Handle
	surface := s.surface.handle

	c := &chain{}
	if c.capabilities, err = drv.SurfaceCapabilities(pd, surface); err != nil {
		return nil, driverError(err, "query surface capabilities")
	}
	formats, err := drv.SurfaceFormats(pd, surface)
	if err != nil {
		return nil, driverError(err, "query surface formats")
	}
	modes, err := drv.SurfacePresentModes(pd, surface)
	if err != nil {
		return nil, driverError(err, "query present modes")
	}

	if c.format, err = SelectSurfaceFormat(formats); err != nil {
		return nil, err
	}
	c.presentMode = SelectPresentMode(modes, s.cfg.VSync)
	c.extent = swapchainExtent(c.capabilities, s.surface.window.Extent())
	if c.extent.Width == 0 || c.extent.Height == 0 {
		return nil, ErrSurfaceExtentZero
	}

	var undo rollback
	defer func() {
		if err != nil {
			undo.run()
		}
	}()

	dev := s.device.driver
	if c.renderPass, err = dev.CreateRenderPass(renderPassInfo(c.format.Format)); err != nil {
		return nil, driverError(err, "create render pass")
	}
	undo.push(func() { dev.DestroyRenderPass(c.renderPass) })

	swapchains := s.device.swapchains
	if c.handle, err = swapchains.CreateSwapchain(gfx.SwapchainCreateInfo{
		Surface:        surface,
		MinImageCount:  swapchainImageCount(c.capabilities),
		Format:         c.format.Format,
		ColorSpace:     c.format.ColorSpace,
		Extent:         c.extent,
		ArrayLayers:    1,
		Usage:          gfx.ImageUsageColorAttachment,
		Transform:      gfx.SurfaceTransformIdentity,
		CompositeAlpha: gfx.CompositeAlphaOpaque,
		PresentMode:    c.presentMode,
		Clipped:        true,
		OldSwapchain:   old,
	}); err != nil {
		return nil, driverError(err, "create swapchain")
	}
	undo.push(func() { swapchains.DestroySwapchain(c.handle) })

	if c.images, err = swapchains.SwapchainImages(c.handle); err != nil {
		return nil, driverError(err, "get swapchain images")
	}

	for _, image := range c.images {
		view, err := dev.CreateImageView(gfx.ImageViewCreateInfo{
			Image:      image,
			Format:     c.format.Format,
			Aspect:     gfx.ImageAspectColor,
			LevelCount: 1,
			LayerCount: 1,
		})
		if err != nil {
			return nil, driverError(err, "create swapchain image view")
		}
		c.views = append(c.views, view)
		undo.push(func() { dev.DestroyImageView(view) })

		fb, err := dev.CreateFramebuffer(gfx.FramebufferCreateInfo{
			RenderPass:  c.renderPass,
			Attachments: []gfx.ImageView{view},
			Width:       c.extent.Width,
			Height:      c.extent.Height,
			Layers:      1,
		})
		if err != nil {
			return nil, driverError(err, "create swapchain framebuffer")
		}
		c.framebuffers = append(c.framebuffers, fb)
		undo.push(func() { dev.DestroyFramebuffer(fb) })
	}
	return c, nil
}

// destroyChain destroys framebuffers, views, the swapchain and then the
// render pass. The images belong to the swapchain.
func (s *Swapchain) destroyChain(c *chain) {
	dev := s.device.driver
	for _, fb := range c.framebuffers {
		dev.DestroyFramebuffer(fb)
	}
	for _, view := range c.views {
		dev.DestroyImageView(view)
	}
	s.device.swapchains.DestroySwapchain(c.handle)
	dev.DestroyRenderPass(c.renderPass)
}

func (s *Swapchain) destroy() {
	if err := s.device.WaitIdle(); err != nil {
		s.instance.log.WithError(err).Warn("device did not go idle before swapchain destruction")
	}
	s.destroyChain(s.current)
	s.current = nil
	s.instance.log.Debug("swapchain destroyed")
	s.device.Release()
	s.surface.Release()
	s.instance.Release()
}

func (s *Swapchain) logChain(msg string) {
	s.instance.log.WithFields(logrus.Fields{
		"format":  s.current.format.Format,
		"present": s.current.presentMode.String(),
		"width":   s.current.extent.Width,
		"height":  s.current.extent.Height,
		"images":  len(s.current.images),
	}).Info(msg)
}

// Retain adds an owner to the swapchain.
func (s *Swapchain) Retain() *Swapchain {
	s.retain()
	return s
}

// Release drops an owner. The last owner destroys the swapchain and
// releases the device, surface and instance.
func (s *Swapchain) Release() {
	s.release()
}

// Handle returns the driver swapchain.
func (s *Swapchain) Handle() gfx.Swapchain {
	return s.current.handle
}

// RenderPass returns the render target description images are drawn with.
func (s *Swapchain) RenderPass() gfx.RenderPass {
	return s.current.renderPass
}

// Images returns the presentable images. They are owned by the driver.
func (s *Swapchain) Images() []gfx.Image {
	return append([]gfx.Image(nil), s.current.images...)
}

// Views returns one view per image.
func (s *Swapchain) Views() []gfx.ImageView {
	return append([]gfx.ImageView(nil), s.current.views...)
}

// Framebuffers returns one framebuffer per image.
func (s *Swapchain) Framebuffers() []gfx.Framebuffer {
	return append([]gfx.Framebuffer(nil), s.current.framebuffers...)
}

// Capabilities returns the surface capabilities the swapchain was built for.
func (s *Swapchain) Capabilities() gfx.SurfaceCapabilities {
	return s.current.capabilities
}

// Format returns the negotiated surface format.
func (s *Swapchain) Format() gfx.SurfaceFormat {
	return s.current.format
}

// PresentMode returns the negotiated present mode.
func (s *Swapchain) PresentMode() gfx.PresentMode {
	return s.current.presentMode
}

// Extent returns the size of the images.
func (s *Swapchain) Extent() gfx.Extent2D {
	return s.current.extent
}

// ClearColor returns the color the render target is cleared to.
func (s *Swapchain) ClearColor() mgl32.Vec4 {
	return s.cfg.ClearColor
}

// SelectSurfaceFormat prefers the extended range linear float format and
// otherwise takes the first available 8 bit format in the order RGBA sRGB,
// BGRA sRGB, RGBA UNORM, BGRA UNORM.
func SelectSurfaceFormat(supported []gfx.SurfaceFormat) (gfx.SurfaceFormat, error) {
	for _, f := range supported {
		if f == hdrSurfaceFormat {
			return f, nil
		}
	}
	for _, want := range ldrSurfaceFormats {
		for _, f := range supported {
			if f.Format == want {
				return f, nil
			}
		}
	}
	return gfx.SurfaceFormat{}, errors.Wrapf(ErrNoSuitableSurfaceFormat, "none of %d offered formats is usable", len(supported))
}

// SelectPresentMode returns FIFO when vsync is on. Otherwise it prefers
// IMMEDIATE, then MAILBOX, and falls back to FIFO which is always there.
func SelectPresentMode(supported []gfx.PresentMode, vsync bool) gfx.PresentMode {
	if vsync {
		return gfx.PresentModeFifo
	}
	for _, want := range []gfx.PresentMode{gfx.PresentModeImmediate, gfx.PresentModeMailbox} {
		for _, mode := range supported {
			if mode == want {
				return mode
			}
		}
	}
	return gfx.PresentModeFifo
}

func swapchainImageCount(caps gfx.SurfaceCapabilities) uint32 {
	count := max(minSwapchainImages, caps.MinImageCount)
	if caps.MaxImageCount != 0 && count > caps.MaxImageCount {
		count = caps.MaxImageCount
	}
	return count
}

// swapchainExtent uses the surface extent, or the window size when the
// surface leaves the choice to the swapchain.
func swapchainExtent(caps gfx.SurfaceCapabilities, window gfx.Extent2D) gfx.Extent2D {
	if caps.CurrentExtent.Width != gfx.UndefinedExtent {
		return caps.CurrentExtent
	}
	return gfx.Extent2D{
		Width:  clamp(window.Width, caps.MinImageExtent.Width, caps.MaxImageExtent.Width),
		Height: clamp(window.Height, caps.MinImageExtent.Height, caps.MaxImageExtent.Height),
	}
}

func clamp(v, lo, hi uint32) uint32 {
	return min(max(v, lo), hi)
}

func renderPassInfo(format gfx.Format) gfx.RenderPassCreateInfo {
	return gfx.RenderPassCreateInfo{
		Attachments: []gfx.AttachmentDescription{{
			Format:        format,
			LoadOp:        gfx.AttachmentLoadOpClear,
			StoreOp:       gfx.AttachmentStoreOpStore,
			InitialLayout: gfx.ImageLayoutUndefined,
			FinalLayout:   gfx.ImageLayoutPresentSrc,
		}},
		Subpasses: []gfx.SubpassDescription{{
			ColorAttachments: []gfx.AttachmentReference{{
				Attachment: 0,
				Layout:     gfx.ImageLayoutColorAttachmentOptimal,
			}},
		}},
	}
}
