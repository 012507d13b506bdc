// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package renderer

import (
	"github.com/cockroachdb/errors"
	"github.com/sirupsen/logrus"

	"github.com/devblok/koruvk/core"
	"github.com/devblok/koruvk/gfx"
)

// NegotiateInstance returns the default instance negotiator. It asks for
// the configured API version, or the driver's if none is set or the driver
// is older. Validation turns on the validation layer and driver
// diagnostics where available. Surface capabilities 2 is added when the
// window enabled the surface extension. Extra layers and extensions from cfg are
// enabled when the driver has them.
func NegotiateInstance(cfg core.RendererConfiguration, log logrus.FieldLogger) core.InstanceNegotiator {
	return func(loader gfx.Loader, layers *core.Layers, extensions *core.InstanceExtensions) (gfx.Version, error) {
		version, err := loader.InstanceVersion()
		if err != nil {
			return 0, errors.Wrap(err, "query instance version")
		}
		want, err := cfg.Version()
		if err != nil {
			return 0, err
		}
		if want != 0 && want < version {
			version = want
		}

		if cfg.Validation {
			if !layers.TryEnable(core.LayerValidation) {
				log.WithField("layer", core.LayerValidation).Warn("validation requested but not available")
			}
			if !extensions.TryEnable(core.ExtensionDebugReport) {
				log.WithField("extension", core.ExtensionDebugReport).Warn("driver diagnostics not available")
			}
		}
		if extensions.Surface() {
			extensions.TryEnable(core.ExtensionGetSurfaceCapabilities2)
		}
		for _, name := range cfg.Layers {
			if !layers.TryEnable(name) && !layers.IsEnabled(name) {
				log.WithField("layer", name).Warn("configured layer not available")
			}
		}
		for _, name := range cfg.Extensions {
			if !extensions.TryEnable(name) && !extensions.IsEnabled(name) {
				log.WithField("extension", name).Warn("configured extension not available")
			}
		}
		return version, nil
	}
}

// NegotiateDevice returns the default device negotiator. The device must
// run at least the minimum API version and present through the swapchain
// extension. Portability and mesh shading are used when available, as are
// extra device extensions from cfg.
func NegotiateDevice(cfg core.RendererConfiguration, log logrus.FieldLogger) core.DeviceNegotiator {
	return func(info *core.PhysicalDeviceInfo, extensions *core.DeviceExtensions, enabled *gfx.Features) error {
		if err := core.CheckVersion(info.Properties.APIVersion, info.Properties.DeviceName); err != nil {
			return err
		}
		extensions.TryEnable(core.ExtensionPortabilitySubset)
		if err := extensions.Enable(core.ExtensionSwapchain); err != nil {
			return err
		}
		if extensions.TryEnable(core.ExtensionMeshShader) && info.Features.MeshShader {
			enabled.MeshShader = true
			enabled.TaskShader = info.Features.TaskShader
		}
		enabled.SamplerAnisotropy = info.Features.SamplerAnisotropy
		for _, name := range cfg.DeviceExtensions {
			if !extensions.TryEnable(name) && !extensions.IsEnabled(name) {
				log.WithField("extension", name).Warn("configured device extension not available")
			}
		}
		return nil
	}
}
