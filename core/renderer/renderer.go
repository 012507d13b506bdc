// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

// Package renderer brings up the driver objects in the order they depend
// on each other and hands them to the host.
package renderer

import (
	"time"

	"github.com/cockroachdb/errors"
	"github.com/loov/hrtime"
	"github.com/sirupsen/logrus"

	"github.com/devblok/koruvk/core"
	"github.com/devblok/koruvk/gfx"
)

// Resources are the driver objects a renderer draws with. Each is shared,
// the host may Retain any of them to keep it past Release.
type Resources struct {
	Instance  *core.Instance
	Surface   *core.Surface
	Device    *core.Device
	Swapchain *core.Swapchain
}

var _ gfx.Releasable = Resources{}

// Release drops the references Initialize handed out. Objects are
// destroyed once nothing else retains them.
func (r Resources) Release() {
	for _, res := range r.releasables() {
		res.Release()
	}
}

// releasables lists the resources that are set, in creation order.
func (r Resources) releasables() []gfx.Releasable {
	var out []gfx.Releasable
	if r.Instance != nil {
		out = append(out, r.Instance)
	}
	if r.Surface != nil {
		out = append(out, r.Surface)
	}
	if r.Device != nil {
		out = append(out, r.Device)
	}
	if r.Swapchain != nil {
		out = append(out, r.Swapchain)
	}
	return out
}

// Initialize creates the instance, the window surface, a device on the
// best GPU and a swapchain, in that order. Either all four are returned or
// everything created so far is destroyed and the error is returned.
func Initialize(loader gfx.Loader, window core.Window, cfg Configuration) (res Resources, err error) {
	log := cfg.logger()
	negotiateInstance := cfg.NegotiateInstance
	if negotiateInstance == nil {
		negotiateInstance = NegotiateInstance(cfg.Renderer, log)
	}
	negotiateDevice := cfg.NegotiateDevice
	if negotiateDevice == nil {
		negotiateDevice = NegotiateDevice(cfg.Renderer, log)
	}

	defer func() {
		if err != nil {
			res.Release()
			res = Resources{}
		}
	}()

	begin := hrtime.Now()
	start := begin
	res.Instance, err = core.NewInstance(loader, window, core.InstanceConfiguration{
		ApplicationName:    cfg.ApplicationName,
		ApplicationVersion: cfg.ApplicationVersion,
		EngineName:         EngineName,
		EngineVersion:      EngineVersion,
		Logger:             log,
	}, negotiateInstance)
	if err != nil {
		return res, errors.Wrap(err, "initialize instance")
	}
	stageDone(log, "instance", &start)

	if res.Surface, err = core.NewSurface(res.Instance, window); err != nil {
		return res, errors.Wrap(err, "initialize surface")
	}
	stageDone(log, "surface", &start)

	gpu, err := res.Instance.FindOptimalPhysicalDevice()
	if err != nil {
		return res, errors.Wrap(err, "select physical device")
	}
	if res.Device, err = core.NewDevice(res.Instance, res.Surface, gpu.Handle, negotiateDevice); err != nil {
		return res, errors.Wrapf(err, "initialize device on %s", gpu.Properties.DeviceName)
	}
	stageDone(log, "device", &start)

	if res.Swapchain, err = core.NewSwapchain(res.Instance, res.Surface, res.Device, cfg.Renderer.Swapchain()); err != nil {
		return res, errors.Wrap(err, "initialize swapchain")
	}
	stageDone(log, "swapchain", &start)

	log.WithFields(logrus.Fields{
		"gpu":  gpu.Properties.DeviceName,
		"api":  res.Instance.APIVersion().String(),
		"took": hrtime.Since(begin),
	}).Info("renderer initialized")
	return res, nil
}

func stageDone(log logrus.FieldLogger, stage string, start *time.Duration) {
	now := hrtime.Now()
	log.WithFields(logrus.Fields{
		"stage": stage,
		"took":  now - *start,
	}).Debug("initialization stage done")
	*start = now
}
