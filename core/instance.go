// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

// Package core owns the graphics driver objects a renderer is built on:
// the driver connection, the window surface, the logical device with its
// queues and the swapchain. Every object holds a reference to the objects
// it was created from, so releasing them in any order destroys the driver
// handles leaf first.
package core

import (
	"github.com/cockroachdb/errors"
	"github.com/sirupsen/logrus"

	"github.com/devblok/koruvk/gfx"
)

// InstanceNegotiator lets the host enable optional layers and extensions.
// It returns the API version to request from the driver.
type InstanceNegotiator func(loader gfx.Loader, layers *Layers, extensions *InstanceExtensions) (gfx.Version, error)

// InstanceConfiguration describes the application to the driver.
type InstanceConfiguration struct {
	ApplicationName    string
	ApplicationVersion gfx.Version
	EngineName         string
	EngineVersion      gfx.Version

	// Logger receives driver diagnostics. Defaults to the standard logger.
	Logger logrus.FieldLogger
}

// PhysicalDeviceCandidate is an enumerated GPU together with the data
// device selection looks at.
type PhysicalDeviceCandidate struct {
	Handle     gfx.PhysicalDevice
	Properties gfx.PhysicalDeviceProperties
	Memory     gfx.MemoryProperties
}

var _ gfx.Releasable = (*Instance)(nil)

// Instance owns the driver connection.
type Instance struct {
	shared

	driver     gfx.Instance
	layers     *Layers
	extensions *InstanceExtensions
	apiVersion gfx.Version
	messenger  gfx.DebugMessenger
	candidates []PhysicalDeviceCandidate
	log        logrus.FieldLogger
}

// NewInstance connects to the driver. The extensions the window needs are
// always enabled, negotiate decides on the rest. If the diagnostics
// extension ends up enabled, driver messages are forwarded to the logger.
func NewInstance(loader gfx.Loader, window Window, cfg InstanceConfiguration, negotiate InstanceNegotiator) (_ *Instance, err error) {
	log := cfg.Logger
	if log == nil {
		log = logrus.StandardLogger()
	}

	driverVersion, err := loader.InstanceVersion()
	if err != nil {
		return nil, driverError(err, "query instance version")
	}
	if err := CheckVersion(driverVersion, "driver"); err != nil {
		return nil, err
	}

	layerProps, err := loader.InstanceLayers()
	if err != nil {
		return nil, driverError(err, "enumerate instance layers")
	}
	extensionProps, err := loader.InstanceExtensions()
	if err != nil {
		return nil, driverError(err, "enumerate instance extensions")
	}
	layers := NewLayers(layerProps)
	extensions := NewInstanceExtensions(extensionProps)

	required, err := window.RequiredExtensions()
	if err != nil {
		return nil, errors.Wrap(err, "query window extensions")
	}
	for _, name := range required {
		if err := extensions.Enable(name); err != nil {
			return nil, err
		}
	}

	apiVersion, err := negotiate(loader, layers, extensions)
	if err != nil {
		return nil, errors.Wrap(err, "negotiate instance capabilities")
	}
	if err := CheckVersion(apiVersion, "negotiation"); err != nil {
		return nil, err
	}

	driver, err := loader.CreateInstance(gfx.InstanceCreateInfo{
		ApplicationName:    cfg.ApplicationName,
		ApplicationVersion: cfg.ApplicationVersion,
		EngineName:         cfg.EngineName,
		EngineVersion:      cfg.EngineVersion,
		APIVersion:         apiVersion,
		Layers:             layers.Enabled(),
		Extensions:         extensions.Enabled(),
	})
	if err != nil {
		return nil, driverError(err, "create instance")
	}
	var undo rollback
	undo.push(driver.Destroy)
	defer func() {
		if err != nil {
			undo.run()
		}
	}()

	inst := &Instance{
		driver:     driver,
		layers:     layers,
		extensions: extensions,
		apiVersion: apiVersion,
		log:        log,
	}

	if extensions.DebugReport() {
		messenger, err := driver.CreateDebugMessenger(gfx.DebugMessengerCreateInfo{
			Severities: gfx.AllSeverities,
			Categories: gfx.AllCategories,
			Handler:    forwardDiagnostics(log),
		})
		if err != nil {
			return nil, driverError(err, "create debug messenger")
		}
		inst.messenger = messenger
		undo.push(func() { driver.DestroyDebugMessenger(messenger) })
	}

	devices, err := driver.PhysicalDevices()
	if err != nil {
		return nil, driverError(err, "enumerate physical devices")
	}
	for _, pd := range devices {
		props, err := driver.Properties(pd)
		if err != nil {
			return nil, driverError(err, "query physical device properties")
		}
		memory, err := driver.MemoryProperties(pd)
		if err != nil {
			return nil, driverError(err, "query physical device memory")
		}
		inst.candidates = append(inst.candidates, PhysicalDeviceCandidate{
			Handle:     pd,
			Properties: props,
			Memory:     memory,
		})
	}

	inst.init(inst.destroy)
	log.WithFields(logrus.Fields{
		"api":        apiVersion.String(),
		"layers":     layers.Enabled(),
		"extensions": extensions.Enabled(),
		"devices":    len(inst.candidates),
	}).Info("graphics instance created")
	return inst, nil
}

func forwardDiagnostics(log logrus.FieldLogger) gfx.DebugHandler {
	return func(msg gfx.DebugMessage) {
		entry := log.WithFields(logrus.Fields{
			"category": msg.Categories.String(),
			"layer":    msg.Layer,
			"code":     msg.Code,
		})
		text := msg.Text
		switch {
		case msg.Severity&gfx.SeverityError != 0:
			entry.Error(text)
		case msg.Severity&gfx.SeverityWarning != 0:
			entry.Warn(text)
		case msg.Severity&gfx.SeverityInfo != 0:
			entry.Info(text)
		default:
			entry.Debug(text)
		}
	}
}

func (i *Instance) destroy() {
	if i.messenger != 0 {
		i.driver.DestroyDebugMessenger(i.messenger)
	}
	i.driver.Destroy()
	i.log.Debug("graphics instance destroyed")
}

// Retain adds an owner to the instance.
func (i *Instance) Retain() *Instance {
	i.retain()
	return i
}

// Release drops an owner. The last owner destroys the debug messenger,
// then the driver connection.
func (i *Instance) Release() {
	i.release()
}

// Driver returns the driver connection.
func (i *Instance) Driver() gfx.Instance {
	return i.driver
}

// Layers returns the negotiated layers.
func (i *Instance) Layers() *Layers {
	return i.layers
}

// Extensions returns the negotiated instance extensions.
func (i *Instance) Extensions() *InstanceExtensions {
	return i.extensions
}

// APIVersion returns the API version requested from the driver.
func (i *Instance) APIVersion() gfx.Version {
	return i.apiVersion
}

// Logger returns the logger the instance and its children log to.
func (i *Instance) Logger() logrus.FieldLogger {
	return i.log
}

// PhysicalDevices returns the GPUs enumerated when the instance was created.
func (i *Instance) PhysicalDevices() []PhysicalDeviceCandidate {
	return append([]PhysicalDeviceCandidate(nil), i.candidates...)
}

// FindOptimalPhysicalDevice picks the discrete GPU with the most device
// local memory, or the first GPU when there is no discrete one.
func (i *Instance) FindOptimalPhysicalDevice() (PhysicalDeviceCandidate, error) {
	idx, ok := SelectPhysicalDevice(i.candidates)
	if !ok {
		return PhysicalDeviceCandidate{}, ErrNoPhysicalDevice
	}
	return i.candidates[idx], nil
}

// SelectPhysicalDevice returns the index of the discrete candidate with the
// largest sum of device local heaps. The first of equally sized candidates
// wins. Without discrete candidates it returns 0, it fails on an empty list.
func SelectPhysicalDevice(candidates []PhysicalDeviceCandidate) (int, bool) {
	if len(candidates) == 0 {
		return 0, false
	}
	best, bestSize := -1, uint64(0)
	for idx, c := range candidates {
		if c.Properties.DeviceType != gfx.PhysicalDeviceTypeDiscreteGPU {
			continue
		}
		if size := c.Memory.DeviceLocalSize(); best < 0 || size > bestSize {
			best, bestSize = idx, size
		}
	}
	if best < 0 {
		return 0, true
	}
	return best, true
}
