// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package renderer

import (
	"github.com/sirupsen/logrus"

	"github.com/devblok/koruvk/core"
	"github.com/devblok/koruvk/gfx"
)

// EngineName is reported to the driver as the engine.
const EngineName = "Koru3D"

// EngineVersion is reported to the driver as the engine version.
var EngineVersion = gfx.MakeVersion(0, 1, 0)

// Configuration describes the renderer configuration
type Configuration struct {
	ApplicationName    string
	ApplicationVersion gfx.Version

	Renderer core.RendererConfiguration

	// Logger defaults to the standard logger
	Logger logrus.FieldLogger

	// Negotiators replace the defaults built from Renderer when set
	NegotiateInstance core.InstanceNegotiator
	NegotiateDevice   core.DeviceNegotiator
}

// NewConfiguration derives the renderer configuration from the engine
// configuration.
func NewConfiguration(cfg core.Configuration, logger logrus.FieldLogger) Configuration {
	return Configuration{
		ApplicationName: cfg.Window.Title,
		Renderer:        cfg.Renderer,
		Logger:          logger,
	}
}

func (c Configuration) logger() logrus.FieldLogger {
	if c.Logger == nil {
		return logrus.StandardLogger()
	}
	return c.Logger
}
