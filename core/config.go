// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package core

import (
	"os"
	"strconv"

	"github.com/cockroachdb/errors"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/gobuffalo/envy"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"

	"github.com/devblok/koruvk/gfx"
)

// Configuration defines a global engine configuration setting
type Configuration struct {
	Time     TimeConfiguration     `yaml:"time"`
	Window   WindowConfiguration   `yaml:"window"`
	Renderer RendererConfiguration `yaml:"renderer"`
	Log      LogConfiguration      `yaml:"log"`
}

// TimeConfiguration is used to configure time services
type TimeConfiguration struct {
	// FramesPerSecond caps frames per second that is put out
	// To unlimit, set to 0
	FramesPerSecond int `yaml:"framesPerSecond"`
}

// WindowConfiguration is used to configure the main window
type WindowConfiguration struct {
	Title  string `yaml:"title"`
	Width  uint32 `yaml:"width"`
	Height uint32 `yaml:"height"`
}

// RendererConfiguration is used to configure the renderer
type RendererConfiguration struct {
	// APIVersion is the highest API version to request, "major.minor".
	// Empty means whatever the driver supports.
	APIVersion string `yaml:"apiVersion"`

	VSync      bool       `yaml:"vsync"`
	Validation bool       `yaml:"validation"`
	ClearColor mgl32.Vec4 `yaml:"clearColor"`

	// Optional layers and extensions enabled when the driver has them
	Layers           []string `yaml:"layers"`
	Extensions       []string `yaml:"extensions"`
	DeviceExtensions []string `yaml:"deviceExtensions"`
}

// LogConfiguration is used to configure logging
type LogConfiguration struct {
	Level string `yaml:"level"`
}

// DefaultConfiguration returns the configuration used when nothing is set.
func DefaultConfiguration() Configuration {
	return Configuration{
		Time: TimeConfiguration{
			FramesPerSecond: 60,
		},
		Window: WindowConfiguration{
			Title:  "Koru3D",
			Width:  800,
			Height: 600,
		},
		Renderer: RendererConfiguration{
			VSync:      true,
			ClearColor: mgl32.Vec4{0, 0, 0, 1},
		},
		Log: LogConfiguration{
			Level: "info",
		},
	}
}

// LoadConfiguration reads the YAML file at path over the defaults, then
// applies KORU_* overrides from the environment. envFiles are read as
// dotenv files and take precedence over the process environment.
// An empty path skips the file.
func LoadConfiguration(path string, envFiles ...string) (Configuration, error) {
	cfg := DefaultConfiguration()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return cfg, errors.Wrap(err, "read configuration")
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, errors.Wrapf(err, "parse configuration %s", path)
		}
	}
	if len(envFiles) > 0 {
		vars, err := godotenv.Read(envFiles...)
		if err != nil {
			return cfg, errors.Wrap(err, "read env files")
		}
		for key, value := range vars {
			envy.Set(key, value)
		}
	}
	if err := cfg.applyEnvironment(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func (c *Configuration) applyEnvironment() error {
	if err := envBool("KORU_VSYNC", &c.Renderer.VSync); err != nil {
		return err
	}
	if err := envBool("KORU_VALIDATION", &c.Renderer.Validation); err != nil {
		return err
	}
	if err := envUint32("KORU_WIDTH", &c.Window.Width); err != nil {
		return err
	}
	if err := envUint32("KORU_HEIGHT", &c.Window.Height); err != nil {
		return err
	}
	if v := envy.Get("KORU_FPS", ""); v != "" {
		fps, err := strconv.Atoi(v)
		if err != nil {
			return errors.Wrap(err, "KORU_FPS")
		}
		c.Time.FramesPerSecond = fps
	}
	c.Renderer.APIVersion = envy.Get("KORU_API_VERSION", c.Renderer.APIVersion)
	c.Log.Level = envy.Get("KORU_LOG_LEVEL", c.Log.Level)
	return nil
}

func envBool(key string, dst *bool) error {
	v := envy.Get(key, "")
	if v == "" {
		return nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return errors.Wrap(err, key)
	}
	*dst = b
	return nil
}

func envUint32(key string, dst *uint32) error {
	v := envy.Get(key, "")
	if v == "" {
		return nil
	}
	n, err := strconv.ParseUint(v, 10, 32)
	if err != nil {
		return errors.Wrap(err, key)
	}
	*dst = uint32(n)
	return nil
}

// Version parses APIVersion. It returns 0 when no version is set.
func (r RendererConfiguration) Version() (gfx.Version, error) {
	if r.APIVersion == "" {
		return 0, nil
	}
	return gfx.ParseVersion(r.APIVersion)
}

// Swapchain returns the swapchain part of the configuration.
func (r RendererConfiguration) Swapchain() SwapchainConfiguration {
	return SwapchainConfiguration{
		VSync:      r.VSync,
		ClearColor: r.ClearColor,
	}
}

// Apply sets the level of logger.
func (l LogConfiguration) Apply(logger *logrus.Logger) error {
	level, err := logrus.ParseLevel(l.Level)
	if err != nil {
		return errors.Wrap(err, "log level")
	}
	logger.SetLevel(level)
	return nil
}
