// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package main

import (
	"flag"
	"os"
	"runtime"

	"github.com/cockroachdb/errors"
	"github.com/sirupsen/logrus"
	"github.com/veandco/go-sdl2/sdl"

	"github.com/devblok/koruvk/core"
	"github.com/devblok/koruvk/core/renderer"
	"github.com/devblok/koruvk/gfx/vkr"
	"github.com/devblok/koruvk/window/sdlwindow"
)

func init() {
	runtime.LockOSThread()
}

var (
	configPath = flag.String("config", "", "path to a yaml configuration file")
	envFile    = flag.String("env", "", "optional .env file overriding the configuration")
)

func main() {
	flag.Parse()

	logger := logrus.New()
	if err := run(logger); err != nil {
		logger.WithError(err).Error("koru exited")
		os.Exit(1)
	}
}

func run(logger *logrus.Logger) error {
	var envFiles []string
	if *envFile != "" {
		envFiles = append(envFiles, *envFile)
	}
	configuration, err := core.LoadConfiguration(*configPath, envFiles...)
	if err != nil {
		return err
	}
	if err := configuration.Log.Apply(logger); err != nil {
		return err
	}

	if err := sdl.Init(sdl.INIT_VIDEO | sdl.INIT_EVENTS); err != nil {
		return errors.Wrap(err, "sdl.Init()")
	}
	defer sdl.Quit()

	if err := sdl.VulkanLoadLibrary(""); err != nil {
		return errors.Wrap(err, "sdl.VulkanLoadLibrary()")
	}
	defer sdl.VulkanUnloadLibrary()

	window, err := sdlwindow.New(configuration.Window)
	if err != nil {
		return err
	}
	defer func() {
		if err := window.Destroy(); err != nil {
			logger.WithError(err).Warn("destroy window")
		}
	}()

	loader, err := vkr.NewLoader(sdl.VulkanGetVkGetInstanceProcAddr())
	if err != nil {
		return err
	}

	res, err := renderer.Initialize(loader, window, renderer.NewConfiguration(configuration, logger))
	if err != nil {
		return err
	}
	defer res.Release()

	time := core.NewTime(configuration.Time)
	defer time.Stop()

	for range time.FpsTicker().C {
		for event := sdl.PollEvent(); event != nil; event = sdl.PollEvent() {
			switch et := event.(type) {
			case *sdl.KeyboardEvent:
				if et.Keysym.Sym == sdl.K_ESCAPE {
					return finish(logger, time)
				}
			case *sdl.QuitEvent:
				return finish(logger, time)
			case *sdl.WindowEvent:
				if et.Event != sdl.WINDOWEVENT_RESIZED && et.Event != sdl.WINDOWEVENT_SIZE_CHANGED {
					continue
				}
				if err := res.Swapchain.Recreate(); err != nil {
					if errors.Is(err, core.ErrSurfaceExtentZero) {
						continue
					}
					return err
				}
			}
		}
		time.Frame()
	}
	return nil
}

func finish(logger logrus.FieldLogger, time *core.Time) error {
	logger.WithFields(logrus.Fields{
		"frames":  time.Frames(),
		"average": time.AverageFrame(),
	}).Info("event loop exited")
	return nil
}
