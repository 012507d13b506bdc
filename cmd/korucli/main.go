// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package main

import (
	"context"
	"encoding/json"
	"flag"
	"io"
	"os"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/pierrec/lz4"
	"github.com/sirupsen/logrus"

	"github.com/devblok/koruvk/core"
	"github.com/devblok/koruvk/core/renderer"
	"github.com/devblok/koruvk/device"
	"github.com/devblok/koruvk/gfx"
	"github.com/devblok/koruvk/gfx/vkr"
)

var (
	output     = flag.String("o", "", "write the report to a file, lz4 compressed when it ends in .lz4")
	validation = flag.Bool("validation", false, "enable the validation layer when available")
)

// headless needs no surface extensions and never presents.
type headless struct{}

func (headless) RequiredExtensions() ([]string, error) { return nil, nil }

func (headless) CreateSurface(gfx.Instance) (gfx.Surface, error) {
	return 0, errors.New("headless window has no surface")
}

func (headless) Extent() gfx.Extent2D { return gfx.Extent2D{} }

func main() {
	flag.Parse()

	logger := logrus.New()
	logger.SetOutput(os.Stderr)
	if err := run(context.Background(), logger); err != nil {
		logger.WithError(err).Error("korucli failed")
		os.Exit(1)
	}
}

func run(ctx context.Context, logger logrus.FieldLogger) error {
	loader, err := vkr.NewLoader(nil)
	if err != nil {
		return err
	}

	cfg := core.DefaultConfiguration().Renderer
	cfg.Validation = *validation
	instance, err := core.NewInstance(loader, headless{}, core.InstanceConfiguration{
		ApplicationName:    "korucli",
		ApplicationVersion: renderer.EngineVersion,
		EngineName:         renderer.EngineName,
		EngineVersion:      renderer.EngineVersion,
		Logger:             logger,
	}, renderer.NegotiateInstance(cfg, logger))
	if err != nil {
		return err
	}
	defer instance.Release()

	infos, err := device.Report(ctx, instance)
	if err != nil {
		return err
	}

	if *output == "" {
		return writeReport(os.Stdout, infos, false)
	}
	f, err := os.Create(*output)
	if err != nil {
		return err
	}
	if err := writeReport(f, infos, strings.HasSuffix(*output, ".lz4")); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// writeReport encodes infos as indented JSON, optionally as an lz4 frame.
func writeReport(w io.Writer, infos []device.PhysicalDeviceInfo, compress bool) error {
	if !compress {
		return encode(w, infos)
	}
	writer := lz4.NewWriter(w)
	if err := encode(writer, infos); err != nil {
		return err
	}
	return errors.Wrap(writer.Close(), "compress report")
}

func encode(w io.Writer, infos []device.PhysicalDeviceInfo) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return errors.Wrap(enc.Encode(infos), "encode report")
}
