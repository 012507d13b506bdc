// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package main

import (
	"bytes"
	"encoding/json"
	"io"
	"testing"

	qt "github.com/frankban/quicktest"
	"github.com/pierrec/lz4"

	"github.com/devblok/koruvk/device"
)

var report = []device.PhysicalDeviceInfo{{
	Name:       "Mock Discrete",
	Type:       "discrete",
	APIVersion: "1.2.0",
	Extensions: []string{"VK_KHR_swapchain"},
	Optimal:    true,
}}

func TestWriteReport(t *testing.T) {
	c := qt.New(t)

	var buf bytes.Buffer
	c.Assert(writeReport(&buf, report, false), qt.IsNil)

	var decoded []map[string]interface{}
	c.Assert(json.Unmarshal(buf.Bytes(), &decoded), qt.IsNil)
	c.Assert(decoded, qt.HasLen, 1)
	c.Assert(decoded[0]["name"], qt.Equals, "Mock Discrete")
	c.Assert(decoded[0]["apiVersion"], qt.Equals, "1.2.0")
	c.Assert(decoded[0]["optimal"], qt.Equals, true)
	_, ok := decoded[0]["meshShader"]
	c.Assert(ok, qt.IsFalse)
}

func TestWriteReportCompressed(t *testing.T) {
	c := qt.New(t)

	var plain, compressed bytes.Buffer
	c.Assert(writeReport(&plain, report, false), qt.IsNil)
	c.Assert(writeReport(&compressed, report, true), qt.IsNil)
	c.Assert(compressed.Bytes(), qt.Not(qt.DeepEquals), plain.Bytes())

	data, err := io.ReadAll(lz4.NewReader(&compressed))
	c.Assert(err, qt.IsNil)
	c.Assert(string(data), qt.Equals, plain.String())
}

func TestHeadless(t *testing.T) {
	c := qt.New(t)

	exts, err := headless{}.RequiredExtensions()
	c.Assert(err, qt.IsNil)
	c.Assert(exts, qt.HasLen, 0)
	_, err = headless{}.CreateSurface(nil)
	c.Assert(err, qt.ErrorMatches, "headless window has no surface")
}
