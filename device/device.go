// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

// Package device reports what the GPUs behind an instance can do.
package device

import (
	"context"

	"github.com/cockroachdb/errors"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/devblok/koruvk/core"
	"github.com/devblok/koruvk/gfx"
)

// PhysicalDeviceInfo describes available physical properties of a rendering device
type PhysicalDeviceInfo struct {
	ID                uint32                    `json:"id"`
	VendorID          uint32                    `json:"vendorId"`
	DriverVersion     uint32                    `json:"driverVersion"`
	APIVersion        string                    `json:"apiVersion"`
	Type              string                    `json:"type"`
	Name              string                    `json:"name"`
	PipelineCacheUUID uuid.UUID                 `json:"pipelineCacheUuid"`
	Memory            uint64                    `json:"memory"`
	DeviceLocalMemory uint64                    `json:"deviceLocalMemory"`
	Layers            []string                  `json:"layers"`
	Extensions        []string                  `json:"extensions"`
	QueueFamilies     []QueueInfo               `json:"queueFamilies"`
	Features          gfx.Features              `json:"features"`
	MeshShader        *gfx.MeshShaderProperties `json:"meshShader,omitempty"`
	Optimal           bool                      `json:"optimal"`
}

// QueueInfo describes a queue family.
type QueueInfo struct {
	Index    uint32 `json:"index"`
	Count    uint32 `json:"count"`
	Graphics bool   `json:"graphics"`
	Compute  bool   `json:"compute"`
	Transfer bool   `json:"transfer"`
}

// Report queries every GPU of instance concurrently. The GPU a renderer
// would pick is marked optimal.
func Report(ctx context.Context, instance *core.Instance) ([]PhysicalDeviceInfo, error) {
	candidates := instance.PhysicalDevices()
	infos := make([]PhysicalDeviceInfo, len(candidates))

	g, ctx := errgroup.WithContext(ctx)
	for i, candidate := range candidates {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			info, err := describe(instance.Driver(), candidate.Handle)
			if err != nil {
				return errors.Wrapf(err, "describe %s", candidate.Properties.DeviceName)
			}
			infos[i] = info
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	if optimal, err := instance.FindOptimalPhysicalDevice(); err == nil {
		for i, candidate := range candidates {
			infos[i].Optimal = candidate.Handle == optimal.Handle
		}
	}
	return infos, nil
}

func describe(drv gfx.Instance, pd gfx.PhysicalDevice) (PhysicalDeviceInfo, error) {
	snapshot, err := core.QueryPhysicalDevice(drv, pd)
	if err != nil {
		return PhysicalDeviceInfo{}, err
	}
	layers, err := drv.DeviceLayers(pd)
	if err != nil {
		return PhysicalDeviceInfo{}, errors.Wrap(err, "enumerate device layers")
	}
	extensions, err := drv.DeviceExtensions(pd)
	if err != nil {
		return PhysicalDeviceInfo{}, errors.Wrap(err, "enumerate device extensions")
	}

	props := snapshot.Properties
	info := PhysicalDeviceInfo{
		ID:                props.DeviceID,
		VendorID:          props.VendorID,
		DriverVersion:     props.DriverVersion,
		APIVersion:        props.APIVersion.String(),
		Type:              props.DeviceType.String(),
		Name:              props.DeviceName,
		PipelineCacheUUID: props.PipelineCacheUUID,
		Memory:            snapshot.Memory.TotalSize(),
		DeviceLocalMemory: snapshot.Memory.DeviceLocalSize(),
		Features:          snapshot.Features,
	}
	for _, layer := range layers {
		info.Layers = append(info.Layers, layer.Name)
	}
	for _, ext := range extensions {
		info.Extensions = append(info.Extensions, ext.Name)
		if ext.Name == core.ExtensionMeshShader {
			mesh := props.MeshShader
			info.MeshShader = &mesh
		}
	}
	for i, family := range snapshot.QueueFamilies {
		info.QueueFamilies = append(info.QueueFamilies, QueueInfo{
			Index:    uint32(i),
			Count:    family.Count,
			Graphics: family.Flags.Has(gfx.QueueGraphics),
			Compute:  family.Flags.Has(gfx.QueueCompute),
			Transfer: family.Flags.Has(gfx.QueueTransfer),
		})
	}
	return info, nil
}
