// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package vkr

import (
	"runtime"
	"unsafe"

	"github.com/devblok/koruvk/gfx"
)

// Structure types of the extensible queries.
const (
	structureTypePhysicalDeviceFeatures2   = 1000059000
	structureTypePhysicalDeviceProperties2 = 1000059001
	structureTypeMeshShaderFeaturesNV      = 1000202000
	structureTypeMeshShaderPropertiesNV    = 1000202001
	physicalDevicePropertiesSize           = 1024
	physicalDeviceFeaturesCount            = 55
)

// The following mirror the C layout of the chained query structures.

type physicalDeviceProperties2 struct {
	sType uint32
	pNext unsafe.Pointer
	// properties holds VkPhysicalDeviceProperties, it is read through
	// vk.GetPhysicalDeviceProperties instead.
	properties [physicalDevicePropertiesSize]byte
}

type physicalDeviceFeatures2 struct {
	sType    uint32
	pNext    unsafe.Pointer
	features [physicalDeviceFeaturesCount]uint32
}

type meshShaderPropertiesNV struct {
	sType                             uint32
	pNext                             unsafe.Pointer
	maxDrawMeshTasksCount             uint32
	maxTaskWorkGroupInvocations       uint32
	maxTaskWorkGroupSize              [3]uint32
	maxTaskTotalMemorySize            uint32
	maxTaskOutputCount                uint32
	maxMeshWorkGroupInvocations       uint32
	maxMeshWorkGroupSize              [3]uint32
	maxMeshTotalMemorySize            uint32
	maxMeshOutputVertices             uint32
	maxMeshOutputPrimitives           uint32
	maxMeshMultiviewViewCount         uint32
	meshOutputPerVertexGranularity    uint32
	meshOutputPerPrimitiveGranularity uint32
}

type meshShaderFeaturesNV struct {
	sType      uint32
	pNext      unsafe.Pointer
	taskShader uint32
	meshShader uint32
}

func (m *meshShaderPropertiesNV) gfx() gfx.MeshShaderProperties {
	return gfx.MeshShaderProperties{
		MaxDrawMeshTasksCount:             m.maxDrawMeshTasksCount,
		MaxTaskWorkGroupInvocations:       m.maxTaskWorkGroupInvocations,
		MaxTaskWorkGroupSize:              m.maxTaskWorkGroupSize,
		MaxTaskTotalMemorySize:            m.maxTaskTotalMemorySize,
		MaxTaskOutputCount:                m.maxTaskOutputCount,
		MaxMeshWorkGroupInvocations:       m.maxMeshWorkGroupInvocations,
		MaxMeshWorkGroupSize:              m.maxMeshWorkGroupSize,
		MaxMeshTotalMemorySize:            m.maxMeshTotalMemorySize,
		MaxMeshOutputVertices:             m.maxMeshOutputVertices,
		MaxMeshOutputPrimitives:           m.maxMeshOutputPrimitives,
		MaxMeshMultiviewViewCount:         m.maxMeshMultiviewViewCount,
		MeshOutputPerVertexGranularity:    m.meshOutputPerVertexGranularity,
		MeshOutputPerPrimitiveGranularity: m.meshOutputPerPrimitiveGranularity,
	}
}

// meshShaderProperties queries the mesh shading limits of gpu.
func (ip *instanceProcs) meshShaderProperties(gpu uintptr) (gfx.MeshShaderProperties, bool) {
	if ip.getPhysicalDeviceProperties2 == nil {
		return gfx.MeshShaderProperties{}, false
	}
	mesh := &meshShaderPropertiesNV{sType: structureTypeMeshShaderPropertiesNV}
	props := &physicalDeviceProperties2{sType: structureTypePhysicalDeviceProperties2, pNext: unsafe.Pointer(mesh)}

	var pinner runtime.Pinner
	defer pinner.Unpin()
	pinner.Pin(mesh)
	pinner.Pin(props)
	ip.getPhysicalDeviceProperties2(gpu, unsafe.Pointer(props))
	return mesh.gfx(), true
}

// meshShaderFeatures queries whether gpu supports task and mesh shaders.
func (ip *instanceProcs) meshShaderFeatures(gpu uintptr) (task, mesh bool) {
	if ip.getPhysicalDeviceFeatures2 == nil {
		return false, false
	}
	ext := &meshShaderFeaturesNV{sType: structureTypeMeshShaderFeaturesNV}
	features := &physicalDeviceFeatures2{sType: structureTypePhysicalDeviceFeatures2, pNext: unsafe.Pointer(ext)}

	var pinner runtime.Pinner
	defer pinner.Unpin()
	pinner.Pin(ext)
	pinner.Pin(features)
	ip.getPhysicalDeviceFeatures2(gpu, unsafe.Pointer(features))
	return ext.taskShader != 0, ext.meshShader != 0
}
