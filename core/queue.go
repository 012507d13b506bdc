// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package core

import (
	"github.com/devblok/koruvk/gfx"
)

// directQueueFlags are the capabilities the direct queue must have.
const directQueueFlags = gfx.QueueGraphics | gfx.QueueCompute | gfx.QueueTransfer

// Queue is a device queue and the family it came from.
type Queue struct {
	Handle      gfx.Queue
	FamilyIndex uint32
}

// QueueFamily is a queue family as seen by queue selection.
type QueueFamily struct {
	gfx.QueueFamilyProperties

	Index   uint32
	Present bool
}

// FindDirectQueueFamily picks the family that does graphics, compute and
// transfer and can present, preferring the one with most queues.
func FindDirectQueueFamily(families []QueueFamily) (uint32, bool) {
	best := -1
	for i, f := range families {
		if f.Count == 0 || !f.Present || !f.Flags.Has(directQueueFlags) {
			continue
		}
		if best < 0 || f.Count > families[best].Count {
			best = i
		}
	}
	if best < 0 {
		return 0, false
	}
	return families[best].Index, true
}

// FindComputeQueueFamily picks a family for async compute. Dedicated compute
// families come first, then ones without graphics, then ones without
// transfer. Without any of those the direct family is shared.
func FindComputeQueueFamily(families []QueueFamily, direct uint32) uint32 {
	return findDedicatedQueueFamily(families, gfx.QueueCompute, gfx.QueueGraphics, gfx.QueueTransfer, direct)
}

// FindTransferQueueFamily picks a family for uploads, with the same
// preferences as FindComputeQueueFamily applied to transfer.
func FindTransferQueueFamily(families []QueueFamily, direct uint32) uint32 {
	return findDedicatedQueueFamily(families, gfx.QueueTransfer, gfx.QueueGraphics, gfx.QueueCompute, direct)
}

func findDedicatedQueueFamily(families []QueueFamily, want, first, second gfx.QueueFlags, fallback uint32) uint32 {
	for _, without := range []gfx.QueueFlags{first | second, first, second} {
		if idx, ok := findQueueFamily(families, want, without); ok {
			return idx
		}
	}
	return fallback
}

// findQueueFamily returns the family with most queues that has every flag
// in want and none in without.
func findQueueFamily(families []QueueFamily, want, without gfx.QueueFlags) (uint32, bool) {
	best := -1
	for i, f := range families {
		if f.Count == 0 || !f.Flags.Has(want) || f.Flags.Any(without) {
			continue
		}
		if best < 0 || f.Count > families[best].Count {
			best = i
		}
	}
	if best < 0 {
		return 0, false
	}
	return families[best].Index, true
}

// QueueRequests builds one single queue request per distinct family.
func QueueRequests(families ...uint32) []gfx.QueueCreateInfo {
	var requests []gfx.QueueCreateInfo
	for i, family := range families {
		if containsFamily(families[:i], family) {
			continue
		}
		requests = append(requests, gfx.QueueCreateInfo{
			FamilyIndex: family,
			Priorities:  []float32{1.0},
		})
	}
	return requests
}

func containsFamily(families []uint32, family uint32) bool {
	for _, f := range families {
		if f == family {
			return true
		}
	}
	return false
}
