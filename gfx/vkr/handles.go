// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package vkr

// handles maps the opaque gfx handles to Vulkan objects. Zero is never
// handed out.
type handles[T any] struct {
	next    uint64
	objects map[uint64]T
}

func (h *handles[T]) add(v T) uint64 {
	if h.objects == nil {
		h.objects = make(map[uint64]T)
	}
	h.next++
	h.objects[h.next] = v
	return h.next
}

func (h *handles[T]) get(id uint64) (T, bool) {
	v, ok := h.objects[id]
	return v, ok
}

func (h *handles[T]) remove(id uint64) (T, bool) {
	v, ok := h.objects[id]
	delete(h.objects, id)
	return v, ok
}

func (h *handles[T]) len() int {
	return len(h.objects)
}
