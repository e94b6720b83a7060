package bridge

import "fmt"

// Allocator provides the memory behind buffers handed out by a Bridge.
// Buffers that cross into a foreign host are allocated outside the Go heap
// so they outlive the call that produced them.
type Allocator interface {
	AllocFloat32(n int) ([]float32, error)
	AllocInt32(n int) ([]int32, error)
	// FreeFloat32 and FreeInt32 release memory returned by the matching
	// Alloc method. They must tolerate nil and repeated frees.
	FreeFloat32([]float32)
	FreeInt32([]int32)
}

// HeapAllocator allocates from the Go heap. Freed memory is reclaimed by the
// garbage collector.
type HeapAllocator struct {
	// MaxElems limits the length of a single allocation. Zero is unlimited.
	MaxElems int
}

var _ Allocator = HeapAllocator{}

func (h HeapAllocator) check(n int) error {
	if n < 0 || (h.MaxElems > 0 && n > h.MaxElems) {
		return fmt.Errorf("cannot allocate %d elements", n)
	}
	return nil
}

// AllocFloat32 returns a zeroed slice of n float32.
func (h HeapAllocator) AllocFloat32(n int) ([]float32, error) {
	if err := h.check(n); err != nil {
		return nil, err
	}
	return make([]float32, n), nil
}

// AllocInt32 returns a zeroed slice of n int32.
func (h HeapAllocator) AllocInt32(n int) ([]int32, error) {
	if err := h.check(n); err != nil {
		return nil, err
	}
	return make([]int32, n), nil
}

func (HeapAllocator) FreeFloat32([]float32) {}
func (HeapAllocator) FreeInt32([]int32)     {}
