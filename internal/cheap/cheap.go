// Package cheap allocates buffers on the C heap so they can be handed to a
// foreign caller and freed later by pointer alone.
package cheap

/*
#include <stdlib.h>
*/
import "C"

import (
	"fmt"
	"sync"
	"unsafe"
)

// Allocator tracks live C allocations. Freeing a pointer it did not hand
// out, or one already freed, does nothing. The zero value is ready to use.
type Allocator struct {
	mu   sync.Mutex
	live map[unsafe.Pointer]int // pointer to size in bytes.
	// MaxBytes limits a single allocation. Zero is unlimited.
	MaxBytes int
}

// Default is the allocator used by the shared library entry points.
var Default = &Allocator{}

func (a *Allocator) malloc(n, elemSize int) (unsafe.Pointer, error) {
	if n < 0 || (n > 0 && elemSize > int(^uint(0)>>1)/n) {
		return nil, fmt.Errorf("cannot allocate %d elements of %d bytes", n, elemSize)
	}
	size := n * elemSize
	if a.MaxBytes > 0 && size > a.MaxBytes {
		return nil, fmt.Errorf("allocation of %d bytes exceeds limit of %d", size, a.MaxBytes)
	}
	p := C.malloc(C.size_t(size))
	if p == nil {
		return nil, fmt.Errorf("malloc of %d bytes failed", size)
	}
	a.mu.Lock()
	if a.live == nil {
		a.live = make(map[unsafe.Pointer]int)
	}
	a.live[p] = size
	a.mu.Unlock()
	return p, nil
}

// AllocFloat32 returns n float32 backed by C memory. Contents are not zeroed.
func (a *Allocator) AllocFloat32(n int) ([]float32, error) {
	if n == 0 {
		return []float32{}, nil
	}
	p, err := a.malloc(n, 4)
	if err != nil {
		return nil, err
	}
	return unsafe.Slice((*float32)(p), n), nil
}

// AllocInt32 returns n int32 backed by C memory. Contents are not zeroed.
func (a *Allocator) AllocInt32(n int) ([]int32, error) {
	if n == 0 {
		return []int32{}, nil
	}
	p, err := a.malloc(n, 4)
	if err != nil {
		return nil, err
	}
	return unsafe.Slice((*int32)(p), n), nil
}

// FreeFloat32 frees memory returned by AllocFloat32.
func (a *Allocator) FreeFloat32(s []float32) {
	if cap(s) > 0 {
		a.Free(unsafe.Pointer(unsafe.SliceData(s)))
	}
}

// FreeInt32 frees memory returned by AllocInt32.
func (a *Allocator) FreeInt32(s []int32) {
	if cap(s) > 0 {
		a.Free(unsafe.Pointer(unsafe.SliceData(s)))
	}
}

// Free releases p and reports whether it was a live allocation.
func (a *Allocator) Free(p unsafe.Pointer) bool {
	if p == nil {
		return false
	}
	a.mu.Lock()
	_, ok := a.live[p]
	delete(a.live, p)
	a.mu.Unlock()
	if ok {
		C.free(p)
	}
	return ok
}

// Live returns the number of allocations not yet freed.
func (a *Allocator) Live() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.live)
}

// LiveBytes returns the total size of allocations not yet freed.
func (a *Allocator) LiveBytes() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	n := 0
	for _, size := range a.live {
		n += size
	}
	return n
}
