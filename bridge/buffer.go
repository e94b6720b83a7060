package bridge

// FloatBuffer is an owned buffer of float32 triples. The owner must call
// Release exactly once when done reading it, or Detach to take the memory
// over. A nil or released buffer is empty.
type FloatBuffer struct {
	data  []float32
	alloc Allocator
}

// IntBuffer is an owned buffer of int32 values with the same ownership
// rules as FloatBuffer.
type IntBuffer struct {
	data  []int32
	alloc Allocator
}

// Data returns the buffer contents. The slice is invalid after Release.
func (b *FloatBuffer) Data() []float32 {
	if b == nil {
		return nil
	}
	return b.data
}

// Len returns the number of elements in the buffer.
func (b *FloatBuffer) Len() int { return len(b.Data()) }

// Count returns the number of triples in the buffer.
func (b *FloatBuffer) Count() int { return b.Len() / 3 }

// Release frees the buffer memory. Releasing a nil or already
// released buffer does nothing.
func (b *FloatBuffer) Release() {
	if b == nil || b.data == nil {
		return
	}
	b.alloc.FreeFloat32(b.data)
	b.data = nil
}

// Detach transfers ownership of the memory to the caller and leaves
// the buffer empty. The caller becomes responsible for freeing it
// through the Allocator that produced it.
func (b *FloatBuffer) Detach() []float32 {
	if b == nil {
		return nil
	}
	d := b.data
	b.data = nil
	return d
}

// Data returns the buffer contents. The slice is invalid after Release.
func (b *IntBuffer) Data() []int32 {
	if b == nil {
		return nil
	}
	return b.data
}

// Len returns the number of elements in the buffer.
func (b *IntBuffer) Len() int { return len(b.Data()) }

// Count returns the number of triples in the buffer.
func (b *IntBuffer) Count() int { return b.Len() / 3 }

// Release frees the buffer memory. Releasing a nil or already
// released buffer does nothing.
func (b *IntBuffer) Release() {
	if b == nil || b.data == nil {
		return
	}
	b.alloc.FreeInt32(b.data)
	b.data = nil
}

// Detach transfers ownership of the memory to the caller and leaves
// the buffer empty.
func (b *IntBuffer) Detach() []int32 {
	if b == nil {
		return nil
	}
	d := b.data
	b.data = nil
	return d
}

// MeshBuffers is the owned output of a surface extraction: three floats per
// vertex and three vertex indices per triangle.
type MeshBuffers struct {
	Vertices *FloatBuffer
	Indices  *IntBuffer
}

// VertexCount returns the number of vertices.
func (m *MeshBuffers) VertexCount() int {
	if m == nil {
		return 0
	}
	return m.Vertices.Count()
}

// IndexCount returns the number of indices, three per triangle.
func (m *MeshBuffers) IndexCount() int {
	if m == nil {
		return 0
	}
	return m.Indices.Len()
}

// Release frees both buffers. It is safe to call on nil or released buffers.
func (m *MeshBuffers) Release() {
	if m == nil {
		return
	}
	m.Vertices.Release()
	m.Indices.Release()
}
