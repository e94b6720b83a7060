package render

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
	"os"

	"github.com/chewxy/math32"
	"github.com/soypat/levelset/internal/d3"
	"gonum.org/v1/gonum/spatial/r3"
)

const (
	stlHeaderSize   = 84
	stlTriangleSize = 50
	// trianglesInBuffer is the number of triangles streamed per read.
	trianglesInBuffer = 1 << 10
)

// ErrNoTriangles is returned when writing an STL without triangles.
var ErrNoTriangles = errors.New("empty triangle slice")

// CreateSTL writes every triangle read from r to a binary STL file at path.
func CreateSTL(path string, r Renderer) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()
	// Header is written last, once the triangle count is known.
	if _, err = file.Seek(stlHeaderSize, io.SeekStart); err != nil {
		return err
	}
	rd := &stlReader{r: r}
	n, err := io.CopyBuffer(file, rd, make([]byte, stlTriangleSize*trianglesInBuffer))
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNoTriangles
	}
	if _, err = file.Seek(0, io.SeekStart); err != nil {
		return err
	}
	header := stlHeader{Count: uint32(n / stlTriangleSize)}
	if err = binary.Write(file, binary.LittleEndian, &header); err != nil {
		return err
	}
	return file.Close()
}

// WriteSTL writes model triangles to a writer in binary STL file format.
func WriteSTL(w io.Writer, model []r3.Triangle) error {
	if len(model) == 0 {
		return ErrNoTriangles
	}
	if uint64(len(model)) > math.MaxUint32 {
		return fmt.Errorf("%d triangles exceed STL triangle count", len(model))
	}
	bw := bufio.NewWriter(w)
	header := stlHeader{Count: uint32(len(model))}
	if err := binary.Write(bw, binary.LittleEndian, &header); err != nil {
		return err
	}
	var b [stlTriangleSize]byte
	for _, triangle := range model {
		stlFromTriangle(triangle).put(b[:])
		if _, err := bw.Write(b[:]); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// stlHeader defines the STL file header.
type stlHeader struct {
	_     [80]uint8 // Header
	Count uint32    // Number of triangles
}

// stlReader encodes the triangles of a Renderer as STL triangle records.
type stlReader struct {
	r   Renderer
	buf [trianglesInBuffer]r3.Triangle
	eof bool
}

func (sr *stlReader) Read(b []byte) (int, error) {
	if sr.eof {
		return 0, io.EOF
	}
	ntMax := min(len(b)/stlTriangleSize, len(sr.buf))
	if ntMax == 0 {
		return 0, errors.New("stlReader requires at least 50 bytes to write a single triangle")
	}
	nt, err := sr.r.ReadTriangles(sr.buf[:ntMax])
	if nt > ntMax {
		panic("bug: ReadTriangles read more triangles than available in buffer")
	}
	for i, triangle := range sr.buf[:nt] {
		stlFromTriangle(triangle).put(b[i*stlTriangleSize:])
	}
	if err == io.EOF {
		sr.eof = true
		if nt > 0 {
			err = nil
		}
	}
	return nt * stlTriangleSize, err
}

func readBinarySTL(r io.Reader) (output []r3.Triangle, readErr error) {
	var header stlHeader
	if err := binary.Read(r, binary.LittleEndian, &header); err != nil {
		if errors.Is(err, io.ErrUnexpectedEOF) {
			return nil, errors.New("encountered EOF while reading STL header")
		}
		return nil, errors.New("STL header read failed: " + err.Error())
	}
	if header.Count == 0 {
		return nil, errors.New("STL header indicates 0 triangles present")
	}
	var (
		buf            [stlTriangleSize]byte
		d              stlTriangle
		normMismatches int
	)
	for i := 0; i < int(header.Count); i++ {
		if _, err := io.ReadFull(r, buf[:]); err != nil {
			return nil, fmt.Errorf("%d/%d STL triangles read: %w", i, header.Count, err)
		}
		d.get(buf[:])
		if err := d.validate(); err != nil {
			if !errors.Is(err, errCalculatedNormalMismatch) {
				return nil, fmt.Errorf("%d/%d STL triangles read: %w", i, header.Count, err)
			}
			normMismatches++
			readErr = err
		}
		output = append(output, d.toTriangle())
	}
	if normMismatches > 0 {
		readErr = fmt.Errorf("%d triangles: %w", normMismatches, readErr)
	}
	return output, readErr
}

// stlTriangle defines the triangle data within an STL file.
type stlTriangle struct {
	Normal  [3]float32
	Vertex1 [3]float32
	Vertex2 [3]float32
	Vertex3 [3]float32
	_       uint16 // Attribute byte count
}

func stlFromTriangle(t r3.Triangle) stlTriangle {
	return stlTriangle{
		Normal:  to3F32(d3.UnitNormal(t)),
		Vertex1: to3F32(t[0]),
		Vertex2: to3F32(t[1]),
		Vertex3: to3F32(t[2]),
	}
}

func (t stlTriangle) put(b []byte) {
	_ = b[stlTriangleSize-1] // early bounds check
	put3F32(b, t.Normal)
	put3F32(b[12:], t.Vertex1)
	put3F32(b[24:], t.Vertex2)
	put3F32(b[36:], t.Vertex3)
	binary.LittleEndian.PutUint16(b[48:], 0)
}

func (t *stlTriangle) get(b []byte) {
	_ = b[stlTriangleSize-1] // early bounds check
	get3F32(b, &t.Normal)
	get3F32(b[12:], &t.Vertex1)
	get3F32(b[24:], &t.Vertex2)
	get3F32(b[36:], &t.Vertex3)
}

func put3F32(b []byte, f [3]float32) {
	_ = b[11] // early bounds check
	binary.LittleEndian.PutUint32(b, math.Float32bits(f[0]))
	binary.LittleEndian.PutUint32(b[4:], math.Float32bits(f[1]))
	binary.LittleEndian.PutUint32(b[8:], math.Float32bits(f[2]))
}

func get3F32(b []byte, f *[3]float32) {
	_ = b[11] // early bounds check
	f[0] = math.Float32frombits(binary.LittleEndian.Uint32(b))
	f[1] = math.Float32frombits(binary.LittleEndian.Uint32(b[4:]))
	f[2] = math.Float32frombits(binary.LittleEndian.Uint32(b[8:]))
}

func to3F32(v r3.Vec) [3]float32 {
	return [3]float32{float32(v.X), float32(v.Y), float32(v.Z)}
}

func r3From3F32(f [3]float32) r3.Vec {
	return r3.Vec{X: float64(f[0]), Y: float64(f[1]), Z: float64(f[2])}
}

func bad3F32(f [3]float32) bool {
	return math32.IsNaN(f[0]) || math32.IsInf(f[0], 0) ||
		math32.IsNaN(f[1]) || math32.IsInf(f[1], 0) ||
		math32.IsNaN(f[2]) || math32.IsInf(f[2], 0)
}

var errCalculatedNormalMismatch = errors.New("triangle normal not approximately equal to calculated normal from vertices")

func (t stlTriangle) validate() error {
	const normTol = 5e-2
	if bad3F32(t.Normal) {
		return errors.New("inf/NaN STL triangle normal")
	}
	if bad3F32(t.Vertex1) || bad3F32(t.Vertex2) || bad3F32(t.Vertex3) {
		return errors.New("inf/NaN STL triangle vertex")
	}
	calc := to3F32(d3.UnitNormal(t.toTriangle()))
	if !equalWithin3F32(calc, t.Normal, normTol) {
		return errCalculatedNormalMismatch
	}
	return nil
}

func equalWithin3F32(a, b [3]float32, tol float32) bool {
	return math32.Abs(a[0]-b[0]) <= tol &&
		math32.Abs(a[1]-b[1]) <= tol &&
		math32.Abs(a[2]-b[2]) <= tol
}

func (t stlTriangle) toTriangle() r3.Triangle {
	return r3.Triangle{
		r3From3F32(t.Vertex1),
		r3From3F32(t.Vertex2),
		r3From3F32(t.Vertex3),
	}
}
