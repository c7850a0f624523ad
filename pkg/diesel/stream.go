package diesel

import (
	"encoding/binary"
	"fmt"
	"io"
	"math"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/pkg/errors"
)

// reader decodes one section body. Errors are sticky: after the first short
// read every accessor returns zero values and err keeps the first failure.
type reader struct {
	h     SectionHeader
	buf   []byte
	pos   int
	field string
	err   error
	warn  func(Warning)
}

func newReader(h SectionHeader, body []byte, warn func(Warning)) *reader {
	return &reader{h: h, buf: body, warn: warn}
}

// at names the field being decoded, for error messages.
func (r *reader) at(field string) *reader {
	r.field = field
	return r
}

func (r *reader) take(n int) []byte {
	if r.err != nil {
		return nil
	}
	if n < 0 || len(r.buf)-r.pos < n {
		r.err = malformed(r.h, r.field, "need %d bytes at body offset %d, have %d", n, r.pos, len(r.buf)-r.pos)
		return nil
	}
	b := r.buf[r.pos : r.pos+n]
	r.pos += n
	return b
}

func (r *reader) u8() uint8 {
	if b := r.take(1); b != nil {
		return b[0]
	}
	return 0
}

func (r *reader) u16() uint16 {
	if b := r.take(2); b != nil {
		return binary.LittleEndian.Uint16(b)
	}
	return 0
}

func (r *reader) u32() uint32 {
	if b := r.take(4); b != nil {
		return binary.LittleEndian.Uint32(b)
	}
	return 0
}

func (r *reader) u64() uint64 {
	if b := r.take(8); b != nil {
		return binary.LittleEndian.Uint64(b)
	}
	return 0
}

func (r *reader) f32() float32 {
	return math.Float32frombits(r.u32())
}

func (r *reader) vec3() mgl32.Vec3 {
	return mgl32.Vec3{r.f32(), r.f32(), r.f32()}
}

func (r *reader) quat() mgl32.Quat {
	x, y, z, w := r.f32(), r.f32(), r.f32(), r.f32()
	return mgl32.Quat{W: w, V: mgl32.Vec3{x, y, z}}
}

// mat4 reads sixteen floats in storage order.
func (r *reader) mat4() mgl32.Mat4 {
	var m mgl32.Mat4
	for i := range m {
		m[i] = r.f32()
	}
	return m
}

// bytes returns a copy of the next n bytes.
func (r *reader) bytes(n int) []byte {
	b := r.take(n)
	if b == nil {
		if n == 0 && r.err == nil {
			return []byte{}
		}
		return nil
	}
	out := make([]byte, n)
	copy(out, b)
	return out
}

// cstring reads a NUL terminated string, keeping the raw bytes.
func (r *reader) cstring() string {
	if r.err != nil {
		return ""
	}
	for i := r.pos; i < len(r.buf); i++ {
		if r.buf[i] == 0 {
			s := string(r.buf[r.pos:i])
			r.pos = i + 1
			return s
		}
	}
	r.err = malformed(r.h, r.field, "unterminated string at body offset %d", r.pos)
	return ""
}

// count reads a u32 element count and checks that count*elemSize bytes remain.
func (r *reader) count(elemSize int) int {
	n := r.u32()
	if r.err != nil {
		return 0
	}
	if elemSize > 0 && uint64(n)*uint64(elemSize) > uint64(len(r.buf)-r.pos) {
		r.err = malformed(r.h, r.field, "count %d of %d-byte items exceeds remaining %d bytes", n, elemSize, len(r.buf)-r.pos)
		return 0
	}
	return int(n)
}

// remaining returns the bytes between the current position and the section
// end, or nil when nothing is left.
func (r *reader) remaining() []byte {
	if r.err != nil || r.pos >= len(r.buf) {
		return nil
	}
	return r.bytes(len(r.buf) - r.pos)
}

func (r *reader) warnf(format string, args ...interface{}) {
	if r.warn != nil {
		r.warn(Warning{SectionID: r.h.ID, Field: r.field, Message: fmt.Sprintf(format, args...)})
	}
}

// writer encodes section bodies. Like reader its error is sticky.
type writer struct {
	w     io.Writer
	id    uint32
	tag   uint32
	field string
	err   error
	warn  func(Warning)
	scr   [8]byte
}

func newWriter(w io.Writer, warn func(Warning)) *writer {
	return &writer{w: w, warn: warn}
}

func (w *writer) at(field string) *writer {
	w.field = field
	return w
}

func (w *writer) write(b []byte) {
	if w.err != nil {
		return
	}
	if _, err := w.w.Write(b); err != nil {
		w.err = errors.Wrapf(err, "writing section %d field %s", w.id, w.field)
	}
}

func (w *writer) u8(v uint8) {
	w.scr[0] = v
	w.write(w.scr[:1])
}

func (w *writer) u16(v uint16) {
	binary.LittleEndian.PutUint16(w.scr[:2], v)
	w.write(w.scr[:2])
}

func (w *writer) u32(v uint32) {
	binary.LittleEndian.PutUint32(w.scr[:4], v)
	w.write(w.scr[:4])
}

func (w *writer) i32(v int32) {
	w.u32(uint32(v))
}

func (w *writer) u64(v uint64) {
	binary.LittleEndian.PutUint64(w.scr[:8], v)
	w.write(w.scr[:8])
}

func (w *writer) f32(v float32) {
	w.u32(math.Float32bits(v))
}

func (w *writer) vec3(v mgl32.Vec3) {
	w.f32(v[0])
	w.f32(v[1])
	w.f32(v[2])
}

func (w *writer) quat(q mgl32.Quat) {
	w.f32(q.V[0])
	w.f32(q.V[1])
	w.f32(q.V[2])
	w.f32(q.W)
}

func (w *writer) mat4(m mgl32.Mat4) {
	for _, v := range m {
		w.f32(v)
	}
}

func (w *writer) cstring(s string) {
	w.write([]byte(s))
	w.u8(0)
}

// fail records a section error unless one is already pending.
func (w *writer) fail(err error) {
	if w.err == nil {
		w.err = err
	}
}

func (w *writer) malformed(format string, args ...interface{}) {
	w.fail(malformed(SectionHeader{ID: w.id, Tag: w.tag}, w.field, format, args...))
}

func (w *writer) warnf(format string, args ...interface{}) {
	if w.warn != nil {
		w.warn(Warning{SectionID: w.id, Field: w.field, Message: fmt.Sprintf(format, args...)})
	}
}

// seekBuffer is an in-memory io.WriteSeeker used when the caller wants the
// encoded file as bytes.
type seekBuffer struct {
	buf []byte
	pos int
}

func (b *seekBuffer) Write(p []byte) (int, error) {
	end := b.pos + len(p)
	if end > len(b.buf) {
		if end > cap(b.buf) {
			grown := make([]byte, end, 2*end)
			copy(grown, b.buf)
			b.buf = grown
		} else {
			b.buf = b.buf[:end]
		}
	}
	copy(b.buf[b.pos:], p)
	b.pos = end
	return len(p), nil
}

func (b *seekBuffer) Seek(offset int64, whence int) (int64, error) {
	var abs int64
	switch whence {
	case io.SeekStart:
		abs = offset
	case io.SeekCurrent:
		abs = int64(b.pos) + offset
	case io.SeekEnd:
		abs = int64(len(b.buf)) + offset
	default:
		return 0, errors.Errorf("seekBuffer: invalid whence %d", whence)
	}
	if abs < 0 {
		return 0, errors.New("seekBuffer: negative position")
	}
	b.pos = int(abs)
	return abs, nil
}

func (b *seekBuffer) Bytes() []byte {
	return b.buf
}
