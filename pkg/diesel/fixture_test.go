package diesel

import (
	"bytes"
	"encoding/binary"
	"sort"
	"testing"

	"github.com/RAIDModding/raid-model-tool/pkg/hashname"
)

// body builds little-endian section bodies for tests.
type body struct {
	buf bytes.Buffer
}

func newBody() *body { return &body{} }

func (b *body) u8(vs ...uint8) *body {
	b.buf.Write(vs)
	return b
}

func (b *body) u16(vs ...uint16) *body {
	for _, v := range vs {
		binary.Write(&b.buf, binary.LittleEndian, v)
	}
	return b
}

func (b *body) u32(vs ...uint32) *body {
	for _, v := range vs {
		binary.Write(&b.buf, binary.LittleEndian, v)
	}
	return b
}

func (b *body) u64(v uint64) *body {
	binary.Write(&b.buf, binary.LittleEndian, v)
	return b
}

func (b *body) f32(vs ...float32) *body {
	for _, v := range vs {
		binary.Write(&b.buf, binary.LittleEndian, v)
	}
	return b
}

func (b *body) raw(p []byte) *body {
	b.buf.Write(p)
	return b
}

func (b *body) cstring(s string) *body {
	b.buf.WriteString(s)
	b.buf.WriteByte(0)
	return b
}

func (b *body) identity() *body {
	return b.f32(1, 0, 0, 0, 0, 1, 0, 0, 0, 0, 1, 0, 0, 0, 0, 1)
}

func (b *body) bytes() []byte {
	return b.buf.Bytes()
}

// rawSection is a section as laid out in a test file.
type rawSection struct {
	tag  uint32
	id   uint32
	body []byte
}

func sec(tag, id uint32, b *body) rawSection {
	return rawSection{tag: tag, id: id, body: b.bytes()}
}

// buildModelFile assembles a complete model file with a correct length field.
func buildModelFile(trailing []byte, sections ...rawSection) []byte {
	buf := new(bytes.Buffer)
	binary.Write(buf, binary.LittleEndian, int32(-1))
	binary.Write(buf, binary.LittleEndian, uint32(0))
	binary.Write(buf, binary.LittleEndian, uint32(len(sections)))
	for _, s := range sections {
		binary.Write(buf, binary.LittleEndian, s.tag)
		binary.Write(buf, binary.LittleEndian, s.id)
		binary.Write(buf, binary.LittleEndian, uint32(len(s.body)))
		buf.Write(s.body)
	}
	buf.Write(trailing)

	data := buf.Bytes()
	binary.LittleEndian.PutUint32(data[4:8], uint32(len(data)))
	return data
}

func objectBody(name string, parent uint32, controllers ...uint32) *body {
	b := newBody().u64(hashname.Hash(name)).u32(uint32(len(controllers))).u32(controllers...)
	return b.identity().f32(1, 2, 3).u32(parent)
}

func modelBody(name string, parent, pgp, tip, group, skin uint32) *body {
	b := objectBody(name, parent)
	b.u32(3)        // version
	b.u32(pgp, tip) // passthrough, topology ip
	b.u32(1)        // render atoms
	b.u32(0, 1, 0, 3, 0)
	b.u32(group, 0)            // material group, light set
	b.f32(-1, -1, -1, 1, 1, 1) // bounds
	b.u32(0).f32(1.75).u32(0)  // properties, radius, unknown13
	return b.u32(skin)
}

func materialBody(name string) *body {
	return newBody().u64(hashname.Hash(name)).raw(make([]byte, 48)).u32(1).u32(0xAA, 0xBB)
}

func groupBody(ids ...uint32) *body {
	return newBody().u32(uint32(len(ids))).u32(ids...)
}

func hashTableBody(strs ...string) *body {
	b := newBody().u32(uint32(len(strs)))
	for _, s := range strs {
		b.u32(uint32(len(s))).raw([]byte(s))
	}
	return b
}

// scenarioGeometry is a three vertex geometry with POSITION and TEXCOORD0.
// The UV halves are 0, 0.5, 1 and -0.5, all exact in binary16.
func scenarioGeometry(name string) *body {
	b := newBody().u32(3)
	b.u32(2).u32(3, uint32(ChannelPosition)).u32(2, uint32(ChannelTexCoord0))
	b.f32(0, 0, 0, 1, 0, 0, 0, 1, 0)
	b.u16(0x0000, 0x3C00, 0x3800, 0xB800, 0x3C00, 0x3800)
	return b.u64(hashname.Hash(name))
}

func scenarioTopology(name string) *body {
	return newBody().u32(0).u32(3).u16(0, 1, 2).u32(0).u64(hashname.Hash(name))
}

// fullGeometry exercises every interpreted channel plus an opaque one and a
// tail of unknown bytes. Binormals are zero so the file round trips.
func fullGeometry(name string) *body {
	b := newBody().u32(3)
	b.u32(9)
	b.u32(3, uint32(ChannelPosition))
	b.u32(3, uint32(ChannelNormal))
	b.u32(1, uint32(ChannelColor))
	b.u32(2, uint32(ChannelTexCoord0))
	b.u32(2, uint32(TexCoord(1)))
	b.u32(2, uint32(ChannelBlendIndices0))
	b.u32(3, uint32(ChannelBlendWeight0))
	b.u32(1, uint32(ChannelPointSize))
	b.u32(3, uint32(ChannelBinormal))

	b.f32(0, 0, 0, 1, 0, 0, 0, 1, 0)
	b.f32(0, 0, 1, 0, 0, 1, 0, 0, 1)
	b.u8(10, 20, 30, 255, 11, 21, 31, 255, 12, 22, 32, 128)
	b.u16(0x0000, 0x3C00, 0x3800, 0xB800, 0x3C00, 0x8000)
	b.u16(0x3400, 0x3400, 0x3400, 0x3400, 0x3400, 0x3400)
	b.u16(0, 1, 0, 0, 1, 0, 0, 0, 2, 1, 0, 0)
	b.f32(1, 0, 0, 0.5, 0.5, 0, 0.25, 0.25, 0.5)
	b.raw([]byte{1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12})
	b.raw(make([]byte, 36))
	b.u64(hashname.Hash(name))
	return b.raw([]byte{0xCA, 0xFE})
}

// roundTripFile is a model file already in save order with a hash table that
// matches the rebuilt one, so saving it must reproduce it byte for byte.
func roundTripFile() []byte {
	strs := []string{"mat_a", "mesh", "mesh.Geometry", "mesh.Topology", "root"}
	sort.Strings(strs)
	return buildModelFile([]byte("tail"),
		sec(TagAnimation, 1, newBody().u64(0x1111).u32(0).f32(0.5).u32(2).f32(0, 1)),
		sec(TagAuthor, 2, newBody().u64(0x2222).cstring("me@example.com").cstring("scene.max").u32(7)),
		sec(TagMaterialGroup, 3, groupBody(4)),
		sec(TagMaterial, 4, materialBody("mat_a")),
		sec(TagObject3D, 5, objectBody("root", 0, 13)),
		sec(TagModel, 6, modelBody("mesh", 5, 9, 10, 3, 0)),
		sec(TagGeometry, 7, fullGeometry("mesh.Geometry")),
		sec(TagTopology, 8, scenarioTopology("mesh.Topology").raw([]byte{9, 9})),
		sec(TagPassthroughGP, 9, newBody().u32(7, 8)),
		sec(TagTopologyIP, 10, newBody().u32(8)),
		sec(0xDEADBEEF, 11, newBody().raw([]byte("opaque body"))),
		sec(TagHashTable, 12, hashTableBody(strs...)),
		sec(TagLinearVector3Controller, 13,
			newBody().u64(0x3333).u8(1, 0, 0, 0).u32(0).f32(1).u32(1).f32(0, 1, 2, 3)),
	)
}

func mustLoad(t *testing.T, data []byte, opts ...Option) *Document {
	t.Helper()
	doc, err := Load(data, opts...)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	return doc
}

func mustBytes(t *testing.T, doc *Document, opts ...SaveOption) []byte {
	t.Helper()
	data, err := doc.Bytes(opts...)
	if err != nil {
		t.Fatalf("Bytes failed: %v", err)
	}
	return data
}

// encodeSection writes s alone and returns its body.
func encodeSection(s Section) ([]byte, []Warning, error) {
	var buf seekBuffer
	var warns []Warning
	_, err := writeSection(&buf, s, func(w Warning) { warns = append(warns, w) })
	if err != nil {
		return nil, warns, err
	}
	return buf.Bytes()[sectionHeaderSize:], warns, nil
}

// decodeSection decodes body as a section of the given tag.
func decodeSection(tag, id uint32, data []byte) (Section, []Warning, error) {
	var warns []Warning
	h := SectionHeader{Tag: tag, ID: id, Size: uint32(len(data))}
	s, err := decodeBody(h, data, func(w Warning) { warns = append(warns, w) })
	return s, warns, err
}
