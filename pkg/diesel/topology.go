package diesel

import "github.com/RAIDModding/raid-model-tool/pkg/hashname"

// Face is one triangle of vertex indices.
type Face struct {
	A, B, C uint16
}

// InBounds reports whether all three indices address an array of n items.
func (f Face) InBounds(n int) bool {
	return int(f.A) < n && int(f.B) < n && int(f.C) < n
}

// Topology holds the index buffer of a mesh.
type Topology struct {
	SectionBase
	Unknown1  uint32
	Faces     []Face
	Secondary []byte // opaque block after the faces
	HashName  hashname.Name
	Remaining []byte
}

// Tag implements Section.
func (t *Topology) Tag() uint32 { return TagTopology }

// NewTopology builds a topology from a triangle list.
func NewTopology(id uint32, name string, faces []Face) *Topology {
	return &Topology{
		SectionBase: SectionBase{SectionID: id},
		Faces:       faces,
		Secondary:   []byte{},
		HashName:    hashname.FromString(name + ".Topology"),
	}
}

// IndexCount returns the number of vertex indices, three per triangle.
func (t *Topology) IndexCount() int {
	return 3 * len(t.Faces)
}

func decodeTopology(r *reader) Section {
	t := &Topology{}
	t.Unknown1 = r.at("unknown1").u32()
	count := r.at("faces").count(2)
	if r.err != nil {
		return t
	}
	if count%3 != 0 {
		r.err = malformed(r.h, "faces", "index count %d is not a multiple of 3", count)
		return t
	}
	t.Faces = make([]Face, count/3)
	for i := range t.Faces {
		t.Faces[i] = Face{A: r.u16(), B: r.u16(), C: r.u16()}
	}
	secondary := r.at("secondary").count(1)
	t.Secondary = r.bytes(secondary)
	t.HashName = hashname.FromHash(r.at("hash_name").u64())
	t.Remaining = r.at("remaining").remaining()
	return t
}

func (t *Topology) writeBody(w *writer) {
	w.at("unknown1").u32(t.Unknown1)
	w.at("faces").u32(uint32(t.IndexCount()))
	for _, f := range t.Faces {
		w.u16(f.A)
		w.u16(f.B)
		w.u16(f.C)
	}
	w.at("secondary").u32(uint32(len(t.Secondary)))
	w.write(t.Secondary)
	w.at("hash_name").u64(t.HashName.Hash)
	w.at("remaining").write(t.Remaining)
}

func (t *Topology) names() []*hashname.Name { return []*hashname.Name{&t.HashName} }
