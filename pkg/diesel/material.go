package diesel

import "github.com/RAIDModding/raid-model-tool/pkg/hashname"

// MaterialItem is one opaque key/value pair of a material.
type MaterialItem struct {
	Key   uint32
	Value uint32
}

// Material names a render material. Most of the body is not understood.
type Material struct {
	SectionBase
	HashName  hashname.Name
	Skipped   [48]byte
	Items     []MaterialItem
	Remaining []byte
}

// Tag implements Section.
func (m *Material) Tag() uint32 { return TagMaterial }

// NewMaterial returns an empty material named name.
func NewMaterial(id uint32, name string) *Material {
	return &Material{SectionBase: SectionBase{SectionID: id}, HashName: hashname.FromString(name)}
}

func decodeMaterial(r *reader) Section {
	m := &Material{}
	m.HashName = hashname.FromHash(r.at("hash_name").u64())
	copy(m.Skipped[:], r.at("skipped").take(len(m.Skipped)))
	n := r.at("items").count(8)
	m.Items = make([]MaterialItem, n)
	for i := range m.Items {
		m.Items[i] = MaterialItem{Key: r.u32(), Value: r.u32()}
	}
	m.Remaining = r.at("remaining").remaining()
	return m
}

func (m *Material) writeBody(w *writer) {
	w.at("hash_name").u64(m.HashName.Hash)
	w.at("skipped").write(m.Skipped[:])
	w.at("items").u32(uint32(len(m.Items)))
	for _, it := range m.Items {
		w.u32(it.Key)
		w.u32(it.Value)
	}
	w.at("remaining").write(m.Remaining)
}

func (m *Material) names() []*hashname.Name { return []*hashname.Name{&m.HashName} }

// MaterialGroup lists the materials used by a model's render atoms.
type MaterialGroup struct {
	SectionBase
	MaterialIDs []uint32
	Remaining   []byte
}

// Tag implements Section.
func (g *MaterialGroup) Tag() uint32 { return TagMaterialGroup }

func decodeMaterialGroup(r *reader) Section {
	g := &MaterialGroup{}
	n := r.at("materials").count(4)
	g.MaterialIDs = make([]uint32, n)
	for i := range g.MaterialIDs {
		g.MaterialIDs[i] = r.u32()
	}
	g.Remaining = r.at("remaining").remaining()
	return g
}

func (g *MaterialGroup) writeBody(w *writer) {
	w.at("materials").u32(uint32(len(g.MaterialIDs)))
	for _, id := range g.MaterialIDs {
		w.u32(id)
	}
	w.at("remaining").write(g.Remaining)
}

func (g *MaterialGroup) refs() []ref {
	out := make([]ref, len(g.MaterialIDs))
	for i, id := range g.MaterialIDs {
		out[i] = ref{field: indexed("materials", i), id: id, want: KindMaterial}
	}
	return out
}
