package diesel

import (
	"github.com/go-gl/mathgl/mgl32"

	"github.com/RAIDModding/raid-model-tool/pkg/hashname"
)

// ObjectData is the scene node part shared by Object3D and Model.
type ObjectData struct {
	HashName      hashname.Name
	ControllerIDs []uint32 // animation controllers driving this node
	Transform     mgl32.Mat4
	Position      mgl32.Vec3
	ParentID      uint32 // 0 for a root node
}

func (o *ObjectData) read(r *reader) {
	o.HashName = hashname.FromHash(r.at("hash_name").u64())
	n := r.at("controllers").count(4)
	o.ControllerIDs = make([]uint32, n)
	for i := range o.ControllerIDs {
		o.ControllerIDs[i] = r.u32()
	}
	o.Transform = r.at("transform").mat4()
	o.Position = r.at("position").vec3()
	o.ParentID = r.at("parent").u32()
}

func (o *ObjectData) write(w *writer) {
	w.at("hash_name").u64(o.HashName.Hash)
	w.at("controllers").u32(uint32(len(o.ControllerIDs)))
	for _, id := range o.ControllerIDs {
		w.u32(id)
	}
	w.at("transform").mat4(o.Transform)
	w.at("position").vec3(o.Position)
	w.at("parent").u32(o.ParentID)
}

func (o *ObjectData) refs() []ref {
	out := make([]ref, 0, len(o.ControllerIDs)+1)
	out = append(out, ref{field: "parent", id: o.ParentID, want: KindObject3D})
	for i, id := range o.ControllerIDs {
		out = append(out, ref{field: indexed("controllers", i), id: id, want: KindAny})
	}
	return out
}

// Object3D is a node of the scene hierarchy.
type Object3D struct {
	SectionBase
	ObjectData
	Remaining []byte
}

// Tag implements Section.
func (o *Object3D) Tag() uint32 { return TagObject3D }

func decodeObject3D(r *reader) Section {
	o := &Object3D{}
	o.ObjectData.read(r)
	o.Remaining = r.at("remaining").remaining()
	return o
}

func (o *Object3D) writeBody(w *writer) {
	o.ObjectData.write(w)
	w.at("remaining").write(o.Remaining)
}

func (o *Object3D) names() []*hashname.Name { return []*hashname.Name{&o.HashName} }

// RenderAtom is a draw call range within a model's buffers.
type RenderAtom struct {
	BaseVertex          uint32
	TriangleCount       uint32
	BaseIndex           uint32
	GeometrySliceLength uint32
	MaterialID          uint32 // index into the material group, not a section id
}

// ModelVersionBounds marks a model that only carries a bounding box.
const ModelVersionBounds = 6

// Model is a scene node with renderable mesh data attached.
type Model struct {
	SectionBase
	ObjectData
	Version uint32

	// version 6 only
	V6Unknown7 float32
	V6Unknown8 uint32

	// other versions
	PassthroughGPID uint32
	TopologyIPID    uint32
	RenderAtoms     []RenderAtom
	MaterialGroupID uint32
	LightSetID      uint32
	Properties      uint32
	BoundsRadius    float32
	Unknown13       uint32
	SkinBonesID     uint32

	BoundsMin mgl32.Vec3
	BoundsMax mgl32.Vec3
	Remaining []byte
}

// Tag implements Section.
func (m *Model) Tag() uint32 { return TagModel }

// HasMesh reports whether the model references geometry.
func (m *Model) HasMesh() bool {
	return m.Version != ModelVersionBounds
}

func decodeModel(r *reader) Section {
	m := &Model{}
	m.ObjectData.read(r)
	m.Version = r.at("version").u32()
	if m.Version == ModelVersionBounds {
		m.BoundsMin = r.at("bounds").vec3()
		m.BoundsMax = r.vec3()
		m.V6Unknown7 = r.at("v6_unknown7").f32()
		m.V6Unknown8 = r.at("v6_unknown8").u32()
	} else {
		m.PassthroughGPID = r.at("passthrough_gp").u32()
		m.TopologyIPID = r.at("topology_ip").u32()
		n := r.at("render_atoms").count(20)
		m.RenderAtoms = make([]RenderAtom, n)
		for i := range m.RenderAtoms {
			m.RenderAtoms[i] = RenderAtom{
				BaseVertex:          r.u32(),
				TriangleCount:       r.u32(),
				BaseIndex:           r.u32(),
				GeometrySliceLength: r.u32(),
				MaterialID:          r.u32(),
			}
		}
		m.MaterialGroupID = r.at("material_group").u32()
		m.LightSetID = r.at("light_set").u32()
		m.BoundsMin = r.at("bounds").vec3()
		m.BoundsMax = r.vec3()
		m.Properties = r.at("properties").u32()
		m.BoundsRadius = r.at("bounds_radius").f32()
		m.Unknown13 = r.at("unknown13").u32()
		m.SkinBonesID = r.at("skin_bones").u32()
	}
	m.Remaining = r.at("remaining").remaining()
	return m
}

func (m *Model) writeBody(w *writer) {
	m.ObjectData.write(w)
	w.at("version").u32(m.Version)
	if m.Version == ModelVersionBounds {
		w.at("bounds").vec3(m.BoundsMin)
		w.vec3(m.BoundsMax)
		w.at("v6_unknown7").f32(m.V6Unknown7)
		w.at("v6_unknown8").u32(m.V6Unknown8)
	} else {
		w.at("passthrough_gp").u32(m.PassthroughGPID)
		w.at("topology_ip").u32(m.TopologyIPID)
		w.at("render_atoms").u32(uint32(len(m.RenderAtoms)))
		for _, a := range m.RenderAtoms {
			w.u32(a.BaseVertex)
			w.u32(a.TriangleCount)
			w.u32(a.BaseIndex)
			w.u32(a.GeometrySliceLength)
			w.u32(a.MaterialID)
		}
		w.at("material_group").u32(m.MaterialGroupID)
		w.at("light_set").u32(m.LightSetID)
		w.at("bounds").vec3(m.BoundsMin)
		w.vec3(m.BoundsMax)
		w.at("properties").u32(m.Properties)
		w.at("bounds_radius").f32(m.BoundsRadius)
		w.at("unknown13").u32(m.Unknown13)
		w.at("skin_bones").u32(m.SkinBonesID)
	}
	w.at("remaining").write(m.Remaining)
}

func (m *Model) refs() []ref {
	out := m.ObjectData.refs()
	if !m.HasMesh() {
		return out
	}
	return append(out,
		ref{field: "passthrough_gp", id: m.PassthroughGPID, want: KindPassthroughGP},
		ref{field: "topology_ip", id: m.TopologyIPID, want: KindTopologyIP},
		ref{field: "material_group", id: m.MaterialGroupID, want: KindMaterialGroup},
		ref{field: "light_set", id: m.LightSetID, want: KindAny},
		ref{field: "skin_bones", id: m.SkinBonesID, want: KindSkinBones},
	)
}

func (m *Model) names() []*hashname.Name { return []*hashname.Name{&m.HashName} }
