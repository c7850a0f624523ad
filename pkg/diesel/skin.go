package diesel

import "github.com/go-gl/mathgl/mgl32"

// Bones maps vertex bone slots to bone list entries, one list per mapping.
type Bones struct {
	SectionBase
	Mappings  [][]uint32
	Remaining []byte
}

// Tag implements Section.
func (b *Bones) Tag() uint32 { return TagBones }

func readBoneMappings(r *reader) [][]uint32 {
	n := r.at("mappings").count(4)
	out := make([][]uint32, n)
	for i := range out {
		m := r.count(4)
		out[i] = make([]uint32, m)
		for j := range out[i] {
			out[i][j] = r.u32()
		}
		if r.err != nil {
			return out
		}
	}
	return out
}

func writeBoneMappings(w *writer, mappings [][]uint32) {
	w.at("mappings").u32(uint32(len(mappings)))
	for _, m := range mappings {
		w.u32(uint32(len(m)))
		for _, v := range m {
			w.u32(v)
		}
	}
}

func decodeBones(r *reader) Section {
	b := &Bones{}
	b.Mappings = readBoneMappings(r)
	b.Remaining = r.at("remaining").remaining()
	return b
}

func (b *Bones) writeBody(w *writer) {
	writeBoneMappings(w, b.Mappings)
	w.at("remaining").write(b.Remaining)
}

// SkinBones binds a skinned model to its skeleton.
type SkinBones struct {
	SectionBase
	Mappings            [][]uint32
	RootBoneID          uint32
	BoneIDs             []uint32     // Object3D sections, one per bone
	BindPoses           []mgl32.Mat4 // one per bone
	GlobalSkinTransform mgl32.Mat4
	Remaining           []byte
}

// Tag implements Section.
func (s *SkinBones) Tag() uint32 { return TagSkinBones }

func decodeSkinBones(r *reader) Section {
	s := &SkinBones{}
	s.Mappings = readBoneMappings(r)
	s.RootBoneID = r.at("root_bone").u32()
	n := r.at("bones").count(4 + 64)
	s.BoneIDs = make([]uint32, n)
	for i := range s.BoneIDs {
		s.BoneIDs[i] = r.u32()
	}
	s.BindPoses = make([]mgl32.Mat4, n)
	r.at("bind_poses")
	for i := range s.BindPoses {
		s.BindPoses[i] = r.mat4()
	}
	s.GlobalSkinTransform = r.at("global_skin_transform").mat4()
	s.Remaining = r.at("remaining").remaining()
	return s
}

func (s *SkinBones) writeBody(w *writer) {
	writeBoneMappings(w, s.Mappings)
	w.at("root_bone").u32(s.RootBoneID)
	if len(s.BindPoses) != len(s.BoneIDs) {
		w.at("bind_poses").malformed("%d bind poses for %d bones", len(s.BindPoses), len(s.BoneIDs))
		return
	}
	w.at("bones").u32(uint32(len(s.BoneIDs)))
	for _, id := range s.BoneIDs {
		w.u32(id)
	}
	w.at("bind_poses")
	for _, m := range s.BindPoses {
		w.mat4(m)
	}
	w.at("global_skin_transform").mat4(s.GlobalSkinTransform)
	w.at("remaining").write(s.Remaining)
}

func (s *SkinBones) refs() []ref {
	out := make([]ref, 0, len(s.BoneIDs)+1)
	out = append(out, ref{field: "root_bone", id: s.RootBoneID, want: KindObject3D})
	for i, id := range s.BoneIDs {
		out = append(out, ref{field: indexed("bones", i), id: id, want: KindObject3D})
	}
	return out
}
