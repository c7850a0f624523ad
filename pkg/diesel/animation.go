package diesel

import (
	"github.com/go-gl/mathgl/mgl32"

	"github.com/RAIDModding/raid-model-tool/pkg/hashname"
)

// Animation holds a named list of keyframe values.
type Animation struct {
	SectionBase
	HashName       hashname.Name
	Unknown2       uint32
	KeyframeLength float32
	Items          []float32
	Remaining      []byte
}

// Tag implements Section.
func (a *Animation) Tag() uint32 { return TagAnimation }

func decodeAnimation(r *reader) Section {
	a := &Animation{}
	a.HashName = hashname.FromHash(r.at("hash_name").u64())
	a.Unknown2 = r.at("unknown2").u32()
	a.KeyframeLength = r.at("keyframe_length").f32()
	n := r.at("items").count(4)
	a.Items = make([]float32, n)
	for i := range a.Items {
		a.Items[i] = r.f32()
	}
	a.Remaining = r.at("remaining").remaining()
	return a
}

func (a *Animation) writeBody(w *writer) {
	w.at("hash_name").u64(a.HashName.Hash)
	w.at("unknown2").u32(a.Unknown2)
	w.at("keyframe_length").f32(a.KeyframeLength)
	w.at("items").u32(uint32(len(a.Items)))
	for _, v := range a.Items {
		w.f32(v)
	}
	w.at("remaining").write(a.Remaining)
}

func (a *Animation) names() []*hashname.Name { return []*hashname.Name{&a.HashName} }

// Author records who exported the file and from which source scene.
type Author struct {
	SectionBase
	HashName   hashname.Name
	Email      string
	SourceFile string
	Unknown2   uint32
	Remaining  []byte
}

// Tag implements Section.
func (a *Author) Tag() uint32 { return TagAuthor }

func decodeAuthor(r *reader) Section {
	a := &Author{}
	a.HashName = hashname.FromHash(r.at("hash_name").u64())
	a.Email = r.at("email").cstring()
	a.SourceFile = r.at("source_file").cstring()
	a.Unknown2 = r.at("unknown2").u32()
	a.Remaining = r.at("remaining").remaining()
	return a
}

func (a *Author) writeBody(w *writer) {
	w.at("hash_name").u64(a.HashName.Hash)
	w.at("email").cstring(a.Email)
	w.at("source_file").cstring(a.SourceFile)
	w.at("unknown2").u32(a.Unknown2)
	w.at("remaining").write(a.Remaining)
}

func (a *Author) names() []*hashname.Name { return []*hashname.Name{&a.HashName} }

// ControllerHeader is shared by the keyframe controllers.
type ControllerHeader struct {
	HashName       hashname.Name
	Flags          [4]uint8
	Unknown2       uint32
	KeyframeLength float32
}

func (c *ControllerHeader) read(r *reader) {
	c.HashName = hashname.FromHash(r.at("hash_name").u64())
	copy(c.Flags[:], r.at("flags").take(4))
	c.Unknown2 = r.at("unknown2").u32()
	c.KeyframeLength = r.at("keyframe_length").f32()
}

func (c *ControllerHeader) write(w *writer) {
	w.at("hash_name").u64(c.HashName.Hash)
	w.at("flags").write(c.Flags[:])
	w.at("unknown2").u32(c.Unknown2)
	w.at("keyframe_length").f32(c.KeyframeLength)
}

// QuatKeyframe is a timestamped rotation.
type QuatKeyframe struct {
	Time     float32
	Rotation mgl32.Quat
}

// QuatLinearRotationController linearly interpolates rotations.
type QuatLinearRotationController struct {
	SectionBase
	ControllerHeader
	Keyframes []QuatKeyframe
	Remaining []byte
}

// Tag implements Section.
func (c *QuatLinearRotationController) Tag() uint32 { return TagQuatLinearRotationController }

func decodeQuatLinearRotationController(r *reader) Section {
	c := &QuatLinearRotationController{}
	c.ControllerHeader.read(r)
	n := r.at("keyframes").count(20)
	c.Keyframes = make([]QuatKeyframe, n)
	for i := range c.Keyframes {
		c.Keyframes[i].Time = r.f32()
		c.Keyframes[i].Rotation = r.quat()
	}
	c.Remaining = r.at("remaining").remaining()
	return c
}

func (c *QuatLinearRotationController) writeBody(w *writer) {
	c.ControllerHeader.write(w)
	w.at("keyframes").u32(uint32(len(c.Keyframes)))
	for _, k := range c.Keyframes {
		w.f32(k.Time)
		w.quat(k.Rotation)
	}
	w.at("remaining").write(c.Remaining)
}

func (c *QuatLinearRotationController) names() []*hashname.Name {
	return []*hashname.Name{&c.HashName}
}

// Vec3Keyframe is a timestamped vector.
type Vec3Keyframe struct {
	Time  float32
	Value mgl32.Vec3
}

// LinearVector3Controller linearly interpolates positions.
type LinearVector3Controller struct {
	SectionBase
	ControllerHeader
	Keyframes []Vec3Keyframe
	Remaining []byte
}

// Tag implements Section.
func (c *LinearVector3Controller) Tag() uint32 { return TagLinearVector3Controller }

func decodeLinearVector3Controller(r *reader) Section {
	c := &LinearVector3Controller{}
	c.ControllerHeader.read(r)
	n := r.at("keyframes").count(16)
	c.Keyframes = make([]Vec3Keyframe, n)
	for i := range c.Keyframes {
		c.Keyframes[i].Time = r.f32()
		c.Keyframes[i].Value = r.vec3()
	}
	c.Remaining = r.at("remaining").remaining()
	return c
}

func (c *LinearVector3Controller) writeBody(w *writer) {
	c.ControllerHeader.write(w)
	w.at("keyframes").u32(uint32(len(c.Keyframes)))
	for _, k := range c.Keyframes {
		w.f32(k.Time)
		w.vec3(k.Value)
	}
	w.at("remaining").write(c.Remaining)
}

func (c *LinearVector3Controller) names() []*hashname.Name {
	return []*hashname.Name{&c.HashName}
}
