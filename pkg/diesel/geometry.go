package diesel

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/RAIDModding/raid-model-tool/pkg/hashname"
)

// Geometry holds the vertex streams of a mesh. Headers fixes the order of the
// streams on disk and is written back unchanged; each populated buffer holds
// VertCount entries.
type Geometry struct {
	SectionBase
	VertCount uint32
	Headers   []GeometryHeader

	Positions    []mgl32.Vec3
	Normals      []mgl32.Vec3
	Colors       []Color
	UVs          [10][]mgl32.Vec2 // V is stored negated relative to disk
	BlendIndices [2][]BoneIndices
	BlendWeights [2][]mgl32.Vec3
	Binormals    []mgl32.Vec3
	Tangents     []mgl32.Vec3

	// RawChannels holds, in header order, the data of every channel the
	// codec does not interpret.
	RawChannels [][]byte

	HashName  hashname.Name
	Remaining []byte
}

// Tag implements Section.
func (g *Geometry) Tag() uint32 { return TagGeometry }

// NewGeometry builds a geometry with position, uv, normal, binormal and
// tangent channels, the layout the engine uses for static meshes.
func NewGeometry(id uint32, name string, positions []mgl32.Vec3, uvs []mgl32.Vec2, normals []mgl32.Vec3) *Geometry {
	g := &Geometry{
		SectionBase: SectionBase{SectionID: id},
		VertCount:   uint32(len(positions)),
		Headers: []GeometryHeader{
			{ItemSize: 3, Type: ChannelPosition},
			{ItemSize: 2, Type: TexCoord(0)},
			{ItemSize: 3, Type: ChannelNormal},
			{ItemSize: 3, Type: ChannelBinormal},
			{ItemSize: 3, Type: ChannelTangent},
		},
		Positions: positions,
		Normals:   normals,
		HashName:  hashname.FromString(name + ".Geometry"),
	}
	g.UVs[0] = uvs
	return g
}

// HasChannel reports whether a header of type t is present.
func (g *Geometry) HasChannel(t ChannelType) bool {
	for _, h := range g.Headers {
		if h.Type == t {
			return true
		}
	}
	return false
}

// channelSlot says how the i-th header is handled: interpreted channels get
// their own buffer on first occurrence, everything else is raw.
type channelSlot struct {
	interpreted bool
	set         int // texcoord or blend set index
}

func (g *Geometry) layout() []channelSlot {
	slots := make([]channelSlot, len(g.Headers))
	seen := make(map[ChannelType]bool)
	for i, h := range g.Headers {
		var set int
		switch {
		case h.Type == ChannelPosition, h.Type == ChannelNormal, h.Type == ChannelColor,
			h.Type == ChannelBinormal, h.Type == ChannelTangent:
		case h.Type.isTexCoord():
			set = int(h.Type - ChannelTexCoord0)
		case h.Type == ChannelBlendIndices0, h.Type == ChannelBlendWeight0:
			set = 0
		case h.Type == ChannelBlendIndices1, h.Type == ChannelBlendWeight1:
			set = 1
		default:
			continue
		}
		if seen[h.Type] {
			continue
		}
		seen[h.Type] = true
		slots[i] = channelSlot{interpreted: true, set: set}
	}
	return slots
}

func decodeGeometry(r *reader) Section {
	g := &Geometry{}
	g.VertCount = r.at("vert_count").u32()
	n := r.at("headers").count(8)
	g.Headers = make([]GeometryHeader, 0, n)
	for i := 0; i < n; i++ {
		h := GeometryHeader{ItemSize: r.u32(), Type: ChannelType(r.u32())}
		if r.err != nil {
			return g
		}
		if _, ok := h.ItemSizeBytes(); !ok {
			r.err = malformed(r.h, "headers", "header %d (%s): item size index %d out of range", i, h.Type, h.ItemSize)
			return g
		}
		g.Headers = append(g.Headers, h)
	}

	vc := int(g.VertCount)
	for i, slot := range g.layout() {
		h := g.Headers[i]
		size, _ := h.ItemSizeBytes()
		r.at(h.Type.String())

		if !slot.interpreted {
			g.RawChannels = append(g.RawChannels, r.bytes(r.blockSize(size, g.VertCount)))
			continue
		}

		switch {
		case h.Type == ChannelPosition:
			g.Positions = readVec3Channel(r, vc)
		case h.Type == ChannelNormal:
			g.Normals = readVec3Channel(r, vc)
		case h.Type == ChannelColor:
			if !r.fits(4, vc) {
				return g
			}
			g.Colors = make([]Color, vc)
			for x := range g.Colors {
				b, gr, rd, a := r.u8(), r.u8(), r.u8(), r.u8()
				g.Colors[x] = Color{R: rd, G: gr, B: b, A: a}
			}
		case h.Type.isTexCoord():
			if !r.fits(4, vc) {
				return g
			}
			uvs := make([]mgl32.Vec2, vc)
			for x := range uvs {
				u := halfToFloat(r.u16())
				v := halfToFloat(r.u16())
				uvs[x] = mgl32.Vec2{u, -v}
			}
			g.UVs[slot.set] = uvs
		case h.Type == ChannelBlendIndices0, h.Type == ChannelBlendIndices1:
			if !r.fits(8, vc) {
				return g
			}
			groups := make([]BoneIndices, vc)
			for x := range groups {
				groups[x] = BoneIndices{r.u16(), r.u16(), r.u16(), r.u16()}
			}
			g.BlendIndices[slot.set] = groups
		case h.Type == ChannelBlendWeight0, h.Type == ChannelBlendWeight1:
			g.BlendWeights[slot.set] = readBlendWeights(r, h, vc)
		case h.Type == ChannelBinormal, h.Type == ChannelTangent:
			// TODO: decode binormal/tangent frames once their on-disk layout is
			// confirmed; until then the bytes are skipped and zeros are kept.
			r.take(r.blockSize(size, g.VertCount))
			zeros := make([]mgl32.Vec3, vc)
			if h.Type == ChannelBinormal {
				g.Binormals = zeros
			} else {
				g.Tangents = zeros
			}
		}
		if r.err != nil {
			return g
		}
	}

	g.HashName = hashname.FromHash(r.at("hash_name").u64())
	g.Remaining = r.at("remaining").remaining()
	return g
}

// blockSize returns itemSize*count, failing when it cannot fit the body.
func (r *reader) blockSize(itemSize, count uint32) int {
	total := uint64(itemSize) * uint64(count)
	if r.err == nil && total > uint64(len(r.buf)-r.pos) {
		r.err = malformed(r.h, r.field, "%d vertices of %d bytes exceed remaining %d bytes", count, itemSize, len(r.buf)-r.pos)
		return 0
	}
	return int(total)
}

// fits checks that n items of size bytes remain.
func (r *reader) fits(size, n int) bool {
	r.blockSize(uint32(size), uint32(n))
	return r.err == nil
}

func readVec3Channel(r *reader, vc int) []mgl32.Vec3 {
	if !r.fits(12, vc) {
		return nil
	}
	out := make([]mgl32.Vec3, vc)
	for x := range out {
		out[x] = r.vec3()
	}
	return out
}

func readBlendWeights(r *reader, h GeometryHeader, vc int) []mgl32.Vec3 {
	switch h.ItemSize {
	case 2, 3, 4:
	default:
		r.err = &SectionError{ID: r.h.ID, Tag: r.h.Tag, Field: r.field, Err: ErrUnsupportedChannelEncoding,
			Msg: unsupportedWeightSize(h.ItemSize)}
		return nil
	}
	if !r.fits(int(h.ItemSize)*4, vc) {
		return nil
	}
	if h.ItemSize == 4 {
		r.warnf("section has four weights per vertex")
	}

	out := make([]mgl32.Vec3, vc)
	nonZero, first := 0, -1
	for x := range out {
		var wt mgl32.Vec3
		wt[0] = r.f32()
		wt[1] = r.f32()
		if h.ItemSize >= 3 {
			wt[2] = r.f32()
		}
		if h.ItemSize == 4 {
			if w := r.f32(); w != 0 {
				if first < 0 {
					first = x
				}
				nonZero++
			}
		}
		out[x] = wt
	}
	if nonZero > 0 {
		r.warnf("%d vertices have a non-zero fourth weight (first at vertex %d); it is dropped on write", nonZero, first)
	}
	return out
}

func unsupportedWeightSize(size uint32) string {
	return fmt.Sprintf("blend weight item size %d (want 2, 3 or 4)", size)
}

func (g *Geometry) writeBody(w *writer) {
	vc := int(g.VertCount)
	w.at("vert_count").u32(g.VertCount)
	w.at("headers").u32(uint32(len(g.Headers)))
	for _, h := range g.Headers {
		w.u32(h.ItemSize)
		w.u32(uint32(h.Type))
	}

	raw := 0
	for i, slot := range g.layout() {
		h := g.Headers[i]
		w.at(h.Type.String())
		size, ok := h.ItemSizeBytes()
		if !ok {
			w.malformed("item size index %d out of range", h.ItemSize)
			return
		}

		if !slot.interpreted {
			if raw >= len(g.RawChannels) {
				w.malformed("no data for uninterpreted channel %d", i)
				return
			}
			data := g.RawChannels[raw]
			raw++
			if uint64(len(data)) != uint64(size)*uint64(vc) {
				w.malformed("raw channel holds %d bytes, want %d", len(data), uint64(size)*uint64(vc))
				return
			}
			w.write(data)
			continue
		}

		switch {
		case h.Type == ChannelPosition:
			writeVec3Channel(w, g.Positions, vc)
		case h.Type == ChannelNormal:
			writeVec3Channel(w, g.Normals, vc)
		case h.Type == ChannelColor:
			colors := g.Colors
			if !checkChannelLen(w, len(colors), vc) {
				colors = make([]Color, vc)
			}
			for _, c := range colors {
				w.u8(c.B)
				w.u8(c.G)
				w.u8(c.R)
				w.u8(c.A)
			}
		case h.Type.isTexCoord():
			uvs := g.UVs[slot.set]
			if !checkChannelLen(w, len(uvs), vc) {
				uvs = make([]mgl32.Vec2, vc)
			}
			for _, uv := range uvs {
				w.u16(floatToHalf(uv[0]))
				w.u16(floatToHalf(-uv[1]))
			}
		case h.Type == ChannelBlendIndices0, h.Type == ChannelBlendIndices1:
			groups := g.BlendIndices[slot.set]
			if len(groups) != vc {
				w.warnf("have %d bone index groups for %d vertices, writing zeros", len(groups), vc)
				groups = make([]BoneIndices, vc)
			}
			for _, bi := range groups {
				w.u16(bi[0])
				w.u16(bi[1])
				w.u16(bi[2])
				w.u16(bi[3])
			}
		case h.Type == ChannelBlendWeight0, h.Type == ChannelBlendWeight1:
			writeBlendWeights(w, h, g.BlendWeights[slot.set], vc)
		case h.Type == ChannelBinormal:
			writeFrameChannel(w, g.Binormals, size, vc)
		case h.Type == ChannelTangent:
			writeFrameChannel(w, g.Tangents, size, vc)
		}
		if w.err != nil {
			return
		}
	}

	w.at("hash_name").u64(g.HashName.Hash)
	w.at("remaining").write(g.Remaining)
}

// checkChannelLen accepts a buffer of vc entries. An empty buffer is
// zero-filled with a warning; any other length is an error. It returns false
// when the caller must substitute zeros.
func checkChannelLen(w *writer, n, vc int) bool {
	if n == vc {
		return true
	}
	if n == 0 {
		w.warnf("channel is empty, writing %d zero entries", vc)
		return false
	}
	w.malformed("channel has %d entries, want %d", n, vc)
	return false
}

func writeVec3Channel(w *writer, vs []mgl32.Vec3, vc int) {
	if !checkChannelLen(w, len(vs), vc) {
		vs = make([]mgl32.Vec3, vc)
	}
	for _, v := range vs {
		w.vec3(v)
	}
}

// writeFrameChannel emits exactly the bytes the header declares. Frames are
// only written as 3×f32 when the item size is 12; other sizes get zeros.
func writeFrameChannel(w *writer, vs []mgl32.Vec3, size uint32, vc int) {
	if size != 12 {
		w.write(make([]byte, int(size)*vc))
		return
	}
	if len(vs) != vc {
		vs = make([]mgl32.Vec3, vc)
	}
	for _, v := range vs {
		w.vec3(v)
	}
}

func writeBlendWeights(w *writer, h GeometryHeader, weights []mgl32.Vec3, vc int) {
	switch h.ItemSize {
	case 2, 3, 4:
	default:
		w.fail(&SectionError{ID: w.id, Tag: w.tag, Field: w.field, Err: ErrUnsupportedChannelEncoding,
			Msg: unsupportedWeightSize(h.ItemSize)})
		return
	}
	if h.ItemSize == 4 {
		w.warnf("section has four weights per vertex")
	}
	if len(weights) != vc {
		w.warnf("have %d weights for %d vertices, writing (1,0,0)", len(weights), vc)
		weights = make([]mgl32.Vec3, vc)
		for i := range weights {
			weights[i] = mgl32.Vec3{1, 0, 0}
		}
	}
	for _, wt := range weights {
		w.f32(wt[0])
		w.f32(wt[1])
		switch h.ItemSize {
		case 3:
			w.f32(wt[2])
		case 4:
			w.f32(wt[2])
			w.f32(0)
		}
	}
}

func (g *Geometry) names() []*hashname.Name { return []*hashname.Name{&g.HashName} }
