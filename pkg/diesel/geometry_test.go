package diesel

import (
	"bytes"
	"errors"
	"testing"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/RAIDModding/raid-model-tool/pkg/hashname"
)

func TestGeometry_Scenario(t *testing.T) {
	data := buildModelFile(nil,
		sec(TagGeometry, 1, scenarioGeometry("tri.Geometry")),
		sec(TagTopology, 2, scenarioTopology("tri.Topology")),
	)
	doc := mustLoad(t, data)

	geom, ok := Lookup[*Geometry](doc, 1)
	if !ok {
		t.Fatal("geometry 1 missing")
	}
	wantPos := []mgl32.Vec3{{0, 0, 0}, {1, 0, 0}, {0, 1, 0}}
	wantUV := []mgl32.Vec2{{0, -1}, {0.5, 0.5}, {1, -0.5}}
	checkGeometry := func(g *Geometry) {
		t.Helper()
		if len(g.Positions) != 3 || len(g.UVs[0]) != 3 {
			t.Fatalf("expected 3 positions and uvs, got %d and %d", len(g.Positions), len(g.UVs[0]))
		}
		for i := range wantPos {
			if !g.Positions[i].ApproxEqual(wantPos[i]) {
				t.Errorf("position %d: expected %v, got %v", i, wantPos[i], g.Positions[i])
			}
			if g.UVs[0][i] != wantUV[i] {
				t.Errorf("uv %d: expected %v, got %v", i, wantUV[i], g.UVs[0][i])
			}
		}
	}
	checkGeometry(geom)

	saved := mustBytes(t, doc)
	if !bytes.Equal(saved, data) {
		t.Errorf("saved file differs from input:\n got %x\nwant %x", saved, data)
	}

	reloaded := mustLoad(t, saved)
	geom, _ = Lookup[*Geometry](reloaded, 1)
	checkGeometry(geom)
	topo, ok := Lookup[*Topology](reloaded, 2)
	if !ok {
		t.Fatal("topology 2 missing")
	}
	if len(topo.Faces) != 1 || topo.Faces[0] != (Face{0, 1, 2}) {
		t.Errorf("expected one face {0 1 2}, got %v", topo.Faces)
	}
}

func TestGeometry_UVHalfRoundTrip(t *testing.T) {
	tests := []struct {
		name string
		uv   mgl32.Vec2
	}{
		{"zero", mgl32.Vec2{0, 0}},
		{"one", mgl32.Vec2{1, 1}},
		{"halves", mgl32.Vec2{0.5, -0.5}},
		{"large", mgl32.Vec2{1024, -2048}},
		{"small", mgl32.Vec2{0.00006103515625, 0.25}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			g := &Geometry{
				SectionBase: SectionBase{SectionID: 1},
				VertCount:   1,
				Headers:     []GeometryHeader{{ItemSize: 2, Type: ChannelTexCoord0}},
			}
			g.UVs[0] = []mgl32.Vec2{tc.uv}

			data, _, err := encodeSection(g)
			if err != nil {
				t.Fatalf("encode failed: %v", err)
			}
			s, _, err := decodeSection(TagGeometry, 1, data)
			if err != nil {
				t.Fatalf("decode failed: %v", err)
			}
			got := s.(*Geometry).UVs[0][0]
			if got != tc.uv {
				t.Errorf("expected %v, got %v", tc.uv, got)
			}
		})
	}
}

func TestGeometry_UVSignOnDisk(t *testing.T) {
	g := &Geometry{
		SectionBase: SectionBase{SectionID: 1},
		VertCount:   1,
		Headers:     []GeometryHeader{{ItemSize: 2, Type: ChannelTexCoord0}},
	}
	g.UVs[0] = []mgl32.Vec2{{1, 0.5}}

	data, _, err := encodeSection(g)
	if err != nil {
		t.Fatalf("encode failed: %v", err)
	}
	// vert_count, header count, header, then u and -v
	want := newBody().u32(1, 1, 2, uint32(ChannelTexCoord0)).u16(0x3C00, 0xB800).u64(0).bytes()
	if !bytes.Equal(data, want) {
		t.Errorf("expected %x, got %x", want, data)
	}
}

func weightGeometry(itemSize uint32, weights ...float32) []byte {
	return newBody().u32(1, 1, itemSize, uint32(ChannelBlendWeight0)).f32(weights...).u64(0).bytes()
}

func TestGeometry_BlendWeightSizes(t *testing.T) {
	tests := []struct {
		name     string
		size     uint32
		weights  []float32
		expected mgl32.Vec3
		warnings int
	}{
		{"two", 2, []float32{0.25, 0.75}, mgl32.Vec3{0.25, 0.75, 0}, 0},
		{"three", 3, []float32{0.5, 0.25, 0.25}, mgl32.Vec3{0.5, 0.25, 0.25}, 0},
		{"four zero w", 4, []float32{0.5, 0.25, 0.25, 0}, mgl32.Vec3{0.5, 0.25, 0.25}, 1},
		{"four nonzero w", 4, []float32{0.4, 0.2, 0.2, 0.2}, mgl32.Vec3{0.4, 0.2, 0.2}, 2},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			s, warns, err := decodeSection(TagGeometry, 1, weightGeometry(tc.size, tc.weights...))
			if err != nil {
				t.Fatalf("decode failed: %v", err)
			}
			g := s.(*Geometry)
			if len(g.BlendWeights[0]) != 1 || g.BlendWeights[0][0] != tc.expected {
				t.Errorf("expected %v, got %v", tc.expected, g.BlendWeights[0])
			}
			if len(warns) != tc.warnings {
				t.Errorf("expected %d warnings, got %v", tc.warnings, warns)
			}

			out, _, err := encodeSection(g)
			if err != nil {
				t.Fatalf("encode failed: %v", err)
			}
			if len(out) != len(weightGeometry(tc.size, tc.weights...)) {
				t.Errorf("encoded %d bytes, want %d", len(out), len(weightGeometry(tc.size, tc.weights...)))
			}
		})
	}
}

func TestGeometry_BlendWeightFourthDropped(t *testing.T) {
	s, _, err := decodeSection(TagGeometry, 1, weightGeometry(4, 0.4, 0.2, 0.2, 0.2))
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	out, _, err := encodeSection(s)
	if err != nil {
		t.Fatalf("encode failed: %v", err)
	}
	if want := weightGeometry(4, 0.4, 0.2, 0.2, 0); !bytes.Equal(out, want) {
		t.Errorf("expected %x, got %x", want, out)
	}
}

func TestGeometry_BlendWeightUnsupportedSize(t *testing.T) {
	for _, size := range []uint32{1, 5, 9} {
		_, _, err := decodeSection(TagGeometry, 1, weightGeometry(size, 1, 0, 0, 0, 0, 0, 0, 0))
		if !errors.Is(err, ErrUnsupportedChannelEncoding) {
			t.Errorf("decode size %d: expected ErrUnsupportedChannelEncoding, got %v", size, err)
		}

		g := &Geometry{
			SectionBase: SectionBase{SectionID: 1},
			VertCount:   1,
			Headers:     []GeometryHeader{{ItemSize: size, Type: ChannelBlendWeight0}},
		}
		g.BlendWeights[0] = []mgl32.Vec3{{1, 0, 0}}
		_, _, err = encodeSection(g)
		if !errors.Is(err, ErrUnsupportedChannelEncoding) {
			t.Errorf("encode size %d: expected ErrUnsupportedChannelEncoding, got %v", size, err)
		}
	}
}

func TestGeometry_WriteFallbacks(t *testing.T) {
	g := &Geometry{
		SectionBase: SectionBase{SectionID: 5},
		VertCount:   2,
		Headers: []GeometryHeader{
			{ItemSize: 3, Type: ChannelPosition},
			{ItemSize: 2, Type: ChannelBlendIndices0},
			{ItemSize: 3, Type: ChannelBlendWeight0},
			{ItemSize: 3, Type: ChannelBinormal},
			{ItemSize: 3, Type: ChannelTangent},
		},
		Tangents: []mgl32.Vec3{{1, 1, 1}},
	}

	data, warns, err := encodeSection(g)
	if err != nil {
		t.Fatalf("encode failed: %v", err)
	}
	// empty positions, missing bone indices and missing weights
	if len(warns) != 3 {
		t.Errorf("expected 3 warnings, got %v", warns)
	}
	for _, w := range warns {
		if w.SectionID != 5 {
			t.Errorf("warning for section %d, want 5", w.SectionID)
		}
	}

	want := newBody().u32(2, 5)
	for _, h := range g.Headers {
		want.u32(h.ItemSize, uint32(h.Type))
	}
	want.raw(make([]byte, 24)) // positions
	want.raw(make([]byte, 16)) // bone indices
	want.f32(1, 0, 0, 1, 0, 0) // unit x weights
	want.raw(make([]byte, 24)) // binormals
	want.raw(make([]byte, 24)) // tangents of the wrong length
	want.u64(0)
	if !bytes.Equal(data, want.bytes()) {
		t.Errorf("expected %x, got %x", want.bytes(), data)
	}
}

func TestGeometry_WrongLengthIsMalformed(t *testing.T) {
	g := &Geometry{
		SectionBase: SectionBase{SectionID: 1},
		VertCount:   3,
		Headers:     []GeometryHeader{{ItemSize: 3, Type: ChannelNormal}},
		Normals:     []mgl32.Vec3{{0, 0, 1}},
	}
	_, _, err := encodeSection(g)
	if !errors.Is(err, ErrMalformedSection) {
		t.Fatalf("expected ErrMalformedSection, got %v", err)
	}
	var se *SectionError
	if errors.As(err, &se) && se.Field != "NORMAL" {
		t.Errorf("expected field NORMAL, got %s", se.Field)
	}
}

func TestGeometry_BinormalBytesSkipped(t *testing.T) {
	data := newBody().u32(1, 2).
		u32(3, uint32(ChannelBinormal)).
		u32(3, uint32(ChannelPosition)).
		f32(9, 9, 9).
		f32(1, 2, 3).
		u64(42).bytes()

	s, _, err := decodeSection(TagGeometry, 1, data)
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	g := s.(*Geometry)
	if len(g.Binormals) != 1 || g.Binormals[0] != (mgl32.Vec3{}) {
		t.Errorf("expected one zero binormal, got %v", g.Binormals)
	}
	if g.Positions[0] != (mgl32.Vec3{1, 2, 3}) {
		t.Errorf("expected position after binormals, got %v", g.Positions[0])
	}
	if g.HashName.Hash != 42 {
		t.Errorf("expected hash 42, got %d", g.HashName.Hash)
	}
}

func TestGeometry_FrameChannelKeepsDeclaredSize(t *testing.T) {
	tests := []struct {
		name     string
		itemSize uint32
		frame    []byte
	}{
		{"4 byte items", 1, []byte{1, 2, 3, 4}},
		{"8 byte items", 2, []byte{1, 2, 3, 4, 5, 6, 7, 8}},
		{"16 byte items", 4, make([]byte, 16)},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			data := newBody().u32(1, 2).
				u32(3, uint32(ChannelPosition)).
				u32(tc.itemSize, uint32(ChannelTangent)).
				f32(1, 2, 3).
				raw(tc.frame).
				u64(hashname.Hash("frame")).bytes()

			s, _, err := decodeSection(TagGeometry, 1, data)
			if err != nil {
				t.Fatalf("decode failed: %v", err)
			}
			out, _, err := encodeSection(s)
			if err != nil {
				t.Fatalf("encode failed: %v", err)
			}
			if len(out) != len(data) {
				t.Fatalf("expected %d bytes, got %d", len(data), len(out))
			}

			again, _, err := decodeSection(TagGeometry, 1, out)
			if err != nil {
				t.Fatalf("decode of saved body failed: %v", err)
			}
			g := again.(*Geometry)
			if g.HashName.Hash != hashname.Hash("frame") {
				t.Errorf("expected hash %016x, got %016x", hashname.Hash("frame"), g.HashName.Hash)
			}
			if len(g.Remaining) != 0 {
				t.Errorf("expected no remaining bytes, got %x", g.Remaining)
			}
		})
	}
}

func TestGeometry_ColorOrder(t *testing.T) {
	data := newBody().u32(1, 1, 1, uint32(ChannelColor)).u8(1, 2, 3, 4).u64(0).bytes()

	s, _, err := decodeSection(TagGeometry, 1, data)
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	c := s.(*Geometry).Colors[0]
	if c != (Color{R: 3, G: 2, B: 1, A: 4}) {
		t.Errorf("expected r3 g2 b1 a4, got %+v", c)
	}

	out, _, err := encodeSection(s)
	if err != nil {
		t.Fatalf("encode failed: %v", err)
	}
	if !bytes.Equal(out, data) {
		t.Errorf("expected %x, got %x", data, out)
	}
}

func TestGeometry_RawChannels(t *testing.T) {
	data := newBody().u32(2, 3).
		u32(1, uint32(ChannelPointSize)).
		u32(3, uint32(ChannelPosition)).
		u32(3, uint32(ChannelPosition)).
		raw([]byte{1, 2, 3, 4, 5, 6, 7, 8}).
		f32(1, 1, 1, 2, 2, 2).
		f32(3, 3, 3, 4, 4, 4).
		u64(7).raw([]byte{0xEE}).bytes()

	s, _, err := decodeSection(TagGeometry, 1, data)
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	g := s.(*Geometry)
	if len(g.RawChannels) != 2 {
		t.Fatalf("expected 2 raw channels, got %d", len(g.RawChannels))
	}
	if len(g.RawChannels[1]) != 24 {
		t.Errorf("repeated POSITION should be raw, got %d bytes", len(g.RawChannels[1]))
	}
	if g.Positions[1] != (mgl32.Vec3{2, 2, 2}) {
		t.Errorf("unexpected positions %v", g.Positions)
	}
	if !bytes.Equal(g.Remaining, []byte{0xEE}) {
		t.Errorf("unexpected remaining %x", g.Remaining)
	}

	out, _, err := encodeSection(g)
	if err != nil {
		t.Fatalf("encode failed: %v", err)
	}
	if !bytes.Equal(out, data) {
		t.Errorf("expected %x, got %x", data, out)
	}
}

func TestGeometry_ItemSizeOutOfRange(t *testing.T) {
	data := newBody().u32(1, 1, 10, uint32(ChannelPosition)).f32(0, 0, 0).u64(0).bytes()
	_, _, err := decodeSection(TagGeometry, 1, data)
	if !errors.Is(err, ErrMalformedSection) {
		t.Fatalf("expected ErrMalformedSection, got %v", err)
	}
}

func TestGeometry_Truncated(t *testing.T) {
	data := newBody().u32(4, 1, 3, uint32(ChannelPosition)).f32(0, 0, 0).bytes()
	_, _, err := decodeSection(TagGeometry, 1, data)
	if !errors.Is(err, ErrMalformedSection) {
		t.Fatalf("expected ErrMalformedSection, got %v", err)
	}
}

func TestNewGeometry(t *testing.T) {
	g := NewGeometry(3, "crate",
		[]mgl32.Vec3{{0, 0, 0}, {1, 0, 0}, {0, 1, 0}},
		[]mgl32.Vec2{{0, 0}, {1, 0}, {0, 1}},
		[]mgl32.Vec3{{0, 0, 1}, {0, 0, 1}, {0, 0, 1}})

	if g.HashName != hashname.FromString("crate.Geometry") {
		t.Errorf("unexpected name %#v", g.HashName)
	}
	if !g.HasChannel(ChannelTangent) || g.HasChannel(ChannelColor) {
		t.Errorf("unexpected channel set %v", g.Headers)
	}

	data, warns, err := encodeSection(g)
	if err != nil {
		t.Fatalf("encode failed: %v", err)
	}
	if len(warns) != 0 {
		t.Errorf("expected no warnings, got %v", warns)
	}
	s, _, err := decodeSection(TagGeometry, 3, data)
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	back := s.(*Geometry)
	if back.VertCount != 3 || back.Normals[2] != (mgl32.Vec3{0, 0, 1}) || back.UVs[0][2] != (mgl32.Vec2{0, 1}) {
		t.Errorf("geometry did not survive encoding: %+v", back)
	}
}

func TestTopology_FaceCountNotTriangles(t *testing.T) {
	data := newBody().u32(0, 4).u16(0, 1, 2, 3).u32(0).u64(0).bytes()
	_, _, err := decodeSection(TagTopology, 1, data)
	if !errors.Is(err, ErrMalformedSection) {
		t.Fatalf("expected ErrMalformedSection, got %v", err)
	}
}

func TestTopology_RoundTrip(t *testing.T) {
	data := newBody().u32(5, 6).u16(0, 1, 2, 2, 1, 3).u32(2).raw([]byte{8, 9}).u64(77).raw([]byte{1}).bytes()

	s, _, err := decodeSection(TagTopology, 1, data)
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	topo := s.(*Topology)
	if len(topo.Faces) != 2 || topo.IndexCount() != 6 {
		t.Errorf("expected 2 faces, got %v", topo.Faces)
	}
	if topo.Faces[1] != (Face{2, 1, 3}) {
		t.Errorf("unexpected second face %v", topo.Faces[1])
	}
	if !bytes.Equal(topo.Secondary, []byte{8, 9}) || topo.HashName.Hash != 77 {
		t.Errorf("unexpected tail %x / %d", topo.Secondary, topo.HashName.Hash)
	}

	out, _, err := encodeSection(topo)
	if err != nil {
		t.Fatalf("encode failed: %v", err)
	}
	if !bytes.Equal(out, data) {
		t.Errorf("expected %x, got %x", data, out)
	}
}
