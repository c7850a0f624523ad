package diesel

import (
	"fmt"

	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"

	"github.com/RAIDModding/raid-model-tool/pkg/hashname"
)

// MaxUVSets is the number of texture coordinate sets exposed per mesh.
const MaxUVSets = 8

// Mesh is a read-only view of the geometry and triangles behind one model.
// Slices alias the document's sections and must not be modified.
type Mesh struct {
	ModelID   uint32
	Name      hashname.Name
	Transform mgl32.Mat4
	Positions []mgl32.Vec3
	Normals   []mgl32.Vec3
	UVs       [][]mgl32.Vec2
	Faces     []Face
}

// Meshes returns a view of every model that carries geometry, in document
// order. Models without a passthrough link are skipped.
func (d *Document) Meshes() ([]Mesh, error) {
	if !d.resolved {
		return nil, ErrUnresolved
	}
	var out []Mesh
	for _, s := range d.OfKind(KindModel) {
		m := s.(*Model)
		if !m.HasMesh() {
			continue
		}
		pgp, ok := Lookup[*PassthroughGP](d, m.PassthroughGPID)
		if !ok {
			continue
		}
		geom, ok := Lookup[*Geometry](d, pgp.GeometryID)
		if !ok {
			continue
		}
		topo, ok := Lookup[*Topology](d, pgp.TopologyID)
		if !ok {
			continue
		}

		mesh := Mesh{
			ModelID:   m.ID(),
			Name:      m.HashName,
			Transform: m.Transform,
			Positions: geom.Positions,
			Normals:   geom.Normals,
			Faces:     topo.Faces,
		}
		for set := 0; set < MaxUVSets; set++ {
			if len(geom.UVs[set]) > 0 {
				mesh.UVs = append(mesh.UVs, geom.UVs[set])
			}
		}
		out = append(out, mesh)
	}
	return out, nil
}

// Validate checks every face against the attribute arrays it indexes.
// Empty normal and uv arrays are not checked.
func (m *Mesh) Validate() error {
	check := func(field string, n int) error {
		for i, f := range m.Faces {
			if !f.InBounds(n) {
				return &SectionError{
					ID:    m.ModelID,
					Tag:   TagModel,
					Field: indexed("faces", i),
					Err:   ErrIndexOutOfBounds,
					Msg:   fmt.Sprintf("face (%d, %d, %d) exceeds %d %s", f.A, f.B, f.C, n, field),
				}
			}
		}
		return nil
	}

	if err := check("positions", len(m.Positions)); err != nil {
		return err
	}
	if len(m.Normals) > 0 {
		if err := check("normals", len(m.Normals)); err != nil {
			return err
		}
	}
	for set, uvs := range m.UVs {
		if len(uvs) == 0 {
			continue
		}
		if err := check(fmt.Sprintf("uvs in set %d", set), len(uvs)); err != nil {
			return err
		}
	}
	return nil
}

// Bounds returns the axis-aligned box around the positions. An empty mesh
// yields zero vectors.
func (m *Mesh) Bounds() (min, max mgl32.Vec3) {
	if len(m.Positions) == 0 {
		return min, max
	}
	for i := 0; i < 3; i++ {
		min[i] = math32.Inf(1)
		max[i] = math32.Inf(-1)
	}
	for _, p := range m.Positions {
		for i := 0; i < 3; i++ {
			min[i] = math32.Min(min[i], p[i])
			max[i] = math32.Max(max[i], p[i])
		}
	}
	return min, max
}

// Radius returns the distance from the origin to the farthest position.
func (m *Mesh) Radius() float32 {
	var r2 float32
	for _, p := range m.Positions {
		r2 = math32.Max(r2, p.Dot(p))
	}
	return math32.Sqrt(r2)
}
