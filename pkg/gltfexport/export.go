// Package gltfexport writes the meshes of a model document as a glTF scene.
package gltfexport

import (
	"fmt"
	"io"
	"os"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/pkg/errors"
	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"
	"go.uber.org/multierr"

	"github.com/RAIDModding/raid-model-tool/pkg/diesel"
)

// Build converts meshes into a glTF document with one node per mesh.
// Every mesh is validated first; a face indexing past any attribute array
// aborts the export with diesel.ErrIndexOutOfBounds.
func Build(meshes []diesel.Mesh) (*gltf.Document, error) {
	for i := range meshes {
		if err := meshes[i].Validate(); err != nil {
			return nil, errors.Wrapf(err, "mesh %s", meshes[i].Name.Display())
		}
	}

	doc := gltf.NewDocument()
	doc.Materials = append(doc.Materials, &gltf.Material{
		Name:        "default",
		DoubleSided: true,
	})

	for i := range meshes {
		m := &meshes[i]
		if len(m.Positions) == 0 || len(m.Faces) == 0 {
			continue
		}

		attributes := map[string]uint32{
			"POSITION": modeler.WritePosition(doc, vec3s(m.Positions)),
		}
		if len(m.Normals) > 0 {
			attributes["NORMAL"] = modeler.WriteNormal(doc, vec3s(m.Normals))
		}
		for set, uvs := range m.UVs {
			// glTF puts the texture origin top left, like the model file does
			coords := make([][2]float32, len(uvs))
			for v, uv := range uvs {
				coords[v] = [2]float32{uv[0], -uv[1]}
			}
			attributes[fmt.Sprintf("TEXCOORD_%d", set)] = modeler.WriteTextureCoord(doc, coords)
		}

		indices := make([]uint16, 0, 3*len(m.Faces))
		for _, f := range m.Faces {
			indices = append(indices, f.A, f.B, f.C)
		}
		indicesAccessor := modeler.WriteIndices(doc, indices)

		doc.Meshes = append(doc.Meshes, &gltf.Mesh{
			Name: m.Name.Display(),
			Primitives: []*gltf.Primitive{{
				Indices:    gltf.Index(indicesAccessor),
				Attributes: attributes,
				Material:   gltf.Index(0),
			}},
		})

		node := &gltf.Node{
			Name: m.Name.Display(),
			Mesh: gltf.Index(uint32(len(doc.Meshes) - 1)),
		}
		if m.Transform != (mgl32.Mat4{}) && m.Transform != mgl32.Ident4() {
			node.Matrix = [16]float32(m.Transform)
		}
		doc.Scenes[0].Nodes = append(doc.Scenes[0].Nodes, uint32(len(doc.Nodes)))
		doc.Nodes = append(doc.Nodes, node)
	}
	return doc, nil
}

func vec3s(vs []mgl32.Vec3) [][3]float32 {
	out := make([][3]float32, len(vs))
	for i, v := range vs {
		out[i] = v
	}
	return out
}

// Write encodes doc to w, as a single .glb blob when binary is set and as
// JSON with the buffer embedded otherwise.
func Write(w io.Writer, doc *gltf.Document, binary bool) error {
	if !binary {
		for _, b := range doc.Buffers {
			b.EmbeddedResource()
		}
	}
	encoder := gltf.NewEncoder(w)
	encoder.AsBinary = binary
	return errors.Wrap(encoder.Encode(doc), "encoding glTF")
}

// ExportFile writes every mesh of doc to path.
func ExportFile(doc *diesel.Document, path string, binary bool) (err error) {
	meshes, err := doc.Meshes()
	if err != nil {
		return err
	}
	out, err := Build(meshes)
	if err != nil {
		return err
	}

	f, err := os.Create(path)
	if err != nil {
		return errors.Wrap(err, "creating glTF file")
	}
	defer func() {
		err = multierr.Append(err, f.Close())
	}()
	return Write(f, out, binary)
}
