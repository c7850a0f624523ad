package diesel

import "fmt"

// Section type tags.
const (
	TagAnimation                    uint32 = 0x5DC011B8
	TagAuthor                       uint32 = 0x7623C465
	TagMaterialGroup                uint32 = 0x29276B1D
	TagMaterial                     uint32 = 0x3C54609C
	TagObject3D                     uint32 = 0x0FFCD100
	TagModel                        uint32 = 0x62212D88
	TagGeometry                     uint32 = 0x7AB072D3
	TagTopology                     uint32 = 0x4C507A13
	TagPassthroughGP                uint32 = 0xE3A3B1CA
	TagTopologyIP                   uint32 = 0x03B634BD
	TagQuatLinearRotationController uint32 = 0x648A206C
	TagLinearVector3Controller      uint32 = 0x26A5128C
	TagSkinBones                    uint32 = 0x65CC1825
	TagBones                        uint32 = 0x0EB43C77
	TagHashTable                    uint32 = 0x5ED2532F
)

// Kind identifies a section variant.
type Kind int

const (
	KindUnknown Kind = iota
	KindAnimation
	KindAuthor
	KindMaterialGroup
	KindMaterial
	KindObject3D
	KindModel
	KindGeometry
	KindTopology
	KindPassthroughGP
	KindTopologyIP
	KindQuatLinearRotationController
	KindLinearVector3Controller
	KindSkinBones
	KindBones
	KindHashTable

	// KindAny is only used as an expected reference target.
	KindAny Kind = -1
)

var kindNames = map[Kind]string{
	KindUnknown:                      "Unknown",
	KindAnimation:                    "Animation",
	KindAuthor:                       "Author",
	KindMaterialGroup:                "MaterialGroup",
	KindMaterial:                     "Material",
	KindObject3D:                     "Object3D",
	KindModel:                        "Model",
	KindGeometry:                     "Geometry",
	KindTopology:                     "Topology",
	KindPassthroughGP:                "PassthroughGP",
	KindTopologyIP:                   "TopologyIP",
	KindQuatLinearRotationController: "QuatLinearRotationController",
	KindLinearVector3Controller:      "LinearVector3Controller",
	KindSkinBones:                    "SkinBones",
	KindBones:                        "Bones",
	KindHashTable:                    "HashTable",
	KindAny:                          "Any",
}

// String returns the variant name.
func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// accepts reports whether a reference expecting k may point at a section of kind got.
func (k Kind) accepts(got Kind) bool {
	switch k {
	case KindAny:
		return true
	case KindObject3D:
		// a Model is an Object3D with mesh data attached
		return got == KindObject3D || got == KindModel
	}
	return k == got
}
