package diesel

import (
	"fmt"

	"github.com/x448/float16"
)

// ChannelType is the semantic of one per-vertex stream in a Geometry section.
// The values are the shader input names the engine compiles against.
type ChannelType uint32

const (
	ChannelPosition      ChannelType = 1
	ChannelNormal        ChannelType = 2
	ChannelPosition1     ChannelType = 3
	ChannelNormal1       ChannelType = 4
	ChannelColor         ChannelType = 5
	ChannelColor1        ChannelType = 6
	ChannelTexCoord0     ChannelType = 7
	ChannelTexCoord9     ChannelType = 16
	ChannelBlendIndices0 ChannelType = 17
	ChannelBlendIndices1 ChannelType = 18
	ChannelBlendWeight0  ChannelType = 19
	ChannelBlendWeight1  ChannelType = 20
	ChannelPointSize     ChannelType = 21
	ChannelBinormal      ChannelType = 22
	ChannelTangent       ChannelType = 23
)

// TexCoord returns the channel type of texture coordinate set n (0-9).
func TexCoord(n int) ChannelType {
	return ChannelTexCoord0 + ChannelType(n)
}

// String returns the shader semantic name.
func (c ChannelType) String() string {
	switch {
	case c == ChannelPosition:
		return "POSITION"
	case c == ChannelNormal:
		return "NORMAL"
	case c == ChannelPosition1:
		return "POSITION1"
	case c == ChannelNormal1:
		return "NORMAL1"
	case c == ChannelColor:
		return "COLOR"
	case c == ChannelColor1:
		return "COLOR1"
	case c >= ChannelTexCoord0 && c <= ChannelTexCoord9:
		return fmt.Sprintf("TEXCOORD%d", c-ChannelTexCoord0)
	case c == ChannelBlendIndices0:
		return "BLENDINDICES"
	case c == ChannelBlendIndices1:
		return "BLENDINDICES1"
	case c == ChannelBlendWeight0:
		return "BLENDWEIGHT"
	case c == ChannelBlendWeight1:
		return "BLENDWEIGHT1"
	case c == ChannelPointSize:
		return "POINTSIZE"
	case c == ChannelBinormal:
		return "BINORMAL"
	case c == ChannelTangent:
		return "TANGENT"
	default:
		return fmt.Sprintf("CHANNEL(%d)", uint32(c))
	}
}

func (c ChannelType) isTexCoord() bool {
	return c >= ChannelTexCoord0 && c <= ChannelTexCoord9
}

// itemSizes maps GeometryHeader.ItemSize to a per-vertex byte size.
var itemSizes = [...]uint32{0, 4, 8, 12, 16, 4, 4, 8, 12, 8}

// GeometryHeader declares one vertex channel. ItemSize is an index into the
// format's item size table, not a byte count.
type GeometryHeader struct {
	ItemSize uint32
	Type     ChannelType
}

// ItemSizeBytes returns the per-vertex size of the channel.
func (h GeometryHeader) ItemSizeBytes() (uint32, bool) {
	if h.ItemSize >= uint32(len(itemSizes)) {
		return 0, false
	}
	return itemSizes[h.ItemSize], true
}

// Color is a vertex color. On disk the bytes are ordered blue, green, red, alpha.
type Color struct {
	R, G, B, A uint8
}

// BoneIndices are the four bone indices influencing one vertex.
type BoneIndices [4]uint16

// halfToFloat widens an IEEE-754 binary16 value.
func halfToFloat(bits uint16) float32 {
	return float16.Frombits(bits).Float32()
}

// floatToHalf narrows v to binary16 with round-to-nearest-even.
func floatToHalf(v float32) uint16 {
	return float16.Fromfloat32(v).Bits()
}
