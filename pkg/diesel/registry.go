package diesel

// Section is one decoded chunk of a model file. The set of implementations is
// closed: every variant lives in this package and is listed in registry.
type Section interface {
	ID() uint32
	Tag() uint32
	setID(id uint32)
	writeBody(w *writer)
}

// SectionBase carries the file-internal identifier shared by every variant.
type SectionBase struct {
	SectionID uint32
}

// ID returns the file-internal section identifier.
func (b *SectionBase) ID() uint32 { return b.SectionID }

func (b *SectionBase) setID(id uint32) { b.SectionID = id }

type decodeFunc func(r *reader) Section

type descriptor struct {
	kind   Kind
	decode decodeFunc
}

// registry maps a type tag to the variant that decodes it. Tags missing here
// are kept as Unknown sections.
var registry = map[uint32]descriptor{
	TagAnimation:                    {KindAnimation, decodeAnimation},
	TagAuthor:                       {KindAuthor, decodeAuthor},
	TagMaterialGroup:                {KindMaterialGroup, decodeMaterialGroup},
	TagMaterial:                     {KindMaterial, decodeMaterial},
	TagObject3D:                     {KindObject3D, decodeObject3D},
	TagModel:                        {KindModel, decodeModel},
	TagGeometry:                     {KindGeometry, decodeGeometry},
	TagTopology:                     {KindTopology, decodeTopology},
	TagPassthroughGP:                {KindPassthroughGP, decodePassthroughGP},
	TagTopologyIP:                   {KindTopologyIP, decodeTopologyIP},
	TagQuatLinearRotationController: {KindQuatLinearRotationController, decodeQuatLinearRotationController},
	TagLinearVector3Controller:      {KindLinearVector3Controller, decodeLinearVector3Controller},
	TagSkinBones:                    {KindSkinBones, decodeSkinBones},
	TagBones:                        {KindBones, decodeBones},
	TagHashTable:                    {KindHashTable, decodeHashTable},
}

// KindOf returns the variant registered for tag, or KindUnknown.
func KindOf(tag uint32) Kind {
	if d, ok := registry[tag]; ok {
		return d.kind
	}
	return KindUnknown
}

// Registered reports whether tag has a dedicated decoder.
func Registered(tag uint32) bool {
	_, ok := registry[tag]
	return ok
}

// SectionKind returns the variant of s. Unknown sections report KindUnknown
// even though they carry the tag they were read with.
func SectionKind(s Section) Kind {
	if _, ok := s.(*Unknown); ok {
		return KindUnknown
	}
	return KindOf(s.Tag())
}

// decodeBody turns a section body into its variant.
func decodeBody(h SectionHeader, body []byte, warn func(Warning)) (Section, error) {
	d, ok := registry[h.Tag]
	if !ok {
		return decodeUnknown(h, body), nil
	}
	r := newReader(h, body, warn)
	s := d.decode(r)
	if r.err != nil {
		return nil, r.err
	}
	s.setID(h.ID)
	return s, nil
}
