package diesel

// Unknown holds the body of a section whose tag has no registered decoder.
// The bytes are written back unchanged.
type Unknown struct {
	SectionBase
	RawTag uint32
	Data   []byte
}

// Tag returns the tag the section was read with.
func (u *Unknown) Tag() uint32 { return u.RawTag }

func decodeUnknown(h SectionHeader, body []byte) *Unknown {
	data := make([]byte, len(body))
	copy(data, body)
	return &Unknown{SectionBase: SectionBase{SectionID: h.ID}, RawTag: h.Tag, Data: data}
}

func (u *Unknown) writeBody(w *writer) {
	w.at("data").write(u.Data)
}
