package diesel

// PassthroughGP pairs a Geometry with the Topology indexing it.
type PassthroughGP struct {
	SectionBase
	GeometryID uint32
	TopologyID uint32
	Remaining  []byte
}

// Tag implements Section.
func (p *PassthroughGP) Tag() uint32 { return TagPassthroughGP }

func decodePassthroughGP(r *reader) Section {
	p := &PassthroughGP{}
	p.GeometryID = r.at("geometry").u32()
	p.TopologyID = r.at("topology").u32()
	p.Remaining = r.at("remaining").remaining()
	return p
}

func (p *PassthroughGP) writeBody(w *writer) {
	w.at("geometry").u32(p.GeometryID)
	w.at("topology").u32(p.TopologyID)
	w.at("remaining").write(p.Remaining)
}

func (p *PassthroughGP) refs() []ref {
	return []ref{
		{field: "geometry", id: p.GeometryID, want: KindGeometry},
		{field: "topology", id: p.TopologyID, want: KindTopology},
	}
}

// TopologyIP wraps a Topology as an index buffer.
type TopologyIP struct {
	SectionBase
	TopologyID uint32
	Remaining  []byte
}

// Tag implements Section.
func (t *TopologyIP) Tag() uint32 { return TagTopologyIP }

func decodeTopologyIP(r *reader) Section {
	t := &TopologyIP{}
	t.TopologyID = r.at("topology").u32()
	t.Remaining = r.at("remaining").remaining()
	return t
}

func (t *TopologyIP) writeBody(w *writer) {
	w.at("topology").u32(t.TopologyID)
	w.at("remaining").write(t.Remaining)
}

func (t *TopologyIP) refs() []ref {
	return []ref{{field: "topology", id: t.TopologyID, want: KindTopology}}
}
