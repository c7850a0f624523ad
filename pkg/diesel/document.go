package diesel

import (
	"encoding/binary"
	"fmt"
	"io"
	"os"

	"github.com/pkg/errors"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/RAIDModding/raid-model-tool/pkg/hashname"
)

// fileHeaderSize covers the -1 marker, the file length and the section count.
const fileHeaderSize = 12

// fileMarker is the first word of every supported model file.
const fileMarker int32 = -1

// Document is a decoded model file. It owns every section; sections refer to
// each other by id only.
type Document struct {
	// Sections lists the section headers in file order.
	Sections []SectionHeader

	// Trailing holds any bytes found after the last section.
	Trailing []byte

	// Warnings collects recoverable anomalies from loading and saving.
	Warnings []Warning

	sections map[uint32]Section
	names    *hashname.Index
	logger   *zap.Logger
	resolved bool
}

// Option configures a Document.
type Option func(*Document)

// WithLogger sends warnings to logger in addition to Document.Warnings.
func WithLogger(logger *zap.Logger) Option {
	return func(d *Document) {
		if logger != nil {
			d.logger = logger
		}
	}
}

// WithIndex sets the dictionary used to resolve hashed names.
func WithIndex(idx *hashname.Index) Option {
	return func(d *Document) {
		d.names = idx
	}
}

// New returns an empty document.
func New(opts ...Option) *Document {
	d := &Document{
		sections: make(map[uint32]Section),
		logger:   zap.NewNop(),
		resolved: true,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Load decodes a model file held in memory. The returned document has its
// names resolved and its references checked.
func Load(data []byte, opts ...Option) (*Document, error) {
	d := New(opts...)

	if len(data) < fileHeaderSize {
		return nil, errors.Wrapf(ErrMalformedSection, "file header: need %d bytes, have %d", fileHeaderSize, len(data))
	}
	if int32(binary.LittleEndian.Uint32(data[0:4])) != fileMarker {
		return nil, ErrBadMagic
	}
	declared := binary.LittleEndian.Uint32(data[4:8])
	count := binary.LittleEndian.Uint32(data[8:12])
	if uint64(declared) != uint64(len(data)) {
		d.warn(Warning{Field: "file_length",
			Message: fmt.Sprintf("header declares %d bytes, file has %d", declared, len(data))})
	}

	offset := int64(fileHeaderSize)
	for i := uint32(0); i < count; i++ {
		h, s, err := readSection(data, offset, d.warn)
		if err != nil {
			return nil, errors.Wrapf(err, "reading section %d of %d", i+1, count)
		}
		if _, dup := d.sections[h.ID]; dup {
			return nil, malformed(h, "id", "duplicate section id %d", h.ID)
		}
		d.Sections = append(d.Sections, h)
		d.sections[h.ID] = s
		offset = h.End()
	}
	if offset < int64(len(data)) {
		d.Trailing = append([]byte(nil), data[offset:]...)
	}

	d.resolveNames()
	if err := d.Resolve(); err != nil {
		return nil, err
	}

	d.logger.Debug("model loaded",
		zap.Int("sections", len(d.Sections)),
		zap.Int("trailing", len(d.Trailing)),
		zap.Int("warnings", len(d.Warnings)))
	return d, nil
}

// Open reads and decodes the model file at path.
func Open(path string, opts ...Option) (doc *Document, err error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "opening model file")
	}
	defer func() {
		err = multierr.Append(err, f.Close())
	}()

	data, err := io.ReadAll(f)
	if err != nil {
		return nil, errors.Wrapf(err, "reading %s", path)
	}
	doc, err = Load(data, opts...)
	if err != nil {
		return nil, errors.Wrapf(err, "loading %s", path)
	}
	return doc, nil
}

// resolveNames fills in the strings of hashed names from the dictionary and
// the file's own hash table.
func (d *Document) resolveNames() {
	var local []string
	for _, s := range d.sections {
		if t, ok := s.(*HashTable); ok {
			local = append(local, t.Strings...)
		}
	}
	idx := d.names
	if len(local) > 0 {
		idx = idx.Merge(local...)
	}
	if idx.Len() == 0 {
		return
	}
	for _, s := range d.sections {
		hc, ok := s.(hashContainer)
		if !ok {
			continue
		}
		for _, n := range hc.names() {
			if !n.Known {
				*n = idx.Resolve(n.Hash)
			}
		}
	}
}

func (d *Document) warn(w Warning) {
	d.Warnings = append(d.Warnings, w)
	d.logger.Warn(w.Message,
		zap.Uint32("section", w.SectionID),
		zap.String("field", w.Field))
}

// Len returns the number of sections.
func (d *Document) Len() int {
	return len(d.Sections)
}

// Section returns the section with the given id.
func (d *Document) Section(id uint32) (Section, bool) {
	s, ok := d.sections[id]
	return s, ok
}

// All returns the sections in document order.
func (d *Document) All() []Section {
	out := make([]Section, 0, len(d.Sections))
	for _, h := range d.Sections {
		if s, ok := d.sections[h.ID]; ok {
			out = append(out, s)
		}
	}
	return out
}

// OfKind returns the sections of kind k in document order.
func (d *Document) OfKind(k Kind) []Section {
	var out []Section
	for _, s := range d.All() {
		if SectionKind(s) == k {
			out = append(out, s)
		}
	}
	return out
}

// NextID returns an id not used by any section.
func (d *Document) NextID() uint32 {
	var max uint32
	for id := range d.sections {
		if id > max {
			max = id
		}
	}
	return max + 1
}

// Add appends s to the document. A section with id 0 is given a fresh id.
// The document must be resolved again before it is saved.
func (d *Document) Add(s Section) error {
	if s.ID() == 0 {
		s.setID(d.NextID())
	}
	if _, dup := d.sections[s.ID()]; dup {
		return errors.Errorf("section id %d already in use", s.ID())
	}
	d.sections[s.ID()] = s
	d.Sections = append(d.Sections, SectionHeader{Tag: s.Tag(), ID: s.ID()})
	d.resolved = false
	return nil
}

// Remove deletes the section with the given id and reports whether it existed.
// The document must be resolved again before it is saved.
func (d *Document) Remove(id uint32) bool {
	if _, ok := d.sections[id]; !ok {
		return false
	}
	delete(d.sections, id)
	kept := make([]SectionHeader, 0, len(d.Sections)-1)
	for _, h := range d.Sections {
		if h.ID != id {
			kept = append(kept, h)
		}
	}
	d.Sections = kept
	d.resolved = false
	return true
}

// Replace swaps in s for the section with the same id, keeping its position.
func (d *Document) Replace(s Section) error {
	if _, ok := d.sections[s.ID()]; !ok {
		return errors.Errorf("no section with id %d", s.ID())
	}
	d.sections[s.ID()] = s
	for i := range d.Sections {
		if d.Sections[i].ID == s.ID() {
			d.Sections[i].Tag = s.Tag()
		}
	}
	d.resolved = false
	return nil
}
