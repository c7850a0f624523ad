package diesel

import (
	"io"
	"os"

	"github.com/pkg/errors"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

type saveConfig struct {
	keepHashTable bool
}

// SaveOption configures Save.
type SaveOption func(*saveConfig)

// KeepHashTable writes existing hash table sections as they are instead of
// rebuilding one from the names in use.
func KeepHashTable() SaveOption {
	return func(c *saveConfig) { c.keepHashTable = true }
}

// Reassemble returns the sections in the order Save writes them:
// animations, authors, material groups each followed by their materials,
// scene objects, models, then everything else in document order.
// The document itself is not modified.
func (d *Document) Reassemble(opts ...SaveOption) []Section {
	var cfg saveConfig
	for _, opt := range opts {
		opt(&cfg)
	}

	all := d.All()
	if !cfg.keepHashTable {
		all = d.rebuildHashTable(all)
	}

	out := make([]Section, 0, len(all))
	emitted := make(map[uint32]bool, len(all))
	emit := func(s Section) {
		if !emitted[s.ID()] {
			emitted[s.ID()] = true
			out = append(out, s)
		}
	}
	category := func(match func(Section) bool) []Section {
		var picked []Section
		for _, s := range all {
			if match(s) {
				picked = append(picked, s)
			}
		}
		return picked
	}

	for _, s := range category(isKind(KindAnimation)) {
		emit(s)
	}
	for _, s := range category(isKind(KindAuthor)) {
		emit(s)
	}
	for _, s := range category(isKind(KindMaterialGroup)) {
		emit(s)
		for _, id := range s.(*MaterialGroup).MaterialIDs {
			if m, ok := Lookup[*Material](d, id); ok {
				emit(m)
			}
		}
	}
	for _, s := range category(isKind(KindObject3D)) {
		emit(s)
	}
	for _, s := range category(isKind(KindModel)) {
		emit(s)
	}
	for _, s := range all {
		emit(s)
	}
	return out
}

func isKind(k Kind) func(Section) bool {
	return func(s Section) bool { return SectionKind(s) == k }
}

// rebuildHashTable drops every hash table from list and inserts one freshly
// built table where the first one was. Without a previous table a non-empty
// one is appended under a new id.
func (d *Document) rebuildHashTable(list []Section) []Section {
	kept := make([]Section, 0, len(list)+1)
	at := -1
	var id uint32
	for _, s := range list {
		if _, ok := s.(*HashTable); ok {
			if at < 0 {
				at = len(kept)
				id = s.ID()
			}
			continue
		}
		kept = append(kept, s)
	}

	if at < 0 {
		table := buildHashTable(d.NextID(), kept)
		if len(table.Strings) == 0 {
			return kept
		}
		return append(kept, table)
	}

	table := buildHashTable(id, kept)
	kept = append(kept, nil)
	copy(kept[at+1:], kept[at:])
	kept[at] = table
	return kept
}

// Save reassembles the document and writes it to ws. Each section size and
// the file length in the header are patched after the data they describe is
// written. On success the document takes on the written order, including
// the rebuilt hash table.
func (d *Document) Save(ws io.WriteSeeker, opts ...SaveOption) error {
	if !d.resolved {
		return ErrUnresolved
	}
	list := d.Reassemble(opts...)

	start, err := ws.Seek(0, io.SeekCurrent)
	if err != nil {
		return errors.Wrap(err, "locating file start")
	}
	w := newWriter(ws, d.warn)
	w.at("file_header")
	w.i32(fileMarker)
	w.u32(0)
	w.u32(uint32(len(list)))
	if w.err != nil {
		return w.err
	}

	headers := make([]SectionHeader, 0, len(list))
	for _, s := range list {
		h, err := writeSection(ws, s, d.warn)
		if err != nil {
			return err
		}
		h.Offset -= start
		headers = append(headers, h)
	}

	w.at("trailing").write(d.Trailing)
	if w.err != nil {
		return w.err
	}

	end, err := ws.Seek(0, io.SeekCurrent)
	if err != nil {
		return errors.Wrap(err, "locating file end")
	}
	if end-start > 0xFFFFFFFF {
		return errors.Errorf("model of %d bytes does not fit a u32 length", end-start)
	}
	if err := patchU32(ws, start+4, uint32(end-start)); err != nil {
		return errors.Wrap(err, "patching file length")
	}
	if _, err := ws.Seek(end, io.SeekStart); err != nil {
		return errors.Wrap(err, "seeking past file end")
	}

	d.adopt(list, headers)
	d.logger.Debug("model saved",
		zap.Int("sections", len(list)),
		zap.Int64("bytes", end-start))
	return nil
}

// adopt replaces the section list with the one just written.
func (d *Document) adopt(list []Section, headers []SectionHeader) {
	d.sections = make(map[uint32]Section, len(list))
	for _, s := range list {
		d.sections[s.ID()] = s
	}
	d.Sections = headers
}

// Bytes saves the document into memory.
func (d *Document) Bytes(opts ...SaveOption) ([]byte, error) {
	var buf seekBuffer
	if err := d.Save(&buf, opts...); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// SaveFile saves the document to path, replacing any existing file.
func (d *Document) SaveFile(path string, opts ...SaveOption) (err error) {
	data, err := d.Bytes(opts...)
	if err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrap(err, "creating model file")
	}
	defer func() {
		err = multierr.Append(err, f.Close())
	}()
	if _, err := f.Write(data); err != nil {
		return errors.Wrapf(err, "writing %s", path)
	}
	return nil
}
