package diesel

import (
	"encoding/binary"
	"io"

	"github.com/pkg/errors"
)

// sectionHeaderSize is the size of tag, id and body size.
const sectionHeaderSize = 12

// SectionHeader precedes every section body. Size covers the body only.
type SectionHeader struct {
	Tag    uint32
	ID     uint32
	Size   uint32
	Offset int64 // file offset of the body
}

// End returns the file offset one past the section body.
func (h SectionHeader) End() int64 {
	return h.Offset + int64(h.Size)
}

// readSection reads one framed section starting at offset in data.
func readSection(data []byte, offset int64, warn func(Warning)) (SectionHeader, Section, error) {
	if int64(len(data))-offset < sectionHeaderSize {
		return SectionHeader{}, nil, errors.Wrapf(ErrMalformedSection,
			"section header at offset %d: need %d bytes, have %d", offset, sectionHeaderSize, int64(len(data))-offset)
	}
	hdr := data[offset : offset+sectionHeaderSize]
	h := SectionHeader{
		Tag:    binary.LittleEndian.Uint32(hdr[0:4]),
		ID:     binary.LittleEndian.Uint32(hdr[4:8]),
		Size:   binary.LittleEndian.Uint32(hdr[8:12]),
		Offset: offset + sectionHeaderSize,
	}

	if h.End() > int64(len(data)) {
		return h, nil, malformed(h, "body", "declared size %d at offset %d runs past end of file (%d bytes)",
			h.Size, h.Offset, len(data))
	}

	s, err := decodeBody(h, data[h.Offset:h.End()], warn)
	if err != nil {
		return h, nil, err
	}
	return h, s, nil
}

// writeSection writes tag, id, a size placeholder and the body, then seeks
// back to patch the placeholder with the real body length. The returned
// header carries the stream offset of the body.
func writeSection(ws io.WriteSeeker, s Section, warn func(Warning)) (SectionHeader, error) {
	h := SectionHeader{Tag: s.Tag(), ID: s.ID()}
	w := newWriter(ws, warn)
	w.id = h.ID
	w.tag = h.Tag

	w.at("header")
	w.u32(h.Tag)
	w.u32(h.ID)
	if w.err != nil {
		return h, w.err
	}
	sizePos, err := ws.Seek(0, io.SeekCurrent)
	if err != nil {
		return h, errors.Wrap(err, "locating section size")
	}
	w.u32(0)
	h.Offset = sizePos + 4

	s.writeBody(w)
	if w.err != nil {
		return h, w.err
	}

	endPos, err := ws.Seek(0, io.SeekCurrent)
	if err != nil {
		return h, errors.Wrap(err, "locating section end")
	}
	bodySize := endPos - h.Offset
	if bodySize > 0xFFFFFFFF {
		return h, malformed(h, "body", "body of %d bytes does not fit a u32 size", bodySize)
	}
	h.Size = uint32(bodySize)
	if err := patchU32(ws, sizePos, h.Size); err != nil {
		return h, errors.Wrapf(err, "patching size of section %d", h.ID)
	}
	if _, err := ws.Seek(endPos, io.SeekStart); err != nil {
		return h, errors.Wrap(err, "seeking past section")
	}
	return h, nil
}

func patchU32(ws io.WriteSeeker, pos int64, v uint32) error {
	if _, err := ws.Seek(pos, io.SeekStart); err != nil {
		return err
	}
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], v)
	_, err := ws.Write(b[:])
	return err
}
