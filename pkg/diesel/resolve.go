package diesel

import "strconv"

// ref is one section id stored in another section's body.
type ref struct {
	field string
	id    uint32
	want  Kind
}

// referrer is implemented by sections holding ids of other sections.
type referrer interface {
	refs() []ref
}

func indexed(field string, i int) string {
	return field + "[" + strconv.Itoa(i) + "]"
}

// Resolve checks every section reference in the document. An id of 0 means
// no reference; any other id must name a section of a compatible kind.
// Resolution stops at the first failure, which is a *SectionError wrapping
// ErrMissingReference or ErrTypeMismatch.
func (d *Document) Resolve() error {
	d.resolved = false
	for _, h := range d.Sections {
		s, ok := d.sections[h.ID]
		if !ok {
			continue
		}
		rr, ok := s.(referrer)
		if !ok {
			continue
		}
		for _, rf := range rr.refs() {
			if err := d.check(s, rf); err != nil {
				return err
			}
		}
	}
	d.resolved = true
	return nil
}

func (d *Document) check(owner Section, rf ref) error {
	if rf.id == 0 {
		return nil
	}
	target, ok := d.sections[rf.id]
	if !ok {
		return &SectionError{
			ID:    owner.ID(),
			Tag:   owner.Tag(),
			Field: rf.field,
			Ref:   rf.id,
			Err:   ErrMissingReference,
		}
	}
	if got := SectionKind(target); !rf.want.accepts(got) {
		return &SectionError{
			ID:    owner.ID(),
			Tag:   owner.Tag(),
			Field: rf.field,
			Ref:   rf.id,
			Want:  rf.want,
			Got:   got,
			Err:   ErrTypeMismatch,
		}
	}
	return nil
}

// Resolved reports whether the last Resolve succeeded and no section has been
// changed since.
func (d *Document) Resolved() bool {
	return d.resolved
}

// Lookup returns the section with the given id if it exists and has type T.
// An id of 0 always yields false.
func Lookup[T Section](d *Document, id uint32) (T, bool) {
	var zero T
	if id == 0 {
		return zero, false
	}
	s, ok := d.sections[id]
	if !ok {
		return zero, false
	}
	t, ok := s.(T)
	return t, ok
}
