package diesel

import (
	"sort"

	"github.com/RAIDModding/raid-model-tool/pkg/hashname"
)

// HashTable stores the strings behind the hashed names used in the file, so
// names survive a round trip without an external dictionary.
type HashTable struct {
	SectionBase
	Strings   []string
	Remaining []byte
}

// Tag implements Section.
func (t *HashTable) Tag() uint32 { return TagHashTable }

func decodeHashTable(r *reader) Section {
	t := &HashTable{}
	n := r.at("strings").count(4)
	t.Strings = make([]string, n)
	for i := range t.Strings {
		l := r.count(1)
		t.Strings[i] = string(r.take(l))
	}
	t.Remaining = r.at("remaining").remaining()
	return t
}

func (t *HashTable) writeBody(w *writer) {
	w.at("strings").u32(uint32(len(t.Strings)))
	for _, s := range t.Strings {
		w.u32(uint32(len(s)))
		w.write([]byte(s))
	}
	w.at("remaining").write(t.Remaining)
}

// buildHashTable collects the resolved names of every hash-named section.
// Strings are deduplicated and sorted so the output is stable.
func buildHashTable(id uint32, sections []Section) *HashTable {
	seen := make(map[string]bool)
	var strs []string
	for _, s := range sections {
		hc, ok := s.(hashContainer)
		if !ok {
			continue
		}
		for _, n := range hc.names() {
			if !n.Known || seen[n.String] {
				continue
			}
			seen[n.String] = true
			strs = append(strs, n.String)
		}
	}
	sort.Strings(strs)
	if strs == nil {
		strs = []string{}
	}
	return &HashTable{SectionBase: SectionBase{SectionID: id}, Strings: strs}
}

// hashContainer is implemented by sections carrying hashed names.
type hashContainer interface {
	names() []*hashname.Name
}

// NameOf returns the hashed name carried by s, if its variant has one.
func NameOf(s Section) (hashname.Name, bool) {
	hc, ok := s.(hashContainer)
	if !ok {
		return hashname.Name{}, false
	}
	ns := hc.names()
	if len(ns) == 0 {
		return hashname.Name{}, false
	}
	return *ns[0], true
}
