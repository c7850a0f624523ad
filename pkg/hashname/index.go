package hashname

import (
	"bufio"
	"io"
	"os"
	"strings"

	"github.com/pkg/errors"
	"go.uber.org/multierr"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// Index is a reverse lookup table from hash to string.
// An Index is never modified after construction, so it can be shared between
// goroutines and documents without locking.
type Index struct {
	names map[uint64]string
}

// NewIndex builds an index from the given strings.
func NewIndex(strs ...string) *Index {
	idx := &Index{names: make(map[uint64]string, len(strs))}
	for _, s := range strs {
		idx.names[Hash(s)] = s
	}
	return idx
}

// FromMap builds an index from precomputed string to hash pairs, as produced
// by an external dictionary.
func FromMap(m map[string]uint64) *Index {
	idx := &Index{names: make(map[uint64]string, len(m))}
	for s, h := range m {
		idx.names[h] = s
	}
	return idx
}

// Len returns the number of known hashes. A nil index is empty.
func (idx *Index) Len() int {
	if idx == nil {
		return 0
	}
	return len(idx.names)
}

// Lookup returns the string for h. A miss is normal: most hashes seen on disk
// are not in any local dictionary.
func (idx *Index) Lookup(h uint64) (string, bool) {
	if idx == nil {
		return "", false
	}
	s, ok := idx.names[h]
	return s, ok
}

// Resolve wraps h in a Name, filling the string when the index knows it.
func (idx *Index) Resolve(h uint64) Name {
	if s, ok := idx.Lookup(h); ok {
		return Name{Hash: h, String: s, Known: true}
	}
	return FromHash(h)
}

// Merge returns a new index holding the entries of idx plus strs.
// idx itself is left untouched.
func (idx *Index) Merge(strs ...string) *Index {
	merged := &Index{names: make(map[uint64]string, idx.Len()+len(strs))}
	if idx != nil {
		for h, s := range idx.names {
			merged.names[h] = s
		}
	}
	for _, s := range strs {
		merged.names[Hash(s)] = s
	}
	return merged
}

// LoadIndex reads a hashlist: one string per line. UTF-8 and UTF-16 input is
// accepted when it starts with a byte order mark; empty lines are skipped.
func LoadIndex(r io.Reader) (*Index, error) {
	decoder := unicode.BOMOverride(unicode.UTF8.NewDecoder())
	scanner := bufio.NewScanner(transform.NewReader(r, decoder))
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	var strs []string
	for scanner.Scan() {
		line := strings.TrimRight(scanner.Text(), "\r")
		if line == "" {
			continue
		}
		strs = append(strs, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.Wrap(err, "reading hashlist")
	}
	return NewIndex(strs...), nil
}

// LoadIndexFile loads one hashlist file.
func LoadIndexFile(path string) (idx *Index, err error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "opening hashlist %s", path)
	}
	defer func() {
		err = multierr.Append(err, errors.Wrapf(f.Close(), "closing hashlist %s", path))
	}()

	idx, err = LoadIndex(f)
	if err != nil {
		return nil, errors.Wrapf(err, "loading hashlist %s", path)
	}
	return idx, nil
}

// LoadIndexFiles loads and merges several hashlist files.
func LoadIndexFiles(paths ...string) (*Index, error) {
	var idx *Index
	for _, path := range paths {
		loaded, err := LoadIndexFile(path)
		if err != nil {
			return nil, err
		}
		if idx == nil {
			idx = loaded
			continue
		}
		idx = idx.Merge(loaded.strings()...)
	}
	if idx == nil {
		idx = NewIndex()
	}
	return idx, nil
}

func (idx *Index) strings() []string {
	if idx == nil {
		return nil
	}
	out := make([]string, 0, len(idx.names))
	for _, s := range idx.names {
		out = append(out, s)
	}
	return out
}
