package hashname

import "fmt"

// Name is a hashed asset name as stored on disk, optionally paired with the
// string it was hashed from.
type Name struct {
	Hash   uint64
	String string // only meaningful when Known is set
	Known  bool
}

// FromString hashes s and keeps s as the resolved string.
func FromString(s string) Name {
	return Name{Hash: Hash(s), String: s, Known: true}
}

// FromHash wraps a bare on-disk hash.
func FromHash(h uint64) Name {
	return Name{Hash: h}
}

// Display returns the resolved string, or the hash in hex if unknown.
func (n Name) Display() string {
	if n.Known {
		return n.String
	}
	return fmt.Sprintf("%016x", n.Hash)
}

func (n Name) GoString() string {
	if n.Known {
		return fmt.Sprintf("hashname.Name{%016x %q}", n.Hash, n.String)
	}
	return fmt.Sprintf("hashname.Name{%016x}", n.Hash)
}
