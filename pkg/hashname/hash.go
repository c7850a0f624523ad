// Package hashname implements the Diesel engine's 64-bit string hash ("Idstring")
// and a reverse lookup table for turning on-disk hashes back into names.
package hashname

import "encoding/binary"

// golden ratio, the lookup8 initial value for c
const goldenRatio = 0x9e3779b97f4a7c13

// Hash returns the Diesel hash of s: Bob Jenkins' lookup8 hash with level 0
// over the UTF-8 bytes of s.
func Hash(s string) uint64 {
	return HashBytes([]byte(s))
}

// HashBytes is Hash for a byte slice.
func HashBytes(k []byte) uint64 {
	var a, b, c uint64 = 0, 0, goldenRatio
	length := len(k)

	for len(k) >= 24 {
		a += binary.LittleEndian.Uint64(k[0:8])
		b += binary.LittleEndian.Uint64(k[8:16])
		c += binary.LittleEndian.Uint64(k[16:24])
		a, b, c = mix64(a, b, c)
		k = k[24:]
	}

	c += uint64(length)
	for i, ch := range k {
		switch {
		case i < 8:
			a += uint64(ch) << (8 * i)
		case i < 16:
			b += uint64(ch) << (8 * (i - 8))
		default:
			// the first byte of c is reserved for the length
			c += uint64(ch) << (8 * (i - 15))
		}
	}

	_, _, c = mix64(a, b, c)
	return c
}

func mix64(a, b, c uint64) (uint64, uint64, uint64) {
	a -= b
	a -= c
	a ^= c >> 43
	b -= c
	b -= a
	b ^= a << 9
	c -= a
	c -= b
	c ^= b >> 8
	a -= b
	a -= c
	a ^= c >> 38
	b -= c
	b -= a
	b ^= a << 23
	c -= a
	c -= b
	c ^= b >> 5
	a -= b
	a -= c
	a ^= c >> 35
	b -= c
	b -= a
	b ^= a << 49
	c -= a
	c -= b
	c ^= b >> 11
	a -= b
	a -= c
	a ^= c >> 12
	b -= c
	b -= a
	b ^= a << 18
	c -= a
	c -= b
	c ^= b >> 22
	return a, b, c
}
