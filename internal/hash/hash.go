// Package hash computes the 64-bit fingerprints used to identify dispatch
// targets.
//
// Every fingerprint is an xxhash64 digest over a tag byte followed by the
// length-prefixed components of the identity. The tag keeps the namespaces
// apart: an identifier and a one-segment path with the same text hash
// differently. For n distinct identities the probability of any collision is
// about n²/2⁶⁵.
package hash

import (
	"encoding/binary"
	"fmt"
	"strconv"
	"strings"

	"github.com/cespare/xxhash/v2"
	"github.com/pkg/errors"
)

// Hash is a deterministic, order-sensitive fingerprint.
type Hash uint64

// Empty is the fingerprint of "no parameters". No other constructor in this
// package returns it.
const Empty Hash = 0

// Tags separating the fingerprint namespaces.
const (
	tagIdent byte = iota + 1
	tagPath
	tagParams
	tagCombine
	tagProtocol
	tagField
	tagIndex
	tagAssociated
)

type digest struct {
	d   *xxhash.Digest
	buf [8]byte
}

func newDigest(tag byte) *digest {
	d := &digest{d: xxhash.New()}
	d.d.Write([]byte{tag})
	return d
}

func (d *digest) uint64(v uint64) {
	binary.LittleEndian.PutUint64(d.buf[:], v)
	d.d.Write(d.buf[:])
}

func (d *digest) string(s string) {
	d.uint64(uint64(len(s)))
	d.d.WriteString(s)
}

func (d *digest) sum() Hash {
	h := Hash(d.d.Sum64())
	if h == Empty {
		return 1
	}
	return h
}

// Ident fingerprints a single identifier, such as an instance function name.
func Ident(name string) Hash {
	d := newDigest(tagIdent)
	d.string(name)
	return d.sum()
}

// Of fingerprints a path of segments, e.g. Of("std", "ops", "Add").
func Of(parts ...string) Hash {
	d := newDigest(tagPath)
	d.uint64(uint64(len(parts)))
	for _, part := range parts {
		d.string(part)
	}
	return d.sum()
}

// Params fingerprints an ordered parameter-type signature. A signature with
// no types is Empty.
func Params(types ...Hash) Hash {
	if len(types) == 0 {
		return Empty
	}
	d := newDigest(tagParams)
	d.uint64(uint64(len(types)))
	for _, t := range types {
		d.uint64(uint64(t))
	}
	return d.sum()
}

// Combine mixes two fingerprints. It is order sensitive: Combine(a, b) and
// Combine(b, a) differ.
func Combine(a, b Hash) Hash {
	d := newDigest(tagCombine)
	d.uint64(uint64(a))
	d.uint64(uint64(b))
	return d.sum()
}

// Protocol fingerprints a protocol by its catalogue name.
func Protocol(name string) Hash {
	d := newDigest(tagProtocol)
	d.string(name)
	return d.sum()
}

// FieldFunction fingerprints a protocol applied to a named field, e.g. the
// getter for `value.x`.
func FieldFunction(protocol Hash, field string) Hash {
	d := newDigest(tagField)
	d.uint64(uint64(protocol))
	d.string(field)
	return d.sum()
}

// IndexFunction fingerprints a protocol applied to a tuple index, e.g. the
// getter for `value.0`.
func IndexFunction(protocol Hash, index int) Hash {
	d := newDigest(tagIndex)
	d.uint64(uint64(protocol))
	d.uint64(uint64(index))
	return d.sum()
}

// Associated fingerprints a function attached to the owner type.
func Associated(owner, name Hash) Hash {
	d := newDigest(tagAssociated)
	d.uint64(uint64(owner))
	d.uint64(uint64(name))
	return d.sum()
}

// IsEmpty reports whether h is the empty fingerprint.
func (h Hash) IsEmpty() bool { return h == Empty }

func (h Hash) String() string {
	return fmt.Sprintf("0x%016x", uint64(h))
}

// MarshalText renders the fingerprint as in String.
func (h Hash) MarshalText() ([]byte, error) {
	return []byte(h.String()), nil
}

// UnmarshalText accepts the String form.
func (h *Hash) UnmarshalText(text []byte) error {
	parsed, err := Parse(string(text))
	if err != nil {
		return err
	}
	*h = parsed
	return nil
}

// Parse reads a fingerprint written as hex, with or without a 0x prefix.
func Parse(s string) (Hash, error) {
	trimmed := strings.TrimPrefix(strings.TrimPrefix(s, "0x"), "0X")
	v, err := strconv.ParseUint(trimmed, 16, 64)
	if err != nil {
		return Empty, errors.Wrapf(err, "invalid fingerprint %q", s)
	}
	return Hash(v), nil
}
