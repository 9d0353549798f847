// Package protocol defines the closed catalogue of built-in operation hooks
// a type can implement: operators, indexing, formatting, iteration and the
// rest. The set is fixed at compile time; nothing registers protocols at run
// time.
package protocol

import (
	"github.com/malphas-lang/runefront/internal/hash"
)

// Protocol identifies one entry of the catalogue.
type Protocol uint8

const (
	Get Protocol = iota
	Set
	IndexGet
	IndexSet
	PartialEq
	Eq
	PartialCmp
	Cmp
	Add
	AddAssign
	Sub
	SubAssign
	Mul
	MulAssign
	Div
	DivAssign
	Rem
	RemAssign
	BitAnd
	BitAndAssign
	BitXor
	BitXorAssign
	BitOr
	BitOrAssign
	Shl
	ShlAssign
	Shr
	ShrAssign
	DisplayFmt
	DebugFmt
	IntoIter
	Next
	NextBack
	Nth
	NthBack
	SizeHint
	Len
	IntoFuture
	IntoTypeName
	IsVariant
	Try
	Hash
	Clone

	count
)

// Info describes a catalogue entry.
type Info struct {
	Name string    `json:"name" yaml:"name"`
	Repr string    `json:"repr,omitempty" yaml:"repr,omitempty"`
	Doc  string    `json:"doc" yaml:"doc"`
	Hash hash.Hash `json:"hash" yaml:"hash"`
}

type entry struct {
	name string
	repr string
	doc  string
}

// catalogue is indexed by Protocol; the array length keeps it exhaustive.
var catalogue = [count]entry{
	Get:          {"GET", "let $out = $value", "Getter for a field or tuple index."},
	Set:          {"SET", "$value = $input", "Setter for a field or tuple index."},
	IndexGet:     {"INDEX_GET", "let $out = $value[$index]", "Read the value at an index."},
	IndexSet:     {"INDEX_SET", "$value[$index] = $input", "Write the value at an index."},
	PartialEq:    {"PARTIAL_EQ", "if $value == b { }", "Partial equality comparison."},
	Eq:           {"EQ", "", "Total equality comparison."},
	PartialCmp:   {"PARTIAL_CMP", "if $value < b { }", "Partial ordering comparison."},
	Cmp:          {"CMP", "", "Total ordering comparison."},
	Add:          {"ADD", "let $out = $value + $b", "Addition."},
	AddAssign:    {"ADD_ASSIGN", "$value += $b", "Addition in place."},
	Sub:          {"SUB", "let $out = $value - $b", "Subtraction."},
	SubAssign:    {"SUB_ASSIGN", "$value -= $b", "Subtraction in place."},
	Mul:          {"MUL", "let $out = $value * $b", "Multiplication."},
	MulAssign:    {"MUL_ASSIGN", "$value *= $b", "Multiplication in place."},
	Div:          {"DIV", "let $out = $value / $b", "Division."},
	DivAssign:    {"DIV_ASSIGN", "$value /= $b", "Division in place."},
	Rem:          {"REM", "let $out = $value % $b", "Remainder."},
	RemAssign:    {"REM_ASSIGN", "$value %= $b", "Remainder in place."},
	BitAnd:       {"BIT_AND", "let $out = $value & $b", "Bitwise and."},
	BitAndAssign: {"BIT_AND_ASSIGN", "$value &= $b", "Bitwise and in place."},
	BitXor:       {"BIT_XOR", "let $out = $value ^ $b", "Bitwise xor."},
	BitXorAssign: {"BIT_XOR_ASSIGN", "$value ^= $b", "Bitwise xor in place."},
	BitOr:        {"BIT_OR", "let $out = $value | $b", "Bitwise or."},
	BitOrAssign:  {"BIT_OR_ASSIGN", "$value |= $b", "Bitwise or in place."},
	Shl:          {"SHL", "let $out = $value << $b", "Shift left."},
	ShlAssign:    {"SHL_ASSIGN", "$value <<= $b", "Shift left in place."},
	Shr:          {"SHR", "let $out = $value >> $b", "Shift right."},
	ShrAssign:    {"SHR_ASSIGN", "$value >>= $b", "Shift right in place."},
	DisplayFmt:   {"DISPLAY_FMT", "format!(\"{}\", $value)", "User-facing string formatting."},
	DebugFmt:     {"DEBUG_FMT", "format!(\"{:?}\", $value)", "Debug string formatting."},
	IntoIter:     {"INTO_ITER", "for item in $value { }", "Convert the value into an iterator."},
	Next:         {"NEXT", "", "Advance an iterator."},
	NextBack:     {"NEXT_BACK", "", "Advance an iterator from the back."},
	Nth:          {"NTH", "", "Skip to the nth element of an iterator."},
	NthBack:      {"NTH_BACK", "", "Skip to the nth element of an iterator from the back."},
	SizeHint:     {"SIZE_HINT", "", "Bounds on the remaining length of an iterator."},
	Len:          {"LEN", "", "Exact remaining length of an iterator."},
	IntoFuture:   {"INTO_FUTURE", "$value.await", "Convert the value into a future."},
	IntoTypeName: {"INTO_TYPE_NAME", "", "Name of the value's type."},
	IsVariant:    {"IS_VARIANT", "", "Test whether the value is a given enum variant."},
	Try:          {"TRY", "value?", "Unwrap a success value or propagate the failure."},
	Hash:         {"HASH", "", "Feed the value into a hasher."},
	Clone:        {"CLONE", "let $out = clone($value)", "Deep copy of the value."},
}

var (
	hashes [count]hash.Hash
	byName = make(map[string]Protocol, count)
	byHash = make(map[hash.Hash]Protocol, count)
)

func init() {
	for i := range catalogue {
		p := Protocol(i)
		h := hash.Protocol(catalogue[i].name)
		hashes[i] = h
		byName[catalogue[i].name] = p
		byHash[h] = p
	}
}

// All returns every protocol in catalogue order.
func All() []Protocol {
	out := make([]Protocol, count)
	for i := range out {
		out[i] = Protocol(i)
	}
	return out
}

// ByName looks a protocol up by its catalogue name, e.g. "ADD_ASSIGN".
func ByName(name string) (Protocol, bool) {
	p, ok := byName[name]
	return p, ok
}

// ByHash looks a protocol up by its fingerprint.
func ByHash(h hash.Hash) (Protocol, bool) {
	p, ok := byHash[h]
	return p, ok
}

// Valid reports whether p is a catalogue entry.
func (p Protocol) Valid() bool { return p < count }

func (p Protocol) String() string {
	if !p.Valid() {
		return "Protocol(invalid)"
	}
	return catalogue[p].name
}

// Hash returns the protocol's fingerprint, or hash.Empty for an invalid value.
func (p Protocol) Hash() hash.Hash {
	if !p.Valid() {
		return hash.Empty
	}
	return hashes[p]
}

// Info returns the catalogue entry for p.
func (p Protocol) Info() Info {
	if !p.Valid() {
		return Info{Name: p.String()}
	}
	e := catalogue[p]
	return Info{Name: e.name, Repr: e.repr, Doc: e.doc, Hash: hashes[p]}
}
