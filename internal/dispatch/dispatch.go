// Package dispatch names the functions a runtime registry resolves for a
// value's type. A name is a fingerprint over what the function is attached
// through (a protocol, a field or index accessor built on a protocol, or a
// plain instance function name) and its parameter-type signature. The
// registry combines it with the owner type's fingerprint to form the flat
// lookup key; nothing here checks that an implementation exists.
package dispatch

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"github.com/malphas-lang/runefront/internal/hash"
	"github.com/malphas-lang/runefront/internal/protocol"
)

// Kind tags the variant of an AssociatedKind.
type Kind uint8

const (
	KindProtocol Kind = iota
	KindFieldFn
	KindIndexFn
	KindInstance
)

func (k Kind) String() string {
	switch k {
	case KindProtocol:
		return "protocol"
	case KindFieldFn:
		return "field"
	case KindIndexFn:
		return "index"
	case KindInstance:
		return "instance"
	default:
		return "Kind(" + strconv.Itoa(int(k)) + ")"
	}
}

// AssociatedKind says what a function is attached through. Build it with
// Protocol, FieldFn, IndexFn or Instance.
type AssociatedKind struct {
	kind     Kind
	protocol protocol.Protocol
	field    string
	index    int
	name     string
}

// Protocol attaches through a protocol hook.
func Protocol(p protocol.Protocol) AssociatedKind {
	return AssociatedKind{kind: KindProtocol, protocol: p}
}

// FieldFn attaches through a protocol applied to a named field.
func FieldFn(p protocol.Protocol, field string) AssociatedKind {
	return AssociatedKind{kind: KindFieldFn, protocol: p, field: field}
}

// IndexFn attaches through a protocol applied to a tuple index.
func IndexFn(p protocol.Protocol, index int) AssociatedKind {
	return AssociatedKind{kind: KindIndexFn, protocol: p, index: index}
}

// Instance attaches a plain instance function by name.
func Instance(name string) AssociatedKind {
	return AssociatedKind{kind: KindInstance, name: name}
}

// Kind returns the variant tag.
func (a AssociatedKind) Kind() Kind { return a.kind }

// Protocol returns the protocol for every variant except KindInstance.
func (a AssociatedKind) Protocol() (protocol.Protocol, bool) {
	return a.protocol, a.kind != KindInstance
}

// Hash fingerprints the kind alone, without parameters.
func (a AssociatedKind) Hash() hash.Hash {
	switch a.kind {
	case KindProtocol:
		return a.protocol.Hash()
	case KindFieldFn:
		return hash.FieldFunction(a.protocol.Hash(), a.field)
	case KindIndexFn:
		return hash.IndexFunction(a.protocol.Hash(), a.index)
	default:
		return hash.Ident(a.name)
	}
}

func (a AssociatedKind) String() string {
	switch a.kind {
	case KindProtocol:
		return a.protocol.String()
	case KindFieldFn:
		return fmt.Sprintf("%s.%s", a.protocol, a.field)
	case KindIndexFn:
		return fmt.Sprintf("%s.%d", a.protocol, a.index)
	default:
		return a.name
	}
}

// AssociatedFunctionName identifies a function attached to some type.
// Values are built fresh for each lookup and not modified afterwards.
type AssociatedFunctionName struct {
	Associated AssociatedKind
	// FunctionParameters fingerprints the parameter-type signature;
	// hash.Empty when the function is resolved by name alone.
	FunctionParameters hash.Hash
	// ParameterTypes names the signature for diagnostics only. It does not
	// contribute to any fingerprint.
	ParameterTypes []string
}

// Hash is the name's fingerprint: the kind combined with the parameter
// signature.
func (n AssociatedFunctionName) Hash() hash.Hash {
	return hash.Combine(n.Associated.Hash(), n.FunctionParameters)
}

// Key is the fully qualified dispatch key for the function on owner.
func (n AssociatedFunctionName) Key(owner hash.Hash) hash.Hash {
	return hash.Associated(owner, n.Hash())
}

func (n AssociatedFunctionName) String() string {
	var b strings.Builder
	b.WriteString(n.Associated.String())
	switch {
	case len(n.ParameterTypes) > 0:
		b.WriteString("<")
		b.WriteString(strings.Join(n.ParameterTypes, ", "))
		b.WriteString(">")
	case !n.FunctionParameters.IsEmpty():
		b.WriteString("<")
		b.WriteString(n.FunctionParameters.String())
		b.WriteString(">")
	}
	return b.String()
}

// ToInstance is implemented by values that name an associated function.
type ToInstance interface {
	ToInstance() (AssociatedFunctionName, error)
}

// Hook adapts a protocol to ToInstance.
type Hook protocol.Protocol

// ToInstance tags the kind as a protocol with no parameter signature:
// protocols resolve by owner type and protocol identity alone. An invalid
// protocol value is rejected.
func (h Hook) ToInstance() (AssociatedFunctionName, error) {
	p := protocol.Protocol(h)
	if !p.Valid() {
		return AssociatedFunctionName{}, errors.Errorf("protocol %d is not in the catalogue", uint8(h))
	}
	return AssociatedFunctionName{
		Associated:         Protocol(p),
		FunctionParameters: hash.Empty,
	}, nil
}

// Name is an instance function name, e.g. "len" in `value.len()`.
type Name string

// ToInstance tags the kind as an instance function with no parameter
// signature.
func (n Name) ToInstance() (AssociatedFunctionName, error) {
	if n == "" {
		return AssociatedFunctionName{}, errors.New("instance function name is empty")
	}
	return AssociatedFunctionName{
		Associated:         Instance(string(n)),
		FunctionParameters: hash.Empty,
	}, nil
}

// Param is one entry of a parameter signature.
type Param struct {
	Name string
	Hash hash.Hash
}

// TypeParam names a parameter type, fingerprinting it by identifier.
func TypeParam(name string) Param {
	return Param{Name: name, Hash: hash.Ident(name)}
}

// WithParams converts x and layers a parameter signature on top. Passing no
// params yields the same name as x.ToInstance.
func WithParams(x ToInstance, params ...Param) (AssociatedFunctionName, error) {
	name, err := x.ToInstance()
	if err != nil {
		return AssociatedFunctionName{}, err
	}
	if len(params) == 0 {
		return name, nil
	}

	hashes := make([]hash.Hash, len(params))
	types := make([]string, len(params))
	for i, p := range params {
		hashes[i] = p.Hash
		types[i] = p.Name
	}
	name.FunctionParameters = hash.Params(hashes...)
	name.ParameterTypes = types
	return name, nil
}
