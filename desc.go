package shapekit

import (
	"fmt"
	"strings"
)

// Kind identifies a Desc node type.
type Kind int

const (
	KindAny Kind = iota
	KindBool
	KindInt
	KindFloat
	KindString
	KindBytes
	KindPath
	KindLiteral
	KindEnum
	KindOptional
	KindSequence
	KindTuple
	KindMapping
	KindRecord
	KindUnion
	KindSum
	KindRef
	KindCustom
)

var kindNames = [...]string{
	KindAny:      "any",
	KindBool:     "bool",
	KindInt:      "int",
	KindFloat:    "float",
	KindString:   "string",
	KindBytes:    "bytes",
	KindPath:     "path",
	KindLiteral:  "literal",
	KindEnum:     "enum",
	KindOptional: "optional",
	KindSequence: "sequence",
	KindTuple:    "tuple",
	KindMapping:  "mapping",
	KindRecord:   "record",
	KindUnion:    "union",
	KindSum:      "sum",
	KindRef:      "ref",
	KindCustom:   "custom",
}

func (k Kind) String() string {
	if k >= 0 && int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Desc is a node of a Type Description. The set of implementations is closed;
// every Desc is a pointer and its identity is the pointer value.
type Desc interface {
	Kind() Kind
	String() string
	isDesc()
}

// UnknownPolicy controls how a record treats keys it does not declare.
type UnknownPolicy int

const (
	UnknownIgnore UnknownPolicy = iota // Drop unknown keys.
	UnknownForbid                      // Reject unknown keys with an error.
)

// ---- primitives ----

// Primitive is a leaf description (bool, int, float, string, bytes, path, any).
type Primitive struct{ kind Kind }

func (p *Primitive) Kind() Kind     { return p.kind }
func (p *Primitive) String() string { return p.kind.String() }
func (*Primitive) isDesc()          {}

var (
	anyDesc    = &Primitive{kind: KindAny}
	boolDesc   = &Primitive{kind: KindBool}
	intDesc    = &Primitive{kind: KindInt}
	floatDesc  = &Primitive{kind: KindFloat}
	stringDesc = &Primitive{kind: KindString}
	bytesDesc  = &Primitive{kind: KindBytes}
	pathDesc   = &Primitive{kind: KindPath}
)

// Any passes values through unchanged in both directions.
func Any() *Primitive { return anyDesc }

// Bool returns the shared bool description.
func Bool() *Primitive { return boolDesc }

// Int returns the shared int description (decodes to int64).
func Int() *Primitive { return intDesc }

// Float returns the shared float description (decodes to float64).
func Float() *Primitive { return floatDesc }

// String returns the shared string description.
func String() *Primitive { return stringDesc }

// Bytes returns the shared bytes description (decodes to []byte, encodes to base64).
func Bytes() *Primitive { return bytesDesc }

// FSPath returns the shared filesystem path description (decodes to FilePath).
func FSPath() *Primitive { return pathDesc }

// LiteralDesc accepts one of a fixed set of raw values.
type LiteralDesc struct{ values []any }

// Literal declares the accepted raw values. Supported value kinds are nil,
// bool, integers, floats and strings; numbers are stored as int64/float64.
func Literal(values ...any) *LiteralDesc {
	vs := make([]any, len(values))
	for i, v := range values {
		vs[i] = normalizeScalar(v)
	}
	return &LiteralDesc{values: vs}
}

func (l *LiteralDesc) Kind() Kind { return KindLiteral }
func (l *LiteralDesc) String() string {
	parts := make([]string, len(l.values))
	for i, v := range l.values {
		parts[i] = fmt.Sprintf("%#v", v)
	}
	return "literal[" + strings.Join(parts, ", ") + "]"
}
func (*LiteralDesc) isDesc() {}

// Values returns the declared literal values.
func (l *LiteralDesc) Values() []any { return append([]any(nil), l.values...) }

// EnumDesc maps raw tag strings to declared members.
type EnumDesc struct {
	name    string
	members []*EnumMember
}

// EnumMember is the decoded value of an enumeration. Members are singletons.
type EnumMember struct {
	enum  *EnumDesc
	Value string
}

func (m *EnumMember) Enum() *EnumDesc { return m.enum }
func (m *EnumMember) String() string  { return m.enum.name + "." + m.Value }

// NewEnum declares an enumeration with the given member values.
func NewEnum(name string, values ...string) *EnumDesc {
	e := &EnumDesc{name: name}
	for _, v := range values {
		e.members = append(e.members, &EnumMember{enum: e, Value: v})
	}
	return e
}

func (e *EnumDesc) Kind() Kind     { return KindEnum }
func (e *EnumDesc) String() string { return e.name }
func (*EnumDesc) isDesc()          {}

// Name returns the enumeration name.
func (e *EnumDesc) Name() string { return e.name }

// Members returns the members in declaration order.
func (e *EnumDesc) Members() []*EnumMember { return append([]*EnumMember(nil), e.members...) }

// Lookup finds a member by its raw value.
func (e *EnumDesc) Lookup(value string) (*EnumMember, bool) {
	for _, m := range e.members {
		if m.Value == value {
			return m, true
		}
	}
	return nil, false
}

// ---- containers ----

// OptionalDesc maps absent or null input to nil.
type OptionalDesc struct{ Inner Desc }

// Optional wraps inner so that absent or null values decode to nil.
func Optional(inner Desc) *OptionalDesc { return &OptionalDesc{Inner: inner} }

func (o *OptionalDesc) Kind() Kind     { return KindOptional }
func (o *OptionalDesc) String() string { return "optional[" + descString(o.Inner) + "]" }
func (*OptionalDesc) isDesc()          {}

// SequenceDesc is a list (Ordered) or a deduplicated set.
type SequenceDesc struct {
	Elem    Desc
	Ordered bool
	Frozen  bool
}

// ListOf declares an ordered sequence.
func ListOf(elem Desc) *SequenceDesc { return &SequenceDesc{Elem: elem, Ordered: true} }

// SetOf declares an unordered, deduplicated sequence.
func SetOf(elem Desc) *SequenceDesc { return &SequenceDesc{Elem: elem} }

// FrozenSetOf declares a set that callers promise not to mutate.
func FrozenSetOf(elem Desc) *SequenceDesc { return &SequenceDesc{Elem: elem, Frozen: true} }

func (s *SequenceDesc) Kind() Kind { return KindSequence }
func (s *SequenceDesc) String() string {
	if s.Ordered {
		return "list[" + descString(s.Elem) + "]"
	}
	return "set[" + descString(s.Elem) + "]"
}
func (*SequenceDesc) isDesc() {}

// TupleDesc is a fixed-arity positional sequence.
type TupleDesc struct{ Elems []Desc }

// TupleOf declares a fixed tuple. An empty tuple is allowed.
func TupleOf(elems ...Desc) *TupleDesc { return &TupleDesc{Elems: append([]Desc(nil), elems...)} }

func (t *TupleDesc) Kind() Kind { return KindTuple }
func (t *TupleDesc) String() string {
	parts := make([]string, len(t.Elems))
	for i, e := range t.Elems {
		parts[i] = descString(e)
	}
	return "tuple[" + strings.Join(parts, ", ") + "]"
}
func (*TupleDesc) isDesc() {}

// MappingDesc maps hashable keys to values.
type MappingDesc struct {
	Key   Desc
	Value Desc
}

// MapOf declares a mapping. Key must be string, int, float, bool, path, enum,
// literal or any.
func MapOf(key, value Desc) *MappingDesc { return &MappingDesc{Key: key, Value: value} }

func (m *MappingDesc) Kind() Kind { return KindMapping }
func (m *MappingDesc) String() string {
	return "map[" + descString(m.Key) + "]" + descString(m.Value)
}
func (*MappingDesc) isDesc() {}

// UnionDesc is an untagged alternation tried in declaration order.
type UnionDesc struct{ Variants []Desc }

// Union declares an untagged alternation.
func Union(variants ...Desc) *UnionDesc {
	return &UnionDesc{Variants: append([]Desc(nil), variants...)}
}

func (u *UnionDesc) Kind() Kind { return KindUnion }
func (u *UnionDesc) String() string {
	parts := make([]string, len(u.Variants))
	for i, v := range u.Variants {
		parts[i] = descString(v)
	}
	return "union[" + strings.Join(parts, " | ") + "]"
}
func (*UnionDesc) isDesc() {}

// ---- records ----

// Field declares one field of a Record.
type Field struct {
	Name       string
	Type       Desc
	HasDefault bool
	Default    any // typed value used when the field is absent
}

// FieldOf declares a field without default.
func FieldOf(name string, typ Desc) Field { return Field{Name: name, Type: typ} }

// FieldWithDefault declares a field whose typed default applies when absent.
func FieldWithDefault(name string, typ Desc, def any) Field {
	return Field{Name: name, Type: typ, HasDefault: true, Default: def}
}

// Record is a product type with ordered, name-keyed fields.
type Record struct {
	name    string
	fields  []Field
	unknown UnknownPolicy
}

// NewRecord declares a record.
func NewRecord(name string, fields ...Field) *Record {
	return &Record{name: name, fields: append([]Field(nil), fields...)}
}

func (r *Record) Kind() Kind     { return KindRecord }
func (r *Record) String() string { return r.name }
func (*Record) isDesc()          {}

// Name returns the record name.
func (r *Record) Name() string { return r.name }

// Fields returns the fields in declaration order.
func (r *Record) Fields() []Field { return append([]Field(nil), r.fields...) }

// Field looks up a field by name.
func (r *Record) Field(name string) (Field, bool) {
	if i := r.fieldIndex(name); i >= 0 {
		return r.fields[i], true
	}
	return Field{}, false
}

// Unknown returns the unknown-key policy.
func (r *Record) Unknown() UnknownPolicy { return r.unknown }

// ForbidUnknown returns a copy of r (a new identity) that rejects undeclared keys.
func (r *Record) ForbidUnknown() *Record {
	cp := *r
	cp.fields = append([]Field(nil), r.fields...)
	cp.unknown = UnknownForbid
	return &cp
}

func (r *Record) fieldIndex(name string) int {
	for i, f := range r.fields {
		if f.Name == name {
			return i
		}
	}
	return -1
}

// ---- references and custom nodes ----

// Ref is a placeholder for a description that is declared later, used to
// build self-referential descriptions. Resolve it before calling Apply.
type Ref struct {
	name   string
	target Desc
}

// NewRef allocates an unresolved placeholder.
func NewRef(name string) *Ref { return &Ref{name: name} }

// Resolve binds the placeholder. It panics if called twice.
func (r *Ref) Resolve(target Desc) *Ref {
	if r.target != nil {
		panic("shapekit: Ref " + r.name + " resolved twice")
	}
	r.target = target
	return r
}

// Target returns the bound description, or nil if unresolved.
func (r *Ref) Target() Desc { return r.target }

func (r *Ref) Kind() Kind     { return KindRef }
func (r *Ref) String() string { return r.name }
func (*Ref) isDesc()          {}

// CustomDesc is an opaque node whose codec must come from an Extension.
type CustomDesc struct{ name string }

// Custom declares an opaque description handled by an Extension.
func Custom(name string) *CustomDesc { return &CustomDesc{name: name} }

func (c *CustomDesc) Kind() Kind     { return KindCustom }
func (c *CustomDesc) String() string { return c.name }
func (*CustomDesc) isDesc()          {}

func descString(d Desc) string {
	if d == nil {
		return "<nil>"
	}
	return d.String()
}

// Walk visits every description reachable from root once, in depth-first
// order. Refs are followed. Returning false from fn stops descending into
// that node's children.
func Walk(root Desc, fn func(Desc) bool) {
	seen := map[Desc]struct{}{}
	var visit func(d Desc)
	visit = func(d Desc) {
		if d == nil {
			return
		}
		if _, ok := seen[d]; ok {
			return
		}
		seen[d] = struct{}{}
		if !fn(d) {
			return
		}
		for _, c := range children(d) {
			visit(c)
		}
	}
	visit(root)
}

func children(d Desc) []Desc {
	switch t := d.(type) {
	case *OptionalDesc:
		return []Desc{t.Inner}
	case *SequenceDesc:
		return []Desc{t.Elem}
	case *TupleDesc:
		return t.Elems
	case *MappingDesc:
		return []Desc{t.Key, t.Value}
	case *UnionDesc:
		return t.Variants
	case *Record:
		out := make([]Desc, len(t.fields))
		for i, f := range t.fields {
			out[i] = f.Type
		}
		return out
	case *SumType:
		out := make([]Desc, len(t.variants))
		for i, v := range t.variants {
			out[i] = v.record
		}
		return out
	case *Ref:
		if t.target != nil {
			return []Desc{t.target}
		}
	}
	return nil
}
