package shapekit

import (
	"fmt"
	"strings"
)

// Member is implemented by *SumType and *Variant so that Value.Is can test
// membership in either.
type Member interface {
	member()
}

// SumType is a closed set of tagged variants, each backed by a record.
type SumType struct {
	name     string
	variants []*Variant
}

// Variant is one case of a SumType.
type Variant struct {
	sum    *SumType
	name   string
	tag    string
	record *Record
	unit   *Value // shared instance for variants without fields
}

// VariantDef declares a variant for NewSum.
type VariantDef struct {
	Name   string
	Tag    string
	Fields []Field
}

// V declares a variant. The tag defaults to the lowercased name.
func V(name string, fields ...Field) VariantDef {
	return VariantDef{Name: name, Tag: strings.ToLower(name), Fields: fields}
}

// Tagged replaces the default tag.
func (d VariantDef) Tagged(tag string) VariantDef {
	d.Tag = tag
	return d
}

// NewSum declares a sum type. Variant payload records reject unknown keys.
// Duplicate names or tags are reported by Apply.
func NewSum(name string, variants ...VariantDef) *SumType {
	s := &SumType{name: name}
	for _, def := range variants {
		v := &Variant{
			sum:    s,
			name:   def.Name,
			tag:    def.Tag,
			record: NewRecord(name+"."+def.Name, def.Fields...).ForbidUnknown(),
		}
		v.unit = &Value{variant: v, data: &Struct{rec: v.record, vals: []any{}}}
		s.variants = append(s.variants, v)
	}
	return s
}

func (s *SumType) Kind() Kind     { return KindSum }
func (s *SumType) String() string { return s.name }
func (*SumType) isDesc()          {}
func (*SumType) member()          {}

// Name returns the sum type name.
func (s *SumType) Name() string { return s.name }

// Variants returns the variants in declaration order.
func (s *SumType) Variants() []*Variant { return append([]*Variant(nil), s.variants...) }

// Values returns the declared tags in declaration order.
func (s *SumType) Values() []string {
	out := make([]string, len(s.variants))
	for i, v := range s.variants {
		out[i] = v.tag
	}
	return out
}

// Lookup resolves x to one of the declared variants. x may be a tag string
// (matched exactly first, then case-insensitively), a *Variant of s, or a
// *Value whose variant belongs to s.
func (s *SumType) Lookup(x any) (*Variant, bool) {
	switch t := x.(type) {
	case string:
		return s.byTag(t)
	case *Variant:
		if t != nil && t.sum == s {
			return t, true
		}
	case *Value:
		if t != nil && t.variant.sum == s {
			return t.variant, true
		}
	}
	return nil, false
}

// MustLookup is Lookup that panics when x does not resolve.
func (s *SumType) MustLookup(x any) *Variant {
	v, ok := s.Lookup(x)
	if !ok {
		panic(fmt.Sprintf("shapekit: %v is not a variant of %s", x, s.name))
	}
	return v
}

func (s *SumType) byTag(tag string) (*Variant, bool) {
	for _, v := range s.variants {
		if v.tag == tag {
			return v, true
		}
	}
	for _, v := range s.variants {
		if strings.EqualFold(v.tag, tag) {
			return v, true
		}
	}
	return nil, false
}

func (*Variant) member() {}

// Sum returns the owning sum type.
func (v *Variant) Sum() *SumType { return v.sum }

// Name returns the variant name.
func (v *Variant) Name() string { return v.name }

// Tag returns the wire tag.
func (v *Variant) Tag() string { return v.tag }

// Record returns the payload record description.
func (v *Variant) Record() *Record { return v.record }

func (v *Variant) String() string { return v.sum.name + "." + v.name }

// Unit returns the shared instance of a variant that has no fields.
func (v *Variant) Unit() (*Value, bool) {
	if len(v.record.fields) != 0 {
		return nil, false
	}
	return v.unit, true
}

// New builds an instance from typed field values. Field-less variants
// return their shared instance.
func (v *Variant) New(fields map[string]any) (*Value, error) {
	if u, ok := v.Unit(); ok && len(fields) == 0 {
		return u, nil
	}
	st, err := NewStruct(v.record, fields)
	if err != nil {
		return nil, err
	}
	return &Value{variant: v, data: st}, nil
}

// MustNew is New that panics on error.
func (v *Variant) MustNew(fields map[string]any) *Value {
	out, err := v.New(fields)
	if err != nil {
		panic(err)
	}
	return out
}

// Value is an instance of a sum type variant.
type Value struct {
	variant *Variant
	data    *Struct
}

// Variant returns the active variant.
func (x *Value) Variant() *Variant { return x.variant }

// Tag returns the active variant's tag.
func (x *Value) Tag() string { return x.variant.tag }

// Data returns the payload record value.
func (x *Value) Data() *Struct { return x.data }

// Get returns a payload field, or nil when the field is not declared.
func (x *Value) Get(field string) any { return x.data.Get(field) }

// Is reports membership in the owning sum type or in the active variant.
// An instance is never a member of a sibling variant.
func (x *Value) Is(m Member) bool {
	switch t := m.(type) {
	case *SumType:
		return t == x.variant.sum
	case *Variant:
		return t == x.variant
	}
	return false
}

func (x *Value) String() string {
	return x.variant.String() + x.data.fieldsString()
}
