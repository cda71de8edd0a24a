package dsl

import (
	"fmt"

	sk "github.com/reoring/shapekit"
)

type variantDef struct {
	name string
	tag  string
	fieldList
}

type sumBuilder struct {
	name     string
	variants []*variantDef
	built    *sk.SumType
}

type variantStep struct {
	b *sumBuilder
	v *variantDef
}

// Sum creates a sum type builder.
func Sum(name string) *sumBuilder { return &sumBuilder{name: name} }

// Variant starts a new variant. Its tag defaults to the lowercased name.
func (b *sumBuilder) Variant(name string) *variantStep {
	v := &variantDef{name: name, fieldList: fieldList{owner: b.name + "." + name, wire: map[string]string{}}}
	b.variants = append(b.variants, v)
	return &variantStep{b: b, v: v}
}

// Tag overrides the wire tag of the current variant.
func (s *variantStep) Tag(tag string) *variantStep {
	s.v.tag = tag
	return s
}

// Field appends a payload field to the current variant.
func (s *variantStep) Field(name string, d sk.Desc) *variantStep {
	s.v.add(name, d)
	return s
}

// OptionalField appends a payload field that decodes to nil when absent or null.
func (s *variantStep) OptionalField(name string, d sk.Desc) *variantStep {
	return s.Field(name, sk.Optional(d))
}

// As sets the wire key of the last added payload field.
func (s *variantStep) As(wireKey string) *variantStep {
	if n := len(s.v.fields); n > 0 {
		s.v.wire[s.v.fields[n-1].Name] = wireKey
	}
	return s
}

func (s *variantStep) Variant(name string) *variantStep { return s.b.Variant(name) }
func (s *variantStep) Build() (*BuiltSum, error)        { return s.b.Build() }
func (s *variantStep) MustBuild() *BuiltSum             { return s.b.MustBuild() }

// BuiltSum is a sum type with the wire keys declared via As.
type BuiltSum struct {
	sum  *sk.SumType
	wire map[string]map[string]string // variant name -> field -> key
}

// Sum returns the description.
func (b *BuiltSum) Sum() *sk.SumType { return b.sum }

// Variant returns a variant by name.
func (b *BuiltSum) Variant(name string) *sk.Variant {
	for _, v := range b.sum.Variants() {
		if v.Name() == name {
			return v
		}
	}
	return nil
}

// Overrides returns an Option registering the payload wire keys.
func (b *BuiltSum) Overrides() sk.Option {
	var opts []sk.Option
	for _, v := range b.sum.Variants() {
		if w := b.wire[v.Name()]; len(w) > 0 {
			opts = append(opts, sk.Overrides(v.Record(), w))
		}
	}
	return func(c *sk.Config) {
		for _, o := range opts {
			o(c)
		}
	}
}

// Build returns the sum type. Repeated calls return the same description.
func (b *sumBuilder) Build() (*BuiltSum, error) {
	wire := map[string]map[string]string{}
	defs := make([]sk.VariantDef, 0, len(b.variants))
	for _, v := range b.variants {
		if v.err != nil {
			return nil, v.err
		}
		d := sk.V(v.name, v.fields...)
		if v.tag != "" {
			d = d.Tagged(v.tag)
		}
		defs = append(defs, d)
		wire[v.name] = v.wire
	}
	if len(defs) == 0 {
		return nil, fmt.Errorf("%w: sum type %s has no variants", sk.ErrInvalidDesc, b.name)
	}
	if b.built == nil {
		b.built = sk.NewSum(b.name, defs...)
	}
	return &BuiltSum{sum: b.built, wire: wire}, nil
}

// MustBuild is Build that panics on error.
func (b *sumBuilder) MustBuild() *BuiltSum {
	out, err := b.Build()
	if err != nil {
		panic(err)
	}
	return out
}
