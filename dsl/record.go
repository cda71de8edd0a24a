package dsl

import (
	"fmt"
	"maps"

	sk "github.com/reoring/shapekit"
)

// fieldList collects fields and their wire keys; shared by record and
// variant builders.
type fieldList struct {
	owner  string
	fields []sk.Field
	wire   map[string]string
	err    error
}

func (l *fieldList) add(name string, d sk.Desc) int {
	for _, f := range l.fields {
		if f.Name == name && l.err == nil {
			l.err = fmt.Errorf("%w: %s.%s", sk.ErrDuplicateField, l.owner, name)
		}
	}
	l.fields = append(l.fields, sk.FieldOf(name, d))
	return len(l.fields) - 1
}

type recordBuilder struct {
	fieldList
	forbid bool
	built  *sk.Record
}

type fieldStep struct {
	b   *recordBuilder
	idx int
}

// Record creates a record builder. Fields are required unless marked
// Optional or given a Default.
func Record(name string) *recordBuilder {
	return &recordBuilder{fieldList: fieldList{owner: name, wire: map[string]string{}}}
}

// Field appends a field.
func (b *recordBuilder) Field(name string, d sk.Desc) *fieldStep {
	return &fieldStep{b: b, idx: b.add(name, d)}
}

// ForbidUnknown makes the record reject undeclared keys.
func (b *recordBuilder) ForbidUnknown() *recordBuilder {
	b.forbid = true
	return b
}

// As sets the wire key of the current field.
func (f *fieldStep) As(wireKey string) *fieldStep {
	f.b.wire[f.b.fields[f.idx].Name] = wireKey
	return f
}

// Optional wraps the current field type so that absent or null decodes to nil.
func (f *fieldStep) Optional() *recordBuilder {
	fd := &f.b.fields[f.idx]
	fd.Type = sk.Optional(fd.Type)
	return f.b
}

// Default sets the typed value used when the current field is absent.
func (f *fieldStep) Default(v any) *recordBuilder {
	fd := &f.b.fields[f.idx]
	fd.HasDefault = true
	fd.Default = v
	return f.b
}

func (f *fieldStep) Field(name string, d sk.Desc) *fieldStep { return f.b.Field(name, d) }
func (f *fieldStep) ForbidUnknown() *recordBuilder         { return f.b.ForbidUnknown() }
func (f *fieldStep) Build() (*BuiltRecord, error)          { return f.b.Build() }
func (f *fieldStep) MustBuild() *BuiltRecord               { return f.b.MustBuild() }

// BuiltRecord is a record description with the wire keys declared via As.
type BuiltRecord struct {
	rec  *sk.Record
	wire map[string]string
}

// Record returns the description.
func (b *BuiltRecord) Record() *sk.Record { return b.rec }

// Overrides returns an Option registering the wire keys declared via As.
func (b *BuiltRecord) Overrides() sk.Option { return sk.Overrides(b.rec, b.wire) }

// Build returns the record. Repeated calls return the same description.
func (b *recordBuilder) Build() (*BuiltRecord, error) {
	if b.err != nil {
		return nil, b.err
	}
	if b.built == nil {
		rec := sk.NewRecord(b.owner, b.fields...)
		if b.forbid {
			rec = rec.ForbidUnknown()
		}
		b.built = rec
	}
	return &BuiltRecord{rec: b.built, wire: maps.Clone(b.wire)}, nil
}

// MustBuild is Build that panics on error.
func (b *recordBuilder) MustBuild() *BuiltRecord {
	out, err := b.Build()
	if err != nil {
		panic(err)
	}
	return out
}
