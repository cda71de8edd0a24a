package shapekit

import (
	"fmt"
	"sort"
	"strings"
)

// FilePath is the decoded form of FSPath().
type FilePath string

// Set is the decoded form of a set sequence. Elements keep first-seen order.
type Set []any

// Tuple is the decoded form of a fixed tuple.
type Tuple []any

// Struct is the decoded form of a Record: one value per declared field.
type Struct struct {
	rec  *Record
	vals []any
}

// NewStruct builds a record value from typed field values. Absent fields take
// their default, or nil when optional; any other absent field and any
// undeclared key is reported as Issues. Field values are not type-checked.
func NewStruct(rec *Record, fields map[string]any) (*Struct, error) {
	st := &Struct{rec: rec, vals: make([]any, len(rec.fields))}
	var iss Issues
	for i, f := range rec.fields {
		v, ok := fields[f.Name]
		switch {
		case ok:
			st.vals[i] = v
		case f.HasDefault:
			st.vals[i] = f.Default
		case isOptional(f.Type):
			st.vals[i] = nil
		default:
			iss = iss.Append(Path{KeySeg(f.Name)}, CodeMissingRequired, nil)
		}
	}
	var unknown []string
	for k := range fields {
		if rec.fieldIndex(k) < 0 {
			unknown = append(unknown, k)
		}
	}
	sort.Strings(unknown)
	for _, k := range unknown {
		iss = iss.Append(Path{KeySeg(k)}, CodeUnknownKey, fields[k])
	}
	if len(iss) > 0 {
		return nil, iss
	}
	return st, nil
}

// MustStruct is NewStruct that panics on error.
func MustStruct(rec *Record, fields map[string]any) *Struct {
	st, err := NewStruct(rec, fields)
	if err != nil {
		panic(err)
	}
	return st
}

// Record returns the description this value belongs to.
func (s *Struct) Record() *Record { return s.rec }

// Lookup returns the value of a declared field.
func (s *Struct) Lookup(field string) (any, bool) {
	i := s.rec.fieldIndex(field)
	if i < 0 {
		return nil, false
	}
	return s.vals[i], true
}

// Get returns the value of a field, or nil when the field is not declared.
func (s *Struct) Get(field string) any {
	v, _ := s.Lookup(field)
	return v
}

// Map copies the field values into a map keyed by internal field name.
func (s *Struct) Map() map[string]any {
	out := make(map[string]any, len(s.vals))
	for i, f := range s.rec.fields {
		out[f.Name] = s.vals[i]
	}
	return out
}

func (s *Struct) String() string { return s.rec.name + s.fieldsString() }

func (s *Struct) fieldsString() string {
	b := &strings.Builder{}
	b.WriteByte('{')
	for i, f := range s.rec.fields {
		if i > 0 {
			b.WriteString(", ")
		}
		fmt.Fprintf(b, "%s: %v", f.Name, s.vals[i])
	}
	b.WriteByte('}')
	return b.String()
}

func isOptional(d Desc) bool {
	_, ok := deref(d).(*OptionalDesc)
	return ok
}

// deref follows Ref chains. It returns nil for an unresolved or cyclic chain.
func deref(d Desc) Desc {
	seen := map[*Ref]struct{}{}
	for {
		r, ok := d.(*Ref)
		if !ok {
			return d
		}
		if _, dup := seen[r]; dup || r.target == nil {
			return nil
		}
		seen[r] = struct{}{}
		d = r.target
	}
}
