// Package infer sketches a shapekit description from sample raw trees.
//
// The result always decodes the samples it was inferred from: records get
// the keys seen, fields missing from some samples become optional, and keys
// that are not identifiers are renamed with an override in the returned
// Config.
package infer

import (
	"fmt"
	"sort"
	"strings"
	"unicode"

	j "github.com/goccy/go-json"

	sk "github.com/reoring/shapekit"
)

type shape struct {
	kind     sk.Kind // KindAny until a non-null value is seen
	nullable bool
	elem     *shape            // sequence
	fields   map[string]*shape // record, by raw key
	present  map[string]int    // record: samples containing the key
	samples  int               // record: merged samples
	alts     []*shape          // union
}

func observe(raw any) (*shape, error) {
	switch v := raw.(type) {
	case nil:
		return &shape{kind: sk.KindAny, nullable: true}, nil
	case bool:
		return &shape{kind: sk.KindBool}, nil
	case string:
		return &shape{kind: sk.KindString}, nil
	case j.Number:
		if _, err := v.Int64(); err == nil {
			return &shape{kind: sk.KindInt}, nil
		}
		return &shape{kind: sk.KindFloat}, nil
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		return &shape{kind: sk.KindInt}, nil
	case float32, float64:
		return &shape{kind: sk.KindFloat}, nil
	case []any:
		s := &shape{kind: sk.KindSequence}
		for _, it := range v {
			es, err := observe(it)
			if err != nil {
				return nil, err
			}
			s.elem = merge(s.elem, es)
		}
		return s, nil
	case map[string]any:
		s := &shape{kind: sk.KindRecord, fields: map[string]*shape{}, present: map[string]int{}, samples: 1}
		for k, it := range v {
			fs, err := observe(it)
			if err != nil {
				return nil, err
			}
			s.fields[k] = fs
			s.present[k] = 1
		}
		return s, nil
	}
	return nil, fmt.Errorf("infer: unsupported raw value %T", raw)
}

func merge(a, b *shape) *shape {
	switch {
	case a == nil:
		return b
	case b == nil:
		return a
	}
	nullable := a.nullable || b.nullable
	var out *shape
	switch {
	case a.kind == sk.KindAny && a.elem == nil && a.fields == nil && a.alts == nil:
		out = clone(b)
	case b.kind == sk.KindAny && b.elem == nil && b.fields == nil && b.alts == nil:
		out = clone(a)
	case a.kind == sk.KindUnion || b.kind == sk.KindUnion:
		out = &shape{kind: sk.KindUnion}
		for _, s := range append(alternatives(a), alternatives(b)...) {
			out.alts = addAlt(out.alts, s)
		}
	case a.kind == b.kind:
		out = sameKind(a, b)
	case isNumber(a.kind) && isNumber(b.kind):
		out = &shape{kind: sk.KindFloat}
	default:
		out = &shape{kind: sk.KindUnion, alts: addAlt([]*shape{clone(a)}, b)}
	}
	out.nullable = nullable
	return out
}

func isNumber(k sk.Kind) bool { return k == sk.KindInt || k == sk.KindFloat }

func clone(s *shape) *shape {
	cp := *s
	return &cp
}

func alternatives(s *shape) []*shape {
	if s.kind == sk.KindUnion {
		return s.alts
	}
	cp := clone(s)
	cp.nullable = false
	return []*shape{cp}
}

// addAlt merges s into the alternative of a compatible kind, or appends it.
func addAlt(alts []*shape, s *shape) []*shape {
	for i, a := range alts {
		if a.kind == s.kind || isNumber(a.kind) && isNumber(s.kind) {
			alts[i] = merge(a, s)
			alts[i].nullable = false
			return alts
		}
	}
	cp := clone(s)
	cp.nullable = false
	return append(alts, cp)
}

func sameKind(a, b *shape) *shape {
	switch a.kind {
	case sk.KindSequence:
		return &shape{kind: sk.KindSequence, elem: merge(a.elem, b.elem)}
	case sk.KindRecord:
		out := &shape{
			kind:    sk.KindRecord,
			fields:  map[string]*shape{},
			present: map[string]int{},
			samples: a.samples + b.samples,
		}
		for _, src := range []*shape{a, b} {
			for k, fs := range src.fields {
				out.fields[k] = merge(out.fields[k], fs)
				out.present[k] += src.present[k]
			}
		}
		return out
	}
	return &shape{kind: a.kind}
}

// FromSample infers a description for raw and the overrides needed to
// decode it. name names the root record, when the root is a mapping.
func FromSample(name string, raw any) (sk.Desc, *sk.Config, error) {
	return FromSamples(name, raw)
}

// FromSamples infers one description covering every sample.
func FromSamples(name string, samples ...any) (sk.Desc, *sk.Config, error) {
	var s *shape
	for _, raw := range samples {
		o, err := observe(raw)
		if err != nil {
			return nil, nil, err
		}
		s = merge(s, o)
	}
	if s == nil {
		return nil, nil, fmt.Errorf("infer: no samples")
	}
	b := &builder{names: map[string]int{}}
	d := b.desc(typeName(name), s)
	return d, sk.New(b.opts...), nil
}

type builder struct {
	names map[string]int
	opts  []sk.Option
}

func (b *builder) desc(name string, s *shape) sk.Desc {
	d := b.bare(name, s)
	if s.nullable {
		return sk.Optional(d)
	}
	return d
}

func (b *builder) bare(name string, s *shape) sk.Desc {
	switch s.kind {
	case sk.KindBool:
		return sk.Bool()
	case sk.KindInt:
		return sk.Int()
	case sk.KindFloat:
		return sk.Float()
	case sk.KindString:
		return sk.String()
	case sk.KindSequence:
		if s.elem == nil {
			return sk.ListOf(sk.Any())
		}
		return sk.ListOf(b.desc(singular(name), s.elem))
	case sk.KindRecord:
		return b.record(name, s)
	case sk.KindUnion:
		vs := make([]sk.Desc, len(s.alts))
		for i, a := range s.alts {
			vs[i] = b.bare(name, a)
		}
		return sk.Union(vs...)
	}
	return sk.Any()
}

func (b *builder) record(name string, s *shape) sk.Desc {
	name = b.unique(name)
	keys := make([]string, 0, len(s.fields))
	for k := range s.fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	used := map[string]int{}
	rename := map[string]string{}
	fields := make([]sk.Field, 0, len(keys))
	for _, k := range keys {
		base := FieldName(k)
		fname := base
		for n := 2; used[fname] > 0; n++ {
			fname = fmt.Sprintf("%s_%d", base, n)
		}
		used[fname]++
		if fname != k {
			rename[fname] = k
		}
		fs := s.fields[k]
		d := b.desc(name+typeName(k), fs)
		if s.present[k] < s.samples && !fs.nullable {
			d = sk.Optional(d)
		}
		fields = append(fields, sk.FieldOf(fname, d))
	}
	rec := sk.NewRecord(name, fields...)
	if len(rename) > 0 {
		b.opts = append(b.opts, sk.Overrides(rec, rename))
	}
	return rec
}

func (b *builder) unique(name string) string {
	n := b.names[name]
	b.names[name] = n + 1
	if n == 0 {
		return name
	}
	return fmt.Sprintf("%s%d", name, n+1)
}

// FieldName turns a raw key into a snake_case identifier: camelCase humps
// and separators become underscores; a leading digit gets an "f_" prefix.
func FieldName(key string) string {
	var b strings.Builder
	prevLower := false
	for _, r := range key {
		switch {
		case unicode.IsUpper(r) && r < unicode.MaxASCII:
			if prevLower {
				b.WriteByte('_')
			}
			b.WriteRune(unicode.ToLower(r))
			prevLower = false
		case r >= 'a' && r <= 'z' || r >= '0' && r <= '9':
			b.WriteRune(r)
			prevLower = true
		default:
			b.WriteByte('_')
			prevLower = false
		}
	}
	out := collapse(b.String())
	if out == "" {
		return "field"
	}
	if out[0] >= '0' && out[0] <= '9' {
		return "f_" + out
	}
	return out
}

func collapse(s string) string {
	for strings.Contains(s, "__") {
		s = strings.ReplaceAll(s, "__", "_")
	}
	return strings.Trim(s, "_")
}

func typeName(key string) string {
	var b strings.Builder
	for _, part := range strings.Split(FieldName(key), "_") {
		if part == "" {
			continue
		}
		b.WriteString(strings.ToUpper(part[:1]))
		b.WriteString(part[1:])
	}
	if b.Len() == 0 {
		return "Root"
	}
	return b.String()
}

func singular(name string) string {
	switch {
	case strings.HasSuffix(name, "ies") && len(name) > 3:
		return name[:len(name)-3] + "y"
	case strings.HasSuffix(name, "s") && !strings.HasSuffix(name, "ss") && len(name) > 1:
		return name[:len(name)-1]
	}
	return name + "Item"
}
