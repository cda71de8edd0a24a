package shapekit

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"reflect"
	"sort"
	"strconv"

	gojson "github.com/goccy/go-json"

	"github.com/reoring/shapekit/i18n"
)

type decodeFunc func(ctx context.Context, raw any) (any, Issues)
type encodeFunc func(ctx context.Context, v any) (any, Issues)

// node is the compiled pair for one description. Nodes are registered before
// their children are compiled; closures reach children through the node
// pointer, so cyclic descriptions compile to cyclic node graphs.
type node struct {
	desc   Desc
	decode decodeFunc
	encode encodeFunc
}

type compiler struct {
	cfg   *Config
	nodes map[Desc]*node
	// external key per field, in declaration order
	names         map[*Record][]string
	usedOverrides map[FieldRef]struct{}
	usedExt       map[Desc]struct{}
	// sums in compile order; tag keys are checked once all names are known
	sums []*SumType
}

func compile(cfg *Config, root Desc) (*Codec, error) {
	if cfg == nil {
		cfg = Default()
	}
	c := &compiler{
		cfg:           cfg,
		nodes:         map[Desc]*node{},
		names:         map[*Record][]string{},
		usedOverrides: map[FieldRef]struct{}{},
		usedExt:       map[Desc]struct{}{},
	}
	n, err := c.node(root)
	if err != nil {
		return nil, err
	}
	if err := c.checkTagKeys(); err != nil {
		return nil, err
	}
	if err := c.checkUnused(); err != nil {
		return nil, err
	}
	return &Codec{desc: root, cfg: cfg, root: n, nodes: c.nodes, names: c.names}, nil
}

// checkTagKeys runs after the whole graph is compiled: a variant record
// that leads back to its own sum has no external names while the sum is
// being compiled.
func (c *compiler) checkTagKeys() error {
	tagKey, dict := c.cfg.TagKey()
	if !dict {
		return nil
	}
	for _, s := range c.sums {
		for _, v := range s.variants {
			for _, ext := range c.names[v.record] {
				if ext == tagKey {
					return configErr(s, v.name, ErrTagKeyCollision)
				}
			}
		}
	}
	return nil
}

func (c *compiler) checkUnused() error {
	var errs []error
	refs := make([]FieldRef, 0)
	for ref := range c.cfg.overrides {
		if _, ok := c.usedOverrides[ref]; !ok {
			refs = append(refs, ref)
		}
	}
	sort.Slice(refs, func(i, j int) bool {
		a, b := recordName(refs[i].Record), recordName(refs[j].Record)
		if a != b {
			return a < b
		}
		return refs[i].Field < refs[j].Field
	})
	for _, ref := range refs {
		var d Desc
		if ref.Record != nil {
			d = ref.Record
		}
		errs = append(errs, configErr(d, ref.Field, ErrUnusedOverride))
	}
	var exts []Desc
	for d := range c.cfg.extensions {
		if _, ok := c.usedExt[d]; !ok {
			exts = append(exts, d)
		}
	}
	sort.Slice(exts, func(i, j int) bool { return descString(exts[i]) < descString(exts[j]) })
	for _, d := range exts {
		errs = append(errs, configErr(d, "", ErrUnusedExtension))
	}
	switch len(errs) {
	case 0:
		return nil
	case 1:
		return errs[0]
	}
	return errors.Join(errs...)
}

func recordName(r *Record) string {
	if r == nil {
		return "<nil>"
	}
	return r.name
}

func (c *compiler) node(d Desc) (*node, error) {
	if d == nil {
		return nil, configErr(nil, "", ErrInvalidDesc)
	}
	if n, ok := c.nodes[d]; ok {
		return n, nil
	}
	if ext, ok := c.cfg.extensions[d]; ok {
		c.usedExt[d] = struct{}{}
		n := extensionNode(d, ext)
		c.nodes[d] = n
		return n, nil
	}
	if r, ok := d.(*Ref); ok {
		t := deref(r)
		if t == nil {
			return nil, configErr(r, "", ErrUnresolvedRef)
		}
		n, err := c.node(t)
		if err != nil {
			return nil, err
		}
		c.nodes[r] = n
		return n, nil
	}

	n := &node{desc: d}
	c.nodes[d] = n
	var err error
	switch t := d.(type) {
	case *Primitive:
		c.primitive(n, t)
	case *LiteralDesc:
		n.decode = leafDecode(t, func(raw any) (any, bool) { return literalMatch(t.values, raw) })
		n.encode = leafEncode(t, func(v any) (any, bool) { return literalMatch(t.values, v) })
	case *EnumDesc:
		c.enum(n, t)
	case *OptionalDesc:
		err = c.optional(n, t)
	case *SequenceDesc:
		err = c.sequence(n, t)
	case *TupleDesc:
		err = c.tuple(n, t)
	case *MappingDesc:
		err = c.mapping(n, t)
	case *Record:
		err = c.record(n, t)
	case *UnionDesc:
		err = c.union(n, t)
	case *SumType:
		err = c.sum(n, t)
	case *CustomDesc:
		err = configErr(t, "", ErrMissingExtension)
	default:
		err = configErr(d, "", ErrInvalidDesc)
	}
	if err != nil {
		return nil, err
	}
	return n, nil
}

func extensionNode(d Desc, ext Extension) *node {
	return &node{
		desc: d,
		decode: func(ctx context.Context, raw any) (any, Issues) {
			v, err := ext.DecodeRaw(ctx, raw)
			if err != nil {
				return nil, issuesFromErr(err, raw)
			}
			return v, nil
		},
		encode: func(ctx context.Context, v any) (any, Issues) {
			out, err := ext.EncodeValue(ctx, v)
			if err != nil {
				return nil, issuesFromErr(err, v)
			}
			return out, nil
		},
	}
}

func wrongType(d Desc, sample any) Issues {
	exp := descString(d)
	it := newIssue(nil, CodeWrongType, sample, "")
	it.Message = i18n.T(CodeWrongType, map[string]string{"expected": exp})
	it.Params = map[string]any{"expected": exp}
	return Issues{it}
}

func leafDecode(d Desc, fn func(any) (any, bool)) decodeFunc {
	return func(_ context.Context, raw any) (any, Issues) {
		if v, ok := fn(raw); ok {
			return v, nil
		}
		return nil, wrongType(d, raw)
	}
}

func leafEncode(d Desc, fn func(any) (any, bool)) encodeFunc {
	return func(_ context.Context, v any) (any, Issues) {
		if out, ok := fn(v); ok {
			return out, nil
		}
		return nil, wrongType(d, v)
	}
}

func identity(_ context.Context, v any) (any, Issues) { return v, nil }

func (c *compiler) primitive(n *node, p *Primitive) {
	ns := c.cfg.nonStrict
	switch p.kind {
	case KindBool:
		n.decode = leafDecode(p, func(raw any) (any, bool) { return decodeBool(raw, ns) })
		n.encode = leafEncode(p, encodeBool)
	case KindInt:
		n.decode = leafDecode(p, func(raw any) (any, bool) { return decodeInt(raw, ns) })
		n.encode = leafEncode(p, encodeInt)
	case KindFloat:
		n.decode = leafDecode(p, func(raw any) (any, bool) { return decodeFloat(raw, ns) })
		n.encode = leafEncode(p, encodeFloat)
	case KindString:
		n.decode = leafDecode(p, decodeString)
		n.encode = leafEncode(p, encodeString)
	case KindBytes:
		n.decode = leafDecode(p, func(raw any) (any, bool) { return decodeBytes(raw, ns) })
		n.encode = leafEncode(p, encodeBytes)
	case KindPath:
		n.decode = leafDecode(p, decodePath)
		n.encode = leafEncode(p, encodePath)
	default:
		n.decode = identity
		n.encode = identity
	}
}

func (c *compiler) enum(n *node, e *EnumDesc) {
	n.decode = leafDecode(e, func(raw any) (any, bool) {
		s, ok := raw.(string)
		if !ok {
			return nil, false
		}
		m, ok := e.Lookup(s)
		return m, ok
	})
	n.encode = leafEncode(e, func(v any) (any, bool) {
		m, ok := v.(*EnumMember)
		if !ok || m == nil || m.enum != e {
			return nil, false
		}
		return m.Value, true
	})
}

func (c *compiler) optional(n *node, o *OptionalDesc) error {
	inner, err := c.node(o.Inner)
	if err != nil {
		return err
	}
	n.decode = func(ctx context.Context, raw any) (any, Issues) {
		if raw == nil {
			return nil, nil
		}
		return inner.decode(ctx, raw)
	}
	n.encode = func(ctx context.Context, v any) (any, Issues) {
		if v == nil {
			return nil, nil
		}
		return inner.encode(ctx, v)
	}
	return nil
}

// asList accepts []any and other slice kinds except []byte. Set and Tuple are
// excluded so that lists, sets and tuples stay distinguishable on encode.
func asList(v any) ([]any, bool) {
	switch t := v.(type) {
	case []any:
		return t, true
	case Set, Tuple, []byte, nil:
		return nil, false
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return nil, false
	}
	out := make([]any, rv.Len())
	for i := range out {
		out[i] = rv.Index(i).Interface()
	}
	return out, true
}

// canonicalKey is the JSON text of the raw form of v; go-json sorts map keys.
func canonicalKey(v any) string {
	b, err := gojson.Marshal(v)
	if err != nil {
		return fmt.Sprintf("%#v", v)
	}
	return string(b)
}

func (c *compiler) sequence(n *node, s *SequenceDesc) error {
	elem, err := c.node(s.Elem)
	if err != nil {
		return err
	}
	n.decode = func(ctx context.Context, raw any) (any, Issues) {
		items, ok := asList(raw)
		if !ok {
			return nil, wrongType(s, raw)
		}
		out := make([]any, 0, len(items))
		var seen map[string]struct{}
		if !s.Ordered {
			seen = make(map[string]struct{}, len(items))
		}
		var iss Issues
		for i, it := range items {
			v, sub := elem.decode(ctx, it)
			if len(sub) > 0 {
				iss = iss.Extend(sub, Path{IndexSeg(i)})
				if IsFailFast(ctx) {
					return nil, iss
				}
				continue
			}
			if seen != nil {
				key := it
				if enc, esub := elem.encode(ctx, v); len(esub) == 0 {
					key = enc
				}
				k := canonicalKey(key)
				if _, dup := seen[k]; dup {
					continue
				}
				seen[k] = struct{}{}
			}
			out = append(out, v)
		}
		if len(iss) > 0 {
			return nil, iss
		}
		if !s.Ordered {
			return Set(out), nil
		}
		return out, nil
	}
	n.encode = func(ctx context.Context, v any) (any, Issues) {
		var items []any
		if st, ok := v.(Set); ok && !s.Ordered {
			items = st
		} else if l, ok := asList(v); ok {
			items = l
		} else {
			return nil, wrongType(s, v)
		}
		out := make([]any, 0, len(items))
		var seen map[string]struct{}
		if !s.Ordered {
			seen = make(map[string]struct{}, len(items))
		}
		var iss Issues
		for i, it := range items {
			ev, sub := elem.encode(ctx, it)
			if len(sub) > 0 {
				iss = iss.Extend(sub, Path{IndexSeg(i)})
				continue
			}
			if seen != nil {
				k := canonicalKey(ev)
				if _, dup := seen[k]; dup {
					continue
				}
				seen[k] = struct{}{}
			}
			out = append(out, ev)
		}
		if len(iss) > 0 {
			return nil, iss
		}
		return out, nil
	}
	return nil
}

func (c *compiler) tuple(n *node, t *TupleDesc) error {
	elems := make([]*node, len(t.Elems))
	for i, d := range t.Elems {
		en, err := c.node(d)
		if err != nil {
			return err
		}
		elems[i] = en
	}
	n.decode = func(ctx context.Context, raw any) (any, Issues) {
		items, ok := asList(raw)
		if !ok || len(items) != len(elems) {
			return nil, wrongType(t, raw)
		}
		out := make(Tuple, len(elems))
		var iss Issues
		for i, en := range elems {
			v, sub := en.decode(ctx, items[i])
			if len(sub) > 0 {
				iss = iss.Extend(sub, Path{IndexSeg(i)})
				if IsFailFast(ctx) {
					return nil, iss
				}
				continue
			}
			out[i] = v
		}
		if len(iss) > 0 {
			return nil, iss
		}
		return out, nil
	}
	n.encode = func(ctx context.Context, v any) (any, Issues) {
		items, ok := v.(Tuple)
		if !ok {
			items, ok = asList(v)
		}
		if !ok || len(items) != len(elems) {
			return nil, wrongType(t, v)
		}
		out := make([]any, len(elems))
		var iss Issues
		for i, en := range elems {
			ev, sub := en.encode(ctx, items[i])
			if len(sub) > 0 {
				iss = iss.Extend(sub, Path{IndexSeg(i)})
				continue
			}
			out[i] = ev
		}
		if len(iss) > 0 {
			return nil, iss
		}
		return out, nil
	}
	return nil
}

// keyCandidates turns a raw mapping key into the raw values a key codec of
// the given kind may accept, in preference order.
func keyCandidates(kind Kind, s string) []any {
	out := []any{}
	addInt := func() {
		if n, err := strconv.ParseInt(s, 10, 64); err == nil {
			out = append(out, n)
		}
	}
	addFloat := func() {
		if f, err := strconv.ParseFloat(s, 64); err == nil {
			out = append(out, f)
		}
	}
	addBool := func() {
		if b, err := strconv.ParseBool(s); err == nil {
			out = append(out, b)
		}
	}
	switch kind {
	case KindInt:
		addInt()
	case KindFloat:
		addFloat()
	case KindBool:
		addBool()
	case KindLiteral:
		out = append(out, s)
		addInt()
		addFloat()
		addBool()
		return out
	}
	return append(out, s)
}

func keyString(raw any) (string, bool) {
	switch k := raw.(type) {
	case string:
		return k, true
	case int64:
		return strconv.FormatInt(k, 10), true
	case float64:
		return strconv.FormatFloat(k, 'g', -1, 64), true
	case bool:
		return strconv.FormatBool(k), true
	case gojson.Number:
		return k.String(), true
	}
	return "", false
}

func (c *compiler) mapping(n *node, m *MappingDesc) error {
	kind := KindString
	_, custom := c.cfg.extensions[m.Key]
	if !custom {
		kd := deref(m.Key)
		if kd == nil {
			return configErr(m.Key, "", ErrUnresolvedRef)
		}
		kind = kd.Kind()
		switch kind {
		case KindString, KindAny, KindPath, KindInt, KindFloat, KindBool, KindEnum, KindLiteral:
		default:
			return configErr(m, "", ErrUnhashableKey)
		}
	}
	stringKeys := !custom && (kind == KindString || kind == KindAny)
	kn, err := c.node(m.Key)
	if err != nil {
		return err
	}
	vn, err := c.node(m.Value)
	if err != nil {
		return err
	}
	decodeKey := func(ctx context.Context, s string) (any, Issues) {
		var last Issues
		for _, cand := range keyCandidates(kind, s) {
			k, sub := kn.decode(ctx, cand)
			if len(sub) == 0 {
				if k != nil && !reflect.TypeOf(k).Comparable() {
					return nil, wrongType(m.Key, s)
				}
				return k, nil
			}
			last = sub
		}
		return nil, last
	}
	n.decode = func(ctx context.Context, raw any) (any, Issues) {
		rm, ok := raw.(map[string]any)
		if !ok {
			return nil, wrongType(m, raw)
		}
		keys := make([]string, 0, len(rm))
		for k := range rm {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		var so map[string]any
		var ao map[any]any
		if stringKeys {
			so = make(map[string]any, len(rm))
		} else {
			ao = make(map[any]any, len(rm))
		}
		var iss Issues
		// typed key -> first raw key that produced it
		seen := map[any]string{}
		for _, k := range keys {
			p := Path{KeySeg(k)}
			kv, sub := decodeKey(ctx, k)
			if len(sub) == 0 && !stringKeys {
				if prev, dup := seen[kv]; dup {
					sub = sub.AppendDetail(nil, CodeWrongType, fmt.Sprintf("key collides with %q", prev), k)
				} else {
					seen[kv] = k
				}
			}
			if len(sub) == 0 {
				var vv any
				vv, sub = vn.decode(ctx, rm[k])
				if len(sub) == 0 {
					if stringKeys {
						so[k] = vv
					} else {
						ao[kv] = vv
					}
					continue
				}
			}
			iss = iss.Extend(sub, p)
			if IsFailFast(ctx) {
				return nil, iss
			}
		}
		if len(iss) > 0 {
			return nil, iss
		}
		if stringKeys {
			return so, nil
		}
		return ao, nil
	}
	n.encode = func(ctx context.Context, v any) (any, Issues) {
		rv := reflect.ValueOf(v)
		if v == nil || rv.Kind() != reflect.Map {
			return nil, wrongType(m, v)
		}
		type entry struct {
			key string
			val any
		}
		entries := make([]entry, 0, rv.Len())
		var iss Issues
		it := rv.MapRange()
		for it.Next() {
			rk, sub := kn.encode(ctx, it.Key().Interface())
			if len(sub) > 0 {
				iss = iss.Extend(sub, Path{KeySeg(fmt.Sprint(it.Key().Interface()))})
				continue
			}
			ks, ok := keyString(rk)
			if !ok {
				iss = iss.Extend(wrongType(m.Key, rk), Path{KeySeg(fmt.Sprint(rk))})
				continue
			}
			entries = append(entries, entry{key: ks, val: it.Value().Interface()})
		}
		sort.Slice(entries, func(i, j int) bool { return entries[i].key < entries[j].key })
		out := make(map[string]any, len(entries))
		for _, e := range entries {
			ev, sub := vn.encode(ctx, e.val)
			if len(sub) > 0 {
				iss = iss.Extend(sub, Path{KeySeg(e.key)})
				continue
			}
			out[e.key] = ev
		}
		if len(iss) > 0 {
			return nil, iss
		}
		return out, nil
	}
	return nil
}

func isIdentifier(s string) bool {
	if s == "" {
		return false
	}
	for i, r := range s {
		switch {
		case r == '_', r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z':
		case i > 0 && r >= '0' && r <= '9':
		default:
			return false
		}
	}
	return true
}

// externalName resolves the wire key of a field: per-field override, then the
// global name function, then the field name itself when it is an identifier.
func (c *compiler) externalName(r *Record, field string) (string, error) {
	ref := FieldRef{Record: r, Field: field}
	if ext, ok := c.cfg.overrides[ref]; ok {
		c.usedOverrides[ref] = struct{}{}
		if ext == "" {
			return "", configErr(r, field, ErrUnnormalizableName)
		}
		return ext, nil
	}
	if c.cfg.nameFn != nil {
		if ext := c.cfg.nameFn(field); ext != "" {
			return ext, nil
		}
		return "", configErr(r, field, ErrUnnormalizableName)
	}
	if !isIdentifier(field) {
		return "", configErr(r, field, ErrUnnormalizableName)
	}
	return field, nil
}

type recordSlot struct {
	field    Field
	ext      string
	node     *node
	optional bool
}

func (c *compiler) record(n *node, r *Record) error {
	slots := make([]recordSlot, len(r.fields))
	names := make([]string, len(r.fields))
	byName := map[string]struct{}{}
	byExt := map[string]string{}
	for i, f := range r.fields {
		if _, dup := byName[f.Name]; dup {
			return configErr(r, f.Name, ErrDuplicateField)
		}
		byName[f.Name] = struct{}{}
		ext, err := c.externalName(r, f.Name)
		if err != nil {
			return err
		}
		if other, dup := byExt[ext]; dup {
			return &ConfigError{
				Desc:  r.String(),
				Field: f.Name,
				Err:   fmt.Errorf("%w: key %q is also used by %s", ErrUnnormalizableName, ext, other),
			}
		}
		byExt[ext] = f.Name
		fn, err := c.node(f.Type)
		if err != nil {
			return err
		}
		slots[i] = recordSlot{field: f, ext: ext, node: fn, optional: isOptional(f.Type)}
		names[i] = ext
	}
	c.names[r] = names
	forbid := r.unknown == UnknownForbid

	n.decode = func(ctx context.Context, raw any) (any, Issues) {
		m, ok := raw.(map[string]any)
		if !ok {
			return nil, wrongType(r, raw)
		}
		vals := make([]any, len(slots))
		var iss Issues
		for i, s := range slots {
			p := Path{KeySeg(s.ext)}
			rv, present := m[s.ext]
			switch {
			case present:
				v, sub := s.node.decode(ctx, rv)
				if len(sub) == 0 {
					vals[i] = v
					continue
				}
				iss = iss.Extend(sub, p)
			case s.field.HasDefault:
				vals[i] = s.field.Default
				continue
			case s.optional:
				continue
			default:
				iss = iss.Append(p, CodeMissingRequired, nil)
			}
			if IsFailFast(ctx) {
				return nil, iss
			}
		}
		if forbid {
			var unknown []string
			for k := range m {
				if _, ok := byExt[k]; !ok {
					unknown = append(unknown, k)
				}
			}
			sort.Strings(unknown)
			for _, k := range unknown {
				iss = iss.Append(Path{KeySeg(k)}, CodeUnknownKey, m[k])
			}
		}
		if len(iss) > 0 {
			return nil, iss
		}
		return &Struct{rec: r, vals: vals}, nil
	}
	n.encode = func(ctx context.Context, v any) (any, Issues) {
		st, ok := v.(*Struct)
		if !ok || st == nil || st.rec != r {
			return nil, wrongType(r, v)
		}
		out := make(map[string]any, len(slots))
		var iss Issues
		for i, s := range slots {
			ev, sub := s.node.encode(ctx, st.vals[i])
			if len(sub) > 0 {
				iss = iss.Extend(sub, Path{KeySeg(s.ext)})
				continue
			}
			out[s.ext] = ev
		}
		if len(iss) > 0 {
			return nil, iss
		}
		return out, nil
	}
	return nil
}

func noVariant(d Desc, sample any, hint string) Issues {
	it := newIssue(nil, CodeNoVariantMatched, sample, hint)
	it.Params = map[string]any{"expected": descString(d)}
	return Issues{it}
}

func (c *compiler) union(n *node, u *UnionDesc) error {
	if len(u.Variants) == 0 {
		return configErr(u, "", ErrInvalidDesc)
	}
	nodes := make([]*node, len(u.Variants))
	for i, d := range u.Variants {
		vn, err := c.node(d)
		if err != nil {
			return err
		}
		nodes[i] = vn
	}
	n.decode = func(ctx context.Context, raw any) (any, Issues) {
		for _, vn := range nodes {
			if v, sub := vn.decode(ctx, raw); len(sub) == 0 {
				return v, nil
			}
		}
		return nil, noVariant(u, raw, "")
	}
	n.encode = func(ctx context.Context, v any) (any, Issues) {
		for _, vn := range nodes {
			if out, sub := vn.encode(ctx, v); len(sub) == 0 {
				return out, nil
			}
		}
		return nil, noVariant(u, v, "")
	}
	return nil
}

func (c *compiler) sum(n *node, s *SumType) error {
	if len(s.variants) == 0 {
		return configErr(s, "", ErrInvalidDesc)
	}
	names := map[string]struct{}{}
	tags := map[string]struct{}{}
	vnodes := make(map[*Variant]*node, len(s.variants))
	for _, v := range s.variants {
		if _, dup := names[v.name]; dup {
			return configErr(s, v.name, ErrDuplicateVariant)
		}
		if _, dup := tags[v.tag]; dup || v.tag == "" {
			return configErr(s, v.name, ErrDuplicateVariant)
		}
		names[v.name], tags[v.tag] = struct{}{}, struct{}{}
		vn, err := c.node(v.record)
		if err != nil {
			return err
		}
		vnodes[v] = vn
	}
	c.sums = append(c.sums, s)
	tagKey, dict := c.cfg.TagKey()

	instance := func(v *Variant, data any) *Value {
		if u, ok := v.Unit(); ok {
			return u
		}
		st, _ := data.(*Struct)
		return &Value{variant: v, data: st}
	}
	lookup := func(raw any, tag string) (*Variant, Issues) {
		v, ok := s.byTag(tag)
		if !ok {
			return nil, noVariant(s, raw, fmt.Sprintf("unknown tag %q", tag))
		}
		return v, nil
	}

	if dict {
		n.decode = func(ctx context.Context, raw any) (any, Issues) {
			m, ok := raw.(map[string]any)
			if !ok {
				return nil, wrongType(s, raw)
			}
			p := Path{KeySeg(tagKey)}
			tr, present := m[tagKey]
			if !present {
				return nil, Issues{}.Append(p, CodeMissingRequired, nil)
			}
			tag, ok := tr.(string)
			if !ok {
				return nil, Issues{}.Append(p, CodeWrongType, tr)
			}
			v, iss := lookup(raw, tag)
			if iss != nil {
				return nil, iss
			}
			payload := maps.Clone(m)
			delete(payload, tagKey)
			data, sub := vnodes[v].decode(ctx, payload)
			if len(sub) > 0 {
				return nil, sub
			}
			return instance(v, data), nil
		}
	} else {
		n.decode = func(ctx context.Context, raw any) (any, Issues) {
			items, ok := asList(raw)
			if !ok || len(items) != 2 {
				return nil, wrongType(s, raw)
			}
			tag, ok := items[0].(string)
			if !ok {
				return nil, Issues{}.Append(Path{IndexSeg(0)}, CodeWrongType, items[0])
			}
			v, iss := lookup(raw, tag)
			if iss != nil {
				return nil, iss
			}
			data, sub := vnodes[v].decode(ctx, items[1])
			if len(sub) > 0 {
				return nil, Issues{}.Extend(sub, Path{IndexSeg(1)})
			}
			return instance(v, data), nil
		}
	}
	n.encode = func(ctx context.Context, val any) (any, Issues) {
		x, ok := val.(*Value)
		if !ok || x == nil || x.variant.sum != s {
			return nil, wrongType(s, val)
		}
		payload, sub := vnodes[x.variant].encode(ctx, x.data)
		if len(sub) > 0 {
			if dict {
				return nil, sub
			}
			return nil, Issues{}.Extend(sub, Path{IndexSeg(1)})
		}
		pm, ok := payload.(map[string]any)
		if !ok {
			return nil, wrongType(x.variant.record, payload)
		}
		if dict {
			out := maps.Clone(pm)
			out[tagKey] = x.variant.tag
			return out, nil
		}
		return []any{x.variant.tag, pm}, nil
	}
	return nil
}
