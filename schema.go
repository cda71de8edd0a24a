package shapekit

import (
	"context"
	"fmt"

	js "github.com/reoring/shapekit/jsonschema"
)

// SchemaProvider may be implemented by an Extension to describe its raw form.
type SchemaProvider interface {
	JSONSchema() *js.Schema
}

type schemaExporter struct {
	c      *Codec
	defs   map[string]*js.Schema
	named  map[*Record]string
	active map[Desc]bool
}

// define registers r under $defs once. Distinct records sharing a name get
// a numeric suffix.
func (e *schemaExporter) define(r *Record) string {
	if name, ok := e.named[r]; ok {
		return name
	}
	name := r.name
	for i := 2; ; i++ {
		if _, taken := e.defs[name]; !taken {
			break
		}
		name = fmt.Sprintf("%s%d", r.name, i)
	}
	e.named[r] = name
	e.defs[name] = &js.Schema{} // placeholder until the object is built
	e.defs[name] = e.object(r, "", "")
	return name
}

// JSONSchema projects the raw (wire) form accepted by Decode onto a JSON
// Schema document. Records are emitted under $defs and referenced by $ref.
func (c *Codec) JSONSchema() (*js.Schema, error) {
	e := &schemaExporter{c: c, defs: map[string]*js.Schema{}, named: map[*Record]string{}, active: map[Desc]bool{}}
	root := e.schema(c.desc)
	root.Schema = js.Draft
	if len(e.defs) > 0 {
		root.Defs = e.defs
	}
	return root, nil
}

func (e *schemaExporter) schema(d Desc) *js.Schema {
	if ext, ok := e.c.cfg.extensions[d]; ok {
		if sp, ok := ext.(SchemaProvider); ok {
			return sp.JSONSchema()
		}
		return &js.Schema{}
	}
	if r, ok := d.(*Ref); ok {
		if t := deref(r); t != nil {
			return e.schema(t)
		}
		return &js.Schema{}
	}
	if r, ok := d.(*Record); ok {
		return &js.Schema{Ref: js.DefRef(e.define(r))}
	}
	if e.active[d] {
		// cycle through a non-record node
		return &js.Schema{}
	}
	e.active[d] = true
	defer delete(e.active, d)

	switch t := d.(type) {
	case *Primitive:
		switch t.kind {
		case KindBool:
			return &js.Schema{Type: "boolean"}
		case KindInt:
			return &js.Schema{Type: "integer"}
		case KindFloat:
			return &js.Schema{Type: "number"}
		case KindString:
			return &js.Schema{Type: "string"}
		case KindBytes:
			return &js.Schema{Type: "string", ContentEncoding: "base64"}
		case KindPath:
			return &js.Schema{Type: "string", Format: "path"}
		}
		return &js.Schema{}
	case *LiteralDesc:
		if len(t.values) == 1 {
			return &js.Schema{Const: t.values[0]}
		}
		return &js.Schema{Enum: t.Values()}
	case *EnumDesc:
		vals := make([]any, len(t.members))
		for i, m := range t.members {
			vals[i] = m.Value
		}
		return &js.Schema{Type: "string", Title: t.name, Enum: vals}
	case *OptionalDesc:
		return js.Nullable(e.schema(t.Inner))
	case *SequenceDesc:
		return &js.Schema{Type: "array", Items: e.schema(t.Elem), UniqueItems: !t.Ordered}
	case *TupleDesc:
		s := &js.Schema{Type: "array", MinItems: js.IntPtr(len(t.Elems)), MaxItems: js.IntPtr(len(t.Elems))}
		for _, el := range t.Elems {
			s.PrefixItems = append(s.PrefixItems, e.schema(el))
		}
		return s
	case *MappingDesc:
		return &js.Schema{Type: "object", AdditionalProperties: e.schema(t.Value)}
	case *UnionDesc:
		s := &js.Schema{}
		for _, v := range t.Variants {
			s.AnyOf = append(s.AnyOf, e.schema(v))
		}
		return s
	case *SumType:
		return e.sum(t)
	}
	return &js.Schema{}
}

func (e *schemaExporter) object(r *Record, tagKey, tag string) *js.Schema {
	s := &js.Schema{Type: "object", Title: r.name, Properties: map[string]*js.Schema{}}
	if tagKey != "" {
		s.Properties[tagKey] = &js.Schema{Const: tag}
		s.Required = append(s.Required, tagKey)
	}
	names := e.c.names[r]
	for i, f := range r.fields {
		ext := f.Name
		if i < len(names) {
			ext = names[i]
		}
		ps := e.schema(f.Type)
		if f.HasDefault {
			if n, ok := e.c.nodes[f.Type]; ok {
				if def, iss := n.encode(context.Background(), f.Default); len(iss) == 0 && def != nil {
					cp := *ps
					cp.Default = def
					ps = &cp
				}
			}
		} else if !isOptional(f.Type) {
			s.Required = append(s.Required, ext)
		}
		s.Properties[ext] = ps
	}
	if r.unknown == UnknownForbid {
		s.AdditionalProperties = false
	}
	return s
}

func (e *schemaExporter) sum(t *SumType) *js.Schema {
	s := &js.Schema{Title: t.name}
	tagKey, dict := e.c.cfg.TagKey()
	for _, v := range t.variants {
		if dict {
			s.OneOf = append(s.OneOf, e.object(v.record, tagKey, v.tag))
			continue
		}
		s.OneOf = append(s.OneOf, &js.Schema{
			Type:        "array",
			PrefixItems: []*js.Schema{{Const: v.tag}, e.schema(v.record)},
			MinItems:    js.IntPtr(2),
			MaxItems:    js.IntPtr(2),
		})
	}
	return s
}
