package shapekit

import (
	"context"
	"maps"
)

// DefaultTagKey is the mapping key that carries the variant tag when sum
// types are encoded as mappings.
const DefaultTagKey = "type"

// FieldRef names one field of one record description.
type FieldRef struct {
	Record *Record
	Field  string
}

// Extension is a custom decode/encode pair that replaces the compiled codec
// of one description. Errors that are not Issues are reported as
// custom_validation_failed with the error text as hint.
type Extension interface {
	DecodeRaw(ctx context.Context, raw any) (any, error)
	EncodeValue(ctx context.Context, v any) (any, error)
}

// ExtensionFuncs adapts a pair of functions to Extension.
type ExtensionFuncs struct {
	Decode func(ctx context.Context, raw any) (any, error)
	Encode func(ctx context.Context, v any) (any, error)
}

func (f ExtensionFuncs) DecodeRaw(ctx context.Context, raw any) (any, error) {
	return f.Decode(ctx, raw)
}

func (f ExtensionFuncs) EncodeValue(ctx context.Context, v any) (any, error) {
	return f.Encode(ctx, v)
}

type flagBit uint8

const (
	flagNonStrict flagBit = 1 << iota
	flagSumDict
	flagNameFn
)

// Config is an immutable set of field-name overrides, extensions and
// behavior flags. Build it with New, With and Merge; the zero value is not
// used directly.
type Config struct {
	overrides  map[FieldRef]string
	extensions map[Desc]Extension

	set       flagBit
	nonStrict bool
	tagKey    string
	nameFn    func(string) string
}

// Option mutates a Config under construction.
type Option func(*Config)

var defaultConfig = New()

// Default returns the shared empty configuration.
func Default() *Config { return defaultConfig }

// New builds a configuration from options.
func New(opts ...Option) *Config {
	c := &Config{
		overrides:  map[FieldRef]string{},
		extensions: map[Desc]Extension{},
	}
	for _, o := range opts {
		if o != nil {
			o(c)
		}
	}
	return c
}

// With returns a copy of c with opts applied on top.
func (c *Config) With(opts ...Option) *Config {
	cp := c.clone()
	for _, o := range opts {
		if o != nil {
			o(cp)
		}
	}
	return cp
}

// Merge combines configurations left to right. Entries and flags from later
// configurations shadow earlier ones; inputs are not modified.
func Merge(cfgs ...*Config) *Config {
	out := New()
	for _, c := range cfgs {
		if c == nil {
			continue
		}
		maps.Copy(out.overrides, c.overrides)
		maps.Copy(out.extensions, c.extensions)
		if c.set&flagNonStrict != 0 {
			out.nonStrict = c.nonStrict
		}
		if c.set&flagSumDict != 0 {
			out.tagKey = c.tagKey
		}
		if c.set&flagNameFn != 0 {
			out.nameFn = c.nameFn
		}
		out.set |= c.set
	}
	return out
}

func (c *Config) clone() *Config {
	if c == nil {
		return New()
	}
	cp := *c
	cp.overrides = maps.Clone(c.overrides)
	cp.extensions = maps.Clone(c.extensions)
	return &cp
}

// Override maps one record field to an external key.
func Override(rec *Record, field, external string) Option {
	return func(c *Config) { c.overrides[FieldRef{Record: rec, Field: field}] = external }
}

// Overrides maps several fields of one record at once.
func Overrides(rec *Record, fields map[string]string) Option {
	return func(c *Config) {
		for f, ext := range fields {
			c.overrides[FieldRef{Record: rec, Field: f}] = ext
		}
	}
}

// Extend registers a custom codec for exactly the description d.
func Extend(d Desc, ext Extension) Option {
	return func(c *Config) { c.extensions[d] = ext }
}

// NonStrictPrimitives lets int, float and bool accept parseable strings and
// lossless numeric coercion.
func NonStrictPrimitives() Option {
	return func(c *Config) {
		c.nonStrict = true
		c.set |= flagNonStrict
	}
}

// StrictPrimitives turns NonStrictPrimitives off again in a merge.
func StrictPrimitives() Option {
	return func(c *Config) {
		c.nonStrict = false
		c.set |= flagNonStrict
	}
}

// SumTypeDict encodes sum types as a single mapping with the tag stored under
// tagKey (DefaultTagKey when omitted) instead of a (tag, payload) pair.
func SumTypeDict(tagKey ...string) Option {
	key := DefaultTagKey
	if len(tagKey) > 0 && tagKey[0] != "" {
		key = tagKey[0]
	}
	return func(c *Config) {
		c.tagKey = key
		c.set |= flagSumDict
	}
}

// SumTypePair restores the default pair encoding in a merge.
func SumTypePair() Option {
	return func(c *Config) {
		c.tagKey = ""
		c.set |= flagSumDict
	}
}

// GlobalNameOverride derives external keys from field names wherever no
// per-field override exists. fn must be injective over each record's fields.
func GlobalNameOverride(fn func(string) string) Option {
	return func(c *Config) {
		c.nameFn = fn
		c.set |= flagNameFn
	}
}

// NonStrict reports whether non-strict primitive coercion is on.
func (c *Config) NonStrict() bool { return c.nonStrict }

// TagKey returns the mapping tag key, or ok=false for pair encoding.
func (c *Config) TagKey() (string, bool) { return c.tagKey, c.tagKey != "" }

// OverrideFor returns the external key registered for a field.
func (c *Config) OverrideFor(rec *Record, field string) (string, bool) {
	ext, ok := c.overrides[FieldRef{Record: rec, Field: field}]
	return ext, ok
}

// ExtensionFor returns the extension registered for d.
func (c *Config) ExtensionFor(d Desc) (Extension, bool) {
	ext, ok := c.extensions[d]
	return ext, ok
}
