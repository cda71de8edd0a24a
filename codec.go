package shapekit

import (
	"context"
	"fmt"
)

// Codec is the compiled decode/encode pair for one (Desc, Config).
// It is safe for concurrent use.
type Codec struct {
	desc  Desc
	cfg   *Config
	root  *node
	nodes map[Desc]*node
	names map[*Record][]string
}

// Apply compiles d under cfg. A nil cfg means Default(). Misconfiguration is
// returned as *ConfigError (possibly joined); it never surfaces from Decode.
// Apply does not cache; use a Cache to share compiled codecs.
func Apply(cfg *Config, d Desc) (*Codec, error) { return compile(cfg, d) }

// MustApply is Apply that panics on error.
func MustApply(cfg *Config, d Desc) *Codec {
	c, err := Apply(cfg, d)
	if err != nil {
		panic(err)
	}
	return c
}

// Desc returns the root description.
func (c *Codec) Desc() Desc { return c.desc }

// Config returns the configuration the codec was compiled with.
func (c *Codec) Config() *Config { return c.cfg }

// ExternalNames returns the wire keys of rec's fields in declaration order,
// or nil when rec is not reachable from this codec.
func (c *Codec) ExternalNames(rec *Record) []string {
	return append([]string(nil), c.names[rec]...)
}

// Decode validates raw (a JSON-like tree: nil, bool, numbers, string, []any,
// map[string]any) and converts it to the typed shape. On failure the error is
// Issues holding every failure found.
func (c *Codec) Decode(ctx context.Context, raw any) (any, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	v, iss := c.root.decode(ctx, raw)
	if len(iss) > 0 {
		return nil, iss
	}
	return v, nil
}

// Encode converts a typed value produced by Decode (or built with the same
// descriptions) back into a raw tree. Values of the wrong shape fail with Issues.
func (c *Codec) Encode(ctx context.Context, v any) (any, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	out, iss := c.root.encode(ctx, v)
	if len(iss) > 0 {
		return nil, iss
	}
	return out, nil
}

// DecodeAs decodes and asserts the result type, e.g. DecodeAs[*Struct].
func DecodeAs[T any](ctx context.Context, c *Codec, raw any) (T, error) {
	var zero T
	v, err := c.Decode(ctx, raw)
	if err != nil {
		return zero, err
	}
	if v == nil {
		return zero, nil
	}
	out, ok := v.(T)
	if !ok {
		return zero, fmt.Errorf("shapekit: decoded %T, want %T", v, zero)
	}
	return out, nil
}

// Context keys

type contextKey int

const (
	_ctxKeyFailFast contextKey = iota
)

// WithFailFast returns a child context that makes decoding stop at the first
// failing field, element or entry instead of collecting every issue.
func WithFailFast(ctx context.Context, enabled bool) context.Context {
	return context.WithValue(ctx, _ctxKeyFailFast, enabled)
}

// IsFailFast reports whether the current decode should stop on the first issue.
func IsFailFast(ctx context.Context) bool {
	v := ctx.Value(_ctxKeyFailFast)
	b, _ := v.(bool)
	return b
}
