package dsl

import (
	"context"

	sk "github.com/reoring/shapekit"
)

// Constructor pairs a configuration with a cache. Codecs requested through
// the same Constructor for the same description are compiled once.
type Constructor struct {
	cache *sk.Cache
	cfg   *sk.Config
}

// NewConstructor returns a Constructor over cache (a fresh cache when nil)
// configured with opts.
func NewConstructor(cache *sk.Cache, opts ...sk.Option) *Constructor {
	if cache == nil {
		cache = sk.NewCache()
	}
	return &Constructor{cache: cache, cfg: sk.New(opts...)}
}

// With returns a Constructor sharing the cache whose configuration is this
// one's with opts applied on top.
func (c *Constructor) With(opts ...sk.Option) *Constructor {
	return &Constructor{cache: c.cache, cfg: c.cfg.With(opts...)}
}

// Merge returns a Constructor whose configuration is Merge(this, others...).
func (c *Constructor) Merge(others ...*sk.Config) *Constructor {
	return &Constructor{cache: c.cache, cfg: sk.Merge(append([]*sk.Config{c.cfg}, others...)...)}
}

// Config returns the active configuration.
func (c *Constructor) Config() *sk.Config { return c.cfg }

// For returns the compiled codec for d.
func (c *Constructor) For(d sk.Desc) (*sk.Codec, error) { return c.cache.Apply(c.cfg, d) }

// MustFor is For that panics on error.
func (c *Constructor) MustFor(d sk.Desc) *sk.Codec {
	codec, err := c.For(d)
	if err != nil {
		panic(err)
	}
	return codec
}

// Typed projects a codec's typed values onto T. from and to convert between
// the decoded value and T; nil from/to fall back to a type assertion.
type Typed[T any] struct {
	codec *sk.Codec
	from  func(any) (T, error)
	to    func(T) (any, error)
}

// Bind wraps codec with conversions to and from T.
func Bind[T any](codec *sk.Codec, from func(any) (T, error), to func(T) (any, error)) Typed[T] {
	return Typed[T]{codec: codec, from: from, to: to}
}

// Decode decodes raw and converts the result to T.
func (t Typed[T]) Decode(ctx context.Context, raw any) (T, error) {
	if t.from == nil {
		return sk.DecodeAs[T](ctx, t.codec, raw)
	}
	v, err := t.codec.Decode(ctx, raw)
	if err != nil {
		var zero T
		return zero, err
	}
	return t.from(v)
}

// Encode converts v back to the codec's typed value and encodes it.
func (t Typed[T]) Encode(ctx context.Context, v T) (any, error) {
	var typed any = v
	if t.to != nil {
		var err error
		if typed, err = t.to(v); err != nil {
			return nil, err
		}
	}
	return t.codec.Encode(ctx, typed)
}
