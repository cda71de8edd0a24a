package dsl

import sk "github.com/reoring/shapekit"

func String() sk.Desc { return sk.String() }
func Int() sk.Desc    { return sk.Int() }
func Float() sk.Desc  { return sk.Float() }
func Bool() sk.Desc   { return sk.Bool() }
func Bytes() sk.Desc  { return sk.Bytes() }
func Path() sk.Desc   { return sk.FSPath() }
func Any() sk.Desc    { return sk.Any() }

// Lit accepts exactly the given raw values.
func Lit(values ...any) sk.Desc { return sk.Literal(values...) }

// Enum declares an enumeration of string values.
func Enum(name string, values ...string) *sk.EnumDesc { return sk.NewEnum(name, values...) }

// Opt maps absent or null to nil.
func Opt(inner sk.Desc) sk.Desc { return sk.Optional(inner) }

// List is an ordered sequence.
func List(elem sk.Desc) sk.Desc { return sk.ListOf(elem) }

// Set is an unordered, deduplicated sequence.
func Set(elem sk.Desc) sk.Desc { return sk.SetOf(elem) }

// Tuple is a fixed-arity sequence.
func Tuple(elems ...sk.Desc) sk.Desc { return sk.TupleOf(elems...) }

// Map maps keys of a hashable kind to values.
func Map(key, value sk.Desc) sk.Desc { return sk.MapOf(key, value) }

// OneOf is an untagged union; the first matching variant wins.
func OneOf(variants ...sk.Desc) sk.Desc { return sk.Union(variants...) }
