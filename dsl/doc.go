// Package dsl provides builder sugar over shapekit descriptions.
//
// Overview
//   - Primitives and containers: String()/Int()/Float()/Bool()/Bytes()/Path()/Any(),
//     List(elem)/Set(elem)/Tuple(elems...)/Map(key, value)/Opt(inner)/OneOf(variants...).
//   - Records: Record(name).Field(name, desc).As(wireKey).Default(v).Optional().Build().
//     Keys registered with As are collected into a shapekit.Option via Overrides().
//   - Sum types: Sum(name).Variant("Cash").Field("amount", Int()).Variant("Free").Build().
//   - Constructor: a Cache plus a base Config, so repeated requests for the same
//     description share one compiled Codec.
//
// Example (quickstart)
//
//	person := dsl.Record("Person").
//	    Field("first_name", dsl.String()).As("first-name").
//	    Field("initial", dsl.String()).Optional().
//	    Field("last_name", dsl.String()).
//	    MustBuild()
//
//	ctor := dsl.NewConstructor(nil)
//	codec, err := ctor.With(person.Overrides()).For(person.Record())
//	if err != nil {
//	    return err // *shapekit.ConfigError
//	}
//	v, err := codec.Decode(ctx, map[string]any{"first-name": "Hello", "last_name": "World"})
//	_ = v // *shapekit.Struct
//
// Example (sum type encoded as a mapping)
//
//	payment := dsl.Sum("Payment").
//	    Variant("Cash").Field("amount", dsl.Int()).
//	    Variant("Card").Field("number", dsl.String()).
//	    MustBuild()
//	codec, _ := ctor.With(shapekit.SumTypeDict("$type")).For(payment.Sum())
//	v, _ := codec.Decode(ctx, map[string]any{"$type": "card", "number": "1111"})
//	_ = v // *shapekit.Value, v.Is(payment.Sum()) == true
package dsl
