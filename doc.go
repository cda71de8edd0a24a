// Package shapekit provides:
//
//   - Bidirectional codecs compiled from a structural type description (Desc)
//   - A stable error model via Issues (JSON Pointer path, code, message, offending sample)
//   - Per-field name overrides, per-description Extensions and behavior flags
//     combined into an immutable Config
//   - Tagged unions (sum types) with pair or tag-merged mapping encodings
//
// Design policy:
//   - Keep the public model in the root package; readers, builders and
//     reusable extensions live under source/, dsl/ and codec/.
//   - Descriptions and Configs are immutable once handed to Apply.
//   - Decode aggregates every issue along every path; misconfiguration is
//     reported by Apply as a *ConfigError, never by Decode.
//
// Typical usage:
//
//	person := shapekit.NewRecord("Person",
//		shapekit.FieldOf("first_name", shapekit.String()),
//		shapekit.FieldOf("initial", shapekit.Optional(shapekit.String())),
//		shapekit.FieldOf("last_name", shapekit.String()),
//	)
//	cfg := shapekit.New(shapekit.Override(person, "first_name", "first-name"))
//	cache := shapekit.NewCache()
//	c, err := cache.Apply(cfg, person)
//
//	v, err := c.Decode(ctx, raw) // raw from source.JSON / source.YAML
//	raw2, err := c.Encode(ctx, v)
package shapekit
