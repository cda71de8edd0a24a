package codec

import (
	"context"
	"fmt"

	sk "github.com/reoring/shapekit"
	js "github.com/reoring/shapekit/jsonschema"
	"github.com/reoring/shapekit/source"
)

// JSONString returns an Extension for strings that carry a JSON document.
// The document is decoded by inner; issues from inner keep their paths
// relative to the embedded document.
func JSONString(inner *sk.Codec) sk.Extension { return jsonStringExt{inner: inner} }

type jsonStringExt struct{ inner *sk.Codec }

func (e jsonStringExt) DecodeRaw(ctx context.Context, raw any) (any, error) {
	s, ok := raw.(string)
	if !ok {
		return nil, sk.NewIssues().Append(nil, sk.CodeWrongType, raw)
	}
	tree, err := source.JSON([]byte(s))
	if err != nil {
		return nil, fmt.Errorf("invalid JSON string: %w", err)
	}
	return e.inner.Decode(ctx, tree)
}

func (e jsonStringExt) EncodeValue(ctx context.Context, v any) (any, error) {
	tree, err := e.inner.Encode(ctx, v)
	if err != nil {
		return nil, err
	}
	b, err := source.Marshal(tree)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func (jsonStringExt) JSONSchema() *js.Schema {
	return &js.Schema{Type: "string", Format: "json"}
}
