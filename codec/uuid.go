package codec

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	sk "github.com/reoring/shapekit"
	js "github.com/reoring/shapekit/jsonschema"
)

// UUID returns an Extension between UUID text and uuid.UUID. Any form
// uuid.Parse accepts is decoded; encoding always yields the lowercase
// hyphenated form.
func UUID() sk.Extension { return uuidExt{} }

type uuidExt struct{}

func (uuidExt) DecodeRaw(_ context.Context, raw any) (any, error) {
	s, ok := raw.(string)
	if !ok {
		return nil, sk.NewIssues().Append(nil, sk.CodeWrongType, raw)
	}
	id, err := uuid.Parse(s)
	if err != nil {
		return nil, fmt.Errorf("invalid UUID: %w", err)
	}
	return id, nil
}

func (uuidExt) EncodeValue(_ context.Context, v any) (any, error) {
	id, ok := v.(uuid.UUID)
	if !ok {
		return nil, sk.NewIssues().Append(nil, sk.CodeWrongType, v)
	}
	return id.String(), nil
}

func (uuidExt) JSONSchema() *js.Schema { return &js.Schema{Type: "string", Format: "uuid"} }
