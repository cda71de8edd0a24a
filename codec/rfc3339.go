package codec

import (
	"context"
	"fmt"
	"time"

	sk "github.com/reoring/shapekit"
	js "github.com/reoring/shapekit/jsonschema"
)

// TimeRFC3339 returns an Extension that converts between RFC3339 strings and
// time.Time. Encoding is canonical: UTC, trailing zero fractions trimmed.
// The offset of a decoded value is not kept, so a round trip yields the same
// instant (time.Time.Equal) but not an identical value (== or DeepEqual)
// unless the input was already in UTC.
func TimeRFC3339() sk.Extension { return rfc3339Ext{} }

type rfc3339Ext struct{}

func (rfc3339Ext) DecodeRaw(_ context.Context, raw any) (any, error) {
	s, ok := raw.(string)
	if !ok {
		return nil, sk.NewIssues().Append(nil, sk.CodeWrongType, raw)
	}
	t, err := parseRFC3339(s)
	if err != nil {
		return nil, fmt.Errorf("invalid RFC3339 time: %w", err)
	}
	return t, nil
}

func (rfc3339Ext) EncodeValue(_ context.Context, v any) (any, error) {
	t, ok := v.(time.Time)
	if !ok {
		return nil, sk.NewIssues().Append(nil, sk.CodeWrongType, v)
	}
	return formatRFC3339Canonical(t), nil
}

func (rfc3339Ext) JSONSchema() *js.Schema { return &js.Schema{Type: "string", Format: "date-time"} }

func parseRFC3339(s string) (time.Time, error) {
	// Accept RFC3339Nano (trailing zeros optional)
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		if t2, err2 := time.Parse(time.RFC3339, s); err2 == nil {
			return t2, nil
		}
		return time.Time{}, err
	}
	return t, nil
}

func formatRFC3339Canonical(t time.Time) string {
	// Normalize to UTC and format using RFC3339Nano (Go trims trailing zeros)
	return t.UTC().Format(time.RFC3339Nano)
}
