package codec_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	sk "github.com/reoring/shapekit"
	"github.com/reoring/shapekit/codec"
)

func TestTimeRFC3339_RoundTrip(t *testing.T) {
	ctx := context.Background()
	ts := sk.Custom("Timestamp")
	c := sk.MustApply(sk.New(sk.Extend(ts, codec.TimeRFC3339())), ts)

	in := "2025-01-01T00:00:00Z"
	got, err := c.Decode(ctx, in)
	require.NoError(t, err)
	assert.True(t, got.(time.Time).Equal(time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)))

	out, err := c.Encode(ctx, got)
	require.NoError(t, err)
	assert.Equal(t, in, out)

	// offsets are normalized to UTC
	got, err = c.Decode(ctx, "2025-01-01T09:00:00+09:00")
	require.NoError(t, err)
	out, err = c.Encode(ctx, got)
	require.NoError(t, err)
	assert.Equal(t, in, out)

	again, err := c.Decode(ctx, out)
	require.NoError(t, err)
	assert.True(t, again.(time.Time).Equal(got.(time.Time)), "same instant")
	assert.NotEqual(t, got, again, "offset is dropped")
	assert.Equal(t, time.UTC, again.(time.Time).Location())
}

func TestTimeRFC3339_InvalidInput(t *testing.T) {
	ts := sk.Custom("Timestamp")
	rec := sk.NewRecord("Event", sk.FieldOf("at", ts))
	c := sk.MustApply(sk.New(sk.Extend(ts, codec.TimeRFC3339())), rec)

	_, err := c.Decode(context.Background(), map[string]any{"at": "yesterday"})
	iss, ok := sk.AsIssues(err)
	require.True(t, ok)
	require.Len(t, iss, 1)
	assert.Equal(t, sk.CodeCustomValidation, iss[0].Code)
	assert.Equal(t, "/at", iss[0].Path)

	_, err = c.Decode(context.Background(), map[string]any{"at": 5})
	iss, _ = sk.AsIssues(err)
	require.Len(t, iss, 1)
	assert.Equal(t, sk.CodeWrongType, iss[0].Code)
	assert.Equal(t, "/at", iss[0].Path)
}

func TestUUID_RoundTrip(t *testing.T) {
	ctx := context.Background()
	id := sk.Custom("ID")
	c := sk.MustApply(sk.New(sk.Extend(id, codec.UUID())), id)

	want := uuid.MustParse("6ba7b810-9dad-11d1-80b4-00c04fd430c8")
	got, err := c.Decode(ctx, "{6BA7B810-9DAD-11D1-80B4-00C04FD430C8}")
	require.NoError(t, err)
	assert.Equal(t, want, got)

	out, err := c.Encode(ctx, got)
	require.NoError(t, err)
	assert.Equal(t, "6ba7b810-9dad-11d1-80b4-00c04fd430c8", out)

	_, err = c.Decode(ctx, "not-a-uuid")
	require.Error(t, err)
}

func TestJSONString_DecodesEmbeddedDocument(t *testing.T) {
	ctx := context.Background()
	point := sk.NewRecord("Point", sk.FieldOf("x", sk.Int()), sk.FieldOf("y", sk.Int()))
	inner := sk.MustApply(nil, point)
	payload := sk.Custom("PointJSON")
	msg := sk.NewRecord("Message", sk.FieldOf("point", payload))
	c := sk.MustApply(sk.New(sk.Extend(payload, codec.JSONString(inner))), msg)

	v, err := c.Decode(ctx, map[string]any{"point": `{"x": 1, "y": 2}`})
	require.NoError(t, err)
	p := v.(*sk.Struct).Get("point").(*sk.Struct)
	assert.Equal(t, int64(1), p.Get("x"))

	out, err := c.Encode(ctx, v)
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"point": `{"x":1,"y":2}`}, out)

	_, err = c.Decode(ctx, map[string]any{"point": `{"x": "a", "y": 2}`})
	iss, ok := sk.AsIssues(err)
	require.True(t, ok)
	require.Len(t, iss, 1)
	assert.Equal(t, "/point/x", iss[0].Path)
}

func TestExtensions_ContributeSchema(t *testing.T) {
	ts := sk.Custom("Timestamp")
	s, err := sk.MustApply(sk.New(sk.Extend(ts, codec.TimeRFC3339())), ts).JSONSchema()
	require.NoError(t, err)
	assert.Equal(t, "date-time", s.Format)
}
