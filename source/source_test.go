package source_test

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reoring/shapekit/source"
)

func TestJSON_KeepsNumbersDistinct(t *testing.T) {
	v, err := source.JSON([]byte(`{"i": 42, "f": 1.5, "s": "x", "l": [true, null]}`))
	require.NoError(t, err)
	m, ok := v.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, json.Number("42"), m["i"])
	assert.Equal(t, json.Number("1.5"), m["f"])
	assert.Equal(t, "x", m["s"])
	assert.Equal(t, []any{true, nil}, m["l"])
}

func TestJSON_RejectsTrailingData(t *testing.T) {
	_, err := source.JSON([]byte(`{} {}`))
	require.ErrorIs(t, err, source.ErrTrailingData)

	_, err = source.JSONReader(strings.NewReader(`{"a":`))
	require.Error(t, err)
}

func TestYAML_NormalizesToJSONModel(t *testing.T) {
	v, err := source.YAML([]byte("name: x\ncount: 3\nratio: 0.5\nnested:\n  1: one\nitems:\n  - a\n  - b\n"))
	require.NoError(t, err)
	assert.Equal(t, map[string]any{
		"name":   "x",
		"count":  3,
		"ratio":  0.5,
		"nested": map[string]any{"1": "one"},
		"items":  []any{"a", "b"},
	}, v)

	empty, err := source.YAML(nil)
	require.NoError(t, err)
	assert.Nil(t, empty)
}

func TestMarshal_SortsKeys(t *testing.T) {
	b, err := source.Marshal(map[string]any{"b": 1, "a": []any{json.Number("2")}})
	require.NoError(t, err)
	assert.Equal(t, `{"a":[2],"b":1}`, string(b))
}

func TestDuplicateKeys(t *testing.T) {
	dups, err := source.DuplicateKeys([]byte(`{"a":1,"b":{"x":[1,{"k":1,"k":2}],"x":0},"a~/":1,"a":3}`))
	require.NoError(t, err)
	assert.Equal(t, []string{"/b/x/1/k", "/b/x", "/a"}, dups)

	dups, err = source.DuplicateKeys([]byte(`[{"a":1},{"a":2}]`))
	require.NoError(t, err)
	assert.Empty(t, dups)

	_, err = source.DuplicateKeys([]byte(`{"a":`))
	assert.Error(t, err)
}

func TestJSONNoDuplicates(t *testing.T) {
	_, err := source.JSONNoDuplicates([]byte(`{"a":1,"a":2}`))
	var dup *source.DuplicateKeyError
	require.ErrorAs(t, err, &dup)
	assert.Equal(t, []string{"/a"}, dup.Keys)

	v, err := source.JSONNoDuplicates([]byte(`{"a":1}`))
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"a": json.Number("1")}, v)
}
