package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	sk "github.com/reoring/shapekit"
	"github.com/reoring/shapekit/source"
)

func writeFile(t *testing.T, dir, name, body string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(p, []byte(body), 0o644))
	return p
}

func TestParseConfig(t *testing.T) {
	fc, err := parseConfig([]byte("non_strict_primitives: true\ntag_key: $type\noverrides:\n  Root:\n    first_name: first-name\n"))
	require.NoError(t, err)
	assert.True(t, fc.NonStrictPrimitives)
	assert.Equal(t, "$type", fc.TagKey)
	assert.Equal(t, "first-name", fc.Overrides["Root"]["first_name"])

	_, err = parseConfig([]byte("overrides: [1, 2"))
	assert.Error(t, err)
}

func TestFileConfigUnknownRecord(t *testing.T) {
	root := sk.NewRecord("Root", sk.FieldOf("a", sk.Int()))
	fc := &fileConfig{Overrides: map[string]map[string]string{"Other": {"a": "A"}}}
	_, err := fc.config(root)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Other")
}

func TestConfigForRoundTrip(t *testing.T) {
	root := sk.NewRecord("Root", sk.FieldOf("first_name", sk.String()), sk.FieldOf("age", sk.Int()))
	cfg := sk.New(sk.Override(root, "first_name", "first-name"), sk.SumTypeDict("$type"))

	fc := configFor(root, cfg)
	assert.Equal(t, map[string]map[string]string{"Root": {"first_name": "first-name"}}, fc.Overrides)
	assert.Equal(t, "$type", fc.TagKey)

	back, err := fc.config(root)
	require.NoError(t, err)
	ext, ok := back.OverrideFor(root, "first_name")
	require.True(t, ok)
	assert.Equal(t, "first-name", ext)
	key, ok := back.TagKey()
	require.True(t, ok)
	assert.Equal(t, "$type", key)
}

func TestCheckCmd(t *testing.T) {
	dir := t.TempDir()
	sample := writeFile(t, dir, "sample.json", `{"first-name":"Ada","age":36}`)

	t.Run("valid", func(t *testing.T) {
		in := writeFile(t, dir, "ok.yaml", "first-name: Bob\nage: 41\n")
		var out, errOut bytes.Buffer
		err := checkCmd([]string{"-sample", sample, "-in", in}, nil, &out, &errOut)
		require.NoError(t, err)
		assert.Equal(t, "ok\n", out.String())
	})

	t.Run("invalid", func(t *testing.T) {
		var out, errOut bytes.Buffer
		stdin := strings.NewReader(`{"age":"x"}`)
		err := checkCmd([]string{"-sample", sample}, stdin, &out, &errOut)
		require.ErrorIs(t, err, errInvalid)
		lines := strings.Split(strings.TrimSpace(out.String()), "\n")
		require.Len(t, lines, 2)
		assert.True(t, strings.HasPrefix(lines[0], "(1) age:"), lines[0])
		assert.True(t, strings.HasPrefix(lines[1], "(2) first-name:"), lines[1])
	})

	t.Run("nonstrict", func(t *testing.T) {
		var out, errOut bytes.Buffer
		stdin := strings.NewReader(`{"first-name":"Cy","age":"7"}`)
		err := checkCmd([]string{"-sample", sample, "-nonstrict"}, stdin, &out, &errOut)
		require.NoError(t, err)
	})

	t.Run("config", func(t *testing.T) {
		cfg := writeFile(t, dir, "cfg.yaml", "overrides:\n  Root:\n    age: years\n")
		var out, errOut bytes.Buffer
		stdin := strings.NewReader(`{"first-name":"Di","years":3}`)
		err := checkCmd([]string{"-sample", sample, "-config", cfg, "-dump"}, stdin, &out, &errOut)
		require.NoError(t, err)
		assert.Contains(t, out.String(), "Di")
	})

	t.Run("duplicate keys", func(t *testing.T) {
		var out, errOut bytes.Buffer
		stdin := strings.NewReader(`{"first-name":"A","age":1,"age":2}`)
		err := checkCmd([]string{"-sample", sample, "-dupkeys"}, stdin, &out, &errOut)
		var dup *source.DuplicateKeyError
		require.ErrorAs(t, err, &dup)
		assert.Equal(t, []string{"/age"}, dup.Keys)
	})

	t.Run("missing sample", func(t *testing.T) {
		var out, errOut bytes.Buffer
		err := checkCmd(nil, strings.NewReader("{}"), &out, &errOut)
		require.Error(t, err)
	})
}

func TestInferCmd(t *testing.T) {
	dir := t.TempDir()
	a := writeFile(t, dir, "a.json", `{"userName":"ada","tags":["x"]}`)
	b := writeFile(t, dir, "b.json", `{"userName":"bob","tags":[],"extra":true}`)

	var out, errOut bytes.Buffer
	require.NoError(t, inferCmd([]string{"-sample", a + "," + b, "-name", "user"}, &out, &errOut))
	fc, err := parseConfig(out.Bytes())
	require.NoError(t, err)
	assert.Equal(t, "userName", fc.Overrides["User"]["user_name"])
}

func TestSchemaCmd(t *testing.T) {
	dir := t.TempDir()
	sample := writeFile(t, dir, "s.json", `{"id":1,"name":"n"}`)
	var out, errOut bytes.Buffer
	require.NoError(t, schemaCmd([]string{"-sample", sample}, &out, &errOut))
	assert.Contains(t, out.String(), `"$defs"`)
	assert.Contains(t, out.String(), `"Root"`)
}
