package shapekit

import (
	"encoding/base64"
	"math"
	"math/big"
	"reflect"
	"strconv"
	"strings"

	gojson "github.com/goccy/go-json"
)

// Leaf coercions. Each decoder reports ok=false for a WrongType failure.
// Non-strict mode widens int, float and bool to parseable strings and
// lossless cross-numeric coercion; strings are strict in both modes.

func decodeBool(raw any, nonStrict bool) (any, bool) {
	switch v := raw.(type) {
	case bool:
		return v, true
	case string:
		if nonStrict {
			if b, err := strconv.ParseBool(v); err == nil {
				return b, true
			}
		}
		return nil, false
	}
	if nonStrict {
		if n, ok := exactInt(raw); ok && (n == 0 || n == 1) {
			return n == 1, true
		}
	}
	return nil, false
}

func decodeInt(raw any, nonStrict bool) (any, bool) {
	if n, ok := exactInt(raw); ok {
		return n, true
	}
	if !nonStrict {
		return nil, false
	}
	switch v := raw.(type) {
	case string:
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			return n, true
		}
		return integralDecimal(v)
	case gojson.Number:
		return integralDecimal(v.String())
	case float64:
		return integralFloat(v)
	case float32:
		return integralFloat(float64(v))
	}
	return nil, false
}

func decodeFloat(raw any, nonStrict bool) (any, bool) {
	switch v := raw.(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case gojson.Number:
		if f, err := v.Float64(); err == nil {
			return f, true
		}
		return nil, false
	case string:
		if nonStrict {
			if f, err := strconv.ParseFloat(v, 64); err == nil {
				return f, true
			}
		}
		return nil, false
	}
	if n, ok := exactInt(raw); ok {
		return float64(n), true
	}
	return nil, false
}

func decodeString(raw any) (any, bool) {
	s, ok := raw.(string)
	if !ok {
		return nil, false
	}
	return s, true
}

// decodeBytes accepts []byte as is and base64 text. Non-strict mode also
// takes any other string as its UTF-8 bytes.
func decodeBytes(raw any, nonStrict bool) (any, bool) {
	switch v := raw.(type) {
	case []byte:
		return append([]byte(nil), v...), true
	case string:
		if b, err := base64.StdEncoding.DecodeString(v); err == nil {
			return b, true
		}
		if nonStrict {
			return []byte(v), true
		}
	}
	return nil, false
}

func decodePath(raw any) (any, bool) {
	switch v := raw.(type) {
	case string:
		return FilePath(v), true
	case FilePath:
		return v, true
	}
	return nil, false
}

func encodeBool(v any) (any, bool) {
	b, ok := v.(bool)
	return b, ok
}

func encodeInt(v any) (any, bool) {
	if _, isNum := v.(gojson.Number); isNum {
		return nil, false
	}
	return exactInt(v)
}

func encodeFloat(v any) (any, bool) {
	switch f := v.(type) {
	case float64:
		return f, true
	case float32:
		return float64(f), true
	}
	if _, isNum := v.(gojson.Number); isNum {
		return nil, false
	}
	if n, ok := exactInt(v); ok {
		return float64(n), true
	}
	return nil, false
}

func encodeString(v any) (any, bool) {
	s, ok := v.(string)
	return s, ok
}

func encodeBytes(v any) (any, bool) {
	b, ok := v.([]byte)
	if !ok {
		return nil, false
	}
	return base64.StdEncoding.EncodeToString(b), true
}

func encodePath(v any) (any, bool) {
	p, ok := v.(FilePath)
	if !ok {
		return nil, false
	}
	return string(p), true
}

// exactInt converts Go integer kinds and integer-syntax JSON numbers to int64.
func exactInt(raw any) (int64, bool) {
	switch v := raw.(type) {
	case int:
		return int64(v), true
	case int64:
		return v, true
	case int32:
		return int64(v), true
	case int16:
		return int64(v), true
	case int8:
		return int64(v), true
	case uint:
		return uintToInt(uint64(v))
	case uint64:
		return uintToInt(v)
	case uint32:
		return int64(v), true
	case uint16:
		return int64(v), true
	case uint8:
		return int64(v), true
	case gojson.Number:
		n, err := strconv.ParseInt(v.String(), 10, 64)
		return n, err == nil
	}
	return 0, false
}

func uintToInt(u uint64) (int64, bool) {
	if u > math.MaxInt64 {
		return 0, false
	}
	return int64(u), true
}

// maxExactFloat is the largest magnitude up to which every integer has an
// exact float64 representation.
const maxExactFloat = 1 << 53

// integralFloat accepts floats that name exactly one integer.
func integralFloat(f float64) (any, bool) {
	if math.IsNaN(f) || math.IsInf(f, 0) || f != math.Trunc(f) {
		return nil, false
	}
	if math.Abs(f) > maxExactFloat {
		return nil, false
	}
	return int64(f), true
}

// integralDecimal parses decimal text such as "42.0" or "1e3" exactly and
// accepts it only when it is an integer that fits in int64.
func integralDecimal(s string) (any, bool) {
	if s == "" || strings.ContainsAny(s, "/_xXoObB") {
		return nil, false
	}
	// Range check on the approximate value first keeps huge exponents away
	// from big.Rat.
	if f, err := strconv.ParseFloat(s, 64); err != nil || math.Abs(f) > math.MaxInt64 {
		return nil, false
	}
	r, ok := new(big.Rat).SetString(s)
	if !ok || !r.IsInt() || !r.Num().IsInt64() {
		return nil, false
	}
	return r.Num().Int64(), true
}

// normalizeScalar maps numeric kinds to int64/float64 so literal values
// compare by value. Other values pass through.
func normalizeScalar(v any) any {
	if n, ok := exactInt(v); ok {
		return n
	}
	switch t := v.(type) {
	case float32:
		return float64(t)
	case gojson.Number:
		if f, err := t.Float64(); err == nil {
			return f
		}
	}
	return v
}

func literalMatch(values []any, raw any) (any, bool) {
	n := normalizeScalar(raw)
	if n != nil && !reflect.TypeOf(n).Comparable() {
		return nil, false
	}
	for _, v := range values {
		if v == n {
			return v, true
		}
	}
	return nil, false
}
