package source

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// DuplicateKeyError lists the objects that repeat a key. Decoding into a map
// silently keeps the last occurrence, so callers that care run the scan first.
type DuplicateKeyError struct {
	Keys []string // JSON pointers of the repeated keys
}

func (e *DuplicateKeyError) Error() string {
	if len(e.Keys) == 1 {
		return fmt.Sprintf("source: duplicate key %s", e.Keys[0])
	}
	return fmt.Sprintf("source: %d duplicate keys (first %s)", len(e.Keys), e.Keys[0])
}

type frameKind int

const (
	frameObject frameKind = iota
	frameArray
)

type frame struct {
	kind         frameKind
	path         string
	keys         map[string]struct{}
	expectingKey bool
	key          string
	index        int
}

// child returns the pointer of the value about to be read in f.
func (f *frame) child() string {
	if f.kind == frameObject {
		return f.path + "/" + escapePointer(f.key)
	}
	return f.path + "/" + strconv.Itoa(f.index)
}

// after marks the end of one value inside f.
func (f *frame) after() {
	if f.kind == frameObject {
		f.expectingKey = true
	} else {
		f.index++
	}
}

// DuplicateKeys scans one JSON document and returns the pointers of every
// key repeated within the same object, in document order.
func DuplicateKeys(b []byte) ([]string, error) {
	dec := json.NewDecoder(bytes.NewReader(b))
	dec.UseNumber()
	var (
		dups  []string
		stack []*frame
	)
	top := func() *frame {
		if len(stack) == 0 {
			return nil
		}
		return stack[len(stack)-1]
	}
	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			if len(stack) > 0 {
				return dups, fmt.Errorf("source: json: %w", io.ErrUnexpectedEOF)
			}
			return dups, nil
		}
		if err != nil {
			return dups, fmt.Errorf("source: json: %w", err)
		}
		if d, ok := tok.(json.Delim); ok {
			switch d {
			case '{', '[':
				path := ""
				if t := top(); t != nil {
					path = t.child()
				}
				f := &frame{kind: frameArray, path: path}
				if d == '{' {
					f.kind, f.keys, f.expectingKey = frameObject, map[string]struct{}{}, true
				}
				stack = append(stack, f)
			case '}', ']':
				stack = stack[:len(stack)-1]
				if t := top(); t != nil {
					t.after()
				}
			}
			continue
		}
		t := top()
		if t == nil {
			continue
		}
		if s, ok := tok.(string); ok && t.kind == frameObject && t.expectingKey {
			t.key, t.expectingKey = s, false
			if _, seen := t.keys[s]; seen {
				dups = append(dups, t.child())
			}
			t.keys[s] = struct{}{}
			continue
		}
		t.after()
	}
}

// JSONNoDuplicates is JSON but fails with a *DuplicateKeyError when an object
// repeats a key.
func JSONNoDuplicates(b []byte) (any, error) {
	dups, err := DuplicateKeys(b)
	if err != nil {
		return nil, err
	}
	if len(dups) > 0 {
		return nil, &DuplicateKeyError{Keys: dups}
	}
	return JSON(b)
}

func escapePointer(s string) string {
	return strings.ReplaceAll(strings.ReplaceAll(s, "~", "~0"), "/", "~1")
}
