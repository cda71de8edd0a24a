package shapekit

import (
	"errors"
	"fmt"
	"strings"

	"github.com/reoring/shapekit/i18n"
)

// Issue codes (exported consts for IDE completion and type safety by convention)
const (
	CodeMissingRequired  = "missing_required"
	CodeWrongType        = "wrong_type"
	CodeNoVariantMatched = "no_variant_matched"
	CodeCustomValidation = "custom_validation_failed"
	// Only produced by records that forbid unknown keys (sum-type payloads).
	CodeUnknownKey = "unknown_key"
)

// Issue represents a single validation failure.
type Issue struct {
	Path     string // JSON Pointer (for example: /items/2/price).
	Segments Path   // Structured form of Path.
	Code     string // One of the codes listed above.
	Message  string
	Hint     string // Optional: remediation hints or custom validation detail.
	Cause    error  // Optional: underlying error.
	// Sample is a snapshot of the offending raw value (nil when the value was absent).
	Sample any
	// Params carries structured parameters for i18n and observability.
	Params map[string]any
}

// Issues is the ordered, non-deduplicated collection of failures from one
// decode or encode call. It implements error.
type Issues []Issue

// NewIssues returns an empty collection.
func NewIssues() Issues { return Issues{} }

// Error summarizes the first few issues.
func (iss Issues) Error() string {
	if len(iss) == 0 {
		return ""
	}
	const maxShown = 3
	b := &strings.Builder{}
	n := len(iss)
	lim := n
	if lim > maxShown {
		lim = maxShown
	}
	for i := 0; i < lim; i++ {
		if i > 0 {
			b.WriteString("; ")
		}
		it := iss[i]
		// e.g. wrong_type at /path
		fmt.Fprintf(b, "%s at %s", it.Code, it.Path)
	}
	if n > lim {
		fmt.Fprintf(b, "; ... (total %d)", n)
	}
	return b.String()
}

// Empty reports whether the collection holds no issues.
func (iss Issues) Empty() bool { return len(iss) == 0 }

// Append records a failure at path p with the given code and sample.
func (iss Issues) Append(p Path, code string, sample any) Issues {
	return append(iss, newIssue(p, code, sample, ""))
}

// AppendDetail is Append with a hint, used for CustomValidationFailed(detail).
func (iss Issues) AppendDetail(p Path, code, detail string, sample any) Issues {
	return append(iss, newIssue(p, code, sample, detail))
}

// Extend re-roots every issue of other under prefix and appends it.
func (iss Issues) Extend(other Issues, prefix Path) Issues {
	for _, it := range other {
		it.Segments = prefix.Join(it.Segments)
		it.Path = it.Segments.Pointer()
		iss = append(iss, it)
	}
	return iss
}

// Lines renders one numbered line per issue: "(n) path: message".
func (iss Issues) Lines() []string {
	out := make([]string, 0, len(iss))
	for i, it := range iss {
		msg := it.Message
		if it.Hint != "" {
			msg += " (" + it.Hint + ")"
		}
		out = append(out, fmt.Sprintf("(%d) %s: %s", i+1, it.Segments.Dotted(), msg))
	}
	return out
}

// AppendIssues appends issues to the destination, initializing the slice when
// needed.
func AppendIssues(dst Issues, more ...Issue) Issues {
	if dst == nil {
		dst = Issues{}
	}
	dst = append(dst, more...)
	return dst
}

// AsIssues extracts Issues from an error using errors.As internally.
func AsIssues(err error) (Issues, bool) {
	if err == nil {
		return nil, false
	}
	var iss Issues
	if errors.As(err, &iss) {
		return iss, true
	}
	return nil, false
}

func newIssue(p Path, code string, sample any, hint string) Issue {
	return Issue{
		Path:     p.Pointer(),
		Segments: p,
		Code:     code,
		Message:  i18n.T(code, nil),
		Hint:     hint,
		Sample:   sample,
	}
}

// issuesFromErr converts an extension error into Issues, wrapping anything
// that is not already Issues as CustomValidationFailed.
func issuesFromErr(err error, sample any) Issues {
	if err == nil {
		return nil
	}
	if i2, ok := AsIssues(err); ok {
		return i2
	}
	it := newIssue(nil, CodeCustomValidation, sample, err.Error())
	it.Cause = err
	return Issues{it}
}

// Configuration errors surfaced by Apply.
var (
	ErrUnresolvedRef      = errors.New("shapekit: unresolved reference")
	ErrUnnormalizableName = errors.New("shapekit: field name needs an explicit override")
	ErrDuplicateField     = errors.New("shapekit: duplicate field")
	ErrDuplicateVariant   = errors.New("shapekit: duplicate variant")
	ErrUnusedOverride     = errors.New("shapekit: override targets a field that is never reached")
	ErrUnusedExtension    = errors.New("shapekit: extension targets a description that is never reached")
	ErrMissingExtension   = errors.New("shapekit: custom description has no extension")
	ErrTagKeyCollision    = errors.New("shapekit: sum type tag key collides with a variant field")
	ErrUnhashableKey      = errors.New("shapekit: mapping key kind is not hashable")
	ErrInvalidDesc        = errors.New("shapekit: invalid description")
)

// ConfigError reports a misconfiguration found while compiling a description.
type ConfigError struct {
	Desc  string // description the problem was found at
	Field string // optional field or variant name
	Err   error
}

func (e *ConfigError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("%v: %s.%s", e.Err, e.Desc, e.Field)
	}
	return fmt.Sprintf("%v: %s", e.Err, e.Desc)
}

func (e *ConfigError) Unwrap() error { return e.Err }

func configErr(d Desc, field string, err error) *ConfigError {
	name := "<nil>"
	if d != nil {
		name = d.String()
	}
	return &ConfigError{Desc: name, Field: field, Err: err}
}
