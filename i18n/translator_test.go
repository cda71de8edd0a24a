package i18n

import "testing"

func TestTranslator_DefaultAndJapanese(t *testing.T) {
	// default is en
	if msg := T("wrong_type", nil); msg != "wrong type" {
		t.Fatalf("expected english message, got %q", msg)
	}
	if msg := T("wrong_type", map[string]string{"expected": "int"}); msg != "wrong type (expected int)" {
		t.Fatalf("expected message with expected kind, got %q", msg)
	}

	SetLanguage("ja")
	if msg := T("missing_required", nil); msg == "required field missing" || msg == "missing_required" {
		t.Fatalf("expected japanese message, got %q", msg)
	}

	// reset to en
	SetLanguage("en")
}

func TestTranslator_UnknownCodeFallsBack(t *testing.T) {
	if msg := T("no_such_code", nil); msg != "no_such_code" {
		t.Fatalf("expected code fallback, got %q", msg)
	}
}

type upper struct{}

func (upper) Message(code string, _ map[string]string) string { return "X:" + code }

func TestSetTranslator(t *testing.T) {
	SetTranslator(upper{})
	defer SetTranslator(nil)
	if msg := T("unknown_key", nil); msg != "X:unknown_key" {
		t.Fatalf("custom translator not used: %q", msg)
	}
}
