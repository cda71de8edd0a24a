package i18n

// Translator retrieves localized messages for Issue codes.
// data provides optional metadata to embed in the message (for example,
// "expected" or "key").
type Translator interface {
	Message(code string, data map[string]string) string
}

// dictTranslator is the built-in dictionary-based Translator.
type dictTranslator struct{ lang string }

func (t dictTranslator) Message(code string, data map[string]string) string {
	var msg string
	switch t.lang {
	case "ja":
		switch code {
		case "missing_required":
			msg = "必須フィールドがありません"
		case "wrong_type":
			msg = "型が不正です"
		case "no_variant_matched":
			msg = "一致するバリアントがありません"
		case "custom_validation_failed":
			msg = "カスタム検証に失敗しました"
		case "unknown_key":
			msg = "未知のキーです"
		}
	default: // "en"
		switch code {
		case "missing_required":
			msg = "required field missing"
		case "wrong_type":
			msg = "wrong type"
		case "no_variant_matched":
			msg = "none of the variants matches"
		case "custom_validation_failed":
			msg = "custom validation failed"
		case "unknown_key":
			msg = "unknown key"
		}
	}
	if msg == "" {
		return code
	}
	if exp := data["expected"]; exp != "" {
		if t.lang == "ja" {
			return msg + "(期待: " + exp + ")"
		}
		return msg + " (expected " + exp + ")"
	}
	return msg
}

var currentTranslator Translator = dictTranslator{lang: "en"}

// SetLanguage switches the built-in Translator language ("en"/"ja").
func SetLanguage(lang string) {
	if lang != "ja" {
		lang = "en"
	}
	currentTranslator = dictTranslator{lang: lang}
}

// SetTranslator replaces the Translator implementation (not limited to the
// dictionary version).
func SetTranslator(tr Translator) {
	if tr == nil {
		currentTranslator = dictTranslator{lang: "en"}
		return
	}
	currentTranslator = tr
}

// T fetches a message for the given code using the current Translator.
func T(code string, data map[string]string) string { return currentTranslator.Message(code, data) }
