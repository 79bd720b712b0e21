// Package contact extracts phone numbers and e-mail addresses from chat text.
package contact

import "strings"

// Kind tags the state of a contact value.
type Kind uint8

const (
	// KindUnset means nothing was provided.
	KindUnset Kind = iota
	// KindRecognized means a well-formed value was parsed.
	KindRecognized
	// KindMentioned means the visitor referred to the contact but it could not be parsed.
	KindMentioned
)

func (k Kind) String() string {
	switch k {
	case KindRecognized:
		return "recognized"
	case KindMentioned:
		return "mentioned"
	default:
		return "unset"
	}
}

// Value is a tagged contact: Unset, Recognized(text) or Mentioned.
// The zero value is Unset.
type Value struct {
	kind Kind
	text string
}

// Recognized returns a value holding a parsed contact. Blank input yields Unset.
func Recognized(text string) Value {
	text = strings.TrimSpace(text)
	if text == "" {
		return Value{}
	}
	return Value{kind: KindRecognized, text: text}
}

// Mentioned returns a value for a contact that was referred to but not parseable.
func Mentioned() Value {
	return Value{kind: KindMentioned}
}

// Kind reports the tag.
func (v Value) Kind() Kind { return v.kind }

// IsSet reports whether the contact counts as provided.
func (v Value) IsSet() bool { return v.kind != KindUnset }

// IsRecognized reports whether a machine-usable value is present.
func (v Value) IsRecognized() bool { return v.kind == KindRecognized }

// Text returns the parsed value, empty unless Recognized.
func (v Value) Text() string { return v.text }

// Merge applies the monotonic rule: once set, a value never changes.
func (v Value) Merge(next Value) Value {
	if v.IsSet() {
		return v
	}
	return next
}

func (v Value) String() string {
	switch v.kind {
	case KindRecognized:
		return v.text
	case KindMentioned:
		return "<mentioned>"
	default:
		return "<unset>"
	}
}

// Contacts groups the two contact channels tracked per lead.
type Contacts struct {
	Phone Value
	Email Value
}

// Merge folds newly extracted contacts into c without overwriting set values.
func (c Contacts) Merge(next Contacts) Contacts {
	return Contacts{
		Phone: c.Phone.Merge(next.Phone),
		Email: c.Email.Merge(next.Email),
	}
}

// Complete reports whether both channels are present.
func (c Contacts) Complete() bool {
	return c.Phone.IsSet() && c.Email.IsSet()
}

// Any reports whether at least one channel is present.
func (c Contacts) Any() bool {
	return c.Phone.IsSet() || c.Email.IsSet()
}
