package recommend

import (
	"bytes"
	"sort"
	"strconv"
	"strings"

	json "github.com/goccy/go-json"
)

// TagKind identifies how a facet field was encoded at the source.
type TagKind int

const (
	TagAbsent TagKind = iota
	// TagText is a single string: either a JSON array literal or comma separated tokens.
	TagText
	// TagArray is a sequence of values, each stringified into a token.
	TagArray
	// TagPresence is a key/value mapping whose keys are the tokens.
	TagPresence
	// TagScalar is any other single value (number, bool).
	TagScalar
)

func (k TagKind) String() string {
	switch k {
	case TagAbsent:
		return "absent"
	case TagText:
		return "text"
	case TagArray:
		return "array"
	case TagPresence:
		return "presence"
	case TagScalar:
		return "scalar"
	default:
		return "unknown"
	}
}

// TagValue is a facet field as it was stored. The zero value is absent.
type TagValue struct {
	kind   TagKind
	text   string
	tokens []string
}

func Absent() TagValue { return TagValue{} }

func Text(s string) TagValue { return TagValue{kind: TagText, text: s} }

func Array(items ...string) TagValue {
	return TagValue{kind: TagArray, tokens: append([]string(nil), items...)}
}

// Presence builds a presence map from its keys. Keys are kept in the given order.
func Presence(keys ...string) TagValue {
	return TagValue{kind: TagPresence, tokens: append([]string(nil), keys...)}
}

func Scalar(s string) TagValue { return TagValue{kind: TagScalar, text: s} }

func (v TagValue) Kind() TagKind { return v.kind }

func (v TagValue) IsAbsent() bool { return v.kind == TagAbsent }

// FromJSON decodes a raw JSON document (typically a jsonb column) into a
// TagValue. Malformed input yields an absent value, never an error.
// Object keys are sorted so the result does not depend on map iteration.
func FromJSON(raw []byte) TagValue {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return Absent()
	}

	switch raw[0] {
	case '"':
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return Absent()
		}
		return Text(s)
	case '[':
		var items []json.RawMessage
		if err := json.Unmarshal(raw, &items); err != nil {
			return Absent()
		}
		return TagValue{kind: TagArray, tokens: stringifyAll(items)}
	case '{':
		var m map[string]json.RawMessage
		if err := json.Unmarshal(raw, &m); err != nil {
			return Absent()
		}
		keys := make([]string, 0, len(m))
		for k := range m {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		return TagValue{kind: TagPresence, tokens: keys}
	default:
		return Scalar(stringify(raw))
	}
}

// UnmarshalJSON lets TagValue be used directly in request bodies.
func (v *TagValue) UnmarshalJSON(b []byte) error {
	*v = FromJSON(b)
	return nil
}

// MarshalJSON writes the value back in its original shape.
func (v TagValue) MarshalJSON() ([]byte, error) {
	switch v.kind {
	case TagText, TagScalar:
		return json.Marshal(v.text)
	case TagArray:
		if v.tokens == nil {
			return []byte("[]"), nil
		}
		return json.Marshal(v.tokens)
	case TagPresence:
		m := make(map[string]bool, len(v.tokens))
		for _, k := range v.tokens {
			m[k] = true
		}
		return json.Marshal(m)
	default:
		return []byte("null"), nil
	}
}

// ToTagSet resolves any TagValue into its canonical set of trimmed,
// non-empty tokens. It never fails; unusable input becomes the empty set.
func ToTagSet(v TagValue) TagSet {
	switch v.kind {
	case TagText:
		return NewTagSet(splitText(v.text)...)
	case TagArray, TagPresence:
		return NewTagSet(v.tokens...)
	case TagScalar:
		return NewTagSet(v.text)
	default:
		return TagSet{}
	}
}

// splitText parses s as a JSON array literal and falls back to comma splitting.
func splitText(s string) []string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	if s[0] == '[' {
		var items []json.RawMessage
		if err := json.Unmarshal([]byte(s), &items); err == nil {
			return stringifyAll(items)
		}
	}
	return strings.Split(s, ",")
}

func stringifyAll(items []json.RawMessage) []string {
	out := make([]string, 0, len(items))
	for _, it := range items {
		out = append(out, stringify(it))
	}
	return out
}

// stringify renders one JSON element as a token. Strings are unquoted,
// numbers are printed in shortest form, and nested arrays or objects keep
// their compact JSON text.
func stringify(raw json.RawMessage) string {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return ""
	}
	switch raw[0] {
	case '"':
		var s string
		if err := json.Unmarshal(raw, &s); err == nil {
			return s
		}
	case '[', '{':
		var buf bytes.Buffer
		if err := json.Compact(&buf, raw); err == nil {
			return buf.String()
		}
	default:
		if f, err := strconv.ParseFloat(string(raw), 64); err == nil {
			return strconv.FormatFloat(f, 'f', -1, 64)
		}
	}
	return string(raw)
}
