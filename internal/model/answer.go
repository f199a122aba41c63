package model

import (
	"bytes"
	"encoding/json"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/rotisserie/eris"
)

// Kind identifies which field of a Value is set.
type Kind int

const (
	KindAbsent Kind = iota
	KindString
	KindSet
	KindNumber
	KindBool
)

// String returns the kind name used in logs.
func (k Kind) String() string {
	switch k {
	case KindString:
		return "string"
	case KindSet:
		return "set"
	case KindNumber:
		return "number"
	case KindBool:
		return "bool"
	default:
		return "absent"
	}
}

// Value is a recorded answer: a single choice, a set of choices, a number
// or an acknowledgment. The zero Value is an absent answer.
type Value struct {
	kind Kind
	str  string
	set  []string
	num  float64
	flag bool
}

// Text returns a single-choice (or free text) answer.
func Text(s string) Value { return Value{kind: KindString, str: s} }

// Number returns a numeric answer.
func Number(f float64) Value { return Value{kind: KindNumber, num: f} }

// Bool returns an acknowledgment answer.
func Bool(b bool) Value { return Value{kind: KindBool, flag: b} }

// Set returns a multi-choice answer. Duplicates and empty items are dropped
// and the items are kept sorted so equal sets compare equal.
func Set(items ...string) Value {
	seen := make(map[string]bool, len(items))
	out := make([]string, 0, len(items))
	for _, it := range items {
		if it == "" || seen[it] {
			continue
		}
		seen[it] = true
		out = append(out, it)
	}
	sort.Strings(out)
	return Value{kind: KindSet, set: out}
}

// Kind returns the value's kind.
func (v Value) Kind() Kind { return v.kind }

// Absent reports whether no answer was recorded.
func (v Value) Absent() bool { return v.kind == KindAbsent }

// Str returns the string answer, or "" for any other kind.
func (v Value) Str() string {
	if v.kind == KindString {
		return v.str
	}
	return ""
}

// Items returns a copy of the selected items of a set answer.
func (v Value) Items() []string {
	if v.kind != KindSet {
		return nil
	}
	return append([]string(nil), v.set...)
}

// Len returns the number of selected items of a set answer, 0 otherwise.
func (v Value) Len() int {
	if v.kind != KindSet {
		return 0
	}
	return len(v.set)
}

// Num returns the number answer and whether the value is a number.
func (v Value) Num() (float64, bool) {
	return v.num, v.kind == KindNumber
}

// Flag returns the acknowledgment answer, false for any other kind.
func (v Value) Flag() bool {
	return v.kind == KindBool && v.flag
}

// Truthy reports whether the value counts as filled in: a non-empty string,
// a set with at least one item, true, or a non-zero number.
func (v Value) Truthy() bool {
	switch v.kind {
	case KindString:
		return v.str != ""
	case KindSet:
		return len(v.set) > 0
	case KindNumber:
		return v.num != 0 && !math.IsNaN(v.num)
	case KindBool:
		return v.flag
	default:
		return false
	}
}

// IsZeroNumber reports whether the value is the number 0.
func (v Value) IsZeroNumber() bool {
	return v.kind == KindNumber && v.num == 0
}

// IsEmptyString reports whether the value is the empty string.
func (v Value) IsEmptyString() bool {
	return v.kind == KindString && v.str == ""
}

// Key returns the scalar form used to compare against condition values.
// Sets and absent values have no key.
func (v Value) Key() (string, bool) {
	switch v.kind {
	case KindString:
		return v.str, true
	case KindNumber:
		return strconv.FormatFloat(v.num, 'f', -1, 64), true
	case KindBool:
		return strconv.FormatBool(v.flag), true
	default:
		return "", false
	}
}

// Float coerces the value to a number. Unparseable strings, sets, absent
// values and non-finite numbers all yield 0; true yields 1.
func (v Value) Float() float64 {
	var f float64
	switch v.kind {
	case KindNumber:
		f = v.num
	case KindString:
		s := strings.TrimSpace(v.str)
		if s == "" {
			return 0
		}
		parsed, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0
		}
		f = parsed
	case KindBool:
		if v.flag {
			return 1
		}
		return 0
	default:
		return 0
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return f
}

// String renders the value for display.
func (v Value) String() string {
	switch v.kind {
	case KindString:
		return v.str
	case KindSet:
		return strings.Join(v.set, ", ")
	case KindNumber:
		return strconv.FormatFloat(v.num, 'f', -1, 64)
	case KindBool:
		if v.flag {
			return "oui"
		}
		return "non"
	default:
		return ""
	}
}

// Equal reports whether two values have the same kind and content.
func (v Value) Equal(o Value) bool {
	if v.kind != o.kind {
		return false
	}
	switch v.kind {
	case KindString:
		return v.str == o.str
	case KindSet:
		if len(v.set) != len(o.set) {
			return false
		}
		for i := range v.set {
			if v.set[i] != o.set[i] {
				return false
			}
		}
		return true
	case KindNumber:
		return v.num == o.num
	case KindBool:
		return v.flag == o.flag
	default:
		return true
	}
}

// MarshalJSON encodes the value as its natural JSON type; absent is null.
func (v Value) MarshalJSON() ([]byte, error) {
	switch v.kind {
	case KindString:
		return json.Marshal(v.str)
	case KindSet:
		if v.set == nil {
			return []byte("[]"), nil
		}
		return json.Marshal(v.set)
	case KindNumber:
		if math.IsNaN(v.num) || math.IsInf(v.num, 0) {
			return []byte("0"), nil
		}
		return json.Marshal(v.num)
	case KindBool:
		return json.Marshal(v.flag)
	default:
		return []byte("null"), nil
	}
}

// UnmarshalJSON decodes strings, numbers, booleans, string arrays and
// checkbox objects of the form {"option": true}.
func (v *Value) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*v = Value{}
		return nil
	}
	switch data[0] {
	case '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return eris.Wrap(err, "model: decode string answer")
		}
		*v = Text(s)
	case '[':
		var items []string
		if err := json.Unmarshal(data, &items); err != nil {
			return eris.Wrap(err, "model: decode multi-choice answer")
		}
		*v = Set(items...)
	case '{':
		var checked map[string]bool
		if err := json.Unmarshal(data, &checked); err != nil {
			return eris.Wrap(err, "model: decode checkbox answer")
		}
		items := make([]string, 0, len(checked))
		for k, on := range checked {
			if on {
				items = append(items, k)
			}
		}
		*v = Set(items...)
	case 't', 'f':
		var b bool
		if err := json.Unmarshal(data, &b); err != nil {
			return eris.Wrap(err, "model: decode boolean answer")
		}
		*v = Bool(b)
	default:
		var f float64
		if err := json.Unmarshal(data, &f); err != nil {
			return eris.Wrap(err, "model: decode numeric answer")
		}
		*v = Number(f)
	}
	return nil
}

// Answers maps question ids to recorded answers. A missing key means
// unanswered.
type Answers map[string]Value

// Get returns the answer for id; the zero Value when unanswered.
func (a Answers) Get(id string) Value {
	return a[id]
}

// Clone returns a shallow copy; Values are immutable so this is a full copy.
func (a Answers) Clone() Answers {
	out := make(Answers, len(a))
	for k, v := range a {
		out[k] = v
	}
	return out
}
