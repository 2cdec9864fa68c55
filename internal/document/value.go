package document

import (
	"bytes"
	"math"
	"strconv"
	"strings"

	"github.com/goccy/go-json"
)

// Kind identifies the variant held by a Value.
// The declaration order is the rank used by Compare.
type Kind int

const (
	// KindMissing marks an absent field. It is the zero Kind.
	KindMissing Kind = iota
	// KindNull is a JSON null.
	KindNull
	// KindBool is a JSON boolean.
	KindBool
	// KindNumber is a JSON number.
	KindNumber
	// KindString is a JSON string.
	KindString
	// KindArray is a JSON array.
	KindArray
	// KindObject is a JSON object.
	KindObject
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case KindMissing:
		return "missing"
	case KindNull:
		return "null"
	case KindBool:
		return "bool"
	case KindNumber:
		return "number"
	case KindString:
		return "string"
	case KindArray:
		return "array"
	case KindObject:
		return "object"
	default:
		return "unknown"
	}
}

// Member is one key/value pair of an object, in source order.
type Member struct {
	Key   string
	Value Value
}

// Value is a loosely-typed JSON value.
// The zero Value is Missing.
type Value struct {
	kind Kind

	b   bool
	num float64
	// raw keeps the number literal as written in the source.
	raw string
	str string

	items   []Value
	members []Member
	// index maps an object key to its position in members.
	index map[string]int
}

// Missing returns the absent value.
func Missing() Value {
	return Value{}
}

// Null returns a JSON null.
func Null() Value {
	return Value{kind: KindNull}
}

// NewBool returns a boolean value.
func NewBool(b bool) Value {
	return Value{kind: KindBool, b: b}
}

// NewNumber returns a number value.
func NewNumber(f float64) Value {
	return Value{kind: KindNumber, num: f, raw: strconv.FormatFloat(f, 'f', -1, 64)}
}

// NewString returns a string value.
func NewString(s string) Value {
	return Value{kind: KindString, str: s}
}

// NewArray returns an array holding items.
func NewArray(items ...Value) Value {
	return Value{kind: KindArray, items: items}
}

// NewObject returns an object holding members in the given order.
// A repeated key keeps its first position and takes the last value.
func NewObject(members ...Member) Value {
	v := Value{kind: KindObject, index: make(map[string]int, len(members))}
	for _, m := range members {
		v.set(m.Key, m.Value)
	}
	return v
}

// set adds or replaces an object member.
func (v *Value) set(key string, val Value) {
	if i, ok := v.index[key]; ok {
		v.members[i].Value = val
		return
	}
	v.index[key] = len(v.members)
	v.members = append(v.members, Member{Key: key, Value: val})
}

// Kind returns the variant held by v.
func (v Value) Kind() Kind {
	return v.kind
}

// Exists reports whether v is present, including an explicit null.
func (v Value) Exists() bool {
	return v.kind != KindMissing
}

// IsObject reports whether v is a JSON object.
func (v Value) IsObject() bool {
	return v.kind == KindObject
}

// IsArray reports whether v is a JSON array.
func (v Value) IsArray() bool {
	return v.kind == KindArray
}

// Bool returns the boolean held by v, or false for other kinds.
func (v Value) Bool() bool {
	return v.kind == KindBool && v.b
}

// Float returns the number held by v, or 0 for other kinds.
func (v Value) Float() float64 {
	if v.kind != KindNumber {
		return 0
	}
	return v.num
}

// Str returns the string held by v, or "" for other kinds.
func (v Value) Str() string {
	if v.kind != KindString {
		return ""
	}
	return v.str
}

// Len returns the number of array items or object members.
func (v Value) Len() int {
	switch v.kind {
	case KindArray:
		return len(v.items)
	case KindObject:
		return len(v.members)
	default:
		return 0
	}
}

// Index returns the i-th array item, or Missing when out of range.
func (v Value) Index(i int) Value {
	if v.kind != KindArray || i < 0 || i >= len(v.items) {
		return Value{}
	}
	return v.items[i]
}

// Items returns the array items. The slice must not be modified.
func (v Value) Items() []Value {
	if v.kind != KindArray {
		return nil
	}
	return v.items
}

// Members returns the object members in source order.
// The slice must not be modified.
func (v Value) Members() []Member {
	if v.kind != KindObject {
		return nil
	}
	return v.members
}

// Keys returns the object keys in source order.
func (v Value) Keys() []string {
	if v.kind != KindObject {
		return nil
	}
	keys := make([]string, len(v.members))
	for i, m := range v.members {
		keys[i] = m.Key
	}
	return keys
}

// Get returns the member stored under key.
// The second result is false when v is not an object or has no such key.
func (v Value) Get(key string) (Value, bool) {
	if v.kind != KindObject {
		return Value{}, false
	}
	i, ok := v.index[key]
	if !ok {
		return Value{}, false
	}
	return v.members[i].Value, true
}

// GetOr returns the member stored under key, or fallback when absent.
// An explicit null is present and is returned as is.
func (v Value) GetOr(key string, fallback Value) Value {
	if got, ok := v.Get(key); ok {
		return got
	}
	return fallback
}

// Has reports whether v is an object with the given key.
func (v Value) Has(key string) bool {
	_, ok := v.Get(key)
	return ok
}

// Truthy reports whether v counts as true: false for missing, null, false,
// zero, empty string and empty containers.
func (v Value) Truthy() bool {
	switch v.kind {
	case KindBool:
		return v.b
	case KindNumber:
		return v.num != 0
	case KindString:
		return v.str != ""
	case KindArray:
		return len(v.items) > 0
	case KindObject:
		return len(v.members) > 0
	default:
		return false
	}
}

// String returns the display text of v: strings verbatim, numbers as
// written, true/false, null, and compact JSON for containers.
func (v Value) String() string {
	switch v.kind {
	case KindMissing:
		return ""
	case KindNull:
		return "null"
	case KindBool:
		return strconv.FormatBool(v.b)
	case KindNumber:
		return v.raw
	case KindString:
		return v.str
	default:
		var buf bytes.Buffer
		v.writeJSON(&buf)
		return buf.String()
	}
}

// Key returns a canonical text that is equal for equal values.
// Numbers are normalised so that 1 and 1.0 share a key, as do 0 and -0.
func (v Value) Key() string {
	switch v.kind {
	case KindNumber:
		num := v.num
		if num == 0 {
			num = 0
		}
		return "n:" + strconv.FormatFloat(num, 'g', -1, 64)
	case KindString:
		return "s:" + v.str
	case KindBool:
		return "b:" + strconv.FormatBool(v.b)
	case KindNull:
		return "null"
	case KindMissing:
		return "missing"
	default:
		return v.kind.String() + ":" + v.String()
	}
}

// MarshalJSON encodes v keeping object member order.
// Missing encodes as null.
func (v Value) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	v.writeJSON(&buf)
	return buf.Bytes(), nil
}

// writeJSON appends the compact JSON encoding of v.
func (v Value) writeJSON(buf *bytes.Buffer) {
	switch v.kind {
	case KindMissing, KindNull:
		buf.WriteString("null")
	case KindBool:
		buf.WriteString(strconv.FormatBool(v.b))
	case KindNumber:
		buf.WriteString(v.raw)
	case KindString:
		writeJSONString(buf, v.str)
	case KindArray:
		buf.WriteByte('[')
		for i, item := range v.items {
			if i > 0 {
				buf.WriteByte(',')
			}
			item.writeJSON(buf)
		}
		buf.WriteByte(']')
	case KindObject:
		buf.WriteByte('{')
		for i, m := range v.members {
			if i > 0 {
				buf.WriteByte(',')
			}
			writeJSONString(buf, m.Key)
			buf.WriteByte(':')
			m.Value.writeJSON(buf)
		}
		buf.WriteByte('}')
	}
}

// writeJSONString appends s as a quoted JSON string.
func writeJSONString(buf *bytes.Buffer, s string) {
	quoted, err := json.MarshalNoEscape(s)
	if err != nil {
		// Strings always encode; keep the output valid regardless.
		buf.WriteString(strconv.Quote(s))
		return
	}
	buf.Write(quoted)
}

// Compare orders two values totally: by kind rank first, then by value.
// Booleans order false before true, numbers numerically, strings
// lexicographically, containers by their compact JSON text.
// It returns -1, 0 or +1.
func Compare(a, b Value) int {
	if a.kind != b.kind {
		if a.kind < b.kind {
			return -1
		}
		return 1
	}

	switch a.kind {
	case KindBool:
		switch {
		case a.b == b.b:
			return 0
		case !a.b:
			return -1
		default:
			return 1
		}
	case KindNumber:
		return compareFloat(a.num, b.num)
	case KindString:
		return strings.Compare(a.str, b.str)
	case KindArray, KindObject:
		return strings.Compare(a.String(), b.String())
	default:
		return 0
	}
}

// compareFloat orders floats, placing NaN first so the order stays total.
func compareFloat(x, y float64) int {
	xNaN, yNaN := math.IsNaN(x), math.IsNaN(y)
	switch {
	case xNaN && yNaN:
		return 0
	case xNaN:
		return -1
	case yNaN:
		return 1
	case x < y:
		return -1
	case x > y:
		return 1
	default:
		return 0
	}
}
