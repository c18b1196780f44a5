// Package document provides null-safe access to the JSON exchange document.
//
// A document is a tree of [Object] and [*Array] values whose leaves are
// strings, booleans, nil and [encoding/json.Number]. Readers never fail:
// absent, null and mistyped fields all read as the zero value, so codecs can
// treat every optional field the same way. Writers skip empty strings and
// zero timestamps so that "unset" does not travel on the wire.
//
// Numbers are kept as [encoding/json.Number] after [Parse] so 64-bit values
// and the exact text of floating point values survive a round trip.
package document

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"maps"
	"slices"
	"strconv"
	"strings"
	"time"
)

// Object is a JSON object.
type Object map[string]any

// Array is a JSON array. It is a pointer type so that arrays stored in an
// [Object] can be appended to in place.
type Array struct {
	items []any
}

// NewArray returns an array holding items.
func NewArray(items ...any) *Array {
	return &Array{items: items}
}

// Parse decodes data into an Object. The top level must be a JSON object
// and nothing may follow it.
func Parse(data []byte) (Object, error) {
	return Read(bytes.NewReader(data))
}

// Read decodes a single JSON object from r.
func Read(r io.Reader) (Object, error) {
	dec := json.NewDecoder(r)
	dec.UseNumber()

	var raw any
	if err := dec.Decode(&raw); err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, fmt.Errorf("decode: unexpected data after top-level object")
	}

	obj, ok := normalize(raw).(Object)
	if !ok {
		return nil, fmt.Errorf("decode: top-level value is %s, want object", kindOf(raw))
	}
	return obj, nil
}

// Marshal renders o as indented JSON. Object keys are sorted.
func Marshal(o Object) ([]byte, error) {
	var buf bytes.Buffer
	if err := Write(o, &buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Write encodes o to w as indented JSON.
func Write(o Object, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(o); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}

func normalize(v any) any {
	switch t := v.(type) {
	case map[string]any:
		obj := make(Object, len(t))
		for k, item := range t {
			obj[k] = normalize(item)
		}
		return obj
	case []any:
		arr := &Array{items: make([]any, len(t))}
		for i, item := range t {
			arr.items[i] = normalize(item)
		}
		return arr
	default:
		return v
	}
}

func kindOf(v any) string {
	switch v.(type) {
	case nil:
		return "null"
	case []any:
		return "array"
	case string:
		return "string"
	case bool:
		return "boolean"
	case json.Number:
		return "number"
	default:
		return fmt.Sprintf("%T", v)
	}
}

// Has reports whether key is present with a non-null value.
func (o Object) Has(key string) bool {
	v, ok := o[key]
	return ok && v != nil
}

// Put sets key to v.
func (o Object) Put(key string, v any) {
	o[key] = v
}

// PutString sets key to s. Empty strings are not written.
func (o Object) PutString(key, s string) {
	if s == "" {
		return
	}
	o[key] = s
}

// PutBool sets key to b.
func (o Object) PutBool(key string, b bool) {
	o[key] = b
}

// PutInt sets key to n.
func (o Object) PutInt(key string, n int) {
	o[key] = json.Number(strconv.Itoa(n))
}

// PutTimestamp writes t as milliseconds since the Unix epoch. The zero time
// is not written.
func (o Object) PutTimestamp(key string, t time.Time) {
	if t.IsZero() {
		return
	}
	o[key] = json.Number(strconv.FormatInt(t.UnixMilli(), 10))
}

// PutStringMap writes m as a nested object. Empty maps are not written.
func (o Object) PutStringMap(key string, m map[string]string) {
	if len(m) == 0 {
		return
	}
	obj := make(Object, len(m))
	for k, v := range m {
		obj[k] = v
	}
	o[key] = obj
}

// String returns the value at key as a string. Numbers and booleans are
// rendered as text; anything else reads as "".
func (o Object) String(key string) string {
	return scalarText(o[key])
}

// Bool returns the value at key as a boolean. The string "true" in any case
// also reads as true.
func (o Object) Bool(key string) bool {
	switch v := o[key].(type) {
	case bool:
		return v
	case string:
		return strings.EqualFold(v, "true")
	default:
		return false
	}
}

// Int returns the value at key as an int. The second result is false if the
// key is absent or does not hold an integer.
func (o Object) Int(key string) (int, bool) {
	return toInt(o[key])
}

// Timestamp reads milliseconds since the Unix epoch. Absent or invalid
// values read as the zero time.
func (o Object) Timestamp(key string) time.Time {
	var ms int64
	switch v := o[key].(type) {
	case json.Number:
		n, err := v.Int64()
		if err != nil {
			return time.Time{}
		}
		ms = n
	case int64:
		ms = v
	case int:
		ms = int64(v)
	default:
		return time.Time{}
	}
	return time.UnixMilli(ms).UTC()
}

// StringMap reads a nested object whose values are rendered as text. It
// returns nil if key does not hold an object.
func (o Object) StringMap(key string) map[string]string {
	obj, ok := o[key].(Object)
	if !ok {
		return nil
	}
	m := make(map[string]string, len(obj))
	for k, v := range obj {
		m[k] = Text(v)
	}
	return m
}

// Object returns the nested object at key.
func (o Object) Object(key string) (Object, bool) {
	obj, ok := o[key].(Object)
	return obj, ok
}

// Array returns the array at key, or nil if key does not hold an array.
func (o Object) Array(key string) *Array {
	arr, _ := o[key].(*Array)
	return arr
}

// EnsureArray returns the array at key, creating an empty one if key does
// not hold an array.
func (o Object) EnsureArray(key string) *Array {
	if arr, ok := o[key].(*Array); ok {
		return arr
	}
	arr := &Array{}
	o[key] = arr
	return arr
}

// Text returns the raw text of the value at key: strings as-is, numbers and
// booleans in JSON form, objects and arrays re-encoded as compact JSON, and
// null or absent as "".
func (o Object) Text(key string) string {
	return Text(o[key])
}

// Keys returns the object's keys in sorted order.
func (o Object) Keys() []string {
	return slices.Sorted(maps.Keys(o))
}

// Len returns the number of items. A nil array is empty.
func (a *Array) Len() int {
	if a == nil {
		return 0
	}
	return len(a.items)
}

// At returns item i.
func (a *Array) At(i int) any {
	return a.items[i]
}

// Object returns item i as an object.
func (a *Array) Object(i int) (Object, bool) {
	obj, ok := a.items[i].(Object)
	return obj, ok
}

// Array returns item i as an array, or nil.
func (a *Array) Array(i int) *Array {
	arr, _ := a.items[i].(*Array)
	return arr
}

// Int returns item i as an int.
func (a *Array) Int(i int) (int, bool) {
	return toInt(a.items[i])
}

// String returns item i as a string; non-scalar items read as "".
func (a *Array) String(i int) string {
	return scalarText(a.items[i])
}

// Append adds items to the end of the array.
func (a *Array) Append(items ...any) {
	a.items = append(a.items, items...)
}

// MarshalJSON encodes the array. A nil or empty array encodes as [].
func (a *Array) MarshalJSON() ([]byte, error) {
	if a == nil || a.items == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(a.items)
}

// Text returns the raw text of v. See [Object.Text].
func Text(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case Object, *Array:
		data, err := json.Marshal(t)
		if err != nil {
			return ""
		}
		return string(data)
	default:
		return scalarText(v)
	}
}

func scalarText(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case json.Number:
		return t.String()
	case bool:
		return strconv.FormatBool(t)
	case int:
		return strconv.Itoa(t)
	case int64:
		return strconv.FormatInt(t, 10)
	case float64:
		return strconv.FormatFloat(t, 'g', -1, 64)
	default:
		return ""
	}
}

func toInt(v any) (int, bool) {
	switch t := v.(type) {
	case json.Number:
		n, err := strconv.Atoi(t.String())
		if err != nil {
			return 0, false
		}
		return n, true
	case int:
		return t, true
	case int64:
		return int(t), true
	case float64:
		if t != float64(int(t)) {
			return 0, false
		}
		return int(t), true
	case string:
		n, err := strconv.Atoi(strings.TrimSpace(t))
		if err != nil {
			return 0, false
		}
		return n, true
	default:
		return 0, false
	}
}
