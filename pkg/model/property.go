package model

import (
	"encoding/json"
	"fmt"
	"slices"
	"strconv"
	"strings"
)

// ValueType is the wire tag of a property value.
type ValueType string

// Property value tags. The strings are part of the exchange format.
const (
	TypeFloat     ValueType = "float"
	TypeDouble    ValueType = "double"
	TypeBoolean   ValueType = "boolean"
	TypeText      ValueType = "string"
	TypeLong      ValueType = "long"
	TypeInt       ValueType = "int"
	TypeTextArray ValueType = "string[]"
)

// Value is a typed property value. The set of implementations is closed.
type Value interface {
	// Type returns the tag that identifies the value's type on the wire.
	Type() ValueType
	// String returns the canonical text form accepted by ParseValue.
	String() string

	value()
}

// Float is a 32-bit floating point value.
type Float float32

// Double is a 64-bit floating point value.
type Double float64

// Boolean is a truth value.
type Boolean bool

// Text is a string value.
type Text string

// Long is a 64-bit integer value.
type Long int64

// Int is a 32-bit integer value.
type Int int32

// TextArray is a list of strings.
type TextArray []string

func (Float) Type() ValueType     { return TypeFloat }
func (Double) Type() ValueType    { return TypeDouble }
func (Boolean) Type() ValueType   { return TypeBoolean }
func (Text) Type() ValueType      { return TypeText }
func (Long) Type() ValueType      { return TypeLong }
func (Int) Type() ValueType       { return TypeInt }
func (TextArray) Type() ValueType { return TypeTextArray }

func (v Float) String() string   { return strconv.FormatFloat(float64(v), 'g', -1, 32) }
func (v Double) String() string  { return strconv.FormatFloat(float64(v), 'g', -1, 64) }
func (v Boolean) String() string { return strconv.FormatBool(bool(v)) }
func (v Text) String() string    { return string(v) }
func (v Long) String() string    { return strconv.FormatInt(int64(v), 10) }
func (v Int) String() string     { return strconv.FormatInt(int64(v), 10) }

func (v TextArray) String() string {
	if v == nil {
		return "[]"
	}
	data, _ := json.Marshal([]string(v))
	return string(data)
}

func (Float) value()     {}
func (Double) value()    {}
func (Boolean) value()   {}
func (Text) value()      {}
func (Long) value()      {}
func (Int) value()       {}
func (TextArray) value() {}

// ParseValue converts text to a value of type t.
//
// Unknown tags, including the empty tag, yield the text unchanged as [Text].
// Booleans follow the lenient rule "true" (any case) is true and anything
// else is false. Numbers and string arrays that do not parse return an
// error.
func ParseValue(t ValueType, text string) (Value, error) {
	switch t {
	case TypeFloat:
		f, err := strconv.ParseFloat(strings.TrimSpace(text), 32)
		if err != nil {
			return nil, fmt.Errorf("parse %s %q: %w", t, text, err)
		}
		return Float(f), nil
	case TypeDouble:
		f, err := strconv.ParseFloat(strings.TrimSpace(text), 64)
		if err != nil {
			return nil, fmt.Errorf("parse %s %q: %w", t, text, err)
		}
		return Double(f), nil
	case TypeBoolean:
		return Boolean(strings.EqualFold(strings.TrimSpace(text), "true")), nil
	case TypeLong:
		n, err := strconv.ParseInt(strings.TrimSpace(text), 10, 64)
		if err != nil {
			return nil, fmt.Errorf("parse %s %q: %w", t, text, err)
		}
		return Long(n), nil
	case TypeInt:
		n, err := strconv.ParseInt(strings.TrimSpace(text), 10, 32)
		if err != nil {
			return nil, fmt.Errorf("parse %s %q: %w", t, text, err)
		}
		return Int(n), nil
	case TypeTextArray:
		var items []string
		if err := json.Unmarshal([]byte(text), &items); err != nil {
			return nil, fmt.Errorf("parse %s %q: %w", t, text, err)
		}
		if items == nil {
			items = []string{}
		}
		return TextArray(items), nil
	default:
		return Text(text), nil
	}
}

// Properties is a rule-graph node's property bag.
type Properties map[string]Value

// Keys returns the property keys in sorted order.
func (p Properties) Keys() []string {
	keys := make([]string, 0, len(p))
	for k := range p {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}
