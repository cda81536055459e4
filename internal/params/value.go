package params

import (
	"strconv"
	"strings"
)

// Kind enumerates parameter value types.
type Kind int

const (
	KindBool Kind = iota
	KindInt
	KindFloat
	KindString
	KindList
)

// Value is a typed parameter value. Lists carry one entry per chemical
// element, in element order.
type Value struct {
	kind Kind
	b    bool
	i    int64
	f    float64
	s    string
	list []Value
}

// Bool wraps a boolean value.
func Bool(v bool) Value { return Value{kind: KindBool, b: v} }

// Int wraps an integer value.
func Int(v int64) Value { return Value{kind: KindInt, i: v} }

// Float wraps a floating-point value.
func Float(v float64) Value { return Value{kind: KindFloat, f: v} }

// String wraps a bare string value.
func String(v string) Value { return Value{kind: KindString, s: v} }

// List wraps an ordered list value.
func List(vs ...Value) Value { return Value{kind: KindList, list: vs} }

// Parse infers the type of a single token: .TRUE./.FALSE. booleans, then
// integers, then floats, then bare strings.
func Parse(token string) Value {
	switch strings.ToUpper(token) {
	case ".TRUE.", ".T.", "T":
		return Bool(true)
	case ".FALSE.", ".F.", "F":
		return Bool(false)
	}
	if n, err := strconv.ParseInt(token, 10, 64); err == nil {
		return Int(n)
	}
	if f, err := strconv.ParseFloat(token, 64); err == nil {
		return Float(f)
	}
	return String(token)
}

// ParseTokens parses one or more tokens: a single token gives a scalar,
// several give a list.
func ParseTokens(tokens []string) Value {
	if len(tokens) == 1 {
		return Parse(tokens[0])
	}
	list := make([]Value, len(tokens))
	for i, tok := range tokens {
		list[i] = Parse(tok)
	}
	return List(list...)
}

// Kind returns the value's type tag.
func (v Value) Kind() Kind { return v.kind }

// Bool returns the boolean payload; false for other kinds.
func (v Value) Bool() bool { return v.kind == KindBool && v.b }

// Int returns the integer payload, converting floats by truncation.
func (v Value) Int() int64 {
	if v.kind == KindFloat {
		return int64(v.f)
	}
	return v.i
}

// Float returns the numeric payload as a float.
func (v Value) Float() float64 {
	if v.kind == KindInt {
		return float64(v.i)
	}
	return v.f
}

// List returns the list payload; nil for scalar values.
func (v Value) List() []Value {
	if v.kind != KindList {
		return nil
	}
	out := make([]Value, len(v.list))
	copy(out, v.list)
	return out
}

// Format renders the value in the artifact dialect.
func (v Value) Format() string {
	switch v.kind {
	case KindBool:
		if v.b {
			return ".TRUE."
		}
		return ".FALSE."
	case KindInt:
		return strconv.FormatInt(v.i, 10)
	case KindFloat:
		return strconv.FormatFloat(v.f, 'g', -1, 64)
	case KindList:
		parts := make([]string, len(v.list))
		for i, item := range v.list {
			parts[i] = item.Format()
		}
		return strings.Join(parts, " ")
	default:
		return v.s
	}
}
