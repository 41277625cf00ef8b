// Package runtime implements the interpreter and runtime value system for minijava.
package runtime

import (
	"minijava/internal/token"
	"strconv"
)

// Kind identifies one of the six scalar value kinds.
type Kind int

const (
	KindInt Kind = iota
	KindFloat
	KindDouble
	KindBoolean
	KindChar
	KindString
)

var kindNames = [...]string{
	KindInt:     "int",
	KindFloat:   "float",
	KindDouble:  "double",
	KindBoolean: "boolean",
	KindChar:    "char",
	KindString:  "String",
}

func (k Kind) String() string {
	if int(k) >= 0 && int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "Kind(" + strconv.Itoa(int(k)) + ")"
}

// IsNumeric reports whether k takes part in arithmetic.
func (k Kind) IsNumeric() bool {
	return k == KindInt || k == KindFloat || k == KindDouble
}

// KindOfType maps a declaration type keyword to its value kind.
func KindOfType(t token.Kind) (Kind, bool) {
	switch t {
	case token.KW_INT:
		return KindInt, true
	case token.KW_FLOAT:
		return KindFloat, true
	case token.KW_DOUBLE:
		return KindDouble, true
	case token.KW_BOOLEAN:
		return KindBoolean, true
	case token.KW_CHAR:
		return KindChar, true
	case token.KW_STRING:
		return KindString, true
	default:
		return 0, false
	}
}

// Value is the interface for all runtime values. String returns the canonical print form.
type Value interface {
	Kind() Kind
	String() string
}

// IntVal is a 32-bit signed integer; arithmetic wraps around.
type IntVal int32

func (v IntVal) Kind() Kind     { return KindInt }
func (v IntVal) String() string { return strconv.FormatInt(int64(v), 10) }

// FloatVal is a single-precision float.
type FloatVal float32

func (v FloatVal) Kind() Kind     { return KindFloat }
func (v FloatVal) String() string { return formatFloat(float64(v), 32) }

// DoubleVal is a double-precision float.
type DoubleVal float64

func (v DoubleVal) Kind() Kind     { return KindDouble }
func (v DoubleVal) String() string { return formatFloat(float64(v), 64) }

// BoolVal represents true or false.
type BoolVal bool

func (v BoolVal) Kind() Kind { return KindBoolean }
func (v BoolVal) String() string {
	if v {
		return "true"
	}
	return "false"
}

// CharVal is a single character.
type CharVal rune

func (v CharVal) Kind() Kind     { return KindChar }
func (v CharVal) String() string { return string(rune(v)) }

// StringVal is an immutable text value.
type StringVal string

func (v StringVal) Kind() Kind     { return KindString }
func (v StringVal) String() string { return string(v) }

// ---- conversions ----

// widen converts a numeric value to the given numeric kind (int → float → double).
func widen(v Value, to Kind) Value {
	switch to {
	case KindFloat:
		switch n := v.(type) {
		case IntVal:
			return FloatVal(float32(n))
		case FloatVal:
			return n
		}
	case KindDouble:
		switch n := v.(type) {
		case IntVal:
			return DoubleVal(float64(n))
		case FloatVal:
			return DoubleVal(float64(n))
		case DoubleVal:
			return n
		}
	}
	return v
}

// promoted returns the kind both operands of a numeric binary operator are converted to.
func promoted(a, b Kind) Kind {
	if a == KindDouble || b == KindDouble {
		return KindDouble
	}
	if a == KindFloat || b == KindFloat {
		return KindFloat
	}
	return KindInt
}
