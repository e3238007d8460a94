// Package enumutil provides the reflection-based "enum symbol" helper used
// throughout synccore's status and error-kind types, in place of a generated
// stringer or a plain iota block.
package enumutil

import (
	"fmt"
	"reflect"
	"strings"
)

// Helper enumerates the zero-arg, self-typed methods of an enum type (the
// symbol constructors, e.g. EStatus.Pending()) and uses them to implement
// String/Parse without a code generator.
type Helper struct{}

type symbolVisitor func(name string, value interface{}) (stop bool)

func (Helper) isSymbolMethod(enumType reflect.Type, m reflect.Method) bool {
	return m.Type.NumIn() == 1 && m.Type.NumOut() == 1 && m.Type.Out(0) == enumType
}

func (h Helper) symbols(enumType reflect.Type, visit symbolVisitor) {
	args := [1]reflect.Value{reflect.Zero(enumType)}
	for m := 0; m < enumType.NumMethod(); m++ {
		method := enumType.Method(m)
		if !h.isSymbolMethod(enumType, method) {
			continue
		}
		value := method.Func.Call(args[:])[0].Convert(enumType).Interface()
		if visit(method.Name, value) {
			return
		}
	}
}

// String returns the name of the symbol method whose return value equals v.
func (h Helper) String(v interface{}, enumType reflect.Type) string {
	result := ""
	h.symbols(enumType, func(name string, value interface{}) bool {
		if value == v {
			result = name
			return true
		}
		return false
	})
	if result == "" {
		return fmt.Sprintf("%v", v)
	}
	return result
}

// Parse finds the symbol method (case-insensitive) whose name matches s and
// returns its value, or an error if none match.
func (h Helper) Parse(enumType reflect.Type, s string) (interface{}, error) {
	var result interface{}
	found := false
	lower := strings.ToLower(s)
	h.symbols(enumType, func(name string, value interface{}) bool {
		if strings.ToLower(name) == lower {
			result = value
			found = true
			return true
		}
		return false
	})
	if !found {
		return nil, fmt.Errorf("%q is not a valid %v", s, enumType)
	}
	return result, nil
}
