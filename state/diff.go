package state

import (
	"reflect"
	"sort"
)

// Same reports whether a and b are the same value for change detection.
//
// Maps, slices, pointers, channels and funcs compare by reference; a slice is
// the same only when it shares the backing array and length. Booleans,
// numbers and strings compare by value, and NaN is never the same as itself.
// Structs and arrays compare element by element with the same rule.
//
// Pointers to zero-size values, such as &struct{}{}, may share one address,
// so two separately allocated ones can be the same. Store a pointer to a
// non-empty value when each write must count as a change.
func Same(a, b any) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	va := reflect.ValueOf(a)
	vb := reflect.ValueOf(b)
	if va.Type() != vb.Type() {
		return false
	}
	return sameValue(va, vb)
}

func sameValue(a, b reflect.Value) bool {
	switch a.Kind() {
	case reflect.Bool:
		return a.Bool() == b.Bool()
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return a.Int() == b.Int()
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return a.Uint() == b.Uint()
	case reflect.Float32, reflect.Float64:
		return a.Float() == b.Float()
	case reflect.Complex64, reflect.Complex128:
		return a.Complex() == b.Complex()
	case reflect.String:
		return a.String() == b.String()
	case reflect.Map, reflect.Pointer, reflect.Chan, reflect.Func, reflect.UnsafePointer:
		return a.Pointer() == b.Pointer()
	case reflect.Slice:
		return a.Pointer() == b.Pointer() && a.Len() == b.Len()
	case reflect.Interface:
		if a.IsNil() || b.IsNil() {
			return a.IsNil() && b.IsNil()
		}
		ea, eb := a.Elem(), b.Elem()
		if ea.Type() != eb.Type() {
			return false
		}
		return sameValue(ea, eb)
	case reflect.Array:
		for i := 0; i < a.Len(); i++ {
			if !sameValue(a.Index(i), b.Index(i)) {
				return false
			}
		}
		return true
	case reflect.Struct:
		for i := 0; i < a.NumField(); i++ {
			if !sameValue(a.Field(i), b.Field(i)) {
				return false
			}
		}
		return true
	default:
		return false
	}
}

// ChangedKeys returns the top-level keys whose values differ between prev
// and next. Keys of prev come first, then keys only present in next; each
// group is sorted. A key present in only one state counts as changed.
func ChangedKeys(prev, next State) []string {
	var changed []string
	for _, key := range prev.Keys() {
		nv, ok := next[key]
		if !ok || !Same(prev[key], nv) {
			changed = append(changed, key)
		}
	}
	for _, key := range next.Keys() {
		if _, ok := prev[key]; !ok {
			changed = append(changed, key)
		}
	}
	return changed
}

func sortedKeys[V any](m map[string]V) []string {
	if len(m) == 0 {
		return nil
	}
	keys := make([]string, 0, len(m))
	for key := range m {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}
