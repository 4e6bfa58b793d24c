// Package layering deep merges partial values of the same type, stronger
// values winning field by field over weaker ones.
package layering

import "reflect"

// MergeLayers composes values ordered from strongest to weakest. The weakest
// value is deep copied and every stronger value is laid over it in turn.
//
// Nil pointers, maps, slices and interfaces count as missing and inherit the
// weaker value. Maps are unioned key by key, slices are replaced as a whole,
// structs and pointed-to values are merged field by field. Scalars of a
// stronger value always win, and so do unexported struct fields. The result
// never aliases the inputs through exported fields.
func MergeLayers[T any](layers ...T) T {
	var out T
	dst := reflect.ValueOf(&out).Elem()
	for i := len(layers) - 1; i >= 0; i-- {
		overlay(dst, reflect.ValueOf(&layers[i]).Elem())
	}
	return out
}

// Clone returns a deep copy of v. Exported fields, maps, slices and pointers
// are copied; unexported fields are copied by assignment.
func Clone[T any](v T) T {
	var out T
	overlay(reflect.ValueOf(&out).Elem(), reflect.ValueOf(&v).Elem())
	return out
}

// overlay writes src over dst in place. dst must be settable and of the same
// type as src. Everything dst holds after the call is owned by dst: values
// taken from src are copied, never shared.
func overlay(dst, src reflect.Value) {
	switch src.Kind() {
	case reflect.Pointer:
		if src.IsNil() {
			return
		}
		if dst.IsNil() {
			dst.Set(reflect.New(src.Type().Elem()))
		}
		overlay(dst.Elem(), src.Elem())
	case reflect.Interface:
		if src.IsNil() {
			return
		}
		elem := src.Elem()
		tmp := reflect.New(elem.Type()).Elem()
		if !dst.IsNil() && dst.Elem().Type() == elem.Type() {
			tmp.Set(dst.Elem())
		}
		overlay(tmp, elem)
		dst.Set(tmp)
	case reflect.Map:
		if src.IsNil() {
			return
		}
		if dst.IsNil() {
			dst.Set(reflect.MakeMapWithSize(src.Type(), src.Len()))
		}
		elemType := src.Type().Elem()
		entries := src.MapRange()
		for entries.Next() {
			tmp := reflect.New(elemType).Elem()
			if existing := dst.MapIndex(entries.Key()); existing.IsValid() {
				tmp.Set(existing)
			}
			overlay(tmp, entries.Value())
			dst.SetMapIndex(entries.Key(), tmp)
		}
	case reflect.Slice:
		if src.IsNil() {
			return
		}
		dst.Set(reflect.MakeSlice(src.Type(), src.Len(), src.Len()))
		for i := 0; i < src.Len(); i++ {
			overlay(dst.Index(i), src.Index(i))
		}
	case reflect.Array:
		for i := 0; i < src.Len(); i++ {
			overlay(dst.Index(i), src.Index(i))
		}
	case reflect.Struct:
		// Start from src so unexported fields come from the stronger value,
		// then merge the exported ones over what dst already owns.
		tmp := reflect.New(src.Type()).Elem()
		tmp.Set(src)
		for i := 0; i < tmp.NumField(); i++ {
			field := tmp.Field(i)
			if !field.CanSet() {
				continue
			}
			field.Set(dst.Field(i))
			overlay(field, src.Field(i))
		}
		dst.Set(tmp)
	default:
		dst.Set(src)
	}
}
