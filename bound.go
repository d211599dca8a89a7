package resolve

import "reflect"

// reflectProp reads an exported field (or string-keyed map entry) named prop
// from obj.
func reflectProp(obj any, prop string) (any, bool) {
	v := reflect.ValueOf(obj)
	for v.Kind() == reflect.Pointer {
		if v.IsNil() {
			return nil, false
		}
		v = v.Elem()
	}
	switch v.Kind() {
	case reflect.Struct:
		field := v.FieldByName(prop)
		if !field.IsValid() || !field.CanInterface() {
			return nil, false
		}
		return field.Interface(), true
	case reflect.Map:
		if v.Type().Key().Kind() != reflect.String {
			return nil, false
		}
		entry := v.MapIndex(reflect.ValueOf(prop))
		if !entry.IsValid() {
			return nil, false
		}
		return entry.Interface(), true
	default:
		return nil, false
	}
}

// reflectSetProp assigns value to the exported field (or string-keyed map
// entry) named prop on obj. obj must be a pointer for struct fields to be
// settable. Reports false when the target does not exist or cannot accept
// value.
func reflectSetProp(obj any, prop string, value any) bool {
	v := reflect.ValueOf(obj)
	for v.Kind() == reflect.Pointer {
		if v.IsNil() {
			return false
		}
		v = v.Elem()
	}
	switch v.Kind() {
	case reflect.Struct:
		field := v.FieldByName(prop)
		if !field.IsValid() || !field.CanSet() {
			return false
		}
		return assign(field, value)
	case reflect.Map:
		if v.IsNil() || v.Type().Key().Kind() != reflect.String {
			return false
		}
		rv := reflect.ValueOf(value)
		if value == nil {
			v.SetMapIndex(reflect.ValueOf(prop), reflect.Zero(v.Type().Elem()))
			return true
		}
		if !rv.Type().AssignableTo(v.Type().Elem()) {
			return false
		}
		v.SetMapIndex(reflect.ValueOf(prop), rv)
		return true
	default:
		return false
	}
}

// reflectCall invokes the method named method on obj with args, matching
// arity exactly, and returns its first result. A trailing non-nil error
// result reports absence.
func reflectCall(obj any, method string, args ...any) (any, bool) {
	m := reflect.ValueOf(obj).MethodByName(method)
	if !m.IsValid() {
		return nil, false
	}
	t := m.Type()
	if t.NumIn() != len(args) || t.IsVariadic() {
		return nil, false
	}
	in := make([]reflect.Value, len(args))
	for i, arg := range args {
		if arg == nil {
			in[i] = reflect.Zero(t.In(i))
			continue
		}
		rv := reflect.ValueOf(arg)
		if !rv.Type().AssignableTo(t.In(i)) {
			if !rv.Type().ConvertibleTo(t.In(i)) {
				return nil, false
			}
			rv = rv.Convert(t.In(i))
		}
		in[i] = rv
	}
	out := m.Call(in)
	if len(out) == 0 {
		return nil, true
	}
	if last := out[len(out)-1]; last.Type() == errorType && !last.IsNil() {
		return nil, false
	}
	return out[0].Interface(), true
}

var errorType = reflect.TypeOf((*error)(nil)).Elem()

func assign(field reflect.Value, value any) bool {
	if value == nil {
		field.Set(reflect.Zero(field.Type()))
		return true
	}
	rv := reflect.ValueOf(value)
	if rv.Type().AssignableTo(field.Type()) {
		field.Set(rv)
		return true
	}
	if rv.Type().ConvertibleTo(field.Type()) {
		field.Set(rv.Convert(field.Type()))
		return true
	}
	return false
}
