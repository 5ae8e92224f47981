package query

import (
	"reflect"
	"strings"
	"time"
)

var timeType = reflect.TypeOf(time.Time{})

// KindsOf derives filter kinds from the bson tags of a model struct. Inline
// embedded structs are flattened; slices take the kind of their element.
func KindsOf(model any) Kinds {
	t := reflect.TypeOf(model)
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	kinds := make(Kinds)
	collectKinds(t, kinds)
	return kinds
}

func collectKinds(t reflect.Type, kinds Kinds) {
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if !f.IsExported() {
			continue
		}
		name, inline := bsonName(f)
		if name == "-" {
			continue
		}

		ft := f.Type
		for ft.Kind() == reflect.Pointer || ft.Kind() == reflect.Slice {
			ft = ft.Elem()
		}

		if inline || (f.Anonymous && ft.Kind() == reflect.Struct && ft != timeType) {
			collectKinds(ft, kinds)
			continue
		}
		if k, ok := kindOf(ft); ok {
			kinds[name] = k
		}
	}
}

func bsonName(f reflect.StructField) (string, bool) {
	tag := f.Tag.Get("bson")
	if tag == "" {
		return strings.ToLower(f.Name), false
	}
	parts := strings.Split(tag, ",")
	inline := false
	for _, opt := range parts[1:] {
		if opt == "inline" {
			inline = true
		}
	}
	if parts[0] == "" {
		return strings.ToLower(f.Name), inline
	}
	return parts[0], inline
}

func kindOf(t reflect.Type) (Kind, bool) {
	if t == timeType {
		return KindTime, true
	}
	switch t.Kind() {
	case reflect.String:
		return KindString, true
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return KindInt, true
	case reflect.Float32, reflect.Float64:
		return KindFloat, true
	case reflect.Bool:
		return KindBool, true
	}
	return 0, false
}
