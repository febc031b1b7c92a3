package utils

import (
	"fmt"
	"reflect"
	"slices"
)

var ColumnTag = "db"

// StructTagValues lists the column tags of a struct, descending into
// untagged embedded structs.
func StructTagValues(input any) []string {
	result := make([]string, 0)
	walkColumns(structValue(input), func(tag string, _ reflect.Value) {
		result = append(result, tag)
	})
	return result
}

// StructToMap maps column tags to field values. Columns named in omit are
// left out.
func StructToMap(input any, omit ...string) map[string]any {
	result := make(map[string]any)
	walkColumns(structValue(input), func(tag string, v reflect.Value) {
		if slices.Contains(omit, tag) {
			return
		}
		result[tag] = v.Interface()
	})
	return result
}

func structValue(input any) reflect.Value {
	v := reflect.ValueOf(input)
	if v.Kind() == reflect.Ptr {
		v = v.Elem()
	}

	if v.Kind() != reflect.Struct {
		panic("input must be a pointer to a struct or a struct")
	}

	return v
}

func walkColumns(v reflect.Value, fn func(tag string, field reflect.Value)) {
	t := v.Type()

	for i := 0; i < v.NumField(); i++ {
		field := t.Field(i)

		tagValue := field.Tag.Get(ColumnTag)
		if field.Anonymous && tagValue == "" && field.Type.Kind() == reflect.Struct {
			walkColumns(v.Field(i), fn)
			continue
		}

		if field.PkgPath != "" {
			continue
		}

		if tagValue == "" || tagValue == "-" {
			continue
		}

		fn(tagValue, v.Field(i))
	}
}

func ErrorWrapOrNil(err error, msg string) error {
	if err == nil {
		return nil
	}

	if msg == "" {
		return err
	}

	return fmt.Errorf("%s: %w", msg, err)
}
