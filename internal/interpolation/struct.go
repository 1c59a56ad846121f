package interpolation

import (
	"errors"
	"fmt"
	"reflect"
)

// TagName marks string fields for expansion: `env_interpolation:"yes"`.
const TagName = "env_interpolation"

var ErrNotStruct = errors.New("expected a pointer to a struct")

// Struct expands tagged fields of the struct v points to, in place. Tagged fields may be
// strings, string slices or string-valued maps. Nested structs, struct pointers and slices of
// structs are walked whether or not they are tagged.
func Struct(v any) error {
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Pointer || rv.IsNil() || rv.Elem().Kind() != reflect.Struct {
		return fmt.Errorf("%w, got %T", ErrNotStruct, v)
	}
	return walkStruct(rv.Elem(), "")
}

func walkStruct(rv reflect.Value, prefix string) error {
	var errs []error
	typ := rv.Type()
	for i := range rv.NumField() {
		field := rv.Field(i)
		info := typ.Field(i)
		if !field.CanSet() {
			continue
		}
		name := prefix + info.Name
		if info.Tag.Get(TagName) == "yes" {
			errs = append(errs, expandValue(field, name))
			continue
		}
		errs = append(errs, descend(field, name))
	}
	return errors.Join(errs...)
}

// descend walks into container fields looking for nested structs.
func descend(field reflect.Value, name string) error {
	switch field.Kind() {
	case reflect.Struct:
		return walkStruct(field, name+".")
	case reflect.Pointer:
		if !field.IsNil() && field.Elem().Kind() == reflect.Struct {
			return walkStruct(field.Elem(), name+".")
		}
	case reflect.Slice:
		var errs []error
		for j := range field.Len() {
			errs = append(errs, descend(field.Index(j), fmt.Sprintf("%s[%d]", name, j)))
		}
		return errors.Join(errs...)
	}
	return nil
}

func expandValue(field reflect.Value, name string) error {
	switch {
	case field.Kind() == reflect.String:
		out, err := Expand(field.String())
		if err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
		field.SetString(out)
		return nil

	case field.Kind() == reflect.Slice && field.Type().Elem().Kind() == reflect.String:
		var errs []error
		for j := range field.Len() {
			elem := field.Index(j)
			out, err := Expand(elem.String())
			if err != nil {
				errs = append(errs, fmt.Errorf("%s[%d]: %w", name, j, err))
				continue
			}
			elem.SetString(out)
		}
		return errors.Join(errs...)

	case field.Kind() == reflect.Map && field.Type().Elem().Kind() == reflect.String:
		var errs []error
		iter := field.MapRange()
		for iter.Next() {
			out, err := Expand(iter.Value().String())
			if err != nil {
				errs = append(errs, fmt.Errorf("%s[%v]: %w", name, iter.Key(), err))
				continue
			}
			field.SetMapIndex(iter.Key(), reflect.ValueOf(out).Convert(field.Type().Elem()))
		}
		return errors.Join(errs...)
	}
	return descend(field, name)
}
