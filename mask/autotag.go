// Copyright © 2025-2026 Prabhjot Singh Sethi, All Rights reserved
// Author: Prabhjot Singh Sethi <prabhjot.sethi@gmail.com>

// Initial reference and motivation taken from the recursive field walker in
// https://gitlab.com/project-emco/core/emco-base/-/blob/main/src/orchestrator/pkg/infra/utils/objectencryptor.go

package mask

import (
	"log"
	"reflect"

	"github.com/go-core-stack/tuxedo/errors"
	"github.com/go-core-stack/tuxedo/utils"
)

// tagKey is the struct tag AutoMask looks for on exported fields:
//
//	type User struct {
//		Name  string `mask:"name"`
//		Email string `mask:"email"`
//		Inner *Profile
//	}
const tagKey = "mask"

var generators = map[string]func() string{
	"name":     Name,
	"email":    genValidEmail,
	"phone":    Phone,
	"uuid":     UUID,
	"address":  Address,
	"company":  Company,
	"username": Username,
}

// genValidEmail wraps Email with the invariant a `mask:"email"` field
// relies on: the synthetic value must itself be a well-formed email
// address. gofakeit's generator is trusted, but a malformed value here
// would silently write garbage into a field callers assume is an email,
// so it's checked rather than assumed.
func genValidEmail() string {
	e := Email()
	if !utils.IsValidEmail(e) {
		log.Panicf("mask: generated email %q is not a valid email address", e)
	}
	return e
}

// AutoMask walks v, which must be a non-nil pointer to a struct, and
// overwrites every exported string field tagged `mask:"<generator>"` with
// synthetic data, recursing into nested structs, pointers, slices, arrays
// and maps along the way. It gives a user document shape a ready-made
// Mask() without hand-written field-by-field logic: embed the call in the
// type's own Mask method.
//
// An unrecognized generator name is a programmer error and returns
// InvalidArgument rather than silently skipping the field.
func AutoMask(v interface{}) error {
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Ptr || rv.IsNil() {
		return errors.Wrap(errors.InvalidArgument, "AutoMask requires a non-nil pointer")
	}
	return walk(rv.Elem(), "")
}

func walk(v reflect.Value, tag string) error {
	switch v.Kind() {
	case reflect.String:
		if tag == "" {
			return nil
		}
		gen, ok := generators[tag]
		if !ok {
			return errors.Wrapf(errors.InvalidArgument, "unrecognized mask generator %q", tag)
		}
		if v.CanSet() {
			v.SetString(gen())
		}
		return nil

	case reflect.Ptr:
		if v.IsNil() {
			return nil
		}
		return walk(v.Elem(), tag)

	case reflect.Struct:
		t := v.Type()
		for i := 0; i < t.NumField(); i++ {
			field := t.Field(i)
			if !field.IsExported() {
				continue
			}
			fieldTag := field.Tag.Get(tagKey)
			if err := walk(v.Field(i), fieldTag); err != nil {
				return err
			}
		}
		return nil

	case reflect.Array:
		for i := 0; i < v.Len(); i++ {
			if err := walk(v.Index(i), tag); err != nil {
				return err
			}
		}
		return nil

	case reflect.Slice:
		for i := 0; i < v.Len(); i++ {
			if err := walk(v.Index(i), tag); err != nil {
				return err
			}
		}
		return nil

	case reflect.Map:
		if v.IsNil() {
			return nil
		}
		newMap := reflect.MakeMapWithSize(v.Type(), v.Len())
		iter := v.MapRange()
		for iter.Next() {
			key := iter.Key()
			val := reflect.New(v.Type().Elem()).Elem()
			val.Set(iter.Value())
			if err := walk(val, tag); err != nil {
				return err
			}
			newMap.SetMapIndex(key, val)
		}
		if v.CanSet() {
			v.Set(newMap)
		}
		return nil

	default:
		return nil
	}
}
