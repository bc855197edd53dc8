// Package clone serializes history state values into opaque blobs so that
// every read yields a fresh, deep-equal copy.
package clone

import (
	"errors"
	"fmt"
	"reflect"

	"github.com/bytedance/sonic"
)

// ErrDataClone is returned for values that cannot be cloned (functions,
// channels, cyclic graphs).
var ErrDataClone = errors.New("DataCloneError")

// Blob is a serialized state value. A nil Blob stands for the null state.
type Blob []byte

// Serialize walks v, rejecting uncloneable values, and encodes it.
func Serialize(v any) (Blob, error) {
	if v == nil {
		return nil, nil
	}
	if err := check(reflect.ValueOf(v), map[uintptr]struct{}{}); err != nil {
		return nil, err
	}
	data, err := sonic.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDataClone, err)
	}
	return Blob(data), nil
}

// Value decodes a fresh copy of the blob. Objects come back as
// map[string]any, arrays as []any, numbers as float64.
func (b Blob) Value() (any, error) {
	if b == nil {
		return nil, nil
	}
	var out any
	if err := sonic.Unmarshal(b, &out); err != nil {
		return nil, fmt.Errorf("decode state: %w", err)
	}
	return out, nil
}

// Clone copies v through serialization.
func Clone(v any) (any, error) {
	b, err := Serialize(v)
	if err != nil {
		return nil, err
	}
	return b.Value()
}

func check(v reflect.Value, onPath map[uintptr]struct{}) error {
	if !v.IsValid() {
		return nil
	}
	switch v.Kind() {
	case reflect.Func, reflect.Chan, reflect.UnsafePointer, reflect.Complex64, reflect.Complex128:
		return fmt.Errorf("%w: %s value could not be cloned", ErrDataClone, v.Kind())
	case reflect.Interface:
		if v.IsNil() {
			return nil
		}
		return check(v.Elem(), onPath)
	case reflect.Pointer, reflect.Map, reflect.Slice:
		if v.IsNil() {
			return nil
		}
		ptr := v.Pointer()
		if ptr != 0 {
			if _, seen := onPath[ptr]; seen {
				return fmt.Errorf("%w: cyclic value", ErrDataClone)
			}
			onPath[ptr] = struct{}{}
			defer delete(onPath, ptr)
		}
		switch v.Kind() {
		case reflect.Pointer:
			return check(v.Elem(), onPath)
		case reflect.Map:
			iter := v.MapRange()
			for iter.Next() {
				if err := check(iter.Value(), onPath); err != nil {
					return err
				}
			}
		default:
			for i := 0; i < v.Len(); i++ {
				if err := check(v.Index(i), onPath); err != nil {
					return err
				}
			}
		}
	case reflect.Array:
		for i := 0; i < v.Len(); i++ {
			if err := check(v.Index(i), onPath); err != nil {
				return err
			}
		}
	case reflect.Struct:
		t := v.Type()
		for i := 0; i < v.NumField(); i++ {
			if !t.Field(i).IsExported() {
				continue
			}
			if err := check(v.Field(i), onPath); err != nil {
				return err
			}
		}
	}
	return nil
}
