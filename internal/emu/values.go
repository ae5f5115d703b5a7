/*
 * Copyright 2022 CloudWeGo Authors
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package emu

import (
	"fmt"
	"math"
	"reflect"
	"strconv"

	"github.com/azn9/fieldhook/internal/accessor"
	"github.com/azn9/fieldhook/internal/defs"
)

/*
 * Operand stack values:
 *   int, boolean, byte, short, char   -> int32
 *   long                              -> int64
 *   float                             -> float32
 *   double                            -> float64
 *   references                        -> interface{}, nil for null
 */

// widen converts a Go value into its operand stack form.
func widen(rv reflect.Value) interface{} {
	switch rv.Kind() {
	case reflect.Bool:
		if rv.Bool() {
			return int32(1)
		} else {
			return int32(0)
		}
	case reflect.Int8, reflect.Int16, reflect.Int32:
		return int32(rv.Int())
	case reflect.Uint16:
		return int32(rv.Uint())
	case reflect.Int64:
		return rv.Int()
	case reflect.Float32:
		return float32(rv.Float())
	case reflect.Float64:
		return rv.Float()
	case reflect.Ptr, reflect.Interface, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan:
		if rv.IsNil() {
			return nil
		} else {
			return rv.Interface()
		}
	default:
		return rv.Interface()
	}
}

// narrow converts an operand stack value into a Go value of type vt.
func narrow(v interface{}, vt reflect.Type) (reflect.Value, error) {
	switch vt.Kind() {
	case reflect.Bool:
		if iv, ok := v.(int32); ok {
			return reflect.ValueOf(iv != 0), nil
		}
	case reflect.Int8:
		if iv, ok := v.(int32); ok {
			return reflect.ValueOf(int8(iv)), nil
		}
	case reflect.Int16:
		if iv, ok := v.(int32); ok {
			return reflect.ValueOf(int16(iv)), nil
		}
	case reflect.Uint16:
		if iv, ok := v.(int32); ok {
			return reflect.ValueOf(uint16(iv)), nil
		}
	case reflect.Int32:
		if iv, ok := v.(int32); ok {
			return reflect.ValueOf(iv), nil
		}
	case reflect.Int64:
		if iv, ok := v.(int64); ok {
			return reflect.ValueOf(iv), nil
		}
	case reflect.Float32:
		if fv, ok := v.(float32); ok {
			return reflect.ValueOf(fv), nil
		}
	case reflect.Float64:
		if fv, ok := v.(float64); ok {
			return reflect.ValueOf(fv), nil
		}
	default:
		if v == nil {
			return reflect.Zero(vt), nil
		} else if rv := reflect.ValueOf(v); rv.Type().AssignableTo(vt) {
			return rv, nil
		}
	}
	return reflect.Value{}, fmt.Errorf("cannot convert %T to %s", v, vt)
}

// narrowKind is like narrow, with the Go type given by a primitive kind.
func narrowKind(v interface{}, k defs.Kind) (reflect.Value, error) {
	if vt := accessor.GoTypeOf(defs.Primitive(k)); vt == nil {
		return reflect.Value{}, fmt.Errorf("not a primitive kind: %s", k)
	} else {
		return narrow(v, vt)
	}
}

// Format renders a stack value the way println prints it.
func Format(v interface{}) string {
	if v == nil {
		return "null"
	}
	if uv, ok := accessor.Unbox(v); ok {
		v = uv
	}
	switch x := v.(type) {
	case string:
		return x
	case bool:
		return strconv.FormatBool(x)
	case uint16:
		return string(rune(x))
	case int8, int16, int32, int64:
		return fmt.Sprint(x)
	case float32:
		return formatFloat(float64(x), 32)
	case float64:
		return formatFloat(x, 64)
	case fmt.Stringer:
		return x.String()
	default:
		return fmt.Sprint(v)
	}
}

func formatFloat(v float64, bits int) string {
	if math.Trunc(v) == v && !math.IsInf(v, 0) {
		return strconv.FormatFloat(v, 'f', 1, bits)
	} else {
		return strconv.FormatFloat(v, 'g', -1, bits)
	}
}
