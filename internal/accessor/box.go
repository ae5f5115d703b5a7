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

package accessor

import (
	"reflect"
)

// Boxed representations of the primitive kinds. A boxed value always travels
// as a pointer so that a null reference stays distinguishable from zero.
type (
	Integer   struct{ V int32 }
	Long      struct{ V int64 }
	Float     struct{ V float32 }
	Double    struct{ V float64 }
	Boolean   struct{ V bool }
	Byte      struct{ V int8 }
	Short     struct{ V int16 }
	Character struct{ V uint16 }
)

var (
	boxTab = map[reflect.Type]func(reflect.Value) interface{}{
		reflect.TypeOf(int32(0)):   func(v reflect.Value) interface{} { return &Integer{int32(v.Int())} },
		reflect.TypeOf(int64(0)):   func(v reflect.Value) interface{} { return &Long{v.Int()} },
		reflect.TypeOf(float32(0)): func(v reflect.Value) interface{} { return &Float{float32(v.Float())} },
		reflect.TypeOf(float64(0)): func(v reflect.Value) interface{} { return &Double{v.Float()} },
		reflect.TypeOf(false):      func(v reflect.Value) interface{} { return &Boolean{v.Bool()} },
		reflect.TypeOf(int8(0)):    func(v reflect.Value) interface{} { return &Byte{int8(v.Int())} },
		reflect.TypeOf(int16(0)):   func(v reflect.Value) interface{} { return &Short{int16(v.Int())} },
		reflect.TypeOf(uint16(0)):  func(v reflect.Value) interface{} { return &Character{uint16(v.Uint())} },
	}
)

// Box wraps a Go primitive into its boxed representation. Values of any other
// type are returned unchanged.
func Box(v interface{}) interface{} {
	if v == nil {
		return nil
	} else {
		return boxValue(reflect.ValueOf(v))
	}
}

func boxValue(rv reflect.Value) interface{} {
	if fn, ok := boxTab[rv.Type()]; ok {
		return fn(rv)
	} else {
		return rv.Interface()
	}
}

// Unbox returns the primitive held by a boxed value.
func Unbox(v interface{}) (interface{}, bool) {
	switch p := v.(type) {
	case *Integer:
		return notNil(p != nil, func() interface{} { return p.V })
	case *Long:
		return notNil(p != nil, func() interface{} { return p.V })
	case *Float:
		return notNil(p != nil, func() interface{} { return p.V })
	case *Double:
		return notNil(p != nil, func() interface{} { return p.V })
	case *Boolean:
		return notNil(p != nil, func() interface{} { return p.V })
	case *Byte:
		return notNil(p != nil, func() interface{} { return p.V })
	case *Short:
		return notNil(p != nil, func() interface{} { return p.V })
	case *Character:
		return notNil(p != nil, func() interface{} { return p.V })
	default:
		return nil, false
	}
}

func notNil(ok bool, fn func() interface{}) (interface{}, bool) {
	if !ok {
		return nil, false
	} else {
		return fn(), true
	}
}

// IsBoxed checks whether the value is one of the boxed representations.
func IsBoxed(v interface{}) bool {
	switch v.(type) {
	case *Integer, *Long, *Float, *Double, *Boolean, *Byte, *Short, *Character:
		return true
	default:
		return false
	}
}
