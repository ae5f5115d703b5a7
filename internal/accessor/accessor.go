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
	"sync/atomic"
	"unsafe"

	"github.com/azn9/fieldhook/internal/utils"
)

var (
	GetCount uint64 = 0
	SetCount uint64 = 0
)

// Get reads the named field of owner, which must be a non-nil pointer to a
// struct. Primitive values are returned boxed.
func Get(owner interface{}, name string) (interface{}, error) {
	p, fv, err := locate(owner, name)
	if err != nil {
		return nil, err
	}

	/* nil pointers and interfaces become null references */
	atomic.AddUint64(&GetCount, 1)
	rv := fieldOf(p, fv)
	if isNillable(rv.Kind()) && rv.IsNil() {
		return nil, nil
	} else {
		return boxValue(rv), nil
	}
}

// Set writes value into the named field of owner on behalf of caller. Private
// fields can only be written by a caller of the same type as the owner.
func Set(owner interface{}, value interface{}, caller interface{}, name string) error {
	p, fv, err := locate(owner, name)
	if err != nil {
		return err
	}

	/* check for accessibility */
	vt := reflect.TypeOf(owner)
	if ct := reflect.TypeOf(caller); fv.Private && ct != vt {
		return utils.EDenied(vt, name, ct)
	}

	/* store the value */
	if !assign(fieldOf(p, fv), value) {
		return utils.EAssign(vt, name, value)
	} else {
		atomic.AddUint64(&SetCount, 1)
		return nil
	}
}

func locate(owner interface{}, name string) (unsafe.Pointer, *Field, error) {
	if owner == nil {
		return nil, nil, utils.ENilOwner(name)
	}

	/* must be a pointer to a struct */
	rv := reflect.ValueOf(owner)
	if rv.Kind() != reflect.Ptr || rv.Type().Elem().Kind() != reflect.Struct {
		return nil, nil, utils.ENoField(rv.Type(), name)
	} else if rv.IsNil() {
		return nil, nil, utils.ENilOwner(name)
	}

	/* resolve the struct layout */
	sd, err := ResolveStruct(rv.Type().Elem())
	if err != nil {
		return nil, nil, err
	}

	/* find the field */
	if fv, ok := sd.Lookup(name); !ok {
		return nil, nil, utils.ENoField(rv.Type(), name)
	} else {
		return unsafe.Pointer(rv.Pointer()), fv, nil
	}
}

func assign(dst reflect.Value, val interface{}) bool {
	if val == nil {
		if !isNillable(dst.Kind()) {
			return false
		} else {
			dst.Set(reflect.Zero(dst.Type()))
			return true
		}
	}

	/* direct assignment, boxes into reference fields included */
	rv := reflect.ValueOf(val)
	if rv.Type().AssignableTo(dst.Type()) {
		dst.Set(rv)
		return true
	}

	/* unbox into primitive fields, the types must match exactly */
	if pv, ok := Unbox(val); ok {
		if uv := reflect.ValueOf(pv); uv.Type() == dst.Type() {
			dst.Set(uv)
			return true
		}
	}
	return false
}

func isNillable(kind reflect.Kind) bool {
	switch kind {
	case reflect.Ptr, reflect.Interface, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan:
		return true
	default:
		return false
	}
}

// Lookup returns the settable storage of the named field of owner. Unlike Get
// and Set it neither counts nor checks accessibility.
func Lookup(owner interface{}, name string) (reflect.Value, error) {
	if p, fv, err := locate(owner, name); err != nil {
		return reflect.Value{}, err
	} else {
		return fieldOf(p, fv), nil
	}
}
