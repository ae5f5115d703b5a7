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

package utils

import (
	"fmt"
	"reflect"

	"github.com/azn9/fieldhook"
)

func EKind(kind string) fieldhook.KindError {
	return fieldhook.KindError{
		Kind: kind,
	}
}

func ENotField(kind string) fieldhook.KindError {
	return fieldhook.KindError{
		Kind: kind,
		Note: fmt.Sprintf("%s is a primitive kind but cannot be the type of a field", kind),
	}
}

func EField(class string, field string, err error) fieldhook.FieldError {
	return fieldhook.FieldError{
		Class: class,
		Field: field,
		Err:   err,
	}
}

func EFieldIn(class string, field string, method string, err error) fieldhook.FieldError {
	return fieldhook.FieldError{
		Class:  class,
		Field:  field,
		Method: method,
		Err:    err,
	}
}

func ENoField(vt reflect.Type, field string) fieldhook.AccessError {
	return fieldhook.AccessError{
		Type:  vt,
		Field: field,
		Note:  "no such field",
	}
}

func ENilOwner(field string) fieldhook.AccessError {
	return fieldhook.AccessError{
		Field: field,
		Note:  "owner is null",
	}
}

func EDenied(vt reflect.Type, field string, caller reflect.Type) fieldhook.AccessError {
	return fieldhook.AccessError{
		Type:  vt,
		Field: field,
		Note:  fmt.Sprintf("not accessible from %s", caller),
	}
}

func EAssign(vt reflect.Type, field string, val interface{}) fieldhook.AccessError {
	return fieldhook.AccessError{
		Type:  vt,
		Field: field,
		Note:  fmt.Sprintf("cannot assign value of type %T", val),
	}
}

func ELink(class string, reason string) fieldhook.LinkError {
	return fieldhook.LinkError{
		Class:  class,
		Reason: reason,
	}
}

func ELinkBy(class string, reason string, err error) fieldhook.LinkError {
	return fieldhook.LinkError{
		Class:  class,
		Reason: reason,
		Err:    err,
	}
}

func ESyntax(pos int, src string, reason string) fieldhook.SyntaxError {
	return fieldhook.SyntaxError{
		Pos:    pos,
		Src:    src,
		Reason: reason,
	}
}

func ECast(want string, val interface{}) fieldhook.CastError {
	return fieldhook.CastError{
		Want:  want,
		Value: val,
	}
}
