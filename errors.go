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

package fieldhook

import (
	"fmt"
	"reflect"
)

// KindError occurs when a type uses a primitive kind outside the supported table.
type KindError struct {
	Kind string
	Note string
}

func (self KindError) Error() string {
	if self.Note != "" {
		return fmt.Sprintf("KindError(%s): %s", self.Kind, self.Note)
	} else {
		return fmt.Sprintf("KindError(%s): unknown primitive kind", self.Kind)
	}
}

// FieldError occurs when a field of a class cannot be instrumented.
type FieldError struct {
	Class  string
	Field  string
	Method string
	Err    error
}

func (self FieldError) Error() string {
	if self.Method != "" {
		return fmt.Sprintf("cannot instrument %s.%s in method %s: %v", self.Class, self.Field, self.Method, self.Err)
	} else {
		return fmt.Sprintf("cannot instrument %s.%s: %v", self.Class, self.Field, self.Err)
	}
}

func (self FieldError) Unwrap() error {
	return self.Err
}

// AccessError occurs when an accessor cannot reach the named field of an instance.
type AccessError struct {
	Type  reflect.Type
	Field string
	Note  string
}

func (self AccessError) Error() string {
	if self.Type == nil {
		return fmt.Sprintf("AccessError(<nil>.%s): %s", self.Field, self.Note)
	} else {
		return fmt.Sprintf("AccessError(%s.%s): %s", self.Type.String(), self.Field, self.Note)
	}
}

// LinkError occurs when a class definition cannot be bound or applied.
type LinkError struct {
	Class  string
	Reason string
	Err    error
}

func (self LinkError) Error() string {
	if self.Err == nil {
		return fmt.Sprintf("cannot link class %s: %s", self.Class, self.Reason)
	} else {
		return fmt.Sprintf("cannot link class %s: %s: %v", self.Class, self.Reason, self.Err)
	}
}

func (self LinkError) Unwrap() error {
	return self.Err
}

// SyntaxError occurs when failed to parse an instruction listing or a descriptor.
type SyntaxError struct {
	Pos    int
	Src    string
	Reason string
}

func (self SyntaxError) Error() string {
	return fmt.Sprintf("Syntax error at position %d: %s", self.Pos, self.Reason)
}

// CastError occurs when a boxed value cannot be converted back to a primitive.
type CastError struct {
	Want  string
	Value interface{}
}

func (self CastError) Error() string {
	if self.Value == nil {
		return fmt.Sprintf("cannot cast null back to %s", self.Want)
	} else {
		return fmt.Sprintf("cannot cast %T back to %s", self.Value, self.Want)
	}
}
