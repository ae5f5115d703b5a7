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

package defs

import (
	"fmt"
	"strings"
)

type Kind uint8

const (
	K_ref Kind = iota
	K_int
	K_long
	K_float
	K_double
	K_boolean
	K_byte
	K_short
	K_char
	K_void
)

type kindInfo struct {
	name  string
	desc  string
	box   string
	cast  string
	unbox string
	slots int
}

var kindTab = [...]kindInfo{
	K_int:     {"int", "I", "java.lang.Integer", "castBackToInt", "intValue", 1},
	K_long:    {"long", "J", "java.lang.Long", "castBackToLong", "longValue", 2},
	K_float:   {"float", "F", "java.lang.Float", "castBackToFloat", "floatValue", 1},
	K_double:  {"double", "D", "java.lang.Double", "castBackToDouble", "doubleValue", 2},
	K_boolean: {"boolean", "Z", "java.lang.Boolean", "castBackToBoolean", "booleanValue", 1},
	K_byte:    {"byte", "B", "java.lang.Byte", "castBackToByte", "byteValue", 1},
	K_short:   {"short", "S", "java.lang.Short", "castBackToShort", "shortValue", 1},
	K_char:    {"char", "C", "java.lang.Character", "castBackToChar", "charValue", 1},
}

// Kinds lists the supported primitive kinds, in table order.
var Kinds = [...]Kind{
	K_int,
	K_long,
	K_float,
	K_double,
	K_boolean,
	K_byte,
	K_short,
	K_char,
}

// info is the only exhaustive match over Kind, every other lookup goes through it.
func (self Kind) info() (*kindInfo, bool) {
	switch self {
	case K_int, K_long, K_float, K_double, K_boolean, K_byte, K_short, K_char:
		return &kindTab[self], true
	case K_ref, K_void:
		return nil, false
	default:
		return nil, false
	}
}

func (self Kind) IsPrimitive() bool {
	return self != K_ref
}

func (self Kind) String() string {
	if ki, ok := self.info(); ok {
		return ki.name
	}
	switch self {
	case K_ref:
		return "reference"
	case K_void:
		return "void"
	default:
		return fmt.Sprintf("Kind(%d)", self)
	}
}

// Type is either one of the primitive kinds, or a reference type named by its
// fully qualified, dot-separated name.
type Type struct {
	K Kind
	N string
}

func Primitive(k Kind) Type {
	return Type{K: k}
}

func Reference(name string) Type {
	return Type{K: K_ref, N: strings.ReplaceAll(name, "/", ".")}
}

func (self Type) IsPrimitive() bool {
	return self.K.IsPrimitive()
}

// Slots returns the number of operand stack slots a value of this type occupies.
func (self Type) Slots() int {
	if self.K == K_ref {
		return 1
	} else if self.K == K_void {
		return 0
	} else if ki, ok := self.K.info(); ok {
		return ki.slots
	} else {
		return 1
	}
}

// InternalName returns the slash-separated name of a reference type.
func (self Type) InternalName() string {
	return strings.ReplaceAll(self.N, ".", "/")
}

func (self Type) String() string {
	if self.K == K_ref {
		return self.N
	} else {
		return self.K.String()
	}
}
