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

	"github.com/azn9/fieldhook/internal/utils"
)

var boxTab = func() map[string]Kind {
	m := make(map[string]Kind, len(Kinds))
	for _, k := range Kinds {
		m[kindTab[k].box] = k
	}
	return m
}()

// ObjectTypeOf returns the canonical box type of a primitive type, or the type
// itself if it is already a reference type.
func ObjectTypeOf(vt Type) (Type, error) {
	if !vt.IsPrimitive() {
		return vt, nil
	} else if ki, ok := vt.K.info(); ok {
		return Reference(ki.box), nil
	} else {
		return Type{}, utils.EKind(vt.K.String())
	}
}

// DescriptorOf returns the binary descriptor of a type.
func DescriptorOf(vt Type) (string, error) {
	if vt.IsPrimitive() {
		if ki, ok := vt.K.info(); ok {
			return ki.desc, nil
		} else {
			return "", utils.EKind(vt.K.String())
		}
	}

	/* array types are already named by their descriptors */
	if name := vt.InternalName(); strings.HasPrefix(name, "[") {
		return name, nil
	} else {
		return "L" + name + ";", nil
	}
}

// CoercionNameOf returns the name of the coercion function that unwraps the
// given box type, or an empty string if it is not one of the box types.
func CoercionNameOf(boxed Type) string {
	if k, ok := unboxedKindOf(boxed); ok {
		return kindTab[k].cast
	} else {
		return ""
	}
}

// UnboxMethodOf returns the name of the instance method that unwraps the given
// box type, together with the primitive type it yields.
func UnboxMethodOf(boxed Type) (string, Type, bool) {
	if k, ok := unboxedKindOf(boxed); ok {
		return kindTab[k].unbox, Primitive(k), true
	} else {
		return "", Type{}, false
	}
}

func unboxedKindOf(vt Type) (Kind, bool) {
	if vt.K != K_ref {
		return 0, false
	} else {
		k, ok := boxTab[vt.N]
		return k, ok
	}
}

// CoercionPlan tells how to turn the value returned by the get accessor back
// into the declared type of a field.
type CoercionPlan struct {
	Name string
	Desc string
}

func (self CoercionPlan) IsTrivial() bool {
	return self.Name == ""
}

func (self CoercionPlan) String() string {
	if self.IsTrivial() {
		return "(none)"
	} else {
		return self.Name + self.Desc
	}
}

// FieldDesc is the resolved type metadata of a single rewritable field.
type FieldDesc struct {
	Name  string
	Type  Type
	Boxed Type
	Plan  CoercionPlan
}

func (self *FieldDesc) String() string {
	return fmt.Sprintf("%s %s (boxed as %s, coercion %s)", self.Type, self.Name, self.Boxed, self.Plan)
}

// ResolveField builds the field descriptor of a field declared with the given
// binary type descriptor.
func ResolveField(name string, desc string) (*FieldDesc, error) {
	vt, err := ParseDescriptor(desc)
	if err != nil {
		return nil, err
	}
	return ResolveFieldType(name, vt)
}

// ResolveFieldType is like ResolveField, with an already parsed type.
func ResolveFieldType(name string, vt Type) (*FieldDesc, error) {
	var err error
	var bt Type
	var od string
	var fd string

	/* void is a primitive kind, but never the type of a field */
	if vt.K == K_void {
		return nil, utils.ENotField(vt.K.String())
	}

	/* find the box type */
	if bt, err = ObjectTypeOf(vt); err != nil {
		return nil, err
	}

	/* descriptors of both the declared and the boxed type */
	if od, err = DescriptorOf(vt); err != nil {
		return nil, err
	}
	if fd, err = DescriptorOf(bt); err != nil {
		return nil, err
	}

	/* no coercion is needed if the descriptors are the same */
	ret := &FieldDesc{Name: name, Type: vt, Boxed: bt}
	if od != fd {
		ret.Plan = CoercionPlan{
			Name: CoercionNameOf(bt),
			Desc: "(" + fd + ")" + od,
		}
	}
	return ret, nil
}
