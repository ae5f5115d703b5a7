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

package classfile

import (
	"strings"

	"github.com/azn9/fieldhook/internal/ir"
)

type AccessFlags uint16

const (
	ACC_PUBLIC       AccessFlags = 0x0001
	ACC_PRIVATE      AccessFlags = 0x0002
	ACC_PROTECTED    AccessFlags = 0x0004
	ACC_STATIC       AccessFlags = 0x0008
	ACC_FINAL        AccessFlags = 0x0010
	ACC_SYNCHRONIZED AccessFlags = 0x0020
	ACC_VOLATILE     AccessFlags = 0x0040
	ACC_TRANSIENT    AccessFlags = 0x0080
	ACC_NATIVE       AccessFlags = 0x0100
	ACC_ABSTRACT     AccessFlags = 0x0400
)

var _FlagNames = [...]struct {
	flag AccessFlags
	name string
}{
	{ACC_PUBLIC, "public"},
	{ACC_PRIVATE, "private"},
	{ACC_PROTECTED, "protected"},
	{ACC_STATIC, "static"},
	{ACC_FINAL, "final"},
	{ACC_SYNCHRONIZED, "synchronized"},
	{ACC_VOLATILE, "volatile"},
	{ACC_TRANSIENT, "transient"},
	{ACC_NATIVE, "native"},
	{ACC_ABSTRACT, "abstract"},
}

func (self AccessFlags) IsStatic() bool    { return self&ACC_STATIC != 0 }
func (self AccessFlags) IsFinal() bool     { return self&ACC_FINAL != 0 }
func (self AccessFlags) IsTransient() bool { return self&ACC_TRANSIENT != 0 }
func (self AccessFlags) IsPrivate() bool   { return self&ACC_PRIVATE != 0 }

func (self AccessFlags) Names() []string {
	var ret []string
	for _, fn := range _FlagNames {
		if self&fn.flag != 0 {
			ret = append(ret, fn.name)
		}
	}
	return ret
}

func (self AccessFlags) String() string {
	return strings.Join(self.Names(), " ")
}

// LookupAccessFlag converts a modifier keyword into its flag.
func LookupAccessFlag(name string) (AccessFlags, bool) {
	for _, fn := range _FlagNames {
		if fn.name == name {
			return fn.flag, true
		}
	}
	return 0, false
}

type Field struct {
	Name       string
	Descriptor string
	Access     AccessFlags
}

type Method struct {
	Name       string
	Descriptor string
	Access     AccessFlags
	Code       ir.Program
}

func (self *Method) String() string {
	return self.Name + self.Descriptor
}

type Class struct {
	Name    string
	Super   string
	Access  AccessFlags
	Fields  []*Field
	Methods []*Method
}

func (self *Class) Field(name string) *Field {
	for _, fv := range self.Fields {
		if fv.Name == name {
			return fv
		}
	}
	return nil
}

func (self *Class) Method(name string, desc string) *Method {
	for _, mv := range self.Methods {
		if mv.Name == name && mv.Descriptor == desc {
			return mv
		}
	}
	return nil
}

// EligibleFields lists the fields whose accesses may be redirected, in
// declaration order. Static, final and transient fields are never eligible.
func (self *Class) EligibleFields() []*Field {
	var ret []*Field
	for _, fv := range self.Fields {
		if !fv.Access.IsStatic() && !fv.Access.IsFinal() && !fv.Access.IsTransient() {
			ret = append(ret, fv)
		}
	}
	return ret
}

// Clone makes a copy of the class that shares nothing mutable with the
// original, method bodies included.
func (self *Class) Clone() *Class {
	ret := &Class{
		Name:    self.Name,
		Super:   self.Super,
		Access:  self.Access,
		Fields:  make([]*Field, 0, len(self.Fields)),
		Methods: make([]*Method, 0, len(self.Methods)),
	}
	for _, fv := range self.Fields {
		fc := *fv
		ret.Fields = append(ret.Fields, &fc)
	}
	for _, mv := range self.Methods {
		mc := *mv
		mc.Code = append(ir.Program(nil), mv.Code...)
		ret.Methods = append(ret.Methods, &mc)
	}
	return ret
}
