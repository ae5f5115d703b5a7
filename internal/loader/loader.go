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

package loader

import (
	"fmt"
	"reflect"
	"sync"
	"sync/atomic"

	"github.com/azn9/fieldhook/internal/accessor"
	"github.com/azn9/fieldhook/internal/classfile"
	"github.com/azn9/fieldhook/internal/defs"
	"github.com/azn9/fieldhook/internal/utils"
)

var (
	DefineCount   uint64 = 0
	RedefineCount uint64 = 0
	RejectCount   uint64 = 0
)

// Factory creates a new, zero-initialized instance of a class. It must return
// a pointer to a struct.
type Factory func() interface{}

type binding struct {
	cls     *classfile.Class
	vt      reflect.Type
	factory Factory
	version int
}

// Loader keeps the active definition of every class, and the Go type that
// stores the instances of each one.
type Loader struct {
	mu      sync.RWMutex
	classes map[string]*binding
}

func New() *Loader {
	return &Loader{classes: make(map[string]*binding)}
}

// Define binds a class to the Go type produced by factory.
func (self *Loader) Define(cls *classfile.Class, factory Factory) error {
	if factory == nil {
		return utils.ELink(cls.Name, "nil instance factory")
	}

	/* the factory must produce pointers to structs */
	vt := reflect.TypeOf(factory())
	if vt == nil || vt.Kind() != reflect.Ptr || vt.Elem().Kind() != reflect.Struct {
		return utils.ELink(cls.Name, fmt.Sprintf("factory must return a pointer to struct, not %v", vt))
	}

	/* check the fields against the Go type */
	if err := validate(cls, vt.Elem()); err != nil {
		atomic.AddUint64(&RejectCount, 1)
		return err
	}

	/* add to class table */
	self.mu.Lock()
	defer self.mu.Unlock()

	/* check for duplicates */
	if _, ok := self.classes[cls.Name]; ok {
		atomic.AddUint64(&RejectCount, 1)
		return utils.ELink(cls.Name, "class is already defined")
	}

	/* keep a private copy of the definition */
	atomic.AddUint64(&DefineCount, 1)
	self.classes[cls.Name] = &binding{cls: cls.Clone(), vt: vt.Elem(), factory: factory}
	return nil
}

// Redefine replaces the definition of a class with the one decoded from a class
// image. The previous definition stays active if anything goes wrong.
func (self *Loader) Redefine(name string, image []byte) error {
	if cls, err := classfile.Unmarshal(image); err != nil {
		atomic.AddUint64(&RejectCount, 1)
		return utils.ELinkBy(name, "cannot decode class image", err)
	} else if cls.Name != name {
		atomic.AddUint64(&RejectCount, 1)
		return utils.ELink(name, fmt.Sprintf("class image defines %s", cls.Name))
	} else {
		return self.RedefineClass(cls)
	}
}

// RedefineClass is like Redefine, with an already decoded class.
func (self *Loader) RedefineClass(cls *classfile.Class) error {
	self.mu.Lock()
	defer self.mu.Unlock()

	/* find the current definition */
	old, ok := self.classes[cls.Name]
	if !ok {
		atomic.AddUint64(&RejectCount, 1)
		return utils.ELink(cls.Name, "class is not defined")
	}

	/* the shape of the class cannot change, only the method bodies */
	if err := sameShape(old.cls, cls); err != nil {
		atomic.AddUint64(&RejectCount, 1)
		return err
	}
	if err := validate(cls, old.vt); err != nil {
		atomic.AddUint64(&RejectCount, 1)
		return err
	}

	/* swap in the new definition */
	atomic.AddUint64(&RedefineCount, 1)
	self.classes[cls.Name] = &binding{
		cls:     cls.Clone(),
		vt:      old.vt,
		factory: old.factory,
		version: old.version + 1,
	}
	return nil
}

// Lookup returns a copy of the active definition of a class.
func (self *Loader) Lookup(name string) (*classfile.Class, bool) {
	if b := self.binding(name); b == nil {
		return nil, false
	} else {
		return b.cls.Clone(), true
	}
}

// Version returns how many times a class has been redefined, or -1 if it is
// not defined.
func (self *Loader) Version(name string) int {
	if b := self.binding(name); b == nil {
		return -1
	} else {
		return b.version
	}
}

// LookupMethod finds a method of the active definition of a class.
func (self *Loader) LookupMethod(class string, name string, desc string) (*classfile.Method, error) {
	if b := self.binding(class); b == nil {
		return nil, utils.ELink(class, "class is not defined")
	} else if mv := b.cls.Method(name, desc); mv == nil {
		return nil, utils.ELink(class, fmt.Sprintf("no such method: %s%s", name, desc))
	} else {
		return mv, nil
	}
}

// NewInstance creates a new instance of a class.
func (self *Loader) NewInstance(class string) (interface{}, error) {
	if b := self.binding(class); b == nil {
		return nil, utils.ELink(class, "class is not defined")
	} else {
		return b.factory(), nil
	}
}

func (self *Loader) binding(name string) *binding {
	self.mu.RLock()
	defer self.mu.RUnlock()
	return self.classes[name]
}

func validate(cls *classfile.Class, vt reflect.Type) error {
	sd, err := accessor.ResolveStruct(vt)
	if err != nil {
		return utils.ELinkBy(cls.Name, "invalid instance type", err)
	}

	/* every field must have a valid type */
	for _, fv := range cls.Fields {
		fd, err := defs.ResolveField(fv.Name, fv.Descriptor)
		if err != nil {
			return utils.ELinkBy(cls.Name, fmt.Sprintf("invalid field %s", fv.Name), err)
		}

		/* static fields are not stored in instances */
		if fv.Access.IsStatic() {
			continue
		}

		/* instance fields must be stored in the Go type */
		sf, ok := sd.Lookup(fv.Name)
		if !ok {
			return utils.ELink(cls.Name, fmt.Sprintf("field %s is not stored by %s", fv.Name, vt))
		}

		/* primitive fields must match exactly */
		if gt := accessor.GoTypeOf(fd.Type); gt != nil && gt != sf.Type {
			return utils.ELink(cls.Name, fmt.Sprintf("field %s has type %s, but is stored as %s", fv.Name, fd.Type, sf.Type))
		}
	}
	return nil
}

func sameShape(old *classfile.Class, cls *classfile.Class) error {
	if old.Super != cls.Super {
		return utils.ELink(cls.Name, "super class cannot be changed")
	}
	if len(old.Fields) != len(cls.Fields) {
		return utils.ELink(cls.Name, "fields cannot be added or removed")
	}

	/* fields must be exactly the same */
	for i, fv := range cls.Fields {
		if *fv != *old.Fields[i] {
			return utils.ELink(cls.Name, fmt.Sprintf("field %s cannot be changed", fv.Name))
		}
	}

	/* methods can only be replaced */
	if len(old.Methods) != len(cls.Methods) {
		return utils.ELink(cls.Name, "methods cannot be added or removed")
	}
	for _, mv := range cls.Methods {
		if old.Method(mv.Name, mv.Descriptor) == nil {
			return utils.ELink(cls.Name, fmt.Sprintf("method %s cannot be added", mv))
		}
	}
	return nil
}
