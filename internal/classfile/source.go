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
	"fmt"
	"io"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/azn9/fieldhook/internal/defs"
	"github.com/azn9/fieldhook/internal/ir"
)

type sourceClass struct {
	Name    string         `toml:"name"`
	Super   string         `toml:"super,omitempty"`
	Access  []string       `toml:"access,omitempty"`
	Fields  []sourceField  `toml:"fields,omitempty"`
	Methods []sourceMethod `toml:"methods,omitempty"`
}

type sourceField struct {
	Name       string   `toml:"name"`
	Descriptor string   `toml:"descriptor"`
	Access     []string `toml:"access,omitempty"`
}

type sourceMethod struct {
	Name       string   `toml:"name"`
	Descriptor string   `toml:"descriptor"`
	Access     []string `toml:"access,omitempty"`
	Code       string   `toml:"code"`
}

// ParseSource parses a class written in the TOML source format. Method bodies
// are given as instruction listings.
func ParseSource(src string) (*Class, error) {
	var sc sourceClass
	if _, err := toml.Decode(src, &sc); err != nil {
		return nil, err
	} else {
		return sc.build()
	}
}

// ParseSourceFile is like ParseSource, but reads the source from a file.
func ParseSourceFile(path string) (*Class, error) {
	var sc sourceClass
	if _, err := toml.DecodeFile(path, &sc); err != nil {
		return nil, err
	} else {
		return sc.build()
	}
}

// WriteSource writes the class in the TOML source format.
func WriteSource(w io.Writer, cls *Class) error {
	sc := sourceClass{
		Name:   cls.Name,
		Super:  cls.Super,
		Access: cls.Access.Names(),
	}
	for _, fv := range cls.Fields {
		sc.Fields = append(sc.Fields, sourceField{
			Name:       fv.Name,
			Descriptor: fv.Descriptor,
			Access:     fv.Access.Names(),
		})
	}
	for _, mv := range cls.Methods {
		sc.Methods = append(sc.Methods, sourceMethod{
			Name:       mv.Name,
			Descriptor: mv.Descriptor,
			Access:     mv.Access.Names(),
			Code:       mv.Code.Disassemble(),
		})
	}
	return toml.NewEncoder(w).Encode(sc)
}

func (self *sourceClass) build() (*Class, error) {
	var err error
	var acc AccessFlags

	/* class header */
	if self.Name == "" {
		return nil, fmt.Errorf("class name is missing")
	}
	if acc, err = parseAccess(self.Access); err != nil {
		return nil, fmt.Errorf("class %s: %w", self.Name, err)
	}

	/* the name is kept in the slash-separated form */
	ret := &Class{
		Name:   strings.ReplaceAll(self.Name, ".", "/"),
		Super:  strings.ReplaceAll(self.Super, ".", "/"),
		Access: acc,
	}

	/* fields */
	for _, sf := range self.Fields {
		if fv, err := sf.build(); err != nil {
			return nil, fmt.Errorf("class %s: %w", ret.Name, err)
		} else if ret.Field(fv.Name) != nil {
			return nil, fmt.Errorf("class %s: duplicated field %s", ret.Name, fv.Name)
		} else {
			ret.Fields = append(ret.Fields, fv)
		}
	}

	/* methods */
	for _, sm := range self.Methods {
		if mv, err := sm.build(); err != nil {
			return nil, fmt.Errorf("class %s: %w", ret.Name, err)
		} else if ret.Method(mv.Name, mv.Descriptor) != nil {
			return nil, fmt.Errorf("class %s: duplicated method %s", ret.Name, mv)
		} else {
			ret.Methods = append(ret.Methods, mv)
		}
	}
	return ret, nil
}

func (self *sourceField) build() (*Field, error) {
	acc, err := parseAccess(self.Access)
	if err != nil {
		return nil, fmt.Errorf("field %s: %w", self.Name, err)
	}
	if self.Name == "" {
		return nil, fmt.Errorf("field name is missing")
	}
	if _, err = defs.ParseDescriptor(self.Descriptor); err != nil {
		return nil, fmt.Errorf("field %s: %w", self.Name, err)
	}
	return &Field{
		Name:       self.Name,
		Descriptor: self.Descriptor,
		Access:     acc,
	}, nil
}

func (self *sourceMethod) build() (*Method, error) {
	var err error
	var acc AccessFlags
	var code ir.Program

	/* method header */
	if self.Name == "" {
		return nil, fmt.Errorf("method name is missing")
	}
	if acc, err = parseAccess(self.Access); err != nil {
		return nil, fmt.Errorf("method %s: %w", self.Name, err)
	}
	if _, _, err = defs.ParseMethodDescriptor(self.Descriptor); err != nil {
		return nil, fmt.Errorf("method %s: %w", self.Name, err)
	}

	/* method body */
	if code, err = ir.Assemble(self.Code); err != nil {
		return nil, fmt.Errorf("method %s%s: %w", self.Name, self.Descriptor, err)
	}
	return &Method{
		Name:       self.Name,
		Descriptor: self.Descriptor,
		Access:     acc,
		Code:       code,
	}, nil
}

func parseAccess(names []string) (AccessFlags, error) {
	var ret AccessFlags
	for _, name := range names {
		if fv, ok := LookupAccessFlag(strings.TrimSpace(name)); !ok {
			return 0, fmt.Errorf("invalid access modifier %q", name)
		} else {
			ret |= fv
		}
	}
	return ret, nil
}
