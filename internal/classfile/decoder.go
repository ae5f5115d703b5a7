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

	"github.com/apache/thrift/lib/go/thrift"
	"github.com/azn9/fieldhook/internal/ir"
)

type decoder struct {
	p thrift.TProtocol
}

/* visit calls fn for every field of a struct; unknown fields are skipped */
func (self *decoder) visit(fn func(id int16, tt thrift.TType) (bool, error)) error {
	if _, err := self.p.ReadStructBegin(); err != nil {
		return err
	}
	for {
		_, tt, id, err := self.p.ReadFieldBegin()
		if err != nil {
			return err
		}

		/* end of struct */
		if tt == thrift.STOP {
			break
		}

		/* handle the field, skip if unknown */
		if ok, err := fn(id, tt); err != nil {
			return err
		} else if !ok {
			if err = self.p.Skip(tt); err != nil {
				return err
			}
		}
		if err = self.p.ReadFieldEnd(); err != nil {
			return err
		}
	}
	return self.p.ReadStructEnd()
}

func (self *decoder) list(tt thrift.TType, fn func() error) error {
	if tt != thrift.LIST {
		return fmt.Errorf("list expected, got %s", tt)
	}
	et, n, err := self.p.ReadListBegin()
	if err != nil {
		return err
	}
	if et != thrift.STRUCT {
		return fmt.Errorf("list of structs expected, got list of %s", et)
	}
	for i := 0; i < n; i++ {
		if err = fn(); err != nil {
			return err
		}
	}
	return self.p.ReadListEnd()
}

func expect(tt thrift.TType, want thrift.TType) error {
	if tt != want {
		return fmt.Errorf("%s expected, got %s", want, tt)
	} else {
		return nil
	}
}

func (self *decoder) str(tt thrift.TType, v *string) error {
	var err error
	if err = expect(tt, thrift.STRING); err != nil {
		return err
	}
	*v, err = self.p.ReadString()
	return err
}

func (self *decoder) access(tt thrift.TType, v *AccessFlags) error {
	if err := expect(tt, thrift.I16); err != nil {
		return err
	}
	iv, err := self.p.ReadI16()
	*v = AccessFlags(iv)
	return err
}

func (self *decoder) class(cls *Class) error {
	return self.visit(func(id int16, tt thrift.TType) (bool, error) {
		switch id {
		case 1:
			return true, self.str(tt, &cls.Name)
		case 2:
			return true, self.str(tt, &cls.Super)
		case 3:
			return true, self.access(tt, &cls.Access)
		case 4:
			return true, self.list(tt, func() error {
				fv := new(Field)
				cls.Fields = append(cls.Fields, fv)
				return self.field(fv)
			})
		case 5:
			return true, self.list(tt, func() error {
				mv := new(Method)
				cls.Methods = append(cls.Methods, mv)
				return self.method(mv)
			})
		default:
			return false, nil
		}
	})
}

func (self *decoder) field(fv *Field) error {
	return self.visit(func(id int16, tt thrift.TType) (bool, error) {
		switch id {
		case 1:
			return true, self.str(tt, &fv.Name)
		case 2:
			return true, self.str(tt, &fv.Descriptor)
		case 3:
			return true, self.access(tt, &fv.Access)
		default:
			return false, nil
		}
	})
}

func (self *decoder) method(mv *Method) error {
	return self.visit(func(id int16, tt thrift.TType) (bool, error) {
		switch id {
		case 1:
			return true, self.str(tt, &mv.Name)
		case 2:
			return true, self.str(tt, &mv.Descriptor)
		case 3:
			return true, self.access(tt, &mv.Access)
		case 4:
			return true, self.list(tt, func() error {
				ins, err := self.instr()
				mv.Code = append(mv.Code, ins)
				return err
			})
		default:
			return false, nil
		}
	})
}

func (self *decoder) instr() (ir.Instr, error) {
	var ret ir.Instr
	var tag int8
	var cint int64
	var cdbl float64
	var cstr string

	/* read all the fields */
	err := self.visit(func(id int16, tt thrift.TType) (bool, error) {
		var err error
		switch id {
		case 1:
			var op int8
			if err = expect(tt, thrift.BYTE); err == nil {
				op, err = self.p.ReadByte()
				ret.Op = ir.OpCode(uint8(op))
			}
		case 2:
			if err = expect(tt, thrift.I64); err == nil {
				ret.Iv, err = self.p.ReadI64()
			}
		case 3:
			err = self.str(tt, &ret.Owner)
		case 4:
			err = self.str(tt, &ret.Name)
		case 5:
			err = self.str(tt, &ret.Desc)
		case 6:
			if err = expect(tt, thrift.BOOL); err == nil {
				ret.Itf, err = self.p.ReadBool()
			}
		case 7:
			if err = expect(tt, thrift.BYTE); err == nil {
				tag, err = self.p.ReadByte()
			}
		case 8:
			err = self.str(tt, &cstr)
		case 9:
			if err = expect(tt, thrift.I64); err == nil {
				cint, err = self.p.ReadI64()
			}
		case 10:
			if err = expect(tt, thrift.DOUBLE); err == nil {
				cdbl, err = self.p.ReadDouble()
			}
		default:
			return false, nil
		}
		return true, err
	})

	/* check for errors */
	if err != nil {
		return ret, err
	}
	if !ret.Op.IsValid() {
		return ret, fmt.Errorf("invalid opcode: %d", ret.Op)
	}

	/* rebuild the constant operand */
	switch tag {
	case 0:
		break
	case _C_string:
		ret.Cv = cstr
	case _C_int:
		ret.Cv = int32(cint)
	case _C_long:
		ret.Cv = cint
	case _C_float:
		ret.Cv = float32(cdbl)
	case _C_double:
		ret.Cv = cdbl
	default:
		return ret, fmt.Errorf("invalid constant tag: %d", tag)
	}
	return ret, nil
}
