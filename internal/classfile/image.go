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
	"context"
	"fmt"

	"github.com/apache/thrift/lib/go/thrift"
	"github.com/azn9/fieldhook/internal/ir"
)

// Magic is written in front of every class image.
const Magic = 0x46484b01

const (
	_C_string = 1
	_C_int    = 2
	_C_long   = 3
	_C_float  = 4
	_C_double = 5
)

// Marshal encodes the class into its binary image, a Thrift struct serialized
// with the binary protocol.
func Marshal(cls *Class) ([]byte, error) {
	buf := thrift.NewTMemoryBuffer()
	enc := &encoder{thrift.NewTBinaryProtocolTransport(buf)}

	/* header, followed by the class itself */
	if err := enc.p.WriteI32(Magic); err != nil {
		return nil, err
	}
	if err := enc.class(cls); err != nil {
		return nil, err
	}
	if err := enc.p.Flush(context.Background()); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Unmarshal decodes a binary image produced by Marshal.
func Unmarshal(buf []byte) (*Class, error) {
	mem := thrift.NewTMemoryBufferLen(len(buf))
	dec := &decoder{thrift.NewTBinaryProtocolTransport(mem)}

	/* load the buffer */
	if _, err := mem.Write(buf); err != nil {
		return nil, err
	}

	/* check the header */
	if mv, err := dec.p.ReadI32(); err != nil {
		return nil, err
	} else if mv != Magic {
		return nil, fmt.Errorf("invalid class image magic: %#x", uint32(mv))
	}

	/* decode the class */
	ret := new(Class)
	if err := dec.class(ret); err != nil {
		return nil, fmt.Errorf("invalid class image: %w", err)
	} else if ret.Name == "" {
		return nil, fmt.Errorf("invalid class image: class name is missing")
	} else {
		return ret, nil
	}
}

type encoder struct {
	p thrift.TProtocol
}

func (self *encoder) str(id int16, name string, v string) error {
	if err := self.p.WriteFieldBegin(name, thrift.STRING, id); err != nil {
		return err
	}
	if err := self.p.WriteString(v); err != nil {
		return err
	}
	return self.p.WriteFieldEnd()
}

func (self *encoder) i16(id int16, name string, v int16) error {
	if err := self.p.WriteFieldBegin(name, thrift.I16, id); err != nil {
		return err
	}
	if err := self.p.WriteI16(v); err != nil {
		return err
	}
	return self.p.WriteFieldEnd()
}

func (self *encoder) list(id int16, name string, n int, fn func(i int) error) error {
	if err := self.p.WriteFieldBegin(name, thrift.LIST, id); err != nil {
		return err
	}
	if err := self.p.WriteListBegin(thrift.STRUCT, n); err != nil {
		return err
	}
	for i := 0; i < n; i++ {
		if err := fn(i); err != nil {
			return err
		}
	}
	if err := self.p.WriteListEnd(); err != nil {
		return err
	}
	return self.p.WriteFieldEnd()
}

func (self *encoder) class(cls *Class) error {
	if err := self.p.WriteStructBegin("Class"); err != nil {
		return err
	}
	if err := self.str(1, "name", cls.Name); err != nil {
		return err
	}
	if err := self.str(2, "super", cls.Super); err != nil {
		return err
	}
	if err := self.i16(3, "access", int16(cls.Access)); err != nil {
		return err
	}
	if err := self.list(4, "fields", len(cls.Fields), func(i int) error { return self.field(cls.Fields[i]) }); err != nil {
		return err
	}
	if err := self.list(5, "methods", len(cls.Methods), func(i int) error { return self.method(cls.Methods[i]) }); err != nil {
		return err
	}
	if err := self.p.WriteFieldStop(); err != nil {
		return err
	}
	return self.p.WriteStructEnd()
}

func (self *encoder) field(fv *Field) error {
	if err := self.p.WriteStructBegin("Field"); err != nil {
		return err
	}
	if err := self.str(1, "name", fv.Name); err != nil {
		return err
	}
	if err := self.str(2, "descriptor", fv.Descriptor); err != nil {
		return err
	}
	if err := self.i16(3, "access", int16(fv.Access)); err != nil {
		return err
	}
	if err := self.p.WriteFieldStop(); err != nil {
		return err
	}
	return self.p.WriteStructEnd()
}

func (self *encoder) method(mv *Method) error {
	if err := self.p.WriteStructBegin("Method"); err != nil {
		return err
	}
	if err := self.str(1, "name", mv.Name); err != nil {
		return err
	}
	if err := self.str(2, "descriptor", mv.Descriptor); err != nil {
		return err
	}
	if err := self.i16(3, "access", int16(mv.Access)); err != nil {
		return err
	}
	if err := self.list(4, "code", len(mv.Code), func(i int) error { return self.instr(mv.Code[i]) }); err != nil {
		return err
	}
	if err := self.p.WriteFieldStop(); err != nil {
		return err
	}
	return self.p.WriteStructEnd()
}

func (self *encoder) instr(ins ir.Instr) error {
	if err := self.p.WriteStructBegin("Instr"); err != nil {
		return err
	}

	/* opcode */
	if err := self.p.WriteFieldBegin("op", thrift.BYTE, 1); err != nil {
		return err
	}
	if err := self.p.WriteByte(int8(ins.Op)); err != nil {
		return err
	}
	if err := self.p.WriteFieldEnd(); err != nil {
		return err
	}

	/* immediate value */
	if ins.Iv != 0 {
		if err := self.p.WriteFieldBegin("iv", thrift.I64, 2); err != nil {
			return err
		}
		if err := self.p.WriteI64(ins.Iv); err != nil {
			return err
		}
		if err := self.p.WriteFieldEnd(); err != nil {
			return err
		}
	}

	/* member references */
	if ins.Owner != "" {
		if err := self.str(3, "owner", ins.Owner); err != nil {
			return err
		}
	}
	if ins.Name != "" {
		if err := self.str(4, "name", ins.Name); err != nil {
			return err
		}
	}
	if ins.Desc != "" {
		if err := self.str(5, "desc", ins.Desc); err != nil {
			return err
		}
	}
	if ins.Itf {
		if err := self.p.WriteFieldBegin("itf", thrift.BOOL, 6); err != nil {
			return err
		}
		if err := self.p.WriteBool(true); err != nil {
			return err
		}
		if err := self.p.WriteFieldEnd(); err != nil {
			return err
		}
	}

	/* constant operand */
	if ins.Cv != nil {
		if err := self.constant(ins.Cv); err != nil {
			return err
		}
	}
	if err := self.p.WriteFieldStop(); err != nil {
		return err
	}
	return self.p.WriteStructEnd()
}

func (self *encoder) constant(cv interface{}) error {
	var tag int8
	var err error

	/* constant tag */
	switch cv.(type) {
	case string:
		tag = _C_string
	case int32:
		tag = _C_int
	case int64:
		tag = _C_long
	case float32:
		tag = _C_float
	case float64:
		tag = _C_double
	default:
		return fmt.Errorf("unsupported constant type: %T", cv)
	}
	if err = self.p.WriteFieldBegin("ctag", thrift.BYTE, 7); err != nil {
		return err
	}
	if err = self.p.WriteByte(tag); err != nil {
		return err
	}
	if err = self.p.WriteFieldEnd(); err != nil {
		return err
	}

	/* constant value */
	switch v := cv.(type) {
	case string:
		return self.str(8, "cstr", v)
	case int32:
		return self.i64(9, int64(v))
	case int64:
		return self.i64(9, v)
	case float32:
		return self.f64(10, float64(v))
	case float64:
		return self.f64(10, v)
	default:
		panic("unreachable")
	}
}

func (self *encoder) i64(id int16, v int64) error {
	if err := self.p.WriteFieldBegin("cint", thrift.I64, id); err != nil {
		return err
	}
	if err := self.p.WriteI64(v); err != nil {
		return err
	}
	return self.p.WriteFieldEnd()
}

func (self *encoder) f64(id int16, v float64) error {
	if err := self.p.WriteFieldBegin("cdbl", thrift.DOUBLE, id); err != nil {
		return err
	}
	if err := self.p.WriteDouble(v); err != nil {
		return err
	}
	return self.p.WriteFieldEnd()
}
