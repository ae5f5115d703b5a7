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

package ir

import (
	"fmt"
	"strconv"
	"strings"
)

// Instr is a single instruction event of a method body.
type Instr struct {
	Op    OpCode
	Iv    int64
	Cv    interface{}
	Owner string
	Name  string
	Desc  string
	Itf   bool
}

func Simple(op OpCode) Instr                  { return Instr{Op: op} }
func Var(op OpCode, slot int) Instr           { return Instr{Op: op, Iv: int64(slot)} }
func Int(v int32) Instr                       { return Instr{Op: OP_iconst, Iv: int64(v)} }
func Ldc(v interface{}) Instr                 { return Instr{Op: OP_ldc, Cv: v} }
func New(owner string) Instr                  { return Instr{Op: OP_new, Owner: owner} }
func Label(id int) Instr                      { return Instr{Op: OP_label, Iv: int64(id)} }
func Jump(op OpCode, label int) Instr         { return Instr{Op: op, Iv: int64(label)} }
func Field(op OpCode, owner, name, desc string) Instr {
	return Instr{Op: op, Owner: owner, Name: name, Desc: desc}
}

func Method(op OpCode, owner, name, desc string, itf bool) Instr {
	return Instr{Op: op, Owner: owner, Name: name, Desc: desc, Itf: itf}
}

// IsSelfLoad tells if the instruction pushes the receiver of the current method.
func (self Instr) IsSelfLoad() bool {
	return self.Op == OP_aload && self.Iv == 0
}

func (self Instr) Disassemble() string {
	switch _OpForms[self.Op] {
	case _F_label:
		return fmt.Sprintf("L%d:", self.Iv)
	case _F_var, _F_int:
		return fmt.Sprintf("%s %d", self.Op, self.Iv)
	case _F_ldc:
		return fmt.Sprintf("%s %s", self.Op, formatConst(self.Cv))
	case _F_type:
		return fmt.Sprintf("%s %s", self.Op, self.Owner)
	case _F_field:
		return fmt.Sprintf("%s %s %s %s", self.Op, self.Owner, self.Name, self.Desc)
	case _F_jump:
		return fmt.Sprintf("%s L%d", self.Op, self.Iv)
	case _F_method:
		if self.Itf {
			return fmt.Sprintf("%s %s %s %s itf", self.Op, self.Owner, self.Name, self.Desc)
		} else {
			return fmt.Sprintf("%s %s %s %s", self.Op, self.Owner, self.Name, self.Desc)
		}
	default:
		return self.Op.String()
	}
}

func (self Instr) String() string {
	return self.Disassemble()
}

func formatConst(v interface{}) string {
	switch cv := v.(type) {
	case string:
		return strconv.Quote(cv)
	case int32:
		return strconv.FormatInt(int64(cv), 10)
	case int64:
		return strconv.FormatInt(cv, 10) + "L"
	case float32:
		return strconv.FormatFloat(float64(cv), 'g', -1, 32) + "F"
	case float64:
		return strconv.FormatFloat(cv, 'g', -1, 64) + "D"
	default:
		return fmt.Sprintf("<%T %v>", v, v)
	}
}

// Program is the ordered instruction stream of one method body.
type Program []Instr

func (self Program) Disassemble() string {
	ret := make([]string, 0, len(self))
	for _, ins := range self {
		if ins.Op == OP_label {
			ret = append(ret, ins.Disassemble())
		} else {
			ret = append(ret, "    "+ins.Disassemble())
		}
	}
	return strings.Join(ret, "\n")
}

// Labels returns the highest label ID referenced or defined in the program.
func (self Program) Labels() int {
	n := -1
	for _, ins := range self {
		if (ins.Op == OP_label || ins.Op.IsBranch()) && int(ins.Iv) > n {
			n = int(ins.Iv)
		}
	}
	return n
}

// Builder appends instructions to a Program.
type Builder struct {
	p Program
}

func CreateBuilder() *Builder {
	return new(Builder)
}

func (self *Builder) Build() Program {
	return self.p
}

func (self *Builder) Add(ins ...Instr) *Builder {
	self.p = append(self.p, ins...)
	return self
}

func (self *Builder) NOP() *Builder              { return self.Add(Simple(OP_nop)) }
func (self *Builder) L(id int) *Builder          { return self.Add(Label(id)) }
func (self *Builder) NULL() *Builder             { return self.Add(Simple(OP_aconst_null)) }
func (self *Builder) ICONST(v int32) *Builder    { return self.Add(Int(v)) }
func (self *Builder) LDC(v interface{}) *Builder { return self.Add(Ldc(v)) }
func (self *Builder) ILOAD(i int) *Builder       { return self.Add(Var(OP_iload, i)) }
func (self *Builder) LLOAD(i int) *Builder       { return self.Add(Var(OP_lload, i)) }
func (self *Builder) ALOAD(i int) *Builder       { return self.Add(Var(OP_aload, i)) }
func (self *Builder) ISTORE(i int) *Builder      { return self.Add(Var(OP_istore, i)) }
func (self *Builder) ASTORE(i int) *Builder      { return self.Add(Var(OP_astore, i)) }
func (self *Builder) POP() *Builder              { return self.Add(Simple(OP_pop)) }
func (self *Builder) DUP() *Builder              { return self.Add(Simple(OP_dup)) }
func (self *Builder) IADD() *Builder             { return self.Add(Simple(OP_iadd)) }
func (self *Builder) NEW(owner string) *Builder  { return self.Add(New(owner)) }
func (self *Builder) GOTO(l int) *Builder        { return self.Add(Jump(OP_goto, l)) }
func (self *Builder) IFEQ(l int) *Builder        { return self.Add(Jump(OP_ifeq, l)) }
func (self *Builder) IFNULL(l int) *Builder      { return self.Add(Jump(OP_ifnull, l)) }
func (self *Builder) RETURN() *Builder           { return self.Add(Simple(OP_return)) }
func (self *Builder) IRETURN() *Builder          { return self.Add(Simple(OP_ireturn)) }
func (self *Builder) ARETURN() *Builder          { return self.Add(Simple(OP_areturn)) }

func (self *Builder) GETFIELD(owner, name, desc string) *Builder {
	return self.Add(Field(OP_getfield, owner, name, desc))
}

func (self *Builder) PUTFIELD(owner, name, desc string) *Builder {
	return self.Add(Field(OP_putfield, owner, name, desc))
}

func (self *Builder) GETSTATIC(owner, name, desc string) *Builder {
	return self.Add(Field(OP_getstatic, owner, name, desc))
}

func (self *Builder) INVOKEVIRTUAL(owner, name, desc string) *Builder {
	return self.Add(Method(OP_invokevirtual, owner, name, desc, false))
}

func (self *Builder) INVOKESPECIAL(owner, name, desc string) *Builder {
	return self.Add(Method(OP_invokespecial, owner, name, desc, false))
}

func (self *Builder) INVOKESTATIC(owner, name, desc string) *Builder {
	return self.Add(Method(OP_invokestatic, owner, name, desc, false))
}

func (self *Builder) INVOKEINTERFACE(owner, name, desc string) *Builder {
	return self.Add(Method(OP_invokeinterface, owner, name, desc, true))
}
