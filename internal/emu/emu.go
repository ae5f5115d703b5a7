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

package emu

import (
	"fmt"
	"io"
	"os"
	"sync/atomic"

	"github.com/azn9/fieldhook/internal/accessor"
	"github.com/azn9/fieldhook/internal/classfile"
	"github.com/azn9/fieldhook/internal/defs"
	"github.com/azn9/fieldhook/internal/ir"
	"github.com/azn9/fieldhook/internal/opts"
	"github.com/oleiade/lane"
)

const (
	MaxDepth = 256
)

var (
	ExecCount uint64 = 0
)

// Classes resolves the class methods and instances an emulated program refers to.
type Classes interface {
	LookupMethod(class string, name string, desc string) (*classfile.Method, error)
	NewInstance(class string) (interface{}, error)
}

// PrintStream is the value of the System.out static field.
type PrintStream struct {
	W io.Writer
}

type Emulator struct {
	cls     Classes
	out     *PrintStream
	depth   int
	statics map[string]interface{}
	natives map[string]Native
}

// New creates an emulator that resolves class methods through cls, binds the
// accessor and coercion natives under the owners configured in o, and prints
// to out.
func New(cls Classes, out io.Writer, o opts.Options) *Emulator {
	if out == nil {
		out = os.Stdout
	}

	/* global natives, followed by the configured runtime owners */
	ret := &Emulator{
		cls:     cls,
		out:     &PrintStream{out},
		statics: make(map[string]interface{}),
		natives: make(map[string]Native, len(nativeTab)),
	}
	for key, fn := range nativeTab {
		ret.natives[key] = fn
	}
	ret.bindRuntime(o.AccessorOwner, o.CoercionOwner)
	return ret
}

// Invoke runs a method of class. this is ignored for static methods.
func (self *Emulator) Invoke(class string, mv *classfile.Method, this interface{}, args ...interface{}) (interface{}, error) {
	var err error
	var vts []defs.Type

	/* parse the signature */
	if vts, _, err = defs.ParseMethodDescriptor(mv.Descriptor); err != nil {
		return nil, err
	}
	if len(vts) != len(args) {
		return nil, fmt.Errorf("%s.%s%s: expected %d arguments, got %d", class, mv.Name, mv.Descriptor, len(vts), len(args))
	}

	/* check for recursion depth */
	if self.depth >= MaxDepth {
		return nil, fmt.Errorf("%s.%s%s: call stack overflow", class, mv.Name, mv.Descriptor)
	}

	/* lay out the receiver and arguments in local slots */
	fp := newFrame(self, class, mv)
	if !mv.Access.IsStatic() {
		fp.store(0, this)
		fp.argp = 1
	}
	for i, vt := range vts {
		fp.store(fp.argp, args[i])
		fp.argp += vt.Slots()
	}

	/* run the method */
	self.depth++
	ret, err := fp.run()
	self.depth--

	/* attach the location to errors */
	if err != nil {
		return nil, fmt.Errorf("%s.%s%s: %w", class, mv.Name, mv.Descriptor, err)
	} else {
		return ret, nil
	}
}

// Static returns the value of a static field, as stored by putstatic.
func (self *Emulator) Static(owner string, name string) interface{} {
	return self.statics[owner+"."+name]
}

type frame struct {
	e      *Emulator
	class  string
	method *classfile.Method
	code   ir.Program
	pc     int
	argp   int
	done   bool
	ret    interface{}
	locals []interface{}
	stack  *lane.Stack
	labels map[int64]int
}

func newFrame(e *Emulator, class string, mv *classfile.Method) *frame {
	ret := &frame{
		e:      e,
		class:  class,
		method: mv,
		code:   mv.Code,
		stack:  lane.NewStack(),
		labels: make(map[int64]int),
	}

	/* index the labels */
	for i, ins := range mv.Code {
		if ins.Op == ir.OP_label {
			ret.labels[ins.Iv] = i
		}
	}
	return ret
}

func (self *frame) run() (interface{}, error) {
	for !self.done {
		if self.pc >= len(self.code) {
			return nil, fmt.Errorf("falling off the end of the code")
		}

		/* fetch the next instruction */
		ins := &self.code[self.pc]
		self.pc++
		atomic.AddUint64(&ExecCount, 1)

		/* execute the instruction */
		if fn := dispatchTab[ins.Op]; fn == nil {
			return nil, fmt.Errorf("invalid instruction: %s", ins.Op)
		} else if err := fn(self, ins); err != nil {
			return nil, fmt.Errorf("at %d (%s): %w", self.pc-1, ins.Disassemble(), err)
		}
	}
	return self.ret, nil
}

func (self *frame) push(v interface{}) {
	self.stack.Push(v)
}

func (self *frame) pop() (interface{}, error) {
	if self.stack.Empty() {
		return nil, fmt.Errorf("operand stack underflow")
	} else {
		return self.stack.Pop(), nil
	}
}

func (self *frame) popn(n int) ([]interface{}, error) {
	var err error
	ret := make([]interface{}, n)

	/* arguments are popped in reverse order */
	for i := n - 1; i >= 0; i-- {
		if ret[i], err = self.pop(); err != nil {
			return nil, err
		}
	}
	return ret, nil
}

func (self *frame) load(i int64) (interface{}, error) {
	if i < 0 || i >= int64(len(self.locals)) {
		return nil, fmt.Errorf("invalid local variable slot %d", i)
	} else {
		return self.locals[i], nil
	}
}

func (self *frame) store(i int, v interface{}) {
	for len(self.locals) <= i {
		self.locals = append(self.locals, nil)
	}
	self.locals[i] = v
}

func (self *frame) jump(label int64) error {
	if pc, ok := self.labels[label]; !ok {
		return fmt.Errorf("undefined label L%d", label)
	} else {
		self.pc = pc
		return nil
	}
}

func popAs[T any](self *frame) (T, error) {
	var ok bool
	var rv T
	var vv interface{}
	var err error

	/* pop and check the type */
	if vv, err = self.pop(); err != nil {
		return rv, err
	} else if rv, ok = vv.(T); !ok {
		return rv, fmt.Errorf("operand type mismatch: expected %T, got %T", rv, vv)
	} else {
		return rv, nil
	}
}

var dispatchTab [256]func(f *frame, p *ir.Instr) error

/* assigned in init, the handlers reach back into the interpreter loop */
func init() {
	dispatchTab = [256]func(f *frame, p *ir.Instr) error{
		ir.OP_nop:             (*frame).emu_OP_nop,
		ir.OP_label:           (*frame).emu_OP_nop,
		ir.OP_aconst_null:     (*frame).emu_OP_aconst_null,
		ir.OP_iconst:          (*frame).emu_OP_iconst,
		ir.OP_ldc:             (*frame).emu_OP_ldc,
		ir.OP_iload:           emu_OP_load[int32],
		ir.OP_lload:           emu_OP_load[int64],
		ir.OP_fload:           emu_OP_load[float32],
		ir.OP_dload:           emu_OP_load[float64],
		ir.OP_aload:           (*frame).emu_OP_aload,
		ir.OP_istore:          emu_OP_store[int32],
		ir.OP_lstore:          emu_OP_store[int64],
		ir.OP_fstore:          emu_OP_store[float32],
		ir.OP_dstore:          emu_OP_store[float64],
		ir.OP_astore:          (*frame).emu_OP_astore,
		ir.OP_pop:             (*frame).emu_OP_pop,
		ir.OP_pop2:            (*frame).emu_OP_pop2,
		ir.OP_dup:             (*frame).emu_OP_dup,
		ir.OP_iadd:            (*frame).emu_OP_iadd,
		ir.OP_isub:            (*frame).emu_OP_isub,
		ir.OP_imul:            (*frame).emu_OP_imul,
		ir.OP_new:             (*frame).emu_OP_new,
		ir.OP_getfield:        (*frame).emu_OP_getfield,
		ir.OP_putfield:        (*frame).emu_OP_putfield,
		ir.OP_getstatic:       (*frame).emu_OP_getstatic,
		ir.OP_putstatic:       (*frame).emu_OP_putstatic,
		ir.OP_invokevirtual:   (*frame).emu_OP_invoke,
		ir.OP_invokespecial:   (*frame).emu_OP_invoke,
		ir.OP_invokestatic:    (*frame).emu_OP_invoke,
		ir.OP_invokeinterface: (*frame).emu_OP_invoke,
		ir.OP_goto:            (*frame).emu_OP_goto,
		ir.OP_ifeq:            (*frame).emu_OP_ifeq,
		ir.OP_ifne:            (*frame).emu_OP_ifne,
		ir.OP_ifnull:          (*frame).emu_OP_ifnull,
		ir.OP_ifnonnull:       (*frame).emu_OP_ifnonnull,
		ir.OP_return:          (*frame).emu_OP_return,
		ir.OP_ireturn:         emu_OP_xreturn[int32],
		ir.OP_lreturn:         emu_OP_xreturn[int64],
		ir.OP_freturn:         emu_OP_xreturn[float32],
		ir.OP_dreturn:         emu_OP_xreturn[float64],
		ir.OP_areturn:         (*frame).emu_OP_areturn,
	}
}

func (self *frame) emu_OP_nop(_ *ir.Instr) error {
	return nil
}

func (self *frame) emu_OP_aconst_null(_ *ir.Instr) error {
	self.push(nil)
	return nil
}

func (self *frame) emu_OP_iconst(p *ir.Instr) error {
	self.push(int32(p.Iv))
	return nil
}

func (self *frame) emu_OP_ldc(p *ir.Instr) error {
	switch p.Cv.(type) {
	case string, int32, int64, float32, float64:
		self.push(p.Cv)
		return nil
	default:
		return fmt.Errorf("invalid constant of type %T", p.Cv)
	}
}

func emu_OP_load[T any](self *frame, p *ir.Instr) error {
	if v, err := self.load(p.Iv); err != nil {
		return err
	} else if _, ok := v.(T); !ok {
		return fmt.Errorf("local variable %d has type %T", p.Iv, v)
	} else {
		self.push(v)
		return nil
	}
}

func emu_OP_store[T any](self *frame, p *ir.Instr) error {
	if v, err := popAs[T](self); err != nil {
		return err
	} else {
		self.store(int(p.Iv), v)
		return nil
	}
}

func (self *frame) emu_OP_aload(p *ir.Instr) error {
	if v, err := self.load(p.Iv); err != nil {
		return err
	} else {
		self.push(v)
		return nil
	}
}

func (self *frame) emu_OP_astore(p *ir.Instr) error {
	if v, err := self.pop(); err != nil {
		return err
	} else {
		self.store(int(p.Iv), v)
		return nil
	}
}

func (self *frame) emu_OP_pop(_ *ir.Instr) error {
	_, err := self.pop()
	return err
}

func (self *frame) emu_OP_pop2(_ *ir.Instr) error {
	v, err := self.pop()
	if err != nil {
		return err
	}

	/* a long or a double takes both slots */
	switch v.(type) {
	case int64, float64:
		return nil
	default:
		_, err = self.pop()
		return err
	}
}

func (self *frame) emu_OP_dup(_ *ir.Instr) error {
	if self.stack.Empty() {
		return fmt.Errorf("operand stack underflow")
	} else {
		self.push(self.stack.Head())
		return nil
	}
}

func (self *frame) arith(fn func(a int32, b int32) int32) error {
	b, err := popAs[int32](self)
	if err != nil {
		return err
	}
	a, err := popAs[int32](self)
	if err != nil {
		return err
	}
	self.push(fn(a, b))
	return nil
}

func (self *frame) emu_OP_iadd(_ *ir.Instr) error {
	return self.arith(func(a int32, b int32) int32 { return a + b })
}

func (self *frame) emu_OP_isub(_ *ir.Instr) error {
	return self.arith(func(a int32, b int32) int32 { return a - b })
}

func (self *frame) emu_OP_imul(_ *ir.Instr) error {
	return self.arith(func(a int32, b int32) int32 { return a * b })
}

func (self *frame) emu_OP_new(p *ir.Instr) error {
	if self.e.cls == nil {
		return fmt.Errorf("cannot instantiate %s: no classes", p.Owner)
	} else if v, err := self.e.cls.NewInstance(p.Owner); err != nil {
		return err
	} else {
		self.push(v)
		return nil
	}
}

func (self *frame) emu_OP_getfield(p *ir.Instr) error {
	v, err := self.pop()
	if err != nil {
		return err
	}
	rv, err := accessor.Lookup(v, p.Name)
	if err != nil {
		return err
	}
	self.push(widen(rv))
	return nil
}

func (self *frame) emu_OP_putfield(p *ir.Instr) error {
	val, err := self.pop()
	if err != nil {
		return err
	}
	obj, err := self.pop()
	if err != nil {
		return err
	}
	rv, err := accessor.Lookup(obj, p.Name)
	if err != nil {
		return err
	}
	nv, err := narrow(val, rv.Type())
	if err != nil {
		return err
	}
	rv.Set(nv)
	return nil
}

func (self *frame) emu_OP_getstatic(p *ir.Instr) error {
	if p.Owner == "java/lang/System" && p.Name == "out" {
		self.push(self.e.out)
	} else {
		self.push(self.e.statics[p.Owner+"."+p.Name])
	}
	return nil
}

func (self *frame) emu_OP_putstatic(p *ir.Instr) error {
	if v, err := self.pop(); err != nil {
		return err
	} else {
		self.e.statics[p.Owner+"."+p.Name] = v
		return nil
	}
}

func (self *frame) emu_OP_invoke(p *ir.Instr) error {
	var err error
	var ret interface{}
	var recv interface{}
	var args []interface{}
	var argv []defs.Type
	var rett defs.Type

	/* parse the signature */
	if argv, rett, err = defs.ParseMethodDescriptor(p.Desc); err != nil {
		return err
	}

	/* pop the arguments, and the receiver */
	if args, err = self.popn(len(argv)); err != nil {
		return err
	}
	if p.Op != ir.OP_invokestatic {
		if recv, err = self.pop(); err != nil {
			return err
		} else if recv == nil {
			return fmt.Errorf("invoking %s.%s on a null reference", p.Owner, p.Name)
		}
	}

	/* natives first, then class methods */
	if fn, ok := self.e.natives[nativeKey(p.Owner, p.Name, p.Desc)]; ok {
		ret, err = fn(self.e, recv, args)
	} else if self.e.cls == nil {
		err = fmt.Errorf("unresolved method %s.%s%s", p.Owner, p.Name, p.Desc)
	} else if mv, ex := self.e.cls.LookupMethod(p.Owner, p.Name, p.Desc); ex != nil {
		err = ex
	} else {
		ret, err = self.e.Invoke(p.Owner, mv, recv, args...)
	}

	/* push the result if any */
	if err != nil {
		return err
	} else if rett.K != defs.K_void {
		self.push(ret)
	}
	return nil
}

func (self *frame) emu_OP_goto(p *ir.Instr) error {
	return self.jump(p.Iv)
}

func (self *frame) emu_OP_ifeq(p *ir.Instr) error {
	if v, err := popAs[int32](self); err != nil {
		return err
	} else if v == 0 {
		return self.jump(p.Iv)
	} else {
		return nil
	}
}

func (self *frame) emu_OP_ifne(p *ir.Instr) error {
	if v, err := popAs[int32](self); err != nil {
		return err
	} else if v != 0 {
		return self.jump(p.Iv)
	} else {
		return nil
	}
}

func (self *frame) emu_OP_ifnull(p *ir.Instr) error {
	if v, err := self.pop(); err != nil {
		return err
	} else if v == nil {
		return self.jump(p.Iv)
	} else {
		return nil
	}
}

func (self *frame) emu_OP_ifnonnull(p *ir.Instr) error {
	if v, err := self.pop(); err != nil {
		return err
	} else if v != nil {
		return self.jump(p.Iv)
	} else {
		return nil
	}
}

func (self *frame) emu_OP_return(_ *ir.Instr) error {
	self.done = true
	return nil
}

func emu_OP_xreturn[T any](self *frame, _ *ir.Instr) error {
	if v, err := popAs[T](self); err != nil {
		return err
	} else {
		self.ret, self.done = v, true
		return nil
	}
}

func (self *frame) emu_OP_areturn(_ *ir.Instr) error {
	if v, err := self.pop(); err != nil {
		return err
	} else {
		self.ret, self.done = v, true
		return nil
	}
}
