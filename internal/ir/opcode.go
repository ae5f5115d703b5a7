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
)

type OpCode uint8

const (
	OP_nop             OpCode = iota // no operation
	OP_label                         // branch target Iv
	OP_aconst_null                   // null -> stack
	OP_iconst                        // i32(Iv) -> stack
	OP_ldc                           // Cv -> stack
	OP_iload                         // local[Iv] -> stack
	OP_lload                         // local[Iv] -> stack
	OP_fload                         // local[Iv] -> stack
	OP_dload                         // local[Iv] -> stack
	OP_aload                         // local[Iv] -> stack
	OP_istore                        // stack -> local[Iv]
	OP_lstore                        // stack -> local[Iv]
	OP_fstore                        // stack -> local[Iv]
	OP_dstore                        // stack -> local[Iv]
	OP_astore                        // stack -> local[Iv]
	OP_pop                           // drop one slot
	OP_pop2                          // drop two slots
	OP_dup                           // duplicate the top slot
	OP_iadd                          // i32 + i32 -> stack
	OP_isub                          // i32 - i32 -> stack
	OP_imul                          // i32 * i32 -> stack
	OP_new                           // new Owner -> stack
	OP_getfield                      // ref.Name -> stack
	OP_putfield                      // value -> ref.Name
	OP_getstatic                     // Owner.Name -> stack
	OP_putstatic                     // value -> Owner.Name
	OP_invokevirtual                 // ref.Name(args...) -> stack
	OP_invokespecial                 // ref.Name(args...) -> stack, without dispatch
	OP_invokestatic                  // Owner.Name(args...) -> stack
	OP_invokeinterface               // ref.Name(args...) -> stack
	OP_goto                          // jump to label Iv
	OP_ifeq                          // if (i32 == 0) jump to label Iv
	OP_ifne                          // if (i32 != 0) jump to label Iv
	OP_ifnull                        // if (ref == null) jump to label Iv
	OP_ifnonnull                     // if (ref != null) jump to label Iv
	OP_return                        // return void
	OP_ireturn                       // return i32
	OP_lreturn                       // return i64
	OP_freturn                       // return f32
	OP_dreturn                       // return f64
	OP_areturn                       // return ref
)

type _Form uint8

const (
	_F_none _Form = iota
	_F_var
	_F_int
	_F_ldc
	_F_type
	_F_field
	_F_method
	_F_jump
	_F_label
)

var _OpNames = [256]string{
	OP_nop:             "nop",
	OP_label:           "(label)",
	OP_aconst_null:     "aconst_null",
	OP_iconst:          "iconst",
	OP_ldc:             "ldc",
	OP_iload:           "iload",
	OP_lload:           "lload",
	OP_fload:           "fload",
	OP_dload:           "dload",
	OP_aload:           "aload",
	OP_istore:          "istore",
	OP_lstore:          "lstore",
	OP_fstore:          "fstore",
	OP_dstore:          "dstore",
	OP_astore:          "astore",
	OP_pop:             "pop",
	OP_pop2:            "pop2",
	OP_dup:             "dup",
	OP_iadd:            "iadd",
	OP_isub:            "isub",
	OP_imul:            "imul",
	OP_new:             "new",
	OP_getfield:        "getfield",
	OP_putfield:        "putfield",
	OP_getstatic:       "getstatic",
	OP_putstatic:       "putstatic",
	OP_invokevirtual:   "invokevirtual",
	OP_invokespecial:   "invokespecial",
	OP_invokestatic:    "invokestatic",
	OP_invokeinterface: "invokeinterface",
	OP_goto:            "goto",
	OP_ifeq:            "ifeq",
	OP_ifne:            "ifne",
	OP_ifnull:          "ifnull",
	OP_ifnonnull:       "ifnonnull",
	OP_return:          "return",
	OP_ireturn:         "ireturn",
	OP_lreturn:         "lreturn",
	OP_freturn:         "freturn",
	OP_dreturn:         "dreturn",
	OP_areturn:         "areturn",
}

var _OpForms = [256]_Form{
	OP_label:           _F_label,
	OP_iconst:          _F_int,
	OP_ldc:             _F_ldc,
	OP_iload:           _F_var,
	OP_lload:           _F_var,
	OP_fload:           _F_var,
	OP_dload:           _F_var,
	OP_aload:           _F_var,
	OP_istore:          _F_var,
	OP_lstore:          _F_var,
	OP_fstore:          _F_var,
	OP_dstore:          _F_var,
	OP_astore:          _F_var,
	OP_new:             _F_type,
	OP_getfield:        _F_field,
	OP_putfield:        _F_field,
	OP_getstatic:       _F_field,
	OP_putstatic:       _F_field,
	OP_invokevirtual:   _F_method,
	OP_invokespecial:   _F_method,
	OP_invokestatic:    _F_method,
	OP_invokeinterface: _F_method,
	OP_goto:            _F_jump,
	OP_ifeq:            _F_jump,
	OP_ifne:            _F_jump,
	OP_ifnull:          _F_jump,
	OP_ifnonnull:       _F_jump,
}

var _OpByName = func() map[string]OpCode {
	m := make(map[string]OpCode, OP_areturn+1)
	for op := OP_nop; op <= OP_areturn; op++ {
		if op != OP_label {
			m[_OpNames[op]] = op
		}
	}
	return m
}()

func (self OpCode) String() string {
	if _OpNames[self] != "" {
		return _OpNames[self]
	} else {
		return fmt.Sprintf("OpCode(%d)", self)
	}
}

func (self OpCode) IsValid() bool {
	return self <= OP_areturn
}

func (self OpCode) IsInvoke() bool {
	return _OpForms[self] == _F_method
}

func (self OpCode) IsBranch() bool {
	return _OpForms[self] == _F_jump
}

func (self OpCode) IsReturn() bool {
	return self >= OP_return && self <= OP_areturn
}

// LookupOpCode finds an opcode by its mnemonic.
func LookupOpCode(name string) (OpCode, bool) {
	op, ok := _OpByName[name]
	return op, ok
}
