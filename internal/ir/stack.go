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

	"github.com/azn9/fieldhook/internal/defs"
)

var _FixedEffects = [256]int{
	OP_aconst_null: 1,
	OP_iconst:      1,
	OP_iload:       1,
	OP_lload:       2,
	OP_fload:       1,
	OP_dload:       2,
	OP_aload:       1,
	OP_istore:      -1,
	OP_lstore:      -2,
	OP_fstore:      -1,
	OP_dstore:      -2,
	OP_astore:      -1,
	OP_pop:         -1,
	OP_pop2:        -2,
	OP_dup:         1,
	OP_iadd:        -1,
	OP_isub:        -1,
	OP_imul:        -1,
	OP_new:         1,
	OP_ifeq:        -1,
	OP_ifne:        -1,
	OP_ifnull:      -1,
	OP_ifnonnull:   -1,
	OP_ireturn:     -1,
	OP_lreturn:     -2,
	OP_freturn:     -1,
	OP_dreturn:     -2,
	OP_areturn:     -1,
}

// StackEffect returns the change of operand stack depth, in slots, caused by
// executing the instruction.
func StackEffect(ins Instr) (int, error) {
	switch _OpForms[ins.Op] {
	case _F_ldc:
		return constSlots(ins.Cv)
	case _F_field:
		return fieldEffect(ins)
	case _F_method:
		return methodEffect(ins)
	}

	/* everything else has a fixed effect */
	if !ins.Op.IsValid() {
		return 0, fmt.Errorf("invalid opcode: %s", ins.Op)
	} else {
		return _FixedEffects[ins.Op], nil
	}
}

func constSlots(v interface{}) (int, error) {
	switch v.(type) {
	case string, int32, float32:
		return 1, nil
	case int64, float64:
		return 2, nil
	default:
		return 0, fmt.Errorf("invalid constant of type %T", v)
	}
}

func fieldEffect(ins Instr) (int, error) {
	vt, err := defs.ParseDescriptor(ins.Desc)
	if err != nil {
		return 0, err
	}

	/* instance fields also consume the object reference */
	switch n := vt.Slots(); ins.Op {
	case OP_getfield:
		return n - 1, nil
	case OP_putfield:
		return -n - 1, nil
	case OP_getstatic:
		return n, nil
	default:
		return -n, nil
	}
}

func methodEffect(ins Instr) (int, error) {
	args, ret, err := defs.ParseMethodDescriptor(ins.Desc)
	if err != nil {
		return 0, err
	}

	/* arguments are popped, the result is pushed */
	n := ret.Slots()
	for _, vt := range args {
		n -= vt.Slots()
	}

	/* everything except static calls consume the receiver */
	if ins.Op != OP_invokestatic {
		n--
	}
	return n, nil
}

// Depths returns the operand stack depth after each instruction, starting from
// an empty stack. Branches are not followed.
func Depths(p Program) ([]int, error) {
	sp := 0
	ret := make([]int, len(p))

	/* accumulate the effect of every instruction */
	for i, ins := range p {
		if dv, err := StackEffect(ins); err != nil {
			return nil, fmt.Errorf("instruction %d (%s): %w", i, ins.Op, err)
		} else {
			sp += dv
			ret[i] = sp
		}
	}
	return ret, nil
}

// NetEffect returns the total stack effect of a program.
func NetEffect(p Program) (int, error) {
	if dv, err := Depths(p); err != nil {
		return 0, err
	} else if len(dv) == 0 {
		return 0, nil
	} else {
		return dv[len(dv)-1], nil
	}
}
