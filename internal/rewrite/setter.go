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

package rewrite

import (
	"sync/atomic"

	"github.com/azn9/fieldhook/internal/defs"
	"github.com/azn9/fieldhook/internal/ir"
	"github.com/azn9/fieldhook/internal/opts"
)

type _WriteState uint8

const (
	_W_idle _WriteState = iota
	_W_value_coercion
)

// Setter redirects "invokevirtual ...; putfield <field>" to the set accessor.
//
// Only stores right after a virtual call are candidates, which is the shape
// produced when a boxed value is unwrapped before being stored. The call itself
// is dropped, so the accessor receives the value as it was before the call.
type Setter struct {
	fd    *defs.FieldDesc
	owner string
	state _WriteState
	held  ir.Instr
}

func NewSetter(fd *defs.FieldDesc, o *opts.Options) *Setter {
	return &Setter{
		fd:    fd,
		owner: o.AccessorOwner,
	}
}

func (self *Setter) Field() *defs.FieldDesc {
	return self.fd
}

func (self *Setter) Pending() int {
	if self.state == _W_value_coercion {
		return 1
	} else {
		return 0
	}
}

func (self *Setter) Step(ins ir.Instr, emit ir.Emitter) {
	switch self.state {
	case _W_idle:
		self.idle(ins, emit)
	case _W_value_coercion:
		if ins.Op == ir.OP_putfield && ins.Name == self.fd.Name {
			self.replace(emit)
		} else {
			self.Flush(emit)
			self.idle(ins, emit)
		}
	default:
		panic("unreachable")
	}
}

func (self *Setter) Flush(emit ir.Emitter) {
	if self.state == _W_value_coercion {
		self.state = _W_idle
		release(emit, self.held)
	}
}

func (self *Setter) idle(ins ir.Instr, emit ir.Emitter) {
	if ins.Op == ir.OP_invokevirtual {
		self.held = ins
		self.state = _W_value_coercion
	} else {
		emit(ins)
	}
}

func (self *Setter) replace(emit ir.Emitter) {
	self.state = _W_idle
	atomic.AddUint64(&WriteCount, 1)
	emitAccessor(emit, self.owner, self.fd.Name, SetterName, SetterDesc)
}
