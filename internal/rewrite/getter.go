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

type _ReadState uint8

const (
	_R_idle _ReadState = iota
	_R_owner_load
)

// Getter redirects "aload 0; getfield <field>" to the get accessor.
type Getter struct {
	fd    *defs.FieldDesc
	owner string
	cast  string
	state _ReadState
	held  ir.Instr
}

func NewGetter(fd *defs.FieldDesc, o *opts.Options) *Getter {
	return &Getter{
		fd:    fd,
		owner: o.AccessorOwner,
		cast:  o.CoercionOwner,
	}
}

func (self *Getter) Field() *defs.FieldDesc {
	return self.fd
}

func (self *Getter) Pending() int {
	if self.state == _R_owner_load {
		return 1
	} else {
		return 0
	}
}

func (self *Getter) Step(ins ir.Instr, emit ir.Emitter) {
	switch self.state {
	case _R_idle:
		self.idle(ins, emit)
	case _R_owner_load:
		if ins.Op == ir.OP_getfield && ins.Name == self.fd.Name {
			self.replace(emit)
		} else {
			self.Flush(emit)
			self.idle(ins, emit)
		}
	default:
		panic("unreachable")
	}
}

func (self *Getter) Flush(emit ir.Emitter) {
	if self.state == _R_owner_load {
		self.state = _R_idle
		release(emit, self.held)
	}
}

func (self *Getter) idle(ins ir.Instr, emit ir.Emitter) {
	if ins.IsSelfLoad() {
		self.held = ins
		self.state = _R_owner_load
	} else {
		emit(ins)
	}
}

func (self *Getter) replace(emit ir.Emitter) {
	self.state = _R_idle
	atomic.AddUint64(&ReadCount, 1)
	emitAccessor(emit, self.owner, self.fd.Name, GetterName, GetterDesc)

	/* unwrap the boxed value if the field is a primitive */
	if !self.fd.Plan.IsTrivial() {
		emit(ir.Method(ir.OP_invokestatic, self.cast, self.fd.Plan.Name, self.fd.Plan.Desc, false))
	}
}
