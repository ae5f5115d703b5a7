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

const (
	GetterName = "get"
	SetterName = "set"
)

const (
	GetterDesc = "(Ljava/lang/Object;Ljava/lang/String;)Ljava/lang/Object;"
	SetterDesc = "(Ljava/lang/Object;Ljava/lang/Object;Ljava/lang/Object;Ljava/lang/String;)V"
)

var (
	ReadCount  uint64 = 0
	WriteCount uint64 = 0
	FlushCount uint64 = 0
)

// ForField creates the read and the write rewriter of a single field, in the
// order they must be chained.
func ForField(fd *defs.FieldDesc, o *opts.Options) ir.Pipeline {
	return ir.Pipeline{
		NewGetter(fd, o),
		NewSetter(fd, o),
	}
}

func emitAccessor(emit ir.Emitter, owner string, field string, name string, desc string) {
	emit(ir.Var(ir.OP_aload, 0))
	emit(ir.Ldc(field))
	emit(ir.Method(ir.OP_invokestatic, owner, name, desc, false))
}

func release(emit ir.Emitter, ins ir.Instr) {
	atomic.AddUint64(&FlushCount, 1)
	emit(ins)
}
