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
	"testing"

	"github.com/azn9/fieldhook/internal/defs"
	"github.com/azn9/fieldhook/internal/ir"
	"github.com/brianvoe/gofakeit/v6"
	"github.com/stretchr/testify/require"
)

type boundField struct {
	name  string
	desc  string
	unbox ir.Instr
}

var boundFields = []boundField{
	{"i", "I", ir.Method(ir.OP_invokevirtual, "java/lang/Integer", "intValue", "()I", false)},
	{"l", "J", ir.Method(ir.OP_invokevirtual, "java/lang/Long", "longValue", "()J", false)},
	{"d", "D", ir.Method(ir.OP_invokevirtual, "java/lang/Double", "doubleValue", "()D", false)},
	{"b", "Z", ir.Method(ir.OP_invokevirtual, "java/lang/Boolean", "booleanValue", "()Z", false)},
}

type chunk struct {
	code   ir.Program
	reads  int
	writes int
}

func pipelineFor(t *testing.T, fields []boundField) ir.Pipeline {
	var p ir.Pipeline
	for _, f := range fields {
		p = append(p, ForField(mustResolve(t, f.name, f.desc), testOptions())...)
	}
	return p
}

/* unrelated code, never touches a bound field through the self reference */
func noiseChunk(f *gofakeit.Faker) chunk {
	other := "x" + f.LetterN(4)
	switch f.Number(0, 7) {
	case 0:
		return chunk{code: ir.Program{ir.Var(ir.OP_aload, 0)}}
	case 1:
		return chunk{code: ir.Program{ir.Var(ir.OP_aload, 1), ir.Field(ir.OP_getfield, testOwner, "i", "I")}}
	case 2:
		return chunk{code: ir.Program{ir.Var(ir.OP_aload, 0), ir.Field(ir.OP_getfield, testOwner, other, "I"), ir.Simple(ir.OP_pop)}}
	case 3:
		return chunk{code: ir.Program{ir.Ldc(f.Word()), ir.Simple(ir.OP_pop)}}
	case 4:
		return chunk{code: ir.Program{ir.Var(ir.OP_aload, 1), ir.Method(ir.OP_invokevirtual, "java/lang/Object", "hashCode", "()I", false), ir.Simple(ir.OP_pop)}}
	case 5:
		return chunk{code: ir.Program{ir.Int(int32(f.Number(-100, 100))), ir.Var(ir.OP_istore, 2)}}
	case 6:
		return chunk{code: ir.Program{ir.Label(f.Number(0, 99))}}
	default:
		return chunk{code: ir.Program{
			ir.Var(ir.OP_aload, 0),
			ir.Var(ir.OP_aload, 1),
			ir.Method(ir.OP_invokevirtual, "java/lang/Integer", "intValue", "()I", false),
			ir.Field(ir.OP_putfield, testOwner, other, "I"),
		}}
	}
}

func fieldChunk(f *gofakeit.Faker, bf boundField) chunk {
	if f.Bool() {
		return chunk{
			reads: 1,
			code: ir.Program{
				ir.Var(ir.OP_aload, 0),
				ir.Field(ir.OP_getfield, testOwner, bf.name, bf.desc),
				ir.Simple(ir.OP_pop),
			},
		}
	}
	return chunk{
		writes: 1,
		code: ir.Program{
			ir.Var(ir.OP_aload, 0),
			ir.Var(ir.OP_aload, 1),
			bf.unbox,
			ir.Field(ir.OP_putfield, testOwner, bf.name, bf.desc),
		},
	}
}

func countCalls(p ir.Program, name string) int {
	n := 0
	for _, ins := range p {
		if ins.Op == ir.OP_invokestatic && ins.Owner == testAccessor && ins.Name == name {
			n++
		}
	}
	return n
}

func TestRewrite_IdempotentOnUnrelatedCode(t *testing.T) {
	f := gofakeit.New(20221101)
	pl := pipelineFor(t, boundFields)
	for i := 0; i < 200; i++ {
		var p ir.Program
		for j := f.Number(0, 24); j > 0; j-- {
			p = append(p, noiseChunk(f).code...)
		}
		require.Equal(t, p, pl.Apply(p))
	}
}

func TestRewrite_StackNeutral(t *testing.T) {
	f := gofakeit.New(20221102)
	for i := 0; i < 200; i++ {
		var p ir.Program
		var reads, writes int
		var cuts []int
		for j := f.Number(1, 24); j > 0; j-- {
			var c chunk
			if f.Bool() {
				c = noiseChunk(f)
			} else {
				c = fieldChunk(f, boundFields[f.Number(0, len(boundFields)-1)])
			}
			p = append(p, c.code...)
			reads += c.reads
			writes += c.writes
			cuts = append(cuts, len(p))
		}

		/* every chunk boundary is a point where both streams must agree */
		pl := pipelineFor(t, boundFields)
		for _, n := range cuts {
			n0, err := ir.NetEffect(p[:n])
			require.NoError(t, err)
			n1, err := ir.NetEffect(pl.Apply(p[:n]))
			require.NoError(t, err)
			require.Equal(t, n0, n1, p[:n].Disassemble())
		}

		ret := pl.Apply(p)
		require.Equal(t, reads, countCalls(ret, GetterName))
		require.Equal(t, writes, countCalls(ret, SetterName))
		for _, ins := range ret {
			if ins.Op == ir.OP_putfield {
				require.NotContains(t, []string{"i", "l", "d", "b"}, ins.Name)
			}
		}
	}
}

func TestRewrite_PipelineOrderDoesNotMatter(t *testing.T) {
	f := gofakeit.New(20221103)
	rev := make([]boundField, len(boundFields))
	for i, bf := range boundFields {
		rev[len(rev)-1-i] = bf
	}
	for i := 0; i < 100; i++ {
		var p ir.Program
		for j := f.Number(1, 16); j > 0; j-- {
			p = append(p, fieldChunk(f, boundFields[f.Number(0, len(boundFields)-1)]).code...)
		}
		require.Equal(t, pipelineFor(t, boundFields).Apply(p), pipelineFor(t, rev).Apply(p))
	}
}

func TestRewrite_ResolveVoidField(t *testing.T) {
	_, err := defs.ResolveField("v", "V")
	require.Error(t, err)
}
