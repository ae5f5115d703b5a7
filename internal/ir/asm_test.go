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
	"errors"
	"testing"

	"github.com/azn9/fieldhook"
	"github.com/stretchr/testify/require"
)

const testListing = `
# Test.setI(Integer)
    aload 0
    aload 1
    invokevirtual java/lang/Integer intValue ()I
    putfield dev/azn9/test/Test i I
L0:
    ldc "hello, world"
    ldc 23
    ldc 42L
    ldc 1.5F
    ldc 2.25D
    pop2
    pop2
    pop
    pop
    pop
    iconst -1
    ifne L0
    invokeinterface java/util/List size ()I
    invokestatic java/util/List of ()Ljava/util/List; itf
    return
`

func TestAssemble_RoundTrip(t *testing.T) {
	p, err := Assemble(testListing)
	require.NoError(t, err)
	require.Len(t, p, 20)
	require.Equal(t, Var(OP_aload, 0), p[0])
	require.Equal(t, Label(0), p[4])
	require.Equal(t, Ldc("hello, world"), p[5])
	require.Equal(t, Ldc(int32(23)), p[6])
	require.Equal(t, Ldc(int64(42)), p[7])
	require.Equal(t, Ldc(float32(1.5)), p[8])
	require.Equal(t, Ldc(2.25), p[9])
	require.Equal(t, Jump(OP_ifne, 0), p[16])
	require.True(t, p[17].Itf)
	require.True(t, p[18].Itf)
	require.Equal(t, 0, p.Labels())
	println(p.Disassemble())

	q, err := Assemble(p.Disassemble())
	require.NoError(t, err)
	require.Equal(t, p, q)
}

func TestAssemble_Errors(t *testing.T) {
	for _, src := range []string{
		"frobnicate",
		"aload",
		"aload x",
		"aload 0 1",
		"iconst 4294967296",
		"getfield a b",
		"goto 3",
		"goto L",
		"Lx:",
		"ldc",
		`ldc "unterminated`,
		`ldc "a" b`,
		"ldc 12Q",
		"return 1",
	} {
		_, err := Assemble(src)
		var se fieldhook.SyntaxError
		require.True(t, errors.As(err, &se), src)
	}
}

func TestBuilder_Build(t *testing.T) {
	p := CreateBuilder().
		ALOAD(0).
		GETFIELD("dev/azn9/test/Test", "i", "I").
		IRETURN().
		Build()
	require.Equal(t, MustAssemble(`
        aload 0
        getfield dev/azn9/test/Test i I
        ireturn
    `), p)
}

func FuzzAssemble(f *testing.F) {
	f.Add(testListing)
	f.Add(`ldc "é\n"`)
	f.Fuzz(func(t *testing.T, src string) {
		p, err := Assemble(src)
		if err != nil {
			return
		}
		q, err := Assemble(p.Disassemble())
		require.NoError(t, err)
		require.Equal(t, len(p), len(q))
		for i := range p {
			require.Equal(t, p[i].Disassemble(), q[i].Disassemble())
		}
	})
}
