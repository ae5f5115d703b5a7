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
	"testing"

	"github.com/stretchr/testify/require"
)

func TestStack_Effects(t *testing.T) {
	tests := []struct {
		ins Instr
		dv  int
	}{
		{Var(OP_aload, 0), 1},
		{Var(OP_lload, 2), 2},
		{Ldc("i"), 1},
		{Ldc(2.0), 2},
		{Field(OP_getfield, "T", "i", "I"), 0},
		{Field(OP_getfield, "T", "l", "J"), 1},
		{Field(OP_putfield, "T", "i", "I"), -2},
		{Field(OP_putfield, "T", "d", "D"), -3},
		{Field(OP_getstatic, "java/lang/System", "out", "Ljava/io/PrintStream;"), 1},
		{Method(OP_invokevirtual, "java/lang/Integer", "intValue", "()I", false), 0},
		{Method(OP_invokevirtual, "java/lang/Long", "longValue", "()J", false), 1},
		{Method(OP_invokestatic, "B", "get", "(Ljava/lang/Object;Ljava/lang/String;)Ljava/lang/Object;", false), -1},
		{Method(OP_invokestatic, "B", "set", "(Ljava/lang/Object;Ljava/lang/Object;Ljava/lang/Object;Ljava/lang/String;)V", false), -4},
		{Method(OP_invokestatic, "C", "castBackToDouble", "(Ljava/lang/Double;)D", false), 1},
		{Method(OP_invokespecial, "java/lang/Object", "<init>", "()V", false), -1},
		{Simple(OP_lreturn), -2},
		{Label(3), 0},
		{Jump(OP_ifeq, 3), -1},
	}
	for _, tc := range tests {
		dv, err := StackEffect(tc.ins)
		require.NoError(t, err, tc.ins.Disassemble())
		require.Equal(t, tc.dv, dv, tc.ins.Disassemble())
	}
}

func TestStack_Depths(t *testing.T) {
	p := MustAssemble(`
        getstatic java/lang/System out Ljava/io/PrintStream;
        aload 0
        getfield dev/azn9/test/Test i I
        invokevirtual java/io/PrintStream println (I)V
        return
    `)
	dv, err := Depths(p)
	require.NoError(t, err)
	require.Equal(t, []int{1, 2, 2, 0, 0}, dv)
	n, err := NetEffect(p)
	require.NoError(t, err)
	require.Zero(t, n)

	_, err = Depths(Program{Field(OP_getfield, "T", "x", "Q")})
	require.Error(t, err)
	_, err = Depths(Program{Ldc(true)})
	require.Error(t, err)
}
