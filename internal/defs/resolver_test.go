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

package defs

import (
	"errors"
	"testing"

	"github.com/azn9/fieldhook"
	"github.com/davecgh/go-spew/spew"
	"github.com/stretchr/testify/require"
)

func TestResolver_ObjectTypeOf(t *testing.T) {
	boxes := map[Kind]string{
		K_int:     "java.lang.Integer",
		K_long:    "java.lang.Long",
		K_float:   "java.lang.Float",
		K_double:  "java.lang.Double",
		K_boolean: "java.lang.Boolean",
		K_byte:    "java.lang.Byte",
		K_short:   "java.lang.Short",
		K_char:    "java.lang.Character",
	}
	for _, k := range Kinds {
		bt, err := ObjectTypeOf(Primitive(k))
		require.NoError(t, err)
		require.Equal(t, Reference(boxes[k]), bt, k.String())
	}
	ref := Reference("java/lang/String")
	bt, err := ObjectTypeOf(ref)
	require.NoError(t, err)
	require.Equal(t, ref, bt)
}

func TestResolver_UnknownPrimitiveKind(t *testing.T) {
	var ke fieldhook.KindError
	for _, k := range []Kind{K_void, Kind(42)} {
		_, err := ObjectTypeOf(Primitive(k))
		require.True(t, errors.As(err, &ke), "%v", err)
		_, err = DescriptorOf(Primitive(k))
		require.True(t, errors.As(err, &ke), "%v", err)
	}
	require.Equal(t, "Kind(42)", ke.Kind)
}

func TestResolver_DescriptorOf(t *testing.T) {
	tests := []struct {
		vt   Type
		desc string
	}{
		{Primitive(K_int), "I"},
		{Primitive(K_long), "J"},
		{Primitive(K_float), "F"},
		{Primitive(K_double), "D"},
		{Primitive(K_boolean), "Z"},
		{Primitive(K_byte), "B"},
		{Primitive(K_short), "S"},
		{Primitive(K_char), "C"},
		{Reference("java.lang.Integer"), "Ljava/lang/Integer;"},
		{Reference("dev/azn9/test/Test"), "Ldev/azn9/test/Test;"},
		{Reference("[I"), "[I"},
	}
	for _, tc := range tests {
		desc, err := DescriptorOf(tc.vt)
		require.NoError(t, err)
		require.Equal(t, tc.desc, desc)
		vt, err := ParseDescriptor(desc)
		require.NoError(t, err)
		require.Equal(t, tc.vt, vt)
	}
}

func TestResolver_CoercionNameOf(t *testing.T) {
	names := map[Kind]string{
		K_int:     "castBackToInt",
		K_long:    "castBackToLong",
		K_float:   "castBackToFloat",
		K_double:  "castBackToDouble",
		K_boolean: "castBackToBoolean",
		K_byte:    "castBackToByte",
		K_short:   "castBackToShort",
		K_char:    "castBackToChar",
	}
	for _, k := range Kinds {
		bt, err := ObjectTypeOf(Primitive(k))
		require.NoError(t, err)
		require.Equal(t, names[k], CoercionNameOf(bt))
	}
	require.Empty(t, CoercionNameOf(Reference("java.lang.String")))
	require.Empty(t, CoercionNameOf(Primitive(K_int)))
}

func TestResolver_ResolveField(t *testing.T) {
	fd, err := ResolveField("i", "I")
	require.NoError(t, err)
	require.Equal(t, Reference("java.lang.Integer"), fd.Boxed)
	require.Equal(t, CoercionPlan{Name: "castBackToInt", Desc: "(Ljava/lang/Integer;)I"}, fd.Plan)
	spew.Dump(fd)

	fd, err = ResolveField("z", "Ljava/lang/Integer;")
	require.NoError(t, err)
	require.True(t, fd.Plan.IsTrivial())
	require.Equal(t, fd.Type, fd.Boxed)

	_, err = ResolveField("v", "V")
	var ke fieldhook.KindError
	require.True(t, errors.As(err, &ke))
	require.Equal(t, "void", ke.Kind)
}

func TestResolver_ParseMethodDescriptor(t *testing.T) {
	args, ret, err := ParseMethodDescriptor("(Ljava/lang/Object;[JI)Ljava/lang/Void;")
	require.NoError(t, err)
	require.Equal(t, []Type{Reference("java.lang.Object"), Reference("[J"), Primitive(K_int)}, args)
	require.Equal(t, Reference("java.lang.Void"), ret)

	args, ret, err = ParseMethodDescriptor("()V")
	require.NoError(t, err)
	require.Empty(t, args)
	require.Equal(t, K_void, ret.K)

	desc, err := MethodDescriptor(Primitive(K_void), Reference("java.lang.Object"), Primitive(K_double))
	require.NoError(t, err)
	require.Equal(t, "(Ljava/lang/Object;D)V", desc)

	for _, bad := range []string{"", "I", "(I", "(V)V", "(Q)V", "()VV", "(L;)V"} {
		_, _, err = ParseMethodDescriptor(bad)
		var se fieldhook.SyntaxError
		require.True(t, errors.As(err, &se), bad)
	}
}

func TestTypes_Slots(t *testing.T) {
	require.Equal(t, 2, Primitive(K_long).Slots())
	require.Equal(t, 2, Primitive(K_double).Slots())
	require.Equal(t, 1, Primitive(K_char).Slots())
	require.Equal(t, 0, Primitive(K_void).Slots())
	require.Equal(t, 1, Reference("java.lang.Long").Slots())
}
