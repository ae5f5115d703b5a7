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

package loader

import (
	"errors"
	"sync/atomic"
	"testing"

	"github.com/azn9/fieldhook"
	"github.com/azn9/fieldhook/internal/accessor"
	"github.com/azn9/fieldhook/internal/classfile"
	"github.com/azn9/fieldhook/internal/ir"
	"github.com/stretchr/testify/require"
)

const testSource = `
name = "dev/azn9/test/Test"
super = "java/lang/Object"

[[fields]]
name = "i"
descriptor = "I"
access = ["private"]

[[fields]]
name = "z"
descriptor = "Ljava/lang/Integer;"

[[fields]]
name = "COUNT"
descriptor = "I"
access = ["static"]

[[methods]]
name = "getI"
descriptor = "()I"
code = """
    aload 0
    getfield dev/azn9/test/Test i I
    ireturn
"""
`

type testEntity struct {
	i int32             `fieldhook:"i,private"`
	z *accessor.Integer `fieldhook:"z"`
}

func newTestEntity() interface{} {
	return &testEntity{z: &accessor.Integer{V: 23}}
}

func testClass(t *testing.T) *classfile.Class {
	cls, err := classfile.ParseSource(testSource)
	require.NoError(t, err)
	return cls
}

func TestLoader_Define(t *testing.T) {
	ld := New()
	cls := testClass(t)
	require.NoError(t, ld.Define(cls, newTestEntity))
	require.Equal(t, 0, ld.Version(cls.Name))
	require.Equal(t, -1, ld.Version("nope"))

	/* the definition is a private copy */
	cls.Methods[0].Code = nil
	ret, ok := ld.Lookup(cls.Name)
	require.True(t, ok)
	require.Len(t, ret.Methods[0].Code, 3)

	/* instances and methods */
	v, err := ld.NewInstance(cls.Name)
	require.NoError(t, err)
	require.Equal(t, int32(23), v.(*testEntity).z.V)
	mv, err := ld.LookupMethod(cls.Name, "getI", "()I")
	require.NoError(t, err)
	require.Equal(t, "getI", mv.Name)
	_, err = ld.LookupMethod(cls.Name, "getZ", "()I")
	require.Error(t, err)
	_, err = ld.NewInstance("nope")
	require.Error(t, err)

	/* duplicates */
	var le fieldhook.LinkError
	require.True(t, errors.As(ld.Define(testClass(t), newTestEntity), &le))
}

func TestLoader_DefineErrors(t *testing.T) {
	type missing struct {
		i int32 `fieldhook:"i"`
	}
	type mistyped struct {
		i int64             `fieldhook:"i"`
		z *accessor.Integer `fieldhook:"z"`
	}
	for _, fn := range []Factory{
		nil,
		func() interface{} { return 1 },
		func() interface{} { return testEntity{} },
		func() interface{} { return &missing{} },
		func() interface{} { return &mistyped{} },
	} {
		var le fieldhook.LinkError
		require.True(t, errors.As(New().Define(testClass(t), fn), &le))
	}
}

func TestLoader_Redefine(t *testing.T) {
	ld := New()
	cls := testClass(t)
	require.NoError(t, ld.Define(cls, newTestEntity))
	n := atomic.LoadUint64(&RedefineCount)

	/* replace the body of getI */
	nc := cls.Clone()
	nc.Methods[0].Code = ir.MustAssemble("iconst 7\nireturn")
	buf, err := classfile.Marshal(nc)
	require.NoError(t, err)
	require.NoError(t, ld.Redefine(cls.Name, buf))
	require.Equal(t, 1, ld.Version(cls.Name))
	require.Equal(t, n+1, atomic.LoadUint64(&RedefineCount))
	mv, err := ld.LookupMethod(cls.Name, "getI", "()I")
	require.NoError(t, err)
	require.Equal(t, nc.Methods[0].Code, mv.Code)
}

func TestLoader_RedefineRejected(t *testing.T) {
	ld := New()
	cls := testClass(t)
	require.NoError(t, ld.Define(cls, newTestEntity))

	/* every change below must leave the old definition active */
	for _, fn := range []func(c *classfile.Class){
		func(c *classfile.Class) { c.Super = "java/lang/Number" },
		func(c *classfile.Class) { c.Fields = c.Fields[:1] },
		func(c *classfile.Class) { c.Fields[0].Descriptor = "J" },
		func(c *classfile.Class) { c.Fields[1].Descriptor = "V" },
		func(c *classfile.Class) { c.Methods = nil },
		func(c *classfile.Class) { c.Methods[0].Name = "getJ" },
	} {
		nc := cls.Clone()
		fn(nc)
		buf, err := classfile.Marshal(nc)
		require.NoError(t, err)
		var le fieldhook.LinkError
		require.True(t, errors.As(ld.Redefine(cls.Name, buf), &le))
		require.Equal(t, 0, ld.Version(cls.Name))
		ret, ok := ld.Lookup(cls.Name)
		require.True(t, ok)
		require.Equal(t, cls, ret)
	}

	/* broken images, and images of other classes */
	var le fieldhook.LinkError
	require.True(t, errors.As(ld.Redefine(cls.Name, []byte("garbage")), &le))
	other := cls.Clone()
	other.Name = "dev/azn9/test/Other"
	buf, err := classfile.Marshal(other)
	require.NoError(t, err)
	require.True(t, errors.As(ld.Redefine(cls.Name, buf), &le))
	require.True(t, errors.As(ld.Redefine(other.Name, buf), &le))
}

func TestLoader_VoidFieldRefused(t *testing.T) {
	cls := testClass(t)
	cls.Fields = append(cls.Fields, &classfile.Field{Name: "v", Descriptor: "V"})
	err := New().Define(cls, newTestEntity)
	var ke fieldhook.KindError
	require.True(t, errors.As(err, &ke), err.Error())
}
