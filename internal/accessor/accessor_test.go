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

package accessor

import (
	"errors"
	"reflect"
	"sync/atomic"
	"testing"

	"github.com/azn9/fieldhook"
	"github.com/azn9/fieldhook/internal/defs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type entity struct {
	i     int32    `fieldhook:"i,private"`
	z     *Integer `fieldhook:"z"`
	Name  string   `fieldhook:"name"`
	L     int64    `fieldhook:"l"`
	B     bool     `fieldhook:"b"`
	C     uint16   `fieldhook:"c"`
	Other int
}

type stranger struct{}

func TestAccessor_ResolveStruct(t *testing.T) {
	sd, err := ResolveStruct(reflect.TypeOf(entity{}))
	require.NoError(t, err)
	require.Len(t, sd.Fields, 6)
	fv, ok := sd.Lookup("i")
	require.True(t, ok)
	require.True(t, fv.Private)
	_, ok = sd.Lookup("Other")
	require.False(t, ok)

	/* served from cache the second time */
	sd2, err := ResolveStruct(reflect.TypeOf(entity{}))
	require.NoError(t, err)
	require.Same(t, sd, sd2)
}

func TestAccessor_ResolveStructErrors(t *testing.T) {
	type dup struct {
		A int32 `fieldhook:"a"`
		B int32 `fieldhook:"a"`
	}
	type opt struct {
		A int32 `fieldhook:"a,public"`
	}
	type empty struct {
		A int32 `fieldhook:""`
	}
	for _, vt := range []reflect.Type{
		reflect.TypeOf(dup{}),
		reflect.TypeOf(opt{}),
		reflect.TypeOf(empty{}),
		reflect.TypeOf(0),
	} {
		_, err := ResolveStruct(vt)
		require.Error(t, err, vt.String())
	}
}

func TestAccessor_Get(t *testing.T) {
	v := &entity{i: 12, z: &Integer{23}, Name: "x", L: -5, B: true, C: 'q'}
	n := atomic.LoadUint64(&GetCount)

	rv, err := Get(v, "i")
	require.NoError(t, err)
	require.Equal(t, &Integer{12}, rv)
	rv, err = Get(v, "z")
	require.NoError(t, err)
	require.Same(t, v.z, rv)
	rv, err = Get(v, "name")
	require.NoError(t, err)
	require.Equal(t, "x", rv)
	rv, err = Get(v, "l")
	require.NoError(t, err)
	require.Equal(t, &Long{-5}, rv)
	rv, err = Get(v, "b")
	require.NoError(t, err)
	require.Equal(t, &Boolean{true}, rv)
	rv, err = Get(v, "c")
	require.NoError(t, err)
	require.Equal(t, &Character{'q'}, rv)
	require.Equal(t, n+6, atomic.LoadUint64(&GetCount))

	/* null references stay null */
	v.z = nil
	rv, err = Get(v, "z")
	require.NoError(t, err)
	require.Nil(t, rv)
}

func TestAccessor_GetErrors(t *testing.T) {
	var ae fieldhook.AccessError
	_, err := Get(&entity{}, "Other")
	require.True(t, errors.As(err, &ae))
	assert.Equal(t, "Other", ae.Field)
	_, err = Get(nil, "i")
	require.True(t, errors.As(err, &ae))
	_, err = Get((*entity)(nil), "i")
	require.True(t, errors.As(err, &ae))
	_, err = Get(entity{}, "i")
	require.True(t, errors.As(err, &ae))
}

func TestAccessor_Set(t *testing.T) {
	v := &entity{}
	n := atomic.LoadUint64(&SetCount)
	require.NoError(t, Set(v, &Integer{42}, v, "i"))
	require.Equal(t, int32(42), v.i)
	require.NoError(t, Set(v, int32(7), v, "i"))
	require.Equal(t, int32(7), v.i)
	require.NoError(t, Set(v, &Integer{23}, v, "z"))
	require.Equal(t, int32(23), v.z.V)
	require.NoError(t, Set(v, nil, v, "z"))
	require.Nil(t, v.z)
	require.NoError(t, Set(v, &Long{1 << 40}, &stranger{}, "l"))
	require.Equal(t, int64(1<<40), v.L)
	require.Equal(t, n+5, atomic.LoadUint64(&SetCount))
}

func TestAccessor_SetErrors(t *testing.T) {
	var ae fieldhook.AccessError
	v := &entity{i: 1}

	/* private field from another type */
	err := Set(v, &Integer{2}, &stranger{}, "i")
	require.True(t, errors.As(err, &ae))
	assert.Contains(t, ae.Note, "not accessible")
	require.Equal(t, int32(1), v.i)

	/* null into a primitive */
	err = Set(v, nil, v, "i")
	require.True(t, errors.As(err, &ae))

	/* wrong box */
	err = Set(v, &Long{2}, v, "i")
	require.True(t, errors.As(err, &ae))
	require.Equal(t, int32(1), v.i)

	/* missing field */
	err = Set(v, &Integer{2}, v, "nope")
	require.True(t, errors.As(err, &ae))
}

func TestAccessor_CastBack(t *testing.T) {
	iv, err := CastBackToInt(&Integer{-3})
	require.NoError(t, err)
	require.Equal(t, int32(-3), iv)
	lv, err := CastBackToLong(&Long{1 << 50})
	require.NoError(t, err)
	require.Equal(t, int64(1<<50), lv)
	fv, err := CastBackToFloat(&Float{1.5})
	require.NoError(t, err)
	require.Equal(t, float32(1.5), fv)
	dv, err := CastBackToDouble(&Double{2.25})
	require.NoError(t, err)
	require.Equal(t, 2.25, dv)
	zv, err := CastBackToBoolean(&Boolean{true})
	require.NoError(t, err)
	require.True(t, zv)
	bv, err := CastBackToByte(&Byte{-8})
	require.NoError(t, err)
	require.Equal(t, int8(-8), bv)
	sv, err := CastBackToShort(&Short{300})
	require.NoError(t, err)
	require.Equal(t, int16(300), sv)
	cv, err := CastBackToChar(&Character{'A'})
	require.NoError(t, err)
	require.Equal(t, uint16('A'), cv)

	var ce fieldhook.CastError
	_, err = CastBackToInt(nil)
	require.True(t, errors.As(err, &ce))
	_, err = CastBackToInt((*Integer)(nil))
	require.True(t, errors.As(err, &ce))
	_, err = CastBackToLong(&Integer{1})
	require.True(t, errors.As(err, &ce))
	assert.Equal(t, "long", ce.Want)
}

func TestAccessor_BoxUnbox(t *testing.T) {
	for _, v := range []interface{}{int32(1), int64(2), float32(3), float64(4), true, int8(5), int16(6), uint16(7)} {
		bv := Box(v)
		require.True(t, IsBoxed(bv), "%T", v)
		uv, ok := Unbox(bv)
		require.True(t, ok)
		require.Equal(t, v, uv)
	}
	require.Equal(t, "s", Box("s"))
	require.Nil(t, Box(nil))
	_, ok := Unbox((*Integer)(nil))
	require.False(t, ok)
	_, ok = Unbox("s")
	require.False(t, ok)
}

func TestAccessor_GoTypeOf(t *testing.T) {
	require.Equal(t, reflect.TypeOf(int32(0)), GoTypeOf(defs.Primitive(defs.K_int)))
	require.Equal(t, reflect.TypeOf(uint16(0)), GoTypeOf(defs.Primitive(defs.K_char)))
	require.Nil(t, GoTypeOf(defs.Reference("java.lang.Integer")))
	require.Nil(t, GoTypeOf(defs.Primitive(defs.K_void)))
	require.Nil(t, GoTypeOf(defs.Primitive(defs.Kind(42))))
}
