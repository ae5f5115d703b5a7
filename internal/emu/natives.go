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

package emu

import (
	"fmt"
	"reflect"

	"github.com/azn9/fieldhook/internal/accessor"
	"github.com/azn9/fieldhook/internal/defs"
	"github.com/azn9/fieldhook/internal/rewrite"
)

// Native implements a method in Go. recv is nil for static methods, args are
// in operand stack form.
type Native func(e *Emulator, recv interface{}, args []interface{}) (interface{}, error)

var (
	nativeTab = map[string]Native{}
)

func nativeKey(owner string, name string, desc string) string {
	return owner + "." + name + desc
}

// RegisterNative binds a Go implementation to a method, for every emulator
// created afterwards.
func RegisterNative(owner string, name string, desc string, fn Native) {
	nativeTab[nativeKey(owner, name, desc)] = fn
}

func init() {
	RegisterNative("java/lang/Object", "<init>", "()V", nativeNop)
	RegisterNative("java/lang/Object", "hashCode", "()I", nativeHashCode)
	RegisterNative("java/io/PrintStream", "println", "()V", nativePrintln)
	RegisterNative("java/io/PrintStream", "println", "(Ljava/lang/String;)V", nativePrintln)
	RegisterNative("java/io/PrintStream", "println", "(Ljava/lang/Object;)V", nativePrintln)
	RegisterNative("java/io/PrintStream", "println", "(I)V", nativePrintln)
	RegisterNative("java/io/PrintStream", "println", "(J)V", nativePrintln)
	RegisterNative("java/io/PrintStream", "println", "(F)V", nativePrintln)
	RegisterNative("java/io/PrintStream", "println", "(D)V", nativePrintln)
	RegisterNative("java/io/PrintStream", "println", "(Z)V", nativePrintlnBool)
	RegisterNative("java/io/PrintStream", "println", "(C)V", nativePrintlnChar)

	/* boxing and unboxing of every primitive kind */
	for _, k := range defs.Kinds {
		registerBoxing(k)
	}
}

func registerBoxing(k defs.Kind) {
	vt := defs.Primitive(k)
	bt, _ := defs.ObjectTypeOf(vt)
	pd, _ := defs.DescriptorOf(vt)
	bd, _ := defs.DescriptorOf(bt)
	unbox, _, _ := defs.UnboxMethodOf(bt)

	/* Integer.valueOf(I)Ljava/lang/Integer; and friends */
	RegisterNative(bt.InternalName(), "valueOf", "("+pd+")"+bd, func(_ *Emulator, _ interface{}, args []interface{}) (interface{}, error) {
		if rv, err := narrowKind(args[0], k); err != nil {
			return nil, err
		} else {
			return accessor.Box(rv.Interface()), nil
		}
	})

	/* Integer.intValue()I and friends */
	RegisterNative(bt.InternalName(), unbox, "()"+pd, func(_ *Emulator, recv interface{}, _ []interface{}) (interface{}, error) {
		if uv, ok := accessor.Unbox(recv); !ok {
			return nil, fmt.Errorf("%T is not a %s", recv, bt)
		} else if rv := reflect.ValueOf(uv); rv.Type() != accessor.GoTypeOf(vt) {
			return nil, fmt.Errorf("%T is not a %s", recv, bt)
		} else {
			return widen(rv), nil
		}
	})
}

var castTab = [...]func(v interface{}) (interface{}, error){
	defs.K_int: func(v interface{}) (interface{}, error) {
		r, err := accessor.CastBackToInt(v)
		return r, err
	},
	defs.K_long: func(v interface{}) (interface{}, error) {
		r, err := accessor.CastBackToLong(v)
		return r, err
	},
	defs.K_float: func(v interface{}) (interface{}, error) {
		r, err := accessor.CastBackToFloat(v)
		return r, err
	},
	defs.K_double: func(v interface{}) (interface{}, error) {
		r, err := accessor.CastBackToDouble(v)
		return r, err
	},
	defs.K_boolean: func(v interface{}) (interface{}, error) {
		r, err := accessor.CastBackToBoolean(v)
		return r, err
	},
	defs.K_byte: func(v interface{}) (interface{}, error) {
		r, err := accessor.CastBackToByte(v)
		return r, err
	},
	defs.K_short: func(v interface{}) (interface{}, error) {
		r, err := accessor.CastBackToShort(v)
		return r, err
	},
	defs.K_char: func(v interface{}) (interface{}, error) {
		r, err := accessor.CastBackToChar(v)
		return r, err
	},
}

/* binds the accessors and the coercions under their configured owners */
func (self *Emulator) bindRuntime(acc string, coerce string) {
	self.natives[nativeKey(acc, rewrite.GetterName, rewrite.GetterDesc)] = nativeGet
	self.natives[nativeKey(acc, rewrite.SetterName, rewrite.SetterDesc)] = nativeSet

	/* one coercion per primitive kind */
	for _, k := range defs.Kinds {
		fd, err := defs.ResolveFieldType("", defs.Primitive(k))
		if err != nil {
			panic(err)
		}
		cast := castTab[k]
		self.natives[nativeKey(coerce, fd.Plan.Name, fd.Plan.Desc)] = func(_ *Emulator, _ interface{}, args []interface{}) (interface{}, error) {
			if v, err := cast(args[0]); err != nil {
				return nil, err
			} else {
				return widen(reflect.ValueOf(v)), nil
			}
		}
	}
}

func nativeGet(_ *Emulator, _ interface{}, args []interface{}) (interface{}, error) {
	if name, ok := args[1].(string); !ok {
		return nil, fmt.Errorf("field name must be a string, got %T", args[1])
	} else {
		return accessor.Get(args[0], name)
	}
}

func nativeSet(_ *Emulator, _ interface{}, args []interface{}) (interface{}, error) {
	if name, ok := args[3].(string); !ok {
		return nil, fmt.Errorf("field name must be a string, got %T", args[3])
	} else {
		return nil, accessor.Set(args[0], args[1], args[2], name)
	}
}

func nativeNop(_ *Emulator, _ interface{}, _ []interface{}) (interface{}, error) {
	return nil, nil
}

func nativeHashCode(_ *Emulator, recv interface{}, _ []interface{}) (interface{}, error) {
	rv := reflect.ValueOf(recv)
	if rv.Kind() == reflect.Ptr {
		return int32(rv.Pointer()), nil
	} else {
		return int32(len(Format(recv))), nil
	}
}

func printStream(recv interface{}) (*PrintStream, error) {
	if ps, ok := recv.(*PrintStream); !ok {
		return nil, fmt.Errorf("%T is not a java.io.PrintStream", recv)
	} else {
		return ps, nil
	}
}

func nativePrintln(_ *Emulator, recv interface{}, args []interface{}) (interface{}, error) {
	ps, err := printStream(recv)
	if err != nil {
		return nil, err
	}
	if len(args) == 0 {
		_, err = fmt.Fprintln(ps.W)
	} else {
		_, err = fmt.Fprintln(ps.W, Format(args[0]))
	}
	return nil, err
}

func nativePrintlnBool(e *Emulator, recv interface{}, args []interface{}) (interface{}, error) {
	if rv, err := narrowKind(args[0], defs.K_boolean); err != nil {
		return nil, err
	} else {
		return nativePrintln(e, recv, []interface{}{rv.Interface()})
	}
}

func nativePrintlnChar(e *Emulator, recv interface{}, args []interface{}) (interface{}, error) {
	if rv, err := narrowKind(args[0], defs.K_char); err != nil {
		return nil, err
	} else {
		return nativePrintln(e, recv, []interface{}{rv.Interface()})
	}
}
