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

package demo

import (
	_ "embed"
	"fmt"
	"io"
	"sync/atomic"

	"github.com/azn9/fieldhook/internal/accessor"
	"github.com/azn9/fieldhook/internal/classfile"
	"github.com/azn9/fieldhook/internal/emu"
	"github.com/azn9/fieldhook/internal/instrument"
	"github.com/azn9/fieldhook/internal/loader"
	"github.com/azn9/fieldhook/internal/opts"
)

//go:embed test.toml
var Source string

// Test stores the instances of the dev/azn9/test/Test class.
type Test struct {
	I int32             `fieldhook:"i,private"`
	Z *accessor.Integer `fieldhook:"z,private"`
}

func NewTest() interface{} {
	return new(Test)
}

// Report is the accessor traffic observed while running the demo.
type Report struct {
	Before  int32
	After   int32
	Gets    uint64
	Sets    uint64
	Version int
}

// Class parses the embedded Test class.
func Class() (*classfile.Class, error) {
	return classfile.ParseSource(Source)
}

// Run defines the Test class, exercises it, redefines it with the rewritten
// method bodies and exercises it again. Program output and the rewritten
// listing go to w.
func Run(w io.Writer, o opts.Options) (*Report, error) {
	cls, err := Class()
	if err != nil {
		return nil, err
	}

	/* define the original class */
	ld := loader.New()
	if err = ld.Define(cls, NewTest); err != nil {
		return nil, err
	}

	/* run the original code */
	ret := new(Report)
	em := emu.New(ld, w, o)
	if ret.Before, err = exercise(em, ld, cls.Name, 1); err != nil {
		return nil, err
	}

	/* rewrite the class */
	nc, _, err := instrument.Apply(cls, &o)
	if err != nil {
		return nil, err
	}
	if err = classfile.Dump(w, nc); err != nil {
		return nil, err
	}

	/* ship it through the class image, as a real redefinition would */
	buf, err := classfile.Marshal(nc)
	if err != nil {
		return nil, err
	}
	if err = ld.Redefine(cls.Name, buf); err != nil {
		return nil, err
	}

	/* run the rewritten code */
	gets := atomic.LoadUint64(&accessor.GetCount)
	sets := atomic.LoadUint64(&accessor.SetCount)
	if ret.After, err = exercise(em, ld, cls.Name, 2); err != nil {
		return nil, err
	}

	/* collect the accessor traffic */
	ret.Gets = atomic.LoadUint64(&accessor.GetCount) - gets
	ret.Sets = atomic.LoadUint64(&accessor.SetCount) - sets
	ret.Version = ld.Version(cls.Name)
	return ret, nil
}

/* new Test(), setI(v), readI(), then getI() */
func exercise(em *emu.Emulator, ld *loader.Loader, class string, v int32) (int32, error) {
	obj, err := ld.NewInstance(class)
	if err != nil {
		return 0, err
	}
	for _, call := range []struct {
		name string
		desc string
		args []interface{}
	}{
		{"<init>", "()V", nil},
		{"setI", "(Ljava/lang/Integer;)V", []interface{}{&accessor.Integer{V: v}}},
		{"readI", "()V", nil},
	} {
		if _, err = invoke(em, ld, class, obj, call.name, call.desc, call.args...); err != nil {
			return 0, err
		}
	}

	/* read it back */
	rv, err := invoke(em, ld, class, obj, "getI", "()Ljava/lang/Integer;")
	if err != nil {
		return 0, err
	}
	if bv, ok := rv.(*accessor.Integer); !ok || bv == nil {
		return 0, fmt.Errorf("getI returned %T", rv)
	} else {
		return bv.V, nil
	}
}

func invoke(em *emu.Emulator, ld *loader.Loader, class string, obj interface{}, name string, desc string, args ...interface{}) (interface{}, error) {
	if mv, err := ld.LookupMethod(class, name, desc); err != nil {
		return nil, err
	} else {
		return em.Invoke(class, mv, obj, args...)
	}
}
