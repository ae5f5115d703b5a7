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
	"fmt"
	"reflect"
	"strings"
	"sync"
	"sync/atomic"
	"unsafe"

	"github.com/azn9/fieldhook/internal/defs"
)

const (
	Tag = "fieldhook"
)

type Field struct {
	Name    string
	Index   int
	Offset  uintptr
	Type    reflect.Type
	Private bool
}

type Struct struct {
	Type   reflect.Type
	Fields []*Field
	byName map[string]*Field
}

func (self *Struct) Lookup(name string) (*Field, bool) {
	fv, ok := self.byName[name]
	return fv, ok
}

var (
	TypeCount    uint64 = 0
	structsLock         = new(sync.RWMutex)
	structsCache        = make(map[reflect.Type]*Struct)
)

// ResolveStruct returns the accessible fields of a struct type. Results are
// cached per type.
func ResolveStruct(vt reflect.Type) (*Struct, error) {
	var ok bool
	var ex error
	var sd *Struct

	/* attempt to find in cache */
	structsLock.RLock()
	sd, ok = structsCache[vt]
	structsLock.RUnlock()

	/* check if it exists */
	if ok {
		return sd, nil
	}

	/* retry with write lock */
	structsLock.Lock()
	defer structsLock.Unlock()

	/* try again */
	if sd, ok = structsCache[vt]; ok {
		return sd, nil
	}

	/* still not found, do the actual resolving */
	if sd, ex = doResolveStruct(vt); ex != nil {
		return nil, ex
	}

	/* update cache */
	structsCache[vt] = sd
	atomic.AddUint64(&TypeCount, 1)
	return sd, nil
}

func doResolveStruct(vt reflect.Type) (*Struct, error) {
	if vt.Kind() != reflect.Struct {
		return nil, fmt.Errorf("%s is not a struct", vt)
	}

	/* traverse all the fields */
	sd := &Struct{Type: vt, byName: make(map[string]*Field, vt.NumField())}
	for i := 0; i < vt.NumField(); i++ {
		sf := vt.Field(i)
		tv, ok := sf.Tag.Lookup(Tag)

		/* ignore fields that do not declare the tag */
		if !ok || sf.Anonymous {
			continue
		}

		/* the first element is the field name, the rest are options */
		ft := strings.Split(tv, ",")
		fv := &Field{
			Name:   strings.TrimSpace(ft[0]),
			Index:  i,
			Offset: sf.Offset,
			Type:   sf.Type,
		}

		/* parse the options */
		for _, opt := range ft[1:] {
			switch strings.TrimSpace(opt) {
			case "private":
				fv.Private = true
			default:
				return nil, fmt.Errorf("invalid option %q for field %s.%s", opt, vt, sf.Name)
			}
		}

		/* check for duplicates */
		if fv.Name == "" {
			return nil, fmt.Errorf("empty field name for field %s.%s", vt, sf.Name)
		} else if _, ok = sd.byName[fv.Name]; ok {
			return nil, fmt.Errorf("duplicated field name %q for field %s.%s", fv.Name, vt, sf.Name)
		}

		/* add to field list */
		sd.Fields = append(sd.Fields, fv)
		sd.byName[fv.Name] = fv
	}
	return sd, nil
}

/* fields may be unexported, so they are reached through their address */
func fieldOf(p unsafe.Pointer, fv *Field) reflect.Value {
	return reflect.NewAt(fv.Type, unsafe.Pointer(uintptr(p)+fv.Offset)).Elem()
}

var goTypeTab = [...]reflect.Type{
	defs.K_int:     reflect.TypeOf(int32(0)),
	defs.K_long:    reflect.TypeOf(int64(0)),
	defs.K_float:   reflect.TypeOf(float32(0)),
	defs.K_double:  reflect.TypeOf(float64(0)),
	defs.K_boolean: reflect.TypeOf(false),
	defs.K_byte:    reflect.TypeOf(int8(0)),
	defs.K_short:   reflect.TypeOf(int16(0)),
	defs.K_char:    reflect.TypeOf(uint16(0)),
}

// GoTypeOf returns the Go type that stores a value of the primitive type vt,
// or nil if vt is a reference or not a supported primitive.
func GoTypeOf(vt defs.Type) reflect.Type {
	if !vt.IsPrimitive() || int(vt.K) >= len(goTypeTab) {
		return nil
	} else {
		return goTypeTab[vt.K]
	}
}
