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

package instrument

import (
	"fmt"

	"github.com/azn9/fieldhook"
	"github.com/azn9/fieldhook/internal/classfile"
	"github.com/azn9/fieldhook/internal/defs"
	"github.com/azn9/fieldhook/internal/ir"
	"github.com/azn9/fieldhook/internal/opts"
	"github.com/azn9/fieldhook/internal/rewrite"
	"github.com/azn9/fieldhook/internal/utils"
	"github.com/oleiade/lane"
	"github.com/tliron/commonlog"
	"go.uber.org/multierr"
)

var log = commonlog.GetLogger("fieldhook.instrument")

// Report summarizes what Instrument did to a class.
type Report struct {
	Class   string
	Fields  []string
	Skipped []string
	Reads   int
	Writes  int
}

// Instrument returns a copy of cls with the accesses to its eligible fields
// redirected to the accessors. The original class is left untouched.
//
// A field that cannot be resolved is reported as a FieldError and left alone,
// the other fields are still rewritten. All such errors are combined into the
// returned error, together with a usable class.
func Instrument(cls *classfile.Class, options ...fieldhook.Option) (*classfile.Class, error) {
	o := fieldhook.ResolveOptions(options...)
	ret, _, err := Apply(cls, &o)
	return ret, err
}

// Apply is like Instrument, with already resolved options. It also returns a
// report of the rewrite.
func Apply(cls *classfile.Class, o *opts.Options) (*classfile.Class, *Report, error) {
	var err error
	var pl ir.Pipeline

	/* build the pipeline, one getter and one setter per field */
	rpt := &Report{Class: cls.Name}
	fds, err := resolve(cls, o, rpt)

	/* chain all the field stages */
	for _, fd := range fds {
		pl = append(pl, rewrite.ForField(fd, o)...)
	}

	/* rewrite every method body */
	ret := cls.Clone()
	for _, mv := range ret.Methods {
		code := pl.Apply(mv.Code)

		/* optionally verify the stack effect */
		if o.StackCheck {
			if ex := checkStack(cls.Name, mv, code, fds, o); ex != nil {
				log.Errorf("%s.%s: %v", cls.Name, mv, ex)
				err = multierr.Append(err, ex)
				continue
			}
		}

		/* count the accessor calls that were added */
		nr, nw := countAccessors(code, o)
		or, ow := countAccessors(mv.Code, o)
		rpt.Reads += nr - or
		rpt.Writes += nw - ow

		/* update the method body */
		if nr != or || nw != ow {
			log.Debugf("%s.%s: %d reads and %d writes redirected", cls.Name, mv, nr-or, nw-ow)
		}
		mv.Code = code
	}

	/* all done */
	log.Infof("instrumented %s: %d fields, %d reads, %d writes", cls.Name, len(rpt.Fields), rpt.Reads, rpt.Writes)
	return ret, rpt, err
}

func resolve(cls *classfile.Class, o *opts.Options, rpt *Report) ([]*defs.FieldDesc, error) {
	var err error
	var ret []*defs.FieldDesc

	/* queue up the eligible fields in declaration order */
	fq := lane.NewQueue()
	for _, fv := range cls.EligibleFields() {
		if o.CanRewrite(fv.Name) {
			fq.Enqueue(fv)
		} else {
			log.Debugf("%s.%s: skipped by configuration", cls.Name, fv.Name)
			rpt.Skipped = append(rpt.Skipped, fv.Name)
		}
	}

	/* resolve them one by one */
	for !fq.Empty() {
		fv := fq.Dequeue().(*classfile.Field)
		fd, ex := defs.ResolveField(fv.Name, fv.Descriptor)

		/* a failing field does not affect the others */
		if ex != nil {
			log.Errorf("%s.%s: %v", cls.Name, fv.Name, ex)
			err = multierr.Append(err, utils.EField(cls.Name, fv.Name, ex))
			rpt.Skipped = append(rpt.Skipped, fv.Name)
			continue
		}

		/* add to field list */
		log.Debugf("%s.%s: %s", cls.Name, fv.Name, fd)
		ret = append(ret, fd)
		rpt.Fields = append(rpt.Fields, fv.Name)
	}
	return ret, err
}

func checkStack(class string, mv *classfile.Method, code ir.Program, fds []*defs.FieldDesc, o *opts.Options) error {
	n0, err := ir.NetEffect(mv.Code)
	if err != nil {
		return utils.EFieldIn(class, "", mv.String(), err)
	}
	n1, err := ir.NetEffect(code)
	if err != nil {
		return utils.EFieldIn(class, "", mv.String(), err)
	}

	/* nothing changed */
	if n0 == n1 {
		return nil
	}

	/* find the field responsible for the change */
	for _, fd := range fds {
		if nf, ex := ir.NetEffect(rewrite.ForField(fd, o).Apply(mv.Code)); ex == nil && nf != n0 {
			return utils.EFieldIn(class, fd.Name, mv.String(), fmt.Errorf("stack effect changed from %d to %d", n0, nf))
		}
	}
	return utils.EFieldIn(class, "", mv.String(), fmt.Errorf("stack effect changed from %d to %d", n0, n1))
}

func countAccessors(p ir.Program, o *opts.Options) (int, int) {
	nr, nw := 0, 0
	for _, ins := range p {
		if ins.Op == ir.OP_invokestatic && ins.Owner == o.AccessorOwner {
			switch {
			case ins.Name == rewrite.GetterName && ins.Desc == rewrite.GetterDesc:
				nr++
			case ins.Name == rewrite.SetterName && ins.Desc == rewrite.SetterDesc:
				nw++
			}
		}
	}
	return nr, nw
}
