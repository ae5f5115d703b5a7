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

// Emitter receives the instructions produced by a Stage.
type Emitter func(ins Instr)

// Stage is a single streaming transformation of a method body. Step consumes one
// instruction and emits zero or more instructions, Flush is called once at the
// end of every method body and must emit anything the stage still holds.
type Stage interface {
	Step(ins Instr, emit Emitter)
	Flush(emit Emitter)
}

// Pipeline composes stages sequentially, every stage sees the output of the
// stage before it.
type Pipeline []Stage

func (self Pipeline) emitters(sink Emitter) []Emitter {
	ret := make([]Emitter, len(self)+1)
	ret[len(self)] = sink

	/* chain the stages from the sink backwards */
	for i := len(self) - 1; i >= 0; i-- {
		st, next := self[i], ret[i+1]
		ret[i] = func(ins Instr) { st.Step(ins, next) }
	}
	return ret
}

// Run streams the program through every stage, delivering the result to sink.
func (self Pipeline) Run(p Program, sink Emitter) {
	emit := self.emitters(sink)

	/* stream every instruction exactly once */
	for _, ins := range p {
		emit[0](ins)
	}

	/* flush in order, so anything released upstream still passes downstream */
	for i, st := range self {
		st.Flush(emit[i+1])
	}
}

// Apply is like Run, but collects the output into a new Program.
func (self Pipeline) Apply(p Program) Program {
	ret := make(Program, 0, len(p))
	self.Run(p, func(ins Instr) { ret = append(ret, ins) })
	return ret
}
