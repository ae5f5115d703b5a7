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
	"fmt"
	"strconv"
	"strings"

	"github.com/azn9/fieldhook/internal/utils"
)

// Assemble parses the textual form of a method body, as produced by
// Program.Disassemble.
//
// Every line holds one instruction, a label definition ("L1:"), a comment
// starting with "#" or "//", or nothing.
func Assemble(src string) (Program, error) {
	var pos int
	var ret Program

	/* parse line by line */
	for ln, line := range strings.Split(src, "\n") {
		off := pos
		pos += len(line) + 1

		/* skip empty lines and comments */
		if line = strings.TrimSpace(line); line == "" || strings.HasPrefix(line, "#") || strings.HasPrefix(line, "//") {
			continue
		}

		/* parse the instruction */
		if ins, err := assembleLine(line); err != nil {
			return nil, utils.ESyntax(off, src, fmt.Sprintf("line %d: %s", ln+1, err))
		} else {
			ret = append(ret, ins)
		}
	}
	return ret, nil
}

func assembleLine(line string) (Instr, error) {
	var ok bool
	var op OpCode

	/* label definitions */
	if strings.HasSuffix(line, ":") {
		if id, err := parseLabel(strings.TrimSuffix(line, ":")); err != nil {
			return Instr{}, err
		} else {
			return Label(id), nil
		}
	}

	/* split the mnemonic from the operands */
	mn, rest := line, ""
	if i := strings.IndexAny(line, " \t"); i >= 0 {
		mn, rest = line[:i], strings.TrimSpace(line[i+1:])
	}

	/* lookup the opcode */
	if op, ok = LookupOpCode(mn); !ok {
		return Instr{}, fmt.Errorf("unknown instruction %q", mn)
	}

	/* constants may contain spaces, parse them before splitting */
	if _OpForms[op] == _F_ldc {
		if cv, err := parseConst(rest); err != nil {
			return Instr{}, err
		} else {
			return Ldc(cv), nil
		}
	}

	/* everything else is space separated */
	args := strings.Fields(rest)
	switch _OpForms[op] {
	case _F_none:
		if err := arity(op, args, 0); err != nil {
			return Instr{}, err
		}
		return Simple(op), nil
	case _F_var:
		if err := arity(op, args, 1); err != nil {
			return Instr{}, err
		} else if v, err := strconv.ParseUint(args[0], 10, 16); err != nil {
			return Instr{}, fmt.Errorf("invalid local slot %q", args[0])
		} else {
			return Var(op, int(v)), nil
		}
	case _F_int:
		if err := arity(op, args, 1); err != nil {
			return Instr{}, err
		} else if v, err := strconv.ParseInt(args[0], 0, 32); err != nil {
			return Instr{}, fmt.Errorf("invalid integer %q", args[0])
		} else {
			return Int(int32(v)), nil
		}
	case _F_type:
		if err := arity(op, args, 1); err != nil {
			return Instr{}, err
		}
		return New(args[0]), nil
	case _F_field:
		if err := arity(op, args, 3); err != nil {
			return Instr{}, err
		}
		return Field(op, args[0], args[1], args[2]), nil
	case _F_method:
		if len(args) == 4 && args[3] == "itf" {
			return Method(op, args[0], args[1], args[2], true), nil
		} else if err := arity(op, args, 3); err != nil {
			return Instr{}, err
		} else {
			return Method(op, args[0], args[1], args[2], op == OP_invokeinterface), nil
		}
	case _F_jump:
		if err := arity(op, args, 1); err != nil {
			return Instr{}, err
		} else if id, err := parseLabel(args[0]); err != nil {
			return Instr{}, err
		} else {
			return Jump(op, id), nil
		}
	default:
		return Instr{}, fmt.Errorf("instruction %q cannot be assembled", mn)
	}
}

func arity(op OpCode, args []string, n int) error {
	if len(args) != n {
		return fmt.Errorf("%s expects %d operand(s), got %d", op, n, len(args))
	} else {
		return nil
	}
}

func parseLabel(s string) (int, error) {
	if len(s) < 2 || s[0] != 'L' {
		return 0, fmt.Errorf("invalid label %q", s)
	} else if v, err := strconv.ParseUint(s[1:], 10, 31); err != nil {
		return 0, fmt.Errorf("invalid label %q", s)
	} else {
		return int(v), nil
	}
}

func parseConst(s string) (interface{}, error) {
	if s == "" {
		return nil, fmt.Errorf("missing constant")
	}

	/* string constants */
	if s[0] == '"' {
		if q, err := strconv.QuotedPrefix(s); err != nil {
			return nil, fmt.Errorf("invalid string constant %s", s)
		} else if q != s {
			return nil, fmt.Errorf("trailing characters after string constant")
		} else {
			return strconv.Unquote(q)
		}
	}

	/* numeric constants, the suffix tells the type */
	switch body, sfx := s[:len(s)-1], s[len(s)-1]; sfx {
	case 'L', 'l':
		if v, err := strconv.ParseInt(body, 0, 64); err == nil {
			return v, nil
		}
	case 'F', 'f':
		if v, err := strconv.ParseFloat(body, 32); err == nil {
			return float32(v), nil
		}
	case 'D', 'd':
		if v, err := strconv.ParseFloat(body, 64); err == nil {
			return v, nil
		}
	}

	/* no suffix, or the suffix is a hex digit */
	if v, err := strconv.ParseInt(s, 0, 32); err == nil {
		return int32(v), nil
	} else if v, err := strconv.ParseFloat(s, 64); err == nil {
		return v, nil
	} else {
		return nil, fmt.Errorf("invalid constant %q", s)
	}
}

// MustAssemble is like Assemble, but panics on errors.
func MustAssemble(src string) Program {
	if p, err := Assemble(src); err != nil {
		panic(err)
	} else {
		return p
	}
}
