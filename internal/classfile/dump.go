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

package classfile

import (
	"fmt"
	"io"
	"strings"
)

// Dump writes a human readable listing of the class.
func Dump(w io.Writer, cls *Class) error {
	var sb strings.Builder

	/* class header */
	if acc := cls.Access.String(); acc != "" {
		sb.WriteString(acc + " ")
	}
	sb.WriteString("class " + cls.Name)
	if cls.Super != "" {
		sb.WriteString(" extends " + cls.Super)
	}
	sb.WriteString(" {\n")

	/* fields */
	for _, fv := range cls.Fields {
		fmt.Fprintf(&sb, "    %s %s\n", member(fv.Access, fv.Name), fv.Descriptor)
	}

	/* methods, with their bodies */
	for _, mv := range cls.Methods {
		fmt.Fprintf(&sb, "\n    %s%s\n", member(mv.Access, mv.Name), mv.Descriptor)
		for _, line := range strings.Split(mv.Code.Disassemble(), "\n") {
			sb.WriteString("    " + line + "\n")
		}
	}

	/* write the listing */
	sb.WriteString("}\n")
	_, err := io.WriteString(w, sb.String())
	return err
}

func member(acc AccessFlags, name string) string {
	if s := acc.String(); s == "" {
		return name
	} else {
		return s + " " + name
	}
}
