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
	"fmt"
	"strings"

	"github.com/azn9/fieldhook/internal/utils"
)

var descTab = [256]Kind{
	'I': K_int,
	'J': K_long,
	'F': K_float,
	'D': K_double,
	'Z': K_boolean,
	'B': K_byte,
	'S': K_short,
	'C': K_char,
	'V': K_void,
}

// ParseDescriptor parses a single binary type descriptor, such as "I" or
// "Ljava/lang/Integer;".
func ParseDescriptor(src string) (Type, error) {
	var i int
	ret, err := doParseDescriptor(src, &i)

	/* check for errors */
	if err != nil {
		return Type{}, err
	}

	/* must consume the whole string */
	if i != len(src) {
		return Type{}, utils.ESyntax(i, src, "trailing characters after type descriptor")
	} else {
		return ret, nil
	}
}

// ParseMethodDescriptor parses a method descriptor, such as "(Ljava/lang/Object;)I",
// into its argument types and return type.
func ParseMethodDescriptor(src string) ([]Type, Type, error) {
	var i int
	var err error
	var vt Type
	var args []Type

	/* must start with a '(' */
	if src == "" || src[0] != '(' {
		return nil, Type{}, utils.ESyntax(0, src, "'(' expected")
	}

	/* parse every argument */
	for i = 1; i < len(src) && src[i] != ')'; {
		if vt, err = doParseDescriptor(src, &i); err != nil {
			return nil, Type{}, err
		} else if vt.K == K_void {
			return nil, Type{}, utils.ESyntax(i-1, src, "void argument")
		} else {
			args = append(args, vt)
		}
	}

	/* check for the closing parenthesis */
	if i >= len(src) {
		return nil, Type{}, utils.ESyntax(i, src, "unexpected EOF")
	}

	/* parse the return type */
	i++
	if vt, err = doParseDescriptor(src, &i); err != nil {
		return nil, Type{}, err
	} else if i != len(src) {
		return nil, Type{}, utils.ESyntax(i, src, "trailing characters after return type")
	} else {
		return args, vt, nil
	}
}

// MethodDescriptor builds a method descriptor out of its argument and return types.
func MethodDescriptor(ret Type, args ...Type) (string, error) {
	var err error
	var sb strings.Builder

	/* argument list */
	sb.WriteByte('(')
	for _, vt := range args {
		if err = writeDescriptor(&sb, vt); err != nil {
			return "", err
		}
	}

	/* return type */
	sb.WriteByte(')')
	if err = writeDescriptor(&sb, ret); err != nil {
		return "", err
	} else {
		return sb.String(), nil
	}
}

func writeDescriptor(sb *strings.Builder, vt Type) error {
	if vt.K == K_void {
		sb.WriteByte('V')
		return nil
	} else if desc, err := DescriptorOf(vt); err != nil {
		return err
	} else {
		sb.WriteString(desc)
		return nil
	}
}

func doParseDescriptor(src string, i *int) (Type, error) {
	p := *i
	n := len(src)

	/* check for EOF */
	if p >= n {
		return Type{}, utils.ESyntax(p, src, "unexpected EOF")
	}

	/* primitive kinds are a single character */
	if c := src[p]; c != 'L' && c != '[' {
		if k := descTab[c]; k == K_ref {
			return Type{}, utils.ESyntax(p, src, fmt.Sprintf("invalid type descriptor character %q", c))
		} else {
			*i = p + 1
			return Primitive(k), nil
		}
	}

	/* array types keep their descriptor as the name */
	if src[p] == '[' {
		q := p
		for p < n && src[p] == '[' {
			p++
		}
		if _, err := doParseDescriptor(src, &p); err != nil {
			return Type{}, err
		}
		*i = p
		return Reference(src[q:p]), nil
	}

	/* class types, find the terminating ';' */
	e := strings.IndexByte(src[p:], ';')
	if e <= 1 {
		return Type{}, utils.ESyntax(p, src, "invalid class type descriptor")
	}

	/* slice the class name */
	*i = p + e + 1
	return Reference(src[p+1 : p+e]), nil
}
