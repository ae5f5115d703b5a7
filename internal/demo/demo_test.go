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
	"bytes"
	"strings"
	"testing"

	"github.com/azn9/fieldhook"
	"github.com/stretchr/testify/require"
)

func TestDemo_Run(t *testing.T) {
	buf := bytes.NewBuffer(nil)
	o := fieldhook.ResolveOptions(fieldhook.WithStackCheck(true))
	ret, err := Run(buf, o)
	require.NoError(t, err)
	println(buf.String())

	require.Equal(t, int32(1), ret.Before)
	require.Equal(t, int32(2), ret.After)
	require.Equal(t, 1, ret.Version)

	/* one read in readI and one in getI, one write in setI */
	require.Equal(t, uint64(2), ret.Gets)
	require.Equal(t, uint64(1), ret.Sets)

	/* both runs printed their value, and the listing shows the accessors */
	out := buf.String()
	require.True(t, strings.HasPrefix(out, "1\n"), out)
	require.True(t, strings.HasSuffix(out, "\n2\n"), out)
	require.Contains(t, out, "invokestatic "+o.AccessorOwner+" get ")
	require.Contains(t, out, "invokestatic "+o.AccessorOwner+" set ")
}

func TestDemo_Class(t *testing.T) {
	cls, err := Class()
	require.NoError(t, err)
	require.Len(t, cls.EligibleFields(), 2)
	require.NotNil(t, cls.Method("readI", "()V"))
}
