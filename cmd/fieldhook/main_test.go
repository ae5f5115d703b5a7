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

package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/azn9/fieldhook/internal/demo"
	"github.com/stretchr/testify/require"
)

func run(t *testing.T, args ...string) (string, error) {
	buf := bytes.NewBuffer(nil)
	cmd := NewRootCommand()
	cmd.SetOut(buf)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return buf.String(), err
}

func writeSource(t *testing.T, src string) string {
	path := filepath.Join(t.TempDir(), "Test.toml")
	require.NoError(t, os.WriteFile(path, []byte(src), 0644))
	return path
}

func TestCLI_Dump(t *testing.T) {
	out, err := run(t, "dump", writeSource(t, demo.Source))
	require.NoError(t, err)
	require.Contains(t, out, "public class dev/azn9/test/Test extends java/lang/Object {")
	require.Contains(t, out, "getfield dev/azn9/test/Test i I")
}

func TestCLI_RewriteAndInspect(t *testing.T) {
	src := writeSource(t, demo.Source)
	img := filepath.Join(t.TempDir(), "Test.class")
	out, err := run(t, "rewrite", src, "-o", img, "--accessor-owner", "my/Runtime", "--stack-check")
	require.NoError(t, err)
	require.Contains(t, out, "invokestatic my/Runtime get")
	require.NotContains(t, out, "getfield dev/azn9/test/Test i I")

	/* the saved image holds the same class */
	ins, err := run(t, "inspect", img)
	require.NoError(t, err)
	require.Equal(t, out, ins)
}

func TestCLI_RewriteSource(t *testing.T) {
	out, err := run(t, "rewrite", writeSource(t, demo.Source), "--source", "--skip", "i")
	require.NoError(t, err)
	require.Contains(t, out, `name = "dev/azn9/test/Test"`)
	require.Contains(t, out, "getfield dev/azn9/test/Test i I")
}

func TestCLI_RewriteUnresolvedField(t *testing.T) {
	img := filepath.Join(t.TempDir(), "Bad.class")
	src := writeSource(t, "name = \"Bad\"\n[[fields]]\nname = \"v\"\ndescriptor = \"V\"\n")
	_, err := run(t, "rewrite", src, "-o", img)
	require.Error(t, err)
	_, err = os.Stat(img)
	require.True(t, os.IsNotExist(err))
}

func TestCLI_Errors(t *testing.T) {
	_, err := run(t, "dump")
	require.Error(t, err)
	_, err = run(t, "inspect", filepath.Join(t.TempDir(), "nope"))
	require.Error(t, err)
	_, err = run(t, "rewrite", writeSource(t, demo.Source), "--accessor-owner", "bad.name")
	require.Error(t, err)
	_, err = run(t, "dump", "--conf", filepath.Join(t.TempDir(), "nope.toml"), writeSource(t, demo.Source))
	require.Error(t, err)
}

func TestCLI_Demo(t *testing.T) {
	out, err := run(t, "demo")
	require.NoError(t, err)
	require.Contains(t, out, "before: 1, after: 2, class version: 1")
	require.Contains(t, out, "accessor calls: 2 gets, 1 sets")
}
