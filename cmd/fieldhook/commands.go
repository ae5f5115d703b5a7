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
	"fmt"
	"io"
	"os"

	"github.com/azn9/fieldhook/debug"
	"github.com/azn9/fieldhook/internal/classfile"
	"github.com/azn9/fieldhook/internal/demo"
	"github.com/azn9/fieldhook/internal/instrument"
	"github.com/spf13/cobra"
	"go.uber.org/multierr"
)

type DumpCmd struct {
	BaseCmd
}

func GetDumpCmd(conf *Config) *DumpCmd {
	dumpCmdIns := new(DumpCmd)
	dumpCmdIns.SetCmd(&cobra.Command{
		Use:     "dump <class.toml>",
		Short:   "Print the listing of a class source.",
		Example: "fieldhook dump Test.toml",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cls, err := classfile.ParseSourceFile(args[0])
			if err != nil {
				return err
			}
			return classfile.Dump(cmd.OutOrStdout(), cls)
		},
	})
	return dumpCmdIns
}

type RewriteCmd struct {
	BaseCmd
	output string
	source bool
}

func GetRewriteCmd(conf *Config) *RewriteCmd {
	rewriteCmdIns := new(RewriteCmd)
	rewriteCmdIns.SetCmd(&cobra.Command{
		Use:     "rewrite <class.toml>",
		Short:   "Redirect the field accesses of a class, and print or save the result.",
		Example: "fieldhook rewrite Test.toml -o Test.class",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return rewriteCmdIns.Rewrite(conf, cmd.OutOrStdout(), args[0])
		},
	})
	rewriteCmdIns.Cmd.Flags().StringVarP(&rewriteCmdIns.output, "output", "o", "", "write the class image to this file")
	rewriteCmdIns.Cmd.Flags().BoolVar(&rewriteCmdIns.source, "source", false, "print the result in the source format instead of a listing")
	return rewriteCmdIns
}

func (self *RewriteCmd) Rewrite(conf *Config, w io.Writer, path string) error {
	o, err := conf.Options()
	if err != nil {
		return err
	}
	cls, err := classfile.ParseSourceFile(path)
	if err != nil {
		return err
	}

	/* field errors are reported, but do not stop the listing */
	ret, rpt, err := instrument.Apply(cls, &o)
	for _, ex := range multierr.Errors(err) {
		log.Errorf("%v", ex)
	}

	/* print the result */
	if self.source {
		if ex := classfile.WriteSource(w, ret); ex != nil {
			return ex
		}
	} else {
		if ex := classfile.Dump(w, ret); ex != nil {
			return ex
		}
	}

	/* a class with unresolved fields is never saved */
	log.Infof("%d fields, %d reads, %d writes, skipped %v", len(rpt.Fields), rpt.Reads, rpt.Writes, rpt.Skipped)
	if err != nil {
		return fmt.Errorf("%s was not fully instrumented: %w", cls.Name, err)
	}
	if self.output == "" {
		return nil
	}

	/* save the class image */
	buf, err := classfile.Marshal(ret)
	if err != nil {
		return err
	}
	return os.WriteFile(self.output, buf, 0644)
}

type InspectCmd struct {
	BaseCmd
}

func GetInspectCmd(conf *Config) *InspectCmd {
	inspectCmdIns := new(InspectCmd)
	inspectCmdIns.SetCmd(&cobra.Command{
		Use:     "inspect <class image>",
		Short:   "Print the listing of a class image.",
		Example: "fieldhook inspect Test.class",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			buf, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			cls, err := classfile.Unmarshal(buf)
			if err != nil {
				return err
			}
			return classfile.Dump(cmd.OutOrStdout(), cls)
		},
	})
	return inspectCmdIns
}

type DemoCmd struct {
	BaseCmd
}

func GetDemoCmd(conf *Config) *DemoCmd {
	demoCmdIns := new(DemoCmd)
	demoCmdIns.SetCmd(&cobra.Command{
		Use:     "demo",
		Short:   "Run the Test class before and after redirecting its field accesses.",
		Example: "fieldhook demo -v",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			o, err := conf.Options()
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			rpt, err := demo.Run(w, o)
			if err != nil {
				return err
			}
			st := debug.GetStats()
			fmt.Fprintf(w, "before: %d, after: %d, class version: %d\n", rpt.Before, rpt.After, rpt.Version)
			fmt.Fprintf(w, "accessor calls: %d gets, %d sets\n", rpt.Gets, rpt.Sets)
			fmt.Fprintf(w, "rewritten: %d reads, %d writes, %d instructions released\n", st.Rewrite.Reads, st.Rewrite.Writes, st.Rewrite.Flushed)
			return nil
		},
	})
	return demoCmdIns
}
