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
	"os"

	"github.com/spf13/cobra"
	"github.com/tliron/commonlog"

	_ "github.com/tliron/commonlog/simple"
)

var log = commonlog.GetLogger("fieldhook")

func main() {
	if err := NewRootCommand().Execute(); err != nil {
		log.Errorf("%v", err)
		fmt.Fprintln(os.Stderr, "fieldhook:", err)
		os.Exit(1)
	}
}

func NewRootCommand() *cobra.Command {
	conf := new(Config)
	rootCmd := &cobra.Command{
		Use:           "fieldhook <command> [arguments]",
		Short:         "fieldhook redirects field accesses of classes to accessor calls.",
		SilenceUsage:  true,
		SilenceErrors: true,
		Example:       "fieldhook rewrite Test.toml -o Test.class",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return conf.Load()
		},
	}

	/* global flags */
	conf.Bind(rootCmd.PersistentFlags())

	/* sub commands */
	rootCmd.AddCommand(GetDumpCmd(conf).GetCmd())
	rootCmd.AddCommand(GetRewriteCmd(conf).GetCmd())
	rootCmd.AddCommand(GetInspectCmd(conf).GetCmd())
	rootCmd.AddCommand(GetDemoCmd(conf).GetCmd())
	return rootCmd
}

type BaseCmd struct {
	Cmd *cobra.Command
}

func (self *BaseCmd) SetCmd(cmd *cobra.Command) {
	self.Cmd = cmd
}

func (self *BaseCmd) GetCmd() *cobra.Command {
	return self.Cmd
}
