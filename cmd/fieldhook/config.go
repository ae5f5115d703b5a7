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
	"strings"

	"github.com/azn9/fieldhook"
	"github.com/azn9/fieldhook/internal/opts"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"github.com/tliron/commonlog"
)

const (
	keyConf          = "conf"
	keyVerbose       = "verbose"
	keyAccessorOwner = "accessor-owner"
	keyCoercionOwner = "coercion-owner"
	keyStackCheck    = "stack-check"
	keySkip          = "skip"
)

// Config layers command line flags, FIELDHOOK_* environment variables and an
// optional config file.
type Config struct {
	v *viper.Viper
}

func (self *Config) Bind(fs *pflag.FlagSet) {
	self.v = viper.New()
	fs.StringP(keyConf, "c", "", "config file path (toml, yaml or json)")
	fs.CountP(keyVerbose, "v", "increase log verbosity")
	fs.String(keyAccessorOwner, opts.AccessorOwner, "internal name of the class declaring the get and set accessors")
	fs.String(keyCoercionOwner, opts.CoercionOwner, "internal name of the class declaring the coercion functions")
	fs.Bool(keyStackCheck, opts.StackCheck, "check that rewriting keeps the stack effect of every method")
	fs.StringSlice(keySkip, nil, "fields that are never rewritten")

	/* flags take precedence over everything else */
	for _, key := range []string{keyConf, keyVerbose, keyAccessorOwner, keyCoercionOwner, keyStackCheck, keySkip} {
		if err := self.v.BindPFlag(key, fs.Lookup(key)); err != nil {
			panic(err)
		}
	}

	/* then environment variables */
	self.v.SetEnvPrefix("FIELDHOOK")
	self.v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	self.v.AutomaticEnv()
}

// Load reads the config file if any, and sets up logging.
func (self *Config) Load() error {
	if path := self.v.GetString(keyConf); path != "" {
		self.v.SetConfigFile(path)
		if err := self.v.ReadInConfig(); err != nil {
			return fmt.Errorf("read config failed. path: %s, err: %w", path, err)
		}
	}
	commonlog.Configure(self.v.GetInt(keyVerbose), nil)
	return nil
}

// Options converts the configuration into instrumentation options.
func (self *Config) Options() (ret opts.Options, err error) {
	defer func() {
		if v := recover(); v != nil {
			err = fmt.Errorf("%v", v)
		}
	}()
	ret = fieldhook.ResolveOptions(
		fieldhook.WithAccessorOwner(self.v.GetString(keyAccessorOwner)),
		fieldhook.WithCoercionOwner(self.v.GetString(keyCoercionOwner)),
		fieldhook.WithStackCheck(self.v.GetBool(keyStackCheck)),
		fieldhook.WithSkipFields(self.v.GetStringSlice(keySkip)...),
	)
	return
}
