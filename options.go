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

package fieldhook

import (
	"fmt"
	"strings"

	"github.com/azn9/fieldhook/internal/opts"
)

// Option is the property setter function for opts.Options.
type Option func(*opts.Options)

// WithAccessorOwner sets the internal name of the class that declares the
// "get" and "set" accessors called by rewritten methods.
//
// This value can also be configured with the `FIELDHOOK_ACCESSOR_OWNER`
// environment variable.
func WithAccessorOwner(name string) Option {
	if !isInternalName(name) {
		panic(fmt.Sprintf("fieldhook: invalid accessor owner: %q", name))
	} else {
		return func(o *opts.Options) { o.AccessorOwner = name }
	}
}

// WithCoercionOwner sets the internal name of the class that declares the
// "castBackToX" coercion functions.
//
// This value can also be configured with the `FIELDHOOK_COERCION_OWNER`
// environment variable.
func WithCoercionOwner(name string) Option {
	if !isInternalName(name) {
		panic(fmt.Sprintf("fieldhook: invalid coercion owner: %q", name))
	} else {
		return func(o *opts.Options) { o.CoercionOwner = name }
	}
}

// WithStackCheck makes the instrumenter compare the net stack effect of every
// method before and after rewriting, and fail the field on a mismatch.
//
// The default value of this option is "false".
func WithStackCheck(v bool) Option {
	return func(o *opts.Options) { o.StackCheck = v }
}

// WithSkipFields excludes the named fields from rewriting, in addition to the
// static, final and transient fields that are never rewritten.
func WithSkipFields(names ...string) Option {
	return func(o *opts.Options) {
		if o.SkipFields == nil {
			o.SkipFields = make(map[string]bool, len(names))
		}
		for _, name := range names {
			o.SkipFields[name] = true
		}
	}
}

// SetStackCheck sets the default stack check behavior for all instrumentations
// from now on.
//
// Returns the old opts.StackCheck value.
func SetStackCheck(v bool) bool {
	v, opts.StackCheck = opts.StackCheck, v
	return v
}

// ResolveOptions applies the options over the defaults.
func ResolveOptions(options ...Option) opts.Options {
	ret := opts.GetDefaultOptions()
	for _, fn := range options {
		fn(&ret)
	}
	return ret
}

func isInternalName(name string) bool {
	return name != "" && !strings.ContainsAny(name, ".;[ ")
}
