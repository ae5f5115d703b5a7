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

package opts

import (
	"os"
	"strconv"
	"strings"
)

const (
	_DefaultAccessorOwner = "fieldhook/runtime/Bootstrap"
	_DefaultCoercionOwner = "fieldhook/runtime/Coercions"
)

var (
	AccessorOwner = internalNameOrDefault("FIELDHOOK_ACCESSOR_OWNER", _DefaultAccessorOwner)
	CoercionOwner = internalNameOrDefault("FIELDHOOK_COERCION_OWNER", _DefaultCoercionOwner)
	StackCheck    = boolOrDefault("FIELDHOOK_STACK_CHECK", false)
)

func internalNameOrDefault(key string, def string) string {
	if env := strings.TrimSpace(os.Getenv(key)); env == "" {
		return def
	} else if strings.ContainsAny(env, ".;[ ") {
		panic("fieldhook: invalid internal name for " + key)
	} else {
		return env
	}
}

func boolOrDefault(key string, def bool) bool {
	if env := os.Getenv(key); env == "" {
		return def
	} else if val, err := strconv.ParseBool(env); err != nil {
		panic("fieldhook: invalid value for " + key)
	} else {
		return val
	}
}
