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

package accessor

import (
	"github.com/azn9/fieldhook/internal/utils"
)

// CastBackToInt and its siblings unwrap the boxed value returned by Get into
// the primitive type of the field.
func CastBackToInt(v interface{}) (int32, error) {
	if p, ok := v.(*Integer); ok && p != nil {
		return p.V, nil
	} else {
		return 0, utils.ECast("int", v)
	}
}

func CastBackToLong(v interface{}) (int64, error) {
	if p, ok := v.(*Long); ok && p != nil {
		return p.V, nil
	} else {
		return 0, utils.ECast("long", v)
	}
}

func CastBackToFloat(v interface{}) (float32, error) {
	if p, ok := v.(*Float); ok && p != nil {
		return p.V, nil
	} else {
		return 0, utils.ECast("float", v)
	}
}

func CastBackToDouble(v interface{}) (float64, error) {
	if p, ok := v.(*Double); ok && p != nil {
		return p.V, nil
	} else {
		return 0, utils.ECast("double", v)
	}
}

func CastBackToBoolean(v interface{}) (bool, error) {
	if p, ok := v.(*Boolean); ok && p != nil {
		return p.V, nil
	} else {
		return false, utils.ECast("boolean", v)
	}
}

func CastBackToByte(v interface{}) (int8, error) {
	if p, ok := v.(*Byte); ok && p != nil {
		return p.V, nil
	} else {
		return 0, utils.ECast("byte", v)
	}
}

func CastBackToShort(v interface{}) (int16, error) {
	if p, ok := v.(*Short); ok && p != nil {
		return p.V, nil
	} else {
		return 0, utils.ECast("short", v)
	}
}

func CastBackToChar(v interface{}) (uint16, error) {
	if p, ok := v.(*Character); ok && p != nil {
		return p.V, nil
	} else {
		return 0, utils.ECast("char", v)
	}
}
