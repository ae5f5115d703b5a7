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

package debug

import (
	"sync/atomic"

	"github.com/azn9/fieldhook/internal/accessor"
	"github.com/azn9/fieldhook/internal/emu"
	"github.com/azn9/fieldhook/internal/loader"
	"github.com/azn9/fieldhook/internal/rewrite"
)

// A Stats records statistics about field access redirection.
type Stats struct {
	Rewrite  RewriteStats
	Accessor AccessorStats
	Loader   LoaderStats
	Executed int
}

// A RewriteStats records what the rewriters did to instruction streams.
type RewriteStats struct {
	Reads   int
	Writes  int
	Flushed int
}

// An AccessorStats records the accessor calls made at run time.
type AccessorStats struct {
	Gets  int
	Sets  int
	Types int
}

// A LoaderStats records class definitions.
type LoaderStats struct {
	Defined   int
	Redefined int
	Rejected  int
}

// GetStats returns the statistics collected since the program started.
func GetStats() Stats {
	return Stats{
		Rewrite: RewriteStats{
			Reads:   int(atomic.LoadUint64(&rewrite.ReadCount)),
			Writes:  int(atomic.LoadUint64(&rewrite.WriteCount)),
			Flushed: int(atomic.LoadUint64(&rewrite.FlushCount)),
		},
		Accessor: AccessorStats{
			Gets:  int(atomic.LoadUint64(&accessor.GetCount)),
			Sets:  int(atomic.LoadUint64(&accessor.SetCount)),
			Types: int(atomic.LoadUint64(&accessor.TypeCount)),
		},
		Loader: LoaderStats{
			Defined:   int(atomic.LoadUint64(&loader.DefineCount)),
			Redefined: int(atomic.LoadUint64(&loader.RedefineCount)),
			Rejected:  int(atomic.LoadUint64(&loader.RejectCount)),
		},
		Executed: int(atomic.LoadUint64(&emu.ExecCount)),
	}
}
