// Package runner drives a cache model through a memory trace, one access
// at a time, in trace order.
package runner

import (
	"fmt"
	"log"
	"strings"
	"sync/atomic"

	"github.com/sarchlab/csim/cache"
	"github.com/sarchlab/csim/recording"
	"github.com/sarchlab/csim/trace"
)

// accessTableName is the data recorder table that holds one row per
// simulated access.
const accessTableName = "cache_accesses"

// accessEntry is one simulated cache access as stored by the data
// recorder.
type accessEntry struct {
	Seq      uint64
	Op       string
	Address  uint64
	Size     uint64
	Tag      uint64
	SetIndex uint64
	Outcome  string
}

// A Result holds the final counter values of a simulation.
type Result struct {
	Hits      uint64
	Misses    uint64
	Evictions uint64
}

// String renders the result in the reference simulator's output format.
func (r Result) String() string {
	return fmt.Sprintf("hits:%d misses:%d evictions:%d",
		r.Hits, r.Misses, r.Evictions)
}

// Progress is a point-in-time view of a running simulation. It is safe to
// read from other goroutines while the simulation runs.
type Progress struct {
	Accesses  uint64 `json:"accesses"`
	Hits      uint64 `json:"hits"`
	Misses    uint64 `json:"misses"`
	Evictions uint64 `json:"evictions"`
}

// A Runner replays trace accesses against a cache. Modify records touch
// the cache twice, once as a load and once as a store; instruction
// fetches never reach the cache.
type Runner struct {
	cache    *cache.Cache
	verbose  *log.Logger
	recorder recording.DataRecorder

	accesses  atomic.Uint64
	hits      atomic.Uint64
	misses    atomic.Uint64
	evictions atomic.Uint64
}

// Run simulates every access in order and returns the final counters.
func (r *Runner) Run(accesses []trace.Access) Result {
	for _, access := range accesses {
		r.simulate(access)
	}

	if r.recorder != nil {
		r.recorder.Flush()
	}

	return r.Result()
}

func (r *Runner) simulate(access trace.Access) {
	if access.Op == trace.Instruction {
		return
	}

	outcomes := []string{r.step(access).String()}
	if access.Op == trace.Modify {
		outcomes = append(outcomes, r.step(access).String())
	}

	if r.verbose != nil {
		r.verbose.Printf("%s %x,%d %s",
			access.Op, access.Address, access.Size,
			strings.Join(outcomes, " "))
	}
}

// step performs one cache access and keeps the progress counters and the
// recorded rows in sync with it.
func (r *Runner) step(access trace.Access) cache.Outcome {
	outcome := r.cache.Access(access.Address)

	r.accesses.Add(1)
	switch outcome {
	case cache.Hit:
		r.hits.Add(1)
	case cache.Miss:
		r.misses.Add(1)
	case cache.MissWithEviction:
		r.misses.Add(1)
		r.evictions.Add(1)
	}

	if r.recorder != nil {
		tag, setIndex := r.cache.Geometry().Decode(access.Address)
		r.recorder.InsertData(accessTableName, accessEntry{
			Seq:      r.accesses.Load(),
			Op:       access.Op.String(),
			Address:  access.Address,
			Size:     access.Size,
			Tag:      tag,
			SetIndex: setIndex,
			Outcome:  outcome.String(),
		})
	}

	return outcome
}

// Result reads the final counters off the cache.
func (r *Runner) Result() Result {
	hits, misses, evictions := r.cache.Counters()

	return Result{
		Hits:      hits,
		Misses:    misses,
		Evictions: evictions,
	}
}

// Progress returns a race-free snapshot of the running counters.
func (r *Runner) Progress() Progress {
	return Progress{
		Accesses:  r.accesses.Load(),
		Hits:      r.hits.Load(),
		Misses:    r.misses.Load(),
		Evictions: r.evictions.Load(),
	}
}
