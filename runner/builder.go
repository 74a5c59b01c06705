package runner

import (
	"log"

	"github.com/sarchlab/csim/cache"
	"github.com/sarchlab/csim/recording"
)

// A Builder can build runners.
type Builder struct {
	cache    *cache.Cache
	verbose  *log.Logger
	recorder recording.DataRecorder
}

// MakeBuilder creates a Builder with default parameters.
func MakeBuilder() Builder {
	return Builder{}
}

// WithCache sets the cache the runner drives.
func (b Builder) WithCache(c *cache.Cache) Builder {
	b.cache = c
	return b
}

// WithVerboseLogger makes the runner log one line per trace record, in
// the reference simulator's verbose format.
func (b Builder) WithVerboseLogger(logger *log.Logger) Builder {
	b.verbose = logger
	return b
}

// WithDataRecorder makes the runner store one row per simulated access.
func (b Builder) WithDataRecorder(recorder recording.DataRecorder) Builder {
	b.recorder = recorder
	return b
}

// Build creates the runner. A cache is required.
func (b Builder) Build() *Runner {
	if b.cache == nil {
		panic("runner requires a cache")
	}

	r := &Runner{
		cache:    b.cache,
		verbose:  b.verbose,
		recorder: b.recorder,
	}

	if r.recorder != nil {
		r.recorder.CreateTable(accessTableName, accessEntry{})
	}

	return r
}
