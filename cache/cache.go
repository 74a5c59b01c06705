package cache

// An Outcome classifies a single simulated access.
type Outcome int

// The three possible outcomes of an access.
const (
	Hit Outcome = iota
	Miss
	MissWithEviction
)

// String renders the outcome the way the reference simulator prints it in
// verbose mode.
func (o Outcome) String() string {
	switch o {
	case Hit:
		return "hit"
	case Miss:
		return "miss"
	case MissWithEviction:
		return "miss eviction"
	default:
		return "unknown"
	}
}

// A Cache models a set-associative cache with LRU replacement. It owns all
// set and line state and counts hits, misses, and evictions. Access is the
// only operation that mutates it.
type Cache struct {
	geometry     Geometry
	tags         *tagArray
	victimFinder VictimFinder

	hits      uint64
	misses    uint64
	evictions uint64
}

// Geometry returns the geometry the cache was built with.
func (c *Cache) Geometry() Geometry {
	return c.geometry
}

// Access simulates one memory access to addr and reports whether it hit,
// missed, or missed and evicted a resident line. A hit refreshes the
// line's recency even though the line's content does not change.
func (c *Cache) Access(addr uint64) Outcome {
	if line, found := c.tags.Lookup(addr); found {
		c.hits++
		c.tags.Visit(line)

		return Hit
	}

	c.misses++

	set, _ := c.tags.GetSet(addr)
	victim := c.victimFinder.FindVictim(set)
	evicting := victim.IsValid

	victim.Tag = c.geometry.Tag(addr)
	victim.IsValid = true
	c.tags.Update(victim)
	c.tags.Visit(victim)

	if evicting {
		c.evictions++

		return MissWithEviction
	}

	return Miss
}

// Counters returns a snapshot of the hit, miss, and eviction counts. It
// has no side effects and may be called at any point of a simulation.
func (c *Cache) Counters() (hits, misses, evictions uint64) {
	return c.hits, c.misses, c.evictions
}
