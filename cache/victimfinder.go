package cache

// A VictimFinder decides which line of a set a miss should fill.
type VictimFinder interface {
	FindVictim(set *Set) Line
}

// LRUVictimFinder selects the least recently used line of a set.
type LRUVictimFinder struct{}

// NewLRUVictimFinder returns a newly constructed LRU victim finder.
func NewLRUVictimFinder() *LRUVictimFinder {
	return &LRUVictimFinder{}
}

// FindVictim returns the line to fill next. Invalid lines are used before
// any valid line is sacrificed; once the set is full, the front of the LRU
// queue is the unambiguous victim.
func (f *LRUVictimFinder) FindVictim(set *Set) Line {
	for _, wayID := range set.LRUQueue {
		if !set.Lines[wayID].IsValid {
			return set.Lines[wayID]
		}
	}

	return set.Lines[set.LRUQueue[0]]
}
