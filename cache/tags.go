package cache

// A Line is one way within a set. Only the tag and the valid flag matter
// to the model; a line is invalid until it is first filled and is reused
// in place afterwards.
type Line struct {
	Tag     uint64
	SetID   int
	WayID   int
	IsValid bool
}

// A Set is the group of lines that one set index selects. LRUQueue holds
// way IDs ordered from least to most recently used, which keeps the
// recency order a strict total order without tracking timestamps.
type Set struct {
	Lines    []Line
	LRUQueue []int
}

// tagArray is the directory of a cache: the sets, the lines within them,
// and the per-set recency order.
type tagArray struct {
	geometry Geometry
	sets     []Set
}

func newTagArray(geometry Geometry) *tagArray {
	t := &tagArray{geometry: geometry}
	t.Reset()

	return t
}

// GetSet returns the set that addr maps to.
func (t *tagArray) GetSet(addr uint64) (set *Set, setID int) {
	setID = int(t.geometry.SetIndex(addr))
	set = &t.sets[setID]

	return
}

// Lookup finds the valid line that holds the tag of addr. It returns the
// line information if the tag is resident, and false otherwise.
func (t *tagArray) Lookup(addr uint64) (Line, bool) {
	set, _ := t.GetSet(addr)
	tag := t.geometry.Tag(addr)

	for _, line := range set.Lines {
		if line.IsValid && line.Tag == tag {
			return line, true
		}
	}

	return Line{}, false
}

// Update overwrites the stored line identified by line's set and way.
func (t *tagArray) Update(line Line) {
	t.sets[line.SetID].Lines[line.WayID] = line
}

// Visit moves the line's way to the most-recently-used end of its set's
// LRU queue.
func (t *tagArray) Visit(line Line) {
	set := &t.sets[line.SetID]
	newLRUQueue := make([]int, 0, len(set.LRUQueue))

	for _, wayID := range set.LRUQueue {
		if wayID != line.WayID {
			newLRUQueue = append(newLRUQueue, wayID)
		}
	}

	set.LRUQueue = append(newLRUQueue, line.WayID)
}

// Reset marks every line invalid and restores the default recency order.
func (t *tagArray) Reset() {
	numSets := int(t.geometry.NumSets())

	t.sets = make([]Set, numSets)
	for i := 0; i < numSets; i++ {
		for j := 0; j < t.geometry.WayAssociativity; j++ {
			t.sets[i].Lines = append(t.sets[i].Lines, Line{
				SetID: i,
				WayID: j,
			})
			t.sets[i].LRUQueue = append(t.sets[i].LRUQueue, j)
		}
	}
}
