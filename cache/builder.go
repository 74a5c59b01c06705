package cache

// A Builder can build caches.
type Builder struct {
	setIndexBits     uint32
	wayAssociativity int
	blockOffsetBits  uint32
	victimFinder     VictimFinder
}

// MakeBuilder creates a Builder with default parameters: a direct-mapped
// cache with a single set and single-byte blocks.
func MakeBuilder() Builder {
	return Builder{
		wayAssociativity: 1,
	}
}

// WithSetIndexBits sets the number of set index bits of the builder.
func (b Builder) WithSetIndexBits(setIndexBits uint32) Builder {
	b.setIndexBits = setIndexBits
	return b
}

// WithWayAssociativity sets the number of lines per set of the builder.
func (b Builder) WithWayAssociativity(wayAssociativity int) Builder {
	b.wayAssociativity = wayAssociativity
	return b
}

// WithBlockOffsetBits sets the number of block offset bits of the builder.
func (b Builder) WithBlockOffsetBits(blockOffsetBits uint32) Builder {
	b.blockOffsetBits = blockOffsetBits
	return b
}

// WithVictimFinder replaces the replacement policy of the builder. The
// default is LRU.
func (b Builder) WithVictimFinder(victimFinder VictimFinder) Builder {
	b.victimFinder = victimFinder
	return b
}

// Build validates the geometry and creates the cache, with every line
// invalid and every counter at zero. It returns ErrInvalidGeometry when
// the geometry cannot describe a real cache.
func (b Builder) Build() (*Cache, error) {
	geometry := Geometry{
		SetIndexBits:     b.setIndexBits,
		WayAssociativity: b.wayAssociativity,
		BlockOffsetBits:  b.blockOffsetBits,
	}

	if err := geometry.Validate(); err != nil {
		return nil, err
	}

	victimFinder := b.victimFinder
	if victimFinder == nil {
		victimFinder = NewLRUVictimFinder()
	}

	return &Cache{
		geometry:     geometry,
		tags:         newTagArray(geometry),
		victimFinder: victimFinder,
	}, nil
}
