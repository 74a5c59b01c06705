package cache

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	gomock "go.uber.org/mock/gomock"
)

func mustBuild(b Builder) *Cache {
	c, err := b.Build()
	Expect(err).ToNot(HaveOccurred())
	return c
}

var _ = Describe("Cache", func() {
	It("should start with zero counters", func() {
		c := mustBuild(MakeBuilder().
			WithSetIndexBits(4).
			WithWayAssociativity(2).
			WithBlockOffsetBits(4))

		hits, misses, evictions := c.Counters()
		Expect(hits).To(Equal(uint64(0)))
		Expect(misses).To(Equal(uint64(0)))
		Expect(evictions).To(Equal(uint64(0)))
	})

	It("should fail to build with zero associativity", func() {
		c, err := MakeBuilder().WithWayAssociativity(0).Build()

		Expect(err).To(MatchError(ErrInvalidGeometry))
		Expect(c).To(BeNil())
	})

	It("should fail to build with an oversized set count", func() {
		c, err := MakeBuilder().WithSetIndexBits(48).Build()

		Expect(err).To(MatchError(ErrInvalidGeometry))
		Expect(c).To(BeNil())
	})

	It("should hit on a repeated address", func() {
		c := mustBuild(MakeBuilder())

		Expect(c.Access(0x10)).To(Equal(Miss))
		Expect(c.Access(0x10)).To(Equal(Hit))

		hits, misses, evictions := c.Counters()
		Expect(hits).To(Equal(uint64(1)))
		Expect(misses).To(Equal(uint64(1)))
		Expect(evictions).To(Equal(uint64(0)))
	})

	It("should evict the least recently used line from a full set", func() {
		c := mustBuild(MakeBuilder().WithWayAssociativity(2))

		Expect(c.Access(0x0)).To(Equal(Miss))
		Expect(c.Access(0x40)).To(Equal(Miss))
		Expect(c.Access(0x80)).To(Equal(MissWithEviction))

		hits, misses, evictions := c.Counters()
		Expect(hits).To(Equal(uint64(0)))
		Expect(misses).To(Equal(uint64(3)))
		Expect(evictions).To(Equal(uint64(1)))

		// The tag from 0x0 was the oldest, so 0x40 must still be resident.
		Expect(c.Access(0x40)).To(Equal(Hit))
		Expect(c.Access(0x0)).To(Equal(MissWithEviction))
	})

	It("should refresh recency on a hit", func() {
		c := mustBuild(MakeBuilder().WithWayAssociativity(2))

		a, b, x := uint64(0x0), uint64(0x40), uint64(0x80)

		Expect(c.Access(a)).To(Equal(Miss))
		Expect(c.Access(b)).To(Equal(Miss))
		Expect(c.Access(a)).To(Equal(Hit))
		Expect(c.Access(x)).To(Equal(MissWithEviction))

		hits, misses, evictions := c.Counters()
		Expect(hits).To(Equal(uint64(1)))
		Expect(misses).To(Equal(uint64(3)))
		Expect(evictions).To(Equal(uint64(1)))

		// The hit made a the most recent line, so b was the victim.
		Expect(c.Access(a)).To(Equal(Hit))
	})

	It("should treat addresses in the same block as one tag", func() {
		c := mustBuild(MakeBuilder().
			WithSetIndexBits(4).
			WithWayAssociativity(1).
			WithBlockOffsetBits(4))

		Expect(c.Access(0x100)).To(Equal(Miss))
		Expect(c.Access(0x10f)).To(Equal(Hit))
		Expect(c.Access(0x110)).To(Equal(Miss))
	})

	It("should route accesses to independent sets", func() {
		c := mustBuild(MakeBuilder().
			WithSetIndexBits(1).
			WithWayAssociativity(1))

		Expect(c.Access(0x0)).To(Equal(Miss))
		Expect(c.Access(0x1)).To(Equal(Miss))
		Expect(c.Access(0x0)).To(Equal(Hit))
		Expect(c.Access(0x1)).To(Equal(Hit))
	})

	It("should keep hits plus misses equal to the number of accesses", func() {
		c := mustBuild(MakeBuilder().
			WithSetIndexBits(2).
			WithWayAssociativity(2).
			WithBlockOffsetBits(2))

		addrs := []uint64{0x0, 0x4, 0x8, 0x10, 0x4, 0x20, 0x0, 0x40, 0x8}
		for _, addr := range addrs {
			c.Access(addr)
		}

		hits, misses, evictions := c.Counters()
		Expect(hits + misses).To(Equal(uint64(len(addrs))))
		Expect(evictions).To(BeNumerically("<=", misses))
	})

	It("should return identical counters on repeated reads", func() {
		c := mustBuild(MakeBuilder().WithWayAssociativity(2))
		c.Access(0x10)
		c.Access(0x20)

		h1, m1, e1 := c.Counters()
		h2, m2, e2 := c.Counters()
		Expect(h1).To(Equal(h2))
		Expect(m1).To(Equal(m2))
		Expect(e1).To(Equal(e2))
	})

	It("should fill the line the victim finder selects", func() {
		mockCtrl := gomock.NewController(GinkgoT())
		victimFinder := NewMockVictimFinder(mockCtrl)

		c := mustBuild(MakeBuilder().
			WithWayAssociativity(2).
			WithVictimFinder(victimFinder))

		victimFinder.EXPECT().
			FindVictim(gomock.Any()).
			Return(Line{SetID: 0, WayID: 1})

		Expect(c.Access(0x10)).To(Equal(Miss))
		Expect(c.tags.sets[0].Lines[1].IsValid).To(BeTrue())
		Expect(c.tags.sets[0].Lines[1].Tag).To(Equal(uint64(0x10)))

		// A repeat of the same address must not consult the finder again.
		Expect(c.Access(0x10)).To(Equal(Hit))
	})
})

var _ = Describe("Outcome", func() {
	It("should print in the reference simulator's vocabulary", func() {
		Expect(Hit.String()).To(Equal("hit"))
		Expect(Miss.String()).To(Equal("miss"))
		Expect(MissWithEviction.String()).To(Equal("miss eviction"))
	})
})
