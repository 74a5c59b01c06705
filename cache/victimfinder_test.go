package cache

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("LRUVictimFinder", func() {
	var (
		tags         *tagArray
		victimFinder *LRUVictimFinder
	)

	BeforeEach(func() {
		tags = newTagArray(Geometry{
			SetIndexBits:     0,
			WayAssociativity: 4,
			BlockOffsetBits:  0,
		})
		victimFinder = NewLRUVictimFinder()
	})

	It("should prefer an invalid line", func() {
		set := &tags.sets[0]
		set.Lines[0].IsValid = true
		tags.Visit(set.Lines[0])

		victim := victimFinder.FindVictim(set)

		Expect(victim.IsValid).To(BeFalse())
		Expect(victim.WayID).To(Equal(1))
	})

	It("should pick the least recently used line when the set is full", func() {
		set := &tags.sets[0]
		for i := range set.Lines {
			set.Lines[i].IsValid = true
		}
		tags.Visit(set.Lines[0])
		tags.Visit(set.Lines[2])

		victim := victimFinder.FindVictim(set)

		Expect(victim.WayID).To(Equal(1))
	})

	It("should pick a refreshed line last", func() {
		set := &tags.sets[0]
		for i := range set.Lines {
			set.Lines[i].IsValid = true
			tags.Visit(set.Lines[i])
		}
		tags.Visit(set.Lines[0])

		victim := victimFinder.FindVictim(set)

		Expect(victim.WayID).To(Equal(1))
	})
})
