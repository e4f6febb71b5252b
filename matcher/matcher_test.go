// (c) Siemens AG 2023
//
// SPDX-License-Identifier: MIT

package matcher

import (
	"github.com/siemens/hlocate/codetable"
	"github.com/siemens/hlocate/labelcache"
	"github.com/siemens/hlocate/types"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var table = codetable.New(
	codetable.MustEntry("nyc", `^(?P<iata>jfk)$|^(?P<icao>kjfk)$|^(?P<clli>nycmny)$`),
	codetable.MustEntry("fra", `^(?P<iata>fra)$|^(?P<locode>defra)$`),
	codetable.MustEntry("fra-alt", `^(?P<alt>frankfurt)$|^(?P<iata>fra)$`),
)

var _ = Describe("matching labels", func() {

	It("tokenizes labels", func() {
		Expect(Tokenize("ae-0-fra")).To(Equal([]string{"ae", "0", "fra"}))
		Expect(Tokenize("jfk")).To(Equal([]string{"jfk"}))
		Expect(Tokenize("")).To(BeEmpty())
	})

	It("matches a single code", func() {
		d := types.NewDomain("www.jfk.example.com", "", "")
		located, stats := MatchDomain(d, table, nil)
		Expect(located).To(BeTrue())
		Expect(d.Matches()).To(Equal([]types.CodeMatch{{LocationID: "nyc", CodeType: types.IATA}}))
		Expect(d.Labels[2].Matches).To(HaveLen(1))
		Expect(stats.Matches.Get(types.IATA)).To(Equal(1))
		Expect(stats.Matches.Total()).To(Equal(1))
		Expect(stats.Domains).To(Equal(1))
		Expect(stats.LocatedDomains).To(Equal(1))
		Expect(stats.Labels).To(Equal(3))
		Expect(stats.LocatedLabels).To(Equal(1))
		Expect(stats.LabelLength).To(Equal(len("www") + len("jfk") + len("example")))
	})

	It("reports domains without any match", func() {
		d := types.NewDomain("mail.example.org", "", "")
		located, stats := MatchDomain(d, table, nil)
		Expect(located).To(BeFalse())
		Expect(d.Matches()).To(BeEmpty())
		Expect(stats.Matches).To(Equal(types.TypeCounts{}))
		Expect(stats.LocatedDomains).To(BeZero())
	})

	It("never matches the TLD label", func() {
		d := types.NewDomain("example.jfk", "", "")
		located, _ := MatchDomain(d, table, nil)
		Expect(located).To(BeFalse())
	})

	It("matches dash tokens, first table entry wins", func() {
		d := types.NewDomain("ae-0.fra-defra-FRA-kjfk.example.net", "", "")
		located, stats := MatchDomain(d, table, nil)
		Expect(located).To(BeTrue())
		Expect(d.Labels[2].Matches).To(Equal([]types.CodeMatch{
			{LocationID: "fra", CodeType: types.IATA},
			{LocationID: "fra", CodeType: types.LOCODE},
			{LocationID: "fra", CodeType: types.IATA},
			{LocationID: "nyc", CodeType: types.ICAO},
		}))
		Expect(stats.Matches.Get(types.IATA)).To(Equal(2))
		Expect(stats.Matches.Get(types.LOCODE)).To(Equal(1))
		Expect(stats.Matches.Get(types.ICAO)).To(Equal(1))
		Expect(stats.SubLabels).To(Equal(2 + 4 + 1))
	})

	It("handles empty labels and tokens", func() {
		matches, counts, tokens := MatchLabel("", table)
		Expect(matches).To(BeEmpty())
		Expect(counts.Total()).To(BeZero())
		Expect(tokens).To(BeZero())

		matches, _, tokens = MatchLabel("-jfk-", table)
		Expect(matches).To(HaveLen(1))
		Expect(tokens).To(Equal(3))
	})

	It("is deterministic without caching", func() {
		m1, c1, t1 := MatchLabel("fra-jfk-frankfurt", table)
		m2, c2, t2 := MatchLabel("fra-jfk-frankfurt", table)
		Expect(m1).To(Equal(m2))
		Expect(c1).To(Equal(c2))
		Expect(t1).To(Equal(t2))
		Expect(m1).To(ContainElement(types.CodeMatch{LocationID: "fra-alt", CodeType: types.ALT}))
	})

	It("sums up statistics", func() {
		var sum Stats
		_, s1 := MatchDomain(types.NewDomain("jfk.example.com", "", ""), table, nil)
		_, s2 := MatchDomain(types.NewDomain("fra.example.com", "", ""), table, nil)
		_, s3 := MatchDomain(types.NewDomain("none.example.com", "", ""), table, nil)
		sum.Add(s1)
		sum.Add(s2)
		sum.Add(s3)
		Expect(sum.Domains).To(Equal(3))
		Expect(sum.LocatedDomains).To(Equal(2))
		Expect(sum.Matches.Get(types.IATA)).To(Equal(2))
	})

	It("replaces matches of an earlier pass", func() {
		d := types.NewDomain("ae-0.jfk.example.com", "", "")
		located, _ := MatchDomain(d, table, nil)
		Expect(located).To(BeTrue())
		located, stats := MatchDomain(d, table, nil)
		Expect(located).To(BeTrue())
		Expect(d.Labels[2].Matches).To(Equal([]types.CodeMatch{{LocationID: "nyc", CodeType: types.IATA}}))
		Expect(stats.Matches.Total()).To(Equal(len(d.Matches())))

		By("dropping matches no longer found")
		d.Labels[1].AddMatches(types.CodeMatch{LocationID: "stale", CodeType: types.ALT})
		d.Labels[0].AddMatches(types.CodeMatch{LocationID: "stale", CodeType: types.ALT})
		located, _ = MatchDomain(d, codetable.New(codetable.MustEntry("muc", `^(?P<iata>muc)$`)), nil)
		Expect(located).To(BeFalse())
		Expect(d.Located()).To(BeFalse())
		Expect(d.Matches()).To(BeEmpty())
	})

	Context("with popular label cache", func() {

		It("reuses computed matches", func() {
			var counts types.TypeCounts
			counts.Inc(types.CLLI)
			view := labelcache.NewView(labelcache.NewSnapshot(labelcache.Cache{
				"nowhere": {Matches: []types.CodeMatch{{LocationID: "cached", CodeType: types.CLLI}}, Counts: counts},
			}))
			d := types.NewDomain("Nowhere.example.com", "", "")
			located, stats := MatchDomain(d, table, view)
			Expect(located).To(BeTrue())
			Expect(d.Labels[2].Matches).To(Equal([]types.CodeMatch{{LocationID: "cached", CodeType: types.CLLI}}))
			Expect(stats.PopularHits).To(Equal(1))
			Expect(stats.SubLabels).To(Equal(1), "only 'example' should have been tokenized")
			Expect(stats.Matches.Get(types.CLLI)).To(Equal(1))
			Expect(view.Delta()).To(BeEmpty())
		})

		It("stores the current label's own matches", func() {
			view := labelcache.NewView(labelcache.NewSnapshot(labelcache.Cache{
				"fra-defra": {},
				"www":       {},
			}))
			d := types.NewDomain("www.jfk.fra-defra.example.net", "", "")
			located, stats := MatchDomain(d, table, view)
			Expect(located).To(BeTrue())
			Expect(stats.PopularHits).To(Equal(2))

			delta := view.Delta()
			Expect(delta).To(HaveLen(2))
			Expect(delta["fra-defra"].Matches).To(Equal([]types.CodeMatch{
				{LocationID: "fra", CodeType: types.IATA},
				{LocationID: "fra", CodeType: types.LOCODE},
			}))
			Expect(delta["fra-defra"].Counts.Total()).To(Equal(2))
			Expect(delta["www"].Computed()).To(BeTrue())
			Expect(delta["www"].Matches).To(BeEmpty())
			Expect(delta).NotTo(HaveKey("jfk"))
		})

		It("returns consistent results once cached", func() {
			view := labelcache.NewView(labelcache.NewSnapshot(labelcache.Cache{"fra-jfk": {}}))
			d1 := types.NewDomain("fra-jfk.example.net", "", "")
			_, s1 := MatchDomain(d1, table, view)
			d2 := types.NewDomain("FRA-JFK.example.org", "", "")
			_, s2 := MatchDomain(d2, table, view)
			Expect(d2.Labels[2].Matches).To(Equal(d1.Labels[2].Matches))
			Expect(s2.Matches).To(Equal(s1.Matches))
			Expect(s1.SubLabels).To(Equal(3))
			Expect(s2.SubLabels).To(Equal(1))

			uncached := types.NewDomain("fra-jfk.example.net", "", "")
			_, s3 := MatchDomain(uncached, table, nil)
			Expect(uncached.Labels[2].Matches).To(Equal(d2.Labels[2].Matches))
			Expect(s3.Matches).To(Equal(s2.Matches))
		})

	})

})
