// (c) Siemens AG 2023
//
// SPDX-License-Identifier: MIT

package partition

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/siemens/hlocate/codetable"
	"github.com/siemens/hlocate/dataset"
	"github.com/siemens/hlocate/labelcache"
	"github.com/siemens/hlocate/types"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	. "github.com/onsi/gomega/gleak"
	. "github.com/thediveo/success"
)

var table = codetable.New(
	codetable.MustEntry("nyc", `^(?P<iata>jfk)$|^(?P<clli>nycmny)$`),
	codetable.MustEntry("fra", `^(?P<iata>fra)$|^(?P<locode>defra)$`),
)

var domains = []string{
	"ae-0.jfk.example.com",
	"ae-1.fra.example.net",
	"mail.example.org",
	"core.nycmny.example.com",
	"xe-2-fra.example.net",
	"www.example.org",
	"jfk.example.com",
	"db.internal.example.org",
}

// writePartitions distributes the named domains round-robin across the
// specified number of partitions, returning the partition file name pattern.
func writePartitions(dir string, partitions int, names []string) string {
	GinkgoHelper()
	lines := make([][]string, partitions)
	for idx, name := range names {
		p := idx % partitions
		lines[p] = append(lines[p], fmt.Sprintf(`{"domain_name": %q}`, name))
	}
	pattern := filepath.Join(dir, "rdns-{}.json")
	for p := range lines {
		Expect(os.WriteFile(
			dataset.PartitionPath(pattern, p),
			[]byte(strings.Join(lines[p], "\n")+"\n"),
			0o644)).To(Succeed())
	}
	return pattern
}

// readNames returns the sorted domain names of a result stream.
func readNames(path string) []string {
	GinkgoHelper()
	f := Successful(os.Open(path))
	defer f.Close()
	r := dataset.NewReader(f, path)
	names := []string{}
	for {
		d, err := r.Next()
		if err == io.EOF {
			break
		}
		Expect(err).NotTo(HaveOccurred())
		names = append(names, d.Name)
	}
	sort.Strings(names)
	return names
}

func resultNames(pattern string, partitions int) (located, unlocated []string) {
	GinkgoHelper()
	located = []string{}
	unlocated = []string{}
	for p := 0; p < partitions; p++ {
		l, u := dataset.OutputPaths(dataset.PartitionPath(pattern, p), "")
		located = append(located, readNames(l)...)
		unlocated = append(unlocated, readNames(u)...)
	}
	sort.Strings(located)
	sort.Strings(unlocated)
	return
}

var _ = Describe("partitioned matching", func() {

	var dir string

	BeforeEach(func() {
		goodgos := Goroutines()
		DeferCleanup(func() {
			Eventually(Goroutines).Within(2 * time.Second).WithPolling(100 * time.Millisecond).
				ShouldNot(HaveLeaked(goodgos))
		})
		dir = GinkgoT().TempDir()
	})

	It("rejects invalid partition counts", func() {
		Expect(New(filepath.Join(dir, "{}.json"), 0, table)).Error().To(HaveOccurred())
	})

	It("routes domains into located and unlocated streams", func() {
		pattern := writePartitions(dir, 3, domains)
		workdir := filepath.Join(dir, "work")
		Expect(os.Mkdir(workdir, 0o755)).To(Succeed())
		c := Successful(New(pattern, 3, table, WithWorkDir(workdir)))
		Expect(c.Workers()).To(HaveLen(3))
		res := Successful(c.Run())

		located, unlocated := resultNames(pattern, 3)
		Expect(located).To(ConsistOf(
			"ae-0.jfk.example.com", "ae-1.fra.example.net",
			"core.nycmny.example.com", "xe-2-fra.example.net", "jfk.example.com"))
		Expect(unlocated).To(ConsistOf(
			"mail.example.org", "www.example.org", "db.internal.example.org"))

		Expect(res.Stats.Domains).To(Equal(len(domains)))
		Expect(res.Stats.LocatedDomains).To(Equal(5))
		Expect(res.Stats.Matches.Get(types.IATA)).To(Equal(4))
		Expect(res.Stats.Matches.Get(types.CLLI)).To(Equal(1))
		Expect(res.Partitions).To(HaveLen(3))
		for idx, pr := range res.Partitions {
			Expect(pr.Index).To(Equal(idx))
			Expect(pr.Err).NotTo(HaveOccurred())
			Expect(c.Workers()[idx].Done()).To(BeTrue())
		}
		Expect(c.Workers()[0].Processed()).To(Equal(int64(3)))

		By("leaving no cache deltas behind")
		Expect(Successful(os.ReadDir(workdir))).To(BeEmpty())

		By("refusing to run twice")
		Expect(c.Run()).Error().To(HaveOccurred())
	})

	It("removes its own temporary work directory", func() {
		pattern := writePartitions(dir, 2, domains)
		c := Successful(New(pattern, 2, table))
		workdir := c.workDir
		Expect(workdir).To(BeADirectory())
		_ = Successful(c.Run())
		Expect(workdir).NotTo(BeAnExistingFile())
	})

	It("limits the domains processed per partition", func() {
		pattern := writePartitions(dir, 2, domains)
		res := Successful(Successful(New(pattern, 2, table,
			WithLimit(1), WithWorkDir(dir))).Run())
		Expect(res.Stats.Domains).To(Equal(2))
		for _, pr := range res.Partitions {
			Expect(pr.Stats.Domains).To(Equal(1))
		}
	})

	It("places results in an output directory", func() {
		pattern := writePartitions(dir, 1, domains)
		out := filepath.Join(dir, "out")
		Expect(os.Mkdir(out, 0o755)).To(Succeed())
		_ = Successful(Successful(New(pattern, 1, table,
			WithOutputDir(out), WithBatchSize(2), WithWorkDir(dir))).Run())
		Expect(filepath.Join(out, "rdns-0_found.json")).To(BeARegularFile())
		Expect(filepath.Join(out, "rdns-0_not_found.json")).To(BeARegularFile())
		Expect(readNames(filepath.Join(out, "rdns-0_found.json"))).To(HaveLen(5))
		data := Successful(os.ReadFile(filepath.Join(out, "rdns-0_found.json")))
		Expect(strings.Count(string(data), "\n")).To(Equal(3), "batches of two domains each")
	})

	It("doesn't depend on the number of partitions", func() {
		one := filepath.Join(dir, "one")
		many := filepath.Join(dir, "many")
		Expect(os.Mkdir(one, 0o755)).To(Succeed())
		Expect(os.Mkdir(many, 0o755)).To(Succeed())
		cache := func() labelcache.Cache {
			c := labelcache.Cache{}
			c.AddPlaceholders([]string{"example", "ae-0", "jfk"})
			return c
		}

		p1 := writePartitions(one, 1, domains)
		res1 := Successful(Successful(New(p1, 1, table,
			WithCache(cache()), WithWorkDir(one))).Run())
		p4 := writePartitions(many, 4, domains)
		res4 := Successful(Successful(New(p4, 4, table,
			WithCache(cache()), WithWorkDir(many))).Run())

		// popular labels get computed once per partition, so only the
		// sublabel counts may differ.
		Expect(res4.Stats.Domains).To(Equal(res1.Stats.Domains))
		Expect(res4.Stats.LocatedDomains).To(Equal(res1.Stats.LocatedDomains))
		Expect(res4.Stats.Labels).To(Equal(res1.Stats.Labels))
		Expect(res4.Stats.LocatedLabels).To(Equal(res1.Stats.LocatedLabels))
		Expect(res4.Stats.PopularHits).To(Equal(res1.Stats.PopularHits))
		Expect(res4.Stats.Matches).To(Equal(res1.Stats.Matches))
		l1, u1 := resultNames(p1, 1)
		l4, u4 := resultNames(p4, 4)
		Expect(l4).To(Equal(l1))
		Expect(u4).To(Equal(u1))
		Expect(res4.Cache).To(Equal(res1.Cache))
	})

	It("merges computed popular labels into the canonical cache", func() {
		pattern := writePartitions(dir, 2, domains)
		cache := labelcache.Cache{
			"unseen": {},
			"jfk":    {},
		}
		cache.AddPlaceholders([]string{"fra"})
		savePath := filepath.Join(dir, "popular_labels_found.json")
		res := Successful(Successful(New(pattern, 2, table,
			WithCache(cache), WithWorkDir(dir), WithSavePath(savePath))).Run())

		Expect(res.Cache).To(HaveLen(3))
		Expect(res.Cache["jfk"].Matches).To(Equal([]types.CodeMatch{{LocationID: "nyc", CodeType: types.IATA}}))
		Expect(res.Cache["jfk"].Counts.Get(types.IATA)).To(Equal(1))
		Expect(res.Cache["fra"].Computed()).To(BeTrue())
		Expect(res.Cache["unseen"].Computed()).To(BeFalse())
		Expect(res.Fresh).To(Equal(2))
		Expect(res.Stats.PopularHits).To(Equal(3))

		By("not touching the caller's cache")
		Expect(cache["jfk"].Computed()).To(BeFalse())

		By("persisting the merged cache")
		saved := Successful(labelcache.Load(savePath))
		Expect(saved).To(Equal(res.Cache))

		By("reusing the persisted cache in a later run")
		res2 := Successful(Successful(New(pattern, 2, table,
			WithCache(saved), WithWorkDir(dir))).Run())
		Expect(res2.Fresh).To(BeZero())
		Expect(res2.Stats.Matches).To(Equal(res.Stats.Matches))
	})

	It("rematches earlier results without duplicating matches", func() {
		pattern := writePartitions(dir, 1, domains)
		_ = Successful(Successful(New(pattern, 1, table, WithWorkDir(dir))).Run())
		found, _ := dataset.OutputPaths(dataset.PartitionPath(pattern, 0), "")

		again := filepath.Join(dir, "again")
		Expect(os.Mkdir(again, 0o755)).To(Succeed())
		Expect(os.Rename(found, filepath.Join(again, "rdns-0.json"))).To(Succeed())
		repattern := filepath.Join(again, "rdns-{}.json")
		narrowed := codetable.New(codetable.MustEntry("nyc", `^(?P<iata>jfk)$`))
		res := Successful(Successful(New(repattern, 1, narrowed, WithWorkDir(again))).Run())
		Expect(res.Stats.Matches.Get(types.IATA)).To(Equal(2))

		located, unlocated := dataset.OutputPaths(dataset.PartitionPath(repattern, 0), "")
		f := Successful(os.Open(located))
		defer f.Close()
		r := dataset.NewReader(f, located)
		matches := 0
		for {
			d, err := r.Next()
			if err == io.EOF {
				break
			}
			Expect(err).NotTo(HaveOccurred())
			for _, label := range d.Labels {
				Expect(len(label.Matches)).To(BeNumerically("<=", 1), "label %s of %s", label.Label, d.Name)
			}
			matches += len(d.Matches())
		}
		Expect(matches).To(Equal(res.Stats.Matches.Total()))
		Expect(readNames(unlocated)).To(ConsistOf(
			"ae-1.fra.example.net", "core.nycmny.example.com", "xe-2-fra.example.net"))
	})

	It("aborts only the partition with malformed records", func() {
		pattern := writePartitions(dir, 2, domains)
		Expect(os.WriteFile(dataset.PartitionPath(pattern, 1),
			[]byte(`{"domain_name": "jfk.example.com"}`+"\n"+`{"domain_name": `+"\n"),
			0o644)).To(Succeed())
		res, err := Successful(New(pattern, 2, table, WithWorkDir(dir))).Run()
		Expect(err).To(HaveOccurred())
		var malformed *dataset.MalformedRecordError
		Expect(errors.As(err, &malformed)).To(BeTrue())
		Expect(malformed.Line).To(Equal(2))
		Expect(res).NotTo(BeNil())
		Expect(res.Partitions[0].Err).NotTo(HaveOccurred())
		Expect(res.Partitions[1].Err).To(HaveOccurred())
		Expect(res.Stats.Domains).To(Equal(res.Partitions[0].Stats.Domains))
		Expect(filepath.Join(dir, "popular_labels_found_1.json")).NotTo(BeAnExistingFile())
	})

	It("reports missing partitions", func() {
		pattern := writePartitions(dir, 1, domains)
		res, err := Successful(New(pattern, 2, table, WithWorkDir(dir))).Run()
		Expect(err).To(MatchError(ContainSubstring("partition 1")))
		Expect(res.Partitions[0].Err).NotTo(HaveOccurred())
	})

	It("recovers crashing workers", func() {
		pattern := writePartitions(dir, 2, domains)
		broken := codetable.Table{nil}
		res, err := Successful(New(pattern, 2, broken, WithWorkDir(dir))).Run()
		Expect(err).To(HaveOccurred())
		var crash *WorkerCrashError
		Expect(errors.As(err, &crash)).To(BeTrue())
		Expect(crash.Stack).NotTo(BeEmpty())
		Expect(crash.Error()).To(MatchRegexp(`worker for partition \d crashed`))
		for _, pr := range res.Partitions {
			Expect(pr.Err).To(BeAssignableToTypeOf(&WorkerCrashError{}))
		}
		Expect(res.Stats.Domains).To(BeZero())
	})

	It("writes a CPU profile", func() {
		pattern := writePartitions(dir, 2, domains)
		profile := filepath.Join(dir, "cpu.prof")
		_ = Successful(Successful(New(pattern, 2, table,
			WithWorkDir(dir), WithCPUProfile(profile))).Run())
		Expect(profile).To(BeARegularFile())
	})

})
