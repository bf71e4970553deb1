// Command mmphbench exercises both distributor variants end to end over a
// generated key set: it builds a HollowTrieDistributor and a
// RelativeTrieDistributor from the same keys, verifies every key resolves
// to its expected bucket, and reports size figures. Flag parsing follows
// the thesis's own bare-flag convention (mmph/paramselect/cmd/psig_study
// uses the standard library's flag package directly, not a third-party
// parser), and progress is reported through github.com/schollz/progressbar/v3,
// the same library the thesis's own property-test suites use to report
// long-running trial counts.
package main

import (
	"flag"
	"fmt"
	"math/rand"
	"os"
	"sort"
	"strconv"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/schollz/progressbar/v3"

	"github.com/beldenge/sux4j-go/bits"
	"github.com/beldenge/sux4j-go/hollowtrie"
	"github.com/beldenge/sux4j-go/relativetrie"
)

func main() {
	var (
		n          = flag.Int("n", 50000, "number of keys to generate")
		minBits    = flag.Int("min-bits", 20, "minimum key length in bits")
		maxBits    = flag.Int("max-bits", 200, "maximum key length in bits")
		bucketSize = flag.Int("bucket", 16, "bucket size (keys per delimiter)")
		seed       = flag.Int64("seed", time.Now().UnixNano(), "RNG seed")
		variant    = flag.String("variant", "both", "which distributor to build: hollow, relative, or both")
	)
	flag.Parse()

	if *n <= 0 {
		fail("n must be > 0")
	}
	if *bucketSize <= 0 {
		fail("bucket must be > 0")
	}
	if *minBits <= 0 || *maxBits < *minBits {
		fail("min-bits must be > 0 and max-bits >= min-bits")
	}

	keys := generateKeys(*n, *minBits, *maxBits, rand.New(rand.NewSource(*seed)))
	fmt.Printf("generated %s distinct prefix-free keys, bucket size %d\n", humanize.Comma(int64(len(keys))), *bucketSize)

	if *variant == "hollow" || *variant == "both" {
		runHollow(keys, *bucketSize)
	}
	if *variant == "relative" || *variant == "both" {
		runRelative(keys, *bucketSize)
	}
}

func runHollow(keys []bits.BitString, bucketSize int) {
	fmt.Println("building HollowTrieDistributor...")
	d, err := hollowtrie.Build(bits.NewSliceBitStringIterator(keys), bucketSize)
	if err != nil {
		fail(err.Error())
	}
	verify(keys, bucketSize, d.GetLong, d.NumBits(), int64(d.Size()))
}

func runRelative(keys []bits.BitString, bucketSize int) {
	fmt.Println("building RelativeTrieDistributor...")
	d, err := relativetrie.Build(bits.NewSliceBitStringIterator(keys), bucketSize)
	if err != nil {
		fail(err.Error())
	}
	verify(keys, bucketSize, d.GetLong, d.NumBits(), int64(d.Size()))
}

// verify re-queries every key and checks it lands in its expected bucket,
// reporting progress on the bar the same way the thesis's own property
// tests do for long trial loops, then prints a humanized size summary.
func verify(keys []bits.BitString, bucketSize int, query func(bits.BitString) int64, numBits, size int64) {
	bar := progressbar.Default(int64(len(keys)))
	mismatches := 0
	for i, k := range keys {
		if want := int64(i / bucketSize); query(k) != want {
			mismatches++
		}
		_ = bar.Add(1)
	}

	if mismatches > 0 {
		fmt.Printf("  FAILED: %d/%d keys resolved to the wrong bucket\n", mismatches, len(keys))
	} else {
		fmt.Printf("  OK: all %s keys resolved to their expected bucket\n", humanize.Comma(int64(len(keys))))
	}
	fmt.Printf("  trie nodes: %d\n", size)
	fmt.Printf("  total size: %s bits (%s)\n", humanize.Comma(numBits), humanize.Bytes(uint64(numBits/8)))
}

// generateKeys produces n distinct, prefix-free, sorted keys whose bit
// length varies between minBits and maxBits. A trailing sentinel bit only
// guarantees prefix-freedom among keys of equal length (scenario (b)'s
// fixed-width case): once lengths vary, a shorter key's bits can be a
// literal prefix of a longer key's, so every key is instead prefixed with
// a fixed-width binary length field (the same length-prefix trick
// strategy.StringStrategy uses) before its random body — two keys of
// different length then diverge inside that field, before either body is
// reached, and two keys of equal length can't be in a prefix relation at
// all.
func generateKeys(n, minBits, maxBits int, rng *rand.Rand) []bits.BitString {
	lenWidth := len(strconv.FormatInt(int64(maxBits), 2))

	seen := make(map[string]bool, n)
	raw := make([]string, 0, n)
	for len(raw) < n {
		length := minBits + rng.Intn(maxBits-minBits+1)
		body := make([]byte, length)
		for i := 0; i < length; i++ {
			if rng.Intn(2) == 1 {
				body[i] = '1'
			} else {
				body[i] = '0'
			}
		}
		s := fmt.Sprintf("%0*b", lenWidth, length) + string(body)
		if seen[s] {
			continue
		}
		seen[s] = true
		raw = append(raw, s)
	}
	sort.Strings(raw)

	keys := make([]bits.BitString, len(raw))
	for i, s := range raw {
		keys[i] = bits.NewFromBinary(s)
	}
	return keys
}

func fail(msg string) {
	fmt.Fprintln(os.Stderr, "mmphbench:", msg)
	os.Exit(1)
}
