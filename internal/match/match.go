// Package match groups catalog pictures that look alike. Perceptual
// hashing finds near-duplicates (re-exports, resized copies, burst shots)
// that the byte-exact dedup of the import path can never connect.
package match

import (
	"fmt"
	"sort"

	"github.com/corona10/goimagehash"
	"github.com/google/uuid"

	"github.com/malramsay64/decimator/internal/decode"
)

// Item is one picture offered for similarity grouping.
type Item struct {
	ID    uuid.UUID
	Path  string
	PHash uint64
}

// Group is a set of two or more visually similar pictures.
type Group struct {
	Items []Item
}

// PerceptualHash decodes the image at path and computes its perception
// hash.
func PerceptualHash(path string) (uint64, error) {
	img, err := decode.File(path)
	if err != nil {
		return 0, err
	}
	h, err := goimagehash.PerceptionHash(img)
	if err != nil {
		return 0, fmt.Errorf("failed to compute perceptual hash: %w", err)
	}
	return h.GetHash(), nil
}

// HammingDistance counts differing bits between two perceptual hashes.
func HammingDistance(a, b uint64) int {
	xor := a ^ b
	count := 0
	for xor != 0 {
		count++
		xor &= xor - 1
	}
	return count
}

// Matcher groups items whose perceptual hashes are within a Hamming
// distance threshold of each other.
type Matcher struct {
	threshold int
}

// NewMatcher creates a Matcher. Lower thresholds are stricter; negative
// values fall back to the default of 10.
func NewMatcher(threshold int) *Matcher {
	if threshold < 0 {
		threshold = 10
	}
	return &Matcher{threshold: threshold}
}

// Threshold returns the configured Hamming distance threshold.
func (m *Matcher) Threshold() int {
	return m.threshold
}

// Groups clusters the items transitively: any pair within the threshold
// joins the same group. A BK-tree keeps neighbour lookup sub-quadratic and
// union-find merges overlapping pairs.
func (m *Matcher) Groups(items []Item) []Group {
	n := len(items)
	if n < 2 {
		return nil
	}

	uf := newUnionFind(n)
	tree := newBKTree(HammingDistance)
	for i, it := range items {
		for _, j := range tree.findWithinDistance(it.PHash, m.threshold) {
			uf.union(i, j)
		}
		tree.insert(it.PHash, i)
	}

	clusters := make(map[int][]Item)
	for i, it := range items {
		root := uf.find(i)
		clusters[root] = append(clusters[root], it)
	}

	var groups []Group
	for _, members := range clusters {
		if len(members) < 2 {
			continue
		}
		sort.Slice(members, func(i, j int) bool { return members[i].Path < members[j].Path })
		groups = append(groups, Group{Items: members})
	}

	// Deterministic output ordering.
	sort.Slice(groups, func(i, j int) bool {
		return groups[i].Items[0].Path < groups[j].Items[0].Path
	})

	return groups
}

type unionFind struct {
	parent []int
	rank   []int
}

func newUnionFind(n int) *unionFind {
	parent := make([]int, n)
	for i := range parent {
		parent[i] = i
	}
	return &unionFind{parent: parent, rank: make([]int, n)}
}

func (uf *unionFind) find(x int) int {
	if uf.parent[x] != x {
		uf.parent[x] = uf.find(uf.parent[x])
	}
	return uf.parent[x]
}

func (uf *unionFind) union(x, y int) {
	px, py := uf.find(x), uf.find(y)
	if px == py {
		return
	}
	if uf.rank[px] < uf.rank[py] {
		px, py = py, px
	}
	uf.parent[py] = px
	if uf.rank[px] == uf.rank[py] {
		uf.rank[px]++
	}
}
