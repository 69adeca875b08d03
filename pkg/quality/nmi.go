package quality

import (
	"errors"
	"math"

	"github.com/gilchrisn/local-community-service/pkg/partition"
)

// ErrSizeMismatch is returned when two partitions cover different element counts
var ErrSizeMismatch = errors.New("partitions must have the same number of elements")

type cell struct{ a, b int }

// NMI returns the normalized mutual information of two partitions, with the
// mutual information divided by the mean of both entropies. Subset 0 is
// treated as an ordinary subset. Two single-subset partitions score 1.
func NMI(a, b *partition.Partition) (float64, error) {
	if a.NumberOfElements() != b.NumberOfElements() {
		return 0, ErrSizeMismatch
	}

	n := a.NumberOfElements()
	if n == 0 {
		return 0, nil
	}

	va, vb := a.Vector(), b.Vector()
	contingency := make(map[cell]int)
	for i := range va {
		contingency[cell{va[i], vb[i]}]++
	}

	mi := mutualInformation(contingency, a.SubsetSizes(), b.SubsetSizes(), n)
	mean := (entropy(a.SubsetSizes(), n) + entropy(b.SubsetSizes(), n)) / 2
	if mean == 0 {
		return 1.0, nil
	}
	return mi / mean, nil
}

func mutualInformation(contingency map[cell]int, sizesA, sizesB map[int]int, n int) float64 {
	mi := 0.0
	for c, nij := range contingency {
		ni, nj := sizesA[c.a], sizesB[c.b]
		mi += float64(nij) / float64(n) * math.Log2(float64(nij)*float64(n)/(float64(ni)*float64(nj)))
	}
	return mi
}

func entropy(sizes map[int]int, n int) float64 {
	h := 0.0
	for _, count := range sizes {
		if count == 0 {
			continue
		}
		p := float64(count) / float64(n)
		h -= p * math.Log2(p)
	}
	return h
}
