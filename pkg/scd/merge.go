package scd

import (
	"sort"

	"github.com/rs/zerolog"

	"github.com/gilchrisn/local-community-service/pkg/partition"
)

// MergeCommunities resolves possibly overlapping communities into a partition
// of n nodes. Seeds are processed by ascending conductance; each one gets a
// fresh subset and claims only the members of its community that are still
// in the background subset 0. A seed that claims nothing is moved back to the
// subset it came from. Returns the partition and the number of such reverts.
func MergeCommunities(n int, communities map[int]*Community, scores []SeedScore, logger zerolog.Logger) (*partition.Partition, int) {
	p := partition.New(n)

	ordered := make([]SeedScore, len(scores))
	copy(ordered, scores)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Conductance < ordered[j].Conductance
	})

	reverted := 0
	for _, score := range ordered {
		seed := score.Seed
		oldID := p.SubsetOf(seed)
		id := p.ToSingleton(seed)

		if community, ok := communities[seed]; ok {
			for _, v := range community.Nodes {
				if v != seed && p.SubsetOf(v) == 0 {
					p.MoveToSubset(id, v)
				}
			}
		}

		if p.SubsetSize(id) == 1 {
			logger.Info().
				Int("seed", seed).
				Int("subset", oldID).
				Msg("Reverting singleton subset")
			p.MoveToSubset(oldID, seed)
			reverted++
		}
	}

	return p, reverted
}
