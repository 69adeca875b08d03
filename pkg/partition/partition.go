// Package partition assigns every element of [0, n) to exactly one subset.
// Subset 0 is the background subset that AllToOne starts from; new subsets
// are created by ToSingleton and receive increasing ids.
package partition

import (
	"fmt"
	"sort"
)

// Partition maps elements to subset ids
type Partition struct {
	data       []int // data[v] = subset id of element v
	sizes      []int // sizes[id] = number of elements in subset id
	upperBound int   // every subset id in use is < upperBound
}

// New creates a partition of n elements, all in subset 0
func New(n int) *Partition {
	p := &Partition{data: make([]int, n)}
	p.AllToOne()
	return p
}

// AllToOne puts every element into subset 0
func (p *Partition) AllToOne() {
	for i := range p.data {
		p.data[i] = 0
	}
	p.sizes = []int{len(p.data)}
	p.upperBound = 1
}

// ToSingleton moves v into a fresh subset and returns its id
func (p *Partition) ToSingleton(v int) int {
	p.checkElement(v)
	id := p.upperBound
	p.upperBound++
	p.sizes = append(p.sizes, 0)
	p.move(id, v)
	return id
}

// SubsetOf returns the subset id of v
func (p *Partition) SubsetOf(v int) int {
	p.checkElement(v)
	return p.data[v]
}

// MoveToSubset moves v into an existing subset id
func (p *Partition) MoveToSubset(id, v int) {
	p.checkElement(v)
	if id < 0 || id >= p.upperBound {
		panic(fmt.Sprintf("partition: subset id %d out of range [0, %d)", id, p.upperBound))
	}
	p.move(id, v)
}

func (p *Partition) move(id, v int) {
	p.sizes[p.data[v]]--
	p.data[v] = id
	p.sizes[id]++
}

func (p *Partition) checkElement(v int) {
	if v < 0 || v >= len(p.data) {
		panic(fmt.Sprintf("partition: element %d out of range [0, %d)", v, len(p.data)))
	}
}

// Members returns the elements of subset id in ascending order
func (p *Partition) Members(id int) []int {
	members := make([]int, 0, p.SubsetSize(id))
	for v, s := range p.data {
		if s == id {
			members = append(members, v)
		}
	}
	return members
}

// SubsetSize returns the number of elements in subset id
func (p *Partition) SubsetSize(id int) int {
	if id < 0 || id >= len(p.sizes) {
		return 0
	}
	return p.sizes[id]
}

// NumberOfSubsets returns the number of nonempty subsets
func (p *Partition) NumberOfSubsets() int {
	count := 0
	for _, size := range p.sizes {
		if size > 0 {
			count++
		}
	}
	return count
}

func (p *Partition) NumberOfElements() int { return len(p.data) }
func (p *Partition) UpperBound() int       { return p.upperBound }

// SubsetIDs returns the ids of all nonempty subsets in ascending order
func (p *Partition) SubsetIDs() []int {
	ids := make([]int, 0, p.NumberOfSubsets())
	for id, size := range p.sizes {
		if size > 0 {
			ids = append(ids, id)
		}
	}
	return ids
}

// SubsetSizes returns subset id -> size for nonempty subsets
func (p *Partition) SubsetSizes() map[int]int {
	sizes := make(map[int]int)
	for id, size := range p.sizes {
		if size > 0 {
			sizes[id] = size
		}
	}
	return sizes
}

// Subsets returns subset id -> members for nonempty subsets
func (p *Partition) Subsets() map[int][]int {
	subsets := make(map[int][]int)
	for v, id := range p.data {
		subsets[id] = append(subsets[id], v)
	}
	return subsets
}

// Vector returns a copy of the element -> subset assignment
func (p *Partition) Vector() []int {
	out := make([]int, len(p.data))
	copy(out, p.data)
	return out
}

// Compact renumbers nonempty subsets to 0..k-1 keeping their relative order,
// so the background subset stays 0 whenever it is nonempty.
func (p *Partition) Compact() {
	ids := p.SubsetIDs()
	remap := make(map[int]int, len(ids))
	for i, id := range ids {
		remap[id] = i
	}

	sizes := make([]int, len(ids))
	for v, id := range p.data {
		p.data[v] = remap[id]
		sizes[p.data[v]]++
	}
	p.sizes = sizes
	p.upperBound = len(ids)
	if p.upperBound == 0 {
		p.sizes = []int{0}
		p.upperBound = 1
	}
}

// Equal reports whether two partitions assign every element identically
func (p *Partition) Equal(other *Partition) bool {
	if len(p.data) != len(other.data) {
		return false
	}
	for v := range p.data {
		if p.data[v] != other.data[v] {
			return false
		}
	}
	return true
}

// SortedBySize returns nonempty subset ids ordered by decreasing size, ties by id
func (p *Partition) SortedBySize() []int {
	ids := p.SubsetIDs()
	sort.SliceStable(ids, func(i, j int) bool {
		return p.sizes[ids[i]] > p.sizes[ids[j]]
	})
	return ids
}
