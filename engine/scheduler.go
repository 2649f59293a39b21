// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package engine

import (
	"math/rand/v2"

	"github.com/DevDaysSpring2024-29/project/models"
)

// DefaultChunkSize is the number of consecutive option indices shuffled
// together.
const DefaultChunkSize = 10

// ShuffleFunc has the signature of rand.Shuffle.
type ShuffleFunc func(n int, swap func(i, j int))

// Scheduler produces per-participant traversal orders. The index range is
// split into fixed-size chunks that are shuffled independently and kept in
// order, so earlier (higher ranked) options stay early while no two
// participants are likely to see the same sequence.
type Scheduler struct {
	chunkSize int
	shuffle   ShuffleFunc
}

// NewScheduler returns a scheduler using math/rand/v2, which is safe for
// concurrent use. A non-positive chunkSize selects DefaultChunkSize.
func NewScheduler(chunkSize int, shuffle ShuffleFunc) *Scheduler {
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}
	if shuffle == nil {
		shuffle = rand.Shuffle
	}
	return &Scheduler{chunkSize: chunkSize, shuffle: shuffle}
}

// ChunkSize reports the chunk size in use after defaulting.
func (s *Scheduler) ChunkSize() int { return s.chunkSize }

// Permutation returns a chunk-shuffled permutation of 0..n-1.
func (s *Scheduler) Permutation(n int) []int {
	order := make([]int, n)
	for i := range order {
		order[i] = i
	}
	for start := 0; start < n; start += s.chunkSize {
		chunk := order[start:min(start+s.chunkSize, n)]
		s.shuffle(len(chunk), func(i, j int) {
			chunk[i], chunk[j] = chunk[j], chunk[i]
		})
	}
	return order
}

// NewSchedule returns a fresh schedule over n options with the cursor at 0.
func (s *Scheduler) NewSchedule(n int) *models.Schedule {
	return &models.Schedule{Order: s.Permutation(n)}
}

// Advance moves the cursor one step. When the cursor runs off the end it
// wraps to 0 with a freshly generated permutation and Advance reports true;
// the caller owns purging that participant's approvals.
func (s *Scheduler) Advance(sch *models.Schedule) bool {
	sch.Cursor++
	if sch.Cursor < len(sch.Order) {
		return false
	}
	sch.Cursor = 0
	sch.Order = s.Permutation(len(sch.Order))
	return true
}

// Shuffle randomizes entries in place. Used once when provider results are
// ingested.
func (s *Scheduler) Shuffle(entries []models.Entry) {
	s.shuffle(len(entries), func(i, j int) {
		entries[i], entries[j] = entries[j], entries[i]
	})
}
