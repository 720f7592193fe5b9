// Package timeseries holds ordered ping samples with bounded retention.
package timeseries

import (
	"sort"

	"linkmon/internal/models"
)

// Series is an ascending, duplicate-free sequence of samples capped at a fixed length
type Series struct {
	samples  []models.PingSample
	capacity int
}

// NewSeries creates an empty series retaining at most capacity samples
func NewSeries(capacity int) *Series {
	if capacity <= 0 {
		capacity = 1
	}
	return &Series{capacity: capacity}
}

// AppendIncoming merges samples newer than anything held and returns how many were added.
//
// Real samples are compared against the newest real sample only, and any real sample
// accepted evicts every synthetic placeholder held. Synthetic samples are accepted only
// when newer than everything held.
func (s *Series) AppendIncoming(incoming []models.PingSample) int {
	if len(incoming) == 0 {
		return 0
	}

	batch := make([]models.PingSample, len(incoming))
	copy(batch, incoming)
	sort.SliceStable(batch, func(i, j int) bool {
		return batch[i].Timestamp < batch[j].Timestamp
	})

	var real, synthetic []models.PingSample
	realNewest, _ := s.newest(false)
	for _, sample := range batch {
		if sample.Synthetic {
			continue
		}
		if sample.Timestamp <= realNewest {
			continue
		}
		real = append(real, sample)
		realNewest = sample.Timestamp
	}

	if len(real) > 0 {
		s.dropSynthetic()
	}
	s.samples = append(s.samples, real...)

	newest, _ := s.newest(true)
	for _, sample := range batch {
		if !sample.Synthetic || sample.Timestamp <= newest {
			continue
		}
		synthetic = append(synthetic, sample)
		newest = sample.Timestamp
	}
	s.samples = append(s.samples, synthetic...)

	s.truncate()
	return len(real) + len(synthetic)
}

// SetCapacity changes the retention cap, dropping the oldest samples if needed
func (s *Series) SetCapacity(capacity int) {
	if capacity <= 0 {
		capacity = 1
	}
	s.capacity = capacity
	s.truncate()
}

// Capacity returns the retention cap
func (s *Series) Capacity() int {
	return s.capacity
}

// Len returns the number of samples held
func (s *Series) Len() int {
	return len(s.samples)
}

// Newest returns the timestamp of the most recent sample
func (s *Series) Newest() (int64, bool) {
	return s.newest(true)
}

// Samples returns a copy of the held samples, oldest first
func (s *Series) Samples() []models.PingSample {
	out := make([]models.PingSample, len(s.samples))
	copy(out, s.samples)
	return out
}

// SyntheticCount returns how many placeholder samples are held
func (s *Series) SyntheticCount() int {
	n := 0
	for _, sample := range s.samples {
		if sample.Synthetic {
			n++
		}
	}
	return n
}

func (s *Series) newest(includeSynthetic bool) (int64, bool) {
	for i := len(s.samples) - 1; i >= 0; i-- {
		if includeSynthetic || !s.samples[i].Synthetic {
			return s.samples[i].Timestamp, true
		}
	}
	return 0, false
}

func (s *Series) dropSynthetic() {
	kept := s.samples[:0]
	for _, sample := range s.samples {
		if !sample.Synthetic {
			kept = append(kept, sample)
		}
	}
	for i := len(kept); i < len(s.samples); i++ {
		s.samples[i] = models.PingSample{}
	}
	s.samples = kept
}

func (s *Series) truncate() {
	if excess := len(s.samples) - s.capacity; excess > 0 {
		s.samples = append(s.samples[:0:0], s.samples[excess:]...)
	}
}

// Window returns the samples with Timestamp >= ref-windowSeconds.
// ref should be the newest sample timestamp so a stalled feed does not open a gap.
func Window(samples []models.PingSample, windowSeconds, ref int64) []models.PingSample {
	cutoff := ref - windowSeconds
	i := sort.Search(len(samples), func(i int) bool {
		return samples[i].Timestamp >= cutoff
	})
	return samples[i:]
}
