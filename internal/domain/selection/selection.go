// Package selection holds the random algorithms used to pick winners. Every
// function is a pure function of the given PRNG and its input, so a selection
// can be replayed from the stored seed.
package selection

import (
	crand "crypto/rand"
	"encoding/binary"
	"errors"
	"math/rand"

	"golang.org/x/exp/slices"
)

var (
	ErrInvalidRange        = errors.New("invalid range")
	ErrCountOutOfRange     = errors.New("count is larger than the range")
	ErrNotEnoughCandidates = errors.New("not enough acceptable numbers in the range")
)

// NewSeed returns a seed read from the system CSPRNG.
func NewSeed() (int64, error) {
	var b [8]byte
	if _, err := crand.Read(b[:]); err != nil {
		return 0, err
	}

	return int64(binary.BigEndian.Uint64(b[:])), nil
}

func NewRand(seed int64) *rand.Rand {
	return rand.New(rand.NewSource(seed))
}

// Shuffle permutes items in place with Fisher-Yates: for i from the last index
// down to 1, swap items[i] with items[j] where j is uniform in [0, i].
func Shuffle[T any](r *rand.Rand, items []T) {
	for i := len(items) - 1; i > 0; i-- {
		j := r.Intn(i + 1)
		items[i], items[j] = items[j], items[i]
	}
}

// GenerateUniqueRandomNumbers returns count distinct numbers drawn uniformly
// from [min, max], sorted ascending.
func GenerateUniqueRandomNumbers(r *rand.Rand, min, max, count int) ([]int, error) {
	return GenerateUniqueRandomNumbersFunc(r, min, max, count, nil)
}

// GenerateUniqueRandomNumbersFunc is like GenerateUniqueRandomNumbers but only
// keeps numbers accepted by accept. A number is drawn at most once: a collision
// with a previously drawn number is resampled, and a rejected number is never
// drawn again. It fails with ErrNotEnoughCandidates when the range runs out
// before count numbers are accepted.
func GenerateUniqueRandomNumbersFunc(
	r *rand.Rand, min, max, count int, accept func(int) bool,
) ([]int, error) {
	if min > max || count < 0 {
		return nil, ErrInvalidRange
	}

	size := max - min + 1
	if count > size {
		return nil, ErrCountOutOfRange
	}

	drawn := make(map[int]struct{}, count)
	result := make([]int, 0, count)
	for len(result) < count {
		if len(drawn) == size {
			return nil, ErrNotEnoughCandidates
		}

		n := min + r.Intn(size)
		if _, ok := drawn[n]; ok {
			continue
		}
		drawn[n] = struct{}{}

		if accept != nil && !accept(n) {
			continue
		}

		result = append(result, n)
	}

	slices.Sort(result)
	return result, nil
}
