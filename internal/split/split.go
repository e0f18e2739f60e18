package split

import (
	"fmt"
	"math"
	"math/rand/v2"
	"time"
)

// Indices partitions row indices 0..n-1 into test and train sets from one
// shuffled permutation: test takes ceil(n*testSize) rows, train the rest.
func Indices(n int, testSize float64, rng *rand.Rand) (train, test []int, err error) {
	if testSize <= 0 || testSize >= 1 {
		return nil, nil, fmt.Errorf("split: test size %v outside (0,1)", testSize)
	}
	nTest := int(math.Ceil(float64(n) * testSize))
	nTrain := n - nTest
	if n > 0 && (nTrain == 0 || nTest == 0) {
		return nil, nil, fmt.Errorf("split: %d rows with test size %v leaves an empty partition", n, testSize)
	}
	perm := rng.Perm(n)
	return perm[nTest:], perm[:nTest], nil
}

// NewRand returns a seeded generator; a nil seed draws one from the clock.
// The seed actually used is returned so runs can be reproduced.
func NewRand(seed *uint64) (*rand.Rand, uint64) {
	s := uint64(time.Now().UnixNano())
	if seed != nil {
		s = *seed
	}
	return rand.New(rand.NewPCG(s, s^0x9e3779b97f4a7c15)), s
}
