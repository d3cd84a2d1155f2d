// Package utils holds small helpers shared across gaiacommit packages.
package utils

import (
	"crypto/rand"
	"errors"
	"math/big"
)

// ErrEmptyChoice is returned when asked to pick from nothing.
var ErrEmptyChoice = errors.New("nothing to choose from")

// RandomIndex returns a uniformly distributed index in [0, n).
func RandomIndex(n int) (int, error) {
	if n <= 0 {
		return 0, ErrEmptyChoice
	}
	idx, err := rand.Int(rand.Reader, big.NewInt(int64(n)))
	if err != nil {
		return 0, err
	}
	return int(idx.Int64()), nil
}

// PickRandom returns one element of list chosen uniformly at random.
func PickRandom[T any](list []T) (T, error) {
	var zero T
	idx, err := RandomIndex(len(list))
	if err != nil {
		return zero, err
	}
	return list[idx], nil
}
