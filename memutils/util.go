package memutils

import (
	"math/bits"

	cerrors "github.com/cockroachdb/errors"
)

type Number interface {
	~int | ~uint
}

func CheckPow2[T Number](number T, name string) error {
	if number&(number-1) != 0 {
		return cerrors.Wrapf(PowerOfTwoError, "%s is %d", name, number)
	}
	return nil
}

// AlignUp rounds value up to the next multiple of alignment, which must be a
// power of two.
func AlignUp(value int, alignment uint) int {
	return (value + int(alignment) - 1) & int(^(alignment - 1))
}

// AlignDown rounds value down to a multiple of alignment, which must be a
// power of two.
func AlignDown(value int, alignment uint) int {
	return value & int(^(alignment - 1))
}

func IsAligned(value int, alignment uint) bool {
	return value&int(alignment-1) == 0
}

func DivRoundUp(value, divisor int) int {
	return (value + divisor - 1) / divisor
}

// NextPow2 returns the smallest power of two greater than or equal to value,
// which must be at least 1.
func NextPow2(value int) int {
	return 1 << bits.Len64(uint64(value-1))
}
