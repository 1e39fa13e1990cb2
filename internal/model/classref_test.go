package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRefFromTime(t *testing.T) {
	ts := time.Date(2025, time.March, 7, 18, 5, 0, 0, time.UTC)
	assert.Equal(t, ClassRef("202503071805"), RefFromTime(ts))
}

func TestClassRefCompare(t *testing.T) {
	earlier := ClassRef("202503071800")
	later := ClassRef("202503071930")

	assert.Positive(t, later.Compare(earlier))
	assert.Negative(t, earlier.Compare(later))
	assert.Zero(t, earlier.Compare(earlier))
}

func TestClassRefCompareAcrossBoundaries(t *testing.T) {
	// Lexicographic comparison would also get these right, but the
	// contract is instant-based ordering; make sure month and year
	// rollovers order correctly.
	dec := ClassRef("202412312300")
	jan := ClassRef("202501010900")
	assert.Negative(t, dec.Compare(jan))

	endOfMonth := ClassRef("202501311800")
	startOfNext := ClassRef("202502011800")
	assert.Negative(t, endOfMonth.Compare(startOfNext))
}

func TestClassRefValid(t *testing.T) {
	assert.True(t, ClassRef("202503071800").Valid())
	assert.False(t, ClassRef("2025030718").Valid())
	assert.False(t, ClassRef("20250307180x").Valid())
	assert.False(t, ClassRef("").Valid())
}

func TestClassRefTime(t *testing.T) {
	ts := ClassRef("202503071805").Time()
	assert.Equal(t, time.Date(2025, time.March, 7, 18, 5, 0, 0, time.UTC), ts)

	assert.True(t, ClassRef("bogus").Time().IsZero())
}
