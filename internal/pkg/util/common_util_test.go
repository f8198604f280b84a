package util

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeTags(t *testing.T) {
	tags := NormalizeTags([]string{" 教材 ", "教材", "", "  ", "自行车", "二手", "自行车"})
	assert.Equal(t, []string{"教材", "自行车", "二手"}, tags)

	assert.Empty(t, NormalizeTags(nil))
	assert.Empty(t, NormalizeTags([]string{"", "   "}))
}

func TestValidCoordinate(t *testing.T) {
	assert.True(t, ValidCoordinate(116.39, 39.91))
	assert.True(t, ValidCoordinate(-180, -90))
	assert.True(t, ValidCoordinate(180, 90))

	assert.False(t, ValidCoordinate(180.01, 0))
	assert.False(t, ValidCoordinate(0, -90.01))
	assert.False(t, ValidCoordinate(math.NaN(), 0))
	assert.False(t, ValidCoordinate(0, math.Inf(1)))
}

func TestStrSliceToUInt64Slice(t *testing.T) {
	got, err := StrSliceToUInt64Slice([]string{"1", "42", "9999999999"})
	assert.NoError(t, err)
	assert.Equal(t, []uint64{1, 42, 9999999999}, got)

	_, err = StrSliceToUInt64Slice([]string{"1", "abc"})
	assert.Error(t, err)
}
