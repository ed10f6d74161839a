package set

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBitmap(t *testing.T) {
	s := MakeBitmap(0)

	assert.Equal(t, 0, s.NextClear(0))

	s.Set(0)
	s.Set(1)
	s.Set(3)
	s.Set(64)

	assert.True(t, s.IsSet(3))
	assert.False(t, s.IsSet(2))
	assert.False(t, s.IsSet(1000))

	assert.Equal(t, 2, s.NextClear(0))
	assert.Equal(t, 4, s.NextClear(3))
	assert.Equal(t, 65, s.NextClear(64))
	assert.Equal(t, 300, s.NextClear(300))
	assert.Equal(t, 4, s.Size())

	var got []int

	s.Range(func(i int) bool {
		got = append(got, i)
		return true
	})

	assert.Equal(t, []int{0, 1, 3, 64}, got)
}

func TestBitmapFull(t *testing.T) {
	var s Bitmap

	for i := 0; i < 256; i++ {
		s.Set(i)
	}

	assert.Equal(t, 256, s.NextClear(0))
	assert.Equal(t, 256, s.Size())
}
