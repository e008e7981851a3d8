package coord

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPoint_AddSub(t *testing.T) {
	p := Point{1, 2, 3}
	assert.Equal(t, Point{3, 5, 7}, p.Add(Point{2, 3, 4}))
	assert.Equal(t, Point{-1, -1, -1}, p.Sub(Point{2, 3, 4}))

	// value semantics: p itself is untouched
	assert.Equal(t, Point{1, 2, 3}, p)
}

func TestPoint_AbsNeg(t *testing.T) {
	p := Point{-1, 2, -3}
	assert.Equal(t, Point{1, 2, 3}, p.Abs())
	assert.Equal(t, Point{1, -2, 3}, p.Neg())
}

func TestPoint_MinMax(t *testing.T) {
	a := Point{1, 5, -2}
	b := Point{3, 4, -8}
	assert.Equal(t, Point{1, 4, -8}, a.Min(b))
	assert.Equal(t, Point{3, 5, -2}, a.Max(b))
}

func TestPoint_Length(t *testing.T) {
	assert.Equal(t, 5.0, Point{3, 4, 0}.Length())
}
