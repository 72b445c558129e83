package money

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRound2(t *testing.T) {
	assert.Equal(t, 1.01, Round2(1.005))
	assert.Equal(t, 2.68, Round2(2.675))
	assert.Equal(t, 0.3, Round2(0.1+0.2))
	assert.Equal(t, -1.01, Round2(-1.005))
}

func TestLineAddsAddOnsOncePerLine(t *testing.T) {
	assert.Equal(t, 21.0, Float(Line(10, 2, 1)))
	assert.Equal(t, 7.75, Float(Line(2.5, 3, 0.1, 0.15)))
}

func TestSumAndMean(t *testing.T) {
	assert.Equal(t, 0.3, Sum(0.1, 0.2))
	assert.Equal(t, 0.0, Mean(nil))
	assert.Equal(t, 3.67, Mean([]float64{3, 4, 4}))
}
