package types

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBox(t *testing.T) {
	{ // Construction and validation
		B := NewBox([][2]float64{{-3, 3}, {0, 1}})
		require.NoError(t, B.Validate())
		assert.Equal(t, 2, B.Dim())
		assert.Equal(t, Bound{-3, 3}, B[0])

		assert.Error(t, Box{}.Validate())
		assert.Error(t, Box{{1, 0}}.Validate())
		assert.Error(t, Box{{math.NaN(), 0}}.Validate())
		assert.NoError(t, Box{{math.Inf(-1), math.Inf(1)}}.Validate())
		assert.NoError(t, Box{{2, 2}}.Validate())
	}
	{ // Membership and projection
		B := NewBox([][2]float64{{-3, 3}, {0, 1}})
		assert.True(t, B.Contains([]float64{0.1, 1}))
		assert.False(t, B.Contains([]float64{0.1, 1.5}))
		assert.False(t, B.Contains([]float64{0.1}))
		assert.Equal(t, []float64{3, 0}, B.Clamp(nil, []float64{5, -1}))
		dst := make([]float64, 2)
		B.Clamp(dst, []float64{-4, 0.5})
		assert.Equal(t, []float64{-3, 0.5}, dst)
	}
	{ // Bound geometry
		b := Bound{-3, 5}
		assert.Equal(t, 1., b.Mid())
		assert.Equal(t, 4., b.Half())
		assert.True(t, b.Finite())
		assert.False(t, Bound{0, math.Inf(1)}.Finite())
	}
	{ // Repeat stacks copies of the same block
		B := NewBox([][2]float64{{-1, 1}, {0, 2}})
		R := B.Repeat(3)
		require.Equal(t, 6, R.Dim())
		for k := 0; k < 3; k++ {
			assert.Equal(t, B[0], R[2*k])
			assert.Equal(t, B[1], R[2*k+1])
		}
	}
}

func TestPointSet(t *testing.T) {
	P := PointSet{{0, 0}, {1, 0}, {0, 1}, {1, 1}}
	require.NoError(t, P.Validate())
	assert.Equal(t, 4, P.Len())
	assert.Equal(t, 2, P.Dim())

	assert.Error(t, PointSet{}.Validate())
	assert.Error(t, PointSet{{}}.Validate())
	assert.Error(t, PointSet{{0, 0}, {1}}.Validate())
	assert.Error(t, PointSet{{0, math.Inf(1)}}.Validate())

	C := P.Subset([]int{1, 3})
	assert.Equal(t, PointSet{{1, 0}, {1, 1}}, C)

	R := P.Permute([]int{3, 2, 1, 0})
	assert.Equal(t, PointSet{{1, 1}, {0, 1}, {1, 0}, {0, 0}}, R)
	R[0][0] = 7
	assert.Equal(t, 1., P[3][0])
}
