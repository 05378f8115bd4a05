package model_problems

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/notargets/convexenv/envelope"
	"github.com/notargets/convexenv/types"
)

var square = types.PointSet{{0, 0}, {1, 0}, {0, 1}, {1, 1}}

func TestLookup(t *testing.T) {
	{
		f, err := Lookup("Hinge", nil)
		require.NoError(t, err)
		assert.InDelta(t, 1.2, f([]float64{0.1}, []float64{0}), 1e-15)
		assert.InDelta(t, 1.0, f([]float64{0.1}, []float64{1}), 1e-15)
		f, err = Lookup("hinge", map[string]float64{"x": 2})
		require.NoError(t, err)
		assert.InDelta(t, 1.3, f([]float64{0.1}, []float64{0}), 1e-15)
	}
	{
		f, err := Lookup("quadratic", map[string]float64{"d": 0.5})
		require.NoError(t, err)
		assert.InDelta(t, 0.61, f([]float64{0.5}, []float64{0.3, 0.6}), 1e-15)
	}
	{
		f, err := Lookup("bilinear", nil)
		require.NoError(t, err)
		assert.InDelta(t, 0.18+0.16, f([]float64{0.5}, []float64{0.3, 0.6}), 1e-15)
	}
	{
		_, err := Lookup("cubic", nil)
		assert.Error(t, err)
		_, err = Lookup("", nil)
		assert.Error(t, err)
		_, err = Lookup("bilinear", map[string]float64{"x": 1})
		assert.Error(t, err)
	}
	{
		ft, err := NewFunctionType(" QUADRATIC ")
		require.NoError(t, err)
		assert.Equal(t, QUADRATIC, ft)
		assert.Equal(t, "Quadratic", ft.Print())
	}
}

func TestEnvelopes(t *testing.T) {
	W := types.NewBox([][2]float64{{-10, 10}})
	{ // Hinge driver example
		f, err := Lookup("hinge", nil)
		require.NoError(t, err)
		v, err := envelope.Compute([]float64{0.1}, []float64{0.5},
			types.NewBox([][2]float64{{-3, 3}}), types.PointSet{{0}, {1}}, f)
		require.NoError(t, err)
		assert.InDelta(t, 1.0, v, 1e-4)
	}
	{ // A jointly convex function is its own envelope on every simplex
		f := Quadratic(1, 0.5)
		env, err := envelope.New(W, square, f)
		require.NoError(t, err)
		y := []float64{0.3, 0.6}
		res, err := env.Evaluate(context.Background(), []float64{0.5}, y)
		require.NoError(t, err)
		for _, c := range res.Candidates {
			assert.InDelta(t, f([]float64{0.5}, y), c.Value, 1e-4)
		}
	}
	{ // Bilinear envelope in closed form
		f := Bilinear()
		env, err := envelope.New(W, square, f, envelope.WithWorkers(2))
		require.NoError(t, err)
		for _, y := range [][]float64{{0.3, 0.6}, {0.7, 0.8}, {0.9, 0.4}} {
			v, err := env.At([]float64{0.5}, y)
			require.NoError(t, err)
			r := 0.5 - y[0] - y[1]
			assert.InDelta(t, r*r+math.Max(0, y[0]+y[1]-1), v, 1e-4, "y = %v", y)
		}
	}
}
