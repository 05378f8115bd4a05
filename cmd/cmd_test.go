package cmd

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/magiconair/properties/assert"

	"github.com/notargets/convexenv/InputParameters"
	"github.com/notargets/convexenv/envelope"
)

func TestRunPoint(t *testing.T) {
	var (
		out bytes.Buffer
		ip  = InputParameters.NewDefault()
	)
	res, err := RunPoint(context.Background(), ip, &out)
	if err != nil {
		panic(err)
	}
	assert.Equal(t, math.Abs(res.Value-1) < 1e-4, true)
	assert.Equal(t, len(res.Candidates), 1)
	assert.Matches(t, out.String(), `1 of 1 subsets of Y contain y`)

	ip.Query.Y = []float64{1.5}
	_, err = RunPoint(context.Background(), ip, &out)
	assert.Equal(t, errors.Is(err, envelope.ErrNoContainingSimplex), true)
}

func TestRunGrid(t *testing.T) {
	var (
		out bytes.Buffer
		ip  = InputParameters.NewDefault()
	)
	ip.Grid = InputParameters.Grid{WMin: -1, WMax: 1, WSteps: 3, YMin: 0, YMax: 1.5, YSteps: 2}
	if err := RunGrid(context.Background(), ip, &out); err != nil {
		panic(err)
	}
	rows, err := csv.NewReader(&out).ReadAll()
	if err != nil {
		panic(err)
	}
	assert.Equal(t, len(rows), 7)
	assert.Equal(t, rows[0], []string{"w", "y", "value"})
	assert.Equal(t, rows[1][:2], []string{"-1", "0"})
	// y = 1.5 is outside conv(Y)
	assert.Equal(t, rows[2], []string{"-1", "1.5", "NaN"})
	// At y = 0 the envelope is f(w, 0) = max(1 + w, 0) + |w|
	assert.Equal(t, rows[3][2], "1")
	assert.Equal(t, rows[5][2], "3")
}

func TestCommands(t *testing.T) {
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	defer rootCmd.SetOut(nil)
	{
		rootCmd.SetArgs([]string{"point", "--w", "0.1", "--y", "0.05"})
		if err := rootCmd.Execute(); err != nil {
			panic(err)
		}
		assert.Matches(t, out.String(), `env\(f\)\(\[0\.1\], \[0\.05\]\) = 1\.0[45]`)
	}
	{
		fileName := filepath.Join(t.TempDir(), "bilinear.yaml")
		problem := []byte(`
Title: Bilinear
Function: bilinear
W: [[-10, 10]]
Points: [[0, 0], [1, 0], [0, 1], [1, 1]]
Query: {W: [0.5], YPoint: [0.3, 0.6]}
Grid: {WMin: 0, WMax: 1, WSteps: 2, YMin: 0, YMax: 1, YSteps: 2}
`)
		if err := os.WriteFile(fileName, problem, 0644); err != nil {
			panic(err)
		}
		out.Reset()
		rootCmd.SetArgs([]string{"grid", "-I", fileName, "--workers", "2"})
		if err := rootCmd.Execute(); err != nil {
			panic(err)
		}
		rows, err := csv.NewReader(&out).ReadAll()
		if err != nil {
			panic(err)
		}
		assert.Equal(t, len(rows), 5)
		// Rows vary w and y_0 with y_1 = 0.6 from the query. The bilinear
		// envelope is (w - y_0 - y_1)² + max(0, y_0 + y_1 - 1)
		for _, row := range rows[1:] {
			var vals [3]float64
			for i := range vals {
				if vals[i], err = strconv.ParseFloat(row[i], 64); err != nil {
					panic(err)
				}
			}
			var (
				w, y0, y1 = vals[0], vals[1], 0.6
				r         = w - y0 - y1
				want      = r*r + math.Max(0, y0+y1-1)
			)
			assert.Equal(t, math.Abs(vals[2]-want) < 1e-4, true, row[2])
		}
		assert.Equal(t, rows[1][:2], []string{"0", "0"})
		assert.Equal(t, rows[4][:2], []string{"1", "1"})
	}
	{
		rootCmd.SetArgs([]string{"point", "--log-level", "loud"})
		assert.Equal(t, rootCmd.Execute() != nil, true)
	}
}
