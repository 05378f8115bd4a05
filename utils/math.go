package utils

// Tile lays k copies of v end to end.
func Tile(v []float64, k int) (t []float64) {
	t = make([]float64, 0, k*len(v))
	for n := 0; n < k; n++ {
		t = append(t, v...)
	}
	return
}

// Blocks views a flat slice as consecutive blocks of length width. The
// blocks share storage with x.
func Blocks(x []float64, width int) (b [][]float64) {
	if width <= 0 {
		return nil
	}
	b = make([][]float64, len(x)/width)
	for i := range b {
		b[i] = x[i*width : (i+1)*width : (i+1)*width]
	}
	return
}
