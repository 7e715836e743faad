package edward

import "math/rand"

// randF64 returns a random float64 slice of length size with entries
// in [min, max)
func randF64(size int, min, max float64) []float64 {
	slice := make([]float64, size)
	for i := range slice {
		slice[i] = min + (max-min)*rand.Float64()
	}

	return slice
}

// randInt returns a random int slice of length size with entries in
// [min, max)
func randInt(size int, min, max int) []int {
	slice := make([]int, size)
	for i := range slice {
		slice[i] = min + rand.Intn(max-min)
	}

	return slice
}
