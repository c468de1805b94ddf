package math

import "github.com/chewxy/math32"

// DefaultGaussianStdDev is used when CreateGaussianFilter receives a non-positive deviation.
const DefaultGaussianStdDev float32 = 1.0

/**
 * @brief Generates a normalized 1D gaussian kernel of the given size. Sample x
 * is weighted by exp(-2x²/s) / (πs) with s = 2σ², then the kernel is scaled to
 * sum to one.
 */
func CreateGaussianFilter(size int, stdDev float32) []float32 {
	if size <= 0 {
		return nil
	}
	if stdDev <= 0 {
		stdDev = DefaultGaussianStdDev
	}

	kernel := make([]float32, size)
	s := 2 * stdDev * stdDev
	var sum float32

	half := (float32(size) - 1) / 2
	for i := 0; i < size; i++ {
		x := float32(i) - half
		r := math32.Sqrt(x*x + x*x)
		kernel[i] = math32.Exp(-(r*r)/s) / (K_PI * s)
		sum += kernel[i]
	}

	for i := range kernel {
		kernel[i] /= sum
	}
	return kernel
}
