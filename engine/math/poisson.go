package math

import (
	"errors"

	"github.com/chewxy/math32"
	"golang.org/x/exp/rand"
)

var ErrPoissonRetriesExhausted = errors.New("poisson disk generation did not reach the requested point count")

// PoissonNeighbourhood is the number of grid cells scanned on each side of a candidate.
const PoissonNeighbourhood = 5

// DefaultPoissonRetries bounds GeneratePoissonPointsExact.
const DefaultPoissonRetries = 1000

type poissonGrid struct {
	w, h     int
	cellSize float32
	cells    [][]Vec2
	valid    [][]bool
}

func newPoissonGrid(w, h int, cellSize float32) *poissonGrid {
	g := &poissonGrid{w: w, h: h, cellSize: cellSize}
	g.cells = make([][]Vec2, w)
	g.valid = make([][]bool, w)
	for i := range g.cells {
		g.cells[i] = make([]Vec2, h)
		g.valid[i] = make([]bool, h)
	}
	return g
}

func (g *poissonGrid) cell(p Vec2) (int, int) {
	x := Clamp(int(p.X/g.cellSize), 0, g.w-1)
	y := Clamp(int(p.Y/g.cellSize), 0, g.h-1)
	return x, y
}

func (g *poissonGrid) insert(p Vec2) {
	x, y := g.cell(p)
	g.cells[x][y] = p
	g.valid[x][y] = true
}

func (g *poissonGrid) isInNeighbourhood(p Vec2, minDist float32) bool {
	gx, gy := g.cell(p)
	for i := gx - PoissonNeighbourhood; i < gx+PoissonNeighbourhood; i++ {
		for j := gy - PoissonNeighbourhood; j < gy+PoissonNeighbourhood; j++ {
			if i < 0 || i >= g.w || j < 0 || j >= g.h || !g.valid[i][j] {
				continue
			}
			if g.cells[i][j].Sub(p).Length() < minDist {
				return true
			}
		}
	}
	return false
}

func isInUnitCircle(p Vec2) bool {
	fx := p.X - 0.5
	fy := p.Y - 0.5
	return fx*fx+fy*fy <= 0.25
}

/**
 * @brief Generates up to numPoints Poisson disk distributed points inside the
 * circle of diameter 1 centered at (0.5, 0.5), using Bridson's algorithm.
 * @param minDist The minimum distance between two points.
 * @param newPointsCount The number of candidates tried around each processed point.
 * @returns The generated points, which may be fewer than requested.
 */
func GeneratePoissonPoints(rng *rand.Rand, minDist float32, newPointsCount, numPoints int) []Vec2 {
	cellSize := minDist / K_SQRT_TWO
	gridW := int(math32.Ceil(1 / cellSize))
	gridH := int(math32.Ceil(1 / cellSize))
	grid := newPoissonGrid(gridW, gridH, cellSize)

	first := Vec2{rng.Float32(), rng.Float32()}
	processList := []Vec2{first}
	samplePoints := []Vec2{first}
	grid.insert(first)

	for len(processList) > 0 && len(samplePoints) < numPoints {
		idx := rng.Intn(len(processList))
		point := processList[idx]
		processList = append(processList[:idx], processList[idx+1:]...)

		for i := 0; i < newPointsCount; i++ {
			radius := minDist * (rng.Float32() + 1)
			angle := K_PI_2 * rng.Float32()
			candidate := Vec2{
				X: point.X + radius*math32.Cos(angle),
				Y: point.Y + radius*math32.Sin(angle),
			}
			if isInUnitCircle(candidate) && !grid.isInNeighbourhood(candidate, minDist) {
				processList = append(processList, candidate)
				samplePoints = append(samplePoints, candidate)
				grid.insert(candidate)
			}
		}
	}

	if len(samplePoints) > numPoints {
		samplePoints = samplePoints[:numPoints]
	}
	return samplePoints
}

// GeneratePoissonPointsExact repeats GeneratePoissonPoints until exactly
// numPoints points are produced or maxRetries attempts fail.
func GeneratePoissonPointsExact(rng *rand.Rand, minDist float32, newPointsCount, numPoints, maxRetries int) ([]Vec2, int, error) {
	if maxRetries <= 0 {
		maxRetries = DefaultPoissonRetries
	}
	for attempt := 1; attempt <= maxRetries; attempt++ {
		points := GeneratePoissonPoints(rng, minDist, newPointsCount, numPoints)
		if len(points) == numPoints {
			return points, attempt, nil
		}
	}
	return nil, maxRetries, ErrPoissonRetriesExhausted
}

// PCFPoissonDisk returns the shadow filtering kernel: points scaled so that the
// minimum distance between samples is √2.
func PCFPoissonDisk(rng *rand.Rand, kernelSize int) ([]Vec2, error) {
	minDist := math32.Sqrt(float32(kernelSize)) / float32(kernelSize) * 0.8
	points, _, err := GeneratePoissonPointsExact(rng, minDist, 30, kernelSize, 0)
	if err != nil {
		return nil, err
	}
	scale := (1 / minDist) * K_SQRT_TWO
	for i := range points {
		points[i] = points[i].MulScalar(scale)
	}
	return points, nil
}

// RSMKernel returns the indirect lighting kernel. Sample density increases
// towards the edge of the disk and Z holds the linear distance weight.
func RSMKernel(rng *rand.Rand, sampleCount int) ([]Vec3, error) {
	minDist := math32.Sqrt(float32(sampleCount)) / float32(sampleCount) * 0.7
	points, _, err := GeneratePoissonPointsExact(rng, minDist, 30, sampleCount, 0)
	if err != nil {
		return nil, err
	}
	kernel := make([]Vec3, sampleCount)
	for i, p := range points {
		kernel[i] = Vec3{
			X: warp(p.X),
			Y: warp(p.Y),
			Z: Vec2{p.X - 0.5, p.Y - 0.5}.Length() * 2,
		}
	}
	return kernel, nil
}

func warp(v float32) float32 {
	w := math32.Sqrt(math32.Abs(v-0.5) * 2)
	if v < 0.5 {
		return -w
	}
	return w
}
