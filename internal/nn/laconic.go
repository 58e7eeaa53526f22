package nn

import (
	"fmt"
	"math"
	"math/rand"

	"github.com/DuncanWalter/combobulate/internal/serialization"
	"github.com/DuncanWalter/combobulate/internal/tensor"
)

// LaconicDensityThreshold is the fraction of outputs above which a laconic
// layer's bandwidth buys nothing over a dense layer, so Laconic builds a
// Dense layer instead.
const LaconicDensityThreshold = 0.5

// Solver limits.
const (
	solverTolerance = 1e-6
	solverMaxSteps  = 2048
)

// combinations computes n choose k for real n and k through log-gamma.
// It is 0 when n < k.
func combinations(n, k float64) float64 {
	if k <= 0 || n == k {
		return 1
	}
	if n < k {
		return 0
	}
	a, _ := math.Lgamma(n + 1)
	b, _ := math.Lgamma(k + 1)
	c, _ := math.Lgamma(n - k + 1)
	return math.Exp(a - b - c)
}

// solve finds the smallest x >= 0 with f(x) >= target for a nondecreasing f.
// It brackets the root by doubling, then bisects.
func solve(target float64, f func(x float64) float64) (float64, error) {
	if !finite(target) {
		return 0, fmt.Errorf("%w: target %v", ErrSolverDiverged, target)
	}

	lo, hi := 0.0, 1.0
	for steps := 0; ; steps++ {
		v := f(hi)
		if !finite(v) || steps >= solverMaxSteps {
			return 0, fmt.Errorf("%w: f(%v) = %v", ErrSolverDiverged, hi, v)
		}
		if v >= target {
			break
		}
		lo, hi = hi, hi*2
	}

	for steps := 0; hi-lo > solverTolerance; steps++ {
		mid := (lo + hi) / 2
		v := f(mid)
		if !finite(v) || steps >= solverMaxSteps {
			return 0, fmt.Errorf("%w: f(%v) = %v", ErrSolverDiverged, mid, v)
		}
		if v >= target {
			hi = mid
		} else {
			lo = mid
		}
	}
	return hi, nil
}

func finite(x float64) bool {
	return !math.IsNaN(x) && !math.IsInf(x, 0)
}

// bandwidth picks how many outputs each input connects to. It is the
// smallest b for which the number of density-sized input groups sharing an
// output reaches redundancy times the count a fully connected layer would
// give one input.
func bandwidth(inputSize, outputSize int, redundancy, density float64) (int, error) {
	n, m := float64(inputSize), float64(outputSize)
	target := redundancy * combinations(n-1, density-1)
	x, err := solve(target, func(x float64) float64 {
		return x * combinations(n/m*x-1, density-1)
	})
	if err != nil {
		return 0, err
	}
	b := int(math.Ceil(x - solverTolerance))
	return max(b, 1), nil
}

// Laconic is a structurally sparse replacement for Dense. Each input feeds
// only a random subset of outputs, reducing the work per sample to
// inputSize·bandwidth multiplies.
//
// The bandwidth is solved from redundancy (how many times over an output's
// information should be covered) and density (the size of the input groups
// being covered). If it exceeds LaconicDensityThreshold of the outputs, a
// Dense layer of the same output size is returned instead.
//
// Example:
//
//	layer := nn.Laconic(256, 2, 2)
func Laconic(outputSize int, redundancy, density float64) Factory {
	return LaconicWithSeed(outputSize, redundancy, density, SparseFanInNormal)
}

// LaconicWithSeed is Laconic with a custom weight seed.
func LaconicWithSeed(outputSize int, redundancy, density float64, seed LaconicSeed) Factory {
	return func(info Info) (Transformation, error) {
		if outputSize < 1 || info.Size < 1 {
			return nil, invalid("laconic", "sizes %d -> %d must be positive", info.Size, outputSize)
		}
		b, err := bandwidth(info.Size, outputSize, redundancy, density)
		if err != nil {
			return nil, err
		}
		if float64(b) > LaconicDensityThreshold*float64(outputSize) {
			return Dense(outputSize)(info)
		}
		return newLaconic(info, outputSize, b, seed)
	}
}

// laconicState is the persisted form of a laconic layer.
type laconicState struct {
	Mask    []int         `json:"mask"`
	Weights tensor.Matrix `json:"weights"`
}

// LaconicLayer is the Simplified layer built by Laconic.
type LaconicLayer struct {
	inputSize   int
	outputSize  int
	mask        []int
	connections [][]int          // connections[i][j] is the output fed by weight (j, i)
	weight      *MatrixParameter // [bandwidth, inputSize]
}

func newLaconic(info Info, outputSize, b int, seed LaconicSeed) (*LaconicLayer, error) {
	rng := info.rng()
	var state laconicState
	if serialization.IsEmpty(info.Content) {
		state.Mask = mask(rng, outputSize, b)
		state.Weights = tensor.NewMatrix(b, info.Size, seed(info.Size, outputSize, b, rng))
	} else {
		if err := serialization.Decode(info.Content, "laconic", &state); err != nil {
			return nil, err
		}
		if err := validateMask(state.Mask, outputSize, b); err != nil {
			return nil, err
		}
		if err := serialization.ValidateMatrix("laconic", []tensor.Vector(state.Weights), b, info.Size); err != nil {
			return nil, err
		}
	}

	connections := make([][]int, info.Size)
	for i := range connections {
		connections[i] = make([]int, b)
		for j, offset := range state.Mask {
			connections[i][j] = (i + offset) % outputSize
		}
	}

	return &LaconicLayer{
		inputSize:   info.Size,
		outputSize:  outputSize,
		mask:        state.Mask,
		connections: connections,
		weight:      NewMatrixParameter(state.Weights),
	}, nil
}

// mask picks b distinct output offsets out of m.
func mask(rng *rand.Rand, m, b int) []int {
	offsets := make([]int, m)
	for i := range offsets {
		offsets[i] = i
	}
	tensor.Shuffle(rng, offsets)
	return offsets[:b]
}

func validateMask(offsets []int, m, b int) error {
	if len(offsets) != b {
		return &serialization.ContentError{
			Layer:   "laconic",
			Details: fmt.Sprintf("expected mask of %d offsets, got %d", b, len(offsets)),
			Err:     serialization.ErrShapeMismatch,
		}
	}
	seen := make(map[int]bool, b)
	for _, o := range offsets {
		if o < 0 || o >= m || seen[o] {
			return &serialization.ContentError{
				Layer:   "laconic",
				Details: fmt.Sprintf("invalid mask offset %d", o),
				Err:     serialization.ErrMalformedContent,
			}
		}
		seen[o] = true
	}
	return nil
}

// Size returns the number of outputs.
func (l *LaconicLayer) Size() int {
	return l.outputSize
}

// Bandwidth returns how many outputs each input feeds.
func (l *LaconicLayer) Bandwidth() int {
	return len(l.mask)
}

// Forward sums each input into its connected outputs.
func (l *LaconicLayer) Forward(input tensor.Vector, _ Config) tensor.Vector {
	if len(input) != l.inputSize {
		panic(fmt.Sprintf("Laconic.Forward: expected input of size %d, got %d", l.inputSize, len(input)))
	}
	output := tensor.Zeros(l.outputSize)
	for i, x := range input {
		for j, o := range l.connections[i] {
			output[o] += x * l.weight.Value[j][i]
		}
	}
	return output
}

// Backward walks the same connections, accumulating deltas and the input
// error.
func (l *LaconicLayer) Backward(err, input, _ tensor.Vector, _ Config) tensor.Vector {
	back := tensor.Zeros(l.inputSize)
	for i, x := range input {
		for j, o := range l.connections[i] {
			back[i] += err[o] * l.weight.Value[j][i]
			l.weight.Delta[j][i] += err[o] * x
		}
	}
	return back
}

// ApplyLearning commits the weight delta.
func (l *LaconicLayer) ApplyLearning(cfg Config) {
	l.weight.ApplyLearning(cfg)
}

// Clean discards the weight delta.
func (l *LaconicLayer) Clean() {
	l.weight.Clean()
}

// Serialize returns the mask and weights.
func (l *LaconicLayer) Serialize() (string, error) {
	return serialization.Encode(laconicState{Mask: l.mask, Weights: l.weight.Value})
}
