package nn

import (
	"fmt"
	"math"

	"github.com/DuncanWalter/combobulate/internal/serialization"
	"github.com/DuncanWalter/combobulate/internal/tensor"
)

// Guard normalises each input element into [floor, ceil] using the running
// minimum and maximum observed for that element.
//
// An element whose observed range is still a single point maps to 0. The
// observed bounds are the guard's persistent state.
func Guard(floor, ceil float64) Factory {
	return func(info Info) (Transformation, error) {
		if ceil <= floor {
			return nil, invalid("guard", "ceil %v <= floor %v", ceil, floor)
		}
		g := &GuardLayer{
			floor: floor,
			ceil:  ceil,
			min:   tensor.NewVector(info.Size, func(int) float64 { return math.Inf(1) }),
			max:   tensor.NewVector(info.Size, func(int) float64 { return math.Inf(-1) }),
		}
		if !serialization.IsEmpty(info.Content) {
			var state guardState
			if err := serialization.Decode(info.Content, "guard", &state); err != nil {
				return nil, err
			}
			if len(state.Min) != info.Size || len(state.Max) != info.Size {
				return nil, &serialization.ContentError{
					Layer:   "guard",
					Details: fmt.Sprintf("expected %d bounds, got %d/%d", info.Size, len(state.Min), len(state.Max)),
					Err:     serialization.ErrShapeMismatch,
				}
			}
			g.min = serialization.DecodeBounds(state.Min, math.Inf(1))
			g.max = serialization.DecodeBounds(state.Max, math.Inf(-1))
		}
		return g, nil
	}
}

// guardState is the persisted form of a guard. Unobserved bounds are null.
type guardState struct {
	Min []*float64 `json:"min"`
	Max []*float64 `json:"max"`
}

// GuardLayer is the Simplified layer built by Guard.
type GuardLayer struct {
	floor, ceil float64
	min, max    tensor.Vector
}

// Size returns the number of outputs, equal to the number of inputs.
func (g *GuardLayer) Size() int {
	return len(g.min)
}

// Bounds returns copies of the observed minimum and maximum.
func (g *GuardLayer) Bounds() (lo, hi tensor.Vector) {
	return g.min.Clone(), g.max.Clone()
}

// Forward widens the observed bounds with input and rescales it.
func (g *GuardLayer) Forward(input tensor.Vector, _ Config) tensor.Vector {
	if len(input) != g.Size() {
		panic(fmt.Sprintf("Guard.Forward: expected input of size %d, got %d", g.Size(), len(input)))
	}
	return tensor.Map(input, func(x float64, i int) float64 {
		g.max[i] = math.Max(x, g.max[i])
		g.min[i] = math.Min(x, g.min[i])
		if g.min[i] == g.max[i] {
			return 0
		}
		return (g.ceil-g.floor)*(x-g.min[i])/(g.max[i]-g.min[i]) + g.floor
	})
}

// Backward scales err by the normalisation slope. Error pushing an element
// further past the bound it sits on is dropped.
func (g *GuardLayer) Backward(err, input, _ tensor.Vector, _ Config) tensor.Vector {
	return tensor.Map(err, func(e float64, i int) float64 {
		width := g.max[i] - g.min[i]
		switch {
		case width == 0:
			return 0
		case input[i] == g.min[i] && e < 0:
			return 0
		case input[i] == g.max[i] && e > 0:
			return 0
		}
		return e * (g.ceil - g.floor) / width
	})
}

// Serialize returns the observed bounds.
func (g *GuardLayer) Serialize() (string, error) {
	return serialization.Encode(guardState{
		Min: serialization.EncodeBounds(g.min),
		Max: serialization.EncodeBounds(g.max),
	})
}
