package nn

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DuncanWalter/combobulate/internal/tensor"
)

// recorder is a Simplified layer that logs its calls and adds offset.
type recorder struct {
	name   string
	size   int
	offset float64
	log    *[]string
}

func (r *recorder) Size() int { return r.size }

func (r *recorder) Forward(input tensor.Vector, _ Config) tensor.Vector {
	*r.log = append(*r.log, "forward "+r.name)
	return tensor.Map(input, func(x float64, _ int) float64 { return x + r.offset })
}

func (r *recorder) Backward(err, _, _ tensor.Vector, _ Config) tensor.Vector {
	*r.log = append(*r.log, "backward "+r.name)
	return tensor.Scale(err, 2)
}

func recording(name string, offset float64, log *[]string) Factory {
	return func(info Info) (Transformation, error) {
		return &recorder{name: name, size: info.Size, offset: offset, log: log}, nil
	}
}

// handoffStub is a Uniform layer whose backward pass is scripted by the test.
type handoffStub struct {
	size int
	back func(trace *stubTrace, err tensor.Vector, handoff Handoff)
}

type stubTrace struct {
	history History
}

func (t *stubTrace) History() History { return t.history }

func (s *handoffStub) Size() int { return s.size }

func (s *handoffStub) PassForward(input tensor.Vector, history History, _ Config) (tensor.Vector, Trace) {
	return input.Clone(), &stubTrace{history: history}
}

func (s *handoffStub) PassBack(trace Trace, err tensor.Vector, handoff Handoff, _ Config) {
	s.back(trace.(*stubTrace), err, handoff)
}

func (s *handoffStub) ApplyLearning(Config) {}

func (s *handoffStub) Clean() {}

func (s *handoffStub) Serialize() (string, error) { return "null", nil }

func scripted(back func(trace *stubTrace, err tensor.Vector, handoff Handoff)) Factory {
	return func(info Info) (Transformation, error) {
		return &handoffStub{size: info.Size, back: back}, nil
	}
}

// build constructs f for the given input size with a fixed seed.
func build(t *testing.T, f Factory, size int, content string) Uniform {
	t.Helper()
	layer, err := f(Info{Size: size, Content: content, Rand: tensor.NewRand(1)})
	require.NoError(t, err)
	return Regularize(layer)
}

// recovered runs f and returns the error it panicked with, if any.
func recovered(f func()) (err error) {
	defer func() {
		if r := recover(); r != nil {
			if e, ok := r.(error); ok {
				err = e
			} else {
				err = errors.New("non-error panic")
			}
		}
	}()
	f()
	return nil
}

func TestEmptyCompositionsAreIdentity(t *testing.T) {
	for name, f := range map[string]Factory{"pipe": Pipe(), "split": Split()} {
		t.Run(name, func(t *testing.T) {
			layer := build(t, f, 3, "")
			assert.Equal(t, 3, layer.Size())

			output, trace := layer.PassForward(tensor.Vector{1, 2, 3}, "root", Config{})
			assert.Equal(t, tensor.Vector{1, 2, 3}, output)

			var got tensor.Vector
			layer.PassBack(trace, tensor.Vector{4, 5, 6}, func(h History, e tensor.Vector) {
				assert.Equal(t, "root", h)
				got = e
			}, Config{})
			assert.Equal(t, tensor.Vector{4, 5, 6}, got)
		})
	}
}

func TestPipeThreadsSizes(t *testing.T) {
	layer := build(t, Pipe(Dense(3), Temporal(2, 1), Dense(5)), 2, "")
	assert.Equal(t, 5, layer.Size())

	output, _ := layer.PassForward(tensor.Vector{1, 1}, nil, Config{})
	assert.Len(t, output, 5)
}

func TestPipeRunsBackwardInReverse(t *testing.T) {
	var log []string
	layer := build(t, Pipe(
		recording("a", 1, &log),
		recording("b", 10, &log),
		recording("c", 100, &log),
	), 1, "")

	output, trace := layer.PassForward(tensor.Vector{0}, "outer", Config{})
	assert.Equal(t, tensor.Vector{111}, output)

	calls := 0
	layer.PassBack(trace, tensor.Vector{1}, func(h History, e tensor.Vector) {
		calls++
		assert.Equal(t, "outer", h)
		assert.Equal(t, tensor.Vector{8}, e)
	}, Config{})

	assert.Equal(t, 1, calls)
	assert.Equal(t, []string{
		"forward a", "forward b", "forward c",
		"backward c", "backward b", "backward a",
	}, log)
}

func TestPipeRejectsExtraContent(t *testing.T) {
	_, err := Pipe(Bias())(Info{Size: 1, Content: `["[0]","[1]"]`})
	assert.Error(t, err)
}

func TestSplitConcatenatesAndSumsErrors(t *testing.T) {
	layer := build(t, Split(Dense(2), Dense(1)), 2, `["[[1,0],[0,1]]","[[2,3]]"]`)
	require.Equal(t, 3, layer.Size())

	output, trace := layer.PassForward(tensor.Vector{1, 2}, "outer", Config{})
	assert.Equal(t, tensor.Vector{1, 2, 8}, output)

	var got tensor.Vector
	layer.PassBack(trace, tensor.Vector{1, 1, 1}, func(h History, e tensor.Vector) {
		assert.Equal(t, "outer", h)
		got = e
	}, Config{})
	assert.Equal(t, tensor.Vector{3, 4}, got)
}

func TestSplitSlicesErrorPerBranch(t *testing.T) {
	var seen []tensor.Vector
	branch := scripted(func(trace *stubTrace, err tensor.Vector, handoff Handoff) {
		seen = append(seen, err.Clone())
		handoff(trace.History(), tensor.Zeros(2))
	})
	layer := build(t, Split(branch, branch), 2, "")

	_, trace := layer.PassForward(tensor.Vector{1, 2}, nil, Config{})
	layer.PassBack(trace, tensor.Vector{1, 2, 3, 4}, func(History, tensor.Vector) {}, Config{})
	assert.Equal(t, []tensor.Vector{{1, 2}, {3, 4}}, seen)
}

func TestSplitDuplicateHandoffPanics(t *testing.T) {
	twice := scripted(func(trace *stubTrace, err tensor.Vector, handoff Handoff) {
		handoff(trace.History(), err)
		handoff(trace.History(), err)
	})
	layer := build(t, Split(twice), 2, "")

	_, trace := layer.PassForward(tensor.Vector{1, 2}, nil, Config{})
	err := recovered(func() {
		layer.PassBack(trace, tensor.Vector{1, 1}, func(History, tensor.Vector) {}, Config{})
	})
	assert.ErrorIs(t, err, ErrDuplicateHandoff)
}

func TestSplitForeignHistoryPanics(t *testing.T) {
	var cached History
	replay := scripted(func(trace *stubTrace, err tensor.Vector, handoff Handoff) {
		if cached == nil {
			cached = trace.History()
		}
		handoff(cached, err)
	})
	layer := build(t, Split(replay), 2, "")

	_, first := layer.PassForward(tensor.Vector{1, 2}, nil, Config{})
	_, second := layer.PassForward(tensor.Vector{1, 2}, nil, Config{})

	noop := func(History, tensor.Vector) {}
	require.NoError(t, recovered(func() { layer.PassBack(first, tensor.Vector{1, 1}, noop, Config{}) }))

	err := recovered(func() { layer.PassBack(second, tensor.Vector{1, 1}, noop, Config{}) })
	assert.ErrorIs(t, err, ErrDuplicateHandoff)
}

func TestSplitMissingHandoffPanics(t *testing.T) {
	silent := scripted(func(*stubTrace, tensor.Vector, Handoff) {})
	layer := build(t, Split(silent), 2, "")

	_, trace := layer.PassForward(tensor.Vector{1, 2}, nil, Config{})
	err := recovered(func() {
		layer.PassBack(trace, tensor.Vector{1, 1}, func(History, tensor.Vector) {}, Config{})
	})
	assert.ErrorIs(t, err, ErrMissingHandoff)
}

func TestSplitInsidePipe(t *testing.T) {
	layer := build(t, Pipe(Split(Identity(), Identity()), Dense(1)), 2, `[null,"[[1,1,1,1]]"]`)

	output, trace := layer.PassForward(tensor.Vector{1, 2}, nil, Config{})
	assert.Equal(t, tensor.Vector{6}, output)

	var got tensor.Vector
	layer.PassBack(trace, tensor.Vector{1}, func(_ History, e tensor.Vector) { got = e }, Config{})
	assert.Equal(t, tensor.Vector{2, 2}, got)
}

type sizeOnly struct{}

func (sizeOnly) Size() int { return 1 }

func TestRegularize(t *testing.T) {
	stub := &handoffStub{size: 1}
	assert.Same(t, stub, Regularize(stub))

	leaf := Regularize(&BiasLayer{offset: NewVectorParameter(tensor.Vector{1})})
	_, ok := leaf.(*regularized)
	assert.True(t, ok)

	assert.Panics(t, func() { Regularize(sizeOnly{}) })
}

func TestLeafRejectsForeignTrace(t *testing.T) {
	leaf := build(t, Bias(), 1, "[0]")
	err := recovered(func() {
		leaf.PassBack(&stubTrace{}, tensor.Vector{1}, func(History, tensor.Vector) {}, Config{})
	})
	assert.ErrorIs(t, err, ErrForeignTrace)
}
