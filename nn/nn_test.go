package nn_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DuncanWalter/combobulate/nn"
	"github.com/DuncanWalter/combobulate/tensor"
)

func TestPublicNetRoundTrip(t *testing.T) {
	layers := func() []nn.Factory {
		return []nn.Factory{
			nn.Guard(-1, 1),
			nn.Split(nn.Dense(3), nn.Pipe(nn.Dense(2), nn.Sigmoid())),
			nn.Logical(4),
			nn.Dense(1),
		}
	}

	net, err := nn.NewNet(nn.NetConfig{InputSize: 2, Rand: tensor.NewRand(9), Layers: layers()})
	require.NoError(t, err)
	assert.Equal(t, 1, net.OutputSize())

	cfg := nn.Config{LearningRate: 0.05, Training: true}
	input := tensor.Vector{0.3, -0.2}
	output, trace := net.PassForward(input, cfg)
	require.NoError(t, net.PassBack([]nn.Feedback{{Trace: trace, Error: tensor.Sub(tensor.Vector{1}, output)}}, cfg))

	err = net.PassBack([]nn.Feedback{{Trace: trace, Error: tensor.Vector{0}}}, cfg)
	assert.ErrorIs(t, err, nn.ErrStaleTrace)

	content, err := net.Serialize()
	require.NoError(t, err)
	restored, err := nn.NewNet(nn.NetConfig{InputSize: 2, Content: content, Layers: layers()})
	require.NoError(t, err)

	predict := net.Predictor(nn.Config{})
	assert.InDeltaSlice(t, predict(input), restored.Predictor(nn.Config{})(input), 1e-12)
}
