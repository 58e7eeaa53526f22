// Package train drives a Net through epochs of examples.
//
// A Model pairs a net with a schedule, a batch source and a loss. Training
// runs one full batch per epoch, yields to other goroutines between epochs
// and reports throttled Progress through a callback. Cancellation is only
// observed between epochs; an epoch in flight always completes.
package train

import (
	"context"
	"errors"
	"fmt"
	"math"
	"runtime"
	"sync/atomic"
	"time"

	"github.com/DuncanWalter/combobulate/internal/nn"
	"github.com/DuncanWalter/combobulate/internal/optim"
	"github.com/DuncanWalter/combobulate/internal/tensor"
)

// Errors returned by Model.
var (
	ErrAlreadyTraining = errors.New("model is already training")
	ErrTargetSize      = errors.New("target size does not match net output")
	ErrNoBatch         = errors.New("model has no batch source")
)

// Example is one input with its expected output.
type Example struct {
	Input  tensor.Vector `json:"input"`
	Target tensor.Vector `json:"target"`
}

// Progress reports the state of a training run after an epoch.
type Progress struct {
	Epoch        int           `json:"epoch"`
	MeanLoss     float64       `json:"meanLoss"`
	MeanAbsError float64       `json:"meanAbsError"`
	Elapsed      time.Duration `json:"elapsed"`
}

// Config holds the configuration for NewModel.
type Config struct {
	Schedule    optim.Schedule            // Per-epoch nn.Config (default: Constant 0.01)
	Batch       func(epoch int) []Example // Examples for an epoch; required
	Loss        Loss                      // Default: SquaredError
	LogEvery    int                       // Minimum epochs between progress reports (default: 10)
	LogInterval time.Duration             // Minimum time between progress reports (default: 1s)
	Clock       func() time.Time          // Default: time.Now
}

// DefaultConfig returns a configuration with every optional field set.
// Batch must still be provided.
func DefaultConfig() Config {
	return Config{
		Schedule:    optim.Constant{LearningRate: 0.01},
		Loss:        SquaredError,
		LogEvery:    10,
		LogInterval: time.Second,
		Clock:       time.Now,
	}
}

// Model trains a net. Train may be called repeatedly; the epoch count
// carries over between calls.
type Model struct {
	net    *nn.Net
	config Config

	epoch    int
	training atomic.Bool
	cancel   atomic.Bool
}

// NewModel creates a model around net. Zero fields of config take their
// DefaultConfig values.
func NewModel(net *nn.Net, config Config) (*Model, error) {
	if config.Batch == nil {
		return nil, ErrNoBatch
	}
	defaults := DefaultConfig()
	if config.Schedule == nil {
		config.Schedule = defaults.Schedule
	}
	if config.Loss.Derivative == nil || config.Loss.Value == nil {
		config.Loss = defaults.Loss
	}
	if config.LogEvery <= 0 {
		config.LogEvery = defaults.LogEvery
	}
	if config.LogInterval <= 0 {
		config.LogInterval = defaults.LogInterval
	}
	if config.Clock == nil {
		config.Clock = defaults.Clock
	}
	return &Model{net: net, config: config}, nil
}

// Net returns the trained net.
func (m *Model) Net() *nn.Net {
	return m.net
}

// Epoch returns the number of epochs trained so far.
func (m *Model) Epoch() int {
	return m.epoch
}

// Training reports whether Train is running.
func (m *Model) Training() bool {
	return m.training.Load()
}

// Cancel stops a running Train after its current epoch.
func (m *Model) Cancel() {
	m.cancel.Store(true)
}

// Train runs epochs more epochs.
//
// report, if not nil, is called when at least LogEvery epochs and
// LogInterval have passed since the previous report, and once more when
// training stops for any reason. Train returns ctx.Err() if the context
// ended the run, nil if it finished or was cancelled with Cancel.
func (m *Model) Train(ctx context.Context, epochs int, report func(Progress)) error {
	if !m.training.CompareAndSwap(false, true) {
		return ErrAlreadyTraining
	}
	defer m.training.Store(false)
	m.cancel.Store(false)

	clock := m.config.Clock
	start := clock()
	now := start
	final := m.epoch + epochs

	var (
		reported  bool
		lastEpoch int
		lastTime  time.Time
	)
	progress := Progress{Epoch: m.epoch}

	emit := func() {
		if report != nil {
			progress.Elapsed = now.Sub(start)
			report(progress)
		}
		reported, lastEpoch, lastTime = true, progress.Epoch, now
	}

	var err error
	for m.epoch < final {
		if err = ctx.Err(); err != nil || m.cancel.Load() {
			break
		}

		m.epoch++
		progress, err = m.step(m.epoch)
		if err != nil {
			m.epoch--
			m.net.Clean()
			return err
		}

		now = clock()
		if !reported || m.epoch-lastEpoch >= m.config.LogEvery && now.Sub(lastTime) >= m.config.LogInterval {
			emit()
		}
		runtime.Gosched()
	}

	if !reported || lastEpoch != progress.Epoch {
		emit()
	}
	return err
}

// step trains a single epoch.
func (m *Model) step(epoch int) (Progress, error) {
	cfg := m.config.Schedule.Config(epoch)
	examples := m.config.Batch(epoch)
	if len(examples) == 0 {
		return Progress{Epoch: epoch}, nil
	}

	batch := make([]nn.Feedback, len(examples))
	var loss, abs float64
	var count int
	for i, ex := range examples {
		if len(ex.Target) != m.net.OutputSize() {
			return Progress{}, fmt.Errorf("epoch %d example %d: %w: got %d, want %d",
				epoch, i, ErrTargetSize, len(ex.Target), m.net.OutputSize())
		}
		prediction, trace := m.net.PassForward(ex.Input, cfg)
		batch[i] = nn.Feedback{
			Trace: trace,
			Error: tensor.Zip(ex.Target, prediction, func(t, p float64, _ int) float64 {
				loss += m.config.Loss.Value(t, p)
				abs += math.Abs(t - p)
				return m.config.Loss.Derivative(t, p)
			}),
		}
		count += len(prediction)
	}

	if err := m.net.PassBack(batch, cfg); err != nil {
		return Progress{}, fmt.Errorf("epoch %d: %w", epoch, err)
	}
	return Progress{
		Epoch:        epoch,
		MeanLoss:     loss / float64(max(count, 1)),
		MeanAbsError: abs / float64(max(count, 1)),
	}, nil
}

// Predictor returns a function computing outputs of net in inference mode.
func Predictor(net *nn.Net) func(input tensor.Vector) tensor.Vector {
	return net.Predictor(nn.Config{})
}

// Evaluate scores net on examples in inference mode. The returned
// Progress has no epoch or elapsed time.
func Evaluate(net *nn.Net, examples []Example, loss Loss) Progress {
	predict := Predictor(net)
	var total, abs float64
	var count int
	for _, ex := range examples {
		prediction := predict(ex.Input)
		for i, t := range ex.Target {
			total += loss.Value(t, prediction[i])
			abs += math.Abs(t - prediction[i])
		}
		count += len(ex.Target)
	}
	if count == 0 {
		return Progress{}
	}
	return Progress{
		MeanLoss:     total / float64(count),
		MeanAbsError: abs / float64(count),
	}
}
