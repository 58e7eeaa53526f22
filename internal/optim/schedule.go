// Package optim provides learning rate schedules for training nets.
//
// Weight updates themselves live in the nn parameters: a schedule only
// decides which nn.Config each epoch trains with. Every config it returns
// has Training set.
package optim

import (
	"math"

	"github.com/DuncanWalter/combobulate/internal/nn"
)

// Schedule produces the training configuration for an epoch.
//
// Schedules are pure functions of the epoch number, so a training run can
// be resumed at any epoch.
type Schedule interface {
	Config(epoch int) nn.Config
}

// ScheduleFunc adapts a function to the Schedule interface.
type ScheduleFunc func(epoch int) nn.Config

// Config calls f(epoch).
func (f ScheduleFunc) Config(epoch int) nn.Config {
	return f(epoch)
}

// Constant trains every epoch with the same learning rate and inertia.
//
// Example:
//
//	schedule := optim.Constant{LearningRate: 0.1, Inertia: 0.9}
type Constant struct {
	LearningRate float64 // Learning rate (default: 0.01)
	Inertia      float64 // Fraction of deltas carried to the next batch, in [0, 1)
}

// Config implements Schedule.
func (c Constant) Config(int) nn.Config {
	lr := c.LearningRate
	if lr == 0 {
		lr = 0.01
	}
	return training(lr, c.Inertia)
}

// StepDecay multiplies the learning rate by Gamma every StepSize epochs.
type StepDecay struct {
	LearningRate float64
	Inertia      float64
	StepSize     int     // Epochs between reductions
	Gamma        float64 // Multiplicative decay factor
}

// NewStepDecay creates a step decay schedule.
//
// Out of range arguments fall back to a reduction by 10x every 30 epochs.
func NewStepDecay(learningRate, inertia float64, stepSize int, gamma float64) *StepDecay {
	if stepSize <= 0 {
		stepSize = 30
	}
	if gamma <= 0 || gamma >= 1 {
		gamma = 0.1
	}
	return &StepDecay{
		LearningRate: learningRate,
		Inertia:      inertia,
		StepSize:     stepSize,
		Gamma:        gamma,
	}
}

// Config implements Schedule.
func (s *StepDecay) Config(epoch int) nn.Config {
	times := max(epoch, 0) / s.StepSize
	return training(s.LearningRate*math.Pow(s.Gamma, float64(times)), s.Inertia)
}

// ExponentialDecay multiplies the learning rate by Gamma every epoch, never
// going below Floor.
type ExponentialDecay struct {
	LearningRate float64
	Inertia      float64
	Gamma        float64
	Floor        float64
}

// NewExponentialDecay creates an exponential decay schedule. Gamma outside
// (0, 1) falls back to 0.95.
func NewExponentialDecay(learningRate, inertia, gamma, floor float64) *ExponentialDecay {
	if gamma <= 0 || gamma >= 1 {
		gamma = 0.95
	}
	return &ExponentialDecay{
		LearningRate: learningRate,
		Inertia:      inertia,
		Gamma:        gamma,
		Floor:        floor,
	}
}

// Config implements Schedule.
func (s *ExponentialDecay) Config(epoch int) nn.Config {
	lr := s.LearningRate * math.Pow(s.Gamma, float64(max(epoch, 0)))
	return training(math.Max(lr, s.Floor), s.Inertia)
}

// CosineAnnealing sweeps the learning rate from LearningRate down to
// MinLearningRate along half a cosine over Period epochs, then holds it.
type CosineAnnealing struct {
	LearningRate    float64
	MinLearningRate float64
	Inertia         float64
	Period          int
}

// Config implements Schedule.
func (s *CosineAnnealing) Config(epoch int) nn.Config {
	if s.Period <= 0 || epoch >= s.Period {
		return training(s.MinLearningRate, s.Inertia)
	}
	progress := float64(max(epoch, 0)) / float64(s.Period)
	lr := s.MinLearningRate + (s.LearningRate-s.MinLearningRate)*(1+math.Cos(math.Pi*progress))/2
	return training(lr, s.Inertia)
}

func training(lr, inertia float64) nn.Config {
	return nn.Config{LearningRate: lr, Inertia: inertia, Training: true}
}
