// Copyright 2025 Combobulate Authors. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package optim

import (
	"github.com/DuncanWalter/combobulate/internal/optim"
)

// Schedule produces the training configuration for an epoch.
type Schedule = optim.Schedule

// ScheduleFunc adapts a function to the Schedule interface.
type ScheduleFunc = optim.ScheduleFunc

// Constant trains every epoch with the same learning rate and inertia.
type Constant = optim.Constant

// StepDecay multiplies the learning rate by Gamma every StepSize epochs.
type StepDecay = optim.StepDecay

// ExponentialDecay multiplies the learning rate by Gamma every epoch.
type ExponentialDecay = optim.ExponentialDecay

// CosineAnnealing sweeps the learning rate down along half a cosine.
type CosineAnnealing = optim.CosineAnnealing

// NewStepDecay creates a step decay schedule.
//
// Example:
//
//	schedule := optim.NewStepDecay(0.1, 0, 1000, 0.5)
func NewStepDecay(learningRate, inertia float64, stepSize int, gamma float64) *StepDecay {
	return optim.NewStepDecay(learningRate, inertia, stepSize, gamma)
}

// NewExponentialDecay creates an exponential decay schedule.
func NewExponentialDecay(learningRate, inertia, gamma, floor float64) *ExponentialDecay {
	return optim.NewExponentialDecay(learningRate, inertia, gamma, floor)
}
