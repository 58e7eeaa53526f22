// Copyright 2025 Combobulate Authors. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package nn

import (
	"github.com/DuncanWalter/combobulate/internal/nn"
)

// Core types

// Config is the per-call training configuration.
type Config = nn.Config

// Factory builds a Transformation for an input size.
type Factory = nn.Factory

// Info describes the input a Factory builds for.
type Info = nn.Info

// Transformation is either a Simplified or a Uniform layer.
type Transformation = nn.Transformation

// Simplified is a layer with plain vector forward and backward passes.
type Simplified = nn.Simplified

// Uniform is a layer that drives its backward pass through a Handoff.
type Uniform = nn.Uniform

// Learner, Cleaner and Serializer are optional Simplified capabilities.
type (
	Learner    = nn.Learner
	Cleaner    = nn.Cleaner
	Serializer = nn.Serializer
)

// Trace records a forward pass for the matching backward pass.
type Trace = nn.Trace

// History links a trace to the layer upstream of it.
type History = nn.History

// Handoff continues a backward pass upstream.
type Handoff = nn.Handoff

// Regularize adapts any Transformation to Uniform.
func Regularize(t Transformation) Uniform {
	return nn.Regularize(t)
}

// Net

// Net trains a pipe of layers.
type Net = nn.Net

// NetConfig holds the configuration for NewNet.
type NetConfig = nn.NetConfig

// Feedback pairs a trace with the error observed for its output.
type Feedback = nn.Feedback

// State identifies a version of a net's weights.
type State = nn.State

// NewNet builds a net from its layers, restoring config.Content if set.
//
// Example:
//
//	net, err := nn.NewNet(nn.NetConfig{
//	    InputSize: 4,
//	    Layers:    []nn.Factory{nn.Dense(8), nn.Bias(), nn.Sigmoid()},
//	})
func NewNet(config NetConfig) (*Net, error) {
	return nn.NewNet(config)
}

// Errors

// Errors reported by nets and layers.
var (
	ErrStaleTrace        = nn.ErrStaleTrace
	ErrTraceConsumed     = nn.ErrTraceConsumed
	ErrForeignTrace      = nn.ErrForeignTrace
	ErrDuplicateHandoff  = nn.ErrDuplicateHandoff
	ErrMissingHandoff    = nn.ErrMissingHandoff
	ErrInferenceBackward = nn.ErrInferenceBackward
	ErrErrorSize         = nn.ErrErrorSize
	ErrSolverDiverged    = nn.ErrSolverDiverged
	ErrInvalidLayer      = nn.ErrInvalidLayer
)

// Composition

// Pipe feeds each layer's output into the next.
func Pipe(factories ...Factory) Factory {
	return nn.Pipe(factories...)
}

// Split feeds the same input to every branch and concatenates the outputs.
func Split(factories ...Factory) Factory {
	return nn.Split(factories...)
}

// Layers

// Dense creates a fully connected layer without bias.
func Dense(outputSize int) Factory {
	return nn.Dense(outputSize)
}

// DenseWithSeed creates a dense layer with custom initial weights.
func DenseWithSeed(outputSize int, seed MatrixSeed) Factory {
	return nn.DenseWithSeed(outputSize, seed)
}

// Bias adds a learned offset to every input.
func Bias() Factory {
	return nn.Bias()
}

// BiasWithSeed creates a bias layer with custom initial offsets.
func BiasWithSeed(seed VectorSeed) Factory {
	return nn.BiasWithSeed(seed)
}

// Laconic creates a sparse dense layer where every output reads only a
// subset of the inputs. It falls back to Dense when the subsets would be
// too large to pay off.
func Laconic(outputSize int, redundancy, density float64) Factory {
	return nn.Laconic(outputSize, redundancy, density)
}

// LaconicWithSeed creates a laconic layer with custom initial weights.
func LaconicWithSeed(outputSize int, redundancy, density float64, seed LaconicSeed) Factory {
	return nn.LaconicWithSeed(outputSize, redundancy, density, seed)
}

// Dropout zeroes a fraction of inputs during training.
func Dropout(frequency float64) Factory {
	return nn.Dropout(frequency)
}

// DropoutWithTotality creates a dropout layer that sometimes drops every input.
func DropoutWithTotality(frequency, totality float64) Factory {
	return nn.DropoutWithTotality(frequency, totality)
}

// Temporal appends earlier inputs to the current one.
func Temporal(samples, span int) Factory {
	return nn.Temporal(samples, span)
}

// Guard rescales inputs into [floor, ceil] using the range seen so far.
func Guard(floor, ceil float64) Factory {
	return nn.Guard(floor, ceil)
}

// Logical creates a layer mixing leaky and sharp-tanh outputs.
func Logical(outputSize int) Factory {
	return nn.Logical(outputSize)
}

// Activations

// LeakyReLUSlope is the default negative slope of LeakyReLU.
const LeakyReLUSlope = nn.LeakyReLUSlope

// Identity, LeakyReLU, SharpTanh, Swoop, SelfNormalizingZed, Sigmoid and
// Gaussian are elementwise activations.
var (
	Identity           = nn.Identity
	LeakyReLU          = nn.LeakyReLU
	SharpTanh          = nn.SharpTanh
	Swoop              = nn.Swoop
	SelfNormalizingZed = nn.SelfNormalizingZed
	Sigmoid            = nn.Sigmoid
	Gaussian           = nn.Gaussian
)

// Initialization

// Seeding functions for layer parameters.
type (
	VectorSeed  = nn.VectorSeed
	MatrixSeed  = nn.MatrixSeed
	LaconicSeed = nn.LaconicSeed
)

// FanInNormal, AlternatingUniform and SparseFanInNormal are the default
// seeds of Dense, Bias and Laconic.
var (
	FanInNormal        = nn.FanInNormal
	AlternatingUniform = nn.AlternatingUniform
	SparseFanInNormal  = nn.SparseFanInNormal
)
