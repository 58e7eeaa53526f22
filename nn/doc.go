// Copyright 2025 Combobulate Authors. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package nn provides composable neural network transformations and the Net
// that trains them.
//
// # Overview
//
// This package contains:
//   - Composition: Pipe (sequential) and Split (parallel branches, outputs concatenated)
//   - Layers: Dense, Bias, Laconic (sparse dense), Dropout, Temporal, Guard, Logical
//   - Activations: Identity, LeakyReLU, SharpTanh, Swoop, SelfNormalizingZed, Sigmoid, Gaussian
//   - Net: the facade that validates traces, batches errors and applies learning
//
// # Basic Usage
//
//	import (
//	    "github.com/DuncanWalter/combobulate/nn"
//	    "github.com/DuncanWalter/combobulate/tensor"
//	)
//
//	func main() {
//	    net, err := nn.NewNet(nn.NetConfig{
//	        InputSize: 2,
//	        Layers: []nn.Factory{
//	            nn.Guard(0, 1),
//	            nn.Dense(16),
//	            nn.LeakyReLU(nn.LeakyReLUSlope),
//	            nn.Dense(1),
//	        },
//	    })
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//
//	    cfg := nn.Config{LearningRate: 0.1, Training: true}
//	    output, trace := net.PassForward(tensor.Vector{0, 1}, cfg)
//	    err = net.PassBack([]nn.Feedback{{
//	        Trace: trace,
//	        Error: tensor.Sub(tensor.Vector{1}, output),
//	    }}, cfg)
//	}
//
// # Traces
//
// Every forward pass returns a Trace. A trace can be passed back once, and
// only until the net's weights next change: Net.PassBack reports
// ErrStaleTrace, ErrTraceConsumed or ErrForeignTrace otherwise, and nothing
// is learned from the batch.
//
// # Serialization
//
// Net.Serialize returns the whole net as nested JSON. Pass it back through
// NetConfig.Content with the same layers to restore the net; empty content
// builds fresh weights.
//
// # Custom Layers
//
// A Factory builds a Transformation for an input size. Most layers implement
// Simplified (a Forward and a Backward over vectors) and may add Learner,
// Cleaner or Serializer. Layers that need to control how errors flow back
// implement Uniform directly.
package nn
