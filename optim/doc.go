// Copyright 2025 Combobulate Authors. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package optim provides learning rate schedules for training nets.
//
// # Overview
//
// Layers update their own weights from the learning rate and inertia in the
// nn.Config of each backward pass. A Schedule picks that config per epoch:
//   - Constant: the same rate every epoch
//   - StepDecay: the rate drops by Gamma every StepSize epochs
//   - ExponentialDecay: the rate drops by Gamma every epoch, down to Floor
//   - CosineAnnealing: the rate follows half a cosine over Period epochs
//
// # Basic Usage
//
//	schedule := optim.NewStepDecay(0.1, 0.5, 500, 0.5)
//	for epoch := 1; epoch <= epochs; epoch++ {
//	    cfg := schedule.Config(epoch)
//	    for _, ex := range examples {
//	        output, trace := net.PassForward(ex.Input, cfg)
//	        batch = append(batch, nn.Feedback{Trace: trace, Error: tensor.Sub(ex.Target, output)})
//	    }
//	    if err := net.PassBack(batch, cfg); err != nil {
//	        return err
//	    }
//	    batch = batch[:0]
//	}
//
// # Inertia
//
// Inertia in [0, 1) keeps that fraction of each batch's accumulated deltas
// for the next batch, like momentum. Zero inertia discards them.
package optim
