// Copyright ©2024 The GUDA Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package matprod measures how loop ordering and cache blocking change the
// throughput and cache-miss behavior of dense square matrix multiplication.
//
// Three kernels compute the same product C = A·B over row-major float64
// matrices:
//   - MultiplyNaive walks i → j → k and strides down B's columns
//   - MultiplyLine walks i → k → j so B and C are read row-contiguously
//   - MultiplyBlock runs the line pattern tile by tile
//
// A Harness allocates the operands with a fixed synthetic pattern
// (A ≡ 1, row i of B ≡ i+1), times exactly one kernel, and brackets the run
// with L1 and L2 data-cache-miss counters read from the host PMU. With that
// pattern every result cell equals n(n+1)/2, so output is checkable by eye.
package matprod
