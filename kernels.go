package matprod

// MultiplyNaive computes C = A·B with the loop nest i → j → k.
//
// The dot product for each (i, j) is reduced into a local accumulator and
// stored once, so C does not need to be zeroed. The innermost loop strides
// down a column of B, touching a new cache line on every iteration once n
// exceeds a line's worth of elements. This is the baseline.
func MultiplyNaive(a, b, c *Matrix) {
	n := a.N
	pa, pb, pc := a.Data, b.Data, c.Data

	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			temp := 0.0
			for k := 0; k < n; k++ {
				temp += pa[i*n+k] * pb[k*n+j]
			}
			pc[i*n+j] = temp
		}
	}
}

// MultiplyLine computes C += A·B with the loop nest i → k → j.
//
// A[i][k] is hoisted out of the inner loop, which then walks row k of B and
// row i of C contiguously. C accumulates, so it must be zero on entry for
// the result to equal A·B.
func MultiplyLine(a, b, c *Matrix) {
	n := a.N
	pa, pb, pc := a.Data, b.Data, c.Data

	for i := 0; i < n; i++ {
		for k := 0; k < n; k++ {
			aik := pa[i*n+k]
			for j := 0; j < n; j++ {
				pc[i*n+j] += aik * pb[k*n+j]
			}
		}
	}
}

// MultiplyBlock computes C += A·B one blockSize×blockSize tile at a time.
//
// Tile origins ii, jj, kk step by blockSize in that order, and within each
// tile triple the i → k → j pattern of MultiplyLine runs over
// [origin, min(origin+blockSize, n)). The clamp covers a last tile narrower
// than blockSize when blockSize does not divide n. Between reuses only about
// 3·blockSize² elements are touched, so a well-chosen blockSize keeps the
// tiles cache resident. C must be zero on entry and blockSize must be
// positive.
func MultiplyBlock(a, b, c *Matrix, blockSize int) {
	n := a.N
	pa, pb, pc := a.Data, b.Data, c.Data

	for ii := 0; ii < n; ii += blockSize {
		iEnd := min(ii+blockSize, n)
		for jj := 0; jj < n; jj += blockSize {
			jEnd := min(jj+blockSize, n)
			for kk := 0; kk < n; kk += blockSize {
				kEnd := min(kk+blockSize, n)

				for i := ii; i < iEnd; i++ {
					for k := kk; k < kEnd; k++ {
						aik := pa[i*n+k]
						for j := jj; j < jEnd; j++ {
							pc[i*n+j] += aik * pb[k*n+j]
						}
					}
				}
			}
		}
	}
}
