package matprod

// Matrix is an n×n float64 matrix in row-major order: element (i, j) lives
// at Data[i*N+j].
type Matrix struct {
	N    int
	Data []float64
}

// NewMatrix allocates a zero-filled n×n matrix.
func NewMatrix(n int) *Matrix {
	return &Matrix{
		N:    n,
		Data: make([]float64, n*n),
	}
}

// At returns element (i, j).
func (m *Matrix) At(i, j int) float64 {
	return m.Data[i*m.N+j]
}

// Row returns row i as a slice sharing m's storage.
func (m *Matrix) Row(i int) []float64 {
	return m.Data[i*m.N : (i+1)*m.N]
}

// Operands holds the three matrices of one kernel invocation.
type Operands struct {
	A, B, C *Matrix
}

// NewOperands allocates A, B and C for dimension n and fills A and B with
// the fixed synthetic pattern: every cell of A is 1 and every cell of row i
// of B is i+1. C starts zeroed, which MultiplyLine and MultiplyBlock rely on.
func NewOperands(n int) *Operands {
	ops := &Operands{
		A: NewMatrix(n),
		B: NewMatrix(n),
		C: NewMatrix(n),
	}

	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			ops.A.Data[i*n+j] = 1.0
		}
	}

	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			ops.B.Data[i*n+j] = float64(i + 1)
		}
	}

	return ops
}

// Release drops the operand buffers so the collector can reclaim them as
// soon as the invocation ends.
func (o *Operands) Release() {
	o.A, o.B, o.C = nil, nil, nil
}

// ExpectedCell is the value every cell of C takes for the fixed pattern:
// the sum 1 + 2 + ... + n.
func ExpectedCell(n int) float64 {
	return float64(n) * float64(n+1) / 2
}

// Preview copies the first min(PreviewWidth, n) values of row 0 of m.
func Preview(m *Matrix) []float64 {
	width := min(PreviewWidth, m.N)
	out := make([]float64, width)
	copy(out, m.Row(0)[:width])
	return out
}
