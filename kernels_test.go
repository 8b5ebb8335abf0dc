package matprod

import (
	"fmt"
	"math/rand"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

var kernelCases = []struct {
	name string
	run  func(ops *Operands)
}{
	{"Naive", func(ops *Operands) { MultiplyNaive(ops.A, ops.B, ops.C) }},
	{"Line", func(ops *Operands) { MultiplyLine(ops.A, ops.B, ops.C) }},
	{"Block4", func(ops *Operands) { MultiplyBlock(ops.A, ops.B, ops.C, 4) }},
}

// TestKernelsClosedForm checks every cell equals n(n+1)/2 for the fixed
// initialization pattern.
func TestKernelsClosedForm(t *testing.T) {
	for _, n := range []int{1, 2, 3, 4, 5, 7, 16, 33, 64} {
		for _, kc := range kernelCases {
			t.Run(fmt.Sprintf("%s/n=%d", kc.name, n), func(t *testing.T) {
				ops := NewOperands(n)
				kc.run(ops)

				want := ExpectedCell(n)
				for i := 0; i < n; i++ {
					for j := 0; j < n; j++ {
						require.Equal(t, want, ops.C.At(i, j), "C[%d][%d]", i, j)
					}
				}
			})
		}
	}
}

func TestExpectedCell(t *testing.T) {
	require.Equal(t, 10.0, ExpectedCell(4))
	require.Equal(t, 6.0, ExpectedCell(3))
	require.Equal(t, 15.0, ExpectedCell(5))
}

func randomMatrix(rng *rand.Rand, n int) *Matrix {
	m := NewMatrix(n)
	for i := range m.Data {
		m.Data[i] = rng.Float64()*2 - 1
	}
	return m
}

// TestKernelsAgree compares all three kernels with gonum on random operands.
func TestKernelsAgree(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	approx := cmpopts.EquateApprox(1e-9, 1e-12)

	for _, n := range []int{1, 6, 17, 48, 100} {
		t.Run(fmt.Sprintf("n=%d", n), func(t *testing.T) {
			a := randomMatrix(rng, n)
			b := randomMatrix(rng, n)

			var ref mat.Dense
			ref.Mul(mat.NewDense(n, n, a.Data), mat.NewDense(n, n, b.Data))
			want := mat.DenseCopyOf(&ref).RawMatrix().Data

			naive := NewMatrix(n)
			MultiplyNaive(a, b, naive)
			line := NewMatrix(n)
			MultiplyLine(a, b, line)
			block := NewMatrix(n)
			MultiplyBlock(a, b, block, 5)

			if diff := cmp.Diff(want, naive.Data, approx); diff != "" {
				t.Errorf("naive mismatch (-gonum +naive):\n%s", diff)
			}
			if diff := cmp.Diff(naive.Data, line.Data, approx); diff != "" {
				t.Errorf("line mismatch (-naive +line):\n%s", diff)
			}
			if diff := cmp.Diff(naive.Data, block.Data, approx); diff != "" {
				t.Errorf("block mismatch (-naive +block):\n%s", diff)
			}

			res := Verify(naive.Data, block.Data, DefaultTolerance())
			require.True(t, res.OK(), res.String())
		})
	}
}

// TestBlockSizeInvariance covers block sizes that divide n, do not divide
// n, equal n and exceed n.
func TestBlockSizeInvariance(t *testing.T) {
	const n = 10
	want := ExpectedCell(n)

	for _, bs := range []int{1, 2, 3, 4, 7, 10, 16} {
		t.Run(fmt.Sprintf("bs=%d", bs), func(t *testing.T) {
			ops := NewOperands(n)
			MultiplyBlock(ops.A, ops.B, ops.C, bs)
			for idx, v := range ops.C.Data {
				require.Equal(t, want, v, "C[%d][%d]", idx/n, idx%n)
			}
		})
	}
}

// TestAccumulatingKernelsNeedZeroedC shows that the line and block kernels
// add into C: running them on a C that already holds a result doubles it.
// The naive kernel assigns and is unaffected.
func TestAccumulatingKernelsNeedZeroedC(t *testing.T) {
	const n = 6
	want := ExpectedCell(n)

	t.Run("Line", func(t *testing.T) {
		ops := NewOperands(n)
		MultiplyLine(ops.A, ops.B, ops.C)
		MultiplyLine(ops.A, ops.B, ops.C)
		for _, v := range ops.C.Data {
			require.NotEqual(t, want, v)
			require.Equal(t, 2*want, v)
		}
	})

	t.Run("Block", func(t *testing.T) {
		ops := NewOperands(n)
		for i := range ops.C.Data {
			ops.C.Data[i] = 1
		}
		MultiplyBlock(ops.A, ops.B, ops.C, 4)
		for _, v := range ops.C.Data {
			require.Equal(t, want+1, v)
		}
	})

	t.Run("Naive", func(t *testing.T) {
		ops := NewOperands(n)
		for i := range ops.C.Data {
			ops.C.Data[i] = 99
		}
		MultiplyNaive(ops.A, ops.B, ops.C)
		for _, v := range ops.C.Data {
			require.Equal(t, want, v)
		}
	})
}

func TestNewOperandsPattern(t *testing.T) {
	ops := NewOperands(4)
	for i := 0; i < 4; i++ {
		for j := 0; j < 4; j++ {
			require.Equal(t, 1.0, ops.A.At(i, j))
			require.Equal(t, float64(i+1), ops.B.At(i, j))
			require.Zero(t, ops.C.At(i, j))
		}
	}
	require.Equal(t, []float64{2, 2, 2, 2}, ops.B.Row(1))

	ops.Release()
	require.Nil(t, ops.A)
	require.Nil(t, ops.B)
	require.Nil(t, ops.C)
}

func TestPreviewWidth(t *testing.T) {
	require.Len(t, Preview(NewMatrix(3)), 3)
	require.Len(t, Preview(NewMatrix(PreviewWidth)), PreviewWidth)
	require.Len(t, Preview(NewMatrix(25)), PreviewWidth)

	m := NewMatrix(12)
	for i := range m.Data {
		m.Data[i] = float64(i)
	}
	require.Equal(t, []float64{0, 1, 2, 3, 4, 5, 6, 7, 8, 9}, Preview(m))
	require.Equal(t, 12.0, m.Row(1)[0])

	// the preview is a copy
	p := Preview(m)
	p[0] = -1
	require.Equal(t, 0.0, m.At(0, 0))
}

func BenchmarkKernels(b *testing.B) {
	for _, n := range []int{64, 256} {
		ops := NewOperands(n)
		flops := float64(2 * n * n * n)

		b.Run(fmt.Sprintf("Naive/n=%d", n), func(b *testing.B) {
			for i := 0; i < b.N; i++ {
				MultiplyNaive(ops.A, ops.B, ops.C)
			}
			b.ReportMetric(flops*float64(b.N)/b.Elapsed().Seconds()/1e9, "GFLOPS")
		})
		b.Run(fmt.Sprintf("Line/n=%d", n), func(b *testing.B) {
			for i := 0; i < b.N; i++ {
				MultiplyLine(ops.A, ops.B, ops.C)
			}
			b.ReportMetric(flops*float64(b.N)/b.Elapsed().Seconds()/1e9, "GFLOPS")
		})
		for _, bs := range []int{16, 32, 64} {
			b.Run(fmt.Sprintf("Block/n=%d/bs=%d", n, bs), func(b *testing.B) {
				for i := 0; i < b.N; i++ {
					MultiplyBlock(ops.A, ops.B, ops.C, bs)
				}
				b.ReportMetric(flops*float64(b.N)/b.Elapsed().Seconds()/1e9, "GFLOPS")
			})
		}
	}
}
