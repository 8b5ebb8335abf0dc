package matprod

import (
	"fmt"
	"strconv"
	"time"
)

// Kernel selects one of the multiplication kernels. The numeric values are
// the operation codes accepted on the command line.
type Kernel int

const (
	KernelNaive Kernel = iota + 1 // 1=Multiplication
	KernelLine                    // 2=Line Multiplication
	KernelBlock                   // 3=Block Multiplication
)

// String returns the kernel's display name
func (k Kernel) String() string {
	switch k {
	case KernelNaive:
		return "Multiplication"
	case KernelLine:
		return "Line Multiplication"
	case KernelBlock:
		return "Block Multiplication"
	default:
		return fmt.Sprintf("Kernel(%d)", int(k))
	}
}

// Valid reports whether k names a known kernel.
func (k Kernel) Valid() bool {
	return k >= KernelNaive && k <= KernelBlock
}

// Operation is one kernel invocation: which kernel, the matrix dimension,
// and the block size for KernelBlock. BlockSize is ignored by the others.
type Operation struct {
	Kernel    Kernel `json:"kernel"`
	Size      int    `json:"size"`
	BlockSize int    `json:"block_size,omitempty"`
}

// ParseOperation builds an Operation from positional arguments
// <operation> <size> [blockSize]. Every failure is a usage error and is
// detected before anything is allocated.
func ParseOperation(args []string) (Operation, error) {
	if len(args) < 2 {
		return Operation{}, ErrNoArguments
	}
	if len(args) > 3 {
		return Operation{}, ErrTooManyArguments
	}

	code, err := strconv.Atoi(args[0])
	if err != nil || !Kernel(code).Valid() {
		return Operation{}, fmt.Errorf("%w: %q", ErrInvalidOperation, args[0])
	}

	size, err := strconv.Atoi(args[1])
	if err != nil || size <= 0 {
		return Operation{}, fmt.Errorf("%w: %q", ErrInvalidSize, args[1])
	}

	op := Operation{Kernel: Kernel(code), Size: size}
	if op.Kernel != KernelBlock {
		return op, nil
	}

	if len(args) < 3 {
		return Operation{}, ErrBlockSizeRequired
	}
	bs, err := strconv.Atoi(args[2])
	if err != nil || bs <= 0 {
		return Operation{}, fmt.Errorf("%w: %q", ErrInvalidBlockSize, args[2])
	}
	op.BlockSize = bs

	return op, nil
}

// Validate checks an Operation built without ParseOperation.
func (op Operation) Validate() error {
	if !op.Kernel.Valid() {
		return ErrInvalidOperation
	}
	if op.Size <= 0 {
		return ErrInvalidSize
	}
	if op.Kernel == KernelBlock && op.BlockSize <= 0 {
		return ErrBlockSizeRequired
	}
	return nil
}

// String formats the operation the way it would be typed
func (op Operation) String() string {
	if op.Kernel == KernelBlock {
		return fmt.Sprintf("%s n=%d bs=%d", op.Kernel, op.Size, op.BlockSize)
	}
	return fmt.Sprintf("%s n=%d", op.Kernel, op.Size)
}

// apply runs the selected kernel on ops.
func (op Operation) apply(ops *Operands) {
	switch op.Kernel {
	case KernelNaive:
		MultiplyNaive(ops.A, ops.B, ops.C)
	case KernelLine:
		MultiplyLine(ops.A, ops.B, ops.C)
	case KernelBlock:
		MultiplyBlock(ops.A, ops.B, ops.C, op.BlockSize)
	}
}

// Result is the outcome of one timed kernel invocation.
type Result struct {
	Operation Operation
	Elapsed   time.Duration
	Preview   []float64
}

// Run allocates fresh operands for op, times exactly one call of the
// selected kernel and returns the elapsed time with a preview of row 0.
// The operands are released before Run returns.
func Run(op Operation) (*Result, error) {
	if err := op.Validate(); err != nil {
		return nil, err
	}

	ops := NewOperands(op.Size)
	defer ops.Release()

	start := time.Now()
	op.apply(ops)
	elapsed := time.Since(start)

	return &Result{
		Operation: op,
		Elapsed:   elapsed,
		Preview:   Preview(ops.C),
	}, nil
}
