// Copyright ©2024 The GUDA Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Command matprod times one square matrix multiplication kernel and reports
// the L1 and L2 data cache misses counted while it ran.
//
// Usage:
//
//	matprod <operation> <size> [blockSize]
//
// Operation: 1=Multiplication, 2=Line Multiplication, 3=Block Multiplication.
// blockSize is required for operation 3.
package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/LynnColeArt/matprod"
)

const usageText = `Usage: matprod <operation> <size> [blockSize]
Operation: 1=Multiplication, 2=Line Multiplication, 3=Block Multiplication
`

// Exit codes
const (
	exitOK       = 0
	exitUsage    = 1
	exitCounters = 2
)

type options struct {
	verbose         bool
	requireCounters bool
	l2Event         string
	cold            bool
	logDir          string
	human           bool
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr, nil))
}

// run executes the command line and returns the process exit code. A nil
// backend selects the host's counter backend.
func run(args []string, stdout, stderr io.Writer, backend matprod.Backend) int {
	cmd := newRootCmd(stdout, stderr, backend)
	cmd.SetArgs(args)

	err := cmd.Execute()
	if err == nil {
		return exitOK
	}

	var e *matprod.Error
	switch {
	case errors.As(err, &e) && e.Type == matprod.ErrTypeUsage:
		fmt.Fprintln(stderr, e.Message)
		fmt.Fprint(stderr, usageText)
		return exitUsage
	case matprod.IsCounterError(err):
		fmt.Fprintf(stderr, "matprod: %v\n", err)
		return exitCounters
	default:
		fmt.Fprintf(stderr, "matprod: %v\n", err)
		fmt.Fprint(stderr, usageText)
		return exitUsage
	}
}

func newRootCmd(stdout, stderr io.Writer, backend matprod.Backend) *cobra.Command {
	var opts options

	cmd := &cobra.Command{
		Use:   "matprod <operation> <size> [blockSize]",
		Short: "Time a square matrix multiplication kernel and count cache misses",
		Long: `matprod multiplies two n×n matrices once with the selected kernel and
reports the elapsed time, the first values of the result's row 0, and the
L1 and L2 data cache misses counted during the run.

Operation: 1=Multiplication, 2=Line Multiplication, 3=Block Multiplication`,
		Args:          cobra.ArbitraryArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		Version:       version(),
		RunE: func(cmd *cobra.Command, args []string) error {
			op, err := matprod.ParseOperation(args)
			if err != nil {
				return err
			}
			return measure(op, opts, stdout, stderr, backend)
		},
	}
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)

	f := cmd.Flags()
	f.BoolVarP(&opts.verbose, "verbose", "v", false, "debug logging on stderr")
	f.BoolVar(&opts.requireCounters, "require-counters", false, "fail if the hardware counter subsystem cannot be initialized")
	f.StringVar(&opts.l2Event, "l2-event", "", "raw PMU event code for L2 data misses, e.g. 0x3f24 (default: last-level cache read misses)")
	f.BoolVar(&opts.cold, "cold", false, "flush caches before measuring")
	f.StringVar(&opts.logDir, "log-dir", "", "append the sample to a JSON session log in this directory")
	f.BoolVar(&opts.human, "human", false, "digit-group counter values")

	cmd.AddCommand(newSummaryCmd(stdout))
	return cmd
}

func newSummaryCmd(stdout io.Writer) *cobra.Command {
	var logDir string

	cmd := &cobra.Command{
		Use:   "summary",
		Short: "Print the samples recorded with --log-dir",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			samples, err := matprod.LoadSamples(logDir)
			if err != nil {
				return err
			}
			return matprod.WriteSummary(stdout, samples)
		},
	}
	cmd.Flags().StringVar(&logDir, "log-dir", matprod.DefaultLogDir, "directory holding session logs")
	return cmd
}

func measure(op matprod.Operation, opts options, stdout, stderr io.Writer, backend matprod.Backend) error {
	log := newLogger(stderr, opts.verbose)

	cfg := matprod.Config{
		Operation:       op,
		RequireCounters: opts.requireCounters,
		Cold:            opts.cold,
	}
	if opts.l2Event != "" {
		code, err := strconv.ParseUint(opts.l2Event, 0, 64)
		if err != nil {
			return matprod.NewUsageError("Flags", fmt.Sprintf("invalid --l2-event %q", opts.l2Event))
		}
		cfg.L2RawEvent = code
	}

	if backend == nil {
		backend = matprod.NewHostBackend(cfg.L2RawEvent)
	}

	h := matprod.NewHarness(cfg, backend, log)
	sample, err := h.Measure(cfg.Operation)
	if err != nil {
		return err
	}

	if err := matprod.NewReporter(stdout, opts.human).Report(sample); err != nil {
		return err
	}

	if opts.logDir != "" {
		if err := logSample(opts.logDir, sample); err != nil {
			log.Warn().Err(err).Str("dir", opts.logDir).Msg("write run log")
		}
	}
	return nil
}

// logSample records sample in a new session file under dir. Only completed
// measurements reach it, so failed runs leave no session behind.
func logSample(dir string, sample *matprod.Sample) error {
	op := sample.Operation
	runLog, err := matprod.NewRunLogger(dir, fmt.Sprintf("op%d_n%d", int(op.Kernel), op.Size))
	if err != nil {
		return err
	}
	return runLog.Log(sample)
}

func newLogger(w io.Writer, verbose bool) zerolog.Logger {
	level := zerolog.WarnLevel
	if verbose {
		level = zerolog.DebugLevel
	}
	return zerolog.New(zerolog.ConsoleWriter{Out: w, NoColor: true, TimeFormat: time.TimeOnly}).
		Level(level).
		With().
		Timestamp().
		Logger()
}

func version() string {
	v, _ := matprod.Version()
	if v == "" {
		return "(devel)"
	}
	return v
}
