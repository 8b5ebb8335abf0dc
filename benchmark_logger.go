package matprod

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"
)

// RunLogger appends samples to a JSON session file so runs made by
// separate invocations can be compared later.
type RunLogger struct {
	mu          sync.Mutex
	samples     []*Sample
	logDir      string
	sessionFile string
}

// NewRunLogger creates the log directory if needed and starts a session
// file named after sessionName and the current time.
func NewRunLogger(logDir, sessionName string) (*RunLogger, error) {
	if logDir == "" {
		logDir = DefaultLogDir
	}

	if err := os.MkdirAll(logDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}

	timestamp := time.Now().Format("20060102_150405.000000000")
	l := &RunLogger{
		logDir: logDir,
		sessionFile: filepath.Join(logDir,
			fmt.Sprintf("%s_%s.json", sessionName, timestamp)),
	}

	// Write initial file
	return l, l.flush()
}

// SessionFile returns the path samples are written to.
func (l *RunLogger) SessionFile() string {
	return l.sessionFile
}

// Log records s and flushes the session to disk immediately.
func (l *RunLogger) Log(s *Sample) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.samples = append(l.samples, s)
	return l.flush()
}

// flush writes samples to disk
func (l *RunLogger) flush() error {
	samples := l.samples
	if samples == nil {
		samples = []*Sample{}
	}

	data, err := json.MarshalIndent(samples, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal samples: %w", err)
	}

	return os.WriteFile(l.sessionFile, data, 0644)
}

// LoadSamples reads every session file in logDir and returns their samples
// ordered by timestamp.
func LoadSamples(logDir string) ([]*Sample, error) {
	files, err := filepath.Glob(filepath.Join(logDir, "*.json"))
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no log files found in %s", logDir)
	}

	var all []*Sample
	for _, file := range files {
		data, err := os.ReadFile(file)
		if err != nil {
			return nil, err
		}

		var samples []*Sample
		if err := json.Unmarshal(data, &samples); err != nil {
			return nil, fmt.Errorf("%s: %w", filepath.Base(file), err)
		}
		all = append(all, samples...)
	}

	sort.SliceStable(all, func(i, j int) bool {
		return all[i].Timestamp.Before(all[j].Timestamp)
	})
	return all, nil
}

// WriteSummary prints one row per sample.
func WriteSummary(w io.Writer, samples []*Sample) error {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("%-22s %7s %6s %10s %15s %15s\n",
		"Kernel", "n", "bs", "seconds", "L1 DCM", "L2 DCM"))
	sb.WriteString(strings.Repeat("-", 80))
	sb.WriteString("\n")

	for _, s := range samples {
		bs := "-"
		if s.Operation.Kernel == KernelBlock {
			bs = fmt.Sprint(s.Operation.BlockSize)
		}
		sb.WriteString(fmt.Sprintf("%-22s %7d %6s %10.3f %15s %15s\n",
			s.Operation.Kernel, s.Operation.Size, bs, s.Seconds(),
			summaryCount(s.Reading(EventL1DataMiss)),
			summaryCount(s.Reading(EventL2DataMiss))))
	}

	sb.WriteString(strings.Repeat("-", 80))
	sb.WriteString(fmt.Sprintf("\nTotal: %d\n", len(samples)))

	_, err := io.WriteString(w, sb.String())
	return err
}

func summaryCount(r Reading) string {
	if !r.Valid {
		return "-"
	}
	return fmt.Sprint(r.Value)
}
