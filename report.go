package matprod

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Reporter writes samples as plain text:
//
//	Time: 0.012 seconds
//	Result matrix:
//	6 6 6
//	L1 DCM: 1042
//	L2 DCM: 311
//
// Counters that could not be read are printed as "unavailable".
type Reporter struct {
	w       io.Writer
	printer *message.Printer
}

// NewReporter returns a Reporter writing to w. With human set, counter
// values are digit-grouped (1,234,567).
func NewReporter(w io.Writer, human bool) *Reporter {
	r := &Reporter{w: w}
	if human {
		r.printer = message.NewPrinter(language.English)
	}
	return r
}

// Report writes s.
func (r *Reporter) Report(s *Sample) error {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("Time: %3.3f seconds\n", s.Seconds()))
	sb.WriteString("Result matrix:\n")
	sb.WriteString(FormatPreview(s.Preview))
	sb.WriteString("\n")

	for _, ev := range DefaultEvents {
		sb.WriteString(fmt.Sprintf("%s: %s\n", ev, r.formatReading(s.Reading(ev))))
	}

	_, err := io.WriteString(r.w, sb.String())
	return err
}

func (r *Reporter) formatReading(rd Reading) string {
	if !rd.Valid {
		return "unavailable"
	}
	if r.printer != nil {
		return r.printer.Sprintf("%d", rd.Value)
	}
	return strconv.FormatUint(rd.Value, 10)
}

// FormatPreview joins values with single spaces in %g form with six
// significant digits, so 6.0 prints as "6" and 8390656 as "8.39066e+06".
func FormatPreview(values []float64) string {
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = strconv.FormatFloat(v, 'g', 6, 64)
	}
	return strings.Join(parts, " ")
}
