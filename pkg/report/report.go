// Package report formats and parses the periodic text report.
package report

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/itohio/lpsense/pkg/sample"
)

// ClearScreen is the ANSI sequence sent before the banner.
const ClearScreen = "\x1b[2J\x1b[;H"

const (
	temperaturePrefix = "Temperature: "
	lightSeparator    = "C    Ambient Light: "
	invalidTemp       = "--.-"
)

var ErrFormat = errors.New("malformed report line")

// Format renders a report line without the line terminator.
func Format(s sample.Sample) string {
	temp := invalidTemp
	if s.TemperatureValid {
		temp = fmt.Sprintf("%2.1f", s.Temperature)
	}
	return fmt.Sprintf("%s%s%s%d%%", temperaturePrefix, temp, lightSeparator, s.Light)
}

// Parse decodes a report line produced by Format. Timestamp is set to ts.
func Parse(line string, ts time.Time) (sample.Sample, error) {
	line = strings.TrimSpace(line)

	rest, ok := strings.CutPrefix(line, temperaturePrefix)
	if !ok {
		return sample.Sample{}, fmt.Errorf("%w: %q", ErrFormat, line)
	}
	temp, light, ok := strings.Cut(rest, lightSeparator)
	if !ok {
		return sample.Sample{}, fmt.Errorf("%w: %q", ErrFormat, line)
	}

	s := sample.Sample{Timestamp: ts}
	if temp != invalidTemp {
		v, err := strconv.ParseFloat(strings.TrimSpace(temp), 64)
		if err != nil {
			return sample.Sample{}, fmt.Errorf("invalid temperature: %w", err)
		}
		s.Temperature = v
		s.TemperatureValid = true
	}

	pct, ok := strings.CutSuffix(light, "%")
	if !ok {
		return sample.Sample{}, fmt.Errorf("%w: %q", ErrFormat, line)
	}
	v, err := strconv.ParseUint(pct, 10, 8)
	if err != nil {
		return sample.Sample{}, fmt.Errorf("invalid light: %w", err)
	}
	if v > 100 {
		return sample.Sample{}, fmt.Errorf("light out of range: %d (max 100)", v)
	}
	s.Light = uint8(v)

	return s, nil
}

// Banner writes the clear-screen sequence and the start-up message.
func Banner(w io.Writer) error {
	const rule = "---------------------------------------------------------------------------\r\n"
	_, err := io.WriteString(w, ClearScreen+
		rule+
		"Low-Power Sensing - Thermistor and Ambient Light Sensor\r\n"+
		rule+"\n"+
		"Touch the thermistor and block/increase the light over the ambient light \r\n"+
		"sensor to observe change in the readings. \r\n\n")
	return err
}

// Writer emits reports as CRLF terminated lines.
type Writer struct {
	mu sync.Mutex
	w  io.Writer
}

// NewWriter creates a report sink over w.
func NewWriter(w io.Writer) *Writer {
	return &Writer{w: w}
}

// Report writes one line. It returns after the underlying writer accepted it.
func (w *Writer) Report(s sample.Sample) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	_, err := io.WriteString(w.w, Format(s)+"\r\n")
	return err
}
