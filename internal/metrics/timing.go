package metrics

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"gonum.org/v1/gonum/stat"
)

// TimingLog appends one per-frame processing time per line, in whole
// microseconds.
type TimingLog struct {
	mu   sync.Mutex
	file *os.File
	w    *bufio.Writer
}

// OpenTimingLog opens path for appending, creating parent directories.
func OpenTimingLog(path string) (*TimingLog, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("create log directory: %w", err)
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, fmt.Errorf("open timing log: %w", err)
	}

	return &TimingLog{file: f, w: bufio.NewWriter(f)}, nil
}

// Record appends d.
func (l *TimingLog) Record(d time.Duration) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	_, err := fmt.Fprintf(l.w, "%d\n", d.Microseconds())
	return err
}

// Flush writes buffered lines to the file.
func (l *TimingLog) Flush() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.w.Flush()
}

// Close flushes and closes the file.
func (l *TimingLog) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if err := l.w.Flush(); err != nil {
		l.file.Close()
		return err
	}
	return l.file.Close()
}

// ReadTimings parses one float per line. Blank lines are skipped.
func ReadTimings(r io.Reader) ([]float64, error) {
	var values []float64

	scanner := bufio.NewScanner(r)
	line := 0
	for scanner.Scan() {
		line++
		text := strings.TrimSpace(scanner.Text())
		if text == "" {
			continue
		}
		v, err := strconv.ParseFloat(text, 64)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		values = append(values, v)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}

	return values, nil
}

// ReadTimingFile reads a timing log from disk.
func ReadTimingFile(path string) ([]float64, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	values, err := ReadTimings(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return values, nil
}

// Average returns the mean of values, or 0 when empty.
func Average(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	return stat.Mean(values, nil)
}
