package monitor

import (
	"encoding/csv"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// Logger records timestamped debug samples to CSV files with automatic
// rotation.
type Logger struct {
	mu       sync.Mutex
	dir      string
	interval time.Duration

	file   *os.File
	writer *csv.Writer
	lastTs time.Time
	rows   int
}

const maxRowsPerFile = 100_000

var csvHeader = []string{
	"timestamp", "theta", "i_d_cmd", "d_a", "pid_d_p", "pid_d_i", "d_v_cmd", "velocity",
}

// LoggerConfig holds CSV logger configuration.
type LoggerConfig struct {
	Path       string `yaml:"path" json:"path"`
	IntervalMs int    `yaml:"interval_ms" json:"intervalMs"`
}

// NewLogger creates a new Logger.
func NewLogger(cfg LoggerConfig) *Logger {
	if cfg.Path == "" {
		cfg.Path = "servofw-logs"
	}
	interval := time.Duration(cfg.IntervalMs) * time.Millisecond
	if interval <= 0 {
		interval = 10 * time.Millisecond // Default 100 Hz
	}
	return &Logger{
		dir:      cfg.Path,
		interval: interval,
	}
}

// Record writes a sample if the minimum interval has elapsed.
func (l *Logger) Record(s Sample) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if s.At.Sub(l.lastTs) < l.interval {
		return
	}
	l.lastTs = s.At

	if l.writer == nil || l.rows >= maxRowsPerFile {
		if err := l.rotateFile(s.At); err != nil {
			log.Printf("[logger] rotate failed: %v", err)
			return
		}
	}

	row := []string{
		s.At.Format(time.RFC3339Nano),
		fmt.Sprintf("%.4f", s.Theta),
		fmt.Sprintf("%.2f", s.IDCommand),
		fmt.Sprintf("%.3f", s.DMeasured),
		fmt.Sprintf("%.4f", s.PidDP),
		fmt.Sprintf("%.4f", s.PidDIntegral),
		fmt.Sprintf("%.4f", s.DVCommand),
		fmt.Sprintf("%.2f", s.Velocity),
	}
	if err := l.writer.Write(row); err != nil {
		log.Printf("[logger] write failed: %v", err)
		return
	}
	l.writer.Flush()
	l.rows++
}

// Close flushes and closes the current log file.
func (l *Logger) Close() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.closeFile()
}

func (l *Logger) rotateFile(now time.Time) error {
	l.closeFile()

	if err := os.MkdirAll(l.dir, 0755); err != nil {
		return fmt.Errorf("mkdir %s: %w", l.dir, err)
	}

	filename := fmt.Sprintf("servo_%s.csv", now.Format("2006-01-02_150405"))
	path := filepath.Join(l.dir, filename)

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}

	l.file = f
	l.writer = csv.NewWriter(f)
	l.rows = 0

	if err := l.writer.Write(csvHeader); err != nil {
		return err
	}
	l.writer.Flush()

	log.Printf("[logger] opened %s", path)
	return nil
}

func (l *Logger) closeFile() {
	if l.writer != nil {
		l.writer.Flush()
		l.writer = nil
	}
	if l.file != nil {
		l.file.Close()
		l.file = nil
	}
}
