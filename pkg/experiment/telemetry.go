package experiment

import (
	"encoding/json"
	"fmt"
	"os"
	"sync"
	"time"
)

// FoldEvent is one line of fold telemetry.
type FoldEvent struct {
	Timestamp  time.Time `json:"timestamp"`
	RunID      string    `json:"run_id"`
	Device     string    `json:"device"`
	Status     string    `json:"status"` // "success", "failed"
	Vocabulary int       `json:"vocabulary"`
	Train      int       `json:"train"`
	Test       int       `json:"test"`
	Accuracy   float64   `json:"accuracy,omitempty"`
	DurationMs int64     `json:"duration_ms"`
	Error      string    `json:"error,omitempty"`
}

// TelemetryWriter appends fold events to a JSONL file. It is safe for
// concurrent folds.
type TelemetryWriter struct {
	file    *os.File
	encoder *json.Encoder
	mu      sync.Mutex
	enabled bool
}

// NewTelemetryWriter opens filePath for appending. An empty path yields a
// disabled writer.
func NewTelemetryWriter(filePath string) (*TelemetryWriter, error) {
	if filePath == "" {
		return &TelemetryWriter{}, nil
	}

	file, err := os.OpenFile(filePath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("failed to open telemetry file: %w", err)
	}

	return &TelemetryWriter{
		file:    file,
		encoder: json.NewEncoder(file),
		enabled: true,
	}, nil
}

// Write records an event.
func (w *TelemetryWriter) Write(event FoldEvent) error {
	if w == nil || !w.enabled {
		return nil
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	if err := w.encoder.Encode(event); err != nil {
		return fmt.Errorf("failed to write telemetry event: %w", err)
	}
	return nil
}

// Close closes the telemetry file.
func (w *TelemetryWriter) Close() error {
	if w == nil || !w.enabled || w.file == nil {
		return nil
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	if err := w.file.Close(); err != nil {
		return fmt.Errorf("failed to close telemetry file: %w", err)
	}
	w.file = nil
	w.enabled = false
	return nil
}

// IsEnabled returns true if telemetry is enabled.
func (w *TelemetryWriter) IsEnabled() bool {
	return w != nil && w.enabled
}
