package report

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// EventType represents the type of event
type EventType string

const (
	EventLocate   EventType = "locate"
	EventCatalog  EventType = "catalog"
	EventAcquire  EventType = "acquire"
	EventShortcut EventType = "shortcut"
	EventDelete   EventType = "delete"
	EventCreate   EventType = "create"
	EventFlush    EventType = "flush"
	EventError    EventType = "error"
)

// EventLevel represents the severity level
type EventLevel string

const (
	LevelDebug   EventLevel = "debug"
	LevelInfo    EventLevel = "info"
	LevelWarning EventLevel = "warning"
	LevelError   EventLevel = "error"
)

// levelPriority maps event levels to numeric priorities for comparison
var levelPriority = map[EventLevel]int{
	LevelDebug:   0,
	LevelInfo:    1,
	LevelWarning: 2,
	LevelError:   3,
}

// Event represents a single event in the pipeline
type Event struct {
	Timestamp    time.Time         `json:"ts"`
	Level        EventLevel        `json:"level"`
	Event        EventType         `json:"event"`
	AppID        string            `json:"app_id,omitempty"`
	Path         string            `json:"path,omitempty"`
	URL          string            `json:"url,omitempty"`
	Status       string            `json:"status,omitempty"`
	BytesWritten int64             `json:"bytes_written,omitempty"`
	Duration     int64             `json:"duration_ms,omitempty"`
	Error        string            `json:"error,omitempty"`
	Extra        map[string]string `json:"extra,omitempty"`
}

// EventLogger writes events to a JSONL file. A nil *EventLogger is valid and
// discards everything.
type EventLogger struct {
	file     *os.File
	encoder  *json.Encoder
	mu       sync.Mutex
	path     string
	minLevel EventLevel
}

// NewEventLogger creates a new event logger with a minimum log level
func NewEventLogger(outputDir string, minLevel EventLevel) (*EventLogger, error) {
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	timestamp := time.Now().Format("20060102-150405")
	path := filepath.Join(outputDir, fmt.Sprintf("events-%s.jsonl", timestamp))

	file, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("failed to create event log: %w", err)
	}

	return &EventLogger{
		file:     file,
		encoder:  json.NewEncoder(file),
		path:     path,
		minLevel: minLevel,
	}, nil
}

// Log writes an event to the JSONL file
func (l *EventLogger) Log(event *Event) error {
	if l == nil || l.file == nil {
		return nil
	}

	if levelPriority[event.Level] < levelPriority[l.minLevel] {
		return nil
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}

	if err := l.encoder.Encode(event); err != nil {
		return fmt.Errorf("failed to encode event: %w", err)
	}

	return nil
}

// LogLocate logs the outcome of installation discovery
func (l *EventLogger) LogLocate(path, source string, libraries int, err error) error {
	ev := &Event{
		Level: LevelInfo,
		Event: EventLocate,
		Path:  path,
		Extra: map[string]string{
			"source":    source,
			"libraries": fmt.Sprintf("%d", libraries),
		},
	}
	if err != nil {
		ev.Level = LevelError
		ev.Error = err.Error()
	}
	return l.Log(ev)
}

// LogCatalog logs a catalog scan
func (l *EventLogger) LogCatalog(libraries, games, skipped int) error {
	return l.Log(&Event{
		Level: LevelInfo,
		Event: EventCatalog,
		Extra: map[string]string{
			"libraries": fmt.Sprintf("%d", libraries),
			"games":     fmt.Sprintf("%d", games),
			"skipped":   fmt.Sprintf("%d", skipped),
		},
	})
}

// LogCandidate logs one rejected CDN candidate (debug level)
func (l *EventLogger) LogCandidate(appID, url string, err error) error {
	return l.Log(&Event{
		Level: LevelDebug,
		Event: EventAcquire,
		AppID: appID,
		URL:   url,
		Error: err.Error(),
	})
}

// LogAcquire logs the final outcome for one app id
func (l *EventLogger) LogAcquire(appID, iconPath, url, status string, success bool, bytesWritten int64, duration time.Duration) error {
	level := LevelInfo
	if !success {
		level = LevelWarning
	}

	return l.Log(&Event{
		Level:        level,
		Event:        EventAcquire,
		AppID:        appID,
		Path:         iconPath,
		URL:          url,
		Status:       status,
		BytesWritten: bytesWritten,
		Duration:     duration.Milliseconds(),
	})
}

// LogShortcut logs a descriptor normalization
func (l *EventLogger) LogShortcut(appID, path, iconPath string, changed bool) error {
	return l.Log(&Event{
		Level: LevelInfo,
		Event: EventShortcut,
		AppID: appID,
		Path:  path,
		Extra: map[string]string{
			"icon_file": iconPath,
			"changed":   fmt.Sprintf("%t", changed),
		},
	})
}

// LogDelete logs a deleted descriptor
func (l *EventLogger) LogDelete(path string) error {
	return l.Log(&Event{Level: LevelInfo, Event: EventDelete, Path: path})
}

// LogCreate logs a created descriptor
func (l *EventLogger) LogCreate(appID, path string) error {
	return l.Log(&Event{Level: LevelInfo, Event: EventCreate, AppID: appID, Path: path})
}

// LogFlush logs one step of the icon cache flush
func (l *EventLogger) LogFlush(step, path string, err error) error {
	ev := &Event{
		Level: LevelInfo,
		Event: EventFlush,
		Path:  path,
		Extra: map[string]string{"step": step},
	}
	if err != nil {
		ev.Level = LevelWarning
		ev.Error = err.Error()
	}
	return l.Log(ev)
}

// LogError logs an error event
func (l *EventLogger) LogError(event EventType, path string, err error) error {
	return l.Log(&Event{
		Level: LevelError,
		Event: event,
		Path:  path,
		Error: err.Error(),
	})
}

// Close closes the event log file
func (l *EventLogger) Close() error {
	if l == nil || l.file == nil {
		return nil
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	return l.file.Close()
}

// Path returns the path to the event log file
func (l *EventLogger) Path() string {
	if l == nil {
		return ""
	}
	return l.path
}

// NullLogger returns a no-op event logger
func NullLogger() *EventLogger {
	return nil
}
