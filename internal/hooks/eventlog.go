package hooks

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/modu-ai/moai-adk/internal/security"
)

// LogFile is the hook event log name under .moai/logs.
const LogFile = "hooks.jsonl"

// Record is one line of the hook event log.
type Record struct {
	ID        string         `json:"id"`
	Time      time.Time      `json:"time"`
	Event     Event          `json:"event"`
	SessionID string         `json:"session_id,omitempty"`
	Duration  time.Duration  `json:"duration"`
	Continue  bool           `json:"continue"`
	Blocked   bool           `json:"blocked,omitempty"`
	Reason    string         `json:"reason,omitempty"`
	Handlers  []HandlerRun   `json:"handlers"`
	Payload   map[string]any `json:"payload,omitempty"`
}

// EventLog appends dispatch records to a JSONL file with secrets redacted.
// It is safe for concurrent use.
type EventLog struct {
	path     string
	file     *os.File
	writer   *bufio.Writer
	scrubber *security.Scrubber
	now      func() time.Time
	mu       sync.Mutex
}

// OpenEventLog opens dir/hooks.jsonl for appending, creating dir if needed.
func OpenEventLog(dir string) (*EventLog, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}
	path := filepath.Join(dir, LogFile)

	// 0600: payloads may still carry project content after redaction.
	file, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0600)
	if err != nil {
		return nil, fmt.Errorf("failed to open hook log: %w", err)
	}
	return &EventLog{
		path:     path,
		file:     file,
		writer:   bufio.NewWriter(file),
		scrubber: security.NewScrubber(),
		now:      time.Now,
	}, nil
}

// Record appends one dispatch.
func (l *EventLog) Record(event Event, in *Input, res Result, runs []HandlerRun, elapsed time.Duration) error {
	rec := Record{
		ID:        uuid.NewString(),
		Event:     event,
		SessionID: in.SessionID,
		Duration:  elapsed,
		Continue:  res.Continue,
		Blocked:   res.Block,
		Reason:    res.Reason,
		Handlers:  runs,
		Payload:   l.payload(in),
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	if l.file == nil {
		return fmt.Errorf("hook log is closed")
	}
	rec.Time = l.now()

	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("failed to marshal hook record: %w", err)
	}
	if _, err := l.writer.Write(data); err != nil {
		return fmt.Errorf("failed to write hook record: %w", err)
	}
	if err := l.writer.WriteByte('\n'); err != nil {
		return fmt.Errorf("failed to write newline: %w", err)
	}
	if err := l.writer.Flush(); err != nil {
		return fmt.Errorf("failed to flush hook log: %w", err)
	}
	return nil
}

// payload converts the input to a generic map and scrubs it.
func (l *EventLog) payload(in *Input) map[string]any {
	raw, err := json.Marshal(in)
	if err != nil {
		return nil
	}
	var m map[string]any
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil
	}
	delete(m, "session_id")
	if len(m) == 0 {
		return nil
	}
	scrubbed, _ := l.scrubber.ScrubValue(m).(map[string]any)
	return scrubbed
}

// Path returns the log file path.
func (l *EventLog) Path() string {
	return l.path
}

// Close flushes and closes the log.
func (l *EventLog) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.file == nil {
		return nil
	}
	if err := l.writer.Flush(); err != nil {
		_ = l.file.Close()
		l.file = nil
		return fmt.Errorf("failed to flush before close: %w", err)
	}
	err := l.file.Close()
	l.file = nil
	if err != nil {
		return fmt.Errorf("failed to close hook log: %w", err)
	}
	return nil
}

// ReadRecords reads every record from a hook log file.
func ReadRecords(path string) ([]Record, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open hook log: %w", err)
	}
	defer func() { _ = file.Close() }()

	var records []Record
	scanner := bufio.NewScanner(file)
	const maxLineSize = 1024 * 1024
	scanner.Buffer(make([]byte, 64*1024), maxLineSize)
	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		var rec Record
		if err := json.Unmarshal(line, &rec); err != nil {
			return nil, fmt.Errorf("failed to parse hook record on line %d: %w", lineNum, err)
		}
		records = append(records, rec)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read hook log: %w", err)
	}
	return records, nil
}
