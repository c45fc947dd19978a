package logger

import (
	"encoding/json"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/gzhole/sitbench/internal/redact"
)

// defaultMaxLogBytes is the size at which the log is rotated to <path>.1.
const defaultMaxLogBytes = 10 << 20

// Stages recorded in the run log.
const (
	StagePlan     = "plan"
	StageGenerate = "generate"
	StageRender   = "render"
	StageScore    = "score"
	StageRun      = "run"
)

type Event struct {
	Timestamp string   `json:"timestamp"`
	RunID     string   `json:"run_id"`
	Stage     string   `json:"stage"`
	DocID     string   `json:"doc_id,omitempty"`
	SITID     string   `json:"sit_id,omitempty"`
	Message   string   `json:"message"`
	Samples   []string `json:"samples,omitempty"`
	Error     string   `json:"error,omitempty"`
}

// RunLogger appends one JSON line per Event. A nil *RunLogger discards
// everything, so callers need not check whether logging is enabled.
type RunLogger struct {
	file  *os.File
	path  string
	runID string
	mu    sync.Mutex
	now   func() time.Time
}

func New(path string) (*RunLogger, error) {
	if err := rotate(path, defaultMaxLogBytes); err != nil {
		return nil, err
	}
	file, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0600)
	if err != nil {
		return nil, err
	}

	return &RunLogger{
		file:  file,
		path:  path,
		runID: uuid.NewString(),
		now:   time.Now,
	}, nil
}

// RunID identifies every event written by this logger.
func (l *RunLogger) RunID() string {
	if l == nil {
		return ""
	}
	return l.runID
}

func (l *RunLogger) Log(event Event) error {
	if l == nil {
		return nil
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	if event.Timestamp == "" {
		event.Timestamp = l.now().UTC().Format(time.RFC3339)
	}
	event.RunID = l.runID

	// Planted values must never reach the log in clear text.
	event.Message = redact.Redact(event.Message)
	event.Samples = redact.RedactAll(event.Samples)
	if event.Error != "" {
		event.Error = redact.Redact(event.Error)
	}

	data, err := json.Marshal(event)
	if err != nil {
		return err
	}

	data = append(data, '\n')
	_, err = l.file.Write(data)
	return err
}

// Logf is a convenience for message-only events.
func (l *RunLogger) Logf(stage, format string, args ...any) error {
	return l.Log(Event{Stage: stage, Message: fmt.Sprintf(format, args...)})
}

func (l *RunLogger) Close() error {
	if l != nil && l.file != nil {
		return l.file.Close()
	}
	return nil
}

// rotate moves path to path.1 once it reaches limit bytes.
func rotate(path string, limit int64) error {
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return err
	}
	if info.Size() < limit {
		return nil
	}
	return os.Rename(path, path+".1")
}
