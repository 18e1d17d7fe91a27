package logger

import (
	"fmt"
	"strings"
	"sync"

	"github.com/rs/zerolog"
)

// TestLogger is a Logger implementation for tests that captures all messages
type TestLogger struct {
	mu       sync.Mutex
	messages []LogMessage
	zerolog  *zerolog.Logger
}

// LogMessage represents a captured log message
type LogMessage struct {
	Level   string
	Message string
	Fields  map[string]interface{}
	Error   error
}

// NewTestLogger creates a new test logger
func NewTestLogger() *TestLogger {
	nop := zerolog.Nop()
	return &TestLogger{zerolog: &nop}
}

func (l *TestLogger) record(level, msg string, fields map[string]interface{}, err error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.messages = append(l.messages, LogMessage{Level: level, Message: msg, Fields: fields, Error: err})
}

func (l *TestLogger) Debug(msg string) { l.record("DEBUG", msg, nil, nil) }
func (l *TestLogger) Info(msg string)  { l.record("INFO", msg, nil, nil) }
func (l *TestLogger) Warn(msg string)  { l.record("WARN", msg, nil, nil) }
func (l *TestLogger) Error(msg string) { l.record("ERROR", msg, nil, nil) }
func (l *TestLogger) Fatal(msg string) { l.record("FATAL", msg, nil, nil) }

func (l *TestLogger) DebugWithFields(msg string, fields map[string]interface{}) {
	l.record("DEBUG", msg, fields, nil)
}

func (l *TestLogger) InfoWithFields(msg string, fields map[string]interface{}) {
	l.record("INFO", msg, fields, nil)
}

func (l *TestLogger) WarnWithFields(msg string, fields map[string]interface{}) {
	l.record("WARN", msg, fields, nil)
}

func (l *TestLogger) ErrorWithFields(msg string, fields map[string]interface{}) {
	l.record("ERROR", msg, fields, nil)
}

func (l *TestLogger) WithField(key string, value interface{}) Logger {
	return &testScope{parent: l, fields: map[string]interface{}{key: value}}
}

func (l *TestLogger) WithFields(fields map[string]interface{}) Logger {
	return &testScope{parent: l, fields: fields}
}

func (l *TestLogger) WithError(err error) Logger {
	return &testScope{parent: l, err: err}
}

func (l *TestLogger) GetZerolog() *zerolog.Logger {
	return l.zerolog
}

// Messages returns a copy of all captured log messages
func (l *TestLogger) Messages() []LogMessage {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]LogMessage, len(l.messages))
	copy(out, l.messages)
	return out
}

// MessagesByLevel returns all messages of a specific level
func (l *TestLogger) MessagesByLevel(level string) []LogMessage {
	var filtered []LogMessage
	for _, msg := range l.Messages() {
		if msg.Level == level {
			filtered = append(filtered, msg)
		}
	}
	return filtered
}

// HasMessageContaining reports whether a logged message contains the given text
func (l *TestLogger) HasMessageContaining(text string) bool {
	for _, msg := range l.Messages() {
		if strings.Contains(msg.Message, text) {
			return true
		}
	}
	return false
}

// Clear drops all captured messages
func (l *TestLogger) Clear() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.messages = l.messages[:0]
}

// String renders the captured messages for debugging
func (l *TestLogger) String() string {
	var sb strings.Builder
	for _, msg := range l.Messages() {
		fmt.Fprintf(&sb, "[%s] %s", msg.Level, msg.Message)
		if len(msg.Fields) > 0 {
			fmt.Fprintf(&sb, " fields=%v", msg.Fields)
		}
		if msg.Error != nil {
			fmt.Fprintf(&sb, " error=%v", msg.Error)
		}
		sb.WriteString("\n")
	}
	return sb.String()
}

// testScope is a TestLogger view carrying accumulated fields and an error
type testScope struct {
	parent *TestLogger
	fields map[string]interface{}
	err    error
}

func (s *testScope) merged(extra map[string]interface{}) map[string]interface{} {
	merged := make(map[string]interface{}, len(s.fields)+len(extra))
	for k, v := range s.fields {
		merged[k] = v
	}
	for k, v := range extra {
		merged[k] = v
	}
	return merged
}

func (s *testScope) Debug(msg string) { s.parent.record("DEBUG", msg, s.fields, s.err) }
func (s *testScope) Info(msg string)  { s.parent.record("INFO", msg, s.fields, s.err) }
func (s *testScope) Warn(msg string)  { s.parent.record("WARN", msg, s.fields, s.err) }
func (s *testScope) Error(msg string) { s.parent.record("ERROR", msg, s.fields, s.err) }
func (s *testScope) Fatal(msg string) { s.parent.record("FATAL", msg, s.fields, s.err) }

func (s *testScope) DebugWithFields(msg string, fields map[string]interface{}) {
	s.parent.record("DEBUG", msg, s.merged(fields), s.err)
}

func (s *testScope) InfoWithFields(msg string, fields map[string]interface{}) {
	s.parent.record("INFO", msg, s.merged(fields), s.err)
}

func (s *testScope) WarnWithFields(msg string, fields map[string]interface{}) {
	s.parent.record("WARN", msg, s.merged(fields), s.err)
}

func (s *testScope) ErrorWithFields(msg string, fields map[string]interface{}) {
	s.parent.record("ERROR", msg, s.merged(fields), s.err)
}

func (s *testScope) WithField(key string, value interface{}) Logger {
	return &testScope{parent: s.parent, fields: s.merged(map[string]interface{}{key: value}), err: s.err}
}

func (s *testScope) WithFields(fields map[string]interface{}) Logger {
	return &testScope{parent: s.parent, fields: s.merged(fields), err: s.err}
}

func (s *testScope) WithError(err error) Logger {
	return &testScope{parent: s.parent, fields: s.fields, err: err}
}

func (s *testScope) GetZerolog() *zerolog.Logger {
	return s.parent.zerolog
}
