// Package logging writes titlepanel's component-tagged log lines.
//
// Every process has one session id. File loggers append to
// ~/.titlepanel/logs/<session>-titlepanel.log, so the binder, the panels,
// the trackers and the host of one run end up in the same file. Entries
// look like:
//
//	[2026-01-02 15:04:05.000] [binder] [INFO] bound item 730
package logging

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
)

const (
	levelDebug = "DEBUG"
	levelInfo  = "INFO"
	levelWarn  = "WARN"
	levelError = "ERROR"

	timestampLayout = "2006-01-02 15:04:05.000"
)

var (
	sessionID     string
	sessionIDOnce sync.Once

	// logDir is resolved on first use; tests preset it.
	logDir   string
	initOnce sync.Once
	initErr  error
)

// sink is the destination shared by a logger and its Named children.
type sink struct {
	mu   sync.Mutex
	out  *log.Logger
	file *os.File
	path string

	closeOnce sync.Once
}

func (s *sink) println(line string) {
	s.mu.Lock()
	s.out.Println(line)
	s.mu.Unlock()
}

// Logger tags lines with a component name. Levels are labels only; nothing
// is filtered.
type Logger struct {
	component string
	session   string
	sink      *sink
	owner     bool
}

func currentSession() string {
	sessionIDOnce.Do(func() { sessionID = uuid.NewString() })
	return sessionID
}

func ensureLogDir() error {
	initOnce.Do(func() {
		if logDir == "" {
			home, err := os.UserHomeDir()
			if err != nil {
				initErr = fmt.Errorf("failed to locate home directory: %w", err)
				return
			}
			logDir = filepath.Join(home, ".titlepanel", "logs")
		}
		if err := os.MkdirAll(logDir, 0750); err != nil {
			initErr = fmt.Errorf("failed to create log directory %s: %w", logDir, err)
		}
	})
	return initErr
}

// NewLogger opens the session log file for component. When the file
// cannot be used it still returns a logger, writing to stderr, along with
// the error.
func NewLogger(component string) (*Logger, error) {
	if err := ensureLogDir(); err != nil {
		return stderrLogger(component, err), err
	}

	session := currentSession()
	path := filepath.Join(logDir, session+"-titlepanel.log")
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0600)
	if err != nil {
		err = fmt.Errorf("failed to open log file %s: %w", path, err)
		return stderrLogger(component, err), err
	}

	return &Logger{
		component: component,
		session:   session,
		sink:      &sink{out: log.New(f, "", 0), file: f, path: path},
		owner:     true,
	}, nil
}

// NewWriterLogger logs to w instead of a file.
func NewWriterLogger(component string, w io.Writer) *Logger {
	return &Logger{
		component: component,
		session:   currentSession(),
		sink:      &sink{out: log.New(w, "", 0)},
		owner:     true,
	}
}

// Discard returns a logger that drops everything. Packages use it when
// their options carry no logger.
func Discard(component string) *Logger {
	return NewWriterLogger(component, io.Discard)
}

func stderrLogger(component string, cause error) *Logger {
	l := NewWriterLogger(component, os.Stderr)
	l.Warnf("file logging unavailable, using stderr: %v", cause)
	return l
}

// Named returns a child logger for component that writes to the same
// destination. Closing a child does not close the parent's file.
func (l *Logger) Named(component string) *Logger {
	return &Logger{component: component, session: l.session, sink: l.sink}
}

func (l *Logger) logf(level, format string, args ...any) {
	stamp := time.Now().Format(timestampLayout)
	l.sink.println(fmt.Sprintf("[%s] [%s] [%s] %s", stamp, l.component, level, fmt.Sprintf(format, args...)))
}

func (l *Logger) Debugf(format string, args ...any) { l.logf(levelDebug, format, args...) }
func (l *Logger) Infof(format string, args ...any)  { l.logf(levelInfo, format, args...) }
func (l *Logger) Warnf(format string, args ...any)  { l.logf(levelWarn, format, args...) }
func (l *Logger) Errorf(format string, args ...any) { l.logf(levelError, format, args...) }

// SessionID identifies the process run.
func (l *Logger) SessionID() string { return l.session }

// LogPath is the file being written, or "" for writer loggers.
func (l *Logger) LogPath() string { return l.sink.path }

// Close releases the log file. Only the logger that opened it closes it;
// repeated calls return nil.
func (l *Logger) Close() error {
	if !l.owner || l.sink.file == nil {
		return nil
	}
	var err error
	l.sink.closeOnce.Do(func() { err = l.sink.file.Close() })
	return err
}

// GetSessionID returns the process session id.
func GetSessionID() string {
	return currentSession()
}

// GetLogDirectory returns the directory log files go to, creating it if
// needed.
func GetLogDirectory() (string, error) {
	if err := ensureLogDir(); err != nil {
		return "", err
	}
	return logDir, nil
}
