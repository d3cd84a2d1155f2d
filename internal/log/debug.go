// Package log provides the process-wide debug log used by gaiacommit.
//
// Messages written before the destination is known are held in memory. Once
// SetFile is called they are either flushed to the file or dropped.
package log

import (
	"fmt"
	"log"
	"os"
	"sync"
)

// maxPendingBytes bounds what is kept in memory before SetFile is called.
const maxPendingBytes = 256 * 1024

// sink is the io.Writer behind the package logger. Until a file is attached
// it keeps the most recent output in pending.
type sink struct {
	mu      sync.Mutex
	out     *os.File
	pending []byte
	dropped bool
}

var (
	std    = &sink{}
	logger = log.New(std, "gaiacommit ", log.LstdFlags|log.Lmicroseconds)
)

func (s *sink) Write(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch {
	case s.dropped:
		return len(p), nil
	case s.out != nil:
		n, err := s.out.Write(p)
		_ = s.out.Sync()
		return n, err
	}

	s.pending = append(s.pending, p...)
	if over := len(s.pending) - maxPendingBytes; over > 0 {
		s.pending = append([]byte(nil), s.pending[over:]...)
	}
	return len(p), nil
}

// attach switches the sink to f, or to dropping everything when f is nil.
// Must be called with s.mu held.
func (s *sink) attach(f *os.File) {
	if s.out != nil {
		_ = s.out.Close()
	}
	s.out = f
	s.dropped = f == nil
	if f != nil && len(s.pending) > 0 {
		_, _ = f.Write(s.pending)
		_ = f.Sync()
	}
	s.pending = nil
}

// SetFile appends the log to path, creating it when needed, and flushes what
// was held so far. An empty path drops held and future messages, as does a
// path that cannot be opened.
func SetFile(path string) error {
	std.mu.Lock()
	defer std.mu.Unlock()

	if path == "" {
		std.attach(nil)
		return nil
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600) //nolint:gosec
	if err != nil {
		std.attach(nil)
		return fmt.Errorf("open debug log %q: %w", path, err)
	}
	std.attach(f)
	return nil
}

// Printf writes a formatted debug message.
func Printf(format string, args ...any) {
	logger.Printf(format, args...)
}

// Println writes a debug message.
func Println(v ...any) {
	logger.Println(v...)
}

// Errorf records an error line, prefixed so it stands out when grepping the log.
func Errorf(format string, args ...any) {
	logger.Printf("error: "+format, args...)
}

// Close closes the log file if one is attached.
func Close() error {
	std.mu.Lock()
	defer std.mu.Unlock()

	if std.out == nil {
		return nil
	}
	err := std.out.Close()
	std.out = nil
	return err
}
