package main

import (
	"bytes"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"factionwatch/config"
)

const (
	logTimestampLayout = "2006/01/02 15:04:05"
	maxLogBufferBytes  = 16 * 1024
)

type lineSink interface {
	WriteLine(line string, now time.Time)
	Close() error
}

type ioLineSink struct {
	w             io.Writer
	withTimestamp bool
}

func (s *ioLineSink) WriteLine(line string, now time.Time) {
	if s == nil || s.w == nil {
		return
	}
	if s.withTimestamp {
		line = now.Format(logTimestampLayout) + " " + line
	}
	_, _ = io.WriteString(s.w, line+"\n")
}

func (s *ioLineSink) Close() error {
	return nil
}

type fileSink struct {
	mu   sync.Mutex
	file *os.File
}

func newFileSink(path string) (*fileSink, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return nil, fmt.Errorf("log file path is empty")
	}
	if dir := filepath.Dir(trimmed); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create log directory %q: %w", dir, err)
		}
	}
	file, err := os.OpenFile(trimmed, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open failed for %s: %w", trimmed, err)
	}
	return &fileSink{file: file}, nil
}

func (s *fileSink) WriteLine(line string, now time.Time) {
	if s == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.file == nil {
		return
	}
	_, _ = fmt.Fprintf(s.file, "%s %s\n", now.Format(logTimestampLayout), line)
}

func (s *fileSink) Close() error {
	if s == nil {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.file == nil {
		return nil
	}
	err := s.file.Close()
	s.file = nil
	return err
}

// logFanout duplicates log output to a console sink and an optional file
// sink. Debug-prefixed lines are dropped unless the configured level asks
// for them.
type logFanout struct {
	mu      sync.Mutex
	buf     []byte
	console lineSink
	file    lineSink
	debug   bool
}

// setupLogging wires stdlib log output through the fanout. File logging
// failure degrades to console-only with a note, it never blocks startup.
func setupLogging(cfg config.LoggingConfig) *logFanout {
	fanout := &logFanout{
		console: &ioLineSink{w: os.Stderr, withTimestamp: true},
		debug:   strings.EqualFold(strings.TrimSpace(cfg.Level), "debug"),
	}
	if strings.TrimSpace(cfg.File) != "" {
		sink, err := newFileSink(cfg.File)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Logging: %v\n", err)
		} else {
			fanout.file = sink
		}
	}
	log.SetFlags(0)
	log.SetOutput(fanout)
	return fanout
}

// SetConsoleSink swaps the console destination, e.g. to the dashboard's
// status line once the full-screen UI owns the terminal.
func (f *logFanout) SetConsoleSink(writer io.Writer, withTimestamp bool) {
	if f == nil {
		return
	}
	var sink lineSink
	if writer != nil {
		sink = &ioLineSink{w: writer, withTimestamp: withTimestamp}
	}
	f.mu.Lock()
	f.console = sink
	f.mu.Unlock()
}

func (f *logFanout) Write(p []byte) (int, error) {
	if f == nil {
		return len(p), nil
	}
	f.mu.Lock()
	f.buf = append(f.buf, p...)
	data := f.buf
	var lines []string
	for {
		idx := bytes.IndexByte(data, '\n')
		if idx == -1 {
			break
		}
		lines = append(lines, string(bytes.TrimRight(data[:idx], "\r")))
		data = data[idx+1:]
	}
	if len(data) > maxLogBufferBytes {
		lines = append(lines, string(data))
		data = nil
	}
	f.buf = append(f.buf[:0], data...)
	console := f.console
	file := f.file
	debug := f.debug
	f.mu.Unlock()

	now := time.Now()
	for _, line := range lines {
		if !debug && strings.HasPrefix(line, "Debug:") {
			continue
		}
		if console != nil {
			console.WriteLine(line, now)
		}
		if file != nil {
			file.WriteLine(line, now)
		}
	}
	return len(p), nil
}

func (f *logFanout) Close() error {
	if f == nil {
		return nil
	}
	f.mu.Lock()
	file := f.file
	f.file = nil
	f.mu.Unlock()
	if file == nil {
		return nil
	}
	return file.Close()
}
