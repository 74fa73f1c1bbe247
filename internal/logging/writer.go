package logging

import (
	"io"
	"sync"

	"gopkg.in/natefinch/lumberjack.v2"
)

// fileWriter is the size-rotated log file. lumberjack reopens its file on
// every Write, so writes after Close are refused rather than recreating
// the log behind the caller's back.
type fileWriter struct {
	log *lumberjack.Logger

	mu     sync.Mutex
	closed bool
}

func newFileWriter(path string, maxSizeMB, maxBackups int) *fileWriter {
	return &fileWriter{log: &lumberjack.Logger{
		Filename:   path,
		MaxSize:    maxSizeMB,
		MaxBackups: maxBackups,
	}}
}

func (w *fileWriter) Write(p []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return 0, io.ErrClosedPipe
	}
	return w.log.Write(p)
}

// Rotate moves the current file aside and starts a new one.
func (w *fileWriter) Rotate() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return io.ErrClosedPipe
	}
	return w.log.Rotate()
}

func (w *fileWriter) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return nil
	}
	w.closed = true
	return w.log.Close()
}
