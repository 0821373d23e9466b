package logging

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// RotatingFileWriter rotates a log file once it crosses maxSize bytes or
// after 24h, keeping at most maxBackups files and pruning anything older
// than maxAgeDays.
type RotatingFileWriter struct {
	mu          sync.Mutex
	file        *os.File
	filename    string
	maxSize     int64
	maxBackups  int
	maxAgeDays  int
	currentSize int64
	lastRotate  time.Time
}

func NewRotatingFileWriter(filename string, maxSize int64, maxBackups, maxAgeDays int) *RotatingFileWriter {
	w := &RotatingFileWriter{
		filename:   filename,
		maxSize:    maxSize,
		maxBackups: maxBackups,
		maxAgeDays: maxAgeDays,
		lastRotate: time.Now(),
	}
	if err := w.openFile(); err != nil {
		// Fall back to stderr rather than crash the process over a bad log path.
		w.file = os.Stderr
	}
	return w
}

func (w *RotatingFileWriter) Write(p []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.shouldRotate(int64(len(p))) {
		if err := w.rotate(); err != nil {
			return 0, err
		}
	}
	n, err := w.file.Write(p)
	w.currentSize += int64(n)
	return n, err
}

func (w *RotatingFileWriter) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.file != nil {
		return w.file.Close()
	}
	return nil
}

func (w *RotatingFileWriter) shouldRotate(writeSize int64) bool {
	if w.maxSize > 0 && w.currentSize+writeSize > w.maxSize {
		return true
	}
	return time.Since(w.lastRotate) > 24*time.Hour
}

func (w *RotatingFileWriter) rotate() error {
	if w.file != nil && w.file != os.Stderr {
		w.file.Close()
	}

	backup := w.backupName()
	if err := os.Rename(w.filename, backup); err != nil && !os.IsNotExist(err) {
		return err
	}

	if err := w.openFile(); err != nil {
		return err
	}
	w.lastRotate = time.Now()
	w.cleanupBackups()
	return nil
}

func (w *RotatingFileWriter) openFile() error {
	file, err := os.OpenFile(w.filename, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return err
	}
	info, err := file.Stat()
	if err != nil {
		file.Close()
		return err
	}
	w.file = file
	w.currentSize = info.Size()
	return nil
}

func (w *RotatingFileWriter) backupName() string {
	dir := filepath.Dir(w.filename)
	base := filepath.Base(w.filename)
	ext := filepath.Ext(base)
	name := base[:len(base)-len(ext)]
	timestamp := time.Now().Format("20060102-150405")
	return filepath.Join(dir, fmt.Sprintf("%s-%s%s", name, timestamp, ext))
}

func (w *RotatingFileWriter) cleanupBackups() {
	dir := filepath.Dir(w.filename)
	base := filepath.Base(w.filename)
	ext := filepath.Ext(base)
	name := base[:len(base)-len(ext)]

	pattern := filepath.Join(dir, fmt.Sprintf("%s-*%s", name, ext))
	matches, err := filepath.Glob(pattern)
	if err != nil {
		return
	}

	type fileInfo struct {
		path    string
		modTime time.Time
	}
	files := make([]fileInfo, 0, len(matches))
	for _, match := range matches {
		info, err := os.Stat(match)
		if err != nil {
			continue
		}
		files = append(files, fileInfo{path: match, modTime: info.ModTime()})
	}

	if w.maxBackups > 0 && len(files) > w.maxBackups {
		for i := 0; i < len(files)-w.maxBackups; i++ {
			os.Remove(files[i].path)
		}
	}

	if w.maxAgeDays > 0 {
		cutoff := time.Now().AddDate(0, 0, -w.maxAgeDays)
		for _, f := range files {
			if f.modTime.Before(cutoff) {
				os.Remove(f.path)
			}
		}
	}
}
