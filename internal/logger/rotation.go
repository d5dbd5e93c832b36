package logger

import (
	"compress/gzip"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

const rotatedTimeFormat = "20060102-150405"

// RotationConfig controls size based rotation of file targets.
type RotationConfig struct {
	MaxBytes int64 // rotate before a write would exceed this; 0 disables rotation
	MaxAge   int   // days to keep rotated files; 0 keeps them forever
	Compress bool  // gzip rotated files
}

// RotatingWriter is a file sink that moves the current file aside once it
// grows past MaxBytes. A single write is never split across files.
type RotatingWriter struct {
	mu          sync.Mutex
	filename    string
	cfg         RotationConfig
	currentFile *os.File
	currentSize int64
	logger      zerolog.Logger
	now         func() time.Time
	pending     sync.WaitGroup
}

// NewRotatingWriter opens filename for appending and prunes rotated files
// older than cfg.MaxAge.
func NewRotatingWriter(filename string, cfg RotationConfig) (*RotatingWriter, error) {
	return newRotatingWriter(filename, cfg, zerolog.Nop())
}

func newRotatingWriter(filename string, cfg RotationConfig, logger zerolog.Logger) (*RotatingWriter, error) {
	file, err := openLogFile(filename)
	if err != nil {
		return nil, err
	}

	info, err := file.Stat()
	if err != nil {
		file.Close()
		return nil, fmt.Errorf("failed to stat log file: %w", err)
	}

	rw := &RotatingWriter{
		filename:    filename,
		cfg:         cfg,
		currentFile: file,
		currentSize: info.Size(),
		logger:      logger,
		now:         time.Now,
	}

	rw.background(rw.cleanup)

	return rw, nil
}

// Write appends p to the current file, rotating first if p would push the
// file past MaxBytes.
func (w *RotatingWriter) Write(p []byte) (n int, err error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.currentFile == nil {
		return 0, os.ErrClosed
	}

	if w.cfg.MaxBytes > 0 && w.currentSize > 0 && w.currentSize+int64(len(p)) > w.cfg.MaxBytes {
		if err := w.rotate(); err != nil {
			return 0, err
		}
	}

	n, err = w.currentFile.Write(p)
	w.currentSize += int64(n)
	return n, err
}

// Rotate moves the current file aside regardless of its size. An empty
// file is left in place.
func (w *RotatingWriter) Rotate() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.currentFile == nil {
		return os.ErrClosed
	}
	if w.currentSize == 0 {
		return nil
	}
	return w.rotate()
}

// Sync commits the current file to stable storage.
func (w *RotatingWriter) Sync() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.currentFile == nil {
		return nil
	}
	return w.currentFile.Sync()
}

// Stat describes the file currently written to.
func (w *RotatingWriter) Stat() (os.FileInfo, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.currentFile == nil {
		return nil, os.ErrClosed
	}
	return w.currentFile.Stat()
}

// Close closes the current file and waits for background compression and
// cleanup to finish.
func (w *RotatingWriter) Close() error {
	w.mu.Lock()
	var err error
	if w.currentFile != nil {
		err = w.currentFile.Close()
		w.currentFile = nil
	}
	w.mu.Unlock()

	w.pending.Wait()
	return err
}

// rotate must be called with w.mu held.
func (w *RotatingWriter) rotate() error {
	if err := w.currentFile.Close(); err != nil {
		return err
	}
	w.currentFile = nil

	rotatedName := w.rotatedName()
	if err := os.Rename(w.filename, rotatedName); err != nil {
		// Keep appending to the unrotated file.
		if file, ferr := os.OpenFile(w.filename, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644); ferr == nil {
			w.currentFile = file
		}
		return fmt.Errorf("failed to rename log file: %w", err)
	}

	if w.cfg.Compress {
		w.background(func() {
			if err := w.compressFile(rotatedName); err != nil {
				w.logger.Error().Err(err).Str("file", rotatedName).Msg("Failed to compress rotated log")
			}
		})
	}

	file, err := os.OpenFile(w.filename, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}

	w.currentFile = file
	w.currentSize = 0

	w.logger.Info().Str("file", w.filename).Str("rotated", rotatedName).Msg("Log file rotated")

	w.background(w.cleanup)
	return nil
}

// rotatedName picks <filename>.<timestamp>, adding a counter when a file
// with that name (or its compressed form) already exists.
func (w *RotatingWriter) rotatedName() string {
	base := fmt.Sprintf("%s.%s", w.filename, w.now().Format(rotatedTimeFormat))
	name := base
	for i := 1; exists(name) || exists(name+".gz"); i++ {
		name = fmt.Sprintf("%s.%d", base, i)
	}
	return name
}

func exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

func (w *RotatingWriter) background(fn func()) {
	w.pending.Add(1)
	go func() {
		defer w.pending.Done()
		fn()
	}()
}

// compressFile gzips filename to filename.gz and removes the original.
func (w *RotatingWriter) compressFile(filename string) error {
	src, err := os.Open(filename)
	if err != nil {
		return err
	}
	defer src.Close()

	dst, err := os.Create(filename + ".gz")
	if err != nil {
		return err
	}

	gzw := gzip.NewWriter(dst)
	if _, err := io.Copy(gzw, src); err != nil {
		gzw.Close()
		dst.Close()
		return err
	}
	if err := gzw.Close(); err != nil {
		dst.Close()
		return err
	}
	if err := dst.Close(); err != nil {
		return err
	}

	return os.Remove(filename)
}

// cleanup removes rotated files older than MaxAge days.
func (w *RotatingWriter) cleanup() {
	if w.cfg.MaxAge <= 0 {
		return
	}

	files, err := filepath.Glob(w.filename + ".*")
	if err != nil {
		return
	}

	cutoff := w.now().AddDate(0, 0, -w.cfg.MaxAge)
	for _, file := range files {
		info, err := os.Stat(file)
		if err != nil {
			continue
		}
		if !info.ModTime().Before(cutoff) {
			continue
		}
		if err := os.Remove(file); err != nil {
			w.logger.Warn().Err(err).Str("file", file).Msg("Failed to remove expired log")
			continue
		}
		if !strings.HasSuffix(file, ".gz") {
			os.Remove(file + ".gz")
		}
	}
}
