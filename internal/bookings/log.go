package bookings

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// Log is the durable append-only list of completed appointments.
type Log interface {
	Append(ctx context.Context, rec Record) error
	List(ctx context.Context, limit int) ([]Record, error)
}

// FileLog appends records as JSON lines to a single file. Each append is a
// single O_APPEND write followed by fsync under a mutex, so a crash while
// writing record N can at worst truncate that line; records 1..N-1 are
// never touched. Duplicate records after a crash-and-retry are tolerated.
type FileLog struct {
	path string
	mu   sync.Mutex
}

// NewFileLog creates the log, ensuring the parent directory exists.
func NewFileLog(path string) (*FileLog, error) {
	if path == "" {
		return nil, fmt.Errorf("bookings: log path required")
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return nil, fmt.Errorf("bookings: failed to create log dir: %w", err)
		}
	}
	return &FileLog{path: path}, nil
}

// Append writes one record to the end of the log.
func (l *FileLog) Append(ctx context.Context, rec Record) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("bookings: failed to encode record: %w", err)
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	f, err := os.OpenFile(l.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
	if err != nil {
		return fmt.Errorf("bookings: failed to open log: %w", err)
	}
	defer f.Close()

	if _, err := f.Write(append(data, '\n')); err != nil {
		return fmt.Errorf("bookings: failed to append record: %w", err)
	}
	if err := f.Sync(); err != nil {
		return fmt.Errorf("bookings: failed to sync log: %w", err)
	}
	return nil
}

// List returns up to limit records in append order. A zero limit returns
// everything. Lines that fail to decode (a torn write from a crash) are
// skipped rather than failing the whole read.
func (l *FileLog) List(ctx context.Context, limit int) ([]Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	f, err := os.Open(l.path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("bookings: failed to open log: %w", err)
	}
	defer f.Close()

	var records []Record
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		var rec Record
		if err := json.Unmarshal(scanner.Bytes(), &rec); err != nil {
			continue
		}
		records = append(records, rec)
		if limit > 0 && len(records) >= limit {
			break
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("bookings: failed to read log: %w", err)
	}
	return records, nil
}
