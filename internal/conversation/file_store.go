package conversation

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// FileSessionStore persists one JSON document per sender under a data
// directory. Writes replace the whole document via a temp file and rename,
// so a crash mid-write never corrupts a previously saved session. Per-key
// mutexes keep concurrent senders from blocking each other.
type FileSessionStore struct {
	dir string

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewFileSessionStore creates the store, ensuring the directory exists.
func NewFileSessionStore(dir string) (*FileSessionStore, error) {
	if dir == "" {
		return nil, fmt.Errorf("conversation: session dir required")
	}
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("conversation: failed to create session dir: %w", err)
	}
	return &FileSessionStore{
		dir:   dir,
		locks: make(map[string]*sync.Mutex),
	}, nil
}

func (s *FileSessionStore) lockFor(sender string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	lock, ok := s.locks[sender]
	if !ok {
		lock = &sync.Mutex{}
		s.locks[sender] = lock
	}
	return lock
}

// sessionPath encodes the opaque sender identity into a filename-safe form.
func (s *FileSessionStore) sessionPath(sender string) string {
	name := base64.RawURLEncoding.EncodeToString([]byte(sender))
	return filepath.Join(s.dir, name+".json")
}

// Get loads the sender's session, creating and persisting the default one
// on first contact.
func (s *FileSessionStore) Get(ctx context.Context, sender string) (*Session, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	lock := s.lockFor(sender)
	lock.Lock()
	defer lock.Unlock()

	session, err := s.readLocked(sender)
	if err == nil {
		return session, nil
	}
	if !errors.Is(err, ErrSessionNotFound) {
		return nil, err
	}
	session = NewSession()
	if err := s.writeLocked(sender, session); err != nil {
		return nil, err
	}
	return session, nil
}

// Lookup loads the sender's session without creating one.
func (s *FileSessionStore) Lookup(ctx context.Context, sender string) (*Session, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	lock := s.lockFor(sender)
	lock.Lock()
	defer lock.Unlock()
	return s.readLocked(sender)
}

func (s *FileSessionStore) readLocked(sender string) (*Session, error) {
	data, err := os.ReadFile(s.sessionPath(sender))
	if os.IsNotExist(err) {
		return nil, ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("conversation: failed to read session: %w", err)
	}

	var session Session
	if err := json.Unmarshal(data, &session); err != nil {
		return nil, fmt.Errorf("conversation: failed to decode session: %w", err)
	}
	return &session, nil
}

// Save overwrites the stored session for the sender.
func (s *FileSessionStore) Save(ctx context.Context, sender string, session *Session) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if session == nil {
		return fmt.Errorf("conversation: session cannot be nil")
	}
	lock := s.lockFor(sender)
	lock.Lock()
	defer lock.Unlock()
	return s.writeLocked(sender, session)
}

func (s *FileSessionStore) writeLocked(sender string, session *Session) error {
	data, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("conversation: failed to encode session: %w", err)
	}

	path := s.sessionPath(sender)
	tmp, err := os.CreateTemp(s.dir, filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("conversation: failed to create temp session file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("conversation: failed to write session: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("conversation: failed to sync session: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("conversation: failed to close session file: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("conversation: failed to replace session file: %w", err)
	}
	return nil
}
