// SPDX-FileCopyrightText: 2026 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package session

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"gopkg.in/yaml.v3"
)

// MemoryBackend keeps the session for the lifetime of the process.
type MemoryBackend struct {
	lock  sync.Mutex
	saved *Tokens
}

func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{}
}

func (m *MemoryBackend) Load() (Tokens, error) {
	m.lock.Lock()
	defer m.lock.Unlock()
	if m.saved == nil {
		return Tokens{}, ErrNoSession
	}
	return *m.saved, nil
}

func (m *MemoryBackend) Save(t Tokens) error {
	m.lock.Lock()
	defer m.lock.Unlock()
	m.saved = &t
	return nil
}

func (m *MemoryBackend) Clear() error {
	m.lock.Lock()
	defer m.lock.Unlock()
	m.saved = nil
	return nil
}

// FileBackend stores the session as a YAML document readable only by the
// current user.
type FileBackend struct {
	lock sync.Mutex
	path string
}

func NewFileBackend(path string) *FileBackend {
	return &FileBackend{path: path}
}

func (f *FileBackend) Load() (Tokens, error) {
	f.lock.Lock()
	defer f.lock.Unlock()

	data, err := os.ReadFile(f.path)
	if errors.Is(err, os.ErrNotExist) {
		return Tokens{}, ErrNoSession
	}
	if err != nil {
		return Tokens{}, fmt.Errorf("failed to read session file: %w", err)
	}

	var t Tokens
	if err := yaml.Unmarshal(data, &t); err != nil {
		return Tokens{}, fmt.Errorf("failed to decode session file: %w", err)
	}
	if t.AccessToken == "" {
		return Tokens{}, ErrNoSession
	}
	return t, nil
}

func (f *FileBackend) Save(t Tokens) error {
	f.lock.Lock()
	defer f.lock.Unlock()

	data, err := yaml.Marshal(&t)
	if err != nil {
		return fmt.Errorf("failed to encode session: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(f.path), 0o700); err != nil {
		return fmt.Errorf("failed to create session directory: %w", err)
	}
	return os.WriteFile(f.path, data, 0o600)
}

func (f *FileBackend) Clear() error {
	f.lock.Lock()
	defer f.lock.Unlock()

	err := os.Remove(f.path)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}
