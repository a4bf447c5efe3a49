// Package stats persists small cross-session statistics: how much
// weight the user has deleted over the program's lifetime and the last
// dataset they opened.
package stats

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// Stats holds the persisted values.
type Stats struct {
	DeletedLifetime int64  `json:"deleted_lifetime"`
	LastTarget      string `json:"last_target,omitempty"` // path or dataset opened last
}

// Manager loads and saves stats with debounced writes, so rapid
// deletions don't hammer the disk.
type Manager struct {
	path         string
	stats        Stats
	mu           sync.RWMutex
	dirty        bool
	saveTimer    *time.Timer
	saveDuration time.Duration
}

// NewManager creates a manager over the default stats file.
func NewManager() *Manager {
	return &Manager{
		path:         defaultPath(),
		saveDuration: 2 * time.Second,
	}
}

// NewManagerAt creates a manager over an explicit file path.
func NewManagerAt(path string) *Manager {
	return &Manager{
		path:         path,
		saveDuration: 2 * time.Second,
	}
}

func defaultPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".sizemap-stats.json"
	}
	return filepath.Join(home, ".sizemap", "stats.json")
}

// Load reads stats from disk. A missing file is a fresh start, not an
// error.
func (m *Manager) Load() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	data, err := os.ReadFile(m.path)
	if err != nil {
		if os.IsNotExist(err) {
			m.stats = Stats{}
			return nil
		}
		return err
	}
	return json.Unmarshal(data, &m.stats)
}

// Save writes stats to disk immediately.
func (m *Manager) Save() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.saveLocked()
}

func (m *Manager) saveLocked() error {
	if err := os.MkdirAll(filepath.Dir(m.path), 0755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(m.stats, "", "  ")
	if err != nil {
		return err
	}
	m.dirty = false
	return os.WriteFile(m.path, data, 0644)
}

// DeletedLifetime returns the lifetime deleted weight.
func (m *Manager) DeletedLifetime() int64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.stats.DeletedLifetime
}

// LastTarget returns the last opened dataset or path.
func (m *Manager) LastTarget() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.stats.LastTarget
}

// SetLastTarget records the dataset being opened and schedules a save.
func (m *Manager) SetLastTarget(target string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.stats.LastTarget == target {
		return
	}
	m.stats.LastTarget = target
	m.markDirtyLocked()
}

// AddDeleted adds to the lifetime deleted counter and schedules a
// debounced save.
func (m *Manager) AddDeleted(weight int64) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.stats.DeletedLifetime += weight
	m.markDirtyLocked()
}

func (m *Manager) markDirtyLocked() {
	m.dirty = true
	if m.saveTimer != nil {
		m.saveTimer.Stop()
	}
	m.saveTimer = time.AfterFunc(m.saveDuration, func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		if m.dirty {
			_ = m.saveLocked() // background save, errors dropped
		}
	})
}

// Close flushes any pending save.
func (m *Manager) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.saveTimer != nil {
		m.saveTimer.Stop()
		m.saveTimer = nil
	}
	if m.dirty {
		return m.saveLocked()
	}
	return nil
}
