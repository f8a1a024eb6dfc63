package session

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"
)

var ErrSessionNotFound = errors.New("session not found")

// Manager хранит активные занятия в памяти
type Manager struct {
	mu       sync.RWMutex
	sessions map[string]*Session
	owners   map[string]int
}

func NewManager() *Manager {
	return &Manager{
		sessions: make(map[string]*Session),
		owners:   make(map[string]int),
	}
}

func (m *Manager) Add(s *Session, ownerID int) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.sessions[s.ID] = s
	m.owners[s.ID] = ownerID

	log.Printf("Создано занятие %s: операция=%s, заданий=%d, пользователь=%d", s.ID, s.Operation, s.Len(), ownerID)
}

// Get возвращает занятие владельца. Чужое занятие считается ненайденным.
func (m *Manager) Get(id string, ownerID int) (*Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	s, ok := m.sessions[id]
	if !ok || m.owners[id] != ownerID {
		return nil, ErrSessionNotFound
	}
	return s, nil
}

func (m *Manager) Remove(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.sessions, id)
	delete(m.owners, id)
}

func (m *Manager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// Sweep удаляет занятия, созданные раньше cutoff, и возвращает их число
func (m *Manager) Sweep(cutoff time.Time) int {
	m.mu.Lock()
	defer m.mu.Unlock()

	removed := 0
	for id, s := range m.sessions {
		if s.CreatedAt.Before(cutoff) {
			delete(m.sessions, id)
			delete(m.owners, id)
			removed++
		}
	}
	return removed
}

// StartSweeper раз в interval удаляет занятия старше maxAge, пока не отменён ctx
func (m *Manager) StartSweeper(ctx context.Context, maxAge, interval time.Duration) {
	ticker := time.NewTicker(interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case now := <-ticker.C:
				if n := m.Sweep(now.Add(-maxAge)); n > 0 {
					log.Printf("Удалено устаревших занятий: %d", n)
				}
			}
		}
	}()
}
