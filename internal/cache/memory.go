package cache

import (
	"context"
	"sync"
)

// Memory хранилище ключей в памяти процесса. Все клиенты одного экземпляра
// видят изменения друг друга через Watch, как вкладки одного браузера.
type Memory struct {
	mu       sync.RWMutex
	data     map[string]string
	watchers map[int]chan string
	nextID   int
}

// NewMemory создаёт пустое хранилище.
func NewMemory() *Memory {
	return &Memory{
		data:     make(map[string]string),
		watchers: make(map[int]chan string),
	}
}

// Get возвращает значение ключа и признак его наличия.
func (m *Memory) Get(_ context.Context, key string) (string, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.data[key]
	return v, ok, nil
}

// Set сохраняет значение.
func (m *Memory) Set(_ context.Context, key, value string) error {
	m.mu.Lock()
	prev, existed := m.data[key]
	m.data[key] = value
	m.mu.Unlock()

	if !existed || prev != value {
		m.notify(key)
	}
	return nil
}

// Delete удаляет ключи.
func (m *Memory) Delete(_ context.Context, keys ...string) error {
	var removed []string
	m.mu.Lock()
	for _, k := range keys {
		if _, ok := m.data[k]; ok {
			delete(m.data, k)
			removed = append(removed, k)
		}
	}
	m.mu.Unlock()

	for _, k := range removed {
		m.notify(k)
	}
	return nil
}

// Watch возвращает канал изменённых ключей и функцию отписки.
func (m *Memory) Watch() (<-chan string, func()) {
	ch := make(chan string, 16)
	m.mu.Lock()
	id := m.nextID
	m.nextID++
	m.watchers[id] = ch
	m.mu.Unlock()

	return ch, func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		if c, ok := m.watchers[id]; ok {
			delete(m.watchers, id)
			close(c)
		}
	}
}

func (m *Memory) notify(key string) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, ch := range m.watchers {
		select {
		case ch <- key:
		default:
		}
	}
}
