package hook

import (
	"context"
	"sort"
	"sync"
)

// Manager manages hook handlers and triggers
type Manager struct {
	handlers map[Point][]Handler
	mu       sync.RWMutex
}

// NewManager creates a new hook manager
func NewManager() *Manager {
	return &Manager{
		handlers: make(map[Point][]Handler),
	}
}

// Register adds a handler to the manager
func (m *Manager) Register(handler Handler) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, point := range handler.Points() {
		m.handlers[point] = append(m.handlers[point], handler)
	}

	for point := range m.handlers {
		sort.Slice(m.handlers[point], func(i, j int) bool {
			return m.handlers[point][i].Priority() > m.handlers[point][j].Priority()
		})
	}
}

// Trigger executes all handlers for a hook point.
// If any handler denies, the result denies.
func (m *Manager) Trigger(ctx context.Context, data *Data) (*Feedback, error) {
	m.mu.RLock()
	handlers := m.handlers[data.Point]
	m.mu.RUnlock()

	if len(handlers) == 0 {
		return AllowFeedback(), nil
	}

	for _, handler := range handlers {
		feedback, err := handler.Handle(ctx, data)
		if err != nil {
			return nil, err
		}

		if !feedback.Allow {
			return feedback, nil
		}
	}

	return AllowFeedback(), nil
}

// HasHandlers checks if there are handlers for a hook point
func (m *Manager) HasHandlers(point Point) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.handlers[point]) > 0
}
