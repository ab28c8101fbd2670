package conversation

import (
	"context"
	"sync"

	"github.com/cloudwego/eino/schema"
)

// MemoryRepository is an in-process Repository for development and tests.
type MemoryRepository struct {
	mu        sync.Mutex
	histories map[string]*History
}

// NewMemoryRepository creates an empty in-memory conversation repository.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		histories: make(map[string]*History),
	}
}

func (m *MemoryRepository) Load(ctx context.Context, sessionID string) (*History, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	history, exists := m.histories[sessionID]
	if !exists {
		return &History{Messages: []*schema.Message{}}, nil
	}

	out := &History{Messages: make([]*schema.Message, len(history.Messages))}
	copy(out.Messages, history.Messages)
	return out, nil
}

func (m *MemoryRepository) AddMessage(ctx context.Context, sessionID string, message *schema.Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	history, exists := m.histories[sessionID]
	if !exists {
		history = &History{Messages: []*schema.Message{}}
		m.histories[sessionID] = history
	}
	history.Messages = append(history.Messages, message)
	return nil
}

func (m *MemoryRepository) ContextForModel(ctx context.Context, sessionID string, strategy ContextStrategy) (string, error) {
	history, err := m.Load(ctx, sessionID)
	if err != nil {
		return "", err
	}
	return strategy.BuildContext(history.Messages), nil
}
