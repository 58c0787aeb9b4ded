package assistant

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/curebird/backend/internal/core"
	"github.com/curebird/backend/internal/metrics"
)

var ErrConversationNotFound = errors.New("conversation not found")

// SystemPromptFunc builds the system message for a new conversation.
// It is evaluated once at creation time; the prompt is never refreshed
// for the lifetime of the conversation.
type SystemPromptFunc func(ctx context.Context) string

type conversation struct {
	mu       sync.Mutex
	messages []core.Message
}

// Store holds conversation histories in process memory. Nothing evicts
// conversations except an explicit Clear; growth is unbounded.
type Store struct {
	mu            sync.RWMutex
	conversations map[string]*conversation

	systemPrompt SystemPromptFunc
	metrics      *metrics.Metrics

	// Monotonic floor for minted IDs so two conversations created in the
	// same clock tick never collide.
	lastID atomic.Int64
}

func NewStore(systemPrompt SystemPromptFunc, m *metrics.Metrics) *Store {
	return &Store{
		conversations: make(map[string]*conversation),
		systemPrompt:  systemPrompt,
		metrics:       m,
	}
}

// Resolve returns the id of an existing conversation, or creates a new
// one seeded with the system prompt. An unknown non-empty id also gets a
// fresh conversation under a newly minted id.
func (s *Store) Resolve(ctx context.Context, id string) string {
	if id != "" {
		s.mu.RLock()
		_, ok := s.conversations[id]
		s.mu.RUnlock()
		if ok {
			return id
		}
	}

	newID := s.mintID()
	conv := &conversation{
		messages: []core.Message{
			{Role: core.RoleSystem, Content: s.systemPrompt(ctx)},
		},
	}

	s.mu.Lock()
	s.conversations[newID] = conv
	s.metrics.ConversationsActive.Set(float64(len(s.conversations)))
	s.mu.Unlock()

	return newID
}

func (s *Store) mintID() string {
	now := time.Now().UnixNano()
	for {
		last := s.lastID.Load()
		if now <= last {
			now = last + 1
		}
		if s.lastID.CompareAndSwap(last, now) {
			return fmt.Sprintf("conv_%d", now)
		}
	}
}

// Append adds one message to the end of the conversation.
func (s *Store) Append(id, role, content string) error {
	s.mu.RLock()
	conv, ok := s.conversations[id]
	s.mu.RUnlock()
	if !ok {
		return fmt.Errorf("%w: %s", ErrConversationNotFound, id)
	}

	conv.mu.Lock()
	conv.messages = append(conv.messages, core.Message{Role: role, Content: content})
	conv.mu.Unlock()
	return nil
}

// History returns a copy of the ordered message sequence. Callers may
// hold it across provider calls without blocking appends.
func (s *Store) History(id string) ([]core.Message, bool) {
	s.mu.RLock()
	conv, ok := s.conversations[id]
	s.mu.RUnlock()
	if !ok {
		return nil, false
	}

	conv.mu.Lock()
	defer conv.mu.Unlock()
	out := make([]core.Message, len(conv.messages))
	copy(out, conv.messages)
	return out, true
}

// Clear removes the conversation entirely. Idempotent: clearing an
// unknown id returns false.
func (s *Store) Clear(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, ok := s.conversations[id]
	if ok {
		delete(s.conversations, id)
		s.metrics.ConversationsActive.Set(float64(len(s.conversations)))
	}
	return ok
}
