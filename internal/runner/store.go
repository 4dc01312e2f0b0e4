package runner

import (
	"sync"
	"time"
)

// Conversation is one record per id, created on first request. Its event
// log is append-only and ordered; events are queried by offset.
type Conversation struct {
	ID        string
	CreatedAt time.Time

	mu     sync.Mutex
	engine Engine
	events []Event
}

// Append adds an event to the log and assigns it the next offset.
func (c *Conversation) Append(kind, message string) Event {
	c.mu.Lock()
	defer c.mu.Unlock()
	ev := Event{
		ID:        len(c.events),
		Kind:      kind,
		Message:   message,
		Timestamp: time.Now().UTC(),
	}
	c.events = append(c.events, ev)
	return ev
}

// Page returns up to limit events starting at offset pageID, and the next
// offset when more events remain past the returned page.
func (c *Conversation) Page(pageID, limit int) ([]Event, *int) {
	if pageID < 0 {
		pageID = 0
	}
	if limit <= 0 {
		limit = defaultEventPageSize
	}
	if limit > maxEventPageSize {
		limit = maxEventPageSize
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if pageID >= len(c.events) {
		return []Event{}, nil
	}
	end := pageID + limit
	if end > len(c.events) {
		end = len(c.events)
	}
	page := make([]Event, end-pageID)
	copy(page, c.events[pageID:end])
	if end < len(c.events) {
		next := end
		return page, &next
	}
	return page, nil
}

func (c *Conversation) Engine() Engine {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.engine
}

// Store holds conversation records for the process lifetime. Nothing is
// persisted and nothing is evicted.
type Store struct {
	mu            sync.Mutex
	conversations map[string]*Conversation
	newEngine     func(id string) Engine
}

func NewStore(newEngine func(id string) Engine) *Store {
	return &Store{
		conversations: map[string]*Conversation{},
		newEngine:     newEngine,
	}
}

// Open returns the conversation for id, creating the record on first
// request with the store's default engine.
func (s *Store) Open(id string) *Conversation {
	s.mu.Lock()
	defer s.mu.Unlock()
	if conv, ok := s.conversations[id]; ok {
		return conv
	}
	conv := &Conversation{
		ID:        id,
		CreatedAt: time.Now().UTC(),
		engine:    s.newEngine(id),
	}
	s.conversations[id] = conv
	return conv
}

// Attach creates (or replaces) the conversation for id with an explicit
// engine. Used when a run starts a conversation with a captured repository
// context.
func (s *Store) Attach(id string, engine Engine) *Conversation {
	s.mu.Lock()
	defer s.mu.Unlock()
	conv, ok := s.conversations[id]
	if !ok {
		conv = &Conversation{ID: id, CreatedAt: time.Now().UTC()}
		s.conversations[id] = conv
	}
	conv.mu.Lock()
	conv.engine = engine
	conv.mu.Unlock()
	return conv
}
