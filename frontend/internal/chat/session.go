package chat

import (
	"sync"
	"sync/atomic"

	"github.com/itchan-dev/parley/shared/domain"
)

// Session is the visible conversation. It lives in memory for as long as
// the client runs. Messages are only reachable through their id.
type Session struct {
	mu       sync.RWMutex
	messages []domain.Message

	inFlight atomic.Bool
}

func NewSession() *Session {
	return &Session{}
}

func (s *Session) Append(msg domain.Message) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.messages = append(s.messages, msg)
}

// Update overwrites the content of message id. It reports false when the
// message is gone, e.g. after Reset.
func (s *Session) Update(id domain.MsgId, content string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.messages {
		if s.messages[i].Id == id {
			s.messages[i].Content = content
			return true
		}
	}
	return false
}

func (s *Session) Get(id domain.MsgId) (domain.Message, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, m := range s.messages {
		if m.Id == id {
			return m, true
		}
	}
	return domain.Message{}, false
}

// Messages returns a copy of the log.
func (s *Session) Messages() []domain.Message {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]domain.Message(nil), s.messages...)
}

func (s *Session) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.messages)
}

func (s *Session) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.messages = nil
}

// TryBegin marks a submission as in flight. It fails if one already is.
func (s *Session) TryBegin() bool {
	return s.inFlight.CompareAndSwap(false, true)
}

func (s *Session) End() {
	s.inFlight.Store(false)
}

func (s *Session) InFlight() bool {
	return s.inFlight.Load()
}
