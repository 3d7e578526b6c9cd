package memory

import (
	"sync"

	"viralizaai-be/internal/entity"

	"github.com/google/uuid"
)

type accessKey struct {
	principalId uuid.UUID
	toolId      string
}

// Store is a process-local stand-in for the payments and tool_access tables.
// Transactions opened through its units of work run one at a time.
type Store struct {
	mu       sync.RWMutex
	txMu     sync.Mutex
	payments map[uuid.UUID]*entity.PaymentRecord
	access   map[accessKey]*entity.ToolAccess
}

func NewStore() *Store {
	return &Store{
		payments: make(map[uuid.UUID]*entity.PaymentRecord),
		access:   make(map[accessKey]*entity.ToolAccess),
	}
}

func (s *Store) getPayment(id uuid.UUID) *entity.PaymentRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if p, ok := s.payments[id]; ok {
		return p.Clone()
	}
	return nil
}

func (s *Store) getAccess(key accessKey) *entity.ToolAccess {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if a, ok := s.access[key]; ok {
		return a.Clone()
	}
	return nil
}

func (s *Store) putPayment(p *entity.PaymentRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.payments[p.Id] = p.Clone()
}

func (s *Store) putAccess(a *entity.ToolAccess) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.access[accessKey{a.PrincipalId, a.ToolId}] = a.Clone()
}

func (s *Store) snapshotPayments() []*entity.PaymentRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*entity.PaymentRecord, 0, len(s.payments))
	for _, p := range s.payments {
		out = append(out, p.Clone())
	}
	return out
}

func (s *Store) snapshotAccess() []*entity.ToolAccess {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*entity.ToolAccess, 0, len(s.access))
	for _, a := range s.access {
		out = append(out, a.Clone())
	}
	return out
}
