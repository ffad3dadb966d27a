// Package memstore is an in-memory implementation of the repository ports for use-case tests.
// Every table lives in one Store guarded by a mutex; failures can be injected per operation.
package memstore

import (
	"context"
	"sync"

	"github.com/jhoicas/roofing-ops/internal/domain/entity"
	"github.com/jhoicas/roofing-ops/internal/domain/repository"
)

// Store holds every table.
type Store struct {
	mu sync.Mutex

	pulltags   map[string]entity.Pulltag
	order      []string // pulltag insertion order
	logs       []entity.KittingLog
	backorders []entity.BatchBackorder
	items      []entity.Item
	roofTypes  []entity.RoofTypeCode
	rules      []entity.CommunityRule
	warehouses []entity.Warehouse
	users      []entity.User

	calls    map[string]int
	failures map[string]failure
}

type failure struct {
	nth int
	err error
}

// New returns an empty store.
func New() *Store {
	return &Store{
		pulltags: map[string]entity.Pulltag{},
		calls:    map[string]int{},
		failures: map[string]failure{},
	}
}

// FailOn makes the nth call (1-based) of op return err.
// Ops are named "<table>.<Method>", e.g. "pulltags.MarkKitted" or "logs.Create".
func (s *Store) FailOn(op string, nth int, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures[op] = failure{nth: nth, err: err}
}

// Calls returns how many times op was invoked.
func (s *Store) Calls(op string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls[op]
}

// hit counts a call; caller holds mu.
func (s *Store) hit(op string) error {
	s.calls[op]++
	if f, ok := s.failures[op]; ok && f.nth == s.calls[op] {
		return f.err
	}
	return nil
}

// Pulltags returns the pulltag repository view.
func (s *Store) Pulltags() *PulltagRepo { return &PulltagRepo{s: s} }

// KittingLogs returns the kitting log repository view.
func (s *Store) KittingLogs() *KittingLogRepo { return &KittingLogRepo{s: s} }

// Backorders returns the batch backorder repository view.
func (s *Store) Backorders() *BatchBackorderRepo { return &BatchBackorderRepo{s: s} }

// Items returns the items master view.
func (s *Store) Items() *ItemRepo { return &ItemRepo{s: s} }

// RoofTypes returns the roof type view.
func (s *Store) RoofTypes() *RoofTypeRepo { return &RoofTypeRepo{s: s} }

// Communities returns the community rule view.
func (s *Store) Communities() *CommunityRuleRepo { return &CommunityRuleRepo{s: s} }

// Warehouses returns the warehouse view.
func (s *Store) Warehouses() *WarehouseRepo { return &WarehouseRepo{s: s} }

// Users returns the user view.
func (s *Store) Users() *UserRepo { return &UserRepo{s: s} }

// RunRow runs fn against the store; if fn fails, pulltag and log changes made inside it are undone.
func (s *Store) RunRow(ctx context.Context, fn func(pulltags repository.PulltagRepository, logs repository.KittingLogRepository) error) error {
	s.mu.Lock()
	tags := make(map[string]entity.Pulltag, len(s.pulltags))
	for k, v := range s.pulltags {
		tags[k] = v
	}
	nlogs := len(s.logs)
	s.mu.Unlock()

	if err := fn(s.Pulltags(), s.KittingLogs()); err != nil {
		s.mu.Lock()
		s.pulltags = tags
		s.logs = s.logs[:nlogs]
		s.mu.Unlock()
		return err
	}
	return nil
}

// Pulltag returns a copy of the stored row, or nil.
func (s *Store) Pulltag(uid string) *entity.Pulltag {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.pulltags[uid]
	if !ok {
		return nil
	}
	return &t
}

// AllLogs returns a copy of every kitting log in insertion order.
func (s *Store) AllLogs() []entity.KittingLog {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]entity.KittingLog(nil), s.logs...)
}

// AllBackorders returns a copy of every batch backorder.
func (s *Store) AllBackorders() []entity.BatchBackorder {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]entity.BatchBackorder(nil), s.backorders...)
}

func strPtr(s string) *string { return &s }
