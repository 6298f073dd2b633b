package testutil

import (
	"context"
	"sync"

	"shoplist/internal/model"
	"shoplist/internal/shop"
)

// StubStatsIndex records sessions in memory and remembers which calls
// were made. Query methods return nothing.
type StubStatsIndex struct {
	mu       sync.Mutex
	Recorded []string
	Removed  []string
	Rebuilt  int
	Err      error // returned by every mutating call when set
}

func NewStubStatsIndex() *StubStatsIndex {
	return &StubStatsIndex{}
}

func (s *StubStatsIndex) RecordSession(_ context.Context, sess *model.ShoppingSession) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return s.Err
	}
	s.Recorded = append(s.Recorded, sess.ID)
	return nil
}

func (s *StubStatsIndex) RemoveSession(_ context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return s.Err
	}
	s.Removed = append(s.Removed, sessionID)
	return nil
}

func (s *StubStatsIndex) Rebuild(_ context.Context, sessions []*model.ShoppingSession) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return s.Err
	}
	s.Rebuilt += len(sessions)
	return nil
}

func (s *StubStatsIndex) SpendingByMonth(context.Context) ([]shop.MonthlySpend, error) {
	return nil, nil
}

func (s *StubStatsIndex) TopItems(context.Context, int) ([]shop.TopItem, error) {
	return nil, nil
}

func (s *StubStatsIndex) Close() error { return nil }

var _ shop.StatsIndex = (*StubStatsIndex)(nil)
